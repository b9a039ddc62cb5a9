package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/flight"
	"github.com/osse101/FlightShop_Go/internal/logger"
)

// GrantRequest grants free flight: Minutes of time, or permanent flight.
type GrantRequest struct {
	Minutes   int  `json:"minutes" validate:"required_without=Permanent,omitempty,min=1,max=525600"`
	Permanent bool `json:"permanent"`
}

// EntitlementView is one stored entitlement as operators see it.
type EntitlementView struct {
	OwnerID          uuid.UUID `json:"owner_id"`
	Active           bool      `json:"active"`
	Permanent        bool      `json:"permanent"`
	ExpiresAt        time.Time `json:"expires_at,omitzero"`
	RemainingSeconds int64     `json:"remaining_seconds"`
}

// RefreshResponse reports how many entries a cache refresh loaded.
type RefreshResponse struct {
	Message string `json:"message"`
	Entries int    `json:"entries"`
}

// AdminFlightHandler serves operator flight routes.
type AdminFlightHandler struct {
	svc flight.Service
	now func() time.Time
}

// NewAdminFlightHandler creates a new admin flight handler
func NewAdminFlightHandler(svc flight.Service) *AdminFlightHandler {
	return &AdminFlightHandler{svc: svc, now: time.Now}
}

// HandleGrant grants flight without charging
// POST /api/v1/admin/flight/{id}/grant
func (h *AdminFlightHandler) HandleGrant(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	var req GrantRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Grant flight"); err != nil {
		return
	}

	var (
		st  domain.FlightStatus
		err error
	)
	if req.Permanent {
		st, err = h.svc.GrantPermanent(r.Context(), owner)
	} else {
		st, err = h.svc.Grant(r.Context(), owner, time.Duration(req.Minutes)*time.Minute)
	}
	if err != nil {
		respondServiceError(w, r, ErrMsgGrantFailed, err)
		return
	}
	logger.FromContext(r.Context()).Info("Admin granted flight", "owner", owner, "minutes", req.Minutes, "permanent", req.Permanent)
	respondJSON(w, http.StatusOK, newFlightResponse(st))
}

// HandleRevoke removes a player's flight entitlement
// POST /api/v1/admin/flight/{id}/revoke
func (h *AdminFlightHandler) HandleRevoke(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.Revoke(r.Context(), owner); err != nil {
		respondServiceError(w, r, ErrMsgRevokeFailed, err)
		return
	}
	logger.FromContext(r.Context()).Info("Admin revoked flight", "owner", owner)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgFlightRevoked})
}

// HandleDiagnostics reports backend, pool, retry and cache state
// GET /api/v1/admin/diagnostics
func (h *AdminFlightHandler) HandleDiagnostics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.svc.Diagnostics(r.Context()))
}

// HandleRefreshCache reloads the entitlement cache from the backend
// POST /api/v1/admin/cache/refresh
func (h *AdminFlightHandler) HandleRefreshCache(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.RefreshCache(r.Context())
	if err != nil {
		respondServiceError(w, r, ErrMsgRefreshCacheFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, RefreshResponse{Message: MsgCacheRefreshed, Entries: n})
}

// HandleEntitlements lists every stored entitlement, soonest expiry first.
// ?active=true drops entries that have already run out.
// GET /api/v1/admin/entitlements
func (h *AdminFlightHandler) HandleEntitlements(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := strconv.ParseBool(GetOptionalQueryParam(r, "active", "false"))
	if err != nil {
		respondError(w, http.StatusBadRequest, ErrMsgInvalidRequestSummary)
		return
	}

	all, err := h.svc.AllEntitlements(r.Context())
	if err != nil {
		respondServiceError(w, r, ErrMsgEntitlementsFailed, err)
		return
	}

	now := h.now()
	views := make([]EntitlementView, 0, len(all))
	for _, e := range all {
		v := EntitlementView{
			OwnerID:   e.OwnerID,
			Active:    e.Active(now),
			Permanent: e.Permanent(),
		}
		if activeOnly && !v.Active {
			continue
		}
		if !v.Permanent {
			v.ExpiresAt = e.ExpiresAt
			v.RemainingSeconds = int64(e.Remaining(now) / time.Second)
		}
		views = append(views, v)
	}
	respondJSON(w, http.StatusOK, DataResponse{Data: views})
}
