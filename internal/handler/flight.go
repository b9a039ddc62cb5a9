package handler

import (
	"net/http"
	"time"

	"github.com/osse101/FlightShop_Go/internal/countdown"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/flight"
	"github.com/osse101/FlightShop_Go/internal/logger"
)

// BuyTimeRequest buys timed flight, at most one year at a time.
type BuyTimeRequest struct {
	Minutes int `json:"minutes" validate:"required,min=1,max=525600"`
}

// ItemRequest names a catalog item.
type ItemRequest struct {
	Name string `json:"name" validate:"required,max=64,itemname"`
}

// FlightResponse is a flight status with the remaining time formatted for players.
type FlightResponse struct {
	domain.FlightStatus
	Remaining string `json:"remaining,omitempty"`
}

// ItemsResponse lists the catalog for one item kind next to what the player owns.
type ItemsResponse struct {
	Catalog []domain.CatalogItem `json:"catalog"`
	Owned   []domain.OwnedItem   `json:"owned"`
}

// FlightHandler serves player-facing flight routes.
type FlightHandler struct {
	svc flight.Service
}

// NewFlightHandler creates a new flight handler
func NewFlightHandler(svc flight.Service) *FlightHandler {
	return &FlightHandler{svc: svc}
}

func newFlightResponse(st domain.FlightStatus) FlightResponse {
	resp := FlightResponse{FlightStatus: st}
	switch {
	case st.Permanent:
		resp.Remaining = MsgPermanentFlight
	case st.Active:
		resp.Remaining = countdown.FormatRemaining(time.Duration(st.RemainingSeconds) * time.Second)
	}
	return resp
}

// HandleStatus returns the player's flight status
// GET /api/v1/flight/{id}
func (h *FlightHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	st, err := h.svc.Status(r.Context(), owner)
	if err != nil {
		respondServiceError(w, r, ErrMsgStatusFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, newFlightResponse(st))
}

// HandleBuyTime charges for and adds flight time
// POST /api/v1/flight/{id}/buy
func (h *FlightHandler) HandleBuyTime(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	var req BuyTimeRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Buy time"); err != nil {
		return
	}

	st, err := h.svc.BuyTime(r.Context(), owner, time.Duration(req.Minutes)*time.Minute)
	if err != nil {
		respondServiceError(w, r, ErrMsgBuyTimeFailed, err)
		return
	}
	logger.FromContext(r.Context()).Info("Flight time bought", "owner", owner, "minutes", req.Minutes)
	respondJSON(w, http.StatusOK, newFlightResponse(st))
}

// HandleBuyPermanent charges for permanent flight
// POST /api/v1/flight/{id}/buy-permanent
func (h *FlightHandler) HandleBuyPermanent(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	st, err := h.svc.BuyPermanent(r.Context(), owner)
	if err != nil {
		respondServiceError(w, r, ErrMsgBuyPermanentFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, newFlightResponse(st))
}

// HandleListItems returns the catalog and the player's owned items of kind
// GET /api/v1/flight/{id}/effects, GET /api/v1/flight/{id}/speeds
func (h *FlightHandler) HandleListItems(kind domain.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := PlayerIDParam(w, r)
		if !ok {
			return
		}
		owned, err := h.svc.OwnedItems(r.Context(), kind, owner)
		if err != nil {
			respondServiceError(w, r, ErrMsgOwnedItemsFailed, err)
			return
		}
		if owned == nil {
			owned = []domain.OwnedItem{}
		}
		respondJSON(w, http.StatusOK, ItemsResponse{
			Catalog: h.svc.Catalog(kind),
			Owned:   owned,
		})
	}
}

// HandleBuyItem buys an effect or speed tier
// POST /api/v1/flight/{id}/effects, POST /api/v1/flight/{id}/speeds
func (h *FlightHandler) HandleBuyItem(kind domain.ItemKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, ok := PlayerIDParam(w, r)
		if !ok {
			return
		}
		var req ItemRequest
		if err := DecodeAndValidateRequest(r, w, &req, "Buy item"); err != nil {
			return
		}

		item, err := h.svc.BuyItem(r.Context(), kind, owner, req.Name)
		if err != nil {
			respondServiceError(w, r, ErrMsgBuyItemFailed, err)
			return
		}
		respondJSON(w, http.StatusCreated, item)
	}
}

// HandleSelectSpeed applies an owned or free speed tier
// POST /api/v1/flight/{id}/speeds/select
func (h *FlightHandler) HandleSelectSpeed(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	var req ItemRequest
	if err := DecodeAndValidateRequest(r, w, &req, "Select speed"); err != nil {
		return
	}

	item, err := h.svc.SelectSpeed(r.Context(), owner, req.Name)
	if err != nil {
		respondServiceError(w, r, ErrMsgSelectSpeedFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, item)
}

// HandleJoin brings a player online and resumes their flight
// POST /api/v1/players/{id}/join
func (h *FlightHandler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	st, err := h.svc.HandleJoin(r.Context(), owner)
	if err != nil {
		respondServiceError(w, r, ErrMsgJoinFailed, err)
		return
	}
	respondJSON(w, http.StatusOK, newFlightResponse(st))
}

// HandleQuit takes a player offline. Their entitlement is kept.
// POST /api/v1/players/{id}/quit
func (h *FlightHandler) HandleQuit(w http.ResponseWriter, r *http.Request) {
	owner, ok := PlayerIDParam(w, r)
	if !ok {
		return
	}
	h.svc.HandleQuit(r.Context(), owner)
	respondJSON(w, http.StatusOK, SuccessResponse{Message: MsgPlayerQuit})
}
