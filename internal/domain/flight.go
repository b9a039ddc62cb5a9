package domain

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// PermanentExpiry is the expiry stored for permanent flight. It is far enough in the
// future that it never expires and never gets a countdown.
var PermanentExpiry = time.UnixMilli(math.MaxInt64)

// Entitlement is a player's right to fly until ExpiresAt.
type Entitlement struct {
	OwnerID   uuid.UUID `json:"owner_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsPermanent reports whether the expiry marks permanent flight.
func IsPermanent(expiresAt time.Time) bool {
	return expiresAt.UnixMilli() == math.MaxInt64
}

// Permanent reports whether the entitlement never expires.
func (e Entitlement) Permanent() bool {
	return IsPermanent(e.ExpiresAt)
}

// Active reports whether the entitlement is still valid at now.
func (e Entitlement) Active(now time.Time) bool {
	return e.Permanent() || e.ExpiresAt.After(now)
}

// Remaining returns the time left at now, zero once expired.
// Permanent entitlements report math.MaxInt64.
func (e Entitlement) Remaining(now time.Time) time.Duration {
	if e.Permanent() {
		return time.Duration(math.MaxInt64)
	}
	if d := e.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}

// FlightStatus is the player-facing view of an entitlement.
type FlightStatus struct {
	OwnerID          uuid.UUID `json:"owner_id"`
	Active           bool      `json:"active"`
	Permanent        bool      `json:"permanent"`
	ExpiresAt        time.Time `json:"expires_at,omitzero"`
	RemainingSeconds int64     `json:"remaining_seconds"`
	Online           bool      `json:"online"`
	Flying           bool      `json:"flying"`
}
