package domain

import (
	"time"

	"github.com/google/uuid"
)

// ItemKind separates the two ownership sets players can buy into.
type ItemKind string

const (
	// ItemKindEffect is a cosmetic flight effect (trail, particles).
	ItemKindEffect ItemKind = "effect"
	// ItemKindSpeed is a flight-speed tier.
	ItemKindSpeed ItemKind = "speed"
)

// Valid reports whether k is a known item kind.
func (k ItemKind) Valid() bool {
	return k == ItemKindEffect || k == ItemKindSpeed
}

// OwnedItem records that a player bought a cosmetic effect or speed tier.
// Ownership is permanent and independent of the flight entitlement.
type OwnedItem struct {
	OwnerID     uuid.UUID `json:"owner_id"`
	Kind        ItemKind  `json:"kind"`
	Name        string    `json:"name"`
	PurchasedAt time.Time `json:"purchased_at"`
}

// CatalogItem is a purchasable effect or speed tier.
type CatalogItem struct {
	Name  string   `json:"name"`
	Kind  ItemKind `json:"kind"`
	Price int64    `json:"price"`
	// Speed is the fly speed applied when a speed tier is selected (0.0-1.0).
	Speed float64 `json:"speed,omitempty"`
}
