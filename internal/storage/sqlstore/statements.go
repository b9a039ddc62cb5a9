// Package sqlstore holds the flight SQL statements and row mapping shared by the
// embedded and networked SQL backends.
package sqlstore

import (
	"fmt"

	"github.com/osse101/FlightShop_Go/internal/database"
	"github.com/osse101/FlightShop_Go/internal/domain"
)

// Table names
const (
	TableEntitlements = "flight_entitlements"
	TableOwnedEffects = "flight_owned_effects"
	TableOwnedSpeeds  = "flight_owned_speeds"
)

// Statements is the statement set for one dialect.
type Statements struct {
	UpsertEntitlement     string
	SelectEntitlement     string
	DeleteEntitlement     string
	SelectAllEntitlements string

	insertOwned    map[domain.ItemKind]string
	deleteOwned    map[domain.ItemKind]string
	selectOwned    map[domain.ItemKind]string
	selectAllOwned map[domain.ItemKind]string
}

// For builds the statement set for d.
func For(d database.Dialect) Statements {
	p := d.Placeholder

	s := Statements{
		SelectEntitlement: fmt.Sprintf(
			"SELECT end_time FROM %s WHERE owner_id = %s", TableEntitlements, p(1)),
		DeleteEntitlement: fmt.Sprintf(
			"DELETE FROM %s WHERE owner_id = %s", TableEntitlements, p(1)),
		SelectAllEntitlements: fmt.Sprintf(
			"SELECT owner_id, end_time FROM %s", TableEntitlements),

		insertOwned:    make(map[domain.ItemKind]string, 2),
		deleteOwned:    make(map[domain.ItemKind]string, 2),
		selectOwned:    make(map[domain.ItemKind]string, 2),
		selectAllOwned: make(map[domain.ItemKind]string, 2),
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (owner_id, end_time, created_at, updated_at) VALUES (%s, %s, %s, %s)",
		TableEntitlements, p(1), p(2), p(3), p(4))
	if d == database.DialectMySQL {
		s.UpsertEntitlement = insert +
			" ON DUPLICATE KEY UPDATE end_time = VALUES(end_time), updated_at = VALUES(updated_at)"
	} else {
		s.UpsertEntitlement = insert +
			" ON CONFLICT (owner_id) DO UPDATE SET end_time = excluded.end_time, updated_at = excluded.updated_at"
	}

	for kind, table := range map[domain.ItemKind]string{
		domain.ItemKindEffect: TableOwnedEffects,
		domain.ItemKindSpeed:  TableOwnedSpeeds,
	} {
		insertItem := fmt.Sprintf(
			"INSERT INTO %s (owner_id, item_name, purchased_at) VALUES (%s, %s, %s)",
			table, p(1), p(2), p(3))
		if d == database.DialectMySQL {
			// keep the original purchase time
			s.insertOwned[kind] = insertItem + " ON DUPLICATE KEY UPDATE purchased_at = purchased_at"
		} else {
			s.insertOwned[kind] = insertItem + " ON CONFLICT (owner_id, item_name) DO NOTHING"
		}

		s.deleteOwned[kind] = fmt.Sprintf(
			"DELETE FROM %s WHERE owner_id = %s AND item_name = %s", table, p(1), p(2))
		s.selectOwned[kind] = fmt.Sprintf(
			"SELECT owner_id, item_name, purchased_at FROM %s WHERE owner_id = %s ORDER BY item_name",
			table, p(1))
		s.selectAllOwned[kind] = fmt.Sprintf(
			"SELECT owner_id, item_name, purchased_at FROM %s ORDER BY owner_id, item_name", table)
	}

	return s
}

// InsertOwned returns the upsert for an ownership table.
func (s Statements) InsertOwned(kind domain.ItemKind) (string, error) {
	return lookup(s.insertOwned, kind)
}

// DeleteOwned returns the delete for an ownership table.
func (s Statements) DeleteOwned(kind domain.ItemKind) (string, error) {
	return lookup(s.deleteOwned, kind)
}

// SelectOwned returns the per-owner select for an ownership table.
func (s Statements) SelectOwned(kind domain.ItemKind) (string, error) {
	return lookup(s.selectOwned, kind)
}

// SelectAllOwned returns the full-table select for an ownership table.
func (s Statements) SelectAllOwned(kind domain.ItemKind) (string, error) {
	return lookup(s.selectAllOwned, kind)
}

func lookup(m map[domain.ItemKind]string, kind domain.ItemKind) (string, error) {
	q, ok := m[kind]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(kind))
	}
	return q, nil
}
