package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/domain"
)

// Querier is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SetEntitlement upserts the owner's expiry.
func SetEntitlement(ctx context.Context, q Querier, s Statements, owner uuid.UUID, expiresAt, now time.Time) error {
	nowMs := now.UnixMilli()
	if _, err := q.ExecContext(ctx, s.UpsertEntitlement, owner.String(), expiresAt.UnixMilli(), nowMs, nowMs); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgSetEntitlementFailed, err)
	}
	return nil
}

// GetEntitlement reads the owner's expiry.
func GetEntitlement(ctx context.Context, q Querier, s Statements, owner uuid.UUID) (time.Time, bool, error) {
	var endMs int64
	err := q.QueryRowContext(ctx, s.SelectEntitlement, owner.String()).Scan(&endMs)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%s: %w", ErrMsgGetEntitlementFailed, err)
	}
	return time.UnixMilli(endMs), true, nil
}

// RemoveEntitlement deletes the owner's expiry.
func RemoveEntitlement(ctx context.Context, q Querier, s Statements, owner uuid.UUID) error {
	if _, err := q.ExecContext(ctx, s.DeleteEntitlement, owner.String()); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRemoveEntitlementFailed, err)
	}
	return nil
}

// GetAllEntitlements reads the whole entitlement table. Rows with malformed owner ids are
// skipped.
func GetAllEntitlements(ctx context.Context, q Querier, s Statements) (map[uuid.UUID]time.Time, error) {
	rows, err := q.QueryContext(ctx, s.SelectAllEntitlements)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetAllEntitlementsFailed, err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID]time.Time)
	for rows.Next() {
		var (
			rawOwner string
			endMs    int64
		)
		if err := rows.Scan(&rawOwner, &endMs); err != nil {
			return nil, fmt.Errorf("%s: %w", ErrMsgGetAllEntitlementsFailed, err)
		}
		owner, err := uuid.Parse(rawOwner)
		if err != nil {
			continue
		}
		out[owner] = time.UnixMilli(endMs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetAllEntitlementsFailed, err)
	}
	return out, nil
}

// AddOwnedItem records a purchase, keeping the first purchase time on duplicates.
func AddOwnedItem(ctx context.Context, q Querier, s Statements, item domain.OwnedItem) error {
	stmt, err := s.InsertOwned(item.Kind)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, stmt, item.OwnerID.String(), item.Name, item.PurchasedAt.UnixMilli()); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgAddOwnedItemFailed, err)
	}
	return nil
}

// RemoveOwnedItem deletes one ownership record.
func RemoveOwnedItem(ctx context.Context, q Querier, s Statements, kind domain.ItemKind, owner uuid.UUID, name string) error {
	stmt, err := s.DeleteOwned(kind)
	if err != nil {
		return err
	}
	if _, err := q.ExecContext(ctx, stmt, owner.String(), name); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgRemoveOwnedItemFailed, err)
	}
	return nil
}

// GetOwnedItems reads one owner's items of a kind.
func GetOwnedItems(ctx context.Context, q Querier, s Statements, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	stmt, err := s.SelectOwned(kind)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, stmt, owner.String())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetOwnedItemsFailed, err)
	}
	defer rows.Close()

	items := []domain.OwnedItem{}
	err = scanOwned(rows, kind, func(item domain.OwnedItem) {
		items = append(items, item)
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// GetAllOwnedItems reads a whole ownership table grouped by owner.
func GetAllOwnedItems(ctx context.Context, q Querier, s Statements, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error) {
	stmt, err := s.SelectAllOwned(kind)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, stmt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrMsgGetOwnedItemsFailed, err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]domain.OwnedItem)
	err = scanOwned(rows, kind, func(item domain.OwnedItem) {
		out[item.OwnerID] = append(out[item.OwnerID], item)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func scanOwned(rows *sql.Rows, kind domain.ItemKind, emit func(domain.OwnedItem)) error {
	for rows.Next() {
		var (
			rawOwner    string
			name        string
			purchasedMs int64
		)
		if err := rows.Scan(&rawOwner, &name, &purchasedMs); err != nil {
			return fmt.Errorf("%s: %w", ErrMsgGetOwnedItemsFailed, err)
		}
		owner, err := uuid.Parse(rawOwner)
		if err != nil {
			continue
		}
		emit(domain.OwnedItem{
			OwnerID:     owner,
			Kind:        kind,
			Name:        name,
			PurchasedAt: time.UnixMilli(purchasedMs),
		})
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgGetOwnedItemsFailed, err)
	}
	return nil
}
