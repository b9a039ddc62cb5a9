// Package storagetest holds the behaviour every storage.Backend must share. Backend packages
// run it from their own tests.
package storagetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// Factory returns an initialised, empty backend. The suite closes it.
type Factory func(t *testing.T) storage.Backend

// Run exercises the storage.Backend contract against backends built by newBackend.
func Run(t *testing.T, newBackend Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, b storage.Backend)
	}{
		{"SetAndGetEntitlement", testSetAndGet},
		{"GetMissingEntitlement", testGetMissing},
		{"OverwriteEntitlement", testOverwrite},
		{"RemoveEntitlement", testRemove},
		{"RemoveMissingEntitlement", testRemoveMissing},
		{"PermanentEntitlement", testPermanent},
		{"GetAllEntitlements", testGetAll},
		{"OwnedItems", testOwnedItems},
		{"OwnedItemsKeepFirstPurchase", testOwnedItemsUpsert},
		{"OwnedItemKindsAreSeparate", testOwnedKindsSeparate},
		{"GetAllOwnedItems", testGetAllOwned},
		{"InvalidItemKind", testInvalidKind},
		{"ClosedBackend", testClosed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newBackend(t)
			t.Cleanup(func() { _ = b.Close(context.Background()) })
			tt.fn(t, b)
		})
	}
}

// ms truncates to the millisecond resolution backends persist.
func ms(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli())
}

func testSetAndGet(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := uuid.New()
	expiresAt := ms(time.Now().Add(time.Hour))

	require.NoError(t, b.SetEntitlement(ctx, owner, expiresAt))

	got, found, err := b.GetEntitlement(ctx, owner)
	require.NoError(t, err)
	assert.True(t, found)
	assert.True(t, expiresAt.Equal(got), "want %v, got %v", expiresAt, got)
}

func testGetMissing(t *testing.T, b storage.Backend) {
	_, found, err := b.GetEntitlement(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, found)
}

func testOverwrite(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := uuid.New()
	first := ms(time.Now().Add(time.Minute))
	second := ms(time.Now().Add(2 * time.Hour))

	require.NoError(t, b.SetEntitlement(ctx, owner, first))
	require.NoError(t, b.SetEntitlement(ctx, owner, second))

	got, found, err := b.GetEntitlement(ctx, owner)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, second.Equal(got))

	all, err := b.GetAllEntitlements(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testRemove(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, b.SetEntitlement(ctx, owner, ms(time.Now().Add(time.Hour))))
	require.NoError(t, b.RemoveEntitlement(ctx, owner))

	_, found, err := b.GetEntitlement(ctx, owner)
	require.NoError(t, err)
	assert.False(t, found)
}

func testRemoveMissing(t *testing.T, b storage.Backend) {
	assert.NoError(t, b.RemoveEntitlement(context.Background(), uuid.New()))
}

func testPermanent(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, b.SetEntitlement(ctx, owner, domain.PermanentExpiry))

	got, found, err := b.GetEntitlement(ctx, owner)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, domain.IsPermanent(got))
}

func testGetAll(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	want := map[uuid.UUID]time.Time{
		uuid.New(): ms(time.Now().Add(time.Minute)),
		uuid.New(): ms(time.Now().Add(time.Hour)),
		uuid.New(): domain.PermanentExpiry,
	}
	for owner, expiresAt := range want {
		require.NoError(t, b.SetEntitlement(ctx, owner, expiresAt))
	}

	got, err := b.GetAllEntitlements(ctx)
	require.NoError(t, err)
	require.Len(t, got, len(want))
	for owner, expiresAt := range want {
		assert.True(t, expiresAt.Equal(got[owner]), "owner %s", owner)
	}
}

func testOwnedItems(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := uuid.New()
	now := ms(time.Now())

	items, err := b.GetOwnedItems(ctx, domain.ItemKindEffect, owner)
	require.NoError(t, err)
	assert.Empty(t, items)

	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: owner, Kind: domain.ItemKindEffect, Name: "sparkles", PurchasedAt: now}))
	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: owner, Kind: domain.ItemKindEffect, Name: "clouds", PurchasedAt: now}))

	items, err = b.GetOwnedItems(ctx, domain.ItemKindEffect, owner)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"sparkles", "clouds"}, names(items))
	for _, item := range items {
		assert.Equal(t, owner, item.OwnerID)
		assert.Equal(t, domain.ItemKindEffect, item.Kind)
		assert.True(t, now.Equal(item.PurchasedAt))
	}

	require.NoError(t, b.RemoveOwnedItem(ctx, domain.ItemKindEffect, owner, "clouds"))
	require.NoError(t, b.RemoveOwnedItem(ctx, domain.ItemKindEffect, owner, "never-owned"))

	items, err = b.GetOwnedItems(ctx, domain.ItemKindEffect, owner)
	require.NoError(t, err)
	assert.Equal(t, []string{"sparkles"}, names(items))
}

func testOwnedItemsUpsert(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := uuid.New()
	first := ms(time.Now().Add(-time.Hour))

	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: owner, Kind: domain.ItemKindSpeed, Name: "fast", PurchasedAt: first}))
	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: owner, Kind: domain.ItemKindSpeed, Name: "fast", PurchasedAt: ms(time.Now())}))

	items, err := b.GetOwnedItems(ctx, domain.ItemKindSpeed, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, first.Equal(items[0].PurchasedAt))
}

func testOwnedKindsSeparate(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	owner := uuid.New()

	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: owner, Kind: domain.ItemKindSpeed, Name: "fast", PurchasedAt: ms(time.Now())}))

	effects, err := b.GetOwnedItems(ctx, domain.ItemKindEffect, owner)
	require.NoError(t, err)
	assert.Empty(t, effects)

	speeds, err := b.GetOwnedItems(ctx, domain.ItemKindSpeed, owner)
	require.NoError(t, err)
	assert.Len(t, speeds, 1)
}

func testGetAllOwned(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	alice, bob := uuid.New(), uuid.New()
	now := ms(time.Now())

	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: alice, Kind: domain.ItemKindEffect, Name: "hearts", PurchasedAt: now}))
	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: alice, Kind: domain.ItemKindEffect, Name: "flames", PurchasedAt: now}))
	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: bob, Kind: domain.ItemKindEffect, Name: "hearts", PurchasedAt: now}))
	require.NoError(t, b.AddOwnedItem(ctx, domain.OwnedItem{OwnerID: bob, Kind: domain.ItemKindSpeed, Name: "fast", PurchasedAt: now}))

	all, err := b.GetAllOwnedItems(ctx, domain.ItemKindEffect)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.ElementsMatch(t, []string{"hearts", "flames"}, names(all[alice]))
	assert.ElementsMatch(t, []string{"hearts"}, names(all[bob]))
}

func testInvalidKind(t *testing.T, b storage.Backend) {
	_, err := b.GetOwnedItems(context.Background(), domain.ItemKind("hat"), uuid.New())
	assert.ErrorIs(t, err, domain.ErrInvalidItemKind)
}

func testClosed(t *testing.T, b storage.Backend) {
	ctx := context.Background()
	require.NoError(t, b.Close(ctx))

	err := b.SetEntitlement(ctx, uuid.New(), time.Now().Add(time.Hour))
	assert.Error(t, err)
}

func names(items []domain.OwnedItem) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.Name)
	}
	return out
}
