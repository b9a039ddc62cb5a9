package file

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/storage"
	"github.com/osse101/FlightShop_Go/internal/storage/storagetest"
)

func newStore(t *testing.T) *Store {
	t.Helper()
	s := New(t.TempDir())
	require.NoError(t, s.Init(context.Background()))
	return s
}

func TestContract(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Backend {
		return newStore(t)
	})
}

func TestDocumentFormat(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	owner := uuid.New()
	expiresAt := time.UnixMilli(1_700_000_000_000)
	require.NoError(t, s.SetEntitlement(ctx, owner, expiresAt))

	raw, err := os.ReadFile(filepath.Join(dir, EntitlementsFile))
	require.NoError(t, err)

	var doc map[string]int64
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, map[string]int64{owner.String(): 1_700_000_000_000}, doc)
}

func TestReloadFromDisk(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()
	owner := uuid.New()
	expiresAt := time.UnixMilli(time.Now().Add(time.Hour).UnixMilli())

	first := New(dir)
	require.NoError(t, first.Init(ctx))
	require.NoError(t, first.SetEntitlement(ctx, owner, expiresAt))
	require.NoError(t, first.AddOwnedItem(ctx, domain.OwnedItem{
		OwnerID: owner, Kind: domain.ItemKindEffect, Name: "sparkles", PurchasedAt: expiresAt,
	}))
	require.NoError(t, first.Close(ctx))

	second := New(dir)
	require.NoError(t, second.Init(ctx))

	got, found, err := second.GetEntitlement(ctx, owner)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, expiresAt.Equal(got))

	items, err := second.GetOwnedItems(ctx, domain.ItemKindEffect, owner)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sparkles", items[0].Name)
}

func TestInit_SkipsInvalidOwners(t *testing.T) {
	dir := t.TempDir()
	owner := uuid.New()
	doc := map[string]int64{"not-a-uuid": 1, owner.String(): 2}
	raw, err := json.Marshal(doc)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, EntitlementsFile), raw, 0o644))

	s := New(dir)
	require.NoError(t, s.Init(context.Background()))

	all, err := s.GetAllEntitlements(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Contains(t, all, owner)
}

func TestInit_CorruptDocument(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, EntitlementsFile), []byte("{not json"), 0o644))

	s := New(dir)
	assert.Error(t, s.Init(context.Background()))
}

func TestOperationsBeforeInit(t *testing.T) {
	s := New(t.TempDir())
	err := s.SetEntitlement(context.Background(), uuid.New(), time.Now())
	assert.ErrorIs(t, err, storage.ErrClosed)
}

func TestNoTempFilesLeftBehind(t *testing.T) {
	dir := t.TempDir()
	s := New(dir)
	ctx := context.Background()
	require.NoError(t, s.Init(ctx))

	for i := 0; i < 5; i++ {
		require.NoError(t, s.SetEntitlement(ctx, uuid.New(), time.Now().Add(time.Hour)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.Contains(t, []string{EntitlementsFile, OwnedItemsFile}, e.Name())
	}
}
