// Package file stores entitlements in a JSON document that is rewritten wholesale on
// every mutation. Intended for small servers; every write costs a full file rewrite.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// ownedDocument is the on-disk shape of owned_items.json: kind -> owner -> name -> ms epoch.
type ownedDocument map[domain.ItemKind]map[string]map[string]int64

// Store is the flat-file backend. Owned items live in a sibling document.
type Store struct {
	dir string

	mu           sync.Mutex
	entitlements map[uuid.UUID]int64
	owned        map[domain.ItemKind]map[uuid.UUID]map[string]int64
	ready        bool
	closed       bool
}

// New creates a file backend rooted at dir.
func New(dir string) *Store {
	return &Store{dir: dir}
}

var _ storage.Backend = (*Store)(nil)

// Init creates the data directory and loads existing documents. Calling it again on an
// open store is a no-op.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ready && !s.closed {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("%s: %w", ErrMsgCreateDataDir, err)
	}

	rawEntitlements := map[string]int64{}
	if err := readJSON(s.path(EntitlementsFile), &rawEntitlements); err != nil {
		return err
	}
	rawOwned := ownedDocument{}
	if err := readJSON(s.path(OwnedItemsFile), &rawOwned); err != nil {
		return err
	}

	log := logger.FromContext(ctx)
	s.entitlements = make(map[uuid.UUID]int64, len(rawEntitlements))
	for key, ms := range rawEntitlements {
		owner, err := uuid.Parse(key)
		if err != nil {
			log.Warn(LogMsgSkippingInvalidOwner, "owner", key)
			continue
		}
		s.entitlements[owner] = ms
	}

	s.owned = map[domain.ItemKind]map[uuid.UUID]map[string]int64{
		domain.ItemKindEffect: {},
		domain.ItemKindSpeed:  {},
	}
	for kind, owners := range rawOwned {
		if !kind.Valid() {
			continue
		}
		for key, names := range owners {
			owner, err := uuid.Parse(key)
			if err != nil {
				log.Warn(LogMsgSkippingInvalidOwner, "owner", key)
				continue
			}
			s.owned[kind][owner] = names
		}
	}

	s.ready = true
	s.closed = false
	log.Info(LogMsgLoaded, "dir", s.dir, "entitlements", len(s.entitlements))
	return nil
}

// Close marks the store closed. Every mutation is already on disk.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func (s *Store) SetEntitlement(_ context.Context, owner uuid.UUID, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}

	prev, had := s.entitlements[owner]
	s.entitlements[owner] = expiresAt.UnixMilli()
	if err := s.saveEntitlements(); err != nil {
		if had {
			s.entitlements[owner] = prev
		} else {
			delete(s.entitlements, owner)
		}
		return err
	}
	return nil
}

func (s *Store) GetEntitlement(_ context.Context, owner uuid.UUID) (time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return time.Time{}, false, err
	}
	ms, ok := s.entitlements[owner]
	if !ok {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms), true, nil
}

func (s *Store) RemoveEntitlement(_ context.Context, owner uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	prev, had := s.entitlements[owner]
	if !had {
		return nil
	}
	delete(s.entitlements, owner)
	if err := s.saveEntitlements(); err != nil {
		s.entitlements[owner] = prev
		return err
	}
	return nil
}

func (s *Store) GetAllEntitlements(context.Context) (map[uuid.UUID]time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]time.Time, len(s.entitlements))
	for owner, ms := range s.entitlements {
		out[owner] = time.UnixMilli(ms)
	}
	return out, nil
}

func (s *Store) AddOwnedItem(_ context.Context, item domain.OwnedItem) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(item.Kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	names := s.owned[item.Kind][item.OwnerID]
	if _, exists := names[item.Name]; exists {
		return nil
	}
	if names == nil {
		names = make(map[string]int64)
		s.owned[item.Kind][item.OwnerID] = names
	}
	names[item.Name] = item.PurchasedAt.UnixMilli()

	if err := s.saveOwned(); err != nil {
		delete(names, item.Name)
		return err
	}
	return nil
}

func (s *Store) RemoveOwnedItem(_ context.Context, kind domain.ItemKind, owner uuid.UUID, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return err
	}
	names := s.owned[kind][owner]
	prev, exists := names[name]
	if !exists {
		return nil
	}
	delete(names, name)
	if len(names) == 0 {
		delete(s.owned[kind], owner)
	}

	if err := s.saveOwned(); err != nil {
		if len(names) == 0 {
			s.owned[kind][owner] = names
		}
		names[name] = prev
		return err
	}
	return nil
}

func (s *Store) GetOwnedItems(_ context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	return toItems(kind, owner, s.owned[kind][owner]), nil
}

func (s *Store) GetAllOwnedItems(_ context.Context, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID][]domain.OwnedItem, len(s.owned[kind]))
	for owner, names := range s.owned[kind] {
		out[owner] = toItems(kind, owner, names)
	}
	return out, nil
}

func (s *Store) checkOpen() error {
	if !s.ready || s.closed {
		return storage.ErrClosed
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *Store) saveEntitlements() error {
	doc := make(map[string]int64, len(s.entitlements))
	for owner, ms := range s.entitlements {
		doc[owner.String()] = ms
	}
	return writeJSON(s.path(EntitlementsFile), doc)
}

func (s *Store) saveOwned() error {
	doc := make(ownedDocument, len(s.owned))
	for kind, owners := range s.owned {
		byOwner := make(map[string]map[string]int64, len(owners))
		for owner, names := range owners {
			byOwner[owner.String()] = names
		}
		doc[kind] = byOwner
	}
	return writeJSON(s.path(OwnedItemsFile), doc)
}

func toItems(kind domain.ItemKind, owner uuid.UUID, names map[string]int64) []domain.OwnedItem {
	items := make([]domain.OwnedItem, 0, len(names))
	for name, ms := range names {
		items = append(items, domain.OwnedItem{
			OwnerID:     owner,
			Kind:        kind,
			Name:        name,
			PurchasedAt: time.UnixMilli(ms),
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgReadFile, err)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%s %s: %w", ErrMsgDecodeFile, filepath.Base(path), err)
	}
	return nil
}

// writeJSON replaces path atomically via a temp file in the same directory.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteFile, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("%s: %w", ErrMsgWriteFile, err)
	}
	tmpName := tmp.Name()

	_, werr := tmp.Write(data)
	if werr == nil {
		werr = tmp.Sync()
	}
	if cerr := tmp.Close(); werr == nil {
		werr = cerr
	}
	if werr == nil {
		werr = os.Rename(tmpName, path)
	}
	if werr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%s: %w", ErrMsgWriteFile, werr)
	}
	return nil
}
