// Package redisstore keeps entitlements and owned items in Redis hashes.
//
// Layout:
//
//	<prefix>:entitlements                hash owner -> expiry (ms epoch)
//	<prefix>:owned:<kind>:<owner>        hash item  -> purchase time (ms epoch)
//	<prefix>:owned:<kind>:owners         set of owners with at least one item
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/retry"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// Config configures the Redis backend.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
	Executor *retry.Executor
}

// Store is the Redis backend.
type Store struct {
	cfg  Config
	exec *retry.Executor

	mu     sync.RWMutex
	client *redis.Client
}

// New creates a Redis backend. Nothing is dialled until Init.
func New(cfg Config) *Store {
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	exec := cfg.Executor
	if exec == nil {
		exec = retry.NewExecutor(retry.DefaultPolicy())
	}
	return &Store{cfg: cfg, exec: exec}
}

var _ storage.Backend = (*Store)(nil)

// IsRetryable classifies Redis failures: a missing key or closed client is final,
// connectivity problems are transient.
func IsRetryable(err error) bool {
	if errors.Is(err, redis.Nil) || errors.Is(err, redis.ErrClosed) || errors.Is(err, storage.ErrClosed) {
		return false
	}
	return retry.IsTransient(err)
}

// Init connects and pings the server. A failed ping is fatal.
func (s *Store) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client != nil {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     s.cfg.Addr,
		Password: s.cfg.Password,
		DB:       s.cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return fmt.Errorf("%s: %w", ErrMsgPingFailed, err)
	}

	s.client = client
	logger.FromContext(ctx).Info(LogMsgReady, "addr", s.cfg.Addr, "prefix", s.cfg.Prefix)
	return nil
}

// Close closes the client. Safe to call more than once.
func (s *Store) Close(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.client == nil {
		return nil
	}
	err := s.client.Close()
	s.client = nil
	return err
}

func (s *Store) SetEntitlement(ctx context.Context, owner uuid.UUID, expiresAt time.Time) error {
	return s.run(ctx, OpSetEntitlement, func(ctx context.Context, c *redis.Client) error {
		return c.HSet(ctx, s.entitlementsKey(), owner.String(), expiresAt.UnixMilli()).Err()
	})
}

func (s *Store) GetEntitlement(ctx context.Context, owner uuid.UUID) (time.Time, bool, error) {
	var (
		ms    int64
		found bool
	)
	err := s.run(ctx, OpGetEntitlement, func(ctx context.Context, c *redis.Client) error {
		v, err := c.HGet(ctx, s.entitlementsKey(), owner.String()).Int64()
		if errors.Is(err, redis.Nil) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		ms, found = v, true
		return nil
	})
	if err != nil || !found {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms), true, nil
}

func (s *Store) RemoveEntitlement(ctx context.Context, owner uuid.UUID) error {
	return s.run(ctx, OpRemoveEntitlement, func(ctx context.Context, c *redis.Client) error {
		return c.HDel(ctx, s.entitlementsKey(), owner.String()).Err()
	})
}

func (s *Store) GetAllEntitlements(ctx context.Context) (map[uuid.UUID]time.Time, error) {
	var raw map[string]string
	err := s.run(ctx, OpGetAllEntitlements, func(ctx context.Context, c *redis.Client) error {
		var err error
		raw, err = c.HGetAll(ctx, s.entitlementsKey()).Result()
		return err
	})
	if err != nil {
		return nil, err
	}

	out := make(map[uuid.UUID]time.Time, len(raw))
	for key, value := range raw {
		owner, oerr := uuid.Parse(key)
		ms, verr := strconv.ParseInt(value, 10, 64)
		if oerr != nil || verr != nil {
			logger.FromContext(ctx).Warn(LogMsgSkippingInvalidRow, "key", s.entitlementsKey(), "field", key)
			continue
		}
		out[owner] = time.UnixMilli(ms)
	}
	return out, nil
}

func (s *Store) AddOwnedItem(ctx context.Context, item domain.OwnedItem) error {
	if !item.Kind.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(item.Kind))
	}
	return s.run(ctx, OpAddOwnedItem, func(ctx context.Context, c *redis.Client) error {
		_, err := c.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			// HSetNX keeps the first purchase time
			pipe.HSetNX(ctx, s.ownedKey(item.Kind, item.OwnerID), item.Name, item.PurchasedAt.UnixMilli())
			pipe.SAdd(ctx, s.ownersKey(item.Kind), item.OwnerID.String())
			return nil
		})
		return err
	})
}

func (s *Store) RemoveOwnedItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(kind))
	}
	return s.run(ctx, OpRemoveOwnedItem, func(ctx context.Context, c *redis.Client) error {
		key := s.ownedKey(kind, owner)
		if err := c.HDel(ctx, key, name).Err(); err != nil {
			return err
		}
		left, err := c.HLen(ctx, key).Result()
		if err != nil {
			return err
		}
		if left == 0 {
			return c.SRem(ctx, s.ownersKey(kind), owner.String()).Err()
		}
		return nil
	})
}

func (s *Store) GetOwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(kind))
	}
	var raw map[string]string
	err := s.run(ctx, OpGetOwnedItems, func(ctx context.Context, c *redis.Client) error {
		var err error
		raw, err = c.HGetAll(ctx, s.ownedKey(kind, owner)).Result()
		return err
	})
	if err != nil {
		return nil, err
	}
	return toItems(kind, owner, raw), nil
}

func (s *Store) GetAllOwnedItems(ctx context.Context, kind domain.ItemKind) (map[uuid.UUID][]domain.OwnedItem, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidItemKind, string(kind))
	}

	out := make(map[uuid.UUID][]domain.OwnedItem)
	err := s.run(ctx, OpGetAllOwnedItems, func(ctx context.Context, c *redis.Client) error {
		members, err := c.SMembers(ctx, s.ownersKey(kind)).Result()
		if err != nil {
			return err
		}

		owners := make([]uuid.UUID, 0, len(members))
		cmds := make([]*redis.MapStringStringCmd, 0, len(members))
		_, err = c.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, m := range members {
				owner, perr := uuid.Parse(m)
				if perr != nil {
					continue
				}
				owners = append(owners, owner)
				cmds = append(cmds, pipe.HGetAll(ctx, s.ownedKey(kind, owner)))
			}
			return nil
		})
		if err != nil {
			return err
		}

		clear(out)
		for i, cmd := range cmds {
			if items := toItems(kind, owners[i], cmd.Val()); len(items) > 0 {
				out[owners[i]] = items
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Diagnostics reports retry counters.
func (s *Store) Diagnostics() storage.Diagnostics {
	stats := s.exec.Stats()
	return storage.Diagnostics{Backend: string(storage.TypeRedis), Retry: &stats}
}

func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context, c *redis.Client) error) error {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()

	if client == nil {
		return storage.ErrClosed
	}
	return s.exec.Execute(ctx, op, func(ctx context.Context) error {
		return fn(ctx, client)
	}, IsRetryable)
}

func (s *Store) entitlementsKey() string {
	return s.cfg.Prefix + ":entitlements"
}

func (s *Store) ownedKey(kind domain.ItemKind, owner uuid.UUID) string {
	return s.cfg.Prefix + ":owned:" + string(kind) + ":" + owner.String()
}

func (s *Store) ownersKey(kind domain.ItemKind) string {
	return s.cfg.Prefix + ":owned:" + string(kind) + ":owners"
}

func toItems(kind domain.ItemKind, owner uuid.UUID, raw map[string]string) []domain.OwnedItem {
	items := make([]domain.OwnedItem, 0, len(raw))
	for name, value := range raw {
		ms, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			continue
		}
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
