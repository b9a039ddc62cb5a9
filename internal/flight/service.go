// Package flight is the command layer: purchases, grants, revocations and the join/quit
// lifecycle for timed and permanent flight.
package flight

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/cache"
	"github.com/osse101/FlightShop_Go/internal/concurrency"
	"github.com/osse101/FlightShop_Go/internal/countdown"
	"github.com/osse101/FlightShop_Go/internal/domain"
	"github.com/osse101/FlightShop_Go/internal/logger"
	"github.com/osse101/FlightShop_Go/internal/metrics"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// Service defines the interface for flight operations
type Service interface {
	BuyTime(ctx context.Context, owner uuid.UUID, d time.Duration) (domain.FlightStatus, error)
	BuyPermanent(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error)
	Grant(ctx context.Context, owner uuid.UUID, d time.Duration) (domain.FlightStatus, error)
	GrantPermanent(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error)
	Revoke(ctx context.Context, owner uuid.UUID) error
	// RevokeExpired removes the owner's entitlement only if it has run out by now.
	RevokeExpired(ctx context.Context, owner uuid.UUID) error
	Status(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error)

	HandleJoin(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error)
	HandleQuit(ctx context.Context, owner uuid.UUID)

	BuyItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) (domain.OwnedItem, error)
	OwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error)
	SelectSpeed(ctx context.Context, owner uuid.UUID, name string) (domain.CatalogItem, error)
	Catalog(kind domain.ItemKind) []domain.CatalogItem

	Diagnostics(ctx context.Context) Diagnostics
	RefreshCache(ctx context.Context) (int, error)
	AllEntitlements(ctx context.Context) ([]domain.Entitlement, error)
}

// Pricing sets what time and permanent flight cost.
type Pricing struct {
	PerMinute int64
	Permanent int64
}

// Diagnostics is the operator view of the flight subsystem.
type Diagnostics struct {
	Storage          storage.Diagnostics `json:"storage"`
	Cache            cache.Stats         `json:"cache"`
	ActiveCountdowns int                 `json:"active_countdowns"`
	EconomyReady     bool                `json:"economy_ready"`
}

// Option customises the service.
type Option func(*service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *service) { s.now = now }
}

// WithCatalog replaces the default catalog.
func WithCatalog(c *Catalog) Option {
	return func(s *service) { s.catalog = c }
}

type service struct {
	store      Store
	economy    Economy
	game       Game
	countdowns Countdowns
	tasks      TaskRunner
	pricing    Pricing
	catalog    *Catalog
	locks      *concurrency.LockManager[uuid.UUID]
	now        func() time.Time
}

// NewService creates a new flight service
func NewService(store Store, economy Economy, game Game, countdowns Countdowns, tasks TaskRunner, pricing Pricing, opts ...Option) Service {
	s := &service{
		store:      store,
		economy:    economy,
		game:       game,
		countdowns: countdowns,
		tasks:      tasks,
		pricing:    pricing,
		catalog:    DefaultCatalog(),
		locks:      concurrency.NewLockManager[uuid.UUID](),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TimeCost prices d at perMinute, charging every started minute.
func TimeCost(d time.Duration, perMinute int64) int64 {
	if d <= 0 {
		return 0
	}
	minutes := int64((d + time.Minute - 1) / time.Minute)
	return minutes * perMinute
}

func (s *service) BuyTime(ctx context.Context, owner uuid.UUID, d time.Duration) (domain.FlightStatus, error) {
	if d <= 0 {
		return domain.FlightStatus{}, domain.ErrInvalidDuration
	}
	return s.extend(ctx, owner, d, TimeCost(d, s.pricing.PerMinute), PurchaseKindTime)
}

func (s *service) BuyPermanent(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	return s.extend(ctx, owner, 0, s.pricing.Permanent, PurchaseKindPermanent)
}

func (s *service) Grant(ctx context.Context, owner uuid.UUID, d time.Duration) (domain.FlightStatus, error) {
	if d <= 0 {
		return domain.FlightStatus{}, domain.ErrInvalidDuration
	}
	return s.extend(ctx, owner, d, 0, "")
}

func (s *service) GrantPermanent(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	return s.extend(ctx, owner, 0, 0, "")
}

// extend writes a new expiry for owner: d on top of any remaining time, or permanent when
// d is zero. A non-empty kind charges cost first and refunds it if the write fails.
func (s *service) extend(ctx context.Context, owner uuid.UUID, d time.Duration, cost int64, kind string) (domain.FlightStatus, error) {
	log := logger.FromContext(ctx)
	paid := kind != ""

	mu := s.locks.GetLock(owner)
	mu.Lock()
	defer mu.Unlock()

	current, found, err := s.store.GetEntitlement(ctx, owner)
	if err != nil {
		return domain.FlightStatus{}, s.storageErr(ErrMsgLoadEntitlement, err)
	}
	if found && domain.IsPermanent(current) {
		return domain.FlightStatus{}, domain.ErrAlreadyPermanent
	}

	now := s.now()
	expiresAt := domain.PermanentExpiry
	if d > 0 {
		base := now
		if found && current.After(now) {
			base = current
		}
		expiresAt = base.Add(d)
	}

	if paid {
		if err := s.charge(owner, cost); err != nil {
			return domain.FlightStatus{}, err
		}
	}

	if err := s.store.SetEntitlement(ctx, owner, expiresAt); err != nil {
		wrapped := s.storageErr(ErrMsgSaveEntitlement, err)
		if paid {
			return domain.FlightStatus{}, s.refund(ctx, owner, cost, wrapped)
		}
		return domain.FlightStatus{}, wrapped
	}

	if paid {
		metrics.Purchases.WithLabelValues(kind).Inc()
		metrics.MoneySpent.Add(float64(cost))
		log.Info(LogMsgPurchaseCompleted, "owner", owner, "kind", kind, "cost", cost, "expires_at", expiresAt)
	} else {
		log.Info(LogMsgGrantCompleted, "owner", owner, "expires_at", expiresAt)
	}

	s.activate(ctx, owner, expiresAt, s.enabledMessage(expiresAt, now))
	return s.status(owner, expiresAt, true, now), nil
}

func (s *service) Revoke(ctx context.Context, owner uuid.UUID) error {
	mu := s.locks.GetLock(owner)
	mu.Lock()
	defer mu.Unlock()

	_, found, err := s.store.GetEntitlement(ctx, owner)
	if err != nil {
		return s.storageErr(ErrMsgLoadEntitlement, err)
	}
	if !found {
		return domain.ErrNoEntitlement
	}
	if err := s.store.RemoveEntitlement(ctx, owner); err != nil {
		return s.storageErr(ErrMsgSaveEntitlement, err)
	}

	logger.FromContext(ctx).Info(LogMsgRevoked, "owner", owner)
	s.post(ctx, func() {
		s.countdowns.Cancel(owner)
		if s.game.IsOnline(owner) {
			s.game.SetFlight(owner, false)
			s.game.SendMessage(owner, MsgFlightRevoked)
		}
	})
	return nil
}

// RevokeExpired is the countdown's expiry path. It runs on a worker some time after the
// tick that expired the owner, so it re-reads the entitlement under the owner's lock and
// keeps one that a later purchase or grant made active again.
func (s *service) RevokeExpired(ctx context.Context, owner uuid.UUID) error {
	log := logger.FromContext(ctx)

	mu := s.locks.GetLock(owner)
	mu.Lock()
	defer mu.Unlock()

	expiresAt, found, err := s.store.GetEntitlement(ctx, owner)
	if err != nil {
		return s.storageErr(ErrMsgLoadEntitlement, err)
	}
	if !found {
		return nil
	}
	if ent := (domain.Entitlement{OwnerID: owner, ExpiresAt: expiresAt}); ent.Active(s.now()) {
		log.Info(LogMsgExpiryRevokeSkipped, "owner", owner, "expires_at", expiresAt)
		return nil
	}
	if err := s.store.RemoveEntitlement(ctx, owner); err != nil {
		return s.storageErr(ErrMsgSaveEntitlement, err)
	}
	log.Info(LogMsgExpiredRevoked, "owner", owner)
	return nil
}

func (s *service) Status(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	expiresAt, found, err := s.store.GetEntitlement(ctx, owner)
	if err != nil {
		return domain.FlightStatus{}, s.storageErr(ErrMsgLoadEntitlement, err)
	}
	return s.status(owner, expiresAt, found, s.now()), nil
}

// HandleJoin brings an owner online and resumes their flight from storage. An entitlement
// that ran out while they were away is removed. The owner's lock is held until the game
// update is posted so a concurrent purchase cannot be read as expired and deleted.
func (s *service) HandleJoin(ctx context.Context, owner uuid.UUID) (domain.FlightStatus, error) {
	mu := s.locks.GetLock(owner)
	mu.Lock()
	defer mu.Unlock()

	expiresAt, found, err := s.store.GetEntitlement(ctx, owner)
	if err != nil {
		s.post(ctx, func() { s.game.Join(owner) })
		return domain.FlightStatus{}, s.storageErr(ErrMsgLoadEntitlement, err)
	}

	now := s.now()
	ent := domain.Entitlement{OwnerID: owner, ExpiresAt: expiresAt}
	active := found && ent.Active(now)

	if found && !active {
		logger.FromContext(ctx).Info(LogMsgExpiredOnJoin, "owner", owner)
		if err := s.store.RemoveEntitlement(ctx, owner); err != nil {
			logger.FromContext(ctx).Warn(LogMsgExpiredCleanup, "owner", owner, "error", err)
		}
	}

	s.post(ctx, func() {
		s.game.Join(owner)
		if !active {
			return
		}
		s.game.SetFlight(owner, true)
		s.countdowns.Start(owner, expiresAt)
		if !ent.Permanent() {
			s.game.SendMessage(owner, fmt.Sprintf(MsgFlightResumed, countdown.FormatRemaining(ent.Remaining(now))))
		}
	})

	st := s.status(owner, expiresAt, active, now)
	st.Online = true
	st.Flying = active
	return st, nil
}

// HandleQuit drops the owner's countdown. The persisted entitlement is untouched.
func (s *service) HandleQuit(ctx context.Context, owner uuid.UUID) {
	s.post(ctx, func() {
		s.countdowns.Disconnect(owner)
		s.game.Quit(owner)
	})
}

func (s *service) BuyItem(ctx context.Context, kind domain.ItemKind, owner uuid.UUID, name string) (domain.OwnedItem, error) {
	if !kind.Valid() {
		return domain.OwnedItem{}, domain.ErrInvalidItemKind
	}
	item, ok := s.catalog.Lookup(kind, name)
	if !ok {
		return domain.OwnedItem{}, fmt.Errorf("%w: %s", domain.ErrUnknownItem, name)
	}

	mu := s.locks.GetLock(owner)
	mu.Lock()
	defer mu.Unlock()

	owned, err := s.store.GetOwnedItems(ctx, kind, owner)
	if err != nil {
		return domain.OwnedItem{}, s.storageErr(ErrMsgLoadOwnedItems, err)
	}
	for _, o := range owned {
		if o.Name == item.Name {
			return domain.OwnedItem{}, domain.ErrAlreadyOwned
		}
	}

	if err := s.charge(owner, item.Price); err != nil {
		return domain.OwnedItem{}, err
	}

	purchase := domain.OwnedItem{
		OwnerID:     owner,
		Kind:        kind,
		Name:        item.Name,
		PurchasedAt: time.UnixMilli(s.now().UnixMilli()),
	}
	if err := s.store.AddOwnedItem(ctx, purchase); err != nil {
		return domain.OwnedItem{}, s.refund(ctx, owner, item.Price, s.storageErr(ErrMsgSaveOwnedItem, err))
	}

	metrics.Purchases.WithLabelValues(string(kind)).Inc()
	metrics.MoneySpent.Add(float64(item.Price))
	logger.FromContext(ctx).Info(LogMsgItemPurchased, "owner", owner, "kind", kind, "item", item.Name, "price", item.Price)

	msg := fmt.Sprintf(MsgItemPurchased, DisplayName(item.Name))
	s.post(ctx, func() {
		if s.game.IsOnline(owner) {
			s.game.SendMessage(owner, msg)
		}
	})
	return purchase, nil
}

func (s *service) OwnedItems(ctx context.Context, kind domain.ItemKind, owner uuid.UUID) ([]domain.OwnedItem, error) {
	if !kind.Valid() {
		return nil, domain.ErrInvalidItemKind
	}
	items, err := s.store.GetOwnedItems(ctx, kind, owner)
	if err != nil {
		return nil, s.storageErr(ErrMsgLoadOwnedItems, err)
	}
	return items, nil
}

// SelectSpeed applies a speed tier. Free tiers need no purchase.
func (s *service) SelectSpeed(ctx context.Context, owner uuid.UUID, name string) (domain.CatalogItem, error) {
	item, ok := s.catalog.Lookup(domain.ItemKindSpeed, name)
	if !ok {
		return domain.CatalogItem{}, fmt.Errorf("%w: %s", domain.ErrUnknownItem, name)
	}

	if item.Price > 0 {
		owned, err := s.store.GetOwnedItems(ctx, domain.ItemKindSpeed, owner)
		if err != nil {
			return domain.CatalogItem{}, s.storageErr(ErrMsgLoadOwnedItems, err)
		}
		has := false
		for _, o := range owned {
			if o.Name == item.Name {
				has = true
				break
			}
		}
		if !has {
			return domain.CatalogItem{}, domain.ErrItemNotOwned
		}
	}

	msg := fmt.Sprintf(MsgSpeedSelected, DisplayName(item.Name))
	s.post(ctx, func() {
		s.game.SetFlySpeed(owner, item.Speed)
		if s.game.IsOnline(owner) {
			s.game.SendMessage(owner, msg)
		}
	})
	return item, nil
}

func (s *service) Catalog(kind domain.ItemKind) []domain.CatalogItem {
	return s.catalog.List(kind)
}

func (s *service) Diagnostics(ctx context.Context) Diagnostics {
	return Diagnostics{
		Storage:          s.store.Diagnostics(),
		Cache:            s.store.CacheStats(),
		ActiveCountdowns: s.countdowns.Active(),
		EconomyReady:     s.economy.IsInitialized(),
	}
}

func (s *service) RefreshCache(ctx context.Context) (int, error) {
	n, err := s.store.RefreshCache(ctx)
	if err != nil {
		return 0, s.storageErr(ErrMsgLoadEntitlement, err)
	}
	logger.FromContext(ctx).Info(LogMsgCacheRefreshed, "entries", n)
	return n, nil
}

func (s *service) AllEntitlements(ctx context.Context) ([]domain.Entitlement, error) {
	all, err := s.store.GetAllEntitlements(ctx)
	if err != nil {
		return nil, s.storageErr(ErrMsgLoadEntitlement, err)
	}
	out := make([]domain.Entitlement, 0, len(all))
	for owner, expiresAt := range all {
		out = append(out, domain.Entitlement{OwnerID: owner, ExpiresAt: expiresAt})
	}
	slices.SortFunc(out, func(a, b domain.Entitlement) int {
		return a.ExpiresAt.Compare(b.ExpiresAt)
	})
	return out, nil
}

// charge withdraws cost, mapping failures to domain errors. Free purchases skip the
// economy entirely.
func (s *service) charge(owner uuid.UUID, cost int64) error {
	if cost <= 0 {
		return nil
	}
	if !s.economy.IsInitialized() {
		return domain.ErrEconomyUnavailable
	}
	if !s.economy.Withdraw(owner, cost) {
		return domain.ErrInsufficientFunds
	}
	return nil
}

// refund returns cost after a failed write and reports cause, plus ErrRefundFailed if the
// deposit was refused.
func (s *service) refund(ctx context.Context, owner uuid.UUID, cost int64, cause error) error {
	log := logger.FromContext(ctx)
	if cost <= 0 {
		return cause
	}
	log.Warn(LogMsgRefunding, "owner", owner, "amount", cost, "error", cause)
	if !s.economy.Deposit(owner, cost) {
		log.Error(LogMsgRefundFailed, "owner", owner, "amount", cost)
		return errors.Join(cause, domain.ErrRefundFailed)
	}
	return cause
}

// activate turns flight on for an online owner and (re)starts their countdown.
func (s *service) activate(ctx context.Context, owner uuid.UUID, expiresAt time.Time, msg string) {
	s.post(ctx, func() {
		if !s.game.IsOnline(owner) {
			return
		}
		s.game.SetFlight(owner, true)
		s.countdowns.Start(owner, expiresAt)
		s.game.SendMessage(owner, msg)
	})
}

func (s *service) post(ctx context.Context, fn func()) {
	if !s.tasks.RunTask(fn) {
		logger.FromContext(ctx).Warn(LogMsgTickRejected)
	}
}

func (s *service) enabledMessage(expiresAt, now time.Time) string {
	if domain.IsPermanent(expiresAt) {
		return MsgFlightPermanent
	}
	return fmt.Sprintf(MsgFlightEnabled, countdown.FormatRemaining(expiresAt.Sub(now)))
}

func (s *service) status(owner uuid.UUID, expiresAt time.Time, found bool, now time.Time) domain.FlightStatus {
	st := domain.FlightStatus{
		OwnerID: owner,
		Online:  s.game.IsOnline(owner),
		Flying:  s.game.CanFly(owner),
	}
	if !found {
		return st
	}
	ent := domain.Entitlement{OwnerID: owner, ExpiresAt: expiresAt}
	st.Active = ent.Active(now)
	st.Permanent = ent.Permanent()
	if !st.Permanent {
		st.ExpiresAt = expiresAt
		st.RemainingSeconds = int64(ent.Remaining(now) / time.Second)
	}
	return st
}

func (s *service) storageErr(msg string, err error) error {
	return fmt.Errorf("%s: %w: %w", msg, domain.ErrStorageUnavailable, err)
}
