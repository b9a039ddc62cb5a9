// Package economy is the in-memory economy the flight service charges purchases against.
package economy

import (
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/logger"
)

// Ledger holds integer balances. Accounts open lazily with the starting balance.
type Ledger struct {
	starting int64
	ready    atomic.Bool

	mu       sync.Mutex
	balances map[uuid.UUID]int64
}

// NewLedger creates a ready ledger.
func NewLedger(startingBalance int64) *Ledger {
	if startingBalance < 0 {
		startingBalance = 0
	}
	l := &Ledger{
		starting: startingBalance,
		balances: make(map[uuid.UUID]int64),
	}
	l.ready.Store(true)
	return l
}

// IsInitialized reports whether the economy accepts transactions.
func (l *Ledger) IsInitialized() bool {
	return l.ready.Load()
}

// SetInitialized toggles availability, for maintenance windows.
func (l *Ledger) SetInitialized(ready bool) {
	l.ready.Store(ready)
}

// Balance returns the owner's balance.
func (l *Ledger) Balance(owner uuid.UUID) int64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.accountLocked(owner)
}

// Withdraw takes amount from the owner. It fails on a non-positive amount, insufficient
// funds or an unavailable economy.
func (l *Ledger) Withdraw(owner uuid.UUID, amount int64) bool {
	if amount <= 0 || !l.IsInitialized() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	bal := l.accountLocked(owner)
	if bal < amount {
		logger.Debug(LogMsgWithdrawDenied, "owner", owner, "amount", amount, "balance", bal)
		return false
	}
	l.balances[owner] = bal - amount
	logger.Debug(LogMsgWithdrawn, "owner", owner, "amount", amount)
	return true
}

// Deposit credits amount to the owner.
func (l *Ledger) Deposit(owner uuid.UUID, amount int64) bool {
	if amount <= 0 || !l.IsInitialized() {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balances[owner] = l.accountLocked(owner) + amount
	logger.Debug(LogMsgDeposited, "owner", owner, "amount", amount)
	return true
}

func (l *Ledger) accountLocked(owner uuid.UUID) int64 {
	bal, ok := l.balances[owner]
	if !ok {
		bal = l.starting
		l.balances[owner] = bal
		logger.Debug(LogMsgAccountOpened, "owner", owner, "balance", bal)
	}
	return bal
}
