// Package game is the in-memory stand-in for the game server: who is online, who may fly,
// and what each player has been shown.
package game

import (
	"sync"

	"github.com/google/uuid"

	"github.com/osse101/FlightShop_Go/internal/logger"
)

// Timer is the visual countdown attached to a player.
type Timer struct {
	Text     string  `json:"text"`
	Progress float64 `json:"progress"`
}

// Player is a snapshot of one player's game state.
type Player struct {
	ID       uuid.UUID `json:"id"`
	Online   bool      `json:"online"`
	CanFly   bool      `json:"can_fly"`
	FlySpeed float64   `json:"fly_speed"`
	Timer    *Timer    `json:"timer,omitempty"`
}

type player struct {
	online   bool
	canFly   bool
	flySpeed float64
	timer    *Timer
	messages []string
}

// World tracks players. Players stay known after quitting so their message log survives.
type World struct {
	mu      sync.RWMutex
	players map[uuid.UUID]*player
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{players: make(map[uuid.UUID]*player)}
}

// Join marks the player online. Flight capability starts off until an entitlement grants it.
func (w *World) Join(owner uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.getLocked(owner)
	p.online = true
	p.canFly = false
	p.timer = nil
	logger.Debug(LogMsgPlayerJoined, "owner", owner)
}

// Quit marks the player offline and clears their flight state.
func (w *World) Quit(owner uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p, ok := w.players[owner]
	if !ok {
		return
	}
	p.online = false
	p.canFly = false
	p.timer = nil
	logger.Debug(LogMsgPlayerLeft, "owner", owner)
}

func (w *World) IsOnline(owner uuid.UUID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[owner]
	return ok && p.online
}

// SetFlight toggles the player's flight capability. Offline players are ignored.
func (w *World) SetFlight(owner uuid.UUID, enabled bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.players[owner]; ok && p.online {
		p.canFly = enabled
	}
}

func (w *World) CanFly(owner uuid.UUID) bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[owner]
	return ok && p.online && p.canFly
}

func (w *World) SetFlySpeed(owner uuid.UUID, speed float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.getLocked(owner).flySpeed = speed
}

func (w *World) FlySpeed(owner uuid.UUID) float64 {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if p, ok := w.players[owner]; ok {
		return p.flySpeed
	}
	return DefaultFlySpeed
}

// SendMessage appends to the player's chat log, keeping the most recent messages.
func (w *World) SendMessage(owner uuid.UUID, msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	p := w.getLocked(owner)
	p.messages = append(p.messages, msg)
	if over := len(p.messages) - MaxMessageHistory; over > 0 {
		p.messages = append([]string(nil), p.messages[over:]...)
	}
}

func (w *World) ShowTimer(owner uuid.UUID, text string, progress float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.players[owner]; ok && p.online {
		p.timer = &Timer{Text: text, Progress: progress}
	}
}

func (w *World) HideTimer(owner uuid.UUID) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if p, ok := w.players[owner]; ok {
		p.timer = nil
	}
}

// Messages returns a copy of the player's chat log.
func (w *World) Messages(owner uuid.UUID) []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[owner]
	if !ok {
		return nil
	}
	return append([]string(nil), p.messages...)
}

// Timer returns the player's visual countdown, if attached.
func (w *World) Timer(owner uuid.UUID) (Timer, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[owner]
	if !ok || p.timer == nil {
		return Timer{}, false
	}
	return *p.timer, true
}

// Player returns a snapshot of the player.
func (w *World) Player(owner uuid.UUID) (Player, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	p, ok := w.players[owner]
	if !ok {
		return Player{}, false
	}
	snap := Player{ID: owner, Online: p.online, CanFly: p.canFly, FlySpeed: p.flySpeed}
	if p.timer != nil {
		t := *p.timer
		snap.Timer = &t
	}
	return snap, true
}

// Online returns the ids of every online player.
func (w *World) Online() []uuid.UUID {
	w.mu.RLock()
	defer w.mu.RUnlock()
	out := make([]uuid.UUID, 0, len(w.players))
	for id, p := range w.players {
		if p.online {
			out = append(out, id)
		}
	}
	return out
}

func (w *World) getLocked(owner uuid.UUID) *player {
	p, ok := w.players[owner]
	if !ok {
		p = &player{flySpeed: DefaultFlySpeed}
		w.players[owner] = p
	}
	return p
}
