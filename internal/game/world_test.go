package game

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorld_JoinQuit(t *testing.T) {
	w := NewWorld()
	owner := uuid.New()

	assert.False(t, w.IsOnline(owner))
	w.Join(owner)
	assert.True(t, w.IsOnline(owner))
	assert.Equal(t, []uuid.UUID{owner}, w.Online())

	w.SetFlight(owner, true)
	w.ShowTimer(owner, "Flight: 5s", 0.5)
	w.Quit(owner)

	assert.False(t, w.IsOnline(owner))
	assert.False(t, w.CanFly(owner))
	_, ok := w.Timer(owner)
	assert.False(t, ok)
	assert.Empty(t, w.Online())
}

func TestWorld_FlightRequiresOnline(t *testing.T) {
	w := NewWorld()
	owner := uuid.New()

	w.SetFlight(owner, true)
	assert.False(t, w.CanFly(owner))

	w.Join(owner)
	w.SetFlight(owner, true)
	assert.True(t, w.CanFly(owner))
	w.SetFlight(owner, false)
	assert.False(t, w.CanFly(owner))
}

func TestWorld_Timer(t *testing.T) {
	w := NewWorld()
	owner := uuid.New()
	w.Join(owner)

	w.ShowTimer(owner, "Flight: 10s", 0.25)
	timer, ok := w.Timer(owner)
	require.True(t, ok)
	assert.Equal(t, Timer{Text: "Flight: 10s", Progress: 0.25}, timer)

	p, ok := w.Player(owner)
	require.True(t, ok)
	require.NotNil(t, p.Timer)
	assert.Equal(t, "Flight: 10s", p.Timer.Text)

	w.HideTimer(owner)
	_, ok = w.Timer(owner)
	assert.False(t, ok)
}

func TestWorld_FlySpeed(t *testing.T) {
	w := NewWorld()
	owner := uuid.New()

	assert.Equal(t, DefaultFlySpeed, w.FlySpeed(owner))
	w.SetFlySpeed(owner, 0.3)
	assert.Equal(t, 0.3, w.FlySpeed(owner))
}

func TestWorld_MessageHistoryCapped(t *testing.T) {
	w := NewWorld()
	owner := uuid.New()

	for i := 0; i < MaxMessageHistory+5; i++ {
		w.SendMessage(owner, fmt.Sprintf("msg %d", i))
	}

	msgs := w.Messages(owner)
	require.Len(t, msgs, MaxMessageHistory)
	assert.Equal(t, "msg 5", msgs[0])
	assert.Equal(t, fmt.Sprintf("msg %d", MaxMessageHistory+4), msgs[len(msgs)-1])
}
