package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBusFanOut(t *testing.T) {
	bus := NewBus()

	a, b := 0, 0
	bus.Subscribe(EventProgressUpdated, func(Event) { a++ })
	unsub := bus.Subscribe(EventProgressUpdated, func(Event) { b++ })

	bus.Publish(EventProgressUpdated, Event{UserID: 1})
	assert.Equal(t, 1, a)
	assert.Equal(t, 1, b)

	unsub()
	bus.Publish(EventProgressUpdated, Event{UserID: 1})
	assert.Equal(t, 2, a)
	assert.Equal(t, 1, b)
}

func TestBusTopicsIndependent(t *testing.T) {
	bus := NewBus()

	got := 0
	bus.Subscribe(EventSubjectProgressUpdated, func(Event) { got++ })

	bus.Publish(EventProgressUpdated, Event{})
	assert.Equal(t, 0, got)

	// publishing with no subscribers is a no-op, not a panic
	bus.Publish("unknown-topic", Event{})
}

func TestEarnedBadges(t *testing.T) {
	assert.Nil(t, EarnedBadges(StreakState{}))

	state := StreakState{
		Current: 2,
		Longest: 7,
		DatesStudied: []string{
			"2025-03-15", "2025-03-14", "2025-03-12", "2025-03-11", "2025-03-10",
			"2025-03-09", "2025-03-08", "2025-03-07", "2025-03-06", "2025-03-05",
		},
	}

	codes := EarnedBadges(state)
	assert.Equal(t, []string{"first_session", "streak_3", "streak_7", "days_10"}, codes)
}
