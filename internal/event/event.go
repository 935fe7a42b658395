// Package event defines world ambience events: the Event contract the
// scheduler drives, and the weighted-selection ambience events built on it.
package event

import (
	"context"
	"errors"

	"github.com/nidhogg/ambience/internal/sound"
)

// ErrAlreadyInitialized is returned when Init is called on a live event.
var ErrAlreadyInitialized = errors.New("event already initialized")

// Resolver looks up sounds by identifier.
type Resolver interface {
	Resolve(id sound.ID) (sound.Sound, error)
}

// World is the simulation context an event initializes against.
// Events read it and dispatch to its Player; they never modify it.
type World struct {
	Name   string
	Tick   uint64
	Sounds Resolver
	Player sound.Player
}

// Activation is what a single Init produced.
type Activation struct {
	Event    string   `json:"event"`
	Outcome  string   `json:"outcome"`
	Draw     int      `json:"draw"`
	Sound    sound.ID `json:"sound"`
	Duration int      `json:"duration"`
}

// Event is a short-lived unit of world behavior.
//
// The owner calls Init exactly once, then reads Duration to learn how many
// ticks to keep the event live before retiring it.
type Event interface {
	Name() string
	Init(ctx context.Context, w *World) (Activation, error)
	Duration() int
}

// Base carries the duration bookkeeping shared by concrete events.
type Base struct {
	name        string
	duration    int
	initialized bool
}

// NewBase creates a Base with the given default duration in ticks.
func NewBase(name string, defaultDuration int) Base {
	if defaultDuration < 0 {
		defaultDuration = 0
	}
	return Base{name: name, duration: defaultDuration}
}

// Name returns the event name.
func (b *Base) Name() string { return b.name }

// Duration returns the active window in ticks. Before Init it is the default.
func (b *Base) Duration() int { return b.duration }

// Initialized reports whether Init has run.
func (b *Base) Initialized() bool { return b.initialized }

// begin marks the event initialized, failing on a second call.
func (b *Base) begin() error {
	if b.initialized {
		return ErrAlreadyInitialized
	}
	b.initialized = true
	return nil
}

// extend lengthens the duration to d. A shorter d never shrinks the window.
func (b *Base) extend(d int) {
	if d > b.duration {
		b.duration = d
	}
}
