package event

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nidhogg/ambience/internal/sound"
)

// Ambience plays one sound drawn from an outcome table and stays live for the
// default duration, extended when the drawn outcome or its sound runs longer.
type Ambience struct {
	Base
	table     *Table
	newSource SourceFunc
}

// Option configures an Ambience.
type Option func(*Ambience)

// WithSource replaces the random source constructor.
func WithSource(fn SourceFunc) Option {
	return func(a *Ambience) {
		if fn != nil {
			a.newSource = fn
		}
	}
}

// NewAmbience creates an ambience event over table.
func NewAmbience(name string, defaultDuration int, table *Table, opts ...Option) *Ambience {
	a := &Ambience{
		Base:      NewBase(name, defaultDuration),
		table:     table,
		newSource: NewSource,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Table returns the outcome table.
func (a *Ambience) Table() *Table { return a.table }

// Init implements Event. It draws once, resolves the outcome's sound, extends
// the duration to cover the outcome and dispatches exactly one play request.
// An unresolvable sound is a configuration error and is returned as is.
func (a *Ambience) Init(ctx context.Context, w *World) (Activation, error) {
	if err := a.begin(); err != nil {
		return Activation{}, err
	}

	r, o := a.table.Pick(a.newSource())

	snd, err := w.Sounds.Resolve(o.Sound)
	if err != nil {
		return Activation{}, fmt.Errorf("%s outcome %q: %w", a.Name(), o.Name, err)
	}

	a.extend(max(o.Duration, snd.Length))

	w.Player.Play(ctx, sound.PlayRequest{
		ID:        uuid.NewString(),
		World:     w.Name,
		Tick:      w.Tick,
		Event:     a.Name(),
		Sound:     snd,
		Timestamp: time.Now(),
	})

	return Activation{
		Event:    a.Name(),
		Outcome:  o.Name,
		Draw:     r,
		Sound:    snd.ID,
		Duration: a.Duration(),
	}, nil
}
