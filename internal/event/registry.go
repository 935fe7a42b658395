package event

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownEvent is returned when no factory is registered under a name.
var ErrUnknownEvent = errors.New("unknown event")

// Factory constructs a fresh event instance per activation.
type Factory func() Event

// Registry maps event names to factories.
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a factory under name, replacing any previous one.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = f
}

// New instantiates the event registered under name.
func (r *Registry) New(name string) (Event, error) {
	r.mu.RLock()
	f, ok := r.factories[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, name)
	}
	return f(), nil
}

// Names returns registered event names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Check verifies that every table-backed event only names sounds the
// resolver knows about. Run it at startup so a mismatch fails fast.
func (r *Registry) Check(sounds Resolver) error {
	var errs []error
	for _, name := range r.Names() {
		ev, err := r.New(name)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		amb, ok := ev.(*Ambience)
		if !ok {
			continue
		}
		for _, o := range amb.Table().Outcomes() {
			if _, err := sounds.Resolve(o.Sound); err != nil {
				errs = append(errs, fmt.Errorf("event %s outcome %q: %w", name, o.Name, err))
			}
		}
	}
	return errors.Join(errs...)
}

// RegisterBuiltin registers the events every world ships with.
func RegisterBuiltin(r *Registry) {
	r.Register(Level2Name, func() Event { return NewLevel2Ambience() })
}

// AmbienceFactory validates outcomes once and returns a factory building
// ambience events over them.
func AmbienceFactory(name string, defaultDuration int, outcomes []Outcome, opts ...Option) (Factory, error) {
	if defaultDuration < 0 {
		return nil, fmt.Errorf("event %s: negative default duration %d", name, defaultDuration)
	}
	table, err := NewTable(outcomes...)
	if err != nil {
		return nil, fmt.Errorf("event %s: %w", name, err)
	}
	return func() Event {
		return NewAmbience(name, defaultDuration, table, opts...)
	}, nil
}
