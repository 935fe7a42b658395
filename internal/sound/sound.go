package sound

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
)

// ErrUnknownSound is returned when a sound identifier is not registered.
var ErrUnknownSound = errors.New("unknown sound")

// ID identifies a registered sound.
type ID string

// Builtin sound identifiers.
const (
	Creaking1      ID = "creaking1"
	Creaking2      ID = "creaking2"
	Level2Ambience ID = "level2_ambience"
)

// Sound is a playable sound known to the registry.
type Sound struct {
	ID     ID     `json:"id"`
	Name   string `json:"name"`
	Length int    `json:"length"` // intrinsic playback length in ticks
}

// PlayRequest is a single fire-and-forget playback dispatch.
type PlayRequest struct {
	ID        string    `json:"id"`
	World     string    `json:"world"`
	Tick      uint64    `json:"tick"`
	Event     string    `json:"event"`
	Sound     Sound     `json:"sound"`
	Timestamp time.Time `json:"timestamp"`
}

// Player is the playback sink. Implementations report their own failures.
type Player interface {
	Play(ctx context.Context, req PlayRequest)
}

// Builtin returns the sounds every world ships with.
func Builtin() []Sound {
	return []Sound{
		{ID: Creaking1, Name: "Creaking 1", Length: 60},
		{ID: Creaking2, Name: "Creaking 2", Length: 80},
		{ID: Level2Ambience, Name: "Level 2 Ambience", Length: 720},
	}
}

// Registry maps sound identifiers to sounds.
type Registry struct {
	sounds map[ID]Sound
	mu     sync.RWMutex
}

// NewRegistry creates a registry preloaded with the given sounds.
func NewRegistry(sounds ...Sound) *Registry {
	r := &Registry{sounds: make(map[ID]Sound)}
	for _, s := range sounds {
		r.sounds[s.ID] = s
	}
	return r
}

// Register adds or replaces a sound.
func (r *Registry) Register(s Sound) error {
	if s.ID == "" {
		return fmt.Errorf("register sound: empty id")
	}
	if s.Length < 0 {
		return fmt.Errorf("register sound %s: negative length %d", s.ID, s.Length)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sounds[s.ID] = s
	return nil
}

// Resolve looks up a sound by identifier.
func (r *Registry) Resolve(id ID) (Sound, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sounds[id]
	if !ok {
		return Sound{}, fmt.Errorf("%w: %q", ErrUnknownSound, id)
	}
	return s, nil
}

// List returns all sounds sorted by id.
func (r *Registry) List() []Sound {
	r.mu.RLock()
	out := make([]Sound, 0, len(r.sounds))
	for _, s := range r.sounds {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
