package world

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/nidhogg/ambience/internal/event"
	"github.com/nidhogg/ambience/internal/sound"
	"go.uber.org/zap"
)

// ErrEventActive is returned when triggering while an event is live.
var ErrEventActive = errors.New("an ambience event is already active")

// EntryStatus is the lifecycle state of a scheduled activation.
type EntryStatus string

const (
	StatusActive  EntryStatus = "active"
	StatusRetired EntryStatus = "retired"
	StatusFailed  EntryStatus = "failed"
)

// Entry records one event activation.
type Entry struct {
	ID        string      `json:"id"`
	Event     string      `json:"event"`
	Outcome   string      `json:"outcome,omitempty"`
	Sound     sound.ID    `json:"sound,omitempty"`
	Draw      int         `json:"draw,omitempty"`
	StartTick uint64      `json:"start_tick"`
	Duration  int         `json:"duration"`
	EndTick   uint64      `json:"end_tick,omitempty"`
	Status    EntryStatus `json:"status"`
	Error     string      `json:"error,omitempty"`
}

// SchedulerConfig controls which events run and how they are spaced.
type SchedulerConfig struct {
	World       string
	Rotation    []string // event names, activated in order and repeated
	Cooldown    uint64   // idle ticks between retirement and the next activation
	HistorySize int
}

type liveEvent struct {
	ev    event.Event
	entry Entry
}

// Scheduler is a ClockListener that keeps at most one ambience event live.
// It instantiates the next event in its rotation, initializes it, and retires
// it once the duration the event reported has elapsed.
type Scheduler struct {
	cfg      SchedulerConfig
	registry *event.Registry
	sounds   event.Resolver
	player   sound.Player

	live    *liveEvent
	history []Entry
	next    int
	nextAt  uint64
	tick    uint64
	errs    chan error
	mu      sync.Mutex
	logger  *zap.Logger
}

// NewScheduler creates an ambience scheduler.
func NewScheduler(
	cfg SchedulerConfig,
	registry *event.Registry,
	sounds event.Resolver,
	player sound.Player,
	logger *zap.Logger,
) *Scheduler {
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = 100
	}
	return &Scheduler{
		cfg:      cfg,
		registry: registry,
		sounds:   sounds,
		player:   player,
		errs:     make(chan error, 8),
		logger:   logger,
	}
}

// CheckRotation verifies every rotation entry names a registered event.
func (s *Scheduler) CheckRotation() error {
	var errs []error
	for _, name := range s.cfg.Rotation {
		if _, err := s.registry.New(name); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Errors delivers rotation activation failures. Unknown events and
// unresolvable sounds are configuration defects; the owner decides whether to
// exit. Failures from Trigger are returned to the caller only.
func (s *Scheduler) Errors() <-chan error {
	return s.errs
}

// OnTick implements ClockListener.
func (s *Scheduler) OnTick(tick uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tick = tick
	s.retireDue(tick)

	if s.live != nil || tick < s.nextAt || len(s.cfg.Rotation) == 0 {
		return
	}

	name := s.cfg.Rotation[s.next%len(s.cfg.Rotation)]
	s.next++

	if _, err := s.activate(context.Background(), name, tick); err != nil {
		if errors.Is(err, event.ErrUnknownEvent) {
			s.logger.Error("scheduled event not registered",
				zap.String("event", name),
				zap.Error(err))
			s.nextAt = tick + s.cfg.Cooldown
		}
		s.report(err)
	}
}

// Trigger activates the named event immediately.
func (s *Scheduler) Trigger(ctx context.Context, name string) (Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.live != nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrEventActive, s.live.entry.Event)
	}
	return s.activate(ctx, name, s.tick)
}

// Active returns the live entry, if any.
func (s *Scheduler) Active() *Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.live == nil {
		return nil
	}
	e := s.live.entry
	return &e
}

// History returns up to limit finished entries, oldest first.
func (s *Scheduler) History(limit int) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if limit <= 0 || limit > len(s.history) {
		limit = len(s.history)
	}
	out := make([]Entry, limit)
	copy(out, s.history[len(s.history)-limit:])
	return out
}

// Tick returns the last tick the scheduler observed.
func (s *Scheduler) Tick() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick
}

// activate must be called with s.mu held.
func (s *Scheduler) activate(ctx context.Context, name string, tick uint64) (Entry, error) {
	ev, err := s.registry.New(name)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:        uuid.New().String(),
		Event:     name,
		StartTick: tick,
		Status:    StatusActive,
	}

	w := &event.World{
		Name:   s.cfg.World,
		Tick:   tick,
		Sounds: s.sounds,
		Player: s.player,
	}
	act, err := ev.Init(ctx, w)
	if err != nil {
		entry.Status = StatusFailed
		entry.EndTick = tick
		entry.Error = err.Error()
		s.record(entry)
		s.nextAt = tick + s.cfg.Cooldown
		s.logger.Error("event init failed",
			zap.String("event", name),
			zap.Uint64("tick", tick),
			zap.Error(err))
		return entry, err
	}

	entry.Outcome = act.Outcome
	entry.Sound = act.Sound
	entry.Draw = act.Draw
	// Duration is only meaningful once Init has finalized it.
	entry.Duration = ev.Duration()
	s.live = &liveEvent{ev: ev, entry: entry}

	s.logger.Info("event activated",
		zap.String("event", name),
		zap.String("outcome", act.Outcome),
		zap.String("sound", string(act.Sound)),
		zap.Int("duration", entry.Duration),
		zap.Uint64("tick", tick))
	return entry, nil
}

// retireDue must be called with s.mu held.
func (s *Scheduler) retireDue(tick uint64) {
	if s.live == nil {
		return
	}
	e := s.live.entry
	if tick < e.StartTick+uint64(s.live.ev.Duration()) {
		return
	}

	e.Status = StatusRetired
	e.EndTick = tick
	s.record(e)
	s.live = nil
	s.nextAt = tick + s.cfg.Cooldown

	s.logger.Debug("event retired",
		zap.String("event", e.Event),
		zap.String("id", e.ID),
		zap.Uint64("tick", tick))
}

func (s *Scheduler) record(e Entry) {
	s.history = append(s.history, e)
	if len(s.history) > s.cfg.HistorySize {
		s.history = s.history[len(s.history)-s.cfg.HistorySize:]
	}
}

func (s *Scheduler) report(err error) {
	select {
	case s.errs <- err:
	default:
	}
}
