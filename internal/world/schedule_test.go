package world

import (
	"context"
	"errors"
	"testing"

	"github.com/nidhogg/ambience/internal/event"
	"github.com/nidhogg/ambience/internal/sound"
	"go.uber.org/zap"
)

type fixedDraw int

func (f fixedDraw) IntN(int) int { return int(f) - 1 }

// newTestScheduler wires a scheduler whose level 2 draws always return draw.
func newTestScheduler(t *testing.T, draw int, cooldown uint64) (*Scheduler, *sound.Recorder) {
	t.Helper()
	reg := event.NewRegistry()
	reg.Register(event.Level2Name, func() event.Event {
		return event.NewLevel2Ambience(event.WithSource(func() event.Source { return fixedDraw(draw) }))
	})
	rec := sound.NewRecorder(nil, 0)
	s := NewScheduler(SchedulerConfig{
		World:    "level2",
		Rotation: []string{event.Level2Name},
		Cooldown: cooldown,
	}, reg, sound.NewRegistry(sound.Builtin()...), rec, zap.NewNop())
	return s, rec
}

func TestSchedulerActivatesAndRetires(t *testing.T) {
	s, rec := newTestScheduler(t, 1, 0)

	s.OnTick(1)
	active := s.Active()
	if active == nil {
		t.Fatal("expected an active event after first tick")
	}
	if active.Duration != 200 || active.Sound != sound.Creaking1 || active.StartTick != 1 {
		t.Fatalf("unexpected active entry %+v", active)
	}
	if rec.Len() != 1 {
		t.Fatalf("got %d play requests, want 1", rec.Len())
	}

	s.OnTick(200)
	if s.Active() == nil {
		t.Fatal("event retired before its duration elapsed")
	}

	s.OnTick(201)
	// Retired and, with no cooldown, the next event starts on the same tick.
	h := s.History(0)
	if len(h) != 1 || h[0].Status != StatusRetired || h[0].EndTick != 201 {
		t.Fatalf("unexpected history %+v", h)
	}
	if next := s.Active(); next == nil || next.StartTick != 201 || next.ID == h[0].ID {
		t.Fatalf("expected a new activation at tick 201, got %+v", next)
	}
	if rec.Len() != 2 {
		t.Errorf("got %d play requests, want 2", rec.Len())
	}
}

func TestSchedulerLongOutcomeKeepsEventLive(t *testing.T) {
	s, _ := newTestScheduler(t, 3, 0)

	s.OnTick(10)
	if a := s.Active(); a == nil || a.Duration != 720 || a.Outcome != "ambience" {
		t.Fatalf("unexpected active entry %+v", a)
	}
	s.OnTick(729)
	if len(s.History(0)) != 0 {
		t.Fatal("long ambience retired early")
	}
	s.OnTick(730)
	if h := s.History(0); len(h) != 1 || h[0].Duration != 720 {
		t.Fatalf("unexpected history %+v", h)
	}
}

func TestSchedulerCooldown(t *testing.T) {
	s, rec := newTestScheduler(t, 2, 50)

	s.OnTick(1)
	s.OnTick(201) // retire, cooldown until 251
	if s.Active() != nil {
		t.Fatal("expected idle during cooldown")
	}
	s.OnTick(250)
	if s.Active() != nil {
		t.Fatal("activated before cooldown elapsed")
	}
	s.OnTick(251)
	if s.Active() == nil {
		t.Fatal("expected activation after cooldown")
	}
	if rec.Len() != 2 {
		t.Errorf("got %d play requests, want 2", rec.Len())
	}
}

func TestSchedulerTrigger(t *testing.T) {
	s, _ := newTestScheduler(t, 1, 0)
	s.cfg.Rotation = nil

	entry, err := s.Trigger(context.Background(), event.Level2Name)
	if err != nil {
		t.Fatalf("trigger: %v", err)
	}
	if entry.Status != StatusActive {
		t.Errorf("status = %s, want active", entry.Status)
	}

	if _, err := s.Trigger(context.Background(), event.Level2Name); !errors.Is(err, ErrEventActive) {
		t.Fatalf("expected ErrEventActive, got %v", err)
	}

	s.OnTick(200)
	if _, err := s.Trigger(context.Background(), "nope"); !errors.Is(err, event.ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}

func TestSchedulerReportsConfigErrors(t *testing.T) {
	reg := event.NewRegistry()
	event.RegisterBuiltin(reg)
	s := NewScheduler(SchedulerConfig{
		World:    "level2",
		Rotation: []string{event.Level2Name, "missing"},
	}, reg, sound.NewRegistry(), sound.NewRecorder(nil, 0), zap.NewNop())

	s.OnTick(1)
	select {
	case err := <-s.Errors():
		if !errors.Is(err, sound.ErrUnknownSound) {
			t.Fatalf("expected ErrUnknownSound, got %v", err)
		}
	default:
		t.Fatal("expected an init error to be reported")
	}
	if h := s.History(0); len(h) != 1 || h[0].Status != StatusFailed || h[0].Duration != 0 {
		t.Fatalf("unexpected history %+v", h)
	}

	s.OnTick(2)
	select {
	case err := <-s.Errors():
		if !errors.Is(err, event.ErrUnknownEvent) {
			t.Fatalf("expected ErrUnknownEvent, got %v", err)
		}
	default:
		t.Fatal("expected unknown event to be reported")
	}
}

func TestSchedulerTriggerFailureNotReported(t *testing.T) {
	reg := event.NewRegistry()
	event.RegisterBuiltin(reg)
	s := NewScheduler(SchedulerConfig{World: "level2"}, reg, sound.NewRegistry(), sound.NewRecorder(nil, 0), zap.NewNop())

	entry, err := s.Trigger(context.Background(), event.Level2Name)
	if !errors.Is(err, sound.ErrUnknownSound) {
		t.Fatalf("expected ErrUnknownSound, got %v", err)
	}
	if entry.Status != StatusFailed || entry.Duration != 0 {
		t.Errorf("unexpected failed entry %+v", entry)
	}
	select {
	case err := <-s.Errors():
		t.Fatalf("trigger failure reported on Errors(): %v", err)
	default:
	}
	if s.Active() != nil {
		t.Error("failed trigger left an active event")
	}
}

func TestSchedulerCheckRotation(t *testing.T) {
	reg := event.NewRegistry()
	event.RegisterBuiltin(reg)
	s := NewScheduler(SchedulerConfig{Rotation: []string{event.Level2Name, "ghost"}}, reg, nil, nil, zap.NewNop())
	if err := s.CheckRotation(); !errors.Is(err, event.ErrUnknownEvent) {
		t.Fatalf("expected ErrUnknownEvent, got %v", err)
	}
}
