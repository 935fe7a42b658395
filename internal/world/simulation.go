package world

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ClockListener receives world tick events.
type ClockListener interface {
	OnTick(tick uint64)
}

// WorldClock drives the simulation with a fixed tick interval.
type WorldClock struct {
	interval  time.Duration
	listeners []ClockListener
	tick      uint64
	mu        sync.RWMutex
	cancel    context.CancelFunc
	done      chan struct{}
	logger    *zap.Logger
}

// NewWorldClock creates a clock with the given tick interval.
func NewWorldClock(interval time.Duration, logger *zap.Logger) *WorldClock {
	return &WorldClock{
		interval: interval,
		logger:   logger,
	}
}

// AddListener registers a tick listener.
func (c *WorldClock) AddListener(l ClockListener) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, l)
}

// Tick returns the number of ticks elapsed.
func (c *WorldClock) Tick() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tick
}

// Interval returns the real-time length of one tick.
func (c *WorldClock) Interval() time.Duration {
	return c.interval
}

// Start begins the tick loop in a background goroutine.
func (c *WorldClock) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.done = make(chan struct{})
	go c.loop(ctx)
	c.logger.Info("world clock started",
		zap.Duration("interval", c.interval))
}

// Stop halts the tick loop and waits for the current tick to finish.
func (c *WorldClock) Stop() {
	if c.cancel != nil {
		c.cancel()
		<-c.done
		c.cancel = nil
		c.logger.Info("world clock stopped", zap.Uint64("tick", c.Tick()))
	}
}

func (c *WorldClock) loop(ctx context.Context) {
	defer close(c.done)
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.advance()
		}
	}
}

func (c *WorldClock) advance() {
	c.mu.Lock()
	c.tick++
	tick := c.tick
	listeners := make([]ClockListener, len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, l := range listeners {
		l.OnTick(tick)
	}
}
