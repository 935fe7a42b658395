package sound

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

const defaultHistorySize = 256

// Recorder is a Player that keeps recent play requests and forwards them to
// an optional downstream sink.
type Recorder struct {
	next    Player
	history []PlayRequest
	max     int
	mu      sync.Mutex
}

// NewRecorder wraps next. A nil next only records.
func NewRecorder(next Player, max int) *Recorder {
	if max <= 0 {
		max = defaultHistorySize
	}
	return &Recorder{next: next, max: max}
}

// Play implements Player.
func (r *Recorder) Play(ctx context.Context, req PlayRequest) {
	r.mu.Lock()
	r.history = append(r.history, req)
	if len(r.history) > r.max {
		r.history = r.history[len(r.history)-r.max:]
	}
	r.mu.Unlock()

	if r.next != nil {
		r.next.Play(ctx, req)
	}
}

// History returns up to limit of the most recent requests, oldest first.
func (r *Recorder) History(limit int) []PlayRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.history) {
		limit = len(r.history)
	}
	out := make([]PlayRequest, limit)
	copy(out, r.history[len(r.history)-limit:])
	return out
}

// Len returns the number of recorded requests.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// LogPlayer writes play requests to the log. Used when no stream is configured.
type LogPlayer struct {
	logger *zap.Logger
}

// NewLogPlayer creates a logging sink.
func NewLogPlayer(logger *zap.Logger) *LogPlayer {
	return &LogPlayer{logger: logger}
}

// Play implements Player.
func (p *LogPlayer) Play(_ context.Context, req PlayRequest) {
	p.logger.Info("play sound",
		zap.String("world", req.World),
		zap.String("event", req.Event),
		zap.String("sound", string(req.Sound.ID)),
		zap.Uint64("tick", req.Tick))
}
