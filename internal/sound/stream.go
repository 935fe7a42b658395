package sound

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultStream is the Redis stream play requests are published to.
const DefaultStream = "ambience:sounds"

const publishTimeout = 2 * time.Second

// StreamPlayer publishes play requests to a Redis stream for audio clients.
type StreamPlayer struct {
	rdb    *redis.Client
	stream string
	logger *zap.Logger
}

// NewStreamPlayer connects to Redis and verifies the connection.
func NewStreamPlayer(redisURL, stream string, logger *zap.Logger) (*StreamPlayer, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	if stream == "" {
		stream = DefaultStream
	}
	return &StreamPlayer{rdb: rdb, stream: stream, logger: logger}, nil
}

// Play implements Player. Publish failures are logged and dropped.
func (p *StreamPlayer) Play(ctx context.Context, req PlayRequest) {
	if err := p.Publish(ctx, req); err != nil {
		p.logger.Warn("play request dropped",
			zap.String("sound", string(req.Sound.ID)),
			zap.Error(err))
	}
}

// Publish appends a play request to the stream.
func (p *StreamPlayer) Publish(ctx context.Context, req PlayRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	_, err = p.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"data": string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", p.stream, err)
	}

	p.logger.Debug("published play request",
		zap.String("world", req.World),
		zap.String("sound", string(req.Sound.ID)))
	return nil
}

// Subscribe reads play requests from the stream starting at from
// ("$" for new entries only, "0" for the whole stream).
// Cancel the context to stop.
func (p *StreamPlayer) Subscribe(ctx context.Context, from string) <-chan PlayRequest {
	ch := make(chan PlayRequest, 16)
	if from == "" {
		from = "$"
	}

	go func() {
		defer close(ch)
		lastID := from

		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			results, err := p.rdb.XRead(ctx, &redis.XReadArgs{
				Streams: []string{p.stream, lastID},
				Count:   10,
				Block:   time.Second * 2,
			}).Result()
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					return
				}
				continue
			}

			for _, r := range results {
				for _, msg := range r.Messages {
					lastID = msg.ID
					data, ok := msg.Values["data"].(string)
					if !ok {
						continue
					}
					var req PlayRequest
					if json.Unmarshal([]byte(data), &req) != nil {
						continue
					}
					select {
					case ch <- req:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()

	return ch
}

// Close shuts down the Redis connection.
func (p *StreamPlayer) Close() error {
	return p.rdb.Close()
}
