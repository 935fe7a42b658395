package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/nidhogg/ambience/internal/api"
	"github.com/nidhogg/ambience/internal/config"
	"github.com/nidhogg/ambience/internal/event"
	"github.com/nidhogg/ambience/internal/sound"
	"github.com/nidhogg/ambience/internal/world"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "configs/ambience.json"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config %s: %v\n", cfgPath, err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.Server.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to build logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting ambience service...", zap.String("config", cfgPath))

	// Sound catalog
	sounds := sound.NewRegistry(sound.Builtin()...)
	for _, sc := range cfg.Sounds {
		if err := sounds.Register(sound.Sound{ID: sound.ID(sc.ID), Name: sc.Name, Length: sc.Length}); err != nil {
			logger.Fatal("invalid sound", zap.Error(err))
		}
	}

	// Event registry
	events := event.NewRegistry()
	event.RegisterBuiltin(events)
	for _, ec := range cfg.Events {
		outcomes := make([]event.Outcome, len(ec.Outcomes))
		for i, oc := range ec.Outcomes {
			outcomes[i] = event.Outcome{
				Name: oc.Name, Sound: sound.ID(oc.Sound),
				Duration: oc.Duration, Weight: oc.Weight,
			}
		}
		factory, err := event.AmbienceFactory(ec.Name, ec.DefaultDuration, outcomes)
		if err != nil {
			logger.Fatal("invalid event", zap.String("event", ec.Name), zap.Error(err))
		}
		events.Register(ec.Name, factory)
	}

	// Outcomes referencing unregistered sounds are fatal configuration errors.
	if err := events.Check(sounds); err != nil {
		logger.Fatal("event/sound mismatch", zap.Error(err))
	}
	logger.Info("Registries loaded",
		zap.Int("sounds", len(sounds.List())),
		zap.Strings("events", events.Names()))

	// Playback sink
	var sink sound.Player = sound.NewLogPlayer(logger)
	var stream *sound.StreamPlayer
	if cfg.Redis.URL != "" {
		sp, spErr := sound.NewStreamPlayer(cfg.Redis.URL, cfg.Redis.Stream, logger)
		if spErr != nil {
			logger.Warn("Redis unavailable, logging play requests instead", zap.Error(spErr))
		} else {
			stream = sp
			sink = sp
			logger.Info("Publishing play requests to Redis", zap.String("stream", cfg.Redis.Stream))
		}
	}
	recorder := sound.NewRecorder(sink, cfg.World.PlayedHistory)

	// World simulation
	rotation := cfg.World.Rotation
	if len(rotation) == 0 {
		rotation = events.Names()
	}
	clock := world.NewWorldClock(time.Duration(cfg.World.TickMillis)*time.Millisecond, logger)
	scheduler := world.NewScheduler(world.SchedulerConfig{
		World:       cfg.World.Name,
		Rotation:    rotation,
		Cooldown:    uint64(cfg.World.CooldownTicks),
		HistorySize: cfg.World.HistorySize,
	}, events, sounds, recorder, logger)
	if err := scheduler.CheckRotation(); err != nil {
		logger.Fatal("invalid rotation", zap.Error(err))
	}
	clock.AddListener(scheduler)

	clock.Start()
	logger.Info("World simulation started", zap.String("world", cfg.World.Name))

	handler := api.NewHandler(cfg.World.Name, clock, scheduler, events, sounds, recorder, logger)

	port := fmt.Sprintf("%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: handler.Router(),
	}

	go func() {
		logger.Info("Ambience API listening", zap.String("port", port))
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			logger.Fatal("server error", zap.Error(err))
		}
	}()

	// Graceful shutdown, or exit on a configuration error surfaced at runtime.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	exitCode := 0
	select {
	case <-quit:
	case err := <-scheduler.Errors():
		logger.Error("scheduler configuration error", zap.Error(err))
		exitCode = 1
	}

	logger.Info("Shutting down ambience service...")
	clock.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.Shutdown(ctx)
	if stream != nil {
		stream.Close()
	}
	if exitCode != 0 {
		logger.Sync()
		os.Exit(exitCode)
	}
}

func newLogger(level string) (*zap.Logger, error) {
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = lvl
	return cfg.Build()
}
