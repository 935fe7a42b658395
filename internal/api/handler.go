package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/nidhogg/ambience/internal/event"
	"github.com/nidhogg/ambience/internal/sound"
	"github.com/nidhogg/ambience/internal/world"
	"go.uber.org/zap"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	worldName string
	clock     *world.WorldClock
	scheduler *world.Scheduler
	events    *event.Registry
	sounds    *sound.Registry
	recorder  *sound.Recorder
	logger    *zap.Logger
}

// NewHandler creates a new API handler. recorder may be nil.
func NewHandler(
	worldName string,
	clock *world.WorldClock,
	scheduler *world.Scheduler,
	events *event.Registry,
	sounds *sound.Registry,
	recorder *sound.Recorder,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		worldName: worldName,
		clock:     clock,
		scheduler: scheduler,
		events:    events,
		sounds:    sounds,
		recorder:  recorder,
		logger:    logger,
	}
}

// Router builds the chi router with all routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.healthCheck)
		r.Get("/world/status", h.worldStatus)

		r.Get("/events", h.listEvents)
		r.Get("/events/history", h.eventHistory)
		r.Post("/events/{name}/trigger", h.triggerEvent)

		r.Get("/sounds", h.listSounds)
		r.Get("/sounds/played", h.playedSounds)
	})

	return r
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "world": h.worldName})
}

func (h *Handler) worldStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"world":   h.worldName,
		"tick":    h.clock.Tick(),
		"tick_ms": h.clock.Interval().Milliseconds(),
		"active":  h.scheduler.Active(),
	})
}

func (h *Handler) listEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.events.Names())
}

func (h *Handler) eventHistory(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.scheduler.History(limitParam(r)))
}

func (h *Handler) triggerEvent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	entry, err := h.scheduler.Trigger(r.Context(), name)
	switch {
	case err == nil:
		h.logger.Info("event triggered via api", zap.String("event", name))
		writeJSON(w, http.StatusCreated, entry)
	case errors.Is(err, event.ErrUnknownEvent):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, world.ErrEventActive):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.logger.Warn("event trigger failed", zap.String("event", name), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}
}

func (h *Handler) listSounds(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.sounds.List())
}

func (h *Handler) playedSounds(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "sound history not recorded"})
		return
	}
	writeJSON(w, http.StatusOK, h.recorder.History(limitParam(r)))
}

func limitParam(r *http.Request) int {
	n, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		return 0
	}
	return n
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
