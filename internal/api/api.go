// Package api serves the tracker over HTTP and a websocket stream.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"gohome/internal/core/model"
	"gohome/internal/core/store"
	"gohome/internal/core/timekeeper"
)

// Tracker is the subset of the time keeper the API drives.
type Tracker interface {
	Now() time.Time
	Snapshot(now time.Time) timekeeper.Report
	AddEvent(params store.AddParams) (model.EventID, error)
	ConfirmLoop(id model.EventID) error
	SkipLoop(id model.EventID) error
	Reorder(id model.EventID, order int) error
	RemoveEvent(id model.EventID) error
	Subscribe(buffer int) <-chan timekeeper.Update
	Unsubscribe(ch <-chan timekeeper.Update)
}

// API holds HTTP handlers.
type API struct {
	tracker Tracker
	metrics http.Handler
	logger  zerolog.Logger
}

// New creates an API. metrics may be nil to leave /metrics unrouted.
func New(tracker Tracker, metrics http.Handler, logger zerolog.Logger) *API {
	return &API{
		tracker: tracker,
		metrics: metrics,
		logger:  logger.With().Str("component", "api").Logger(),
	}
}

// Handler builds a router with the API mounted.
func (a *API) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	a.Routes(r)
	return r
}

// Routes registers API routes on r.
func (a *API) Routes(r chi.Router) {
	r.Get("/health", a.handleHealth)
	if a.metrics != nil {
		r.Method(http.MethodGet, "/metrics", a.metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Get("/status", a.handleStatus)
		r.Get("/completion", a.handleCompletion)
		r.Get("/stream", a.handleStream)

		r.Route("/events", func(r chi.Router) {
			r.Post("/", a.handleEventsAdd)
			r.Route("/{eventID}", func(r chi.Router) {
				r.Delete("/", a.handleEventsRemove)
				r.Post("/confirm", a.handleEventsConfirm)
				r.Post("/skip", a.handleEventsSkip)
				r.Put("/order", a.handleEventsReorder)
			})
		})
	})
}

func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newStatusResponse(a.tracker.Snapshot(a.tracker.Now())))
}

func (a *API) handleCompletion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, newCompletionResponse(a.tracker.Snapshot(a.tracker.Now())))
}

type addEventRequest struct {
	Name         string `json:"name"`
	Duration     int    `json:"duration"`
	Loops        int    `json:"loops"`
	ElapsedFirst int    `json:"elapsed_first"`
	Order        int    `json:"order"`
}

func (a *API) handleEventsAdd(w http.ResponseWriter, r *http.Request) {
	var req addEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	id, err := a.tracker.AddEvent(store.AddParams{
		Name:         req.Name,
		Duration:     req.Duration,
		Loops:        req.Loops,
		ElapsedFirst: req.ElapsedFirst,
		Order:        req.Order,
	})
	if err != nil {
		a.writeTrackerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": string(id)})
}

func (a *API) handleEventsConfirm(w http.ResponseWriter, r *http.Request) {
	a.respondNoContent(w, a.tracker.ConfirmLoop(eventID(r)))
}

func (a *API) handleEventsSkip(w http.ResponseWriter, r *http.Request) {
	a.respondNoContent(w, a.tracker.SkipLoop(eventID(r)))
}

func (a *API) handleEventsRemove(w http.ResponseWriter, r *http.Request) {
	a.respondNoContent(w, a.tracker.RemoveEvent(eventID(r)))
}

func (a *API) handleEventsReorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Order *int `json:"order"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}
	if req.Order == nil {
		writeError(w, http.StatusBadRequest, "order_required")
		return
	}
	a.respondNoContent(w, a.tracker.Reorder(eventID(r), *req.Order))
}

func (a *API) respondNoContent(w http.ResponseWriter, err error) {
	if err != nil {
		a.writeTrackerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) writeTrackerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, store.ErrInvalidEventParameters):
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error":  "invalid_event_parameters",
			"detail": err.Error(),
		})
	case errors.Is(err, store.ErrNotAwaitingConfirmation):
		writeError(w, http.StatusConflict, "not_awaiting_confirmation")
	case errors.Is(err, store.ErrEventNotFound):
		writeError(w, http.StatusNotFound, "event_not_found")
	default:
		a.logger.Error().Err(err).Msg("tracker call failed")
		writeError(w, http.StatusInternalServerError, "internal_error")
	}
}

func eventID(r *http.Request) model.EventID {
	return model.EventID(chi.URLParam(r, "eventID"))
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
