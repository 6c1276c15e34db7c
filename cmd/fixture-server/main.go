// Command fixture-server serves the built-in history fixtures over the real
// API layout, for UI development without the backend.
//
// Configuration is read from HISTORY_* variables (see pkg/config); the
// relevant ones are HISTORY_LISTEN_ADDR, HISTORY_FIXTURE_DELAY and
// HISTORY_FIXTURE_TIMELINE_DELAY.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/config"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
	"github.com/Sternrassler/history-gogo-client/pkg/resource"
)

// Server-side page defaults.
const (
	defaultSkip  = 0
	defaultLimit = 20
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	logCfg := cfg.Logging()
	logCfg.Service = "fixture-server"
	logger := logging.Setup(logCfg)

	api := resource.NewMock(
		resource.WithDelay(cfg.FixtureDelay),
		resource.WithTimelineDelay(cfg.FixtureTimelineDelay),
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           newRouter(api, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info().
			Str("addr", cfg.ListenAddr).
			Dur("delay", cfg.FixtureDelay).
			Dur("timeline_delay", cfg.FixtureTimelineDelay).
			Msg("Starting fixture server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Shutdown failed")
	}
	logger.Info().Msg("Fixture server stopped")
}

// newRouter exposes api under /api/v1 plus /health and /metrics.
func newRouter(api resource.API, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/health", healthHandler)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get(resource.PathDynasties, func(w http.ResponseWriter, r *http.Request) {
			items, err := api.ListDynasties(r.Context())
			respond(w, items, err)
		})
		r.Get(resource.PathDynasties+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			item, err := api.GetDynasty(r.Context(), chi.URLParam(r, "id"))
			respond(w, item, err)
		})

		r.Get(resource.PathEmperors, func(w http.ResponseWriter, r *http.Request) {
			skip, limit, ok := pageParams(w, r)
			if !ok {
				return
			}
			filter := resource.EmperorFilter{DynastyID: optional(r, "dynasty_id")}
			items, err := api.ListEmperors(r.Context(), filter, skip, limit)
			respond(w, items, err)
		})
		r.Get(resource.PathEmperors+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			item, err := api.GetEmperor(r.Context(), chi.URLParam(r, "id"))
			respond(w, item, err)
		})

		r.Get(resource.PathEvents, func(w http.ResponseWriter, r *http.Request) {
			skip, limit, ok := pageParams(w, r)
			if !ok {
				return
			}
			filter := resource.EventFilter{
				DynastyID: optional(r, "dynasty_id"),
				EmperorID: optional(r, "emperor_id"),
				EventType: optional(r, "event_type"),
			}
			items, err := api.ListEvents(r.Context(), filter, skip, limit)
			respond(w, items, err)
		})
		r.Get(resource.PathEvents+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			item, err := api.GetEvent(r.Context(), chi.URLParam(r, "id"))
			respond(w, item, err)
		})

		r.Get(resource.PathPersons, func(w http.ResponseWriter, r *http.Request) {
			skip, limit, ok := pageParams(w, r)
			if !ok {
				return
			}
			filter := resource.PersonFilter{
				DynastyID:  optional(r, "dynasty_id"),
				PersonType: optional(r, "person_type"),
			}
			items, err := api.ListPersons(r.Context(), filter, skip, limit)
			respond(w, items, err)
		})
		r.Get(resource.PathPersons+"/{id}", func(w http.ResponseWriter, r *http.Request) {
			item, err := api.GetPerson(r.Context(), chi.URLParam(r, "id"))
			respond(w, item, err)
		})

		r.Get(resource.PathTimeline+"/{dynastyID}", func(w http.ResponseWriter, r *http.Request) {
			item, err := api.GetTimeline(r.Context(), chi.URLParam(r, "dynastyID"))
			respond(w, item, err)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})

	return r
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Str("request_id", r.Header.Get("X-Request-ID")).
				Dur("duration", time.Since(start)).
				Msg("Request served")
		})
	}
}

// pageParams reads skip and limit, answering 422 when they are out of range.
func pageParams(w http.ResponseWriter, r *http.Request) (skip, limit int, ok bool) {
	q := r.URL.Query()
	skip, limit = defaultSkip, defaultLimit

	if v := q.Get("skip"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusUnprocessableEntity, "skip must be a non-negative integer")
			return 0, 0, false
		}
		skip = n
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > resource.MaxLimit {
			writeError(w, http.StatusUnprocessableEntity, "limit must be between 1 and 100")
			return 0, 0, false
		}
		limit = n
	}
	return skip, limit, true
}

// optional returns the query value of key, or nil when key is absent.
func optional(r *http.Request, key string) *string {
	q := r.URL.Query()
	if !q.Has(key) {
		return nil
	}
	v := q.Get(key)
	return &v
}

func respond(w http.ResponseWriter, v any, err error) {
	if err != nil {
		var apiErr *apierr.Error
		switch {
		case errors.As(err, &apiErr) && apiErr.Kind == apierr.KindServer:
			writeError(w, apiErr.StatusCode, apiErr.Message)
		case errors.Is(err, apierr.ErrTransport):
			// The caller went away during the artificial delay.
			w.WriteHeader(http.StatusServiceUnavailable)
		default:
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"code": status, "message": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
