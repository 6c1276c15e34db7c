// Package detail loads a single record for a detail screen and keeps its
// loading and error state.
package detail

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
	"github.com/Sternrassler/history-gogo-client/pkg/resource"
)

// ErrNoTarget is returned by Refresh before any Load.
var ErrNoTarget = errors.New("detail: nothing loaded yet")

// FetchFunc loads the record with the given id.
type FetchFunc[T any] func(ctx context.Context, id string) (T, error)

// Loader holds one record. Load switches to another id; Refresh reloads the
// current one and keeps the shown value if the reload fails.
type Loader[T any] struct {
	fetch  FetchFunc[T]
	logger zerolog.Logger

	mu         sync.Mutex
	id         string
	value      T
	loaded     bool
	loading    bool
	err        error
	generation uint64
}

// NewLoader creates a Loader named kind over fetch.
func NewLoader[T any](kind string, fetch FetchFunc[T], logger zerolog.Logger) *Loader[T] {
	return &Loader[T]{
		fetch:  fetch,
		logger: logger.With().Str("kind", kind).Logger(),
	}
}

// Load fetches id, dropping the value of any previous id. A load started
// later supersedes this one, whose result is then discarded.
func (l *Loader[T]) Load(ctx context.Context, id string) error {
	l.mu.Lock()
	if id != l.id {
		var zero T
		l.value = zero
		l.loaded = false
	}
	l.id = id
	l.mu.Unlock()

	return l.run(ctx, id)
}

// Refresh reloads the current record.
func (l *Loader[T]) Refresh(ctx context.Context) error {
	l.mu.Lock()
	id := l.id
	l.mu.Unlock()

	if id == "" {
		return ErrNoTarget
	}
	return l.run(ctx, id)
}

func (l *Loader[T]) run(ctx context.Context, id string) error {
	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.loading = true
	l.err = nil
	l.mu.Unlock()

	defer func() {
		l.mu.Lock()
		if gen == l.generation {
			l.loading = false
		}
		l.mu.Unlock()
	}()

	start := time.Now()
	value, err := l.fetch(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return nil
	}
	if err != nil {
		l.err = err
		l.logger.Warn().
			Err(err).
			Str("id", id).
			Str("error_kind", string(apierr.KindOf(err))).
			Msg("Detail load failed")
		return err
	}

	l.value = value
	l.loaded = true
	l.logger.Debug().Str("id", id).Dur("duration", time.Since(start)).Msg("Detail loaded")
	return nil
}

// Value returns the record and whether one is loaded.
func (l *Loader[T]) Value() (T, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value, l.loaded
}

// ID returns the id of the current record.
func (l *Loader[T]) ID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.id
}

// Loading reports whether a fetch is running.
func (l *Loader[T]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the error of the last fetch, or nil.
func (l *Loader[T]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// NewEmperorLoader loads emperors from api.
func NewEmperorLoader(api resource.API) *Loader[model.EmperorDetail] {
	return NewLoader[model.EmperorDetail]("emperor", api.GetEmperor, logging.NewLogger("detail"))
}

// NewEventLoader loads events from api.
func NewEventLoader(api resource.API) *Loader[model.EventDetail] {
	return NewLoader[model.EventDetail]("event", api.GetEvent, logging.NewLogger("detail"))
}

// NewPersonLoader loads persons from api.
func NewPersonLoader(api resource.API) *Loader[model.PersonDetail] {
	return NewLoader[model.PersonDetail]("person", api.GetPerson, logging.NewLogger("detail"))
}

// NewDynastyLoader loads dynasties from api.
func NewDynastyLoader(api resource.API) *Loader[model.Dynasty] {
	return NewLoader[model.Dynasty]("dynasty", api.GetDynasty, logging.NewLogger("detail"))
}
