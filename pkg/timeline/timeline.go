// Package timeline loads a dynasty together with its year-by-year timeline.
package timeline

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
	"github.com/Sternrassler/history-gogo-client/pkg/resource"
)

// ErrNoDynasty is returned for an empty dynasty id.
var ErrNoDynasty = errors.New("timeline: dynasty id is required")

// View is a loaded dynasty timeline.
type View struct {
	Dynasty  model.Dynasty
	Timeline model.TimelineResponse
}

// Items returns the timeline items, narrowed to eventType when it is not
// empty.
func (v View) Items(eventType string) []model.TimelineItem {
	if eventType == "" {
		return v.Timeline.Timeline
	}
	return v.Timeline.FilterByEventType(eventType)
}

// Loader fetches the dynasty and its timeline concurrently and keeps the
// latest View.
type Loader struct {
	api    resource.API
	logger zerolog.Logger

	mu         sync.Mutex
	view       View
	loaded     bool
	loading    bool
	err        error
	generation uint64
}

// NewLoader creates a Loader over api.
func NewLoader(api resource.API) *Loader {
	return &Loader{
		api:    api,
		logger: logging.NewLogger("timeline"),
	}
}

// WithLogger replaces the logger.
func (l *Loader) WithLogger(logger zerolog.Logger) *Loader {
	l.logger = logger
	return l
}

// Load fetches dynastyID. If either request fails the other is cancelled
// and the first error is returned; the previous View is kept. A load
// started later supersedes this one.
func (l *Loader) Load(ctx context.Context, dynastyID string) error {
	if dynastyID == "" {
		return ErrNoDynasty
	}

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
	view, err := l.fetch(ctx, dynastyID)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.generation {
		return nil
	}
	if err != nil {
		l.err = err
		l.logger.Warn().
			Err(err).
			Str("dynasty_id", dynastyID).
			Str("error_kind", string(apierr.KindOf(err))).
			Msg("Timeline load failed")
		return err
	}

	l.view = view
	l.loaded = true
	l.logger.Debug().
		Str("dynasty_id", dynastyID).
		Int("items", len(view.Timeline.Timeline)).
		Dur("duration", time.Since(start)).
		Msg("Timeline loaded")
	return nil
}

func (l *Loader) fetch(ctx context.Context, dynastyID string) (View, error) {
	var view View
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		d, err := l.api.GetDynasty(gctx, dynastyID)
		if err != nil {
			return err
		}
		view.Dynasty = d
		return nil
	})
	g.Go(func() error {
		tl, err := l.api.GetTimeline(gctx, dynastyID)
		if err != nil {
			return err
		}
		view.Timeline = tl
		return nil
	})

	if err := g.Wait(); err != nil {
		return View{}, err
	}
	return view, nil
}

// View returns the latest loaded view and whether there is one.
func (l *Loader) View() (View, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.view, l.loaded
}

// Loading reports whether a load is running.
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err returns the error of the last load, or nil.
func (l *Loader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}
