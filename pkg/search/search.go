// Package search finds emperors, events and persons whose text fields
// contain a keyword.
//
// The server has no text search, so each category fetches a window of the
// first CandidateLimit records and filters them on the client. Matching is
// case-sensitive substring containment over NFC-normalized text.
//
// In CategoryAll the three categories run concurrently. A failed category is
// logged and left empty while the others still report their matches.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
	"github.com/Sternrassler/history-gogo-client/pkg/metrics"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
	"github.com/Sternrassler/history-gogo-client/pkg/resource"
)

// Category selects what Search looks through.
type Category string

// Search categories.
const (
	CategoryAll     Category = "all"
	CategoryEmperor Category = "emperor"
	CategoryEvent   Category = "event"
	CategoryPerson  Category = "person"
)

const (
	// CandidateLimit is the number of records fetched per category.
	CandidateLimit = 100

	// DefaultDisplayLimit caps the matches kept per category.
	DefaultDisplayLimit = 5
)

var (
	// ErrEmptyKeyword is returned for a blank keyword.
	ErrEmptyKeyword = errors.New("search: keyword is empty")

	// ErrUnknownCategory is returned for a category outside the defined set.
	ErrUnknownCategory = errors.New("search: unknown category")

	// ErrClosed is returned by Search after Close.
	ErrClosed = errors.New("search: aggregator closed")
)

var searchBranchesTotal = metrics.Factory().NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "search_branches_total",
		Help:      "Total number of search category fetches by outcome",
	},
	[]string{"branch", "outcome"},
)

// Config holds aggregator configuration.
type Config struct {
	// DisplayLimit caps the matches kept per category.
	DisplayLimit int

	// Logger defaults to the "search" component logger.
	Logger *zerolog.Logger
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() Config {
	return Config{DisplayLimit: DefaultDisplayLimit}
}

// Results holds the matches of the latest search.
type Results struct {
	Keyword  string
	Category Category
	Emperors []model.EmperorSummary
	Events   []model.EventSummary
	Persons  []model.PersonSummary
}

// Empty reports whether no category has a match.
func (r Results) Empty() bool {
	return len(r.Emperors) == 0 && len(r.Events) == 0 && len(r.Persons) == 0
}

// Aggregator runs keyword searches against a resource.API and keeps the
// latest results. It is safe for concurrent use; a new Search supersedes one
// still running.
type Aggregator struct {
	api          resource.API
	displayLimit int
	logger       zerolog.Logger

	base context.Context
	stop context.CancelFunc

	mu         sync.Mutex
	results    Results
	searching  bool
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

// New creates an Aggregator.
func New(api resource.API, cfg Config) (*Aggregator, error) {
	if api == nil {
		return nil, errors.New("search: api is required")
	}
	if cfg.DisplayLimit < 1 || cfg.DisplayLimit > CandidateLimit {
		return nil, fmt.Errorf("search: display_limit must be in [1, %d] (got %d)", CandidateLimit, cfg.DisplayLimit)
	}

	logger := logging.NewLogger("search")
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	base, stop := context.WithCancel(context.Background())
	return &Aggregator{
		api:          api,
		displayLimit: cfg.DisplayLimit,
		logger:       logger,
		base:         base,
		stop:         stop,
	}, nil
}

// Search clears the previous results and looks for keyword in category.
//
// For a single category a fetch failure is returned. For CategoryAll each
// failed category is logged and left empty, and Search returns nil. Results
// of a search superseded by a newer Search, ClearResults or Close are
// discarded.
func (a *Aggregator) Search(ctx context.Context, keyword string, category Category) error {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return ErrEmptyKeyword
	}
	switch category {
	case CategoryAll, CategoryEmperor, CategoryEvent, CategoryPerson:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return ErrClosed
	}
	a.supersede()
	a.results = Results{Keyword: keyword, Category: category}
	a.searching = true
	gen := a.generation

	reqCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(a.base, cancel)
	a.cancel = cancel
	a.mu.Unlock()

	defer func() {
		stopAfter()
		cancel()
		a.mu.Lock()
		if gen == a.generation {
			a.searching = false
			a.cancel = nil
		}
		a.mu.Unlock()
	}()

	logger := a.logger.With().Str("keyword", keyword).Str("category", string(category)).Logger()
	logger.Debug().Msg("Search started")

	needle := norm.NFC.String(keyword)

	if category != CategoryAll {
		return a.branch(reqCtx, gen, category, needle, logger)
	}

	var wg sync.WaitGroup
	for _, c := range []Category{CategoryEmperor, CategoryEvent, CategoryPerson} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := a.branch(reqCtx, gen, c, needle, logger); err != nil {
				logger.Warn().
					Err(err).
					Str("branch", string(c)).
					Str("error_kind", string(apierr.KindOf(err))).
					Msg("Search branch failed")
			}
		}()
	}
	wg.Wait()
	return nil
}

// branch fetches and filters one category and stores the matches if gen is
// still current.
func (a *Aggregator) branch(ctx context.Context, gen uint64, c Category, needle string, logger zerolog.Logger) error {
	var (
		store func(*Results)
		count int
		err   error
	)

	switch c {
	case CategoryEmperor:
		var items []model.EmperorSummary
		items, err = a.api.ListEmperors(ctx, resource.EmperorFilter{}, 0, CandidateLimit)
		matched := filter(items, needle, a.displayLimit, emperorFields)
		count = len(matched)
		store = func(r *Results) { r.Emperors = matched }
	case CategoryEvent:
		var items []model.EventSummary
		items, err = a.api.ListEvents(ctx, resource.EventFilter{}, 0, CandidateLimit)
		matched := filter(items, needle, a.displayLimit, eventFields)
		count = len(matched)
		store = func(r *Results) { r.Events = matched }
	case CategoryPerson:
		var items []model.PersonSummary
		items, err = a.api.ListPersons(ctx, resource.PersonFilter{}, 0, CandidateLimit)
		matched := filter(items, needle, a.displayLimit, personFields)
		count = len(matched)
		store = func(r *Results) { r.Persons = matched }
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.closed || gen != a.generation {
		searchBranchesTotal.WithLabelValues(string(c), "stale").Inc()
		return nil
	}
	if err != nil {
		searchBranchesTotal.WithLabelValues(string(c), "failed").Inc()
		return err
	}

	store(&a.results)
	searchBranchesTotal.WithLabelValues(string(c), "ok").Inc()
	logger.Debug().Str("branch", string(c)).Int("count", count).Msg("Search branch complete")
	return nil
}

// supersede invalidates the running search. Callers hold a.mu.
func (a *Aggregator) supersede() {
	a.generation++
	a.searching = false
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
}

// ClearResults drops every result and discards a running search.
func (a *Aggregator) ClearResults() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.supersede()
	a.results = Results{}
}

// Close cancels a running search. Later searches return ErrClosed.
func (a *Aggregator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	a.supersede()
	a.stop()
}

// Results returns the matches of the latest search.
func (a *Aggregator) Results() Results {
	a.mu.Lock()
	defer a.mu.Unlock()
	r := a.results
	r.Emperors = append([]model.EmperorSummary(nil), r.Emperors...)
	r.Events = append([]model.EventSummary(nil), r.Events...)
	r.Persons = append([]model.PersonSummary(nil), r.Persons...)
	return r
}

// Searching reports whether a search is running.
func (a *Aggregator) Searching() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.searching
}
