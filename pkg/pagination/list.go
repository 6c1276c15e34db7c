package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/logging"
	"github.com/Sternrassler/history-gogo-client/pkg/metrics"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
)

// DefaultPageSize is the number of records requested per page.
const DefaultPageSize = 20

// MaxPageSize is the largest page the server accepts.
const MaxPageSize = 100

// Page load outcomes used as metric labels.
const (
	outcomeLoaded    = "loaded"
	outcomeExhausted = "exhausted"
	outcomeFailed    = "failed"
	outcomeStale     = "stale"
)

var pageLoadsTotal = metrics.Factory().NewCounterVec(
	prometheus.CounterOpts{
		Namespace: metrics.Namespace,
		Name:      "page_loads_total",
		Help:      "Total number of list page loads by outcome",
	},
	[]string{"kind", "outcome"},
)

// ErrClosed is returned by operations on a closed List.
var ErrClosed = errors.New("pagination: list closed")

// PageFunc fetches limit records starting at skip, narrowed by filter.
// resource.API list methods have this shape.
type PageFunc[T any, F any] func(ctx context.Context, filter F, skip, limit int) ([]T, error)

// Option configures a List.
type Option func(*options)

type options struct {
	pageSize int
	dedupe   bool
	logger   *zerolog.Logger
}

// WithPageSize overrides DefaultPageSize.
func WithPageSize(n int) Option {
	return func(o *options) { o.pageSize = n }
}

// WithDedupe drops records whose id is already in the list. Off by default,
// so overlapping pages are appended as served.
func WithDedupe() Option {
	return func(o *options) { o.dedupe = true }
}

// WithLogger sets the logger. Defaults to the "pagination" component logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) { o.logger = &logger }
}

// State is a snapshot of a List.
type State[T any, F any] struct {
	Items     []T
	Filter    F
	Offset    int
	Loading   bool
	Exhausted bool
	Err       error
}

// List is a cursor over a paged endpoint. It is safe for concurrent use.
type List[T model.Record, F any] struct {
	kind     string
	fetch    PageFunc[T, F]
	pageSize int
	dedupe   bool
	logger   zerolog.Logger

	// base is cancelled by Close and parents every page request.
	base context.Context
	stop context.CancelFunc

	mu         sync.Mutex
	items      []T
	seen       map[string]struct{}
	filter     F
	offset     int
	loading    bool
	exhausted  bool
	err        error
	generation uint64
	cancel     context.CancelFunc
	closed     bool
}

// New creates a List named kind (used in logs and metrics) over fetch.
func New[T model.Record, F any](kind string, fetch PageFunc[T, F], opts ...Option) (*List[T, F], error) {
	if fetch == nil {
		return nil, errors.New("pagination: page func is required")
	}

	o := options{pageSize: DefaultPageSize}
	for _, opt := range opts {
		opt(&o)
	}
	if o.pageSize < 1 || o.pageSize > MaxPageSize {
		return nil, fmt.Errorf("pagination: page size must be in [1, %d] (got %d)", MaxPageSize, o.pageSize)
	}

	logger := logging.NewLogger("pagination")
	if o.logger != nil {
		logger = *o.logger
	}

	base, stop := context.WithCancel(context.Background())
	return &List[T, F]{
		kind:     kind,
		fetch:    fetch,
		pageSize: o.pageSize,
		dedupe:   o.dedupe,
		logger:   logger.With().Str("kind", kind).Logger(),
		base:     base,
		stop:     stop,
		items:    []T{},
		seen:     make(map[string]struct{}),
	}, nil
}

// PageSize returns the configured page size.
func (l *List[T, F]) PageSize() int {
	return l.pageSize
}

// LoadNext requests the next page. It is a no-op while a load is running or
// once the list is exhausted. An empty page, or an apierr EmptyResult, marks
// the list exhausted. A failure is stored in the state, returned,
// and leaves the cursor unchanged. A result superseded by Refresh or
// SetFilter is discarded and LoadNext returns nil.
func (l *List[T, F]) LoadNext(ctx context.Context) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	if l.loading || l.exhausted {
		l.mu.Unlock()
		return nil
	}
	l.loading = true
	l.err = nil
	gen := l.generation
	filter := l.filter
	offset := l.offset

	reqCtx, cancel := context.WithCancel(ctx)
	stopAfter := context.AfterFunc(l.base, cancel)
	l.cancel = cancel
	l.mu.Unlock()

	defer func() {
		stopAfter()
		cancel()
		l.mu.Lock()
		if gen == l.generation {
			l.loading = false
			l.cancel = nil
		}
		l.mu.Unlock()
	}()

	start := time.Now()
	page, err := l.fetch(reqCtx, filter, offset, l.pageSize)

	return l.apply(gen, offset, page, err, time.Since(start))
}

func (l *List[T, F]) apply(gen uint64, offset int, page []T, err error, elapsed time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed || gen != l.generation {
		pageLoadsTotal.WithLabelValues(l.kind, outcomeStale).Inc()
		l.logger.Debug().Int("offset", offset).Msg("Discarding superseded page")
		return nil
	}

	if errors.Is(err, apierr.ErrEmptyResult) {
		page, err = nil, nil
	}
	if err != nil {
		l.err = err
		pageLoadsTotal.WithLabelValues(l.kind, outcomeFailed).Inc()
		l.logger.Warn().
			Err(err).
			Str("error_kind", string(apierr.KindOf(err))).
			Int("offset", offset).
			Dur("duration", elapsed).
			Msg("Page load failed")
		return err
	}

	if len(page) == 0 {
		l.exhausted = true
		pageLoadsTotal.WithLabelValues(l.kind, outcomeExhausted).Inc()
		l.logger.Debug().Int("offset", offset).Int("total", len(l.items)).Msg("List exhausted")
		return nil
	}

	for _, item := range page {
		if l.dedupe {
			id := item.RecordID()
			if _, dup := l.seen[id]; dup {
				continue
			}
			l.seen[id] = struct{}{}
		}
		l.items = append(l.items, item)
	}
	l.offset += l.pageSize

	pageLoadsTotal.WithLabelValues(l.kind, outcomeLoaded).Inc()
	l.logger.Debug().
		Int("offset", offset).
		Int("count", len(page)).
		Dur("duration", elapsed).
		Msg("Page loaded")
	return nil
}

// Refresh drops every loaded record, makes filter the active filter and
// loads the first page. An in-flight load is cancelled and its result
// discarded.
func (l *List[T, F]) Refresh(ctx context.Context, filter F) error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return ErrClosed
	}
	l.supersede()
	l.items = []T{}
	l.seen = make(map[string]struct{})
	l.filter = filter
	l.offset = 0
	l.exhausted = false
	l.err = nil
	l.mu.Unlock()

	return l.LoadNext(ctx)
}

// SetFilter applies mutate to a copy of the active filter and refreshes
// with the result.
func (l *List[T, F]) SetFilter(ctx context.Context, mutate func(*F)) error {
	l.mu.Lock()
	filter := l.filter
	l.mu.Unlock()

	mutate(&filter)
	return l.Refresh(ctx, filter)
}

// supersede invalidates the in-flight load. Callers hold l.mu.
func (l *List[T, F]) supersede() {
	l.generation++
	l.loading = false
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Close cancels any in-flight load. Later calls return ErrClosed.
func (l *List[T, F]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.supersede()
	l.stop()
}

// State returns a snapshot of the list.
func (l *List[T, F]) State() State[T, F] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State[T, F]{
		Items:     append([]T(nil), l.items...),
		Filter:    l.filter,
		Offset:    l.offset,
		Loading:   l.loading,
		Exhausted: l.exhausted,
		Err:       l.err,
	}
}

// Items returns a copy of the loaded records.
func (l *List[T, F]) Items() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]T(nil), l.items...)
}

// Loading reports whether a page load is running.
func (l *List[T, F]) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Exhausted reports whether an empty page has been seen.
func (l *List[T, F]) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exhausted
}

// Err returns the error of the last load, or nil.
func (l *List[T, F]) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// Offset returns the skip value of the next page.
func (l *List[T, F]) Offset() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.offset
}

// Filter returns the active filter.
func (l *List[T, F]) Filter() F {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.filter
}
