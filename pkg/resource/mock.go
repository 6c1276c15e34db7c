package resource

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
)

// Operation names a single API method, for failure injection and call counts.
type Operation string

// API operations.
const (
	OpListDynasties Operation = "list_dynasties"
	OpGetDynasty    Operation = "get_dynasty"
	OpListEmperors  Operation = "list_emperors"
	OpGetEmperor    Operation = "get_emperor"
	OpListEvents    Operation = "list_events"
	OpGetEvent      Operation = "get_event"
	OpListPersons   Operation = "list_persons"
	OpGetPerson     Operation = "get_person"
	OpGetTimeline   Operation = "get_timeline"
)

// Default mock latencies.
const (
	DefaultMockDelay         = 500 * time.Millisecond
	DefaultMockTimelineDelay = time.Second
)

// Mock implements API over in-memory fixtures. Lists honor filters, skip
// and limit the way the server does. Every call sleeps for Delay first
// (TimelineDelay for GetTimeline); the sleep aborts with a TransportFailure
// when ctx is done.
type Mock struct {
	mu            sync.Mutex
	fixtures      Fixtures
	delay         time.Duration
	timelineDelay time.Duration
	failures      map[Operation]error
	calls         map[Operation]int
}

// MockOption configures a Mock.
type MockOption func(*Mock)

// WithDelay sets the artificial latency for every call except GetTimeline.
func WithDelay(d time.Duration) MockOption {
	return func(m *Mock) { m.delay = d }
}

// WithTimelineDelay sets the artificial latency for GetTimeline.
func WithTimelineDelay(d time.Duration) MockOption {
	return func(m *Mock) { m.timelineDelay = d }
}

// WithFixtures replaces the default data set.
func WithFixtures(f Fixtures) MockOption {
	return func(m *Mock) { m.fixtures = f }
}

// NewMock creates a Mock serving DefaultFixtures.
func NewMock(opts ...MockOption) *Mock {
	m := &Mock{
		fixtures:      DefaultFixtures(),
		delay:         DefaultMockDelay,
		timelineDelay: DefaultMockTimelineDelay,
		failures:      make(map[Operation]error),
		calls:         make(map[Operation]int),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

var _ API = (*Mock)(nil)

// Fail makes every subsequent call of op return err. A nil err clears it.
func (m *Mock) Fail(op Operation, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err == nil {
		delete(m.failures, op)
		return
	}
	m.failures[op] = err
}

// Calls returns how many times op was invoked.
func (m *Mock) Calls(op Operation) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[op]
}

// Fixtures returns the data set served by the mock.
func (m *Mock) Fixtures() Fixtures {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fixtures
}

func (m *Mock) begin(ctx context.Context, op Operation) (Fixtures, error) {
	m.mu.Lock()
	m.calls[op]++
	delay := m.delay
	if op == OpGetTimeline {
		delay = m.timelineDelay
	}
	injected := m.failures[op]
	fixtures := m.fixtures
	m.mu.Unlock()

	if delay > 0 {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return Fixtures{}, apierr.Transport(ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return Fixtures{}, apierr.Transport(err)
	}

	if injected != nil {
		return Fixtures{}, injected
	}
	return fixtures, nil
}

// ListDynasties returns every dynasty ordered by start year.
func (m *Mock) ListDynasties(ctx context.Context) ([]model.Dynasty, error) {
	f, err := m.begin(ctx, OpListDynasties)
	if err != nil {
		return nil, err
	}
	out := append([]model.Dynasty{}, f.Dynasties...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartYear < out[j].StartYear })
	return out, nil
}

// GetDynasty returns one dynasty.
func (m *Mock) GetDynasty(ctx context.Context, id string) (model.Dynasty, error) {
	f, err := m.begin(ctx, OpGetDynasty)
	if err != nil {
		return model.Dynasty{}, err
	}
	for _, d := range f.Dynasties {
		if d.ID == id {
			return d, nil
		}
	}
	return model.Dynasty{}, notFound("朝代", id)
}

// ListEmperors returns a page of emperors ordered by dynasty order.
func (m *Mock) ListEmperors(ctx context.Context, filter EmperorFilter, skip, limit int) ([]model.EmperorSummary, error) {
	f, err := m.begin(ctx, OpListEmperors)
	if err != nil {
		return nil, err
	}
	if err := checkPage(skip, limit); err != nil {
		return nil, err
	}

	matched := filterSlice(f.Emperors, func(e model.EmperorDetail) bool {
		return matches(filter.DynastyID, e.DynastyID)
	})
	sort.SliceStable(matched, func(i, j int) bool {
		if matched[i].DynastyID != matched[j].DynastyID {
			return matched[i].ReignStart.Before(matched[j].ReignStart.Time)
		}
		return matched[i].DynastyOrder < matched[j].DynastyOrder
	})

	out := make([]model.EmperorSummary, 0, limit)
	for _, e := range page(matched, skip, limit) {
		out = append(out, e.Summary())
	}
	return out, nil
}

// GetEmperor returns one emperor.
func (m *Mock) GetEmperor(ctx context.Context, id string) (model.EmperorDetail, error) {
	f, err := m.begin(ctx, OpGetEmperor)
	if err != nil {
		return model.EmperorDetail{}, err
	}
	for _, e := range f.Emperors {
		if e.ID == id {
			return e, nil
		}
	}
	return model.EmperorDetail{}, notFound("皇帝", id)
}

// ListEvents returns a page of events ordered by start date.
func (m *Mock) ListEvents(ctx context.Context, filter EventFilter, skip, limit int) ([]model.EventSummary, error) {
	f, err := m.begin(ctx, OpListEvents)
	if err != nil {
		return nil, err
	}
	if err := checkPage(skip, limit); err != nil {
		return nil, err
	}

	matched := filterSlice(f.Events, func(e model.EventDetail) bool {
		return matches(filter.DynastyID, e.DynastyID) &&
			matches(filter.EmperorID, model.Deref(e.EmperorID)) &&
			matches(filter.EventType, e.EventType)
	})
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].StartDate.Before(matched[j].StartDate.Time) })

	out := make([]model.EventSummary, 0, limit)
	for _, e := range page(matched, skip, limit) {
		out = append(out, e.Summary())
	}
	return out, nil
}

// GetEvent returns one event.
func (m *Mock) GetEvent(ctx context.Context, id string) (model.EventDetail, error) {
	f, err := m.begin(ctx, OpGetEvent)
	if err != nil {
		return model.EventDetail{}, err
	}
	for _, e := range f.Events {
		if e.ID == id {
			return e, nil
		}
	}
	return model.EventDetail{}, notFound("事件", id)
}

// ListPersons returns a page of persons in fixture order.
func (m *Mock) ListPersons(ctx context.Context, filter PersonFilter, skip, limit int) ([]model.PersonSummary, error) {
	f, err := m.begin(ctx, OpListPersons)
	if err != nil {
		return nil, err
	}
	if err := checkPage(skip, limit); err != nil {
		return nil, err
	}

	matched := filterSlice(f.Persons, func(p model.PersonDetail) bool {
		return matches(filter.DynastyID, p.DynastyID) && matches(filter.PersonType, p.PersonType)
	})

	out := make([]model.PersonSummary, 0, limit)
	for _, p := range page(matched, skip, limit) {
		out = append(out, p.Summary())
	}
	return out, nil
}

// GetPerson returns one person.
func (m *Mock) GetPerson(ctx context.Context, id string) (model.PersonDetail, error) {
	f, err := m.begin(ctx, OpGetPerson)
	if err != nil {
		return model.PersonDetail{}, err
	}
	for _, p := range f.Persons {
		if p.ID == id {
			return p, nil
		}
	}
	return model.PersonDetail{}, notFound("人物", id)
}

// GetTimeline builds the timeline of a dynasty from the fixtures.
func (m *Mock) GetTimeline(ctx context.Context, dynastyID string) (model.TimelineResponse, error) {
	f, err := m.begin(ctx, OpGetTimeline)
	if err != nil {
		return model.TimelineResponse{}, err
	}
	tl, ok := f.Timeline(dynastyID)
	if !ok {
		return model.TimelineResponse{}, notFound("朝代", dynastyID)
	}
	return tl, nil
}

func matches(filter *string, value string) bool {
	return filter == nil || *filter == value
}

func page[T any](items []T, skip, limit int) []T {
	start := min(skip, len(items))
	end := min(start+limit, len(items))
	return items[start:end]
}

// checkPage mirrors the server's validation: skip >= 0, 1 <= limit <= 100.
func checkPage(skip, limit int) error {
	if skip < 0 || limit < 1 || limit > MaxLimit {
		return apierr.Server(http.StatusUnprocessableEntity,
			fmt.Sprintf("invalid page: skip=%d limit=%d", skip, limit))
	}
	return nil
}

func notFound(noun, id string) error {
	return apierr.Server(http.StatusNotFound, fmt.Sprintf("%s不存在: %s", noun, id))
}
