package resource

import (
	"context"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
	"github.com/Sternrassler/history-gogo-client/pkg/client"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
)

// Getter is the part of the transport the resource client needs.
// *client.Client implements it.
type Getter interface {
	Get(ctx context.Context, path string, query client.Query, out any) error
}

// Client implements API over HTTP. Errors from the transport are returned
// unchanged.
type Client struct {
	transport Getter
}

// NewClient creates a resource client over transport.
func NewClient(transport Getter) *Client {
	return &Client{transport: transport}
}

var _ API = (*Client)(nil)

// ListDynasties returns every dynasty.
func (c *Client) ListDynasties(ctx context.Context) ([]model.Dynasty, error) {
	return getList[model.Dynasty](ctx, c.transport, PathDynasties, nil)
}

// GetDynasty returns one dynasty.
func (c *Client) GetDynasty(ctx context.Context, id string) (model.Dynasty, error) {
	return getItem[model.Dynasty](ctx, c.transport, PathDynasties, id)
}

// ListEmperors returns a page of emperors.
func (c *Client) ListEmperors(ctx context.Context, filter EmperorFilter, skip, limit int) ([]model.EmperorSummary, error) {
	return getList[model.EmperorSummary](ctx, c.transport, PathEmperors, EmperorQuery(filter, skip, limit))
}

// GetEmperor returns one emperor.
func (c *Client) GetEmperor(ctx context.Context, id string) (model.EmperorDetail, error) {
	return getItem[model.EmperorDetail](ctx, c.transport, PathEmperors, id)
}

// ListEvents returns a page of events.
func (c *Client) ListEvents(ctx context.Context, filter EventFilter, skip, limit int) ([]model.EventSummary, error) {
	return getList[model.EventSummary](ctx, c.transport, PathEvents, EventQuery(filter, skip, limit))
}

// GetEvent returns one event.
func (c *Client) GetEvent(ctx context.Context, id string) (model.EventDetail, error) {
	return getItem[model.EventDetail](ctx, c.transport, PathEvents, id)
}

// ListPersons returns a page of persons.
func (c *Client) ListPersons(ctx context.Context, filter PersonFilter, skip, limit int) ([]model.PersonSummary, error) {
	return getList[model.PersonSummary](ctx, c.transport, PathPersons, PersonQuery(filter, skip, limit))
}

// GetPerson returns one person.
func (c *Client) GetPerson(ctx context.Context, id string) (model.PersonDetail, error) {
	return getItem[model.PersonDetail](ctx, c.transport, PathPersons, id)
}

// GetTimeline returns the year-by-year timeline of a dynasty.
func (c *Client) GetTimeline(ctx context.Context, dynastyID string) (model.TimelineResponse, error) {
	return getItem[model.TimelineResponse](ctx, c.transport, PathTimeline, dynastyID)
}

func getList[T any](ctx context.Context, t Getter, path string, query client.Query) ([]T, error) {
	var out []T
	if err := t.Get(ctx, path, query, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

func getItem[T any](ctx context.Context, t Getter, collection, id string) (T, error) {
	var out T
	if id == "" {
		return out, apierr.InvalidTarget(collection+"/", nil)
	}
	if err := t.Get(ctx, itemPath(collection, id), nil, &out); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
