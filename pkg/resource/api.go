// Package resource exposes the history API as typed operations.
//
// API is implemented by Client (HTTP), Mock (in-memory fixtures with an
// artificial latency) and Cached (a Redis read-through decorator). Callers
// depend on API so the three are interchangeable.
package resource

import (
	"context"
	"net/url"

	"github.com/Sternrassler/history-gogo-client/pkg/client"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
)

// Endpoint paths below the API prefix.
const (
	PathDynasties = "/dynasties"
	PathEmperors  = "/emperors"
	PathEvents    = "/events"
	PathPersons   = "/persons"
	PathTimeline  = "/timeline"
)

// MaxLimit is the largest page the server accepts.
const MaxLimit = 100

// API is the set of read operations offered by the history service.
type API interface {
	ListDynasties(ctx context.Context) ([]model.Dynasty, error)
	GetDynasty(ctx context.Context, id string) (model.Dynasty, error)
	ListEmperors(ctx context.Context, filter EmperorFilter, skip, limit int) ([]model.EmperorSummary, error)
	GetEmperor(ctx context.Context, id string) (model.EmperorDetail, error)
	ListEvents(ctx context.Context, filter EventFilter, skip, limit int) ([]model.EventSummary, error)
	GetEvent(ctx context.Context, id string) (model.EventDetail, error)
	ListPersons(ctx context.Context, filter PersonFilter, skip, limit int) ([]model.PersonSummary, error)
	GetPerson(ctx context.Context, id string) (model.PersonDetail, error)
	GetTimeline(ctx context.Context, dynastyID string) (model.TimelineResponse, error)
}

// EmperorFilter narrows ListEmperors. Nil fields are not sent.
type EmperorFilter struct {
	DynastyID *string
}

// EventFilter narrows ListEvents. Nil fields are not sent.
type EventFilter struct {
	DynastyID *string
	EmperorID *string
	EventType *string
}

// PersonFilter narrows ListPersons. Nil fields are not sent.
type PersonFilter struct {
	DynastyID  *string
	PersonType *string
}

// String returns a pointer to s, for filter literals.
func String(s string) *string {
	return &s
}

func pageQuery(skip, limit int) client.Query {
	q := make(client.Query, 0, 5)
	q.AddInt("skip", skip).AddInt("limit", limit)
	return q
}

// EmperorQuery builds the list query: skip, limit, then present filters.
func EmperorQuery(f EmperorFilter, skip, limit int) client.Query {
	q := pageQuery(skip, limit)
	q.AddOptional("dynasty_id", f.DynastyID)
	return q
}

// EventQuery builds the list query: skip, limit, then present filters.
func EventQuery(f EventFilter, skip, limit int) client.Query {
	q := pageQuery(skip, limit)
	q.AddOptional("dynasty_id", f.DynastyID).
		AddOptional("emperor_id", f.EmperorID).
		AddOptional("event_type", f.EventType)
	return q
}

// PersonQuery builds the list query: skip, limit, then present filters.
func PersonQuery(f PersonFilter, skip, limit int) client.Query {
	q := pageQuery(skip, limit)
	q.AddOptional("dynasty_id", f.DynastyID).
		AddOptional("person_type", f.PersonType)
	return q
}

// itemPath joins a collection path and an escaped identifier.
func itemPath(collection, id string) string {
	return collection + "/" + url.PathEscape(id)
}
