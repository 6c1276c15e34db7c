package pagination

import (
	"github.com/Sternrassler/history-gogo-client/pkg/model"
	"github.com/Sternrassler/history-gogo-client/pkg/resource"
)

// Typed lists over resource.API.
type (
	EmperorList = List[model.EmperorSummary, resource.EmperorFilter]
	EventList   = List[model.EventSummary, resource.EventFilter]
	PersonList  = List[model.PersonSummary, resource.PersonFilter]
)

// NewEmperorList creates a list over api.ListEmperors.
func NewEmperorList(api resource.API, opts ...Option) (*EmperorList, error) {
	return New[model.EmperorSummary, resource.EmperorFilter]("emperor", api.ListEmperors, opts...)
}

// NewEventList creates a list over api.ListEvents.
func NewEventList(api resource.API, opts ...Option) (*EventList, error) {
	return New[model.EventSummary, resource.EventFilter]("event", api.ListEvents, opts...)
}

// NewPersonList creates a list over api.ListPersons.
func NewPersonList(api resource.API, opts ...Option) (*PersonList, error) {
	return New[model.PersonSummary, resource.PersonFilter]("person", api.ListPersons, opts...)
}
