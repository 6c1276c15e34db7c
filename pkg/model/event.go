package model

import (
	"github.com/Sternrassler/history-gogo-client/pkg/dates"
)

// Event types used by the server's event_type field.
const (
	EventTypePolitical     = "政治"
	EventTypeMilitary      = "军事"
	EventTypeCultural      = "文化"
	EventTypeEconomic      = "经济"
	EventTypeDiplomatic    = "外交"
	EventTypeNatural       = "自然灾害"
	EventTypeTechnological = "科技"
	EventTypeOther         = "其他"
)

// EventSummary is the list shape of an event.
type EventSummary struct {
	ID        string      `json:"event_id"`
	Title     string      `json:"title"`
	EventType string      `json:"event_type"`
	StartDate dates.Time  `json:"start_date"`
	EndDate   *dates.Time `json:"end_date"`
	Location  *string     `json:"location"`
	DynastyID string      `json:"dynasty_id"`
	EmperorID *string     `json:"emperor_id"`
}

// RecordID implements Record.
func (e EventSummary) RecordID() string { return e.ID }

// EventDetail is the single-record shape of an event.
type EventDetail struct {
	ID             string      `json:"event_id"`
	DynastyID      string      `json:"dynasty_id"`
	EmperorID      *string     `json:"emperor_id"`
	Title          string      `json:"title"`
	EventType      string      `json:"event_type"`
	StartDate      dates.Time  `json:"start_date"`
	EndDate        *dates.Time `json:"end_date"`
	Location       *string     `json:"location"`
	Description    *string     `json:"description"`
	Participants   *string     `json:"participants"`
	Casualties     *string     `json:"casualties"`
	Result         *string     `json:"result"`
	Significance   *string     `json:"significance"`
	DataSource     *string     `json:"data_source"`
	RelatedPersons []string    `json:"related_persons"`
	PersonCount    *int        `json:"person_count"`
}

// RecordID implements Record.
func (e EventDetail) RecordID() string { return e.ID }

// Summary projects the detail onto the list shape.
func (e EventDetail) Summary() EventSummary {
	return EventSummary{
		ID:        e.ID,
		Title:     e.Title,
		EventType: e.EventType,
		StartDate: e.StartDate,
		EndDate:   e.EndDate,
		Location:  e.Location,
		DynastyID: e.DynastyID,
		EmperorID: e.EmperorID,
	}
}

// DurationDays is the number of whole days between start and end.
func (e EventDetail) DurationDays() (int, bool) {
	if e.EndDate == nil {
		return 0, false
	}
	return int(e.EndDate.Sub(e.StartDate.Time).Hours() / 24), true
}
