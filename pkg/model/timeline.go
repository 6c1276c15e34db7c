package model

import (
	"github.com/Sternrassler/history-gogo-client/pkg/dates"
)

// TimelineEvent is an event as embedded in a timeline year.
type TimelineEvent struct {
	ID        string  `json:"event_id"`
	Title     string  `json:"title"`
	EventType string  `json:"event_type"`
	Location  *string `json:"location"`
}

// TimelineEmperor is the emperor reigning in a timeline year.
type TimelineEmperor struct {
	EmperorID  string      `json:"emperor_id"`
	Name       string      `json:"name"`
	TempleName *string     `json:"temple_name"`
	ReignStart dates.Time  `json:"reign_start"`
	ReignEnd   *dates.Time `json:"reign_end"`
}

// DisplayName prefers the temple name.
func (e TimelineEmperor) DisplayName() string {
	if e.TempleName != nil {
		return *e.TempleName
	}
	return e.Name
}

// TimelineItem is one year of a dynasty timeline.
type TimelineItem struct {
	Year    int              `json:"year"`
	Events  []TimelineEvent  `json:"events"`
	Emperor *TimelineEmperor `json:"emperor"`
}

// HasEvents reports whether anything happened that year.
func (i TimelineItem) HasEvents() bool {
	return len(i.Events) > 0
}

// TimelineResponse is the payload of GET /timeline/{dynastyId}.
type TimelineResponse struct {
	DynastyID     string         `json:"dynasty_id"`
	DynastyName   string         `json:"dynasty_name"`
	StartYear     int            `json:"start_year"`
	EndYear       int            `json:"end_year"`
	Timeline      []TimelineItem `json:"timeline"`
	TotalEvents   int            `json:"total_events"`
	TotalEmperors int            `json:"total_emperors"`
}

// RecordID implements Record; a timeline is keyed by its dynasty.
func (r TimelineResponse) RecordID() string { return r.DynastyID }

// ItemForYear returns the entry for year, if present.
func (r TimelineResponse) ItemForYear(year int) (TimelineItem, bool) {
	for _, item := range r.Timeline {
		if item.Year == year {
			return item, true
		}
	}
	return TimelineItem{}, false
}

// YearsWithEvents lists the years that have at least one event, in order.
func (r TimelineResponse) YearsWithEvents() []int {
	var years []int
	for _, item := range r.Timeline {
		if item.HasEvents() {
			years = append(years, item.Year)
		}
	}
	return years
}

// FilterByEventType returns the years containing an event of eventType.
func (r TimelineResponse) FilterByEventType(eventType string) []TimelineItem {
	var out []TimelineItem
	for _, item := range r.Timeline {
		for _, ev := range item.Events {
			if ev.EventType == eventType {
				out = append(out, item)
				break
			}
		}
	}
	return out
}
