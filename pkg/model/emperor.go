package model

import (
	"github.com/Sternrassler/history-gogo-client/pkg/dates"
)

// EmperorSummary is the list shape of an emperor.
type EmperorSummary struct {
	ID            string      `json:"emperor_id"`
	Name          string      `json:"name"`
	TempleName    *string     `json:"temple_name"`
	ReignTitle    *string     `json:"reign_title"`
	ReignStart    dates.Time  `json:"reign_start"`
	ReignEnd      *dates.Time `json:"reign_end"`
	ReignDuration *int        `json:"reign_duration"`
	DynastyOrder  int         `json:"dynasty_order"`
	PortraitURL   *string     `json:"portrait_url"`
}

// RecordID implements Record.
func (e EmperorSummary) RecordID() string { return e.ID }

// FullTitle prefixes the temple name when there is one, e.g. "明太祖 朱元璋".
func (e EmperorSummary) FullTitle() string {
	if e.TempleName != nil {
		return *e.TempleName + " " + e.Name
	}
	return e.Name
}

// EmperorDetail is the single-record shape of an emperor.
type EmperorDetail struct {
	ID            string      `json:"emperor_id"`
	DynastyID     string      `json:"dynasty_id"`
	Name          string      `json:"name"`
	TempleName    *string     `json:"temple_name"`
	ReignTitle    *string     `json:"reign_title"`
	BirthDate     *dates.Time `json:"birth_date"`
	DeathDate     *dates.Time `json:"death_date"`
	ReignStart    dates.Time  `json:"reign_start"`
	ReignEnd      *dates.Time `json:"reign_end"`
	ReignDuration *int        `json:"reign_duration"`
	DynastyOrder  int         `json:"dynasty_order"`
	Biography     *string     `json:"biography"`
	Achievements  *string     `json:"achievements"`
	PortraitURL   *string     `json:"portrait_url"`
	DataSource    *string     `json:"data_source"`
	EventCount    *int        `json:"event_count"`
	PersonCount   *int        `json:"person_count"`
}

// RecordID implements Record.
func (e EmperorDetail) RecordID() string { return e.ID }

// Summary projects the detail onto the list shape.
func (e EmperorDetail) Summary() EmperorSummary {
	return EmperorSummary{
		ID:            e.ID,
		Name:          e.Name,
		TempleName:    e.TempleName,
		ReignTitle:    e.ReignTitle,
		ReignStart:    e.ReignStart,
		ReignEnd:      e.ReignEnd,
		ReignDuration: e.ReignDuration,
		DynastyOrder:  e.DynastyOrder,
		PortraitURL:   e.PortraitURL,
	}
}

// Lifespan is the age at death in whole years, if both dates are known.
func (e EmperorDetail) Lifespan() (int, bool) {
	return yearsBetween(e.BirthDate, e.DeathDate)
}

// yearsBetween counts whole calendar years from a to b.
func yearsBetween(a, b *dates.Time) (int, bool) {
	if a == nil || b == nil {
		return 0, false
	}
	years := b.Year() - a.Year()
	if b.Month() < a.Month() || (b.Month() == a.Month() && b.Day() < a.Day()) {
		years--
	}
	return years, true
}
