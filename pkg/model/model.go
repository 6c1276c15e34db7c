// Package model holds the records returned by the history API.
//
// Records are plain values decoded from snake_case JSON. Relations between
// records are identifier strings; nothing here resolves them.
package model

import (
	"fmt"

	"github.com/Sternrassler/history-gogo-client/pkg/dates"
)

// Record is implemented by every list record so generic code can key it.
type Record interface {
	RecordID() string
}

// Dynasty is a dynasty record. List and detail share one shape.
type Dynasty struct {
	ID          string      `json:"dynasty_id"`
	Name        string      `json:"name"`
	StartYear   int         `json:"start_year"`
	EndYear     int         `json:"end_year"`
	Capital     *string     `json:"capital"`
	Founder     *string     `json:"founder"`
	Description *string     `json:"description"`
	CreatedAt   *dates.Time `json:"created_at"`
	UpdatedAt   *dates.Time `json:"updated_at"`
}

// RecordID implements Record.
func (d Dynasty) RecordID() string { return d.ID }

// Duration is the span of the dynasty in years.
func (d Dynasty) Duration() int {
	return d.EndYear - d.StartYear
}

// TimeSpan renders "1368 - 1644".
func (d Dynasty) TimeSpan() string {
	return fmt.Sprintf("%d - %d", d.StartYear, d.EndYear)
}

// Deref returns *s or "" when s is nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
