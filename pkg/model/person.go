package model

import (
	"github.com/Sternrassler/history-gogo-client/pkg/dates"
)

// Person types used by the server's person_type field.
const (
	PersonTypeEmperor   = "皇帝"
	PersonTypeOfficial  = "文臣"
	PersonTypeGeneral   = "武将"
	PersonTypeWriter    = "文学家"
	PersonTypeArtist    = "艺术家"
	PersonTypeThinker   = "思想家"
	PersonTypeScientist = "科学家"
	PersonTypeRoyal     = "宗室"
	PersonTypeMonk      = "僧侣"
	PersonTypeMerchant  = "商人"
	PersonTypeOther     = "其他"
)

// PersonSummary is the list shape of a person.
type PersonSummary struct {
	ID         string      `json:"person_id"`
	Name       string      `json:"name"`
	PersonType string      `json:"person_type"`
	Alias      *string     `json:"alias"`
	BirthDate  *dates.Time `json:"birth_date"`
	DeathDate  *dates.Time `json:"death_date"`
	DynastyID  string      `json:"dynasty_id"`
}

// RecordID implements Record.
func (p PersonSummary) RecordID() string { return p.ID }

// PersonDetail is the single-record shape of a person.
type PersonDetail struct {
	ID              string      `json:"person_id"`
	DynastyID       string      `json:"dynasty_id"`
	Name            string      `json:"name"`
	PersonType      string      `json:"person_type"`
	Alias           *string     `json:"alias"`
	BirthDate       *dates.Time `json:"birth_date"`
	DeathDate       *dates.Time `json:"death_date"`
	Position        *string     `json:"position"`
	Biography       *string     `json:"biography"`
	Achievements    *string     `json:"achievements"`
	DataSource      *string     `json:"data_source"`
	RelatedEmperors []string    `json:"related_emperors"`
	Style           *string     `json:"style"`
	Works           []string    `json:"works"`
	EventCount      *int        `json:"event_count"`
	WorkCount       *int        `json:"work_count"`
}

// RecordID implements Record.
func (p PersonDetail) RecordID() string { return p.ID }

// Summary projects the detail onto the list shape.
func (p PersonDetail) Summary() PersonSummary {
	return PersonSummary{
		ID:         p.ID,
		Name:       p.Name,
		PersonType: p.PersonType,
		Alias:      p.Alias,
		BirthDate:  p.BirthDate,
		DeathDate:  p.DeathDate,
		DynastyID:  p.DynastyID,
	}
}

// FullName renders "郑和（三宝太监）" when an alias is present.
func (p PersonDetail) FullName() string {
	if p.Alias != nil && *p.Alias != "" {
		return p.Name + "（" + *p.Alias + "）"
	}
	return p.Name
}

// Lifespan is the age at death in whole years, if both dates are known.
func (p PersonDetail) Lifespan() (int, bool) {
	return yearsBetween(p.BirthDate, p.DeathDate)
}
