package search

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/Sternrassler/history-gogo-client/pkg/model"
)

// Contains reports whether field contains keyword after NFC normalization.
// The comparison is case-sensitive.
func Contains(field, keyword string) bool {
	return strings.Contains(norm.NFC.String(field), norm.NFC.String(keyword))
}

// filter keeps items with a field containing needle, in input order, up to
// limit. needle is already normalized.
func filter[T any](items []T, needle string, limit int, fields func(T) []string) []T {
	out := make([]T, 0, min(limit, len(items)))
	for _, item := range items {
		if len(out) == limit {
			break
		}
		for _, f := range fields(item) {
			if f != "" && strings.Contains(norm.NFC.String(f), needle) {
				out = append(out, item)
				break
			}
		}
	}
	return out
}

func emperorFields(e model.EmperorSummary) []string {
	return []string{e.Name, model.Deref(e.TempleName), model.Deref(e.ReignTitle)}
}

func eventFields(e model.EventSummary) []string {
	return []string{e.Title, e.EventType, model.Deref(e.Location)}
}

func personFields(p model.PersonSummary) []string {
	return []string{p.Name, p.PersonType, model.Deref(p.Alias)}
}
