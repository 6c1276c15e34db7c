// Package dates normalises the date strings sent by the history API.
//
// The server is not consistent about date encoding: the same field may carry a
// zoned timestamp, a naive timestamp or a bare calendar date. Parse tries a
// fixed, ordered list of layouts, always in UTC, so the result never depends on
// the host's locale or timezone.
package dates

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
)

// Format is one accepted date representation. A format may have several Go
// layouts when the server varies the offset notation.
type Format struct {
	Name    string
	Layouts []string
}

// Formats is the ordered list tried by Parse. The first match wins.
//
// Go accepts fractional seconds after the seconds field even when the layout
// omits them, so the zoned and naive timestamp layouts also cover ".SSS".
var Formats = []Format{
	{Name: "timestamp_zoned", Layouts: []string{"2006-01-02T15:04:05Z0700", "2006-01-02T15:04:05Z07:00"}},
	{Name: "timestamp", Layouts: []string{"2006-01-02T15:04:05"}},
	{Name: "datetime", Layouts: []string{"2006-01-02 15:04:05"}},
	{Name: "date", Layouts: []string{"2006-01-02"}},
}

// Parse converts s to an instant. It fails with an apierr KindDecode error
// carrying s when no format matches.
func Parse(s string) (time.Time, error) {
	for _, f := range Formats {
		for _, layout := range f.Layouts {
			if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
				return t.UTC(), nil
			}
		}
	}
	return time.Time{}, apierr.DecodeValue(s, nil)
}

// Time is a time.Time decoded through Parse. A JSON null leaves it zero; use
// *Time for optional fields.
type Time struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Time) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return apierr.DecodeValue(strings.TrimSpace(string(data)), err)
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON encodes the instant as RFC 3339 with millisecond precision, a
// form Parse accepts.
func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
}

// Of wraps a time.Time.
func Of(t time.Time) Time {
	return Time{Time: t.UTC()}
}

// Ptr wraps a time.Time into an optional field value, nil when t is zero.
func Ptr(t time.Time) *Time {
	if t.IsZero() {
		return nil
	}
	v := Of(t)
	return &v
}
