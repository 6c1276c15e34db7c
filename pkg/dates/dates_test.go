package dates

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Sternrassler/history-gogo-client/pkg/apierr"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "zoned with millis",
			input:    "2024-01-01T08:30:00.250+0800",
			expected: time.Date(2024, 1, 1, 0, 30, 0, 250_000_000, time.UTC),
		},
		{
			name:     "zoned with colon offset",
			input:    "2024-01-01T08:30:00+08:00",
			expected: time.Date(2024, 1, 1, 0, 30, 0, 0, time.UTC),
		},
		{
			name:     "zulu",
			input:    "2024-01-01T00:00:00Z",
			expected: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "naive timestamp",
			input:    "1368-01-23T00:00:00",
			expected: time.Date(1368, 1, 23, 0, 0, 0, 0, time.UTC),
		},
		{
			name:     "naive timestamp with fraction",
			input:    "1368-01-23T00:00:00.5",
			expected: time.Date(1368, 1, 23, 0, 0, 0, 500_000_000, time.UTC),
		},
		{
			name:     "sql datetime",
			input:    "1644-04-25 12:00:00",
			expected: time.Date(1644, 4, 25, 12, 0, 0, 0, time.UTC),
		},
		{
			name:     "calendar date",
			input:    "1405-07-11",
			expected: time.Date(1405, 7, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.input, err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Parse(%q) = %v, want %v", tt.input, got, tt.expected)
			}
			if got.Location() != time.UTC {
				t.Errorf("Parse(%q) location = %v, want UTC", tt.input, got.Location())
			}
		})
	}
}

func TestParse_ZonedAndNaiveAgree(t *testing.T) {
	zoned, err := Parse("2024-01-01T00:00:00Z")
	if err != nil {
		t.Fatalf("Parse zoned: %v", err)
	}
	naive, err := Parse("2024-01-01T00:00:00")
	if err != nil {
		t.Fatalf("Parse naive: %v", err)
	}
	if !zoned.Equal(naive) {
		t.Errorf("zoned %v != naive %v", zoned, naive)
	}
}

func TestParse_Unsupported(t *testing.T) {
	for _, input := range []string{"01/01/2024", "", "yesterday", "2024-13-45"} {
		t.Run(input, func(t *testing.T) {
			got, err := Parse(input)
			if err == nil {
				t.Fatalf("Parse(%q) = %v, want error", input, got)
			}
			if !errors.Is(err, apierr.ErrDecode) {
				t.Errorf("Parse(%q) error = %v, want decode failure", input, err)
			}
			var apiErr *apierr.Error
			if !errors.As(err, &apiErr) || apiErr.Value != input {
				t.Errorf("error should carry offending value %q, got %+v", input, apiErr)
			}
			if !got.IsZero() {
				t.Errorf("failed parse should return zero time, got %v", got)
			}
		})
	}
}

func TestTime_UnmarshalJSON(t *testing.T) {
	var record struct {
		Start Time  `json:"start"`
		End   *Time `json:"end"`
		Born  *Time `json:"born"`
	}

	data := []byte(`{"start": "1368-01-23", "end": null, "born": "1328-10-21 00:00:00"}`)
	if err := json.Unmarshal(data, &record); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if want := time.Date(1368, 1, 23, 0, 0, 0, 0, time.UTC); !record.Start.Equal(want) {
		t.Errorf("Start = %v, want %v", record.Start, want)
	}
	if record.End != nil {
		t.Errorf("End = %v, want nil", record.End)
	}
	if record.Born == nil || record.Born.Year() != 1328 {
		t.Errorf("Born = %v, want 1328-10-21", record.Born)
	}
}

func TestTime_UnmarshalJSON_BadDate(t *testing.T) {
	var record struct {
		Start Time `json:"start"`
	}

	err := json.Unmarshal([]byte(`{"start": "01/01/2024"}`), &record)
	if !errors.Is(err, apierr.ErrDecode) {
		t.Fatalf("Unmarshal error = %v, want decode failure", err)
	}
}

func TestTime_MarshalRoundTrip(t *testing.T) {
	original := Of(time.Date(1405, 7, 11, 3, 4, 5, 0, time.UTC))

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded Time
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal(%s): %v", data, err)
	}
	if !decoded.Equal(original.Time) {
		t.Errorf("round trip = %v, want %v", decoded, original)
	}
}

func TestPtr(t *testing.T) {
	if Ptr(time.Time{}) != nil {
		t.Error("Ptr(zero) should be nil")
	}
	if p := Ptr(time.Date(1500, 1, 1, 0, 0, 0, 0, time.UTC)); p == nil || p.Year() != 1500 {
		t.Errorf("Ptr() = %v", p)
	}
}
