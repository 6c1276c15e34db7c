package cache

import (
	"encoding/json"
	"time"
)

// Entry is a cached response document.
type Entry struct {
	// Kind is the record kind the document holds.
	Kind Kind `json:"kind"`

	// Data is the JSON-encoded value.
	Data json.RawMessage `json:"data"`

	// Expires is when the entry becomes stale.
	Expires time.Time `json:"expires"`

	// CachedAt is when the entry was stored.
	CachedAt time.Time `json:"cached_at"`
}

// NewEntry encodes v into an entry that expires after ttl.
func NewEntry(kind Kind, v any, ttl time.Duration) (*Entry, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return &Entry{
		Kind:     kind,
		Data:     data,
		Expires:  now.Add(ttl),
		CachedAt: now,
	}, nil
}

// Decode unmarshals the cached document into out.
func (e *Entry) Decode(out any) error {
	return json.Unmarshal(e.Data, out)
}

// IsExpired returns true if the cache entry has expired.
func (e *Entry) IsExpired() bool {
	return time.Now().After(e.Expires)
}

// TTL returns the time until expiration.
// Returns 0 if already expired.
func (e *Entry) TTL() time.Duration {
	ttl := time.Until(e.Expires)
	if ttl < 0 {
		return 0
	}
	return ttl
}

// Age returns how long ago the entry was stored.
func (e *Entry) Age() time.Duration {
	return time.Since(e.CachedAt)
}
