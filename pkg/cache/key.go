package cache

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// KeyPrefix namespaces every key this package writes.
const KeyPrefix = "hgg"

// Kind identifies the record kind behind a cached response.
type Kind string

// Record kinds.
const (
	KindDynasty  Kind = "dynasty"
	KindEmperor  Kind = "emperor"
	KindEvent    Kind = "event"
	KindPerson   Kind = "person"
	KindTimeline Kind = "timeline"
)

// Key identifies a cached history API response.
type Key struct {
	// Kind selects the TTL and labels metrics.
	Kind Kind

	// Path is the request path below the API prefix (e.g. "/emperors/ming_taizu").
	Path string

	// Params are the query parameters.
	Params url.Values
}

// String generates a deterministic cache key string.
// Format: hgg:path:query1=val1:query2=val2
//
// Example:
//
//	hgg:emperors:dynasty_id=ming:limit=20:skip=0
func (k Key) String() string {
	parts := []string{KeyPrefix}

	path := strings.Trim(k.Path, "/")
	if path != "" {
		parts = append(parts, path)
	}

	// Sorted so equal queries share a key.
	if len(k.Params) > 0 {
		keys := make([]string, 0, len(k.Params))
		for key := range k.Params {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			parts = append(parts, fmt.Sprintf("%s=%s", key, strings.Join(k.Params[key], ",")))
		}
	}

	return strings.Join(parts, ":")
}

// Pattern returns a Redis SCAN pattern matching every key under path, or
// every key this package wrote when path is empty.
func Pattern(path string) string {
	path = strings.Trim(path, "/")
	if path == "" {
		return KeyPrefix + ":*"
	}
	return KeyPrefix + ":" + path + "*"
}
