package client

import (
	"net/url"
	"strconv"
	"strings"
)

// Param is a single query parameter.
type Param struct {
	Key   string
	Value string
}

// Query is an insertion-ordered list of query parameters. Unlike url.Values
// it encodes parameters in the order they were added.
type Query []Param

// Add appends key=value.
func (q *Query) Add(key, value string) *Query {
	*q = append(*q, Param{Key: key, Value: value})
	return q
}

// AddInt appends key=value for an integer value.
func (q *Query) AddInt(key string, value int) *Query {
	return q.Add(key, strconv.Itoa(value))
}

// AddOptional appends key=*value when value is non-nil. A non-nil pointer to
// the empty string is still sent.
func (q *Query) AddOptional(key string, value *string) *Query {
	if value == nil {
		return q
	}
	return q.Add(key, *value)
}

// Get returns the first value for key.
func (q Query) Get(key string) (string, bool) {
	for _, p := range q {
		if p.Key == key {
			return p.Value, true
		}
	}
	return "", false
}

// Encode renders the query in insertion order, URL-escaped.
func (q Query) Encode() string {
	if len(q) == 0 {
		return ""
	}
	var b strings.Builder
	for i, p := range q {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// Values converts the query to url.Values.
func (q Query) Values() url.Values {
	v := make(url.Values, len(q))
	for _, p := range q {
		v.Add(p.Key, p.Value)
	}
	return v
}
