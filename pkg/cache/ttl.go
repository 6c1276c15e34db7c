package cache

import "time"

// TTLPolicy maps record kinds to cache lifetimes.
type TTLPolicy struct {
	Dynasty  time.Duration
	Emperor  time.Duration
	Event    time.Duration
	Person   time.Duration
	Timeline time.Duration
}

// DefaultTTLPolicy returns the default lifetimes. Dynasties change rarely.
func DefaultTTLPolicy() TTLPolicy {
	return TTLPolicy{
		Dynasty:  7 * 24 * time.Hour,
		Emperor:  24 * time.Hour,
		Event:    24 * time.Hour,
		Person:   24 * time.Hour,
		Timeline: 24 * time.Hour,
	}
}

// For returns the lifetime for kind. Unknown kinds get 0 (do not cache).
func (p TTLPolicy) For(kind Kind) time.Duration {
	switch kind {
	case KindDynasty:
		return p.Dynasty
	case KindEmperor:
		return p.Emperor
	case KindEvent:
		return p.Event
	case KindPerson:
		return p.Person
	case KindTimeline:
		return p.Timeline
	default:
		return 0
	}
}
