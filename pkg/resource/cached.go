package resource

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/history-gogo-client/pkg/cache"
	"github.com/Sternrassler/history-gogo-client/pkg/client"
	"github.com/Sternrassler/history-gogo-client/pkg/model"
)

// Cached is a read-through cache in front of another API. Cache failures
// are logged and the call falls through to the wrapped API; errors from the
// wrapped API are returned unchanged and never cached.
type Cached struct {
	next    API
	manager *cache.Manager
	policy  cache.TTLPolicy
	logger  zerolog.Logger
}

// NewCached wraps next with manager using policy for entry lifetimes.
func NewCached(next API, manager *cache.Manager, policy cache.TTLPolicy, logger zerolog.Logger) *Cached {
	return &Cached{
		next:    next,
		manager: manager,
		policy:  policy,
		logger:  logger,
	}
}

var _ API = (*Cached)(nil)

// ListDynasties implements API.
func (c *Cached) ListDynasties(ctx context.Context) ([]model.Dynasty, error) {
	key := cache.Key{Kind: cache.KindDynasty, Path: PathDynasties}
	return readThrough(ctx, c, key, func() ([]model.Dynasty, error) {
		return c.next.ListDynasties(ctx)
	})
}

// GetDynasty implements API.
func (c *Cached) GetDynasty(ctx context.Context, id string) (model.Dynasty, error) {
	key := cache.Key{Kind: cache.KindDynasty, Path: itemPath(PathDynasties, id)}
	return readThrough(ctx, c, key, func() (model.Dynasty, error) {
		return c.next.GetDynasty(ctx, id)
	})
}

// ListEmperors implements API.
func (c *Cached) ListEmperors(ctx context.Context, filter EmperorFilter, skip, limit int) ([]model.EmperorSummary, error) {
	key := listKey(cache.KindEmperor, PathEmperors, EmperorQuery(filter, skip, limit))
	return readThrough(ctx, c, key, func() ([]model.EmperorSummary, error) {
		return c.next.ListEmperors(ctx, filter, skip, limit)
	})
}

// GetEmperor implements API.
func (c *Cached) GetEmperor(ctx context.Context, id string) (model.EmperorDetail, error) {
	key := cache.Key{Kind: cache.KindEmperor, Path: itemPath(PathEmperors, id)}
	return readThrough(ctx, c, key, func() (model.EmperorDetail, error) {
		return c.next.GetEmperor(ctx, id)
	})
}

// ListEvents implements API.
func (c *Cached) ListEvents(ctx context.Context, filter EventFilter, skip, limit int) ([]model.EventSummary, error) {
	key := listKey(cache.KindEvent, PathEvents, EventQuery(filter, skip, limit))
	return readThrough(ctx, c, key, func() ([]model.EventSummary, error) {
		return c.next.ListEvents(ctx, filter, skip, limit)
	})
}

// GetEvent implements API.
func (c *Cached) GetEvent(ctx context.Context, id string) (model.EventDetail, error) {
	key := cache.Key{Kind: cache.KindEvent, Path: itemPath(PathEvents, id)}
	return readThrough(ctx, c, key, func() (model.EventDetail, error) {
		return c.next.GetEvent(ctx, id)
	})
}

// ListPersons implements API.
func (c *Cached) ListPersons(ctx context.Context, filter PersonFilter, skip, limit int) ([]model.PersonSummary, error) {
	key := listKey(cache.KindPerson, PathPersons, PersonQuery(filter, skip, limit))
	return readThrough(ctx, c, key, func() ([]model.PersonSummary, error) {
		return c.next.ListPersons(ctx, filter, skip, limit)
	})
}

// GetPerson implements API.
func (c *Cached) GetPerson(ctx context.Context, id string) (model.PersonDetail, error) {
	key := cache.Key{Kind: cache.KindPerson, Path: itemPath(PathPersons, id)}
	return readThrough(ctx, c, key, func() (model.PersonDetail, error) {
		return c.next.GetPerson(ctx, id)
	})
}

// GetTimeline implements API.
func (c *Cached) GetTimeline(ctx context.Context, dynastyID string) (model.TimelineResponse, error) {
	key := cache.Key{Kind: cache.KindTimeline, Path: itemPath(PathTimeline, dynastyID)}
	return readThrough(ctx, c, key, func() (model.TimelineResponse, error) {
		return c.next.GetTimeline(ctx, dynastyID)
	})
}

// Invalidate drops cached entries under path ("" for all).
func (c *Cached) Invalidate(ctx context.Context, path string) error {
	removed, err := c.manager.Purge(ctx, path)
	if err != nil {
		return err
	}
	c.logger.Info().Str("path", path).Int("removed", removed).Msg("Cache invalidated")
	return nil
}

func listKey(kind cache.Kind, path string, q client.Query) cache.Key {
	return cache.Key{Kind: kind, Path: path, Params: q.Values()}
}

func readThrough[T any](ctx context.Context, c *Cached, key cache.Key, fetch func() (T, error)) (T, error) {
	var cached T
	err := c.manager.Load(ctx, key, &cached)
	switch {
	case err == nil:
		c.logger.Debug().Str("key", key.String()).Msg("Cache hit")
		return cached, nil
	case errors.Is(err, cache.ErrCacheMiss):
		c.logger.Debug().Str("key", key.String()).Msg("Cache miss")
	default:
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Cache get error")
	}

	value, err := fetch()
	if err != nil {
		var zero T
		return zero, err
	}

	if err := c.manager.Store(ctx, key, value, c.policy.For(key.Kind)); err != nil {
		c.logger.Warn().Err(err).Str("key", key.String()).Msg("Failed to cache response")
	}
	return value, nil
}
