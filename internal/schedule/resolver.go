package schedule

import (
	"context"
	"encoding/json"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/slateboard/slateboard-go/internal/errors"
	"github.com/slateboard/slateboard-go/internal/logging"
)

// Fetcher retrieves the raw response body for one schedule id.
type Fetcher interface {
	FetchSchedule(ctx context.Context, scheduleID string) (json.RawMessage, error)
}

// Resolver fetches schedules lazily by id, normalizes them and keeps them
// in an explicit-eviction cache. Concurrent resolves for the same id are
// coalesced into a single fetch.
type Resolver struct {
	fetcher Fetcher
	cache   *Cache
	flight  singleflight.Group
	log     *slog.Logger
}

// NewResolver returns a resolver backed by the given fetcher.
func NewResolver(fetcher Fetcher) *Resolver {
	return &Resolver{
		fetcher: fetcher,
		cache:   NewCache(),
		log:     logging.ForService("schedule"),
	}
}

// Cached returns the cached schedule for id without fetching.
func (r *Resolver) Cached(id string) (*Schedule, bool) {
	return r.cache.Get(id)
}

// Resolve returns the schedule for id, fetching and normalizing it when
// not cached. A payload matching no known shape resolves to an empty
// schedule, not an error; only fetch failures propagate.
func (r *Resolver) Resolve(ctx context.Context, id string) (*Schedule, error) {
	if id == "" {
		return nil, errors.Newf("schedule id is empty").
			Component("schedule").
			Category(errors.CategoryValidation).
			Build()
	}
	if sched, ok := r.cache.Get(id); ok {
		return sched, nil
	}

	value, err, shared := r.flight.Do(id, func() (any, error) {
		if sched, ok := r.cache.Get(id); ok {
			return sched, nil
		}
		body, err := r.fetcher.FetchSchedule(ctx, id)
		if err != nil {
			return nil, err
		}
		sched := FromResponse(id, body)
		if sched.Empty() {
			r.log.Debug("schedule resolved empty", "schedule_id", id)
		}
		r.cache.Put(sched)
		return sched, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		r.log.Debug("schedule fetch coalesced", "schedule_id", id)
	}
	return value.(*Schedule), nil
}

// Invalidate drops the cached schedule for id, forcing a refetch on the
// next resolve.
func (r *Resolver) Invalidate(id string) {
	r.cache.entries.Delete(id)
}

// SetActive evicts every cached schedule except the active one. Called
// whenever the active schedule identity changes.
func (r *Resolver) SetActive(activeID string) {
	r.cache.Clear(activeID)
}

// Reset empties the cache entirely, for logout.
func (r *Resolver) Reset() {
	r.cache.Clear("")
}
