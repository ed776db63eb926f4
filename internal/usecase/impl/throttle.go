package impl

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/singleflight"

	"watchtower/internal/domain/entity"
)

var errUnexpectedCacheValue = errors.New("unexpected value type in analysis cache")

// throttledCache is a single-slot result cache with a freshness window.
// While the most recent result is younger than the window, every caller gets
// it back without touching the refresh function. Concurrent refreshes are
// collapsed so at most one upstream call is in flight at a time.
type throttledCache struct {
	window time.Duration
	clock  func() time.Time

	group singleflight.Group

	mu   sync.Mutex
	slot *entity.AnalysisResult
}

func newThrottledCache(window time.Duration, clock func() time.Time) *throttledCache {
	if clock == nil {
		clock = time.Now
	}

	return &throttledCache{
		window: window,
		clock:  clock,
	}
}

// GetOrRefresh returns the cached result while it is fresh, otherwise calls
// refresh exactly once across concurrent callers and caches its result.
// A failed refresh leaves the previous slot untouched, so the next caller
// retries immediately instead of waiting out the window.
func (c *throttledCache) GetOrRefresh(ctx context.Context, refresh func(context.Context) (*entity.AnalysisResult, error)) (*entity.AnalysisResult, error) {
	if result, ok := c.fresh(); ok {
		return result, nil
	}

	value, err, _ := c.group.Do("auto", func() (any, error) {
		// A concurrent caller may have refreshed while we queued.
		if result, ok := c.fresh(); ok {
			return result, nil
		}

		result, err := refresh(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		c.slot = result
		c.mu.Unlock()

		return result, nil
	})
	if err != nil {
		return nil, err
	}

	result, ok := value.(*entity.AnalysisResult)
	if !ok {
		return nil, errUnexpectedCacheValue
	}

	clone := *result

	return &clone, nil
}

// fresh returns a copy of the slot if it is still within the window.
// A result exactly window old is still fresh; refresh starts strictly after.
func (c *throttledCache) fresh() (*entity.AnalysisResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.slot == nil || c.clock().Sub(c.slot.ComputedAt) > c.window {
		return nil, false
	}

	clone := *c.slot

	return &clone, true
}
