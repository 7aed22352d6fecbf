package provider

import (
	"fmt"
	"sync"

	"metric-diary/internal/logger"

	"golang.org/x/sync/singleflight"
)

// seriesKey identifies a cached series.
type seriesKey struct {
	Param string
	AsOf  string
}

// SeriesStore is a persistent L2 cache for parameter series.
type SeriesStore interface {
	GetSeries(param, asOf string) ([]SeriesPoint, bool)
	SetSeries(param, asOf string, points []SeriesPoint)
}

// SeriesCache fetches and memoizes per-parameter series keyed by
// (parameter, as-of date). A singleflight.Group coalesces concurrent
// fetches for the same key, and a generation counter keyed by the active
// as-of date lets responses that land after the date changed be discarded
// instead of populating state nobody is looking at anymore.
//
// Failures are never cached: the caller gets an explicit miss and the next
// request retries naturally.
type SeriesCache struct {
	client *Client
	store  SeriesStore // L2 persistent cache, may be nil

	mu      sync.RWMutex
	entries map[seriesKey][]SeriesPoint
	group   singleflight.Group

	genMu      sync.Mutex
	generation int64
	activeAsOf string
}

// NewSeriesCache creates an empty cache backed by client, with store as the
// optional persistent layer.
func NewSeriesCache(client *Client, store SeriesStore) *SeriesCache {
	return &SeriesCache{
		client:  client,
		store:   store,
		entries: make(map[seriesKey][]SeriesPoint),
	}
}

// SetActiveDate marks asOf as the date the dashboard is currently viewing.
// Changing the date bumps the generation, which invalidates in-flight
// fetches issued for the previous date.
func (sc *SeriesCache) SetActiveDate(asOf string) {
	sc.genMu.Lock()
	defer sc.genMu.Unlock()
	if sc.activeAsOf != asOf {
		sc.activeAsOf = asOf
		sc.generation++
	}
}

func (sc *SeriesCache) currentGeneration() int64 {
	sc.genMu.Lock()
	defer sc.genMu.Unlock()
	return sc.generation
}

// Fetch returns the series for (param, asOf). The boolean is false when the
// provider is unavailable or the response was superseded by an as-of date
// change; callers degrade (empty aggregate, hidden chart) rather than fail.
func (sc *SeriesCache) Fetch(param, asOf string) ([]SeriesPoint, bool) {
	key := seriesKey{Param: param, AsOf: asOf}

	sc.mu.RLock()
	points, hit := sc.entries[key]
	sc.mu.RUnlock()
	if hit {
		return points, true
	}

	startGen := sc.currentGeneration()

	result, err, _ := sc.group.Do(param+"|"+asOf, func() (interface{}, error) {
		if sc.store != nil {
			if pts, ok := sc.store.GetSeries(param, asOf); ok {
				return pts, nil
			}
		}
		pts, err := sc.client.FetchHistory(param, asOf)
		if err != nil {
			return nil, err
		}
		if sc.store != nil {
			sc.store.SetSeries(param, asOf, pts)
		}
		return pts, nil
	})
	if err != nil {
		logger.Warn("History", fmt.Sprintf("fetch %s@%s failed: %v", param, asOf, err))
		return nil, false
	}

	if sc.currentGeneration() != startGen {
		// Superseded by an as-of date change while in flight.
		logger.Info("History", fmt.Sprintf("discarding stale series %s@%s", param, asOf))
		return nil, false
	}

	points = result.([]SeriesPoint)
	sc.mu.Lock()
	sc.entries[key] = points
	sc.mu.Unlock()
	return points, true
}

// Len reports the number of memoized series (for status reporting).
func (sc *SeriesCache) Len() int {
	sc.mu.RLock()
	defer sc.mu.RUnlock()
	return len(sc.entries)
}
