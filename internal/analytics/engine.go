package analytics

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"metric-diary/internal/logger"
	"metric-diary/internal/provider"

	"github.com/google/uuid"
)

// Store is the persistence surface the engine needs: the parameter
// registry, the optimistic selection mirror, the persisted dashboard
// settings, and the refresh journal.
type Store interface {
	ActiveParameters() ([]Parameter, error)
	SelectionsFor(date string) (map[string]Selection, error)
	PutSelection(date, key string, value int, sync SyncState) error
	DeleteSelection(date, key string) error
	LoadSettings() Settings
	SaveSettings(Settings) error
	RecordRefresh(id, asOf string, parameters int, duration time.Duration)
}

// SeriesSource is the cached history feed.
type SeriesSource interface {
	SetActiveDate(asOf string)
	Fetch(param, asOf string) ([]provider.SeriesPoint, bool)
}

// PredictionSource fetches per-parameter predicted values for a date.
type PredictionSource interface {
	FetchPredictions(date string) (map[string]float64, error)
}

// RatingStore is the external write target for selections.
type RatingStore interface {
	UpdateValue(param string, value *int, date string) error
}

// Engine assembles dashboards and applies selection, sort and default
// operations against the store and the external services.
type Engine struct {
	series      SeriesSource
	predictions PredictionSource
	ratings     RatingStore
	store       Store

	// aggReady is false while a dashboard build is recomputing aggregates;
	// the sum-percent sort gate polls it.
	aggReady atomic.Bool

	// Sum-percent readiness gate: a bounded poll, not a completion signal.
	pollInterval time.Duration
	pollTimeout  time.Duration
}

// NewEngine wires an engine. All collaborators are required except that a
// degraded engine still works when the external services are down: every
// failure path lands on an empty block field, never an error to the caller.
func NewEngine(series SeriesSource, predictions PredictionSource, ratings RatingStore, store Store) *Engine {
	e := &Engine{
		series:       series,
		predictions:  predictions,
		ratings:      ratings,
		store:        store,
		pollInterval: 300 * time.Millisecond,
		pollTimeout:  7 * time.Second,
	}
	e.aggReady.Store(true)
	return e
}

// BuildDashboard assembles the full dashboard for one as-of date: series
// fetches run concurrently per parameter, each block degrades independently,
// then the sort order and filter verdicts are applied.
func (e *Engine) BuildDashboard(date string) (*Dashboard, error) {
	start := time.Now()
	e.aggReady.Store(false)
	defer e.aggReady.Store(true)

	params, err := e.store.ActiveParameters()
	if err != nil {
		return nil, fmt.Errorf("load parameters: %w", err)
	}

	settings := e.store.LoadSettings()
	e.series.SetActiveDate(date)

	// The min-date boundary defaults to the earliest available date of the
	// reference (first) parameter and is persisted once filled.
	if settings.MinChartDate == "" && len(params) > 0 {
		if pts, ok := e.series.Fetch(params[0].Key, date); ok && len(pts) > 0 {
			settings.MinChartDate = pts[0].Date
			if err := e.store.SaveSettings(settings); err != nil {
				logger.Warn("Dashboard", fmt.Sprintf("persist min date: %v", err))
			}
		}
	}

	selections, err := e.store.SelectionsFor(date)
	if err != nil {
		logger.Warn("Dashboard", fmt.Sprintf("load selections: %v", err))
		selections = nil
	}

	preds, err := e.predictions.FetchPredictions(date)
	if err != nil {
		logger.Warn("Predictions", fmt.Sprintf("fetch for %s failed: %v", date, err))
		preds = nil
	}

	blocks := make([]Block, len(params))
	var wg sync.WaitGroup
	for i, param := range params {
		wg.Add(1)
		go func(i int, param Parameter) {
			defer wg.Done()
			blocks[i] = e.buildBlock(param, date, settings, selections, preds)
		}(i, param)
	}
	wg.Wait()

	SortBlocks(blocks, settings.Sort)

	id := uuid.NewString()
	e.store.RecordRefresh(id, date, len(params), time.Since(start))

	return &Dashboard{
		Date:               date,
		MinDate:            settings.MinChartDate,
		Sort:               settings.Sort,
		Filter:             settings.Filter,
		ChartsVisible:      settings.ChartsVisible,
		PredictionsVisible: settings.PredictionsVisible,
		FocusMode:          settings.FocusMode,
		Blocks:             blocks,
		RefreshID:          id,
	}, nil
}

func (e *Engine) buildBlock(param Parameter, date string, settings Settings, selections map[string]Selection, preds map[string]float64) Block {
	b := Block{
		Key:      param.Key,
		Title:    param.Title,
		Polarity: param.Polarity,
		Position: param.Position,
		Visible:  MatchesFilter(param.Title, settings.Filter),
	}

	if sel, ok := selections[param.Key]; ok {
		v := sel.Value
		b.Selected = &v
		b.Sync = sel.Sync
	}
	if p, ok := preds[param.Key]; ok {
		pv := p
		b.Prediction = &pv
		b.Delta = Delta(&pv, b.Selected)
		if b.Delta != nil {
			b.DeltaBand = DeltaBandFor(*b.Delta)
		}
	}

	// A failed or superseded fetch leaves the block without history: no
	// chart, no aggregate, dash rendered instead. Never an error.
	points, ok := e.series.Fetch(param.Key, date)
	if !ok || len(points) == 0 {
		return b
	}
	b.HistoryAvailable = true
	b.Aggregate = Aggregate(points, settings.MinChartDate, param.Polarity)
	b.Series = ClipSeries(points, settings.MinChartDate)
	b.Trend = TrendFit(SeriesValues(b.Series))
	return b
}

// SelectResult is the outcome of a selection gesture.
type SelectResult struct {
	Parameter  string    `json:"parameter"`
	Date       string    `json:"date"`
	Value      *int      `json:"value"`
	Sync       SyncState `json:"sync"`
	Prediction *float64  `json:"prediction,omitempty"`
	Delta      *float64  `json:"delta,omitempty"`
	DeltaBand  DeltaBand `json:"delta_band,omitempty"`
}

// Select applies a selection gesture for one parameter and day. At most one
// value is selected per parameter per day; re-selecting the current value
// clears it (toggle). The local mirror is updated optimistically before the
// store write; a failed write keeps the optimistic value and reports
// SyncFailed. The divergence is surfaced, not rolled back.
func (e *Engine) Select(param string, value *int, date string) (SelectResult, error) {
	selections, err := e.store.SelectionsFor(date)
	if err != nil {
		return SelectResult{}, fmt.Errorf("load selections: %w", err)
	}
	current, hasCurrent := selections[param]

	// Toggle: re-activating the selected value means "clear it".
	if value != nil && hasCurrent && current.Value == *value {
		value = nil
	}

	res := SelectResult{Parameter: param, Date: date, Value: value}

	if value == nil {
		if err := e.store.DeleteSelection(date, param); err != nil {
			return SelectResult{}, fmt.Errorf("clear selection: %w", err)
		}
		if err := e.ratings.UpdateValue(param, nil, date); err != nil {
			logger.Warn("Ratings", fmt.Sprintf("clear %s@%s failed: %v", param, date, err))
			res.Sync = SyncFailed
			return res, nil
		}
		res.Sync = SyncSynced
		return res, nil
	}

	if err := e.store.PutSelection(date, param, *value, SyncPending); err != nil {
		return SelectResult{}, fmt.Errorf("store selection: %w", err)
	}
	if err := e.ratings.UpdateValue(param, value, date); err != nil {
		logger.Warn("Ratings", fmt.Sprintf("write %s=%d@%s failed: %v", param, *value, date, err))
		e.storeSyncState(date, param, *value, SyncFailed)
		res.Sync = SyncFailed
		return res, nil
	}
	e.storeSyncState(date, param, *value, SyncSynced)
	res.Sync = SyncSynced

	// Dependent state recomputes only after a confirmed write.
	if preds, err := e.predictions.FetchPredictions(date); err == nil {
		if p, ok := preds[param]; ok {
			pv := p
			res.Prediction = &pv
			res.Delta = Delta(&pv, value)
			if res.Delta != nil {
				res.DeltaBand = DeltaBandFor(*res.Delta)
			}
		}
	}
	return res, nil
}

func (e *Engine) storeSyncState(date, param string, value int, sync SyncState) {
	if err := e.store.PutSelection(date, param, value, sync); err != nil {
		logger.Warn("Ratings", fmt.Sprintf("record sync state for %s@%s: %v", param, date, err))
	}
}

// ApplyDefaults selects the "def N" default hint for every active parameter
// that carries one and has no selection yet for the date. Returns how many
// parameters were filled.
func (e *Engine) ApplyDefaults(date string) (int, error) {
	params, err := e.store.ActiveParameters()
	if err != nil {
		return 0, fmt.Errorf("load parameters: %w", err)
	}
	selections, err := e.store.SelectionsFor(date)
	if err != nil {
		return 0, fmt.Errorf("load selections: %w", err)
	}

	count := 0
	for _, p := range params {
		if p.DefaultValue == nil {
			continue
		}
		if _, has := selections[p.Key]; has {
			continue
		}
		v := *p.DefaultValue
		res, err := e.Select(p.Key, &v, date)
		if err != nil {
			return count, err
		}
		if res.Sync != SyncFailed {
			count++
		}
	}
	return count, nil
}

// ActivateSort advances the sort state machine for key, persists the new
// state, and returns it. Sum-percent activation first waits, bounded,
// for the in-flight aggregate recompute, because percents are produced
// asynchronously and sorting against half-populated data is worse than
// sorting a little late.
func (e *Engine) ActivateSort(key SortKey) SortState {
	settings := e.store.LoadSettings()
	next := settings.Sort.Activate(key)

	if next.Active() && next.Key == SortSumPercent {
		e.waitForAggregates()
	}

	settings.Sort = next
	if err := e.store.SaveSettings(settings); err != nil {
		logger.Warn("Sort", fmt.Sprintf("persist sort state: %v", err))
	}
	return next
}

// waitForAggregates polls the aggregate-ready flag at a fixed interval up
// to a fixed timeout, then proceeds with whatever data is available.
func (e *Engine) waitForAggregates() {
	deadline := time.Now().Add(e.pollTimeout)
	for time.Now().Before(deadline) {
		if e.aggReady.Load() {
			return
		}
		time.Sleep(e.pollInterval)
	}
}
