package analytics

import "metric-diary/internal/provider"

// Settings is the persisted dashboard state: the only client state that
// survives restarts. Single-user, last-writer-wins.
type Settings struct {
	ChartsVisible      bool      `json:"charts_visible"`
	PredictionsVisible bool      `json:"predictions_visible"`
	FocusMode          bool      `json:"focus_mode"`
	Filter             string    `json:"filter"`
	MinChartDate       string    `json:"min_chart_date"`
	Sort               SortState `json:"sort"`
}

// DefaultSettings: charts and predictions shown, focus off, no filter, no
// sort, min-date unset (filled from the reference parameter on first build).
func DefaultSettings() Settings {
	return Settings{ChartsVisible: true, PredictionsVisible: true}
}

// Block is one parameter's fully derived dashboard entry.
type Block struct {
	Key      string   `json:"key"`
	Title    string   `json:"title"`
	Polarity Polarity `json:"polarity"`
	Position int      `json:"position"`

	Selected *int      `json:"selected,omitempty"`
	Sync     SyncState `json:"sync,omitempty"`

	Prediction *float64  `json:"prediction,omitempty"`
	Delta      *float64  `json:"delta,omitempty"`
	DeltaBand  DeltaBand `json:"delta_band,omitempty"`

	Aggregate RangeAggregate `json:"aggregate"`

	// Series and Trend cover the min-date clipped window, equal length.
	Series []provider.SeriesPoint `json:"series,omitempty"`
	Trend  []*float64             `json:"trend,omitempty"`

	// HistoryAvailable is false when the provider had nothing (or was
	// unreachable); renderers hide the chart instead of drawing an empty one.
	HistoryAvailable bool `json:"history_available"`

	// Visible is the filter verdict; filtering narrows what is shown and is
	// orthogonal to sort order.
	Visible bool `json:"visible"`
}

// Dashboard is the assembled view for one as-of date.
type Dashboard struct {
	Date               string    `json:"date"`
	MinDate            string    `json:"min_date"`
	Sort               SortState `json:"sort"`
	Filter             string    `json:"filter,omitempty"`
	ChartsVisible      bool      `json:"charts_visible"`
	PredictionsVisible bool      `json:"predictions_visible"`
	FocusMode          bool      `json:"focus_mode"`
	Blocks             []Block   `json:"blocks"`
	RefreshID          string    `json:"refresh_id"`
}
