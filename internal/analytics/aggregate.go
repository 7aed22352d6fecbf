package analytics

import (
	"math"

	"metric-diary/internal/provider"
)

// RatingMax is the top of the per-day rating scale.
const RatingMax = 4

// RangeAggregate is the windowed sum and percent-of-maximum for a
// parameter, with its polarity-aware color band. Derived state: recomputed
// whenever the series, the as-of date, or the min-date boundary changes,
// never persisted.
type RangeAggregate struct {
	Sum     float64 `json:"sum"`
	Percent int     `json:"percent"`
	Color   string  `json:"color,omitempty"`
	Days    int     `json:"days"`
	// HasData is false for an empty clipped range; renderers show a dash.
	HasData bool `json:"has_data"`
}

// Aggregate computes the range aggregate of a series clipped to dates at or
// after minDate (empty minDate keeps the whole series). Gaps count as zero
// toward the sum but still count as days, so percent can legitimately sit
// anywhere from 0 up past 100 (a parameter rated above its midpoint every
// day). An empty clipped range yields the no-data sentinel, never NaN.
func Aggregate(series []provider.SeriesPoint, minDate string, polarity Polarity) RangeAggregate {
	window := ClipSeries(series, minDate)
	if len(window) == 0 {
		return RangeAggregate{}
	}

	sum := 0.0
	for _, p := range window {
		if p.Value != nil && !math.IsNaN(*p.Value) {
			sum += *p.Value
		}
	}
	days := len(window)
	percent := int(math.Round(100 * sum / (RatingMax * float64(days))))

	return RangeAggregate{
		Sum:     sum,
		Percent: percent,
		Color:   bandColor(percent, polarity),
		Days:    days,
		HasData: true,
	}
}

// ClipSeries returns the suffix of series starting at the first point whose
// date is >= minDate. Empty minDate returns the series unchanged; a minDate
// past the end returns an empty window.
func ClipSeries(series []provider.SeriesPoint, minDate string) []provider.SeriesPoint {
	if minDate == "" {
		return series
	}
	for i, p := range series {
		if p.Date >= minDate {
			return series[i:]
		}
	}
	return nil
}

// SeriesValues extracts the value column of a series.
func SeriesValues(series []provider.SeriesPoint) []*float64 {
	out := make([]*float64, len(series))
	for i, p := range series {
		out[i] = p.Value
	}
	return out
}

// bandColor maps a percent to its six-step color band. The breakpoints are
// deliberately uneven (10/20/40/65/80) and are kept exactly as shipped; the
// two polarity branches walk the same scale in opposite directions.
func bandColor(percent int, polarity Polarity) string {
	if polarity == PolarityPositive {
		switch {
		case percent <= 10:
			return "#dc3545"
		case percent <= 20:
			return "#ff3c00"
		case percent <= 40:
			return "#ff8800"
		case percent <= 65:
			return "#e0a800"
		case percent <= 80:
			return "#28a745"
		default:
			return "#7fd428"
		}
	}
	switch {
	case percent <= 10:
		return "#7fd428"
	case percent <= 20:
		return "#28a745"
	case percent <= 40:
		return "#e0a800"
	case percent <= 65:
		return "#ff8800"
	case percent <= 80:
		return "#ff3c00"
	default:
		return "#dc3545"
	}
}
