package provider

import (
	"fmt"
	"net/url"
	"sort"
)

// SeriesPoint is a single observed day of a parameter series.
// A nil Value marks a gap: the day exists but carries no rating.
type SeriesPoint struct {
	Date  string   `json:"date"`
	Value *float64 `json:"value"`
}

// historyResponse is the wire shape of the history provider:
// two equal-length arrays, dates ascending. Empty arrays mean "no history".
type historyResponse struct {
	Dates  []string   `json:"dates"`
	Values []*float64 `json:"values"`
}

// FetchHistory fetches the series for a parameter up to (and including)
// the as-of date. The result has strictly increasing dates: provider
// violations (unordered or duplicate dates) are repaired at this boundary,
// with the later occurrence winning a duplicate.
func (c *Client) FetchHistory(param, asOf string) ([]SeriesPoint, error) {
	u := fmt.Sprintf("%s/api/parameter_history/?param=%s&date=%s",
		c.base, url.QueryEscape(param), url.QueryEscape(asOf))

	var resp historyResponse
	if err := c.GetJSON(u, &resp); err != nil {
		return nil, err
	}
	if len(resp.Dates) != len(resp.Values) {
		return nil, fmt.Errorf("history for %s: %d dates vs %d values", param, len(resp.Dates), len(resp.Values))
	}

	points := make([]SeriesPoint, 0, len(resp.Dates))
	for i, date := range resp.Dates {
		if date == "" {
			continue
		}
		points = append(points, SeriesPoint{Date: date, Value: resp.Values[i]})
	}
	return normalizeSeries(points), nil
}

// normalizeSeries sorts points date-ascending and collapses duplicate dates,
// keeping the last occurrence.
func normalizeSeries(points []SeriesPoint) []SeriesPoint {
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Date < points[j].Date
	})
	out := points[:0]
	for _, p := range points {
		if n := len(out); n > 0 && out[n-1].Date == p.Date {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	return out
}
