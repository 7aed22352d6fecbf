package provider

import (
	"fmt"
	"math"
	"net/url"
	"strings"
)

// FetchPredictions fetches predicted values for every parameter for the
// given date. Response keys carry a "_<strategy>" suffix
// (e.g. "fatigue_base"); the suffix is stripped so the result is keyed by
// plain parameter key. When several strategies predict the same parameter,
// the first strategy in the configured list wins. Null predictions are
// dropped; values are rounded to two decimals.
func (c *Client) FetchPredictions(date string) (map[string]float64, error) {
	u := fmt.Sprintf("%s/get_predictions/?date=%s", c.base, url.QueryEscape(date))

	var raw map[string]*float64
	if err := c.GetJSON(u, &raw); err != nil {
		return nil, err
	}

	out := make(map[string]float64, len(raw))
	for _, strategy := range c.strategies {
		suffix := "_" + strategy
		for key, value := range raw {
			if value == nil || !strings.HasSuffix(key, suffix) {
				continue
			}
			param := strings.TrimSuffix(key, suffix)
			if param == "" {
				continue
			}
			if _, seen := out[param]; !seen {
				out[param] = math.Round(*value*100) / 100
			}
		}
	}
	return out, nil
}
