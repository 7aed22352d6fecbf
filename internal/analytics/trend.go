package analytics

import "math"

// TrendFit fits an ordinary least-squares line over a series, with the
// element index as the independent variable, and returns the fitted value
// for every position rounded to two decimals. Gaps (nil values) are skipped
// in the fit but keep their index, and the fitted line still covers them.
// With fewer than two defined points there is no line to draw and the
// result is all nil, same length as the input.
func TrendFit(values []*float64) []*float64 {
	out := make([]*float64, len(values))

	n := 0
	var sumX, sumY, sumXY, sumXX float64
	for i, v := range values {
		if v == nil {
			continue
		}
		x := float64(i)
		sumX += x
		sumY += *v
		sumXY += x * *v
		sumXX += x * x
		n++
	}
	if n < 2 {
		return out
	}

	nf := float64(n)
	denom := nf*sumXX - sumX*sumX
	if denom == 0 {
		return out
	}
	slope := (nf*sumXY - sumX*sumY) / denom
	intercept := (sumY - slope*sumX) / nf

	for i := range out {
		y := math.Round((slope*float64(i)+intercept)*100) / 100
		fitted := y
		out[i] = &fitted
	}
	return out
}
