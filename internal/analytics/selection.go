package analytics

import "math"

// SyncState tags how a locally applied selection relates to the rating
// store. The optimistic local value is applied before the store write; on a
// failed write it is deliberately kept (no rollback) and reported as
// Failed so the divergence is visible instead of silent.
type SyncState string

const (
	SyncSynced  SyncState = "synced"
	SyncPending SyncState = "pending"
	SyncFailed  SyncState = "failed"
)

// Selection is a locally recorded rating for one parameter on one day.
type Selection struct {
	Value int       `json:"value"`
	Sync  SyncState `json:"sync"`
}

// DeltaBand classifies how far a prediction sits from the selected value.
// Unlike the range-aggregate colors, delta banding has no polarity
// awareness: distance is distance.
type DeltaBand string

const (
	DeltaClose    DeltaBand = "close"    // |Δ| < 1
	DeltaModerate DeltaBand = "moderate" // |Δ| <= 2
	DeltaFar      DeltaBand = "far"
)

// DeltaBandFor classifies a prediction-minus-selection delta.
func DeltaBandFor(delta float64) DeltaBand {
	abs := math.Abs(delta)
	switch {
	case abs < 1:
		return DeltaClose
	case abs <= 2:
		return DeltaModerate
	default:
		return DeltaFar
	}
}

// Delta computes predicted − selected, or nil when either side is absent.
func Delta(predicted *float64, selected *int) *float64 {
	if predicted == nil || selected == nil {
		return nil
	}
	d := *predicted - float64(*selected)
	return &d
}
