package metrics

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// TrendKeys lists the metrics tracked for swing-over-swing trend
// analysis.
var TrendKeys = []Key{
	KeyXFactorTopDeg,
	KeyChestTurnTopDeg,
	KeyPelvisTurnTopDeg,
	KeyLeadArmTopDeg,
	KeyTrailElbowTopDeg,
	KeySpineAngleAddressDeg,
	KeyHeadSwayRange,
	KeyHeadDropCM,
	KeyHeadRiseCM,
	KeyKneeFlexLeftAddressDeg,
	KeyFinishBalanceIndex,
	KeyPelvisSwayImpactCM,
	KeyShoulderSwayTopCM,
	KeyPlaneDeviationImpactDeg,
}

// Trend labels. "Improving" means the value is trending higher, which
// may or may not be desirable for a given metric; interpretation is the
// caller's.
const (
	TrendImproving = "improving"
	TrendDeclining = "declining"
	TrendStable    = "stable"
)

// DeltaEntry describes how one metric moved against recent swings.
// Pointer fields are nil when too few recent values exist: VsLast and
// VsMean need one, Consistency and Trend need two.
type DeltaEntry struct {
	Current     float64  `json:"current"`
	VsLast      *float64 `json:"delta_vs_last,omitempty"`
	VsMean      *float64 `json:"delta_vs_mean,omitempty"`
	Consistency *float64 `json:"consistency_std,omitempty"`
	Trend       string   `json:"trend,omitempty"`
}

// Delta compares the current table against recent tables, ordered
// newest first. Keys absent from current are skipped entirely; recent
// tables missing a key simply don't contribute to that key's
// statistics. A nil keys slice defaults to TrendKeys.
func Delta(current Table, recent []Table, keys []Key) map[Key]DeltaEntry {
	if keys == nil {
		keys = TrendKeys
	}

	out := make(map[Key]DeltaEntry, len(keys))
	for _, k := range keys {
		cur, ok := current.Get(k)
		if !ok {
			continue
		}
		entry := DeltaEntry{Current: cur}

		var valid []float64
		for _, t := range recent {
			if v, ok := t.Get(k); ok {
				valid = append(valid, v)
			}
		}
		if len(valid) > 0 {
			vsLast := cur - valid[0]
			vsMean := cur - stat.Mean(valid, nil)
			entry.VsLast = &vsLast
			entry.VsMean = &vsMean
		}
		if len(valid) >= 2 {
			std := stat.PopStdDev(valid, nil)
			entry.Consistency = &std
			entry.Trend = trendOf(valid, std)
		}
		out[k] = entry
	}
	return out
}

// trendOf compares the newer half of the recent values against the
// older half (values arrive newest first). Differences below half the
// spread count as stable.
func trendOf(valid []float64, std float64) string {
	mid := len(valid) / 2
	diff := stat.Mean(valid[:mid], nil) - stat.Mean(valid[mid:], nil)

	threshold := 1.0
	if std > 0 {
		threshold = std / 2
	}
	switch {
	case math.Abs(diff) < threshold:
		return TrendStable
	case diff > 0:
		return TrendImproving
	default:
		return TrendDeclining
	}
}
