// Package scoring compares a metrics table against a reference
// profile and produces per-metric scores plus one weighted aggregate.
package scoring

import (
	"math"

	"github.com/fairway-data/swing.report/internal/metrics"
)

// Band is the qualitative rating derived from a numeric score.
type Band string

const (
	BandGood    Band = "good"
	BandCaution Band = "caution"
	BandPoor    Band = "poor"
)

// Band thresholds on the 0-100 metric score.
const (
	goodThreshold    = 70
	cautionThreshold = 40
)

// Skill levels derived from the aggregate score.
const (
	SkillPro          = "Pro"
	SkillAdvanced     = "Advanced"
	SkillIntermediate = "Intermediate"
	SkillBeginner     = "Beginner"
)

// Target is the reference band for one metric. A Weight of 0 marks
// the metric informational: it is scored but excluded from the
// aggregate.
type Target struct {
	Target   float64 `json:"target"`
	InnerTol float64 `json:"inner_tol"`
	OuterTol float64 `json:"outer_tol"`
	Weight   float64 `json:"weight"`
}

// Profile is a named set of metric targets.
type Profile struct {
	Name    string                 `json:"name"`
	Targets map[metrics.Key]Target `json:"targets"`
}

// MetricScore is the scored result for one computed metric.
type MetricScore struct {
	Value    float64 `json:"value"`
	Score    float64 `json:"score"`
	Band     Band    `json:"band"`
	Target   float64 `json:"target"`
	InnerTol float64 `json:"inner_tol"`
	OuterTol float64 `json:"outer_tol"`
	Weight   float64 `json:"weight"`
}

// Scores is the full scoring result: the weighted aggregate plus every
// scored metric. Metrics absent from the table or from the profile do
// not appear.
type Scores struct {
	Aggregate int                         `json:"aggregate"`
	Metrics   map[metrics.Key]MetricScore `json:"metrics"`
}

// Score rates value against a target band: 100 when within innerTol of
// the target, 0 when outerTol or further away, linear in between.
// A non-positive or inverted tolerance pair degenerates to a hard
// 100/0 cutoff at outerTol.
func Score(value, target, innerTol, outerTol float64) float64 {
	dist := math.Abs(value - target)
	if dist <= innerTol {
		return 100
	}
	if dist >= outerTol {
		return 0
	}
	return 100 * (outerTol - dist) / (outerTol - innerTol)
}

// BandFor maps a numeric score to its qualitative band.
func BandFor(score float64) Band {
	switch {
	case score >= goodThreshold:
		return BandGood
	case score >= cautionThreshold:
		return BandCaution
	default:
		return BandPoor
	}
}

// Build scores every metric the table and profile have in common. The
// aggregate is the weight-normalized mean over metrics that are both
// present and positively weighted; absent and zero-weight metrics
// never move it. View-specific weight overrides take precedence over
// the profile's own weights.
func Build(table metrics.Table, profile Profile, view View) Scores {
	out := Scores{Metrics: make(map[metrics.Key]MetricScore, len(profile.Targets))}
	overrides := weightOverrides[view]

	var weightedSum, weightTotal float64
	for _, key := range metrics.AllKeys {
		target, ok := profile.Targets[key]
		if !ok {
			continue
		}
		value, ok := table.Get(key)
		if !ok {
			continue
		}

		weight := target.Weight
		if w, ok := overrides[key]; ok {
			weight = w
		}

		score := Score(value, target.Target, target.InnerTol, target.OuterTol)
		out.Metrics[key] = MetricScore{
			Value:    value,
			Score:    score,
			Band:     BandFor(score),
			Target:   target.Target,
			InnerTol: target.InnerTol,
			OuterTol: target.OuterTol,
			Weight:   weight,
		}

		if weight > 0 {
			weightedSum += score * weight
			weightTotal += weight
		}
	}

	if weightTotal > 0 {
		out.Aggregate = int(math.Round(weightedSum / weightTotal))
	}
	return out
}

// SkillLevel bands the aggregate score into a coarse player level.
func SkillLevel(aggregate int) string {
	switch {
	case aggregate >= 90:
		return SkillPro
	case aggregate >= 80:
		return SkillAdvanced
	case aggregate >= 60:
		return SkillIntermediate
	default:
		return SkillBeginner
	}
}
