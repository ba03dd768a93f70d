package metrics

// Key identifies one metric in the table. The set is fixed; AllKeys is
// the canonical enumeration used for exhaustive iteration by the
// scoring profiles and the report encoder.
type Key string

const (
	// Timing
	KeyTempoRatio          Key = "tempo_ratio"
	KeyBackswingDurationMS Key = "backswing_duration_ms"
	KeyDownswingDurationMS Key = "downswing_duration_ms"

	// Rotation at the top
	KeyChestTurnTopDeg  Key = "chest_turn_top_deg"
	KeyPelvisTurnTopDeg Key = "pelvis_turn_top_deg"
	KeyXFactorTopDeg    Key = "x_factor_top_deg"

	// Posture
	KeySpineAngleAddressDeg Key = "spine_angle_address_deg"
	KeySpineAngleImpactDeg  Key = "spine_angle_impact_deg"

	// Arms
	KeyLeadArmAddressDeg    Key = "lead_arm_address_deg"
	KeyLeadArmTopDeg        Key = "lead_arm_top_deg"
	KeyLeadArmImpactDeg     Key = "lead_arm_impact_deg"
	KeyTrailElbowAddressDeg Key = "trail_elbow_address_deg"
	KeyTrailElbowTopDeg     Key = "trail_elbow_top_deg"
	KeyTrailElbowImpactDeg  Key = "trail_elbow_impact_deg"

	// Legs
	KeyKneeFlexLeftAddressDeg  Key = "knee_flex_left_address_deg"
	KeyKneeFlexRightAddressDeg Key = "knee_flex_right_address_deg"

	// Stability
	KeyHeadSwayRange        Key = "head_sway_range"
	KeyEarlyExtensionAmount Key = "early_extension_amount"
	KeyHeadDropCM           Key = "head_drop_cm"
	KeyHeadRiseCM           Key = "head_rise_cm"
	KeyPelvisSwayImpactCM   Key = "pelvis_sway_impact_cm"
	KeyShoulderSwayTopCM    Key = "shoulder_sway_top_cm"

	// Hand path
	KeySwingPathIndex       Key = "swing_path_index"
	KeyHandHeightAtTopIndex Key = "hand_height_at_top_index"
	KeyHandWidthAtTopIndex  Key = "hand_width_at_top_index"

	// Swing plane
	KeyPlaneDeviationImpactDeg Key = "plane_deviation_impact_deg"

	// Finish
	KeyFinishBalanceIndex      Key = "finish_balance_index"
	KeyChestTurnFinishDeg      Key = "chest_turn_finish_deg"
	KeyPelvisTurnFinishDeg     Key = "pelvis_turn_finish_deg"
	KeyFinishSpineExtensionDeg Key = "finish_spine_extension_deg"
)

// AllKeys enumerates every metric key in presentation order.
var AllKeys = []Key{
	KeyTempoRatio,
	KeyBackswingDurationMS,
	KeyDownswingDurationMS,
	KeyChestTurnTopDeg,
	KeyPelvisTurnTopDeg,
	KeyXFactorTopDeg,
	KeySpineAngleAddressDeg,
	KeySpineAngleImpactDeg,
	KeyLeadArmAddressDeg,
	KeyLeadArmTopDeg,
	KeyLeadArmImpactDeg,
	KeyTrailElbowAddressDeg,
	KeyTrailElbowTopDeg,
	KeyTrailElbowImpactDeg,
	KeyKneeFlexLeftAddressDeg,
	KeyKneeFlexRightAddressDeg,
	KeyHeadSwayRange,
	KeyEarlyExtensionAmount,
	KeyHeadDropCM,
	KeyHeadRiseCM,
	KeyPelvisSwayImpactCM,
	KeyShoulderSwayTopCM,
	KeySwingPathIndex,
	KeyHandHeightAtTopIndex,
	KeyHandWidthAtTopIndex,
	KeyPlaneDeviationImpactDeg,
	KeyFinishBalanceIndex,
	KeyChestTurnFinishDeg,
	KeyPelvisTurnFinishDeg,
	KeyFinishSpineExtensionDeg,
}

// Table maps metric keys to computed values. A missing entry means the
// metric could not be computed (occluded joints, degenerate geometry);
// it is never an error.
type Table struct {
	values map[Key]float64
}

// NewTable returns an empty metrics table.
func NewTable() Table {
	return Table{values: make(map[Key]float64, len(AllKeys))}
}

// Get returns the value for k and whether it was computed.
func (t Table) Get(k Key) (float64, bool) {
	v, ok := t.values[k]
	return v, ok
}

// Len returns the number of computed metrics.
func (t Table) Len() int { return len(t.values) }

// ToMap exports the table as a key→pointer map; absent metrics are nil.
// The export order follows AllKeys.
func (t Table) ToMap() map[Key]*float64 {
	out := make(map[Key]*float64, len(AllKeys))
	for _, k := range AllKeys {
		if v, ok := t.values[k]; ok {
			val := v
			out[k] = &val
		} else {
			out[k] = nil
		}
	}
	return out
}

// Set records a metric value. It is a construction helper for callers
// assembling tables outside the calculator (fixtures, trend
// comparisons); the calculator itself goes through set/setVal.
func (t Table) Set(k Key, v float64) {
	t.values[k] = v
}

// set records a computed metric value. Nil pointers (metric could not
// be computed) are ignored so callers can pass optional results
// straight through.
func (t Table) set(k Key, v *float64) {
	if v != nil {
		t.values[k] = *v
	}
}

// setVal records a value known to be present.
func (t Table) setVal(k Key, v float64) {
	t.values[k] = v
}
