package scoring

import "github.com/fairway-data/swing.report/internal/metrics"

// View identifies the capture camera angle. Some metrics are
// unreliable from one angle or the other, so the view selects a set
// of weight overrides.
type View string

const (
	// ViewLateral is the down-the-line view, looking along the target
	// line from behind the player.
	ViewLateral View = "lateral"
	// ViewFrontal is the face-on view.
	ViewFrontal View = "frontal"
)

// weightOverrides adjusts per-metric weights by capture view. Depth
// is unobservable face-on, so plane and spine metrics are discounted
// there; lateral captures barely show lateral motion, so the sway and
// balance metrics are discounted instead.
var weightOverrides = map[View]map[metrics.Key]float64{
	ViewFrontal: {
		metrics.KeyPlaneDeviationImpactDeg: 0,
		metrics.KeySpineAngleAddressDeg:    0.4,
		metrics.KeySpineAngleImpactDeg:     0.4,
	},
	ViewLateral: {
		metrics.KeyPelvisSwayImpactCM: 0,
		metrics.KeyShoulderSwayTopCM:  0,
		metrics.KeyHeadSwayRange:      0.3,
		metrics.KeyFinishBalanceIndex: 0.3,
	},
}

// baseTargets is the tour-average reference band set shared by every
// club profile. Inner tolerance is half the accepted range; outer is
// double that, so the score hits zero one full range-width past the
// target.
func baseTargets() map[metrics.Key]Target {
	return map[metrics.Key]Target{
		metrics.KeyTempoRatio:          {Target: 3.0, InnerTol: 0.5, OuterTol: 1.0, Weight: 1.0},
		metrics.KeyBackswingDurationMS: {Target: 750, InnerTol: 200, OuterTol: 400, Weight: 0.5},
		metrics.KeyDownswingDurationMS: {Target: 250, InnerTol: 75, OuterTol: 150, Weight: 0.5},

		metrics.KeyChestTurnTopDeg:  {Target: 90, InnerTol: 15, OuterTol: 30, Weight: 0.8},
		metrics.KeyPelvisTurnTopDeg: {Target: 45, InnerTol: 10, OuterTol: 20, Weight: 0.7},
		metrics.KeyXFactorTopDeg:    {Target: 40, InnerTol: 12.5, OuterTol: 25, Weight: 0.9},

		metrics.KeySpineAngleAddressDeg: {Target: 35, InnerTol: 10, OuterTol: 20, Weight: 0.8},
		metrics.KeySpineAngleImpactDeg:  {Target: 35, InnerTol: 10, OuterTol: 20, Weight: 0.8},

		metrics.KeyLeadArmAddressDeg:    {Target: 175, InnerTol: 10, OuterTol: 20, Weight: 0.7},
		metrics.KeyLeadArmTopDeg:        {Target: 175, InnerTol: 10, OuterTol: 20, Weight: 0.8},
		metrics.KeyLeadArmImpactDeg:     {Target: 175, InnerTol: 10, OuterTol: 20, Weight: 0.9},
		metrics.KeyTrailElbowAddressDeg: {Target: 160, InnerTol: 10, OuterTol: 20, Weight: 0.6},
		metrics.KeyTrailElbowTopDeg:     {Target: 90, InnerTol: 15, OuterTol: 30, Weight: 0.9},
		metrics.KeyTrailElbowImpactDeg:  {Target: 160, InnerTol: 10, OuterTol: 20, Weight: 0.8},

		metrics.KeyKneeFlexLeftAddressDeg:  {Target: 150, InnerTol: 17.5, OuterTol: 35, Weight: 0.7},
		metrics.KeyKneeFlexRightAddressDeg: {Target: 150, InnerTol: 17.5, OuterTol: 35, Weight: 0.7},

		metrics.KeyHeadSwayRange:        {Target: 0.02, InnerTol: 0.025, OuterTol: 0.05, Weight: 0.8},
		metrics.KeyEarlyExtensionAmount: {Target: 0, InnerTol: 0.02, OuterTol: 0.04, Weight: 0.9},
		metrics.KeyHeadDropCM:           {Target: 0, InnerTol: 3, OuterTol: 8, Weight: 0.5},
		metrics.KeyHeadRiseCM:           {Target: 0, InnerTol: 3, OuterTol: 8, Weight: 0.5},
		metrics.KeyPelvisSwayImpactCM:   {Target: 2, InnerTol: 3, OuterTol: 10, Weight: 0.6},
		metrics.KeyShoulderSwayTopCM:    {Target: 0, InnerTol: 4, OuterTol: 10, Weight: 0.5},

		metrics.KeySwingPathIndex:       {Target: 0, InnerTol: 0.15, OuterTol: 0.5, Weight: 0.8},
		metrics.KeyHandHeightAtTopIndex: {Target: 0.3, InnerTol: 0.2, OuterTol: 0.6, Weight: 0.4},
		metrics.KeyHandWidthAtTopIndex:  {Target: 1.5, InnerTol: 0.5, OuterTol: 1.2, Weight: 0.4},

		metrics.KeyPlaneDeviationImpactDeg: {Target: 0, InnerTol: 6, OuterTol: 20, Weight: 0.7},

		metrics.KeyFinishBalanceIndex:      {Target: 1, InnerTol: 0.25, OuterTol: 0.9, Weight: 0.7},
		metrics.KeyChestTurnFinishDeg:      {Target: 120, InnerTol: 25, OuterTol: 60, Weight: 0.4},
		metrics.KeyPelvisTurnFinishDeg:     {Target: 100, InnerTol: 25, OuterTol: 60, Weight: 0.4},
		metrics.KeyFinishSpineExtensionDeg: {Target: 10, InnerTol: 10, OuterTol: 30, Weight: 0.3},
	}
}

// ProfileFor returns the reference profile for a club class and view.
// Unknown combinations fall back to the iron profile, the middle of
// the bag.
func ProfileFor(club metrics.ClubClass, view View) Profile {
	targets := baseTargets()
	name := "iron"

	switch club {
	case metrics.ClubDriver:
		name = "driver"
		// Drivers swing longer and turn further.
		targets[metrics.KeyBackswingDurationMS] = Target{Target: 850, InnerTol: 200, OuterTol: 400, Weight: 0.5}
		targets[metrics.KeyChestTurnTopDeg] = Target{Target: 95, InnerTol: 15, OuterTol: 30, Weight: 0.8}
		targets[metrics.KeyXFactorTopDeg] = Target{Target: 45, InnerTol: 12.5, OuterTol: 25, Weight: 0.9}
	case metrics.ClubWedge:
		name = "wedge"
		// Wedge swings are shorter and quieter.
		targets[metrics.KeyTempoRatio] = Target{Target: 2.5, InnerTol: 0.5, OuterTol: 1.0, Weight: 1.0}
		targets[metrics.KeyBackswingDurationMS] = Target{Target: 650, InnerTol: 175, OuterTol: 350, Weight: 0.5}
		targets[metrics.KeyChestTurnTopDeg] = Target{Target: 75, InnerTol: 15, OuterTol: 30, Weight: 0.8}
		targets[metrics.KeyPelvisTurnTopDeg] = Target{Target: 35, InnerTol: 10, OuterTol: 20, Weight: 0.7}
	}

	return Profile{Name: name + "-" + string(view), Targets: targets}
}
