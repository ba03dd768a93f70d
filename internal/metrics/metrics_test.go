package metrics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairway-data/swing.report/internal/geom"
	"github.com/fairway-data/swing.report/internal/phases"
	"github.com/fairway-data/swing.report/internal/pose"
	"github.com/fairway-data/swing.report/internal/testutil"
)

func syntheticPhases() phases.Phases {
	return phases.Phases{Address: 4, Top: 18, Impact: 25, Finish: 39}
}

func TestComputeSynthetic2D(t *testing.T) {
	seq := testutil.SyntheticSwing(40, 30)
	ph := syntheticPhases()
	table := Compute(seq, ph, Options{})

	// Timing: 14 backswing frames over 7 downswing frames at a uniform
	// frame rate is a 2:1 tempo.
	tempo, ok := table.Get(KeyTempoRatio)
	require.True(t, ok)
	assert.InDelta(t, 2.0, tempo, 1e-9)

	backswing, ok := table.Get(KeyBackswingDurationMS)
	require.True(t, ok)
	assert.InDelta(t, 14.0/30*1000, backswing, 1e-6)

	// The synthetic torso never rotates.
	chest, ok := table.Get(KeyChestTurnTopDeg)
	require.True(t, ok)
	assert.InDelta(t, 0, chest, 1e-9)
	xf, ok := table.Get(KeyXFactorTopDeg)
	require.True(t, ok)
	assert.InDelta(t, 0, xf, 1e-9)

	// Vertical spine, straight legs, level hips.
	spine, ok := table.Get(KeySpineAngleAddressDeg)
	require.True(t, ok)
	assert.InDelta(t, 0, spine, 1e-9)
	knee, ok := table.Get(KeyKneeFlexLeftAddressDeg)
	require.True(t, ok)
	assert.InDelta(t, 180, knee, 1)
	ee, ok := table.Get(KeyEarlyExtensionAmount)
	require.True(t, ok)
	assert.InDelta(t, 0, ee, 1e-9)

	// The nose oscillates ±0.005 laterally; smoothing keeps the range
	// near the raw 0.01.
	sway, ok := table.Get(KeyHeadSwayRange)
	require.True(t, ok)
	assert.GreaterOrEqual(t, sway, 0.0)
	assert.Less(t, sway, 0.02)

	// Static head height and centered pelvis.
	drop, ok := table.Get(KeyHeadDropCM)
	require.True(t, ok)
	assert.InDelta(t, 0, drop, 1e-9)
	balance, ok := table.Get(KeyFinishBalanceIndex)
	require.True(t, ok)
	assert.InDelta(t, 0, balance, 1e-9)

	// The wrist X is pinned by the time the top is reached, so the path
	// index is neutral.
	path, ok := table.Get(KeySwingPathIndex)
	require.True(t, ok)
	assert.InDelta(t, 0, path, 1e-6)

	// Hands above the shoulder line at the top, away from the chest.
	hh, ok := table.Get(KeyHandHeightAtTopIndex)
	require.True(t, ok)
	assert.Greater(t, hh, 0.0)
	hw, ok := table.Get(KeyHandWidthAtTopIndex)
	require.True(t, ok)
	assert.Greater(t, hw, 0.0)

	// Plane metrics need 3D joints.
	_, ok = table.Get(KeyPlaneDeviationImpactDeg)
	assert.False(t, ok)

	// Arm angles are genuine angles.
	for _, k := range []Key{
		KeyLeadArmAddressDeg, KeyLeadArmTopDeg, KeyLeadArmImpactDeg,
		KeyTrailElbowAddressDeg, KeyTrailElbowTopDeg, KeyTrailElbowImpactDeg,
	} {
		v, ok := table.Get(k)
		require.True(t, ok, k)
		assert.GreaterOrEqual(t, v, 0.0, k)
		assert.LessOrEqual(t, v, 180.0, k)
	}
}

func TestComputeEmptySequence(t *testing.T) {
	table := Compute(pose.NewSequence(nil, 30), phases.Phases{}, Options{})
	assert.Equal(t, 0, table.Len())
}

func TestComputeOccludedJoints(t *testing.T) {
	seq := testutil.SyntheticSwing(40, 30)
	ph := syntheticPhases()
	// Hide the left arm at address; lead-arm and left-knee metrics at
	// that phase must be absent, not zero.
	for _, idx := range []int{pose.LandmarkLeftShoulder, pose.LandmarkLeftElbow, pose.LandmarkLeftWrist} {
		seq.Frames[ph.Address].Landmarks[idx].Visibility = 0
	}

	table := Compute(seq, ph, Options{Handedness: HandednessRight})
	_, ok := table.Get(KeyLeadArmAddressDeg)
	assert.False(t, ok)
	// Metrics at other phases are unaffected.
	_, ok = table.Get(KeyLeadArmTopDeg)
	assert.True(t, ok)
}

func TestDetectHandedness(t *testing.T) {
	seq := testutil.SyntheticSwing(40, 30)
	ph := syntheticPhases()
	assert.Equal(t, HandednessRight, DetectHandedness(seq, ph))

	// Mirror the wrists and the trace reads left-handed.
	for i := range seq.Frames {
		for _, idx := range []int{pose.LandmarkLeftWrist, pose.LandmarkRightWrist} {
			seq.Frames[i].Landmarks[idx].X = 1 - seq.Frames[i].Landmarks[idx].X
		}
	}
	assert.Equal(t, HandednessLeft, DetectHandedness(seq, ph))
}

func TestDetectHandednessEmpty(t *testing.T) {
	assert.Equal(t, HandednessRight, DetectHandedness(pose.NewSequence(nil, 30), phases.Phases{}))
}

func TestEstimateClub(t *testing.T) {
	tests := []struct {
		backswingMS float64
		want        ClubClass
	}{
		{1200, ClubDriver},
		{1001, ClubDriver},
		{1000, ClubIron},
		{850, ClubIron},
		{800, ClubWedge},
		{500, ClubWedge},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, EstimateClub(tc.backswingMS), "%.0f ms", tc.backswingMS)
	}
}

// frame3D builds a frame whose body joints are all at origin except the
// given overrides.
func frame3D(joints map[int]geom.Vec3) pose.FrameRecord {
	var arr [pose.NumJoints]geom.Vec3
	for idx, v := range joints {
		arr[idx] = v
	}
	return pose.FrameRecord{Joints3D: &arr}
}

func TestSegmentTurn3D(t *testing.T) {
	v := view{use3D: true}
	addr := frame3D(map[int]geom.Vec3{
		pose.JointLeftShoulder:  {X: 0.2},
		pose.JointRightShoulder: {X: -0.2},
	})
	// Shoulders rotated 90° about the vertical axis.
	top := frame3D(map[int]geom.Vec3{
		pose.JointLeftShoulder:  {Z: -0.2},
		pose.JointRightShoulder: {Z: 0.2},
	})

	turn := v.segmentTurn(addr, top, partLeftShoulder, partRightShoulder, maxShoulderSeparation2D)
	require.NotNil(t, turn)
	assert.InDelta(t, 90, math.Abs(*turn), 1e-9)
}

func TestSegmentTurn2DCalibration(t *testing.T) {
	v := view{use3D: false}
	mk := func(dx float64) pose.FrameRecord {
		lms := make([]pose.Landmark, pose.NumLandmarks)
		for i := range lms {
			lms[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
		}
		lms[pose.LandmarkLeftShoulder] = pose.Landmark{X: 0.5, Y: 0.35, Visibility: 1}
		lms[pose.LandmarkRightShoulder] = pose.Landmark{X: 0.5 + dx, Y: 0.35, Visibility: 1}
		return pose.FrameRecord{Landmarks: lms}
	}

	// Separation collapsing from the calibrated maximum to zero reads as
	// a 90° turn; overshoot clamps instead of producing NaN.
	turn := v.segmentTurn(mk(maxShoulderSeparation2D), mk(0), partLeftShoulder, partRightShoulder, maxShoulderSeparation2D)
	require.NotNil(t, turn)
	assert.InDelta(t, 90, math.Abs(*turn), 1e-9)

	turn = v.segmentTurn(mk(2*maxShoulderSeparation2D), mk(-2*maxShoulderSeparation2D), partLeftShoulder, partRightShoulder, maxShoulderSeparation2D)
	require.NotNil(t, turn)
	assert.InDelta(t, 180, math.Abs(*turn), 1e-9)
}

func TestSpineAngle3D(t *testing.T) {
	v := view{use3D: true}
	// Shoulders offset forward (Z) relative to the hips: a 45° forward
	// bend with Y pointing down.
	f := frame3D(map[int]geom.Vec3{
		pose.JointLeftShoulder:  {Y: -0.5, Z: 0.5},
		pose.JointRightShoulder: {Y: -0.5, Z: 0.5},
		pose.JointLeftHip:       {},
		pose.JointRightHip:      {},
	})
	deg := v.spineAngle(f)
	require.NotNil(t, deg)
	assert.InDelta(t, 45, *deg, 1e-9)
}

func TestPlaneDeviation3D(t *testing.T) {
	v := view{use3D: true}
	base := map[int]geom.Vec3{
		pose.JointPelvis:       {},
		pose.JointNeck:         {Y: -0.5},
		pose.JointLeftShoulder: {X: 0.2, Y: -0.5},
		pose.JointLeftWrist:    {X: 0.2, Y: -0.1, Z: 0.3},
	}
	addr := frame3D(base)

	// Identical pose: zero deviation.
	dev := v.planeDeviation(addr, addr, HandednessRight)
	require.NotNil(t, dev)
	assert.InDelta(t, 0, *dev, 1e-9)

	// Swing the arm out of the address plane.
	moved := map[int]geom.Vec3{
		pose.JointPelvis:       {},
		pose.JointNeck:         {Y: -0.5},
		pose.JointLeftShoulder: {X: 0.2, Y: -0.5},
		pose.JointLeftWrist:    {X: 0.2, Y: -0.1, Z: -0.3},
	}
	dev = v.planeDeviation(addr, frame3D(moved), HandednessRight)
	require.NotNil(t, dev)
	assert.Greater(t, *dev, 10.0)
	assert.LessOrEqual(t, *dev, 90.0)
}

func TestFinishBalanceLeansLead(t *testing.T) {
	v := view{use3D: false}
	mk := func(pelvisX float64) pose.FrameRecord {
		lms := make([]pose.Landmark, pose.NumLandmarks)
		for i := range lms {
			lms[i] = pose.Landmark{X: 0.5, Y: 0.5, Visibility: 1}
		}
		lms[pose.LandmarkLeftAnkle] = pose.Landmark{X: 0.56, Y: 0.95, Visibility: 1}
		lms[pose.LandmarkRightAnkle] = pose.Landmark{X: 0.44, Y: 0.95, Visibility: 1}
		lms[pose.LandmarkLeftHip] = pose.Landmark{X: pelvisX + 0.02, Y: 0.55, Visibility: 1}
		lms[pose.LandmarkRightHip] = pose.Landmark{X: pelvisX - 0.02, Y: 0.55, Visibility: 1}
		return pose.FrameRecord{Landmarks: lms}
	}
	addr := mk(0.5)

	// Pelvis over the lead (left) ankle reads +1 for a right-hander.
	idx := v.finishBalance(addr, mk(0.56), HandednessRight)
	require.NotNil(t, idx)
	assert.InDelta(t, 1, *idx, 1e-9)

	// Hanging back on the trail side reads negative.
	idx = v.finishBalance(addr, mk(0.47), HandednessRight)
	require.NotNil(t, idx)
	assert.InDelta(t, -0.5, *idx, 1e-9)

	// The same finish reads opposite for a left-hander.
	idx = v.finishBalance(addr, mk(0.47), HandednessLeft)
	require.NotNil(t, idx)
	assert.InDelta(t, 0.5, *idx, 1e-9)

	// Overshoot clamps.
	idx = v.finishBalance(addr, mk(0.70), HandednessRight)
	require.NotNil(t, idx)
	assert.InDelta(t, 1, *idx, 1e-9)
}

func TestTableToMapOrder(t *testing.T) {
	table := NewTable()
	table.setVal(KeyTempoRatio, 3.0)
	m := table.ToMap()
	assert.Len(t, m, len(AllKeys))
	require.NotNil(t, m[KeyTempoRatio])
	assert.Equal(t, 3.0, *m[KeyTempoRatio])
	assert.Nil(t, m[KeyXFactorTopDeg])
}
