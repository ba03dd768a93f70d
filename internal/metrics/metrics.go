// Package metrics derives the named biomechanical metrics from a frame
// sequence and its detected swing phases.
//
// Every metric is a pure function of joint positions at one or more
// phases. A metric whose joints are missing or below the visibility
// threshold resolves to an absent table entry, never an error. The 3D
// formula is preferred whenever the sequence carries provider 3D
// joints; otherwise the calibrated 2D fallback is used. The dispatch
// happens once per sequence.
package metrics

import (
	"math"

	"github.com/fairway-data/swing.report/internal/geom"
	"github.com/fairway-data/swing.report/internal/phases"
	"github.com/fairway-data/swing.report/internal/pose"
	"github.com/fairway-data/swing.report/internal/signal"
)

// Handedness identifies which side leads the swing.
type Handedness string

const (
	HandednessRight Handedness = "right"
	HandednessLeft  Handedness = "left"
)

// ClubClass is the coarse implement category estimated from swing
// timing when not supplied by the caller.
type ClubClass string

const (
	ClubDriver ClubClass = "driver"
	ClubIron   ClubClass = "iron"
	ClubWedge  ClubClass = "wedge"
)

// Backswing-duration thresholds (ms) separating the club classes.
const (
	driverBackswingMS = 1000
	ironBackswingMS   = 800
)

// Calibrated 2D bearing constants: the maximum lateral landmark
// separation observed at ~90° of rotation in a down-the-line view.
const (
	maxShoulderSeparation2D = 0.055
	maxHipSeparation2D      = 0.07
)

// Sway smoothing window for the head-track signal.
const swaySmoothWindow = 11

// torsoLengthCM is the assumed torso length used to convert normalized
// units to centimeters.
const torsoLengthCM = 50.0

// transitionFraction is how far into the downswing the swing-path
// sample point sits.
const transitionFraction = 0.2

// Options control handedness and club class; empty values are
// auto-detected from the sequence.
type Options struct {
	Handedness Handedness
	Club       ClubClass
}

// body part selectors resolved against either skeleton layout.
type part int

const (
	partNose part = iota
	partLeftShoulder
	partRightShoulder
	partLeftElbow
	partRightElbow
	partLeftWrist
	partRightWrist
	partLeftHip
	partRightHip
	partLeftKnee
	partRightKnee
	partLeftAnkle
	partRightAnkle
	partPelvis
	partNeck
)

var landmarkFor = map[part]int{
	partNose:          pose.LandmarkNose,
	partLeftShoulder:  pose.LandmarkLeftShoulder,
	partRightShoulder: pose.LandmarkRightShoulder,
	partLeftElbow:     pose.LandmarkLeftElbow,
	partRightElbow:    pose.LandmarkRightElbow,
	partLeftWrist:     pose.LandmarkLeftWrist,
	partRightWrist:    pose.LandmarkRightWrist,
	partLeftHip:       pose.LandmarkLeftHip,
	partRightHip:      pose.LandmarkRightHip,
	partLeftKnee:      pose.LandmarkLeftKnee,
	partRightKnee:     pose.LandmarkRightKnee,
	partLeftAnkle:     pose.LandmarkLeftAnkle,
	partRightAnkle:    pose.LandmarkRightAnkle,
}

var jointFor = map[part]int{
	partNose:          pose.JointHead,
	partLeftShoulder:  pose.JointLeftShoulder,
	partRightShoulder: pose.JointRightShoulder,
	partLeftElbow:     pose.JointLeftElbow,
	partRightElbow:    pose.JointRightElbow,
	partLeftWrist:     pose.JointLeftWrist,
	partRightWrist:    pose.JointRightWrist,
	partLeftHip:       pose.JointLeftHip,
	partRightHip:      pose.JointRightHip,
	partLeftKnee:      pose.JointLeftKnee,
	partRightKnee:     pose.JointRightKnee,
	partLeftAnkle:     pose.JointLeftAnkle,
	partRightAnkle:    pose.JointRightAnkle,
	partPelvis:        pose.JointPelvis,
	partNeck:          pose.JointNeck,
}

// view dispatches joint lookups to the 3D or 2D layout, decided once
// per sequence.
type view struct {
	use3D bool
}

func (v view) point(f pose.FrameRecord, p part) (geom.Vec3, bool) {
	if v.use3D {
		if idx, ok := jointFor[p]; ok {
			return f.Joint(idx)
		}
		return geom.Vec3{}, false
	}
	idx, ok := landmarkFor[p]
	if !ok {
		return geom.Vec3{}, false
	}
	lm, ok := f.Landmark(idx)
	if !ok {
		return geom.Vec3{}, false
	}
	return lm.Vec(), true
}

func (v view) midpoint(f pose.FrameRecord, a, b part) (geom.Vec3, bool) {
	pa, okA := v.point(f, a)
	pb, okB := v.point(f, b)
	if !okA || !okB {
		return geom.Vec3{}, false
	}
	return geom.Mid(pa, pb), true
}

// Compute derives the full metrics table for one sequence. Unresolvable
// metrics are simply absent from the result.
func Compute(seq pose.Sequence, ph phases.Phases, opts Options) Table {
	t := NewTable()
	if seq.Len() == 0 {
		return t
	}

	v := view{use3D: seq.Has3D()}
	hand := opts.Handedness
	if hand == "" {
		hand = DetectHandedness(seq, ph)
	}

	addr := seq.At(ph.Address)
	top := seq.At(ph.Top)
	impact := seq.At(ph.Impact)
	finish := seq.At(ph.Finish)

	// Timing.
	backswingSec := seq.TimestampSec(ph.Top) - seq.TimestampSec(ph.Address)
	downswingSec := seq.TimestampSec(ph.Impact) - seq.TimestampSec(ph.Top)
	t.setVal(KeyBackswingDurationMS, backswingSec*1000)
	t.setVal(KeyDownswingDurationMS, downswingSec*1000)
	if downswingSec > 0 {
		t.setVal(KeyTempoRatio, backswingSec/downswingSec)
	}

	// Rotation at the top. Turn values are reported unsigned; the
	// X-factor is the separation of the unsigned turns.
	chest := v.segmentTurn(addr, top, partLeftShoulder, partRightShoulder, maxShoulderSeparation2D)
	pelvis := v.segmentTurn(addr, top, partLeftHip, partRightHip, maxHipSeparation2D)
	t.set(KeyChestTurnTopDeg, absPtr(chest))
	t.set(KeyPelvisTurnTopDeg, absPtr(pelvis))
	if chest != nil && pelvis != nil {
		t.setVal(KeyXFactorTopDeg, math.Abs(*chest)-math.Abs(*pelvis))
	}

	// Posture.
	t.set(KeySpineAngleAddressDeg, v.spineAngle(addr))
	t.set(KeySpineAngleImpactDeg, v.spineAngle(impact))

	// Arm angles at the three early phases.
	leadShoulder, leadElbow, leadWrist := leadArmParts(hand)
	trailShoulder, trailElbow, trailWrist := trailArmParts(hand)
	t.set(KeyLeadArmAddressDeg, v.jointAngle(addr, leadShoulder, leadElbow, leadWrist))
	t.set(KeyLeadArmTopDeg, v.jointAngle(top, leadShoulder, leadElbow, leadWrist))
	t.set(KeyLeadArmImpactDeg, v.jointAngle(impact, leadShoulder, leadElbow, leadWrist))
	t.set(KeyTrailElbowAddressDeg, v.jointAngle(addr, trailShoulder, trailElbow, trailWrist))
	t.set(KeyTrailElbowTopDeg, v.jointAngle(top, trailShoulder, trailElbow, trailWrist))
	t.set(KeyTrailElbowImpactDeg, v.jointAngle(impact, trailShoulder, trailElbow, trailWrist))

	// Knee flex at address.
	t.set(KeyKneeFlexLeftAddressDeg, v.jointAngle(addr, partLeftHip, partLeftKnee, partLeftAnkle))
	t.set(KeyKneeFlexRightAddressDeg, v.jointAngle(addr, partRightHip, partRightKnee, partRightAnkle))

	// Stability.
	t.set(KeyHeadSwayRange, headSwayRange(seq))
	t.set(KeyEarlyExtensionAmount, v.earlyExtension(addr, impact))
	drop, rise := v.verticalHeadMovement(addr, top, impact)
	t.set(KeyHeadDropCM, drop)
	t.set(KeyHeadRiseCM, rise)
	t.set(KeyPelvisSwayImpactCM, v.lateralSwayCM(addr, impact, partLeftHip, partRightHip))
	t.set(KeyShoulderSwayTopCM, v.lateralSwayCM(addr, top, partLeftShoulder, partRightShoulder))

	// Hand path.
	t.set(KeySwingPathIndex, v.swingPathIndex(seq, ph, hand))
	t.set(KeyHandHeightAtTopIndex, v.handHeightIndex(top, hand))
	t.set(KeyHandWidthAtTopIndex, v.handWidthIndex(top, hand))

	// Swing plane (3D only: the plane needs depth).
	if v.use3D {
		t.set(KeyPlaneDeviationImpactDeg, v.planeDeviation(addr, impact, hand))
	}

	// Finish.
	t.set(KeyFinishBalanceIndex, v.finishBalance(addr, finish, hand))
	t.set(KeyChestTurnFinishDeg, absPtr(v.segmentTurn(addr, finish, partLeftShoulder, partRightShoulder, maxShoulderSeparation2D)))
	t.set(KeyPelvisTurnFinishDeg, absPtr(v.segmentTurn(addr, finish, partLeftHip, partRightHip, maxHipSeparation2D)))
	t.set(KeyFinishSpineExtensionDeg, v.spineAngle(finish))

	return t
}

// DetectHandedness infers handedness from the direction of the mean
// wrist lateral excursion between address and the top.
func DetectHandedness(seq pose.Sequence, ph phases.Phases) Handedness {
	if seq.Len() == 0 {
		return HandednessRight
	}
	xs := seq.WristLateralSeries()
	xAddress := xs[clampIndex(ph.Address, len(xs))]
	xTop := xs[clampIndex(ph.Top, len(xs))]
	if xTop < xAddress {
		return HandednessLeft
	}
	return HandednessRight
}

// EstimateClub classifies the implement from the backswing duration.
// Longer clubs swing on a longer arc and a longer backswing.
func EstimateClub(backswingMS float64) ClubClass {
	switch {
	case backswingMS > driverBackswingMS:
		return ClubDriver
	case backswingMS > ironBackswingMS:
		return ClubIron
	default:
		return ClubWedge
	}
}

func leadArmParts(h Handedness) (shoulder, elbow, wrist part) {
	if h == HandednessLeft {
		return partRightShoulder, partRightElbow, partRightWrist
	}
	return partLeftShoulder, partLeftElbow, partLeftWrist
}

func trailArmParts(h Handedness) (shoulder, elbow, wrist part) {
	if h == HandednessLeft {
		return partLeftShoulder, partLeftElbow, partLeftWrist
	}
	return partRightShoulder, partRightElbow, partRightWrist
}

// segmentTurn measures how far the left↔right line of a body segment
// rotated between two frames, in degrees within [-180, 180]. With 3D
// joints the bearing is taken in the horizontal XZ plane; the 2D
// fallback maps the lateral separation through an arcsine calibrated
// against maxSeparation.
func (v view) segmentTurn(from, to pose.FrameRecord, left, right part, maxSeparation float64) *float64 {
	a := v.segmentBearing(from, left, right, maxSeparation)
	b := v.segmentBearing(to, left, right, maxSeparation)
	if a == nil || b == nil {
		return nil
	}
	d := geom.NormalizeAngleDiff(*a, *b)
	return &d
}

func (v view) segmentBearing(f pose.FrameRecord, left, right part, maxSeparation float64) *float64 {
	l, okL := v.point(f, left)
	r, okR := v.point(f, right)
	if !okL || !okR {
		return nil
	}
	if v.use3D {
		deg := math.Atan2(r.Z-l.Z, r.X-l.X) * 180 / math.Pi
		return &deg
	}
	// 2D: signed lateral separation → rotation angle via arcsine.
	dx := r.X - l.X
	dx = math.Max(-maxSeparation, math.Min(dx, maxSeparation))
	deg := math.Asin(dx/maxSeparation) * 180 / math.Pi
	return &deg
}

// spineAngle is the angle between the hip→shoulder midline and the
// vertical axis, in degrees.
func (v view) spineAngle(f pose.FrameRecord) *float64 {
	midShoulder, okS := v.midpoint(f, partLeftShoulder, partRightShoulder)
	midHip, okH := v.midpoint(f, partLeftHip, partRightHip)
	if !okS || !okH {
		return nil
	}
	spine := midShoulder.Sub(midHip)
	if spine.Norm() < 1e-3 {
		return nil
	}
	if v.use3D {
		// Y is down; up is (0, -1, 0).
		cos := spine.Normalize().Dot(geom.Vec3{Y: -1})
		cos = math.Max(-1, math.Min(1, cos))
		deg := math.Acos(cos) * 180 / math.Pi
		return &deg
	}
	deg := math.Atan2(math.Abs(spine.X), -spine.Y) * 180 / math.Pi
	return &deg
}

// jointAngle is the 3-point angle at the middle part, in degrees.
func (v view) jointAngle(f pose.FrameRecord, a, b, c part) *float64 {
	pa, okA := v.point(f, a)
	pb, okB := v.point(f, b)
	pc, okC := v.point(f, c)
	if !okA || !okB || !okC {
		return nil
	}
	deg := geom.AngleAt(pa, pb, pc)
	return &deg
}

// headSwayRange is the max−min of the smoothed horizontal head track
// across the whole sequence.
func headSwayRange(seq pose.Sequence) *float64 {
	xs, _ := seq.LandmarkSeries(pose.LandmarkNose)
	if len(xs) < 2 {
		return nil
	}
	smoothed := signal.SavitzkyGolay(xs, swaySmoothWindow, 2)
	lo, hi := smoothed[0], smoothed[0]
	for _, x := range smoothed[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	r := hi - lo
	return &r
}

// earlyExtension is the vertical displacement of the hip midline from
// address to impact; positive means the hips rose out of posture.
func (v view) earlyExtension(addr, impact pose.FrameRecord) *float64 {
	a, okA := v.midpoint(addr, partLeftHip, partRightHip)
	i, okI := v.midpoint(impact, partLeftHip, partRightHip)
	if !okA || !okI {
		return nil
	}
	// Y grows downward, so rising hips shrink Y.
	d := a.Y - i.Y
	return &d
}

// verticalHeadMovement returns the head drop (address→top) and rise
// (top→impact) in approximate centimeters, scaled by torso length.
func (v view) verticalHeadMovement(addr, top, impact pose.FrameRecord) (drop, rise *float64) {
	a, okA := v.point(addr, partNose)
	t, okT := v.point(top, partNose)
	i, okI := v.point(impact, partNose)
	if !okA || !okT || !okI {
		return nil, nil
	}
	scale := v.cmScale(addr)
	d := (t.Y - a.Y) * scale
	r := (t.Y - i.Y) * scale
	return &d, &r
}

// cmScale converts normalized units to approximate centimeters using
// the subject's torso length.
func (v view) cmScale(f pose.FrameRecord) float64 {
	sh, okS := v.point(f, partLeftShoulder)
	hip, okH := v.point(f, partLeftHip)
	if okS && okH {
		torso := math.Abs(sh.Y - hip.Y)
		if torso > 0.01 {
			return torsoLengthCM / torso
		}
	}
	return 100.0
}

// lateralSwayCM is the lateral displacement of a segment midline
// between two phases, in approximate centimeters.
func (v view) lateralSwayCM(from, to pose.FrameRecord, left, right part) *float64 {
	a, okA := v.midpoint(from, left, right)
	b, okB := v.midpoint(to, left, right)
	if !okA || !okB {
		return nil
	}
	d := (b.X - a.X) * v.cmScale(from)
	return &d
}

// swingPathIndex measures the lead wrist's lateral move between the
// top and a point 20% into the downswing, normalized by shoulder
// width. Positive = over the top, negative = shallow; left-handers
// mirror before normalization.
func (v view) swingPathIndex(seq pose.Sequence, ph phases.Phases, hand Handedness) *float64 {
	downswing := ph.Impact - ph.Top
	if downswing <= 2 {
		return nil
	}
	offset := int(float64(downswing) * transitionFraction)
	if offset < 2 {
		offset = 2
	}
	transitionIdx := ph.Top + offset
	if transitionIdx > ph.Impact-1 {
		transitionIdx = ph.Impact - 1
	}

	_, _, leadWrist := leadArmParts(hand)
	top := seq.At(ph.Top)
	transition := seq.At(transitionIdx)

	wTop, okT := v.point(top, leadWrist)
	wTrans, okTr := v.point(transition, leadWrist)
	if !okT || !okTr {
		return nil
	}

	displacement := wTrans.X - wTop.X
	if hand == HandednessLeft {
		displacement = -displacement
	}

	ls, okL := v.point(top, partLeftShoulder)
	rs, okR := v.point(top, partRightShoulder)
	if okL && okR {
		width := math.Abs(ls.X - rs.X)
		if width > 0.01 {
			idx := displacement / width
			return &idx
		}
	}
	idx := displacement * 5 // approximate normalization
	return &idx
}

// handHeightIndex is the lead wrist height above the lead shoulder at
// the top, normalized by torso length. Positive = hands above the
// shoulder line.
func (v view) handHeightIndex(top pose.FrameRecord, hand Handedness) *float64 {
	shoulderPart, _, wristPart := leadArmParts(hand)
	wrist, okW := v.point(top, wristPart)
	shoulder, okS := v.point(top, shoulderPart)
	if !okW || !okS {
		return nil
	}
	diff := shoulder.Y - wrist.Y

	sh, okSh := v.point(top, partLeftShoulder)
	hip, okH := v.point(top, partLeftHip)
	if okSh && okH {
		torso := math.Abs(sh.Y - hip.Y)
		if torso > 0.01 {
			idx := diff / torso
			return &idx
		}
	}
	idx := diff * 2
	return &idx
}

// handWidthIndex is the lead wrist's distance from the chest midpoint
// at the top, normalized by shoulder width. Larger = wider structure.
func (v view) handWidthIndex(top pose.FrameRecord, hand Handedness) *float64 {
	_, _, wristPart := leadArmParts(hand)
	wrist, okW := v.point(top, wristPart)
	ls, okL := v.point(top, partLeftShoulder)
	rs, okR := v.point(top, partRightShoulder)
	if !okW || !okL || !okR {
		return nil
	}
	chest := geom.Mid(ls, rs)
	dist := wrist.Dist(chest)
	width := ls.Dist(rs)
	if width > 0.01 {
		idx := dist / width
		return &idx
	}
	idx := dist * 2.5
	return &idx
}

// planeDeviation compares the spine×lead-arm plane normal at a phase
// against the plane established at address; the deviation is the angle
// between the two planes.
func (v view) planeDeviation(addr, at pose.FrameRecord, hand Handedness) *float64 {
	ref, okR := v.armPlaneNormal(addr, hand)
	cur, okC := v.armPlaneNormal(at, hand)
	if !okR || !okC {
		return nil
	}
	cos := math.Abs(ref.Dot(cur))
	cos = math.Min(1, cos)
	deg := math.Acos(cos) * 180 / math.Pi
	return &deg
}

func (v view) armPlaneNormal(f pose.FrameRecord, hand Handedness) (geom.Vec3, bool) {
	pelvis, okP := v.point(f, partPelvis)
	neck, okN := v.point(f, partNeck)
	shoulderPart, _, wristPart := leadArmParts(hand)
	shoulder, okS := v.point(f, shoulderPart)
	wrist, okW := v.point(f, wristPart)
	if !okP || !okN || !okS || !okW {
		return geom.Vec3{}, false
	}
	spine := neck.Sub(pelvis).Normalize()
	arm := wrist.Sub(shoulder).Normalize()
	normal := spine.Cross(arm)
	if normal.Norm() < geom.Epsilon {
		return geom.Vec3{}, false
	}
	return normal.Normalize(), true
}

// finishBalance measures how far the pelvis settled toward the lead
// foot at the finish: 0 = centered over the stance, +1 = directly over
// the lead ankle, negative = hanging back on the trail side. The index
// is normalized by half the stance width at address and clamped to
// [-1, 1].
func (v view) finishBalance(addr, finish pose.FrameRecord, hand Handedness) *float64 {
	leadAnklePart := partLeftAnkle
	trailAnklePart := partRightAnkle
	if hand == HandednessLeft {
		leadAnklePart, trailAnklePart = trailAnklePart, leadAnklePart
	}
	lead, okL := v.point(addr, leadAnklePart)
	trail, okT := v.point(addr, trailAnklePart)
	pelvis, okP := v.midpoint(finish, partLeftHip, partRightHip)
	if !okL || !okT || !okP {
		return nil
	}
	center := (lead.X + trail.X) / 2
	halfStance := lead.X - center
	if math.Abs(halfStance) < 0.01 {
		return nil
	}
	idx := (pelvis.X - center) / halfStance
	idx = math.Max(-1, math.Min(1, idx))
	return &idx
}

func absPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	a := math.Abs(*v)
	return &a
}

func clampIndex(i, n int) int {
	if n == 0 {
		return 0
	}
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
