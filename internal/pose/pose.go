// Package pose defines the data model shared by every analysis stage:
// per-frame landmark records, the two canonical skeleton layouts, and
// the sequence wrapper handed to the detectors and calculators.
//
// Two layouts coexist. The flat 33-entry landmark schema is what 2D
// providers emit and what raw metric lookups index into. The 24-joint
// body skeleton is the kinematic tree used when a rotation-aware 3D
// provider is available.
package pose

import "github.com/fairway-data/swing.report/internal/geom"

// DefaultFPS is assumed when the capture frame rate is missing or
// non-positive.
const DefaultFPS = 30.0

// VisibilityThreshold is the minimum landmark visibility for a joint to
// participate in a metric. Below it the metric resolves to nil.
const VisibilityThreshold = 0.5

// Landmark schema indices (33-entry flat layout).
const (
	LandmarkNose          = 0
	LandmarkLeftShoulder  = 11
	LandmarkRightShoulder = 12
	LandmarkLeftElbow     = 13
	LandmarkRightElbow    = 14
	LandmarkLeftWrist     = 15
	LandmarkRightWrist    = 16
	LandmarkLeftHip       = 23
	LandmarkRightHip      = 24
	LandmarkLeftKnee      = 25
	LandmarkRightKnee     = 26
	LandmarkLeftAnkle     = 27
	LandmarkRightAnkle    = 28

	// NumLandmarks is the fixed landmark list length per frame.
	NumLandmarks = 33
)

// Body skeleton joint indices (24-joint parent-indexed tree).
const (
	JointPelvis        = 0
	JointLeftHip       = 1
	JointRightHip      = 2
	JointSpine1        = 3
	JointLeftKnee      = 4
	JointRightKnee     = 5
	JointSpine2        = 6
	JointLeftAnkle     = 7
	JointRightAnkle    = 8
	JointSpine3        = 9
	JointLeftFoot      = 10
	JointRightFoot     = 11
	JointNeck          = 12
	JointLeftCollar    = 13
	JointRightCollar   = 14
	JointHead          = 15
	JointLeftShoulder  = 16
	JointRightShoulder = 17
	JointLeftElbow     = 18
	JointRightElbow    = 19
	JointLeftWrist     = 20
	JointRightWrist    = 21
	JointLeftHand      = 22
	JointRightHand     = 23

	// NumJoints is the body skeleton size.
	NumJoints = 24
)

// Landmark is one observed joint position. Z is 0 when only a 2D view
// is available. Visibility is the provider confidence in [0, 1].
type Landmark struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Z          float64 `json:"z"`
	Visibility float64 `json:"visibility"`
}

// Vec returns the landmark position as a vector.
func (l Landmark) Vec() geom.Vec3 { return geom.Vec3{X: l.X, Y: l.Y, Z: l.Z} }

// Visible reports whether the landmark confidence clears the metric
// threshold.
func (l Landmark) Visible() bool { return l.Visibility >= VisibilityThreshold }

// FrameRecord is one timestamped observation from the pose provider.
// Rotations and Joints3D are present only for rotation-aware 3D
// providers; index i maps to the same anatomical joint in every frame
// of a sequence.
type FrameRecord struct {
	FrameIndex  int        `json:"frame_index"`
	TimestampMS float64    `json:"timestamp_ms"`
	Landmarks   []Landmark `json:"landmarks"`

	Rotations *[NumJoints]geom.Mat3 `json:"rotations,omitempty"`
	Joints3D  *[NumJoints]geom.Vec3 `json:"joints_3d,omitempty"`
}

// Landmark returns the landmark at idx and whether it exists and is
// visible.
func (f FrameRecord) Landmark(idx int) (Landmark, bool) {
	if idx < 0 || idx >= len(f.Landmarks) {
		return Landmark{}, false
	}
	lm := f.Landmarks[idx]
	return lm, lm.Visible()
}

// Joint returns the body-skeleton 3D joint at idx when the frame
// carries provider 3D joints.
func (f FrameRecord) Joint(idx int) (geom.Vec3, bool) {
	if f.Joints3D == nil || idx < 0 || idx >= NumJoints {
		return geom.Vec3{}, false
	}
	return f.Joints3D[idx], true
}

// Sequence is a complete captured swing: an ordered frame list plus the
// capture frame rate. Sequences are read-only once constructed.
type Sequence struct {
	Frames []FrameRecord
	FPS    float64
}

// NewSequence wraps frames with the capture rate, falling back to
// DefaultFPS when fps is missing or non-positive.
func NewSequence(frames []FrameRecord, fps float64) Sequence {
	if fps <= 0 {
		fps = DefaultFPS
	}
	return Sequence{Frames: frames, FPS: fps}
}

// Len returns the frame count.
func (s Sequence) Len() int { return len(s.Frames) }

// At returns the frame at index i, clamped into range. Calling At on an
// empty sequence returns a zero FrameRecord.
func (s Sequence) At(i int) FrameRecord {
	if len(s.Frames) == 0 {
		return FrameRecord{}
	}
	if i < 0 {
		i = 0
	}
	if i >= len(s.Frames) {
		i = len(s.Frames) - 1
	}
	return s.Frames[i]
}

// Has3D reports whether the sequence carries provider 3D joints.
func (s Sequence) Has3D() bool {
	return len(s.Frames) > 0 && s.Frames[0].Joints3D != nil
}

// HasRotations reports whether the sequence carries per-joint rotation
// matrices.
func (s Sequence) HasRotations() bool {
	return len(s.Frames) > 0 && s.Frames[0].Rotations != nil
}

// LandmarkSeries extracts the (x, y) track of one landmark across the
// sequence. Frames where the landmark is absent reuse the previous
// frame's value so downstream smoothing never sees gaps; leading gaps
// use 0.5 (image center).
func (s Sequence) LandmarkSeries(idx int) (xs, ys []float64) {
	xs = make([]float64, 0, len(s.Frames))
	ys = make([]float64, 0, len(s.Frames))
	for _, f := range s.Frames {
		if idx >= 0 && idx < len(f.Landmarks) {
			xs = append(xs, f.Landmarks[idx].X)
			ys = append(ys, f.Landmarks[idx].Y)
			continue
		}
		if len(xs) > 0 {
			xs = append(xs, xs[len(xs)-1])
			ys = append(ys, ys[len(ys)-1])
		} else {
			xs = append(xs, 0.5)
			ys = append(ys, 0.5)
		}
	}
	return xs, ys
}

// WristHeightSeries returns the per-frame mean wrist height signal used
// by phase detection (smaller = higher hands in image coordinates).
// Frames missing either wrist reuse the previous frame's value.
func (s Sequence) WristHeightSeries() []float64 {
	out := make([]float64, 0, len(s.Frames))
	for _, f := range s.Frames {
		if len(f.Landmarks) > LandmarkRightWrist {
			ly := f.Landmarks[LandmarkLeftWrist].Y
			ry := f.Landmarks[LandmarkRightWrist].Y
			out = append(out, (ly+ry)/2)
			continue
		}
		if len(out) > 0 {
			out = append(out, out[len(out)-1])
		} else {
			out = append(out, 0.5)
		}
	}
	return out
}

// WristLateralSeries returns the per-frame mean wrist X signal, with
// the same gap handling as WristHeightSeries.
func (s Sequence) WristLateralSeries() []float64 {
	out := make([]float64, 0, len(s.Frames))
	for _, f := range s.Frames {
		if len(f.Landmarks) > LandmarkRightWrist {
			lx := f.Landmarks[LandmarkLeftWrist].X
			rx := f.Landmarks[LandmarkRightWrist].X
			out = append(out, (lx+rx)/2)
			continue
		}
		if len(out) > 0 {
			out = append(out, out[len(out)-1])
		} else {
			out = append(out, 0.5)
		}
	}
	return out
}

// TimestampSec returns frame i's timestamp in seconds, synthesizing it
// from the frame rate when the record carries no timestamp.
func (s Sequence) TimestampSec(i int) float64 {
	f := s.At(i)
	if f.TimestampMS > 0 {
		return f.TimestampMS / 1000
	}
	return float64(f.FrameIndex) / s.FPS
}
