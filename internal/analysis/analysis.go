// Package analysis orchestrates the full swing pipeline: optional
// rotation smoothing and plane refinement, phase detection, metric
// extraction, and scoring.
//
// An Analyzer holds no per-invocation state; one instance may serve
// concurrent sequences. The input sequence is never mutated — the 3D
// pre-passes operate on copied frames.
package analysis

import (
	"fmt"

	"github.com/fairway-data/swing.report/internal/geom"
	"github.com/fairway-data/swing.report/internal/kinematics"
	"github.com/fairway-data/swing.report/internal/metrics"
	"github.com/fairway-data/swing.report/internal/phases"
	"github.com/fairway-data/swing.report/internal/plane"
	"github.com/fairway-data/swing.report/internal/pose"
	"github.com/fairway-data/swing.report/internal/scoring"
)

// Options tune one analysis run. Zero values auto-detect handedness
// and club class, use the face-on view, and skip the optional 3D
// pre-passes.
type Options struct {
	// Handedness overrides auto-detection when set.
	Handedness metrics.Handedness
	// Club overrides the backswing-duration estimate when set.
	Club metrics.ClubClass
	// View selects the reference profile weights; defaults to the
	// face-on view.
	View scoring.View

	// SmoothRotations applies quaternion smoothing to per-frame
	// rotations before detection. Ignored when the sequence carries no
	// rotations.
	SmoothRotations bool
	// SmoothingSigma overrides the default Gaussian sigma when > 0.
	SmoothingSigma float64

	// RefinePlane pulls the arm chains toward the best-fit swing plane
	// before metric extraction. Needs 3D joints and rotations.
	RefinePlane bool
	// PlaneStrength overrides the default correction strength when > 0.
	PlaneStrength float64

	// Profile overrides the club/view profile lookup when non-nil.
	Profile *scoring.Profile
}

// Report is the complete result of one analysis run.
type Report struct {
	Phases     phases.Phases            `json:"phases"`
	Metrics    map[metrics.Key]*float64 `json:"metrics"`
	Scores     scoring.Scores           `json:"scores"`
	Handedness metrics.Handedness       `json:"handedness"`
	Club       metrics.ClubClass        `json:"club"`
	Profile    string                   `json:"profile"`
	SkillLevel string                   `json:"skill_level"`
	FrameCount int                      `json:"frame_count"`
	FPS        float64                  `json:"fps"`
}

// Analyzer runs the swing pipeline.
type Analyzer struct{}

// New returns an Analyzer.
func New() *Analyzer { return &Analyzer{} }

// Analyze runs the pipeline over one captured sequence.
func (a *Analyzer) Analyze(seq pose.Sequence, opts Options) (*Report, error) {
	if seq.Len() == 0 {
		return nil, fmt.Errorf("analyze: sequence has no frames")
	}

	if opts.SmoothRotations && seq.HasRotations() {
		seq = smoothSequence(seq, opts.SmoothingSigma)
	}
	if opts.RefinePlane && seq.Has3D() && seq.HasRotations() {
		seq = refineSequence(seq, opts.PlaneStrength)
	}

	ph := phases.Detect(seq)

	hand := opts.Handedness
	if hand == "" {
		hand = metrics.DetectHandedness(seq, ph)
	}

	table := metrics.Compute(seq, ph, metrics.Options{Handedness: hand, Club: opts.Club})

	club := opts.Club
	if club == "" {
		backswingMS, _ := table.Get(metrics.KeyBackswingDurationMS)
		club = metrics.EstimateClub(backswingMS)
	}

	view := opts.View
	if view == "" {
		view = scoring.ViewFrontal
	}
	profile := scoring.ProfileFor(club, view)
	if opts.Profile != nil {
		profile = *opts.Profile
	}

	scores := scoring.Build(table, profile, view)

	return &Report{
		Phases:     ph,
		Metrics:    table.ToMap(),
		Scores:     scores,
		Handedness: hand,
		Club:       club,
		Profile:    profile.Name,
		SkillLevel: scoring.SkillLevel(scores.Aggregate),
		FrameCount: seq.Len(),
		FPS:        seq.FPS,
	}, nil
}

// smoothSequence returns a copy of seq with quaternion-smoothed
// rotations. Each contiguous run of rotation-bearing frames is
// smoothed on its own; frames without rotations pass through untouched
// and never enter a smoothing window.
func smoothSequence(seq pose.Sequence, sigma float64) pose.Sequence {
	if sigma <= 0 {
		sigma = kinematics.DefaultSmoothingSigma
	}

	frames := make([]pose.FrameRecord, seq.Len())
	copy(frames, seq.Frames)

	for start := 0; start < len(frames); {
		if frames[start].Rotations == nil {
			start++
			continue
		}
		end := start
		for end < len(frames) && frames[end].Rotations != nil {
			end++
		}

		run := make([][kinematics.NumJoints]geom.Mat3, end-start)
		for i := start; i < end; i++ {
			run[i-start] = *frames[i].Rotations
		}
		out := kinematics.SmoothRotations(run, sigma)
		for i := start; i < end; i++ {
			r := out[i-start]
			frames[i].Rotations = &r
		}
		start = end
	}
	return pose.Sequence{Frames: frames, FPS: seq.FPS}
}

// refineSequence returns a copy of seq with the arm chains pulled
// toward the best-fit swing plane. Only frames carrying both 3D
// joints and rotations participate.
func refineSequence(seq pose.Sequence, strength float64) pose.Sequence {
	if strength <= 0 {
		strength = plane.DefaultStrength
	}

	var (
		joints    [][kinematics.NumJoints]geom.Vec3
		rotations [][kinematics.NumJoints]geom.Mat3
		indices   []int
	)
	for i, f := range seq.Frames {
		if f.Joints3D == nil || f.Rotations == nil {
			continue
		}
		indices = append(indices, i)
		joints = append(joints, *f.Joints3D)
		rotations = append(rotations, *f.Rotations)
	}

	outJoints, outRotations := plane.Refine(joints, rotations, strength)

	frames := make([]pose.FrameRecord, seq.Len())
	copy(frames, seq.Frames)
	for k, i := range indices {
		j := outJoints[k]
		r := outRotations[k]
		frames[i].Joints3D = &j
		frames[i].Rotations = &r
	}
	return pose.Sequence{Frames: frames, FPS: seq.FPS}
}
