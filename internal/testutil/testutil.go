// Package testutil provides shared test helpers and synthetic swing
// fixtures used across package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/fairway-data/swing.report/internal/pose"
)

// AssertNoError fails the test if err is not nil.
func AssertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// AssertError fails the test if err is nil.
func AssertError(t *testing.T, err error) {
	t.Helper()
	if err == nil {
		t.Fatal("expected error, got nil")
	}
}

// Key points of the synthetic hand-height curve, as fractions of the
// sequence length and image-space heights (larger = hands lower).
const (
	syntheticAddressHold = 0.20
	syntheticTopAt       = 0.45
	syntheticImpactAt    = 0.62

	syntheticAddressHeight = 0.80
	syntheticTopHeight     = 0.30
	syntheticImpactHeight  = 0.85
	syntheticFinishHeight  = 0.35
)

// HandHeight returns the synthetic wrist height for progress p in
// [0, 1]: low at address, high at the top, low again at impact and
// slightly high at the finish, with cosine easing between key points.
func HandHeight(p float64) float64 {
	switch {
	case p <= syntheticAddressHold:
		return syntheticAddressHeight
	case p <= syntheticTopAt:
		return ease(syntheticAddressHeight, syntheticTopHeight,
			(p-syntheticAddressHold)/(syntheticTopAt-syntheticAddressHold))
	case p <= syntheticImpactAt:
		return ease(syntheticTopHeight, syntheticImpactHeight,
			(p-syntheticTopAt)/(syntheticImpactAt-syntheticTopAt))
	default:
		return ease(syntheticImpactHeight, syntheticFinishHeight,
			(p-syntheticImpactAt)/(1-syntheticImpactAt))
	}
}

// ease interpolates from a to b with cosine easing so the synthetic
// signal has zero velocity at each key point, like a real swing trace.
func ease(a, b, t float64) float64 {
	if t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	w := (1 - math.Cos(t*math.Pi)) / 2
	return a + (b-a)*w
}

// SyntheticSwing builds an n-frame right-handed swing sequence in the
// 33-landmark schema with every landmark fully visible. The wrist
// height follows HandHeight; torso and leg landmarks sit at plausible
// static positions so the 2D metric formulas all produce values.
func SyntheticSwing(n int, fps float64) pose.Sequence {
	frames := make([]pose.FrameRecord, n)
	for t := 0; t < n; t++ {
		p := float64(t) / float64(n-1)
		frames[t] = pose.FrameRecord{
			FrameIndex:  t,
			TimestampMS: float64(t) / fps * 1000,
			Landmarks:   syntheticLandmarks(p),
		}
	}
	return pose.NewSequence(frames, fps)
}

func syntheticLandmarks(p float64) []pose.Landmark {
	lms := make([]pose.Landmark, pose.NumLandmarks)
	at := func(idx int, x, y float64) {
		lms[idx] = pose.Landmark{X: x, Y: y, Visibility: 1}
	}

	h := HandHeight(p)
	// Wrists drift right through the backswing so handedness detection
	// sees a right-handed trace.
	wristX := 0.50 + 0.05*math.Sin(math.Min(p/syntheticTopAt, 1)*math.Pi/2)

	at(pose.LandmarkNose, 0.50+0.005*math.Sin(p*2*math.Pi), 0.20)
	at(pose.LandmarkLeftShoulder, 0.53, 0.35)
	at(pose.LandmarkRightShoulder, 0.47, 0.35)
	at(pose.LandmarkLeftElbow, 0.55, 0.48)
	at(pose.LandmarkRightElbow, 0.45, 0.48)
	at(pose.LandmarkLeftWrist, wristX+0.01, h)
	at(pose.LandmarkRightWrist, wristX-0.01, h)
	at(pose.LandmarkLeftHip, 0.52, 0.55)
	at(pose.LandmarkRightHip, 0.48, 0.55)
	at(pose.LandmarkLeftKnee, 0.52, 0.75)
	at(pose.LandmarkRightKnee, 0.48, 0.75)
	at(pose.LandmarkLeftAnkle, 0.52, 0.95)
	at(pose.LandmarkRightAnkle, 0.48, 0.95)
	return lms
}
