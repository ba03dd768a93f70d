package kinematics

import (
	"math"

	qt "gonum.org/v1/gonum/num/quat"

	"github.com/fairway-data/swing.report/internal/geom"
	"github.com/fairway-data/swing.report/internal/signal"
)

// DefaultSmoothingSigma is the Gaussian kernel width (in frames) used
// for rotation-sequence smoothing when the caller does not override it.
const DefaultSmoothingSigma = 2.0

// degenerateDetThreshold marks rotations too collapsed to smooth; such
// frames pass through unchanged.
const degenerateDetThreshold = 1e-6

// SmoothRotations applies temporal smoothing to a per-frame rotation
// sequence, independently per joint: each frame's rotation is converted
// to a unit quaternion, sign-flipped whenever its dot product with the
// previous frame is negative (removing the double-cover discontinuity),
// Gaussian-smoothed per component with edge replication, renormalized
// and converted back. Frames with a degenerate rotation keep their
// original matrix.
func SmoothRotations(frames [][NumJoints]geom.Mat3, sigma float64) [][NumJoints]geom.Mat3 {
	n := len(frames)
	if n == 0 {
		return nil
	}
	if sigma <= 0 {
		sigma = DefaultSmoothingSigma
	}

	out := make([][NumJoints]geom.Mat3, n)
	comps := [4][]float64{}
	for c := range comps {
		comps[c] = make([]float64, n)
	}
	degenerate := make([]bool, n)

	for j := 0; j < NumJoints; j++ {
		var prev qt.Number
		for f := 0; f < n; f++ {
			q := frames[f][j].Quat()
			degenerate[f] = math.Abs(frames[f][j].Det()) < degenerateDetThreshold
			if f > 0 && q.Real*prev.Real+q.Imag*prev.Imag+q.Jmag*prev.Jmag+q.Kmag*prev.Kmag < 0 {
				q = qt.Scale(-1, q)
			}
			prev = q
			comps[0][f] = q.Real
			comps[1][f] = q.Imag
			comps[2][f] = q.Jmag
			comps[3][f] = q.Kmag
		}

		var smoothed [4][]float64
		for c := range comps {
			smoothed[c] = signal.GaussianSmooth(comps[c], sigma)
		}

		for f := 0; f < n; f++ {
			if degenerate[f] {
				out[f][j] = frames[f][j]
				continue
			}
			q := qt.Number{
				Real: smoothed[0][f],
				Imag: smoothed[1][f],
				Jmag: smoothed[2][f],
				Kmag: smoothed[3][f],
			}
			out[f][j] = geom.MatFromQuat(q)
		}
	}
	return out
}
