// Package geom provides the small fixed-size vector and rotation types
// shared by the kinematics, metrics and plane packages.
//
// All operations are allocation-free and total: degenerate inputs
// (zero-length vectors, non-orthonormal matrices) fall back to identity
// or zero results instead of producing NaN.
package geom

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Epsilon is the shared guard threshold for near-zero lengths and
// near-singular rotations.
const Epsilon = 1e-9

// Vec3 is a 3D vector. The coordinate convention follows the pose
// provider: X lateral, Y vertical (positive down in image space), Z depth.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + w.
func (v Vec3) Add(w Vec3) Vec3 { return Vec3{v.X + w.X, v.Y + w.Y, v.Z + w.Z} }

// Sub returns v - w.
func (v Vec3) Sub(w Vec3) Vec3 { return Vec3{v.X - w.X, v.Y - w.Y, v.Z - w.Z} }

// Scale returns v scaled by s.
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

// Dot returns the dot product of v and w.
func (v Vec3) Dot(w Vec3) float64 { return v.X*w.X + v.Y*w.Y + v.Z*w.Z }

// Cross returns the cross product v × w.
func (v Vec3) Cross(w Vec3) Vec3 {
	return Vec3{
		v.Y*w.Z - v.Z*w.Y,
		v.Z*w.X - v.X*w.Z,
		v.X*w.Y - v.Y*w.X,
	}
}

// Norm returns the Euclidean length of v.
func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Normalize returns the unit vector in the direction of v.
// The zero vector is returned unchanged.
func (v Vec3) Normalize() Vec3 {
	n := v.Norm()
	if n < Epsilon {
		return v
	}
	return v.Scale(1 / n)
}

// Dist returns the distance between v and w.
func (v Vec3) Dist(w Vec3) float64 { return v.Sub(w).Norm() }

// Mid returns the midpoint of v and w.
func Mid(v, w Vec3) Vec3 {
	return Vec3{(v.X + w.X) / 2, (v.Y + w.Y) / 2, (v.Z + w.Z) / 2}
}

// AngleAt returns the angle in degrees at vertex b formed by segments
// b→a and b→c. Zero-length segments yield 0 rather than NaN.
func AngleAt(a, b, c Vec3) float64 {
	v1 := a.Sub(b)
	v2 := c.Sub(b)
	m1 := v1.Norm()
	m2 := v2.Norm()
	if m1 < Epsilon || m2 < Epsilon {
		return 0
	}
	cos := v1.Dot(v2) / (m1 * m2)
	cos = math.Max(-1, math.Min(1, cos))
	return math.Acos(cos) * 180 / math.Pi
}

// Mat3 is a 3×3 rotation matrix in row-major order.
type Mat3 [9]float64

// Identity returns the identity rotation.
func Identity() Mat3 {
	return Mat3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Mul returns the matrix product m × n.
func (m Mat3) Mul(n Mat3) Mat3 {
	var r Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			r[3*i+j] = m[3*i]*n[j] + m[3*i+1]*n[3+j] + m[3*i+2]*n[6+j]
		}
	}
	return r
}

// MulVec returns m × v.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[1]*v.Y + m[2]*v.Z,
		m[3]*v.X + m[4]*v.Y + m[5]*v.Z,
		m[6]*v.X + m[7]*v.Y + m[8]*v.Z,
	}
}

// Transpose returns the transpose of m. For a proper rotation this is
// also the inverse.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Det returns the determinant of m.
func (m Mat3) Det() float64 {
	return m[0]*(m[4]*m[8]-m[5]*m[7]) -
		m[1]*(m[3]*m[8]-m[5]*m[6]) +
		m[2]*(m[3]*m[7]-m[4]*m[6])
}

// Quat converts the rotation matrix to a unit quaternion using
// Shepperd's method (largest diagonal pivot for numerical stability).
func (m Mat3) Quat() quat.Number {
	trace := m[0] + m[4] + m[8]
	var q quat.Number
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q.Real = s / 4
		q.Imag = (m[7] - m[5]) / s
		q.Jmag = (m[2] - m[6]) / s
		q.Kmag = (m[3] - m[1]) / s
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1+m[0]-m[4]-m[8]) * 2
		q.Real = (m[7] - m[5]) / s
		q.Imag = s / 4
		q.Jmag = (m[1] + m[3]) / s
		q.Kmag = (m[2] + m[6]) / s
	case m[4] > m[8]:
		s := math.Sqrt(1+m[4]-m[0]-m[8]) * 2
		q.Real = (m[2] - m[6]) / s
		q.Imag = (m[1] + m[3]) / s
		q.Jmag = s / 4
		q.Kmag = (m[5] + m[7]) / s
	default:
		s := math.Sqrt(1+m[8]-m[0]-m[4]) * 2
		q.Real = (m[3] - m[1]) / s
		q.Imag = (m[2] + m[6]) / s
		q.Jmag = (m[5] + m[7]) / s
		q.Kmag = s / 4
	}
	return q
}

// MatFromQuat converts a quaternion to a rotation matrix. The quaternion
// is normalized first; a near-zero quaternion yields the identity.
func MatFromQuat(q quat.Number) Mat3 {
	n := quat.Abs(q)
	if n < Epsilon {
		return Identity()
	}
	q = quat.Scale(1/n, q)
	w, x, y, z := q.Real, q.Imag, q.Jmag, q.Kmag
	return Mat3{
		1 - 2*(y*y+z*z), 2 * (x*y - w*z), 2 * (x*z + w*y),
		2 * (x*y + w*z), 1 - 2*(x*x+z*z), 2 * (y*z - w*x),
		2 * (x*z - w*y), 2 * (y*z + w*x), 1 - 2*(x*x+y*y),
	}
}

// AlignRotation returns the rotation matrix that rotates unit direction
// from onto unit direction to. Parallel inputs yield the identity;
// anti-parallel inputs yield a 180° rotation about an arbitrary
// perpendicular axis.
func AlignRotation(from, to Vec3) Mat3 {
	a := from.Normalize()
	b := to.Normalize()
	if a.Norm() < Epsilon || b.Norm() < Epsilon {
		return Identity()
	}
	v := a.Cross(b)
	c := a.Dot(b)
	s := v.Norm()

	if s < Epsilon {
		if c > 0 {
			return Identity()
		}
		// Anti-parallel: rotate 180° around any axis orthogonal to a.
		orth := a.Cross(Vec3{X: 1})
		if math.Abs(a.X) > 0.9 {
			orth = a.Cross(Vec3{Y: 1})
		}
		orth = orth.Normalize()
		x, y, z := orth.X, orth.Y, orth.Z
		return Mat3{
			2*x*x - 1, 2 * x * y, 2 * x * z,
			2 * x * y, 2*y*y - 1, 2 * y * z,
			2 * x * z, 2 * y * z, 2*z*z - 1,
		}
	}

	// Rodrigues: R = I + K + K²(1-c)/s².
	k := Mat3{
		0, -v.Z, v.Y,
		v.Z, 0, -v.X,
		-v.Y, v.X, 0,
	}
	kk := k.Mul(k)
	f := (1 - c) / (s * s)
	var r Mat3
	id := Identity()
	for i := range r {
		r[i] = id[i] + k[i] + kk[i]*f
	}
	return r
}

// RotateAbout rotates v by angle radians around the unit axis k using
// Rodrigues' rotation formula.
func RotateAbout(v, k Vec3, angle float64) Vec3 {
	k = k.Normalize()
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return v.Scale(cos).
		Add(k.Cross(v).Scale(sin)).
		Add(k.Scale(k.Dot(v) * (1 - cos)))
}

// NormalizeAngleDiff returns the shortest signed angular difference
// to - from, in degrees within [-180, 180].
func NormalizeAngleDiff(from, to float64) float64 {
	diff := to - from
	for diff > 180 {
		diff -= 360
	}
	for diff < -180 {
		diff += 360
	}
	return diff
}
