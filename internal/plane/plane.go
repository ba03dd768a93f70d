// Package plane fits a best-fit swing plane to the wrist trajectories
// of a captured sequence and nudges the arm chains toward it.
//
// The refiner is an optional pre-pass before metric extraction. It
// needs full 3D joints and per-joint rotations; sequences without them
// skip it. The correction is deliberately partial: wrists move a
// lambda fraction of the way to their plane projection, the elbows
// follow by analytic two-bone IK, and the shoulder/elbow rotations are
// re-derived so a forward-kinematics pass reproduces the corrected
// pose exactly.
package plane

import (
	"gonum.org/v1/gonum/mat"

	"github.com/fairway-data/swing.report/internal/geom"
	"github.com/fairway-data/swing.report/internal/kinematics"
	"github.com/fairway-data/swing.report/internal/pose"
)

// DefaultStrength is the default correction strength: the fraction of
// the wrist→plane distance removed per frame.
const DefaultStrength = 0.4

// minWristSamples is the minimum number of collected wrist points for
// a trustworthy plane fit; below it Refine is a no-op.
const minWristSamples = 10

// FitPlane fits a plane through points by principal component
// analysis: the normal is the singular vector of the centered point
// cloud with the smallest singular value. ok is false when there are
// fewer than three points or the decomposition fails.
func FitPlane(points []geom.Vec3) (normal, centroid geom.Vec3, ok bool) {
	if len(points) < 3 {
		return geom.Vec3{}, geom.Vec3{}, false
	}

	for _, p := range points {
		centroid = centroid.Add(p)
	}
	centroid = centroid.Scale(1 / float64(len(points)))

	centered := mat.NewDense(len(points), 3, nil)
	for i, p := range points {
		d := p.Sub(centroid)
		centered.SetRow(i, []float64{d.X, d.Y, d.Z})
	}

	var svd mat.SVD
	if !svd.Factorize(centered, mat.SVDThinV) {
		return geom.Vec3{}, geom.Vec3{}, false
	}
	var v mat.Dense
	svd.VTo(&v)

	normal = geom.Vec3{X: v.At(0, 2), Y: v.At(1, 2), Z: v.At(2, 2)}
	if normal.Norm() < geom.Epsilon {
		return geom.Vec3{}, geom.Vec3{}, false
	}
	return normal.Normalize(), centroid, true
}

// ProjectPointToPlane returns the orthogonal projection of point onto
// the plane through centroid with unit normal.
func ProjectPointToPlane(point, normal, centroid geom.Vec3) geom.Vec3 {
	dist := point.Sub(centroid).Dot(normal)
	return point.Sub(normal.Scale(dist))
}

// Refine pulls both wrists of every frame toward the sequence-wide
// best-fit wrist plane. strength in [0, 1] blends between no
// correction and full projection. The inputs are returned unchanged
// when there are not enough wrist samples or the fit fails; otherwise
// corrected copies are returned and the inputs are left intact.
func Refine(joints [][kinematics.NumJoints]geom.Vec3, rotations [][kinematics.NumJoints]geom.Mat3, strength float64) ([][kinematics.NumJoints]geom.Vec3, [][kinematics.NumJoints]geom.Mat3) {
	n := len(joints)
	if n == 0 || len(rotations) != n {
		return joints, rotations
	}

	wrists := make([]geom.Vec3, 0, 2*n)
	for i := range joints {
		wrists = append(wrists, joints[i][pose.JointLeftWrist], joints[i][pose.JointRightWrist])
	}
	if len(wrists) < minWristSamples {
		return joints, rotations
	}

	normal, centroid, ok := FitPlane(wrists)
	if !ok {
		return joints, rotations
	}

	outJoints := make([][kinematics.NumJoints]geom.Vec3, n)
	outRotations := make([][kinematics.NumJoints]geom.Mat3, n)

	for i := 0; i < n; i++ {
		frameJoints := joints[i]
		locals := rotations[i]
		globals := kinematics.GlobalRotations(locals)

		refineArm(&frameJoints, globals, &locals,
			pose.JointLeftShoulder, pose.JointLeftElbow, pose.JointLeftWrist,
			normal, centroid, strength)
		refineArm(&frameJoints, globals, &locals,
			pose.JointRightShoulder, pose.JointRightElbow, pose.JointRightWrist,
			normal, centroid, strength)

		// Exact offsets from the original pose, so the FK pass
		// reproduces the corrected arms while preserving every bone
		// length.
		offsets := kinematics.OffsetsFromPose(joints[i], rotations[i])
		outRotations[i] = locals
		outJoints[i] = kinematics.ForwardKinematics(locals, joints[i][pose.JointPelvis], offsets)
	}

	return outJoints, outRotations
}

// refineArm moves one wrist toward the plane and rewrites the
// shoulder and elbow local rotations so the chain reaches the
// IK-corrected positions. globals holds the frame's original global
// rotations; locals is updated in place.
func refineArm(joints *[kinematics.NumJoints]geom.Vec3, globals [kinematics.NumJoints]geom.Mat3, locals *[kinematics.NumJoints]geom.Mat3, shoulderIdx, elbowIdx, wristIdx int, normal, centroid geom.Vec3, strength float64) {
	shoulder := joints[shoulderIdx]
	elbow := joints[elbowIdx]
	wrist := joints[wristIdx]

	projected := ProjectPointToPlane(wrist, normal, centroid)
	target := wrist.Add(projected.Sub(wrist).Scale(strength))

	newElbow, newWrist := kinematics.SolveTwoBoneIK(shoulder, wrist, target, elbow)

	// Rotate the shoulder so the upper arm points at the new elbow;
	// the elbow frame rides along rigidly, then rotates the forearm
	// onto the new wrist.
	rotUpper := geom.AlignRotation(elbow.Sub(shoulder), newElbow.Sub(shoulder))
	shoulderGlobal := rotUpper.Mul(globals[shoulderIdx])

	elbowGlobalCarried := rotUpper.Mul(globals[elbowIdx])
	forearmCarried := rotUpper.MulVec(wrist.Sub(elbow))
	rotForearm := geom.AlignRotation(forearmCarried, newWrist.Sub(newElbow))
	elbowGlobal := rotForearm.Mul(elbowGlobalCarried)

	parentIdx := kinematics.Parents[shoulderIdx]
	locals[shoulderIdx] = globals[parentIdx].Transpose().Mul(shoulderGlobal)
	locals[elbowIdx] = shoulderGlobal.Transpose().Mul(elbowGlobal)
}
