// Package kinematics implements the skeletal forward and inverse
// kinematics engine over the fixed 24-joint body tree.
//
// Every operation is a pure function of its inputs. Degenerate
// geometry (zero-length bones, unreachable targets) is handled with
// epsilon guards that return identity or no-op results, never NaN.
package kinematics

import (
	"math"

	"github.com/fairway-data/swing.report/internal/geom"
)

// ForwardKinematics computes global joint positions from local joint
// rotations and per-joint rest offsets. Each joint's global rotation is
// its parent's global rotation composed with its local rotation; its
// position is the parent position plus the parent-rotated local offset.
// The root uses its own rotation and rootPosition directly.
func ForwardKinematics(rotations [NumJoints]geom.Mat3, rootPosition geom.Vec3, offsets [NumJoints]geom.Vec3) [NumJoints]geom.Vec3 {
	var globalRots [NumJoints]geom.Mat3
	var globalPos [NumJoints]geom.Vec3

	globalRots[0] = rotations[0]
	globalPos[0] = rootPosition

	for i := 1; i < NumJoints; i++ {
		parent := Parents[i]
		globalRots[i] = globalRots[parent].Mul(rotations[i])
		globalPos[i] = globalPos[parent].Add(globalRots[parent].MulVec(offsets[i]))
	}
	return globalPos
}

// GlobalRotations composes local rotations top-down into global
// rotations.
func GlobalRotations(rotations [NumJoints]geom.Mat3) [NumJoints]geom.Mat3 {
	var global [NumJoints]geom.Mat3
	global[0] = rotations[0]
	for i := 1; i < NumJoints; i++ {
		global[i] = global[Parents[i]].Mul(rotations[i])
	}
	return global
}

// EstimateOffsets derives per-joint rest offsets from an observed pose
// without rotation data: the canonical mean-offset direction of each
// bone is scaled so its length matches the observed bone length,
// preserving the subject's proportions.
func EstimateOffsets(observed [NumJoints]geom.Vec3) [NumJoints]geom.Vec3 {
	var offsets [NumJoints]geom.Vec3
	for i := 1; i < NumJoints; i++ {
		parent := Parents[i]
		boneLen := observed[i].Sub(observed[parent]).Norm()
		mean := MeanOffsets[i]
		meanLen := mean.Norm()
		if meanLen > geom.Epsilon {
			offsets[i] = mean.Scale(boneLen / meanLen)
		} else {
			offsets[i] = mean
		}
	}
	return offsets
}

// OffsetsFromPose is the exact inverse of ForwardKinematics for a known
// rotation set: it reconstructs global rotations top-down and recovers
// each local offset as inverse(parentGlobalRotation) × (joint − parent).
// Prefer this over EstimateOffsets when rotations are available.
func OffsetsFromPose(observed [NumJoints]geom.Vec3, rotations [NumJoints]geom.Mat3) [NumJoints]geom.Vec3 {
	global := GlobalRotations(rotations)
	var offsets [NumJoints]geom.Vec3
	for i := 1; i < NumJoints; i++ {
		parent := Parents[i]
		bone := observed[i].Sub(observed[parent])
		offsets[i] = global[parent].Transpose().MulVec(bone)
	}
	return offsets
}

// SolveTwoBoneIK repositions the middle joint of a two-bone chain
// (root → joint → effector) so the effector reaches target, preserving
// both bone lengths. The solver reuses the chain's original bend-plane
// normal; a straight chain gets an arbitrary perpendicular. Targets
// beyond full extension produce a fully extended chain toward the
// target; targets inside the fold-back radius |L1−L2| return the chain
// unchanged.
func SolveTwoBoneIK(root, effector, target, joint geom.Vec3) (newJoint, newEffector geom.Vec3) {
	l1 := joint.Sub(root).Norm()
	l2 := effector.Sub(joint).Norm()

	targetVec := target.Sub(root)
	targetDist := targetVec.Norm()

	if targetDist > l1+l2-geom.Epsilon {
		// Too far: extend fully toward the target.
		dir := targetVec.Scale(1 / (targetDist + geom.Epsilon))
		newJoint = root.Add(dir.Scale(l1))
		newEffector = newJoint.Add(dir.Scale(l2))
		return newJoint, newEffector
	}
	if targetDist < math.Abs(l1-l2)+geom.Epsilon {
		// Fold-back case: unreachable, keep the current chain.
		return joint, effector
	}

	// Law of cosines for the angle at the root between the target line
	// and the upper bone.
	cosAlpha := (l1*l1 + targetDist*targetDist - l2*l2) / (2 * l1 * targetDist)
	cosAlpha = math.Max(-1, math.Min(1, cosAlpha))
	alpha := math.Acos(cosAlpha)

	// Bend plane: normal of the original chain triangle.
	upper := joint.Sub(root)
	lower := effector.Sub(joint)
	normal := upper.Cross(lower)
	if normal.Norm() < geom.Epsilon {
		// Straight chain: pick any axis perpendicular to the target line.
		up := geom.Vec3{Y: 1}
		if math.Abs(targetVec.Scale(1/targetDist).Dot(up)) > 0.9 {
			up = geom.Vec3{X: 1}
		}
		normal = targetVec.Cross(up)
	}
	normal = normal.Normalize()

	base := targetVec.Scale(l1 / (targetDist + geom.Epsilon))
	newJoint = root.Add(geom.RotateAbout(base, normal, alpha))
	newEffector = target
	return newJoint, newEffector
}
