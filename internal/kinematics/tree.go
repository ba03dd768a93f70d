package kinematics

import (
	"github.com/fairway-data/swing.report/internal/geom"
	"github.com/fairway-data/swing.report/internal/pose"
)

// NumJoints is the body skeleton size, re-exported for callers that
// only import this package.
const NumJoints = pose.NumJoints

// Parents maps each joint to its parent index; -1 marks the root
// (pelvis). Shared process-wide and never mutated.
var Parents = [NumJoints]int{
	-1, // pelvis
	0,  // left hip
	0,  // right hip
	0,  // spine1
	1,  // left knee
	2,  // right knee
	3,  // spine2
	4,  // left ankle
	5,  // right ankle
	6,  // spine3
	7,  // left foot
	8,  // right foot
	9,  // neck
	9,  // left collar
	9,  // right collar
	12, // head
	13, // left shoulder
	14, // right shoulder
	16, // left elbow
	17, // right elbow
	18, // left wrist
	19, // right wrist
	20, // left hand
	21, // right hand
}

// MeanOffsets is the rest-pose offset of each joint relative to its
// parent, in meters, taken from the mean body model.
var MeanOffsets = [NumJoints]geom.Vec3{
	{X: 0.00000000, Y: 0.00000000, Z: 0.00000000},    // pelvis (root)
	{X: 0.05858135, Y: -0.07724548, Z: -0.02579638},  // left hip
	{X: -0.06030973, Y: -0.07477074, Z: -0.02694701}, // right hip
	{X: 0.00443945, Y: 0.12440352, Z: -0.03838522},   // spine1
	{X: 0.04325663, Y: -0.38368791, Z: -0.00846453},  // left knee
	{X: -0.04266040, Y: -0.38617337, Z: -0.01296848}, // right knee
	{X: 0.00448844, Y: 0.13795640, Z: -0.02682033},   // spine2
	{X: 0.01905555, Y: -0.42004550, Z: -0.03456167},  // left ankle
	{X: -0.02012772, Y: -0.42616620, Z: -0.03744791}, // right ankle
	{X: 0.00226458, Y: 0.05603239, Z: 0.00285505},    // spine3
	{X: 0.04105436, Y: -0.06604639, Z: 0.14035748},   // left foot
	{X: -0.04011405, Y: -0.06732602, Z: 0.13564927},  // right foot
	{X: -0.00292163, Y: 0.21242046, Z: 0.03370688},   // neck
	{X: 0.07179865, Y: 0.11399969, Z: -0.01889817},   // left collar
	{X: -0.07114712, Y: 0.11404169, Z: -0.01819855},  // right collar
	{X: 0.00035071, Y: 0.07062404, Z: 0.02261177},    // head
	{X: 0.11954173, Y: -0.02285875, Z: -0.00653049},  // left shoulder
	{X: -0.11605282, Y: -0.02363410, Z: -0.00628341}, // right shoulder
	{X: 0.26648735, Y: -0.01674588, Z: -0.03275451},  // left elbow
	{X: -0.27105814, Y: -0.01713843, Z: -0.03052622}, // right elbow
	{X: 0.25072098, Y: -0.01396867, Z: -0.01506389},  // left wrist
	{X: -0.25310679, Y: -0.01336094, Z: -0.01556372}, // right wrist
	{X: 0.08444394, Y: -0.01047750, Z: -0.01291665},  // left hand
	{X: -0.08830745, Y: -0.01666065, Z: -0.01029846}, // right hand
}
