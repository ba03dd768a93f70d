package geom

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/num/quat"
)

func rotationX(angle float64) Mat3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

func rotationY(angle float64) Mat3 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

func matApproxEqual(t *testing.T, got, want Mat3, tol float64) {
	t.Helper()
	for i := range got {
		if math.Abs(got[i]-want[i]) > tol {
			t.Fatalf("matrix mismatch at %d: got %v want %v", i, got, want)
		}
	}
}

func TestMat3MulVec(t *testing.T) {
	r := rotationY(math.Pi / 2)
	got := r.MulVec(Vec3{X: 1})
	want := Vec3{Z: -1}
	if got.Dist(want) > 1e-12 {
		t.Errorf("MulVec = %+v, want %+v", got, want)
	}
}

func TestQuatRoundTrip(t *testing.T) {
	cases := []Mat3{
		Identity(),
		rotationX(0.3),
		rotationY(1.2),
		rotationX(2.9).Mul(rotationY(-0.7)),
		rotationY(math.Pi - 0.001), // near the trace<=0 branch
	}
	for i, m := range cases {
		back := MatFromQuat(m.Quat())
		matApproxEqual(t, back, m, 1e-9)
		if i > 0 && math.Abs(quat.Abs(m.Quat())-1) > 1e-9 {
			t.Errorf("case %d: quaternion not unit length", i)
		}
	}
}

func TestMatFromQuatDegenerate(t *testing.T) {
	got := MatFromQuat(quat.Number{})
	matApproxEqual(t, got, Identity(), 0)
}

func TestAngleAt(t *testing.T) {
	tests := []struct {
		name    string
		a, b, c Vec3
		want    float64
	}{
		{"right angle", Vec3{X: 1}, Vec3{}, Vec3{Y: 1}, 90},
		{"straight", Vec3{X: -1}, Vec3{}, Vec3{X: 1}, 180},
		{"collapsed", Vec3{}, Vec3{}, Vec3{X: 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AngleAt(tt.a, tt.b, tt.c); math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("AngleAt = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAlignRotation(t *testing.T) {
	from := Vec3{X: 1}
	to := Vec3{X: 0.3, Y: 0.8, Z: -0.2}.Normalize()
	r := AlignRotation(from, to)
	got := r.MulVec(from)
	if got.Dist(to) > 1e-9 {
		t.Errorf("aligned vector = %+v, want %+v", got, to)
	}
	if math.Abs(r.Det()-1) > 1e-9 {
		t.Errorf("determinant = %v, want 1", r.Det())
	}
}

func TestAlignRotationAntiParallel(t *testing.T) {
	from := Vec3{X: 0, Y: 1, Z: 0}
	to := Vec3{X: 0, Y: -1, Z: 0}
	r := AlignRotation(from, to)
	got := r.MulVec(from)
	if got.Dist(to) > 1e-9 {
		t.Errorf("aligned vector = %+v, want %+v", got, to)
	}
}

func TestRotateAbout(t *testing.T) {
	got := RotateAbout(Vec3{X: 1}, Vec3{Z: 1}, math.Pi/2)
	want := Vec3{Y: 1}
	if got.Dist(want) > 1e-12 {
		t.Errorf("RotateAbout = %+v, want %+v", got, want)
	}
}

func TestNormalizeAngleDiff(t *testing.T) {
	tests := []struct {
		from, to, want float64
	}{
		{10, 30, 20},
		{170, -170, 20},
		{-170, 170, -20},
		{0, 180, 180},
	}
	for _, tt := range tests {
		if got := NormalizeAngleDiff(tt.from, tt.to); math.Abs(got-tt.want) > 1e-12 {
			t.Errorf("NormalizeAngleDiff(%v, %v) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}
