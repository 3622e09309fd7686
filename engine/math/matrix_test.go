package math

import (
	"testing"
)

const tolerance = 1e-5

func TestLookAtRHFromPositiveZ(t *testing.T) {
	view := NewMat4LookAtRH(NewVec3(0, 0, 5), NewVec3Zero(), NewVec3Up())

	want := NewMat4Identity()
	want.Data[14] = -5
	if !view.Compare(want, tolerance) {
		t.Fatalf("unexpected view matrix: got %v, want %v", view.Data, want.Data)
	}

	// the eye maps to the view-space origin and the target lies down -Z
	if got := NewVec3(0, 0, 5).Transform(view); !got.Compare(NewVec3Zero(), tolerance) {
		t.Errorf("eye in view space = %v, want origin", got)
	}
	if got := NewVec3Zero().Transform(view); !got.Compare(NewVec3(0, 0, -5), tolerance) {
		t.Errorf("target in view space = %v, want (0,0,-5)", got)
	}
}

func TestLookAtRHIsOrthonormal(t *testing.T) {
	view := NewMat4LookAtRH(NewVec3(3, 2, -4), NewVec3(1, 0, 1), NewVec3Up())
	rows := []Vec3{
		{view.Data[0], view.Data[4], view.Data[8]},
		{view.Data[1], view.Data[5], view.Data[9]},
		{view.Data[2], view.Data[6], view.Data[10]},
	}
	for i, a := range rows {
		if l := a.Length(); kabs(l-1) > tolerance {
			t.Errorf("axis %d has length %f", i, l)
		}
		for j := i + 1; j < len(rows); j++ {
			if d := a.Dot(rows[j]); kabs(d) > tolerance {
				t.Errorf("axes %d and %d are not orthogonal: dot=%f", i, j, d)
			}
		}
	}
}

func TestPerspectiveFovRH(t *testing.T) {
	fov := DegToRad(90)
	proj := NewMat4PerspectiveFovRH(fov, 2, 0.01, 100)

	cases := []struct {
		index int
		want  float32
	}{
		{0, 0.5},
		{5, 1},
		{10, 100 / (0.01 - 100)},
		{11, -1},
		{14, 0.01 * 100 / (0.01 - 100)},
		{15, 0},
	}
	for _, c := range cases {
		if kabs(proj.Data[c.index]-c.want) > tolerance {
			t.Errorf("Data[%d] = %f, want %f", c.index, proj.Data[c.index], c.want)
		}
	}

	// near plane maps to depth 0, far plane to depth 1
	depth := func(z float32) float32 {
		v := NewVec3(0, 0, z)
		clipZ := v.X*proj.Data[2] + v.Y*proj.Data[6] + v.Z*proj.Data[10] + proj.Data[14]
		clipW := v.X*proj.Data[3] + v.Y*proj.Data[7] + v.Z*proj.Data[11] + proj.Data[15]
		return clipZ / clipW
	}
	if d := depth(-0.01); kabs(d) > 1e-4 {
		t.Errorf("near depth = %f, want 0", d)
	}
	if d := depth(-100); kabs(d-1) > 1e-4 {
		t.Errorf("far depth = %f, want 1", d)
	}
}

func TestRotationNormalMatchesRotationY(t *testing.T) {
	for _, angle := range []float32{0, 0.3, K_HALF_PI, 2.5, -1.2} {
		a := NewMat4RotationNormal(NewVec3Up(), angle)
		b := NewMat4RotationY(angle)
		if !a.Compare(b, tolerance) {
			t.Errorf("angle %f: RotationNormal=%v RotationY=%v", angle, a.Data, b.Data)
		}
	}
}

func TestRotationNormalAboutZ(t *testing.T) {
	r := NewMat4RotationNormal(NewVec3(0, 0, 1), K_HALF_PI)
	got := NewVec3(1, 0, 0).TransformNormal(r)
	if !got.Compare(NewVec3(0, 1, 0), tolerance) {
		t.Fatalf("rotating +X by 90° about +Z gave %v, want +Y", got)
	}
}

func TestInverse(t *testing.T) {
	tr := TransformFromPositionYawScale(NewVec3(1, -2, 3), 0.7, NewVec3(2, 2, 0.5))
	local := tr.Local()

	inv, ok := local.Inverse()
	if !ok {
		t.Fatal("expected an invertible matrix")
	}
	if got := local.Mul(inv); !got.Compare(NewMat4Identity(), 1e-4) {
		t.Fatalf("M * inverse(M) = %v, want identity", got.Data)
	}

	if _, ok := (Mat4{}).Inverse(); ok {
		t.Error("zero matrix reported as invertible")
	}
}

func TestTransposed(t *testing.T) {
	m := NewMat4Translation(NewVec3(4, 5, 6))
	tr := m.Transposed()
	if tr.Data[3] != 4 || tr.Data[7] != 5 || tr.Data[11] != 6 {
		t.Fatalf("translation not moved to the last column: %v", tr.Data)
	}
	if back := tr.Transposed(); back != m {
		t.Fatal("double transpose is not the identity operation")
	}
}

func TestTransformLocalOrder(t *testing.T) {
	tr := TransformFromPositionYawScale(NewVec3(10, 0, 0), K_HALF_PI, NewVec3(2, 2, 2))
	// scale (1,0,0) -> (2,0,0), rotate 90° about Y -> (0,0,-2), translate -> (10,0,-2)
	got := NewVec3(1, 0, 0).Transform(tr.Local())
	if !got.Compare(NewVec3(10, 0, -2), tolerance) {
		t.Fatalf("got %v, want (10,0,-2)", got)
	}
}

func TestClamp(t *testing.T) {
	if Clamp(70, 1, 64) != 64 || Clamp(-3, 1, 64) != 1 || Clamp(float32(2.5), 1, 64) != 2.5 {
		t.Fatal("clamp returned an out-of-range value")
	}
}

func TestWrapAngle(t *testing.T) {
	if got := WrapAngle(-0.5); got < 0 || got >= 2*3.14159266 {
		t.Fatalf("WrapAngle(-0.5) = %f", got)
	}
}
