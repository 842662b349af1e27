package spatial

import "testing"

func TestOctant(t *testing.T) {
	root := Cube{Center: Vec3{X: 0.5, Y: 0.5, Z: 0.5}, HalfSize: 0.5}

	cases := []struct {
		p    Vec3
		want int
	}{
		{Vec3{X: 0.1, Y: 0.1, Z: 0.1}, 0},
		{Vec3{X: 0.9, Y: 0.1, Z: 0.1}, 1},
		{Vec3{X: 0.1, Y: 0.9, Z: 0.1}, 2},
		{Vec3{X: 0.9, Y: 0.9, Z: 0.1}, 3},
		{Vec3{X: 0.1, Y: 0.1, Z: 0.9}, 4},
		{Vec3{X: 0.9, Y: 0.9, Z: 0.9}, 7},
	}

	for _, c := range cases {
		got := root.Octant(c.p)
		if got != c.want {
			t.Errorf("Octant(%v) = %d, want %d", c.p, got, c.want)
		}
	}
}

func TestChildContainment(t *testing.T) {
	root := Cube{Center: Vec3{X: 0.5, Y: 0.5, Z: 0.5}, HalfSize: 0.5}

	for i := 0; i < 8; i++ {
		child := root.Child(i)
		if child.HalfSize != 0.25 {
			t.Errorf("child %d half-size = %f, want 0.25", i, child.HalfSize)
		}
		if !root.Contains(child.Center) {
			t.Errorf("child %d center %v not contained in parent", i, child.Center)
		}
		if root.Octant(child.Center) != i {
			t.Errorf("child %d center maps to octant %d, want %d", i, root.Octant(child.Center), i)
		}
	}
}

func TestContainsChebyshev(t *testing.T) {
	c := Cube{Center: Vec3{X: 0, Y: 0, Z: 0}, HalfSize: 1}

	if !c.Contains(Vec3{X: 1, Y: 1, Z: 1}) {
		t.Error("corner point should be contained (boundary inclusive)")
	}
	if c.Contains(Vec3{X: 1.01, Y: 0, Z: 0}) {
		t.Error("point outside half-size should not be contained")
	}
}

func TestHalfDiagonal(t *testing.T) {
	c := Cube{Center: Vec3{}, HalfSize: 2}
	got := c.HalfDiagonal()
	want := 2 * 1.7320508075688772
	if absf(got-want) > 1e-12 {
		t.Errorf("HalfDiagonal = %f, want %f", got, want)
	}

	corner := Vec3{X: c.HalfSize, Y: c.HalfSize, Z: c.HalfSize}
	if absf(Norm(Sub(corner, c.Center))-got) > 1e-9 {
		t.Errorf("HalfDiagonal = %f does not match actual center-to-corner distance %f", got, Norm(Sub(corner, c.Center)))
	}
}
