package sdfx

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/chazu/pipes/pkg/kernel"
)

func meshOf(t *testing.T, k *SdfxKernel, s kernel.Solid) *kernel.Mesh {
	t.Helper()
	m, err := k.ToMesh(s)
	if err != nil {
		t.Fatalf("ToMesh failed: %v", err)
	}
	if m.IsEmpty() {
		t.Fatal("mesh is empty")
	}
	if len(m.Vertices) != len(m.Normals) {
		t.Fatalf("vertices length %d != normals length %d", len(m.Vertices), len(m.Normals))
	}
	if len(m.Indices) != m.TriangleCount()*3 {
		t.Fatalf("indices length %d is not a multiple of 3", len(m.Indices))
	}
	return m
}

func TestSphere(t *testing.T) {
	k := New(32)
	m := meshOf(t, k, k.Sphere(5))

	lo, hi := m.Bounds()
	for i := 0; i < 3; i++ {
		if math.Abs(float64(hi[i]-lo[i])-10) > 1 {
			t.Errorf("axis %d extent = %v, want ~10", i, hi[i]-lo[i])
		}
	}
	if len(m.Groups) != 1 || m.Groups[0].Kind != kernel.Triangles {
		t.Errorf("Groups = %+v", m.Groups)
	}
}

func TestCylinderBounds(t *testing.T) {
	k := New(0)
	min, max := k.Cylinder(50, 10).BoundingBox()
	if math.Abs(min[2]+25) > 0.01 || math.Abs(max[2]-25) > 0.01 {
		t.Errorf("z bounds = %v..%v, want -25..25", min[2], max[2])
	}
	if math.Abs(max[0]-10) > 0.01 {
		t.Errorf("x max = %v, want 10", max[0])
	}
}

func TestBoxMinCorner(t *testing.T) {
	k := New(0)
	min, max := k.Box(100, 50, 25).BoundingBox()

	const tol = 0.01
	expectMax := [3]float64{100, 50, 25}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]) > tol {
			t.Errorf("min[%d] = %f, expected 0", i, min[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected %f", i, max[i], expectMax[i])
		}
	}
}

func TestDifference(t *testing.T) {
	k := New(24)
	box := k.Translate(k.Box(20, 20, 20), -10, -10, -10)
	boxMesh := meshOf(t, k, box)

	diff := k.Difference(box, k.Cylinder(30, 5))
	diffMesh := meshOf(t, k, diff)
	if diffMesh.TriangleCount() <= boxMesh.TriangleCount() {
		t.Fatalf("difference (%d triangles) should have more triangles than box (%d triangles)",
			diffMesh.TriangleCount(), boxMesh.TriangleCount())
	}
}

func TestUnionAndIntersection(t *testing.T) {
	k := New(24)
	a := k.Sphere(4)
	b := k.Translate(k.Sphere(4), 5, 0, 0)

	min, max := k.Union(a, b).BoundingBox()
	if math.Abs(min[0]+4) > 0.01 || math.Abs(max[0]-9) > 0.01 {
		t.Errorf("union x bounds = %v..%v", min[0], max[0])
	}
	meshOf(t, k, k.Intersection(a, b))
}

func TestTranslate(t *testing.T) {
	k := New(0)
	min, max := k.Translate(k.Sphere(5), 100, 200, 300).BoundingBox()

	const tol = 0.01
	expectMin := [3]float64{95, 195, 295}
	expectMax := [3]float64{105, 205, 305}
	for i := 0; i < 3; i++ {
		if math.Abs(min[i]-expectMin[i]) > tol {
			t.Errorf("min[%d] = %f, expected ~%f", i, min[i], expectMin[i])
		}
		if math.Abs(max[i]-expectMax[i]) > tol {
			t.Errorf("max[%d] = %f, expected ~%f", i, max[i], expectMax[i])
		}
	}
}

func TestRotate(t *testing.T) {
	k := New(0)
	// A long cylinder along z rotated 90 degrees about y lies along x.
	min, max := k.Rotate(k.Cylinder(100, 5), 0, 90, 0).BoundingBox()

	const tol = 1.0
	if x := max[0] - min[0]; math.Abs(x-100) > tol {
		t.Errorf("rotated x extent = %f, expected ~100", x)
	}
	if z := max[2] - min[2]; math.Abs(z-10) > tol {
		t.Errorf("rotated z extent = %f, expected ~10", z)
	}
}

func TestScale(t *testing.T) {
	k := New(0)
	min, max := k.Scale(k.Sphere(1), 3, 1, 2).BoundingBox()
	if math.Abs(max[0]-3) > 0.01 || math.Abs(min[2]+2) > 0.01 {
		t.Errorf("scaled bounds = %v %v", min, max)
	}
}

func TestWriteSTL(t *testing.T) {
	k := New(16)
	m := meshOf(t, k, k.Sphere(3))

	path := filepath.Join(t.TempDir(), "sphere.stl")
	if err := WriteSTL(path, m); err != nil {
		t.Fatalf("WriteSTL: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	// Binary STL: 80 byte header, 4 byte count, 50 bytes per triangle.
	if want := int64(84 + 50*m.TriangleCount()); info.Size() != want {
		t.Errorf("file size = %d, want %d", info.Size(), want)
	}

	if err := WriteSTL(filepath.Join(t.TempDir(), "empty.stl"), &kernel.Mesh{}); err == nil {
		t.Error("WriteSTL accepted an empty mesh")
	}
}
