package viz

import (
	"math"
	"testing"
)

func TestProjectCenter(t *testing.T) {
	cam := NewCamera()
	sx, sy, depth, ok := cam.Project(Vec3{}, 200, 100)
	if !ok {
		t.Fatal("origin not visible")
	}
	if sx != 100 || sy != 50 {
		t.Errorf("origin at (%d,%d), want (100,50)", sx, sy)
	}
	if math.Abs(depth-50) > 1e-9 {
		t.Errorf("depth = %v, want 50", depth)
	}
}

func TestProjectOrientation(t *testing.T) {
	view := NewCamera().View(200, 100)

	rx, _, _, _ := view.Project(Vec3{X: 5})
	lx, _, _, _ := view.Project(Vec3{X: -5})
	if rx <= 100 || lx >= 100 {
		t.Errorf("x axis flipped: right=%d left=%d", rx, lx)
	}

	_, uy, _, _ := view.Project(Vec3{Y: 5})
	if uy >= 50 {
		t.Errorf("+y drawn below center: %d", uy)
	}
}

func TestProjectClipping(t *testing.T) {
	cam := NewCamera()
	cam.Far = 90

	if _, _, _, ok := cam.Project(Vec3{Z: 60}, 100, 100); ok {
		t.Error("point behind camera projected")
	}
	if _, _, _, ok := cam.Project(Vec3{Z: -500}, 100, 100); ok {
		t.Error("parked depth projected")
	}
	if _, _, _, ok := cam.Project(Vec3{X: 1000}, 100, 100); ok {
		t.Error("off-screen point reported visible")
	}
}

func TestZoomScalesOffsets(t *testing.T) {
	cam := NewCamera()
	x0, _, _, _ := cam.Project(Vec3{X: 4}, 400, 400)
	cam.ZoomIn()
	x1, _, _, _ := cam.Project(Vec3{X: 4}, 400, 400)
	if x1-200 <= x0-200 {
		t.Errorf("zoom in did not spread points: %d -> %d", x0, x1)
	}
	cam.ResetView()
	if cam.Zoom != 1 || cam.RotX != 0 || cam.RotY != 0 {
		t.Error("reset view kept state")
	}
}

func TestRotateXY(t *testing.T) {
	p := RotateXY(Vec3{X: 1}, 0, math.Pi/2)
	if math.Abs(p.X) > 1e-9 || math.Abs(math.Abs(p.Z)-1) > 1e-9 {
		t.Errorf("yaw quarter turn = %+v", p)
	}
	if q := RotateXY(Vec3{1, 2, 3}, 0, 0); q != (Vec3{1, 2, 3}) {
		t.Errorf("zero rotation moved point: %+v", q)
	}
}
