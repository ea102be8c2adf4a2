package viz

import "math"

type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Length() float64      { return math.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z) }
func (v Vec3) Normalize() Vec3 {
	if l := v.Length(); l != 0 {
		return v.Scale(1 / l)
	}
	return Vec3{}
}
func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// RotateXY applies a pitch then a yaw, matching a group rotation of
// (rx, ry, 0) in XYZ order.
func RotateXY(p Vec3, rx, ry float64) Vec3 {
	cx, sx := math.Cos(rx), math.Sin(rx)
	p.Y, p.Z = p.Y*cx-p.Z*sx, p.Y*sx+p.Z*cx
	cy, sy := math.Cos(ry), math.Sin(ry)
	p.X, p.Z = p.X*cy+p.Z*sy, -p.X*sy+p.Z*cy
	return p
}

// Camera is a perspective camera that always looks at the origin.
type Camera struct {
	Position   Vec3
	Up         Vec3
	FOV        float64 // vertical, radians
	Near, Far  float64
	RotX, RotY float64 // manual orbit applied to the scene
	Zoom       float64
}

func NewCamera() *Camera {
	return &Camera{Position: Vec3{0, 0, 50}, Up: Vec3{0, 1, 0}, FOV: math.Pi / 4, Near: 0.1, Far: 1000, Zoom: 1.0}
}

func (c *Camera) RotateX(a float64) { c.RotX += a }
func (c *Camera) RotateY(a float64) { c.RotY += a }
func (c *Camera) ZoomIn()           { c.Zoom = math.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut()          { c.Zoom = math.Max(0.1, c.Zoom/1.2) }
func (c *Camera) ResetView()        { c.RotX, c.RotY, c.Zoom = 0, 0, 1 }

// View caches the camera basis for projecting many points in one frame.
type View struct {
	cam            *Camera
	right, up, fwd Vec3
	focal          float64
	sw, sh         int
}

// View prepares projection onto a sw x sh pixel surface.
func (c *Camera) View(sw, sh int) View {
	fwd := c.Position.Scale(-1).Normalize()
	right := fwd.Cross(c.Up).Normalize()
	if right.Length() == 0 {
		right = Vec3{1, 0, 0}
	}
	up := right.Cross(fwd)
	focal := float64(sh) / 2 / math.Tan(c.FOV/2) * c.Zoom
	return View{cam: c, right: right, up: up, fwd: fwd, focal: focal, sw: sw, sh: sh}
}

// Project maps a world point to pixel coordinates. It returns the depth
// along the view axis and whether the point lands on the surface.
func (v View) Project(p Vec3) (int, int, float64, bool) {
	p = RotateXY(p, v.cam.RotX, v.cam.RotY)
	d := p.Sub(v.cam.Position)
	z := d.Dot(v.fwd)
	if z <= v.cam.Near || z >= v.cam.Far {
		return 0, 0, z, false
	}
	sx := int(math.Round(d.Dot(v.right)*v.focal/z)) + v.sw/2
	sy := int(math.Round(-d.Dot(v.up)*v.focal/z)) + v.sh/2
	return sx, sy, z, sx >= 0 && sx < v.sw && sy >= 0 && sy < v.sh
}

// Project is a one-off View(sw, sh).Project(p).
func (c *Camera) Project(p Vec3, sw, sh int) (int, int, float64, bool) {
	return c.View(sw, sh).Project(p)
}
