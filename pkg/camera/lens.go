package camera

import (
	"math"

	"github.com/matzehuels/orbitgraph/pkg/geom"
)

// Viewport is the size of the drawing surface in pixels (or cells).
type Viewport struct {
	Width, Height float64
}

// Aspect returns width over height, or 1 for a degenerate viewport.
func (v Viewport) Aspect() float64 {
	if v.Width <= 0 || v.Height <= 0 {
		return 1
	}
	return v.Width / v.Height
}

// Lens is a perspective projection.
type Lens struct {
	// FOV is the vertical field of view in degrees.
	FOV  float64 `json:"fov" toml:"fov"`
	Near float64 `json:"near" toml:"near"`
	Far  float64 `json:"far" toml:"far"`
}

// DefaultLens matches a 75 degree perspective camera.
func DefaultLens() Lens { return Lens{FOV: 75, Near: 0.1, Far: 10000} }

var (
	worldUp  = geom.V(0, 1, 0)
	fallback = geom.V(0, 0, 1)
)

// basis returns the camera's forward, right and up unit vectors.
func basis(p Pose) (f, r, u geom.Vec3) {
	f = p.Forward()
	r = f.Cross(worldUp)
	if r.Len() < 1e-9 {
		r = f.Cross(fallback)
	}
	r = r.Normalize()
	u = r.Cross(f)
	return f, r, u
}

func (l Lens) tanHalf() float64 {
	fov := l.FOV
	if fov <= 0 {
		fov = DefaultLens().FOV
	}
	return math.Tan(fov * math.Pi / 360)
}

// Ray returns the world-space ray through screen point (px, py), with the
// origin at the top-left corner of vp.
func (l Lens) Ray(p Pose, vp Viewport, px, py float64) geom.Ray {
	nx, ny := 0.0, 0.0
	if vp.Width > 0 && vp.Height > 0 {
		nx = 2*px/vp.Width - 1
		ny = 1 - 2*py/vp.Height
	}
	f, r, u := basis(p)
	th := l.tanHalf()
	dir := f.Add(r.Scale(nx * th * vp.Aspect())).Add(u.Scale(ny * th))
	return geom.Ray{Origin: p.Eye, Dir: dir.Normalize()}
}

// Project maps a world point to screen coordinates. ok is false for points
// outside the near and far planes.
func (l Lens) Project(p Pose, vp Viewport, pt geom.Vec3) (x, y float64, ok bool) {
	f, r, u := basis(p)
	d := pt.Sub(p.Eye)
	z := d.Dot(f)
	if z < l.Near || (l.Far > 0 && z > l.Far) {
		return 0, 0, false
	}
	th := l.tanHalf()
	nx := d.Dot(r) / (z * th * vp.Aspect())
	ny := d.Dot(u) / (z * th)
	return (nx + 1) / 2 * vp.Width, (1 - ny) / 2 * vp.Height, true
}

// Depth returns the distance of pt along the view direction.
func Depth(p Pose, pt geom.Vec3) float64 {
	return pt.Sub(p.Eye).Dot(p.Forward())
}

// ScreenRadius returns the on-screen radius of a sphere of radius r centred
// at pt, or 0 when pt is behind the near plane.
func (l Lens) ScreenRadius(p Pose, vp Viewport, pt geom.Vec3, r float64) float64 {
	z := Depth(p, pt)
	if z < l.Near || z <= 0 {
		return 0
	}
	return r * vp.Height / (2 * z * l.tanHalf())
}
