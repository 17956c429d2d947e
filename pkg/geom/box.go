package geom

import "math"

// Box is an axis-aligned bounding box. The zero value is an empty box.
type Box struct {
	Min, Max Vec3
	valid    bool
}

// BoxOf returns the bounding box of pts.
func BoxOf(pts []Vec3) Box {
	var b Box
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// Extend returns b grown to contain p.
func (b Box) Extend(p Vec3) Box {
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	b.Min = Vec3{math.Min(b.Min.X, p.X), math.Min(b.Min.Y, p.Y), math.Min(b.Min.Z, p.Z)}
	b.Max = Vec3{math.Max(b.Max.X, p.X), math.Max(b.Max.Y, p.Y), math.Max(b.Max.Z, p.Z)}
	return b
}

// Empty reports whether the box contains no points.
func (b Box) Empty() bool { return !b.valid }

// Center returns the midpoint of the box.
func (b Box) Center() Vec3 { return Lerp(b.Min, b.Max, 0.5) }

// Size returns the extent of the box along each axis.
func (b Box) Size() Vec3 { return b.Max.Sub(b.Min) }

// MaxExtent returns the largest of the three axis extents.
func (b Box) MaxExtent() float64 {
	s := b.Size()
	return math.Max(s.X, math.Max(s.Y, s.Z))
}
