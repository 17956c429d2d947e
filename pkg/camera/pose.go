package camera

import (
	"math"

	"github.com/matzehuels/orbitgraph/pkg/geom"
)

// Framing constants.
const (
	FrameDistanceFactor = 1.5
	FocusMinDistance    = 30.0
	FocusDistanceFactor = 0.6
)

var (
	// FrameDirection is the eye offset direction used by FrameAll, scaled by
	// the framing distance. It is not normalised.
	FrameDirection = geom.V(0.5, 0.5, 0.7)

	// FocusDirection is the unit eye offset used by FrameEntity.
	FocusDirection = geom.V(0.5, 0.5, 1).Normalize()
)

// Pose is a camera looking from Eye at Target.
type Pose struct {
	Target geom.Vec3 `json:"target"`
	Eye    geom.Vec3 `json:"eye"`
}

// Distance returns the distance between eye and target.
func (p Pose) Distance() float64 { return p.Eye.Dist(p.Target) }

// Forward returns the unit view direction.
func (p Pose) Forward() geom.Vec3 { return p.Target.Sub(p.Eye).Normalize() }

// Translate moves target and eye by d.
func (p Pose) Translate(d geom.Vec3) Pose {
	return Pose{Target: p.Target.Add(d), Eye: p.Eye.Add(d)}
}

// Lerp interpolates between two poses.
func Lerp(a, b Pose, t float64) Pose {
	return Pose{Target: geom.Lerp(a.Target, b.Target, t), Eye: geom.Lerp(a.Eye, b.Eye, t)}
}

// FrameAll returns a pose looking at the centre of the bounding box of pts
// from 1.5 times its largest extent (at least 1). It reports false when pts
// is empty.
func FrameAll(pts []geom.Vec3) (Pose, bool) {
	box := geom.BoxOf(pts)
	if box.Empty() {
		return Pose{}, false
	}
	target := box.Center()
	dist := math.Max(box.MaxExtent(), 1) * FrameDistanceFactor
	return Pose{Target: target, Eye: target.Add(FrameDirection.Scale(dist))}, true
}

// FrameEntity returns a pose looking at pos from 0.6 of the current distance,
// but never closer than 30.
func FrameEntity(pos geom.Vec3, current Pose) Pose {
	dist := math.Max(FocusMinDistance, current.Distance()*FocusDistanceFactor)
	return Pose{Target: pos, Eye: pos.Add(FocusDirection.Scale(dist))}
}
