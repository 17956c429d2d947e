package camera

import (
	"time"

	"github.com/matzehuels/orbitgraph/pkg/geom"
)

// Rig owns the live camera pose and its active transition. It is not safe
// for concurrent use; drive it from one loop.
type Rig struct {
	pose  Pose
	trans *Transition
}

// NewRig returns a rig at p.
func NewRig(p Pose) *Rig { return &Rig{pose: p} }

// Pose returns the live pose.
func (r *Rig) Pose() Pose { return r.pose }

// Set jumps to p and cancels any transition.
func (r *Rig) Set(p Pose) {
	r.pose = p
	r.trans = nil
}

// Animating reports whether a transition is in progress.
func (r *Rig) Animating() bool { return r.trans != nil }

// Animate starts a transition from the live pose to p. An active transition
// is dropped, not queued.
func (r *Rig) Animate(to Pose, now time.Time, d time.Duration) {
	r.trans = &Transition{From: r.pose, To: to, Start: now, Duration: d}
}

// Update advances the active transition to now. It reports whether the pose
// changed.
func (r *Rig) Update(now time.Time) bool {
	if r.trans == nil {
		return false
	}
	p, done := r.trans.At(now)
	r.pose = p
	if done {
		r.trans = nil
	}
	return true
}

// Pan moves target and eye by d and cancels any transition.
func (r *Rig) Pan(d geom.Vec3) {
	r.trans = nil
	r.pose = r.pose.Translate(d)
}

// Zoom scales the eye's distance from the target by f.
func (r *Rig) Zoom(f float64) {
	if f <= 0 {
		return
	}
	r.trans = nil
	off := r.pose.Eye.Sub(r.pose.Target)
	r.pose.Eye = r.pose.Target.Add(off.Scale(f))
}
