package camera

import "time"

// DefaultFocusDuration is the length of a focus animation.
const DefaultFocusDuration = time.Second

// EaseInOut is a quadratic ease-in-out curve on [0, 1].
func EaseInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	u := -2*t + 2
	return 1 - u*u/2
}

// Transition is a time-parameterised move between two poses.
type Transition struct {
	From, To Pose
	Start    time.Time
	Duration time.Duration
}

// At samples the transition. done is true once Duration has elapsed.
func (tr Transition) At(now time.Time) (p Pose, done bool) {
	if tr.Duration <= 0 {
		return tr.To, true
	}
	t := float64(now.Sub(tr.Start)) / float64(tr.Duration)
	switch {
	case t <= 0:
		return tr.From, false
	case t >= 1:
		return tr.To, true
	}
	return Lerp(tr.From, tr.To, EaseInOut(t)), false
}
