package scene

import "github.com/matzehuels/orbitgraph/pkg/geom"

// Key is a camera control key.
type Key string

const (
	KeyLeft     Key = "left"
	KeyRight    Key = "right"
	KeyUp       Key = "up"
	KeyDown     Key = "down"
	KeyZoomIn   Key = "zoom-in"
	KeyZoomOut  Key = "zoom-out"
	KeyReset    Key = "reset"
	KeyFocus    Key = "focus"
)

var keyNames = map[string]Key{
	"left": KeyLeft, "a": KeyLeft,
	"right": KeyRight, "d": KeyRight,
	"up": KeyUp, "w": KeyUp,
	"down": KeyDown, "s": KeyDown,
	"q": KeyZoomIn, "pgup": KeyZoomIn,
	"e": KeyZoomOut, "pgdown": KeyZoomOut,
	"r": KeyReset,
	" ": KeyFocus, "space": KeyFocus,
}

// ParseKey maps a key name (as reported by a terminal or browser, lower
// case) to a control key.
func ParseKey(name string) (Key, bool) {
	k, ok := keyNames[name]
	return k, ok
}

type keyState struct {
	held    bool
	pending bool // pressed since the last frame
}

// KeyDown marks k as held. Movement keys act every frame while held; reset
// and focus act once per press.
func (e *Engine) KeyDown(k Key) {
	ks := e.key(k)
	if !ks.held {
		ks.pending = true
	}
	ks.held = true
}

// KeyUp releases k.
func (e *Engine) KeyUp(k Key) { e.key(k).held = false }

// KeyPress acts as a press for exactly one frame, for inputs that report no
// release.
func (e *Engine) KeyPress(k Key) { e.key(k).pending = true }

func (e *Engine) key(k Key) *keyState {
	ks, ok := e.keys[k]
	if !ok {
		ks = &keyState{}
		e.keys[k] = ks
	}
	return ks
}

// active reports whether k should act this frame and consumes its press.
func (e *Engine) active(k Key) bool {
	ks, ok := e.keys[k]
	if !ok {
		return false
	}
	on := ks.held || ks.pending
	ks.pending = false
	return on
}

// pressed reports whether k was pressed since the last frame.
func (e *Engine) pressed(k Key) bool {
	ks, ok := e.keys[k]
	if !ok {
		return false
	}
	on := ks.pending
	ks.pending = false
	return on
}

func (e *Engine) applyKeys() {
	step := e.cfg.PanStep
	var pan geom.Vec3
	if e.active(KeyLeft) {
		pan.X -= step
	}
	if e.active(KeyRight) {
		pan.X += step
	}
	if e.active(KeyUp) {
		pan.Y += step
	}
	if e.active(KeyDown) {
		pan.Y -= step
	}
	if pan != (geom.Vec3{}) {
		e.rig.Pan(pan)
	}

	if e.active(KeyZoomIn) {
		e.rig.Zoom(e.cfg.ZoomIn)
	}
	if e.active(KeyZoomOut) {
		e.rig.Zoom(e.cfg.ZoomOut)
	}
	if e.pressed(KeyReset) {
		e.FrameAll()
	}
	if e.pressed(KeyFocus) && e.hasSelected {
		e.FocusOnEntity(e.selected)
	}
}
