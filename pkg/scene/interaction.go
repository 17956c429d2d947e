package scene

import (
	"math"

	"github.com/matzehuels/orbitgraph/pkg/network"
)

// State is the interaction state of a node.
type State int

const (
	Idle State = iota
	Hovered
	Selected
)

func (s State) String() string {
	switch s {
	case Hovered:
		return "hovered"
	case Selected:
		return "selected"
	default:
		return "idle"
	}
}

// Emphasis factors applied on top of a node's base appearance.
const (
	HoverEmissive     = 0.5
	HoverScale        = 1.5
	HighlightEmissive = 0.8
	HighlightScale    = 2.0
)

// State returns the interaction state of a node. Selection wins over hover.
func (e *Engine) State(id int64) State {
	switch {
	case e.hasSelected && e.selected == id:
		return Selected
	case e.hasHovered && e.hovered == id:
		return Hovered
	default:
		return Idle
	}
}

// Hovered returns the hovered entity id.
func (e *Engine) Hovered() (int64, bool) { return e.hovered, e.hasHovered }

// Selected returns the selected entity id.
func (e *Engine) Selected() (int64, bool) { return e.selected, e.hasSelected }

// Highlighted reports whether an entity is highlighted.
func (e *Engine) Highlighted(id int64) bool {
	n, ok := e.nodes[id]
	return ok && n.highlighted
}

// Pick returns the nearest node under screen point (px, py). Nodes are
// tested as bounding spheres at their current scale; equal distances go to
// the node that comes first in the snapshot.
func (e *Engine) Pick(px, py float64) (int64, bool) {
	if len(e.nodes) == 0 {
		return 0, false
	}
	ray := e.cfg.Lens.Ray(e.rig.Pose(), e.cfg.Viewport, px, py)

	var best int64
	bestT, found := math.Inf(1), false
	for _, id := range e.res.IDs {
		n := e.nodes[id]
		r := n.visual.Shape.BoundingRadius() * n.current.Scale
		if t, hit := ray.IntersectSphere(n.visual.Position, r); hit && t < bestT {
			best, bestT, found = id, t, true
		}
	}
	return best, found
}

// PointerMove updates hover state for the pointer at (px, py). Hover
// callbacks run when the pointer enters a different node.
func (e *Engine) PointerMove(px, py float64) {
	id, ok := e.Pick(px, py)
	if !ok {
		if e.hasHovered {
			prev := e.hovered
			e.hasHovered, e.hovered = false, 0
			e.refresh(prev)
		}
		return
	}
	if e.hasHovered && e.hovered == id {
		return
	}
	prev, had := e.hovered, e.hasHovered
	e.hovered, e.hasHovered = id, true
	if had {
		e.refresh(prev)
	}
	e.refresh(id)
	e.emit(e.onHovered, id)
}

// Click handles a click at (px, py). clicks is the click count of the
// gesture: 2 or more focuses the camera on the node. Clicking empty space
// clears the selection.
func (e *Engine) Click(px, py float64, clicks int) {
	id, ok := e.Pick(px, py)
	if !ok {
		e.Deselect()
		return
	}
	e.Select(id)
	if clicks >= 2 {
		e.FocusOnEntity(id)
	}
	e.emit(e.onClicked, id)
}

// Select makes id the selected node, deselecting any other. It reports
// false when id is not in the snapshot.
func (e *Engine) Select(id int64) bool {
	if _, ok := e.nodes[id]; !ok {
		return false
	}
	prev, had := e.selected, e.hasSelected
	e.selected, e.hasSelected = id, true
	if had && prev != id {
		e.refresh(prev)
	}
	e.refresh(id)
	return true
}

// Deselect clears the selection.
func (e *Engine) Deselect() {
	if !e.hasSelected {
		return
	}
	prev := e.selected
	e.selected, e.hasSelected = 0, false
	e.refresh(prev)
}

func (e *Engine) emit(fns []func(network.Entity), id int64) {
	ent, ok := e.entities[id]
	if !ok {
		return
	}
	for _, fn := range fns {
		fn(ent)
	}
}

// appearance derives a node's appearance from its base and flags.
func (e *Engine) appearance(n *node) Appearance {
	a := n.visual.Base
	id := n.visual.ID
	if e.hasSelected && e.selected == id {
		a.Color = SelectedColor
	}
	switch {
	case n.highlighted:
		a.Emissive = scaled(a.Color, HighlightEmissive)
		a.Scale *= HighlightScale
	case e.hasHovered && e.hovered == id:
		a.Emissive = scaled(a.Color, HoverEmissive)
		a.Scale *= HoverScale
	}
	return a
}

func (e *Engine) refresh(id int64) {
	n, ok := e.nodes[id]
	if !ok {
		return
	}
	a := e.appearance(n)
	if a == n.current {
		return
	}
	n.current = a
	e.cfg.Backend.UpdateNode(id, a)
}
