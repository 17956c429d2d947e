package scene

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/observability"
)

// Keyboard camera defaults.
const (
	DefaultPanStep = 2.0
	DefaultZoomIn  = 0.95
	DefaultZoomOut = 1.05
)

// Config configures an Engine. Zero fields take defaults.
type Config struct {
	Layout        layout.Options
	Lens          camera.Lens
	Viewport      camera.Viewport
	FocusDuration time.Duration
	PanStep       float64
	ZoomIn        float64
	ZoomOut       float64

	Backend Backend
	Logger  *log.Logger
	// Clock returns the current time; time.Now when nil.
	Clock func() time.Time
}

func (c Config) withDefaults() Config {
	if c.Lens == (camera.Lens{}) {
		c.Lens = camera.DefaultLens()
	}
	if c.Viewport == (camera.Viewport{}) {
		c.Viewport = camera.Viewport{Width: 800, Height: 600}
	}
	if c.FocusDuration == 0 {
		c.FocusDuration = camera.DefaultFocusDuration
	}
	if c.PanStep == 0 {
		c.PanStep = DefaultPanStep
	}
	if c.ZoomIn == 0 {
		c.ZoomIn = DefaultZoomIn
	}
	if c.ZoomOut == 0 {
		c.ZoomOut = DefaultZoomOut
	}
	if c.Backend == nil {
		c.Backend = NullBackend{}
	}
	if c.Logger == nil {
		c.Logger = log.New(io.Discard)
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	return c
}

type node struct {
	visual      NodeVisual
	current     Appearance
	highlighted bool
}

// Engine holds one laid-out snapshot and its interaction state.
type Engine struct {
	cfg Config
	rig *camera.Rig
	gen atomic.Uint64

	res      layout.Result
	entities map[int64]network.Entity
	nodes    map[int64]*node
	edges    []EdgeVisual

	hovered, selected       int64
	hasHovered, hasSelected bool

	onClicked []func(network.Entity)
	onHovered []func(network.Entity)

	keys map[Key]*keyState
}

// New returns an engine with an empty snapshot.
func New(cfg Config) *Engine {
	e := &Engine{
		cfg:  cfg.withDefaults(),
		rig:  camera.NewRig(camera.Pose{Eye: geom.V(0, 0, 50)}),
		keys: make(map[Key]*keyState),
	}
	e.reset()
	return e
}

// LayoutOptions returns the options the engine lays out snapshots with.
func (e *Engine) LayoutOptions() layout.Options { return e.cfg.Layout }

// SetData replaces the snapshot, lays it out and rebuilds every visual.
// It returns once relaxation has finished. Loads started before the call are
// superseded.
func (e *Engine) SetData(entities []network.Entity, rels []network.Relationship) {
	e.gen.Add(1)
	e.install(PrepareLoad(context.Background(), 0, entities, rels, e.cfg.Layout))
}

// ClearGraph drops the snapshot and all visuals.
func (e *Engine) ClearGraph() {
	e.reset()
	e.cfg.Backend.Reset()
}

func (e *Engine) reset() {
	e.res = layout.Result{}
	e.entities = make(map[int64]network.Entity)
	e.nodes = make(map[int64]*node)
	e.edges = nil
	e.hasHovered, e.hasSelected = false, false
	e.hovered, e.selected = 0, 0
}

func (e *Engine) install(ld Load) {
	e.ClearGraph()
	e.res = ld.Result

	for _, ent := range ld.Entities {
		if _, dup := e.entities[ent.ID]; !dup {
			e.entities[ent.ID] = ent
		}
	}
	for _, id := range e.res.IDs {
		ch := e.res.Characteristics[id]
		v := NodeVisual{
			ID:       id,
			Entity:   e.entities[id],
			Cluster:  e.res.Clusters.Of[id],
			Position: e.res.Positions[id],
			Shape:    ShapeOf(ch.Bucket),
			Base:     NodeAppearance(ch),
		}
		e.nodes[id] = &node{visual: v, current: v.Base}
		e.cfg.Backend.AddNode(v)
	}
	for _, r := range e.res.Edges {
		a, okA := e.nodes[r.SourceID]
		b, okB := e.nodes[r.TargetID]
		if !okA || !okB {
			continue
		}
		v := EdgeVisual{
			ID:             r.ID,
			From:           r.SourceID,
			To:             r.TargetID,
			A:              a.visual.Position,
			B:              b.visual.Position,
			Type:           r.TypeOrUnknown(),
			Classification: r.ClassOrNormal(),
			Style:          EdgeAppearance(r),
		}
		e.edges = append(e.edges, v)
		e.cfg.Backend.AddEdge(v)
	}

	e.FrameAll()
	e.cfg.Logger.Debug("scene loaded",
		"entities", len(e.nodes),
		"edges", len(e.edges),
		"clusters", e.res.Clusters.Len(),
		"dropped", e.res.Dropped)
}

// FrameAll jumps the camera to a pose showing every node. It does nothing
// for an empty snapshot.
func (e *Engine) FrameAll() {
	if pose, ok := camera.FrameAll(e.res.Points()); ok {
		e.rig.Set(pose)
	}
}

// FocusOnEntity starts a camera transition toward the entity. It reports
// false when the entity is not in the snapshot.
func (e *Engine) FocusOnEntity(id int64) bool {
	n, ok := e.nodes[id]
	if !ok {
		return false
	}
	to := camera.FrameEntity(n.visual.Position, e.rig.Pose())
	e.rig.Animate(to, e.cfg.Clock(), e.cfg.FocusDuration)
	return true
}

// HighlightEntity toggles temporary emphasis on an entity, independent of
// hover and selection. It reports false when the entity is unknown.
func (e *Engine) HighlightEntity(id int64, on bool) bool {
	n, ok := e.nodes[id]
	if !ok {
		return false
	}
	n.highlighted = on
	e.refresh(id)
	return true
}

// OnEntityClicked registers fn to run when a node is clicked.
func (e *Engine) OnEntityClicked(fn func(network.Entity)) {
	if fn != nil {
		e.onClicked = append(e.onClicked, fn)
	}
}

// OnEntityHovered registers fn to run when the pointer enters a node.
func (e *Engine) OnEntityHovered(fn func(network.Entity)) {
	if fn != nil {
		e.onHovered = append(e.onHovered, fn)
	}
}

// Resize sets the viewport size used for picking and drawing.
func (e *Engine) Resize(vp camera.Viewport) { e.cfg.Viewport = vp }

// Frame advances the camera transition, applies held keys and draws.
func (e *Engine) Frame(now time.Time) {
	e.rig.Update(now)
	e.applyKeys()
	e.cfg.Backend.Draw(e.View())
}

// View returns the current camera view.
func (e *Engine) View() View {
	return View{Pose: e.rig.Pose(), Lens: e.cfg.Lens, Viewport: e.cfg.Viewport}
}

// Camera returns the camera rig.
func (e *Engine) Camera() *camera.Rig { return e.rig }

// Result returns the layout of the current snapshot.
func (e *Engine) Result() layout.Result { return e.res }

// Position returns an entity's position.
func (e *Engine) Position(id int64) (geom.Vec3, bool) {
	n, ok := e.nodes[id]
	if !ok {
		return geom.Vec3{}, false
	}
	return n.visual.Position, true
}

// Entity returns the record of an entity in the snapshot.
func (e *Engine) Entity(id int64) (network.Entity, bool) {
	ent, ok := e.entities[id]
	return ent, ok
}

// Node returns a node's visual and its current appearance.
func (e *Engine) Node(id int64) (NodeVisual, Appearance, bool) {
	n, ok := e.nodes[id]
	if !ok {
		return NodeVisual{}, Appearance{}, false
	}
	return n.visual, n.current, true
}

// Nodes returns every node visual in snapshot order.
func (e *Engine) Nodes() []NodeVisual {
	out := make([]NodeVisual, 0, len(e.res.IDs))
	for _, id := range e.res.IDs {
		out = append(out, e.nodes[id].visual)
	}
	return out
}

// Edges returns every edge visual.
func (e *Engine) Edges() []EdgeVisual { return e.edges }

// =============================================================================
// Loads
// =============================================================================

// Load is a snapshot whose layout was computed off the render loop.
type Load struct {
	Token    uint64
	Entities []network.Entity
	Result   layout.Result
}

// BeginLoad issues a token for a fetch that is about to start, superseding
// every earlier token. It is safe to call from any goroutine.
func (e *Engine) BeginLoad() uint64 { return e.gen.Add(1) }

// PrepareLoad lays out a snapshot for [Engine.ApplyLoad]. It touches no
// engine state and may run on any goroutine.
func PrepareLoad(ctx context.Context, token uint64, entities []network.Entity, rels []network.Relationship, opts layout.Options) Load {
	observability.Pipeline().OnLayoutStart(ctx, len(entities), len(rels))
	start := time.Now()
	ld := Load{Token: token, Entities: entities, Result: layout.Compute(entities, rels, opts)}
	observability.Pipeline().OnLayoutComplete(ctx, ld.Result.Clusters.Len(), ld.Result.Dropped, time.Since(start))
	return ld
}

// ApplyLoad installs ld if its token is the latest issued. Stale loads are
// discarded and reported as false.
func (e *Engine) ApplyLoad(ld Load) bool {
	if latest := e.gen.Load(); ld.Token != latest {
		e.cfg.Logger.Debug("discarding superseded load", "token", ld.Token, "latest", latest)
		return false
	}
	e.install(ld)
	return true
}
