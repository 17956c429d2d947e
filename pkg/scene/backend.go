package scene

import (
	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

// NodeVisual is the drawable proxy of one entity.
type NodeVisual struct {
	ID       int64
	Entity   network.Entity
	Cluster  int
	Position geom.Vec3
	Shape    Shape
	Base     Appearance
}

// EdgeVisual is the drawable proxy of one relationship. A and B are the
// positions of its endpoints.
type EdgeVisual struct {
	ID             int64
	From, To       int64
	A, B           geom.Vec3
	Type           string
	Classification string
	Style          EdgeStyle
}

// View is everything a backend needs to draw a frame.
type View struct {
	Pose     camera.Pose
	Lens     camera.Lens
	Viewport camera.Viewport
}

// Backend draws primitives. The engine calls Reset before adding the
// primitives of a new snapshot, and Draw once per frame.
type Backend interface {
	Reset()
	AddNode(n NodeVisual)
	AddEdge(e EdgeVisual)
	UpdateNode(id int64, a Appearance)
	Draw(v View)
}

// NullBackend discards everything.
type NullBackend struct{}

func (NullBackend) Reset()                       {}
func (NullBackend) AddNode(NodeVisual)           {}
func (NullBackend) AddEdge(EdgeVisual)           {}
func (NullBackend) UpdateNode(int64, Appearance) {}
func (NullBackend) Draw(View)                    {}
