package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"regexp"
	"slices"
	"strconv"

	"github.com/goccy/go-graphviz"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/render"
	"github.com/matzehuels/orbitgraph/pkg/scene"
)

// pointsPerInch converts pixel coordinates to Graphviz inches.
const pointsPerInch = 72.0

// Background is the canvas colour.
const Background = "#0a0e1a"

// Options configures node-link diagram rendering.
type Options struct {
	// Pose overrides the layout's stored camera when non-zero.
	Pose camera.Pose
	// Lens defaults to camera.DefaultLens.
	Lens camera.Lens
	// Viewport defaults to 800x600.
	Viewport camera.Viewport
	// Labels prints entity names next to nodes.
	Labels bool
}

func (o Options) withDefaults(l graph.Layout) Options {
	if o.Pose == (camera.Pose{}) {
		o.Pose = l.Camera
	}
	if o.Lens == (camera.Lens{}) {
		o.Lens = camera.DefaultLens()
	}
	if o.Viewport.Width <= 0 || o.Viewport.Height <= 0 {
		o.Viewport = camera.Viewport{Width: 800, Height: 600}
	}
	return o
}

type projected struct {
	node  graph.Node
	x, y  float64
	depth float64
	r     float64
}

// ToDOT converts a layout to an undirected Graphviz graph with pinned node
// positions. Nodes outside the view frustum are omitted together with their
// edges.
func ToDOT(l graph.Layout, opts Options) string {
	opts = opts.withDefaults(l)
	vp := opts.Viewport

	var nodes []projected
	visible := make(map[int64]projected, len(l.Nodes))
	for _, n := range l.Nodes {
		x, y, ok := opts.Lens.Project(opts.Pose, vp, n.Position)
		if !ok {
			continue
		}
		app := scene.NodeAppearance(n.Characteristics)
		shape := scene.ShapeOf(n.Characteristics.Bucket)
		p := projected{
			node:  n,
			x:     x,
			y:     y,
			depth: camera.Depth(opts.Pose, n.Position),
			r:     opts.Lens.ScreenRadius(opts.Pose, vp, n.Position, shape.BoundingRadius()*app.Scale),
		}
		nodes = append(nodes, p)
		visible[n.ID] = p
	}
	slices.SortStableFunc(nodes, func(a, b projected) int {
		switch {
		case a.depth > b.depth:
			return -1
		case a.depth < b.depth:
			return 1
		}
		return 0
	})

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	fmt.Fprintf(&buf, "  bgcolor=%q;\n", Background)
	buf.WriteString("  outputorder=edgesfirst;\n")
	buf.WriteString("  splines=false;\n")
	buf.WriteString("  node [style=filled, fixedsize=true, penwidth=0, fontcolor=\"#e0e0e0\", fontsize=9, fontname=\"Helvetica\"];\n")
	buf.WriteString("\n")

	// Corner anchors keep the drawing the size of the viewport.
	fmt.Fprintf(&buf, "  \"_tl\" [style=invis, width=0, height=0, label=\"\", pos=\"0,%s!\"];\n", num(vp.Height/pointsPerInch))
	fmt.Fprintf(&buf, "  \"_br\" [style=invis, width=0, height=0, label=\"\", pos=\"%s,0!\"];\n", num(vp.Width/pointsPerInch))

	for _, p := range nodes {
		fmt.Fprintf(&buf, "  \"%d\" [%s];\n", p.node.ID, nodeAttrs(p, vp, opts.Labels))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		if _, ok := visible[e.From]; !ok {
			continue
		}
		if _, ok := visible[e.To]; !ok {
			continue
		}
		style := scene.EdgeAppearance(e.Relationship())
		fmt.Fprintf(&buf, "  \"%d\" -- \"%d\" [color=%q, penwidth=%s];\n",
			e.From, e.To, withAlpha(style.Color, style.Opacity), num(style.Width))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeAttrs(p projected, vp camera.Viewport, labels bool) string {
	app := scene.NodeAppearance(p.node.Characteristics)
	shape := scene.ShapeOf(p.node.Characteristics.Bucket)
	size := num(math.Max(2*p.r, 2) / pointsPerInch)

	attrs := fmt.Sprintf("shape=%s, width=%s, height=%s, fillcolor=%q, label=\"\", tooltip=%q, pos=\"%s,%s!\"",
		dotShape(shape), size, size, app.Color.Hex(), p.node.Name,
		num(p.x/pointsPerInch), num((vp.Height-p.y)/pointsPerInch))
	if labels {
		attrs += fmt.Sprintf(", xlabel=%q", p.node.Name)
	}
	return attrs
}

func dotShape(s scene.Shape) string {
	switch s {
	case scene.ShapeBox:
		return "box"
	case scene.ShapeOctahedron:
		return "diamond"
	default:
		return "circle"
	}
}

// withAlpha formats c as #rrggbbaa.
func withAlpha(c colorful.Color, alpha float64) string {
	a := int(math.Round(math.Max(0, math.Min(1, alpha)) * 255))
	return fmt.Sprintf("%s%02x", c.Clamped().Hex(), a)
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

// RenderSVG renders a DOT graph to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPNG renders a DOT graph as PNG via SVG conversion.
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(svg, scale)
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(svg)
}
