package cli

import (
	"math"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/scene"
)

// Each terminal cell is two viewport units tall, which keeps the projection
// roughly square on common terminal fonts.
const cellAspect = 2

var shapeGlyphs = map[scene.Shape]rune{
	scene.ShapeSphere:     '●',
	scene.ShapeBox:        '■',
	scene.ShapeOctahedron: '◆',
}

const edgeGlyph = '·'

// frame is one drawn picture of the scene.
type frame struct {
	view  string
	nodes int
	edges int
}

type canvasNode struct {
	visual scene.NodeVisual
	look   scene.Appearance
}

type cell struct {
	r     rune
	color string
	bold  bool
}

// canvas is a scene backend that rasterises the projected graph into
// coloured terminal cells. It is only touched from the scene loop goroutine.
type canvas struct {
	cols, rows int

	nodes map[int64]*canvasNode
	order []int64
	edges []scene.EdgeVisual

	styles  map[cell]lipgloss.Style
	last    string
	onFrame func(frame)
}

func newCanvas(onFrame func(frame)) *canvas {
	return &canvas{
		nodes:   make(map[int64]*canvasNode),
		styles:  make(map[cell]lipgloss.Style),
		onFrame: onFrame,
	}
}

// viewport returns the engine viewport matching a cols × rows terminal area.
func viewport(cols, rows int) camera.Viewport {
	return camera.Viewport{Width: float64(cols), Height: float64(rows * cellAspect)}
}

func (c *canvas) resize(cols, rows int) {
	c.cols, c.rows = max(cols, 0), max(rows, 0)
}

func (c *canvas) Reset() {
	c.nodes = make(map[int64]*canvasNode)
	c.order = c.order[:0]
	c.edges = c.edges[:0]
}

func (c *canvas) AddNode(n scene.NodeVisual) {
	if _, ok := c.nodes[n.ID]; !ok {
		c.order = append(c.order, n.ID)
	}
	c.nodes[n.ID] = &canvasNode{visual: n, look: n.Base}
}

func (c *canvas) AddEdge(e scene.EdgeVisual) {
	c.edges = append(c.edges, e)
}

func (c *canvas) UpdateNode(id int64, a scene.Appearance) {
	if n, ok := c.nodes[id]; ok {
		n.look = a
	}
}

// Draw renders the view and reports it when it differs from the last frame.
func (c *canvas) Draw(v scene.View) {
	out := c.render(v)
	if out == c.last {
		return
	}
	c.last = out
	if c.onFrame != nil {
		c.onFrame(frame{view: out, nodes: len(c.order), edges: len(c.edges)})
	}
}

func (c *canvas) render(v scene.View) string {
	if c.cols == 0 || c.rows == 0 {
		return ""
	}
	grid := make([][]cell, c.rows)
	for i := range grid {
		grid[i] = make([]cell, c.cols)
	}

	project := func(p geom.Vec3) (int, int, bool) {
		x, y, ok := v.Lens.Project(v.Pose, v.Viewport, p)
		if !ok || v.Viewport.Width <= 0 || v.Viewport.Height <= 0 {
			return 0, 0, false
		}
		col := int(math.Floor(x * float64(c.cols) / v.Viewport.Width))
		row := int(math.Floor(y * float64(c.rows) / v.Viewport.Height))
		return col, row, true
	}

	for _, e := range c.edges {
		x0, y0, ok0 := project(e.A)
		x1, y1, ok1 := project(e.B)
		if !ok0 || !ok1 || !c.near(x0, y0) || !c.near(x1, y1) {
			continue
		}
		c.line(grid, x0, y0, x1, y1, cell{r: edgeGlyph, color: e.Style.Color.Hex()})
	}

	type placed struct {
		id       int64
		col, row int
		depth    float64
	}
	var visible []placed
	for _, id := range c.order {
		n := c.nodes[id]
		col, row, ok := project(n.visual.Position)
		if !ok || !c.inside(col, row) {
			continue
		}
		visible = append(visible, placed{id, col, row, camera.Depth(v.Pose, n.visual.Position)})
	}
	// Far to near, so nearer nodes overwrite.
	sort.SliceStable(visible, func(i, j int) bool { return visible[i].depth > visible[j].depth })
	for _, p := range visible {
		n := c.nodes[p.id]
		glyph, ok := shapeGlyphs[n.visual.Shape]
		if !ok {
			glyph = shapeGlyphs[scene.ShapeSphere]
		}
		grid[p.row][p.col] = cell{
			r:     glyph,
			color: n.look.Color.Hex(),
			bold:  n.look.Scale > n.visual.Base.Scale,
		}
	}

	var b strings.Builder
	for i, row := range grid {
		if i > 0 {
			b.WriteByte('\n')
		}
		c.writeRow(&b, row)
	}
	return b.String()
}

// writeRow emits runs of equally styled cells.
func (c *canvas) writeRow(b *strings.Builder, row []cell) {
	var run []rune
	var style cell
	flush := func() {
		if len(run) == 0 {
			return
		}
		if style.r == 0 {
			b.WriteString(string(run))
		} else {
			b.WriteString(c.style(style).Render(string(run)))
		}
		run = run[:0]
	}
	for _, cl := range row {
		key := cell{color: cl.color, bold: cl.bold}
		if cl.r != 0 {
			key.r = 1
		}
		if key != style {
			flush()
			style = key
		}
		if cl.r == 0 {
			run = append(run, ' ')
		} else {
			run = append(run, cl.r)
		}
	}
	flush()
}

func (c *canvas) style(key cell) lipgloss.Style {
	s, ok := c.styles[key]
	if !ok {
		s = lipgloss.NewStyle().Foreground(lipgloss.Color(key.color)).Bold(key.bold)
		c.styles[key] = s
	}
	return s
}

func (c *canvas) inside(col, row int) bool {
	return col >= 0 && col < c.cols && row >= 0 && row < c.rows
}

// near bounds line rasterisation for endpoints projected far off screen.
func (c *canvas) near(col, row int) bool {
	return col >= -c.cols && col < 2*c.cols && row >= -c.rows && row < 2*c.rows
}

// line draws a Bresenham line, leaving its end cells to the nodes.
func (c *canvas) line(grid [][]cell, x0, y0, x1, y1 int, cl cell) {
	dx, dy := abs(x1-x0), -abs(y1-y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	err := dx + dy
	x, y := x0, y0
	for {
		if c.inside(x, y) && grid[y][x].r == 0 && !(x == x0 && y == y0) && !(x == x1 && y == y1) {
			grid[y][x] = cl
		}
		if x == x1 && y == y1 {
			return
		}
		e2 := 2 * err
		if e2 >= dy {
			err += dy
			x += sx
		}
		if e2 <= dx {
			err += dx
			y += sy
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
