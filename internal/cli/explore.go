package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
	"github.com/matzehuels/orbitgraph/pkg/scene"
)

const (
	// exploreFrameInterval is the terminal redraw rate.
	exploreFrameInterval = time.Second / 30

	// windowSteps is the number of cumulative windows "[" and "]" move through.
	windowSteps = 12

	// doubleClickInterval separates a double click from two single clicks.
	doubleClickInterval = 400 * time.Millisecond

	// chromeLines is the header and footer around the canvas.
	chromeLines = 2
)

// exploreCommand creates the interactive 3D explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var (
		src sourceFlags
		lf  layoutFlags
	)

	cmd := &cobra.Command{
		Use:   "explore",
		Short: "Explore the network interactively in the terminal",
		Long: `Explore the network interactively in the terminal.

The laid-out network is projected through an orbiting camera and drawn with
one glyph per entity: ● low degree, ■ medium, ◆ high. Colours follow faction
and risk; edges are coloured by classification.

Keys:
  w a s d / arrows   pan
  q e / pgup pgdown  zoom in / out (also the mouse wheel)
  r                  frame the whole network
  space              focus the selected entity
  [ ]                step the time window back / forward
  /                  search by name or email
  esc                clear the selection
  ctrl+c             quit

Click selects an entity; double click also focuses it.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExplore(cmd.Context(), src, lf)
		},
	}

	src.register(cmd)
	cmd.Flags().Uint64Var(&lf.seed, "seed", 0, "fix the member scatter (0 = random)")
	cmd.Flags().IntVar(&lf.iterations, "iterations", 0, "relaxation passes (default from config)")

	return cmd
}

func (c *CLI) runExplore(ctx context.Context, flags sourceFlags, lf layoutFlags) error {
	win, err := flags.window()
	if err != nil {
		return err
	}
	src, closeSrc, err := c.openSource(ctx, flags.file)
	if err != nil {
		return err
	}
	defer closeSrc()

	runner := pipeline.NewRunner(nil, nil, c.Logger)
	w, err := runner.ResolveWindow(ctx, src, win)
	if err != nil {
		return err
	}
	opts := c.layoutOptions(lf)
	if err := opts.ValidateForLayout(); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var p *tea.Program
	send := func(msg tea.Msg) {
		if p != nil {
			p.Send(msg)
		}
	}

	cv := newCanvas(func(f frame) { send(frameMsg(f)) })
	cfg := c.settings()
	engine := scene.New(scene.Config{
		Layout:        opts.Layout,
		Lens:          cfg.Lens(),
		FocusDuration: cfg.FocusDuration(),
		Backend:       cv,
	})
	engine.OnEntityHovered(func(e network.Entity) { send(hoverMsg(e)) })
	engine.OnEntityClicked(func(e network.Entity) { send(selectMsg(e)) })

	loop := scene.NewLoop(engine, exploreFrameInterval)
	m := newExploreModel(ctx, loop, cv, src, w, timeSteps(ctx, src, w))
	p = tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	go func() { _ = loop.Run(ctx) }()

	_, err = p.Run()
	return err
}

// timeSteps returns cumulative windows from the start of w (or of the source
// range) to windowSteps evenly spaced ends. It returns nil when the span is
// unknown or empty.
func timeSteps(ctx context.Context, src network.Source, w network.Window) []network.Window {
	start := w.Start
	if start == nil {
		r, ok := src.(network.Ranger)
		if !ok {
			return nil
		}
		first, _, ok, err := r.TimeRange(ctx)
		if err != nil || !ok {
			return nil
		}
		start = &first
	}
	span := w.End.Sub(*start)
	if span <= 0 {
		return nil
	}
	steps := make([]network.Window, windowSteps)
	for i := range steps {
		end := start.Add(span * time.Duration(i+1) / windowSteps)
		steps[i] = network.Between(*start, end)
	}
	steps[windowSteps-1] = network.Between(*start, w.End)
	return steps
}

// =============================================================================
// Messages
// =============================================================================

type (
	frameMsg  frame
	hoverMsg  network.Entity
	selectMsg network.Entity
	loadedMsg struct {
		window network.Window
		err    error
	}
	searchMsg struct {
		query  string
		entity network.Entity
		found  bool
		err    error
	}
	errMsg struct{ err error }
)

// =============================================================================
// Model
// =============================================================================

type exploreModel struct {
	ctx    context.Context
	loop   *scene.Loop
	canvas *canvas
	src    network.Source

	width, height int
	frame         frame

	window  network.Window
	steps   []network.Window
	step    int
	loading bool

	hovered  *network.Entity
	selected *network.Entity

	searching bool
	query     string
	status    string

	lastClick    time.Time
	lastClickPos [2]int
}

func newExploreModel(ctx context.Context, loop *scene.Loop, cv *canvas, src network.Source, w network.Window, steps []network.Window) exploreModel {
	return exploreModel{
		ctx:    ctx,
		loop:   loop,
		canvas: cv,
		src:    src,
		window: w,
		steps:  steps,
		step:   len(steps) - 1,
	}
}

func (m exploreModel) Init() tea.Cmd {
	return m.load(m.window)
}

// do runs fn on the scene loop without blocking the UI.
func (m exploreModel) do(fn func(*scene.Engine)) tea.Cmd {
	return func() tea.Msg {
		if err := m.loop.Do(m.ctx, fn); err != nil {
			return errMsg{err}
		}
		return nil
	}
}

// load fetches and lays out w off the UI goroutine.
func (m exploreModel) load(w network.Window) tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{window: w, err: m.loop.Fetch(m.ctx, m.src, w)}
	}
}

func (m exploreModel) search(query string) tea.Cmd {
	return func() tea.Msg {
		ents, err := searchSource(m.ctx, m.src, query, 1)
		if err != nil || len(ents) == 0 {
			return searchMsg{query: query, err: err}
		}
		return searchMsg{query: query, entity: ents[0], found: true}
	}
}

func (m exploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		cols, rows := msg.Width, max(msg.Height-chromeLines, 1)
		cv := m.canvas
		return m, m.do(func(e *scene.Engine) {
			cv.resize(cols, rows)
			e.Resize(viewport(cols, rows))
		})

	case frameMsg:
		m.frame = frame(msg)
		return m, nil

	case hoverMsg:
		e := network.Entity(msg)
		m.hovered = &e
		return m, nil

	case selectMsg:
		e := network.Entity(msg)
		m.selected = &e
		m.status = ""
		return m, nil

	case loadedMsg:
		m.loading = false
		if msg.err != nil {
			m.status = "load failed: " + msg.err.Error()
			return m, nil
		}
		m.window = msg.window
		m.hovered, m.selected = nil, nil
		return m, nil

	case searchMsg:
		if msg.err != nil {
			m.status = "search failed: " + msg.err.Error()
			return m, nil
		}
		if !msg.found {
			m.status = fmt.Sprintf("no match for %q", msg.query)
			return m, nil
		}
		ent := msg.entity
		m.selected = &ent
		m.status = ""
		return m, m.do(func(e *scene.Engine) {
			if e.Select(ent.ID) {
				e.HighlightEntity(ent.ID, true)
				e.FocusOnEntity(ent.ID)
			}
		})

	case errMsg:
		if m.ctx.Err() != nil {
			return m, tea.Quit
		}
		m.status = msg.err.Error()
		return m, nil

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.KeyMsg:
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m exploreModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "/":
		m.searching, m.query, m.status = true, "", ""
		return m, nil
	case "esc":
		m.selected, m.status = nil, ""
		return m, m.do(func(e *scene.Engine) {
			for _, n := range e.Nodes() {
				e.HighlightEntity(n.ID, false)
			}
			e.Deselect()
		})
	case "[":
		return m.stepWindow(-1)
	case "]":
		return m.stepWindow(1)
	}

	if k, ok := scene.ParseKey(msg.String()); ok {
		return m, m.do(func(e *scene.Engine) { e.KeyPress(k) })
	}
	return m, nil
}

func (m exploreModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.searching, m.query = false, ""
	case tea.KeyEnter:
		m.searching = false
		if q := strings.TrimSpace(m.query); q != "" {
			return m, m.search(q)
		}
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.query += " "
	case tea.KeyRunes:
		m.query += string(msg.Runes)
	}
	return m, nil
}

func (m exploreModel) stepWindow(delta int) (tea.Model, tea.Cmd) {
	if len(m.steps) == 0 {
		return m, nil
	}
	next := min(max(m.step+delta, 0), len(m.steps)-1)
	if next == m.step {
		return m, nil
	}
	m.step = next
	m.loading = true
	return m, m.load(m.steps[next])
}

func (m exploreModel) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	// The canvas starts below the header line.
	row := msg.Y - 1
	if row < 0 || row >= m.height-chromeLines {
		return m, nil
	}
	px := float64(msg.X) + 0.5
	py := (float64(row) + 0.5) * cellAspect

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m, m.do(func(e *scene.Engine) { e.KeyPress(scene.KeyZoomIn) })
	case msg.Button == tea.MouseButtonWheelDown:
		return m, m.do(func(e *scene.Engine) { e.KeyPress(scene.KeyZoomOut) })
	case msg.Action == tea.MouseActionMotion:
		return m, m.do(func(e *scene.Engine) { e.PointerMove(px, py) })
	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		clicks := 1
		now := time.Now()
		pos := [2]int{msg.X, msg.Y}
		if now.Sub(m.lastClick) < doubleClickInterval && pos == m.lastClickPos {
			clicks = 2
		}
		m.lastClick, m.lastClickPos = now, pos
		return m, m.do(func(e *scene.Engine) { e.Click(px, py, clicks) })
	}
	return m, nil
}

// =============================================================================
// View
// =============================================================================

var (
	styleExploreBar  = lipgloss.NewStyle().Foreground(colorGray)
	styleExploreName = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
)

func (m exploreModel) View() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteByte('\n')

	body := m.frame.view
	if body == "" {
		body = StyleDim.Render("laying out…")
	}
	b.WriteString(body)

	// Pad short frames so the footer stays on the last line.
	if lines := strings.Count(body, "\n") + 1; lines < m.height-chromeLines {
		b.WriteString(strings.Repeat("\n", m.height-chromeLines-lines))
	}
	b.WriteByte('\n')
	b.WriteString(m.footer())
	return b.String()
}

func (m exploreModel) header() string {
	parts := []string{
		StyleTitle.Render(appName),
		formatWindow(m.window),
		fmt.Sprintf("%d entities · %d relationships", m.frame.nodes, m.frame.edges),
	}
	if len(m.steps) > 0 {
		parts = append(parts, fmt.Sprintf("step %d/%d", m.step+1, len(m.steps)))
	}
	if m.loading {
		parts = append(parts, StyleHighlight.Render("loading…"))
	}
	return styleExploreBar.Render(strings.Join(parts, "  "))
}

func (m exploreModel) footer() string {
	switch {
	case m.searching:
		return StyleHighlight.Render("/") + m.query + StyleDim.Render("▏")
	case m.status != "":
		return StyleWarning.Render(m.status)
	case m.selected != nil:
		return describeEntity(*m.selected)
	case m.hovered != nil:
		return describeEntity(*m.hovered)
	}
	return StyleDim.Render("wasd pan · q/e zoom · r reset · click select · / search · [ ] time · ctrl+c quit")
}

func describeEntity(e network.Entity) string {
	parts := []string{
		styleExploreName.Render(e.DisplayName()),
		"faction " + e.FactionOrNone(),
		"risk " + e.Risk(),
	}
	if e.Email != "" {
		parts = append(parts, e.Email)
	}
	return strings.Join(parts, styleExploreBar.Render(" · "))
}
