package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/scene"
	"github.com/matzehuels/orbitgraph/pkg/source/jsonfile"
)

func newTestModel(t *testing.T, steps []network.Window) exploreModel {
	t.Helper()
	src := jsonfile.New([]network.Entity{
		{ID: 1, Name: "Ana", Faction: "PCC"},
		{ID: 2, Name: "Bruno"},
	}, nil)
	cv := newCanvas(nil)
	loop := scene.NewLoop(scene.New(scene.Config{Backend: cv}), 0)
	end := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	m := newExploreModel(context.Background(), loop, cv, src, network.AsOf(end), steps)
	m.width, m.height = 80, 24
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m exploreModel, msg tea.Msg) (exploreModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	em, ok := next.(exploreModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return em, cmd
}

func TestExploreSearch(t *testing.T) {
	m := newTestModel(t, nil)

	m, _ = update(t, m, runes("/"))
	if !m.searching {
		t.Fatal("'/' should start a search")
	}
	m, _ = update(t, m, runes("br"))
	m, _ = update(t, m, runes("x"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyBackspace})
	if m.query != "br" {
		t.Fatalf("query = %q, want %q", m.query, "br")
	}
	if !strings.Contains(m.View(), "/br") {
		t.Error("footer should show the query")
	}

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.searching || cmd == nil {
		t.Fatalf("enter: searching = %v, cmd = %v", m.searching, cmd)
	}
	res, ok := cmd().(searchMsg)
	if !ok || !res.found || res.entity.ID != 2 {
		t.Fatalf("search result = %+v", res)
	}

	m, cmd = update(t, m, res)
	if m.selected == nil || m.selected.ID != 2 || cmd == nil {
		t.Fatalf("selected = %v, cmd = %v", m.selected, cmd)
	}
	if !strings.Contains(m.View(), "Bruno") {
		t.Error("footer should describe the selected entity")
	}
}

func TestExploreSearchNoMatch(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(t, m, searchMsg{query: "zed"})
	if !strings.Contains(m.status, "no match") {
		t.Errorf("status = %q", m.status)
	}

	m, _ = update(t, m, runes("/"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.searching {
		t.Error("esc should leave search mode")
	}
}

func TestExploreStepWindow(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	steps := []network.Window{
		network.Between(start, start.AddDate(0, 1, 0)),
		network.Between(start, start.AddDate(0, 2, 0)),
		network.Between(start, start.AddDate(0, 3, 0)),
	}
	m := newTestModel(t, steps)
	if m.step != 2 {
		t.Fatalf("initial step = %d, want 2", m.step)
	}

	m, cmd := update(t, m, runes("]"))
	if cmd != nil || m.step != 2 {
		t.Errorf("']' at the last step: step = %d, cmd = %v", m.step, cmd)
	}

	m, cmd = update(t, m, runes("["))
	if cmd == nil || m.step != 1 || !m.loading {
		t.Fatalf("'[': step = %d, loading = %v, cmd = %v", m.step, m.loading, cmd)
	}
	if !strings.Contains(m.View(), "step 2/3") {
		t.Error("header should show the step")
	}

	m, _ = update(t, m, loadedMsg{window: steps[1]})
	if m.loading || m.window.End != steps[1].End {
		t.Errorf("after load: loading = %v, window = %v", m.loading, m.window)
	}
}

func TestExploreFrameAndHover(t *testing.T) {
	m := newTestModel(t, nil)
	m, _ = update(t, m, frameMsg{view: "●", nodes: 3, edges: 2})
	if !strings.Contains(m.View(), "3 entities · 2 relationships") {
		t.Errorf("header missing counts:\n%s", m.View())
	}

	m, _ = update(t, m, hoverMsg(network.Entity{ID: 1, Name: "Ana", Faction: "PCC"}))
	if !strings.Contains(m.footer(), "Ana") || !strings.Contains(m.footer(), "faction PCC") {
		t.Errorf("footer = %q", m.footer())
	}
}

func TestExploreKeysQueueInput(t *testing.T) {
	m := newTestModel(t, nil)
	for _, key := range []string{"w", "q", "r"} {
		_, cmd := update(t, m, runes(key))
		if cmd == nil {
			t.Errorf("key %q produced no command", key)
			continue
		}
		if msg := cmd(); msg != nil {
			t.Errorf("key %q: msg = %v, want nil", key, msg)
		}
	}
	if _, cmd := update(t, m, runes("z")); cmd != nil {
		t.Error("unbound key should produce no command")
	}
}

func TestExploreQuit(t *testing.T) {
	m := newTestModel(t, nil)
	_, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("ctrl+c produced no command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("ctrl+c should quit")
	}
}
