package nodelink

import (
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/geom"
	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
)

func testLayout() graph.Layout {
	chars := layout.Characteristics{Faction: "PCC", Risk: network.RiskLow, Bucket: layout.BucketLow, DominantType: network.TypeFamily, EmailDomain: network.DomainUnknown}
	return graph.Layout{
		Nodes: []graph.Node{
			{ID: 1, Name: "Ana", Position: geom.V(0, 0, 0), Characteristics: chars},
			{ID: 2, Name: "Bruno", Position: geom.V(5, 0, -5), Characteristics: chars},
			{ID: 3, Name: "Behind", Position: geom.V(0, 0, 100), Characteristics: chars},
		},
		Edges: []graph.Edge{
			{ID: 10, From: 1, To: 2, Type: network.TypeFamily, Classification: network.ClassIntraFaction},
			{ID: 11, From: 1, To: 3, Type: network.TypeFamily},
		},
		Clusters: []graph.Cluster{{ID: 0, Members: []int64{1, 2, 3}}},
		Camera:   camera.Pose{Target: geom.V(0, 0, 0), Eye: geom.V(0, 0, 30)},
	}
}

func TestToDOT(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})

	for _, want := range []string{"graph G {", `"1" [`, `"2" [`, `"1" -- "2"`, "outputorder=edgesfirst"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q", want)
		}
	}
	if strings.Contains(dot, `"3" [`) || strings.Contains(dot, `"1" -- "3"`) {
		t.Error("node behind the camera and its edge should be omitted")
	}
	if strings.Contains(dot, "xlabel") {
		t.Error("labels should be off by default")
	}
}

func TestToDOTCentersTarget(t *testing.T) {
	dot := ToDOT(testLayout(), Options{Viewport: camera.Viewport{Width: 720, Height: 360}})
	// The camera target projects to the viewport centre: (360, 180) px = (5, 2.5) in.
	if !strings.Contains(dot, `pos="5.000,2.500!"`) {
		t.Errorf("ToDOT() target node not pinned at the centre:\n%s", dot)
	}
}

func TestToDOTDepthOrder(t *testing.T) {
	dot := ToDOT(testLayout(), Options{})
	far := strings.Index(dot, `"2" [`)
	near := strings.Index(dot, `"1" [`)
	if far < 0 || near < 0 || far > near {
		t.Errorf("far node at %d should be emitted before near node at %d", far, near)
	}
}

func TestToDOTLabels(t *testing.T) {
	dot := ToDOT(testLayout(), Options{Labels: true})
	if !strings.Contains(dot, `xlabel="Ana"`) {
		t.Error("ToDOT() with Labels missing xlabel")
	}
}

func TestToDOTEmpty(t *testing.T) {
	dot := ToDOT(graph.Layout{}, Options{})
	if !strings.HasPrefix(dot, "graph G {") || !strings.HasSuffix(dot, "}\n") {
		t.Errorf("ToDOT(empty) = %q", dot)
	}
}

func TestWithAlpha(t *testing.T) {
	tests := []struct {
		alpha float64
		want  string
	}{
		{1, "#ff0000ff"},
		{0, "#ff000000"},
		{0.5, "#ff000080"},
		{2, "#ff0000ff"},
	}
	red := testRed()
	for _, tt := range tests {
		if got := withAlpha(red, tt.alpha); got != tt.want {
			t.Errorf("withAlpha(%v) = %q, want %q", tt.alpha, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)
	out := string(normalizeViewBox(in))
	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Errorf("normalizeViewBox without viewBox = %s", got)
	}
}

func testRed() colorful.Color { return colorful.Color{R: 1} }
