package cli

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
	"github.com/matzehuels/orbitgraph/pkg/source/jsonfile"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg"}},
		{"png", []string{"png"}},
		{"svg, png ,pdf", []string{"svg", "png", "pdf"}},
	}
	for _, tt := range tests {
		if got := parseFormats(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("parseFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestParseWindowFlags(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		wantNil   bool
		wantStart bool
		wantErr   bool
	}{
		{"both empty", "", "", true, false, false},
		{"as of", "", "2023-06-01", false, false, false},
		{"between", "2023-01-01", "2023-06-01", false, true, false},
		{"start without end", "2023-01-01", "", false, false, true},
		{"bad end", "", "yesterday", false, false, true},
		{"bad start", "soon", "2023-06-01", false, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, err := parseWindowFlags(tt.start, tt.end)
			if (err != nil) != tt.wantErr {
				t.Fatalf("error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if (w == nil) != tt.wantNil {
				t.Fatalf("window = %v, wantNil %v", w, tt.wantNil)
			}
			if w != nil && (w.Start != nil) != tt.wantStart {
				t.Errorf("Start = %v, wantStart %v", w.Start, tt.wantStart)
			}
		})
	}
}

func TestCompleteFormats(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{"svg", "png", "pdf", "dot", "json"}},
		{"p", []string{"png", "pdf"}},
		{"svg,", []string{"svg,png", "svg,pdf", "svg,dot", "svg,json"}},
		{"svg,png,p", []string{"svg,png,pdf"}},
		{"gif", nil},
	}
	for _, tt := range tests {
		got, dir := completeFormats(nil, nil, tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("completeFormats(%q) = %v, want %v", tt.in, got, tt.want)
		}
		if dir&cobra.ShellCompDirectiveNoFileComp == 0 {
			t.Errorf("completeFormats(%q) directive = %v, want NoFileComp", tt.in, dir)
		}
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "net.layout", "net"},
		{"out", "net.json", "out"},
		{"out.svg", "net.json", "out"},
		{"out.v2", "net.json", "out.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestRenderFlagsApply(t *testing.T) {
	tests := []struct {
		name    string
		flags   renderFlags
		wantErr errors.Code
	}{
		{"defaults", renderFlags{width: pipeline.DefaultWidth, height: pipeline.DefaultHeight}, ""},
		{"zero width", renderFlags{width: 0, height: 800}, errors.ErrCodeInvalidInput},
		{"too tall", renderFlags{width: 1200, height: 1e9}, errors.ErrCodeInvalidInput},
		{"bad format", renderFlags{formats: "gif", width: 1200, height: 800}, errors.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opts pipeline.Options
			err := tt.flags.apply(&opts)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("apply: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("apply error = %v, want %s", err, tt.wantErr)
			}
		})
	}
}

func TestWriteArtifacts(t *testing.T) {
	base := filepath.Join(t.TempDir(), "sub", "net")
	artifacts := map[string][]byte{"svg": []byte("<svg/>"), "dot": []byte("graph {}")}

	paths, err := writeArtifacts(artifacts, []string{"svg", "png", "dot"}, base)
	if err != nil {
		t.Fatalf("writeArtifacts: %v", err)
	}
	want := []string{base + ".svg", base + ".dot"}
	if !reflect.DeepEqual(paths, want) {
		t.Errorf("paths = %v, want %v", paths, want)
	}
	data, err := os.ReadFile(base + ".svg")
	if err != nil || string(data) != "<svg/>" {
		t.Errorf("svg = %q, %v", data, err)
	}
}

func TestEntityTable(t *testing.T) {
	out := entityTable([]network.Entity{
		{ID: 7, Name: "Ana", Email: "ana@x.example", Faction: "PCC", RiskLevel: "alto"},
		{ID: 8, Name: "Bruno"},
	})
	for _, want := range []string{"ID", "Risk", "Ana", "ana@x.example", "PCC", "high", "Bruno", "none", "low"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestSearchSource(t *testing.T) {
	src := jsonfile.New([]network.Entity{
		{ID: 1, Name: "Ana Silva"},
		{ID: 2, Name: "Bruno"},
		{ID: 3, Name: "Ana Costa"},
	}, nil)

	got, err := searchSource(context.Background(), src, "ana", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("searchSource = %v, want entity 1", got)
	}
}

func TestCountBy(t *testing.T) {
	rels := []network.Relationship{
		{Type: "family"}, {Type: "family"}, {Type: ""},
	}
	got := countBy(rels, network.Relationship.TypeOrUnknown)
	if got["family"] != 2 || len(got) != 2 {
		t.Errorf("countBy = %v", got)
	}
}

func TestFormatWindow(t *testing.T) {
	end := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := formatWindow(network.AsOf(end)); got != "as of 2023-06-01" {
		t.Errorf("formatWindow(as of) = %q", got)
	}
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	if got := formatWindow(network.Between(start, end)); got != "2023-01-01 … 2023-06-01" {
		t.Errorf("formatWindow(between) = %q", got)
	}
}

func TestTimeSteps(t *testing.T) {
	start := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(120 * time.Hour)
	ctx := context.Background()

	steps := timeSteps(ctx, jsonfile.New(nil, nil), network.Between(start, end))
	if len(steps) != windowSteps {
		t.Fatalf("len(steps) = %d, want %d", len(steps), windowSteps)
	}
	for i, s := range steps {
		if s.Start == nil || !s.Start.Equal(start) {
			t.Errorf("steps[%d].Start = %v, want %v", i, s.Start, start)
		}
		if i > 0 && !s.End.After(steps[i-1].End) {
			t.Errorf("steps[%d].End = %v, not after %v", i, s.End, steps[i-1].End)
		}
	}
	if !steps[windowSteps-1].End.Equal(end) {
		t.Errorf("last step ends %v, want %v", steps[windowSteps-1].End, end)
	}

	// Without a start the source range is used; an empty source has none.
	if got := timeSteps(ctx, jsonfile.New(nil, nil), network.AsOf(end)); got != nil {
		t.Errorf("timeSteps(empty source) = %v, want nil", got)
	}
}
