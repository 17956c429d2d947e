package pipeline

import (
	"context"
	"math"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/orbitgraph/pkg/cache"
	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/source/jsonfile"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func testSource() *jsonfile.Store {
	end := date(2023, 6, 30)
	return jsonfile.New(
		[]network.Entity{
			{ID: 1, Name: "Ana", Faction: "PCC", RiskLevel: "high"},
			{ID: 2, Name: "Bruno", Faction: "PCC"},
			{ID: 3, Name: "Carla"},
		},
		[]network.Relationship{
			{ID: 1, SourceID: 1, TargetID: 2, Type: "criminal_partner", Strength: network.Strength(0.9), Start: date(2023, 1, 1), End: &end},
			{ID: 2, SourceID: 2, TargetID: 3, Type: "family", Start: date(2023, 3, 1)},
			{ID: 3, SourceID: 1, TargetID: 42, Start: date(2024, 1, 1)},
		},
	)
}

// mapCache is an in-memory cache that counts writes.
type mapCache struct {
	mu   sync.Mutex
	data map[string][]byte
	sets int
}

func newMapCache() *mapCache { return &mapCache{data: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	d, ok := c.data[key]
	return d, ok, nil
}

func (c *mapCache) Set(_ context.Context, key string, data []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
	c.sets++
	return nil
}

func (c *mapCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

func (c *mapCache) Close() error { return nil }

var _ cache.Cache = (*mapCache)(nil)

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"pdf", false},
		{"dot", false},
		{"json", false},
		{"invalid", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s", tt.format, errors.GetCode(err))
		}
	}
}

func TestValidateFormats(t *testing.T) {
	if err := ValidateFormats([]string{"svg", "png"}); err != nil {
		t.Errorf("Valid formats should pass: %v", err)
	}

	if err := ValidateFormats([]string{"svg", "invalid"}); err == nil {
		t.Error("Invalid format should fail")
	}

	// Empty slice is valid
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestOptionsSetDefaults(t *testing.T) {
	var opts Options
	opts.SetDefaults()

	if opts.Width != DefaultWidth || opts.Height != DefaultHeight {
		t.Errorf("size = %vx%v, want %vx%v", opts.Width, opts.Height, DefaultWidth, DefaultHeight)
	}
	if opts.Lens.FOV == 0 {
		t.Error("Lens not defaulted")
	}
	if opts.Logger == nil {
		t.Error("Logger not defaulted")
	}

	opts = Options{Width: 100, Height: 50}
	opts.SetDefaults()
	if opts.Width != 100 || opts.Height != 50 {
		t.Errorf("explicit size overwritten: %vx%v", opts.Width, opts.Height)
	}
}

func TestOptionsValidation(t *testing.T) {
	start := date(2024, 1, 1)

	tests := []struct {
		name    string
		opts    Options
		wantErr errors.Code
	}{
		{"defaults", Options{}, ""},
		{"too many iterations", Options{Layout: layoutWithIterations(20000)}, errors.ErrCodeInvalidInput},
		{"inverted window", Options{Window: &network.Window{Start: &start, End: date(2023, 1, 1)}}, errors.ErrCodeInvalidWindow},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"nan width", Options{Width: math.NaN()}, errors.ErrCodeInvalidInput},
		{"infinite height", Options{Height: math.Inf(1)}, errors.ErrCodeInvalidInput},
		{"huge width", Options{Width: 1e9}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.ValidateForFetch()
			if err == nil {
				err = tt.opts.ValidateForLayout()
			}
			if err == nil {
				err = tt.opts.ValidateForRender()
			}
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want code %s", err, tt.wantErr)
			}
		})
	}
}

func TestLayoutKeyOpts(t *testing.T) {
	a := Options{}
	a.Layout.Seed = 7
	b := a
	b.Layout.Repulsion = 123

	ka, kb := a.LayoutKeyOpts(), b.LayoutKeyOpts()
	if ka.Seed != 7 {
		t.Errorf("Seed = %d, want 7", ka.Seed)
	}
	if ka.Iterations == 0 {
		t.Error("Iterations not defaulted")
	}
	if ka.Params == kb.Params {
		t.Error("different parameters should hash differently")
	}

	// Explicit defaults hash like omitted ones.
	c := a
	c.Layout.Repulsion = c.Layout.WithDefaults().Repulsion
	if ka.Params != c.LayoutKeyOpts().Params {
		t.Error("explicit default changed the key")
	}
}

func TestResolveWindow(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)
	r.now = func() time.Time { return date(2025, 5, 5) }

	// Explicit windows are returned unchanged.
	explicit := network.AsOf(date(2023, 2, 1))
	w, err := r.ResolveWindow(ctx, testSource(), &explicit)
	if err != nil || !w.End.Equal(explicit.End) || w.Start != nil {
		t.Errorf("explicit = %+v, %v", w, err)
	}

	// Rangers cover their whole span.
	w, err = r.ResolveWindow(ctx, testSource(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.Start == nil || !w.Start.Equal(date(2023, 1, 1)) || !w.End.Equal(date(2024, 1, 1)) {
		t.Errorf("range window = %v..%v", w.Start, w.End)
	}

	// An empty store falls back to now.
	w, err = r.ResolveWindow(ctx, jsonfile.New(nil, nil), nil)
	if err != nil {
		t.Fatal(err)
	}
	if w.Start != nil || !w.End.Equal(date(2025, 5, 5)) {
		t.Errorf("fallback window = %+v", w)
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	opts := Options{
		Window:  &network.Window{End: date(2023, 4, 1)},
		Formats: []string{"json", "dot"},
	}
	opts.Layout.Seed = 42

	res, err := r.Execute(ctx, testSource(), opts)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if res.Stats.EntityCount != 3 {
		t.Errorf("EntityCount = %d, want 3", res.Stats.EntityCount)
	}
	// As of April 2023 both of the first two relationships are valid.
	if res.Stats.RelationshipCount != 2 {
		t.Errorf("RelationshipCount = %d, want 2", res.Stats.RelationshipCount)
	}
	if len(res.Layout.Nodes) != 3 {
		t.Errorf("len(Nodes) = %d, want 3", len(res.Layout.Nodes))
	}
	if res.Layout.Seed != 42 {
		t.Errorf("Seed = %d, want 42", res.Layout.Seed)
	}
	if res.Layout.SnapshotID != res.Snapshot.ID {
		t.Error("layout not linked to snapshot")
	}
	if res.Layout.Camera.Eye == res.Layout.Camera.Target {
		t.Error("camera not framed")
	}
	if !strings.HasPrefix(string(res.Artifacts["dot"]), "graph G {") {
		t.Errorf("dot artifact = %.40q", res.Artifacts["dot"])
	}
	if !strings.Contains(string(res.Artifacts["json"]), `"nodes"`) {
		t.Error("json artifact missing nodes")
	}
}

func TestExecuteDropsDanglingRelationships(t *testing.T) {
	opts := Options{Window: &network.Window{End: date(2024, 2, 1)}}
	opts.Layout.Seed = 1

	res, err := NewRunner(nil, nil, nil).Execute(context.Background(), testSource(), opts)
	if err != nil {
		t.Fatal(err)
	}
	// Relationship 3 points at an unknown entity.
	if res.Stats.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", res.Stats.Dropped)
	}
	if len(res.Artifacts) != 0 {
		t.Errorf("no formats requested, got %d artifacts", len(res.Artifacts))
	}
}

func TestLayoutCaching(t *testing.T) {
	ctx := context.Background()
	c := newMapCache()
	r := NewRunner(c, nil, nil)
	src := testSource()

	opts := Options{Window: &network.Window{End: date(2023, 4, 1)}}
	opts.Layout.Seed = 42

	snap, err := r.Fetch(ctx, src, opts)
	if err != nil {
		t.Fatal(err)
	}

	first, hit, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	if err != nil || hit {
		t.Fatalf("first: hit=%v err=%v", hit, err)
	}
	second, hit, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	if err != nil || !hit {
		t.Fatalf("second: hit=%v err=%v", hit, err)
	}
	if first.Nodes[0].Position != second.Nodes[0].Position {
		t.Error("cached layout differs")
	}

	// Refresh bypasses the read but still stores.
	opts.Refresh = true
	if _, hit, _ := r.ComputeLayoutWithCacheInfo(ctx, snap, opts); hit {
		t.Error("refresh should not hit")
	}

	// Random seeds are never cached.
	sets := c.sets
	random := Options{}
	if _, hit, _ := r.ComputeLayoutWithCacheInfo(ctx, snap, random); hit {
		t.Error("random seed should not hit")
	}
	if _, hit, _ := r.ComputeLayoutWithCacheInfo(ctx, snap, random); hit {
		t.Error("random seed should not hit")
	}
	if c.sets != sets {
		t.Errorf("random layouts were cached (%d sets)", c.sets-sets)
	}
}

func TestSameSeedSameLayout(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	opts := Options{}
	opts.Layout.Seed = 9

	a, err := r.Execute(ctx, testSource(), opts)
	if err != nil {
		t.Fatal(err)
	}
	b, err := r.Execute(ctx, testSource(), opts)
	if err != nil {
		t.Fatal(err)
	}
	for i := range a.Layout.Nodes {
		if a.Layout.Nodes[i].Position != b.Layout.Nodes[i].Position {
			t.Fatalf("node %d differs: %v vs %v", i, a.Layout.Nodes[i].Position, b.Layout.Nodes[i].Position)
		}
	}
}

func TestRenderCaching(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(newMapCache(), nil, nil)

	opts := Options{Formats: []string{"dot"}}
	opts.Layout.Seed = 3
	res, err := r.Execute(ctx, testSource(), opts)
	if err != nil {
		t.Fatal(err)
	}
	if res.CacheInfo.RenderHit {
		t.Error("first render should miss")
	}

	// A recomputed layout gets a new ID but the same content.
	l := res.Layout
	l.ID = "other"
	arts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Error("second render should hit")
	}
	if string(arts["dot"]) != string(res.Artifacts["dot"]) {
		t.Error("cached artifact differs")
	}

	opts.Labels = true
	if _, hit, _ := r.RenderWithCacheInfo(ctx, l, opts); hit {
		t.Error("labels should change the key")
	}
}

func TestFetchSourceError(t *testing.T) {
	_, err := NewRunner(nil, nil, nil).Execute(context.Background(), failingSource{}, Options{})
	if !errors.Is(err, errors.ErrCodeSourceUnavailable) {
		t.Errorf("error = %v, want SOURCE_UNAVAILABLE", err)
	}
}

type failingSource struct{}

func (failingSource) ListEntities(context.Context) ([]network.Entity, error) {
	return nil, errors.New(errors.ErrCodeSourceUnavailable, "down")
}

func (failingSource) ListRelationships(context.Context, network.Window) ([]network.Relationship, error) {
	return nil, errors.New(errors.ErrCodeSourceUnavailable, "down")
}

func layoutWithIterations(n int) layout.Options {
	return layout.Options{Iterations: n}
}
