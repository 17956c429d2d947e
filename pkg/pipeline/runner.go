package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbitgraph/pkg/cache"
	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/observability"
	"github.com/matzehuels/orbitgraph/pkg/render"
	"github.com/matzehuels/orbitgraph/pkg/render/nodelink"
	"github.com/matzehuels/orbitgraph/pkg/scene"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	// TTL overrides cache.TTLLayout and cache.TTLArtifact when positive.
	TTL time.Duration

	// now is replaced in tests.
	now func() time.Time
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
		now:    time.Now,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, src network.Source, opts Options) (*Result, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Fetch
	fetchStart := time.Now()
	snap, err := r.Fetch(ctx, src, opts)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	result.Snapshot = snap
	result.Stats.FetchTime = time.Since(fetchStart)
	result.Stats.EntityCount = len(snap.Entities)
	result.Stats.RelationshipCount = len(snap.Relationships)

	r.Logger.Info("fetched snapshot",
		"source", network.NameOf(src),
		"entities", len(snap.Entities),
		"relationships", len(snap.Relationships),
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	layoutStart := time.Now()
	l, layoutHit, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.Stats.ClusterCount = len(l.Clusters)
	result.Stats.Dropped = l.Dropped
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"clusters", len(l.Clusters),
		"dropped", l.Dropped,
		"cached", layoutHit,
		"duration", result.Stats.LayoutTime)

	if len(opts.Formats) == 0 {
		return result, nil
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// ResolveWindow returns the window to fetch with. An explicit window is
// returned unchanged; otherwise the source's full time range is used when it
// reports one, falling back to "as of now".
func (r *Runner) ResolveWindow(ctx context.Context, src network.Source, w *network.Window) (network.Window, error) {
	if w != nil {
		return *w, nil
	}
	if rg, ok := src.(network.Ranger); ok {
		lo, hi, ok, err := rg.TimeRange(ctx)
		if err != nil {
			return network.Window{}, err
		}
		if ok {
			return network.Between(lo, hi), nil
		}
	}
	return network.AsOf(r.clock()), nil
}

// Fetch reads a snapshot from src for the options' window.
func (r *Runner) Fetch(ctx context.Context, src network.Source, opts Options) (graph.Snapshot, error) {
	if err := opts.ValidateForFetch(); err != nil {
		return graph.Snapshot{}, err
	}
	w, err := r.ResolveWindow(ctx, src, opts.Window)
	if err != nil {
		return graph.Snapshot{}, err
	}
	entities, rels, err := scene.FetchSnapshot(ctx, src, w)
	if err != nil {
		return graph.Snapshot{}, err
	}
	return graph.NewSnapshot(entities, rels, &w), nil
}

// ComputeLayoutWithCacheInfo lays out snap and returns cache hit info.
// Only layouts with a fixed seed are cached: with a random seed every call
// produces a fresh arrangement.
func (r *Runner) ComputeLayoutWithCacheInfo(ctx context.Context, snap graph.Snapshot, opts Options) (graph.Layout, bool, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, false, err
	}
	r.applyLogger(&opts)

	cacheable := opts.Layout.Deterministic() && !opts.Refresh
	cacheKey := r.Keyer.LayoutKey(snap.Hash(), opts.LayoutKeyOpts())

	if cacheable {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			cached, err := graph.UnmarshalLayout(data)
			if err == nil {
				observability.Cache().OnCacheHit(ctx, cacheKey)
				cached.SnapshotID = snap.ID
				return cached, true, nil
			}
			opts.Logger.Debug("discarding unreadable cached layout", "key", cacheKey, "error", err)
		}
		observability.Cache().OnCacheMiss(ctx, cacheKey)
	}

	ld := scene.PrepareLoad(ctx, 0, snap.Entities, snap.Relationships, opts.Layout)
	pose, _ := camera.FrameAll(ld.Result.Points())
	l := graph.FromResult(snap, ld.Result, opts.Layout, pose)

	if opts.Layout.Deterministic() {
		if data, err := graph.MarshalLayout(l); err == nil {
			if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLLayout)); err == nil {
				observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
			}
		}
	}

	return l, false, nil
}

// ComputeLayout is a convenience wrapper that calls ComputeLayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) ComputeLayout(ctx context.Context, snap graph.Snapshot, opts Options) (graph.Layout, error) {
	l, _, err := r.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	layoutHash, err := contentHash(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	allCached := !opts.Refresh
	for _, format := range opts.Formats {
		if !allCached {
			break
		}
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, cacheKey)
		if err != nil || !hit {
			observability.Cache().OnCacheMiss(ctx, cacheKey)
			allCached = false
			break
		}
		observability.Cache().OnCacheHit(ctx, cacheKey)
		artifacts[format] = data
	}
	if allCached && len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := RenderLayout(ctx, l, opts)
	if err != nil {
		return nil, false, err
	}

	for format, data := range rendered {
		cacheKey := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, cacheKey, data, r.ttl(cache.TTLArtifact)); err == nil {
			observability.Cache().OnCacheSet(ctx, cacheKey, len(data))
		}
	}

	return rendered, false, nil
}

// Render is a convenience wrapper that calls RenderWithCacheInfo and discards the cache hit info.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

// RenderLayout renders l to every requested format without caching.
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[string][]byte, error) {
	opts.SetDefaults()
	out := make(map[string][]byte, len(opts.Formats))

	var dot string
	dotOnce := func() string {
		if dot == "" {
			dot = nodelink.ToDOT(l, nodelink.Options{
				Lens:     opts.Lens,
				Viewport: opts.Viewport(),
				Labels:   opts.Labels,
			})
		}
		return dot
	}

	for _, format := range opts.Formats {
		hooks := observability.Pipeline()
		hooks.OnRenderStart(ctx, format)
		start := time.Now()

		var (
			data []byte
			err  error
		)
		switch format {
		case render.FormatJSON:
			data, err = graph.MarshalLayout(l)
		case render.FormatDOT:
			data = []byte(dotOnce())
		case render.FormatSVG:
			data, err = nodelink.RenderSVG(ctx, dotOnce())
		case render.FormatPNG:
			data, err = nodelink.RenderPNG(ctx, dotOnce(), DefaultPNGScale)
		case render.FormatPDF:
			data, err = nodelink.RenderPDF(ctx, dotOnce())
		default:
			err = ValidateFormat(format)
		}

		hooks.OnRenderComplete(ctx, format, len(data), time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", format, err)
		}
		out[format] = data
	}
	return out, nil
}

// contentHash hashes a layout with its random ID cleared so equal layouts
// share rendered artifacts.
func contentHash(l graph.Layout) (string, error) {
	l.ID = ""
	l.SnapshotID = ""
	data, err := graph.MarshalLayout(l)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) ttl(def time.Duration) time.Duration {
	if r.TTL > 0 {
		return r.TTL
	}
	return def
}

func (r *Runner) clock() time.Time {
	if r.now == nil {
		return time.Now()
	}
	return r.now()
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
