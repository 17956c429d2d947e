// Package pipeline runs the fetch → layout → render pipeline shared by the
// CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: read entities and window-filtered relationships from a source
//  2. Layout: cluster, seed and relax the network into 3D positions
//  3. Render: project the layout and emit SVG, PNG, PDF, DOT or JSON
//
// Each stage can be run independently or as part of the complete pipeline.
//
// # Caching
//
// Layouts are cached by snapshot content hash and layout parameters, but only
// when the seed is fixed: a layout with a random seed is not reproducible and
// is always recomputed. Rendered artifacts are cached by layout content and
// render parameters.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{Formats: []string{"svg"}}
//	opts.Layout.Seed = 42
//	result, err := runner.Execute(ctx, store, opts)
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"encoding/json"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/orbitgraph/pkg/cache"
	"github.com/matzehuels/orbitgraph/pkg/camera"
	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/layout"
	"github.com/matzehuels/orbitgraph/pkg/network"
	"github.com/matzehuels/orbitgraph/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default render width in pixels.
	DefaultWidth = 800.0

	// DefaultHeight is the default render height in pixels.
	DefaultHeight = 600.0

	// DefaultPNGScale is the rasterisation scale for PNG output.
	DefaultPNGScale = 2.0
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	render.FormatSVG:  true,
	render.FormatPNG:  true,
	render.FormatPDF:  true,
	render.FormatDOT:  true,
	render.FormatJSON: true,
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Fetch options. A nil window covers the source's whole time range.
	Window *network.Window `json:"window,omitempty"`

	// Layout options
	Layout  layout.Options `json:"layout"`
	Refresh bool           `json:"refresh,omitempty"`

	// Render options
	Formats []string    `json:"formats,omitempty"`
	Width   float64     `json:"width,omitempty"`
	Height  float64     `json:"height,omitempty"`
	Lens    camera.Lens `json:"lens,omitempty"`
	Labels  bool        `json:"labels,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	Snapshot  graph.Snapshot
	Layout    graph.Layout
	Artifacts map[string][]byte
	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	EntityCount       int
	RelationshipCount int
	ClusterCount      int
	Dropped           int
	FetchTime         time.Duration
	LayoutTime        time.Duration
	RenderTime        time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: svg, png, pdf, dot, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetDefaults fills unset render dimensions, lens and logger.
func (o *Options) SetDefaults() {
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Lens == (camera.Lens{}) {
		o.Lens = camera.DefaultLens()
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForFetch checks the time window.
func (o *Options) ValidateForFetch() error {
	if o.Window == nil {
		return nil
	}
	return errors.ValidateWindow(o.Window.Start, o.Window.End)
}

// ValidateForLayout checks the layout parameters.
func (o *Options) ValidateForLayout() error {
	o.SetDefaults()
	return errors.ValidateIterations(o.Layout.WithDefaults().Iterations)
}

// ValidateForRender checks the requested formats and frame size.
func (o *Options) ValidateForRender() error {
	o.SetDefaults()
	if err := errors.ValidateDimensions(o.Width, o.Height); err != nil {
		return err
	}
	return ValidateFormats(o.Formats)
}

// Viewport returns the render surface size.
func (o *Options) Viewport() camera.Viewport {
	return camera.Viewport{Width: o.Width, Height: o.Height}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	full := o.Layout.WithDefaults()
	params := full
	params.Seed, params.Iterations = 0, 0
	data, _ := json.Marshal(params)
	return cache.LayoutKeyOpts{
		Seed:       full.Seed,
		Iterations: full.Iterations,
		Params:     cache.Hash(data),
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	return cache.ArtifactKeyOpts{
		Format: format,
		Width:  int(o.Width),
		Height: int(o.Height),
		Labels: o.Labels,
		FOV:    o.Lens.FOV,
	}
}
