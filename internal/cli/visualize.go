package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/errors"
	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
)

// renderFlags holds the projection and output flags shared by visualize and render.
type renderFlags struct {
	formats string
	output  string
	width   float64
	height  float64
	labels  bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().Float64Var(&f.width, "width", pipeline.DefaultWidth, "frame width")
	cmd.Flags().Float64Var(&f.height, "height", pipeline.DefaultHeight, "frame height")
	cmd.Flags().BoolVar(&f.labels, "labels", false, "label nodes with entity names")
	_ = cmd.RegisterFlagCompletionFunc("format", completeFormats)
}

// apply copies the render flags into opts and validates the formats and
// frame size.
func (f *renderFlags) apply(opts *pipeline.Options) error {
	opts.Formats = parseFormats(f.formats)
	opts.Width = f.width
	opts.Height = f.height
	opts.Labels = f.labels
	if err := errors.ValidateDimensions(f.width, f.height); err != nil {
		return err
	}
	return pipeline.ValidateFormats(opts.Formats)
}

// visualizeCommand creates the visualize command for rendering from a layout.
func (c *CLI) visualizeCommand() *cobra.Command {
	var (
		rf      renderFlags
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "visualize [layout.json]",
		Short: "Render visualization from a computed layout",
		Long: `Render visualization from a computed layout.

The visualize command takes a layout.json file (produced by 'layout'),
projects it through the stored camera pose and renders it to SVG, PNG, PDF
or Graphviz DOT. The layout contains all positioning information, so this
step is purely about rendering.

Results are cached locally for faster subsequent runs.

Use 'render' as a shortcut to go directly from the source to visual output.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeJSONFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := pipeline.Options{Lens: c.settings().Lens(), Logger: c.Logger}
			if err := rf.apply(&opts); err != nil {
				return err
			}
			return c.runVisualize(cmd.Context(), args[0], opts, rf.output, noCache)
		},
	}

	rf.register(cmd)
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// runVisualize loads the layout and renders it.
func (c *CLI) runVisualize(ctx context.Context, input string, opts pipeline.Options, output string, noCache bool) error {
	l, err := graph.ReadLayoutFile(input)
	if err != nil {
		return fmt.Errorf("load layout %s: %w", input, err)
	}

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d nodes...", len(l.Nodes)))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		spinner.StopWithError("Visualization failed")
		return fmt.Errorf("visualize: %w", err)
	}
	spinner.Stop()

	paths, err := writeArtifacts(artifacts, opts.Formats, basePath(output, strings.TrimSuffix(input, ".layout.json")))
	if err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	if cacheHit {
		printDetail("from cache")
	}
	return nil
}

// =============================================================================
// Output Helpers
// =============================================================================

// basePath derives the base output path. Without an explicit output the
// input's extension is stripped; a known format extension on output is
// stripped too, so "-o graph.svg -f svg,png" writes graph.svg and graph.png.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// writeArtifacts writes one file per format as base.format and returns the
// written paths in format order.
func writeArtifacts(artifacts map[string][]byte, formats []string, base string) ([]string, error) {
	if len(formats) == 0 {
		for f := range artifacts {
			formats = append(formats, f)
		}
		sort.Strings(formats)
	}
	if dir := filepath.Dir(base); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output directory: %w", err)
		}
	}

	paths := make([]string, 0, len(formats))
	for _, f := range formats {
		data, ok := artifacts[f]
		if !ok {
			continue
		}
		path := base + "." + f
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
