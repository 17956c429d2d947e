package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
)

// layoutCommand creates the layout command for computing 3D layouts.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		src    sourceFlags
		lf     layoutFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "layout [snapshot.json]",
		Short: "Compute a 3D layout from a snapshot or the configured source",
		Long: `Compute a 3D layout from a snapshot or the configured source.

Entities are grouped into clusters of equal faction, dominant relationship
type and degree bucket. Clusters are placed on a sphere and members are
relaxed with a force-directed pass. The output is a layout.json file that
can be rendered with 'visualize'.

Layouts with a fixed --seed are cached locally; random layouts never are.`,
		Args:              cobra.MaximumNArgs(1),
		ValidArgsFunction: completeJSONFiles,
		RunE: func(cmd *cobra.Command, args []string) error {
			input := ""
			if len(args) == 1 {
				input = args[0]
			}
			return c.runLayout(cmd.Context(), input, src, lf, output)
		},
	}

	src.register(cmd)
	lf.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <input>.layout.json or layout.json)")

	return cmd
}

// layoutOptions merges the config file with command-line overrides.
func (c *CLI) layoutOptions(lf layoutFlags) pipeline.Options {
	cfg := c.settings()
	opts := pipeline.Options{
		Layout:  cfg.Layout,
		Lens:    cfg.Lens(),
		Refresh: lf.refresh,
		Logger:  c.Logger,
	}
	if lf.seed != 0 {
		opts.Layout.Seed = lf.seed
	}
	if lf.iterations != 0 {
		opts.Layout.Iterations = lf.iterations
	}
	return opts
}

// runLayout loads or fetches the snapshot, computes the layout, and writes output.
func (c *CLI) runLayout(ctx context.Context, input string, flags sourceFlags, lf layoutFlags, output string) error {
	runner, err := c.newRunner(ctx, lf.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	opts := c.layoutOptions(lf)
	if opts.Window, err = flags.window(); err != nil {
		return err
	}

	spinner := newSpinnerWithContext(ctx, "Fetching snapshot...")
	spinner.Start()

	var snap graph.Snapshot
	if input != "" {
		snap, err = graph.ReadSnapshotFile(input)
	} else {
		snap, err = c.fetch(ctx, runner, flags.file, opts)
	}
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return err
	}

	spinner.SetMessage(fmt.Sprintf("Laying out %d entities...", len(snap.Entities)))
	l, cacheHit, err := runner.ComputeLayoutWithCacheInfo(ctx, snap, opts)
	if err != nil {
		spinner.StopWithError("Layout failed")
		return fmt.Errorf("compute layout: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	outputPath := output
	if outputPath == "" {
		outputPath = "layout.json"
		if input != "" {
			outputPath = strings.TrimSuffix(input, filepath.Ext(input)) + ".layout.json"
		}
	}

	if err := graph.WriteLayoutFile(l, outputPath); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Layout complete")
	printFile(outputPath)
	if l.Dropped > 0 {
		printWarning("%d relationship(s) reference entities outside the snapshot", l.Dropped)
	}
	printStats(pipeline.Stats{
		EntityCount:       len(snap.Entities),
		RelationshipCount: len(snap.Relationships),
		ClusterCount:      len(l.Clusters),
		Dropped:           l.Dropped,
	}, cacheHit)
	printNewline()
	printNextStep("Render", appName+" visualize "+outputPath)

	return nil
}

// fetch opens the source and reads a snapshot for opts.Window.
func (c *CLI) fetch(ctx context.Context, runner *pipeline.Runner, file string, opts pipeline.Options) (graph.Snapshot, error) {
	src, closeSrc, err := c.openSource(ctx, file)
	if err != nil {
		return graph.Snapshot{}, err
	}
	defer closeSrc()
	snap, err := runner.Fetch(ctx, src, opts)
	if err != nil {
		return graph.Snapshot{}, fmt.Errorf("fetch: %w", err)
	}
	return snap, nil
}
