package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/pipeline"
)

// renderCommand creates the render command, running the complete pipeline.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		src sourceFlags
		lf  layoutFlags
		rf  renderFlags
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Fetch, lay out and render the network in one step",
		Long: `Fetch, lay out and render the network in one step.

This is a shortcut for 'snapshot', 'layout' and 'visualize'. Intermediate
layouts are cached when --seed is set.`,
		Example: `  # Render the whole network to SVG
  orbitgraph render --file people.json

  # Render the network as of a date to SVG and PNG with labels
  orbitgraph render --end 2021-06-01 -f svg,png --labels --seed 7 -o net`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.layoutOptions(lf)
			if err := rf.apply(&opts); err != nil {
				return err
			}
			win, err := src.window()
			if err != nil {
				return err
			}
			opts.Window = win
			return c.runRender(cmd.Context(), src.file, opts, rf.output, lf.noCache)
		},
	}

	src.register(cmd)
	lf.register(cmd)
	rf.register(cmd)

	return cmd
}

func (c *CLI) runRender(ctx context.Context, file string, opts pipeline.Options, output string, noCache bool) error {
	src, closeSrc, err := c.openSource(ctx, file)
	if err != nil {
		return err
	}
	defer closeSrc()

	runner, err := c.newRunner(ctx, noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, "Rendering network...")
	spinner.Start()

	result, err := runner.Execute(ctx, src, opts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return err
	}
	spinner.Stop()

	paths, err := writeArtifacts(result.Artifacts, opts.Formats, basePath(output, appName))
	if err != nil {
		return err
	}

	printSuccess("Rendered %d file(s)", len(paths))
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats, result.CacheInfo.LayoutHit)
	return nil
}
