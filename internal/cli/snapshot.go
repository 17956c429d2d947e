package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/graph"
	"github.com/matzehuels/orbitgraph/pkg/pipeline"
)

// snapshotCommand creates the snapshot command for fetching a window of the network.
func (c *CLI) snapshotCommand() *cobra.Command {
	var (
		src    sourceFlags
		output string
	)

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch a time window of the network into a snapshot file",
		Long: `Fetch a time window of the network into a snapshot file.

The snapshot holds the entities and the relationships admitted by the window,
with endpoint names resolved. It can be laid out later with 'layout' or sent
to the HTTP API.

Without --start/--end the whole time range of the source is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSnapshot(cmd.Context(), src, output)
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", "snapshot.json", "output file")

	return cmd
}

func (c *CLI) runSnapshot(ctx context.Context, flags sourceFlags, output string) error {
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
	spinner := newSpinnerWithContext(ctx, "Fetching snapshot...")
	spinner.Start()

	snap, err := runner.Fetch(ctx, src, pipeline.Options{Window: win})
	if err != nil {
		spinner.StopWithError("Fetch failed")
		return fmt.Errorf("fetch: %w", err)
	}
	spinner.Stop()

	if err := graph.WriteSnapshotFile(snap, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Snapshot saved")
	printFile(output)
	printStats(pipeline.Stats{EntityCount: len(snap.Entities), RelationshipCount: len(snap.Relationships)}, false)
	printNewline()
	printNextStep("Lay out", appName+" layout "+output)
	return nil
}
