package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/orbitgraph/pkg/network"
)

// sourceFlags selects the source and time window of a command.
type sourceFlags struct {
	file  string
	start string
	end   string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "read a JSON database instead of the configured source")
	_ = cmd.MarkFlagFilename("file", "json")
	cmd.Flags().StringVar(&f.start, "start", "", "window start (RFC 3339 or YYYY-MM-DD); requires --end")
	cmd.Flags().StringVar(&f.end, "end", "", "window end; alone it selects relationships valid at that instant")
}

func (f *sourceFlags) window() (*network.Window, error) {
	return parseWindowFlags(f.start, f.end)
}

// layoutFlags exposes the layout parameters users tune most.
type layoutFlags struct {
	seed       uint64
	iterations int
	noCache    bool
	refresh    bool
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Uint64Var(&f.seed, "seed", 0, "fix the member scatter for a reproducible layout (0 = random)")
	cmd.Flags().IntVar(&f.iterations, "iterations", 0, "relaxation passes (default from config)")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "recompute even when cached")
}
