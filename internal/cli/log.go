// Package cli implements the orbitgraph command-line interface.
//
// The CLI fetches network snapshots from a JSON file or MongoDB, lays them
// out, renders them, explores them interactively in the terminal and serves
// them over HTTP. It is built using cobra and logs through charmbracelet/log.
//
// # Commands
//
// The main commands are:
//   - snapshot: Fetch a window of the network into a snapshot file
//   - layout: Compute a 3D layout from a source or snapshot file
//   - visualize: Render a layout file to SVG, PNG, PDF or DOT
//   - render: Shortcut for layout followed by visualize
//   - explore: Interactive terminal viewer
//   - serve: HTTP API
//   - import: Load a JSON database into MongoDB
//   - cache, config: Manage local state
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging.
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a new logger with timestamp formatting.
// The logger writes to w and filters messages at the specified level.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress creates a progress tracker that captures the current time as start.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Imported 42 relationships (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
