// Package cli implements the graphbridge command-line interface.
//
// Commands open a module from the configured store, address one of its
// graphs by ID (such as "main" or "main.helper") and read or edit its nodes.
// Edits are saved back to the store before the command exits.
//
// # Commands
//
//   - code, graphs: print or replace a module's source, list its graphs
//   - nodes, add, remove, move: inspect and edit a graph node by node
//   - render, export, import: draw a graph, or move it in and out as JSON
//   - browse: interactive node browser
//   - serve: HTTP API with live change events
//   - cache: manage the render cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The level
// can also be set in the config file.
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

// done logs msg at debug level along with the elapsed time since progress
// was created, rounded to the millisecond.
// Example output: "Laid out graph (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Debugf("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
