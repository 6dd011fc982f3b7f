// Package cli implements the blockflow command-line interface.
//
// This package provides commands for laying out and rendering block trees,
// replaying recorded pointer scripts, hosting an interactive canvas over
// HTTP, in the terminal or as MCP tools, and managing snapshots and the
// artifact cache. The CLI is built using cobra and supports verbose logging
// via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - layout: Compute block positions and connectors for a tree file
//   - render: Generate SVG, DOT, JSON, PDF or PNG artifacts
//   - replay: Run an event script and report its outcomes
//   - serve, tui, mcp: Interactive hosts
//   - store: Save, load, list and delete named snapshots
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger
// lives on the [CLI] value shared by every command.
//
// # Example
//
//	import "github.com/matzehuels/blockflow/internal/cli"
//
//	func main() {
//	    c := cli.New(os.Stderr, cli.LogInfo)
//	    if err := c.RootCommand().Execute(); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a charm logger writing to w at level, stamping each
// line with a short wall-clock time such as "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one CLI step. Not for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out flow.yaml (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
