// Command megaflow boots the worker cluster and the control ingestion
// service described in SPEC_FULL.md: it is the ambient-stack CLI
// that wires the core migration protocol (pkg/stateful, pkg/runtime) to a
// real configuration file, a structured logger, OpenTelemetry tracing, and
// Prometheus metrics.
package main

import (
	"fmt"
	"os"

	"github.com/streamshard/megaflow/cmd/megaflow/commands"
)

// Build-time variables injected via ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
