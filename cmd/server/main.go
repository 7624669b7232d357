// Package main is the entry point for the daily-real server.
//
// Everything here is wiring: read configuration, build the logger, open the
// store, hand the pieces to internal/server. The logic lives under internal/.
package main

import (
	"fmt"
	"os"
)

// Version information set at build time with -ldflags.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	cmd := NewRootCmd()
	cmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
