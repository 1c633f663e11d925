// Package main is the entry point for the threader CLI.
package main

import (
	"fmt"
	"os"

	"github.com/threadkit/bsky-threader/cmd/threader/commands"
)

// Version information (set by the release build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.SetVersion(version, commit, date)

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
