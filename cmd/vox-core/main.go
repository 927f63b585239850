// Package main is the entry point for the vox-core voice session
// coordinator.
package main

import (
	"fmt"
	"os"

	"github.com/voxline/vox-core/cmd/vox-core/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
