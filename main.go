// Package main is the entry point for checkerctl.
package main

import (
	"fmt"
	"os"

	"github.com/checkerctl/checkerctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
