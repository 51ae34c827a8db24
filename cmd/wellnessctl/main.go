// Package main is wellnessctl, a command line front end over the analytics
// core. It reads a series file (JSON or YAML) and prints JSON results.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
