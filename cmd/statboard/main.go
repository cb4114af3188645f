// Command statboard queries a statistics dashboard from the terminal: list
// categories and measures, chart measures with label selections, produce
// and open share links, keep saved graphs and serve the HTTP API.
package main

import (
	"fmt"
	"os"
)

// Version information (set at build time).
var Version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
