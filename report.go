package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
)

var (
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	red    = color.New(color.FgRed, color.Bold)
)

// printSummary writes one line per result and returns the number of errors
func printSummary(w io.Writer, results []ProcessingResult) int {
	var succeeded, skipped, failed int
	for _, r := range results {
		switch r.Status {
		case StatusSuccess:
			succeeded++
			if r.Filename == stdoutDirectory {
				green.Fprintf(w, "✓ %s\n", r.Source)
			} else {
				green.Fprintf(w, "✓ %s -> %s\n", r.Source, r.Filename)
			}
		case StatusSkipped:
			skipped++
			yellow.Fprintf(w, "- %s (%s)\n", r.Source, r.Reason)
		case StatusError:
			failed++
			red.Fprintf(w, "✗ %s: %v\n", r.Source, r.Error)
		}
	}
	fmt.Fprintf(w, "\n%d rendered, %d skipped, %d failed\n", succeeded, skipped, failed)
	return failed
}
