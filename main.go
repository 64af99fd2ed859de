// =============================================================================
// fixtable - Main Entry Point
// =============================================================================
//
// fixtable reformats regression tables exported by Stata's outreg2.
//
// USAGE:
//   fixtable FILE [flags]   - Fix one table
//   fixtable vars           - Print the variable mapping
//   fixtable version        - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : The table pipeline (reader, extract, rows, header,
//                      classify, assemble, validation, fixer, writer)
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/statkit/fixtable/cmd"
)

func main() {
	cmd.Execute()
}
