// =============================================================================
// fixtable - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Called with a file
// argument, the root command fixes that table; the subcommands are helpers.
//
// COBRA CLI STRUCTURE:
//   rootCmd (fixtable FILE)
//   ├── varsCmd (fixtable vars)
//   └── versionCmd (fixtable version)
//
// CONFIGURATION:
//   Options come from .fixtable.yaml (or --config) and are overridden by
//   any flag set on the command line.
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file. Empty means
// .fixtable.yaml in the working directory, if it exists.
var cfgFile string

// Flag values. They are copied into config.Options only when the flag was
// set explicitly, so YAML values survive unset flags.
var (
	varFile      string
	encoding     string
	debug        bool
	strict       bool
	output       string
	inPlace      bool
	backup       bool
	controls     string
	noControl    bool
	controlLimit int
	statLabel    string
	feOrder      bool
	dep          string
	cline        string
	noHeader     bool
	myHeader     bool
	noColumnNum  bool
	condensed    bool
	meta         bool
)

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd fixes one exported table.
var rootCmd = &cobra.Command{
	Use:   "fixtable FILE",
	Short: "fixtable - Reformat outreg2 LaTeX regression tables",
	Long: `fixtable rewrites a LaTeX regression table exported by Stata's outreg2 into
a tabular body ready to be \input into a paper.

What it does:
  - Renames variables through a mapping file (.txt or .xlsx)
  - Moves control variables and the constant below the main coefficients
  - Splits significance stars into their own column
  - Rebuilds the header with \multicolumn groups and \cline rules
  - Orders fixed effects and summary statistics at the bottom

Example Usage:
  fixtable table1.tex                          # Print the fixed table
  fixtable table1.tex -v vars.txt -o out.tex   # Rename variables, write a file
  fixtable table1.tex -i -c "size age"         # Fix in place, move controls down`,

	Args:          cobra.ExactArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,

	RunE: runFix,
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the CLI. This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	// ==========================================================================
	// PERSISTENT FLAGS
	// ==========================================================================
	// Shared with the vars subcommand.

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "YAML configuration file (default .fixtable.yaml if present)")
	pf.StringVarP(&varFile, "varfile", "v", "", "Variable mapping file (.txt or .xlsx)")
	pf.StringVar(&encoding, "encoding", "", "Input encoding: auto, utf-8, windows-1252, utf-16")
	pf.BoolVar(&debug, "debug", false, "Enable debug logging")

	// ==========================================================================
	// LOCAL FLAGS
	// ==========================================================================

	f := rootCmd.Flags()

	// Output.
	f.StringVarP(&output, "output", "o", "", "Output file (default standard output)")
	f.BoolVarP(&inPlace, "inplace", "i", false, "Replace the input file")
	f.BoolVar(&backup, "backup", false, "Keep a FILE.bak copy when replacing the input")

	// Rows.
	f.StringVarP(&controls, "controls", "c", "", "Whitespace-separated control variable patterns")
	f.BoolVar(&noControl, "nocontrol", false, "Drop control rows beyond the first --nocontrol-n pairs")
	f.IntVar(&controlLimit, "nocontrol-n", 0, "Number of control pairs kept with --nocontrol")
	f.StringVar(&statLabel, "stat-label", "", "Label prefix of an additional summary statistic (default \"Mean of\")")
	f.BoolVar(&feOrder, "feorder", false, "Swap the last two fixed-effects rows")

	// Header.
	f.StringVar(&dep, "dep", "", "Label for the first header cell")
	f.StringVar(&cline, "cline", "", "Header rule ranges, e.g. 2-5,6-9")
	f.BoolVar(&noHeader, "noheader", false, "Suppress the header row")
	f.BoolVar(&myHeader, "myheader", false, "Suppress the header, the leading rule and column numbers")
	f.BoolVar(&noColumnNum, "no-column-num", false, "Drop the column-number row")

	// Layout.
	f.BoolVar(&condensed, "condensed", false, "No spacer row before the summary statistics")
	f.BoolVarP(&meta, "meta", "m", false, "Add a \"last update\" comment line")

	// Checks.
	f.BoolVar(&strict, "strict", false, "Fail without writing when the output check reports anything")
}
