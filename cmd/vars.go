// =============================================================================
// fixtable - Vars Command
// =============================================================================
//
// This file defines the 'vars' command, which prints the variable mapping
// the way fixtable reads it. Useful for checking a mapping file before a run.
//
// COMMAND USAGE:
//   fixtable vars -v vars.xlsx
//
// OUTPUT (one entry per line, tab separated):
//   log_assets	Firm size
//   dropme	<deleted>
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/statkit/fixtable/internal/varmap"
)

// deletedLabel is printed for entries that remove their row.
const deletedLabel = "<deleted>"

// varsCmd represents the 'vars' command.
var varsCmd = &cobra.Command{
	Use:   "vars",
	Short: "Print the variable mapping",
	Long: `Load the variable mapping from --varfile (or the configuration file) and
print each source name with the label it is replaced by. Entries with an empty
label delete the rows they match.`,
	Args: cobra.NoArgs,
	RunE: runVars,
}

func init() {
	rootCmd.AddCommand(varsCmd)
}

func runVars(cmd *cobra.Command, args []string) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if opts.VarFile == "" {
		return errors.New("no variable mapping file given (use --varfile)")
	}

	mapping, err := varmap.Load(opts.VarFile)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	for _, e := range mapping {
		label := e.Label
		if label == "" {
			label = deletedLabel
		}
		fmt.Fprintf(w, "%s\t%s\n", e.Source, label)
	}
	return w.Flush()
}
