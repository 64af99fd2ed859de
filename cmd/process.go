// =============================================================================
// fixtable - Fix Command
// =============================================================================
//
// This file holds the root command's run function.
//
// PROCESSING PIPELINE:
//   1. Load configuration and apply explicitly set flags
//   2. Run the fixer on the input file
//   3. Write the fragment to stdout, --output, or the input file
//
// =============================================================================

package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/statkit/fixtable/internal/config"
	"github.com/statkit/fixtable/internal/fixer"
	"github.com/statkit/fixtable/internal/writer"
)

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// runFix fixes the table named by args[0].
func runFix(cmd *cobra.Command, args []string) error {
	input := args[0]

	// =========================================================================
	// STEP 1: LOAD CONFIGURATION
	// =========================================================================

	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}

	logger := fixer.NewLogger(cmd.ErrOrStderr(), opts.Debug)

	// =========================================================================
	// STEP 2: FIX THE TABLE
	// =========================================================================

	result, err := fixer.New(opts).WithLogger(logger).Run(cmd.Context(), input)
	if err != nil {
		return err
	}

	stats := result.Stats
	logger.Debug("Read %d lines, dropped %d, moved %d control and %d constant pair(s), skipped %d omitted",
		stats.LinesRead, stats.LinesDropped, stats.Controls, stats.Constants, stats.Omitted)

	// =========================================================================
	// STEP 3: WRITE OUTPUT
	// =========================================================================

	dest := writer.Resolve(input, opts)
	if err := writer.Write(result.Lines, dest, cmd.OutOrStdout()); err != nil {
		return err
	}

	logger.Debug("Wrote %d lines to %s", stats.LinesWritten, dest)
	return nil
}

// =============================================================================
// CONFIGURATION
// =============================================================================

// loadOptions reads the configuration file and overrides it with every flag
// that was set on the command line.
func loadOptions(cmd *cobra.Command) (*config.Options, error) {
	opts, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	set := func(name string, apply func()) {
		if flags.Lookup(name) != nil && flags.Changed(name) {
			apply()
		}
	}

	set("varfile", func() { opts.VarFile = varFile })
	set("encoding", func() { opts.Encoding = encoding })
	set("debug", func() { opts.Debug = debug })
	set("output", func() { opts.Output = output })
	set("inplace", func() { opts.InPlace = inPlace })
	set("backup", func() { opts.Backup = backup })
	set("controls", func() { opts.Controls = strings.Fields(controls) })
	set("nocontrol", func() { opts.NoControl = noControl })
	set("nocontrol-n", func() { opts.ControlLimit = controlLimit })
	set("stat-label", func() { opts.StatLabel = statLabel })
	set("feorder", func() { opts.FEOrder = feOrder })
	set("dep", func() { opts.Dep = dep })
	set("cline", func() { opts.Cline = cline })
	set("noheader", func() { opts.NoHeader = noHeader })
	set("myheader", func() { opts.MyHeader = myHeader })
	set("no-column-num", func() { opts.NoColumnNum = noColumnNum })
	set("condensed", func() { opts.Condensed = condensed })
	set("meta", func() { opts.Meta = meta })
	set("strict", func() { opts.Strict = strict })

	opts.Normalize()
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	return opts, nil
}
