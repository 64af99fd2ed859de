// =============================================================================
// fixtable - Output Writer
// =============================================================================
//
// This module writes the assembled fragment to its destination:
//   - Standard output (default)
//   - An output file (--output)
//   - The input file itself (--inplace), optionally after a backup copy
//
// File destinations are written atomically through pkg/utils, so a failed
// write never leaves a truncated table behind.
//
// =============================================================================

package writer

import (
	"bytes"
	"fmt"
	"io"

	"github.com/statkit/fixtable/internal/config"
	"github.com/statkit/fixtable/pkg/utils"
)

// Destination describes where the fragment goes. An empty Path means the
// standard output stream.
type Destination struct {
	Path string

	// Backup is set when the file at Path is the input being replaced and a
	// backup copy was requested.
	Backup bool
}

// IsStdout reports whether the destination is the standard output stream.
func (d Destination) IsStdout() bool {
	return d.Path == ""
}

// String returns a printable name for log messages.
func (d Destination) String() string {
	if d.IsStdout() {
		return "<stdout>"
	}
	return d.Path
}

// Resolve picks the destination for one run.
//
// PARAMETERS:
//   - input: The path of the file being fixed.
//   - opts: The run options. InPlace wins over Output; config validation
//     rejects setting both.
func Resolve(input string, opts *config.Options) Destination {
	switch {
	case opts.InPlace:
		return Destination{Path: input, Backup: opts.Backup}
	case opts.Output != "":
		return Destination{Path: opts.Output}
	default:
		return Destination{}
	}
}

// Render joins the lines, terminating each with a newline.
func Render(lines []string) []byte {
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

// Write sends lines to dest. stdout is used when dest is the standard
// output stream.
func Write(lines []string, dest Destination, stdout io.Writer) error {
	data := Render(lines)

	if dest.IsStdout() {
		if _, err := stdout.Write(data); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
		return nil
	}

	if dest.Backup {
		if _, err := utils.BackupFile(dest.Path); err != nil {
			return err
		}
	}

	if err := utils.EnsureParentDir(dest.Path); err != nil {
		return err
	}

	if err := utils.WriteFileAtomic(dest.Path, data); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}
