// =============================================================================
// fixtable - Variable Mapping
// =============================================================================
//
// This module loads the variable mapping that renames Stata variable names
// to display labels. Two formats are supported:
//
//   1. Text (any extension other than .xlsx):
//        log_assets  Log(Assets)
//        roa         ROA
//        dropme
//      The first whitespace-separated token is the source name, the rest of
//      the line is the label. A line with only a source maps to "".
//
//   2. XLSX workbook: see xlsx.go.
//
// TRUNCATION MARKER:
//   A label ending with "--" is cut at its first "--" and trimmed, so that
//   "Firm size -- log of total assets --" becomes "Firm size".
//
// =============================================================================

package varmap

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/statkit/fixtable/internal/reader"
)

// TruncationMarker ends a label that should be cut at its first occurrence.
const TruncationMarker = "--"

// =============================================================================
// MAPPING STRUCTURE
// =============================================================================

// Entry maps one source variable name to its display label.
type Entry struct {
	// Source is the variable name as it appears in the exported table.
	Source string

	// Label is the text substituted for Source. It may contain LaTeX.
	Label string
}

// Mapping is the ordered list of entries. Order matters: entries are applied
// one after another, so an earlier label can be matched by a later source.
type Mapping []Entry

// NewEntry builds an entry, applying the truncation marker to the label.
func NewEntry(source, label string) Entry {
	label = strings.TrimSpace(label)
	if strings.HasSuffix(label, TruncationMarker) {
		label = strings.TrimSpace(strings.SplitN(label, TruncationMarker, 2)[0])
	}
	return Entry{Source: strings.TrimSpace(source), Label: label}
}

// =============================================================================
// LOADING FUNCTIONS
// =============================================================================

// Load reads a mapping file, choosing the format from its extension.
//
// PARAMETERS:
//   - path: The mapping file.
//
// RETURNS:
//   - The mapping in file order.
//   - An error if the file cannot be read or parsed. Callers treat this as
//     non-fatal and continue with an empty mapping.
func Load(path string) (Mapping, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return LoadXLSX(path)
	}

	lines, err := reader.ReadFile(path, "")
	if err != nil {
		return nil, fmt.Errorf("failed to read varfile: %w", err)
	}
	return ParseText(strings.NewReader(strings.Join(lines, "\n")))
}

// ParseText parses the two-column text format.
func ParseText(r io.Reader) (Mapping, error) {
	var mapping Mapping

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		source := strings.Fields(line)[0]
		mapping = append(mapping, NewEntry(source, line[len(source):]))
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to parse varfile: %w", err)
	}
	return mapping, nil
}

// Lookup returns the label for a source name.
func (m Mapping) Lookup(source string) (string, bool) {
	for _, e := range m {
		if e.Source == source {
			return e.Label, true
		}
	}
	return "", false
}
