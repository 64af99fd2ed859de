// =============================================================================
// fixtable - Shared Types
// =============================================================================
//
// This package contains shared types used across multiple modules to avoid
// import cycles. Types defined here are used by:
//   - extract
//   - classify
//   - assemble
//   - fixer
//
// =============================================================================

package types

import "strings"

// =============================================================================
// TABLE TOKENS
// =============================================================================

const (
	// Separator divides one cell from the next.
	Separator = "&"

	// Terminator ends a row.
	Terminator = `\\`

	// Rule is the horizontal line command placed between table sections.
	Rule = `\hline`
)

// =============================================================================
// ROW BUCKETS
// =============================================================================

// Bucket is the semantic role assigned to a line during one processing pass.
type Bucket int

const (
	// Header is the column/variable-name header block.
	Header Bucket = iota

	// Main holds coefficient and standard-error rows plus structural rules.
	Main

	// Annotation holds free-text lines with no numeric content.
	Annotation

	// FixedEffects holds fixed-effects and "controls included" indicator rows.
	FixedEffects

	// SummaryStats holds observation counts, R-squared and test statistics.
	SummaryStats

	// Controls holds extracted control-variable pairs.
	Controls

	// Constant holds the extracted constant-term pair.
	Constant
)

// String returns the bucket name used in logs.
func (b Bucket) String() string {
	switch b {
	case Header:
		return "header"
	case Main:
		return "main"
	case Annotation:
		return "annotation"
	case FixedEffects:
		return "fixed-effects"
	case SummaryStats:
		return "summary-stats"
	case Controls:
		return "controls"
	case Constant:
		return "constant"
	default:
		return "unknown"
	}
}

// =============================================================================
// PAIRS
// =============================================================================

// Pair is a coefficient line together with the standard-error line below it.
type Pair struct {
	// Coef is the line carrying the variable label and the coefficients.
	Coef string

	// SE is the line carrying the standard errors. It may be empty when the
	// coefficient line was the last line of the input.
	SE string
}

// Lines returns the non-empty lines of the pair in output order.
func (p Pair) Lines() []string {
	if p.SE == "" {
		return []string{p.Coef}
	}
	return []string{p.Coef, p.SE}
}

// =============================================================================
// LINE HELPERS
// =============================================================================

// Cells splits a line into its cells. The row terminator and any trailing
// rule are removed first; an escaped separator (\&) does not split a cell.
func Cells(line string) []string {
	body := strings.TrimSpace(line)
	body = strings.TrimSuffix(body, Rule)
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, Terminator)

	var (
		cells   []string
		current strings.Builder
	)
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c == '&' && (i == 0 || body[i-1] != '\\') {
			cells = append(cells, current.String())
			current.Reset()
			continue
		}
		current.WriteByte(c)
	}
	return append(cells, current.String())
}

// CellCount returns the number of cells in a line.
func CellCount(line string) int {
	return len(Cells(line))
}

// Label returns the trimmed content of the first cell of a line.
func Label(line string) string {
	return strings.TrimSpace(Cells(line)[0])
}
