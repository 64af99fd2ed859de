// =============================================================================
// fixtable - Row Normalizer
// =============================================================================
//
// This module turns one exported row into a typeset-ready row. It is the
// counterpart of the transformation engine: an ordered list of rewrites is
// applied to every row, and rows that carry no data are filtered out.
//
// NORMALIZATION PIPELINE (per row):
//   1. Rename      - factor prefixes, \_ escapes, interaction keywords,
//                    variable mapping
//   2. Format      - significance stars split into their own cell, value
//                    separators doubled, stars typeset as superscripts
//   3. Substitute  - label substitutions (Observations -> Obs., ...)
//   4. Vacuous     - placeholder, omitted and boilerplate rows dropped
//
// =============================================================================

package rows

import (
	"regexp"
	"strings"

	"github.com/statkit/fixtable/internal/config"
	"github.com/statkit/fixtable/internal/types"
	"github.com/statkit/fixtable/internal/varmap"
)

// TimesSymbol is the typeset interaction operator.
const TimesSymbol = ` $\times$ `

var (
	// A base-level or continuous-variable factor prefix in front of a
	// variable name: 1.treat, 0.post, c.size.
	factorPrefix = regexp.MustCompile(`\b(?:[01]|c)\.([a-z])`)

	timesWord = regexp.MustCompile(`\btimes\b`)
)

// =============================================================================
// NORMALIZER
// =============================================================================

// Normalizer applies the variable mapping and label substitutions.
type Normalizer struct {
	renames   []rename
	subs      []config.Substitution
	fallbacks []string
}

// rename is one compiled mapping entry. re is nil when the source name is
// not a valid pattern and a literal replacement is used instead.
type rename struct {
	source string
	label  string
	re     *regexp.Regexp
}

// New compiles a mapping and a substitution list into a Normalizer.
//
// PARAMETERS:
//   - mapping: The variable mapping; nil means identity.
//   - subs: Literal substitutions applied after formatting.
//
// RETURNS:
//   - A Normalizer. Mapping sources that do not compile as patterns are
//     reported by Fallbacks and replaced literally.
func New(mapping varmap.Mapping, subs []config.Substitution) *Normalizer {
	n := &Normalizer{subs: subs}

	for _, e := range mapping {
		if e.Source == "" {
			continue
		}
		r := rename{source: e.Source, label: e.Label}
		re, err := regexp.Compile(`\b` + e.Source + `\b`)
		if err != nil {
			n.fallbacks = append(n.fallbacks, e.Source)
		} else {
			r.re = re
		}
		n.renames = append(n.renames, r)
	}

	return n
}

// Fallbacks lists mapping sources replaced literally.
func (n *Normalizer) Fallbacks() []string {
	return n.fallbacks
}

// Normalize runs the full pipeline on one row.
//
// RETURNS:
//   - The normalized, trimmed row.
//   - false if the row is vacuous and must be dropped.
func (n *Normalizer) Normalize(line string) (string, bool) {
	row := Format(n.Rename(line))
	row = strings.TrimSpace(n.Substitute(row))
	if Vacuous(row) {
		return "", false
	}
	return row, true
}

// NormalizePair renames and formats an extracted control or constant pair.
// Pairs skip substitutions and the vacuity filter.
func (n *Normalizer) NormalizePair(p types.Pair) types.Pair {
	out := types.Pair{Coef: strings.TrimSpace(Format(n.Rename(p.Coef)))}
	if p.SE != "" {
		out.SE = strings.TrimSpace(Format(p.SE))
	}
	return out
}

// =============================================================================
// RENAME STEP
// =============================================================================

// Rename strips factor prefixes, unescapes underscores, typesets the
// interaction keyword and applies the variable mapping.
func (n *Normalizer) Rename(line string) string {
	row := factorPrefix.ReplaceAllString(line, "$1")
	row = strings.ReplaceAll(row, `\_`, "_")
	row = replaceTimesKeyword(row)
	row = strings.ReplaceAll(row, `\#`, TimesSymbol)

	for _, r := range n.renames {
		if r.re == nil {
			row = strings.ReplaceAll(row, r.source, r.label)
			continue
		}
		row = r.re.ReplaceAllLiteralString(row, r.label)
	}

	return replaceUnescaped(row, '#', TimesSymbol)
}

// replaceTimesKeyword replaces the word "times" unless it is already the
// \times command.
func replaceTimesKeyword(row string) string {
	matches := timesWord.FindAllStringIndex(row, -1)
	if matches == nil {
		return row
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		if m[0] > 0 && row[m[0]-1] == '\\' {
			continue
		}
		b.WriteString(row[last:m[0]])
		b.WriteString(TimesSymbol)
		last = m[1]
	}
	b.WriteString(row[last:])
	return b.String()
}

// replaceUnescaped replaces c wherever it is not preceded by a backslash.
func replaceUnescaped(row string, c byte, with string) string {
	if strings.IndexByte(row, c) < 0 {
		return row
	}

	var b strings.Builder
	for i := 0; i < len(row); i++ {
		if row[i] == c && (i == 0 || row[i-1] != '\\') {
			b.WriteString(with)
			continue
		}
		b.WriteByte(row[i])
	}
	return b.String()
}

// =============================================================================
// SUBSTITUTE STEP
// =============================================================================

// Substitute applies the literal label substitutions in order.
func (n *Normalizer) Substitute(row string) string {
	for _, s := range n.subs {
		if s.From == "" {
			continue
		}
		row = strings.ReplaceAll(row, s.From, s.To)
	}
	return row
}

// =============================================================================
// VACUITY FILTER
// =============================================================================

var (
	boilerplate = []string{
		"tabular",
		"{table}",
		"{document}",
		"documentclass",
		"setlength",
		"multicolumn",
	}

	omittedMarker = regexp.MustCompile(`\b\d+[ob]n?\.`)
	placeholder   = regexp.MustCompile(`&\s*(?:\.|\(\s*\.\s*\))\s*(?:&|\\\\)`)
	dashCell      = regexp.MustCompile(`&\s*-\s*&`)
	twoDigits     = regexp.MustCompile(`\d{2}`)
	emptyCells    = regexp.MustCompile(`^(?:&\s*)+\\\\$`)
)

// Vacuous reports whether a formatted row carries no table data.
//
// A row is vacuous when it:
//   - marks an omitted or base-level dummy (1o.x, 0b.x)
//   - holds a placeholder cell (., (.)) and no two-digit number
//   - holds a dash placeholder cell
//   - is typesetting-environment boilerplate of the exporter
//   - consists only of empty cells and a row terminator
func Vacuous(row string) bool {
	row = strings.TrimSpace(row)

	for _, marker := range boilerplate {
		if strings.Contains(row, marker) {
			return true
		}
	}

	switch {
	case omittedMarker.MatchString(row):
		return true
	case placeholder.MatchString(row) && !twoDigits.MatchString(row):
		return true
	case dashCell.MatchString(row):
		return true
	case emptyCells.MatchString(row):
		return true
	}

	return false
}
