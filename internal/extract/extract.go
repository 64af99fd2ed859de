// =============================================================================
// fixtable - Control/Constant Extractor
// =============================================================================
//
// This module pulls control-variable rows and the constant row out of the raw
// line list before any other processing happens. Each extracted row is taken
// together with the standard-error row below it, so the pair can be printed
// in its own block after the main body.
//
// The scan walks the input once with an index cursor. Lines taken as the
// second half of a pair are recorded in a consumed set instead of being
// deleted from the slice.
//
// =============================================================================

package extract

import (
	"regexp"
	"strings"

	"github.com/statkit/fixtable/internal/types"
)

const (
	// ConstantMarker starts the constant-term row.
	ConstantMarker = "Constant"

	// OmittedMarker starts an omitted or reference-category row.
	OmittedMarker = "o."
)

// Extraction is the result of one extraction pass.
type Extraction struct {
	// Lines are the input lines that were not extracted, in input order.
	Lines []string

	// Controls are the control-variable pairs, in input order.
	Controls []types.Pair

	// Constants are the constant-term pairs, in input order.
	Constants []types.Pair

	// Omitted counts the reference-category rows that were dropped.
	Omitted int

	// Fallbacks lists the control patterns that did not compile and were
	// matched as plain substrings.
	Fallbacks []string
}

// Ordered returns the control pairs followed by the constant pairs.
func (e Extraction) Ordered() []types.Pair {
	out := make([]types.Pair, 0, len(e.Controls)+len(e.Constants))
	out = append(out, e.Controls...)
	return append(out, e.Constants...)
}

// matcher tests one control pattern against a line.
type matcher struct {
	pattern string
	re      *regexp.Regexp
}

func (m matcher) match(line string) bool {
	if m.re == nil {
		return strings.Contains(line, m.pattern)
	}
	return m.re.MatchString(line)
}

// stripEscapes removes backslashes and underscores so that log\_assets,
// log_assets and logassets all compare equal.
func stripEscapes(s string) string {
	return strings.NewReplacer(`\`, "", "_", "").Replace(s)
}

// compile builds one matcher per non-empty pattern. A pattern that is not a
// valid expression is matched literally and reported in the second result.
func compile(patterns []string) ([]matcher, []string) {
	var (
		matchers  []matcher
		fallbacks []string
	)

	for _, p := range patterns {
		p = stripEscapes(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		re, err := regexp.Compile(`\b` + p + `\b`)
		if err != nil {
			fallbacks = append(fallbacks, p)
			matchers = append(matchers, matcher{pattern: p})
			continue
		}
		matchers = append(matchers, matcher{pattern: p, re: re})
	}

	return matchers, fallbacks
}

// Extract separates control pairs and constant pairs from the raw lines.
//
// PARAMETERS:
//   - lines: The raw input lines.
//   - patterns: Control variable name patterns. Backslashes and underscores
//     are ignored on both sides and a whole-word match is required.
//
// RETURNS:
//   - An Extraction holding the remaining lines and the extracted pairs.
//
// A matched line always takes its successor as the standard-error line. A
// matched last line gets an empty standard-error line.
func Extract(lines []string, patterns []string) Extraction {
	matchers, fallbacks := compile(patterns)

	result := Extraction{Fallbacks: fallbacks}
	consumed := make(map[int]bool)

	pairAt := func(i int) types.Pair {
		p := types.Pair{Coef: lines[i]}
		if i+1 < len(lines) {
			p.SE = lines[i+1]
			consumed[i+1] = true
		}
		return p
	}

	for i := 0; i < len(lines); i++ {
		if consumed[i] {
			continue
		}
		line := lines[i]
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, ConstantMarker) {
			result.Constants = append(result.Constants, pairAt(i))
			continue
		}

		if strings.HasPrefix(trimmed, OmittedMarker) {
			result.Omitted++
			continue
		}

		if matchesAny(matchers, stripEscapes(line)) {
			result.Controls = append(result.Controls, pairAt(i))
			continue
		}

		result.Lines = append(result.Lines, line)
	}

	return result
}

func matchesAny(matchers []matcher, line string) bool {
	for _, m := range matchers {
		if m.match(line) {
			return true
		}
	}
	return false
}
