// =============================================================================
// fixtable - Header Builder
// =============================================================================
//
// This module rebuilds the column header of a regression table. The exporter
// writes one label per logical column; every logical column is typeset as two
// columns (value and star), and the first typeset column holds row labels.
//
// HEADER SHAPES:
//   - Flat:    one row of spanning cells, one rule range per labelled run.
//   - Grouped: cells written as "group;value" produce a row of group labels
//              and a second row of values, with one rule range per group.
//
// =============================================================================

package header

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/statkit/fixtable/internal/config"
	"github.com/statkit/fixtable/internal/types"
)

const (
	// Marker identifies the header row.
	Marker = "VARIABLES"

	// GroupSeparator divides a group label from its value in a header cell.
	GroupSeparator = ";"
)

// Options controls how the header block is built.
type Options struct {
	// Dep is placed in the row-label cell of a flat header.
	Dep string

	// Cline overrides the computed rule ranges, e.g. "2-5,6-9".
	Cline string

	// NoHeader suppresses the flat header entirely and reduces a grouped
	// header to its group row and rule.
	NoHeader bool
}

// Range is an inclusive range of typeset columns under a rule.
type Range struct {
	Start int
	End   int
}

func (r Range) String() string {
	return fmt.Sprintf("%d-%d", r.Start, r.End)
}

// Result is the rebuilt header.
type Result struct {
	// Row is the header row (group labels in grouped mode).
	Row string

	// SubRow is the second header row. Empty for flat headers.
	SubRow string

	// Rule is the rule command placed under the header.
	Rule string

	// Ranges are the computed rule ranges. An override in Options.Cline
	// changes Rule but not Ranges.
	Ranges []Range

	// Columns is the number of typeset columns, row labels included.
	Columns int

	// Grouped reports whether the header used group separators.
	Grouped bool

	noHeader bool
}

// Lines returns the header rows and rule in output order.
func (r Result) Lines() []string {
	var lines []string
	switch {
	case r.Grouped && r.noHeader:
		lines = append(lines, r.Row, r.Rule)
	case r.Grouped:
		lines = append(lines, r.Row, r.SubRow, r.Rule)
	case r.noHeader:
		return nil
	default:
		lines = append(lines, r.Row, r.Rule)
	}

	out := lines[:0]
	for _, l := range lines {
		if l != "" {
			out = append(out, l)
		}
	}
	return out
}

// IsHeader reports whether a line is the header row.
func IsHeader(line string) bool {
	return strings.Contains(line, Marker)
}

// IsGrouped reports whether a header line uses group separators.
func IsGrouped(line string) bool {
	return strings.Contains(line, GroupSeparator)
}

// Build rebuilds a header line.
//
// PARAMETERS:
//   - line: The normalized header row containing Marker.
//   - opts: Header options.
//
// RETURNS:
//   - The rebuilt header. Rule ranges start at typeset column 2.
func Build(line string, opts Options) Result {
	cells := Cells(line)

	var res Result
	if IsGrouped(line) {
		res = buildGrouped(cells)
	} else {
		res = buildFlat(cells, opts.Dep)
	}
	res.noHeader = opts.NoHeader

	if override := config.ClineRanges(opts.Cline); len(override) > 0 {
		res.Rule = ruleCommand(override)
	}

	return res
}

// Cells extracts the logical column labels of a header line. The marker,
// rules and terminator are removed and the line is split on doubled
// separators.
func Cells(line string) []string {
	body := strings.Replace(line, Marker, "", 1)
	body = strings.ReplaceAll(body, types.Rule, "")
	body = strings.TrimSpace(body)
	body = strings.TrimSuffix(body, types.Terminator)
	body = trimSeparators(body)
	if body == "" {
		return nil
	}

	var cells []string
	last := 0
	for i := 0; i+1 < len(body); i++ {
		if body[i] == '&' && body[i+1] == '&' && (i == 0 || body[i-1] != '\\') {
			cells = append(cells, trimSeparators(body[last:i]))
			last = i + 2
			i++
		}
	}
	return append(cells, trimSeparators(body[last:]))
}

// trimSeparators trims whitespace and unescaped separators from both ends.
func trimSeparators(s string) string {
	for {
		t := strings.TrimSpace(s)
		t = strings.TrimPrefix(t, types.Separator)
		if strings.HasSuffix(t, types.Separator) && !strings.HasSuffix(t, `\&`) {
			t = strings.TrimSuffix(t, types.Separator)
		}
		if t == s {
			return s
		}
		s = t
	}
}

// =============================================================================
// FLAT HEADER
// =============================================================================

// run is a sequence of logical columns sharing one label. Columns are
// 1-based.
type run struct {
	label string
	first int
	last  int
}

func (r run) width() int {
	return 2 * (r.last - r.first + 1)
}

// buildFlat groups equal labels into spanning cells. An empty cell extends
// the run to its left, so "A & & B" spans A over two columns. Equal labels
// are merged while building runs, so two runs never share a label and a
// border.
func buildFlat(cells []string, dep string) Result {
	var runs []run
	for i, c := range cells {
		col := i + 1
		if n := len(runs); n > 0 {
			if cur := &runs[n-1]; c == "" || c == cur.label {
				cur.last = col
				continue
			}
		}
		runs = append(runs, run{label: c, first: col, last: col})
	}

	parts := make([]string, 0, len(runs))
	var ranges []Range
	for _, r := range runs {
		parts = append(parts, multicolumn(r.width(), r.label))
		if r.label == "" {
			continue
		}
		ranges = append(ranges, Range{Start: 2 * r.first, End: 2*r.last + 1})
	}

	return Result{
		Row:     dep + types.Separator + strings.Join(parts, " & ") + types.Terminator,
		Rule:    rulesFor(ranges),
		Ranges:  ranges,
		Columns: 2*len(cells) + 1,
	}
}

// =============================================================================
// GROUPED HEADER
// =============================================================================

// buildGrouped collects "group;value" cells. Consecutive cells of one group
// share a spanning label; their values go to the second row.
func buildGrouped(cells []string) Result {
	var (
		top     []string
		sub     []string
		ranges  []Range
		label   string
		values  []string
		offset  = 2
		logical int
	)

	closeGroup := func() {
		if len(values) == 0 {
			return
		}
		width := 2 * len(values)
		top = append(top, multicolumn(width, label))
		sub = append(sub, values...)
		ranges = append(ranges, Range{Start: offset, End: offset + width - 1})
		offset += width
		label, values = "", nil
	}

	for _, c := range cells {
		logical++
		group, value, ok := strings.Cut(c, GroupSeparator)
		if !ok {
			closeGroup()
			top = append(top, multicolumn(2, c))
			sub = append(sub, "")
			offset += 2
			continue
		}
		group, value = strings.TrimSpace(group), strings.TrimSpace(value)
		if len(values) > 0 && group != label {
			closeGroup()
		}
		label = group
		values = append(values, value)
	}
	closeGroup()

	return Result{
		Row:     types.Separator + strings.Join(top, " & ") + types.Terminator,
		SubRow:  types.Separator + strings.Join(sub, " && ") + types.Terminator,
		Rule:    rulesFor(ranges),
		Ranges:  ranges,
		Columns: 2*logical + 1,
		Grouped: true,
	}
}

// =============================================================================
// HELPERS
// =============================================================================

func multicolumn(width int, label string) string {
	return fmt.Sprintf(`\multicolumn{%d}{c}{%s}`, width, label)
}

func rulesFor(ranges []Range) string {
	parts := make([]string, len(ranges))
	for i, r := range ranges {
		parts[i] = r.String()
	}
	return ruleCommand(parts)
}

func ruleCommand(ranges []string) string {
	var b strings.Builder
	for _, r := range ranges {
		b.WriteString(`\cline{` + r + `}`)
	}
	return b.String()
}

// ParseRange parses "a-b" into a Range.
func ParseRange(s string) (Range, error) {
	start, end, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return Range{}, fmt.Errorf("invalid range %q", s)
	}
	a, err := strconv.Atoi(start)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range start %q: %w", s, err)
	}
	b, err := strconv.Atoi(end)
	if err != nil {
		return Range{}, fmt.Errorf("invalid range end %q: %w", s, err)
	}
	return Range{Start: a, End: b}, nil
}
