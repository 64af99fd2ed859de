// =============================================================================
// fixtable - Assembler
// =============================================================================
//
// This module writes the classified buckets back out as one table fragment.
//
// OUTPUT ORDER:
//   1. "last update" comment (Meta)
//   2. leading row terminator and rule (unless MyHeader)
//   3. header block and body rows
//   4. control pairs, then constant pairs, then a row separator
//   5. annotations
//   6. fixed-effects rows, spacer, summary statistics
//   7. closing rule
//
// Every row passes the condenser and the line cleaner on its way out.
//
// =============================================================================

package assemble

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/statkit/fixtable/internal/classify"
	"github.com/statkit/fixtable/internal/types"
)

// MergeMarker in a row collapses the row to a bare row terminator.
const MergeMarker = "%%BREAK%%"

// CommentMarker is ignored when deciding whether a row is blank.
const CommentMarker = "//"

var (
	columnNumber = regexp.MustCompile(`\(\d\)`)
	slashesOnly  = regexp.MustCompile(`^\\+$`)
	repeatedRule = regexp.MustCompile(`\\hline(?:\s*\\\\)?(?:\s*\\hline(?:\s*\\\\)?)+`)
)

// Input is the material for one fragment.
type Input struct {
	// Main holds the header block and the body rows.
	Main []string

	// Controls and Constants are the extracted pairs, already normalized.
	Controls  []types.Pair
	Constants []types.Pair

	Annotations  []string
	FixedEffects []string
	SummaryStats []string

	// Columns is the typeset column count, used to size the spacer row.
	Columns int
}

// Options shapes the fragment.
type Options struct {
	// Meta writes a "last update" comment line first.
	Meta bool

	// MyHeader leaves out the leading row terminator and rule.
	MyHeader bool

	// NoColumnNum drops column-number rows from the body.
	NoColumnNum bool

	// NoControl keeps only the first ControlLimit control pairs.
	NoControl    bool
	ControlLimit int

	// FEOrder swaps the last two fixed-effects rows.
	FEOrder bool

	// Condensed leaves out the spacer row before the statistics.
	Condensed bool

	// Now returns the date for the Meta line. Defaults to time.Now.
	Now func() time.Time
}

// Assemble builds the output fragment.
//
// PARAMETERS:
//   - in: The classified rows.
//   - opts: Layout options.
//
// RETURNS:
//   - The fragment lines, without line terminators.
func Assemble(in Input, opts Options) []string {
	p := &printer{}

	// Step 1: Meta line
	if opts.Meta {
		now := time.Now
		if opts.Now != nil {
			now = opts.Now
		}
		p.raw(fmt.Sprintf("%% last update: %s", now().Format("2006-01-02")))
	}

	// Step 2: Leading terminator and rule
	if !opts.MyHeader {
		p.raw(types.Terminator)
		p.raw(types.Rule)
	}

	scaffold := len(p.out)

	// Step 3: Header block and body
	for _, row := range in.Main {
		if opts.NoColumnNum && columnNumber.MatchString(row) {
			continue
		}
		p.emit(row)
	}

	// Step 4: Controls, then constants
	for _, pair := range Controls(in.Controls, opts) {
		p.pair(pair)
	}
	for _, pair := range in.Constants {
		p.pair(pair)
	}

	// The coefficient block ends with a row separator once it holds rows.
	if len(p.out) > scaffold {
		p.print(types.Terminator)
	}

	// Step 5: Annotations
	for _, row := range in.Annotations {
		p.print(row)
	}

	// Step 6: Fixed effects, spacer, statistics
	for _, row := range classify.ReorderFixedEffects(in.FixedEffects, opts.FEOrder) {
		p.emit(stripRule(row))
	}
	if len(in.SummaryStats) > 0 && !opts.Condensed && hasObservations(in.FixedEffects, in.SummaryStats) {
		p.print(Spacer(in.Columns))
	}
	for _, row := range in.SummaryStats {
		p.emit(stripRule(row))
	}

	// Step 7: Closing rule
	if n := len(p.out); n == 0 || !strings.HasSuffix(p.out[n-1], types.Rule) {
		p.raw(types.Rule)
	}

	return p.out
}

// Controls applies the NoControl limit and folds standard-error rows that
// hold only placeholders into their coefficient row.
func Controls(pairs []types.Pair, opts Options) []types.Pair {
	if opts.NoControl {
		limit := opts.ControlLimit
		if limit < 0 {
			limit = 0
		}
		if limit < len(pairs) {
			pairs = pairs[:limit]
		}
	}

	out := make([]types.Pair, 0, len(pairs))
	for _, p := range pairs {
		if PlaceholderOnly(p.SE) {
			p.SE = ""
		}
		out = append(out, p)
	}
	return out
}

// PlaceholderOnly reports whether a row holds nothing but separators,
// placeholder cells and a terminator.
func PlaceholderOnly(row string) bool {
	row = strings.ReplaceAll(row, types.Rule, "")
	row = strings.ReplaceAll(row, types.Terminator, "")
	row = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t', '&', '.', '(', ')':
			return -1
		}
		return r
	}, row)
	return row == ""
}

// Spacer returns an empty row spanning all typeset columns.
func Spacer(columns int) string {
	if columns < 1 {
		columns = 1
	}
	return strings.Repeat(types.Separator, columns-1) + " " + types.Terminator
}

func hasObservations(groups ...[]string) bool {
	for _, rows := range groups {
		for _, row := range rows {
			if strings.HasPrefix(strings.ToLower(types.Label(row)), "obs") {
				return true
			}
		}
	}
	return false
}

func stripRule(row string) string {
	trimmed := strings.TrimSpace(row)
	if strings.HasSuffix(trimmed, types.Rule) {
		return strings.TrimSpace(strings.TrimSuffix(trimmed, types.Rule))
	}
	return row
}

// =============================================================================
// LINE FILTERS
// =============================================================================

// Condensed reports whether a row is blank once comment markers are
// removed. Such rows are never written.
func Condensed(row string) bool {
	return strings.TrimSpace(strings.ReplaceAll(row, CommentMarker, "")) == ""
}

// CleanLine tidies one output row. A row of backslashes becomes a single
// row terminator, a row with the merge marker becomes a bare terminator and
// repeated rule commands collapse to one.
func CleanLine(row string) string {
	row = strings.TrimSpace(row)
	switch {
	case row == "":
		return ""
	case slashesOnly.MatchString(row):
		return types.Terminator
	case strings.Contains(row, MergeMarker):
		return types.Terminator
	}
	return repeatedRule.ReplaceAllLiteralString(row, types.Rule)
}

// blankish reports whether a row has no content besides separators,
// terminators and whitespace.
func blankish(row string) bool {
	return strings.Trim(row, " \t&\\") == ""
}

// =============================================================================
// PRINTER
// =============================================================================

// printer collects output rows.
type printer struct {
	out  []string
	last string
}

// raw appends a row unchanged.
func (p *printer) raw(row string) {
	p.out = append(p.out, row)
	p.last = row
}

// emit appends a row after the condenser and the line cleaner.
func (p *printer) emit(row string) {
	if Condensed(row) {
		return
	}
	if row = CleanLine(row); row != "" {
		p.raw(row)
	}
}

// print is emit that also refuses a blank-ish row right after another one.
func (p *printer) print(row string) {
	if Condensed(row) {
		return
	}
	row = CleanLine(row)
	if row == "" || (blankish(row) && blankish(p.last)) {
		return
	}
	p.raw(row)
}

func (p *printer) pair(pair types.Pair) {
	for _, row := range pair.Lines() {
		p.emit(row)
	}
}
