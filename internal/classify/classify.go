// =============================================================================
// fixtable - Row Classifier
// =============================================================================
//
// This module assigns every normalized row to one bucket. Rules are evaluated
// top to bottom and the first match wins; later rules rely on earlier ones
// having taken their rows, so the order is part of the behaviour.
//
// RULES (in order):
//   1. column-number  first "& (1)" row before the body, kept for the
//                     header block
//   2. header         "VARIABLES" row, rebuilt by the header package
//   3. summary-stats  observations, R-squared, Wald F, configured prefix
//   4. fixed-effects  "FE&", "control", "Diff", "Wald" rows
//   5. annotation     text-only rows once Main holds anything
//   6. main           everything else
//
// Pass-wide state lives in a Context owned by the Classifier, so two
// classifiers never share anything.
//
// =============================================================================

package classify

import (
	"regexp"
	"strings"

	"github.com/statkit/fixtable/internal/header"
	"github.com/statkit/fixtable/internal/rows"
	"github.com/statkit/fixtable/internal/types"
)

// DefaultColumns is the typeset column count assumed until a header is seen.
const DefaultColumns = 10

// ColumnNumberMarker identifies the column-number row.
const ColumnNumberMarker = "& (1)"

var (
	statPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^Obs`),
		regexp.MustCompile(`^\$R\^2`),
		regexp.MustCompile(`Adj\. \$R\^2\$`),
		regexp.MustCompile(`Wald F`),
	}

	fixedEffectPatterns = []*regexp.Regexp{
		regexp.MustCompile(`FE&`),
		regexp.MustCompile(`(?i)\bcontrols?\b`),
		regexp.MustCompile(`^Diff`),
		regexp.MustCompile(`^Wald`),
	}

	digits      = regexp.MustCompile(`\d`)
	slashesOnly = regexp.MustCompile(`^\\+$`)
)

// =============================================================================
// OPTIONS AND STATE
// =============================================================================

// Options configures a classification pass.
type Options struct {
	// Header is passed to the header builder.
	Header header.Options

	// NoColumnNum drops the column-number row.
	NoColumnNum bool

	// MyHeader drops the column-number row as part of the minimal header.
	MyHeader bool

	// StatLabel is an additional summary-statistic label prefix.
	StatLabel string

	// Trace, when set, is called for every row with the index of the row,
	// the name of the matching rule and the resulting bucket.
	Trace func(index int, rule string, bucket types.Bucket)
}

// Context is the state carried from one row to the next.
type Context struct {
	// Grouped is set once a grouped header has been seen.
	Grouped bool

	// InStats is set once the first summary-statistic row has been seen.
	InStats bool

	// Columns is the typeset column count of the table.
	Columns int

	// MainSeen is set once the Main bucket holds anything, the header
	// block included.
	MainSeen bool

	// BodySeen is set once a body row went to the Main bucket. The
	// column-number row is only recognised before that.
	BodySeen bool

	// ColumnNumbers is the captured column-number row.
	ColumnNumbers string
}

// Buckets is the outcome of a classification pass.
type Buckets struct {
	// Header is the rebuilt header. Nil when the input had no header row.
	Header *header.Result

	// Main holds the header block and the body rows, in input order.
	Main []string

	Annotations  []string
	FixedEffects []string
	SummaryStats []string

	// Assignments holds the bucket of every input row, by index.
	Assignments []types.Bucket

	// Columns is the typeset column count used for spacer rows.
	Columns int
}

// rule is one classification step. apply returns the bucket the row ended
// up in, which may differ from the bucket the rule is named after.
type rule struct {
	name  string
	match func(line string) bool
	apply func(line string, final bool) types.Bucket
}

// Classifier runs one classification pass.
type Classifier struct {
	opts  Options
	ctx   Context
	stats []*regexp.Regexp
	rules []rule
	out   Buckets

	// headerEnd is the index in Main where the column-number row belongs.
	headerEnd int
}

// New creates a Classifier.
func New(opts Options) *Classifier {
	c := &Classifier{
		opts:      opts,
		ctx:       Context{Columns: DefaultColumns},
		stats:     statPatterns,
		headerEnd: -1,
	}

	if label := strings.TrimSpace(opts.StatLabel); label != "" {
		c.stats = append(append([]*regexp.Regexp{}, statPatterns...),
			regexp.MustCompile(`^`+regexp.QuoteMeta(label)))
	}

	c.rules = []rule{
		{name: "column-number", match: c.isColumnNumbers, apply: c.columnNumbers},
		{name: "header", match: header.IsHeader, apply: c.header},
		{name: "summary-stats", match: c.isStat, apply: c.summaryStat},
		{name: "fixed-effects", match: isFixedEffect, apply: c.fixedEffect},
		{name: "annotation", match: c.isAnnotation, apply: c.annotation},
		{name: "main", match: func(string) bool { return true }, apply: c.main},
	}

	return c
}

// Context returns the current pass state.
func (c *Classifier) Context() Context {
	return c.ctx
}

// =============================================================================
// CLASSIFICATION
// =============================================================================

// Classify assigns every line to exactly one bucket.
//
// PARAMETERS:
//   - lines: Normalized rows with control and constant pairs removed.
//
// RETURNS:
//   - The filled buckets. Assignments has one entry per input line.
func (c *Classifier) Classify(lines []string) Buckets {
	c.out.Assignments = make([]types.Bucket, 0, len(lines))

	for i, line := range lines {
		line = strings.TrimSpace(line)
		final := i == len(lines)-1

		for _, r := range c.rules {
			if !r.match(line) {
				continue
			}
			bucket := r.apply(line, final)
			c.out.Assignments = append(c.out.Assignments, bucket)
			if c.opts.Trace != nil {
				c.opts.Trace(i, r.name, bucket)
			}
			break
		}
	}

	c.insertColumnNumbers()
	c.out.Columns = c.ctx.Columns

	return c.out
}

// insertColumnNumbers places the captured column-number row inside the
// header block, ahead of the closing rule.
func (c *Classifier) insertColumnNumbers() {
	if c.ctx.ColumnNumbers == "" || c.headerEnd < 0 || c.suppressColumnNumbers() {
		return
	}

	main := make([]string, 0, len(c.out.Main)+1)
	main = append(main, c.out.Main[:c.headerEnd]...)
	main = append(main, c.ctx.ColumnNumbers)
	c.out.Main = append(main, c.out.Main[c.headerEnd:]...)
}

func (c *Classifier) suppressColumnNumbers() bool {
	return c.opts.NoColumnNum || c.opts.MyHeader
}

// =============================================================================
// RULES
// =============================================================================

// isColumnNumbers matches the first numbering row ahead of the body. A
// later row carrying "& (1)" is a standard-error row.
func (c *Classifier) isColumnNumbers(line string) bool {
	return c.ctx.ColumnNumbers == "" &&
		!c.ctx.BodySeen &&
		strings.Contains(line, ColumnNumberMarker)
}

func (c *Classifier) columnNumbers(line string, _ bool) types.Bucket {
	c.ctx.ColumnNumbers = line
	return types.Header
}

func (c *Classifier) header(line string, _ bool) types.Bucket {
	res := header.Build(line, c.opts.Header)

	c.ctx.Columns = res.Columns
	if res.Grouped {
		c.ctx.Grouped = true
	}

	c.out.Header = &res
	c.out.Main = append(c.out.Main, res.Lines()...)
	c.headerEnd = len(c.out.Main)
	c.out.Main = append(c.out.Main, types.Rule)
	c.ctx.MainSeen = true

	return types.Header
}

func (c *Classifier) isStat(line string) bool {
	for _, re := range c.stats {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (c *Classifier) summaryStat(line string, _ bool) types.Bucket {
	c.ctx.InStats = true
	c.out.SummaryStats = append(c.out.SummaryStats, decorate(stripRule(line)))
	return types.SummaryStats
}

func isFixedEffect(line string) bool {
	for _, re := range fixedEffectPatterns {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

func (c *Classifier) fixedEffect(line string, final bool) types.Bucket {
	if !final {
		line = stripRule(line)
	}
	c.out.FixedEffects = append(c.out.FixedEffects, decorate(line))
	return types.FixedEffects
}

func (c *Classifier) isAnnotation(line string) bool {
	return c.ctx.MainSeen &&
		!digits.MatchString(line) &&
		!strings.Contains(line, "hline") &&
		!slashesOnly.MatchString(line)
}

func (c *Classifier) annotation(line string, _ bool) types.Bucket {
	c.out.Annotations = append(c.out.Annotations, line)
	return types.Annotation
}

func (c *Classifier) main(line string, _ bool) types.Bucket {
	if c.ctx.InStats && digits.MatchString(line) {
		c.out.SummaryStats = append(c.out.SummaryStats, stripRule(line))
		return types.SummaryStats
	}

	c.ctx.MainSeen = true
	c.ctx.BodySeen = true
	c.out.Main = append(c.out.Main, rows.CleanPlaceholders(line))
	return types.Main
}

// =============================================================================
// HELPERS
// =============================================================================

// stripRule removes a trailing rule command.
func stripRule(line string) string {
	trimmed := strings.TrimSpace(line)
	if !strings.HasSuffix(trimmed, types.Rule) {
		return line
	}
	return strings.TrimSpace(strings.TrimSuffix(trimmed, types.Rule))
}

// decorate normalizes the numbers of difference and Wald statistic rows.
func decorate(line string) string {
	label := types.Label(line)
	switch {
	case strings.HasPrefix(label, "Diff"):
		return rows.AddParentheses(rows.CleanCells(line))
	case strings.HasPrefix(label, "Wald"):
		return rows.AddLeadingZero(line)
	}
	return line
}

// ReorderFixedEffects swaps the last two rows when enabled and more than
// three rows are present. The input is not modified.
func ReorderFixedEffects(fe []string, enabled bool) []string {
	out := append([]string(nil), fe...)
	if enabled && len(out) > 3 {
		n := len(out)
		out[n-2], out[n-1] = out[n-1], out[n-2]
	}
	return out
}
