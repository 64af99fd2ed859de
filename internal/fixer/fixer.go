// =============================================================================
// fixtable - Pipeline
// =============================================================================
//
// This module runs the whole table rewrite for one input file.
//
// PIPELINE:
//   1. Read the input file
//   2. Load the variable mapping (failure is not fatal)
//   3. Extract control and constant pairs
//   4. Normalize the remaining rows and the extracted pairs
//   5. Classify the rows into buckets
//   6. Assemble the output fragment
//   7. Check the fragment (findings are logged; fatal only in strict mode)
//
// Writing the fragment is left to the caller.
//
// =============================================================================

package fixer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/statkit/fixtable/internal/assemble"
	"github.com/statkit/fixtable/internal/classify"
	"github.com/statkit/fixtable/internal/config"
	"github.com/statkit/fixtable/internal/extract"
	"github.com/statkit/fixtable/internal/header"
	"github.com/statkit/fixtable/internal/reader"
	"github.com/statkit/fixtable/internal/rows"
	"github.com/statkit/fixtable/internal/types"
	"github.com/statkit/fixtable/internal/validation"
	"github.com/statkit/fixtable/internal/varmap"
)

// ErrInvalidOutput is returned by a strict run whose output check failed.
var ErrInvalidOutput = errors.New("output check failed")

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result is the outcome of one run.
type Result struct {
	// Lines is the output fragment.
	Lines []string

	// Findings are the output checker's findings.
	Findings []*validation.ValidationError

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about one run.
type ProcessingStats struct {
	// LinesRead is the number of input lines.
	LinesRead int

	// LinesDropped is the number of rows removed as vacuous.
	LinesDropped int

	// Controls and Constants count the extracted pairs.
	Controls  int
	Constants int

	// Omitted counts reference-category rows dropped during extraction.
	Omitted int

	// Buckets counts the classified rows per bucket.
	Buckets map[types.Bucket]int

	// LinesWritten is the number of output lines.
	LinesWritten int

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// =============================================================================
// FIXER STRUCTURE
// =============================================================================

// Fixer runs the pipeline with one set of options.
type Fixer struct {
	opts   *config.Options
	logger Logger
	now    func() time.Time
}

// New creates a Fixer. The options are used as given; callers normalize
// and validate them first.
func New(opts *config.Options) *Fixer {
	return &Fixer{
		opts:   opts,
		logger: nopLogger{},
		now:    time.Now,
	}
}

// WithLogger sets the logger.
func (f *Fixer) WithLogger(l Logger) *Fixer {
	if l != nil {
		f.logger = l
	}
	return f
}

// WithClock sets the clock used for the "last update" line.
func (f *Fixer) WithClock(now func() time.Time) *Fixer {
	if now != nil {
		f.now = now
	}
	return f
}

// =============================================================================
// MAIN PROCESSING FUNCTIONS
// =============================================================================

// Run reads the input file and the variable mapping and rewrites the table.
//
// PARAMETERS:
//   - ctx: Checked between pipeline steps.
//   - path: The exporter file.
//
// RETURNS:
//   - The result of the run.
//   - An error if the input cannot be read or the context is done.
func (f *Fixer) Run(ctx context.Context, path string) (*Result, error) {
	// =========================================================================
	// STEP 1: READ INPUT
	// =========================================================================

	f.logger.Info("Processing file: %s", path)

	lines, err := reader.ReadFile(path, f.opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	f.logger.Debug("Read %d lines", len(lines))

	// =========================================================================
	// STEP 2: LOAD VARIABLE MAPPING
	// =========================================================================

	mapping := f.LoadMapping()

	return f.Process(ctx, lines, mapping)
}

// LoadMapping loads the configured variable mapping. A missing or broken
// mapping file is logged and an empty mapping is returned.
func (f *Fixer) LoadMapping() varmap.Mapping {
	if f.opts.VarFile == "" {
		return nil
	}

	mapping, err := varmap.Load(f.opts.VarFile)
	if err != nil {
		f.logger.Warn("cannot open varfile, continuing without renaming: %v", err)
		return nil
	}

	f.logger.Debug("Loaded %d mapping entries from %s", len(mapping), f.opts.VarFile)
	return mapping
}

// Process rewrites lines that are already in memory.
func (f *Fixer) Process(ctx context.Context, lines []string, mapping varmap.Mapping) (*Result, error) {
	start := time.Now()
	result := &Result{
		Stats: ProcessingStats{
			LinesRead: len(lines),
			Buckets:   make(map[types.Bucket]int),
		},
	}

	// =========================================================================
	// STEP 3: EXTRACT CONTROLS AND CONSTANT
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	ex := extract.Extract(lines, f.opts.Controls)
	for _, p := range ex.Fallbacks {
		f.logger.Warn("control pattern %q is not a valid expression, matching it literally", p)
	}

	result.Stats.Controls = len(ex.Controls)
	result.Stats.Constants = len(ex.Constants)
	result.Stats.Omitted = ex.Omitted
	f.logger.Debug("Extracted %d control pairs and %d constant pairs", len(ex.Controls), len(ex.Constants))

	// =========================================================================
	// STEP 4: NORMALIZE ROWS
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	norm := rows.New(mapping, f.opts.Substitutions)
	for _, src := range norm.Fallbacks() {
		f.logger.Warn("mapping source %q is not a valid expression, replacing it literally", src)
	}

	body := make([]string, 0, len(ex.Lines))
	for _, line := range ex.Lines {
		row, ok := norm.Normalize(line)
		if !ok {
			result.Stats.LinesDropped++
			continue
		}
		body = append(body, row)
	}

	controls := normalizePairs(norm, ex.Controls)
	constants := normalizePairs(norm, ex.Constants)

	f.logger.Debug("Normalized %d rows, dropped %d", len(body), result.Stats.LinesDropped)

	// =========================================================================
	// STEP 5: CLASSIFY ROWS
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	classifier := classify.New(classify.Options{
		Header: header.Options{
			Dep:      f.opts.Dep,
			Cline:    f.opts.Cline,
			NoHeader: f.opts.NoHeader,
		},
		NoColumnNum: f.opts.NoColumnNum,
		MyHeader:    f.opts.MyHeader,
		StatLabel:   f.opts.StatLabel,
		Trace: func(i int, rule string, bucket types.Bucket) {
			f.logger.Debug("row %d: rule %s -> %s", i+1, rule, bucket)
		},
	})
	buckets := classifier.Classify(body)

	for _, b := range buckets.Assignments {
		result.Stats.Buckets[b]++
	}
	result.Stats.Buckets[types.Controls] = len(controls)
	result.Stats.Buckets[types.Constant] = len(constants)

	// =========================================================================
	// STEP 6: ASSEMBLE OUTPUT
	// =========================================================================

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result.Lines = assemble.Assemble(assemble.Input{
		Main:         buckets.Main,
		Controls:     controls,
		Constants:    constants,
		Annotations:  buckets.Annotations,
		FixedEffects: buckets.FixedEffects,
		SummaryStats: buckets.SummaryStats,
		Columns:      buckets.Columns,
	}, assemble.Options{
		Meta:         f.opts.Meta,
		MyHeader:     f.opts.MyHeader,
		NoColumnNum:  f.opts.NoColumnNum,
		NoControl:    f.opts.NoControl,
		ControlLimit: f.opts.ControlLimit,
		FEOrder:      f.opts.FEOrder,
		Condensed:    f.opts.Condensed,
		Now:          f.now,
	})
	result.Stats.LinesWritten = len(result.Lines)

	// =========================================================================
	// STEP 7: CHECK OUTPUT
	// =========================================================================

	check := validation.NewValidatorWithOptions(buckets.Columns, validation.ValidationOptions{
		StopOnFirstError:      f.opts.Strict,
		TreatWarningsAsErrors: f.opts.Strict,
	}).ValidateAll(result.Lines)

	result.Findings = check.Errors
	for _, finding := range result.Findings {
		f.logger.Warn("Output check: %s", finding.Error())
	}

	if f.opts.Strict && !check.IsValid {
		f.logger.Error("%s", validation.FormatErrors(check.Errors))
		return nil, fmt.Errorf("%w: %d error(s), %d warning(s)",
			ErrInvalidOutput, check.ErrorCount, check.WarningCount)
	}

	result.Stats.ProcessingTime = time.Since(start)
	f.logger.Info("Wrote %d lines in %s", result.Stats.LinesWritten, result.Stats.ProcessingTime)

	return result, nil
}

func normalizePairs(n *rows.Normalizer, pairs []types.Pair) []types.Pair {
	out := make([]types.Pair, len(pairs))
	for i, p := range pairs {
		out[i] = n.NormalizePair(p)
	}
	return out
}
