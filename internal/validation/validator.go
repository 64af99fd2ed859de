// =============================================================================
// fixtable - Output Checker
// =============================================================================
//
// This module checks an assembled fragment for mistakes that would stop a
// LaTeX run or silently break the table layout:
//   - Rows with more cells than the table has columns
//   - Unbalanced braces
//   - Unbalanced inline math delimiters
//   - Rule ranges outside the table
//
// ERROR HANDLING:
//   - Findings are collected and logged; only a strict run (--strict)
//     fails on them
//   - Each finding carries the output line number and the offending text
//   - "error" findings would break compilation, "warning" findings only
//     affect the layout
//
// =============================================================================

package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/statkit/fixtable/internal/header"
	"github.com/statkit/fixtable/internal/types"
)

// Severity levels.
const (
	SeverityError   = "error"
	SeverityWarning = "warning"
)

var (
	multicolumnCell = regexp.MustCompile(`^\s*\\multicolumn\{\s*(\d+)\s*\}`)
	clineCommand    = regexp.MustCompile(`\\cline\{([^}]*)\}`)
)

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError represents a single finding.
type ValidationError struct {
	// Severity is SeverityError or SeverityWarning.
	Severity string

	// Rule is the check that failed.
	Rule string

	// Message is a human-readable description.
	Message string

	// Line is the 1-based line number in the output.
	Line int

	// Value is the offending line.
	Value string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] line %d, %s: %s (line: '%s')",
		strings.ToUpper(e.Severity),
		e.Line,
		e.Rule,
		e.Message,
		e.Value,
	)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// ValidationResult contains the results of validation.
type ValidationResult struct {
	// IsValid is true if there are no error findings.
	IsValid bool

	// Errors contains all findings, warnings included.
	Errors []*ValidationError

	// ErrorCount is the number of error findings.
	ErrorCount int

	// WarningCount is the number of warnings.
	WarningCount int

	// LinesValidated is the number of lines checked.
	LinesValidated int
}

// =============================================================================
// VALIDATOR
// =============================================================================

// Validator checks output lines against the table's column count.
type Validator struct {
	columns int
	options ValidationOptions
}

// ValidationOptions contains options for validation.
type ValidationOptions struct {
	// StopOnFirstError stops validation after the first error finding.
	// Default: false
	StopOnFirstError bool

	// TreatWarningsAsErrors makes any warning mark the result invalid.
	// Default: false
	TreatWarningsAsErrors bool
}

// DefaultValidationOptions returns the default validation options.
func DefaultValidationOptions() ValidationOptions {
	return ValidationOptions{}
}

// NewValidator creates a Validator for a table with the given number of
// typeset columns.
func NewValidator(columns int) *Validator {
	return NewValidatorWithOptions(columns, DefaultValidationOptions())
}

// NewValidatorWithOptions creates a Validator with custom options.
func NewValidatorWithOptions(columns int, options ValidationOptions) *Validator {
	return &Validator{
		columns: columns,
		options: options,
	}
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// ValidateAll checks all lines and returns a detailed result.
//
// PARAMETERS:
//   - lines: The assembled fragment.
//
// RETURNS:
//   - The findings and counts. IsValid is false after any error, or after
//     any warning when TreatWarningsAsErrors is set.
func (v *Validator) ValidateAll(lines []string) *ValidationResult {
	result := &ValidationResult{
		IsValid:        true,
		Errors:         make([]*ValidationError, 0),
		LinesValidated: len(lines),
	}

	for i, line := range lines {
		for _, err := range v.ValidateLine(i+1, line) {
			result.Errors = append(result.Errors, err)

			if err.Severity == SeverityError {
				result.ErrorCount++
				result.IsValid = false

				if v.options.StopOnFirstError {
					return result
				}
			} else {
				result.WarningCount++

				if v.options.TreatWarningsAsErrors {
					result.IsValid = false
				}
			}
		}
	}

	return result
}

// ValidateLine checks a single output line.
func (v *Validator) ValidateLine(n int, line string) []*ValidationError {
	var errors []*ValidationError

	add := func(severity, rule, msg string) {
		errors = append(errors, &ValidationError{
			Severity: severity,
			Rule:     rule,
			Message:  msg,
			Line:     n,
			Value:    line,
		})
	}

	// Comment lines are never typeset.
	if strings.HasPrefix(strings.TrimSpace(line), "%") {
		return errors
	}

	// =========================================================================
	// CELL COUNT
	// =========================================================================
	// A row spanning more columns than the table is an alignment error.

	if v.columns > 0 && strings.Contains(line, types.Terminator) {
		if width := SpannedWidth(line); width > v.columns {
			add(SeverityError, "cell_count",
				fmt.Sprintf("row spans %d columns, table has %d", width, v.columns))
		}
	}

	// =========================================================================
	// BRACES AND MATH
	// =========================================================================

	if open, closed := countUnescaped(line, '{'), countUnescaped(line, '}'); open != closed {
		add(SeverityError, "braces",
			fmt.Sprintf("unbalanced braces (%d open, %d close)", open, closed))
	}

	if countUnescaped(line, '$')%2 != 0 {
		add(SeverityWarning, "math", "unbalanced $ delimiters")
	}

	// =========================================================================
	// RULE RANGES
	// =========================================================================

	for _, m := range clineCommand.FindAllStringSubmatch(line, -1) {
		r, err := header.ParseRange(m[1])
		switch {
		case err != nil:
			add(SeverityError, "cline", err.Error())
		case r.Start < 1 || r.Start > r.End:
			add(SeverityWarning, "cline", fmt.Sprintf("empty rule range %s", r))
		case v.columns > 0 && r.End > v.columns:
			add(SeverityWarning, "cline",
				fmt.Sprintf("rule range %s exceeds %d columns", r, v.columns))
		}
	}

	return errors
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// SpannedWidth returns the number of typeset columns a row occupies, with
// \multicolumn cells counted at their declared width.
func SpannedWidth(line string) int {
	width := 0
	for _, cell := range types.Cells(line) {
		m := multicolumnCell.FindStringSubmatch(cell)
		if m == nil {
			width++
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil || n < 1 {
			n = 1
		}
		width += n
	}
	return width
}

// countUnescaped counts c where it is not preceded by a backslash.
func countUnescaped(s string, c byte) int {
	count := 0
	for i := 0; i < len(s); i++ {
		if s[i] == c && (i == 0 || s[i-1] != '\\') {
			count++
		}
	}
	return count
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// FormatErrors formats findings for display or logging.
//
// PARAMETERS:
//   - errors: The findings to format.
//
// RETURNS:
//   - A formatted string containing all findings.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d finding(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
