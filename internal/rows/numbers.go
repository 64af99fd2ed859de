package rows

import (
	"regexp"
	"strings"
)

var (
	bareDecimal     = regexp.MustCompile(`(^|[^\d])([-+]?)\.(\d+)`)
	decimalNumber   = regexp.MustCompile(`[-+]?(?:\d+\.\d+|\.\d+)`)
	placeholderCell = regexp.MustCompile(`&\s*(?:\.|\(\s*\.\s*\))\s*&`)
	zeroCell        = regexp.MustCompile(`(^|[^\d.])0\.000([^\d]|$)`)
)

// AddLeadingZero writes a zero in front of bare decimals: ".45" -> "0.45",
// "-.3" -> "-0.3".
func AddLeadingZero(s string) string {
	// Adjacent matches share the character in front of the decimal, so a
	// second pass catches the ones the first pass skipped.
	for i := 0; i < 2; i++ {
		s = bareDecimal.ReplaceAllString(s, "${1}${2}0.${3}")
	}
	return s
}

// AddParentheses wraps every decimal number in parentheses, adding a leading
// zero where missing. Numbers already in parentheses are left alone.
func AddParentheses(s string) string {
	matches := decimalNumber.FindAllStringIndex(s, -1)
	if matches == nil {
		return s
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(s[last:m[0]])
		number := AddLeadingZero(s[m[0]:m[1]])
		if m[0] > 0 && s[m[0]-1] == '(' && m[1] < len(s) && s[m[1]] == ')' {
			b.WriteString(number)
		} else {
			b.WriteString("(" + number + ")")
		}
		last = m[1]
	}
	b.WriteString(s[last:])
	return b.String()
}

// CleanPlaceholders rewrites placeholder cells (".", "(.)") that sit between
// two separators as empty cells.
func CleanPlaceholders(row string) string {
	for {
		cleaned := placeholderCell.ReplaceAllString(row, "& &")
		if cleaned == row {
			return row
		}
		row = cleaned
	}
}

// CleanCells removes parenthesized placeholders and zero estimates printed
// as 0.000, leaving the cells empty.
func CleanCells(row string) string {
	row = strings.ReplaceAll(row, "( . )", "")
	row = strings.ReplaceAll(row, "(.)", "")
	for {
		cleaned := zeroCell.ReplaceAllString(row, "${1}${2}")
		if cleaned == row {
			return row
		}
		row = cleaned
	}
}
