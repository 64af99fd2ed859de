package rows

import (
	"regexp"
	"strings"
)

var (
	digitsStars   = regexp.MustCompile(`(\d+)(\*+)`)
	starsThenSep  = regexp.MustCompile(`\*\s+&`)
	starRun       = regexp.MustCompile(`\*{1,3}`)
	superscripted = "$^{"

	superscript     = regexp.MustCompile(`\$\^\{\*+\}\$`)
	spacedSeparator = regexp.MustCompile(`\s&(?:[^\\]|$)`)
)

// Format is the star/format step. Each value column is split into a value
// cell and a star cell, so "x & 0.12*** & 0.3 \\" becomes
// "x& 0.12&$^{***}$& 0.3 \\".
//
// A row that is already typeset is returned unchanged, which makes Format
// idempotent.
func Format(row string) string {
	if IsTypeset(row) {
		return row
	}

	row = digitsStars.ReplaceAllString(row, "${1}&${2}")
	row = doubleSeparators(row)
	row = closeEmptyCell(row)
	row = starsThenSep.ReplaceAllString(row, "*")
	row = strings.Replace(row, "&&", "&", 1)
	row = starRun.ReplaceAllString(row, `$$^{${0}}$$`)
	row = strings.ReplaceAll(row, " times ", TimesSymbol)
	row = strings.ReplaceAll(row, ` \# `, TimesSymbol)

	return row
}

// IsTypeset reports whether a row already went through Format.
//
// A star outside a superscript is never typeset. Otherwise a superscript
// marks the row as done. Format leaves no whitespace in front of a
// separator (except before a closing "&\\"), while the exporter writes
// " & ", so a spaced separator marks a raw row even when it sits next to
// an empty cell. Remaining rows count as typeset when they carry a
// doubled separator or the explicit empty last cell.
func IsTypeset(row string) bool {
	if strings.Contains(superscript.ReplaceAllString(row, ""), "*") {
		return false
	}
	if strings.Contains(row, superscripted) {
		return true
	}
	if spacedSeparator.MatchString(row) {
		return false
	}
	return strings.Contains(row, "&&") ||
		strings.HasSuffix(strings.TrimSpace(row), `&\\`)
}

// doubleSeparators doubles every separator that is not preceded by a star or
// backslash and not followed by a star run. Whitespace in front of a doubled
// separator is dropped.
func doubleSeparators(row string) string {
	var b strings.Builder
	last := 0

	for j := 0; j < len(row); j++ {
		if row[j] != '&' {
			continue
		}

		k := j + 1
		for k < len(row) && isSpace(row[k]) {
			k++
		}
		if k < len(row) && row[k] == '*' {
			continue
		}

		s := j
		for s > last && isSpace(row[s-1]) {
			s--
		}

		start := -1
		switch {
		case s == 0 || !isStarOrBackslash(row[s-1]):
			start = s
		case s < j:
			// The whitespace keeps the separator away from the star.
			start = s + 1
		}
		if start < 0 {
			continue
		}

		b.WriteString(row[last:start])
		b.WriteString("&&")
		last = j + 1
	}

	b.WriteString(row[last:])
	return b.String()
}

// closeEmptyCell turns whitespace in front of the row terminator into an
// explicit empty cell, unless the whitespace follows a value or a star.
func closeEmptyCell(row string) string {
	var b strings.Builder
	last := 0

	for j := 0; j+1 < len(row); j++ {
		if row[j] != '\\' || row[j+1] != '\\' {
			continue
		}

		s := j
		for s > last && isSpace(row[s-1]) {
			s--
		}
		if s == j {
			j++
			continue
		}

		start := -1
		switch {
		case s == 0 || !isStarOrWord(row[s-1]):
			start = s
		case s+1 < j:
			start = s + 1
		}
		if start < 0 {
			j++
			continue
		}

		b.WriteString(row[last:start])
		b.WriteString(`&\\`)
		last = j + 2
		j++
	}

	b.WriteString(row[last:])
	return b.String()
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func isStarOrBackslash(c byte) bool {
	return c == '*' || c == '\\'
}

// isStarOrWord treats any non-ASCII byte as part of a word.
func isStarOrWord(c byte) bool {
	return c == '*' || c == '_' || c >= 0x80 ||
		('0' <= c && c <= '9') || ('a' <= c && c <= 'z') || ('A' <= c && c <= 'Z')
}
