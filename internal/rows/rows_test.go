package rows

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/statkit/fixtable/internal/config"
	"github.com/statkit/fixtable/internal/types"
	"github.com/statkit/fixtable/internal/varmap"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "coefficients with stars",
			in:   `x1 & 0.123*** & 0.456** \\`,
			want: `x1& 0.123&$^{***}$& 0.456&$^{**}$ \\`,
		},
		{
			name: "standard errors",
			in:   ` & (0.0123) & (0.0456) \\`,
			want: `& (0.0123)&& (0.0456)&\\`,
		},
		{
			name: "header",
			in:   `VARIABLES & y1 & y2 \\ \hline`,
			want: `VARIABLES& y1&& y2 \\ \hline`,
		},
		{
			name: "no stars",
			in:   `x & 0.1 & 0.2 \\`,
			want: `x& 0.1&& 0.2 \\`,
		},
		{
			name: "single column star",
			in:   `x & 1.2* \\`,
			want: `x& 1.2&$^{*}$ \\`,
		},
		{
			name: "free text",
			in:   `Standard errors in parentheses`,
			want: `Standard errors in parentheses`,
		},
		{
			name: "adjacent empty cell with stars",
			in:   `x && 0.5*** \\`,
			want: `x&&& 0.5&$^{***}$ \\`,
		},
		{
			name: "adjacent empty cell",
			in:   `x && 0.5 \\`,
			want: `x&&& 0.5 \\`,
		},
		{
			name: "already doubled",
			in:   `VARIABLES&&y1&&y2\\`,
			want: `VARIABLES&&y1&&y2\\`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormatIdempotent(t *testing.T) {
	inputs := []string{
		`x1 & 0.123*** & 0.456** \\`,
		` & (0.0123) & (0.0456) \\`,
		` & (0.01) \\`,
		`VARIABLES & y1 & y2 \\ \hline`,
		`x & 0.1 & 0.2 \\`,
		`x & 1.2* \\`,
		`*** p$<$0.01, ** p$<$0.05, * p$<$0.1`,
		`x && 0.5*** \\`,
		`x && 0.5 \\`,
	}

	for _, in := range inputs {
		once := Format(in)
		assert.Equal(t, once, Format(once), "input %q", in)
	}
}

func TestIsTypeset(t *testing.T) {
	tests := []struct {
		row  string
		want bool
	}{
		{`x1& 0.123&$^{***}$& 0.456&$^{**}$ \\`, true},
		{`& (0.0123)&& (0.0456)&\\`, true},
		{`&12.3&\\`, true},
		{`VARIABLES&&y1&&y2\\`, true},
		{`x && 0.5*** \\`, false},
		{`x && 0.5 \\`, false},
		{`x& 0.5*** \\`, false},
		{`x & 0.1 & 0.2 \\`, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsTypeset(tt.row), "row %q", tt.row)
	}
}

func TestFormatNeverDropsCells(t *testing.T) {
	n := New(varmap.Mapping{{Source: "x1", Label: "Size"}}, nil)
	inputs := []string{
		`x1 & 0.123*** & 0.456** \\`,
		` & (0.0123) & (0.0456) \\`,
		`VARIABLES & y1 & y2 \\ \hline`,
		`Observations & 100 & 100 \\`,
		`x & 0.1 & 0.2 \\`,
		`Standard errors in parentheses`,
	}

	for _, in := range inputs {
		out := Format(n.Rename(in))
		assert.GreaterOrEqual(t, types.CellCount(out), types.CellCount(in), "input %q -> %q", in, out)
	}
}

func TestRename(t *testing.T) {
	mapping := varmap.Mapping{
		{Source: "treat", Label: "Treated"},
		{Source: "post", Label: "Post"},
		{Source: "log_assets", Label: "Log(Assets)"},
		{Source: "roa", Label: `$\Delta$ROA`},
		{Source: "size(", Label: "Size"},
	}
	n := New(mapping, nil)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"interaction", `1.treat#c.post & 0.1 \\`, `Treated $\times$ Post & 0.1 \\`},
		{"escaped underscore", `log\_assets & 1 \\`, `Log(Assets) & 1 \\`},
		{"literal dollar label", `roa & 2 \\`, `$\Delta$ROA & 2 \\`},
		{"whole word only", `roa2 & 2 \\`, `roa2 & 2 \\`},
		{"times keyword", `a times b`, `a  $\times$  b`},
		{"times command kept", `a $\times$ b`, `a $\times$ b`},
		{"escaped hash", `a\#b`, `a $\times$ b`},
		{"fallback literal", `size(x) & 1 \\`, `Sizex) & 1 \\`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Rename(tt.in))
		})
	}

	assert.Equal(t, []string{"size("}, n.Fallbacks())
}

func TestRenameEmptyLabelDeletes(t *testing.T) {
	n := New(varmap.Mapping{{Source: "dropme", Label: ""}}, nil)
	assert.Equal(t, ` & 1 \\`, n.Rename(`dropme & 1 \\`))
}

func TestNormalize(t *testing.T) {
	n := New(nil, config.DefaultSubstitutions())

	row, ok := n.Normalize(`Observations & 100 & 100 \\`)
	assert.True(t, ok)
	assert.Equal(t, `Obs.& 100&& 100 \\`, row)

	row, ok = n.Normalize(` Adjusted R-squared & 0.12 & 0.34 \\`)
	assert.True(t, ok)
	assert.Equal(t, `Adj. $R^2$& 0.12&& 0.34 \\`, row)
}

func TestNormalizeVacuity(t *testing.T) {
	n := New(nil, nil)

	_, ok := n.Normalize(`&.&\\`)
	assert.False(t, ok, "lone placeholder cell is dropped")

	row, ok := n.Normalize(`&12.3&\\`)
	assert.True(t, ok, "real value is kept")
	assert.Equal(t, `&12.3&\\`, row)
}

func TestVacuous(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want bool
	}{
		{"placeholder", `x& .&& .&\\`, true},
		{"placeholder with two digits", `x& 0.12&& .&\\`, false},
		{"paren placeholder", `x& (.)&& (.)&\\`, true},
		{"dash cell", `x & - & 0.1 \\`, true},
		{"omitted dummy", `1o.year& 0&& 0 \\`, true},
		{"base level", `0b.treat& 0&& 0 \\`, true},
		{"tabular", `\begin{tabular}{lcc} \hline`, true},
		{"document", `\end{document}`, true},
		{"preamble", `\documentclass[]{article}`, true},
		{"setlength", `\setlength{\pdfpagewidth}{8.5in}`, true},
		{"exporter note", `\multicolumn{3}{c}{ Standard errors in parentheses} \\`, true},
		{"empty cells", `&&&&\\`, true},
		{"coefficient", `x1& 0.123&$^{***}$ \\`, false},
		{"annotation", `Panel A`, false},
		{"rule", `\hline`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Vacuous(tt.row))
		})
	}
}

func TestNormalizePair(t *testing.T) {
	n := New(varmap.Mapping{{Source: "size", Label: "Firm size"}}, config.DefaultSubstitutions())

	pair := n.NormalizePair(types.Pair{Coef: `size & 0.5*** \\`, SE: ` & (0.1) \\`})
	assert.Equal(t, `Firm size& 0.5&$^{***}$ \\`, pair.Coef)
	assert.Equal(t, `& (0.1)&\\`, pair.SE)

	pair = n.NormalizePair(types.Pair{Coef: `size & 0.5 \\`})
	assert.Empty(t, pair.SE)
}

func TestAddLeadingZero(t *testing.T) {
	assert.Equal(t, "0.45", AddLeadingZero(".45"))
	assert.Equal(t, "-0.3 & 0.2", AddLeadingZero("-.3 & .2"))
	assert.Equal(t, "1.5", AddLeadingZero("1.5"))
	assert.Equal(t, "0.45", AddLeadingZero(AddLeadingZero(".45")))
}

func TestAddParentheses(t *testing.T) {
	assert.Equal(t, `Diff & (0.123) & (0.045) \\`, AddParentheses(`Diff & .123 & 0.045 \\`))
	assert.Equal(t, `Diff & (0.1) \\`, AddParentheses(`Diff & (0.1) \\`))
	assert.Equal(t, `Diff & yes`, AddParentheses(`Diff & yes`))
}

func TestCleanPlaceholders(t *testing.T) {
	assert.Equal(t, `x & & 0.12 & & 1 \\`, CleanPlaceholders(`x & . & 0.12 & (.) & 1 \\`))
	assert.Equal(t, `x & 1 \\`, CleanPlaceholders(`x & 1 \\`))
}

func TestCleanCells(t *testing.T) {
	assert.Equal(t, `Diff &  &  & 0.0001 \\`, CleanCells(`Diff & 0.000 & (.) & 0.0001 \\`))
}
