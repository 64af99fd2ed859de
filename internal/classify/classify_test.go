package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statkit/fixtable/internal/types"
)

var normalized = []string{
	`& (1)&& (2)&\\`,
	`VARIABLES& y1&& y2 \\ \hline`,
	`x1& 0.123&$^{***}$& 0.456&$^{**}$ \\`,
	`& (0.0123)&& (0.0456)&\\`,
	`Standard errors in parentheses`,
	`Obs.& 100&& 100 \\`,
	`$R^2$& 0.2&& 0.3 \\`,
	`Year FE& YES&& YES \\ \hline`,
	`Firm controls& YES&& YES \\`,
	`Diff& .123&& 0.000 \\`,
	`Wald F& .45&& .5 \\`,
	`Mean of y& 1.5&& 2.5 \\`,
	`\hline`,
}

func TestClassify(t *testing.T) {
	c := New(Options{StatLabel: "Mean of"})
	got := c.Classify(normalized)

	require.NotNil(t, got.Header)
	assert.Equal(t, []string{
		`&\multicolumn{2}{c}{y1} & \multicolumn{2}{c}{y2}\\`,
		`\cline{2-3}\cline{4-5}`,
		`& (1)&& (2)&\\`,
		`\hline`,
		`x1& 0.123&$^{***}$& 0.456&$^{**}$ \\`,
		`& (0.0123)&& (0.0456)&\\`,
		`\hline`,
	}, got.Main)

	assert.Equal(t, []string{`Standard errors in parentheses`}, got.Annotations)

	assert.Equal(t, []string{
		`Year FE& YES&& YES \\`,
		`Firm controls& YES&& YES \\`,
		`Diff& (0.123)&&  \\`,
	}, got.FixedEffects)

	assert.Equal(t, []string{
		`Obs.& 100&& 100 \\`,
		`$R^2$& 0.2&& 0.3 \\`,
		`Wald F& 0.45&& 0.5 \\`,
		`Mean of y& 1.5&& 2.5 \\`,
	}, got.SummaryStats)

	assert.Equal(t, []types.Bucket{
		types.Header, types.Header,
		types.Main, types.Main,
		types.Annotation,
		types.SummaryStats, types.SummaryStats,
		types.FixedEffects, types.FixedEffects, types.FixedEffects,
		types.SummaryStats, types.SummaryStats,
		types.Main,
	}, got.Assignments)

	assert.Equal(t, 5, got.Columns)

	ctx := c.Context()
	assert.True(t, ctx.InStats)
	assert.True(t, ctx.MainSeen)
	assert.False(t, ctx.Grouped)
	assert.Equal(t, `& (1)&& (2)&\\`, ctx.ColumnNumbers)
}

func TestClassifyEveryLineOnce(t *testing.T) {
	got := New(Options{}).Classify(normalized)

	require.Len(t, got.Assignments, len(normalized))
	for i, b := range got.Assignments {
		assert.Contains(t, []types.Bucket{
			types.Header, types.Main, types.Annotation,
			types.FixedEffects, types.SummaryStats,
		}, b, "line %d", i)
	}
}

func TestClassifyWithoutStatLabel(t *testing.T) {
	got := New(Options{}).Classify(normalized)

	// Without the prefix rule the row still lands in the stats block
	// because it follows the first statistic.
	assert.Contains(t, got.SummaryStats, `Mean of y& 1.5&& 2.5 \\`)
}

func TestClassifySuppressesColumnNumbers(t *testing.T) {
	for _, opts := range []Options{{NoColumnNum: true}, {MyHeader: true}} {
		got := New(opts).Classify(normalized)
		assert.NotContains(t, got.Main, `& (1)&& (2)&\\`)
		assert.Equal(t, types.Header, got.Assignments[0])
	}
}

func TestClassifyFinalFixedEffectKeepsRule(t *testing.T) {
	got := New(Options{}).Classify([]string{
		`x& 1&& 2 \\`,
		`Year FE& YES&& YES \\ \hline`,
	})

	assert.Equal(t, []string{`Year FE& YES&& YES \\ \hline`}, got.FixedEffects)
}

func TestClassifyAnnotationNeedsBody(t *testing.T) {
	got := New(Options{}).Classify([]string{
		`Panel A`,
		`x& 1&& 2 \\`,
		`Panel B`,
	})

	assert.Equal(t, []string{`Panel A`, `x& 1&& 2 \\`}, got.Main)
	assert.Equal(t, []string{`Panel B`}, got.Annotations)
}

func TestClassifyKeepsBodyRowWithColumnMarker(t *testing.T) {
	lines := []string{
		`& (1)&& (2)&\\`,
		`VARIABLES& y1&& y2&\\`,
		`x& 2.0&$^{*}$& 1.5 \\`,
		`& (1)&& (0.4)&\\`,
	}

	got := New(Options{}).Classify(lines)

	assert.Equal(t, []types.Bucket{
		types.Header, types.Header, types.Main, types.Main,
	}, got.Assignments)
	assert.Contains(t, got.Main, `& (1)&& (0.4)&\\`)
	assert.Equal(t, `& (1)&& (2)&\\`, got.Main[2])
}

func TestClassifyColumnMarkerWithoutNumberingRow(t *testing.T) {
	got := New(Options{}).Classify([]string{
		`VARIABLES& y1&& y2&\\`,
		`x& 2.0&& 1.5 \\`,
		`& (1)&& (0.4)&\\`,
	})

	assert.Equal(t, types.Main, got.Assignments[2])
	assert.Equal(t, `& (1)&& (0.4)&\\`, got.Main[len(got.Main)-1])
}

func TestClassifyTextAfterHeaderIsAnnotation(t *testing.T) {
	got := New(Options{}).Classify([]string{
		`VARIABLES& y1&& y2&\\`,
		`Panel A`,
		`x& 2.0&& 1.5 \\`,
	})

	assert.Equal(t, []string{`Panel A`}, got.Annotations)
	assert.Equal(t, types.Annotation, got.Assignments[1])
}

func TestClassifyNumericRowInStats(t *testing.T) {
	got := New(Options{}).Classify([]string{
		`x& 1&& 2 \\`,
		`Obs.& 100&& 100 \\`,
		`F-test& 3.2&& 4.1 \\ \hline`,
	})

	assert.Equal(t, []string{`Obs.& 100&& 100 \\`, `F-test& 3.2&& 4.1 \\`}, got.SummaryStats)
	assert.Equal(t, []string{`x& 1&& 2 \\`}, got.Main)
}

func TestClassifyCleansPlaceholders(t *testing.T) {
	got := New(Options{}).Classify([]string{`x & . & 0.12 & (.) & 1 \\`})
	assert.Equal(t, []string{`x & & 0.12 & & 1 \\`}, got.Main)
}

func TestClassifyGroupedHeader(t *testing.T) {
	c := New(Options{})
	got := c.Classify([]string{
		`VARIABLES& A;y1&& A;y2&& B;y3 \\ \hline`,
		`x& 1&& 2&& 3 \\`,
	})

	assert.True(t, c.Context().Grouped)
	assert.Equal(t, 7, got.Columns)
	assert.Equal(t, []string{
		`&\multicolumn{4}{c}{A} & \multicolumn{2}{c}{B}\\`,
		`&y1 && y2 && y3\\`,
		`\cline{2-5}\cline{6-7}`,
		`\hline`,
		`x& 1&& 2&& 3 \\`,
	}, got.Main)
}

func TestClassifyWithoutHeader(t *testing.T) {
	got := New(Options{}).Classify([]string{`x& 1&& 2 \\`})

	assert.Nil(t, got.Header)
	assert.Equal(t, DefaultColumns, got.Columns)
}

func TestClassifyTrace(t *testing.T) {
	var names []string
	New(Options{Trace: func(_ int, rule string, _ types.Bucket) {
		names = append(names, rule)
	}}).Classify([]string{`VARIABLES&&y1\\`, `x& 1 \\`, `Obs.& 10 \\`})

	assert.Equal(t, []string{"header", "main", "summary-stats"}, names)
}

func TestReorderFixedEffects(t *testing.T) {
	fe := []string{"A", "B", "C", "D"}

	assert.Equal(t, []string{"A", "B", "D", "C"}, ReorderFixedEffects(fe, true))
	assert.Equal(t, []string{"A", "B", "C", "D"}, ReorderFixedEffects(fe, false))
	assert.Equal(t, []string{"A", "B", "C", "D"}, fe, "input is not modified")
	assert.Equal(t, []string{"A", "B", "C"}, ReorderFixedEffects([]string{"A", "B", "C"}, true))
}
