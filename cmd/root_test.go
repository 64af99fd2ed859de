package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statkit/fixtable/pkg/utils"
)

const exported = `\begin{tabular}{lcc} \hline
 & (1) & (2) \\
VARIABLES & y1 & y2 \\ \hline
 &  &  \\
treat & 0.123*** & 0.456** \\
 & (0.0123) & (0.0456) \\
size & 0.5*** & 0.6*** \\
 & (0.1) & (0.2) \\
Constant & 1.1*** & 1.2*** \\
 & (0.3) & (0.4) \\
 &  &  \\
Observations & 100 & 100 \\
 R-squared & 0.2 & 0.3 \\
 Year FE & YES & YES \\ \hline
\end{tabular}
`

const renamedRow = `Treated& 0.123&$^{***}$& 0.456&$^{**}$ \\`

// execute runs the root command with fresh flag state.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	reset := func(fs *pflag.FlagSet) {
		fs.VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
	reset(rootCmd.PersistentFlags())
	reset(rootCmd.Flags())

	if args == nil {
		args = []string{}
	}

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}

func fixtures(t *testing.T) (dir, input, vars string) {
	t.Helper()
	dir = t.TempDir()
	input = filepath.Join(dir, "table.tex")
	vars = filepath.Join(dir, "vars.txt")
	require.NoError(t, os.WriteFile(input, []byte(exported), 0o644))
	require.NoError(t, os.WriteFile(vars, []byte("treat Treated\nsize Firm size\nyear\n"), 0o644))
	return dir, input, vars
}

func TestFixToStdout(t *testing.T) {
	_, input, vars := fixtures(t)

	out, _, err := execute(t, input, "-v", vars, "-c", "size")
	require.NoError(t, err)

	assert.Contains(t, out, renamedRow)
	assert.Contains(t, out, `Firm size& 0.5&$^{***}$& 0.6&$^{***}$ \\`)
	assert.Contains(t, out, `Obs.& 100&& 100 \\`)
}

func TestFixToOutputFile(t *testing.T) {
	dir, input, vars := fixtures(t)
	target := filepath.Join(dir, "out", "fixed.tex")

	out, _, err := execute(t, input, "--varfile", vars, "--output", target, "--meta")
	require.NoError(t, err)
	assert.Empty(t, out)

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Contains(t, string(data), "% last update: ")
	assert.Contains(t, string(data), renamedRow)
}

func TestFixInPlaceWithBackup(t *testing.T) {
	_, input, vars := fixtures(t)

	_, _, err := execute(t, input, "-v", vars, "-i", "--backup")
	require.NoError(t, err)

	data, err := os.ReadFile(input)
	require.NoError(t, err)
	assert.Contains(t, string(data), renamedRow)
	assert.NotContains(t, string(data), `\begin{tabular}`)

	backup, err := os.ReadFile(input + utils.BackupSuffix)
	require.NoError(t, err)
	assert.Equal(t, exported, string(backup))
}

func TestFixConfigFile(t *testing.T) {
	dir, input, vars := fixtures(t)
	cfg := filepath.Join(dir, "fixtable.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("varfile: "+vars+"\ncontrols: [size]\nmeta: true\n"), 0o644))

	out, _, err := execute(t, input, "--config", cfg, "--meta=false")
	require.NoError(t, err)

	assert.Contains(t, out, renamedRow)
	assert.NotContains(t, out, "% last update")
}

func TestFixErrors(t *testing.T) {
	_, input, _ := fixtures(t)

	_, _, err := execute(t)
	assert.Error(t, err)

	_, _, err = execute(t, input, "--cline", "2-x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid options")

	_, _, err = execute(t, input, "-i", "-o", "other.tex")
	assert.Error(t, err)

	_, _, err = execute(t, filepath.Join(t.TempDir(), "missing.tex"))
	assert.Error(t, err)
}

func TestFixStrictWritesNothing(t *testing.T) {
	dir, input, _ := fixtures(t)
	target := filepath.Join(dir, "fixed.tex")

	_, logs, err := execute(t, input, "--strict", "--cline", "2-9", "-o", target)
	require.Error(t, err)

	assert.Contains(t, err.Error(), "output check failed")
	assert.Contains(t, logs, "cline")
	assert.False(t, utils.FileExists(target))

	_, _, err = execute(t, input, "--cline", "2-9", "-o", target)
	require.NoError(t, err)
	assert.True(t, utils.FileExists(target))
}

func TestFixMissingVarfileWarns(t *testing.T) {
	_, input, _ := fixtures(t)

	out, logs, err := execute(t, input, "-v", filepath.Join(t.TempDir(), "none.txt"))
	require.NoError(t, err)

	assert.Contains(t, out, `treat& 0.123&$^{***}$& 0.456&$^{**}$ \\`)
	assert.Contains(t, logs, "cannot open varfile")
}

func TestVersion(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)

	assert.Contains(t, out, "fixtable")
	assert.Contains(t, out, "Version:    "+Version)
}

func TestVars(t *testing.T) {
	_, _, vars := fixtures(t)

	out, _, err := execute(t, "vars", "-v", vars)
	require.NoError(t, err)

	assert.Contains(t, out, "treat")
	assert.Contains(t, out, "Firm size")
	assert.Contains(t, out, deletedLabel)

	_, _, err = execute(t, "vars")
	assert.Error(t, err)
}
