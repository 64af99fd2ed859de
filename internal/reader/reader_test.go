package reader

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/statkit/fixtable/internal/config"
)

func TestReadUTF8(t *testing.T) {
	lines, err := Read(strings.NewReader("VARIABLES & y \\\\\r\nx & 1 \\\\\n"), config.EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{`VARIABLES & y \\`, `x & 1 \\`}, lines)
}

func TestReadStripsUTF8BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Constant & 1 \\\\\n")...)
	lines, err := Read(strings.NewReader(string(data)), config.EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{`Constant & 1 \\`}, lines)
}

func TestReadWindows1252(t *testing.T) {
	encoded, err := charmap.Windows1252.NewEncoder().String("Größe & 0.1 \\\\\n")
	require.NoError(t, err)

	assert.Equal(t, config.EncodingWindows1252, DetectEncoding([]byte(encoded)))

	lines, err := Read(strings.NewReader(encoded), config.EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{`Größe & 0.1 \\`}, lines)
}

func TestReadUTF16WithBOM(t *testing.T) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	encoded, err := enc.String("Obs. & 100 \\\\\n")
	require.NoError(t, err)

	assert.Equal(t, config.EncodingUTF16, DetectEncoding([]byte(encoded)))

	lines, err := Read(strings.NewReader(encoded), config.EncodingAuto)
	require.NoError(t, err)
	assert.Equal(t, []string{`Obs. & 100 \\`}, lines)
}

func TestReadEmpty(t *testing.T) {
	_, err := Read(strings.NewReader("\n  \n"), config.EncodingAuto)
	assert.True(t, errors.Is(err, ErrEmptyInput))
}

func TestReadUnknownEncoding(t *testing.T) {
	_, err := Read(strings.NewReader("x"), "koi8")
	assert.Error(t, err)
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "table.tex")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\n"), 0o644))

	lines, err := ReadFile(path, config.EncodingUTF8)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, lines)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.tex"), config.EncodingUTF8)
	assert.Error(t, err)
}

func TestSplitLines(t *testing.T) {
	assert.Nil(t, SplitLines(""))
	assert.Equal(t, []string{"a", "", "b"}, SplitLines("a\n\nb\n"))
	assert.Equal(t, []string{"a", "b"}, SplitLines("a\r\nb"))
}
