// =============================================================================
// fixtable - Input Reader
// =============================================================================
//
// This module reads the table file written by the statistics package and
// returns it as a list of lines. Exports from older Stata releases on Windows
// are Windows-1252 encoded, newer ones UTF-8; some editors re-save them as
// UTF-16 with a byte order mark. The reader decodes all of these to UTF-8.
//
// ENCODING DETECTION ("auto"):
//   1. UTF-8 byte order mark      -> stripped, UTF-8
//   2. UTF-16 byte order mark     -> UTF-16 (endianness from the mark)
//   3. Valid UTF-8                -> UTF-8
//   4. Anything else              -> Windows-1252
//
// =============================================================================

package reader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/statkit/fixtable/internal/config"
)

// ErrEmptyInput is returned when the input holds no non-blank line.
var ErrEmptyInput = errors.New("input contains no table rows")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// =============================================================================
// READER FUNCTIONS
// =============================================================================

// ReadFile reads and decodes the table file at path.
//
// PARAMETERS:
//   - path: The exported table file.
//   - enc: One of the config.Encoding* values.
//
// RETURNS:
//   - The file's lines without line endings.
//   - An error if the file cannot be opened, decoded, or holds no rows.
func ReadFile(path, enc string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	lines, err := Read(file, enc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lines, nil
}

// Read decodes r and splits it into lines.
func Read(r io.Reader, enc string) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	text, err := Decode(data, enc)
	if err != nil {
		return nil, err
	}

	lines := SplitLines(text)
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			return lines, nil
		}
	}
	return nil, ErrEmptyInput
}

// Decode converts raw file content to a UTF-8 string.
func Decode(data []byte, enc string) (string, error) {
	decoder, err := decoderFor(data, enc)
	if err != nil {
		return "", err
	}
	if decoder == nil {
		return string(bytes.TrimPrefix(data, bomUTF8)), nil
	}

	decoded, err := decoder.Bytes(data)
	if err != nil {
		return "", fmt.Errorf("failed to decode input as %s: %w", enc, err)
	}
	return string(decoded), nil
}

// DetectEncoding reports the encoding "auto" resolves to for data.
func DetectEncoding(data []byte) string {
	switch {
	case bytes.HasPrefix(data, bomUTF8):
		return config.EncodingUTF8
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		return config.EncodingUTF16
	case utf8.Valid(data):
		return config.EncodingUTF8
	default:
		return config.EncodingWindows1252
	}
}

// decoderFor returns nil when the data is already UTF-8.
func decoderFor(data []byte, enc string) (*encoding.Decoder, error) {
	if enc == "" || enc == config.EncodingAuto {
		enc = DetectEncoding(data)
	}

	switch enc {
	case config.EncodingUTF8:
		return nil, nil
	case config.EncodingWindows1252:
		return charmap.Windows1252.NewDecoder(), nil
	case config.EncodingUTF16:
		// Little endian is what Windows editors write when the mark is missing.
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder(), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", enc)
	}
}

// SplitLines splits text on newlines, dropping carriage returns and the
// empty element after a final newline.
func SplitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
