// =============================================================================
// fixtable - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing the run configuration.
// Every option can be set in a YAML file and overridden on the command line.
//
// CONFIGURATION SOURCES (lowest to highest precedence):
//   1. Built-in defaults (applyDefaults)
//   2. YAML file (.fixtable.yaml in the working directory, or --config)
//   3. Command-line flags that were explicitly set
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is looked up in the working directory when --config is
// not given.
const DefaultConfigFile = ".fixtable.yaml"

// DefaultStatLabel is the default prefix of the additional summary statistic.
const DefaultStatLabel = "Mean of"

// Supported input encodings.
const (
	EncodingAuto        = "auto"
	EncodingUTF8        = "utf-8"
	EncodingWindows1252 = "windows-1252"
	EncodingUTF16       = "utf-16"
)

// =============================================================================
// OPTIONS STRUCTURE
// =============================================================================

// Options holds everything that shapes one fixtable run.
type Options struct {
	// =========================================================================
	// INPUT / OUTPUT
	// =========================================================================

	// VarFile is the path to the variable mapping file (.txt or .xlsx).
	VarFile string `yaml:"varfile"`

	// Output is the output file path. Empty means standard output.
	Output string `yaml:"output"`

	// InPlace replaces the input file with the output.
	InPlace bool `yaml:"inplace"`

	// Backup keeps a copy of the input as FILE.bak before an in-place write.
	Backup bool `yaml:"backup"`

	// Encoding is the character encoding of the input file.
	// Valid values: "auto", "utf-8", "windows-1252", "utf-16"
	// Default: "auto"
	Encoding string `yaml:"encoding"`

	// =========================================================================
	// ROW HANDLING
	// =========================================================================

	// Controls lists control-variable name patterns. Rows matching one of
	// them are moved, with their standard-error row, below the main body.
	Controls []string `yaml:"controls"`

	// NoControl drops control rows beyond the first ControlLimit pairs.
	NoControl bool `yaml:"nocontrol"`

	// ControlLimit is the number of control pairs kept when NoControl is set.
	ControlLimit int `yaml:"nocontrol_n"`

	// StatLabel is the label prefix of an additional summary statistic row.
	// Default: "Mean of"
	StatLabel string `yaml:"stat_label"`

	// FEOrder swaps the last two fixed-effects rows.
	FEOrder bool `yaml:"feorder"`

	// Substitutions are literal label replacements applied to every row
	// after formatting. When empty the built-in list is used.
	Substitutions []Substitution `yaml:"substitutions"`

	// =========================================================================
	// HEADER
	// =========================================================================

	// Dep is the label placed in the first cell of the header row.
	Dep string `yaml:"dep"`

	// Cline overrides the computed header rule ranges, e.g. "2-5,6-9".
	Cline string `yaml:"cline"`

	// NoHeader suppresses the header row.
	NoHeader bool `yaml:"noheader"`

	// MyHeader suppresses the header, the leading rule and column numbers.
	MyHeader bool `yaml:"myheader"`

	// NoColumnNum drops the column-number row.
	NoColumnNum bool `yaml:"no_column_num"`

	// =========================================================================
	// LAYOUT
	// =========================================================================

	// Condensed removes the spacer row before the summary statistics.
	Condensed bool `yaml:"condensed"`

	// Meta adds a "last update" comment line at the top of the output.
	Meta bool `yaml:"meta"`

	// Debug enables debug logging.
	Debug bool `yaml:"debug"`

	// Strict fails the run when the output check reports any finding,
	// warnings included. Nothing is written then.
	Strict bool `yaml:"strict"`
}

// Substitution is a literal text replacement.
type Substitution struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// DefaultSubstitutions returns the built-in label substitutions.
func DefaultSubstitutions() []Substitution {
	return []Substitution{
		{From: "Observations", To: "Obs."},
		{From: "Adjusted R-squared", To: "Adj. $R^2$"},
		{From: "R-squared", To: "$R^2$"},
	}
}

// Default returns the options used when no configuration file exists.
func Default() *Options {
	opts := &Options{}
	applyDefaults(opts)
	return opts
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Load reads options from a YAML file.
//
// PARAMETERS:
//   - path: The configuration file. When empty, DefaultConfigFile is tried
//     and silently skipped if it does not exist.
//
// RETURNS:
//   - The options with defaults applied.
//   - An error if the file cannot be read or parsed.
func Load(path string) (*Options, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var opts Options
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&opts)

	return &opts, nil
}

// applyDefaults sets default values for any unset options.
func applyDefaults(opts *Options) {
	if opts.Encoding == "" {
		opts.Encoding = EncodingAuto
	}
	if opts.StatLabel == "" {
		opts.StatLabel = DefaultStatLabel
	}
	if len(opts.Substitutions) == 0 {
		opts.Substitutions = DefaultSubstitutions()
	}
}

// Normalize resolves option combinations. MyHeader implies NoHeader.
func (o *Options) Normalize() {
	if o.MyHeader {
		o.NoHeader = true
	}
	o.Encoding = strings.ToLower(strings.TrimSpace(o.Encoding))
	applyDefaults(o)
}

// =============================================================================
// VALIDATION
// =============================================================================

var clineRange = regexp.MustCompile(`^\d+-\d+$`)

// Validate checks the options for values the pipeline cannot work with.
func (o *Options) Validate() error {
	if o.ControlLimit < 0 {
		return fmt.Errorf("nocontrol_n must not be negative, got %d", o.ControlLimit)
	}

	switch o.Encoding {
	case EncodingAuto, EncodingUTF8, EncodingWindows1252, EncodingUTF16:
	default:
		return fmt.Errorf("unsupported encoding %q", o.Encoding)
	}

	if o.InPlace && o.Output != "" {
		return errors.New("inplace and output are mutually exclusive")
	}

	for _, r := range ClineRanges(o.Cline) {
		if !clineRange.MatchString(r) {
			return fmt.Errorf("invalid cline range %q (want start-end)", r)
		}
	}

	return nil
}

// ClineRanges splits a cline override into its individual ranges.
func ClineRanges(cline string) []string {
	var ranges []string
	for _, r := range strings.Split(cline, ",") {
		if r = strings.TrimSpace(r); r != "" {
			ranges = append(ranges, r)
		}
	}
	return ranges
}
