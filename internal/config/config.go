// =============================================================================
// OBX Importer - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration from
// config.yaml. Every setting has a default, so the importer also runs without
// any configuration file at all.
//
// CONFIGURATION SECTIONS:
//   1. Directories: where OBX files are picked up, written and archived
//   2. Logging: level, format and destination of the zap logger
//   3. Output: file naming, spreadsheet export, archival, concurrency
//   4. Quotation: price multiplier, display mode, grouping, recipient
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/Fidge123/lexware-obx-importer/internal/types"
	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used when no --config flag is given.
const DefaultConfigPath = "config.yaml"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for *.obx files when convert runs without
	// explicit files.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the generated quotation JSON (and XLSX) files.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives OBX files after successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir receives a copy of every generated file.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is "stdout", "stderr" or a file path.
	// Default: "stderr"
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// LogFormat selects the encoder.
	// Valid values: "console", "json"
	// Default: "console"
	LogFormat string `yaml:"log_format"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// OutputNameFormat defines the output file name.
	// Placeholders:
	//   {uuid}      - A random UUID
	//   {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
	//   {date}      - Current date (YYYYMMDD)
	//   {original}  - Input file name without extension
	// Default: "{original}_{uuid}.json"
	OutputNameFormat string `yaml:"output_name_format"`

	// WriteXLSX additionally renders every quotation as a spreadsheet.
	// Default: false
	WriteXLSX bool `yaml:"write_xlsx"`

	// WriteSummary writes a processing summary into the output directory
	// after each convert run.
	// Default: false
	WriteSummary bool `yaml:"write_summary"`

	// ArchiveInput moves converted OBX files into InputArchiveDir and copies
	// outputs into OutputArchiveDir. Files passed explicitly with --file are
	// never moved.
	// Default: true
	ArchiveInput *bool `yaml:"archive_input"`

	// ArchiveByDate places archived files in YYYY/MM/DD subdirectories.
	// Default: false
	ArchiveByDate bool `yaml:"archive_by_date"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of files converted concurrently.
	// Set to 1 for sequential processing.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps converting the remaining files after one fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// StrictValidation fails a file when validation reports an error
	// instead of converting it anyway.
	// Default: false
	StrictValidation bool `yaml:"strict_validation"`

	// =========================================================================
	// QUOTATION SETTINGS
	// =========================================================================

	Quotation QuotationConfig `yaml:"quotation"`
}

// QuotationConfig holds the defaults for every generated quotation. The
// convert command's flags override them per run.
type QuotationConfig struct {
	// Multiplier scales every article price.
	// Default: 1
	Multiplier float64 `yaml:"multiplier"`

	// IncludeDescription lists the components of each article as separate
	// text lines. When false they are folded into the article description.
	// Default: true
	IncludeDescription *bool `yaml:"include_description"`

	// GroupLineItems merges identical articles into one line.
	// Default: true
	GroupLineItems *bool `yaml:"group_line_items"`

	// Customer is the quotation recipient. When empty the built-in test
	// customer is used.
	Customer types.Address `yaml:"customer"`
}

// =============================================================================
// LOADING
// =============================================================================

// LoadMainConfig loads the main configuration file.
//
// PARAMETERS:
//   - configPath: The path to the YAML configuration file.
//
// RETURNS:
//   - The configuration with defaults applied. A missing file yields the
//     defaults.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	data, err := os.ReadFile(configPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("failed to read config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, &config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// DefaultMainConfig returns the configuration used when no file exists.
func DefaultMainConfig() *MainConfig {
	var config MainConfig
	applyMainConfigDefaults(&config)
	return &config
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.LogFile == "" {
		config.LogFile = "stderr"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "console"
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "{original}_{uuid}.json"
	}
	if config.ArchiveInput == nil {
		config.ArchiveInput = boolPtr(true)
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}
	if config.ContinueOnError == nil {
		config.ContinueOnError = boolPtr(true)
	}
	if config.Quotation.Multiplier == 0 {
		config.Quotation.Multiplier = 1
	}
	if config.Quotation.IncludeDescription == nil {
		config.Quotation.IncludeDescription = boolPtr(true)
	}
	if config.Quotation.GroupLineItems == nil {
		config.Quotation.GroupLineItems = boolPtr(true)
	}
}

// validateMainConfig checks value ranges.
func validateMainConfig(config *MainConfig) error {
	switch config.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", config.LogLevel)
	}

	switch config.LogFormat {
	case "console", "json":
	default:
		return fmt.Errorf("unknown log format %q", config.LogFormat)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	m := config.Quotation.Multiplier
	if math.IsInf(m, 0) || m < 0 {
		return fmt.Errorf("quotation.multiplier must be a non-negative number, got %v", m)
	}

	return nil
}

// =============================================================================
// ACCESSORS
// =============================================================================

// ShouldArchive reports whether converted files are archived.
func (c *MainConfig) ShouldArchive() bool {
	return c.ArchiveInput == nil || *c.ArchiveInput
}

// ShouldContinueOnError reports whether a failed file stops the run.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// ShouldIncludeDescription reports the configured display mode.
func (q QuotationConfig) ShouldIncludeDescription() bool {
	return q.IncludeDescription == nil || *q.IncludeDescription
}

// ShouldGroupLineItems reports whether identical articles are merged.
func (q QuotationConfig) ShouldGroupLineItems() bool {
	return q.GroupLineItems == nil || *q.GroupLineItems
}

func boolPtr(b bool) *bool {
	return &b
}
