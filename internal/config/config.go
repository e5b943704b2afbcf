// Package config loads and validates the digitizer's JSON configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ironsheep/glucose-digitizer/internal/digitizer"
	"github.com/ironsheep/glucose-digitizer/internal/imaging"
)

// Environment variables read by ApplyEnv and Load.
const (
	EnvConfigPath = "GLUCOSE_DIGITIZER_CONFIG"
	EnvUnit       = "GLUCOSE_DIGITIZER_UNIT"
	EnvTessdata   = "TESSDATA_PREFIX"
)

// UnitAuto asks for the unit to be read from the screenshot's axis labels.
const UnitAuto = "auto"

// Config holds the application configuration
type Config struct {
	Pipeline digitizer.Config `json:"pipeline"`
	Glucose  GlucoseConfig    `json:"glucose"`
	OCR      OCRConfig        `json:"ocr"`
	Output   OutputConfig     `json:"output"`
}

// GlucoseConfig selects the glucose unit and axis range
type GlucoseConfig struct {
	// Unit is "mg/dL", "mmol/L" or "auto".
	Unit string `json:"unit"`

	// FallbackUnit is used when Unit is "auto" and the labels are unreadable.
	FallbackUnit string `json:"fallback_unit"`

	// Min and Max override the unit preset's axis range when set.
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// OCRConfig holds configuration for axis label recognition
type OCRConfig struct {
	Language       string `json:"language"`
	TessdataPrefix string `json:"tessdata_prefix"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format      string `json:"format"`
	DebugFormat string `json:"debug_format"`
	ChartWidth  int    `json:"chart_width"`
	ChartHeight int    `json:"chart_height"`

	// Timezone names the IANA zone readings are anchored in. Empty means the
	// local zone.
	Timezone string `json:"timezone"`
}

// Default returns a configuration with default values
func Default() *Config {
	return &Config{
		Pipeline: digitizer.DefaultConfig(),
		Glucose: GlucoseConfig{
			Unit:         string(digitizer.MmolPerL),
			FallbackUnit: string(digitizer.MmolPerL),
		},
		OCR: OCRConfig{
			Language: "eng",
		},
		Output: OutputConfig{
			Format:      "json",
			DebugFormat: imaging.FormatPNG,
			ChartWidth:  960,
			ChartHeight: 400,
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Load reads the file at path. When path is empty it falls back to the file
// named by GLUCOSE_DIGITIZER_CONFIG, then to GetConfigPath if that file
// exists, then to the defaults. Environment overrides are applied and the
// result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvConfigPath)
	}
	if path == "" {
		if p := GetConfigPath(); fileExists(p) {
			path = p
		}
	}

	config := Default()
	if path != "" {
		var err error
		if config, err = LoadFromFile(path); err != nil {
			return nil, err
		}
	}

	config.ApplyEnv(os.Getenv)
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return config, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ApplyEnv overrides settings from environment variables looked up with
// getenv.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if v := strings.TrimSpace(getenv(EnvUnit)); v != "" {
		c.Glucose.Unit = v
	}
	if v := strings.TrimSpace(getenv(EnvTessdata)); v != "" && c.OCR.TessdataPrefix == "" {
		c.OCR.TessdataPrefix = v
	}
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Pipeline.Validate(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}

	if !strings.EqualFold(c.Glucose.Unit, UnitAuto) {
		if _, err := digitizer.ParseUnit(c.Glucose.Unit); err != nil {
			return fmt.Errorf("glucose.unit: %w", err)
		}
	}
	if _, err := digitizer.ParseUnit(c.Glucose.FallbackUnit); err != nil {
		return fmt.Errorf("glucose.fallback_unit: %w", err)
	}
	if c.Glucose.Min != nil && c.Glucose.Max != nil && *c.Glucose.Min >= *c.Glucose.Max {
		return fmt.Errorf("glucose.min must be below glucose.max")
	}

	switch c.Output.Format {
	case "json", "csv":
	default:
		return fmt.Errorf("output.format must be json or csv")
	}
	switch c.Output.DebugFormat {
	case imaging.FormatPNG, imaging.FormatJPEG, "jpeg", imaging.FormatWebP:
	default:
		return fmt.Errorf("output.debug_format must be png, jpg or webp")
	}
	if c.Output.ChartWidth < 100 || c.Output.ChartHeight < 100 {
		return fmt.Errorf("output.chart_width and output.chart_height must be at least 100")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("output.timezone: %w", err)
	}

	return nil
}

// AutoUnit reports whether the unit should be detected from the screenshot.
func (c *Config) AutoUnit() bool {
	return strings.EqualFold(c.Glucose.Unit, UnitAuto)
}

// Unit returns the configured unit, or the fallback unit in auto mode.
func (c *Config) Unit() (digitizer.Unit, error) {
	if c.AutoUnit() {
		return digitizer.ParseUnit(c.Glucose.FallbackUnit)
	}
	return digitizer.ParseUnit(c.Glucose.Unit)
}

// Scale returns the plotting scale for unit with any configured min/max
// overrides applied.
func (c *Config) Scale(unit digitizer.Unit) (digitizer.Scale, error) {
	s, err := digitizer.ScaleFor(unit)
	if err != nil {
		return digitizer.Scale{}, err
	}
	if c.Glucose.Min != nil {
		s.Range.Min = *c.Glucose.Min
	}
	if c.Glucose.Max != nil {
		s.Range.Max = *c.Glucose.Max
	}
	if !s.Range.Valid() {
		return digitizer.Scale{}, fmt.Errorf("glucose range %+v is empty", s.Range)
	}
	return s, nil
}

// Location returns the time zone readings are anchored in.
func (c *Config) Location() (*time.Location, error) {
	if c.Output.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Output.Timezone)
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "glucose-digitizer", "config.json")
}
