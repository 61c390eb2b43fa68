package snapfilter

import (
	"errors"
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// ErrConfigValidation is returned when configuration validation fails
var ErrConfigValidation = errors.New("configuration validation failed")

// Output formats accepted by OutputConfig.Format
const (
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatProto = "proto"
)

// Color modes accepted by DiagnosticsConfig.Color
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config represents the snapfilter configuration
type Config struct {
	Output      OutputConfig      `yaml:"output"`
	Diagnostics DiagnosticsConfig `yaml:"diagnostics"`
	Transform   TransformConfig   `yaml:"transform"`
}

// OutputConfig controls how compiled trees are written
type OutputConfig struct {
	Format string `yaml:"format"`
	// Indent is the JSON/YAML indent width; 0 keeps the canonical compact JSON.
	Indent int `yaml:"indent"`
}

// DiagnosticsConfig controls how compile errors are printed
type DiagnosticsConfig struct {
	Color   string `yaml:"color"`
	Context *bool  `yaml:"context"` // Pointer to distinguish between unset and false
}

// ShowContext returns true unless source context is explicitly disabled
func (d *DiagnosticsConfig) ShowContext() bool {
	return d.Context == nil || *d.Context
}

// TransformConfig maps script names to files holding record transformations
type TransformConfig struct {
	Scripts map[string]string `yaml:"scripts"`
}

// LoadConfig loads configuration from file
func LoadConfig(configPath string) (*Config, error) {
	// Load .env files first
	err := loadEnvFiles()
	if err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	// Check if config file exists
	_, err = os.Stat(configPath)
	if os.IsNotExist(err) {
		// Return default configuration if file doesn't exist
		config := getDefaultConfig()
		expandConfigEnvVars(config)

		return config, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML with strict mode to detect unknown fields
	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	expandConfigEnvVars(&config)

	return &config, nil
}

// validateConfig validates the configuration for common errors and inconsistencies
func validateConfig(config *Config) error {
	validFormats := map[string]bool{
		FormatJSON:  true,
		FormatYAML:  true,
		FormatProto: true,
	}
	if !validFormats[config.Output.Format] {
		return fmt.Errorf("%w: output.format '%s' is invalid: must be one of json, yaml, proto", ErrConfigValidation, config.Output.Format)
	}

	if config.Output.Indent < 0 || config.Output.Indent > 8 {
		return fmt.Errorf("%w: output.indent must be between 0 and 8, got %d", ErrConfigValidation, config.Output.Indent)
	}

	validColors := map[string]bool{
		ColorAuto:   true,
		ColorAlways: true,
		ColorNever:  true,
	}
	if !validColors[config.Diagnostics.Color] {
		return fmt.Errorf("%w: diagnostics.color '%s' is invalid: must be one of auto, always, never", ErrConfigValidation, config.Diagnostics.Color)
	}

	for name, path := range config.Transform.Scripts {
		if name == "" {
			return fmt.Errorf("%w: transform.scripts: name is required", ErrConfigValidation)
		}

		if path == "" {
			return fmt.Errorf("%w: transform script '%s': path is required", ErrConfigValidation, name)
		}
	}

	return nil
}

// getDefaultConfig returns the default configuration
func getDefaultConfig() *Config {
	return &Config{
		Output: OutputConfig{
			Format: FormatJSON,
			Indent: 0,
		},
		Diagnostics: DiagnosticsConfig{
			Color:   ColorAuto,
			Context: nil, // Enabled by default
		},
		Transform: TransformConfig{
			Scripts: make(map[string]string),
		},
	}
}

// applyDefaults fills in values left empty in the configuration file
func applyDefaults(config *Config) {
	if config.Output.Format == "" {
		config.Output.Format = FormatJSON
	}

	if config.Diagnostics.Color == "" {
		config.Diagnostics.Color = ColorAuto
	}

	if config.Transform.Scripts == nil {
		config.Transform.Scripts = make(map[string]string)
	}
}

// loadEnvFiles loads .env files if they exist
func loadEnvFiles() error {
	// Try to load .env file from current directory
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

var (
	bracedEnvVar = regexp.MustCompile(`\$\{([^}]+)\}`)
	plainEnvVar  = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1] // Remove ${ and }
		return os.Getenv(varName)
	})

	s = plainEnvVar.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[1:] // Remove $
		return os.Getenv(varName)
	})

	return s
}

// expandConfigEnvVars expands environment variables in config
func expandConfigEnvVars(config *Config) {
	for name, path := range config.Transform.Scripts {
		config.Transform.Scripts[name] = expandEnvVars(path)
	}
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
