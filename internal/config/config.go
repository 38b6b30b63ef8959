// Package config is the effective settings of one rbh run. Values are merged
// by Viper from flags, RBH_* environment variables and an optional YAML file
// (see internal/cli) and unmarshalled into Config.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"rbh-core/hit"
	"rbh-core/rbh"
)

// Output formats.
const (
	OutputText  = "text"
	OutputJSON  = "json"
	OutputJSONL = "jsonl"
)

// Malformed row handling.
const (
	MalformedFail = "fail"
	MalformedSkip = "skip"
)

// EnvPrefix is the environment prefix, e.g. RBH_EVALUE_CUTOFF.
const EnvPrefix = "RBH"

// Config holds every resolve setting.
type Config struct {
	// inputs
	Forward string `mapstructure:"forward" yaml:"forward"`
	Reverse string `mapstructure:"reverse" yaml:"reverse"`

	// resolution
	EValueCutoff  string  `mapstructure:"evalue-cutoff" yaml:"evalue-cutoff"` // quote in YAML files; bare tiny floats lose precision
	Policy        string  `mapstructure:"policy" yaml:"policy"`
	TopN          int     `mapstructure:"top-n" yaml:"top-n"`
	MinBitScore   float64 `mapstructure:"min-bitscore" yaml:"min-bitscore"`
	Bidirectional bool    `mapstructure:"bidirectional" yaml:"bidirectional"`
	Threads       int     `mapstructure:"threads" yaml:"threads"`

	// output
	Output      string `mapstructure:"output" yaml:"output"`
	Sort        bool   `mapstructure:"sort" yaml:"sort"`
	NoHeader    bool   `mapstructure:"no-header" yaml:"no-header"`
	OnMalformed string `mapstructure:"on-malformed" yaml:"on-malformed"`
	Diagnostics string `mapstructure:"diagnostics" yaml:"diagnostics,omitempty"`
	DB          string `mapstructure:"db" yaml:"db,omitempty"`
	MetricsFile string `mapstructure:"metrics-file" yaml:"metrics-file,omitempty"`

	// logging and exit status
	LogLevel        string `mapstructure:"log-level" yaml:"log-level"`
	LogFormat       string `mapstructure:"log-format" yaml:"log-format"`
	NoMatchExitCode int    `mapstructure:"no-match-exit-code" yaml:"no-match-exit-code"`

	// filled by Validate
	Cutoff       decimal.Decimal `mapstructure:"-" yaml:"-"`
	ParsedPolicy rbh.Policy      `mapstructure:"-" yaml:"-"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		EValueCutoff:    "1e-50",
		Policy:          rbh.PolicyStrict,
		TopN:            3,
		Output:          OutputText,
		OnMalformed:     MalformedFail,
		LogLevel:        "info",
		LogFormat:       "text",
		NoMatchExitCode: 1,
	}
}

// SetDefaults registers Default() on v so unset keys fall back to it.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("evalue-cutoff", d.EValueCutoff)
	v.SetDefault("policy", d.Policy)
	v.SetDefault("top-n", d.TopN)
	v.SetDefault("output", d.Output)
	v.SetDefault("on-malformed", d.OnMalformed)
	v.SetDefault("log-level", d.LogLevel)
	v.SetDefault("log-format", d.LogFormat)
	v.SetDefault("no-match-exit-code", d.NoMatchExitCode)
}

// Load unmarshals v and validates the result.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return c, err
	}
	return c, nil
}

// Validate checks ranges and enums and fills Cutoff and ParsedPolicy.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Forward) == "" {
		return fmt.Errorf("--forward is required")
	}
	if strings.TrimSpace(c.Reverse) == "" {
		return fmt.Errorf("--reverse is required")
	}
	if c.Forward == "-" && c.Reverse == "-" {
		return fmt.Errorf("--forward and --reverse cannot both read stdin")
	}

	cut, err := hit.ParseEValue(c.EValueCutoff)
	if err != nil {
		return fmt.Errorf("--evalue-cutoff: %v", err)
	}
	c.Cutoff = cut

	p, err := rbh.PolicyByName(c.Policy, c.TopN, c.MinBitScore)
	if err != nil {
		return fmt.Errorf("--policy: %v", err)
	}
	c.ParsedPolicy = p

	if c.Threads < 0 {
		return fmt.Errorf("--threads must be >= 0 (0 = all CPUs), got %d", c.Threads)
	}
	switch c.Output {
	case OutputText, OutputJSON, OutputJSONL:
	default:
		return fmt.Errorf("--output must be %s | %s | %s, got %q", OutputText, OutputJSON, OutputJSONL, c.Output)
	}
	switch c.OnMalformed {
	case MalformedFail, MalformedSkip:
	default:
		return fmt.Errorf("--on-malformed must be %s | %s, got %q", MalformedFail, MalformedSkip, c.OnMalformed)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("--log-format must be text | json, got %q", c.LogFormat)
	}
	if c.NoMatchExitCode < 0 || c.NoMatchExitCode > 255 {
		return fmt.Errorf("--no-match-exit-code must be in 0..255, got %d", c.NoMatchExitCode)
	}
	return nil
}

// Options converts the validated config into resolver options.
func (c Config) Options() rbh.Options {
	return rbh.Options{
		Policy:        c.ParsedPolicy,
		Threads:       c.Threads,
		Bidirectional: c.Bidirectional,
	}.WithCutoff(c.Cutoff)
}

// WriteYAML renders c as YAML.
func WriteYAML(w io.Writer, c Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}
