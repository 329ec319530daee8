package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Mining thresholds
	MinSupport    float64 `mapstructure:"min_support" yaml:"min_support"`
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence"`
	MinLift       float64 `mapstructure:"min_lift" yaml:"min_lift"`
	MaxLen        int     `mapstructure:"max_len" yaml:"max_len"`
	Workers       int     `mapstructure:"workers" yaml:"workers"`

	// Encoding
	UseEncoder    bool   `mapstructure:"use_encoder" yaml:"use_encoder"`
	StrictBinary  bool   `mapstructure:"strict_binary" yaml:"strict_binary"`
	ItemSeparator string `mapstructure:"item_separator" yaml:"item_separator"`
	MaxRows       int    `mapstructure:"max_rows" yaml:"max_rows"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format"`
	TopN         int    `mapstructure:"top_n" yaml:"top_n"`
	ChartWidth   int    `mapstructure:"chart_width" yaml:"chart_width"`
}

const dirName = ".basketloom"

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		MinSupport:    0.2,
		MinConfidence: 0.5,
		MinLift:       1.0,
		UseEncoder:    true,
		ItemSeparator: ",",
		OutputFormat:  "md",
		TopN:          10,
		ChartWidth:    40,
	}
}

// DefaultPath returns ~/.basketloom/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, dirName, "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.basketloom/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (handled by the caller) > env > config file > defaults.
func Load(cfgFile string) (*Global, error) {
	v := viper.New()
	v.SetEnvPrefix("BASKETLOOM")
	v.AutomaticEnv()

	d := Defaults()
	v.SetDefault("min_support", d.MinSupport)
	v.SetDefault("min_confidence", d.MinConfidence)
	v.SetDefault("min_lift", d.MinLift)
	v.SetDefault("max_len", d.MaxLen)
	v.SetDefault("workers", d.Workers)
	v.SetDefault("use_encoder", d.UseEncoder)
	v.SetDefault("strict_binary", d.StrictBinary)
	v.SetDefault("item_separator", d.ItemSeparator)
	v.SetDefault("max_rows", d.MaxRows)
	v.SetDefault("output_format", d.OutputFormat)
	v.SetDefault("top_n", d.TopN)
	v.SetDefault("chart_width", d.ChartWidth)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, dirName))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	// A missing file is fine; a broken one is not.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}
