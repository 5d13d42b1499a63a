package internal

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds the tool defaults. Every field can be overridden per
// invocation by a CLI flag or per fixture by a batch manifest entry.
type Config struct {
	Width       int    `mapstructure:"width"`
	Height      int    `mapstructure:"height"`
	Format      string `mapstructure:"format"`
	Border      int    `mapstructure:"border"`
	BorderColor string `mapstructure:"border_color"`
	FillColor   string `mapstructure:"fill_color"`
	OutputDir   string `mapstructure:"output_dir"`
	Atomic      bool   `mapstructure:"atomic"`
}

// LoadConfig reads fixel.toml from the user config directory, falling back
// to built-in defaults when no config file exists.
func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}

	viper.SetConfigName("fixel")
	viper.SetConfigType("toml")
	viper.AddConfigPath(filepath.Join(configDir, "fixel"))

	viper.SetDefault("width", 640)
	viper.SetDefault("height", 480)
	viper.SetDefault("format", "jpeg")
	viper.SetDefault("border", 8)
	viper.SetDefault("border_color", "#202020")
	viper.SetDefault("fill_color", "#D8D8D8")
	viper.SetDefault("output_dir", ".")
	viper.SetDefault("atomic", false)

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found; that's OK, just use defaults
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Request builds a core request from the config defaults. Callers overlay
// their own width/height/size/format before generating.
func (c *Config) Request() (Request, error) {
	format, err := ParseFormat(c.Format)
	if err != nil {
		return Request{}, err
	}
	borderColor, err := ParseColor(c.BorderColor)
	if err != nil {
		return Request{}, fmt.Errorf("border_color: %w", err)
	}
	fillColor, err := ParseColor(c.FillColor)
	if err != nil {
		return Request{}, fmt.Errorf("fill_color: %w", err)
	}
	return Request{
		Width:       c.Width,
		Height:      c.Height,
		Format:      format,
		Border:      c.Border,
		BorderColor: borderColor,
		FillColor:   fillColor,
	}, nil
}
