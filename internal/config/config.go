// Package config handles signmaker configuration loading and management.
package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Config holds all signmaker settings.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Output  OutputConfig  `yaml:"output"`
	Label   LabelConfig   `yaml:"label"`
	Styles  []StyleConfig `yaml:"styles"`
	Logging LoggingConfig `yaml:"logging"`
}

// DataConfig holds template asset paths.
type DataConfig struct {
	ModelsDir   string `yaml:"models_dir"`   // Holds <style>_startsign.p3d and <style>_endsign.p3d
	FontFile    string `yaml:"font_file"`    // TrueType/OpenType font for label text
	DefinesFile string `yaml:"defines_file"` // Copied next to the generated config.cpp
}

// OutputConfig holds where and how generated files are named.
type OutputConfig struct {
	Dir    string `yaml:"dir"`    // Parent of the <map>_signs folder
	Prefix string `yaml:"prefix"` // Model file prefix, e.g. "rnc" -> rnc_<town>_start.p3d
}

// LabelConfig holds town-name image settings.
type LabelConfig struct {
	Width    int     `yaml:"width"`
	Height   int     `yaml:"height"`
	FontSize float64 `yaml:"font_size"` // In pixels
}

// StyleConfig describes one sign type, selected by its 1-based position.
type StyleConfig struct {
	Name      string `yaml:"name"`       // Template model prefix
	TextColor string `yaml:"text_color"` // "black", "white" or "#rrggbb"
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			ModelsDir:   "./data/models",
			FontFile:    "./data/fonts/din1451alt.ttf",
			DefinesFile: "./data/defines.hpp",
		},
		Output: OutputConfig{
			Dir:    ".",
			Prefix: "rnc",
		},
		Label: LabelConfig{
			Width:    1024,
			Height:   128,
			FontSize: 128,
		},
		Styles: []StyleConfig{
			{Name: "altis", TextColor: "black"},
			{Name: "livonia", TextColor: "black"},
			{Name: "malden", TextColor: "black"},
			{Name: "tanoa", TextColor: "white"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Style returns the style for a 1-based sign type.
func (c *Config) Style(signType int) (StyleConfig, error) {
	if signType < 1 || signType > len(c.Styles) {
		return StyleConfig{}, fmt.Errorf("sign type %d not valid, expected 1..%d", signType, len(c.Styles))
	}
	return c.Styles[signType-1], nil
}

// Validate checks settings that would otherwise fail late in a build.
func (c *Config) Validate() error {
	if c.Label.Width <= 0 || c.Label.Height <= 0 {
		return fmt.Errorf("label size %dx%d must be positive", c.Label.Width, c.Label.Height)
	}
	if c.Label.FontSize <= 0 {
		return fmt.Errorf("label font size %v must be positive", c.Label.FontSize)
	}
	if len(c.Styles) == 0 {
		return fmt.Errorf("no sign styles configured")
	}
	for i, s := range c.Styles {
		if s.Name == "" {
			return fmt.Errorf("style %d has no name", i+1)
		}
		if _, err := s.Color(); err != nil {
			return fmt.Errorf("style %d (%s): %w", i+1, s.Name, err)
		}
	}
	return nil
}

// Color parses TextColor.
func (s StyleConfig) Color() (color.RGBA, error) {
	switch strings.ToLower(s.TextColor) {
	case "", "black":
		return color.RGBA{A: 0xff}, nil
	case "white":
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}, nil
	}

	hex := strings.TrimPrefix(s.TextColor, "#")
	if len(hex) != 6 || len(hex) == len(s.TextColor) {
		return color.RGBA{}, fmt.Errorf("invalid text color %q", s.TextColor)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid text color %q", s.TextColor)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
