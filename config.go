package pictemplate

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the settings of a picture composition run.
type Config struct {
	// Template is the template file path. Empty selects the built-in one.
	Template string `yaml:"template"`
	// Orientation is "auto", "portrait" or "landscape".
	Orientation string `yaml:"orientation"`
	// CapturesCropping crops captures to fill their slots instead of
	// letterboxing them.
	CapturesCropping bool         `yaml:"captures_cropping"`
	Background       string       `yaml:"background"`
	Overlay          string       `yaml:"overlay"`
	Outlines         bool         `yaml:"outlines"`
	FontDirs         []string     `yaml:"font_dirs"`
	Texts            []TextConfig `yaml:"texts"`
	Output           OutputConfig `yaml:"output"`
}

// TextConfig describes one text entry.
type TextConfig struct {
	Text  string `yaml:"text"`
	Font  string `yaml:"font"`
	Color string `yaml:"color"`
	Align string `yaml:"align"`
}

// OutputConfig controls how the composed picture is encoded.
type OutputConfig struct {
	Format      string `yaml:"format"`
	JPEGQuality int    `yaml:"jpeg_quality"`
}

// OrientationAuto lets the index pick the orientation from the captures.
const OrientationAuto = "auto"

func (c *Config) defaults() {
	if c.Orientation == "" {
		c.Orientation = OrientationAuto
	}
	if c.Background == "" {
		c.Background = "#FFFFFF"
	}
	if c.Output.Format == "" {
		c.Output.Format = "png"
	}
	if c.Output.JPEGQuality <= 0 {
		c.Output.JPEGQuality = 90
	}
	for i := range c.Texts {
		if c.Texts[i].Color == "" {
			c.Texts[i].Color = "#000000"
		}
		if c.Texts[i].Align == "" {
			c.Texts[i].Align = "center"
		}
	}
}

// DefaultConfig returns a Config using the built-in template.
func DefaultConfig() *Config {
	cfg := &Config{}
	cfg.defaults()
	return cfg
}

// LoadConfigFile reads a YAML config file and fills unset values with
// defaults.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	cfg.defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that every value can be interpreted.
func (c *Config) Validate() error {
	var errs []string
	if !strings.EqualFold(c.Orientation, OrientationAuto) {
		if _, err := ParseOrientation(c.Orientation); err != nil {
			errs = append(errs, err.Error())
		}
	}
	if _, err := ParseHexColor(c.Background); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := ParseImageFormat(c.Output.Format); err != nil {
		errs = append(errs, err.Error())
	}
	if _, err := c.TextEntries(); err != nil {
		errs = append(errs, err.Error())
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w:\n  %s", ErrInvalidConfig, strings.Join(errs, "\n  "))
}

// SetText sets the text of the i-th text entry, adding default entries as
// needed.
func (c *Config) SetText(i int, text string) {
	for len(c.Texts) <= i {
		c.Texts = append(c.Texts, TextConfig{Color: "#000000", Align: "center"})
	}
	c.Texts[i].Text = text
}

// ResizePolicy returns the capture resize policy.
func (c *Config) ResizePolicy() ResizePolicy {
	if c.CapturesCropping {
		return ResizeCrop
	}
	return ResizeFit
}

// OutputFormat returns the format to write path with: the one named by its
// extension when recognised, the configured output format otherwise.
func (c *Config) OutputFormat(path string) ImageFormat {
	if f, ok := formatFromExt(path); ok {
		return f
	}
	f, err := ParseImageFormat(c.Output.Format)
	if err != nil {
		return ImageFormatPNG
	}
	return f
}

// BackgroundColor returns the parsed background color.
func (c *Config) BackgroundColor() (color.Color, error) {
	return ParseHexColor(c.Background)
}

// TextEntries converts the configured texts into compositor entries.
func (c *Config) TextEntries() ([]TextEntry, error) {
	entries := make([]TextEntry, 0, len(c.Texts))
	for i, t := range c.Texts {
		col, err := ParseHexColor(t.Color)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i+1, err)
		}
		align, err := ParseAlignment(t.Align)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i+1, err)
		}
		entries = append(entries, TextEntry{Text: t.Text, Font: t.Font, Color: col, Align: align})
	}
	return entries, nil
}

// ResolveOrientation returns the configured orientation, or asks the index
// for the best one when set to auto.
func (c *Config) ResolveOrientation(idx *Index, images []image.Image) (Orientation, error) {
	if strings.EqualFold(c.Orientation, OrientationAuto) {
		return idx.BestOrientation(images), nil
	}
	return ParseOrientation(c.Orientation)
}
