package config

import (
	"fmt"
	"image/color"
	"math/rand/v2"
	"os"
	"time"

	"github.com/san-kum/driftfield/internal/field"
	"github.com/san-kum/driftfield/internal/surface"
	"gopkg.in/yaml.v3"
)

const (
	DefaultWidth      = 1280
	DefaultHeight     = 720
	DefaultFPS        = 60
	DefaultFill       = "#ffffff"
	DefaultFillAlpha  = 0.5
	DefaultLink       = "#ffffff"
	DefaultBackground = "#0a0a0a"
	DefaultTheme      = "midnight"
	DefaultCellScale  = 6.0
)

type Config struct {
	Count        int     `yaml:"count"`
	Width        int     `yaml:"width"`
	Height       int     `yaml:"height"`
	FPS          int     `yaml:"fps"`
	Seed         uint64  `yaml:"seed"`
	Speed        float64 `yaml:"speed"`
	MinRadius    float64 `yaml:"min_radius"`
	MaxRadius    float64 `yaml:"max_radius"`
	LinkDistance float64 `yaml:"link_distance"`
	MaxLinkAlpha float64 `yaml:"max_link_alpha"`
	LineWidth    float64 `yaml:"line_width"`
	Fill         string  `yaml:"fill"`
	FillAlpha    float64 `yaml:"fill_alpha"`
	Link         string  `yaml:"link"`
	Background   string  `yaml:"background"`
	Theme        string  `yaml:"theme"`
	CellScale    float64 `yaml:"cell_scale"` // surface units per braille dot
}

func DefaultConfig() *Config {
	return &Config{
		Count:        field.DefaultCount,
		Width:        DefaultWidth,
		Height:       DefaultHeight,
		FPS:          DefaultFPS,
		Speed:        field.DefaultSpeed,
		MinRadius:    field.DefaultMinRadius,
		MaxRadius:    field.DefaultMaxRadius,
		LinkDistance: field.DefaultLinkDistance,
		MaxLinkAlpha: field.DefaultMaxLinkAlpha,
		LineWidth:    field.DefaultLineWidth,
		Fill:         DefaultFill,
		FillAlpha:    DefaultFillAlpha,
		Link:         DefaultLink,
		Background:   DefaultBackground,
		Theme:        DefaultTheme,
		CellScale:    DefaultCellScale,
	}
}

// Load reads a YAML file over the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads a YAML file over a copy of base.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) YAML() (string, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

func (c *Config) Validate() error {
	if c.Width < 0 || c.Height < 0 {
		return fmt.Errorf("surface size must be non-negative, got %dx%d", c.Width, c.Height)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("fps must be positive, got %d", c.FPS)
	}
	if c.CellScale <= 0 {
		return fmt.Errorf("cell_scale must be positive, got %f", c.CellScale)
	}
	if _, err := c.Params(); err != nil {
		return err
	}
	if _, err := c.BackgroundColor(); err != nil {
		return err
	}
	return nil
}

// Params converts the config into field parameters.
func (c *Config) Params() (field.Params, error) {
	fill, err := surface.ParseColor(c.Fill, c.FillAlpha)
	if err != nil {
		return field.Params{}, err
	}
	link, err := surface.ParseColor(c.Link, 1)
	if err != nil {
		return field.Params{}, err
	}
	p := field.Params{
		Count:        c.Count,
		Speed:        c.Speed,
		MinRadius:    c.MinRadius,
		MaxRadius:    c.MaxRadius,
		LinkDistance: c.LinkDistance,
		MaxLinkAlpha: c.MaxLinkAlpha,
		LineWidth:    c.LineWidth,
		Fill:         fill,
		Link:         link,
	}
	return p, p.Validate()
}

func (c *Config) BackgroundColor() (color.NRGBA, error) {
	if c.Background == "" {
		return color.NRGBA{}, nil
	}
	return surface.ParseColor(c.Background, 1)
}

// Source returns a PCG source for the configured seed. A zero seed is
// replaced with a time-based one and written back so the run can be
// repeated.
func (c *Config) Source() rand.Source {
	if c.Seed == 0 {
		c.Seed = uint64(time.Now().UnixNano())
	}
	return rand.NewPCG(c.Seed, c.Seed^0x9e3779b97f4a7c15)
}

// NewField samples a field of the configured size.
func (c *Config) NewField() (*field.Field, error) {
	p, err := c.Params()
	if err != nil {
		return nil, err
	}
	return field.New(c.Width, c.Height, p, c.Source())
}
