package config

import "sort"

// preset applies its overrides to a copy of the defaults.
type preset func(c *Config)

var Presets = map[string]preset{
	"default": func(c *Config) {},
	"dense": func(c *Config) {
		c.Count = 220
		c.LinkDistance = 90
	},
	"sparse": func(c *Config) {
		c.Count = 40
		c.LinkDistance = 180
		c.MaxLinkAlpha = 0.3
	},
	"calm": func(c *Config) {
		c.Speed = 0.08
		c.FPS = 30
	},
	"storm": func(c *Config) {
		c.Count = 160
		c.Speed = 1.5
		c.MaxRadius = 4
	},
}

// GetPreset returns a fresh config for the named preset, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
