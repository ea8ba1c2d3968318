package config

import "sort"

// Presets are named variations on the default Pulsar motor.
var Presets = map[string]func(*Config){
	"pulsar": func(c *Config) {},
	"kv-valve": func(c *Config) {
		c.Feed.Valve = "kv"
	},
	"cold-tank": func(c *Config) {
		c.Tank.Temperature = 295.15
	},
	"short-grain": func(c *Config) {
		c.Grain.PortLength = 0.6
		c.Grain.OuterDiameter = 0.05
	},
	"strict-flux": func(c *Config) {
		c.Safety.StopOnExcessiveFlux = true
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
