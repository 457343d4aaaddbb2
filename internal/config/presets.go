package config

// Presets are named overlays on DefaultConfig.
var Presets = map[string]func(*Config){
	"default": func(c *Config) {},
	"crowded": func(c *Config) {
		c.Planets = 24
		c.PlanetRadiusMin, c.PlanetRadiusMax = 4, 10
		c.OrbitDistanceMin, c.OrbitDistanceMax = 90, 340
	},
	"sparse": func(c *Config) {
		c.Planets = 2
		c.OrbitDistanceMin, c.OrbitDistanceMax = 220, 320
	},
	"escape": func(c *Config) {
		c.Planets = 6
		c.OrbitSpeedFactor = 2.4
	},
	"tight": func(c *Config) {
		c.Planets = 8
		c.OrbitDistanceMin, c.OrbitDistanceMax = 60, 110
		c.OrbitSpeedFactor = 1.2
	},
	"heavy": func(c *Config) {
		c.SunMass = 40000
		c.SunRadius = 60
		c.OrbitDistanceMin, c.OrbitDistanceMax = 200, 320
	},
}

// GetPreset returns DefaultConfig with the named overlay applied, or nil.
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
	return names
}
