package config

import (
	"fmt"
	"math"
	"os"

	"github.com/san-kum/orbitlab/internal/dynamo"
	"gopkg.in/yaml.v3"
)

const (
	DefaultG              = 0.5
	DefaultSunMass        = 10000.0
	DefaultSunRadius      = 40.0
	DefaultEscapeDistance = 5000.0
	DefaultTimeScale      = 0.5
	DefaultMinDistance    = 1e-3
	DefaultPlanets        = 5
	DefaultSpeedFactor    = 1.5
	DefaultDensity        = 0.001
	DefaultDragStiffness  = 0.2
	DefaultDragDamping    = 0.5
	DefaultFPS            = 60
	DefaultFrames         = 3600
)

type Config struct {
	G              float64 `yaml:"g"`
	SunMass        float64 `yaml:"sun_mass"`
	SunRadius      float64 `yaml:"sun_radius"`
	SunX           float64 `yaml:"sun_x"`
	SunY           float64 `yaml:"sun_y"`
	EscapeDistance float64 `yaml:"escape_distance"`
	TimeScale      float64 `yaml:"time_scale"`
	MinDistance    float64 `yaml:"min_distance"`
	Planets        int     `yaml:"planets"`
	Seed           int64   `yaml:"seed"`

	PlanetRadiusMin  float64 `yaml:"planet_radius_min"`
	PlanetRadiusMax  float64 `yaml:"planet_radius_max"`
	OrbitDistanceMin float64 `yaml:"orbit_distance_min"`
	OrbitDistanceMax float64 `yaml:"orbit_distance_max"`
	OrbitSpeedFactor float64 `yaml:"orbit_speed_factor"`
	PlanetDensity    float64 `yaml:"planet_density"`

	DragStiffness    float64 `yaml:"drag_stiffness"`
	DragDamping      float64 `yaml:"drag_damping"`
	GravityWhileHeld bool    `yaml:"gravity_while_held"`

	MaxRadius float64 `yaml:"max_radius"`
	MaxMass   float64 `yaml:"max_mass"`

	FPS    int `yaml:"fps"`
	Frames int `yaml:"frames"`
}

func DefaultConfig() *Config {
	return &Config{
		G:                DefaultG,
		SunMass:          DefaultSunMass,
		SunRadius:        DefaultSunRadius,
		SunX:             640,
		SunY:             360,
		EscapeDistance:   DefaultEscapeDistance,
		TimeScale:        DefaultTimeScale,
		MinDistance:      DefaultMinDistance,
		Planets:          DefaultPlanets,
		PlanetRadiusMin:  8,
		PlanetRadiusMax:  20,
		OrbitDistanceMin: 150,
		OrbitDistanceMax: 300,
		OrbitSpeedFactor: DefaultSpeedFactor,
		PlanetDensity:    DefaultDensity,
		DragStiffness:    DefaultDragStiffness,
		DragDamping:      DefaultDragDamping,
		GravityWhileHeld: true,
		MaxRadius:        200,
		MaxMass:          1e9,
		FPS:              DefaultFPS,
		Frames:           DefaultFrames,
	}
}

func Load(path string) (*Config, error) {
	return LoadOver(path, DefaultConfig())
}

// LoadOver reads path on top of a copy of base, so keys the file omits
// keep base's values.
func LoadOver(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
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

// Validate checks every session constant.
func (c *Config) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"g", c.G},
		{"sun_mass", c.SunMass},
		{"sun_radius", c.SunRadius},
		{"escape_distance", c.EscapeDistance},
		{"time_scale", c.TimeScale},
		{"min_distance", c.MinDistance},
		{"planet_radius_min", c.PlanetRadiusMin},
		{"orbit_distance_min", c.OrbitDistanceMin},
		{"planet_density", c.PlanetDensity},
		{"max_radius", c.MaxRadius},
		{"max_mass", c.MaxMass},
	}
	for _, p := range positive {
		if !finite(p.v) || p.v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %f", dynamo.ErrInvalidConfig, p.name, p.v)
		}
	}
	bounded := []struct {
		name string
		v    float64
	}{
		{"sun_x", c.SunX},
		{"sun_y", c.SunY},
		{"planet_radius_max", c.PlanetRadiusMax},
		{"orbit_distance_max", c.OrbitDistanceMax},
		{"orbit_speed_factor", c.OrbitSpeedFactor},
		{"drag_stiffness", c.DragStiffness},
		{"drag_damping", c.DragDamping},
	}
	for _, p := range bounded {
		if !finite(p.v) {
			return fmt.Errorf("%w: %s must be finite, got %f", dynamo.ErrInvalidConfig, p.name, p.v)
		}
	}
	if c.PlanetRadiusMax < c.PlanetRadiusMin {
		return fmt.Errorf("%w: planet_radius_max below planet_radius_min", dynamo.ErrInvalidConfig)
	}
	if c.OrbitDistanceMax < c.OrbitDistanceMin {
		return fmt.Errorf("%w: orbit_distance_max below orbit_distance_min", dynamo.ErrInvalidConfig)
	}
	if c.PlanetRadiusMax > c.MaxRadius {
		return fmt.Errorf("%w: planet_radius_max above max_radius", dynamo.ErrInvalidConfig)
	}
	if c.EscapeDistance <= c.SunRadius {
		return fmt.Errorf("%w: escape_distance inside the sun", dynamo.ErrInvalidConfig)
	}
	if c.Planets < 0 {
		return fmt.Errorf("%w: planets must not be negative", dynamo.ErrInvalidConfig)
	}
	if c.DragStiffness <= 0 || c.DragStiffness > 1 {
		return fmt.Errorf("%w: drag_stiffness must be in (0, 1]", dynamo.ErrInvalidConfig)
	}
	if c.DragDamping < 0 || c.DragDamping > 1 {
		return fmt.Errorf("%w: drag_damping must be in [0, 1]", dynamo.ErrInvalidConfig)
	}
	if c.FPS <= 0 {
		return fmt.Errorf("%w: fps must be positive", dynamo.ErrInvalidConfig)
	}
	return nil
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Clone returns an independent copy.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}
