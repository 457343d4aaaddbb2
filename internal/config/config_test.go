package config

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orbitlab/internal/dynamo"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.G != 0.5 {
		t.Errorf("expected g 0.5, got %f", cfg.G)
	}
	if cfg.SunMass != 10000 || cfg.SunRadius != 40 {
		t.Errorf("unexpected sun constants: %f %f", cfg.SunMass, cfg.SunRadius)
	}
	if cfg.EscapeDistance != 5000 {
		t.Errorf("expected escape distance 5000, got %f", cfg.EscapeDistance)
	}
	if cfg.TimeScale != 0.5 {
		t.Errorf("expected time scale 0.5, got %f", cfg.TimeScale)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero g", func(c *Config) { c.G = 0 }},
		{"negative sun mass", func(c *Config) { c.SunMass = -1 }},
		{"zero time scale", func(c *Config) { c.TimeScale = 0 }},
		{"inverted radius range", func(c *Config) { c.PlanetRadiusMax = 1 }},
		{"inverted orbit range", func(c *Config) { c.OrbitDistanceMax = 10 }},
		{"escape inside sun", func(c *Config) { c.EscapeDistance = 10 }},
		{"stiffness above one", func(c *Config) { c.DragStiffness = 2 }},
		{"negative planets", func(c *Config) { c.Planets = -1 }},
		{"nan g", func(c *Config) { c.G = math.NaN() }},
		{"infinite sun mass", func(c *Config) { c.SunMass = math.Inf(1) }},
		{"nan time scale", func(c *Config) { c.TimeScale = math.NaN() }},
		{"infinite escape distance", func(c *Config) { c.EscapeDistance = math.Inf(1) }},
		{"nan drag damping", func(c *Config) { c.DragDamping = math.NaN() }},
		{"nan drag stiffness", func(c *Config) { c.DragStiffness = math.NaN() }},
		{"infinite sun x", func(c *Config) { c.SunX = math.Inf(-1) }},
		{"nan orbit speed factor", func(c *Config) { c.OrbitSpeedFactor = math.NaN() }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); !errors.Is(err, dynamo.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "orbit.yaml")

	cfg := DefaultConfig()
	cfg.Planets = 9
	cfg.Seed = 42
	cfg.GravityWhileHeld = false
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if loaded.Planets != 9 || loaded.Seed != 42 || loaded.GravityWhileHeld {
		t.Errorf("round trip lost values: %+v", loaded)
	}
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := os.WriteFile(path, []byte("planets: 3\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Planets != 3 {
		t.Errorf("expected 3 planets, got %d", cfg.Planets)
	}
	if cfg.G != DefaultG {
		t.Errorf("expected default g, got %f", cfg.G)
	}
}

func TestLoad_Invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("g: -2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("crowded")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Planets != 24 {
		t.Errorf("expected 24 planets, got %d", cfg.Planets)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("preset invalid: %v", err)
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets()
	if len(presets) != len(Presets) {
		t.Errorf("expected %d presets, got %d", len(Presets), len(presets))
	}
	for _, name := range presets {
		if err := GetPreset(name).Validate(); err != nil {
			t.Errorf("preset %s invalid: %v", name, err)
		}
	}
}

func TestSet(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Set("orbit_speed_factor", 1.3); err != nil {
		t.Fatal(err)
	}
	if cfg.OrbitSpeedFactor != 1.3 {
		t.Errorf("expected 1.3, got %f", cfg.OrbitSpeedFactor)
	}
	if err := cfg.Set("planets", 7.9); err != nil {
		t.Fatal(err)
	}
	if cfg.Planets != 7 {
		t.Errorf("expected 7 planets, got %d", cfg.Planets)
	}
	if err := cfg.Set("gravity_while_held", 0); err != nil {
		t.Fatal(err)
	}
	if cfg.GravityWhileHeld {
		t.Error("expected gravity_while_held false")
	}
	if err := cfg.Set("nope", 1); err == nil {
		t.Error("expected unknown key error")
	}
	if err := cfg.Set("g", -1); err == nil {
		t.Error("expected validation error")
	}
	if cfg.G != DefaultG {
		t.Errorf("failed set modified config: g=%f", cfg.G)
	}
	if err := cfg.Set("g", math.NaN()); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for nan g, got %v", err)
	}
	if err := cfg.Set("sun_mass", math.Inf(1)); !errors.Is(err, dynamo.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig for infinite sun_mass, got %v", err)
	}
	if cfg.G != DefaultG || cfg.SunMass != DefaultSunMass {
		t.Errorf("rejected set modified config: g=%f sun_mass=%f", cfg.G, cfg.SunMass)
	}
}

func TestLoad_NonFinite(t *testing.T) {
	for _, body := range []string{"g: .nan\n", "time_scale: .inf\n", "sun_x: -.inf\n"} {
		path := filepath.Join(t.TempDir(), "nonfinite.yaml")
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Load(path); !errors.Is(err, dynamo.ErrInvalidConfig) {
			t.Errorf("%q: expected ErrInvalidConfig, got %v", body, err)
		}
	}
}

func TestGet(t *testing.T) {
	cfg := DefaultConfig()
	tests := []struct {
		key  string
		want float64
	}{
		{"g", DefaultG},
		{"planets", DefaultPlanets},
		{"gravity_while_held", 1},
		{"fps", DefaultFPS},
	}
	for _, tt := range tests {
		got, err := cfg.Get(tt.key)
		if err != nil {
			t.Fatalf("%s: %v", tt.key, err)
		}
		if got != tt.want {
			t.Errorf("%s: expected %f, got %f", tt.key, tt.want, got)
		}
	}
	if _, err := cfg.Get("nope"); err == nil {
		t.Error("expected unknown key error")
	}
}

func TestLoadOver_Preset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "over.yaml")
	if err := os.WriteFile(path, []byte("seed: 9\n"), 0644); err != nil {
		t.Fatal(err)
	}
	base := GetPreset("heavy")
	cfg, err := LoadOver(path, base)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Seed != 9 || cfg.SunMass != 40000 {
		t.Errorf("expected preset sun mass with file seed, got mass=%f seed=%d", cfg.SunMass, cfg.Seed)
	}
	if base.Seed != 0 {
		t.Error("base must not be modified")
	}
}
