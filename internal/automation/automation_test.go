package automation

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/lifecycle"
)

const dragAndLock = `
name: drag-and-lock
frames: 40
set:
  sun_x: 0
  sun_y: 0
  planets: 0
bodies:
  - position: {x: 200, y: 0}
    radius: 10
    name: Target
events:
  - frame: 0
    action: pointer_down
    x: 200
    y: 0
  - frame: 1
    action: pointer_move
    x: 260
    y: 0
  - frame: 20
    action: pointer_up
  - frame: 21
    action: toggle_lock
  - frame: 22
    action: set
    id: 1
    field: color
    value: "#123456"
  - frame: 23
    action: add
    body:
      position: {x: 5001, y: 0}
      velocity: {x: 0, y: 0}
`

func TestParseScenario(t *testing.T) {
	s, err := ParseScenario([]byte(dragAndLock))
	if err != nil {
		t.Fatal(err)
	}
	if s.Name != "drag-and-lock" || len(s.Events) != 6 || len(s.Bodies) != 1 {
		t.Fatalf("unexpected scenario: %+v", s)
	}
	if s.Events[4].Field != dynamo.FieldColor {
		t.Errorf("field = %v", s.Events[4].Field)
	}
	if s.Bodies[0].Position == nil || s.Bodies[0].Position.X != 200 {
		t.Errorf("body position not decoded: %+v", s.Bodies[0])
	}
}

func TestParseScenario_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no frames", "name: x\n"},
		{"late event", "frames: 5\nevents:\n  - frame: 5\n    action: pointer_up\n"},
		{"unknown action", "frames: 5\nevents:\n  - frame: 1\n    action: explode\n"},
		{"bad field", "frames: 5\nevents:\n  - frame: 1\n    action: draft\n    field: weight\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseScenario([]byte(tt.yaml)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestRunScenario(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.yaml")
	if err := os.WriteFile(path, []byte(dragAndLock), 0644); err != nil {
		t.Fatal(err)
	}
	s, err := LoadScenario(path)
	if err != nil {
		t.Fatal(err)
	}
	res, err := RunScenario(context.Background(), s, config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Errors) != 0 {
		t.Fatalf("command errors: %v", res.Errors)
	}

	final, _ := res.Final()
	var target *dynamo.BodyView
	for i := range final.Bodies {
		if final.Bodies[i].ID == 1 {
			target = &final.Bodies[i]
		}
	}
	if target == nil {
		t.Fatal("target planet missing")
	}
	if !target.Locked || target.Held || target.Color != "#123456" {
		t.Errorf("target = %+v", *target)
	}
	if target.Position.X < 230 {
		t.Errorf("drag did not move target: x=%f", target.Position.X)
	}
	want := lifecycle.Removal{ID: 2, Reason: lifecycle.Escape}
	if len(res.Removed) != 1 || res.Removed[0] != want {
		t.Errorf("removed = %v, want %v", res.Removed, want)
	}
	if res.Metrics["held_fraction"] <= 0 {
		t.Error("held fraction not recorded")
	}
}

func TestScenarioPreset(t *testing.T) {
	s := &Scenario{Frames: 1, Preset: "crowded", Set: map[string]float64{"planets": 2}}
	cfg, err := s.WorldConfig(config.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Planets != 2 || cfg.PlanetRadiusMax != 10 {
		t.Errorf("preset/override not applied: %+v", cfg)
	}
	s.Preset = "missing"
	if _, err := s.WorldConfig(config.DefaultConfig()); err == nil {
		t.Error("expected unknown preset error")
	}
}

func TestRunSweep(t *testing.T) {
	base := config.DefaultConfig()
	base.Planets = 2
	points, err := RunSweep(context.Background(), &ParameterSweep{
		Param:    "orbit_speed_factor",
		ParamMin: 1.2,
		ParamMax: 1.6,
		NumSteps: 3,
		Frames:   20,
		Seeds:    2,
	}, base, nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 || math.Abs(points[1].Param-1.4) > 1e-9 || len(points[2].Values) != 2 {
		t.Fatalf("unexpected points: %+v", points)
	}
	if points[0].Values[0] != 2 {
		t.Errorf("expected 2 survivors after 20 frames, got %f", points[0].Values[0])
	}
}
