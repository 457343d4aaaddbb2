package automation

import (
	"context"
	"fmt"
	"os"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/experiment"
	"github.com/san-kum/orbitlab/internal/world"
	"gopkg.in/yaml.v3"
)

// Scenario scripts a headless session: a starting world, extra bodies and
// timed commands.
type Scenario struct {
	Name        string             `yaml:"name"`
	Description string             `yaml:"description"`
	Preset      string             `yaml:"preset"`
	Frames      int                `yaml:"frames"`
	Every       int                `yaml:"every"`
	Set         map[string]float64 `yaml:"set"`
	Bodies      []world.BodySpec   `yaml:"bodies"`
	Events      []Event            `yaml:"events"`
	SaveAs      string             `yaml:"save_as"`
}

// Event is one command applied before the given frame runs.
type Event struct {
	Frame  int             `yaml:"frame"`
	Action string          `yaml:"action"`
	X      float64         `yaml:"x"`
	Y      float64         `yaml:"y"`
	ID     int             `yaml:"id"`
	Field  dynamo.Field    `yaml:"field"`
	Value  string          `yaml:"value"`
	Body   *world.BodySpec `yaml:"body"`
}

// Command maps the event onto a world command.
func (e Event) Command() (world.Command, error) {
	pos := cp.Vector{X: e.X, Y: e.Y}
	switch e.Action {
	case "pointer_down":
		return world.PointerDown{Pos: pos}, nil
	case "pointer_move":
		return world.PointerMove{Pos: pos}, nil
	case "pointer_up":
		return world.PointerUp{}, nil
	case "select":
		return world.Select{ID: e.ID}, nil
	case "deselect":
		return world.Deselect{}, nil
	case "lock":
		return world.SetLocked{ID: e.ID, Locked: true}, nil
	case "unlock":
		return world.SetLocked{ID: e.ID, Locked: false}, nil
	case "toggle_lock":
		return world.ToggleLock{}, nil
	case "begin_edit":
		return world.BeginEdit{}, nil
	case "draft":
		return world.SetDraft{Field: e.Field, Value: e.Value}, nil
	case "commit":
		return world.CommitEdit{}, nil
	case "cancel":
		return world.CancelEdit{}, nil
	case "set":
		return world.SetField{ID: e.ID, Field: e.Field, Value: e.Value}, nil
	case "add":
		var spec world.BodySpec
		if e.Body != nil {
			spec = *e.Body
		}
		return world.AddPlanet{Spec: spec}, nil
	case "remove_selected":
		return world.RemoveSelected{}, nil
	}
	return nil, fmt.Errorf("unknown action: %q", e.Action)
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseScenario(data)
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if err := scenario.Validate(); err != nil {
		return nil, err
	}
	return &scenario, nil
}

func (s *Scenario) Validate() error {
	if s.Frames <= 0 {
		return fmt.Errorf("scenario %q: frames must be positive", s.Name)
	}
	for i, e := range s.Events {
		if e.Frame < 0 || e.Frame >= s.Frames {
			return fmt.Errorf("event %d: frame %d outside 0..%d", i+1, e.Frame, s.Frames-1)
		}
		if _, err := e.Command(); err != nil {
			return fmt.Errorf("event %d: %w", i+1, err)
		}
	}
	return nil
}

// WorldConfig resolves the preset and overrides onto base.
func (s *Scenario) WorldConfig(base *config.Config) (*config.Config, error) {
	cfg := base.Clone()
	if s.Preset != "" {
		p := config.GetPreset(s.Preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
		p.Seed = cfg.Seed
		cfg = p
	}
	for k, v := range s.Set {
		if err := cfg.Set(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// Build prepares an experiment that plays the scenario.
func Build(s *Scenario, base *config.Config, opts ...world.Option) (*experiment.Experiment, error) {
	cfg, err := s.WorldConfig(base)
	if err != nil {
		return nil, err
	}
	exp, err := experiment.New(experiment.Config{
		Name:   s.Name,
		World:  cfg,
		Frames: s.Frames,
		Every:  s.Every,
	}, opts...)
	if err != nil {
		return nil, err
	}
	for i, spec := range s.Bodies {
		if _, err := exp.World().CreateBody(spec); err != nil {
			return nil, fmt.Errorf("body %d: %w", i+1, err)
		}
	}

	byFrame := make(map[int][]world.Command)
	for _, e := range s.Events {
		cmd, err := e.Command()
		if err != nil {
			return nil, err
		}
		byFrame[e.Frame] = append(byFrame[e.Frame], cmd)
	}
	exp.AddHook(func(frame int, w *world.World) error {
		for _, cmd := range byFrame[frame] {
			w.Enqueue(cmd)
		}
		return nil
	})
	return exp, nil
}

// RunScenario builds and runs s to completion.
func RunScenario(ctx context.Context, s *Scenario, base *config.Config, opts ...world.Option) (*experiment.Result, error) {
	exp, err := Build(s, base, opts...)
	if err != nil {
		return nil, err
	}
	return exp.Run(ctx)
}
