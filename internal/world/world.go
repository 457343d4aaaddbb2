// Package world is the orbital sandbox. A World owns the sun, the
// planets, the stepper space and the interaction state, and advances
// them one frame per Step.
//
// World is not safe for concurrent use. Front ends enqueue commands and
// read snapshots between steps.
package world

import (
	"fmt"
	"io"
	"math/rand"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/body"
	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/interact"
	"github.com/san-kum/orbitlab/internal/lifecycle"
	"github.com/san-kum/orbitlab/internal/orbit"
	"github.com/san-kum/orbitlab/internal/physics"
)

type Option func(*World)

// WithLogger routes world events to l.
func WithLogger(l *log.Logger) Option {
	return func(w *World) { w.logger = l }
}

// WithRand replaces the seeded source used for default bodies.
func WithRand(r *rand.Rand) Option {
	return func(w *World) { w.rng = r }
}

// WithoutPopulation skips the initial planets.
func WithoutPopulation() Option {
	return func(w *World) { w.skipPopulate = true }
}

type World struct {
	cfg    *config.Config
	space  *cp.Space
	reg    *body.Registry
	engine *physics.Engine
	life   *lifecycle.Manager
	ctrl   *interact.Controller
	rng    *rand.Rand
	logger *log.Logger

	queue        []Command
	frame        int
	skipPopulate bool
}

// StepResult reports what one Step did.
type StepResult struct {
	Frame   int
	Removed []lifecycle.Removal
	// Errors holds rejected commands from the drained queue.
	Errors []error
}

// New builds a world from cfg: the sun at (SunX, SunY) and cfg.Planets
// planets on default orbits.
func New(cfg *config.Config, opts ...Option) (*World, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	w := &World{cfg: cfg.Clone()}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	if w.rng == nil {
		w.rng = rand.New(rand.NewSource(cfg.Seed))
	}

	w.space = cp.NewSpace()
	w.reg = body.NewRegistry(w.space)
	w.engine = physics.NewEngine(w.space, cfg.G, cfg.MinDistance, cfg.TimeScale, w.logger)
	w.engine.GravityWhileHeld = cfg.GravityWhileHeld
	w.life = lifecycle.New(w.reg, cfg.EscapeDistance, w.logger)
	w.life.Listen(w.space)
	w.ctrl = interact.New(w.reg, interact.Options{
		Stiffness: cfg.DragStiffness,
		Damping:   cfg.DragDamping,
		TimeScale: cfg.TimeScale,
		Limits:    interact.Limits{MaxRadius: cfg.MaxRadius, MaxMass: cfg.MaxMass},
	}, w.logger)
	w.life.OnRemove = w.ctrl.Forget

	sun := body.NewSun(cp.Vector{X: cfg.SunX, Y: cfg.SunY}, cfg.SunRadius, cfg.SunMass)
	sun.Color = "#ffcc33"
	if err := w.reg.Insert(sun); err != nil {
		return nil, err
	}

	if !w.skipPopulate {
		for i := 0; i < cfg.Planets; i++ {
			if _, err := w.CreateBody(BodySpec{Kind: dynamo.Planet}); err != nil {
				return nil, fmt.Errorf("populate: %w", err)
			}
		}
	}
	return w, nil
}

// Config returns a copy of the session configuration.
func (w *World) Config() *config.Config { return w.cfg.Clone() }

// Frame is the number of completed steps.
func (w *World) Frame() int { return w.frame }

// Time is simulated time in stepper units.
func (w *World) Time() float64 { return float64(w.frame) * w.cfg.TimeScale }

// Enqueue schedules cmd for the start of the next Step.
func (w *World) Enqueue(cmd Command) {
	w.queue = append(w.queue, cmd)
}

// Flush applies queued commands without advancing the simulation and
// returns those rejected. Paused front ends call it directly.
func (w *World) Flush() []error {
	var errs []error
	queue := w.queue
	w.queue = nil
	for _, cmd := range queue {
		if err := cmd.apply(w); err != nil {
			w.logger.Warn("command rejected", "cmd", fmt.Sprintf("%T", cmd), "err", err)
			errs = append(errs, err)
		}
	}
	w.ctrl.Validate()
	return errs
}

// Step drains the queue, then applies gravity, integration, the removal
// rules and the selection check, in that order.
func (w *World) Step() StepResult {
	res := StepResult{Errors: w.Flush()}

	w.ctrl.Sync()
	w.engine.ApplyGravity(w.reg)
	w.engine.Integrate()
	for _, id := range w.engine.Repair(w.reg) {
		res.Removed = append(res.Removed, w.life.Remove(id, lifecycle.Invalid)...)
	}
	res.Removed = append(res.Removed, w.life.Sweep()...)
	if w.ctrl.Validate() {
		w.logger.Warn("stale selection cleared")
	}

	w.frame++
	res.Frame = w.frame
	return res
}

// Run steps n frames and returns every removal.
func (w *World) Run(n int) []lifecycle.Removal {
	var out []lifecycle.Removal
	for i := 0; i < n; i++ {
		out = append(out, w.Step().Removed...)
	}
	return out
}

// Snapshot returns every body in insertion order, sun first.
func (w *World) Snapshot() []dynamo.BodyView {
	all := w.reg.All()
	out := make([]dynamo.BodyView, len(all))
	for i, b := range all {
		out[i] = b.View()
	}
	return out
}

// Body returns the view of one body.
func (w *World) Body(id int) (dynamo.BodyView, bool) {
	b, ok := w.reg.Get(id)
	if !ok {
		return dynamo.BodyView{}, false
	}
	return b.View(), true
}

// DiagnosticsFor computes diagnostics for id. The sun has none. Polling
// a missing body that is still selected clears the selection.
func (w *World) DiagnosticsFor(id int) (dynamo.Diagnostics, bool) {
	b, ok := w.reg.Get(id)
	if !ok {
		w.ctrl.Validate()
		return dynamo.Diagnostics{}, false
	}
	if b.IsSun() {
		return dynamo.Diagnostics{}, false
	}
	return orbit.Diagnose(b, w.reg.Sun(), w.cfg.G, w.cfg.MinDistance), true
}

// HitTest returns the id of the body under pos.
func (w *World) HitTest(pos cp.Vector) (int, bool) {
	b, ok := w.ctrl.HitTest(pos)
	if !ok {
		return 0, false
	}
	return b.ID, true
}

// Selected returns the selected id.
func (w *World) Selected() (int, bool) { return w.ctrl.Selection() }

// State is the interaction state.
func (w *World) State() interact.State { return w.ctrl.State() }

// Draft returns the open edit draft, nil when not editing.
func (w *World) Draft() interact.Draft { return w.ctrl.Draft() }

// RemoveBody removes planet id immediately.
func (w *World) RemoveBody(id int) error {
	b, ok := w.reg.Get(id)
	if !ok {
		return dynamo.UnknownBody(id)
	}
	if b.IsSun() {
		return dynamo.ErrSunImmutable
	}
	w.life.Remove(id, lifecycle.Manual)
	return nil
}

// SetLocked locks or unlocks planet id immediately.
func (w *World) SetLocked(id int, locked bool) error {
	return w.ctrl.SetLocked(id, locked)
}

// SetField validates value and applies it to one field of id.
func (w *World) SetField(id int, f dynamo.Field, value string) error {
	if err := w.ctrl.SetField(id, f, value); err != nil {
		w.logger.Warn("edit rejected", "id", id, "field", f, "err", err)
		return err
	}
	return nil
}
