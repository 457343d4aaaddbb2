package physics

import (
	"io"
	"math"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/body"
)

// Engine applies sun gravity to planets and advances the stepper space.
type Engine struct {
	G                float64
	MinDistance      float64
	TimeScale        float64
	GravityWhileHeld bool

	space  *cp.Space
	logger *log.Logger
}

// NewEngine returns an engine over space with gravity applied to held
// bodies. A nil logger discards output.
func NewEngine(space *cp.Space, g, minDistance, timeScale float64, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{
		G:                g,
		MinDistance:      minDistance,
		TimeScale:        timeScale,
		GravityWhileHeld: true,
		space:            space,
		logger:           logger,
	}
}

// Acceleration is the velocity increment toward the sun for one step:
// F = G*M*m/d^2 and a = F/m. Coincident centers have no direction and
// yield zero.
func Acceleration(pos, sunPos cp.Vector, g, sunMass, mass, minDistance float64) cp.Vector {
	r := sunPos.Sub(pos)
	d := r.Length()
	if d == 0 {
		return cp.Vector{}
	}
	dir := r.Mult(1 / d)
	if d < minDistance {
		d = minDistance
	}
	f := g * sunMass * mass / (d * d)
	return dir.Mult(f / mass)
}

// ApplyGravity adds one explicit-Euler gravity increment to every unlocked
// planet, each from its own pre-step velocity. It returns the number of
// planets accelerated.
func (e *Engine) ApplyGravity(reg *body.Registry) int {
	sun := reg.Sun()
	if sun == nil {
		return 0
	}
	sunPos, sunMass := sun.Position(), sun.Mass()

	n := 0
	for _, p := range reg.Planets() {
		if p.Locked {
			continue
		}
		if p.Held && !e.GravityWhileHeld {
			continue
		}
		a := Acceleration(p.Position(), sunPos, e.G, sunMass, p.Mass(), e.MinDistance)
		p.SetVelocity(p.Velocity().Add(a))
		n++
	}
	return n
}

// Integrate advances positions, contacts and constraints by one frame
// scaled by TimeScale.
func (e *Engine) Integrate() {
	e.space.Step(e.TimeScale)
}

// Repair zeroes any non-finite planet velocity and returns the ids of
// planets whose position is no longer finite.
func (e *Engine) Repair(reg *body.Registry) []int {
	var lost []int
	for _, p := range reg.Planets() {
		v := p.Velocity()
		if !finite(v) {
			e.logger.Warn("non-finite velocity reset", "id", p.ID)
			p.SetVelocity(cp.Vector{})
		}
		if !finite(p.Position()) {
			lost = append(lost, p.ID)
		}
	}
	return lost
}

// Step runs gravity then integration.
func (e *Engine) Step(reg *body.Registry) {
	e.ApplyGravity(reg)
	e.Integrate()
}

func finite(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
