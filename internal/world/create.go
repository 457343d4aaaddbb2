package world

import (
	"fmt"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/orbitlab/internal/body"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/interact"
	"github.com/san-kum/orbitlab/internal/orbit"
)

// BodySpec describes a body to create. Nil fields take defaults: a radius
// in the configured range, a random bearing at the configured distance,
// and the near-circular orbit speed along the counter-clockwise tangent.
type BodySpec struct {
	Kind     dynamo.Kind `yaml:"kind"`
	Position *cp.Vector  `yaml:"position"`
	Velocity *cp.Vector  `yaml:"velocity"`
	Radius   *float64    `yaml:"radius"`
	ID       *int        `yaml:"id"`
	Name     string      `yaml:"name"`
	Color    string      `yaml:"color"`
}

// CreateBody adds a planet and returns its id. The sun already exists
// and cannot be created again.
func (w *World) CreateBody(spec BodySpec) (int, error) {
	if spec.Kind == dynamo.Sun {
		return 0, dynamo.ErrSunImmutable
	}
	sun := w.reg.Sun()

	r := w.uniform(w.cfg.PlanetRadiusMin, w.cfg.PlanetRadiusMax)
	if spec.Radius != nil {
		r = *spec.Radius
	}
	if !(r > 0) || math.IsInf(r, 0) || r > w.cfg.MaxRadius {
		return 0, &dynamo.EditError{Field: dynamo.FieldSize, Value: fmt.Sprint(r), Reason: "radius out of range"}
	}

	var pos cp.Vector
	if spec.Position != nil {
		pos = *spec.Position
	} else {
		d := w.uniform(w.cfg.OrbitDistanceMin, w.cfg.OrbitDistanceMax)
		theta := w.rng.Float64() * 2 * math.Pi
		pos = sun.Position().Add(cp.Vector{X: math.Cos(theta), Y: math.Sin(theta)}.Mult(d))
	}
	if !finite(pos) {
		return 0, fmt.Errorf("%w: non-finite position", dynamo.ErrInvalidEdit)
	}

	var vel cp.Vector
	if spec.Velocity != nil {
		vel = *spec.Velocity
	} else {
		vel = w.OrbitVelocity(pos)
	}
	if !finite(vel) {
		return 0, fmt.Errorf("%w: non-finite velocity", dynamo.ErrInvalidEdit)
	}

	name, color := spec.Name, spec.Color
	if color == "" {
		color = colorful.Hsv(w.rng.Float64()*360, 0.55, 0.95).Hex()
	} else {
		c, err := interact.ParseColor(color)
		if err != nil {
			return 0, &dynamo.EditError{Field: dynamo.FieldColor, Value: color, Reason: "not a #rrggbb color"}
		}
		color = c
	}

	var id int
	if spec.ID != nil {
		if err := w.reg.Reserve(*spec.ID); err != nil {
			return 0, err
		}
		id = *spec.ID
	} else {
		id = w.reg.AllocateID()
	}
	if name == "" {
		name = fmt.Sprintf("Planet %d", id)
	}

	p := body.NewPlanet(id, pos, vel, r, w.cfg.PlanetDensity*math.Pi*r*r)
	p.Name = name
	p.Color = color
	if err := w.reg.Insert(p); err != nil {
		return 0, err
	}
	w.logger.Debug("body created", "id", id, "r", r, "mass", p.Mass())
	return id, nil
}

// OrbitVelocity is the default launch velocity at pos: circular speed
// times the configured factor, counter-clockwise on screen.
func (w *World) OrbitVelocity(pos cp.Vector) cp.Vector {
	sun := w.reg.Sun()
	rel := pos.Sub(sun.Position())
	d := rel.Length()
	if d == 0 {
		return cp.Vector{}
	}
	speed := orbit.CircularSpeed(w.cfg.G, sun.Mass(), d, w.cfg.OrbitSpeedFactor)
	return orbit.Tangent(rel.Mult(1 / d)).Mult(speed)
}

func (w *World) uniform(lo, hi float64) float64 {
	if hi <= lo {
		return lo
	}
	return lo + w.rng.Float64()*(hi-lo)
}

func finite(v cp.Vector) bool {
	return !math.IsNaN(v.X) && !math.IsNaN(v.Y) && !math.IsInf(v.X, 0) && !math.IsInf(v.Y, 0)
}
