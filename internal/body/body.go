package body

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// Collision types registered with the stepper space.
const (
	CollisionSun cp.CollisionType = iota + 1
	CollisionPlanet
)

const planetFriction = 0.1

// Body is one celestial body. Position, velocity and mass live in the
// stepper body; the remaining fields are owned here.
type Body struct {
	ID    int
	Kind  dynamo.Kind
	Name  string
	Color string

	Locked bool
	// LockedVelocity is non-nil exactly while Locked is true.
	LockedVelocity *cp.Vector
	Held           bool

	phys   *cp.Body
	shape  *cp.Shape
	radius float64
	mass   float64
	space  *cp.Space
}

// NewSun returns the immovable central body with id 0.
func NewSun(pos cp.Vector, radius, mass float64) *Body {
	phys := cp.NewStaticBody()
	phys.SetPosition(pos)
	shape := cp.NewCircle(phys, radius, cp.Vector{})
	shape.SetCollisionType(CollisionSun)
	return &Body{
		ID:     dynamo.SunID,
		Kind:   dynamo.Sun,
		Name:   "Sun",
		phys:   phys,
		shape:  shape,
		radius: radius,
		mass:   mass,
	}
}

// NewPlanet returns a dynamic body. Mass and radius are independent from
// here on.
func NewPlanet(id int, pos, vel cp.Vector, radius, mass float64) *Body {
	phys := cp.NewBody(mass, cp.MomentForCircle(mass, 0, radius, cp.Vector{}))
	phys.SetPosition(pos)
	phys.SetVelocityVector(vel)
	return &Body{
		ID:     id,
		Kind:   dynamo.Planet,
		phys:   phys,
		shape:  newPlanetShape(phys, radius),
		radius: radius,
		mass:   mass,
	}
}

func newPlanetShape(phys *cp.Body, radius float64) *cp.Shape {
	shape := cp.NewCircle(phys, radius, cp.Vector{})
	shape.SetCollisionType(CollisionPlanet)
	shape.SetFriction(planetFriction)
	return shape
}

func (b *Body) IsSun() bool { return b.Kind == dynamo.Sun }

func (b *Body) Position() cp.Vector { return b.phys.Position() }

func (b *Body) Velocity() cp.Vector {
	if b.IsSun() {
		return cp.Vector{}
	}
	return b.phys.Velocity()
}

// SetVelocity is ignored for the sun.
func (b *Body) SetVelocity(v cp.Vector) {
	if b.IsSun() {
		return
	}
	b.phys.SetVelocityVector(v)
}

func (b *Body) Radius() float64 { return b.radius }

func (b *Body) Mass() float64 { return b.mass }

// SetMass changes mass without touching the collision shape.
func (b *Body) SetMass(m float64) {
	b.mass = m
	if b.IsSun() {
		return
	}
	b.phys.SetMass(m)
	b.phys.SetMoment(cp.MomentForCircle(m, 0, b.radius, cp.Vector{}))
}

// Resize rebuilds the collision shape at radius r. Rebuilding the shape
// recomputes mass properties in the stepper, so the pre-edit mass is
// re-applied afterwards.
func (b *Body) Resize(r float64) {
	if b.IsSun() {
		return
	}
	mass := b.mass
	old := b.shape
	b.shape = newPlanetShape(b.phys, r)
	b.radius = r
	if b.space != nil {
		b.space.RemoveShape(old)
		b.space.AddShape(b.shape)
	}
	b.SetMass(mass)
}

func (b *Body) Phys() *cp.Body { return b.phys }

func (b *Body) Shape() *cp.Shape { return b.shape }

// Finite reports whether position and velocity hold no NaN or Inf.
func (b *Body) Finite() bool {
	p, v := b.Position(), b.Velocity()
	for _, x := range []float64{p.X, p.Y, v.X, v.Y} {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

// View copies the body into a snapshot value.
func (b *Body) View() dynamo.BodyView {
	view := dynamo.BodyView{
		ID:       b.ID,
		Kind:     b.Kind,
		Name:     b.Name,
		Color:    b.Color,
		Position: b.Position(),
		Velocity: b.Velocity(),
		Radius:   b.radius,
		Mass:     b.mass,
		Locked:   b.Locked,
		Held:     b.Held,
	}
	if b.LockedVelocity != nil {
		v := *b.LockedVelocity
		view.LockedVelocity = &v
	}
	return view
}
