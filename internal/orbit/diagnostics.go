// Package orbit computes orbital diagnostics of a planet relative to the
// sun. Every function is pure.
package orbit

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/body"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// Velocity splits the planet's velocity into a radial component (positive
// away from the sun) and a tangential component (positive on-screen
// counter-clockwise, y axis pointing down). Locked and held bodies report
// zero. The result is meaningless for the sun itself.
func Velocity(b, sun *body.Body) (radial, tangential float64) {
	if b.Locked || b.Held {
		return 0, 0
	}
	return Components(b.Position().Sub(sun.Position()), b.Velocity())
}

// Components projects v onto the unit vector of r and its counter-clockwise
// perpendicular. A zero r yields zero components.
func Components(r, v cp.Vector) (radial, tangential float64) {
	d := r.Length()
	if d == 0 {
		return 0, 0
	}
	u := r.Mult(1 / d)
	return v.Dot(u), v.Dot(Tangent(u))
}

// Tangent returns the on-screen counter-clockwise perpendicular of a unit
// radial vector.
func Tangent(u cp.Vector) cp.Vector {
	return cp.Vector{X: u.Y, Y: -u.X}
}

// DistanceAngle returns the distance from the sun and the bearing in
// degrees, 0 along +x.
func DistanceAngle(b, sun *body.Body) (distance, angle float64) {
	r := b.Position().Sub(sun.Position())
	return r.Length(), Angle(r)
}

// Angle maps a screen-space offset to (360 - atan2 degrees) mod 360.
func Angle(r cp.Vector) float64 {
	deg := math.Atan2(r.Y, r.X) * 180 / math.Pi
	a := math.Mod(360-deg, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Force is the magnitude of the sun's pull. Distances below minDistance
// are clamped.
func Force(b, sun *body.Body, g, minDistance float64) float64 {
	d := b.Position().Distance(sun.Position())
	return ForceAt(d, g, sun.Mass(), b.Mass(), minDistance)
}

func ForceAt(d, g, sunMass, mass, minDistance float64) float64 {
	if d < minDistance {
		d = minDistance
	}
	return g * sunMass * mass / (d * d)
}

// CircularSpeed is the launch speed used for new planets at distance d.
func CircularSpeed(g, sunMass, d, factor float64) float64 {
	if d <= 0 {
		return 0
	}
	return math.Sqrt(g*sunMass/d) * factor
}

// Diagnose gathers every quantity for a planet.
func Diagnose(b, sun *body.Body, g, minDistance float64) dynamo.Diagnostics {
	dist, angle := DistanceAngle(b, sun)
	radial, tangential := Velocity(b, sun)
	return dynamo.Diagnostics{
		Distance:   dist,
		Angle:      angle,
		Radial:     radial,
		Tangential: tangential,
		Force:      Force(b, sun, g, minDistance),
	}
}
