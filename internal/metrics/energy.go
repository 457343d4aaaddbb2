package metrics

import (
	"math"

	"github.com/san-kum/orbitlab/internal/dynamo"
)

// SpecificEnergy is the orbital energy per unit mass of p around sun:
// v^2/2 - g*M/d. Pass g as G over the time scale: gravity lands once per
// step while positions advance by the time scale. Coincident centers
// report 0.
func SpecificEnergy(p, sun dynamo.BodyView, g float64) float64 {
	d := p.Position.Distance(sun.Position)
	if d == 0 {
		return 0
	}
	v := p.Velocity.Length()
	return 0.5*v*v - g*sun.Mass/d
}

// EnergyDrift is the largest relative change in any planet's specific
// orbital energy from the first frame that planet was seen free.
// Locked and held planets are skipped.
type EnergyDrift struct {
	g        float64
	initial  map[int]float64
	maxDrift float64
}

func NewEnergyDrift(g, timeScale float64) *EnergyDrift {
	if timeScale <= 0 {
		timeScale = 1
	}
	return &EnergyDrift{g: g / timeScale, initial: make(map[int]float64)}
}

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(bodies []dynamo.BodyView, t float64) {
	sun, planets, ok := split(bodies)
	if !ok {
		return
	}
	for _, p := range planets {
		if p.Locked || p.Held {
			continue
		}
		energy := SpecificEnergy(p, sun, e.g)
		e0, seen := e.initial[p.ID]
		if !seen {
			e.initial[p.ID] = energy
			continue
		}
		if e0 != 0 {
			e.maxDrift = math.Max(e.maxDrift, math.Abs(energy-e0)/math.Abs(e0))
		}
	}
}

func (e *EnergyDrift) Value() float64 { return e.maxDrift }

func (e *EnergyDrift) Reset() {
	e.initial = make(map[int]float64)
	e.maxDrift = 0
}
