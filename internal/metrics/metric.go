// Package metrics summarizes a run from the body snapshots it produces.
package metrics

import (
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// Metric accumulates one number over the frames of a run.
type Metric interface {
	Name() string
	Observe(bodies []dynamo.BodyView, t float64)
	Value() float64
	Reset()
}

// Defaults returns the metrics recorded by headless runs.
func Defaults(g, timeScale, escapeDistance float64) []Metric {
	return []Metric{
		NewPopulation(),
		NewMeanDistance(),
		NewEnergyDrift(g, timeScale),
		NewBounded(escapeDistance / 2),
		NewHeldFraction(),
	}
}

func split(bodies []dynamo.BodyView) (sun dynamo.BodyView, planets []dynamo.BodyView, ok bool) {
	for _, b := range bodies {
		if b.Kind == dynamo.Sun {
			sun, ok = b, true
		} else {
			planets = append(planets, b)
		}
	}
	return sun, planets, ok
}

// Population is the planet count at the last observed frame.
type Population struct {
	last int
}

func NewPopulation() *Population { return &Population{} }

func (p *Population) Name() string { return "population" }

func (p *Population) Observe(bodies []dynamo.BodyView, t float64) {
	_, planets, _ := split(bodies)
	p.last = len(planets)
}

func (p *Population) Value() float64 { return float64(p.last) }

func (p *Population) Reset() { p.last = 0 }

// MeanDistance averages the mean planet distance from the sun over all
// frames that had planets.
type MeanDistance struct {
	sum     float64
	samples int
}

func NewMeanDistance() *MeanDistance { return &MeanDistance{} }

func (m *MeanDistance) Name() string { return "mean_distance" }

func (m *MeanDistance) Observe(bodies []dynamo.BodyView, t float64) {
	sun, planets, ok := split(bodies)
	if !ok || len(planets) == 0 {
		return
	}
	var total float64
	for _, p := range planets {
		total += p.Position.Distance(sun.Position)
	}
	m.sum += total / float64(len(planets))
	m.samples++
}

func (m *MeanDistance) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *MeanDistance) Reset() {
	m.sum = 0
	m.samples = 0
}
