package analysis

import (
	"math"

	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/experiment"
	"github.com/san-kum/orbitlab/internal/orbit"
)

// Series is one body's orbit over the samples in which it exists.
type Series struct {
	ID         int
	Times      []float64
	Distance   []float64
	Radial     []float64
	Tangential []float64
	Points     []struct{ X, Y float64 }
}

func (s *Series) Len() int { return len(s.Times) }

// Dt is the mean spacing of the samples.
func (s *Series) Dt() float64 {
	if len(s.Times) < 2 {
		return 0
	}
	return (s.Times[len(s.Times)-1] - s.Times[0]) / float64(len(s.Times)-1)
}

// ExtractSeries collects body id from every sample that contains it.
func ExtractSeries(samples []experiment.Sample, id int) *Series {
	s := &Series{ID: id}
	for _, sample := range samples {
		var sun, b *dynamo.BodyView
		for i := range sample.Bodies {
			v := &sample.Bodies[i]
			if v.Kind == dynamo.Sun {
				sun = v
			}
			if v.ID == id {
				b = v
			}
		}
		if sun == nil || b == nil {
			continue
		}
		rel := b.Position.Sub(sun.Position)
		radial, tangential := 0.0, 0.0
		if !b.Locked && !b.Held {
			radial, tangential = orbit.Components(rel, b.Velocity)
		}
		s.Times = append(s.Times, sample.Time)
		s.Distance = append(s.Distance, rel.Length())
		s.Radial = append(s.Radial, radial)
		s.Tangential = append(s.Tangential, tangential)
		s.Points = append(s.Points, struct{ X, Y float64 }{b.Position.X, b.Position.Y})
	}
	return s
}

// Apsides returns the closest and farthest distances and the
// eccentricity (ra-rp)/(ra+rp) they imply.
func Apsides(distance []float64) (periapsis, apoapsis, eccentricity float64) {
	if len(distance) == 0 {
		return 0, 0, 0
	}
	periapsis, apoapsis = math.Inf(1), math.Inf(-1)
	for _, d := range distance {
		periapsis = math.Min(periapsis, d)
		apoapsis = math.Max(apoapsis, d)
	}
	if apoapsis+periapsis > 0 {
		eccentricity = (apoapsis - periapsis) / (apoapsis + periapsis)
	}
	return periapsis, apoapsis, eccentricity
}
