package metrics

import (
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// Bounded is the fraction of frames in which every planet stayed within
// threshold of the sun.
type Bounded struct {
	threshold  float64
	violations int
	samples    int
}

func NewBounded(threshold float64) *Bounded {
	return &Bounded{threshold: threshold}
}

func (b *Bounded) Name() string { return "bounded" }

func (b *Bounded) Observe(bodies []dynamo.BodyView, t float64) {
	sun, planets, ok := split(bodies)
	if !ok {
		return
	}
	b.samples++
	for _, p := range planets {
		if p.Position.Distance(sun.Position) > b.threshold {
			b.violations++
			break
		}
	}
}

func (b *Bounded) Value() float64 {
	if b.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(b.violations)/float64(b.samples)
}

func (b *Bounded) Reset() {
	b.violations = 0
	b.samples = 0
}
