package metrics

import (
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// HeldFraction is the share of frames in which some planet was held by
// the pointer.
type HeldFraction struct {
	held    int
	samples int
}

func NewHeldFraction() *HeldFraction { return &HeldFraction{} }

func (h *HeldFraction) Name() string { return "held_fraction" }

func (h *HeldFraction) Observe(bodies []dynamo.BodyView, t float64) {
	h.samples++
	for _, b := range bodies {
		if b.Held {
			h.held++
			return
		}
	}
}

func (h *HeldFraction) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return float64(h.held) / float64(h.samples)
}

func (h *HeldFraction) Reset() {
	h.held = 0
	h.samples = 0
}
