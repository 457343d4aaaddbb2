// Package lifecycle removes planets that hit the sun or escape it.
package lifecycle

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/body"
)

type Reason int

const (
	Collision Reason = iota
	Escape
	Invalid
	Manual
)

func (r Reason) String() string {
	switch r {
	case Collision:
		return "collision"
	case Escape:
		return "escape"
	case Invalid:
		return "invalid"
	case Manual:
		return "manual"
	}
	return "unknown"
}

type Removal struct {
	ID     int
	Reason Reason
}

// Manager applies the removal rules once per step, after integration.
type Manager struct {
	EscapeDistance float64
	// OnRemove runs before a body leaves the registry, while its stepper
	// body is still in the space.
	OnRemove func(id int)

	reg      *body.Registry
	contacts map[int]struct{}
	logger   *log.Logger
}

func New(reg *body.Registry, escapeDistance float64, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Manager{
		EscapeDistance: escapeDistance,
		reg:            reg,
		contacts:       make(map[int]struct{}),
		logger:         logger,
	}
}

// Listen records sun contacts reported by the stepper. Contacts are not
// resolved physically; the planet is removed at the next sweep.
func (m *Manager) Listen(space *cp.Space) {
	h := space.NewCollisionHandler(body.CollisionSun, body.CollisionPlanet)
	h.BeginFunc = func(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
		a, b := arb.Shapes()
		for _, s := range []*cp.Shape{a, b} {
			if p, ok := m.reg.ByShape(s); ok && !p.IsSun() {
				m.contacts[p.ID] = struct{}{}
			}
		}
		return false
	}
}

// Overlaps reports whether the planet's circle intersects the sun's.
func Overlaps(p, sun *body.Body) bool {
	return p.Position().Distance(sun.Position()) < p.Radius()+sun.Radius()
}

// Escaped reports whether an unlocked planet is beyond the threshold.
func Escaped(p, sun *body.Body, threshold float64) bool {
	return !p.Locked && p.Position().Distance(sun.Position()) > threshold
}

// Sweep runs the collision rule, then the escape rule over the survivors,
// then pins every locked planet's velocity to zero.
func (m *Manager) Sweep() []Removal {
	defer m.resetContacts()

	sun := m.reg.Sun()
	if sun == nil {
		return nil
	}

	var out []Removal
	for _, p := range m.reg.Planets() {
		_, touched := m.contacts[p.ID]
		if touched || Overlaps(p, sun) {
			out = append(out, m.Remove(p.ID, Collision)...)
		}
	}
	for _, p := range m.reg.Planets() {
		if Escaped(p, sun, m.EscapeDistance) {
			out = append(out, m.Remove(p.ID, Escape)...)
		}
	}
	for _, p := range m.reg.Planets() {
		if p.Locked {
			p.SetVelocity(cp.Vector{})
		}
	}
	return out
}

// Remove takes a planet out of the world for the given reason. Unknown ids
// and the sun yield no removal.
func (m *Manager) Remove(id int, reason Reason) []Removal {
	b, ok := m.reg.Get(id)
	if !ok || b.IsSun() {
		return nil
	}
	if m.OnRemove != nil {
		m.OnRemove(id)
	}
	if err := m.reg.Remove(id); err != nil {
		m.logger.Warn("remove refused", "id", id, "err", err)
		return nil
	}
	m.logger.Info("body removed", "id", id, "reason", reason)
	return []Removal{{ID: id, Reason: reason}}
}

func (m *Manager) resetContacts() {
	for id := range m.contacts {
		delete(m.contacts, id)
	}
}
