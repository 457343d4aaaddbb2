package body

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// Registry is the authoritative body collection. Inserted bodies are
// attached to the stepper space and detached on removal.
type Registry struct {
	space   *cp.Space
	bodies  map[int]*Body
	order   []int
	nextID  int
	retired map[int]struct{}
}

// NewRegistry returns an empty registry bound to space. A nil space keeps
// the registry as plain bookkeeping.
func NewRegistry(space *cp.Space) *Registry {
	return &Registry{
		space:   space,
		bodies:  make(map[int]*Body),
		order:   make([]int, 0),
		nextID:  1,
		retired: make(map[int]struct{}),
	}
}

// AllocateID returns a fresh id; ids start at 1 and strictly increase.
func (r *Registry) AllocateID() int {
	id := r.nextID
	r.nextID++
	return id
}

// Reserve claims a caller-chosen planet id. Ids that are live or were ever
// removed are refused.
func (r *Registry) Reserve(id int) error {
	if id <= dynamo.SunID {
		return fmt.Errorf("%w: %d is reserved", dynamo.ErrDuplicateID, id)
	}
	if _, ok := r.bodies[id]; ok {
		return fmt.Errorf("%w: %d", dynamo.ErrDuplicateID, id)
	}
	if _, ok := r.retired[id]; ok {
		return fmt.Errorf("%w: %d was retired", dynamo.ErrDuplicateID, id)
	}
	if id >= r.nextID {
		r.nextID = id + 1
	}
	return nil
}

func (r *Registry) Insert(b *Body) error {
	if _, ok := r.bodies[b.ID]; ok {
		return fmt.Errorf("%w: %d", dynamo.ErrDuplicateID, b.ID)
	}
	if r.space != nil {
		r.space.AddBody(b.phys)
		r.space.AddShape(b.shape)
		b.space = r.space
	}
	r.bodies[b.ID] = b
	r.order = append(r.order, b.ID)
	return nil
}

// Remove detaches and forgets a planet. Any constraint on the body must
// already be gone from the space.
func (r *Registry) Remove(id int) error {
	if id == dynamo.SunID {
		return dynamo.ErrSunImmutable
	}
	b, ok := r.bodies[id]
	if !ok {
		return dynamo.UnknownBody(id)
	}
	if r.space != nil {
		r.space.RemoveShape(b.shape)
		r.space.RemoveBody(b.phys)
		b.space = nil
	}
	delete(r.bodies, id)
	r.retired[id] = struct{}{}
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

func (r *Registry) Get(id int) (*Body, bool) {
	b, ok := r.bodies[id]
	return b, ok
}

// Sun returns the central body, or nil before initialization.
func (r *Registry) Sun() *Body {
	return r.bodies[dynamo.SunID]
}

// All returns live bodies in insertion order.
func (r *Registry) All() []*Body {
	out := make([]*Body, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.bodies[id])
	}
	return out
}

// Planets returns live planets in insertion order.
func (r *Registry) Planets() []*Body {
	out := make([]*Body, 0, len(r.order))
	for _, id := range r.order {
		if b := r.bodies[id]; !b.IsSun() {
			out = append(out, b)
		}
	}
	return out
}

// ByShape maps a stepper shape back to its body.
func (r *Registry) ByShape(s *cp.Shape) (*Body, bool) {
	if s == nil {
		return nil, false
	}
	for _, b := range r.bodies {
		if b.shape == s {
			return b, true
		}
	}
	return nil, false
}

func (r *Registry) Len() int { return len(r.order) }

func (r *Registry) Space() *cp.Space { return r.space }
