package body

import (
	"errors"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(cp.NewSpace())
	if err := r.Insert(NewSun(cp.Vector{}, 40, 10000)); err != nil {
		t.Fatalf("insert sun: %v", err)
	}
	return r
}

func TestAllocateID_StrictlyIncreasing(t *testing.T) {
	r := NewRegistry(nil)
	prev := 0
	for i := 0; i < 100; i++ {
		id := r.AllocateID()
		if id <= prev {
			t.Fatalf("id %d not greater than %d", id, prev)
		}
		prev = id
	}
}

func TestReserve(t *testing.T) {
	r := newTestRegistry(t)

	tests := []struct {
		name string
		id   int
		ok   bool
	}{
		{"sun id", 0, false},
		{"negative", -3, false},
		{"fresh", 10, true},
		{"again", 10, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := r.Reserve(tt.id)
			if tt.ok && err != nil {
				t.Errorf("Reserve(%d) = %v", tt.id, err)
			}
			if !tt.ok && !errors.Is(err, dynamo.ErrDuplicateID) {
				t.Errorf("Reserve(%d) = %v, want ErrDuplicateID", tt.id, err)
			}
		})
	}

	if id := r.AllocateID(); id != 11 {
		t.Errorf("allocator not bumped past reservation: got %d", id)
	}
}

func TestReserve_RetiredID(t *testing.T) {
	r := newTestRegistry(t)
	id := r.AllocateID()
	if err := r.Insert(NewPlanet(id, cp.Vector{X: 200}, cp.Vector{}, 10, 1)); err != nil {
		t.Fatal(err)
	}
	if err := r.Remove(id); err != nil {
		t.Fatal(err)
	}
	if err := r.Reserve(id); !errors.Is(err, dynamo.ErrDuplicateID) {
		t.Errorf("retired id reserved: %v", err)
	}
}

func TestInsertRemove(t *testing.T) {
	r := newTestRegistry(t)

	ids := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		id := r.AllocateID()
		if err := r.Insert(NewPlanet(id, cp.Vector{X: float64(100 * (i + 2))}, cp.Vector{}, 10, 1)); err != nil {
			t.Fatalf("insert: %v", err)
		}
		ids = append(ids, id)
	}

	if r.Len() != 4 {
		t.Errorf("expected 4 bodies, got %d", r.Len())
	}

	if err := r.Remove(ids[1]); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if _, ok := r.Get(ids[1]); ok {
		t.Error("removed body still present")
	}

	all := r.All()
	if len(all) != 3 || all[0].ID != 0 || all[1].ID != ids[0] || all[2].ID != ids[2] {
		t.Errorf("insertion order not preserved: %v", viewIDs(all))
	}

	if err := r.Remove(ids[1]); !errors.Is(err, dynamo.ErrUnknownBody) {
		t.Errorf("double remove = %v, want ErrUnknownBody", err)
	}
	if err := r.Remove(dynamo.SunID); !errors.Is(err, dynamo.ErrSunImmutable) {
		t.Errorf("remove sun = %v, want ErrSunImmutable", err)
	}
}

func TestInsert_Duplicate(t *testing.T) {
	r := newTestRegistry(t)
	if err := r.Insert(NewSun(cp.Vector{}, 40, 1)); !errors.Is(err, dynamo.ErrDuplicateID) {
		t.Errorf("second sun inserted: %v", err)
	}
}

func TestByShape(t *testing.T) {
	r := newTestRegistry(t)
	id := r.AllocateID()
	p := NewPlanet(id, cp.Vector{X: 200}, cp.Vector{}, 10, 1)
	if err := r.Insert(p); err != nil {
		t.Fatal(err)
	}

	got, ok := r.ByShape(p.Shape())
	if !ok || got.ID != id {
		t.Errorf("ByShape returned %v, %v", got, ok)
	}
	if _, ok := r.ByShape(nil); ok {
		t.Error("nil shape matched a body")
	}
}

func TestResize_KeepsMass(t *testing.T) {
	r := newTestRegistry(t)
	id := r.AllocateID()
	p := NewPlanet(id, cp.Vector{X: 200}, cp.Vector{}, 10, 3.5)
	if err := r.Insert(p); err != nil {
		t.Fatal(err)
	}

	p.Resize(25)

	if p.Radius() != 25 {
		t.Errorf("radius = %f, want 25", p.Radius())
	}
	if p.Mass() != 3.5 || p.Phys().Mass() != 3.5 {
		t.Errorf("mass changed by resize: %f / %f", p.Mass(), p.Phys().Mass())
	}
	if got, ok := r.ByShape(p.Shape()); !ok || got != p {
		t.Error("resized shape not mapped to body")
	}
}

func TestSunVelocityAlwaysZero(t *testing.T) {
	sun := NewSun(cp.Vector{X: 5, Y: 5}, 40, 10000)
	sun.SetVelocity(cp.Vector{X: 3, Y: 4})
	if v := sun.Velocity(); v.X != 0 || v.Y != 0 {
		t.Errorf("sun velocity = %v", v)
	}
}

func viewIDs(bs []*Body) []int {
	ids := make([]int, len(bs))
	for i, b := range bs {
		ids[i] = b.ID
	}
	return ids
}
