package world

import (
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// Command is a queued front-end action, applied at the start of the next
// Step.
type Command interface {
	apply(w *World) error
}

type PointerDown struct{ Pos cp.Vector }

func (c PointerDown) apply(w *World) error {
	w.ctrl.PointerDown(c.Pos)
	return nil
}

type PointerMove struct{ Pos cp.Vector }

func (c PointerMove) apply(w *World) error {
	w.ctrl.PointerMove(c.Pos)
	return nil
}

type PointerUp struct{}

func (PointerUp) apply(w *World) error {
	w.ctrl.PointerUp()
	return nil
}

// Select picks a body by id, as from a list.
type Select struct{ ID int }

func (c Select) apply(w *World) error { return w.ctrl.Select(c.ID) }

type Deselect struct{}

func (Deselect) apply(w *World) error {
	w.ctrl.Deselect()
	return nil
}

type ToggleLock struct{}

func (ToggleLock) apply(w *World) error { return w.ctrl.ToggleLock() }

type BeginEdit struct{}

func (BeginEdit) apply(w *World) error { return w.ctrl.BeginEdit() }

type SetDraft struct {
	Field dynamo.Field
	Value string
}

func (c SetDraft) apply(w *World) error { return w.ctrl.SetDraft(c.Field, c.Value) }

type CommitEdit struct{}

func (CommitEdit) apply(w *World) error { return w.ctrl.CommitEdit() }

type CancelEdit struct{}

func (CancelEdit) apply(w *World) error {
	w.ctrl.CancelEdit()
	return nil
}

// AddPlanet creates a planet from Spec.
type AddPlanet struct{ Spec BodySpec }

func (c AddPlanet) apply(w *World) error {
	_, err := w.CreateBody(c.Spec)
	return err
}

// RemoveSelected removes the selected planet.
type RemoveSelected struct{}

func (RemoveSelected) apply(w *World) error {
	id, ok := w.ctrl.Selection()
	if !ok {
		return dynamo.ErrNoSelection
	}
	return w.RemoveBody(id)
}

// SetLocked locks or unlocks a planet by id.
type SetLocked struct {
	ID     int
	Locked bool
}

func (c SetLocked) apply(w *World) error { return w.ctrl.SetLocked(c.ID, c.Locked) }

// SetField edits one field of a body by id.
type SetField struct {
	ID    int
	Field dynamo.Field
	Value string
}

func (c SetField) apply(w *World) error { return w.SetField(c.ID, c.Field, c.Value) }
