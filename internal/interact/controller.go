// Package interact turns pointer and form input into changes to bodies:
// selection, spring dragging, locking and field edits.
package interact

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/jakecoffman/cp"
	"github.com/san-kum/orbitlab/internal/body"
	"github.com/san-kum/orbitlab/internal/dynamo"
)

// State is the selection state machine position.
type State int

const (
	Unselected State = iota
	Selected
	Editing
	Holding
)

func (s State) String() string {
	switch s {
	case Selected:
		return "selected"
	case Editing:
		return "editing"
	case Holding:
		return "holding"
	}
	return "unselected"
}

// Options configure a Controller.
type Options struct {
	// Stiffness and Damping are per-step fractions (0..1) converted to
	// spring constants for the held body's mass.
	Stiffness float64
	Damping   float64
	TimeScale float64
	Limits    Limits
}

type hold struct {
	id     int
	spring *cp.Constraint
}

// Controller owns the selection, the drag spring and the edit draft.
type Controller struct {
	opts   Options
	reg    *body.Registry
	space  *cp.Space
	logger *log.Logger

	// pointer stays out of the space; the spring drives its partner only.
	pointer    *cp.Body
	pointerPos cp.Vector

	selected int
	hasSel   bool
	editing  bool
	draft    Draft
	held     *hold
}

func New(reg *body.Registry, opts Options, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	if opts.TimeScale <= 0 {
		opts.TimeScale = 1
	}
	return &Controller{
		opts:    opts,
		reg:     reg,
		space:   reg.Space(),
		logger:  logger,
		pointer: cp.NewKinematicBody(),
	}
}

// SpringCoefficients converts per-step fractions into stiffness and
// damping for a body of mass m stepped by dt.
func SpringCoefficients(m, dt, stiffness, damping float64) (k, c float64) {
	return stiffness * m / (dt * dt), damping * m / dt
}

// HitTest returns the body whose shape contains pos. Overlaps resolve to
// the shape the point is deepest inside.
func (c *Controller) HitTest(pos cp.Vector) (*body.Body, bool) {
	if c.space == nil {
		return nil, false
	}
	info := c.space.PointQueryNearest(pos, 0, cp.SHAPE_FILTER_ALL)
	if info == nil || info.Shape == nil {
		return nil, false
	}
	return c.reg.ByShape(info.Shape)
}

// State reports the current state.
func (c *Controller) State() State {
	switch {
	case !c.hasSel:
		return Unselected
	case c.editing:
		return Editing
	case c.held != nil:
		return Holding
	}
	return Selected
}

// Selection returns the selected id.
func (c *Controller) Selection() (int, bool) { return c.selected, c.hasSel }

// PointerDown selects whatever is under pos and grabs it when it is a
// free planet. A press on empty space clears the selection.
func (c *Controller) PointerDown(pos cp.Vector) {
	c.movePointer(pos)
	c.release()
	b, ok := c.HitTest(pos)
	if !ok {
		c.Deselect()
		return
	}
	c.selectBody(b.ID)
	if c.editing || b.IsSun() || b.Locked {
		return
	}
	c.grab(b)
}

// PointerMove moves the spring anchor.
func (c *Controller) PointerMove(pos cp.Vector) {
	c.movePointer(pos)
}

// PointerUp releases a held body. The selection is kept.
func (c *Controller) PointerUp() {
	c.release()
}

// Sync moves the pointer body to the latest pointer position with the
// velocity needed to get there in one step. Call once per step before
// integration.
func (c *Controller) Sync() {
	prev := c.pointer.Position()
	c.pointer.SetVelocityVector(c.pointerPos.Sub(prev).Mult(1 / c.opts.TimeScale))
	c.pointer.SetPosition(c.pointerPos)
}

func (c *Controller) movePointer(pos cp.Vector) {
	c.pointerPos = pos
	if c.held == nil {
		c.pointer.SetPosition(pos)
		c.pointer.SetVelocityVector(cp.Vector{})
	}
}

func (c *Controller) grab(b *body.Body) {
	k, damp := SpringCoefficients(b.Mass(), c.opts.TimeScale, c.opts.Stiffness, c.opts.Damping)
	spring := cp.NewDampedSpring(c.pointer, b.Phys(), cp.Vector{}, cp.Vector{}, 0, k, damp)
	c.space.AddConstraint(spring)
	b.Held = true
	c.held = &hold{id: b.ID, spring: spring}
	c.logger.Debug("grab", "id", b.ID, "k", k, "c", damp)
}

func (c *Controller) release() {
	if c.held == nil {
		return
	}
	c.space.RemoveConstraint(c.held.spring)
	if b, ok := c.reg.Get(c.held.id); ok {
		b.Held = false
	}
	c.logger.Debug("release", "id", c.held.id)
	c.held = nil
}

// Select makes id the selection. Selecting another body while editing
// discards the draft.
func (c *Controller) Select(id int) error {
	if _, ok := c.reg.Get(id); !ok {
		return dynamo.UnknownBody(id)
	}
	if c.held != nil && c.held.id != id {
		c.release()
	}
	c.selectBody(id)
	return nil
}

func (c *Controller) selectBody(id int) {
	if c.hasSel && c.selected != id && c.editing {
		c.CancelEdit()
	}
	c.selected = id
	c.hasSel = true
}

// Deselect clears the selection, any hold and any draft.
func (c *Controller) Deselect() {
	c.release()
	c.CancelEdit()
	c.hasSel = false
	c.selected = 0
}

// SetLocked pins or frees planet id. Locking saves the current velocity
// and unlocking restores it. Repeating the current state is a no-op.
func (c *Controller) SetLocked(id int, locked bool) error {
	b, ok := c.reg.Get(id)
	if !ok {
		return dynamo.UnknownBody(id)
	}
	if b.IsSun() {
		return dynamo.ErrSunNotLockable
	}
	if b.Locked == locked {
		return nil
	}
	if locked {
		if c.held != nil && c.held.id == id {
			c.release()
		}
		v := b.Velocity()
		b.LockedVelocity = &v
		b.Locked = true
		b.SetVelocity(cp.Vector{})
	} else {
		var v cp.Vector
		if b.LockedVelocity != nil {
			v = *b.LockedVelocity
		}
		b.Locked = false
		b.LockedVelocity = nil
		b.SetVelocity(v)
	}
	c.logger.Debug("lock", "id", id, "locked", locked)
	return nil
}

// ToggleLock flips the lock of the selected planet.
func (c *Controller) ToggleLock() error {
	b, err := c.selectedBody()
	if err != nil {
		return err
	}
	return c.SetLocked(b.ID, !b.Locked)
}

// BeginEdit opens a draft for the selection seeded with its values.
func (c *Controller) BeginEdit() error {
	b, err := c.selectedBody()
	if err != nil {
		return err
	}
	c.release()
	c.editing = true
	c.draft = DraftFor(b)
	return nil
}

// SetDraft stores raw input without validating it.
func (c *Controller) SetDraft(f dynamo.Field, value string) error {
	if !c.editing {
		return fmt.Errorf("%w: no edit in progress", dynamo.ErrNoSelection)
	}
	c.draft[f] = value
	return nil
}

// Draft returns a copy of the pending draft, nil when not editing.
func (c *Controller) Draft() Draft {
	if !c.editing {
		return nil
	}
	out := make(Draft, len(c.draft))
	for k, v := range c.draft {
		out[k] = v
	}
	return out
}

// CommitEdit validates the whole draft and applies it. On error nothing
// changes and the draft stays open.
func (c *Controller) CommitEdit() error {
	if !c.editing {
		return fmt.Errorf("%w: no edit in progress", dynamo.ErrNoSelection)
	}
	b, err := c.selectedBody()
	if err != nil {
		c.CancelEdit()
		return err
	}
	e, err := ParseEdit(b, c.draft, c.opts.Limits)
	if err != nil {
		c.logger.Warn("edit rejected", "id", b.ID, "err", err)
		return err
	}
	if err := c.apply(b, e); err != nil {
		return err
	}
	c.CancelEdit()
	return nil
}

// CancelEdit discards the draft.
func (c *Controller) CancelEdit() {
	c.editing = false
	c.draft = nil
}

// SetField validates and applies a single field on id right away.
func (c *Controller) SetField(id int, f dynamo.Field, value string) error {
	b, ok := c.reg.Get(id)
	if !ok {
		return dynamo.UnknownBody(id)
	}
	e, err := ParseEdit(b, Draft{f: value}, c.opts.Limits)
	if err != nil {
		return err
	}
	return c.apply(b, e)
}

func (c *Controller) apply(b *body.Body, e Edit) error {
	if e.Name != nil {
		b.Name = *e.Name
	}
	if e.Color != nil {
		b.Color = *e.Color
	}
	if e.Mass != nil {
		b.SetMass(*e.Mass)
	}
	if e.Size != nil {
		if c.held != nil && c.held.id == b.ID {
			c.release()
		}
		b.Resize(*e.Size)
	}
	if e.Locked != nil {
		if err := c.SetLocked(b.ID, *e.Locked); err != nil {
			return err
		}
	}
	c.logger.Info("edited", "id", b.ID, "name", b.Name)
	return nil
}

// Forget drops every reference to id. Call before the body leaves the
// space so the spring goes first.
func (c *Controller) Forget(id int) {
	if c.held != nil && c.held.id == id {
		c.release()
	}
	if c.hasSel && c.selected == id {
		c.Deselect()
	}
}

// Validate clears a selection whose body no longer exists and reports
// whether it did.
func (c *Controller) Validate() bool {
	if !c.hasSel {
		return false
	}
	if _, ok := c.reg.Get(c.selected); ok {
		return false
	}
	if c.held != nil {
		c.space.RemoveConstraint(c.held.spring)
		c.held = nil
	}
	c.Deselect()
	return true
}

func (c *Controller) selectedBody() (*body.Body, error) {
	if !c.hasSel {
		return nil, dynamo.ErrNoSelection
	}
	b, ok := c.reg.Get(c.selected)
	if !ok {
		return nil, dynamo.UnknownBody(c.selected)
	}
	return b, nil
}
