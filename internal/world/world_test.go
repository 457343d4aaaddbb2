package world_test

import (
	"math"

	"github.com/jakecoffman/cp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/orbitlab/internal/config"
	"github.com/san-kum/orbitlab/internal/dynamo"
	"github.com/san-kum/orbitlab/internal/interact"
	"github.com/san-kum/orbitlab/internal/lifecycle"
	"github.com/san-kum/orbitlab/internal/world"
)

func vec(x, y float64) *cp.Vector { return &cp.Vector{X: x, Y: y} }
func num(v float64) *float64      { return &v }
func id(v int) *int               { return &v }

func centered() *config.Config {
	cfg := config.DefaultConfig()
	cfg.SunX, cfg.SunY = 0, 0
	cfg.Planets = 0
	return cfg
}

var _ = Describe("World", func() {
	var w *world.World

	BeforeEach(func() {
		var err error
		w, err = world.New(centered())
		Expect(err).NotTo(HaveOccurred())
	})

	view := func(bid int) dynamo.BodyView {
		v, ok := w.Body(bid)
		Expect(ok).To(BeTrue(), "body %d missing", bid)
		return v
	}

	Describe("construction", func() {
		It("starts with the sun at id 0", func() {
			snap := w.Snapshot()
			Expect(snap).To(HaveLen(1))
			Expect(snap[0].ID).To(Equal(dynamo.SunID))
			Expect(snap[0].Kind).To(Equal(dynamo.Sun))
			Expect(snap[0].Velocity).To(Equal(cp.Vector{}))
		})

		It("populates deterministically from the seed", func() {
			cfg := centered()
			cfg.Planets = 5
			cfg.Seed = 7
			a, err := world.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			b, err := world.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			Expect(a.Snapshot()).To(HaveLen(6))
			Expect(a.Snapshot()).To(Equal(b.Snapshot()))
		})

		It("places default planets inside the configured ranges", func() {
			cfg := centered()
			cfg.Planets = 20
			pw, err := world.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			for _, b := range pw.Snapshot()[1:] {
				d := b.Position.Length()
				Expect(d).To(BeNumerically(">=", cfg.OrbitDistanceMin-1e-9))
				Expect(d).To(BeNumerically("<=", cfg.OrbitDistanceMax+1e-9))
				Expect(b.Radius).To(BeNumerically(">=", cfg.PlanetRadiusMin))
				Expect(b.Radius).To(BeNumerically("<=", cfg.PlanetRadiusMax))
				Expect(b.Mass).To(BeNumerically("~", cfg.PlanetDensity*math.Pi*b.Radius*b.Radius, 1e-9))
				Expect(b.Color).To(MatchRegexp(`^#[0-9a-f]{6}$`))
			}
		})

		It("rejects an invalid configuration", func() {
			cfg := centered()
			cfg.G = 0
			_, err := world.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})

		It("rejects non-finite constants", func() {
			cfg := centered()
			cfg.G = math.NaN()
			_, err := world.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))

			cfg = centered()
			cfg.TimeScale = math.Inf(1)
			cfg.Planets = 0
			_, err = world.New(cfg)
			Expect(err).To(MatchError(dynamo.ErrInvalidConfig))
		})
	})

	Describe("ids", func() {
		It("allocates unique increasing ids and never reuses them", func() {
			a, err := w.CreateBody(world.BodySpec{})
			Expect(err).NotTo(HaveOccurred())
			b, err := w.CreateBody(world.BodySpec{})
			Expect(err).NotTo(HaveOccurred())
			Expect(a).To(BeNumerically(">", 0))
			Expect(b).To(BeNumerically(">", a))

			Expect(w.RemoveBody(b)).To(Succeed())
			c, err := w.CreateBody(world.BodySpec{})
			Expect(err).NotTo(HaveOccurred())
			Expect(c).To(BeNumerically(">", b))
		})

		It("honors an id override and moves the allocator past it", func() {
			got, err := w.CreateBody(world.BodySpec{ID: id(40)})
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(40))

			_, err = w.CreateBody(world.BodySpec{ID: id(40)})
			Expect(err).To(MatchError(dynamo.ErrDuplicateID))

			next, err := w.CreateBody(world.BodySpec{})
			Expect(err).NotTo(HaveOccurred())
			Expect(next).To(Equal(41))
		})

		It("refuses a second sun and removal of the sun", func() {
			_, err := w.CreateBody(world.BodySpec{Kind: dynamo.Sun})
			Expect(err).To(MatchError(dynamo.ErrSunImmutable))
			Expect(w.RemoveBody(dynamo.SunID)).To(MatchError(dynamo.ErrSunImmutable))
			Expect(w.RemoveBody(99)).To(MatchError(dynamo.ErrUnknownBody))
		})
	})

	Describe("mass and size", func() {
		It("keeps mass when a planet is resized", func() {
			p, err := w.CreateBody(world.BodySpec{Position: vec(200, 0), Radius: num(10)})
			Expect(err).NotTo(HaveOccurred())
			m := view(p).Mass

			Expect(w.SetField(p, dynamo.FieldSize, "25")).To(Succeed())
			Expect(view(p).Radius).To(Equal(25.0))
			Expect(view(p).Mass).To(Equal(m))
		})

		It("keeps the sun's radius when its mass changes", func() {
			Expect(w.SetField(dynamo.SunID, dynamo.FieldMass, "20000")).To(Succeed())
			Expect(view(dynamo.SunID).Mass).To(Equal(20000.0))
			Expect(view(dynamo.SunID).Radius).To(Equal(40.0))
		})

		It("rejects mass edits on planets", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0)})
			err := w.SetField(p, dynamo.FieldMass, "5")
			var ee *dynamo.EditError
			Expect(err).To(BeAssignableToTypeOf(ee))
			Expect(err).To(MatchError(dynamo.ErrInvalidEdit))
		})
	})

	Describe("locking", func() {
		It("restores the exact velocity on unlock", func() {
			v := cp.Vector{X: 1.25, Y: -6.5}
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0), Velocity: &v})

			Expect(w.SetLocked(p, true)).To(Succeed())
			Expect(view(p).Velocity).To(Equal(cp.Vector{}))
			Expect(*view(p).LockedVelocity).To(Equal(v))

			Expect(w.SetLocked(p, false)).To(Succeed())
			Expect(view(p).Velocity).To(Equal(v))
			Expect(view(p).LockedVelocity).To(BeNil())
		})

		It("refuses to lock the sun", func() {
			Expect(w.SetLocked(dynamo.SunID, true)).To(MatchError(dynamo.ErrSunNotLockable))
		})

		It("captures velocity at toggle time and zeroes diagnostics", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0)})
			captured := view(p).Velocity

			w.Enqueue(world.Select{ID: p})
			w.Enqueue(world.ToggleLock{})
			res := w.Step()
			Expect(res.Errors).To(BeEmpty())

			b := view(p)
			Expect(b.Locked).To(BeTrue())
			Expect(b.Velocity).To(Equal(cp.Vector{}))
			Expect(*b.LockedVelocity).To(Equal(captured))
			Expect(b.Position).To(Equal(cp.Vector{X: 200}))

			d, ok := w.DiagnosticsFor(p)
			Expect(ok).To(BeTrue())
			Expect(d.Radial).To(Equal(0.0))
			Expect(d.Tangential).To(Equal(0.0))
		})
	})

	Describe("removal rules", func() {
		It("culls a planet beyond the escape distance", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(5001, 0), Velocity: vec(0, 0)})
			res := w.Step()
			Expect(res.Removed).To(ContainElement(lifecycle.Removal{ID: p, Reason: lifecycle.Escape}))
			_, ok := w.Body(p)
			Expect(ok).To(BeFalse())
		})

		It("exempts locked planets from escape", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(5001, 0), Velocity: vec(0, 0)})
			Expect(w.SetLocked(p, true)).To(Succeed())
			Expect(w.Step().Removed).To(BeEmpty())
			Expect(view(p).Position).To(Equal(cp.Vector{X: 5001}))
		})

		It("removes a locked planet that overlaps the sun", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(45, 0), Radius: num(10)})
			Expect(w.SetLocked(p, true)).To(Succeed())
			res := w.Step()
			Expect(res.Removed).To(ConsistOf(lifecycle.Removal{ID: p, Reason: lifecycle.Collision}))
		})

		It("clears the selection in the same step", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(5001, 0), Velocity: vec(0, 0)})
			w.Enqueue(world.Select{ID: p})
			w.Step()
			_, ok := w.Selected()
			Expect(ok).To(BeFalse())
			Expect(w.State()).To(Equal(interact.Unselected))
		})

		It("removes the selected planet on request", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0)})
			w.Enqueue(world.Select{ID: p})
			w.Enqueue(world.RemoveSelected{})
			res := w.Step()
			Expect(res.Errors).To(BeEmpty())
			_, ok := w.Body(p)
			Expect(ok).To(BeFalse())
		})
	})

	Describe("diagnostics", func() {
		It("reports positive tangential for counter-clockwise motion above the sun", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(0, -200)})
			d, ok := w.DiagnosticsFor(p)
			Expect(ok).To(BeTrue())
			Expect(d.Radial).To(BeNumerically("~", 0, 1e-9))
			Expect(d.Tangential).To(BeNumerically("~", 7.5, 1e-9))
			Expect(d.Distance).To(BeNumerically("~", 200, 1e-9))
			Expect(d.Angle).To(BeNumerically("~", 90, 1e-9))
		})

		It("reports nothing for a missing body", func() {
			_, ok := w.DiagnosticsFor(1234)
			Expect(ok).To(BeFalse())
		})

		It("reports nothing for the sun", func() {
			d, ok := w.DiagnosticsFor(dynamo.SunID)
			Expect(ok).To(BeFalse())
			Expect(d).To(Equal(dynamo.Diagnostics{}))
		})
	})

	Describe("orbits", func() {
		It("keeps a default orbit nearly circular over one step", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0), Radius: num(10)})
			Expect(view(p).Velocity.Length()).To(BeNumerically("~", 7.5, 1e-9))

			res := w.Step()
			Expect(res.Removed).To(BeEmpty())
			d := view(p).Position.Length()
			Expect(math.Abs(d - 200)).To(BeNumerically("<", 0.01*200))
			Expect(d).To(BeNumerically("~", 200, 0.1))
		})

		It("stays finite over a long run", func() {
			cfg := centered()
			cfg.Planets = 8
			lw, err := world.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			lw.Run(600)
			for _, b := range lw.Snapshot() {
				Expect(math.IsNaN(b.Position.X) || math.IsNaN(b.Velocity.X)).To(BeFalse())
			}
		})
	})

	Describe("pointer interaction", func() {
		It("holds a planet while the pointer is down", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0), Radius: num(10)})
			w.Enqueue(world.PointerDown{Pos: cp.Vector{X: 200}})
			w.Step()
			Expect(w.State()).To(Equal(interact.Holding))
			Expect(view(p).Held).To(BeTrue())

			d, _ := w.DiagnosticsFor(p)
			Expect(d.Radial).To(Equal(0.0))
			Expect(d.Tangential).To(Equal(0.0))

			w.Enqueue(world.PointerMove{Pos: cp.Vector{X: 320}})
			w.Run(10)
			Expect(view(p).Position.X).To(BeNumerically(">", 230))

			w.Enqueue(world.PointerUp{})
			w.Step()
			Expect(view(p).Held).To(BeFalse())
			Expect(w.State()).To(Equal(interact.Selected))
		})

		It("selects the sun without holding it", func() {
			w.Enqueue(world.PointerDown{Pos: cp.Vector{}})
			w.Step()
			sel, ok := w.Selected()
			Expect(ok).To(BeTrue())
			Expect(sel).To(Equal(dynamo.SunID))
			Expect(w.State()).To(Equal(interact.Selected))
		})

		It("deselects on empty space", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0)})
			w.Enqueue(world.Select{ID: p})
			w.Enqueue(world.PointerDown{Pos: cp.Vector{X: -300, Y: 300}})
			w.Step()
			_, ok := w.Selected()
			Expect(ok).To(BeFalse())
		})
	})

	Describe("edit form", func() {
		It("applies nothing when any field is invalid", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0), Name: "Io"})
			w.Enqueue(world.Select{ID: p})
			w.Enqueue(world.BeginEdit{})
			w.Enqueue(world.SetDraft{Field: dynamo.FieldName, Value: "Europa"})
			w.Enqueue(world.SetDraft{Field: dynamo.FieldSize, Value: "big"})
			w.Enqueue(world.CommitEdit{})
			res := w.Step()

			Expect(res.Errors).To(HaveLen(1))
			Expect(res.Errors[0]).To(MatchError(dynamo.ErrInvalidEdit))
			Expect(view(p).Name).To(Equal("Io"))
			Expect(w.State()).To(Equal(interact.Editing))

			w.Enqueue(world.CancelEdit{})
			w.Step()
			Expect(w.State()).To(Equal(interact.Selected))
			Expect(w.Draft()).To(BeNil())
		})

		It("commits a valid draft", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0)})
			w.Enqueue(world.Select{ID: p})
			w.Enqueue(world.BeginEdit{})
			w.Enqueue(world.SetDraft{Field: dynamo.FieldColor, Value: "#00FF00"})
			w.Enqueue(world.SetDraft{Field: dynamo.FieldLocked, Value: "true"})
			w.Enqueue(world.CommitEdit{})
			Expect(w.Step().Errors).To(BeEmpty())
			Expect(view(p).Color).To(Equal("#00ff00"))
			Expect(view(p).Locked).To(BeTrue())
		})
	})

	Describe("held gravity option", func() {
		It("skips gravity on held planets when disabled", func() {
			cfg := centered()
			cfg.GravityWhileHeld = false
			cfg.DragStiffness = 1e-9
			cfg.DragDamping = 0
			hw, err := world.New(cfg)
			Expect(err).NotTo(HaveOccurred())
			p, _ := hw.CreateBody(world.BodySpec{Position: vec(200, 0), Velocity: vec(0, 0)})
			hw.Enqueue(world.PointerDown{Pos: cp.Vector{X: 200}})
			hw.Step()
			v, _ := hw.Body(p)
			Expect(v.Position.X).To(BeNumerically("~", 200, 1e-6))
		})
	})

	Describe("flush", func() {
		It("applies queued commands without stepping", func() {
			p, _ := w.CreateBody(world.BodySpec{Position: vec(200, 0)})
			before := view(p).Position
			w.Enqueue(world.Select{ID: p})
			w.Enqueue(world.ToggleLock{})
			Expect(w.Flush()).To(BeEmpty())
			Expect(w.Frame()).To(Equal(0))
			Expect(view(p).Locked).To(BeTrue())
			Expect(view(p).Position).To(Equal(before))
		})

		It("reports rejected commands", func() {
			w.Enqueue(world.RemoveSelected{})
			errs := w.Flush()
			Expect(errs).To(HaveLen(1))
			Expect(errs[0]).To(MatchError(dynamo.ErrNoSelection))
		})
	})
})
