package physics_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func newChamber(setup physics.Setup, opts ...physics.Option) *physics.Chamber {
	c, err := physics.NewChamber(setup, opts...)
	Expect(err).NotTo(HaveOccurred())
	return c
}

// emptyChamber returns a chamber with no particles so tests can place their
// own.
func emptyChamber() *physics.Chamber {
	setup := physics.DefaultSetup()
	setup.Count = 0
	return newChamber(setup)
}

var _ = Describe("Chamber setup", func() {
	It("creates exactly the requested particles (scenario D)", func() {
		setup := physics.DefaultSetup()
		setup.Count = 100
		c := newChamber(setup)

		a := c.Particles()
		Expect(a.Len()).To(Equal(100))
		for i := range a.Len() {
			Expect(a.Mass[i]).To(Equal(physics.Argon.Mass()))
			Expect(a.Species[i]).To(Equal(physics.Argon))
		}
	})

	It("cycles species for round robin", func() {
		setup := physics.DefaultSetup()
		setup.Count = 100
		setup.Rule = physics.AssignRoundRobin
		setup.Mixture = []physics.MixtureEntry{
			{Species: physics.Helium, Weight: 1},
			{Species: physics.Xenon, Weight: 1},
		}
		a := newChamber(setup).Particles()

		Expect(a.Len()).To(Equal(100))
		for i := range a.Len() {
			want := setup.Mixture[i%2].Species
			Expect(a.Species[i]).To(Equal(want))
			Expect(a.Mass[i]).To(Equal(want.Mass()))
		}
	})

	It("draws species from weights", func() {
		setup := physics.DefaultSetup()
		setup.Count = 100
		setup.Rule = physics.AssignWeighted
		setup.Mixture = []physics.MixtureEntry{
			{Species: physics.Neon, Weight: 1},
			{Species: physics.Krypton, Weight: 0},
			{Species: physics.Argon, Weight: 2},
		}
		a := newChamber(setup).Particles()

		Expect(a.Len()).To(Equal(100))
		for i := range a.Len() {
			Expect(a.Species[i]).To(BeElementOf(physics.Neon, physics.Argon))
			Expect(a.Mass[i]).To(Equal(a.Species[i].Mass()))
		}
	})

	It("places particles inside the walls at the gas temperature", func() {
		setup := physics.DefaultSetup()
		setup.Count = 2000
		a := newChamber(setup).Particles()

		in := physics.Interior()
		for i := range a.Len() {
			Expect(a.Pos[i].X).To(BeNumerically(">=", in.Left))
			Expect(a.Pos[i].X).To(BeNumerically("<=", in.Right))
			Expect(a.Pos[i].Y).To(BeNumerically(">=", in.Bottom))
			Expect(a.Pos[i].Y).To(BeNumerically("<=", in.Top))
			Expect(a.Temp[i]).To(Equal(setup.GasTemperature))
		}
	})

	It("rejects invalid setups", func() {
		setup := physics.DefaultSetup()
		setup.Rule = physics.AssignWeighted
		_, err := physics.NewChamber(setup)
		Expect(err).To(HaveOccurred())

		setup.Mixture = []physics.MixtureEntry{{Species: physics.Helium, Weight: 0}}
		_, err = physics.NewChamber(setup)
		Expect(err).To(HaveOccurred())

		setup = physics.DefaultSetup()
		setup.Count = -1
		c, err := physics.NewChamber(setup)
		Expect(err).To(HaveOccurred())
		Expect(c).To(BeNil())

		Expect(func() {
			setup.Count = -1 << 40
			_, err = physics.NewChamber(setup)
		}).NotTo(Panic())
		Expect(err).To(HaveOccurred())
	})

	It("starts a fresh batch on reset", func() {
		setup := physics.DefaultSetup()
		setup.Count = 50
		c := newChamber(setup)
		_, err := c.Tick(physics.DefaultSettings(), 0.05)
		Expect(err).NotTo(HaveOccurred())

		setup.Count = 20
		Expect(c.Reset(setup)).To(Succeed())
		var f dynamo.Frame
		c.Snapshot(&f)
		Expect(f.Len()).To(Equal(20))
		Expect(f.Tick).To(Equal(0))
		Expect(c.Particles().ID[0]).To(Equal(uint32(1)))
	})
})

var _ = Describe("ResolvePairs", func() {
	var (
		c        *physics.Chamber
		settings physics.Settings
	)

	BeforeEach(func() {
		c = emptyChamber()
		settings = physics.DefaultSettings()
	})

	It("resolves an approaching pair (scenario A)", func() {
		a := c.Particles()
		a.Add(physics.Argon, r2.Vec{X: -3}, r2.Vec{X: 2}, 5)
		a.Add(physics.Argon, r2.Vec{X: 3}, r2.Vec{X: -2}, 5)

		stats, err := c.ResolvePairs([]physics.Pair{{A: 0, B: 1}}, settings)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Resolved).To(Equal(1))
		Expect(a.Vel[0].X).To(BeNumerically("~", -2, 1e-12))
		Expect(a.Vel[1].X).To(BeNumerically("~", 2, 1e-12))
	})

	It("sets each particle's temperature from its own speed", func() {
		a := c.Particles()
		a.Add(physics.Helium, r2.Vec{X: -3}, r2.Vec{X: 40}, 5)
		a.Add(physics.Xenon, r2.Vec{X: 3}, r2.Vec{X: -1}, 5)

		_, err := c.ResolvePairs([]physics.Pair{{A: 0, B: 1}}, settings)
		Expect(err).NotTo(HaveOccurred())
		for i := range 2 {
			want := physics.KineticTemperature(r2.Norm(a.Vel[i]), a.Mass[i], settings.Reducer)
			Expect(a.Temp[i]).To(Equal(want))
		}
		Expect(a.Temp[0]).NotTo(Equal(a.Temp[1]))
	})

	It("fails without touching state when a handle is missing", func() {
		a := c.Particles()
		a.Add(physics.Argon, r2.Vec{X: -3}, r2.Vec{X: 2}, 5)
		a.Add(physics.Argon, r2.Vec{X: 3}, r2.Vec{X: -2}, 5)

		_, err := c.ResolvePairs([]physics.Pair{{A: 0, B: 1}, {A: 1, B: 9}}, settings)
		Expect(err).To(MatchError(dynamo.ErrMissingParticle))
		Expect(a.Vel[0]).To(Equal(r2.Vec{X: 2}))
		Expect(a.Vel[1]).To(Equal(r2.Vec{X: -2}))
		Expect(a.Temp[0]).To(Equal(5.0))
	})

	It("skips coincident and separating pairs", func() {
		a := c.Particles()
		a.Add(physics.Argon, r2.Vec{}, r2.Vec{X: 1}, 5)
		a.Add(physics.Argon, r2.Vec{}, r2.Vec{X: -1}, 5)
		a.Add(physics.Argon, r2.Vec{X: 100}, r2.Vec{X: -3}, 5)
		a.Add(physics.Argon, r2.Vec{X: 106}, r2.Vec{X: 3}, 5)

		stats, err := c.ResolvePairs([]physics.Pair{{A: 0, B: 1}, {A: 2, B: 3}}, settings)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Degenerate).To(Equal(1))
		Expect(stats.Separating).To(Equal(1))
		Expect(stats.Resolved).To(BeZero())
		Expect(a.Vel[2]).To(Equal(r2.Vec{X: -3}))
		Expect(a.Vel[3]).To(Equal(r2.Vec{X: 3}))
	})

	It("applies pairs sharing a particle in order", func() {
		a := c.Particles()
		a.Add(physics.Argon, r2.Vec{X: -6}, r2.Vec{X: 4}, 5)
		a.Add(physics.Argon, r2.Vec{}, r2.Vec{}, 5)
		a.Add(physics.Argon, r2.Vec{X: 6}, r2.Vec{}, 5)

		stats, err := c.ResolvePairs([]physics.Pair{{A: 0, B: 1}, {A: 1, B: 2}}, settings)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Resolved).To(Equal(2))
		Expect(a.Vel[0].X).To(BeNumerically("~", 0, 1e-12))
		Expect(a.Vel[1].X).To(BeNumerically("~", 0, 1e-12))
		Expect(a.Vel[2].X).To(BeNumerically("~", 4, 1e-12))
	})
})

var _ = Describe("Chamber tick", func() {
	It("conserves kinetic energy without thermal exchange", func() {
		setup := physics.DefaultSetup()
		setup.Count = 300
		c := newChamber(setup)
		settings := physics.DefaultSettings()
		settings.ThermalExchange = false

		e0 := c.Particles().KineticEnergy()
		for range 200 {
			_, err := c.Tick(settings, 1.0/60)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(c.Particles().KineticEnergy()).To(BeNumerically("~", e0, 1e-9*e0))
	})

	It("never resolves walls under the wrap policy", func() {
		setup := physics.DefaultSetup()
		setup.Count = 0
		c := newChamber(setup)
		c.Particles().Add(physics.Argon, r2.Vec{X: 565}, r2.Vec{X: 600}, 5)

		settings := physics.DefaultSettings()
		settings.Boundary = physics.BoundaryWrap
		stats, err := c.Tick(settings, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.WallHits).To(BeZero())
		Expect(c.Particles().Pos[0].X).To(Equal(physics.WallLeft + physics.WrapMargin))
	})

	It("uses wall temperatures from the settings", func() {
		c := emptyChamber()
		c.Particles().Add(physics.Argon, r2.Vec{X: 565}, r2.Vec{X: 50}, 10)

		settings := physics.DefaultSettings()
		settings.WallTemperatures[physics.Right] = 2730.15
		stats, err := c.Tick(settings, 0)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.WallHits).To(Equal(1))
		Expect(c.Particles().Temp[0]).To(BeNumerically("~", 1370.075, 1e-9))
		Expect(c.Walls()[physics.Right].Temperature).To(Equal(2730.15))
		Expect(c.Particles().Vel[0].X).To(BeNumerically("<", 0))
	})

	It("clamps the frame time", func() {
		c := emptyChamber()
		c.Particles().Add(physics.Argon, r2.Vec{}, r2.Vec{X: 10}, 5)
		settings := physics.DefaultSettings()

		_, err := c.Tick(settings, 5)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Particles().Pos[0].X).To(BeNumerically("~", 10*settings.MaxDt, 1e-12))

		_, err = c.Tick(settings, -1)
		Expect(err).NotTo(HaveOccurred())
		Expect(c.Particles().Pos[0].X).To(BeNumerically("~", 10*settings.MaxDt, 1e-12))
	})

	It("keeps particles inside the enclosure", func() {
		setup := physics.DefaultSetup()
		setup.Count = 500
		setup.GasTemperature = 273.15
		c := newChamber(setup, physics.WithBroadPhase(physics.NewGrid(physics.Enclosure, 2*physics.Radius)))
		settings := physics.DefaultSettings()

		for range 300 {
			_, err := c.Tick(settings, 1.0/60)
			Expect(err).NotTo(HaveOccurred())
		}
		margin := physics.WallThickness + physics.Radius
		for _, p := range c.Positions(nil) {
			Expect(p.X).To(BeNumerically(">", physics.WallLeft-margin))
			Expect(p.X).To(BeNumerically("<", physics.WallRight+margin))
			Expect(p.Y).To(BeNumerically(">", physics.WallBottom-margin))
			Expect(p.Y).To(BeNumerically("<", physics.WallTop+margin))
		}
	})

	DescribeTable("contains light gas against hot walls",
		func(species physics.Species, wallTemp float64) {
			setup := physics.DefaultSetup()
			setup.Count = 1000
			setup.Species = species
			setup.GasTemperature = 273.15
			c := newChamber(setup)
			settings := physics.DefaultSettings().WithWallTemperature(wallTemp)

			faces := physics.InnerFaces()
			var total dynamo.StepStats
			for range 1200 {
				stats, err := c.Tick(settings, 1.0/60)
				Expect(err).NotTo(HaveOccurred())
				total = total.Add(stats)
			}
			for _, p := range c.Positions(nil) {
				Expect(p.X).To(BeNumerically(">=", faces.Left))
				Expect(p.X).To(BeNumerically("<=", faces.Right))
				Expect(p.Y).To(BeNumerically(">=", faces.Bottom))
				Expect(p.Y).To(BeNumerically("<=", faces.Top))
			}
			Expect(total.WallHits).To(BeNumerically(">", 0))
		},
		Entry("helium, 10000 K walls", physics.Helium, 10000.0),
		Entry("argon, 10000 K walls", physics.Argon, 10000.0),
		Entry("helium, default walls", physics.Helium, 273.15),
	)

	It("confines a particle that crossed a wall in one frame", func() {
		c := emptyChamber()
		h := c.Particles().Add(physics.Helium, r2.Vec{X: 550}, r2.Vec{X: 3000}, 5)
		settings := physics.DefaultSettings()
		settings.ThermalExchange = false

		stats, err := c.Tick(settings, 0.1)
		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Confined).To(Equal(1))
		Expect(stats.WallHits).To(Equal(1))
		Expect(c.Particles().Pos[h]).To(Equal(r2.Vec{X: 565}))
		Expect(c.Particles().Vel[h]).To(Equal(r2.Vec{X: -3000}))
	})

	It("runs under the simulator through Bind", func() {
		setup := physics.DefaultSetup()
		setup.Count = 64
		c := newChamber(setup)
		settings := physics.DefaultSettings()

		sim := dynamo.New(physics.Bind(c, func() physics.Settings { return settings }))
		cfg := dynamo.DefaultConfig()
		cfg.Duration = 0.5
		res, err := sim.Run(context.Background(), cfg)
		Expect(err).NotTo(HaveOccurred())
		Expect(res.Final).NotTo(BeNil())
		Expect(res.Final.Len()).To(Equal(64))
		Expect(res.StepsTaken).To(BeNumerically(">", 0))
		Expect(c.Speeds(nil)).To(HaveLen(64))
	})
})
