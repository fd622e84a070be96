package physics_test

import (
	"math/rand/v2"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/thermobox/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func arenaAt(points ...r2.Vec) *physics.Arena {
	a := physics.NewArena(len(points))
	for _, p := range points {
		a.Add(physics.Argon, p, r2.Vec{}, 5)
	}
	return a
}

func strategy(name string) physics.BroadPhase {
	bp, err := physics.NewBroadPhase(name)
	Expect(err).NotTo(HaveOccurred())
	return bp
}

var _ = Describe("Broad phase", func() {
	names := []string{"adjacent", "sweep", "grid", "brute"}

	It("flags an overlapping pair with every strategy (scenario A)", func() {
		a := arenaAt(r2.Vec{X: -3}, r2.Vec{X: 3})
		for _, name := range names {
			Expect(strategy(name).Candidates(a, physics.Radius, nil)).
				To(ConsistOf(physics.Pair{A: 0, B: 1}), name)
		}
	})

	It("reports nothing for separated particles", func() {
		a := arenaAt(r2.Vec{X: -100}, r2.Vec{X: 100}, r2.Vec{Y: 200})
		for _, name := range names {
			Expect(strategy(name).Candidates(a, physics.Radius, nil)).To(BeEmpty(), name)
		}
	})

	It("counts touching circles as overlapping", func() {
		a := arenaAt(r2.Vec{}, r2.Vec{X: 10})
		for _, name := range names {
			Expect(strategy(name).Candidates(a, physics.Radius, nil)).To(HaveLen(1), name)
		}
	})

	It("misses pairs that are not neighbours in x with the adjacent sweep", func() {
		// 0 and 2 overlap, but 1 sits between them in x and touches neither
		a := arenaAt(r2.Vec{X: 0}, r2.Vec{X: 1, Y: 50}, r2.Vec{X: 2})

		Expect(strategy("adjacent").Candidates(a, physics.Radius, nil)).To(BeEmpty())
		for _, name := range []string{"sweep", "grid", "brute"} {
			Expect(strategy(name).Candidates(a, physics.Radius, nil)).
				To(ConsistOf(physics.Pair{A: 0, B: 2}), name)
		}
	})

	It("finds only neighbour pairs in a tight cluster with the adjacent sweep", func() {
		// four particles within one radius of each other: six overlapping pairs
		a := arenaAt(r2.Vec{X: 0}, r2.Vec{X: 1, Y: 1}, r2.Vec{X: 2}, r2.Vec{X: 3, Y: 1})
		all := []physics.Pair{{A: 0, B: 1}, {A: 0, B: 2}, {A: 0, B: 3}, {A: 1, B: 2}, {A: 1, B: 3}, {A: 2, B: 3}}

		Expect(strategy("adjacent").Candidates(a, physics.Radius, nil)).
			To(ConsistOf(physics.Pair{A: 0, B: 1}, physics.Pair{A: 1, B: 2}, physics.Pair{A: 2, B: 3}))
		for _, name := range []string{"sweep", "grid", "brute"} {
			Expect(strategy(name).Candidates(a, physics.Radius, nil)).To(ConsistOf(all), name)
		}
	})

	It("finds every overlapping pair with sweep and grid", func() {
		rng := rand.New(rand.NewPCG(3, 5))
		in := physics.Interior()
		points := make([]r2.Vec, 300)
		for i := range points {
			// a crowded patch so plenty of pairs overlap
			points[i] = r2.Vec{
				X: in.Left + rng.Float64()*120,
				Y: in.Bottom + rng.Float64()*120,
			}
		}
		a := arenaAt(points...)

		want := physics.BruteForce{}.Candidates(a, physics.Radius, nil)
		Expect(want).NotTo(BeEmpty())
		for _, name := range []string{"sweep", "grid"} {
			Expect(strategy(name).Candidates(a, physics.Radius, nil)).To(ConsistOf(want), name)
		}
	})

	It("orders every pair with A < B", func() {
		a := arenaAt(r2.Vec{X: 4}, r2.Vec{X: 0}, r2.Vec{X: -4})
		for _, name := range names {
			for _, p := range strategy(name).Candidates(a, physics.Radius, nil) {
				Expect(p.A).To(BeNumerically("<", p.B), name)
			}
		}
	})

	It("reuses the destination slice", func() {
		a := arenaAt(r2.Vec{X: -3}, r2.Vec{X: 3})
		dst := make([]physics.Pair, 0, 16)
		dst = append(dst, physics.Pair{A: 7, B: 8})
		got := strategy("sweep").Candidates(a, physics.Radius, dst)
		Expect(got).To(Equal([]physics.Pair{{A: 0, B: 1}}))
		Expect(cap(got)).To(Equal(16))
	})

	It("rejects unknown names", func() {
		_, err := physics.NewBroadPhase("octree")
		Expect(err).To(HaveOccurred())
		bp, err := physics.NewBroadPhase("")
		Expect(err).NotTo(HaveOccurred())
		Expect(bp.Name()).To(Equal("sweep"))
	})
})

var _ = Describe("Grid", func() {
	It("clamps positions outside the region into edge cells", func() {
		g := physics.NewGrid(physics.Bounds{Left: 0, Right: 100, Top: 100, Bottom: 0}, 10)
		a := arenaAt(r2.Vec{X: -50, Y: -50}, r2.Vec{X: -48, Y: -47}, r2.Vec{X: 500, Y: 500})
		Expect(g.Candidates(a, physics.Radius, nil)).To(ConsistOf(physics.Pair{A: 0, B: 1}))
	})

	It("grows its cells for a larger radius", func() {
		g := physics.NewGrid(physics.Bounds{Left: 0, Right: 100, Top: 100, Bottom: 0}, 2)
		a := arenaAt(r2.Vec{X: 10, Y: 10}, r2.Vec{X: 25, Y: 10})
		Expect(g.Candidates(a, 8, nil)).To(ConsistOf(physics.Pair{A: 0, B: 1}))
	})
})
