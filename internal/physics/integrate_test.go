package physics_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/thermobox/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

var _ = Describe("Integrate", func() {
	It("moves particles by velocity times dt", func() {
		a := physics.NewArena(2)
		a.Add(physics.Argon, r2.Vec{X: 1, Y: 2}, r2.Vec{X: 10, Y: -20}, 5)
		a.Add(physics.Neon, r2.Vec{}, r2.Vec{}, 5)

		physics.Integrate(a, 0.5, physics.BoundaryBounce, physics.Enclosure)
		Expect(a.Pos[0]).To(Equal(r2.Vec{X: 6, Y: -8}))
		Expect(a.Pos[1]).To(Equal(r2.Vec{}))
	})

	It("does not wrap under the bounce policy", func() {
		a := physics.NewArena(1)
		a.Add(physics.Argon, r2.Vec{X: 569}, r2.Vec{X: 10}, 5)
		physics.Integrate(a, 1, physics.BoundaryBounce, physics.Enclosure)
		Expect(a.Pos[0].X).To(Equal(579.0))
	})

	It("wraps to just inside the opposite side", func() {
		a := physics.NewArena(2)
		a.Add(physics.Argon, r2.Vec{X: 569}, r2.Vec{X: 10}, 5)
		a.Add(physics.Argon, r2.Vec{Y: -349}, r2.Vec{Y: -10}, 5)

		physics.Integrate(a, 1, physics.BoundaryWrap, physics.Enclosure)
		Expect(a.Pos[0]).To(Equal(r2.Vec{X: physics.WallLeft + physics.WrapMargin}))
		Expect(a.Pos[1]).To(Equal(r2.Vec{Y: physics.WallTop - physics.WrapMargin}))
	})

	It("handles large sets across goroutines", func() {
		const n = 5000
		a := physics.NewArena(n)
		for i := range n {
			a.Add(physics.Helium, r2.Vec{X: float64(i % 100)}, r2.Vec{X: 1, Y: float64(i % 7)}, 5)
		}
		physics.Integrate(a, 2, physics.BoundaryBounce, physics.Enclosure)
		for i := range n {
			Expect(a.Pos[i]).To(Equal(r2.Vec{X: float64(i%100) + 2, Y: 2 * float64(i%7)}))
		}
	})

	DescribeTable("parses boundary policies",
		func(name string, want physics.Boundary, ok bool) {
			got, err := physics.ParseBoundary(name)
			if !ok {
				Expect(err).To(HaveOccurred())
				return
			}
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
			Expect(got.String()).To(Equal(map[bool]string{true: "wrap", false: "bounce"}[want == physics.BoundaryWrap]))
		},
		Entry("bounce", "bounce", physics.BoundaryBounce, true),
		Entry("default", "", physics.BoundaryBounce, true),
		Entry("wrap", "wrap", physics.BoundaryWrap, true),
		Entry("unknown", "torus", physics.BoundaryBounce, false),
	)
})
