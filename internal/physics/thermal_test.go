package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

var _ = Describe("CharacteristicSpeed", func() {
	It("follows sqrt(4kT/3m)", func() {
		m := physics.Argon.Mass()
		v, err := physics.CharacteristicSpeed(300, m)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeNumerically("~", math.Sqrt(4*physics.Boltzmann*300/(3*m)), 1e-9))
	})

	DescribeTable("rejects invalid thermal state",
		func(temp, mass float64) {
			_, err := physics.CharacteristicSpeed(temp, mass)
			Expect(err).To(MatchError(dynamo.ErrInvalidThermalState))
		},
		Entry("zero temperature", 0.0, physics.Argon.Mass()),
		Entry("negative temperature", -4.0, physics.Argon.Mass()),
		Entry("NaN temperature", math.NaN(), physics.Argon.Mass()),
		Entry("zero mass", 10.0, 0.0),
		Entry("infinite mass", 10.0, math.Inf(1)),
	)
})

var _ = Describe("Sampler", func() {
	var smp *physics.Sampler

	BeforeEach(func() {
		smp = physics.NewSampler(42)
	})

	It("draws finite non-negative speeds", func() {
		for _, sp := range physics.AllSpecies() {
			for _, t := range []float64{physics.MinTemperature, 0.1, 5, 273.15, 10000} {
				for range 50 {
					v, err := smp.Speed(t, sp.Mass())
					Expect(err).NotTo(HaveOccurred())
					Expect(v).To(BeNumerically(">=", 0))
					Expect(math.IsInf(v, 0)).To(BeFalse())
				}
			}
		}
	})

	It("has a mean close to the characteristic speed", func() {
		m := physics.Argon.Mass()
		vc, err := physics.CharacteristicSpeed(5, m)
		Expect(err).NotTo(HaveOccurred())

		const n = 20000
		sum := 0.0
		for range n {
			v, _ := smp.Speed(5, m)
			sum += v
		}
		Expect(sum / n).To(BeNumerically("~", vc, 0.02*vc))
	})

	It("clamps invalid input and still returns a speed", func() {
		v, err := smp.Speed(-3, physics.Neon.Mass())
		Expect(err).To(MatchError(dynamo.ErrInvalidThermalState))
		Expect(v).To(BeNumerically(">=", 0))
		Expect(math.IsInf(v, 0)).To(BeFalse())

		v, err = smp.Speed(math.NaN(), 0)
		Expect(err).To(MatchError(dynamo.ErrInvalidThermalState))
		Expect(math.IsNaN(v)).To(BeFalse())
	})

	It("is reproducible for a seed", func() {
		other := physics.NewSampler(42)
		for range 20 {
			a, _ := smp.Speed(50, physics.Krypton.Mass())
			b, _ := other.Speed(50, physics.Krypton.Mass())
			Expect(a).To(Equal(b))
		}
	})

	It("keeps the direction when resampling", func() {
		in := r2.Vec{X: -3, Y: 4}
		out, err := smp.Resample(in, 300, physics.Helium.Mass(), 0.5)
		Expect(err).NotTo(HaveOccurred())
		n := r2.Norm(out)
		Expect(n).To(BeNumerically(">", 0))
		Expect(out.X / n).To(BeNumerically("~", -0.6, 1e-12))
		Expect(out.Y / n).To(BeNumerically("~", 0.8, 1e-12))
	})

	It("picks a random direction for a resting particle", func() {
		out, err := smp.Resample(r2.Vec{}, 300, physics.Helium.Mass(), 1)
		Expect(err).NotTo(HaveOccurred())
		Expect(math.IsNaN(out.X) || math.IsNaN(out.Y)).To(BeFalse())
	})

	It("scales velocities by the reducer", func() {
		a, b := physics.NewSampler(9), physics.NewSampler(9)
		full, _ := a.Resample(r2.Vec{X: 1}, 100, physics.Argon.Mass(), 1)
		half, _ := b.Resample(r2.Vec{X: 1}, 100, physics.Argon.Mass(), 0.5)
		Expect(half.X).To(BeNumerically("~", full.X/2, 1e-12))
	})

	It("draws unit directions", func() {
		for range 100 {
			Expect(r2.Norm(smp.Direction())).To(BeNumerically("~", 1, 1e-9))
		}
	})

	It("only picks indices with weight", func() {
		for range 200 {
			Expect(smp.Pick([]float64{0, 3, 0, 1})).To(BeElementOf(1, 3))
		}
	})
})
