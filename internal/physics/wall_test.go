package physics_test

import (
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/thermobox/internal/physics"
	"gonum.org/v1/gonum/spatial/r2"
)

func wallAt(loc physics.WallLocation) physics.Wall {
	return physics.NewWall(uint32(loc)+1, loc, 273.15)
}

var _ = Describe("Wall geometry", func() {
	It("derives boxes from the enclosure constants", func() {
		right := wallAt(physics.Right)
		Expect(right.Center).To(Equal(r2.Vec{X: 570}))
		Expect(right.Half).To(Equal(r2.Vec{X: 5, Y: 355}))

		top := wallAt(physics.Top)
		Expect(top.Center).To(Equal(r2.Vec{Y: 350}))
		Expect(top.Half).To(Equal(r2.Vec{X: 575, Y: 5}))
	})

	It("parses locations", func() {
		loc, err := physics.ParseWallLocation("bottom")
		Expect(err).NotTo(HaveOccurred())
		Expect(loc).To(Equal(physics.Bottom))

		_, err = physics.ParseWallLocation("north")
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("CollideWall", func() {
	DescribeTable("face determination",
		func(loc physics.WallLocation, center r2.Vec, want physics.Face) {
			face, hit := physics.CollideWall(center, physics.Radius, wallAt(loc))
			Expect(hit).To(BeTrue())
			Expect(face).To(Equal(want))
		},
		Entry("right wall from inside", physics.Right, r2.Vec{X: 562}, physics.FaceRight),
		Entry("right wall, centre on the face", physics.Right, r2.Vec{X: 565}, physics.FaceRight),
		Entry("left wall from inside", physics.Left, r2.Vec{X: -562, Y: 20}, physics.FaceLeft),
		Entry("top wall from inside", physics.Top, r2.Vec{X: 10, Y: 342}, physics.FaceTop),
		Entry("bottom wall from inside", physics.Bottom, r2.Vec{X: -10, Y: -341}, physics.FaceBottom),
		Entry("left wall, centre buried", physics.Left, r2.Vec{X: -567, Y: 0}, physics.FaceLeft),
		Entry("right wall, centre on the centre line", physics.Right, r2.Vec{X: 570}, physics.FaceRight),
		Entry("right wall, centre past the centre line", physics.Right, r2.Vec{X: 571}, physics.FaceRight),
		Entry("right wall, centre at the outer face", physics.Right, r2.Vec{X: 575, Y: 30}, physics.FaceRight),
		Entry("right wall, centre beyond the outer face", physics.Right, r2.Vec{X: 578}, physics.FaceRight),
		Entry("left wall, centre past the centre line", physics.Left, r2.Vec{X: -573}, physics.FaceLeft),
		Entry("top wall, centre past the centre line", physics.Top, r2.Vec{X: 100, Y: 352}, physics.FaceTop),
		Entry("bottom wall, centre past the centre line", physics.Bottom, r2.Vec{Y: -354}, physics.FaceBottom),
	)

	It("misses particles away from the wall", func() {
		for _, loc := range physics.WallLocations {
			_, hit := physics.CollideWall(r2.Vec{}, physics.Radius, wallAt(loc))
			Expect(hit).To(BeFalse())
		}
		_, hit := physics.CollideWall(r2.Vec{X: 559.9}, physics.Radius, wallAt(physics.Right))
		Expect(hit).To(BeFalse())
	})

	It("counts touching as contact", func() {
		_, hit := physics.CollideWall(r2.Vec{X: 560}, physics.Radius, wallAt(physics.Right))
		Expect(hit).To(BeTrue())
	})
})

var _ = Describe("Reflect", func() {
	DescribeTable("only reflects motion into the wall",
		func(face physics.Face, in, want r2.Vec, reflected bool) {
			got, ok := physics.Reflect(in, face)
			Expect(ok).To(Equal(reflected))
			Expect(got).To(Equal(want))
		},
		Entry("right, moving right", physics.FaceRight, r2.Vec{X: 3, Y: 1}, r2.Vec{X: -3, Y: 1}, true),
		Entry("right, moving left", physics.FaceRight, r2.Vec{X: -3, Y: 1}, r2.Vec{X: -3, Y: 1}, false),
		Entry("left, moving left", physics.FaceLeft, r2.Vec{X: -3, Y: 1}, r2.Vec{X: 3, Y: 1}, true),
		Entry("left, moving right", physics.FaceLeft, r2.Vec{X: 3, Y: 1}, r2.Vec{X: 3, Y: 1}, false),
		Entry("top, moving up", physics.FaceTop, r2.Vec{X: 1, Y: 4}, r2.Vec{X: 1, Y: -4}, true),
		Entry("top, moving down", physics.FaceTop, r2.Vec{X: 1, Y: -4}, r2.Vec{X: 1, Y: -4}, false),
		Entry("bottom, moving down", physics.FaceBottom, r2.Vec{X: 1, Y: -4}, r2.Vec{X: 1, Y: 4}, true),
		Entry("bottom, moving up", physics.FaceBottom, r2.Vec{X: 1, Y: 4}, r2.Vec{X: 1, Y: 4}, false),
		Entry("right, moving along the wall", physics.FaceRight, r2.Vec{Y: 9}, r2.Vec{Y: 9}, false),
	)

	It("never reflects a particle leaving an overlapped wall", func() {
		for _, loc := range physics.WallLocations {
			w := wallAt(loc)
			// a point inside the box, still overlapping
			center := r2.Add(w.Center, r2.Scale(-0.2, r2.Unit(w.Center)))
			face, hit := physics.CollideWall(center, physics.Radius, w)
			Expect(hit).To(BeTrue())

			away := r2.Scale(-100, r2.Unit(w.Center))
			for k := -5; k <= 5; k++ {
				v := r2.Add(away, r2.Scale(float64(k)/10, r2.Vec{X: -away.Y, Y: away.X}))
				got, ok := physics.Reflect(v, face)
				Expect(ok).To(BeFalse(), "wall %v velocity %v", loc, v)
				Expect(got).To(Equal(v))
			}
		}
	})
})

var _ = Describe("ResolveWall", func() {
	var (
		arena    *physics.Arena
		settings physics.Settings
		sampler  *physics.Sampler
	)

	BeforeEach(func() {
		arena = physics.NewArena(1)
		settings = physics.DefaultSettings()
		sampler = physics.NewSampler(3)
	})

	It("bounces off the right wall without thermal exchange (scenario B)", func() {
		h := arena.Add(physics.Argon, r2.Vec{X: 565}, r2.Vec{X: 50}, 5)
		settings.ThermalExchange = false

		contact, err := physics.ResolveWall(arena, h, wallAt(physics.Right), settings, sampler)
		Expect(err).NotTo(HaveOccurred())
		Expect(contact.Hit).To(BeTrue())
		Expect(contact.Face).To(Equal(physics.FaceRight))
		Expect(contact.Reflected).To(BeTrue())
		Expect(contact.Exchanged).To(BeFalse())
		Expect(arena.Vel[h]).To(Equal(r2.Vec{X: -50}))
		Expect(arena.Temp[h]).To(Equal(5.0))
	})

	It("averages with the wall temperature before resampling (scenario C)", func() {
		h := arena.Add(physics.Argon, r2.Vec{X: 565}, r2.Vec{X: 50, Y: 20}, 10)
		settings.Reducer = 0.5
		w := physics.NewWall(2, physics.Right, 2730.15)

		contact, err := physics.ResolveWall(arena, h, w, settings, sampler)
		Expect(err).NotTo(HaveOccurred())
		Expect(contact.Exchanged).To(BeTrue())
		Expect(arena.Temp[h]).To(BeNumerically("~", 1370.075, 1e-9))

		v := arena.Vel[h]
		Expect(math.IsNaN(v.X) || math.IsNaN(v.Y)).To(BeFalse())
		// direction of the reflected velocity is kept
		want := r2.Unit(r2.Vec{X: -50, Y: 20})
		got := r2.Unit(v)
		Expect(got.X).To(BeNumerically("~", want.X, 1e-9))
		Expect(got.Y).To(BeNumerically("~", want.Y, 1e-9))
	})

	It("does not push a sunken particle that is already heading back inward", func() {
		h := arena.Add(physics.Argon, r2.Vec{X: 571}, r2.Vec{X: -50}, 5)
		settings.ThermalExchange = false

		contact, err := physics.ResolveWall(arena, h, wallAt(physics.Right), settings, sampler)
		Expect(err).NotTo(HaveOccurred())
		Expect(contact.Face).To(Equal(physics.FaceRight))
		Expect(contact.Reflected).To(BeFalse())
		Expect(arena.Vel[h]).To(Equal(r2.Vec{X: -50}))
	})

	It("turns a sunken particle still heading outward", func() {
		h := arena.Add(physics.Argon, r2.Vec{X: 571}, r2.Vec{X: 50}, 5)
		settings.ThermalExchange = false

		contact, err := physics.ResolveWall(arena, h, wallAt(physics.Right), settings, sampler)
		Expect(err).NotTo(HaveOccurred())
		Expect(contact.Reflected).To(BeTrue())
		Expect(arena.Vel[h]).To(Equal(r2.Vec{X: -50}))
	})

	It("leaves a particle moving away untouched even with thermal exchange", func() {
		h := arena.Add(physics.Argon, r2.Vec{X: 565}, r2.Vec{X: -50}, 10)
		contact, err := physics.ResolveWall(arena, h, physics.NewWall(2, physics.Right, 2730.15), settings, sampler)
		Expect(err).NotTo(HaveOccurred())
		Expect(contact.Hit).To(BeTrue())
		Expect(contact.Reflected).To(BeFalse())
		Expect(arena.Vel[h]).To(Equal(r2.Vec{X: -50}))
		Expect(arena.Temp[h]).To(Equal(10.0))
	})
})

var _ = Describe("Confine", func() {
	faces := physics.InnerFaces()

	It("bounds the enclosure side of every wall", func() {
		Expect(faces).To(Equal(physics.Bounds{Left: -565, Right: 565, Top: 345, Bottom: -345}))
	})

	DescribeTable("pulls crossed centres back onto the inner faces",
		func(in, want r2.Vec, moved bool) {
			got, ok := physics.Confine(in, faces)
			Expect(ok).To(Equal(moved))
			Expect(got).To(Equal(want))
		},
		Entry("inside", r2.Vec{X: 100, Y: -20}, r2.Vec{X: 100, Y: -20}, false),
		Entry("on the face", r2.Vec{X: 565}, r2.Vec{X: 565}, false),
		Entry("past the right wall", r2.Vec{X: 600, Y: 3}, r2.Vec{X: 565, Y: 3}, true),
		Entry("past the bottom wall", r2.Vec{X: -7, Y: -400}, r2.Vec{X: -7, Y: -345}, true),
		Entry("past a corner", r2.Vec{X: -900, Y: 900}, r2.Vec{X: -565, Y: 345}, true),
	)
})
