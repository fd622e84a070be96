package physics

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

type WallLocation uint8

const (
	Left WallLocation = iota
	Right
	Top
	Bottom
)

// WallLocations lists every location in index order.
var WallLocations = [4]WallLocation{Left, Right, Top, Bottom}

func (l WallLocation) String() string {
	switch l {
	case Left:
		return "left"
	case Right:
		return "right"
	case Top:
		return "top"
	case Bottom:
		return "bottom"
	default:
		return fmt.Sprintf("WallLocation(%d)", uint8(l))
	}
}

func ParseWallLocation(name string) (WallLocation, error) {
	for _, l := range WallLocations {
		if l.String() == name {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown wall location: %s", name)
}

// Wall is a static axis-aligned box. Only Temperature may change after
// construction.
type Wall struct {
	ID          uint32
	Location    WallLocation
	Center      r2.Vec
	Half        r2.Vec
	Temperature float64
}

// NewWall derives the wall box from the enclosure constants.
func NewWall(id uint32, loc WallLocation, temperature float64) Wall {
	w := Wall{ID: id, Location: loc, Temperature: temperature}
	height := Enclosure.Height() + WallThickness
	width := Enclosure.Width() + WallThickness
	switch loc {
	case Left:
		w.Center = r2.Vec{X: WallLeft}
		w.Half = r2.Vec{X: WallThickness / 2, Y: height / 2}
	case Right:
		w.Center = r2.Vec{X: WallRight}
		w.Half = r2.Vec{X: WallThickness / 2, Y: height / 2}
	case Top:
		w.Center = r2.Vec{Y: WallTop}
		w.Half = r2.Vec{X: width / 2, Y: WallThickness / 2}
	case Bottom:
		w.Center = r2.Vec{Y: WallBottom}
		w.Half = r2.Vec{X: width / 2, Y: WallThickness / 2}
	}
	return w
}

func (w Wall) Box() r2.Box {
	return r2.Box{Min: r2.Sub(w.Center, w.Half), Max: r2.Add(w.Center, w.Half)}
}

// Closest returns the point of the box nearest to p.
func (w Wall) Closest(p r2.Vec) r2.Vec {
	b := w.Box()
	return r2.Vec{
		X: math.Max(b.Min.X, math.Min(p.X, b.Max.X)),
		Y: math.Max(b.Min.Y, math.Min(p.Y, b.Max.Y)),
	}
}

// Face names the side of the enclosure a particle is touching: FaceRight
// is contact with the right-hand boundary, which the particle reaches
// while moving in +x.
type Face uint8

const (
	FaceLeft Face = iota
	FaceRight
	FaceTop
	FaceBottom
)

func (f Face) String() string { return WallLocation(f).String() }

// CollideWall tests a circle against the wall box and reports the
// contacted face. Contact along the wall's normal axis, including a centre
// on or inside the box, always reports the wall's inner face, so a
// particle that has sunk into a wall is pushed back into the enclosure.
func CollideWall(center r2.Vec, radius float64, w Wall) (Face, bool) {
	offset := r2.Sub(center, w.Closest(center))
	if r2.Norm2(offset) > radius*radius {
		return 0, false
	}

	inner := Face(w.Location)
	vertical := w.Location == Left || w.Location == Right
	switch {
	case offset.X == 0 && offset.Y == 0:
		return inner, true
	case math.Abs(offset.X) > math.Abs(offset.Y):
		if vertical {
			return inner, true
		}
		// past the end of a top or bottom wall
		if offset.X < 0 {
			return FaceRight, true
		}
		return FaceLeft, true
	default:
		if !vertical {
			return inner, true
		}
		if offset.Y < 0 {
			return FaceTop, true
		}
		return FaceBottom, true
	}
}

// InnerFaces is the region bounded by the enclosure side of every wall.
func InnerFaces() Bounds {
	return Enclosure.Shrink(WallThickness / 2)
}

// Confine pulls a centre that crossed a wall's inner face back onto it. It
// reports whether p moved.
func Confine(p r2.Vec, b Bounds) (r2.Vec, bool) {
	q := r2.Vec{
		X: math.Min(math.Max(p.X, b.Left), b.Right),
		Y: math.Min(math.Max(p.Y, b.Bottom), b.Top),
	}
	return q, q != p
}

// Reflect negates the velocity component perpendicular to f, but only when
// the particle moves into the wall. It reports whether it reflected.
func Reflect(v r2.Vec, f Face) (r2.Vec, bool) {
	switch f {
	case FaceLeft:
		if v.X < 0 {
			v.X = -v.X
			return v, true
		}
	case FaceRight:
		if v.X > 0 {
			v.X = -v.X
			return v, true
		}
	case FaceTop:
		if v.Y > 0 {
			v.Y = -v.Y
			return v, true
		}
	case FaceBottom:
		if v.Y < 0 {
			v.Y = -v.Y
			return v, true
		}
	}
	return v, false
}

// Equilibrate returns the temperature after contact with a wall.
func Equilibrate(particle, wall float64) float64 {
	return (particle + wall) / 2
}

// WallContact describes what ResolveWall did to one particle.
type WallContact struct {
	Face      Face
	Hit       bool
	Reflected bool
	Exchanged bool
}

// ResolveWall applies the wall response to particle h. With thermal
// exchange enabled, a reflected particle takes the mean of its and the
// wall's temperature and gets a resampled speed along the reflected
// direction. A non-nil error reports a clamped thermal state; the particle
// is still updated.
func ResolveWall(a *Arena, h int, w Wall, s Settings, smp *Sampler) (WallContact, error) {
	face, hit := CollideWall(a.Pos[h], Radius, w)
	if !hit {
		return WallContact{}, nil
	}
	c := WallContact{Face: face, Hit: true}

	v, reflected := Reflect(a.Vel[h], face)
	if !reflected {
		return c, nil
	}
	c.Reflected = true
	a.Vel[h] = v

	if !s.ThermalExchange {
		return c, nil
	}

	c.Exchanged = true
	a.Temp[h] = Equilibrate(a.Temp[h], w.Temperature)
	nv, err := smp.Resample(v, a.Temp[h], a.Mass[h], s.Reducer)
	a.Vel[h] = nv
	return c, err
}
