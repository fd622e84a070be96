package physics

// Boltzmann constant in J/K.
const Boltzmann = 1.380649e-23

// Enclosure geometry. Wall boxes are centred on these lines.
const (
	WallLeft      = -570.0
	WallRight     = 570.0
	WallTop       = 350.0
	WallBottom    = -350.0
	WallThickness = 10.0

	// Radius is shared by every particle.
	Radius = 5.0
)

// Lower clamps for the thermal model.
const (
	MinTemperature = 1e-6
	MinMass        = 1e-30
)

// Bounds is an axis-aligned rectangle given by its four sides.
type Bounds struct {
	Left, Right, Top, Bottom float64
}

// Enclosure is the rectangle traced by the wall centre lines.
var Enclosure = Bounds{Left: WallLeft, Right: WallRight, Top: WallTop, Bottom: WallBottom}

func (b Bounds) Width() float64  { return b.Right - b.Left }
func (b Bounds) Height() float64 { return b.Top - b.Bottom }

// Shrink moves every side inward by d.
func (b Bounds) Shrink(d float64) Bounds {
	return Bounds{Left: b.Left + d, Right: b.Right - d, Top: b.Top - d, Bottom: b.Bottom + d}
}

// Interior is the region where a particle centre can sit without touching
// a wall.
func Interior() Bounds {
	return Enclosure.Shrink(WallThickness/2 + Radius)
}
