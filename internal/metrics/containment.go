package metrics

import (
	"github.com/san-kum/thermobox/internal/dynamo"
	"github.com/san-kum/thermobox/internal/physics"
)

// Containment is the fraction of observed particles whose centre lies
// inside the region. Particles escaping a bounce enclosure show up here.
type Containment struct {
	name    string
	region  physics.Bounds
	escaped int
	samples int
}

func NewContainment(region physics.Bounds) *Containment {
	return &Containment{
		name:   "containment",
		region: region,
	}
}

func (c *Containment) Name() string { return c.name }

func (c *Containment) Observe(f *dynamo.Frame) {
	for _, p := range f.Positions {
		c.samples++
		if p.X < c.region.Left || p.X > c.region.Right || p.Y < c.region.Bottom || p.Y > c.region.Top {
			c.escaped++
		}
	}
}

func (c *Containment) Value() float64 {
	if c.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(c.escaped)/float64(c.samples)
}

func (c *Containment) Reset() {
	c.escaped = 0
	c.samples = 0
}
