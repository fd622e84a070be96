package physics

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Grid is a uniform broad phase over a fixed region. Particles are bucketed
// by integer cell coordinates and each particle tests its 3x3 cell
// neighbourhood. Cell size must be at least the collision distance (two
// radii) so the neighbourhood covers every possible contact; Candidates
// grows the cells when called with a larger radius.
//
// Positions outside the region are clamped into the edge cells.
type Grid struct {
	region   Bounds
	cellSize float64
	inv      float64
	cols     int
	rows     int
	cells    [][]int
}

func NewGrid(region Bounds, cellSize float64) *Grid {
	g := &Grid{region: region}
	g.resize(cellSize)
	return g
}

func (g *Grid) resize(cellSize float64) {
	g.cellSize = cellSize
	g.inv = 1 / cellSize
	g.cols = max(1, int(math.Ceil(g.region.Width()/cellSize)))
	g.rows = max(1, int(math.Ceil(g.region.Height()/cellSize)))
	g.cells = make([][]int, g.cols*g.rows)
}

func (g *Grid) Name() string { return "grid" }

// Clear empties every cell without releasing memory.
func (g *Grid) Clear() {
	for i := range g.cells {
		g.cells[i] = g.cells[i][:0]
	}
}

func (g *Grid) Insert(p r2.Vec, h int) {
	col, row := g.cell(p)
	idx := row*g.cols + col
	g.cells[idx] = append(g.cells[idx], h)
}

func (g *Grid) cell(p r2.Vec) (col, row int) {
	col = int((p.X - g.region.Left) * g.inv)
	row = int((p.Y - g.region.Bottom) * g.inv)
	// NaN converts to an arbitrary int; the clamps below keep it in range
	col = min(max(col, 0), g.cols-1)
	row = min(max(row, 0), g.rows-1)
	return col, row
}

func (g *Grid) Candidates(a *Arena, radius float64, dst []Pair) []Pair {
	dst = dst[:0]
	if g.cellSize < 2*radius {
		g.resize(2 * radius)
	}

	g.Clear()
	for i, p := range a.Pos {
		g.Insert(p, i)
	}

	for i, p := range a.Pos {
		col, row := g.cell(p)
		for r := row - 1; r <= row+1; r++ {
			if r < 0 || r >= g.rows {
				continue
			}
			for c := col - 1; c <= col+1; c++ {
				if c < 0 || c >= g.cols {
					continue
				}
				for _, j := range g.cells[r*g.cols+c] {
					if j <= i {
						continue
					}
					if overlapping(p, a.Pos[j], radius) {
						dst = append(dst, Pair{A: i, B: j})
					}
				}
			}
		}
	}
	return dst
}
