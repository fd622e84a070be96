package physics

import (
	"cmp"
	"fmt"
	"slices"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pair is an unordered pair of particle handles with A < B.
type Pair struct {
	A, B int
}

func makePair(i, j int) Pair {
	if i > j {
		i, j = j, i
	}
	return Pair{A: i, B: j}
}

// BroadPhase proposes pairs whose circles may overlap. Implementations
// append to dst[:0] and keep scratch storage between calls, so a value
// must not be shared between chambers.
type BroadPhase interface {
	Name() string
	Candidates(a *Arena, radius float64, dst []Pair) []Pair
}

func overlapping(p, q r2.Vec, radius float64) bool {
	reach := 2 * radius
	return r2.Norm2(r2.Sub(p, q)) <= reach*reach
}

func sortByX(a *Arena, order []int) []int {
	order = order[:0]
	for i := range a.Pos {
		order = append(order, i)
	}
	slices.SortFunc(order, func(i, j int) int {
		return cmp.Compare(a.Pos[i].X, a.Pos[j].X)
	})
	return order
}

// AdjacentSweep sorts by x and tests only neighbours in sort order. Three
// or more particles clustered within a radius can miss pairs.
type AdjacentSweep struct {
	order []int
}

func NewAdjacentSweep() *AdjacentSweep { return &AdjacentSweep{} }

func (s *AdjacentSweep) Name() string { return "adjacent" }

func (s *AdjacentSweep) Candidates(a *Arena, radius float64, dst []Pair) []Pair {
	dst = dst[:0]
	s.order = sortByX(a, s.order)
	for k := 0; k+1 < len(s.order); k++ {
		i, j := s.order[k], s.order[k+1]
		if a.Pos[j].X-radius > a.Pos[i].X+radius {
			continue
		}
		if overlapping(a.Pos[i], a.Pos[j], radius) {
			dst = append(dst, makePair(i, j))
		}
	}
	return dst
}

// SweepAndPrune sorts by x and keeps a window of every earlier particle
// whose x-interval still overlaps the current one, so no overlapping pair
// is missed.
type SweepAndPrune struct {
	order []int
}

func NewSweepAndPrune() *SweepAndPrune { return &SweepAndPrune{} }

func (s *SweepAndPrune) Name() string { return "sweep" }

func (s *SweepAndPrune) Candidates(a *Arena, radius float64, dst []Pair) []Pair {
	dst = dst[:0]
	s.order = sortByX(a, s.order)
	lo := 0
	for k, j := range s.order {
		xj := a.Pos[j].X
		for lo < k && a.Pos[s.order[lo]].X+radius < xj-radius {
			lo++
		}
		for _, i := range s.order[lo:k] {
			if overlapping(a.Pos[i], a.Pos[j], radius) {
				dst = append(dst, makePair(i, j))
			}
		}
	}
	return dst
}

// BruteForce tests every pair. It exists as a reference for small sets.
type BruteForce struct{}

func (BruteForce) Name() string { return "brute" }

func (BruteForce) Candidates(a *Arena, radius float64, dst []Pair) []Pair {
	dst = dst[:0]
	for i := range a.Pos {
		for j := i + 1; j < len(a.Pos); j++ {
			if overlapping(a.Pos[i], a.Pos[j], radius) {
				dst = append(dst, Pair{A: i, B: j})
			}
		}
	}
	return dst
}

// NewBroadPhase builds a strategy by name.
func NewBroadPhase(name string) (BroadPhase, error) {
	switch name {
	case "adjacent":
		return NewAdjacentSweep(), nil
	case "sweep", "":
		return NewSweepAndPrune(), nil
	case "grid":
		return NewGrid(Enclosure, 2*Radius), nil
	case "brute":
		return BruteForce{}, nil
	default:
		return nil, fmt.Errorf("unknown broad phase: %s", name)
	}
}
