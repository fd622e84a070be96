package physics

import (
	"fmt"
	"strings"
)

// AtomicMassUnit in kilograms.
const AtomicMassUnit = 1.66053906660e-27

type Species uint8

const (
	Helium Species = iota
	Neon
	Argon
	Krypton
	Xenon
)

var speciesTable = [...]struct {
	name string
	amu  float64
}{
	Helium:  {"helium", 4.002602},
	Neon:    {"neon", 20.1797},
	Argon:   {"argon", 39.948},
	Krypton: {"krypton", 83.798},
	Xenon:   {"xenon", 131.293},
}

// Mass returns the fixed particle mass of the species.
func (s Species) Mass() float64 {
	if int(s) >= len(speciesTable) {
		return 0
	}
	return speciesTable[s].amu * AtomicMassUnit
}

func (s Species) String() string {
	if int(s) >= len(speciesTable) {
		return fmt.Sprintf("Species(%d)", uint8(s))
	}
	return speciesTable[s].name
}

func (s Species) Valid() bool { return int(s) < len(speciesTable) }

func ParseSpecies(name string) (Species, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, e := range speciesTable {
		if e.name == name {
			return Species(i), nil
		}
	}
	return 0, fmt.Errorf("unknown species: %s", name)
}

func AllSpecies() []Species {
	all := make([]Species, len(speciesTable))
	for i := range all {
		all[i] = Species(i)
	}
	return all
}

// AssignRule decides which species each particle of a batch receives.
type AssignRule uint8

const (
	// AssignSingle gives every particle the setup's species.
	AssignSingle AssignRule = iota
	// AssignRoundRobin cycles through the mixture in order.
	AssignRoundRobin
	// AssignWeighted draws from the mixture proportionally to its weights.
	AssignWeighted
)

var assignNames = map[AssignRule]string{
	AssignSingle:     "single",
	AssignRoundRobin: "round_robin",
	AssignWeighted:   "weighted",
}

func (r AssignRule) String() string {
	if n, ok := assignNames[r]; ok {
		return n
	}
	return fmt.Sprintf("AssignRule(%d)", uint8(r))
}

func ParseAssignRule(name string) (AssignRule, error) {
	for r, n := range assignNames {
		if n == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("unknown assignment rule: %s", name)
}

type MixtureEntry struct {
	Species Species
	Weight  float64
}
