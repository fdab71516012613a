// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ham implements Hamiltonian and overlap providers over a
// sparse orbital basis, including the atom/orbital geometry maps
package ham

import (
	"sort"

	"github.com/cpmech/gosl/chk"
)

// Geometry maps atoms to orbitals. Atom a carries orbitals
// [firstOrb[a], firstOrb[a+1])
type Geometry struct {
	orbsPerAtom []int // number of orbitals per atom
	firstOrb    []int // cumulated orbital offsets; len = Na+1
}

// NewGeometry returns a geometry given the orbital count of each atom
func NewGeometry(orbsPerAtom []int) (o *Geometry) {
	o = &Geometry{
		orbsPerAtom: append([]int{}, orbsPerAtom...),
		firstOrb:    make([]int, len(orbsPerAtom)+1),
	}
	for a, n := range orbsPerAtom {
		if n < 1 {
			chk.Panic("ham.NewGeometry: atom %d has %d orbitals", a, n)
		}
		o.firstOrb[a+1] = o.firstOrb[a] + n
	}
	return
}

// Na returns the number of atoms
func (o *Geometry) Na() int { return len(o.orbsPerAtom) }

// No returns the number of orbitals
func (o *Geometry) No() int { return o.firstOrb[len(o.orbsPerAtom)] }

// A2O returns all orbital indices of the given atoms, in order
func (o *Geometry) A2O(atoms []int) (orbs []int) {
	for _, a := range atoms {
		if a < 0 || a >= o.Na() {
			chk.Panic("ham.Geometry.A2O: atom %d out of range [0,%d)", a, o.Na())
		}
		for i := o.firstOrb[a]; i < o.firstOrb[a+1]; i++ {
			orbs = append(orbs, i)
		}
	}
	return
}

// O2A returns the atom of each orbital index. With unique, the result is
// the sorted set of atoms touched by the orbitals.
func (o *Geometry) O2A(orbs []int, unique bool) (atoms []int) {
	for _, i := range orbs {
		if i < 0 || i >= o.No() {
			chk.Panic("ham.Geometry.O2A: orbital %d out of range [0,%d)", i, o.No())
		}
		a := sort.SearchInts(o.firstOrb, i+1) - 1
		atoms = append(atoms, a)
	}
	if unique {
		seen := make(map[int]bool)
		uq := atoms[:0]
		for _, a := range atoms {
			if !seen[a] {
				seen[a] = true
				uq = append(uq, a)
			}
		}
		atoms = uq
		sort.Ints(atoms)
	}
	return
}

// Sub returns the geometry restricted to the given atoms (in order)
func (o *Geometry) Sub(atoms []int) *Geometry {
	opa := make([]int, len(atoms))
	for i, a := range atoms {
		if a < 0 || a >= o.Na() {
			chk.Panic("ham.Geometry.Sub: atom %d out of range [0,%d)", a, o.Na())
		}
		opa[i] = o.orbsPerAtom[a]
	}
	return NewGeometry(opa)
}
