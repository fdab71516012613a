// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ham

import (
	"math"
	"math/cmplx"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"
)

// Hamiltonian provides H(k) and S(k) over an orbital basis.
// Both matrices are Hermitian for real k.
type Hamiltonian interface {

	// Hk returns the Bloch Hamiltonian at k (fractional coordinates)
	Hk(k []float64) *CSR

	// Sk returns the Bloch overlap at k
	Sk(k []float64) *CSR

	// Sub returns the Hamiltonian restricted to the given atoms,
	// with orbitals re-indexed to the sub-geometry
	Sub(atoms []int) Hamiltonian

	// SetNsc limits the supercell couplings along one axis; nsc=1
	// removes all couplings leaving the home cell along that axis
	SetNsc(axis, nsc int)

	// Shift aligns the potential: H += mu S
	Shift(mu float64)

	// Geometry returns the atom/orbital maps
	Geometry() *Geometry

	// Nsc returns the neighbor-cell counts
	Nsc() [3]int
}

// coupling is one (i,j) matrix element to the cell at offset off
type coupling struct {
	i, j int
	off  [3]int
	h, s complex128
}

// TightBinding is a supercell tight-binding Hamiltonian with overlap
type TightBinding struct {
	geom    *Geometry
	nsc     [3]int
	entries []coupling
}

// NewTightBinding returns an empty Hamiltonian over the geometry
func NewTightBinding(geom *Geometry, nsc [3]int) *TightBinding {
	for ax, n := range nsc {
		if n < 1 || n%2 == 0 {
			chk.Panic("ham.NewTightBinding: nsc[%d] must be odd and positive, got %d", ax, n)
		}
	}
	return &TightBinding{geom: geom, nsc: nsc}
}

// Set adds the matrix element (i,j) coupling to the cell at offset off.
// Hermiticity is the caller's contract: the (j,i,-off) partner must be
// set as well.
func (o *TightBinding) Set(i, j int, off [3]int, h, s complex128) {
	no := o.geom.No()
	if i < 0 || i >= no || j < 0 || j >= no {
		chk.Panic("ham.TightBinding.Set: orbital pair (%d,%d) out of range [0,%d)", i, j, no)
	}
	o.entries = append(o.entries, coupling{i: i, j: j, off: off, h: h, s: s})
}

// SetHerm adds (i,j,off) and its Hermitian partner in one call.
// For onsite terms (i==j with zero offset) only one element is added.
func (o *TightBinding) SetHerm(i, j int, off [3]int, h, s complex128) {
	o.Set(i, j, off, h, s)
	if i == j && off == [3]int{} {
		return
	}
	o.Set(j, i, [3]int{-off[0], -off[1], -off[2]}, cmplx.Conj(h), cmplx.Conj(s))
}

// assemble builds the Bloch sum at k for either H or S
func (o *TightBinding) assemble(k []float64, overlap bool) *CSR {
	no := o.geom.No()
	acc := make(map[[2]int]complex128)
	for _, e := range o.entries {
		v := e.h
		if overlap {
			v = e.s
		}
		if v == 0 {
			continue
		}
		phase := 2 * math.Pi * (k[0]*float64(e.off[0]) + k[1]*float64(e.off[1]) + k[2]*float64(e.off[2]))
		acc[[2]int{e.i, e.j}] += v * cmplx.Exp(complex(0, phase))
	}
	t := la.NewTripletC(no, no, len(acc)+1)
	for key, v := range acc {
		t.Put(key[0], key[1], v)
	}
	return NewCSR(no, no, t)
}

// Hk returns the Bloch Hamiltonian at k
func (o *TightBinding) Hk(k []float64) *CSR { return o.assemble(k, false) }

// Sk returns the Bloch overlap at k
func (o *TightBinding) Sk(k []float64) *CSR { return o.assemble(k, true) }

// Sub returns the Hamiltonian restricted to atoms, re-indexed
func (o *TightBinding) Sub(atoms []int) Hamiltonian {
	orbs := o.geom.A2O(atoms)
	remap := make(map[int]int, len(orbs))
	for newi, old := range orbs {
		remap[old] = newi
	}
	s := NewTightBinding(o.geom.Sub(atoms), o.nsc)
	for _, e := range o.entries {
		ni, iok := remap[e.i]
		nj, jok := remap[e.j]
		if iok && jok {
			s.entries = append(s.entries, coupling{i: ni, j: nj, off: e.off, h: e.h, s: e.s})
		}
	}
	return s
}

// SetNsc limits couplings along one axis; only nsc=1 removes entries
func (o *TightBinding) SetNsc(axis, nsc int) {
	if axis < 0 || axis > 2 {
		chk.Panic("ham.TightBinding.SetNsc: axis must be 0, 1 or 2, got %d", axis)
	}
	o.nsc[axis] = nsc
	if nsc != 1 {
		return
	}
	kept := o.entries[:0]
	for _, e := range o.entries {
		if e.off[axis] == 0 {
			kept = append(kept, e)
		}
	}
	o.entries = kept
}

// Shift applies H += mu S
func (o *TightBinding) Shift(mu float64) {
	for idx := range o.entries {
		o.entries[idx].h += complex(mu, 0) * o.entries[idx].s
	}
}

// Geometry returns the atom/orbital maps
func (o *TightBinding) Geometry() *Geometry { return o.geom }

// Nsc returns the neighbor-cell counts
func (o *TightBinding) Nsc() [3]int { return o.nsc }
