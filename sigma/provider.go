// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package sigma implements electrode self-energy providers: the facade
// over precomputed or live solvers and the downfolding onto the device
package sigma

import (
	"math"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/hakimzenata/gobtd/zmat"
)

// Provider yields the electrode self-energy on its surface block.
// The primitive solver (recursive surface Green function or file
// reader) lives behind this interface.
type Provider interface {

	// SelfEnergy returns Sigma(E,k) as a dense matrix
	SelfEnergy(E complex128, k []float64) (*zmat.Matrix, error)

	// Len returns the dimension of the returned self-energy
	Len() int
}

// Scatterer is the optional capability of providers that compute the
// broadening matrix themselves
type Scatterer interface {
	ScatteringMatrix(E complex128, k []float64) (*zmat.Matrix, error)
}

// Electrode is a self-energy provider pinned to a device region: it
// knows its name and the device orbitals it couples to. PivotSelfEnergy
// and DownfoldSelfEnergy implement it.
type Electrode interface {
	Provider
	Label() string
	DeviceIndices() []int
}

// BlochExpander is the optional capability of providers that unfold
// Bloch-expanded electrodes
type BlochExpander interface {
	BlochSelfEnergy(E complex128, k []float64, bloch [3]int) (*zmat.Matrix, error)
}

// Se2Scat converts a self-energy to the broadening matrix i(S - Sh)
func Se2Scat(se *zmat.Matrix) (g *zmat.Matrix) {
	g = se.Clone()
	g.SubM(se.Dagger())
	g.Scale(1i)
	return
}

// FuncProvider adapts a closure to the Provider interface
type FuncProvider struct {
	N  int
	Fn func(E complex128, k []float64) (*zmat.Matrix, error)
}

// SelfEnergy calls the wrapped closure
func (o *FuncProvider) SelfEnergy(E complex128, k []float64) (*zmat.Matrix, error) {
	return o.Fn(E, k)
}

// Len returns the self-energy dimension
func (o *FuncProvider) Len() int { return o.N }

// Table is a precomputed self-energy store, the in-memory analogue of a
// self-energy file. Entries are keyed by (E,k) written at a fixed
// precision: 11 significant digits for E, 6 decimals for k.
type Table struct {
	n       int
	entries map[string]*zmat.Matrix
}

// NewTable returns an empty table for n by n self-energies
func NewTable(n int) *Table {
	return &Table{n: n, entries: make(map[string]*zmat.Matrix)}
}

func ekKey(E complex128, k []float64) string {
	kk := [3]float64{}
	copy(kk[:], k)
	return io.Sf("%.10e/%.10e|%.6f,%.6f,%.6f", real(E), imag(E), kk[0], kk[1], kk[2])
}

// Add stores the self-energy for one (E,k) point
func (o *Table) Add(E complex128, k []float64, se *zmat.Matrix) {
	if se.Rows != o.n || se.Cols != o.n {
		chk.Panic("sigma.Table.Add: self-energy must be %d x %d, got %d x %d", o.n, o.n, se.Rows, se.Cols)
	}
	o.entries[ekKey(E, k)] = se
}

// SelfEnergy looks up the stored self-energy
func (o *Table) SelfEnergy(E complex128, k []float64) (*zmat.Matrix, error) {
	se, ok := o.entries[ekKey(E, k)]
	if !ok {
		return nil, chk.Err("sigma.Table: no self-energy stored at E=%v k=%v", E, k)
	}
	return se, nil
}

// Len returns the self-energy dimension
func (o *Table) Len() int { return o.n }

// ekEqual compares (E,k) pairs within a fixed tolerance
func ekEqual(e1 complex128, k1 []float64, e2 complex128, k2 []float64) bool {
	const tol = 1e-12
	if math.Abs(real(e1)-real(e2)) > tol || math.Abs(imag(e1)-imag(e2)) > tol {
		return false
	}
	for i := 0; i < 3; i++ {
		var a, b float64
		if i < len(k1) {
			a = k1[i]
		}
		if i < len(k2) {
			b = k2[i]
		}
		if math.Abs(a-b) > tol {
			return false
		}
	}
	return true
}
