// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ham

import (
	"math/cmplx"
	"testing"

	"github.com/cpmech/gosl/chk"
)

func verbose() {
	chk.Verbose = true
}

// chainTB returns a 1-D chain of na single-orbital atoms with onsite e0,
// hopping t inside the cell and periodic coupling along the first axis
func chainTB(na int, e0, t float64) *TightBinding {
	g := NewGeometry(intsFilled(na, 1))
	tb := NewTightBinding(g, [3]int{3, 1, 1})
	for i := 0; i < na; i++ {
		tb.SetHerm(i, i, [3]int{}, complex(e0, 0), 1)
		if i+1 < na {
			tb.SetHerm(i, i+1, [3]int{}, complex(t, 0), 0)
		}
	}
	// couple last atom to the first atom of the next cell
	tb.SetHerm(na-1, 0, [3]int{1, 0, 0}, complex(t, 0), 0)
	return tb
}

func intsFilled(n, v int) (r []int) {
	r = make([]int, n)
	for i := range r {
		r[i] = v
	}
	return
}

func TestGeometry01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Geometry01. atom/orbital maps")

	g := NewGeometry([]int{2, 1, 3})
	chk.Int(tst, "Na", g.Na(), 3)
	chk.Int(tst, "No", g.No(), 6)
	chk.Ints(tst, "A2O", g.A2O([]int{2, 0}), []int{3, 4, 5, 0, 1})
	chk.Ints(tst, "O2A", g.O2A([]int{0, 1, 3}, false), []int{0, 0, 2})
	chk.Ints(tst, "O2A unique", g.O2A([]int{5, 3, 0}, true), []int{0, 2})
	chk.Int(tst, "Sub No", g.Sub([]int{2, 1}).No(), 4)
}

func TestTightBinding01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("TightBinding01. Hermiticity of H(k) and S(k)")

	tb := chainTB(4, -0.5, -1)
	k := []float64{0.2, 0, 0}
	H := tb.Hk(k).ToDense()
	S := tb.Sk(k).ToDense()

	var dev float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if d := cmplx.Abs(H.Get(i, j) - cmplx.Conj(H.Get(j, i))); d > dev {
				dev = d
			}
			if d := cmplx.Abs(S.Get(i, j) - cmplx.Conj(S.Get(j, i))); d > dev {
				dev = d
			}
		}
	}
	chk.Float64(tst, "Hermiticity deviation", 1e-13, dev, 0)
}

func TestTightBinding02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("TightBinding02. SetNsc removes periodic couplings")

	tb := chainTB(4, 0, -1)
	tb.SetNsc(0, 1)
	chk.Ints(tst, "nsc", []int{tb.Nsc()[0]}, []int{1})

	// without the supercell coupling H(k) is k-independent
	H0 := tb.Hk([]float64{0, 0, 0}).ToDense()
	H1 := tb.Hk([]float64{0.3, 0, 0}).ToDense()
	H0.SubM(H1)
	chk.Float64(tst, "k-independence", 1e-13, H0.NormF(), 0)
}

func TestTightBinding03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("TightBinding03. Shift moves onsite by mu")

	tb := chainTB(3, 0, -1)
	tb.Shift(0.7)
	H := tb.Hk([]float64{0, 0, 0}).ToDense()
	chk.Float64(tst, "onsite", 1e-14, real(H.Get(1, 1)), 0.7)
	chk.Float64(tst, "hopping unchanged", 1e-14, real(H.Get(0, 1)), -1)
}

func TestTightBinding04(tst *testing.T) {

	//verbose()
	chk.PrintTitle("TightBinding04. Sub restriction and re-indexing")

	tb := chainTB(4, -0.5, -1)
	sub := tb.Sub([]int{1, 2})
	chk.Int(tst, "sub No", sub.Geometry().No(), 2)
	H := sub.Hk([]float64{0, 0, 0}).ToDense()
	chk.Float64(tst, "sub onsite", 1e-14, real(H.Get(0, 0)), -0.5)
	chk.Float64(tst, "sub hopping", 1e-14, real(H.Get(0, 1)), -1)
}

func TestCSR01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("CSR01. permutation of rows and columns")

	tb := chainTB(4, 1, -1)
	tb.SetNsc(0, 1)
	A := tb.Hk([]float64{0, 0, 0})

	p := []int{2, 0, 3, 1}
	B := A.Permute(p)
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			chk.Float64(tst, "permuted entry", 1e-15, cmplx.Abs(B.Get(i, j)-A.Get(p[i], p[j])), 0)
		}
	}
}
