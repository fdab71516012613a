// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sigma

import (
	"math/cmplx"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"

	"github.com/hakimzenata/gobtd/ham"
	"github.com/hakimzenata/gobtd/pivot"
	"github.com/hakimzenata/gobtd/zmat"
)

func verbose() {
	chk.Verbose = true
}

func maxAbsDiff(a, b *zmat.Matrix) (res float64) {
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			if d := cmplx.Abs(a.Get(i, j) - b.Get(i, j)); d > res {
				res = d
			}
		}
	}
	return
}

// downfoldSetup builds a finite 6-orbital chain with a 3-block downfold
// region of block size 2 and a 2-orbital electrode surface
func downfoldSetup(se0 *zmat.Matrix) (*DownfoldSelfEnergy, ham.Hamiltonian, error) {
	g := ham.NewGeometry([]int{1, 1, 1, 1, 1, 1})
	tb := ham.NewTightBinding(g, [3]int{1, 1, 1})
	for i := 0; i < 6; i++ {
		tb.SetHerm(i, i, [3]int{}, complex(0.2*float64(i), 0), 1)
		if i+1 < 6 {
			tb.SetHerm(i, i+1, [3]int{}, -1, complex(0.1, 0))
		}
	}

	elec := &pivot.Electrode{
		Name: "Left", Pvt: []int{0, 1}, PvtDev: []int{4, 5},
		PvtDown: []int{0, 1, 2, 3, 4, 5}, Btd: []int{2, 2, 2},
		AElec: []int{0, 1}, Eta: 1e-4, Bloch: [3]int{1, 1, 1},
		Bulk: false, SemiInf: "-a",
	}
	pv, err := pivot.New([]int{0, 1, 2, 3, 4, 5}, []int{2, 2, 2}, []*pivot.Electrode{elec})
	if err != nil {
		return nil, nil, err
	}

	// bulk electrode Hamiltonian on the 2-orbital surface block
	ge := ham.NewGeometry([]int{1, 1})
	he := ham.NewTightBinding(ge, [3]int{1, 1, 1})
	he.SetHerm(0, 0, [3]int{}, 0, 1)
	he.SetHerm(1, 1, [3]int{}, 0, 1)
	he.SetHerm(0, 1, [3]int{}, -1, 0)

	prov := &FuncProvider{N: 2, Fn: func(E complex128, k []float64) (*zmat.Matrix, error) {
		return se0.Clone(), nil
	}}
	df, err := NewDownfoldSelfEnergy("Left", prov, pv, tb, he)
	return df, tb, err
}

func TestSe2Scat01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Se2Scat01. broadening is Hermitian")

	se := zmat.New(3, 3)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			se.Set(i, j, complex(float64(i+j), float64(i)-0.3*float64(j)))
		}
	}
	G := Se2Scat(se)
	chk.Float64(tst, "Gamma Hermiticity", 1e-10, maxAbsDiff(G, G.Dagger()), 0)
}

func TestTable01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Table01. precomputed self-energies are keyed by (E,k)")

	tab := NewTable(2)
	se := zmat.New(2, 2)
	se.Set(0, 0, 1-2i)
	E := complex(0.25, 1e-4)
	k := []float64{0, 0.5, 0}
	tab.Add(E, k, se)

	got, err := tab.SelfEnergy(E, k)
	if err != nil {
		tst.Errorf("SelfEnergy failed: %v\n", err)
		return
	}
	chk.Float64(tst, "stored entry", 1e-15, maxAbsDiff(got, se), 0)

	if _, err = tab.SelfEnergy(complex(0.3, 1e-4), k); err == nil {
		tst.Errorf("expected an error for a missing (E,k) point\n")
		return
	}
}

func TestDownfold01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Downfold01. Schur reduction equals the dense Schur complement")

	se0 := zmat.New(2, 2)
	se0.Set(0, 0, 0.05-0.02i)
	se0.Set(0, 1, -0.01+0.005i)
	se0.Set(1, 0, -0.01+0.004i)
	se0.Set(1, 1, 0.07-0.03i)

	df, tb, err := downfoldSetup(se0)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}

	E := complex(0.5, 0.01)
	k := []float64{0, 0, 0}
	res, err := df.SelfEnergy(E, k)
	if err != nil {
		tst.Errorf("SelfEnergy failed: %v\n", err)
		return
	}

	// dense reference: M = E S - H - Se0 at the surface block, then the
	// Schur complement onto the last block
	M := tb.Sk(k).ToDense()
	M.Scale(E)
	M.SubM(tb.Hk(k).ToDense())
	M.Scatter([]int{0, 1}, []int{0, 1}, se0, -1)

	upper := []int{0, 1, 2, 3}
	last := []int{4, 5}
	Mi, err := zmat.Inv(M.Take(upper, upper))
	if err != nil {
		tst.Errorf("Inv failed: %v\n", err)
		return
	}
	ref := zmat.Mul(zmat.Mul(M.Take(last, upper), Mi), M.Take(upper, last))

	io.Pforan("max|downfold - schur| = %v\n", maxAbsDiff(res, ref))
	chk.Float64(tst, "downfold vs schur", 1e-10, maxAbsDiff(res, ref), 0)
}

func TestDownfold02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Downfold02. preparation is memoized per (E,k)")

	calls := 0
	se0 := zmat.New(2, 2)
	se0.Set(0, 0, 0.1-0.01i)
	se0.Set(1, 1, 0.1-0.01i)

	df, _, err := downfoldSetup(se0)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}
	df.prov = &FuncProvider{N: 2, Fn: func(E complex128, k []float64) (*zmat.Matrix, error) {
		calls++
		return se0.Clone(), nil
	}}

	E := complex(0.2, 0.001)
	k := []float64{0, 0, 0}
	a, err := df.SelfEnergy(E, k)
	if err != nil {
		tst.Errorf("SelfEnergy failed: %v\n", err)
		return
	}
	b, err := df.SelfEnergy(E, k)
	if err != nil {
		tst.Errorf("SelfEnergy failed: %v\n", err)
		return
	}
	chk.Int(tst, "provider calls", calls, 2)
	chk.Float64(tst, "idempotent result", 1e-14, maxAbsDiff(a, b), 0)
}

func TestDownfold03(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Downfold03. scattering matrix of the downfolded Sigma is Hermitian")

	se0 := zmat.New(2, 2)
	se0.Set(0, 0, 0.02-0.3i)
	se0.Set(1, 1, 0.01-0.2i)
	se0.Set(0, 1, 0.005-0.001i)
	se0.Set(1, 0, 0.005-0.001i)

	df, _, err := downfoldSetup(se0)
	if err != nil {
		tst.Errorf("setup failed: %v\n", err)
		return
	}

	G, err := df.ScatteringMatrix(complex(0.3, 1e-4), []float64{0, 0, 0})
	if err != nil {
		tst.Errorf("ScatteringMatrix failed: %v\n", err)
		return
	}
	chk.Float64(tst, "Gamma Hermiticity", 1e-10, maxAbsDiff(G, G.Dagger()), 0)
}
