// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zmat

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func TestBlockMatrix01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("BlockMatrix01. set, get and zero tiles")

	bm := NewBlockMatrix([]int{2, 3, 2})
	chk.Ints(tst, "blocks", bm.Blocks(), []int{2, 3, 2})

	T := New(2, 3)
	T.Set(0, 0, 1+1i)
	T.Set(1, 2, -2)
	bm.Set(0, 1, T)

	if !bm.Has(0, 1) {
		tst.Errorf("tile (0,1) should be present\n")
		return
	}
	chk.Float64(tst, "stored tile", 1e-15, maxAbsDiff(bm.At(0, 1), T), 0)

	// absent tile comes back zero with the right shape
	Z := bm.At(2, 0)
	if Z.Rows != 2 || Z.Cols != 2 {
		tst.Errorf("zero tile shape is wrong: %d x %d\n", Z.Rows, Z.Cols)
		return
	}
	chk.Float64(tst, "zero tile", 1e-15, Z.NormF(), 0)
}

func TestBlockMatrix02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("BlockMatrix02. toarray, tobtd and diagonal")

	bm := NewBlockMatrix([]int{2, 2, 2})
	for i := 0; i < 3; i++ {
		D := New(2, 2)
		D.Set(0, 0, complex(float64(i+1), 0))
		D.Set(1, 1, complex(float64(i+1), 1))
		bm.Set(i, i, D)
	}
	F := New(2, 2) // far off-diagonal tile, dropped by ToBTD
	F.Set(0, 1, 5)
	bm.Set(0, 2, F)

	M := bm.ToArray()
	if M.Rows != 6 || M.Cols != 6 {
		tst.Errorf("dense shape is wrong: %d x %d\n", M.Rows, M.Cols)
		return
	}
	chk.Float64(tst, "dense (0,5)", 1e-15, real(M.Get(0, 5)), 5)

	T := bm.ToBTD()
	if T.Has(0, 2) {
		tst.Errorf("ToBTD retained tile (0,2)\n")
		return
	}
	chk.Float64(tst, "btd dense (0,5)", 1e-15, real(T.ToArray().Get(0, 5)), 0)

	d := bm.Diagonal()
	if len(d) != 6 {
		tst.Errorf("diagonal length is wrong: %d\n", len(d))
		return
	}
	chk.Float64(tst, "diag[2]", 1e-15, real(d[2]), 2)
	chk.Float64(tst, "diag[5] imag", 1e-15, imag(d[5]), 1)
}
