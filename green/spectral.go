// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package green

import (
	"fmt"

	"github.com/hakimzenata/gobtd/zmat"
)

// Spectral computes the electrode spectral function
//
//	A_e = G Gamma_e Gh
//
// at (E,k). The array format takes the column and propagate methods,
// which are numerically identical and differ in cost only. The btd and
// bm formats take the column method only: btd with propagate returns
// ErrNotImplemented, bm with propagate ErrInvalidArgument. With herm,
// the btd/bm column and the array propagate calculations compute half of
// the tiles and mirror the rest by conjugate transposition; the array
// column calculation ignores herm.
func (o *DeviceGreen) Spectral(elec string, E complex128, k []float64, format, method string, herm bool) (interface{}, error) {
	el, err := o.elec(elec)
	if err != nil {
		return nil, err
	}
	if err = o.prepare(E, k); err != nil {
		return nil, err
	}
	switch format {
	case FormatArray, "dense":
		switch method {
		case MethodColumn:
			return o.spectralColumn(el)
		case MethodPropagate:
			return o.spectralPropagate(el, herm)
		}
	case FormatBTD:
		switch method {
		case MethodColumn:
			return o.spectralColumnBlocks(el, herm, true)
		case MethodPropagate:
			return nil, fmt.Errorf("%w: spectral with format=btd method=propagate", ErrNotImplemented)
		}
	case FormatBM:
		if method == MethodColumn {
			return o.spectralColumnBlocks(el, herm, false)
		}
	}
	return nil, fmt.Errorf("%w: spectral format+method combination %q+%q", ErrInvalidArgument, format, method)
}

// SpectralArray computes the dense spectral function of the electrode
func (o *DeviceGreen) SpectralArray(elec string, E complex128, k []float64, method string, herm bool) (*zmat.Matrix, error) {
	A, err := o.Spectral(elec, E, k, FormatArray, method, herm)
	if err != nil {
		return nil, err
	}
	return A.(*zmat.Matrix), nil
}

// spectralColumn computes A = G[:,elec] Gamma G[:,elec]h densely
func (o *DeviceGreen) spectralColumn(el int) (*zmat.Matrix, error) {
	G, err := o.greenColumn(o.elecsPvtDev[el])
	if err != nil {
		return nil, err
	}
	GG := zmat.Mul(G, o.data.gamma[el])
	return zmat.MulNH(GG, G), nil
}

// spectralColumnBlocks computes the spectral tiles from the Green
// column; with btdOnly, only the (b, b+-1) neighbors are kept
func (o *DeviceGreen) spectralColumnBlocks(el int, herm, btdOnly bool) (*zmat.BlockMatrix, error) {
	G, err := o.greenColumn(o.elecsPvtDev[el])
	if err != nil {
		return nil, err
	}
	nb := len(o.btd)
	gam := o.data.gamma[el]
	S := zmat.NewBlockMatrix(o.btd)

	rows := func(b int) *zmat.Matrix {
		return G.Slice(o.cum[b], o.cum[b+1], 0, G.Cols)
	}

	for jb := 0; jb < nb; jb++ {
		// Gj = Gamma G[jb]h; tile (ib,jb) = G[ib] Gj
		Gj := zmat.MulNH(gam, rows(jb))
		ilo, ihi := 0, nb-1
		if btdOnly {
			ilo, ihi = jb-1, jb+1
			if ilo < 0 {
				ilo = 0
			}
			if ihi > nb-1 {
				ihi = nb - 1
			}
		}
		if herm {
			// compute the upper tiles of the column and mirror the
			// transposes into the lower row
			for ib := ilo; ib <= jb; ib++ {
				T := zmat.Mul(rows(ib), Gj)
				S.Set(ib, jb, T)
				if ib < jb {
					S.Set(jb, ib, T.Dagger())
				}
			}
			continue
		}
		for ib := ilo; ib <= ihi; ib++ {
			S.Set(ib, jb, zmat.Mul(rows(ib), Gj))
		}
	}
	return S, nil
}

// spectralPropagate computes the dense spectral function by propagating
// the seed tiles of the electrode blocks through the BTD identities
//
//	S[i,j-1] = -S[i,j] tY[j]h      S[i-1,j] = -tY[i] S[i,j]
//	S[i,j+1] = -S[i,j] tX[j]h      S[i+1,j] = -tX[i] S[i,j]
//
// with explicit loops over a tile bitmap rather than recursion, bounding
// the work at O(B^2) tile visits.
func (o *DeviceGreen) spectralPropagate(el int, herm bool) (*zmat.Matrix, error) {
	blocks, Gd, err := o.greenDiagBlock(o.elecsPvtDev[el])
	if err != nil {
		return nil, err
	}
	nb := len(o.btd)
	d := o.data

	// seed: spectral function on the electrode block rows/columns
	GG := zmat.Mul(Gd, d.gamma[el])
	A := zmat.MulNH(GG, Gd)

	S := zmat.NewBlockMatrix(o.btd)
	r0 := 0
	for _, ib := range blocks {
		c0 := 0
		for _, jb := range blocks {
			S.Set(ib, jb, A.Slice(r0, r0+o.btd[ib], c0, c0+o.btd[jb]))
			c0 += o.btd[jb]
		}
		r0 += o.btd[ib]
	}

	bmin := blocks[0]
	bmax := blocks[len(blocks)-1]

	// fill the seed rows across all columns
	for _, i := range blocks {
		for j := bmin - 1; j >= 0; j-- {
			T := zmat.MulNH(S.At(i, j+1), d.tY[j+1])
			T.Scale(-1)
			S.Set(i, j, T)
		}
		for j := bmax + 1; j < nb; j++ {
			T := zmat.MulNH(S.At(i, j-1), d.tX[j-1])
			T.Scale(-1)
			S.Set(i, j, T)
		}
	}

	// then propagate every column up and down; with herm the mirrored
	// tile is used whenever its transpose is already known
	set := func(i, j int, calc func() *zmat.Matrix) {
		if S.Has(i, j) {
			return
		}
		if herm && S.Has(j, i) {
			S.Set(i, j, S.At(j, i).Dagger())
			return
		}
		S.Set(i, j, calc())
	}
	for j := 0; j < nb; j++ {
		for i := bmin; i > 0; i-- {
			src := S.At(i, j)
			set(i-1, j, func() *zmat.Matrix {
				T := zmat.Mul(d.tY[i], src)
				T.Scale(-1)
				return T
			})
		}
		for i := bmax; i < nb-1; i++ {
			src := S.At(i, j)
			set(i+1, j, func() *zmat.Matrix {
				T := zmat.Mul(d.tX[i], src)
				T.Scale(-1)
				return T
			})
		}
	}
	return S.ToArray(), nil
}
