// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package green

import (
	"fmt"
	"math"
	"sort"

	"github.com/hakimzenata/gobtd/zmat"
)

// Info records how a State was produced
type Info struct {
	Method      string    // full, svd or propagate; eigenchannel keeps the source method
	Elec        string    // source electrode
	ElecTo      []string  // destination electrodes (eigenchannel only)
	E           complex128
	K           []float64
	Cutoff      float64
	CutoffSpace float64 // pre-propagation cutoff (propagate only)
}

// State holds scattering states or eigenchannels: the columns of U are
// the states and DOS carries their spectral weight (resp. transmission)
type State struct {
	DOS  []float64
	U    *zmat.Matrix
	Info Info
}

// Len returns the number of states
func (o *State) Len() int { return len(o.DOS) }

// SumDOS returns the summed weight; for eigenchannels this is the total
// transmission
func (o *State) SumDOS() (res float64) {
	for _, v := range o.DOS {
		res += v
	}
	return
}

// StateOptions steers the scattering-state calculation
type StateOptions struct {
	Method     string  // svd (default), full or propagate
	Cutoff     float64 // drop states with |DOS| below this value
	CutoffPost float64 // propagate only: cutoff after the final SVD
	Driver     string  // SVD driver; gesvd by default
	Scale      bool    // pre-scale tiny matrices before the SVD
	IterativeK int     // >0: use the truncated top-k decomposition instead
}

// diagEps regularizes the eigendecomposition of spectral matrices whose
// small states would otherwise lose precision
const diagEps = 0.1

// ScatteringState computes the scattering states of the electrode at
// (E,k): the eigenstates of the spectral function, weighted by DOS.
func (o *DeviceGreen) ScatteringState(elec string, E complex128, k []float64, opts StateOptions) (*State, error) {
	el, err := o.elec(elec)
	if err != nil {
		return nil, err
	}
	if err = o.prepare(E, k); err != nil {
		return nil, err
	}
	method := opts.Method
	if method == "" {
		method = MethodSVD
	}
	switch method {
	case MethodSVD:
		return o.scatteringStateSVD(el, opts)
	case MethodFull:
		return o.scatteringStateFull(el, opts)
	case MethodPropagate:
		return o.scatteringStatePropagate(el, opts)
	}
	return nil, fmt.Errorf("%w: scattering state method %q is not one of svd, full, propagate", ErrInvalidArgument, method)
}

// reduce keeps the N_elec largest DOS values, in descending order, and
// applies the cutoff. States with large negative DOS are retained on
// purpose: they flag numerical issues to the caller.
func (o *DeviceGreen) reduce(el int, DOS []float64, U *zmat.Matrix, cutoff float64) ([]float64, *zmat.Matrix) {
	N := o.data.gamma[el].Rows
	idx := make([]int, len(DOS))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return DOS[idx[a]] > DOS[idx[b]] })
	if len(idx) > N {
		idx = idx[:N]
	}
	if cutoff > 0 {
		kept := idx[:0]
		for _, i := range idx {
			if math.Abs(DOS[i]) >= cutoff {
				kept = append(kept, i)
			}
		}
		idx = kept
	}
	rDOS := make([]float64, len(idx))
	for a, i := range idx {
		rDOS[a] = DOS[i]
	}
	return rDOS, U.Take(nil, idx)
}

// svdStates runs the SVD of the state matrix and converts singular
// values to DOS
func svdStates(A *zmat.Matrix, opts StateOptions) (DOS []float64, U *zmat.Matrix, err error) {
	if opts.IterativeK > 0 {
		k := opts.IterativeK
		if k > A.Cols {
			k = A.Cols
		}
		U, s, err := zmat.SVDS(A, k)
		if err != nil {
			return nil, nil, err
		}
		return dosFromSingular(s), U, nil
	}
	driver := opts.Driver
	if driver == "" {
		driver = zmat.DriverGesvd
	}
	U, s, _, err := zmat.SVDScaled(A, driver, opts.Scale)
	if err != nil {
		return nil, nil, err
	}
	return dosFromSingular(s), U, nil
}

func dosFromSingular(s []float64) (DOS []float64) {
	DOS = make([]float64, len(s))
	for i, v := range s {
		DOS[i] = v * v / (2 * math.Pi)
	}
	return
}

// scatteringStateSVD combines the Green column with the Hermitian sqrt
// of the broadening; the singular values square to 2 pi DOS
func (o *DeviceGreen) scatteringStateSVD(el int, opts StateOptions) (*State, error) {
	G, err := o.greenColumn(o.elecsPvtDev[el])
	if err != nil {
		return nil, err
	}
	gamSqrt, err := zmat.SqrtmHerm(o.data.gamma[el])
	if err != nil {
		return nil, err
	}
	A := zmat.Mul(G, gamSqrt)

	DOS, U, err := svdStates(A, opts)
	if err != nil {
		return nil, err
	}
	DOS, U = o.reduce(el, DOS, U, opts.Cutoff)
	return &State{DOS: DOS, U: U, Info: o.stateInfo(MethodSVD, el, opts)}, nil
}

// scatteringStateFull diagonalizes the dense spectral function
func (o *DeviceGreen) scatteringStateFull(el int, opts StateOptions) (*State, error) {
	A, err := o.spectralColumn(el)
	if err != nil {
		return nil, err
	}
	A.AddDiag(diagEps)
	w, U, err := zmat.EighDestroy(A)
	if err != nil {
		return nil, err
	}
	DOS := make([]float64, len(w))
	for i, v := range w {
		DOS[i] = (v - diagEps) / (2 * math.Pi)
	}
	DOS, U = o.reduce(el, DOS, U, opts.Cutoff)
	return &State{DOS: DOS, U: U, Info: o.stateInfo(MethodFull, el, opts)}, nil
}

// scatteringStatePropagate diagonalizes the spectral function on the
// electrode blocks only, then propagates the states through the BTD
// recurrences before a final SVD
func (o *DeviceGreen) scatteringStatePropagate(el int, opts StateOptions) (*State, error) {
	blocks, Gd, err := o.greenDiagBlock(o.elecsPvtDev[el])
	if err != nil {
		return nil, err
	}
	d := o.data
	nb := len(o.btd)

	GG := zmat.Mul(Gd, d.gamma[el])
	A := zmat.MulNH(GG, Gd)
	A.AddDiag(diagEps)
	w, U, err := zmat.EighDestroy(A)
	if err != nil {
		return nil, err
	}
	DOS := make([]float64, len(w))
	for i, v := range w {
		DOS[i] = (v - diagEps) / (2 * math.Pi)
	}

	// the state count can only shrink from here on, so reduce early;
	// for wide systems few electrode states contribute
	DOS, U = o.reduce(el, DOS, U, opts.Cutoff)

	// back-scale so that U Uh reproduces the spectral magnitude
	for j, v := range zmat.SignSqrt(scaled2pi(DOS)) {
		U.ScaleCol(j, complex(v, 0))
	}

	// split the states over the seed blocks and propagate outward
	u := make([]*zmat.Matrix, nb)
	u[blocks[0]] = U.Slice(0, o.btd[blocks[0]], 0, U.Cols)
	if len(blocks) > 1 {
		u[blocks[1]] = U.Slice(o.btd[blocks[0]], U.Rows, 0, U.Cols)
	}
	for b := blocks[0]; b > 0; b-- {
		u[b-1] = zmat.Mul(d.tY[b], u[b])
		u[b-1].Scale(-1)
	}
	for b := blocks[len(blocks)-1]; b < nb-1; b++ {
		u[b+1] = zmat.Mul(d.tX[b], u[b])
		u[b+1].Scale(-1)
	}

	full := zmat.New(o.Len(), U.Cols)
	for b := 0; b < nb; b++ {
		full.SetSlice(o.cum[b], 0, u[b])
	}

	DOS, W, err := svdStates(full, opts)
	if err != nil {
		return nil, err
	}
	post := opts.CutoffPost
	if post == 0 {
		post = opts.Cutoff
	}
	DOS, W = o.reduce(el, DOS, W, post)

	info := o.stateInfo(MethodPropagate, el, opts)
	info.Cutoff = post
	info.CutoffSpace = opts.Cutoff
	return &State{DOS: DOS, U: W, Info: info}, nil
}

func scaled2pi(DOS []float64) (r []float64) {
	r = make([]float64, len(DOS))
	for i, v := range DOS {
		r[i] = v * 2 * math.Pi
	}
	return
}

func (o *DeviceGreen) stateInfo(method string, el int, opts StateOptions) Info {
	return Info{
		Method: method,
		Elec:   o.elecs[el].Label(),
		E:      o.data.E,
		K:      append([]float64{}, o.data.k...),
		Cutoff: opts.Cutoff,
	}
}

// Eigenchannel decomposes the scattering states entering the elecTo
// electrodes into transmission eigenchannels. The returned DOS holds
// the transmission eigenvalues in descending order; their sum is the
// total transmission into elecTo.
func (o *DeviceGreen) Eigenchannel(state *State, elecTo []string) (*State, error) {
	if state == nil || state.Len() == 0 {
		return nil, fmt.Errorf("%w: eigenchannel needs a non-empty scattering state", ErrInvalidArgument)
	}
	if err := o.prepareSE(state.Info.E, state.Info.K); err != nil {
		return nil, err
	}

	// scale the states back to the spectral magnitude; the sign of a
	// possibly negative DOS is retained on purpose
	A := state.U.Clone()
	for j, v := range zmat.SignSqrt(state.DOS) {
		A.ScaleCol(j, complex(v, 0))
	}

	n := state.Len()
	t := zmat.New(n, n)
	names := make([]string, 0, len(elecTo))
	for _, name := range elecTo {
		el, err := o.elec(name)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		u := A.Take(o.elecsPvtDev[el], nil)
		t.AddM(zmat.MulHN(u, zmat.Mul(o.data.gamma[el], u)))
	}

	tau, V, err := zmat.EighDestroy(t)
	if err != nil {
		return nil, err
	}

	// reverse to descending and scale to transmissions
	DOS := make([]float64, n)
	Vr := zmat.New(n, n)
	for j := 0; j < n; j++ {
		DOS[j] = tau[n-1-j] * 2 * math.Pi
		for i := 0; i < n; i++ {
			Vr.Set(i, j, V.Get(i, n-1-j))
		}
	}

	info := state.Info
	info.ElecTo = names
	return &State{DOS: DOS, U: zmat.Mul(A, Vr), Info: info}, nil
}
