// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package green implements the block-tri-diagonal device Green function
// engine: selected Green-function blocks, electrode spectral functions,
// scattering states and transmission eigenchannels
package green

import (
	"errors"
	"fmt"
	"math"

	"github.com/hakimzenata/gobtd/ham"
	"github.com/hakimzenata/gobtd/pivot"
	"github.com/hakimzenata/gobtd/sigma"
	"github.com/hakimzenata/gobtd/zmat"
)

// error kinds surfaced by the engine
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotImplemented  = errors.New("not implemented")
)

// Green function output formats
const (
	FormatArray  = "array"  // dense N x N
	FormatBTD    = "btd"    // block-tridiagonal tiles only
	FormatBM     = "bm"     // all tiles of the block matrix
	FormatSparse = "sparse" // CSR with the pattern of S(k) pivoted
)

// Spectral/scattering methods
const (
	MethodColumn    = "column"
	MethodPropagate = "propagate"
	MethodSVD       = "svd"
	MethodFull      = "full"
)

// data is the per-(E,k) cache owned by one DeviceGreen instance
type data struct {
	E complex128
	k []float64

	// flags marking which stage of the preparation is valid
	seReady  bool
	btdReady bool

	// block-tridiagonal tiles of inv_G = E S - H - sum Sigma
	A []*zmat.Matrix // diagonal tiles, btd[b] x btd[b]
	B []*zmat.Matrix // B[b] couples block b+1 to b: inv_G[b+1,b]
	C []*zmat.Matrix // C[b] couples block b-1 to b: inv_G[b-1,b]

	// propagation tiles
	tY []*zmat.Matrix // tY[1..nb-1], forward recurrence
	tX []*zmat.Matrix // tX[0..nb-2], backward recurrence

	// broadening matrices per electrode
	gamma []*zmat.Matrix
}

// DeviceGreen is the block-tri-diagonal Green function calculator of an
// open device region with electrode self-energies.
//
// Concurrent calls on one instance are not supported; parallelism over
// (E,k) points belongs to the caller with one instance per worker.
type DeviceGreen struct {
	h     ham.Hamiltonian
	pv    *pivot.Pivot
	elecs []sigma.Electrode

	pvt []int // device permutation
	btd []int // device block sizes
	cum []int // cumulated block offsets
	inv []int // original orbital => device position, -1 outside

	elecsPvtDev [][]int

	data *data
}

// New creates the Green function engine from the Hamiltonian, the
// electrode self-energy providers and the pivoting metadata
func New(h ham.Hamiltonian, elecs []sigma.Electrode, pv *pivot.Pivot) (o *DeviceGreen, err error) {
	btd, err := pv.BTD("")
	if err != nil {
		return nil, err
	}
	if len(btd) < 2 {
		return nil, fmt.Errorf("%w: device needs at least 2 BTD blocks, has %d", ErrInvalidArgument, len(btd))
	}
	o = &DeviceGreen{
		h:   h,
		pv:  pv,
		pvt: pv.Pivot(),
		btd: btd,
		cum: pv.CumBTD(),
	}
	o.inv = make([]int, h.Geometry().No())
	for i := range o.inv {
		o.inv[i] = -1
	}
	for pos, orb := range o.pvt {
		o.inv[orb] = pos
	}
	for _, e := range elecs {
		o.elecs = append(o.elecs, e)
		o.elecsPvtDev = append(o.elecsPvtDev, e.DeviceIndices())
	}
	o.Reset()
	return o, nil
}

// Len returns the number of device orbitals
func (o *DeviceGreen) Len() int { return len(o.pvt) }

// Nblocks returns the number of BTD blocks
func (o *DeviceGreen) Nblocks() int { return len(o.btd) }

// Reset releases the per-(E,k) cache
func (o *DeviceGreen) Reset() {
	o.data = &data{}
}

// elec resolves an electrode name to its index
func (o *DeviceGreen) elec(name string) (int, error) {
	for i, e := range o.elecs {
		if e.Label() == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: unknown electrode %q", ErrInvalidArgument, name)
}

func normK(k []float64) (kk []float64) {
	kk = make([]float64, 3)
	copy(kk, k)
	return
}

// checkEk tells whether the cache matches (E,k); a mismatch resets
func (o *DeviceGreen) checkEk(E complex128, k []float64) bool {
	d := o.data
	if !d.seReady && !d.btdReady {
		return false
	}
	if d.E != E {
		o.Reset()
		return false
	}
	for i := 0; i < 3; i++ {
		if math.Abs(d.k[i]-k[i]) > 1e-12 {
			o.Reset()
			return false
		}
	}
	return true
}

// prepareSE computes the self-energies and stores the broadenings only.
// Used by the eigenchannel calculation which never needs the BTD tiles.
func (o *DeviceGreen) prepareSE(E complex128, k []float64) error {
	k = normK(k)
	if o.checkEk(E, k) && o.data.seReady {
		return nil
	}
	d := o.data
	d.gamma = make([]*zmat.Matrix, len(o.elecs))
	for i, e := range o.elecs {
		se, err := e.SelfEnergy(E, k)
		if err != nil {
			return fmt.Errorf("electrode %q self-energy at E=%v k=%v: %w", e.Label(), E, k, err)
		}
		d.gamma[i] = sigma.Se2Scat(se)
	}
	d.E = E
	d.k = k
	d.seReady = true
	return nil
}

// prepare assembles the BTD tiles of E S - H - sum Sigma and runs the
// forward/backward propagation recurrences. Idempotent per (E,k).
func (o *DeviceGreen) prepare(E complex128, k []float64) error {
	k = normK(k)
	if o.checkEk(E, k) && o.data.btdReady {
		return nil
	}
	d := o.data
	nb := len(o.btd)

	// allocate tiles
	d.A = make([]*zmat.Matrix, nb)
	d.B = make([]*zmat.Matrix, nb)
	d.C = make([]*zmat.Matrix, nb)
	for b := 0; b < nb; b++ {
		d.A[b] = zmat.New(o.btd[b], o.btd[b])
		if b < nb-1 {
			d.B[b] = zmat.New(o.btd[b+1], o.btd[b])
		}
		if b > 0 {
			d.C[b] = zmat.New(o.btd[b-1], o.btd[b])
		}
	}

	// scatter E S - H into the tiles, restricted to the device pivot
	if err := o.scatterSparse(o.h.Sk(k), E); err != nil {
		return err
	}
	if err := o.scatterSparse(o.h.Hk(k), -1); err != nil {
		return err
	}

	// subtract the electrode self-energies and store the broadenings
	d.gamma = make([]*zmat.Matrix, len(o.elecs))
	for i, e := range o.elecs {
		se, err := e.SelfEnergy(E, k)
		if err != nil {
			return fmt.Errorf("electrode %q self-energy at E=%v k=%v: %w", e.Label(), E, k, err)
		}
		pvtDev := o.elecsPvtDev[i]
		if se.Rows != len(pvtDev) {
			return fmt.Errorf("%w: electrode %q self-energy is %d x %d but couples to %d device orbitals",
				ErrInvalidArgument, e.Label(), se.Rows, se.Cols, len(pvtDev))
		}
		for a, p := range pvtDev {
			for b, q := range pvtDev {
				if err := o.addTile(p, q, -se.Get(a, b)); err != nil {
					return fmt.Errorf("electrode %q: %w", e.Label(), err)
				}
			}
		}
		d.gamma[i] = sigma.Se2Scat(se)
	}

	// forward recurrence tY and backward recurrence tX
	d.tY = make([]*zmat.Matrix, nb)
	d.tX = make([]*zmat.Matrix, nb)
	var err error
	d.tY[1], err = zmat.Solve(d.A[0], d.C[1], false)
	if err != nil {
		return fmt.Errorf("tY[1] at E=%v k=%v: %w", E, k, err)
	}
	d.tX[nb-2], err = zmat.Solve(d.A[nb-1], d.B[nb-2], false)
	if err != nil {
		return fmt.Errorf("tX[%d] at E=%v k=%v: %w", nb-2, E, k, err)
	}
	for n := 2; n < nb; n++ {
		p := nb - n - 1
		W := d.A[n-1].Clone()
		W.SubM(zmat.Mul(d.B[n-2], d.tY[n-1]))
		if d.tY[n], err = zmat.Solve(W, d.C[n], true); err != nil {
			return fmt.Errorf("tY[%d] at E=%v k=%v: %w", n, E, k, err)
		}
		W = d.A[p+1].Clone()
		W.SubM(zmat.Mul(d.C[p+2], d.tX[p+1]))
		if d.tX[p], err = zmat.Solve(W, d.B[p], true); err != nil {
			return fmt.Errorf("tX[%d] at E=%v k=%v: %w", p, E, k, err)
		}
	}

	d.E = E
	d.k = k
	d.seReady = true
	d.btdReady = true
	return nil
}

// scatterSparse adds factor * M restricted to the device pivot into the
// BTD tiles
func (o *DeviceGreen) scatterSparse(M *ham.CSR, factor complex128) error {
	for i := 0; i < M.Rows; i++ {
		pi := o.inv[i]
		if pi < 0 {
			continue
		}
		for p := M.Indptr[i]; p < M.Indptr[i+1]; p++ {
			pj := o.inv[M.Indices[p]]
			if pj < 0 {
				continue
			}
			bi, bj := o.pv.BlockOf(pi), o.pv.BlockOf(pj)
			if bi-bj > 1 || bj-bi > 1 {
				// zero by the BTD invariant of the pivoted H and S
				continue
			}
			o.tileAdd(bi, bj, pi, pj, factor*M.Data[p])
		}
	}
	return nil
}

// addTile routes a single value into the BTD tiles
func (o *DeviceGreen) addTile(pi, pj int, v complex128) error {
	bi, bj := o.pv.BlockOf(pi), o.pv.BlockOf(pj)
	if bi-bj > 1 || bj-bi > 1 {
		return fmt.Errorf("%w: entry (%d,%d) couples blocks %d and %d beyond the tridiagonal", ErrInvalidArgument, pi, pj, bi, bj)
	}
	o.tileAdd(bi, bj, pi, pj, v)
	return nil
}

func (o *DeviceGreen) tileAdd(bi, bj, pi, pj int, v complex128) {
	d := o.data
	li, lj := pi-o.cum[bi], pj-o.cum[bj]
	switch {
	case bi == bj:
		d.A[bi].Add(li, lj, v)
	case bi == bj+1:
		d.B[bj].Add(li, lj, v)
	default: // bi == bj-1
		d.C[bj].Add(li, lj, v)
	}
}

// diagInv returns the inverse of the effective diagonal tile of block b
func (o *DeviceGreen) diagInv(b int) (*zmat.Matrix, error) {
	d := o.data
	nb := len(o.btd)
	W := d.A[b].Clone()
	if b > 0 {
		W.SubM(zmat.Mul(d.B[b-1], d.tY[b]))
	}
	if b < nb-1 {
		W.SubM(zmat.Mul(d.C[b+1], d.tX[b]))
	}
	G, err := zmat.InvDestroy(W)
	if err != nil {
		return nil, fmt.Errorf("diagonal block %d at E=%v k=%v: %w", b, d.E, d.k, err)
	}
	return G, nil
}

// Green computes the Green function at (E,k) in the requested format:
// array (*zmat.Matrix), btd and bm (*zmat.BlockMatrix) or sparse
// (*ham.CSR with the pattern of S(k) pivoted)
func (o *DeviceGreen) Green(E complex128, k []float64, format string) (interface{}, error) {
	if err := o.prepare(E, k); err != nil {
		return nil, err
	}
	switch format {
	case FormatArray, "dense":
		return o.greenArray()
	case FormatBTD:
		return o.greenBTD()
	case FormatBM:
		return o.greenBM()
	case FormatSparse:
		return o.greenSparse()
	}
	return nil, fmt.Errorf("%w: green format %q is not one of array, btd, bm, sparse", ErrInvalidArgument, format)
}

// GreenArray computes the dense Green function at (E,k)
func (o *DeviceGreen) GreenArray(E complex128, k []float64) (*zmat.Matrix, error) {
	if err := o.prepare(E, k); err != nil {
		return nil, err
	}
	return o.greenArray()
}

// GreenBTD computes the block-tridiagonal part of the Green function
func (o *DeviceGreen) GreenBTD(E complex128, k []float64) (*zmat.BlockMatrix, error) {
	if err := o.prepare(E, k); err != nil {
		return nil, err
	}
	return o.greenBTD()
}

// GreenBM computes all blocks of the Green function as a block matrix
func (o *DeviceGreen) GreenBM(E complex128, k []float64) (*zmat.BlockMatrix, error) {
	if err := o.prepare(E, k); err != nil {
		return nil, err
	}
	return o.greenBM()
}

// GreenSparse computes the Green function on the sparsity pattern of
// S(k) pivoted
func (o *DeviceGreen) GreenSparse(E complex128, k []float64) (*ham.CSR, error) {
	if err := o.prepare(E, k); err != nil {
		return nil, err
	}
	return o.greenSparse()
}

func (o *DeviceGreen) greenArray() (G *zmat.Matrix, err error) {
	n := o.Len()
	nb := len(o.btd)
	d := o.data
	G = zmat.New(n, n)
	for b := 0; b < nb; b++ {
		GM, err := o.diagInv(b)
		if err != nil {
			return nil, err
		}
		G.SetSlice(o.cum[b], o.cum[b], GM)

		// all parts above in column b
		prev := GM
		for a := b - 1; a >= 0; a-- {
			cur := zmat.Mul(d.tY[a+1], prev)
			cur.Scale(-1)
			G.SetSlice(o.cum[a], o.cum[b], cur)
			prev = cur
		}

		// all parts below in column b
		prev = GM
		for a := b + 1; a < nb; a++ {
			cur := zmat.Mul(d.tX[a-1], prev)
			cur.Scale(-1)
			G.SetSlice(o.cum[a], o.cum[b], cur)
			prev = cur
		}
	}
	return G, nil
}

func (o *DeviceGreen) greenBTD() (G *zmat.BlockMatrix, err error) {
	nb := len(o.btd)
	d := o.data
	G = zmat.NewBlockMatrix(o.btd)
	for b := 0; b < nb; b++ {
		GM, err := o.diagInv(b)
		if err != nil {
			return nil, err
		}
		G.Set(b, b, GM)
		if b > 0 {
			T := zmat.Mul(d.tY[b], GM)
			T.Scale(-1)
			G.Set(b-1, b, T)
		}
		if b < nb-1 {
			T := zmat.Mul(d.tX[b], GM)
			T.Scale(-1)
			G.Set(b+1, b, T)
		}
	}
	return G, nil
}

func (o *DeviceGreen) greenBM() (G *zmat.BlockMatrix, err error) {
	G, err = o.greenBTD()
	if err != nil {
		return nil, err
	}
	nb := len(o.btd)
	d := o.data
	for b := 0; b < nb; b++ {
		G0 := G.At(b, b)
		for bb := b; bb > 0; bb-- {
			G0 = zmat.Mul(d.tY[bb], G0)
			G0.Scale(-1)
			G.Set(bb-1, b, G0)
		}
		G0 = G.At(b, b)
		for bb := b; bb < nb-1; bb++ {
			G0 = zmat.Mul(d.tX[bb], G0)
			G0.Scale(-1)
			G.Set(bb+1, b, G0)
		}
	}
	return G, nil
}

func (o *DeviceGreen) greenSparse() (G *ham.CSR, err error) {
	nb := len(o.btd)
	d := o.data

	// the result reuses the sparsity pattern of S(k) pivoted
	G = o.h.Sk(d.k).Permute(o.pvt)

	// diagonal tile inverses and their up/down neighbors
	GM := make([]*zmat.Matrix, nb)
	TY := make([]*zmat.Matrix, nb) // TY[b] = -tY[b] GM[b], tile (b-1,b)
	TX := make([]*zmat.Matrix, nb) // TX[b] = -tX[b] GM[b], tile (b+1,b)
	for b := 0; b < nb; b++ {
		if GM[b], err = o.diagInv(b); err != nil {
			return nil, err
		}
		if b > 0 {
			TY[b] = zmat.Mul(d.tY[b], GM[b])
			TY[b].Scale(-1)
		}
		if b < nb-1 {
			TX[b] = zmat.Mul(d.tX[b], GM[b])
			TX[b].Scale(-1)
		}
	}

	for i := 0; i < G.Rows; i++ {
		bi := o.pv.BlockOf(i)
		for p := G.Indptr[i]; p < G.Indptr[i+1]; p++ {
			j := G.Indices[p]
			bj := o.pv.BlockOf(j)
			li, lj := i-o.cum[bi], j-o.cum[bj]
			switch {
			case bi == bj:
				G.Data[p] = GM[bj].Get(li, lj)
			case bi == bj-1:
				G.Data[p] = TY[bj].Get(li, lj)
			case bi == bj+1:
				G.Data[p] = TX[bj].Get(li, lj)
			default:
				G.Data[p] = 0
			}
		}
	}
	return G, nil
}

// blockSpan finds the 1 or 2 consecutive blocks covered by the sorted
// index set
func (o *DeviceGreen) blockSpan(idx []int) (blocks []int, err error) {
	if len(idx) == 0 {
		return nil, fmt.Errorf("%w: empty index set", ErrInvalidArgument)
	}
	for i := 1; i < len(idx); i++ {
		if idx[i] <= idx[i-1] {
			return nil, fmt.Errorf("%w: indices must be strictly ascending", ErrInvalidArgument)
		}
	}
	if idx[0] < 0 || idx[len(idx)-1] >= o.Len() {
		return nil, fmt.Errorf("%w: indices out of the device range [0,%d)", ErrInvalidArgument, o.Len())
	}
	b1 := o.pv.BlockOf(idx[0])
	b2 := o.pv.BlockOf(idx[len(idx)-1])
	if b1 == b2 {
		return []int{b1}, nil
	}
	if b2 != b1+1 {
		return nil, fmt.Errorf("%w: indices span blocks %d..%d; maximally 2 consecutive blocks are allowed", ErrInvalidArgument, b1, b2)
	}
	return []int{b1, b2}, nil
}

// localIdx splits idx into per-block local column indices
func (o *DeviceGreen) localIdx(idx []int, b int) (loc []int) {
	for _, i := range idx {
		if i >= o.cum[b] && i < o.cum[b+1] {
			loc = append(loc, i-o.cum[b])
		}
	}
	return
}

// greenColumn computes the N x len(idx) Green function columns; idx must
// be ascending and span at most 2 consecutive blocks
func (o *DeviceGreen) greenColumn(idx []int) (G *zmat.Matrix, err error) {
	blocks, err := o.blockSpan(idx)
	if err != nil {
		return nil, err
	}
	nb := len(o.btd)
	d := o.data
	n := o.Len()
	G = zmat.New(n, len(idx))

	for bi, b := range blocks {
		loc := o.localIdx(idx, b)
		c0 := 0 // column offset of this block inside G
		if bi == 1 {
			c0 = len(idx) - len(loc)
		}
		D, err := o.diagInv(b)
		if err != nil {
			return nil, err
		}
		Gb := D.Take(nil, loc)
		G.SetSlice(o.cum[b], c0, Gb)

		if len(blocks) == 1 {
			break
		}

		// the adjacent seed block for these columns
		if bi == 0 && b < nb-1 {
			T := zmat.Mul(d.tX[b], Gb)
			T.Scale(-1)
			G.SetSlice(o.cum[b+1], c0, T)
		} else if bi == 1 && b > 0 {
			T := zmat.Mul(d.tY[b], Gb)
			T.Scale(-1)
			G.SetSlice(o.cum[b-1], c0, T)
		}
	}

	// propagate all blocks above
	for b := blocks[0] - 1; b >= 0; b-- {
		src := G.Slice(o.cum[b+1], o.cum[b+2], 0, len(idx))
		T := zmat.Mul(d.tY[b+1], src)
		T.Scale(-1)
		G.SetSlice(o.cum[b], 0, T)
	}

	// and all blocks below
	for b := blocks[len(blocks)-1] + 1; b < nb; b++ {
		src := G.Slice(o.cum[b-1], o.cum[b], 0, len(idx))
		T := zmat.Mul(d.tX[b-1], src)
		T.Scale(-1)
		G.SetSlice(o.cum[b], 0, T)
	}
	return G, nil
}

// greenDiagBlock computes the Green function rows of the 1 or 2 blocks
// hosting idx, restricted to the idx columns
func (o *DeviceGreen) greenDiagBlock(idx []int) (blocks []int, G *zmat.Matrix, err error) {
	blocks, err = o.blockSpan(idx)
	if err != nil {
		return nil, nil, err
	}
	d := o.data
	n := 0
	for _, b := range blocks {
		n += o.btd[b]
	}
	G = zmat.New(n, len(idx))

	for bi, b := range blocks {
		loc := o.localIdx(idx, b)
		c0 := 0
		r0 := 0
		if bi == 1 {
			c0 = len(idx) - len(loc)
			r0 = o.btd[blocks[0]]
		}
		D, err := o.diagInv(b)
		if err != nil {
			return nil, nil, err
		}
		Gb := D.Take(nil, loc)
		G.SetSlice(r0, c0, Gb)

		if len(blocks) == 1 {
			break
		}

		if bi == 0 {
			// rows of the second block for the first block's columns
			T := zmat.Mul(d.tX[b], Gb)
			T.Scale(-1)
			G.SetSlice(o.btd[blocks[0]], c0, T)
		} else {
			// rows of the first block for the second block's columns
			T := zmat.Mul(d.tY[b], Gb)
			T.Scale(-1)
			G.SetSlice(0, c0, T)
		}
	}
	return blocks, G, nil
}
