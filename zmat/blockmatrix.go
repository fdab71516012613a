// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zmat

import (
	"github.com/cpmech/gosl/chk"
)

// BlockMatrix holds a logically dense matrix as a sparse dictionary of
// dense tiles keyed by block-index pairs. Missing tiles denote zero
// blocks of the proper shape.
type BlockMatrix struct {
	blocks []int                // block sizes; sum is the matrix dimension
	off    []int                // cumulated offsets; len(blocks)+1 entries
	tiles  map[[2]int]*Matrix   // (i,j) => tile of shape blocks[i] x blocks[j]
}

// NewBlockMatrix returns an empty block matrix with the given block sizes
func NewBlockMatrix(blocks []int) (o *BlockMatrix) {
	o = &BlockMatrix{
		blocks: append([]int{}, blocks...),
		off:    make([]int, len(blocks)+1),
		tiles:  make(map[[2]int]*Matrix),
	}
	for i, b := range blocks {
		if b < 1 {
			chk.Panic("zmat.NewBlockMatrix: block sizes must be positive, blocks[%d]=%d", i, b)
		}
		o.off[i+1] = o.off[i] + b
	}
	return
}

// Blocks returns the block sizes
func (o *BlockMatrix) Blocks() []int { return o.blocks }

// Nblocks returns the number of blocks along one dimension
func (o *BlockMatrix) Nblocks() int { return len(o.blocks) }

// Dim returns the dimension of the materialized matrix
func (o *BlockMatrix) Dim() int { return o.off[len(o.blocks)] }

// At returns tile (i,j). Absent tiles come back as fresh zero matrices
// of the correct shape; mutating those does not set them.
func (o *BlockMatrix) At(i, j int) *Matrix {
	o.checkKey(i, j)
	if M, ok := o.tiles[[2]int{i, j}]; ok {
		return M
	}
	return New(o.blocks[i], o.blocks[j])
}

// Has tells whether tile (i,j) has been set
func (o *BlockMatrix) Has(i, j int) bool {
	o.checkKey(i, j)
	_, ok := o.tiles[[2]int{i, j}]
	return ok
}

// Set assigns tile (i,j)
func (o *BlockMatrix) Set(i, j int, M *Matrix) {
	o.checkKey(i, j)
	if M.Rows != o.blocks[i] || M.Cols != o.blocks[j] {
		chk.Panic("zmat.BlockMatrix.Set: tile (%d,%d) must be %d x %d, got %d x %d",
			i, j, o.blocks[i], o.blocks[j], M.Rows, M.Cols)
	}
	o.tiles[[2]int{i, j}] = M
}

// checkKey validates a block-index pair
func (o *BlockMatrix) checkKey(i, j int) {
	nb := len(o.blocks)
	if i < 0 || i >= nb || j < 0 || j >= nb {
		chk.Panic("zmat.BlockMatrix: block index (%d,%d) out of range for %d blocks", i, j, nb)
	}
}

// ToArray materializes the dense matrix
func (o *BlockMatrix) ToArray() (M *Matrix) {
	n := o.Dim()
	M = New(n, n)
	for key, tile := range o.tiles {
		M.SetSlice(o.off[key[0]], o.off[key[1]], tile)
	}
	return
}

// ToBTD returns a new block matrix retaining only the tiles on the
// main and two adjacent block diagonals
func (o *BlockMatrix) ToBTD() (r *BlockMatrix) {
	r = NewBlockMatrix(o.blocks)
	for key, tile := range o.tiles {
		d := key[0] - key[1]
		if d >= -1 && d <= 1 {
			r.tiles[key] = tile
		}
	}
	return
}

// Diagonal returns the concatenated diagonals of the diagonal tiles
func (o *BlockMatrix) Diagonal() (d []complex128) {
	d = make([]complex128, 0, o.Dim())
	for b := range o.blocks {
		d = append(d, o.At(b, b).Diag()...)
	}
	return
}
