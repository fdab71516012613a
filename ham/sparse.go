// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package ham

import (
	"sort"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/la"

	"github.com/hakimzenata/gobtd/zmat"
)

// CSR holds a sparse complex matrix in compressed-row form. The row
// pattern is what the sparse Green function format reuses.
type CSR struct {
	Rows, Cols int
	Indptr     []int        // len Rows+1
	Indices    []int        // column of each stored value, ascending per row
	Data       []complex128 // stored values
}

// NewCSR converts an assembled triplet into compressed-row form.
// Duplicate (i,j) entries are accumulated.
func NewCSR(m, n int, t *la.TripletC) (o *CSR) {
	d := t.ToDense()
	o = &CSR{Rows: m, Cols: n, Indptr: make([]int, m+1)}
	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			if v := d.Get(i, j); v != 0 {
				o.Indices = append(o.Indices, j)
				o.Data = append(o.Data, v)
			}
		}
		o.Indptr[i+1] = len(o.Indices)
	}
	return
}

// Nnz returns the number of stored values
func (o *CSR) Nnz() int { return len(o.Data) }

// Get returns the (i,j) value; absent entries are zero
func (o *CSR) Get(i, j int) complex128 {
	for p := o.Indptr[i]; p < o.Indptr[i+1]; p++ {
		if o.Indices[p] == j {
			return o.Data[p]
		}
	}
	return 0
}

// Clone returns a deep copy
func (o *CSR) Clone() (c *CSR) {
	c = &CSR{
		Rows: o.Rows, Cols: o.Cols,
		Indptr:  append([]int{}, o.Indptr...),
		Indices: append([]int{}, o.Indices...),
		Data:    append([]complex128{}, o.Data...),
	}
	return
}

// ToDense materializes the matrix
func (o *CSR) ToDense() (M *zmat.Matrix) {
	M = zmat.New(o.Rows, o.Cols)
	for i := 0; i < o.Rows; i++ {
		for p := o.Indptr[i]; p < o.Indptr[i+1]; p++ {
			M.Set(i, o.Indices[p], o.Data[p])
		}
	}
	return
}

// Permute returns B with B[i,j] = A[p[i],p[j]]; p must be a permutation
// of the matrix dimension (square matrices only)
func (o *CSR) Permute(p []int) (c *CSR) {
	if o.Rows != o.Cols || len(p) != o.Rows {
		chk.Panic("ham.CSR.Permute: need a square matrix and a full permutation, %d x %d with |p|=%d", o.Rows, o.Cols, len(p))
	}
	inv := make([]int, len(p))
	for newpos, old := range p {
		inv[old] = newpos
	}
	c = &CSR{Rows: o.Rows, Cols: o.Cols, Indptr: make([]int, o.Rows+1)}
	type ent struct {
		j int
		v complex128
	}
	for i := 0; i < c.Rows; i++ {
		old := p[i]
		var row []ent
		for q := o.Indptr[old]; q < o.Indptr[old+1]; q++ {
			row = append(row, ent{inv[o.Indices[q]], o.Data[q]})
		}
		sort.Slice(row, func(a, b int) bool { return row[a].j < row[b].j })
		for _, e := range row {
			c.Indices = append(c.Indices, e.j)
			c.Data = append(c.Data, e.v)
		}
		c.Indptr[i+1] = len(c.Indices)
	}
	return
}
