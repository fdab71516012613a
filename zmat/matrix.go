// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package zmat implements dense complex matrices and the LAPACK-backed
// kernels used throughout the BTD Green function engine
package zmat

import (
	"math"
	"math/cmplx"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/utl"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
)

// Matrix holds a dense complex matrix in row-major order.
// The layout is compatible with cblas128.General.
type Matrix struct {
	Rows   int          // number of rows
	Cols   int          // number of columns
	Stride int          // row stride; equals Cols for owned matrices
	Data   []complex128 // row-major values
}

// New returns a zeroed m by n matrix
func New(m, n int) *Matrix {
	if m < 1 || n < 1 {
		chk.Panic("zmat.New: invalid dimensions %d x %d", m, n)
	}
	return &Matrix{Rows: m, Cols: n, Stride: n, Data: make([]complex128, m*n)}
}

// Eye returns the n by n identity matrix
func Eye(n int) (o *Matrix) {
	o = New(n, n)
	for i := 0; i < n; i++ {
		o.Data[i*o.Stride+i] = 1
	}
	return
}

// General returns the cblas128 view of this matrix. The data is shared.
func (o *Matrix) General() cblas128.General {
	return cblas128.General{Rows: o.Rows, Cols: o.Cols, Stride: o.Stride, Data: o.Data}
}

// Get returns the (i,j) element
func (o *Matrix) Get(i, j int) complex128 {
	return o.Data[i*o.Stride+j]
}

// Set assigns the (i,j) element
func (o *Matrix) Set(i, j int, v complex128) {
	o.Data[i*o.Stride+j] = v
}

// Add increments the (i,j) element
func (o *Matrix) Add(i, j int, v complex128) {
	o.Data[i*o.Stride+j] += v
}

// Clone returns a deep copy
func (o *Matrix) Clone() (c *Matrix) {
	c = New(o.Rows, o.Cols)
	for i := 0; i < o.Rows; i++ {
		copy(c.Data[i*c.Stride:i*c.Stride+o.Cols], o.Data[i*o.Stride:i*o.Stride+o.Cols])
	}
	return
}

// Dagger returns the conjugate transpose as a new matrix
func (o *Matrix) Dagger() (c *Matrix) {
	c = New(o.Cols, o.Rows)
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			c.Data[j*c.Stride+i] = cmplx.Conj(o.Data[i*o.Stride+j])
		}
	}
	return
}

// Diag returns a copy of the main diagonal
func (o *Matrix) Diag() (d []complex128) {
	n := o.Rows
	if o.Cols < n {
		n = o.Cols
	}
	d = make([]complex128, n)
	for i := 0; i < n; i++ {
		d[i] = o.Data[i*o.Stride+i]
	}
	return
}

// AddDiag adds v to every element of the main diagonal
func (o *Matrix) AddDiag(v complex128) {
	n := o.Rows
	if o.Cols < n {
		n = o.Cols
	}
	for i := 0; i < n; i++ {
		o.Data[i*o.Stride+i] += v
	}
}

// SubM subtracts b from o, in place. Shapes must match.
func (o *Matrix) SubM(b *Matrix) {
	if o.Rows != b.Rows || o.Cols != b.Cols {
		chk.Panic("zmat.SubM: shape mismatch (%d,%d) vs (%d,%d)", o.Rows, o.Cols, b.Rows, b.Cols)
	}
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			o.Data[i*o.Stride+j] -= b.Data[i*b.Stride+j]
		}
	}
}

// AddM adds b to o, in place. Shapes must match.
func (o *Matrix) AddM(b *Matrix) {
	if o.Rows != b.Rows || o.Cols != b.Cols {
		chk.Panic("zmat.AddM: shape mismatch (%d,%d) vs (%d,%d)", o.Rows, o.Cols, b.Rows, b.Cols)
	}
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			o.Data[i*o.Stride+j] += b.Data[i*b.Stride+j]
		}
	}
}

// Scale multiplies all elements by v, in place
func (o *Matrix) Scale(v complex128) {
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			o.Data[i*o.Stride+j] *= v
		}
	}
}

// ScaleCol multiplies column j by v, in place
func (o *Matrix) ScaleCol(j int, v complex128) {
	for i := 0; i < o.Rows; i++ {
		o.Data[i*o.Stride+j] *= v
	}
}

// Slice returns a copy of the sub-matrix with rows [i0,i1) and columns [j0,j1)
func (o *Matrix) Slice(i0, i1, j0, j1 int) (c *Matrix) {
	c = New(i1-i0, j1-j0)
	for i := i0; i < i1; i++ {
		copy(c.Data[(i-i0)*c.Stride:(i-i0)*c.Stride+c.Cols], o.Data[i*o.Stride+j0:i*o.Stride+j1])
	}
	return
}

// SetSlice copies src into o with its (0,0) element at (i0,j0)
func (o *Matrix) SetSlice(i0, j0 int, src *Matrix) {
	for i := 0; i < src.Rows; i++ {
		copy(o.Data[(i0+i)*o.Stride+j0:(i0+i)*o.Stride+j0+src.Cols], src.Data[i*src.Stride:i*src.Stride+src.Cols])
	}
}

// Take returns the sub-matrix o[rows, cols] given index lists.
// A nil list selects all rows (resp. columns).
func (o *Matrix) Take(rows, cols []int) (c *Matrix) {
	if rows == nil {
		rows = utl.IntRange(o.Rows)
	}
	if cols == nil {
		cols = utl.IntRange(o.Cols)
	}
	c = New(len(rows), len(cols))
	for a, i := range rows {
		for b, j := range cols {
			c.Data[a*c.Stride+b] = o.Data[i*o.Stride+j]
		}
	}
	return
}

// Scatter adds src into o at the positions given by the index lists,
// i.e. o[rows[a], cols[b]] += sign * src[a, b]
func (o *Matrix) Scatter(rows, cols []int, src *Matrix, sign complex128) {
	for a, i := range rows {
		for b, j := range cols {
			o.Data[i*o.Stride+j] += sign * src.Data[a*src.Stride+b]
		}
	}
}

// NormF returns the Frobenius norm
func (o *Matrix) NormF() (res float64) {
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			v := o.Data[i*o.Stride+j]
			res += real(v)*real(v) + imag(v)*imag(v)
		}
	}
	return math.Sqrt(res)
}

// MinAbs returns the smallest magnitude among all elements
func (o *Matrix) MinAbs() (res float64) {
	res = math.Inf(1)
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			if a := cmplx.Abs(o.Data[i*o.Stride+j]); a < res {
				res = a
			}
		}
	}
	return
}

// MaxAbs returns the largest magnitude among all elements
func (o *Matrix) MaxAbs() (res float64) {
	for i := 0; i < o.Rows; i++ {
		for j := 0; j < o.Cols; j++ {
			if a := cmplx.Abs(o.Data[i*o.Stride+j]); a > res {
				res = a
			}
		}
	}
	return
}

// Trace returns the sum of the main diagonal
func (o *Matrix) Trace() (res complex128) {
	n := o.Rows
	if o.Cols < n {
		n = o.Cols
	}
	for i := 0; i < n; i++ {
		res += o.Data[i*o.Stride+i]
	}
	return
}

// Mul returns a times b
func Mul(a, b *Matrix) *Matrix {
	return gemm(blas.NoTrans, blas.NoTrans, a, b)
}

// MulNH returns a times the conjugate transpose of b
func MulNH(a, b *Matrix) *Matrix {
	return gemm(blas.NoTrans, blas.ConjTrans, a, b)
}

// MulHN returns the conjugate transpose of a times b
func MulHN(a, b *Matrix) *Matrix {
	return gemm(blas.ConjTrans, blas.NoTrans, a, b)
}

// gemm performs general matrix multiplication through cblas128
func gemm(tA, tB blas.Transpose, a, b *Matrix) (c *Matrix) {
	m, ka := a.Rows, a.Cols
	if tA != blas.NoTrans {
		m, ka = a.Cols, a.Rows
	}
	kb, n := b.Rows, b.Cols
	if tB != blas.NoTrans {
		kb, n = b.Cols, b.Rows
	}
	if ka != kb {
		chk.Panic("zmat.gemm: inner dimension mismatch %d vs %d", ka, kb)
	}
	c = New(m, n)
	cblas128.Gemm(tA, tB, 1, a.General(), b.General(), 0, c.General())
	return
}
