// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zmat

import (
	"errors"
	"fmt"
	"math"

	"github.com/cpmech/gosl/chk"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/netlib/lapack/lapacke"
)

// ErrSingular flags a singular matrix met during a factorization.
// Callers may retry with a small imaginary part added to the energy.
var ErrSingular = errors.New("numeric singularity")

// SVD drivers
const (
	DriverGesvd = "gesvd" // QR-based; preferred for min(M,N) >= 26
	DriverGesdd = "gesdd" // divide-and-conquer
)

// Solve returns X such that A X = B. With overwrite, the contents of A
// are destroyed (LU factors); B is never modified.
func Solve(A, B *Matrix, overwrite bool) (X *Matrix, err error) {
	if A.Rows != A.Cols {
		return nil, chk.Err("zmat.Solve: matrix must be square, is %d x %d", A.Rows, A.Cols)
	}
	if A.Rows != B.Rows {
		return nil, chk.Err("zmat.Solve: dimension mismatch A is %d x %d, B has %d rows", A.Rows, A.Cols, B.Rows)
	}
	a := A
	if !overwrite {
		a = A.Clone()
	}
	X = B.Clone()
	n := a.Rows
	ipiv := make([]int32, n)
	if !lapacke.Zgesv(n, X.Cols, a.Data, a.Stride, ipiv, X.Data, X.Stride) {
		return nil, fmt.Errorf("%w: zgesv failed for %d x %d system", ErrSingular, n, n)
	}
	return X, nil
}

// InvDestroy returns the inverse of A, overwriting A with the result
func InvDestroy(A *Matrix) (*Matrix, error) {
	if A.Rows != A.Cols {
		return nil, chk.Err("zmat.InvDestroy: matrix must be square, is %d x %d", A.Rows, A.Cols)
	}
	n := A.Rows
	ipiv := make([]int32, n)
	if !lapacke.Zgetrf(n, n, A.Data, A.Stride, ipiv) {
		return nil, fmt.Errorf("%w: zgetrf failed for %d x %d matrix", ErrSingular, n, n)
	}
	if !lapacke.Zgetri(n, A.Data, A.Stride, ipiv) {
		return nil, fmt.Errorf("%w: zgetri failed for %d x %d matrix", ErrSingular, n, n)
	}
	return A, nil
}

// Inv returns the inverse of A without modifying A
func Inv(A *Matrix) (*Matrix, error) {
	return InvDestroy(A.Clone())
}

// EighDestroy computes the eigendecomposition of the Hermitian matrix H,
// overwriting H with the eigenvectors (in columns). Eigenvalues are real
// and returned in ascending order.
func EighDestroy(H *Matrix) (w []float64, V *Matrix, err error) {
	if H.Rows != H.Cols {
		return nil, nil, chk.Err("zmat.EighDestroy: matrix must be square, is %d x %d", H.Rows, H.Cols)
	}
	n := H.Rows
	w = make([]float64, n)
	if !lapacke.Zheev('V', blas.Lower, n, H.Data, H.Stride, w) {
		return nil, nil, chk.Err("zmat.EighDestroy: zheev failed to converge for %d x %d matrix", n, n)
	}
	return w, H, nil
}

// Eigh computes the eigendecomposition of the Hermitian matrix H
// without modifying H
func Eigh(H *Matrix) (w []float64, V *Matrix, err error) {
	return EighDestroy(H.Clone())
}

// SVDDestroy computes the economy singular value decomposition
// A = U diag(s) Vh, destroying A. The driver selects the LAPACK
// routine: gesvd (QR) or gesdd (divide-and-conquer). Divide-and-conquer
// gives poor results for min(M,N) >= 26, hence gesvd is the default
// everywhere in this module.
func SVDDestroy(A *Matrix, driver string) (U *Matrix, s []float64, Vh *Matrix, err error) {
	m, n := A.Rows, A.Cols
	k := m
	if n < k {
		k = n
	}
	U = New(m, k)
	Vh = New(k, n)
	s = make([]float64, k)
	switch driver {
	case DriverGesvd, "":
		superb := make([]float64, k)
		if !lapacke.Zgesvd('S', 'S', m, n, A.Data, A.Stride, s, U.Data, U.Stride, Vh.Data, Vh.Stride, superb) {
			return nil, nil, nil, chk.Err("zmat.SVDDestroy: zgesvd failed for %d x %d matrix", m, n)
		}
	case DriverGesdd:
		if !lapacke.Zgesdd('S', m, n, A.Data, A.Stride, s, U.Data, U.Stride, Vh.Data, Vh.Stride) {
			return nil, nil, nil, chk.Err("zmat.SVDDestroy: zgesdd failed for %d x %d matrix", m, n)
		}
	default:
		return nil, nil, nil, chk.Err("zmat.SVDDestroy: driver must be gesvd or gesdd, got %q", driver)
	}
	return U, s, Vh, nil
}

// SVDScaled computes the economy SVD of A, destroying A, optionally
// pre-scaling the matrix so its smallest magnitude lies above 1e-12.
// The singular values are scaled back before returning.
func SVDScaled(A *Matrix, driver string, scale bool) (U *Matrix, s []float64, Vh *Matrix, err error) {
	factor := 1.0
	if scale {
		if mn := A.MinAbs(); mn > 0 {
			if e := int(math.Floor(math.Log10(mn))); e < -12 {
				factor = math.Pow(10, float64(-12-e))
				A.Scale(complex(factor, 0))
			}
		}
	}
	U, s, Vh, err = SVDDestroy(A, driver)
	if err != nil {
		return
	}
	if factor != 1 {
		for i := range s {
			s[i] /= factor
		}
	}
	return
}

// SVDS computes the k largest singular triples of A. Only the left
// singular vectors and the values are returned.
//
// The decomposition goes through the Hermitian eigenproblem of the
// Gram matrix Ah A. There is no ARPACK at hand, and the electrode
// dimensions met here keep the dense path cheap.
func SVDS(A *Matrix, k int) (U *Matrix, s []float64, err error) {
	m, n := A.Rows, A.Cols
	if k < 1 || k > n {
		return nil, nil, chk.Err("zmat.SVDS: k must be in [1,%d], got %d", n, k)
	}
	G := MulHN(A, A)
	w, V, err := EighDestroy(G)
	if err != nil {
		return nil, nil, err
	}
	// eigenvalues ascend; the top k sit at the tail
	s = make([]float64, k)
	U = New(m, k)
	for j := 0; j < k; j++ {
		col := n - 1 - j
		sv := math.Sqrt(math.Max(w[col], 0))
		s[j] = sv
		if sv == 0 {
			continue
		}
		// U[:,j] = A V[:,col] / s
		for i := 0; i < m; i++ {
			var sum complex128
			for l := 0; l < n; l++ {
				sum += A.Data[i*A.Stride+l] * V.Data[l*V.Stride+col]
			}
			U.Data[i*U.Stride+j] = sum / complex(sv, 0)
		}
	}
	return U, s, nil
}

// SignSqrt returns sign(w)*sqrt(|w|) element-wise
func SignSqrt(w []float64) (r []float64) {
	r = make([]float64, len(w))
	for i, v := range w {
		if v < 0 {
			r[i] = -math.Sqrt(-v)
		} else {
			r[i] = math.Sqrt(v)
		}
	}
	return
}

// SqrtmHerm computes the square root of the Hermitian matrix H using the
// eigendecomposition and a sign-preserving sqrt of the eigenvalues.
// Compared to a Schur-based sqrtm this behaves better under the
// subsequent H12 H12^dagger products met in the scattering state
// calculation.
func SqrtmHerm(H *Matrix) (R *Matrix, err error) {
	w, V, err := Eigh(H)
	if err != nil {
		return nil, err
	}
	sq := SignSqrt(w)
	n := H.Rows
	// R = V diag(sq) Vh
	W := V.Clone()
	for j := 0; j < n; j++ {
		W.ScaleCol(j, complex(sq[j], 0))
	}
	R = MulNH(W, V)
	return
}
