// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package zmat

import (
	"errors"
	"math/cmplx"
	"testing"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

func verbose() {
	chk.Verbose = true
}

// maxAbsDiff returns the largest |a-b| over all elements
func maxAbsDiff(a, b *Matrix) (res float64) {
	for i := 0; i < a.Rows; i++ {
		for j := 0; j < a.Cols; j++ {
			if d := cmplx.Abs(a.Get(i, j) - b.Get(i, j)); d > res {
				res = d
			}
		}
	}
	return
}

// testmat returns a well-conditioned complex test matrix
func testmat(n int) (A *Matrix) {
	A = New(n, n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			A.Set(i, j, complex(float64(i-j), float64(i+j)*0.25))
		}
		A.Add(i, i, complex(float64(n), 1))
	}
	return
}

// hermmat returns a Hermitian test matrix
func hermmat(n int) (H *Matrix) {
	A := testmat(n)
	H = MulNH(A, A) // A Ah is Hermitian positive definite
	return
}

func TestSolve01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Solve01. LU solve against residual")

	A := testmat(5)
	B := New(5, 2)
	for i := 0; i < 5; i++ {
		B.Set(i, 0, complex(float64(i+1), 0))
		B.Set(i, 1, complex(0, float64(i)-2))
	}

	X, err := Solve(A, B, false)
	if err != nil {
		tst.Errorf("Solve failed: %v\n", err)
		return
	}

	R := Mul(A, X)
	io.Pforan("max|A X - B| = %v\n", maxAbsDiff(R, B))
	chk.Float64(tst, "residual", 1e-12, maxAbsDiff(R, B), 0)
}

func TestSolve02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Solve02. singular system returns ErrSingular")

	A := New(3, 3) // all zeros
	B := Eye(3)
	_, err := Solve(A, B, true)
	if err == nil {
		tst.Errorf("expected an error for singular A\n")
		return
	}
	if !errors.Is(err, ErrSingular) {
		tst.Errorf("expected ErrSingular, got %v\n", err)
		return
	}
}

func TestInv01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Inv01. A times inv(A) equals identity")

	A := testmat(6)
	Ai, err := Inv(A)
	if err != nil {
		tst.Errorf("Inv failed: %v\n", err)
		return
	}

	I := Mul(A, Ai)
	chk.Float64(tst, "A inv(A) = I", 1e-12, maxAbsDiff(I, Eye(6)), 0)
}

func TestEigh01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Eigh01. reconstruction and ascending eigenvalues")

	H := hermmat(5)
	w, V, err := Eigh(H)
	if err != nil {
		tst.Errorf("Eigh failed: %v\n", err)
		return
	}

	// ascending
	for i := 1; i < len(w); i++ {
		if w[i] < w[i-1] {
			tst.Errorf("eigenvalues not ascending: w[%d]=%g < w[%d]=%g\n", i, w[i], i-1, w[i-1])
			return
		}
	}

	// H V = V diag(w)
	HV := Mul(H, V)
	W := V.Clone()
	for j := range w {
		W.ScaleCol(j, complex(w[j], 0))
	}
	chk.Float64(tst, "H V = V diag(w)", 1e-10, maxAbsDiff(HV, W), 0)

	// V unitary
	VV := MulHN(V, V)
	chk.Float64(tst, "Vh V = I", 1e-12, maxAbsDiff(VV, Eye(5)), 0)
}

func TestSqrtm01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Sqrtm01. R Rh recovers the Hermitian input")

	H := hermmat(7)
	R, err := SqrtmHerm(H)
	if err != nil {
		tst.Errorf("SqrtmHerm failed: %v\n", err)
		return
	}

	HH := MulNH(R, R)
	io.Pforan("max|R Rh - H| = %v\n", maxAbsDiff(HH, H))
	chk.Float64(tst, "R Rh = H", 1e-8*H.NormF(), maxAbsDiff(HH, H), 0)
}

func TestSVD01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("SVD01. economy decomposition reconstructs A")

	for _, driver := range []string{DriverGesvd, DriverGesdd} {
		A := New(6, 4)
		for i := 0; i < 6; i++ {
			for j := 0; j < 4; j++ {
				A.Set(i, j, complex(float64(i*j+1), float64(i-j)))
			}
		}
		A0 := A.Clone()

		U, s, Vh, err := SVDDestroy(A, driver)
		if err != nil {
			tst.Errorf("SVDDestroy(%s) failed: %v\n", driver, err)
			return
		}

		// descending singular values
		for i := 1; i < len(s); i++ {
			if s[i] > s[i-1] {
				tst.Errorf("%s: singular values not descending\n", driver)
				return
			}
		}

		// U diag(s) Vh = A
		W := U.Clone()
		for j := range s {
			W.ScaleCol(j, complex(s[j], 0))
		}
		R := Mul(W, Vh)
		chk.Float64(tst, io.Sf("%s reconstruction", driver), 1e-10, maxAbsDiff(R, A0), 0)
	}
}

func TestSVDS01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("SVDS01. top-k values match the full decomposition")

	A := New(8, 5)
	for i := 0; i < 8; i++ {
		for j := 0; j < 5; j++ {
			A.Set(i, j, complex(float64(i+2*j), float64(i-j)*0.5))
		}
	}

	_, sfull, _, err := SVDDestroy(A.Clone(), DriverGesvd)
	if err != nil {
		tst.Errorf("SVDDestroy failed: %v\n", err)
		return
	}

	U, s, err := SVDS(A, 3)
	if err != nil {
		tst.Errorf("SVDS failed: %v\n", err)
		return
	}
	chk.Array(tst, "top-3 singular values", 1e-9, s, sfull[:3])

	// left vectors orthonormal
	UU := MulHN(U, U)
	chk.Float64(tst, "Uh U = I", 1e-9, maxAbsDiff(UU, Eye(3)), 0)
}

func TestSignSqrt01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("SignSqrt01. sign-preserving square root")

	r := SignSqrt([]float64{4, -9, 0, 2.25})
	chk.Array(tst, "signsqrt", 1e-15, r, []float64{2, -3, 0, 1.5})
}
