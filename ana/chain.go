// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package ana implements analytical reference solutions used to verify
// the numerical engine
package ana

import (
	"math"

	"github.com/hakimzenata/gobtd/zmat"
)

// UniformChain is a finite tight-binding chain with uniform onsite
// energy and nearest-neighbor hopping and an orthogonal basis. Its
// eigenmodes are known in closed form:
//
//	lambda_m = e0 + 2 t cos(m pi/(N+1))      m = 1..N
//	psi_m(i) = sqrt(2/(N+1)) sin(m pi i/(N+1))
type UniformChain struct {
	N      int     // number of sites
	Onsite float64 // onsite energy e0
	Hop    float64 // nearest-neighbor hopping t
}

// Eigenvalue returns the m-th eigenvalue (1-based)
func (o UniformChain) Eigenvalue(m int) float64 {
	return o.Onsite + 2*o.Hop*math.Cos(float64(m)*math.Pi/float64(o.N+1))
}

// Eigenvector returns the amplitude of mode m at site i (both 1-based)
func (o UniformChain) Eigenvector(m, i int) float64 {
	f := math.Sqrt(2 / float64(o.N+1))
	return f * math.Sin(float64(m)*float64(i)*math.Pi/float64(o.N+1))
}

// Green returns the resolvent (E - H)^-1 of the isolated chain by the
// spectral representation
func (o UniformChain) Green(E complex128) (G *zmat.Matrix) {
	G = zmat.New(o.N, o.N)
	for m := 1; m <= o.N; m++ {
		d := E - complex(o.Eigenvalue(m), 0)
		for i := 1; i <= o.N; i++ {
			pmi := o.Eigenvector(m, i)
			for j := 1; j <= o.N; j++ {
				G.Add(i-1, j-1, complex(pmi*o.Eigenvector(m, j), 0)/d)
			}
		}
	}
	return
}

// DOS returns the density of states -Im Tr G / pi at E
func (o UniformChain) DOS(E complex128) (res float64) {
	for m := 1; m <= o.N; m++ {
		res -= imag(1/(E-complex(o.Eigenvalue(m), 0))) / math.Pi
	}
	return
}
