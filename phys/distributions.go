// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package phys implements the occupation distribution family used for
// energy broadening: pdf, occupation theta and entropy per distribution
package phys

import (
	"math"

	"github.com/cpmech/gosl/chk"
)

// Distribution bundles the probability density, the occupation
// theta(x) (the survival function) and the entropy of one distribution.
// The reduced variable is x = (E - mu) / kT.
type Distribution struct {
	Name    string
	PDF     func(x float64) float64
	Theta   func(x float64) float64
	Entropy func(x float64) float64 // nil when no closed form exists
}

// allocators holds all available distributions
var allocators = map[string]func() *Distribution{
	"fd":       newFermiDirac,
	"gaussian": newGaussian,
	"cauchy":   newCauchy,
	"mp":       newMethfesselPaxton,
	"cold":     newCold,
}

// Get returns a distribution by name: fd, gaussian, cauchy, mp or cold
func Get(name string) (*Distribution, error) {
	alloc, ok := allocators[name]
	if !ok {
		return nil, chk.Err("phys.Get: unknown distribution %q", name)
	}
	return alloc(), nil
}

// Names returns the available distribution names
func Names() []string {
	return []string{"fd", "gaussian", "cauchy", "mp", "cold"}
}

func newFermiDirac() *Distribution {
	theta := func(x float64) float64 {
		return 1 / (math.Exp(x) + 1)
	}
	return &Distribution{
		Name: "fd",
		PDF: func(x float64) float64 {
			// d/dx (1 - theta) = 1 / (4 cosh^2(x/2))
			c := math.Cosh(x / 2)
			return 1 / (4 * c * c)
		},
		Theta: theta,
		Entropy: func(x float64) float64 {
			t := theta(x)
			if t <= 0 || t >= 1 {
				return 0
			}
			return -(t*math.Log(t) + (1-t)*math.Log(1-t))
		},
	}
}

func newGaussian() *Distribution {
	pdf := func(x float64) float64 {
		return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
	}
	return &Distribution{
		Name: "gaussian",
		PDF:  pdf,
		Theta: func(x float64) float64 {
			return 0.5 * math.Erfc(x/math.Sqrt2)
		},
		// -int_-inf^x x' p(x') dx' = p(x)
		Entropy: pdf,
	}
}

func newCauchy() *Distribution {
	return &Distribution{
		Name: "cauchy",
		PDF: func(x float64) float64 {
			return 1 / (math.Pi * (1 + x*x))
		},
		Theta: func(x float64) float64 {
			return 0.5 - math.Atan(x)/math.Pi
		},
		// the entropy integral diverges for the Cauchy distribution
		Entropy: nil,
	}
}

// newMethfesselPaxton is the order-0 member of the Methfessel-Paxton
// family (the Hermite expansion truncated at n=0)
func newMethfesselPaxton() *Distribution {
	return &Distribution{
		Name: "mp",
		PDF: func(x float64) float64 {
			return math.Exp(-x*x) / math.Sqrt(math.Pi)
		},
		Theta: func(x float64) float64 {
			return 0.5 * math.Erfc(x)
		},
		Entropy: func(x float64) float64 {
			return math.Exp(-x*x) / (2 * math.Sqrt(math.Pi))
		},
	}
}

func newCold() *Distribution {
	// cold smearing with u = x + 1/sqrt(2)
	return &Distribution{
		Name: "cold",
		PDF: func(x float64) float64 {
			u := x + 1/math.Sqrt2
			return math.Exp(-u*u) * (2 + math.Sqrt2*x) / math.Sqrt(math.Pi)
		},
		Theta: func(x float64) float64 {
			u := x + 1/math.Sqrt2
			return 0.5 - math.Erf(u)/2 + math.Exp(-u*u)/math.Sqrt(2*math.Pi)
		},
		Entropy: func(x float64) float64 {
			u := x + 1/math.Sqrt2
			return u * math.Exp(-u*u) / math.Sqrt(2*math.Pi)
		},
	}
}
