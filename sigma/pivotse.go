// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sigma

import (
	"github.com/hakimzenata/gobtd/pivot"
	"github.com/hakimzenata/gobtd/zmat"
)

// PivotSelfEnergy wraps a self-energy provider together with the
// pivoting indices of its electrode
type PivotSelfEnergy struct {
	Name string // electrode name

	// pivoting indices of the electrode
	Pvt     []int // in the full orbital space
	PvtDev  []int // relative to the pivoted device region
	PvtDown []int // downfolding region, surface first, full space
	Btd     []int // BTD partition of the downfolding region

	prov Provider
}

// NewPivotSelfEnergy builds the facade from the pivot metadata
func NewPivotSelfEnergy(name string, prov Provider, pv *pivot.Pivot) (o *PivotSelfEnergy, err error) {
	e, err := pv.Elec(name)
	if err != nil {
		return nil, err
	}
	return &PivotSelfEnergy{
		Name:    name,
		Pvt:     e.Pvt,
		PvtDev:  e.PvtDev,
		PvtDown: e.PvtDown,
		Btd:     e.Btd,
		prov:    prov,
	}, nil
}

// Len returns the number of device orbitals the electrode couples to
func (o *PivotSelfEnergy) Len() int { return len(o.PvtDev) }

// Label returns the electrode name
func (o *PivotSelfEnergy) Label() string { return o.Name }

// DeviceIndices returns the electrode orbitals relative to the pivoted
// device region
func (o *PivotSelfEnergy) DeviceIndices() []int { return o.PvtDev }

// SelfEnergy delegates to the wrapped provider
func (o *PivotSelfEnergy) SelfEnergy(E complex128, k []float64) (*zmat.Matrix, error) {
	return o.prov.SelfEnergy(E, k)
}

// ScatteringMatrix returns the broadening matrix, delegating when the
// provider computes it itself and deriving i(S - Sh) otherwise
func (o *PivotSelfEnergy) ScatteringMatrix(E complex128, k []float64) (*zmat.Matrix, error) {
	if sc, ok := o.prov.(Scatterer); ok {
		return sc.ScatteringMatrix(E, k)
	}
	se, err := o.SelfEnergy(E, k)
	if err != nil {
		return nil, err
	}
	return Se2Scat(se), nil
}
