// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package pivot holds the device pivoting metadata: the orbital
// permutation, the BTD block partition and the per-electrode index sets
package pivot

import (
	"encoding/json"
	"os"

	"github.com/cpmech/gosl/chk"
)

// Electrode holds the pivoting data of one electrode
type Electrode struct {
	Name    string  `json:"name"`    // electrode name
	Pvt     []int   `json:"pvt"`     // electrode orbitals in the full orbital space
	PvtDev  []int   `json:"pvtdev"`  // electrode orbitals relative to the pivoted device region
	PvtDown []int   `json:"pvtdown"` // downfolding-region orbitals in the full space; surface first
	Btd     []int   `json:"btd"`     // BTD block sizes of the downfolding region
	AElec   []int   `json:"aelec"`   // atoms of the electrode surface layer
	Mu      float64 `json:"mu"`      // chemical potential shift
	Eta     float64 `json:"eta"`     // broadening
	Bloch   [3]int  `json:"bloch"`   // Bloch expansion factors
	Bulk    bool    `json:"bulk"`    // use the bulk expression at the surface block
	SemiInf string  `json:"semiinf"` // semi-infinite direction: one of -a,+a,-b,+b,-c,+c
}

// Pivot is the immutable pivoting metadata of one problem
type Pivot struct {
	pvt    []int        // device permutation: position => original orbital
	btd    []int        // device BTD block sizes
	cum    []int        // cumulated block offsets; len(btd)+1
	elecs  []*Electrode // electrodes
	byName map[string]int
}

// New validates and returns the pivot metadata
func New(pvt, btd []int, elecs []*Electrode) (o *Pivot, err error) {
	o = &Pivot{
		pvt:    append([]int{}, pvt...),
		btd:    append([]int{}, btd...),
		cum:    make([]int, len(btd)+1),
		elecs:  elecs,
		byName: make(map[string]int),
	}
	for i, b := range btd {
		if b < 1 {
			return nil, chk.Err("pivot.New: block sizes must be positive, btd[%d]=%d", i, b)
		}
		o.cum[i+1] = o.cum[i] + b
	}
	if o.cum[len(btd)] != len(pvt) {
		return nil, chk.Err("pivot.New: block sizes sum to %d but the device has %d orbitals", o.cum[len(btd)], len(pvt))
	}
	nd := len(pvt)
	for _, e := range elecs {
		if _, ok := o.byName[e.Name]; ok {
			return nil, chk.Err("pivot.New: duplicate electrode name %q", e.Name)
		}
		o.byName[e.Name] = len(o.byName)
		if len(e.Pvt) != len(e.PvtDev) {
			return nil, chk.Err("pivot.New: electrode %q has %d full-space but %d device indices", e.Name, len(e.Pvt), len(e.PvtDev))
		}
		for _, i := range e.PvtDev {
			if i < 0 || i >= nd {
				return nil, chk.Err("pivot.New: electrode %q device index %d out of range [0,%d)", e.Name, i, nd)
			}
		}
		ndown := 0
		for _, b := range e.Btd {
			ndown += b
		}
		if len(e.Btd) > 0 && ndown != len(e.PvtDown) {
			return nil, chk.Err("pivot.New: electrode %q downfold blocks sum to %d but the region has %d orbitals", e.Name, ndown, len(e.PvtDown))
		}
	}
	return o, nil
}

// Read loads pivot metadata from a JSON file
func Read(fn string) (o *Pivot, err error) {
	b, err := os.ReadFile(fn)
	if err != nil {
		return nil, chk.Err("pivot.Read: cannot read %q: %v", fn, err)
	}
	var raw struct {
		Pvt   []int        `json:"pvt"`
		Btd   []int        `json:"btd"`
		Elecs []*Electrode `json:"elecs"`
	}
	if err = json.Unmarshal(b, &raw); err != nil {
		return nil, chk.Err("pivot.Read: cannot parse %q: %v", fn, err)
	}
	return New(raw.Pvt, raw.Btd, raw.Elecs)
}

// Len returns the number of device orbitals
func (o *Pivot) Len() int { return len(o.pvt) }

// Pivot returns the device permutation: position => original orbital
func (o *Pivot) Pivot() []int { return o.pvt }

// BTD returns the device block sizes for elec == "", otherwise the
// downfolding block sizes of the named electrode
func (o *Pivot) BTD(elec string) ([]int, error) {
	if elec == "" {
		return o.btd, nil
	}
	e, err := o.Elec(elec)
	if err != nil {
		return nil, err
	}
	return e.Btd, nil
}

// CumBTD returns the cumulated device block offsets (leading zero)
func (o *Pivot) CumBTD() []int { return o.cum }

// Elec returns the named electrode
func (o *Pivot) Elec(name string) (*Electrode, error) {
	idx, ok := o.byName[name]
	if !ok {
		return nil, chk.Err("pivot: unknown electrode %q", name)
	}
	return o.elecs[idx], nil
}

// Elecs returns all electrodes in declaration order
func (o *Pivot) Elecs() []*Electrode { return o.elecs }

// PivotElec returns the orbital indices of the electrode; with inDevice
// they are relative to the pivoted device region
func (o *Pivot) PivotElec(name string, inDevice bool) ([]int, error) {
	e, err := o.Elec(name)
	if err != nil {
		return nil, err
	}
	if inDevice {
		return e.PvtDev, nil
	}
	return e.Pvt, nil
}

// PivotDown returns the downfolding-region orbitals, surface first
func (o *Pivot) PivotDown(name string) ([]int, error) {
	e, err := o.Elec(name)
	if err != nil {
		return nil, err
	}
	return e.PvtDown, nil
}

// AElec returns the atoms of the electrode surface layer
func (o *Pivot) AElec(name string) ([]int, error) {
	e, err := o.Elec(name)
	if err != nil {
		return nil, err
	}
	return e.AElec, nil
}

// Mu returns the chemical potential shift of the electrode
func (o *Pivot) Mu(name string) (float64, error) {
	e, err := o.Elec(name)
	if err != nil {
		return 0, err
	}
	return e.Mu, nil
}

// Eta returns the broadening of the electrode
func (o *Pivot) Eta(name string) (float64, error) {
	e, err := o.Elec(name)
	if err != nil {
		return 0, err
	}
	return e.Eta, nil
}

// BlockOf returns the device block holding the pivoted position i
func (o *Pivot) BlockOf(i int) int {
	for b := 0; b < len(o.btd); b++ {
		if i < o.cum[b+1] {
			return b
		}
	}
	chk.Panic("pivot.BlockOf: position %d out of range [0,%d)", i, o.Len())
	return -1
}
