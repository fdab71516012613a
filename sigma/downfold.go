// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sigma

import (
	"github.com/cpmech/gosl/chk"

	"github.com/hakimzenata/gobtd/ham"
	"github.com/hakimzenata/gobtd/pivot"
	"github.com/hakimzenata/gobtd/zmat"
)

// DownfoldSelfEnergy refines PivotSelfEnergy: the electrode self-energy
// computed on the surface block is reduced by a block-tridiagonal Schur
// chain onto the single device block the electrode couples to.
type DownfoldSelfEnergy struct {
	*PivotSelfEnergy

	hDown ham.Hamiltonian // device Hamiltonian restricted to the downfold region
	hElec ham.Hamiltonian // bulk electrode Hamiltonian

	bulk  bool
	bloch [3]int
	eta   float64

	elecIdx []int // surface-block orbital positions within the downfold sub-geometry
	devIdx  []int // pivot-down orbital positions within the sub-geometry, surface first
	cum     []int // cumulated downfold block offsets

	// memoized preparation
	prepared bool
	pE       complex128
	pK       []float64
	seH      *zmat.Matrix
}

// NewDownfoldSelfEnergy builds the downfolding operator. Hdevice is the
// full device Hamiltonian; Helec the bulk electrode Hamiltonian used for
// the surface-block replacement. Bulk flag, Bloch factors and the
// broadening are taken from the pivot metadata.
func NewDownfoldSelfEnergy(name string, prov Provider, pv *pivot.Pivot, Hdevice, Helec ham.Hamiltonian) (o *DownfoldSelfEnergy, err error) {
	pse, err := NewPivotSelfEnergy(name, prov, pv)
	if err != nil {
		return nil, err
	}
	e, _ := pv.Elec(name)
	if len(pse.Btd) < 2 {
		return nil, chk.Err("sigma.NewDownfoldSelfEnergy: electrode %q needs at least 2 downfold blocks, has %d", name, len(pse.Btd))
	}
	if last := pse.Btd[len(pse.Btd)-1]; last != len(pse.PvtDev) {
		return nil, chk.Err("sigma.NewDownfoldSelfEnergy: electrode %q last downfold block has %d orbitals but couples to %d device orbitals", name, last, len(pse.PvtDev))
	}

	geom := Hdevice.Geometry()
	downAtoms := geom.O2A(pse.PvtDown, true)
	downOrbs := geom.A2O(downAtoms)
	hDown := Hdevice.Sub(downAtoms)
	subGeom := hDown.Geometry()

	// surface-block orbitals within the sub-geometry
	aPos := indicesOf(downAtoms, e.AElec)
	elecIdx := subGeom.A2O(aPos)
	if Helec.Geometry().No() != len(elecIdx) {
		return nil, chk.Err("sigma.NewDownfoldSelfEnergy: electrode %q bulk Hamiltonian has %d orbitals but the surface block has %d", name, Helec.Geometry().No(), len(elecIdx))
	}
	if prov.Len() != len(elecIdx) {
		return nil, chk.Err("sigma.NewDownfoldSelfEnergy: electrode %q provider yields %d x %d but the surface block has %d orbitals", name, prov.Len(), prov.Len(), len(elecIdx))
	}

	// pivot-down orbitals within the sub-geometry, preserving the
	// surface-first ordering of the downfold chain
	devIdx := indicesOf(downOrbs, pse.PvtDown)

	cum := make([]int, len(pse.Btd)+1)
	for i, b := range pse.Btd {
		cum[i+1] = cum[i] + b
	}

	return &DownfoldSelfEnergy{
		PivotSelfEnergy: pse,
		hDown:           hDown,
		hElec:           Helec,
		bulk:            e.Bulk,
		bloch:           e.Bloch,
		eta:             e.Eta,
		elecIdx:         elecIdx,
		devIdx:          devIdx,
		cum:             cum,
	}, nil
}

// indicesOf returns the position of each needle inside haystack
func indicesOf(haystack, needles []int) (pos []int) {
	where := make(map[int]int, len(haystack))
	for i, v := range haystack {
		where[v] = i
	}
	pos = make([]int, 0, len(needles))
	for _, v := range needles {
		i, ok := where[v]
		if !ok {
			chk.Panic("sigma.indicesOf: element %d not found", v)
		}
		pos = append(pos, i)
	}
	return
}

// prepare assembles the downfold-region matrix E S - H and, with the
// bulk flag, replaces the surface sub-block by the bulk expression
// (shifted by +i eta when E is real, to keep the surface retarded)
func (o *DownfoldSelfEnergy) prepare(E complex128, k []float64) {
	if o.prepared && o.pE == E && ekEqual(o.pE, o.pK, E, k) {
		return
	}
	S := o.hDown.Sk(k).ToDense()
	H := o.hDown.Hk(k).ToDense()
	S.Scale(E)
	S.SubM(H)
	seH := S
	if o.bulk {
		Ebulk := E
		if imag(E) == 0 {
			Ebulk = E + complex(0, o.eta)
		}
		Se := o.hElec.Sk(k).ToDense()
		He := o.hElec.Hk(k).ToDense()
		Se.Scale(Ebulk)
		Se.SubM(He)
		for a, i := range o.elecIdx {
			for b, j := range o.elecIdx {
				seH.Set(i, j, Se.Get(a, b))
			}
		}
	}
	o.seH = seH
	o.pE = E
	o.pK = append([]float64{}, k...)
	o.prepared = true
}

// SelfEnergy returns the downfolded self-energy on the device-adjacent
// block by Schur reduction along the downfold chain
func (o *DownfoldSelfEnergy) SelfEnergy(E complex128, k []float64) (Mr *zmat.Matrix, err error) {
	o.prepare(E, k)

	var se *zmat.Matrix
	if o.bloch[0] > 1 || o.bloch[1] > 1 || o.bloch[2] > 1 {
		be, ok := o.prov.(BlochExpander)
		if !ok {
			return nil, chk.Err("sigma.DownfoldSelfEnergy: electrode %q has Bloch factors %v but the provider cannot unfold", o.Name, o.bloch)
		}
		se, err = be.BlochSelfEnergy(E, k, o.bloch)
	} else {
		se, err = o.prov.SelfEnergy(E, k)
	}
	if err != nil {
		return nil, err
	}

	M := o.seH.Clone()
	M.Scatter(o.elecIdx, o.elecIdx, se, -1)

	nb := len(o.Btd)
	pvtI := o.devIdx[o.cum[0]:o.cum[1]]
	for b := 0; b < nb-1; b++ {
		pvtI1 := o.devIdx[o.cum[b+1]:o.cum[b+2]]
		Mbb := M.Take(pvtI, pvtI)
		if Mr != nil {
			Mbb.SubM(Mr)
		}
		X, err := zmat.Solve(Mbb, M.Take(pvtI, pvtI1), true)
		if err != nil {
			return nil, chk.Err("sigma.DownfoldSelfEnergy: electrode %q downfold block %d at E=%v k=%v: %v", o.Name, b, E, k, err)
		}
		Mr = zmat.Mul(M.Take(pvtI1, pvtI), X)
		pvtI = pvtI1
	}
	return Mr, nil
}

// ScatteringMatrix returns the broadening of the downfolded self-energy
func (o *DownfoldSelfEnergy) ScatteringMatrix(E complex128, k []float64) (*zmat.Matrix, error) {
	se, err := o.SelfEnergy(E, k)
	if err != nil {
		return nil, err
	}
	return Se2Scat(se), nil
}

// Reset drops the memoized preparation
func (o *DownfoldSelfEnergy) Reset() {
	o.prepared = false
	o.seH = nil
}
