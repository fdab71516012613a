// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package pivot

import (
	"testing"

	"github.com/cpmech/gosl/chk"
)

func verbose() {
	chk.Verbose = true
}

func twoElecPivot() (*Pivot, error) {
	left := &Electrode{
		Name: "Left", Pvt: []int{0, 1}, PvtDev: []int{0, 1},
		PvtDown: []int{0, 1}, Btd: []int{2}, AElec: []int{0, 1},
		Mu: 0.1, Eta: 1e-4, Bloch: [3]int{1, 1, 1}, Bulk: true, SemiInf: "-a",
	}
	right := &Electrode{
		Name: "Right", Pvt: []int{6, 7}, PvtDev: []int{6, 7},
		PvtDown: []int{6, 7}, Btd: []int{2}, AElec: []int{6, 7},
		Mu: -0.1, Eta: 1e-4, Bloch: [3]int{1, 1, 1}, Bulk: true, SemiInf: "+a",
	}
	return New([]int{0, 1, 2, 3, 4, 5, 6, 7}, []int{3, 2, 3}, []*Electrode{left, right})
}

func TestPivot01(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Pivot01. accessors")

	p, err := twoElecPivot()
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}

	chk.Int(tst, "Len", p.Len(), 8)
	btd, _ := p.BTD("")
	chk.Ints(tst, "btd", btd, []int{3, 2, 3})
	chk.Ints(tst, "cum", p.CumBTD(), []int{0, 3, 5, 8})

	pl, err := p.PivotElec("Left", true)
	if err != nil {
		tst.Errorf("PivotElec failed: %v\n", err)
		return
	}
	chk.Ints(tst, "Left in device", pl, []int{0, 1})

	mu, _ := p.Mu("Right")
	chk.Float64(tst, "mu", 1e-15, mu, -0.1)

	chk.Int(tst, "block of 4", p.BlockOf(4), 1)
	chk.Int(tst, "block of 7", p.BlockOf(7), 2)
}

func TestPivot02(tst *testing.T) {

	//verbose()
	chk.PrintTitle("Pivot02. validation errors")

	// block sizes must sum to the device size
	if _, err := New([]int{0, 1, 2}, []int{2, 2}, nil); err == nil {
		tst.Errorf("expected an error for inconsistent block sizes\n")
		return
	}

	// unknown electrode
	p, err := twoElecPivot()
	if err != nil {
		tst.Errorf("New failed: %v\n", err)
		return
	}
	if _, err = p.Elec("Top"); err == nil {
		tst.Errorf("expected an error for an unknown electrode\n")
		return
	}
}
