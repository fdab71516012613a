// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Gobtd -- block-tri-diagonal Green function engine
//
// The command line front-end drives the engine on a wide-band-limit
// chain model, which is handy for quick transmission scans and for
// validating electrode setups before running real devices.
package main

import (
	"os"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
	"github.com/urfave/cli/v2"

	"github.com/hakimzenata/gobtd/green"
	"github.com/hakimzenata/gobtd/ham"
	"github.com/hakimzenata/gobtd/inp"
	"github.com/hakimzenata/gobtd/pivot"
	"github.com/hakimzenata/gobtd/sigma"
	"github.com/hakimzenata/gobtd/zmat"
)

func main() {
	app := &cli.App{
		Name:  "gobtd",
		Usage: "block-tri-diagonal Green function calculations",
		Commands: []*cli.Command{
			{
				Name:  "chain",
				Usage: "transmission of a 1-D chain with wide-band electrodes",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "blocks", Value: 3, Usage: "number of BTD blocks"},
					&cli.IntFlag{Name: "size", Value: 4, Usage: "orbitals per block"},
					&cli.Float64Flag{Name: "hopping", Value: -1, Usage: "nearest-neighbor hopping"},
					&cli.Float64Flag{Name: "onsite", Value: 0, Usage: "onsite energy"},
					&cli.Float64Flag{Name: "gamma", Value: 0.5, Usage: "wide-band coupling strength"},
					&cli.Float64Flag{Name: "emin", Value: -2},
					&cli.Float64Flag{Name: "emax", Value: 2},
					&cli.IntFlag{Name: "ne", Value: 41, Usage: "number of energy points"},
				},
				Action: chainCmd,
			},
			{
				Name:  "states",
				Usage: "scattering-state DOS of the chain model at one energy",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "blocks", Value: 3},
					&cli.IntFlag{Name: "size", Value: 4},
					&cli.Float64Flag{Name: "hopping", Value: -1},
					&cli.Float64Flag{Name: "onsite", Value: 0},
					&cli.Float64Flag{Name: "gamma", Value: 0.5},
					&cli.Float64Flag{Name: "energy", Value: 0.1},
					&cli.StringFlag{Name: "method", Value: "svd", Usage: "svd, full or propagate"},
					&cli.Float64Flag{Name: "cutoff", Value: 0},
				},
				Action: statesCmd,
			},
			{
				Name:      "config",
				Usage:     "parse an fdf file and echo the electrode setup",
				ArgsUsage: "RUN.fdf",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "prefix", Value: "TBT", Usage: "TBT or TS"},
				},
				Action: configCmd,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		io.PfRed("ERROR: %v\n", err)
		os.Exit(1)
	}
}

// buildChain creates the wide-band chain device: nb blocks of bs
// orbitals each, single-orbital electrodes at both ends
func buildChain(nb, bs int, hop, onsite, gam float64) (*green.DeviceGreen, error) {
	n := nb * bs
	opa := make([]int, n)
	btd := make([]int, nb)
	pvt := make([]int, n)
	for i := range opa {
		opa[i] = 1
		pvt[i] = i
	}
	for b := range btd {
		btd[b] = bs
	}

	tb := ham.NewTightBinding(ham.NewGeometry(opa), [3]int{1, 1, 1})
	for i := 0; i < n; i++ {
		tb.SetHerm(i, i, [3]int{}, complex(onsite, 0), 1)
		if i+1 < n {
			tb.SetHerm(i, i+1, [3]int{}, complex(hop, 0), 0)
		}
	}

	elecs := []*pivot.Electrode{
		{Name: "Left", Pvt: []int{0}, PvtDev: []int{0}, AElec: []int{0},
			Bloch: [3]int{1, 1, 1}, SemiInf: "-a"},
		{Name: "Right", Pvt: []int{n - 1}, PvtDev: []int{n - 1}, AElec: []int{n - 1},
			Bloch: [3]int{1, 1, 1}, SemiInf: "+a"},
	}
	pv, err := pivot.New(pvt, btd, elecs)
	if err != nil {
		return nil, err
	}

	// wide-band limit: Sigma = -i gamma / 2, energy independent
	wbl := func() sigma.Provider {
		return &sigma.FuncProvider{N: 1, Fn: func(E complex128, k []float64) (*zmat.Matrix, error) {
			se := zmat.New(1, 1)
			se.Set(0, 0, complex(0, -gam/2))
			return se, nil
		}}
	}
	left, err := sigma.NewPivotSelfEnergy("Left", wbl(), pv)
	if err != nil {
		return nil, err
	}
	right, err := sigma.NewPivotSelfEnergy("Right", wbl(), pv)
	if err != nil {
		return nil, err
	}
	return green.New(tb, []sigma.Electrode{left, right}, pv)
}

func chainCmd(c *cli.Context) error {
	dg, err := buildChain(c.Int("blocks"), c.Int("size"), c.Float64("hopping"), c.Float64("onsite"), c.Float64("gamma"))
	if err != nil {
		return err
	}
	emin, emax := c.Float64("emin"), c.Float64("emax")
	ne := c.Int("ne")
	if ne < 2 {
		return chk.Err("ne must be at least 2, got %d", ne)
	}

	io.Pf("%12s%15s\n", "E [eV]", "T(E)")
	for i := 0; i < ne; i++ {
		E := complex(emin+(emax-emin)*float64(i)/float64(ne-1), 0)
		state, err := dg.ScatteringState("Left", E, nil, green.StateOptions{})
		if err != nil {
			return err
		}
		ch, err := dg.Eigenchannel(state, []string{"Right"})
		if err != nil {
			return err
		}
		io.Pf("%12.4f%15.8f\n", real(E), ch.SumDOS())
		dg.Reset()
	}
	return nil
}

func statesCmd(c *cli.Context) error {
	dg, err := buildChain(c.Int("blocks"), c.Int("size"), c.Float64("hopping"), c.Float64("onsite"), c.Float64("gamma"))
	if err != nil {
		return err
	}
	E := complex(c.Float64("energy"), 0)
	state, err := dg.ScatteringState("Left", E, nil, green.StateOptions{
		Method: c.String("method"),
		Cutoff: c.Float64("cutoff"),
	})
	if err != nil {
		return err
	}
	io.Pf("scattering states from %q at E=%v (method=%s)\n", state.Info.Elec, real(E), state.Info.Method)
	for i, dos := range state.DOS {
		io.Pf("  state %2d: DOS = %13.6e\n", i, dos)
	}
	return nil
}

func configCmd(c *cli.Context) error {
	if c.NArg() < 1 {
		return chk.Err("please provide an fdf file. Ex.: gobtd config RUN.fdf")
	}
	cfg, err := inp.ReadFdf(c.Args().First(), c.String("prefix"))
	if err != nil {
		return err
	}
	io.Pf("SystemLabel: %s\n", cfg.SystemLabel)
	io.Pf("device HS:   %s\n", cfg.HS)
	io.Pf("default eta: %g eV\n", cfg.Eta)
	for _, e := range cfg.Elecs {
		io.Pf("electrode %q\n", e.Name)
		io.Pf("  HS:       %s\n", e.HS)
		io.Pf("  semi-inf: %s\n", e.SemiInf)
		io.Pf("  bloch:    %v\n", e.Bloch)
		io.Pf("  bulk:     %v\n", e.Bulk)
		io.Pf("  eta:      %g eV\n", e.Eta)
	}
	if fn, err := cfg.FindOutput("."); err == nil {
		io.Pf("output:      %s\n", fn)
	}
	return nil
}
