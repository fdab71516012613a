// Copyright 2026 The Gobtd Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package inp implements the input data read from fdf configuration
// files: system label, Hamiltonian paths and electrode blocks
package inp

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/cpmech/gosl/chk"
	"github.com/cpmech/gosl/io"
)

// Elec holds the configuration of one electrode
type Elec struct {
	Name    string // electrode name
	HS      string // path to the electrode Hamiltonian
	SemiInf string // semi-infinite direction, normalized to -a,+a,-b,+b,-c,+c
	Bloch   [3]int // Bloch expansion factors
	Bulk    bool   // use the bulk expression at the surface block
	Eta     float64 // broadening in eV
}

// Config holds all data read from an fdf file
type Config struct {
	SystemLabel string  // defaults to siesta
	HS          string  // device Hamiltonian path
	Eta         float64 // default broadening in eV
	Elecs       []*Elec // electrodes in declaration order
}

// default broadening when neither TS.Elecs.Eta nor TBT.Elecs.Eta is set
const defaultEta = 1e-4

// energy unit conversion factors to eV
var energyUnits = map[string]float64{
	"ev":  1.0,
	"mev": 1e-3,
	"ry":  13.605693122994,
	"mry": 13.605693122994e-3,
	"k":   8.617333262e-5,
}

// ParseEnergy converts a value with an optional unit suffix to eV
func ParseEnergy(val string) (float64, error) {
	fields := strings.Fields(val)
	if len(fields) == 0 {
		return 0, chk.Err("inp.ParseEnergy: empty energy value")
	}
	x, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, chk.Err("inp.ParseEnergy: cannot parse %q as a number", fields[0])
	}
	if len(fields) == 1 {
		return x, nil
	}
	f, ok := energyUnits[strings.ToLower(fields[1])]
	if !ok {
		return 0, chk.Err("inp.ParseEnergy: unknown energy unit %q", fields[1])
	}
	return x * f, nil
}

// fdf holds the raw parsed file: scalar keys and blocks, lower-cased
type fdf struct {
	keys   map[string]string
	blocks map[string][]string
	order  []string // block names in file order
}

// parseFdf reads an fdf file into keys and blocks
func parseFdf(fn string) (*fdf, error) {
	buf, err := io.ReadFile(fn)
	if err != nil {
		return nil, chk.Err("inp.parseFdf: cannot read %q: %v", fn, err)
	}
	o := &fdf{keys: make(map[string]string), blocks: make(map[string][]string)}
	var block string
	for _, line := range strings.Split(string(buf), "\n") {
		if i := strings.IndexByte(line, '#'); i >= 0 {
			line = line[:i]
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		low := strings.ToLower(line)
		switch {
		case strings.HasPrefix(low, "%block"):
			if block != "" {
				return nil, chk.Err("inp.parseFdf: nested %%block inside %q", block)
			}
			fields := strings.Fields(line)
			if len(fields) < 2 {
				return nil, chk.Err("inp.parseFdf: %%block without a name")
			}
			block = strings.ToLower(fields[1])
			o.order = append(o.order, block)
		case strings.HasPrefix(low, "%endblock"):
			if block == "" {
				return nil, chk.Err("inp.parseFdf: %%endblock without %%block")
			}
			block = ""
		case block != "":
			o.blocks[block] = append(o.blocks[block], line)
		default:
			fields := strings.SplitN(line, " ", 2)
			key := strings.ToLower(fields[0])
			val := ""
			if len(fields) > 1 {
				val = strings.TrimSpace(fields[1])
			}
			o.keys[key] = val
		}
	}
	if block != "" {
		return nil, chk.Err("inp.parseFdf: unterminated %%block %q", block)
	}
	return o, nil
}

// get returns a scalar key with a default
func (o *fdf) get(key, def string) string {
	if v, ok := o.keys[strings.ToLower(key)]; ok {
		return v
	}
	return def
}

// blockLines splits the lines of a block into key/value pairs
func blockLines(lines []string) map[string]string {
	dic := make(map[string]string)
	for _, line := range lines {
		fields := strings.SplitN(line, " ", 2)
		key := strings.ToLower(fields[0])
		val := ""
		if len(fields) > 1 {
			val = strings.TrimSpace(fields[1])
		}
		dic[key] = val
	}
	return dic
}

// normSemiInf normalizes a semi-infinite direction: a1/a2/a3 map to
// a/b/c and a missing sign is taken as +
func normSemiInf(val string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(val))
	if v == "" {
		return "", chk.Err("inp: empty semi-inf-direction")
	}
	sign := "+"
	switch v[0] {
	case '+', '-':
		sign = string(v[0])
		v = v[1:]
	}
	switch v {
	case "a1":
		v = "a"
	case "a2":
		v = "b"
	case "a3":
		v = "c"
	}
	if v != "a" && v != "b" && v != "c" {
		return "", chk.Err("inp: semi-inf-direction %q is not a recursive direction (+-a1/a2/a3)", val)
	}
	return sign + v, nil
}

func parseBool(val string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(val)) {
	case "true", "t", "yes", "1", ".true.":
		return true
	case "false", "f", "no", "0", ".false.":
		return false
	}
	return def
}

// ReadFdf parses the configuration. With prefix TBT, TBT keys are
// preferred with TS fallbacks; with prefix TS, only TS keys are used.
func ReadFdf(fn, prefix string) (cfg *Config, err error) {
	prefix = strings.ToUpper(prefix)
	if prefix != "TBT" && prefix != "TS" {
		return nil, chk.Err("inp.ReadFdf: prefix must be TBT or TS, got %q", prefix)
	}
	raw, err := parseFdf(fn)
	if err != nil {
		return nil, err
	}
	isTbt := prefix == "TBT"

	cfg = &Config{SystemLabel: raw.get("SystemLabel", "siesta")}
	cfg.HS = raw.get("TBT.HS", cfg.SystemLabel+".TSHS")

	// global default broadening, TBT preferred over TS
	cfg.Eta = defaultEta
	if v := raw.get("TS.Elecs.Eta", ""); v != "" {
		if cfg.Eta, err = ParseEnergy(v); err != nil {
			return nil, err
		}
	}
	if isTbt {
		if v := raw.get("TBT.Elecs.Eta", ""); v != "" {
			if cfg.Eta, err = ParseEnergy(v); err != nil {
				return nil, err
			}
		}
	}

	// discover electrodes from the block names
	seen := make(map[string]bool)
	for _, name := range raw.order {
		var elec string
		switch {
		case strings.HasPrefix(name, "ts.elec."):
			elec = strings.TrimPrefix(name, "ts.elec.")
		case isTbt && strings.HasPrefix(name, "tbt.elec."):
			elec = strings.TrimPrefix(name, "tbt.elec.")
		default:
			continue
		}
		if seen[elec] {
			continue
		}
		seen[elec] = true
		e, err := readElectrode(raw, elec, isTbt, cfg.Eta)
		if err != nil {
			return nil, err
		}
		cfg.Elecs = append(cfg.Elecs, e)
	}
	return cfg, nil
}

// readElectrode merges the TS and (when preferred) TBT blocks of one
// electrode into its configuration
func readElectrode(raw *fdf, name string, isTbt bool, etaDefault float64) (e *Elec, err error) {
	dic := blockLines(raw.blocks["ts.elec."+name])
	if isTbt {
		for k, v := range blockLines(raw.blocks["tbt.elec."+name]) {
			dic[k] = v
		}
	}

	get := func(keys ...string) string {
		for _, k := range keys {
			// the tbt.-prefixed in-block variant wins
			if isTbt {
				if v, ok := dic["tbt."+k]; ok {
					return v
				}
			}
			if v, ok := dic[k]; ok {
				return v
			}
		}
		return ""
	}

	e = &Elec{Name: name, Bloch: [3]int{1, 1, 1}, Bulk: true, Eta: etaDefault}

	e.HS = get("hs", "tshs")
	if e.HS == "" {
		return nil, chk.Err("inp: electrode %q has no HS file", name)
	}

	si := get("semi-inf-direction", "semi-inf-dir", "semi-inf")
	if si == "" {
		return nil, chk.Err("inp: electrode %q has no semi-inf-direction", name)
	}
	if e.SemiInf, err = normSemiInf(si); err != nil {
		return nil, err
	}

	// bloch factors: per-axis keys first, single-line key overrides
	for i, sufs := range [][]string{{"bloch-a", "bloch-a1"}, {"bloch-b", "bloch-a2"}, {"bloch-c", "bloch-a3"}} {
		if v := get(sufs...); v != "" {
			if e.Bloch[i], err = strconv.Atoi(strings.TrimSpace(v)); err != nil {
				return nil, chk.Err("inp: electrode %q bad bloch factor %q", name, v)
			}
		}
	}
	if v := get("bloch"); v != "" {
		fields := strings.Fields(v)
		if len(fields) != 3 {
			return nil, chk.Err("inp: electrode %q bloch needs 3 factors, got %q", name, v)
		}
		for i, f := range fields {
			if e.Bloch[i], err = strconv.Atoi(f); err != nil {
				return nil, chk.Err("inp: electrode %q bad bloch factor %q", name, f)
			}
		}
	}

	if v, ok := dic["bulk"]; ok {
		e.Bulk = parseBool(v, true)
	}
	if v := get("eta"); v != "" {
		if e.Eta, err = ParseEnergy(v); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// FindOutput searches for the transport output file of the system in
// dir, in the order TBT.nc, TBT_UP.nc, TBT_DN.nc. Missing is fatal for
// the pipeline, hence an error.
func (o *Config) FindOutput(dir string) (string, error) {
	for _, end := range []string{"TBT.nc", "TBT_UP.nc", "TBT_DN.nc"} {
		fn := filepath.Join(dir, o.SystemLabel+"."+end)
		if _, err := os.Stat(fn); err == nil {
			return fn, nil
		}
	}
	return "", chk.Err("inp: cannot find %s.[TBT|TBT_UP|TBT_DN].nc in %q", o.SystemLabel, dir)
}
