/*
Copyright © 2026 the SwirlLM authors.
This file is part of SwirlLM.

SwirlLM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

SwirlLM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with SwirlLM.  If not, see <http://www.gnu.org/licenses/>.
*/

package swirllm

import (
	"encoding/gob"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
)

// SaveFields writes a snapshot of the given fields to w in gob format,
// suitable for restarting a run.
func SaveFields(w io.Writer, fields FieldMap) error {
	e := gob.NewEncoder(w)
	if err := e.Encode(map[string]*sparse.DenseArray(fields)); err != nil {
		return fmt.Errorf("swirllm.SaveFields: %w", err)
	}
	return nil
}

// LoadFields reads a snapshot previously written by SaveFields.
func LoadFields(r io.Reader) (FieldMap, error) {
	dec := gob.NewDecoder(r)
	var fields map[string]*sparse.DenseArray
	if err := dec.Decode(&fields); err != nil {
		return nil, fmt.Errorf("swirllm.LoadFields: %w", err)
	}
	// Restore the unexported index bookkeeping gob does not carry.
	for _, f := range fields {
		f.Fix()
	}
	return FieldMap(fields), nil
}

// WriteNetCDF writes the given fields to ff as a NetCDF file with
// dimensions x, y and z (halos included). Variables are written in
// sorted name order so output files are reproducible.
func WriteNetCDF(ff *os.File, cfg *Config, fields FieldMap) error {
	shape := cfg.fieldShape()
	h := cdf.NewHeader([]string{"x", "y", "z"}, shape)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		got := fields[name].Shape
		if len(got) != 3 || got[0] != shape[0] || got[1] != shape[1] || got[2] != shape[2] {
			return &ShapeMismatchError{Name: name, Got: got, Want: shape}
		}
		h.AddVariable(name, []string{"x", "y", "z"}, []float32{0})
		h.AddAttribute(name, "halo_width", []int32{int32(cfg.HaloWidth)})
	}
	h.Define()
	f, err := cdf.Create(ff, h) // writes the header to ff
	if err != nil {
		return fmt.Errorf("swirllm.WriteNetCDF: %w", err)
	}
	for _, name := range names {
		if err := writeNCF(f, name, fields[name]); err != nil {
			return err
		}
	}
	return nil
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray) error {
	data32 := make([]float32, len(data.Elements))
	for i, e := range data.Elements {
		data32[i] = float32(e)
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	if _, err := w.Write(data32); err != nil {
		return fmt.Errorf("swirllm.WriteNetCDF: variable %s: %w", name, err)
	}
	return nil
}
