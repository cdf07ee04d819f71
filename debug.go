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
	"fmt"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/ctessum/sparse"
)

// ComponentsDebug collects the raw right-hand-side terms of every
// scalar update under dbg_<scalar>_<term> keys so a surrounding
// diagnostic layer can inspect the budget of each equation. The
// recorded terms bypass the immersed-boundary correction and are never
// used for the time advance.
type ComponentsDebug struct{}

// NewComponentsDebug returns a debug hook for use with
// WithComponentsDebug.
func NewComponentsDebug() *ComponentsDebug { return &ComponentsDebug{} }

func dbgKey(scalar, term string) string {
	return fmt.Sprintf("dbg_%s_%s", scalar, term)
}

// UpdateScalarTerms converts one scalar's term bundle into named debug
// fields. diffT entries, when present, record the eddy diffusivity the
// SGS model contributed along each axis.
func (d *ComponentsDebug) UpdateScalarTerms(scalar string, terms *ScalarTerms,
	diffT [3]*sparse.DenseArray) FieldMap {

	out := FieldMap{
		dbgKey(scalar, "conv_x"): terms.ConvX,
		dbgKey(scalar, "conv_y"): terms.ConvY,
		dbgKey(scalar, "conv_z"): terms.ConvZ,
		dbgKey(scalar, "diff_x"): terms.DiffX,
		dbgKey(scalar, "diff_y"): terms.DiffY,
		dbgKey(scalar, "diff_z"): terms.DiffZ,
		dbgKey(scalar, "source"): terms.Source,
	}
	axes := [3]string{"x", "y", "z"}
	for dim, f := range diffT {
		if f != nil {
			out[dbgKey(scalar, "diff_t_"+axes[dim])] = f
		}
	}
	return out
}

// TermStats summarizes one debug field.
type TermStats struct {
	Mean, StdDev, Min, Max float64
}

// SummarizeTerms computes summary statistics for every field in a
// debug map, typically for the step log.
func SummarizeTerms(fields FieldMap) map[string]TermStats {
	out := make(map[string]TermStats, len(fields))
	for name, f := range fields {
		var d stats.Stats
		d.UpdateArray(f.Elements)
		out[name] = TermStats{
			Mean:   d.Mean(),
			StdDev: d.SampleStandardDeviation(),
			Min:    d.Min(),
			Max:    d.Max(),
		}
	}
	return out
}
