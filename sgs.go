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
	"math"

	"github.com/ctessum/sparse"
)

// Defaults for the Smagorinsky–Lilly model.
const (
	defaultSmagorinskyConstant = 0.18
	defaultTurbulentPrandtl    = 1. / 3.
)

// diffusivityOverrideKey names the additional-states field that, when
// present, replaces the turbulence estimate with an externally supplied
// eddy diffusivity.
const diffusivityOverrideKey = "diffusivity"

// SGSModel estimates the sub-grid-scale eddy diffusivity with the
// Smagorinsky–Lilly closure: ν_t = (C_s·Δ_d)²·|S|, converted to a
// diffusivity by the turbulent Prandtl number. The filter width Δ_d is
// the grid spacing of each axis, which makes the result per-axis on
// anisotropic grids.
type SGSModel struct {
	cs      float64
	prandtl float64
	delta   [3]float64
	spacing [3]float64
}

// NewSGSModel builds the model from the configured constants and
// filter widths.
func NewSGSModel(cfg *Config) *SGSModel {
	m := &SGSModel{
		cs:      cfg.SmagorinskyConstant,
		prandtl: cfg.TurbulentPrandtl,
		delta:   [3]float64{cfg.Dx, cfg.Dy, cfg.Dz},
		spacing: [3]float64{cfg.Dx, cfg.Dy, cfg.Dz},
	}
	if m.cs == 0 {
		m.cs = defaultSmagorinskyConstant
	}
	if m.prandtl == 0 {
		m.prandtl = defaultTurbulentPrandtl
	}
	return m
}

// TurbulentDiffusivity returns the per-axis eddy diffusivity computed
// from the resolved strain rate of the velocity field. When the
// additional states carry a "diffusivity" field, that field is used
// unchanged for all three axes.
func (m *SGSModel) TurbulentDiffusivity(phi *sparse.DenseArray,
	velocity [3]*sparse.DenseArray, mesh *ReplicaMesh,
	additional FieldMap) ([3]*sparse.DenseArray, error) {

	var out [3]*sparse.DenseArray
	if override, ok := additional[diffusivityOverrideKey]; ok {
		if err := checkShape(diffusivityOverrideKey, override, phi); err != nil {
			return out, err
		}
		for dim := 0; dim < 3; dim++ {
			out[dim] = override.Copy()
		}
		return out, nil
	}
	for dim := 0; dim < 3; dim++ {
		if err := checkShape(velocityKeys[dim], velocity[dim], phi); err != nil {
			return out, err
		}
	}

	sNorm := m.strainRateNorm(phi.Shape, velocity)
	for dim := 0; dim < 3; dim++ {
		scale := m.cs * m.delta[dim]
		diff := zerosLike(phi)
		for i, s := range sNorm.Elements {
			diff.Elements[i] = scale * scale * s / m.prandtl
		}
		out[dim] = diff
	}
	return out, nil
}

// strainRateNorm computes |S| = sqrt(2·S_ij·S_ij) from central
// differences of the velocity components. Cells on the outermost layer
// are left zero; they sit in the halo.
func (m *SGSModel) strainRateNorm(shape []int, velocity [3]*sparse.DenseArray) *sparse.DenseArray {
	norm := sparse.ZerosDense(shape...)

	grad := func(f *sparse.DenseArray, dim, i, j, k int) float64 {
		mi, mj, mk := shifted(i, j, k, dim, -1)
		pi, pj, pk := shifted(i, j, k, dim, 1)
		return (f.Get(pi, pj, pk) - f.Get(mi, mj, mk)) / (2. * m.spacing[dim])
	}

	for i := 1; i < shape[0]-1; i++ {
		for j := 1; j < shape[1]-1; j++ {
			for k := 1; k < shape[2]-1; k++ {
				var ss float64
				for a := 0; a < 3; a++ {
					for b := 0; b < 3; b++ {
						s := 0.5 * (grad(velocity[a], b, i, j, k) + grad(velocity[b], a, i, j, k))
						ss += s * s
					}
				}
				norm.Set(math.Sqrt(2.*ss), i, j, k)
			}
		}
	}
	return norm
}
