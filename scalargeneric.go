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
	"github.com/ctessum/atmos/advect"
	"github.com/ctessum/sparse"
)

var velocityKeys = [3]string{keyU, keyV, keyW}

// diffusivityKeys name the per-axis diffusivity fields in the helper
// states assembled for each scalar update.
var diffusivityKeys = [3]string{"diffusivity_x", "diffusivity_y", "diffusivity_z"}

// genericScalar is the passive-scalar closure: upwind convection of the
// conservative variable rho*phi and variable-coefficient central
// diffusion, with no internal source. The physics variants embed it and
// override Source.
type genericScalar struct {
	cfg  *Config
	name string
}

// Convection computes ∂(rho·u_d·phi)/∂x_d along each axis with upwind
// face fluxes. Stencil-edge cells are left zero; they live in the halo
// and are refreshed by the next exchange.
func (g *genericScalar) Convection(replicaID int, mesh *ReplicaMesh,
	phi *sparse.DenseArray, states, helper FieldMap) ([3]*sparse.DenseArray, error) {

	var out [3]*sparse.DenseArray
	if err := states.require("states", keyRho, keyU, keyV, keyW); err != nil {
		return out, err
	}
	rho := states[keyRho]
	if err := checkShape(g.name, phi, rho); err != nil {
		return out, err
	}
	cons := mulFields(rho, phi)
	for dim := 0; dim < 3; dim++ {
		vel := states[velocityKeys[dim]]
		if err := checkShape(velocityKeys[dim], vel, phi); err != nil {
			return out, err
		}
		conv := zerosLike(phi)
		h := g.cfg.spacing(dim)
		eachStencilCell(phi.Shape, dim, func(i, j, k int) {
			mi, mj, mk := shifted(i, j, k, dim, -1)
			pi, pj, pk := shifted(i, j, k, dim, 1)
			uLo := 0.5 * (vel.Get(mi, mj, mk) + vel.Get(i, j, k))
			uHi := 0.5 * (vel.Get(i, j, k) + vel.Get(pi, pj, pk))
			fluxLo := advect.UpwindFlux(uLo, cons.Get(mi, mj, mk), cons.Get(i, j, k), h)
			fluxHi := advect.UpwindFlux(uHi, cons.Get(i, j, k), cons.Get(pi, pj, pk), h)
			conv.Set(fluxHi-fluxLo, i, j, k)
		})
		out[dim] = conv
	}
	return out, nil
}

// Diffusion computes ∂/∂x_d (rho·D·∂phi/∂x_d) with harmonic-mean face
// coefficients on the staggered faces.
func (g *genericScalar) Diffusion(replicaID int, mesh *ReplicaMesh,
	phi *sparse.DenseArray, states, helper FieldMap) ([3]*sparse.DenseArray, error) {

	var out [3]*sparse.DenseArray
	if err := states.require("states", keyRho); err != nil {
		return out, err
	}
	rho := states[keyRho]
	if err := checkShape(g.name, phi, rho); err != nil {
		return out, err
	}
	for dim := 0; dim < 3; dim++ {
		diffusivity, ok := helper[diffusivityKeys[dim]]
		if !ok {
			return out, &MissingStateError{Key: diffusivityKeys[dim], Map: "helper states"}
		}
		if err := checkShape(diffusivityKeys[dim], diffusivity, phi); err != nil {
			return out, err
		}
		rhoD := mulFields(rho, diffusivity)
		diff := zerosLike(phi)
		h := g.cfg.spacing(dim)
		eachStencilCell(phi.Shape, dim, func(i, j, k int) {
			mi, mj, mk := shifted(i, j, k, dim, -1)
			pi, pj, pk := shifted(i, j, k, dim, 1)
			dLo := harmonicMean(rhoD.Get(mi, mj, mk), rhoD.Get(i, j, k))
			dHi := harmonicMean(rhoD.Get(i, j, k), rhoD.Get(pi, pj, pk))
			flux := dHi*(phi.Get(pi, pj, pk)-phi.Get(i, j, k)) -
				dLo*(phi.Get(i, j, k)-phi.Get(mi, mj, mk))
			diff.Set(flux/(h*h), i, j, k)
		})
		out[dim] = diff
	}
	return out, nil
}

// Source returns zero: passive scalars have no closure-internal source.
func (g *genericScalar) Source(replicaID int, mesh *ReplicaMesh,
	phi *sparse.DenseArray, states, helper FieldMap) (*sparse.DenseArray, error) {
	return zerosLike(phi), nil
}

// eachStencilCell visits every cell that has both neighbors along dim,
// i.e. everything except the outermost layer on that axis.
func eachStencilCell(shape []int, dim int, fn func(i, j, k int)) {
	lo, hi := [3]int{0, 0, 0}, [3]int{shape[0], shape[1], shape[2]}
	lo[dim], hi[dim] = 1, shape[dim]-1
	for i := lo[0]; i < hi[0]; i++ {
		for j := lo[1]; j < hi[1]; j++ {
			for k := lo[2]; k < hi[2]; k++ {
				fn(i, j, k)
			}
		}
	}
}
