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

import "github.com/ctessum/sparse"

// totalEnergy transports e_t. On top of the generic operators it adds
// the pressure-work source -(u·∇p), evaluated with central differences.
type totalEnergy struct {
	*genericScalar
}

func (t *totalEnergy) Source(replicaID int, mesh *ReplicaMesh,
	phi *sparse.DenseArray, states, helper FieldMap) (*sparse.DenseArray, error) {

	if err := states.require("states", keyP, keyU, keyV, keyW); err != nil {
		return nil, err
	}
	p := states[keyP]
	if err := checkShape(keyP, p, phi); err != nil {
		return nil, err
	}
	src := zerosLike(phi)
	for dim := 0; dim < 3; dim++ {
		vel := states[velocityKeys[dim]]
		if err := checkShape(velocityKeys[dim], vel, phi); err != nil {
			return nil, err
		}
		h := t.cfg.spacing(dim)
		eachStencilCell(phi.Shape, dim, func(i, j, k int) {
			mi, mj, mk := shifted(i, j, k, dim, -1)
			pi, pj, pk := shifted(i, j, k, dim, 1)
			gradP := (p.Get(pi, pj, pk) - p.Get(mi, mj, mk)) / (2. * h)
			src.AddVal(-vel.Get(i, j, k)*gradP, i, j, k)
		})
	}
	return src, nil
}
