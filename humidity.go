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

// humidity transports the moisture scalars (q_t, q_r, q_v, q_c). It
// adds a first-order precipitation sink -rho·k·q on top of the generic
// operators, with k taken from the configuration.
type humidity struct {
	*genericScalar
}

func (h *humidity) Source(replicaID int, mesh *ReplicaMesh,
	phi *sparse.DenseArray, states, helper FieldMap) (*sparse.DenseArray, error) {

	src := zerosLike(phi)
	if h.cfg.PrecipitationRate == 0 {
		return src, nil
	}
	if err := states.require("states", keyRho); err != nil {
		return nil, err
	}
	rho := states[keyRho]
	if err := checkShape(keyRho, rho, phi); err != nil {
		return nil, err
	}
	for i, r := range rho.Elements {
		src.Elements[i] = -h.cfg.PrecipitationRate * r * phi.Elements[i]
	}
	return src, nil
}
