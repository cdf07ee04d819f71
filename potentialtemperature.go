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
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// potentialTemperature transports theta-type scalars. On top of the
// generic operators it applies a uniform radiative cooling source
// -rho·Λ, with Λ taken from the configuration.
type potentialTemperature struct {
	*genericScalar
}

func (p *potentialTemperature) Source(replicaID int, mesh *ReplicaMesh,
	phi *sparse.DenseArray, states, helper FieldMap) (*sparse.DenseArray, error) {

	src := zerosLike(phi)
	if p.cfg.RadiativeCoolingRate == 0 {
		return src, nil
	}
	if err := states.require("states", keyRho); err != nil {
		return nil, err
	}
	rho := states[keyRho]
	if err := checkShape(keyRho, rho, phi); err != nil {
		return nil, err
	}
	floats.AddScaled(src.Elements, -p.cfg.RadiativeCoolingRate, rho.Elements)
	return src, nil
}
