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

// Thermodynamics supplies the density used by the time advance. The
// equation-of-state model behind it is an external collaborator; the
// orchestrator consumes its output as an opaque field.
type Thermodynamics interface {
	Density(states, additional FieldMap) (*sparse.DenseArray, error)
}

// stateDensity is the default when no thermodynamics collaborator is
// configured: density is read directly from the state map.
type stateDensity struct{}

func (stateDensity) Density(states, additional FieldMap) (*sparse.DenseArray, error) {
	rho, ok := states[keyRho]
	if !ok {
		return nil, &MissingStateError{Key: keyRho, Map: "states"}
	}
	return rho, nil
}
