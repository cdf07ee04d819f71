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

// ScalarClosure computes the terms of one scalar's transport equation.
// A closure is bound to its scalar at construction and immutable
// afterwards; all methods read the frozen mid-point states and never
// mutate them.
type ScalarClosure interface {
	// Convection returns the conservative convection term along each
	// spatial axis, shaped like phi.
	Convection(replicaID int, mesh *ReplicaMesh, phi *sparse.DenseArray,
		states, helper FieldMap) ([3]*sparse.DenseArray, error)

	// Diffusion returns the diffusion term along each spatial axis,
	// shaped like phi. The diffusivity comes from the helper states
	// (diffusivity_x, diffusivity_y, diffusivity_z).
	Diffusion(replicaID int, mesh *ReplicaMesh, phi *sparse.DenseArray,
		states, helper FieldMap) ([3]*sparse.DenseArray, error)

	// Source returns the closure-internal source term, shaped like
	// phi. External forcing from the source registry is added
	// separately by the RHS assembler.
	Source(replicaID int, mesh *ReplicaMesh, phi *sparse.DenseArray,
		states, helper FieldMap) (*sparse.DenseArray, error)
}

// Scalar-name sets selecting the physics closure variants. The variant
// set is closed: dispatch happens once at construction and unknown
// names fall back to the generic passive scalar.
var (
	potentialTemperatureNames = map[string]bool{
		"theta": true, "theta_li": true, "theta_v": true,
	}
	humidityNames = map[string]bool{
		"q_t": true, "q_r": true, "q_v": true, "q_c": true,
	}
	totalEnergyName = "e_t"
)

// newClosure resolves the physics closure for the named scalar. It is
// deterministic and total over any scalar name.
func newClosure(cfg *Config, name string) ScalarClosure {
	base := &genericScalar{cfg: cfg, name: name}
	switch {
	case potentialTemperatureNames[name]:
		return &potentialTemperature{genericScalar: base}
	case humidityNames[name]:
		return &humidity{genericScalar: base}
	case name == totalEnergyName:
		return &totalEnergy{genericScalar: base}
	default:
		return base
	}
}
