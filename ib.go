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

import "strings"

// Additional-states keys for the immersed-boundary masks. The interior
// mask is 1 in fluid cells and 0 inside solids; the boundary mask
// marks the solid-adjacent band.
const (
	ibInteriorMaskKey = "ib_interior_mask"
	ibBoundaryKey     = "ib_boundary"
)

// ImmersedBoundary enforces solid-boundary conditions inside the grid
// by correcting forcing terms and fields near marked obstacle cells.
// It is an optional collaborator: the orchestrator branches on its
// presence, checked once at construction.
type ImmersedBoundary interface {
	// RHSName returns the helper-states key under which the tentative
	// right-hand side of the named conservative variable is presented
	// to UpdateForcing.
	RHSName(name string) string

	// UpdateForcing corrects the tentative RHS terms found in helper
	// under RHSName keys, given the current conservative fields in
	// states and any masks in helper. It returns the corrected terms
	// under the same keys.
	UpdateForcing(replicaID int, mesh *ReplicaMesh, states, helper FieldMap) (FieldMap, error)

	// UpdateStates corrects newly updated fields near the immersed
	// boundary. The boundary-condition registry is supplied because
	// some formulations re-apply face conditions after forcing.
	UpdateStates(replicaID int, mesh *ReplicaMesh, fields FieldMap,
		additional FieldMap, bc BoundaryRegistry) (FieldMap, error)
}

// MaskedBoundary is a direct-forcing immersed boundary driven by the
// ib_interior_mask field: the RHS is zeroed inside solids so no
// tendency accumulates there, and updated fields are pinned to
// SolidValue in solid cells. Fluid cells pass through untouched, which
// keeps the interior conservation budget intact.
type MaskedBoundary struct {
	// SolidValue is the field value enforced inside solid cells.
	SolidValue float64
}

// RHSName implements ImmersedBoundary.
func (b *MaskedBoundary) RHSName(name string) string { return "rhs_" + name }

// UpdateForcing implements ImmersedBoundary.
func (b *MaskedBoundary) UpdateForcing(replicaID int, mesh *ReplicaMesh,
	states, helper FieldMap) (FieldMap, error) {

	mask, hasMask := helper[ibInteriorMaskKey]
	out := make(FieldMap)
	for key, rhs := range helper {
		if !strings.HasPrefix(key, "rhs_") {
			continue
		}
		if !hasMask {
			out[key] = rhs
			continue
		}
		if err := checkShape(key, rhs, mask); err != nil {
			return nil, err
		}
		out[key] = mulFields(rhs, mask)
	}
	return out, nil
}

// UpdateStates implements ImmersedBoundary.
func (b *MaskedBoundary) UpdateStates(replicaID int, mesh *ReplicaMesh,
	fields FieldMap, additional FieldMap, bc BoundaryRegistry) (FieldMap, error) {

	mask, ok := additional[ibInteriorMaskKey]
	if !ok {
		return nil, &MissingStateError{Key: ibInteriorMaskKey, Map: "additional states"}
	}
	out := make(FieldMap, len(fields))
	for name, f := range fields {
		if err := checkShape(name, f, mask); err != nil {
			return nil, err
		}
		forced := zerosLike(f)
		for i, m := range mask.Elements {
			forced.Elements[i] = m*f.Elements[i] + (1.-m)*b.SolidValue
		}
		out[name] = forced
	}
	return out, nil
}
