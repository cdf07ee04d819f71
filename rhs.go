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

// ScalarTerms is the debug bundle of one scalar's right-hand side:
// the per-axis convection and diffusion terms plus the combined source,
// before any immersed-boundary correction. It exists for diagnostics
// only and must never feed the time advance.
type ScalarTerms struct {
	ConvX, ConvY, ConvZ *sparse.DenseArray
	DiffX, DiffY, DiffZ *sparse.DenseArray
	Source              *sparse.DenseArray
}

// scalarRHS assembles the right-hand side of the named scalar's
// transport equation at the mid-point state:
//
//	rhs = -(conv_x+conv_y+conv_z) + (diff_x+diff_y+diff_z) + source
//
// where source is the registered external forcing (zero when absent)
// plus the closure-internal source. With dbg set it returns the raw
// terms instead of the combined field. When an immersed-boundary
// corrector is configured, the tentative RHS is presented to it keyed
// by the conservative variable's name and the corrected RHS is
// substituted.
func (s *Scalars) scalarRHS(replicaID int, mesh *ReplicaMesh, name string,
	phi *sparse.DenseArray, statesMid, helper FieldMap, dbg bool) (*sparse.DenseArray, *ScalarTerms, error) {

	closure := s.closures[name]
	conv, err := closure.Convection(replicaID, mesh, phi, statesMid, helper)
	if err != nil {
		return nil, nil, err
	}
	diff, err := closure.Diffusion(replicaID, mesh, phi, statesMid, helper)
	if err != nil {
		return nil, nil, err
	}
	internal, err := closure.Source(replicaID, mesh, phi, statesMid, helper)
	if err != nil {
		return nil, nil, err
	}

	source := internal
	if ext, ok := s.source[name]; ok {
		if err := checkShape(srcKey(name), ext, phi); err != nil {
			return nil, nil, err
		}
		source = addScaled(internal, 1., ext)
	}

	if dbg {
		return nil, &ScalarTerms{
			ConvX: conv[0], ConvY: conv[1], ConvZ: conv[2],
			DiffX: diff[0], DiffY: diff[1], DiffZ: diff[2],
			Source: source,
		}, nil
	}

	rhs := zerosLike(phi)
	for i := range rhs.Elements {
		rhs.Elements[i] = -(conv[0].Elements[i] + conv[1].Elements[i] + conv[2].Elements[i]) +
			(diff[0].Elements[i] + diff[1].Elements[i] + diff[2].Elements[i]) +
			source.Elements[i]
	}

	if s.ib != nil {
		rhoName := rhoPrefix(name)
		rhsKey := s.ib.RHSName(rhoName)
		helperIB := FieldMap{rhsKey: rhs}
		for _, maskKey := range []string{ibInteriorMaskKey, ibBoundaryKey} {
			if mask, ok := helper[maskKey]; ok {
				helperIB[maskKey] = mask
			}
		}
		corrected, err := s.ib.UpdateForcing(replicaID, mesh,
			FieldMap{rhoName: mulFields(statesMid[keyRho], phi)}, helperIB)
		if err != nil {
			return nil, nil, err
		}
		r, ok := corrected[rhsKey]
		if !ok {
			return nil, nil, &MissingStateError{Key: rhsKey, Map: "immersed-boundary forcing result"}
		}
		rhs = r
	}
	return rhs, nil, nil
}
