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

	"github.com/ctessum/sparse"
)

// LocalExchanger implements HaloExchanger for a single-replica mesh.
// Periodic faces wrap around the local domain; Dirichlet and Neumann
// faces are filled from the boundary condition. Multi-replica meshes
// require an external communicator.
//
// The field is updated in place and returned.
type LocalExchanger struct{}

// Exchange implements HaloExchanger.
func (LocalExchanger) Exchange(f *sparse.DenseArray, haloDims []int,
	replicaID int, mesh *ReplicaMesh, replicaDims []int, periodic [3]bool,
	bc BoundaryCondition, width int) (*sparse.DenseArray, error) {

	if mesh.Len() != 1 {
		return nil, fmt.Errorf("swirllm: LocalExchanger supports a single replica, mesh has %d", mesh.Len())
	}
	if len(f.Shape) != 3 {
		return nil, fmt.Errorf("swirllm: halo exchange needs a rank-3 field, got rank %d", len(f.Shape))
	}
	for _, dim := range haloDims {
		n := f.Shape[dim]
		if n < 2*width+1 {
			return nil, fmt.Errorf("swirllm: axis %d has %d cells, too few for halo width %d", dim, n, width)
		}
		for face := 0; face < 2; face++ {
			kind := bc[dim][face].Kind
			if periodic[dim] {
				kind = BCPeriodic
			}
			switch kind {
			case BCPeriodic:
				fillPeriodic(f, dim, face, width)
			case BCDirichlet:
				fillDirichlet(f, dim, face, width, bc[dim][face].Value)
			case BCNeumann:
				fillNeumann(f, dim, face, width, bc[dim][face].Value)
			}
		}
	}
	return f, nil
}

// forPlane visits every cell in the plane at index idx along dim.
func forPlane(shape []int, dim, idx int, fn func(i, j, k int)) {
	lo, hi := [3]int{0, 0, 0}, [3]int{shape[0], shape[1], shape[2]}
	lo[dim], hi[dim] = idx, idx+1
	for i := lo[0]; i < hi[0]; i++ {
		for j := lo[1]; j < hi[1]; j++ {
			for k := lo[2]; k < hi[2]; k++ {
				fn(i, j, k)
			}
		}
	}
}

// shifted returns the index triple moved by delta along dim.
func shifted(i, j, k, dim, delta int) (int, int, int) {
	switch dim {
	case 0:
		return i + delta, j, k
	case 1:
		return i, j + delta, k
	default:
		return i, j, k + delta
	}
}

func fillPeriodic(f *sparse.DenseArray, dim, face, width int) {
	n := f.Shape[dim]
	interior := n - 2*width
	for l := 0; l < width; l++ {
		var ghost, delta int
		if face == 0 {
			ghost, delta = l, interior
		} else {
			ghost, delta = n-width+l, -interior
		}
		forPlane(f.Shape, dim, ghost, func(i, j, k int) {
			si, sj, sk := shifted(i, j, k, dim, delta)
			f.Set(f.Get(si, sj, sk), i, j, k)
		})
	}
}

func fillDirichlet(f *sparse.DenseArray, dim, face, width int, value float64) {
	n := f.Shape[dim]
	for l := 0; l < width; l++ {
		ghost := l
		if face == 1 {
			ghost = n - width + l
		}
		forPlane(f.Shape, dim, ghost, func(i, j, k int) {
			f.Set(value, i, j, k)
		})
	}
}

// fillNeumann extrapolates outward layer by layer: each ghost cell is
// its inward neighbor plus the pre-scaled increment.
func fillNeumann(f *sparse.DenseArray, dim, face, width int, value float64) {
	n := f.Shape[dim]
	for l := 0; l < width; l++ {
		var ghost, inward int
		if face == 0 {
			ghost, inward = width-1-l, 1
		} else {
			ghost, inward = n-width+l, -1
		}
		forPlane(f.Shape, dim, ghost, func(i, j, k int) {
			si, sj, sk := shifted(i, j, k, dim, inward)
			f.Set(f.Get(si, sj, sk)+value, i, j, k)
		})
	}
}
