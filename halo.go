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

// HaloExchanger is the ghost-cell exchange primitive. Exchange returns
// a field of identical shape in which the outer width layers on each
// face have been replaced according to bc, and layers adjacent to a
// neighboring replica have been replaced with that replica's
// boundary-adjacent data.
//
// The exchange is a blocking collective: every replica that shares a
// boundary must call it with the same variable, in the same order,
// within a step. No field update is complete until its exchange call
// returns, and redundant calls for the same update are a bug.
type HaloExchanger interface {
	Exchange(f *sparse.DenseArray, haloDims []int, replicaID int,
		mesh *ReplicaMesh, replicaDims []int, periodic [3]bool,
		bc BoundaryCondition, width int) (*sparse.DenseArray, error)
}

// haloDims and replicaDims are fixed for this solver: halos are carried
// and exchanged on all three spatial axes.
var (
	haloDims    = []int{0, 1, 2}
	replicaDims = []int{0, 1, 2}
)

// exchangeScalarHalos refreshes the ghost cells of f using the named
// variable's boundary condition from the current registry. It is the
// only path by which the orchestrator touches the exchange primitive,
// so each logical field update triggers exactly one collective.
func (s *Scalars) exchangeScalarHalos(f *sparse.DenseArray, name string,
	replicaID int, mesh *ReplicaMesh) (*sparse.DenseArray, error) {
	bc, ok := s.bc[name]
	if !ok {
		return nil, &MissingStateError{Key: name, Map: "boundary-condition registry"}
	}
	return s.exchanger.Exchange(f, haloDims, replicaID, mesh, replicaDims,
		s.cfg.Periodic, bc, s.cfg.HaloWidth)
}
