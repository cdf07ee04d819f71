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

// ReplicaMesh maps grid coordinates to replica id numbers. Replicas are
// arranged in a 3-D mesh; adjacency in the mesh determines which
// replicas exchange halo data along each axis.
type ReplicaMesh struct {
	ids   *sparse.DenseArrayInt
	shape [3]int
}

// NewReplicaMesh builds a mesh of cx×cy×cz replicas with ids assigned
// in row-major order.
func NewReplicaMesh(cx, cy, cz int) (*ReplicaMesh, error) {
	if cx < 1 || cy < 1 || cz < 1 {
		return nil, fmt.Errorf("swirllm: replica mesh dimensions must be positive, got %d×%d×%d", cx, cy, cz)
	}
	m := &ReplicaMesh{
		ids:   sparse.ZerosDenseInt(cx, cy, cz),
		shape: [3]int{cx, cy, cz},
	}
	id := 0
	for i := 0; i < cx; i++ {
		for j := 0; j < cy; j++ {
			for k := 0; k < cz; k++ {
				m.ids.Set(id, i, j, k)
				id++
			}
		}
	}
	return m, nil
}

// SingleReplicaMesh returns the 1×1×1 mesh used when the whole domain
// is owned by one compute unit.
func SingleReplicaMesh() *ReplicaMesh {
	m, _ := NewReplicaMesh(1, 1, 1)
	return m
}

// Shape returns the number of replicas along each axis.
func (m *ReplicaMesh) Shape() [3]int { return m.shape }

// Len returns the total number of replicas.
func (m *ReplicaMesh) Len() int { return m.shape[0] * m.shape[1] * m.shape[2] }

// Coords returns the mesh coordinates of the given replica.
func (m *ReplicaMesh) Coords(replicaID int) ([3]int, error) {
	for i := 0; i < m.shape[0]; i++ {
		for j := 0; j < m.shape[1]; j++ {
			for k := 0; k < m.shape[2]; k++ {
				if m.ids.Get(i, j, k) == replicaID {
					return [3]int{i, j, k}, nil
				}
			}
		}
	}
	return [3]int{}, fmt.Errorf("swirllm: replica %d not in mesh", replicaID)
}

// Neighbor returns the id of the replica adjacent to replicaID along
// dim on the given face (0 low, 1 high), wrapping around when periodic
// is set. The second return value is false when no neighbor exists.
func (m *ReplicaMesh) Neighbor(replicaID, dim, face int, periodic bool) (int, bool) {
	c, err := m.Coords(replicaID)
	if err != nil {
		return 0, false
	}
	step := -1
	if face == 1 {
		step = 1
	}
	n := c[dim] + step
	if n < 0 || n >= m.shape[dim] {
		if !periodic {
			return 0, false
		}
		n = (n + m.shape[dim]) % m.shape[dim]
	}
	c[dim] = n
	return m.ids.Get(c[0], c[1], c[2]), true
}
