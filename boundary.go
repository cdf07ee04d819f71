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

// BCKind identifies the kind of boundary condition on one face.
type BCKind int

const (
	// BCPeriodic marks a face whose ghost cells are filled from the
	// opposite side of the (possibly distributed) domain.
	BCPeriodic BCKind = iota
	// BCDirichlet fixes the ghost-cell value.
	BCDirichlet
	// BCNeumann fixes the ghost-cell gradient; the stored value is the
	// pre-scaled per-cell increment (gradient × grid spacing).
	BCNeumann
)

func (k BCKind) String() string {
	switch k {
	case BCPeriodic:
		return "periodic"
	case BCDirichlet:
		return "dirichlet"
	case BCNeumann:
		return "neumann"
	}
	return fmt.Sprintf("BCKind(%d)", int(k))
}

func parseBCKind(s string) (BCKind, error) {
	switch s {
	case "periodic", "":
		return BCPeriodic, nil
	case "dirichlet":
		return BCDirichlet, nil
	case "neumann":
		return BCNeumann, nil
	}
	return 0, fmt.Errorf("unknown boundary condition kind %q", s)
}

// FaceBC is the resolved boundary condition on one face.
type FaceBC struct {
	Kind  BCKind
	Value float64
}

// BoundaryCondition holds, for one variable, an ordered pair of face
// conditions (low, high) per spatial axis.
type BoundaryCondition [3][2]FaceBC

// BoundaryRegistry maps transported-scalar names to their current
// boundary conditions. It is rebuilt wholesale at every Prestep and
// read-only for the rest of the step.
type BoundaryRegistry map[string]BoundaryCondition

// SourceRegistry maps scalar names to their external forcing fields.
// Absent entries mean zero forcing, which is a designed default rather
// than an error. Fields in the registry are owned by the orchestrator
// and never aliased into the state maps.
type SourceRegistry map[string]*sparse.DenseArray

// bcKey is the additional-states key carrying a dynamic boundary
// override for the named variable on the given axis and face.
func bcKey(name string, dim, face int) string {
	return fmt.Sprintf("bc_%s_%d_%d", name, dim, face)
}

// srcKey is the additional-states key carrying the external source
// term for the named scalar.
func srcKey(name string) string { return "src_" + name }

// refreshBoundaries rebuilds the boundary-condition registry for the
// configured transported scalars. The static configuration supplies the
// baseline; a bc_<name>_<dim>_<face> field in the additional states
// overrides that face with a Dirichlet condition whose value is the
// mean of the field's outermost halo plane. Calling it twice with the
// same inputs yields the same registry: nothing accumulates.
func refreshBoundaries(cfg *Config, additional FieldMap) (BoundaryRegistry, error) {
	reg := make(BoundaryRegistry, len(cfg.Scalars))
	for _, name := range cfg.TransportScalarNames() {
		var bc BoundaryCondition
		spec, hasSpec := cfg.BC[name]
		for dim := 0; dim < 3; dim++ {
			for face := 0; face < 2; face++ {
				fc := FaceBC{Kind: BCPeriodic}
				if hasSpec {
					fs := spec.face(dim, face)
					kind, err := parseBCKind(fs.Kind)
					if err != nil {
						return nil, &ConfigurationError{Setting: "BC." + name, Problem: err.Error()}
					}
					fc = FaceBC{Kind: kind, Value: fs.Value}
				}
				if f, ok := additional[bcKey(name, dim, face)]; ok {
					fc = FaceBC{Kind: BCDirichlet, Value: facePlaneMean(f, dim, face)}
				}
				bc[dim][face] = fc
			}
		}
		reg[name] = bc
	}
	return reg, nil
}

// refreshSources rebuilds the source registry from src_<name> entries
// in the additional states. Each present field is copied so later
// mutation of the additional states cannot alias into the registry.
func refreshSources(cfg *Config, additional FieldMap) SourceRegistry {
	reg := make(SourceRegistry)
	for _, name := range cfg.TransportScalarNames() {
		if f, ok := additional[srcKey(name)]; ok {
			reg[name] = f.Copy()
		}
	}
	return reg
}

// facePlaneMean averages the outermost plane of f on the given face of
// the given axis. Dynamic boundary overrides store their values there;
// uniform planes are represented exactly.
func facePlaneMean(f *sparse.DenseArray, dim, face int) float64 {
	idx := 0
	if face == 1 {
		idx = f.Shape[dim] - 1
	}
	lo, hi := [3]int{0, 0, 0}, [3]int{f.Shape[0], f.Shape[1], f.Shape[2]}
	lo[dim], hi[dim] = idx, idx+1
	sum, n := 0., 0
	for i := lo[0]; i < hi[0]; i++ {
		for j := lo[1]; j < hi[1]; j++ {
			for k := lo[2]; k < hi[2]; k++ {
				sum += f.Get(i, j, k)
				n++
			}
		}
	}
	return sum / float64(n)
}
