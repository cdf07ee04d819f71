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

// Scalars orchestrates the scalar transport equations through one
// predictor/corrector cycle per simulation step:
//
//	Prestep → PredictionStep → (external pressure/density correction) →
//	CorrectionStep
//
// Prestep rebuilds the boundary-condition and source registries from
// the additional states; PredictionStep advances every transported
// scalar from mid-point states; CorrectionStep reconstructs the
// primitive scalars from the corrected conservative variables. The
// cycle repeats for the life of the simulation; Scalars holds no step
// counter.
//
// Replicas run the same cycle in lockstep (SPMD). The halo exchange is
// the only blocking collective, so within a step every replica must
// update the same variables in the same configured order.
type Scalars struct {
	cfg       *Config
	exchanger HaloExchanger
	thermo    Thermodynamics
	sgs       *SGSModel
	ib        ImmersedBoundary
	dbg       *ComponentsDebug
	closures  map[string]ScalarClosure

	// Registries replaced wholesale at every Prestep; read-only for
	// the rest of the step.
	bc     BoundaryRegistry
	source SourceRegistry
}

// Option configures optional collaborators of a Scalars instance.
type Option func(*Scalars)

// WithImmersedBoundary attaches an immersed-boundary corrector.
func WithImmersedBoundary(ib ImmersedBoundary) Option {
	return func(s *Scalars) { s.ib = ib }
}

// WithThermodynamics attaches an equation-of-state collaborator that
// supplies the density used in the time advance. Without it, density
// is read directly from the state map.
func WithThermodynamics(t Thermodynamics) Option {
	return func(s *Scalars) { s.thermo = t }
}

// WithComponentsDebug attaches a debug hook that records the raw RHS
// terms of every scalar update.
func WithComponentsDebug(d *ComponentsDebug) Option {
	return func(s *Scalars) { s.dbg = d }
}

// NewScalars builds the orchestrator. The physics closure of each
// transported scalar is resolved here, once; it is never re-resolved
// mid-run.
func NewScalars(cfg *Config, exchanger HaloExchanger, opts ...Option) (*Scalars, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if exchanger == nil {
		return nil, &ConfigurationError{Setting: "exchanger",
			Problem: "a halo exchanger is required"}
	}
	s := &Scalars{
		cfg:       cfg,
		exchanger: exchanger,
		thermo:    stateDensity{},
		closures:  make(map[string]ScalarClosure, len(cfg.Scalars)),
		source:    make(SourceRegistry),
	}
	if cfg.UseSGS {
		s.sgs = NewSGSModel(cfg)
	}
	for _, opt := range opts {
		opt(s)
	}
	for _, name := range cfg.TransportScalarNames() {
		s.closures[name] = newClosure(cfg, name)
	}
	bc, err := refreshBoundaries(cfg, nil)
	if err != nil {
		return nil, err
	}
	s.bc = bc
	return s, nil
}

// BoundaryConditions returns the current boundary-condition registry.
func (s *Scalars) BoundaryConditions() BoundaryRegistry { return s.bc }

// Sources returns the current source registry.
func (s *Scalars) Sources() SourceRegistry { return s.source }

// Prestep refreshes the boundary-condition and source registries from
// the additional states. It performs no arithmetic on field data. The
// registries are replaced wholesale, so calling Prestep twice with the
// same input yields identical registries.
func (s *Scalars) Prestep(additional FieldMap) error {
	if s.ib != nil {
		if err := additional.require("additional states", ibInteriorMaskKey); err != nil {
			return err
		}
	}
	bc, err := refreshBoundaries(s.cfg, additional)
	if err != nil {
		return err
	}
	s.bc = bc
	s.source = refreshSources(s.cfg, additional)
	return nil
}

// PredictionStep advances every transported scalar, in configured
// order, over one time step. states holds the latest predicted values,
// states0 the frozen previous step. Because density is staggered in
// time with the scalars, the right-hand side is evaluated at the
// arithmetic mid-point of the two.
//
// In anelastic mode the primitive scalar is advanced directly;
// otherwise the conservative rho_<s> is advanced and the primitive
// reconstructed by division. Only the primitive's halos are exchanged:
// the conservative buffer's ghost cells are not read again before the
// next Prestep replaces the registries.
//
// The returned map holds only the advanced variables (plus debug terms
// when a debug hook is attached).
func (s *Scalars) PredictionStep(replicaID int, mesh *ReplicaMesh,
	states, states0, additional FieldMap) (FieldMap, error) {

	names := s.cfg.TransportScalarNames()

	// An unsupported scheme is a fatal configuration error, raised
	// before any field is touched.
	for _, name := range names {
		if scheme := s.cfg.scheme(name); scheme != SchemeCNExplicitIteration {
			return nil, &ConfigurationError{
				Setting: fmt.Sprintf("Scalars.%s.Scheme", name),
				Problem: fmt.Sprintf("time integration scheme %q is not supported for scalars", scheme),
			}
		}
	}

	if err := states.require("states", requiredStateKeys(names)...); err != nil {
		return nil, err
	}
	prevKeys := []string{keyRho, keyRhoThermal}
	for _, name := range names {
		prevKeys = append(prevKeys, name, rhoPrefix(name))
	}
	if err := states0.require("states_0", prevKeys...); err != nil {
		return nil, err
	}
	ref := states[keyRho]
	for _, key := range requiredStateKeys(names) {
		if err := checkShape(key, states[key], ref); err != nil {
			return nil, err
		}
	}

	statesMid := make(FieldMap, len(states))
	for k, v := range states {
		statesMid[k] = v
	}
	statesMid[keyRho] = average(states[keyRho], states0[keyRho])
	statesMid[keyRhoThermal] = average(states[keyRhoThermal], states0[keyRhoThermal])
	for _, name := range names {
		statesMid[name] = average(states[name], states0[name])
	}

	rhoNew, err := s.thermo.Density(states, additional)
	if err != nil {
		return nil, err
	}

	updated := make(FieldMap)
	dbgFields := make(FieldMap)
	for _, name := range names {
		scMid := statesMid[name]

		var diffT [3]*sparse.DenseArray
		molecular := s.cfg.diffusivity(name)
		helper := make(FieldMap, len(additional)+3)
		for k, v := range additional {
			helper[k] = v
		}
		if override, ok := additional[diffusivityOverrideKey]; ok {
			// An explicit diffusivity field wins outright: it replaces
			// both the molecular value and any turbulence estimate.
			if err := checkShape(diffusivityOverrideKey, override, scMid); err != nil {
				return nil, err
			}
			for dim := 0; dim < 3; dim++ {
				helper[diffusivityKeys[dim]] = override.Copy()
			}
		} else {
			if s.sgs != nil {
				velocity := [3]*sparse.DenseArray{states[keyU], states[keyV], states[keyW]}
				diffT, err = s.sgs.TurbulentDiffusivity(scMid, velocity, mesh, additional)
				if err != nil {
					return nil, err
				}
			}
			for dim := 0; dim < 3; dim++ {
				if diffT[dim] != nil {
					d := diffT[dim].Copy()
					for i := range d.Elements {
						d.Elements[i] += molecular
					}
					helper[diffusivityKeys[dim]] = d
				} else {
					helper[diffusivityKeys[dim]] = constantLike(molecular, scMid)
				}
			}
		}

		rhs, _, err := s.scalarRHS(replicaID, mesh, name, scMid, statesMid, helper, false)
		if err != nil {
			return nil, err
		}

		if s.cfg.SolverMode == SolverAnelastic {
			newSc := zerosLike(scMid)
			old := states0[name]
			for i := range newSc.Elements {
				newSc.Elements[i] = old.Elements[i] + s.cfg.Dt*rhs.Elements[i]/rhoNew.Elements[i]
			}
			exchanged, err := s.exchangeScalarHalos(newSc, name, replicaID, mesh)
			if err != nil {
				return nil, err
			}
			updated[name] = exchanged
		} else {
			newCons := addScaled(states0[rhoPrefix(name)], s.cfg.Dt, rhs)
			updated[rhoPrefix(name)] = newCons
			exchanged, err := s.exchangeScalarHalos(divFields(newCons, rhoNew), name, replicaID, mesh)
			if err != nil {
				return nil, err
			}
			updated[name] = exchanged
		}

		if s.dbg != nil {
			_, terms, err := s.scalarRHS(replicaID, mesh, name, scMid, statesMid, helper, true)
			if err != nil {
				return nil, err
			}
			for k, v := range s.dbg.UpdateScalarTerms(name, terms, diffT) {
				dbgFields[k] = v
			}
		}
	}

	// The marker-and-cell style solid forcing is applied once, after
	// all scalars have been advanced.
	if s.ib != nil {
		updated, err = s.ib.UpdateStates(replicaID, mesh, updated, additional, s.bc)
		if err != nil {
			return nil, err
		}
	}
	// Debug terms record the uncorrected budget; they merge in after the
	// solid forcing so the immersed boundary never touches them.
	for k, v := range dbgFields {
		updated[k] = v
	}
	return updated, nil
}

// CorrectionStep recomputes the primitive scalars from the externally
// density-corrected conservative variables, re-applies the immersed
// boundary if configured, and refreshes halos. The previous-step states
// are not consulted.
func (s *Scalars) CorrectionStep(replicaID int, mesh *ReplicaMesh,
	states, additional FieldMap) (FieldMap, error) {

	names := s.cfg.TransportScalarNames()
	keys := []string{keyRho}
	for _, name := range names {
		keys = append(keys, rhoPrefix(name))
	}
	if err := states.require("states", keys...); err != nil {
		return nil, err
	}
	rhoNew, err := s.thermo.Density(states, additional)
	if err != nil {
		return nil, err
	}

	out := make(FieldMap, len(names))
	for _, name := range names {
		cons := states[rhoPrefix(name)]
		if err := checkShape(rhoPrefix(name), cons, rhoNew); err != nil {
			return nil, err
		}
		buf := divFields(cons, rhoNew)
		if s.ib != nil {
			forced, err := s.ib.UpdateStates(replicaID, mesh,
				FieldMap{name: buf}, additional, s.bc)
			if err != nil {
				return nil, err
			}
			buf = forced[name]
		}
		exchanged, err := s.exchangeScalarHalos(buf, name, replicaID, mesh)
		if err != nil {
			return nil, err
		}
		out[name] = exchanged
	}
	return out, nil
}
