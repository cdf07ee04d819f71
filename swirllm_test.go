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
	"math"
	"testing"

	"github.com/ctessum/sparse"
)

const testTolerance = 1.e-10

func different(a, b, tolerance float64) bool {
	if 2*math.Abs(a-b)/math.Abs(a+b) > tolerance || math.IsNaN(a) || math.IsNaN(b) {
		return true
	}
	return false
}

func absDifferent(a, b float64) bool {
	return math.Abs(a-b) > testTolerance
}

// testConfig is a 4×4×4 periodic box with one transported scalar T,
// matching the end-to-end scenarios: diffusivity 0.01, dt 0.1.
func testConfig() *Config {
	return &Config{
		Nx: 4, Ny: 4, Nz: 4,
		Dx: 1, Dy: 1, Dz: 1,
		Dt:         0.1,
		HaloWidth:  1,
		SolverMode: SolverVariableDensity,
		Periodic:   [3]bool{true, true, true},
		Scalars:    []ScalarSpec{{Name: "T", Diffusivity: 0.01}},
	}
}

func uniformField(cfg *Config, val float64) *sparse.DenseArray {
	f := sparse.ZerosDense(cfg.fieldShape()...)
	for i := range f.Elements {
		f.Elements[i] = val
	}
	return f
}

// testStates builds a full state map with the given uniform density and
// scalar values and zero velocity.
func testStates(cfg *Config, rho float64, scalarVals map[string]float64) FieldMap {
	states := FieldMap{
		keyRho:        uniformField(cfg, rho),
		keyU:          uniformField(cfg, 0),
		keyV:          uniformField(cfg, 0),
		keyW:          uniformField(cfg, 0),
		keyP:          uniformField(cfg, 0),
		keyRhoU:       uniformField(cfg, 0),
		keyRhoV:       uniformField(cfg, 0),
		keyRhoW:       uniformField(cfg, 0),
		keyRhoThermal: uniformField(cfg, rho),
	}
	for name, val := range scalarVals {
		states[name] = uniformField(cfg, val)
		states[rhoPrefix(name)] = uniformField(cfg, rho*val)
	}
	return states
}

func cloneStates(in FieldMap) FieldMap {
	out := make(FieldMap, len(in))
	for k, v := range in {
		out[k] = v.Copy()
	}
	return out
}

// A uniform field with no gradients, zero velocity and zero source has
// a zero right-hand side everywhere: one prediction step must leave it
// untouched, halos included.
func TestPredictionUniformFieldUnchanged(t *testing.T) {
	cfg := testConfig()
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 300.})
	states0 := cloneStates(states)
	if err := s.Prestep(nil); err != nil {
		t.Fatal(err)
	}
	updated, err := s.PredictionStep(0, SingleReplicaMesh(), states, states0, FieldMap{})
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"T", "rho_T"} {
		f, ok := updated[key]
		if !ok {
			t.Fatalf("updated map missing %s", key)
		}
		for i, v := range f.Elements {
			if v != 300. {
				t.Fatalf("%s element %d = %g, want exactly 300", key, i, v)
			}
		}
	}
}

// With a constant unit source, density 1 and the conservative branch,
// rho_T must increase by exactly dt at every interior cell.
func TestPredictionConstantSource(t *testing.T) {
	cfg := testConfig()
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 300.})
	states0 := cloneStates(states)
	additional := FieldMap{srcKey("T"): uniformField(cfg, 1.)}
	if err := s.Prestep(additional); err != nil {
		t.Fatal(err)
	}
	updated, err := s.PredictionStep(0, SingleReplicaMesh(), states, states0, additional)
	if err != nil {
		t.Fatal(err)
	}
	want := 300. + cfg.Dt*1.
	cons := updated["rho_T"]
	w := cfg.HaloWidth
	for i := w; i < cfg.Nx+w; i++ {
		for j := w; j < cfg.Ny+w; j++ {
			for k := w; k < cfg.Nz+w; k++ {
				if got := cons.Get(i, j, k); got != want {
					t.Fatalf("rho_T at (%d,%d,%d) = %g, want exactly %g", i, j, k, got, want)
				}
			}
		}
	}
}

// After the prediction step the primitive and conservative variables
// must satisfy phi == rho_phi/rho on every owned cell.
func TestConservativePrimitiveConsistency(t *testing.T) {
	cfg := testConfig()
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1.2, map[string]float64{"T": 250.})
	states0 := cloneStates(states)
	if err := s.Prestep(nil); err != nil {
		t.Fatal(err)
	}
	mesh := SingleReplicaMesh()
	updated, err := s.PredictionStep(0, mesh, states, states0, FieldMap{})
	if err != nil {
		t.Fatal(err)
	}
	rho := states[keyRho]
	for i := range updated["T"].Elements {
		phi := updated["T"].Elements[i]
		recon := updated["rho_T"].Elements[i] / rho.Elements[i]
		if different(phi, recon, testTolerance) {
			t.Fatalf("element %d: phi=%g but rho_phi/rho=%g", i, phi, recon)
		}
	}

	// An external density correction rescales rho and the conservative
	// variable; the correction step must reproduce the primitive by
	// division.
	for k, v := range updated {
		states[k] = v
	}
	states[keyRho].Scale(1.1)
	states["rho_T"].Scale(1.1)
	corrected, err := s.CorrectionStep(0, mesh, states, FieldMap{})
	if err != nil {
		t.Fatal(err)
	}
	for i := range corrected["T"].Elements {
		want := states["rho_T"].Elements[i] / states[keyRho].Elements[i]
		if different(corrected["T"].Elements[i], want, testTolerance) {
			t.Fatalf("element %d: corrected phi=%g, want %g", i, corrected["T"].Elements[i], want)
		}
	}
}

// In anelastic mode the primitive scalar is advanced directly and no
// conservative buffer is returned.
func TestPredictionAnelastic(t *testing.T) {
	cfg := testConfig()
	cfg.SolverMode = SolverAnelastic
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 2., map[string]float64{"T": 300.})
	states0 := cloneStates(states)
	additional := FieldMap{srcKey("T"): uniformField(cfg, 1.)}
	if err := s.Prestep(additional); err != nil {
		t.Fatal(err)
	}
	updated, err := s.PredictionStep(0, SingleReplicaMesh(), states, states0, additional)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := updated["rho_T"]; ok {
		t.Error("anelastic advance must not return the conservative variable")
	}
	want := 300. + cfg.Dt*1./2.
	w := cfg.HaloWidth
	got := updated["T"].Get(w, w, w)
	if absDifferent(got, want) {
		t.Errorf("anelastic T = %g, want %g", got, want)
	}
}

// Requesting any scheme other than Crank–Nicolson explicit iteration
// must fail before any field is mutated.
func TestUnsupportedSchemeFailsBeforeMutation(t *testing.T) {
	cfg := testConfig()
	cfg.Scalars[0].Scheme = "rk3"
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 300.})
	states0 := cloneStates(states)
	snapshot := cloneStates(states)
	if err := s.Prestep(nil); err != nil {
		t.Fatal(err)
	}
	_, err = s.PredictionStep(0, SingleReplicaMesh(), states, states0, FieldMap{})
	if err == nil {
		t.Fatal("expected a configuration error for scheme rk3")
	}
	if _, ok := err.(*ConfigurationError); !ok {
		t.Fatalf("got %T (%v), want *ConfigurationError", err, err)
	}
	for key, f := range states {
		for i, v := range f.Elements {
			if v != snapshot[key].Elements[i] {
				t.Fatalf("state %s mutated before the scheme error surfaced", key)
			}
		}
	}
}

// A missing required state key is fatal and identifies the key.
func TestMissingStateKey(t *testing.T) {
	cfg := testConfig()
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 300.})
	states0 := cloneStates(states)
	delete(states, keyRhoU)
	if err := s.Prestep(nil); err != nil {
		t.Fatal(err)
	}
	_, err = s.PredictionStep(0, SingleReplicaMesh(), states, states0, FieldMap{})
	mse, ok := err.(*MissingStateError)
	if !ok {
		t.Fatalf("got %T (%v), want *MissingStateError", err, err)
	}
	if mse.Key != keyRhoU {
		t.Errorf("missing key reported as %q, want %q", mse.Key, keyRhoU)
	}
}

// A field with the wrong shape must be rejected at the point of
// combination.
func TestShapeMismatch(t *testing.T) {
	cfg := testConfig()
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 300.})
	states0 := cloneStates(states)
	states["T"] = sparse.ZerosDense(2, 2, 2)
	if err := s.Prestep(nil); err != nil {
		t.Fatal(err)
	}
	_, err = s.PredictionStep(0, SingleReplicaMesh(), states, states0, FieldMap{})
	if _, ok := err.(*ShapeMismatchError); !ok {
		t.Fatalf("got %T (%v), want *ShapeMismatchError", err, err)
	}
}

// countingIB counts collaborator invocations, standing in for a real
// immersed-boundary method.
type countingIB struct {
	forcingCalls int
	statesCalls  int
}

func (c *countingIB) RHSName(name string) string { return "rhs_" + name }

func (c *countingIB) UpdateForcing(replicaID int, mesh *ReplicaMesh,
	states, helper FieldMap) (FieldMap, error) {
	c.forcingCalls++
	out := make(FieldMap)
	for k, v := range helper {
		out[k] = v
	}
	return out, nil
}

func (c *countingIB) UpdateStates(replicaID int, mesh *ReplicaMesh,
	fields FieldMap, additional FieldMap, bc BoundaryRegistry) (FieldMap, error) {
	c.statesCalls++
	return fields, nil
}

// The immersed-boundary corrector runs once per prediction step (after
// all scalars are advanced) and once per scalar per correction step.
func TestImmersedBoundaryCallCounts(t *testing.T) {
	cfg := testConfig()
	cfg.Scalars = append(cfg.Scalars, ScalarSpec{Name: "q_t", Diffusivity: 0.01})
	ib := &countingIB{}
	s, err := NewScalars(cfg, LocalExchanger{}, WithImmersedBoundary(ib))
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 300., "q_t": 0.01})
	states0 := cloneStates(states)
	additional := FieldMap{ibInteriorMaskKey: uniformField(cfg, 1.)}
	if err := s.Prestep(additional); err != nil {
		t.Fatal(err)
	}
	mesh := SingleReplicaMesh()
	updated, err := s.PredictionStep(0, mesh, states, states0, additional)
	if err != nil {
		t.Fatal(err)
	}
	if ib.statesCalls != 1 {
		t.Errorf("prediction step made %d UpdateStates calls, want 1", ib.statesCalls)
	}
	if ib.forcingCalls != len(cfg.Scalars) {
		t.Errorf("prediction step made %d UpdateForcing calls, want %d",
			ib.forcingCalls, len(cfg.Scalars))
	}
	for k, v := range updated {
		states[k] = v
	}
	ib.statesCalls = 0
	if _, err := s.CorrectionStep(0, mesh, states, additional); err != nil {
		t.Fatal(err)
	}
	if ib.statesCalls != len(cfg.Scalars) {
		t.Errorf("correction step made %d UpdateStates calls, want %d",
			ib.statesCalls, len(cfg.Scalars))
	}
}

// When an immersed boundary is configured, Prestep requires the
// interior mask.
func TestPrestepRequiresMask(t *testing.T) {
	cfg := testConfig()
	s, err := NewScalars(cfg, LocalExchanger{}, WithImmersedBoundary(&countingIB{}))
	if err != nil {
		t.Fatal(err)
	}
	err = s.Prestep(FieldMap{})
	mse, ok := err.(*MissingStateError)
	if !ok {
		t.Fatalf("got %T (%v), want *MissingStateError", err, err)
	}
	if mse.Key != ibInteriorMaskKey {
		t.Errorf("missing key reported as %q, want %q", mse.Key, ibInteriorMaskKey)
	}
}

// An explicit "diffusivity" field in the additional states drives the
// diffusion operator even without the SGS model, and replaces the
// molecular value rather than adding to it.
func TestDiffusivityOverrideWithoutSGS(t *testing.T) {
	cfg := testConfig()
	cfg.Scalars[0].Diffusivity = 1. // must not leak into the update
	s, err := NewScalars(cfg, LocalExchanger{})
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 0.})
	states["T"].Set(100., 2, 2, 2)
	states["rho_T"].Set(100., 2, 2, 2)
	states0 := cloneStates(states)
	additional := FieldMap{diffusivityOverrideKey: uniformField(cfg, 0.04)}
	if err := s.Prestep(additional); err != nil {
		t.Fatal(err)
	}
	updated, err := s.PredictionStep(0, SingleReplicaMesh(), states, states0, additional)
	if err != nil {
		t.Fatal(err)
	}
	// The spike's neighbor receives dt·D·(100-0)/h² = 0.1·0.04·100 with
	// the override; the molecular value of 1 would give 10 instead.
	want := cfg.Dt * 0.04 * 100.
	if got := updated["rho_T"].Get(3, 2, 2); absDifferent(got, want) {
		t.Errorf("neighbor rho_T = %g, want %g", got, want)
	}
	if got := updated["rho_T"].Get(3, 2, 2); got == 0 {
		t.Error("diffusivity override ignored with the SGS model off")
	}
}

// Attaching the debug hook adds the raw term fields to the returned
// map without changing the advanced variables.
func TestComponentsDebugTerms(t *testing.T) {
	cfg := testConfig()
	s, err := NewScalars(cfg, LocalExchanger{}, WithComponentsDebug(NewComponentsDebug()))
	if err != nil {
		t.Fatal(err)
	}
	states := testStates(cfg, 1., map[string]float64{"T": 300.})
	states0 := cloneStates(states)
	additional := FieldMap{srcKey("T"): uniformField(cfg, 2.)}
	if err := s.Prestep(additional); err != nil {
		t.Fatal(err)
	}
	updated, err := s.PredictionStep(0, SingleReplicaMesh(), states, states0, additional)
	if err != nil {
		t.Fatal(err)
	}
	for _, term := range []string{"conv_x", "conv_y", "conv_z", "diff_x", "diff_y", "diff_z", "source"} {
		if _, ok := updated[dbgKey("T", term)]; !ok {
			t.Errorf("debug term %s missing from updated map", term)
		}
	}
	w := cfg.HaloWidth
	if got := updated[dbgKey("T", "source")].Get(w, w, w); absDifferent(got, 2.) {
		t.Errorf("debug source = %g, want 2", got)
	}
	stats := SummarizeTerms(FieldMap{"src": updated[dbgKey("T", "source")]})
	if absDifferent(stats["src"].Max, 2.) {
		t.Errorf("summarized max = %g, want 2", stats["src"].Max)
	}
}
