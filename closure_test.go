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
	"testing"

	"github.com/ctessum/sparse"
)

// Closure dispatch is total: the theta, moisture and total-energy
// families get their physics variant, everything else falls back to the
// passive scalar.
func TestClosureDispatch(t *testing.T) {
	cfg := testConfig()
	cases := []struct {
		name string
		want string
	}{
		{"theta", "potential temperature"},
		{"theta_li", "potential temperature"},
		{"theta_v", "potential temperature"},
		{"q_t", "humidity"},
		{"q_r", "humidity"},
		{"q_v", "humidity"},
		{"q_c", "humidity"},
		{"e_t", "total energy"},
		{"T", "generic"},
		{"co2", "generic"},
	}
	for _, c := range cases {
		closure := newClosure(cfg, c.name)
		var got string
		switch closure.(type) {
		case *potentialTemperature:
			got = "potential temperature"
		case *humidity:
			got = "humidity"
		case *totalEnergy:
			got = "total energy"
		case *genericScalar:
			got = "generic"
		}
		if got != c.want {
			t.Errorf("closure for %s is %s, want %s", c.name, got, c.want)
		}
	}
}

// linearXStates builds states with unit density, unit x-velocity and a
// scalar that increases by slope per cell along x.
func linearXStates(cfg *Config, slope float64) (FieldMap, *sparse.DenseArray) {
	states := testStates(cfg, 1., nil)
	for i := range states[keyU].Elements {
		states[keyU].Elements[i] = 1.
	}
	phi := uniformField(cfg, 0)
	shape := phi.Shape
	for i := 0; i < shape[0]; i++ {
		for j := 0; j < shape[1]; j++ {
			for k := 0; k < shape[2]; k++ {
				phi.Set(slope*float64(i), i, j, k)
			}
		}
	}
	return states, phi
}

// Upwind convection of a linear profile carried by a uniform velocity
// recovers u·∂phi/∂x exactly at every stencil cell.
func TestGenericConvectionLinearProfile(t *testing.T) {
	cfg := testConfig()
	const slope = 2.
	states, phi := linearXStates(cfg, slope)
	g := &genericScalar{cfg: cfg, name: "T"}
	conv, err := g.Convection(0, SingleReplicaMesh(), phi, states, nil)
	if err != nil {
		t.Fatal(err)
	}
	shape := phi.Shape
	for i := 1; i < shape[0]-1; i++ {
		if got := conv[0].Get(i, 2, 2); absDifferent(got, slope) {
			t.Fatalf("conv_x at i=%d is %g, want %g", i, got, slope)
		}
	}
	// No cross-axis velocity, no cross-axis convection.
	for dim := 1; dim < 3; dim++ {
		for _, v := range conv[dim].Elements {
			if v != 0 {
				t.Fatalf("axis %d convection nonzero for zero velocity", dim)
			}
		}
	}
	// Stencil-edge cells stay zero; the halo exchange owns them.
	if conv[0].Get(0, 2, 2) != 0 || conv[0].Get(shape[0]-1, 2, 2) != 0 {
		t.Error("convection wrote to a stencil-edge cell")
	}
}

// Central diffusion of a linear profile with constant rho·D vanishes.
func TestGenericDiffusionLinearProfile(t *testing.T) {
	cfg := testConfig()
	states, phi := linearXStates(cfg, 3.)
	helper := FieldMap{}
	for dim := 0; dim < 3; dim++ {
		helper[diffusivityKeys[dim]] = uniformField(cfg, 0.01)
	}
	g := &genericScalar{cfg: cfg, name: "T"}
	diff, err := g.Diffusion(0, SingleReplicaMesh(), phi, states, helper)
	if err != nil {
		t.Fatal(err)
	}
	for dim := 0; dim < 3; dim++ {
		for i, v := range diff[dim].Elements {
			if absDifferent(v, 0) {
				t.Fatalf("axis %d diffusion element %d = %g, want 0", dim, i, v)
			}
		}
	}

	// A missing per-axis diffusivity field is an error, not a default.
	delete(helper, diffusivityKeys[1])
	_, err = g.Diffusion(0, SingleReplicaMesh(), phi, states, helper)
	if _, ok := err.(*MissingStateError); !ok {
		t.Fatalf("got %T (%v), want *MissingStateError", err, err)
	}
}

func TestPotentialTemperatureSource(t *testing.T) {
	cfg := testConfig()
	cfg.RadiativeCoolingRate = 2.
	states := testStates(cfg, 1.5, nil)
	phi := uniformField(cfg, 300.)
	c := newClosure(cfg, "theta")
	src, err := c.Source(0, SingleReplicaMesh(), phi, states, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range src.Elements {
		if absDifferent(v, -3.) {
			t.Fatalf("element %d: source = %g, want -3", i, v)
		}
	}
}

func TestHumiditySource(t *testing.T) {
	cfg := testConfig()
	cfg.PrecipitationRate = 0.1
	states := testStates(cfg, 2., nil)
	phi := uniformField(cfg, 0.5)
	c := newClosure(cfg, "q_t")
	src, err := c.Source(0, SingleReplicaMesh(), phi, states, nil)
	if err != nil {
		t.Fatal(err)
	}
	for i, v := range src.Elements {
		if absDifferent(v, -0.1) {
			t.Fatalf("element %d: source = %g, want -0.1", i, v)
		}
	}
}

// The pressure-work source vanishes for a uniform pressure field and
// recovers -u·∂p/∂x for a linear one.
func TestTotalEnergySource(t *testing.T) {
	cfg := testConfig()
	states := testStates(cfg, 1., nil)
	phi := uniformField(cfg, 1.)
	c := newClosure(cfg, "e_t")
	src, err := c.Source(0, SingleReplicaMesh(), phi, states, nil)
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range src.Elements {
		if v != 0 {
			t.Fatal("pressure work nonzero for uniform pressure")
		}
	}

	shape := phi.Shape
	for i := 0; i < shape[0]; i++ {
		forPlane(shape, 0, i, func(ii, j, k int) {
			states[keyP].Set(10.*float64(ii), ii, j, k)
		})
	}
	for i := range states[keyU].Elements {
		states[keyU].Elements[i] = 2.
	}
	src, err = c.Source(0, SingleReplicaMesh(), phi, states, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got := src.Get(2, 2, 2); absDifferent(got, -20.) {
		t.Errorf("pressure work = %g, want -20", got)
	}
}
