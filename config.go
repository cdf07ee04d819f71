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
	"io"
	"math"
	"os"

	"github.com/BurntSushi/toml"
)

// Solver modes. In the anelastic mode scalars are advanced directly in
// primitive form; otherwise the density-weighted conservative variable
// is advanced and the primitive is reconstructed by division.
const (
	SolverVariableDensity = "variable_density"
	SolverAnelastic       = "anelastic"
)

// Time-integration schemes. Only the Crank–Nicolson explicit iteration
// is supported for scalars; requesting anything else is a fatal
// configuration error at the first prediction step.
const (
	SchemeCNExplicitIteration = "cn_explicit_iteration"
)

// ScalarSpec configures one transported scalar.
type ScalarSpec struct {
	// Name of the scalar. The name selects the physics closure:
	// theta, theta_li and theta_v use the potential-temperature
	// closure; q_t, q_r, q_v and q_c the humidity closure; e_t the
	// total-energy closure; any other name the generic passive one.
	Name string

	// Diffusivity is the molecular diffusivity [m²/s]. When the
	// sub-grid-scale model is enabled, the turbulent eddy diffusivity
	// is added on top of this value.
	Diffusivity float64

	// Scheme is the time-integration scheme for this scalar. Empty
	// means cn_explicit_iteration.
	Scheme string
}

// FaceSpec is the boundary condition on one face of the domain.
// Kind is one of "dirichlet", "neumann" or "periodic". For Neumann
// conditions Value is the pre-scaled per-cell increment, i.e. the
// desired gradient multiplied by the grid spacing.
type FaceSpec struct {
	Kind  string
	Value float64
}

// BoundarySpec is the pair of face conditions (low, high) for each of
// the three spatial axes.
type BoundarySpec struct {
	X [2]FaceSpec
	Y [2]FaceSpec
	Z [2]FaceSpec
}

func (b BoundarySpec) face(dim, face int) FaceSpec {
	switch dim {
	case 0:
		return b.X[face]
	case 1:
		return b.Y[face]
	default:
		return b.Z[face]
	}
}

// Config holds the settings for one simulation. It is typically read
// from a TOML file with LoadConfig.
type Config struct {
	// Nx, Ny, Nz are the interior grid dimensions of the local
	// partition, halos excluded.
	Nx, Ny, Nz int

	// Dx, Dy, Dz are the grid spacings [m].
	Dx, Dy, Dz float64

	// Dt is the time-step size [s].
	Dt float64

	// HaloWidth is the number of ghost-cell layers on every face. It
	// is fixed for the whole run and identical for every field.
	HaloWidth int

	// SolverMode is "variable_density" or "anelastic".
	SolverMode string

	// Periodic indicates, per axis, whether the domain wraps around.
	Periodic [3]bool

	// Scalars lists the transported scalars in update order.
	Scalars []ScalarSpec

	// BC holds the static boundary condition for each transported
	// scalar. Faces whose variables carry a dynamic boundary override
	// in the additional states are replaced at every Prestep.
	BC map[string]BoundarySpec

	// UseSGS enables the Smagorinsky–Lilly sub-grid-scale model, which
	// augments the molecular diffusivity with a turbulence-estimated
	// eddy diffusivity.
	UseSGS bool

	// SmagorinskyConstant is the SGS model constant C_s. Zero selects
	// the default of 0.18.
	SmagorinskyConstant float64

	// TurbulentPrandtl converts eddy viscosity to eddy diffusivity.
	// Zero selects the default of 1/3.
	TurbulentPrandtl float64

	// RadiativeCoolingRate is the uniform cooling applied by the
	// potential-temperature closure [K/s].
	RadiativeCoolingRate float64

	// PrecipitationRate is the first-order sink coefficient applied by
	// the humidity closure [1/s].
	PrecipitationRate float64

	// InitialValues optionally sets uniform initial fields for the
	// CLI driver, keyed by variable name.
	InitialValues map[string]float64

	// OutputFile is where the CLI driver writes its NetCDF snapshot.
	// Environment variables are expanded.
	OutputFile string
}

// LoadConfig reads and validates a TOML configuration.
func LoadConfig(r io.Reader) (*Config, error) {
	c := new(Config)
	if _, err := toml.NewDecoder(r).Decode(c); err != nil {
		return nil, fmt.Errorf("swirllm: parsing configuration: %w", err)
	}
	c.OutputFile = os.ExpandEnv(c.OutputFile)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks the settings that every component relies on. It does
// not check the time-integration scheme: per the failure contract that
// is reported by the first PredictionStep, before any field mutation.
func (c *Config) Validate() error {
	if c.Nx < 1 || c.Ny < 1 || c.Nz < 1 {
		return &ConfigurationError{Setting: "Nx/Ny/Nz",
			Problem: fmt.Sprintf("grid dimensions must be positive, got %d×%d×%d", c.Nx, c.Ny, c.Nz)}
	}
	if c.Dx <= 0 || c.Dy <= 0 || c.Dz <= 0 {
		return &ConfigurationError{Setting: "Dx/Dy/Dz",
			Problem: "grid spacings must be positive"}
	}
	if c.Dt <= 0 {
		return &ConfigurationError{Setting: "Dt", Problem: "time step must be positive"}
	}
	if c.HaloWidth < 1 {
		return &ConfigurationError{Setting: "HaloWidth",
			Problem: fmt.Sprintf("halo width must be at least 1, got %d", c.HaloWidth)}
	}
	switch c.SolverMode {
	case SolverVariableDensity, SolverAnelastic:
	case "":
		c.SolverMode = SolverVariableDensity
	default:
		return &ConfigurationError{Setting: "SolverMode",
			Problem: fmt.Sprintf("unknown solver mode %q", c.SolverMode)}
	}
	if len(c.Scalars) == 0 {
		return &ConfigurationError{Setting: "Scalars",
			Problem: "at least one transported scalar is required"}
	}
	seen := make(map[string]bool)
	for _, sc := range c.Scalars {
		if sc.Name == "" {
			return &ConfigurationError{Setting: "Scalars", Problem: "scalar with empty name"}
		}
		if seen[sc.Name] {
			return &ConfigurationError{Setting: "Scalars",
				Problem: fmt.Sprintf("scalar %q listed twice", sc.Name)}
		}
		seen[sc.Name] = true
		if sc.Diffusivity < 0 {
			return &ConfigurationError{Setting: "Scalars." + sc.Name,
				Problem: "negative diffusivity"}
		}
	}
	for name, bc := range c.BC {
		for dim := 0; dim < 3; dim++ {
			for face := 0; face < 2; face++ {
				if _, err := parseBCKind(bc.face(dim, face).Kind); err != nil {
					return &ConfigurationError{Setting: "BC." + name, Problem: err.Error()}
				}
			}
		}
	}
	return nil
}

// TransportScalarNames returns the configured scalar names in update
// order. The order is fixed for the run: halo exchanges must be issued
// in identical order on every replica or the collective desynchronizes.
func (c *Config) TransportScalarNames() []string {
	names := make([]string, len(c.Scalars))
	for i, sc := range c.Scalars {
		names[i] = sc.Name
	}
	return names
}

func (c *Config) scalarSpec(name string) (ScalarSpec, bool) {
	for _, sc := range c.Scalars {
		if sc.Name == name {
			return sc, true
		}
	}
	return ScalarSpec{}, false
}

// diffusivity returns the molecular diffusivity of the named scalar.
func (c *Config) diffusivity(name string) float64 {
	sc, _ := c.scalarSpec(name)
	return sc.Diffusivity
}

// scheme returns the time-integration scheme requested for the named
// scalar.
func (c *Config) scheme(name string) string {
	sc, _ := c.scalarSpec(name)
	if sc.Scheme == "" {
		return SchemeCNExplicitIteration
	}
	return sc.Scheme
}

// fieldShape is the shape of every field on this partition, halos
// included, in storage order [x][y][z].
func (c *Config) fieldShape() []int {
	w := c.HaloWidth
	return []int{c.Nx + 2*w, c.Ny + 2*w, c.Nz + 2*w}
}

func (c *Config) spacing(dim int) float64 {
	switch dim {
	case 0:
		return c.Dx
	case 1:
		return c.Dy
	default:
		return c.Dz
	}
}

// MaxStableDt returns the largest stable time step for the given
// velocity scale, from the advective CFL condition and the von Neumann
// bound for explicit diffusion, whichever is smaller.
func (c *Config) MaxStableDt(maxVelocity float64) float64 {
	const cMax = 1.
	dt := math.Inf(1)
	if maxVelocity > 0 {
		adv := cMax / math.Sqrt(3.) / (maxVelocity * (1/c.Dx + 1/c.Dy + 1/c.Dz) / 3.)
		dt = math.Min(dt, adv)
	}
	for _, sc := range c.Scalars {
		if sc.Diffusivity <= 0 {
			continue
		}
		for _, h := range []float64{c.Dx, c.Dy, c.Dz} {
			dt = math.Min(dt, cMax*h*h/2./sc.Diffusivity)
		}
	}
	return dt
}
