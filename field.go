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
	"github.com/ctessum/sparse"
	"gonum.org/v1/gonum/floats"
)

// FieldMap maps variable names to their per-cell values over the local
// partition, halos included. Three instances flow through each step:
// the latest predicted states, the frozen previous-step states, and the
// externally supplied additional states (forcing terms, masks,
// diffusivity hints, dynamic boundary values).
//
// All fields in one FieldMap must share the same shape
// [nx+2w][ny+2w][nz+2w], where w is the run's fixed halo width.
type FieldMap map[string]*sparse.DenseArray

// Names of the flow-field variables that every state map must contain
// before a scalar update.
const (
	keyRho        = "rho"
	keyU          = "u"
	keyV          = "v"
	keyW          = "w"
	keyP          = "p"
	keyRhoU       = "rho_u"
	keyRhoV       = "rho_v"
	keyRhoW       = "rho_w"
	keyRhoThermal = "rho_thermal"
)

// rhoPrefix converts a primitive scalar name to the name of its
// density-weighted conservative counterpart.
func rhoPrefix(name string) string { return "rho_" + name }

// requiredStateKeys lists the variables that must be present in the
// state map handed to PredictionStep, including the per-scalar
// conservative variables.
func requiredStateKeys(scalarNames []string) []string {
	keys := []string{keyRho, keyU, keyV, keyW, keyP,
		keyRhoU, keyRhoV, keyRhoW, keyRhoThermal}
	for _, s := range scalarNames {
		keys = append(keys, s, rhoPrefix(s))
	}
	return keys
}

// require returns a MissingStateError for the first key in keys that is
// absent from m.
func (m FieldMap) require(mapName string, keys ...string) error {
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			return &MissingStateError{Key: k, Map: mapName}
		}
	}
	return nil
}

func sameShape(a, b *sparse.DenseArray) bool {
	if len(a.Shape) != len(b.Shape) {
		return false
	}
	for i, n := range a.Shape {
		if b.Shape[i] != n {
			return false
		}
	}
	return true
}

// checkShape verifies that f is shaped like ref before the two are
// combined arithmetically.
func checkShape(name string, f, ref *sparse.DenseArray) error {
	if !sameShape(f, ref) {
		return &ShapeMismatchError{Name: name, Got: f.Shape, Want: ref.Shape}
	}
	return nil
}

func zerosLike(f *sparse.DenseArray) *sparse.DenseArray {
	return sparse.ZerosDense(f.Shape...)
}

// constantLike returns a field shaped like f holding val everywhere.
func constantLike(val float64, f *sparse.DenseArray) *sparse.DenseArray {
	out := sparse.ZerosDense(f.Shape...)
	for i := range out.Elements {
		out.Elements[i] = val
	}
	return out
}

// average returns the arithmetic mid-point of two fields, the quantity
// at which all right-hand-side terms are evaluated because of the time
// staggering between density and the scalars.
func average(a, b *sparse.DenseArray) *sparse.DenseArray {
	out := zerosLike(a)
	floats.AddTo(out.Elements, a.Elements, b.Elements)
	floats.Scale(0.5, out.Elements)
	return out
}

// mulFields returns the elementwise product a*b.
func mulFields(a, b *sparse.DenseArray) *sparse.DenseArray {
	out := zerosLike(a)
	floats.MulTo(out.Elements, a.Elements, b.Elements)
	return out
}

// divFields returns the elementwise quotient a/b.
func divFields(a, b *sparse.DenseArray) *sparse.DenseArray {
	out := zerosLike(a)
	floats.DivTo(out.Elements, a.Elements, b.Elements)
	return out
}

// addScaled returns a + alpha*b without modifying either input. It is
// the shape of every explicit time advance in this package.
func addScaled(a *sparse.DenseArray, alpha float64, b *sparse.DenseArray) *sparse.DenseArray {
	out := zerosLike(a)
	floats.AddScaledTo(out.Elements, a.Elements, alpha, b.Elements)
	return out
}

func harmonicMean(a, b float64) float64 {
	if a+b == 0 {
		return 0
	}
	return 2. * a * b / (a + b)
}
