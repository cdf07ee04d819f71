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

// Package swirllm solves the transport equations for a set of coupled
// scalar fields (potential temperature, humidity, total energy, and
// passive tracers) carried by a flow on a structured 3-D grid that is
// partitioned across replicas, each owning a sub-block plus a halo of
// ghost cells.
//
// The central type is Scalars, which orchestrates one predictor/corrector
// cycle per simulation step: Prestep refreshes the boundary-condition and
// source registries from externally supplied state, PredictionStep
// advances every transported scalar from mid-point states, and
// CorrectionStep reconstructs the primitive scalars after the external
// pressure/density correction. Because density is staggered in time with
// the scalars, all right-hand-side terms are evaluated at the arithmetic
// average of the previous and latest states.
//
// Ghost-cell communication is delegated to a HaloExchanger; the package
// ships a single-replica implementation (LocalExchanger) and treats the
// multi-replica collective as an external collaborator.
package swirllm
