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

import "fmt"

// ConfigurationError reports an unsupported or inconsistent configuration
// setting, for example a time-integration scheme other than
// Crank–Nicolson explicit iteration. It is fatal: the run must be aborted
// and the configuration fixed.
type ConfigurationError struct {
	Setting string
	Problem string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("swirllm: configuration %s: %s", e.Setting, e.Problem)
}

// MissingStateError reports that a required key was absent from a state
// map. It indicates an integration bug in the caller, not a transient
// condition, and is never retried.
type MissingStateError struct {
	Key string
	Map string // which state map the key was expected in
}

func (e *MissingStateError) Error() string {
	return fmt.Sprintf("swirllm: required variable %q missing from %s", e.Key, e.Map)
}

// ShapeMismatchError reports that a field presented for combination does
// not match the shape of its peers.
type ShapeMismatchError struct {
	Name string
	Got  []int
	Want []int
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("swirllm: field %q has shape %v, want %v", e.Name, e.Got, e.Want)
}
