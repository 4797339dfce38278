// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package privacy

import "errors"

var (
	// ErrInsufficientBudget is returned by hard-fail mechanisms when the
	// requested epsilon cannot be covered by the remaining budget.
	ErrInsufficientBudget = errors.New("insufficient privacy budget")

	// ErrInvalidEpsilon is returned when a mechanism is invoked with a
	// non-positive epsilon.
	ErrInvalidEpsilon = errors.New("epsilon must be positive")

	// ErrEmptyEmbeddings is returned when there are no embeddings to noise.
	ErrEmptyEmbeddings = errors.New("no embeddings provided")
)
