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


package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidSilo indicates a SiloMetadata failed validation.
	ErrInvalidSilo = errors.New("invalid silo metadata")

	// ErrInvalidUserContext indicates a UserContext failed validation.
	ErrInvalidUserContext = errors.New("invalid user context")

	// ErrInvalidQueryRequest indicates a QueryRequest failed validation.
	ErrInvalidQueryRequest = errors.New("invalid query request")

	// ErrInvalidAccessLevel indicates an unknown classification label.
	ErrInvalidAccessLevel = errors.New("invalid access level")

	// ErrInvalidSiloType indicates an unknown silo type.
	ErrInvalidSiloType = errors.New("invalid silo type")

	// ErrEmptySiloID indicates the SiloID field is empty.
	ErrEmptySiloID = errors.New("silo id cannot be empty")

	// ErrEmptySiloName indicates the Name field is empty.
	ErrEmptySiloName = errors.New("silo name cannot be empty")

	// ErrEmptyUserID indicates the UserID field is empty.
	ErrEmptyUserID = errors.New("user id cannot be empty")

	// ErrEmptyOrganizationID indicates the OrganizationID field is empty.
	ErrEmptyOrganizationID = errors.New("organization id cannot be empty")

	// ErrEmptyQuery indicates the Query field is empty.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidEmbeddingDimension indicates a non-positive embedding dimension.
	ErrInvalidEmbeddingDimension = errors.New("embedding dimension must be positive")

	// ErrInvalidPrivacyBudget indicates a negative privacy budget.
	ErrInvalidPrivacyBudget = errors.New("privacy budget cannot be negative")
)
