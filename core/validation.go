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

import "fmt"

// ValidateSiloMetadata validates a SiloMetadata according to domain rules.
//
// Validation rules:
//   - SiloID and Name must not be empty
//   - SiloType must be one of the known types
//   - DataClassification must be a known level
//   - EmbeddingDimension must be positive
//
// NOT validated (mutated by the indexer):
//   - DocumentCount (0 is valid before the first indexing run)
//   - LastIndexed (zero is valid before the first indexing run)
func ValidateSiloMetadata(silo *SiloMetadata) error {
	if silo == nil {
		return fmt.Errorf("%w: silo is nil", ErrInvalidSilo)
	}

	if silo.SiloID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSilo, ErrEmptySiloID)
	}

	if silo.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSilo, ErrEmptySiloName)
	}

	if !ValidSiloType(silo.SiloType) {
		return fmt.Errorf("%w: %w: %q", ErrInvalidSilo, ErrInvalidSiloType, silo.SiloType)
	}

	if _, ok := accessLevelNames[silo.DataClassification]; !ok {
		return fmt.Errorf("%w: %w: %d", ErrInvalidSilo, ErrInvalidAccessLevel, silo.DataClassification)
	}

	if silo.EmbeddingDimension <= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidSilo, ErrInvalidEmbeddingDimension)
	}

	return nil
}

// ValidateUserContext validates a UserContext according to domain rules.
//
// Validation rules:
//   - UserID and OrganizationID must not be empty
//
// NOT validated (optional, absence means "no constraint"):
//   - TemporalConstraints, CrossOrgPermissions, SecurityClearance
func ValidateUserContext(user *UserContext) error {
	if user == nil {
		return fmt.Errorf("%w: user is nil", ErrInvalidUserContext)
	}

	if user.UserID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUserContext, ErrEmptyUserID)
	}

	if user.OrganizationID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidUserContext, ErrEmptyOrganizationID)
	}

	return nil
}

// ValidateQueryRequest validates a QueryRequest according to domain rules.
// Zero MaxResults and PrivacyBudget are valid; ApplyDefaults fills them.
func ValidateQueryRequest(request *QueryRequest) error {
	if request == nil {
		return fmt.Errorf("%w: request is nil", ErrInvalidQueryRequest)
	}

	if request.Query == "" {
		return fmt.Errorf("%w: %w", ErrInvalidQueryRequest, ErrEmptyQuery)
	}

	if request.PrivacyBudget < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQueryRequest, ErrInvalidPrivacyBudget)
	}

	if err := ValidateUserContext(request.User); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQueryRequest, err)
	}

	return nil
}
