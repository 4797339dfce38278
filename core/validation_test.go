package core

import (
	"errors"
	"testing"
)

func validSilo() *SiloMetadata {
	return &SiloMetadata{
		SiloID:             "silo-1",
		Name:               "engineering-docs",
		SiloType:           SiloTypeDocumentation,
		OrganizationID:     "acme",
		TeamID:             "eng",
		DataClassification: AccessLevelInternal,
		EmbeddingDimension: 384,
	}
}

func TestValidateSiloMetadata(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SiloMetadata)
		wantErr error
	}{
		{name: "valid", mutate: func(*SiloMetadata) {}},
		{name: "empty id", mutate: func(s *SiloMetadata) { s.SiloID = "" }, wantErr: ErrEmptySiloID},
		{name: "empty name", mutate: func(s *SiloMetadata) { s.Name = "" }, wantErr: ErrEmptySiloName},
		{name: "bad type", mutate: func(s *SiloMetadata) { s.SiloType = "spreadsheet" }, wantErr: ErrInvalidSiloType},
		{name: "bad classification", mutate: func(s *SiloMetadata) { s.DataClassification = 42 }, wantErr: ErrInvalidAccessLevel},
		{name: "bad dimension", mutate: func(s *SiloMetadata) { s.EmbeddingDimension = 0 }, wantErr: ErrInvalidEmbeddingDimension},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			silo := validSilo()
			tt.mutate(silo)
			err := ValidateSiloMetadata(silo)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidSilo) || !errors.Is(err, tt.wantErr) {
				t.Errorf("got %v, want wrapped %v", err, tt.wantErr)
			}
		})
	}

	if err := ValidateSiloMetadata(nil); !errors.Is(err, ErrInvalidSilo) {
		t.Errorf("nil silo: got %v", err)
	}
}

func TestValidateUserContext(t *testing.T) {
	user := &UserContext{UserID: "u1", OrganizationID: "acme"}
	if err := ValidateUserContext(user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateUserContext(&UserContext{OrganizationID: "acme"}); !errors.Is(err, ErrEmptyUserID) {
		t.Errorf("got %v, want ErrEmptyUserID", err)
	}
	if err := ValidateUserContext(&UserContext{UserID: "u1"}); !errors.Is(err, ErrEmptyOrganizationID) {
		t.Errorf("got %v, want ErrEmptyOrganizationID", err)
	}
	if err := ValidateUserContext(nil); !errors.Is(err, ErrInvalidUserContext) {
		t.Errorf("got %v, want ErrInvalidUserContext", err)
	}
}

func TestValidateQueryRequest(t *testing.T) {
	user := &UserContext{UserID: "u1", OrganizationID: "acme"}

	if err := ValidateQueryRequest(&QueryRequest{Query: "deploy process", User: user}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := ValidateQueryRequest(&QueryRequest{User: user}); !errors.Is(err, ErrEmptyQuery) {
		t.Errorf("got %v, want ErrEmptyQuery", err)
	}
	if err := ValidateQueryRequest(&QueryRequest{Query: "q", User: user, PrivacyBudget: -1}); !errors.Is(err, ErrInvalidPrivacyBudget) {
		t.Errorf("got %v, want ErrInvalidPrivacyBudget", err)
	}
	if err := ValidateQueryRequest(&QueryRequest{Query: "q"}); !errors.Is(err, ErrInvalidUserContext) {
		t.Errorf("got %v, want ErrInvalidUserContext", err)
	}
}
