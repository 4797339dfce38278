package core

import (
	"testing"
	"time"
)

func TestAccessLevelOrdering(t *testing.T) {
	ordered := []AccessLevel{
		AccessLevelPublic,
		AccessLevelInternal,
		AccessLevelConfidential,
		AccessLevelRestricted,
	}

	for i := 0; i < len(ordered)-1; i++ {
		if !(ordered[i] < ordered[i+1]) {
			t.Errorf("expected %s < %s", ordered[i], ordered[i+1])
		}
	}
}

func TestParseAccessLevel(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    AccessLevel
		wantErr bool
	}{
		{name: "public", input: "public", want: AccessLevelPublic},
		{name: "internal", input: "internal", want: AccessLevelInternal},
		{name: "confidential", input: "confidential", want: AccessLevelConfidential},
		{name: "restricted", input: "restricted", want: AccessLevelRestricted},
		{name: "unknown label", input: "secret", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAccessLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClearanceCovers(t *testing.T) {
	tests := []struct {
		name     string
		held     Clearance
		required Clearance
		want     bool
	}{
		{name: "equal levels", held: ClearanceSecret, required: ClearanceSecret, want: true},
		{name: "higher covers lower", held: ClearanceTopSecret, required: ClearanceConfidential, want: true},
		{name: "lower does not cover higher", held: ClearanceConfidential, required: ClearanceSecret, want: false},
		{name: "no clearance never covers", held: "", required: ClearancePublic, want: false},
		{name: "unknown label ranks lowest", held: "ultra", required: ClearanceConfidential, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.held.Covers(tt.required); got != tt.want {
				t.Errorf("Covers(%q, %q) = %v, want %v", tt.held, tt.required, got, tt.want)
			}
		})
	}
}

func TestMaxAccessLevel(t *testing.T) {
	user := &UserContext{
		AccessLevels: []AccessLevel{AccessLevelPublic, AccessLevelConfidential, AccessLevelInternal},
	}
	if got := user.MaxAccessLevel(); got != AccessLevelConfidential {
		t.Errorf("got %s, want confidential", got)
	}

	empty := &UserContext{}
	if got := empty.MaxAccessLevel(); got != AccessLevelPublic {
		t.Errorf("empty levels: got %s, want public", got)
	}
}

func TestCrossOrgPermissionsAllows(t *testing.T) {
	var nilPerms *CrossOrgPermissions
	if nilPerms.Allows("acme") {
		t.Error("nil permissions should not allow anything")
	}

	perms := &CrossOrgPermissions{Organizations: []string{"acme", "globex"}}
	if !perms.Allows("globex") {
		t.Error("expected globex to be allowed")
	}
	if perms.Allows("initech") {
		t.Error("expected initech to be denied")
	}
}

func TestAccessRulesDocumentRestricted(t *testing.T) {
	rules := &AccessRules{RestrictedDocuments: []int{2, 7}}
	if !rules.DocumentRestricted(7) {
		t.Error("expected document 7 to be restricted")
	}
	if rules.DocumentRestricted(3) {
		t.Error("expected document 3 to be unrestricted")
	}
}

func TestQueryRequestApplyDefaults(t *testing.T) {
	request := &QueryRequest{Query: "q"}
	request.ApplyDefaults()
	if request.MaxResults != DefaultMaxResults {
		t.Errorf("MaxResults = %d, want %d", request.MaxResults, DefaultMaxResults)
	}
	if request.PrivacyBudget != DefaultPrivacyBudget {
		t.Errorf("PrivacyBudget = %f, want %f", request.PrivacyBudget, DefaultPrivacyBudget)
	}

	explicit := &QueryRequest{Query: "q", MaxResults: 3, PrivacyBudget: 0.5}
	explicit.ApplyDefaults()
	if explicit.MaxResults != 3 || explicit.PrivacyBudget != 0.5 {
		t.Error("explicit values must not be overwritten")
	}
}

func TestNewIDUnique(t *testing.T) {
	a := NewID()
	b := NewID()
	if a == "" || a == b {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestTemporalConstraintsZeroValue(t *testing.T) {
	tc := TemporalConstraints{}
	if tc.BusinessHoursOnly || tc.MaxDataAge != 0 || !tc.AccessStart.IsZero() {
		t.Error("zero value must mean no constraint")
	}
	if tc.MaxDataAge != time.Duration(0) {
		t.Error("zero MaxDataAge expected")
	}
}
