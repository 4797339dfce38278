package core

import (
	"time"

	"github.com/google/uuid"
)

// AccessLevel is an ordered data classification label. The ordering is total
// and fixed: public < internal < confidential < restricted. Comparing two
// levels with < or >= compares their ordinals directly.
type AccessLevel int

const (
	AccessLevelPublic AccessLevel = iota
	AccessLevelInternal
	AccessLevelConfidential
	AccessLevelRestricted
)

var accessLevelNames = map[AccessLevel]string{
	AccessLevelPublic:       "public",
	AccessLevelInternal:     "internal",
	AccessLevelConfidential: "confidential",
	AccessLevelRestricted:   "restricted",
}

func (l AccessLevel) String() string {
	if name, ok := accessLevelNames[l]; ok {
		return name
	}
	return "unknown"
}

// ParseAccessLevel parses a classification label.
func ParseAccessLevel(s string) (AccessLevel, error) {
	for level, name := range accessLevelNames {
		if name == s {
			return level, nil
		}
	}
	return 0, ErrInvalidAccessLevel
}

// Clearance is a security clearance label, ordered separately from
// AccessLevel: public < confidential < secret < top_secret.
// The empty string means the user holds no clearance.
type Clearance string

const (
	ClearancePublic       Clearance = "public"
	ClearanceConfidential Clearance = "confidential"
	ClearanceSecret       Clearance = "secret"
	ClearanceTopSecret    Clearance = "top_secret"
)

// Ordinal returns the rank of the clearance within the hierarchy.
// Unknown or empty clearances rank lowest.
func (c Clearance) Ordinal() int {
	switch c {
	case ClearanceConfidential:
		return 1
	case ClearanceSecret:
		return 2
	case ClearanceTopSecret:
		return 3
	default:
		return 0
	}
}

// Covers reports whether this clearance satisfies the required one.
// A user without any clearance never covers a requirement.
func (c Clearance) Covers(required Clearance) bool {
	if c == "" {
		return false
	}
	return c.Ordinal() >= required.Ordinal()
}

// SiloType identifies the kind of data source behind a silo.
type SiloType string

const (
	SiloTypeCodeRepository SiloType = "code_repository"
	SiloTypeDocumentation  SiloType = "documentation"
	SiloTypeKnowledgeBase  SiloType = "knowledge_base"
	SiloTypeChatHistory    SiloType = "chat_history"
	SiloTypeIssueTracker   SiloType = "issue_tracker"
)

// ValidSiloType reports whether t is one of the known silo types.
func ValidSiloType(t SiloType) bool {
	switch t {
	case SiloTypeCodeRepository, SiloTypeDocumentation, SiloTypeKnowledgeBase,
		SiloTypeChatHistory, SiloTypeIssueTracker:
		return true
	}
	return false
}

// AccessRules is the per-silo access policy. Every field is optional; a zero
// value means "no constraint" for that rule. Unknown policy keys from
// upstream sources are dropped at registration time rather than carried in a
// free-form map, so the permission logic has compile-time coverage.
type AccessRules struct {
	// AllowedTeams grants access to members of teams other than the owning
	// team.
	AllowedTeams []string

	// RequiredRoles, when non-empty, requires the user to hold at least one
	// of the listed roles.
	RequiredRoles []string

	// ForbiddenUsers lists user IDs that are denied regardless of any other
	// rule.
	ForbiddenUsers []string

	// MinSecurityClearance, when non-empty, requires the user's clearance to
	// cover it. A user without any clearance fails this rule.
	MinSecurityClearance Clearance

	// RequiredProjects, when non-empty, requires the user to have access to
	// at least one of the listed projects.
	RequiredProjects []string

	// PublicWithinOrg opens the silo to every member of the owning
	// organization, regardless of team.
	PublicWithinOrg bool

	// RestrictedDocuments lists document indexes that additionally require
	// the restricted-documents capability on the user.
	RestrictedDocuments []int
}

// DocumentRestricted reports whether the document at docIndex is listed as
// restricted.
func (r *AccessRules) DocumentRestricted(docIndex int) bool {
	for _, idx := range r.RestrictedDocuments {
		if idx == docIndex {
			return true
		}
	}
	return false
}

// TemporalConstraints limits when a user's access is valid. Zero-valued
// fields are not evaluated.
type TemporalConstraints struct {
	// AccessStart and AccessEnd bound the access window. The window is only
	// evaluated when both are set.
	AccessStart time.Time
	AccessEnd   time.Time

	// BusinessHoursOnly restricts access to 09:00-18:00 UTC.
	BusinessHoursOnly bool

	// MaxDataAge rejects silos whose last indexing run is older than this.
	MaxDataAge time.Duration
}

// CrossOrgPermissions allow-lists foreign organizations a user may reach.
type CrossOrgPermissions struct {
	Organizations []string
}

// Allows reports whether the organization is allow-listed.
func (p *CrossOrgPermissions) Allows(organizationID string) bool {
	if p == nil {
		return false
	}
	for _, org := range p.Organizations {
		if org == organizationID {
			return true
		}
	}
	return false
}

// UserContext carries everything the permission engine needs to decide
// access for a user.
type UserContext struct {
	UserID         string
	OrganizationID string
	TeamIDs        []string

	// AccessLevels is the set of classification levels granted to the user,
	// not a single level. The effective level is the maximum of the set.
	AccessLevels []AccessLevel

	// SecurityClearance is empty when the user holds no clearance.
	SecurityClearance Clearance

	Roles         []string
	ProjectAccess []string

	// CanAccessRestrictedDocs grants access to documents listed in a silo's
	// RestrictedDocuments rule.
	CanAccessRestrictedDocs bool

	// TemporalConstraints is nil when the user's access is not
	// time-restricted.
	TemporalConstraints *TemporalConstraints

	// CrossOrgPermissions is nil when the user may not cross organizational
	// boundaries.
	CrossOrgPermissions *CrossOrgPermissions
}

// MaxAccessLevel returns the user's effective classification level, the
// maximum over all granted levels. A user with no granted levels is treated
// as public.
func (u *UserContext) MaxAccessLevel() AccessLevel {
	max := AccessLevelPublic
	for _, level := range u.AccessLevels {
		if level > max {
			max = level
		}
	}
	return max
}

// MemberOfTeam reports whether the user belongs to the given team.
func (u *UserContext) MemberOfTeam(teamID string) bool {
	for _, id := range u.TeamIDs {
		if id == teamID {
			return true
		}
	}
	return false
}

// SiloMetadata describes an independently governed data source. Identity
// fields are immutable once registered; DocumentCount and LastIndexed are
// mutated only by the indexer on (re)index.
type SiloMetadata struct {
	SiloID             string
	Name               string
	SiloType           SiloType
	OrganizationID     string
	TeamID             string
	AccessRules        AccessRules
	DataClassification AccessLevel
	LastIndexed        time.Time
	EmbeddingDimension int
	DocumentCount      int
}

// Document is a single unit of content retrieved from a silo.
type Document struct {
	ID       string
	Content  string
	Metadata map[string]string
}

// SourceAttribution identifies where a result came from.
type SourceAttribution struct {
	Silo         string
	Team         string
	Organization string
}

// SynthesisRestrictions are per-result constraints consulted before a result
// may be fed into downstream synthesis.
type SynthesisRestrictions struct {
	// NoSynthesis excludes the result from synthesis entirely.
	NoSynthesis bool

	// MinConfidence excludes the result when its relevance score falls below
	// this threshold.
	MinConfidence float64
}

// KnowledgeResult is one matched document from a federated query. Results
// are transient query-scoped values; they are never persisted. A result is
// only ever constructed after both the silo-level and the document-level
// permission checks have passed.
type KnowledgeResult struct {
	ResultID string
	SiloID   string
	Content  string
	Metadata map[string]string

	// RelevanceScore is the noised similarity score, in [0,1].
	RelevanceScore float64

	// PrivacyScore is the privacy budget consumed to produce this result.
	PrivacyScore float64

	Source      SourceAttribution
	AccessLevel AccessLevel
	CreatedAt   time.Time

	// SynthesisRestrictions is nil when the result carries no
	// synthesis-specific constraints.
	SynthesisRestrictions *SynthesisRestrictions
}

// Default query parameters.
const (
	DefaultMaxResults    = 10
	DefaultPrivacyBudget = 0.1
)

// QueryRequest describes one federated query.
type QueryRequest struct {
	Query string
	User  *UserContext

	// MaxResults caps the globally ranked result list. Zero means
	// DefaultMaxResults.
	MaxResults int

	// PrivacyBudget is the epsilon spent on this query, split across the
	// accessible silos. Zero means DefaultPrivacyBudget.
	PrivacyBudget float64

	// IncludeSilos, when non-empty, restricts the query to the listed silos.
	// ExcludeSilos removes silos and wins over IncludeSilos.
	IncludeSilos []string
	ExcludeSilos []string

	Filters map[string]string
}

// ApplyDefaults fills zero-valued tunables with their defaults.
func (r *QueryRequest) ApplyDefaults() {
	if r.MaxResults <= 0 {
		r.MaxResults = DefaultMaxResults
	}
	if r.PrivacyBudget <= 0 {
		r.PrivacyBudget = DefaultPrivacyBudget
	}
}

// JobStatus is the lifecycle state of an indexing job.
type JobStatus string

const (
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// IndexingJob records the outcome of indexing one silo. A failed job carries
// its error message; a failure never aborts sibling jobs.
type IndexingJob struct {
	JobID              string
	SiloID             string
	Status             JobStatus
	Progress           float64
	DocumentsProcessed int
	PrivacyBudgetUsed  float64
	ErrorMessage       string
	StartedAt          time.Time
	CompletedAt        time.Time
}

// AuditRecord is one persisted access-attempt entry.
type AuditRecord struct {
	Timestamp      time.Time
	UserID         string
	OrganizationID string
	SiloID         string
	SiloName       string
	Granted        bool
	Reason         string
}

// UsageRecord is one entry in the privacy manager's append-only usage log.
type UsageRecord struct {
	Timestamp   time.Time
	Mechanism   string
	BudgetSpent float64
	Sensitivity float64
	DataSize    int
}

// NewID returns a fresh identifier for results and jobs.
func NewID() string {
	return uuid.NewString()
}
