package access

import (
	"context"
	"log/slog"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/poiesic/syndex/core"
)

const (
	// cacheTTL bounds how long a cached decision may be served. Entries
	// older than the TTL are treated as absent, not as denials.
	cacheTTL = 5 * time.Minute

	// cacheSize caps the number of (user, silo) decisions held at once.
	cacheSize = 4096

	// Business hours evaluated by the temporal check, in UTC.
	businessHoursStart = 9
	businessHoursEnd   = 18
)

// AuditSink receives access-attempt records for persistence. Persistence
// failures are logged and never surface to the caller.
type AuditSink interface {
	AppendAccess(ctx context.Context, record core.AuditRecord) error
}

// Engine decides silo, document, and synthesis access for users.
// It is safe for concurrent use.
type Engine struct {
	cache  *expirable.LRU[string, bool]
	logger *slog.Logger
	sink   AuditSink
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
	}
}

// WithAuditSink persists every audited access attempt through the sink.
func WithAuditSink(sink AuditSink) Option {
	return func(e *Engine) {
		e.sink = sink
	}
}

// WithClock overrides the engine's time source. Intended for tests of the
// temporal checks.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates a permission engine with an empty decision cache.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		cache:  expirable.NewLRU[string, bool](cacheSize, nil, cacheTTL),
		logger: slog.Default(),
		now:    func() time.Time { return time.Now().UTC() },
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// CheckSiloAccess reports whether the user may access the silo. The
// decision is cached per (user, silo) for five minutes; see the package
// documentation for the staleness property this implies.
func (e *Engine) CheckSiloAccess(silo *core.SiloMetadata, user *core.UserContext) bool {
	if silo == nil || user == nil {
		return false
	}

	key := user.UserID + ":" + silo.SiloID
	if granted, ok := e.cache.Get(key); ok {
		return granted
	}

	granted := e.checkOrganizational(silo, user) &&
		e.checkTeam(silo, user) &&
		e.checkClassification(silo.DataClassification, user) &&
		e.checkTemporal(silo, user) &&
		e.checkCustomRules(silo, user)

	e.cache.Add(key, granted)
	return granted
}

// checkOrganizational passes when the silo belongs to the user's
// organization or the silo's organization is allow-listed for the user.
func (e *Engine) checkOrganizational(silo *core.SiloMetadata, user *core.UserContext) bool {
	if silo.OrganizationID == user.OrganizationID {
		return true
	}
	return user.CrossOrgPermissions.Allows(silo.OrganizationID)
}

// checkTeam passes on direct membership, an allowed_teams grant, or a
// public_within_org silo in the user's own organization.
func (e *Engine) checkTeam(silo *core.SiloMetadata, user *core.UserContext) bool {
	if user.MemberOfTeam(silo.TeamID) {
		return true
	}

	for _, team := range silo.AccessRules.AllowedTeams {
		if user.MemberOfTeam(team) {
			return true
		}
	}

	if silo.AccessRules.PublicWithinOrg {
		return silo.OrganizationID == user.OrganizationID
	}

	return false
}

// checkClassification passes when the user's effective level covers the
// required one. The ordering is the AccessLevel ordinal.
func (e *Engine) checkClassification(required core.AccessLevel, user *core.UserContext) bool {
	return user.MaxAccessLevel() >= required
}

// checkTemporal evaluates the user's time constraints, if any. Every
// configured sub-constraint must hold.
func (e *Engine) checkTemporal(silo *core.SiloMetadata, user *core.UserContext) bool {
	constraints := user.TemporalConstraints
	if constraints == nil {
		return true
	}

	now := e.now()

	if !constraints.AccessStart.IsZero() && !constraints.AccessEnd.IsZero() {
		if now.Before(constraints.AccessStart) || now.After(constraints.AccessEnd) {
			return false
		}
	}

	if constraints.BusinessHoursOnly {
		hour := now.UTC().Hour()
		if hour < businessHoursStart || hour >= businessHoursEnd {
			return false
		}
	}

	if constraints.MaxDataAge > 0 && !silo.LastIndexed.IsZero() {
		if now.Sub(silo.LastIndexed) > constraints.MaxDataAge {
			return false
		}
	}

	return true
}

// checkCustomRules evaluates the silo's own policy fields. Zero-valued
// fields impose no constraint.
func (e *Engine) checkCustomRules(silo *core.SiloMetadata, user *core.UserContext) bool {
	rules := &silo.AccessRules

	if len(rules.RequiredRoles) > 0 && !intersects(rules.RequiredRoles, user.Roles) {
		return false
	}

	for _, forbidden := range rules.ForbiddenUsers {
		if forbidden == user.UserID {
			return false
		}
	}

	if rules.MinSecurityClearance != "" {
		if !user.SecurityClearance.Covers(rules.MinSecurityClearance) {
			return false
		}
	}

	if len(rules.RequiredProjects) > 0 && !intersects(rules.RequiredProjects, user.ProjectAccess) {
		return false
	}

	return true
}

// CheckDocumentAccess reports whether the user may access one document
// within a silo. Silo-level access is required first; documents listed as
// restricted additionally require the restricted-documents capability.
func (e *Engine) CheckDocumentAccess(silo *core.SiloMetadata, docIndex int, user *core.UserContext) bool {
	if !e.CheckSiloAccess(silo, user) {
		return false
	}

	if silo.AccessRules.DocumentRestricted(docIndex) {
		return user.CanAccessRestrictedDocs
	}

	return true
}

// CheckSynthesisAccess re-validates a result immediately before synthesis.
// Results may be cached or stale by the time synthesis runs, so the
// classification gate is applied again, followed by any per-result
// synthesis restrictions.
func (e *Engine) CheckSynthesisAccess(ctx context.Context, result *core.KnowledgeResult, user *core.UserContext) bool {
	if result == nil || user == nil {
		return false
	}
	if ctx.Err() != nil {
		return false
	}

	if !e.checkClassification(result.AccessLevel, user) {
		return false
	}

	if restrictions := result.SynthesisRestrictions; restrictions != nil {
		if restrictions.NoSynthesis {
			return false
		}
		if result.RelevanceScore < restrictions.MinConfidence {
			return false
		}
	}

	return true
}

// AccessibleSilos filters silos by CheckSiloAccess, preserving order.
func (e *Engine) AccessibleSilos(user *core.UserContext, silos []*core.SiloMetadata) []*core.SiloMetadata {
	accessible := make([]*core.SiloMetadata, 0, len(silos))
	for _, silo := range silos {
		if e.CheckSiloAccess(silo, user) {
			accessible = append(accessible, silo)
		}
	}
	return accessible
}

// AuditAccessAttempt emits an audit entry for an access decision. It only
// logs and, when configured, persists; it never mutates state and never
// returns an error.
func (e *Engine) AuditAccessAttempt(user *core.UserContext, silo *core.SiloMetadata, granted bool, reason string) {
	if user == nil || silo == nil {
		return
	}

	record := core.AuditRecord{
		Timestamp:      e.now(),
		UserID:         user.UserID,
		OrganizationID: user.OrganizationID,
		SiloID:         silo.SiloID,
		SiloName:       silo.Name,
		Granted:        granted,
		Reason:         reason,
	}

	e.logger.Info("access audit",
		"user", record.UserID,
		"organization", record.OrganizationID,
		"silo", record.SiloID,
		"granted", record.Granted,
		"reason", record.Reason,
		"classification", silo.DataClassification.String(),
	)

	if e.sink != nil {
		if err := e.sink.AppendAccess(context.Background(), record); err != nil {
			e.logger.Error("error persisting audit record", "silo", record.SiloID, "err", err)
		}
	}
}

// InvalidateCache drops every cached decision. Useful after policy changes
// that must take effect before the TTL elapses.
func (e *Engine) InvalidateCache() {
	e.cache.Purge()
}

func intersects(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
