package storage

import (
	"context"
	"time"

	"github.com/poiesic/syndex/core"
)

// SiloRepository persists silo metadata. Implementations must be safe for
// concurrent use.
type SiloRepository interface {
	// PutSilo stores or replaces a silo's metadata.
	PutSilo(ctx context.Context, silo *core.SiloMetadata) error

	// GetSilo returns the silo with the given ID.
	// Returns ErrNotFound when no such silo exists.
	GetSilo(ctx context.Context, siloID string) (*core.SiloMetadata, error)

	// ListSilos returns every stored silo, ordered by silo ID.
	ListSilos(ctx context.Context) ([]*core.SiloMetadata, error)

	// UpdateSiloStats records the outcome of an indexing run.
	// Returns ErrNotFound when no such silo exists.
	UpdateSiloStats(ctx context.Context, siloID string, documentCount int, lastIndexed time.Time) error

	// Close releases resources held by the repository.
	Close() error
}

// AuditRepository holds the append-only audit and usage logs.
// Implementations must be safe for concurrent use.
type AuditRepository interface {
	// AppendAccess appends one access-attempt record.
	AppendAccess(ctx context.Context, record core.AuditRecord) error

	// AppendUsage appends one privacy-usage record.
	AppendUsage(ctx context.Context, record core.UsageRecord) error

	// RecentAccess returns up to limit access records, newest first.
	RecentAccess(ctx context.Context, limit int) ([]core.AuditRecord, error)

	// Close releases resources held by the repository.
	Close() error
}
