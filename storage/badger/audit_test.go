package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/poiesic/syndex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditAppendAndRecentAccess(t *testing.T) {
	repo := newAuditRepo(t)
	ctx := context.Background()

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		err := repo.AppendAccess(ctx, core.AuditRecord{
			Timestamp: base.Add(time.Duration(i) * time.Second),
			UserID:    fmt.Sprintf("u%d", i),
			SiloID:    "s1",
			Granted:   i%2 == 0,
			Reason:    "test",
		})
		require.NoError(t, err)
	}

	records, err := repo.RecentAccess(ctx, 3)
	require.NoError(t, err)
	require.Len(t, records, 3)

	// Newest first.
	assert.Equal(t, "u4", records[0].UserID)
	assert.Equal(t, "u3", records[1].UserID)
	assert.Equal(t, "u2", records[2].UserID)
}

func TestAuditRecentAccessLimits(t *testing.T) {
	repo := newAuditRepo(t)
	ctx := context.Background()

	records, err := repo.RecentAccess(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, records)

	require.NoError(t, repo.AppendAccess(ctx, core.AuditRecord{UserID: "u1", SiloID: "s1"}))

	records, err = repo.RecentAccess(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)

	records, err = repo.RecentAccess(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAuditZeroTimestampFilled(t *testing.T) {
	repo := newAuditRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AppendAccess(ctx, core.AuditRecord{UserID: "u1", SiloID: "s1"}))

	records, err := repo.RecentAccess(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.False(t, records[0].Timestamp.IsZero())
}

func TestAuditAppendUsage(t *testing.T) {
	repo := newAuditRepo(t)

	err := repo.AppendUsage(context.Background(), core.UsageRecord{
		Mechanism:   "laplace_score",
		BudgetSpent: 0.01,
	})
	require.NoError(t, err)
}

func newAuditRepo(t *testing.T) *AuditRepository {
	t.Helper()

	backend, err := OpenBackend("", true)
	require.NoError(t, err)

	repo, err := NewAuditRepository(backend)
	require.NoError(t, err)

	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	return repo
}
