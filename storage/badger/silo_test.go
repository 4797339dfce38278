package badger

import (
	"context"
	"testing"
	"time"

	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepos(t *testing.T) (storage.SiloRepository, storage.AuditRepository) {
	t.Helper()

	siloRepo, auditRepo, backend, err := NewMemoryRepositories()
	require.NoError(t, err)

	t.Cleanup(func() {
		siloRepo.Close()
		auditRepo.Close()
		backend.Close()
	})

	return siloRepo, auditRepo
}

func testSilo(id string) *core.SiloMetadata {
	return &core.SiloMetadata{
		SiloID:             id,
		Name:               "silo " + id,
		SiloType:           core.SiloTypeDocumentation,
		OrganizationID:     "acme",
		TeamID:             "eng",
		DataClassification: core.AccessLevelInternal,
		EmbeddingDimension: 8,
	}
}

func TestSiloPutGet(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	silo := testSilo("s1")
	silo.AccessRules.AllowedTeams = []string{"sales"}
	require.NoError(t, repo.PutSilo(ctx, silo))

	got, err := repo.GetSilo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, silo, got)
}

func TestSiloGetMissing(t *testing.T) {
	repo, _ := newTestRepos(t)

	_, err := repo.GetSilo(context.Background(), "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSiloPutReplaces(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	silo := testSilo("s1")
	require.NoError(t, repo.PutSilo(ctx, silo))

	silo.Name = "renamed"
	require.NoError(t, repo.PutSilo(ctx, silo))

	got, err := repo.GetSilo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Name)
}

func TestSiloListOrdered(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	for _, id := range []string{"s3", "s1", "s2"} {
		require.NoError(t, repo.PutSilo(ctx, testSilo(id)))
	}

	silos, err := repo.ListSilos(ctx)
	require.NoError(t, err)
	require.Len(t, silos, 3)

	assert.Equal(t, "s1", silos[0].SiloID)
	assert.Equal(t, "s2", silos[1].SiloID)
	assert.Equal(t, "s3", silos[2].SiloID)
}

func TestSiloUpdateStats(t *testing.T) {
	repo, _ := newTestRepos(t)
	ctx := context.Background()

	require.NoError(t, repo.PutSilo(ctx, testSilo("s1")))

	indexed := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateSiloStats(ctx, "s1", 42, indexed))

	got, err := repo.GetSilo(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 42, got.DocumentCount)
	assert.True(t, got.LastIndexed.Equal(indexed))

	assert.ErrorIs(t, repo.UpdateSiloStats(ctx, "nope", 1, indexed), storage.ErrNotFound)
}
