package syndex

import (
	"context"
	"fmt"
	"testing"

	"github.com/poiesic/syndex/ai/mock"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/index"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSystem(t *testing.T, source index.DocumentSource) *System {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 16

	system, err := NewSystem("",
		WithInMemory(),
		WithProvider(mock.NewMockProviderWithEmbedder(embedder)),
		WithDocumentSource(source),
		WithGlobalPrivacyBudget(10.0),
	)
	require.NoError(t, err)
	t.Cleanup(func() { system.Close() })

	return system
}

func sysSilo(id string) *core.SiloMetadata {
	return &core.SiloMetadata{
		SiloID:             id,
		Name:               "silo " + id,
		SiloType:           core.SiloTypeKnowledgeBase,
		OrganizationID:     "acme",
		TeamID:             "eng",
		DataClassification: core.AccessLevelInternal,
		EmbeddingDimension: 16,
		AccessRules:        core.AccessRules{PublicWithinOrg: true},
	}
}

func sysUser() *core.UserContext {
	return &core.UserContext{
		UserID:         "u1",
		OrganizationID: "acme",
		TeamIDs:        []string{"eng"},
		AccessLevels:   []core.AccessLevel{core.AccessLevelInternal},
	}
}

func TestSystemEndToEnd(t *testing.T) {
	source := index.NewStaticSource()
	for _, siloID := range []string{"s1", "s2"} {
		for i := 0; i < 4; i++ {
			source.AddDocuments(siloID, core.Document{
				ID:      fmt.Sprintf("%s_doc_%d", siloID, i),
				Content: fmt.Sprintf("document %d of %s about deployments", i, siloID),
			})
		}
	}

	system := newTestSystem(t, source)
	ctx := context.Background()

	summary, jobs := system.BuildGlobalIndex(ctx, []*core.SiloMetadata{sysSilo("s1"), sysSilo("s2")})
	require.Equal(t, 2, summary.IndexedSilos)
	require.Len(t, jobs, 2)

	// Registrations persisted through the silo repository.
	silos, err := system.ListSilos(ctx)
	require.NoError(t, err)
	assert.Len(t, silos, 2)

	// A query may or may not clear the candidate threshold under noise,
	// but it must never error and never exceed max results.
	results, err := system.Query(ctx, &core.QueryRequest{
		Query:      "deployment runbook",
		User:       sysUser(),
		MaxResults: 5,
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, len(results), 5)
	for _, result := range results {
		assert.GreaterOrEqual(t, result.RelevanceScore, 0.0)
		assert.LessOrEqual(t, result.RelevanceScore, 1.0)
		assert.Equal(t, "acme", result.Source.Organization)
	}

	// Indexing spent budget through the shared ledger.
	report := system.PrivacyReport()
	assert.Equal(t, 10.0, report.GlobalBudget)
	assert.InDelta(t, 0.2, report.Usage.Mechanisms["gaussian_noise"].TotalBudget, 1e-9)
}

func TestSystemUpdateSiloIndex(t *testing.T) {
	source := index.NewStaticSource()
	source.AddDocuments("s1", core.Document{ID: "a", Content: "alpha"})

	system := newTestSystem(t, source)
	ctx := context.Background()

	job := system.IndexSilo(ctx, sysSilo("s1"))
	require.Equal(t, core.JobStatusCompleted, job.Status)

	assert.True(t, system.UpdateSiloIndex(ctx, "s1", []core.Document{{ID: "b", Content: "beta"}}))
	assert.False(t, system.UpdateSiloIndex(ctx, "unknown", []core.Document{{ID: "c", Content: "gamma"}}))
}

func TestSystemUsagePersistedToAuditLog(t *testing.T) {
	source := index.NewStaticSource()
	source.AddDocuments("s1", core.Document{ID: "a", Content: "alpha"})

	system := newTestSystem(t, source)
	ctx := context.Background()

	job := system.IndexSilo(ctx, sysSilo("s1"))
	require.Equal(t, core.JobStatusCompleted, job.Status)

	// The in-process ledger saw the consumption.
	assert.NotEmpty(t, system.PrivacyManager().UsageRecords())
}

func TestSystemSuggestions(t *testing.T) {
	system := newTestSystem(t, index.NewStaticSource())

	suggestions := system.Suggestions("grpc", sysUser())
	assert.Len(t, suggestions, 3)
}
