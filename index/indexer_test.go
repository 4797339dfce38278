package index

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/poiesic/syndex/access"
	"github.com/poiesic/syndex/ai/mock"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/privacy"
	"github.com/poiesic/syndex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func idxSilo(id string) *core.SiloMetadata {
	return &core.SiloMetadata{
		SiloID:             id,
		Name:               "silo " + id,
		SiloType:           core.SiloTypeDocumentation,
		OrganizationID:     "acme",
		TeamID:             "eng",
		DataClassification: core.AccessLevelInternal,
		EmbeddingDimension: 8,
		AccessRules:        core.AccessRules{PublicWithinOrg: true},
	}
}

func idxUser() *core.UserContext {
	return &core.UserContext{
		UserID:         "u1",
		OrganizationID: "acme",
		TeamIDs:        []string{"eng"},
		AccessLevels:   []core.AccessLevel{core.AccessLevelInternal},
	}
}

func newTestIndexer(t *testing.T, budget float64, source DocumentSource) (*Indexer, *privacy.Manager) {
	t.Helper()

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8

	manager := privacy.NewManager(budget, privacy.WithRand(rand.New(rand.NewPCG(7, 7))))

	indexer, err := NewIndexer(embedder, manager, access.NewEngine(), source, WithPoolSize(2))
	require.NoError(t, err)
	t.Cleanup(indexer.Release)

	return indexer, manager
}

func sourceWithDocs(siloID string, count int) *StaticSource {
	source := NewStaticSource()
	for i := 0; i < count; i++ {
		source.AddDocuments(siloID, core.Document{
			ID:      fmt.Sprintf("doc_%d", i),
			Content: fmt.Sprintf("sample document %d", i),
		})
	}
	return source
}

func TestIndexSilo(t *testing.T) {
	source := sourceWithDocs("s1", 5)
	indexer, manager := newTestIndexer(t, 1.0, source)

	silo := idxSilo("s1")
	job := indexer.IndexSilo(context.Background(), silo)

	assert.Equal(t, core.JobStatusCompleted, job.Status)
	assert.Equal(t, 5, job.DocumentsProcessed)
	assert.Equal(t, 1.0, job.Progress)
	assert.InDelta(t, 0.1, job.PrivacyBudgetUsed, 1e-9)
	assert.NotEmpty(t, job.JobID)
	assert.False(t, job.CompletedAt.Before(job.StartedAt))

	// Silo metadata updated by the run.
	assert.Equal(t, 5, silo.DocumentCount)
	assert.False(t, silo.LastIndexed.IsZero())

	// Budget actually consumed.
	assert.InDelta(t, 0.1, manager.UsedBudget(), 1e-9)

	_, ok := indexer.Metadata("s1")
	assert.True(t, ok)
}

func TestIndexSiloEmptySourceFails(t *testing.T) {
	indexer, manager := newTestIndexer(t, 1.0, NewStaticSource())

	job := indexer.IndexSilo(context.Background(), idxSilo("s1"))

	assert.Equal(t, core.JobStatusFailed, job.Status)
	assert.NotEmpty(t, job.ErrorMessage)
	assert.Zero(t, manager.UsedBudget())
}

func TestIndexSiloInvalidMetadataFails(t *testing.T) {
	indexer, _ := newTestIndexer(t, 1.0, sourceWithDocs("s1", 1))

	silo := idxSilo("s1")
	silo.Name = ""
	job := indexer.IndexSilo(context.Background(), silo)

	assert.Equal(t, core.JobStatusFailed, job.Status)
}

func TestIndexSiloInsufficientBudgetFails(t *testing.T) {
	source := sourceWithDocs("s1", 1)
	indexer, manager := newTestIndexer(t, 0.05, source)

	job := indexer.IndexSilo(context.Background(), idxSilo("s1"))

	assert.Equal(t, core.JobStatusFailed, job.Status)
	assert.Zero(t, manager.UsedBudget())
}

func TestIndexSiloMirrorsMetadata(t *testing.T) {
	siloRepo, auditRepo, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		siloRepo.Close()
		auditRepo.Close()
		backend.Close()
	})

	embedder := mock.NewMockEmbedder()
	embedder.Dimension = 8
	manager := privacy.NewManager(1.0)

	indexer, err := NewIndexer(embedder, manager, access.NewEngine(), sourceWithDocs("s1", 3),
		WithSiloRepository(siloRepo))
	require.NoError(t, err)
	t.Cleanup(indexer.Release)

	job := indexer.IndexSilo(context.Background(), idxSilo("s1"))
	require.Equal(t, core.JobStatusCompleted, job.Status)

	stored, err := siloRepo.GetSilo(context.Background(), "s1")
	require.NoError(t, err)
	assert.Equal(t, 3, stored.DocumentCount)
	assert.False(t, stored.LastIndexed.IsZero())
}

func TestBuildGlobalIndexToleratesFailures(t *testing.T) {
	// s1 and s2 have documents; s3's source is empty and must fail without
	// aborting the batch.
	source := NewStaticSource()
	source.AddDocuments("s1", core.Document{ID: "a", Content: "alpha"})
	source.AddDocuments("s2", core.Document{ID: "b", Content: "beta"})

	indexer, _ := newTestIndexer(t, 1.0, source)

	silos := []*core.SiloMetadata{idxSilo("s1"), idxSilo("s2"), idxSilo("s3")}
	summary, jobs := indexer.BuildGlobalIndex(context.Background(), silos)

	assert.Equal(t, 3, summary.TotalSilos)
	assert.Equal(t, 2, summary.IndexedSilos)
	assert.Equal(t, 8, summary.EmbeddingDimension)
	assert.InDelta(t, 0.2, summary.PrivacyBudgetUsed, 1e-9)

	require.Len(t, jobs, 3)
	byID := map[string]*core.IndexingJob{}
	for _, job := range jobs {
		byID[job.SiloID] = job
	}
	assert.Equal(t, core.JobStatusCompleted, byID["s1"].Status)
	assert.Equal(t, core.JobStatusCompleted, byID["s2"].Status)
	assert.Equal(t, core.JobStatusFailed, byID["s3"].Status)
}

// injectSilo registers a pre-built structure, bypassing the noise path so
// similarity assertions are deterministic.
func injectSilo(indexer *Indexer, silo *core.SiloMetadata, vectors [][]float32, docs []core.Document) {
	hashes := make([]string, len(docs))
	for i, doc := range docs {
		hashes[i] = secureDocumentHash(doc.Content, silo.AccessRules)
	}

	metadata := *silo

	indexer.mu.Lock()
	indexer.silos[silo.SiloID] = &siloIndex{
		metadata:  &metadata,
		vectors:   vectors,
		hashes:    hashes,
		documents: docs,
	}
	if indexer.dimension == 0 && len(vectors) > 0 {
		indexer.dimension = len(vectors[0])
	}
	indexer.mu.Unlock()
}

func TestFindCandidateSilosThreshold(t *testing.T) {
	indexer, _ := newTestIndexer(t, 1.0, NewStaticSource())

	// s1 matches the query axis exactly; s2 is orthogonal.
	injectSilo(indexer, idxSilo("s1"),
		[][]float32{{1, 0, 0, 0, 0, 0, 0, 0}},
		[]core.Document{{ID: "a", Content: "alpha"}})
	injectSilo(indexer, idxSilo("s2"),
		[][]float32{{0, 1, 0, 0, 0, 0, 0, 0}},
		[]core.Document{{ID: "b", Content: "beta"}})

	query := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	candidates := indexer.FindCandidateSilos(query, idxUser())

	assert.Equal(t, []string{"s1"}, candidates)
}

func TestFindCandidateSilosSkipsInaccessible(t *testing.T) {
	indexer, _ := newTestIndexer(t, 1.0, NewStaticSource())

	foreign := idxSilo("s-foreign")
	foreign.OrganizationID = "other"

	vectors := [][]float32{{1, 0, 0, 0, 0, 0, 0, 0}}
	docs := []core.Document{{ID: "a", Content: "alpha"}}
	injectSilo(indexer, foreign, vectors, docs)
	injectSilo(indexer, idxSilo("s1"), vectors, docs)

	query := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	candidates := indexer.FindCandidateSilos(query, idxUser())

	// The foreign-org silo matches perfectly but must never be consulted.
	assert.Equal(t, []string{"s1"}, candidates)
}

func TestSearchSiloOrdering(t *testing.T) {
	indexer, _ := newTestIndexer(t, 1.0, NewStaticSource())

	injectSilo(indexer, idxSilo("s1"),
		[][]float32{
			{0, 1, 0, 0, 0, 0, 0, 0},
			{1, 0, 0, 0, 0, 0, 0, 0},
			{0.6, 0.8, 0, 0, 0, 0, 0, 0},
		},
		[]core.Document{
			{ID: "a", Content: "alpha"},
			{ID: "b", Content: "beta"},
			{ID: "c", Content: "gamma"},
		})

	query := []float32{1, 0, 0, 0, 0, 0, 0, 0}
	hits, err := indexer.SearchSilo(context.Background(), "s1", query, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)

	assert.Equal(t, 1, hits[0].DocIndex)
	assert.Equal(t, "beta", hits[0].Content)
	assert.Equal(t, 2, hits[1].DocIndex)
	assert.Greater(t, hits[0].Score, hits[1].Score)
}

func TestSearchSiloUnknown(t *testing.T) {
	indexer, _ := newTestIndexer(t, 1.0, NewStaticSource())

	_, err := indexer.SearchSilo(context.Background(), "nope", []float32{1}, 3)
	assert.ErrorIs(t, err, ErrSiloNotFound)
}

func TestUpdateSiloIndex(t *testing.T) {
	source := sourceWithDocs("s1", 2)
	indexer, _ := newTestIndexer(t, 1.0, source)

	job := indexer.IndexSilo(context.Background(), idxSilo("s1"))
	require.Equal(t, core.JobStatusCompleted, job.Status)

	ok := indexer.UpdateSiloIndex(context.Background(), "s1", []core.Document{
		{ID: "new", Content: "fresh document"},
	})
	require.True(t, ok)

	meta, found := indexer.Metadata("s1")
	require.True(t, found)
	assert.Equal(t, 3, meta.DocumentCount)
}

func TestMetadataReturnsSnapshot(t *testing.T) {
	source := sourceWithDocs("s1", 2)
	indexer, _ := newTestIndexer(t, 1.0, source)

	silo := idxSilo("s1")
	job := indexer.IndexSilo(context.Background(), silo)
	require.Equal(t, core.JobStatusCompleted, job.Status)

	// Writes through the caller's struct must not reach the index.
	silo.Name = "renamed after registration"
	meta, found := indexer.Metadata("s1")
	require.True(t, found)
	assert.Equal(t, "silo s1", meta.Name)

	// Writes through a returned snapshot must not reach the index either.
	meta.DocumentCount = 99
	again, found := indexer.Metadata("s1")
	require.True(t, found)
	assert.Equal(t, 2, again.DocumentCount)
}

func TestMetadataDuringConcurrentUpdates(t *testing.T) {
	source := sourceWithDocs("s1", 1)
	indexer, _ := newTestIndexer(t, 100.0, source)

	job := indexer.IndexSilo(context.Background(), idxSilo("s1"))
	require.Equal(t, core.JobStatusCompleted, job.Status)

	const updates = 50

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for n := 0; n < updates; n++ {
			indexer.UpdateSiloIndex(context.Background(), "s1", []core.Document{
				{ID: fmt.Sprintf("extra_%d", n), Content: fmt.Sprintf("extra document %d", n)},
			})
		}
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for n := 0; n < 200; n++ {
				meta, found := indexer.Metadata("s1")
				if !found {
					continue
				}
				_ = meta.DocumentCount
				_ = meta.LastIndexed
			}
		}()
	}
	wg.Wait()

	meta, found := indexer.Metadata("s1")
	require.True(t, found)
	assert.Equal(t, 1+updates, meta.DocumentCount)
}

func TestUpdateSiloIndexUnknownSilo(t *testing.T) {
	indexer, _ := newTestIndexer(t, 1.0, NewStaticSource())

	ok := indexer.UpdateSiloIndex(context.Background(), "nope", []core.Document{
		{ID: "x", Content: "y"},
	})
	assert.False(t, ok)
}

func TestNewIndexerValidation(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	manager := privacy.NewManager(1.0)
	engine := access.NewEngine()
	source := NewStaticSource()

	_, err := NewIndexer(nil, manager, engine, source)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	_, err = NewIndexer(embedder, nil, engine, source)
	assert.ErrorIs(t, err, ErrPrivacyManagerRequired)

	_, err = NewIndexer(embedder, manager, nil, source)
	assert.ErrorIs(t, err, ErrAccessEngineRequired)

	_, err = NewIndexer(embedder, manager, engine, nil)
	assert.ErrorIs(t, err, ErrSourceRequired)
}
