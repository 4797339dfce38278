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


package index

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/syndex/access"
	"github.com/poiesic/syndex/ai"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/privacy"
	"github.com/poiesic/syndex/storage"
)

const (
	// indexingEpsilon is the privacy budget spent noising one silo's
	// embeddings during (re)indexing.
	indexingEpsilon     = 0.1
	indexingSensitivity = 1.0

	// candidateThreshold is the minimum top-1 similarity for a silo to be
	// considered a query candidate.
	candidateThreshold = 0.3
)

// GlobalIndexSummary aggregates the outcome of indexing a batch of silos.
type GlobalIndexSummary struct {
	TotalSilos         int
	IndexedSilos       int
	EmbeddingDimension int
	PrivacyBudgetUsed  float64
}

// Indexer builds and owns one search structure per silo. It is safe for
// concurrent use.
type Indexer struct {
	mu        sync.RWMutex
	silos     map[string]*siloIndex
	dimension int

	embedder ai.Embedder
	privacy  *privacy.Manager
	access   *access.Engine
	source   DocumentSource
	siloRepo storage.SiloRepository

	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures an Indexer.
type Option func(*Indexer) error

// WithPoolSize sets the worker pool size for concurrent silo indexing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(i *Indexer) error {
		if size < 1 {
			size = 1
		}

		if i.pool != nil {
			i.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		i.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Indexer) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// WithSiloRepository mirrors indexed silo metadata into the repository so
// registrations survive restarts. A persistence failure is treated as an
// indexing failure for that silo.
func WithSiloRepository(repo storage.SiloRepository) Option {
	return func(i *Indexer) error {
		i.siloRepo = repo
		return nil
	}
}

// NewIndexer creates a federated indexer.
func NewIndexer(
	embedder ai.Embedder,
	privacyManager *privacy.Manager,
	accessEngine *access.Engine,
	source DocumentSource,
	opts ...Option,
) (*Indexer, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if privacyManager == nil {
		return nil, ErrPrivacyManagerRequired
	}
	if accessEngine == nil {
		return nil, ErrAccessEngineRequired
	}
	if source == nil {
		return nil, ErrSourceRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	i := &Indexer{
		silos:    make(map[string]*siloIndex),
		embedder: embedder,
		privacy:  privacyManager,
		access:   accessEngine,
		source:   source,
		pool:     pool,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(i); optErr != nil {
			i.Release()
			return nil, optErr
		}
	}

	return i, nil
}

// Release releases the worker pool. The indexer should not be used after
// calling Release.
func (i *Indexer) Release() {
	if i.pool != nil {
		i.pool.Release()
	}
}

// IndexSilo builds the silo's search structure: retrieve documents, embed,
// noise the embeddings, hash each document against the silo's access
// rules, and store the normalized vectors. The outcome is reported in the
// returned job record; a failure never panics or propagates.
func (i *Indexer) IndexSilo(ctx context.Context, silo *core.SiloMetadata) *core.IndexingJob {
	job := &core.IndexingJob{
		JobID:     core.NewID(),
		SiloID:    silo.SiloID,
		Status:    core.JobStatusRunning,
		StartedAt: time.Now().UTC(),
	}

	processed, budgetUsed, err := i.indexSilo(ctx, silo)
	job.CompletedAt = time.Now().UTC()
	job.PrivacyBudgetUsed = budgetUsed

	if err != nil {
		i.logger.Error("error indexing silo", "silo", silo.SiloID, "err", err)
		job.Status = core.JobStatusFailed
		job.ErrorMessage = err.Error()
		return job
	}

	job.Status = core.JobStatusCompleted
	job.DocumentsProcessed = processed
	job.Progress = 1.0
	return job
}

func (i *Indexer) indexSilo(ctx context.Context, silo *core.SiloMetadata) (processed int, budgetUsed float64, err error) {
	if err := core.ValidateSiloMetadata(silo); err != nil {
		return 0, 0, err
	}

	docs, err := i.source.Retrieve(ctx, silo)
	if err != nil {
		return 0, 0, fmt.Errorf("retrieving documents: %w", err)
	}
	if len(docs) == 0 {
		return 0, 0, ErrNoDocuments
	}

	texts := make([]string, len(docs))
	for n, doc := range docs {
		texts[n] = doc.Content
	}

	embeddings, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("embedding documents: %w", err)
	}

	noised, err := i.privacy.AddNoiseToEmbeddings(embeddings, indexingEpsilon, indexingSensitivity)
	if err != nil {
		return 0, 0, err
	}
	budgetUsed = indexingEpsilon

	vectors := make([][]float32, len(noised))
	hashes := make([]string, len(docs))
	for n := range noised {
		vectors[n] = NormalizeVector(noised[n])
		hashes[n] = secureDocumentHash(docs[n].Content, silo.AccessRules)
	}

	silo.DocumentCount = len(docs)
	silo.LastIndexed = time.Now().UTC()
	if len(vectors) > 0 {
		silo.EmbeddingDimension = len(vectors[0])
	}

	if i.siloRepo != nil {
		if err := i.siloRepo.PutSilo(ctx, silo); err != nil {
			return 0, budgetUsed, fmt.Errorf("persisting silo metadata: %w", err)
		}
	}

	// The index keeps its own copy of the metadata so later incremental
	// updates never write through a pointer the caller still holds.
	metadata := *silo

	i.mu.Lock()
	i.silos[silo.SiloID] = &siloIndex{
		metadata:  &metadata,
		vectors:   vectors,
		hashes:    hashes,
		documents: docs,
	}
	if i.dimension == 0 && len(vectors) > 0 {
		i.dimension = len(vectors[0])
	}
	i.mu.Unlock()

	return len(docs), budgetUsed, nil
}

// BuildGlobalIndex indexes all silos concurrently. Individual failures are
// tolerated; a failed silo is excluded from the success count. Returns the
// aggregate summary together with the per-silo job records.
func (i *Indexer) BuildGlobalIndex(ctx context.Context, silos []*core.SiloMetadata) (*GlobalIndexSummary, []*core.IndexingJob) {
	i.logger.Info("building global index", "silos", len(silos))

	jobs := make([]*core.IndexingJob, len(silos))
	var wg sync.WaitGroup

	for n, silo := range silos {
		n, silo := n, silo
		wg.Add(1)
		err := i.pool.Submit(func() {
			defer wg.Done()
			jobs[n] = i.IndexSilo(ctx, silo)
		})
		if err != nil {
			wg.Done()
			jobs[n] = &core.IndexingJob{
				JobID:        core.NewID(),
				SiloID:       silo.SiloID,
				Status:       core.JobStatusFailed,
				ErrorMessage: err.Error(),
			}
		}
	}
	wg.Wait()

	summary := &GlobalIndexSummary{TotalSilos: len(silos)}
	for _, job := range jobs {
		summary.PrivacyBudgetUsed += job.PrivacyBudgetUsed
		if job.Status == core.JobStatusCompleted {
			summary.IndexedSilos++
		}
	}

	i.mu.RLock()
	summary.EmbeddingDimension = i.dimension
	i.mu.RUnlock()

	i.logger.Info("global index built",
		"total", summary.TotalSilos,
		"indexed", summary.IndexedSilos,
		"dimension", summary.EmbeddingDimension,
		"budget_used", summary.PrivacyBudgetUsed,
	)
	return summary, jobs
}

// FindCandidateSilos returns the IDs of silos whose best match against the
// query embedding exceeds the candidate threshold. Only silos the user can
// access are consulted; no similarity is ever computed against an
// inaccessible silo.
func (i *Indexer) FindCandidateSilos(queryEmbedding []float32, user *core.UserContext) []string {
	query := NormalizeVector(queryEmbedding)

	i.mu.RLock()
	defer i.mu.RUnlock()

	var candidates []string
	for _, siloID := range i.sortedSiloIDs() {
		silo := i.silos[siloID]
		if !i.access.CheckSiloAccess(silo.metadata, user) {
			continue
		}
		if silo.top1(query) > candidateThreshold {
			candidates = append(candidates, siloID)
		}
	}
	return candidates
}

// UpdateSiloIndex incrementally appends new documents to an existing
// silo's structure. Returns false (and logs) when the silo is unknown or
// the update fails; an incremental failure never corrupts the existing
// structure.
func (i *Indexer) UpdateSiloIndex(ctx context.Context, siloID string, newDocs []core.Document) bool {
	i.mu.RLock()
	silo, ok := i.silos[siloID]
	i.mu.RUnlock()
	if !ok {
		i.logger.Error("silo not found in indexes", "silo", siloID)
		return false
	}
	if len(newDocs) == 0 {
		return true
	}

	texts := make([]string, len(newDocs))
	for n, doc := range newDocs {
		texts[n] = doc.Content
	}

	embeddings, err := i.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		i.logger.Error("error embedding update batch", "silo", siloID, "err", err)
		return false
	}

	// Updates pass through the same noise gate as full indexing, so an
	// appended document is never less protected than an original one.
	noised, err := i.privacy.AddNoiseToEmbeddings(embeddings, indexingEpsilon, indexingSensitivity)
	if err != nil {
		i.logger.Error("error noising update batch", "silo", siloID, "err", err)
		return false
	}

	vectors := make([][]float32, len(noised))
	hashes := make([]string, len(newDocs))
	for n := range noised {
		vectors[n] = NormalizeVector(noised[n])
		hashes[n] = secureDocumentHash(newDocs[n].Content, silo.metadata.AccessRules)
	}

	i.mu.Lock()
	silo.append(vectors, hashes, newDocs)
	silo.metadata.LastIndexed = time.Now().UTC()
	documentCount := silo.metadata.DocumentCount
	lastIndexed := silo.metadata.LastIndexed
	i.mu.Unlock()

	if i.siloRepo != nil {
		if err := i.siloRepo.UpdateSiloStats(ctx, siloID, documentCount, lastIndexed); err != nil {
			i.logger.Error("error persisting silo stats", "silo", siloID, "err", err)
		}
	}

	i.logger.Info("updated silo index", "silo", siloID, "added", len(newDocs))
	return true
}

// SearchSilo runs a top-k similarity search within one silo. The silo's
// structure never leaves the indexer; only the scored hits do.
func (i *Indexer) SearchSilo(ctx context.Context, siloID string, queryEmbedding []float32, k int) ([]Hit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	query := NormalizeVector(queryEmbedding)

	i.mu.RLock()
	defer i.mu.RUnlock()

	silo, ok := i.silos[siloID]
	if !ok {
		return nil, ErrSiloNotFound
	}
	return silo.topK(query, k), nil
}

// Metadata returns a snapshot of a registered silo's metadata. The copy is
// taken under the lock, so callers may read it while incremental updates
// mutate the stats.
func (i *Indexer) Metadata(siloID string) (*core.SiloMetadata, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	silo, ok := i.silos[siloID]
	if !ok {
		return nil, false
	}
	metadata := *silo.metadata
	return &metadata, true
}

// RegisteredSilos returns the IDs of all indexed silos in sorted order.
func (i *Indexer) RegisteredSilos() []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.sortedSiloIDs()
}

// sortedSiloIDs must be called with the lock held.
func (i *Indexer) sortedSiloIDs() []string {
	ids := make([]string, 0, len(i.silos))
	for id := range i.silos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
