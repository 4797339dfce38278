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


package query

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/syndex/access"
	"github.com/poiesic/syndex/ai"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/index"
	"github.com/poiesic/syndex/privacy"
)

// SiloSearcher is the slice of the federated indexer the query engine
// depends on.
type SiloSearcher interface {
	// FindCandidateSilos returns IDs of accessible silos likely to match.
	FindCandidateSilos(queryEmbedding []float32, user *core.UserContext) []string

	// SearchSilo runs a top-k similarity search within one silo.
	SearchSilo(ctx context.Context, siloID string, queryEmbedding []float32, k int) ([]index.Hit, error)

	// Metadata returns a registered silo's metadata.
	Metadata(siloID string) (*core.SiloMetadata, bool)
}

// Engine routes queries across silos while preserving privacy and
// respecting access controls. It is safe for concurrent use.
type Engine struct {
	indexer  SiloSearcher
	embedder ai.Embedder
	privacy  *privacy.Manager
	access   *access.Engine

	pool    *ants.Pool
	monitor QueryMonitor
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets the worker pool size for concurrent silo searches.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}

		if e.pool != nil {
			e.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// WithMonitor sets a monitor observing the routing steps.
func WithMonitor(monitor QueryMonitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// NewEngine creates a query engine.
func NewEngine(
	indexer SiloSearcher,
	embedder ai.Embedder,
	privacyManager *privacy.Manager,
	accessEngine *access.Engine,
	opts ...Option,
) (*Engine, error) {
	if indexer == nil {
		return nil, ErrIndexerRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if privacyManager == nil {
		return nil, ErrPrivacyManagerRequired
	}
	if accessEngine == nil {
		return nil, ErrAccessEngineRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		indexer:  indexer,
		embedder: embedder,
		privacy:  privacyManager,
		access:   accessEngine,
		pool:     pool,
		monitor:  &noopMonitor{},
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(e); optErr != nil {
			e.Release()
			return nil, optErr
		}
	}

	return e, nil
}

// Release releases the worker pool. The engine should not be used after
// calling Release.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// RouteQuery runs a full federated query: embed, select candidates,
// filter by permission and classification, split the privacy budget
// across accessible silos, search them concurrently, and rank globally.
// A query that reaches no accessible silo returns an empty list, not an
// error.
func (e *Engine) RouteQuery(ctx context.Context, request *core.QueryRequest) ([]*core.KnowledgeResult, error) {
	if err := core.ValidateQueryRequest(request); err != nil {
		return nil, err
	}
	request.ApplyDefaults()

	e.monitor.Start(request.Query)
	e.logger.Info("routing query", "length", len(request.Query), "max_results", request.MaxResults)

	embedding, err := e.embedder.EmbedText(ctx, request.Query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	embedding = index.NormalizeVector(embedding)

	candidates := e.indexer.FindCandidateSilos(embedding, request.User)
	e.monitor.AfterCandidateSelection(candidates)

	accessible := e.filterAccessible(candidates, request)
	e.monitor.AfterAccessFilter(accessible)

	perSiloBudget := request.PrivacyBudget / float64(max(len(accessible), 1))

	results := e.searchSilos(ctx, accessible, embedding, request, perSiloBudget)

	ranked := rankResults(results)
	if len(ranked) > request.MaxResults {
		ranked = ranked[:request.MaxResults]
	}

	e.monitor.Finish(ranked)
	e.logger.Info("query completed", "results", len(ranked), "silos", len(accessible))
	return ranked, nil
}

// filterAccessible re-validates silo access and classification for each
// candidate and applies the request's include/exclude lists. The
// classification gate repeats a check the indexer already made; it is a
// deliberate second gate on the request path. Every grant or denial of a
// candidate is audited; include/exclude skips are routing choices, not
// access decisions, and are not.
func (e *Engine) filterAccessible(candidates []string, request *core.QueryRequest) []string {
	include := map[string]bool{}
	for _, id := range request.IncludeSilos {
		include[id] = true
	}
	exclude := map[string]bool{}
	for _, id := range request.ExcludeSilos {
		exclude[id] = true
	}

	var accessible []string
	for _, siloID := range candidates {
		if exclude[siloID] {
			continue
		}
		if len(include) > 0 && !include[siloID] {
			continue
		}

		silo, ok := e.indexer.Metadata(siloID)
		if !ok {
			continue
		}
		if !e.access.CheckSiloAccess(silo, request.User) {
			e.access.AuditAccessAttempt(request.User, silo, false, "silo access denied")
			continue
		}
		if request.User.MaxAccessLevel() < silo.DataClassification {
			e.access.AuditAccessAttempt(request.User, silo, false, "classification below silo level")
			continue
		}
		e.access.AuditAccessAttempt(request.User, silo, true, "query routing")
		accessible = append(accessible, siloID)
	}
	return accessible
}

// searchSilos fans out one search task per silo and joins them. A silo
// whose task fails is dropped from the aggregate.
func (e *Engine) searchSilos(
	ctx context.Context,
	siloIDs []string,
	embedding []float32,
	request *core.QueryRequest,
	perSiloBudget float64,
) []*core.KnowledgeResult {
	perSilo := make([][]*core.KnowledgeResult, len(siloIDs))
	var wg sync.WaitGroup

	for n, siloID := range siloIDs {
		n, siloID := n, siloID
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			results, err := e.searchSilo(ctx, siloID, embedding, request, perSiloBudget)
			if err != nil {
				e.logger.Error("error searching silo", "silo", siloID, "err", err)
				e.monitor.SiloFailed(siloID, err)
				return
			}
			perSilo[n] = results
			e.monitor.SiloSearched(siloID, len(results))
		})
		if err != nil {
			wg.Done()
			e.logger.Error("error submitting silo search", "silo", siloID, "err", err)
			e.monitor.SiloFailed(siloID, err)
		}
	}
	wg.Wait()

	var all []*core.KnowledgeResult
	for _, results := range perSilo {
		all = append(all, results...)
	}
	return all
}

// searchSilo executes the search within a single silo: over-fetch
// candidates, noise each score, check document access, and build
// attributed results capped at the request's max.
func (e *Engine) searchSilo(
	ctx context.Context,
	siloID string,
	embedding []float32,
	request *core.QueryRequest,
	perSiloBudget float64,
) ([]*core.KnowledgeResult, error) {
	silo, ok := e.indexer.Metadata(siloID)
	if !ok {
		return nil, index.ErrSiloNotFound
	}

	hits, err := e.indexer.SearchSilo(ctx, siloID, embedding, request.MaxResults*2)
	if err != nil {
		return nil, err
	}

	perResultBudget := perSiloBudget / float64(request.MaxResults)

	results := make([]*core.KnowledgeResult, 0, min(len(hits), request.MaxResults))
	for _, hit := range hits {
		if len(results) >= request.MaxResults {
			break
		}

		noisyScore := e.privacy.AddNoiseToScore(hit.Score, perResultBudget)

		if !e.access.CheckDocumentAccess(silo, hit.DocIndex, request.User) {
			continue
		}

		metadata := map[string]string{
			"silo_name":      silo.Name,
			"silo_type":      string(silo.SiloType),
			"document_index": strconv.Itoa(hit.DocIndex),
		}
		for key, value := range hit.Metadata {
			metadata[key] = value
		}

		results = append(results, &core.KnowledgeResult{
			ResultID:       core.NewID(),
			SiloID:         siloID,
			Content:        hit.Content,
			Metadata:       metadata,
			RelevanceScore: noisyScore,
			PrivacyScore:   perResultBudget,
			Source: core.SourceAttribution{
				Silo:         silo.Name,
				Team:         silo.TeamID,
				Organization: silo.OrganizationID,
			},
			AccessLevel: silo.DataClassification,
			CreatedAt:   time.Now().UTC(),
		})
	}
	return results, nil
}

// Suggestions returns up to three completions for a partial query.
func (e *Engine) Suggestions(partialQuery string, user *core.UserContext) []string {
	suggestions := []string{
		partialQuery + " best practices",
		partialQuery + " implementation guide",
		partialQuery + " troubleshooting",
		partialQuery + " architecture patterns",
		partialQuery + " security considerations",
	}
	return suggestions[:3]
}
