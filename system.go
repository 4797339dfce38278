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


// Package syndex wires the privacy manager, permission engine, federated
// indexer, and query engine into one system behind a persistent silo
// registry and audit log.
package syndex

import (
	"context"
	"log/slog"

	"github.com/poiesic/syndex/access"
	"github.com/poiesic/syndex/ai"
	"github.com/poiesic/syndex/ai/openai"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/index"
	"github.com/poiesic/syndex/privacy"
	"github.com/poiesic/syndex/query"
	"github.com/poiesic/syndex/storage"
	"github.com/poiesic/syndex/storage/badger"
)

// System is the top-level facade over all Syndex subsystems.
type System struct {
	backend   *badger.Backend
	siloRepo  storage.SiloRepository
	auditRepo storage.AuditRepository
	provider  ai.AIProvider

	privacyManager *privacy.Manager
	accessEngine   *access.Engine
	indexer        *index.Indexer
	queryEngine    *query.Engine

	logger *slog.Logger
}

// SystemOption configures a System.
type SystemOption func(*systemOptions)

type systemOptions struct {
	aiConfig     *ai.Config
	provider     ai.AIProvider
	source       index.DocumentSource
	globalBudget float64
	inMemory     bool
}

// WithAIConfig sets the embedding provider configuration.
func WithAIConfig(config *ai.Config) SystemOption {
	return func(o *systemOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider supplies an already-constructed AI provider instead of
// building one from the config. Used by tests with the mock provider.
func WithProvider(provider ai.AIProvider) SystemOption {
	return func(o *systemOptions) {
		o.provider = provider
	}
}

// WithDocumentSource sets the document source the indexer retrieves silo
// contents through. Default is an empty StaticSource.
func WithDocumentSource(source index.DocumentSource) SystemOption {
	return func(o *systemOptions) {
		if source != nil {
			o.source = source
		}
	}
}

// WithGlobalPrivacyBudget sets the system-wide privacy budget (epsilon).
func WithGlobalPrivacyBudget(budget float64) SystemOption {
	return func(o *systemOptions) {
		o.globalBudget = budget
	}
}

// WithInMemory keeps all storage in memory. Intended for tests and demos.
func WithInMemory() SystemOption {
	return func(o *systemOptions) {
		o.inMemory = true
	}
}

// NewSystem opens the storage backend at filePath and wires all
// subsystems together: usage records from the privacy manager and audit
// records from the permission engine flow into the audit repository, and
// indexed silo metadata is mirrored into the silo repository.
func NewSystem(filePath string, opts ...SystemOption) (*System, error) {
	options := &systemOptions{
		aiConfig: ai.DefaultConfig(),
		source:   index.NewStaticSource(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	siloRepo := badger.NewSiloRepository(backend)

	auditRepo, err := badger.NewAuditRepository(backend)
	if err != nil {
		siloRepo.Close()
		backend.Close()
		return nil, err
	}

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			auditRepo.Close()
			siloRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	privacyManager := privacy.NewManager(options.globalBudget,
		privacy.WithUsageSink(auditRepo))

	accessEngine := access.NewEngine(
		access.WithAuditSink(auditRepo))

	indexer, err := index.NewIndexer(provider.Embedder(), privacyManager, accessEngine, options.source,
		index.WithSiloRepository(siloRepo))
	if err != nil {
		provider.Close()
		auditRepo.Close()
		siloRepo.Close()
		backend.Close()
		return nil, err
	}

	queryEngine, err := query.NewEngine(indexer, provider.Embedder(), privacyManager, accessEngine)
	if err != nil {
		indexer.Release()
		provider.Close()
		auditRepo.Close()
		siloRepo.Close()
		backend.Close()
		return nil, err
	}

	return &System{
		backend:        backend,
		siloRepo:       siloRepo,
		auditRepo:      auditRepo,
		provider:       provider,
		privacyManager: privacyManager,
		accessEngine:   accessEngine,
		indexer:        indexer,
		queryEngine:    queryEngine,
		logger:         slog.Default(),
	}, nil
}

// Close releases all subsystems and the storage backend.
func (s *System) Close() error {
	s.queryEngine.Release()
	s.indexer.Release()

	if err := s.provider.Close(); err != nil {
		s.logger.Error("error closing AI provider", "err", err)
	}

	if err := s.auditRepo.Close(); err != nil {
		s.logger.Error("error closing audit repository", "err", err)
		return err
	}
	if err := s.siloRepo.Close(); err != nil {
		s.logger.Error("error closing silo repository", "err", err)
		return err
	}

	if err := s.backend.Close(); err != nil {
		s.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// IndexSilo indexes one silo.
func (s *System) IndexSilo(ctx context.Context, silo *core.SiloMetadata) *core.IndexingJob {
	return s.indexer.IndexSilo(ctx, silo)
}

// BuildGlobalIndex indexes all silos concurrently.
func (s *System) BuildGlobalIndex(ctx context.Context, silos []*core.SiloMetadata) (*index.GlobalIndexSummary, []*core.IndexingJob) {
	return s.indexer.BuildGlobalIndex(ctx, silos)
}

// UpdateSiloIndex appends new documents to an indexed silo.
func (s *System) UpdateSiloIndex(ctx context.Context, siloID string, docs []core.Document) bool {
	return s.indexer.UpdateSiloIndex(ctx, siloID, docs)
}

// Query routes a federated query and returns globally ranked results.
func (s *System) Query(ctx context.Context, request *core.QueryRequest) ([]*core.KnowledgeResult, error) {
	return s.queryEngine.RouteQuery(ctx, request)
}

// Suggestions returns completions for a partial query.
func (s *System) Suggestions(partialQuery string, user *core.UserContext) []string {
	return s.queryEngine.Suggestions(partialQuery, user)
}

// PrivacyReport returns the budget ledger's current state.
func (s *System) PrivacyReport() privacy.Report {
	return s.privacyManager.GetReport()
}

// RecentAccess returns the newest persisted access-audit records.
func (s *System) RecentAccess(ctx context.Context, limit int) ([]core.AuditRecord, error) {
	return s.auditRepo.RecentAccess(ctx, limit)
}

// ListSilos returns all persisted silo registrations.
func (s *System) ListSilos(ctx context.Context) ([]*core.SiloMetadata, error) {
	return s.siloRepo.ListSilos(ctx)
}

// PrivacyManager exposes the budget ledger.
func (s *System) PrivacyManager() *privacy.Manager {
	return s.privacyManager
}

// AccessEngine exposes the permission engine.
func (s *System) AccessEngine() *access.Engine {
	return s.accessEngine
}
