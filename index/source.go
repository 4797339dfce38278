package index

import (
	"context"
	"sync"

	"github.com/poiesic/syndex/core"
)

// DocumentSource retrieves a silo's documents. It is the capability
// boundary between the indexer and the silo's actual data store; the
// indexer never reaches into a silo except through this interface.
// Implementations must be safe for concurrent use.
type DocumentSource interface {
	// Retrieve returns the documents of the given silo.
	Retrieve(ctx context.Context, silo *core.SiloMetadata) ([]core.Document, error)
}

// StaticSource is an in-process DocumentSource backed by a map. Intended
// for tests and demos; production deployments implement DocumentSource
// against their real data stores.
type StaticSource struct {
	mu   sync.RWMutex
	docs map[string][]core.Document
}

var _ DocumentSource = (*StaticSource)(nil)

// NewStaticSource creates an empty static source.
func NewStaticSource() *StaticSource {
	return &StaticSource{docs: make(map[string][]core.Document)}
}

// AddDocuments registers documents for a silo, appending to any already
// registered.
func (s *StaticSource) AddDocuments(siloID string, docs ...core.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[siloID] = append(s.docs[siloID], docs...)
}

// Retrieve returns the documents registered for the silo.
func (s *StaticSource) Retrieve(ctx context.Context, silo *core.SiloMetadata) ([]core.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := s.docs[silo.SiloID]
	out := make([]core.Document, len(docs))
	copy(out, docs)
	return out, nil
}
