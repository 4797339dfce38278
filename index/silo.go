package index

import (
	"slices"

	"github.com/poiesic/syndex/core"
)

// siloIndex is one silo's private search structure. It is owned by the
// indexer; only scores and individual document hits ever leave it.
type siloIndex struct {
	metadata  *core.SiloMetadata
	vectors   [][]float32 // normalized
	hashes    []string
	documents []core.Document
}

// Hit is one scored document from a silo search. DocIndex is the position
// within the silo's structure, used for document-level permission checks.
type Hit struct {
	DocIndex int
	Score    float64
	Content  string
	Metadata map[string]string
}

// top1 returns the highest cosine similarity of the query against the
// silo's vectors, or 0 for an empty silo. The query must be normalized.
func (s *siloIndex) top1(query []float32) float64 {
	var best float32
	for _, v := range s.vectors {
		if sim := dotProduct(query, v); sim > best {
			best = sim
		}
	}
	return float64(best)
}

// topK returns the k best hits for the query, sorted by score descending.
// The query must be normalized.
func (s *siloIndex) topK(query []float32, k int) []Hit {
	if k <= 0 {
		return nil
	}

	hits := make([]Hit, 0, len(s.vectors))
	for i, v := range s.vectors {
		hits = append(hits, Hit{
			DocIndex: i,
			Score:    float64(dotProduct(query, v)),
			Content:  s.documents[i].Content,
			Metadata: s.documents[i].Metadata,
		})
	}

	slices.SortFunc(hits, func(a, b Hit) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return a.DocIndex - b.DocIndex
	})

	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}

// append adds normalized vectors, hashes and documents to the structure.
func (s *siloIndex) append(vectors [][]float32, hashes []string, docs []core.Document) {
	s.vectors = append(s.vectors, vectors...)
	s.hashes = append(s.hashes, hashes...)
	s.documents = append(s.documents, docs...)
	s.metadata.DocumentCount = len(s.documents)
}
