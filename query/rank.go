package query

import (
	"slices"

	"github.com/poiesic/syndex/core"
)

// Ranking weights. Relevance dominates; privacy cost penalizes expensive
// results; diversity promotes silos with fewer results in the set.
const (
	relevanceWeight = 0.7
	privacyWeight   = 0.2
	diversityWeight = 0.1
)

// rankResults orders results globally across all silos, best first.
// Scores are computed against the full input set before sorting, so
// ranking the same set twice yields the same order.
func rankResults(results []*core.KnowledgeResult) []*core.KnowledgeResult {
	if len(results) == 0 {
		return results
	}

	perSilo := make(map[string]int, len(results))
	for _, result := range results {
		perSilo[result.SiloID]++
	}
	total := len(results)

	scores := make(map[*core.KnowledgeResult]float64, total)
	for _, result := range results {
		diversity := 1.0 - float64(perSilo[result.SiloID])/float64(total)
		scores[result] = relevanceWeight*result.RelevanceScore -
			privacyWeight*result.PrivacyScore +
			diversityWeight*diversity
	}

	ranked := slices.Clone(results)
	slices.SortStableFunc(ranked, func(a, b *core.KnowledgeResult) int {
		if scores[a] > scores[b] {
			return -1
		}
		if scores[a] < scores[b] {
			return 1
		}
		return 0
	})
	return ranked
}
