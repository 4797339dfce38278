package query

import (
	"testing"

	"github.com/poiesic/syndex/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func result(id, siloID string, relevance, privacy float64) *core.KnowledgeResult {
	return &core.KnowledgeResult{
		ResultID:       id,
		SiloID:         siloID,
		RelevanceScore: relevance,
		PrivacyScore:   privacy,
	}
}

func TestRankResultsRelevanceDominates(t *testing.T) {
	results := []*core.KnowledgeResult{
		result("low", "a", 0.2, 0.0),
		result("high", "a", 0.9, 0.0),
	}

	ranked := rankResults(results)
	assert.Equal(t, "high", ranked[0].ResultID)
	assert.Equal(t, "low", ranked[1].ResultID)
}

func TestRankResultsPrivacyPenalty(t *testing.T) {
	results := []*core.KnowledgeResult{
		result("cheap", "a", 0.8, 0.0),
		result("expensive", "a", 0.8, 0.5),
	}

	ranked := rankResults(results)
	assert.Equal(t, "cheap", ranked[0].ResultID)
}

func TestRankResultsDiversityBonus(t *testing.T) {
	// Equal relevance and privacy; the result from the less-represented
	// silo wins on diversity.
	results := []*core.KnowledgeResult{
		result("a1", "a", 0.5, 0.1),
		result("a2", "a", 0.5, 0.1),
		result("b1", "b", 0.5, 0.1),
	}

	ranked := rankResults(results)
	assert.Equal(t, "b1", ranked[0].ResultID)
}

func TestRankResultsIdempotent(t *testing.T) {
	results := []*core.KnowledgeResult{
		result("r1", "a", 0.9, 0.1),
		result("r2", "b", 0.7, 0.0),
		result("r3", "a", 0.4, 0.2),
		result("r4", "c", 0.6, 0.1),
	}

	once := rankResults(results)
	twice := rankResults(once)

	require.Len(t, twice, len(once))
	for i := range once {
		assert.Equal(t, once[i].ResultID, twice[i].ResultID)
	}
}

func TestRankResultsEmpty(t *testing.T) {
	assert.Empty(t, rankResults(nil))
}

func TestRankResultsDoesNotMutateInput(t *testing.T) {
	results := []*core.KnowledgeResult{
		result("r1", "a", 0.1, 0.0),
		result("r2", "b", 0.9, 0.0),
	}

	rankResults(results)

	assert.Equal(t, "r1", results[0].ResultID)
	assert.Equal(t, "r2", results[1].ResultID)
}
