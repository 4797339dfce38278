package index

import (
	"testing"

	"github.com/poiesic/syndex/core"
	"github.com/stretchr/testify/assert"
)

func TestSecureDocumentHashDeterministic(t *testing.T) {
	rules := core.AccessRules{AllowedTeams: []string{"eng"}}

	assert.Equal(t,
		secureDocumentHash("some content", rules),
		secureDocumentHash("some content", rules),
	)
}

func TestSecureDocumentHashBindsContentAndRules(t *testing.T) {
	rules := core.AccessRules{AllowedTeams: []string{"eng"}}

	base := secureDocumentHash("some content", rules)

	assert.NotEqual(t, base, secureDocumentHash("other content", rules))

	loosened := core.AccessRules{PublicWithinOrg: true}
	assert.NotEqual(t, base, secureDocumentHash("some content", loosened))
}

func TestSecureDocumentHashHexEncoded(t *testing.T) {
	hash := secureDocumentHash("x", core.AccessRules{})
	assert.Len(t, hash, 64)
}
