package index

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/storage"
)

// secureDocumentHash produces a permission-aware digest for one document:
// a hash of the content hash combined with a hash of the silo's serialized
// access rules. The digest binds content identity to the policy it was
// indexed under without revealing either. It is stored alongside the
// silo's vectors and never exposed outside the indexer.
func secureDocumentHash(content string, rules core.AccessRules) string {
	contentHash := blakeSum([]byte(content))

	rulesBuf := make([]byte, storage.AccessRulesMUS.Size(rules))
	storage.AccessRulesMUS.Marshal(rules, rulesBuf)
	rulesHash := blakeSum(rulesBuf)

	composite := make([]byte, 0, len(contentHash)+1+len(rulesHash))
	composite = append(composite, contentHash...)
	composite = append(composite, ':')
	composite = append(composite, rulesHash...)

	return hex.EncodeToString(blakeSum(composite))
}

func blakeSum(data []byte) []byte {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return h.Sum(nil)
}
