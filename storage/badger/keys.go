package badger

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Key prefixes for different data types
const (
	siloPrefix        = "silmet"
	auditAccessPrefix = "audacc"
	auditUsagePrefix  = "audusg"
	auditSeqName      = "audseq"
)

// makeSiloKey generates a key for silo metadata by ID. Silo IDs sort
// lexicographically, so a prefix scan yields silos in ID order.
func makeSiloKey(siloID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", siloPrefix, siloID))
}

// makeAuditKey generates a composite key for an append-only log entry.
// Format: prefix:timestamp:seq
func makeAuditKey(prefix string, timestamp time.Time, seq uint64) []byte {
	prefixBytes := []byte(prefix + ":")
	prefixSize := len(prefixBytes)
	totalSize := prefixSize + 16 // 8 bytes for timestamp + 8 bytes for seq
	buf := make([]byte, totalSize)
	offset := copy(buf, prefixBytes)
	// Write in BigEndian order so lexicographic sort equals time order
	binary.BigEndian.PutUint64(buf[offset:], uint64(timestamp.UnixMicro()))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}

// auditScanBound is the upper bound for a reverse scan over an audit
// prefix.
func auditScanBound(prefix string) []byte {
	bound := []byte(prefix + ":")
	for i := 0; i < 16; i++ {
		bound = append(bound, 0xff)
	}
	return bound
}
