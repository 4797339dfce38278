package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/storage"
)

// auditSeqBandwidth is the block of sequence IDs leased at a time for
// audit keys.
const auditSeqBandwidth = 100

// AuditRepository implements storage.AuditRepository for BadgerDB. Access
// and usage entries share one sequence so keys never collide within a
// microsecond.
type AuditRepository struct {
	backend *Backend
	seq     *badger.Sequence
}

var _ storage.AuditRepository = (*AuditRepository)(nil)

// NewAuditRepository creates a new AuditRepository.
func NewAuditRepository(backend *Backend) (*AuditRepository, error) {
	seq, err := backend.GetSequence(auditSeqName, auditSeqBandwidth)
	if err != nil {
		return nil, err
	}

	return &AuditRepository{
		backend: backend,
		seq:     seq,
	}, nil
}

// Close releases the key sequence.
func (r *AuditRepository) Close() error {
	return r.seq.Release()
}

// AppendAccess appends one access-attempt record.
func (r *AuditRepository) AppendAccess(ctx context.Context, record core.AuditRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	return r.append(auditAccessPrefix, record.Timestamp, storage.MarshalAuditRecord(&record))
}

// AppendUsage appends one privacy-usage record.
func (r *AuditRepository) AppendUsage(ctx context.Context, record core.UsageRecord) error {
	if record.Timestamp.IsZero() {
		record.Timestamp = time.Now().UTC()
	}

	return r.append(auditUsagePrefix, record.Timestamp, storage.MarshalUsageRecord(&record))
}

func (r *AuditRepository) append(prefix string, timestamp time.Time, value []byte) error {
	seq, err := r.seq.Next()
	if err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Set(makeAuditKey(prefix, timestamp, seq), value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// RecentAccess returns up to limit access records, newest first.
func (r *AuditRepository) RecentAccess(ctx context.Context, limit int) ([]core.AuditRecord, error) {
	if limit <= 0 {
		return nil, nil
	}

	var records []core.AuditRecord

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(auditAccessPrefix + ":")
		opts.Reverse = true
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Seek(auditScanBound(auditAccessPrefix)); iter.Valid() && len(records) < limit; iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				record, err := storage.UnmarshalAuditRecord(val)
				if err != nil {
					return err
				}
				records = append(records, *record)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)

	if err != nil {
		return nil, err
	}
	return records, nil
}
