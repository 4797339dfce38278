package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/syndex/core"
	"github.com/poiesic/syndex/storage"
)

// SiloRepository implements storage.SiloRepository for BadgerDB.
type SiloRepository struct {
	backend *Backend
}

var _ storage.SiloRepository = (*SiloRepository)(nil)

// NewSiloRepository creates a new SiloRepository.
func NewSiloRepository(backend *Backend) *SiloRepository {
	return &SiloRepository{backend: backend}
}

// Close is a no-op; the repository owns no resources beyond the backend.
func (r *SiloRepository) Close() error {
	return nil
}

// PutSilo stores or replaces a silo's metadata.
func (r *SiloRepository) PutSilo(ctx context.Context, silo *core.SiloMetadata) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSiloKey(silo.SiloID)
		if err := tx.Set(key, storage.MarshalSiloMetadata(silo)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// GetSilo returns the silo with the given ID.
func (r *SiloRepository) GetSilo(ctx context.Context, siloID string) (*core.SiloMetadata, error) {
	var silo *core.SiloMetadata

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeSiloKey(siloID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			silo, err = storage.UnmarshalSiloMetadata(val)
			return err
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return silo, nil
}

// ListSilos returns every stored silo, ordered by silo ID.
func (r *SiloRepository) ListSilos(ctx context.Context) ([]*core.SiloMetadata, error) {
	var silos []*core.SiloMetadata

	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(siloPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				silo, err := storage.UnmarshalSiloMetadata(val)
				if err != nil {
					return err
				}
				silos = append(silos, silo)
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
	return silos, nil
}

// UpdateSiloStats records the outcome of an indexing run.
func (r *SiloRepository) UpdateSiloStats(ctx context.Context, siloID string, documentCount int, lastIndexed time.Time) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeSiloKey(siloID)

		item, err := tx.Get(key)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return storage.ErrNotFound
			}
			return err
		}

		var silo *core.SiloMetadata
		if err := item.Value(func(val []byte) error {
			silo, err = storage.UnmarshalSiloMetadata(val)
			return err
		}); err != nil {
			return err
		}

		silo.DocumentCount = documentCount
		silo.LastIndexed = lastIndexed

		if err := tx.Set(key, storage.MarshalSiloMetadata(silo)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
