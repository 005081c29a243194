package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/solwallet/solwallet/internal/log"
)

// BadgerDB is the on-disk keystore backend.
type BadgerDB struct {
	db *badger.DB
}

// NewBadger opens (or creates) a Badger database in dir. Keystores hold a
// handful of small records, so the value log and memtables are shrunk from
// badger's defaults and every write is synced.
func NewBadger(dir string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(dir).
		WithLogger(nil).
		WithValueLogFileSize(16 << 20).
		WithMemTableSize(8 << 20).
		WithSyncWrites(true)

	db, err := badger.Open(opts)
	if err != nil {
		msg := err.Error()
		if strings.Contains(msg, "Cannot acquire directory lock") ||
			strings.Contains(msg, "resource temporarily unavailable") {
			return nil, fmt.Errorf("keystore at %s is in use by another wallet session: %w", dir, err)
		}
		return nil, fmt.Errorf("open keystore at %s: %w", dir, err)
	}
	log.Storage.Debug().Str("dir", dir).Msg("Opened keystore database")
	return &BadgerDB{db: db}, nil
}

// get reads key inside txn, mapping badger's miss to ErrNotFound.
func get(txn *badger.Txn, key []byte) ([]byte, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}

func (b *BadgerDB) Get(key []byte) ([]byte, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		v, err := get(txn, key)
		val = v
		return err
	})
	if errors.Is(err, ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("badger get: %w", err)
	}
	return val, nil
}

func (b *BadgerDB) Put(key, value []byte) error {
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	}); err != nil {
		return fmt.Errorf("badger put: %w", err)
	}
	return nil
}

func (b *BadgerDB) Delete(key []byte) error {
	if err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	}); err != nil {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

func (b *BadgerDB) Has(key []byte) (bool, error) {
	_, err := b.Get(key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Rename moves from to to in a single transaction.
func (b *BadgerDB) Rename(from, to []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		val, err := get(txn, from)
		if err != nil {
			return err
		}
		if _, err := get(txn, to); err == nil {
			return ErrExists
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if err := txn.Set(to, val); err != nil {
			return err
		}
		return txn.Delete(from)
	})
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExists) {
		return err
	}
	if err != nil {
		return fmt.Errorf("badger rename: %w", err)
	}
	return nil
}

func (b *BadgerDB) ForEach(prefix []byte, fn func(key, value []byte) error) error {
	return b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()
			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if err := fn(item.KeyCopy(nil), val); err != nil {
				return err
			}
		}
		return nil
	})
}

func (b *BadgerDB) Close() error {
	return b.db.Close()
}
