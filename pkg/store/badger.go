package store

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/shopspring/decimal"
)

func init() {
	Register("badger", OpenBadger)
}

type badgerBackend struct {
	db *badger.DB
}

// OpenBadger opens a badger database in dir. An empty dir keeps it in
// memory. Values are stored as decimal text; an empty value is null.
func OpenBadger(dir string) (Store, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.WithNumVersionsToKeep(1).WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return newCached(&badgerBackend{db: db}), nil
}

func (b *badgerBackend) get(_ context.Context, name string) (decimal.NullDecimal, bool, error) {
	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(name))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return decimal.NullDecimal{}, false, nil
	}
	if err != nil {
		return decimal.NullDecimal{}, false, err
	}
	if len(raw) == 0 {
		return decimal.NullDecimal{}, true, nil
	}
	d, err := decimal.NewFromString(string(raw))
	if err != nil {
		return decimal.NullDecimal{}, false, fmt.Errorf("decode %s: %w", name, err)
	}
	return decimal.NewNullDecimal(d), true, nil
}

func (b *badgerBackend) put(_ context.Context, name string, v decimal.NullDecimal) error {
	var raw []byte
	if v.Valid {
		raw = []byte(v.Decimal.String())
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(name), raw)
	})
}

func (b *badgerBackend) names(context.Context) ([]string, error) {
	var names []string
	err := b.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			names = append(names, string(it.Item().KeyCopy(nil)))
		}
		return nil
	})
	return names, err
}

func (b *badgerBackend) close() error {
	return b.db.Close()
}
