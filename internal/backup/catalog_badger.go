// carbonlog - Personal Carbon Footprint Tracker
// Copyright 2026 M. Kerring (mkerring)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mkerring/carbonlog

package backup

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/mkerring/carbonlog/internal/logging"
)

// metaKeyPrefix namespaces catalog rows in the Badger keyspace.
const metaKeyPrefix = "backup:meta:"

// BadgerCatalog implements Catalog on a BadgerDB key-value store with
// JSON-encoded rows.
type BadgerCatalog struct {
	db *badger.DB
}

var _ Catalog = (*BadgerCatalog)(nil)

// NewBadgerCatalog opens (or creates) a catalog at path. An empty path
// selects a non-persistent in-memory store, which is only useful for
// tests.
func NewBadgerCatalog(path string) (*BadgerCatalog, error) {
	var opts badger.Options
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(path)
	}
	opts.Logger = nil // Suppress BadgerDB logs

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open backup catalog: %w", err)
	}

	logging.Debug().Str("path", path).Msg("Backup catalog opened")
	return &BadgerCatalog{db: db}, nil
}

// NewBadgerCatalogFromDB wraps an already-open BadgerDB.
func NewBadgerCatalogFromDB(db *badger.DB) *BadgerCatalog {
	return &BadgerCatalog{db: db}
}

func metaKey(id string) []byte {
	return []byte(metaKeyPrefix + id)
}

// Insert stores a new row. Inserting an existing id is an error.
func (c *BadgerCatalog) Insert(_ context.Context, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata %s: %w", meta.ID, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		key := metaKey(meta.ID)
		_, err := txn.Get(key)
		if err == nil {
			return fmt.Errorf("backup %s already cataloged", meta.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("failed to probe catalog: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Update replaces an existing row.
func (c *BadgerCatalog) Update(_ context.Context, meta *Metadata) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode metadata %s: %w", meta.ID, err)
	}

	return c.db.Update(func(txn *badger.Txn) error {
		key := metaKey(meta.ID)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, meta.ID)
			}
			return fmt.Errorf("failed to probe catalog: %w", err)
		}
		return txn.Set(key, data)
	})
}

// Get returns one row by id.
func (c *BadgerCatalog) Get(_ context.Context, id string) (*Metadata, error) {
	var meta Metadata

	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(metaKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("failed to read catalog: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &meta)
		})
	})
	if err != nil {
		return nil, err
	}

	return &meta, nil
}

// ListAll returns every row ordered by created_at descending. Badger
// iterates in key order; the creation ordering is applied in memory.
func (c *BadgerCatalog) ListAll(_ context.Context) ([]*Metadata, error) {
	var entries []*Metadata

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(metaKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var meta Metadata
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &meta)
			})
			if err != nil {
				return fmt.Errorf("failed to decode catalog row: %w", err)
			}
			entries = append(entries, &meta)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sortNewestFirst(entries)
	return entries, nil
}

// Delete removes a row by id.
func (c *BadgerCatalog) Delete(_ context.Context, id string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		key := metaKey(id)
		if _, err := txn.Get(key); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			return fmt.Errorf("failed to probe catalog: %w", err)
		}
		return txn.Delete(key)
	})
}

// Count returns the number of rows.
func (c *BadgerCatalog) Count(_ context.Context) (int, error) {
	count := 0

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(metaKeyPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			count++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Close releases the underlying store.
func (c *BadgerCatalog) Close() error {
	return c.db.Close()
}
