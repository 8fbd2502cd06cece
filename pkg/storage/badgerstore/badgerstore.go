// Package badgerstore persists hierarchies in a badger key-value store.
// Items are CBOR encoded and indexed by level and left bound, operations
// issued through InTransaction are applied atomically.
package badgerstore

import (
	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/storage"
	"go-pmptt/util/logger"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

type Options struct {
	// Path is a directory holding database files. Ignored when InMemory is set.
	Path     string
	InMemory bool
}

type Storage struct {
	db        *badger.DB
	listeners *storage.Listeners
	txn       *badger.Txn
}

func Open(opts *Options) (*Storage, error) {
	badgerOptions := badger.DefaultOptions(opts.Path).
		WithInMemory(opts.InMemory).
		WithLogger(logger.L)
	if opts.InMemory {
		badgerOptions = badgerOptions.WithDir("").WithValueDir("")
	}

	db, err := badger.Open(badgerOptions)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open badger")
	}
	return &Storage{db: db, listeners: &storage.Listeners{}}, nil
}

func (s *Storage) Close() error {
	return s.db.Close()
}

func (s *Storage) RegisterChangeListener(l storage.ChangeListener) {
	s.listeners.Register(l)
}

// InTransaction runs fn against a view of the storage bound to a single read
// write transaction. The transaction is committed when fn returns nil and
// discarded otherwise, listener errors included. Nested calls join the
// running transaction.
//
// Listeners are notified as changes are written, before the commit, so that
// a failing listener can still abort the transaction. When the commit itself
// fails (e.g. badger.ErrConflict) listeners have already been told about
// changes that were never stored; the returned error is the only signal of
// that.
func (s *Storage) InTransaction(fn func(s storage.Storage) error) error {
	if s.txn != nil {
		return fn(s)
	}

	txn := s.db.NewTransaction(true)
	defer txn.Discard()

	if err := fn(&Storage{db: s.db, listeners: s.listeners, txn: txn}); err != nil {
		return err
	}
	if err := txn.Commit(); err != nil {
		logger.L.WithError(err).Warn("transaction not committed, notified changes are discarded")
		return errors.Wrap(err, "failed to commit transaction")
	}
	return nil
}

func (s *Storage) read(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return s.db.View(fn)
}

func (s *Storage) write(fn func(txn *badger.Txn) error) error {
	if s.txn != nil {
		return fn(s.txn)
	}
	return s.db.Update(fn)
}

var _ storage.Storage = (*Storage)(nil)
var _ storage.Transactor = (*Storage)(nil)

func (s *Storage) CreateHierarchy(h model.Hierarchy) error {
	return s.write(func(txn *badger.Txn) error {
		_, err := txn.Get(hierarchyKey(h.Code))
		if err == nil {
			return errors.Wrapf(customerrors.ErrDuplicateCode, "hierarchy %q", h.Code)
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return set(txn, hierarchyKey(h.Code), h)
	})
}

func (s *Storage) GetHierarchy(code string) (h model.Hierarchy, err error) {
	err = s.read(func(txn *badger.Txn) error {
		h, err = getHierarchy(txn, code)
		return err
	})
	return h, err
}

func getHierarchy(txn *badger.Txn, code string) (h model.Hierarchy, err error) {
	err = get(txn, hierarchyKey(code), &h)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return h, errors.Wrapf(customerrors.ErrHierarchyNotFound, "hierarchy %q", code)
	}
	return h, err
}

func (s *Storage) RemoveHierarchy(code string) error {
	return s.write(func(txn *badger.Txn) error {
		if _, err := getHierarchy(txn, code); err != nil {
			return err
		}

		keys := [][]byte{hierarchyKey(code)}
		for _, p := range [][]byte{prefix(itemTag, code), prefix(boundTag, code)} {
			it := txn.NewIterator(badger.IteratorOptions{Prefix: p})
			for it.Rewind(); it.Valid(); it.Next() {
				keys = append(keys, it.Item().KeyCopy(nil))
			}
			it.Close()
		}

		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return errors.Wrap(err, "failed to delete hierarchy")
			}
		}
		return nil
	})
}

func (s *Storage) CreateItem(item *model.TrackedItem) error {
	err := s.write(func(txn *badger.Txn) error {
		if _, err := getHierarchy(txn, item.HierarchyCode); err != nil {
			return err
		}

		_, err := getItem(txn, item.HierarchyCode, item.Code)
		if err == nil {
			return errors.Wrapf(customerrors.ErrDuplicateCode, "item %q", item.Code)
		} else if !errors.Is(err, customerrors.ErrNotFound) {
			return err
		}

		if err := index(txn, item.Item); err != nil {
			return err
		}
		return set(txn, itemKey(item.HierarchyCode, item.Code), item.Item)
	})
	if err != nil {
		return err
	}
	return s.listeners.Created(item.Item)
}

func (s *Storage) UpdateItem(item *model.TrackedItem) error {
	err := s.write(func(txn *badger.Txn) error {
		stored, err := getItem(txn, item.HierarchyCode, item.Code)
		if err != nil {
			return err
		}

		if stored.Level != item.Level || stored.LeftBound != item.LeftBound {
			if err := txn.Delete(boundKey(stored.HierarchyCode, stored.Level, stored.LeftBound)); err != nil {
				return err
			}
			if err := index(txn, item.Item); err != nil {
				return err
			}
		}
		return set(txn, itemKey(item.HierarchyCode, item.Code), item.Item)
	})
	if err != nil {
		return err
	}
	return s.listeners.Updated(item.Item, item.Original())
}

func (s *Storage) RemoveItem(item *model.TrackedItem) error {
	err := s.write(func(txn *badger.Txn) error {
		stored, err := getItem(txn, item.HierarchyCode, item.Code)
		if err != nil {
			return err
		}
		if err := txn.Delete(boundKey(stored.HierarchyCode, stored.Level, stored.LeftBound)); err != nil {
			return err
		}
		return txn.Delete(itemKey(stored.HierarchyCode, stored.Code))
	})
	if err != nil {
		return err
	}
	return s.listeners.Removed(item.Item)
}

// index points bound key of the item to its code, failing when another item
// already occupies the bounds.
func index(txn *badger.Txn, item model.Item) error {
	key := boundKey(item.HierarchyCode, item.Level, item.LeftBound)
	existing, err := txn.Get(key)
	if err == nil {
		code, _ := existing.ValueCopy(nil)
		return errors.Wrapf(
			customerrors.ErrCorrupted,
			"item %q overlaps item %q on level %v at %v",
			item.Code, string(code), item.Level, item.LeftBound,
		)
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return err
	}
	return txn.Set(key, []byte(item.Code))
}

func getItem(txn *badger.Txn, hierarchyCode, code string) (item model.Item, err error) {
	err = get(txn, itemKey(hierarchyCode, code), &item)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return item, errors.Wrapf(customerrors.ErrNotFound, "item %q", code)
	}
	return item, err
}

func get(txn *badger.Txn, key []byte, v interface{}) error {
	item, err := txn.Get(key)
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		return errors.Wrap(cbor.Unmarshal(val, v), "failed to decode value")
	})
}

func set(txn *badger.Txn, key []byte, v interface{}) error {
	val, err := cbor.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode value")
	}
	return txn.Set(key, val)
}
