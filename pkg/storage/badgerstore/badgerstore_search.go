package badgerstore

import (
	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"
	"go-pmptt/pkg/storage"

	"github.com/dgraph-io/badger/v4"
	"github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

func (s *Storage) GetItem(h model.Hierarchy, code string) (item *model.TrackedItem, err error) {
	err = s.read(func(txn *badger.Txn) error {
		found, err := getItem(txn, h.Code, code)
		if err != nil {
			return err
		}
		item = model.NewTrackedItem(found)
		return nil
	})
	return item, err
}

func (s *Storage) GetParentItem(h model.Hierarchy, item model.Item) (parent *model.TrackedItem, err error) {
	err = s.read(func(txn *badger.Txn) error {
		found, ok, err := getParent(txn, h, item)
		if err != nil || !ok {
			return err
		}
		parent = model.NewTrackedItem(found)
		return nil
	})
	return parent, err
}

func getParent(txn *badger.Txn, h model.Hierarchy, item model.Item) (model.Item, bool, error) {
	if item.Level <= 1 {
		return model.Item{}, false, nil
	}

	bounds := section.ParentBounds(h.SectionSize, item.WithBucket())
	entry, err := txn.Get(boundKey(h.Code, item.Level-1, bounds.LeftBound))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return model.Item{}, false, errors.Wrapf(customerrors.ErrCorrupted, "parent of item %q at %v not found", item.Code, bounds)
	} else if err != nil {
		return model.Item{}, false, err
	}

	code, err := entry.ValueCopy(nil)
	if err != nil {
		return model.Item{}, false, err
	}
	parent, err := getItem(txn, h.Code, string(code))
	if err != nil {
		return model.Item{}, false, err
	}
	if parent.RightBound != bounds.RightBound {
		return model.Item{}, false, errors.Wrapf(customerrors.ErrCorrupted, "parent of item %q at %v not found", item.Code, bounds)
	}
	return parent, true, nil
}

func (s *Storage) GetParentItems(h model.Hierarchy, item model.Item) (parents []*model.TrackedItem, err error) {
	err = s.read(func(txn *badger.Txn) error {
		parents = make([]*model.TrackedItem, item.Level-1)
		for current := item; ; {
			parent, ok, err := getParent(txn, h, current)
			if err != nil {
				return err
			}
			if !ok {
				return nil
			}
			parents[parent.Level-1] = model.NewTrackedItem(parent)
			current = parent
		}
	})
	return parents, err
}

func (s *Storage) GetRootItems(h model.Hierarchy) (items []*model.TrackedItem, err error) {
	root, err := section.RootBounds(h.SectionSize, h.Levels)
	if err != nil {
		return nil, err
	}

	err = s.read(func(txn *badger.Txn) error {
		items, err = collect(txn, h, 1, root, nil)
		return err
	})
	storage.SortByOrder(items)
	return items, err
}

func (s *Storage) GetChildItems(h model.Hierarchy, parent model.Item) (items []*model.TrackedItem, err error) {
	err = s.read(func(txn *badger.Txn) error {
		items, err = collect(txn, h, parent.Level+1, parent.Section(), nil)
		return err
	})
	storage.SortByOrder(items)
	return items, err
}

func (s *Storage) GetAllChildItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error) {
	return s.descendants(h, parent, nil)
}

func (s *Storage) GetLeafItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error) {
	return s.descendants(h, parent, func(item model.Item) bool {
		return item.NumberOfChildren == 0
	})
}

func (s *Storage) descendants(h model.Hierarchy, parent model.Item, filter func(item model.Item) bool) (items []*model.TrackedItem, err error) {
	err = s.read(func(txn *badger.Txn) error {
		for level := parent.Level + 1; level < h.Levels; level++ {
			found, err := collect(txn, h, level, parent.Section(), filter)
			if err != nil {
				return err
			}
			items = append(items, found...)
		}
		return nil
	})
	storage.SortByLevel(items)
	return items, err
}

func (s *Storage) GetAllLeafItems(h model.Hierarchy) (leaves []*model.TrackedItem, err error) {
	items := []*model.TrackedItem{}
	err = s.read(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix(itemTag, h.Code), PrefetchValues: true})
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var item model.Item
			err := it.Item().Value(func(val []byte) error {
				return cbor.Unmarshal(val, &item)
			})
			if err != nil {
				return errors.Wrap(err, "failed to decode item")
			}
			items = append(items, model.NewTrackedItem(item))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return storage.ReadingOrderLeaves(h, items)
}

func (s *Storage) GetFirstEmptySection(h model.Hierarchy, width int64, maxCount int) (section.WithBucket, bool, error) {
	root, err := section.RootBounds(h.SectionSize, h.Levels)
	if err != nil {
		return section.WithBucket{}, false, err
	}
	return s.firstEmpty(h, 1, root, width, maxCount)
}

func (s *Storage) GetFirstEmptySectionUnder(h model.Hierarchy, parent model.Item, width int64, maxCount int) (section.WithBucket, bool, error) {
	return s.firstEmpty(h, parent.Level+1, parent.Section(), width, maxCount)
}

func (s *Storage) firstEmpty(h model.Hierarchy, level int, parent section.Section, width int64, maxCount int) (found section.WithBucket, ok bool, err error) {
	err = s.read(func(txn *badger.Txn) error {
		codes, lefts, err := scanLevel(txn, h, level, parent)
		if err != nil {
			return err
		}

		siblings := make([]section.Section, 0, len(codes))
		for _, left := range lefts {
			siblings = append(siblings, section.Section{LeftBound: left, RightBound: left + width - 1})
		}
		found, ok = storage.FirstEmptySection(siblings, parent.LeftBound+1, width, maxCount)
		return nil
	})
	return found, ok, err
}

// scanLevel returns codes and left bounds of items on the level whose left
// bound lies inside s, ordered by left bound.
func scanLevel(txn *badger.Txn, h model.Hierarchy, level int, s section.Section) (codes []string, lefts []int64, err error) {
	levelKey := levelPrefix(h.Code, level)
	it := txn.NewIterator(badger.IteratorOptions{Prefix: levelKey, PrefetchValues: true})
	defer it.Close()

	for it.Seek(boundKey(h.Code, level, s.LeftBound)); it.Valid(); it.Next() {
		left := leftOf(it.Item().Key())
		if left > s.RightBound {
			break
		}
		code, err := it.Item().ValueCopy(nil)
		if err != nil {
			return nil, nil, err
		}
		codes = append(codes, string(code))
		lefts = append(lefts, left)
	}
	return codes, lefts, nil
}

func collect(txn *badger.Txn, h model.Hierarchy, level int, s section.Section, filter func(item model.Item) bool) ([]*model.TrackedItem, error) {
	codes, _, err := scanLevel(txn, h, level, s)
	if err != nil {
		return nil, err
	}

	items := make([]*model.TrackedItem, 0, len(codes))
	for _, code := range codes {
		item, err := getItem(txn, h.Code, code)
		if err != nil {
			return nil, err
		}
		if item.RightBound > s.RightBound {
			continue
		}
		if filter == nil || filter(item) {
			items = append(items, model.NewTrackedItem(item))
		}
	}
	return items, nil
}
