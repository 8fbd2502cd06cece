// Package memory implements storage.Storage on top of in-memory B-trees. It
// does not support transactions: changes applied before a failing listener
// are kept.
package memory

import (
	"sync"

	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"
	"go-pmptt/pkg/storage"

	"github.com/google/btree"
	"github.com/pkg/errors"
)

const degree = 16

// boundKey orders items by level and left bound. Items on the same level
// never share a left bound.
type boundKey struct {
	level int
	left  int64
	code  string
}

func lessBoundKey(a, b boundKey) bool {
	if a.level != b.level {
		return a.level < b.level
	}
	return a.left < b.left
}

type contents struct {
	hierarchy model.Hierarchy
	items     map[string]model.Item
	bounds    *btree.BTreeG[boundKey]
}

func newContents(h model.Hierarchy) *contents {
	return &contents{
		hierarchy: h,
		items:     map[string]model.Item{},
		bounds:    btree.NewG(degree, lessBoundKey),
	}
}

func keyOf(item model.Item) boundKey {
	return boundKey{level: item.Level, left: item.LeftBound, code: item.Code}
}

type Storage struct {
	mu          sync.RWMutex
	hierarchies map[string]*contents
	listeners   storage.Listeners
}

func New() *Storage {
	return &Storage{hierarchies: map[string]*contents{}}
}

func (s *Storage) RegisterChangeListener(l storage.ChangeListener) {
	s.listeners.Register(l)
}

func (s *Storage) CreateHierarchy(h model.Hierarchy) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.hierarchies[h.Code]; ok {
		return errors.Wrapf(customerrors.ErrDuplicateCode, "hierarchy %q", h.Code)
	}
	s.hierarchies[h.Code] = newContents(h)
	return nil
}

func (s *Storage) GetHierarchy(code string) (model.Hierarchy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(code)
	if err != nil {
		return model.Hierarchy{}, err
	}
	return c.hierarchy, nil
}

func (s *Storage) RemoveHierarchy(code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.contents(code); err != nil {
		return err
	}
	delete(s.hierarchies, code)
	return nil
}

func (s *Storage) contents(code string) (*contents, error) {
	c, ok := s.hierarchies[code]
	if !ok {
		return nil, errors.Wrapf(customerrors.ErrHierarchyNotFound, "hierarchy %q", code)
	}
	return c, nil
}

func (s *Storage) CreateItem(item *model.TrackedItem) error {
	if err := s.create(item.Item); err != nil {
		return err
	}
	return s.listeners.Created(item.Item)
}

func (s *Storage) create(item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.contents(item.HierarchyCode)
	if err != nil {
		return err
	}
	if _, ok := c.items[item.Code]; ok {
		return errors.Wrapf(customerrors.ErrDuplicateCode, "item %q", item.Code)
	}
	if err := c.index(item); err != nil {
		return err
	}
	c.items[item.Code] = item
	return nil
}

func (s *Storage) UpdateItem(item *model.TrackedItem) error {
	if err := s.update(item.Item); err != nil {
		return err
	}
	return s.listeners.Updated(item.Item, item.Original())
}

func (s *Storage) update(item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.contents(item.HierarchyCode)
	if err != nil {
		return err
	}
	stored, ok := c.items[item.Code]
	if !ok {
		return errors.Wrapf(customerrors.ErrNotFound, "item %q", item.Code)
	}

	if keyOf(stored) != keyOf(item) {
		c.bounds.Delete(keyOf(stored))
		if err := c.index(item); err != nil {
			c.bounds.ReplaceOrInsert(keyOf(stored))
			return err
		}
	}
	c.items[item.Code] = item
	return nil
}

func (c *contents) index(item model.Item) error {
	if existing, ok := c.bounds.Get(keyOf(item)); ok {
		return errors.Wrapf(
			customerrors.ErrCorrupted,
			"item %q overlaps item %q on level %v at %v",
			item.Code, existing.code, item.Level, item.LeftBound,
		)
	}
	c.bounds.ReplaceOrInsert(keyOf(item))
	return nil
}

func (s *Storage) RemoveItem(item *model.TrackedItem) error {
	if err := s.remove(item.Item); err != nil {
		return err
	}
	return s.listeners.Removed(item.Item)
}

func (s *Storage) remove(item model.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.contents(item.HierarchyCode)
	if err != nil {
		return err
	}
	stored, ok := c.items[item.Code]
	if !ok {
		return errors.Wrapf(customerrors.ErrNotFound, "item %q", item.Code)
	}
	c.bounds.Delete(keyOf(stored))
	delete(c.items, item.Code)
	return nil
}

var _ storage.Storage = (*Storage)(nil)

// firstEmpty runs gap search over items on the level inside parent.
func (c *contents) firstEmpty(level int, parent section.Section, width int64, maxCount int) (section.WithBucket, bool) {
	siblings := []section.Section{}
	c.ascendLevel(level, parent, func(item model.Item) bool {
		siblings = append(siblings, item.Section())
		return true
	})
	return storage.FirstEmptySection(siblings, parent.LeftBound+1, width, maxCount)
}

// ascendLevel iterates items on the level whose left bound lies inside s.
func (c *contents) ascendLevel(level int, s section.Section, fn func(item model.Item) bool) {
	c.bounds.AscendRange(
		boundKey{level: level, left: s.LeftBound},
		boundKey{level: level, left: s.RightBound + 1},
		func(k boundKey) bool {
			return fn(c.items[k.code])
		},
	)
}
