package memory

import (
	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"
	"go-pmptt/pkg/storage"

	"github.com/pkg/errors"
)

func (s *Storage) GetItem(h model.Hierarchy, code string) (*model.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return nil, err
	}
	item, ok := c.items[code]
	if !ok {
		return nil, errors.Wrapf(customerrors.ErrNotFound, "item %q", code)
	}
	return model.NewTrackedItem(item), nil
}

func (s *Storage) GetParentItem(h model.Hierarchy, item model.Item) (*model.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return nil, err
	}
	parent, ok, err := c.parent(item)
	if err != nil || !ok {
		return nil, err
	}
	return model.NewTrackedItem(parent), nil
}

// parent resolves the parent purely from bounds of the item.
func (c *contents) parent(item model.Item) (model.Item, bool, error) {
	if item.Level <= 1 {
		return model.Item{}, false, nil
	}

	bounds := section.ParentBounds(c.hierarchy.SectionSize, item.WithBucket())
	k, ok := c.bounds.Get(boundKey{level: item.Level - 1, left: bounds.LeftBound})
	if !ok || c.items[k.code].RightBound != bounds.RightBound {
		return model.Item{}, false, errors.Wrapf(customerrors.ErrCorrupted, "parent of item %q at %v not found", item.Code, bounds)
	}
	return c.items[k.code], true, nil
}

func (s *Storage) GetParentItems(h model.Hierarchy, item model.Item) ([]*model.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return nil, err
	}

	parents := make([]*model.TrackedItem, item.Level-1)
	for current := item; ; {
		parent, ok, err := c.parent(current)
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		parents[parent.Level-1] = model.NewTrackedItem(parent)
		current = parent
	}
	return parents, nil
}

func (s *Storage) GetRootItems(h model.Hierarchy) ([]*model.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return nil, err
	}
	root, err := section.RootBounds(h.SectionSize, h.Levels)
	if err != nil {
		return nil, err
	}

	items := c.collect(1, root, nil)
	storage.SortByOrder(items)
	return items, nil
}

func (s *Storage) GetChildItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return nil, err
	}

	items := c.collect(parent.Level+1, parent.Section(), nil)
	storage.SortByOrder(items)
	return items, nil
}

func (s *Storage) GetAllChildItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error) {
	return s.descendants(h, parent, nil)
}

func (s *Storage) GetLeafItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error) {
	return s.descendants(h, parent, func(item model.Item) bool {
		return item.NumberOfChildren == 0
	})
}

func (s *Storage) descendants(h model.Hierarchy, parent model.Item, filter func(item model.Item) bool) ([]*model.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return nil, err
	}

	items := []*model.TrackedItem{}
	for level := parent.Level + 1; level < h.Levels; level++ {
		items = append(items, c.collect(level, parent.Section(), filter)...)
	}
	storage.SortByLevel(items)
	return items, nil
}

func (s *Storage) GetAllLeafItems(h model.Hierarchy) ([]*model.TrackedItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return nil, err
	}

	items := make([]*model.TrackedItem, 0, len(c.items))
	for _, item := range c.items {
		items = append(items, model.NewTrackedItem(item))
	}
	return storage.ReadingOrderLeaves(h, items)
}

func (c *contents) collect(level int, s section.Section, filter func(item model.Item) bool) []*model.TrackedItem {
	items := []*model.TrackedItem{}
	c.ascendLevel(level, s, func(item model.Item) bool {
		if item.RightBound > s.RightBound {
			return false
		}
		if filter == nil || filter(item) {
			items = append(items, model.NewTrackedItem(item))
		}
		return true
	})
	return items
}

func (s *Storage) GetFirstEmptySection(h model.Hierarchy, width int64, maxCount int) (section.WithBucket, bool, error) {
	root, err := section.RootBounds(h.SectionSize, h.Levels)
	if err != nil {
		return section.WithBucket{}, false, err
	}
	return s.firstEmptyUnder(h, 1, root, width, maxCount)
}

func (s *Storage) GetFirstEmptySectionUnder(h model.Hierarchy, parent model.Item, width int64, maxCount int) (section.WithBucket, bool, error) {
	return s.firstEmptyUnder(h, parent.Level+1, parent.Section(), width, maxCount)
}

func (s *Storage) firstEmptyUnder(h model.Hierarchy, level int, parent section.Section, width int64, maxCount int) (section.WithBucket, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, err := s.contents(h.Code)
	if err != nil {
		return section.WithBucket{}, false, err
	}
	found, ok := c.firstEmpty(level, parent, width, maxCount)
	return found, ok, nil
}
