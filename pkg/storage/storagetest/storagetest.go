// Package storagetest verifies storage.Storage implementations against the
// behaviour the hierarchy engine relies on.
package storagetest

import (
	"testing"

	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"
	"go-pmptt/pkg/storage"

	"github.com/stretchr/testify/require"
)

// Recorder is a listener remembering codes of changed items.
type Recorder struct {
	Created []string
	Updated []string
	Removed []string
	Fail    error
}

func (r *Recorder) ItemCreated(item model.Item) error {
	r.Created = append(r.Created, item.Code)
	return r.Fail
}

func (r *Recorder) ItemUpdated(item, original model.Item) error {
	r.Updated = append(r.Updated, item.Code)
	return r.Fail
}

func (r *Recorder) ItemRemoved(item model.Item) error {
	r.Removed = append(r.Removed, item.Code)
	return r.Fail
}

func (r *Recorder) Reset() {
	r.Created, r.Updated, r.Removed = nil, nil, nil
}

// Codes lists codes of items keeping their order.
func Codes(items []*model.TrackedItem) []string {
	codes := make([]string, 0, len(items))
	for _, item := range items {
		codes = append(codes, item.Code)
	}
	return codes
}

type fixture struct {
	h     model.Hierarchy
	items map[string]*model.TrackedItem
}

// place lays out an item into the bucket of its parent, nil parent means
// root level.
func (f *fixture) place(t *testing.T, code string, parent *model.TrackedItem, bucket, order, children int) *model.TrackedItem {
	level := 1
	bounds, err := section.RootBounds(f.h.SectionSize, f.h.Levels)
	require.NoError(t, err)
	if parent != nil {
		level = parent.Level + 1
		bounds = parent.Section()
	}
	width, err := f.h.ItemWidth(level)
	require.NoError(t, err)

	item := model.NewTrackedItem(model.Item{
		HierarchyCode:    f.h.Code,
		Code:             code,
		Order:            order,
		NumberOfChildren: children,
	})
	item.SetSection(section.ChildSection(bounds, width, bucket), level)
	f.items[code] = item
	return item
}

// build creates the tree below, buckets differ from orders on purpose.
//
//	a (bucket 1)
//	    a2 (bucket 2)
//	    a1 (bucket 1)
//	        a1x (bucket 2)
//	b (bucket 3)
//	c (bucket 2)
func build(t *testing.T, s storage.Storage) *fixture {
	h, err := model.NewHierarchy("test", 3, 3)
	require.NoError(t, err)
	require.NoError(t, s.CreateHierarchy(h))

	f := &fixture{h: h, items: map[string]*model.TrackedItem{}}
	a := f.place(t, "a", nil, 1, 1, 2)
	f.place(t, "b", nil, 3, 2, 0)
	f.place(t, "c", nil, 2, 3, 0)
	a1 := f.place(t, "a1", a, 1, 2, 1)
	f.place(t, "a2", a, 2, 1, 0)
	f.place(t, "a1x", a1, 2, 1, 0)

	for _, code := range []string{"a", "b", "c", "a1", "a2", "a1x"} {
		require.NoError(t, s.CreateItem(f.items[code]))
	}
	return f
}

// Run executes the suite, open must return an empty storage.
func Run(t *testing.T, open func(t *testing.T) storage.Storage) {
	t.Run("Hierarchy", func(t *testing.T) {
		s := open(t)
		h, err := model.NewHierarchy("h", 3, 4)
		require.NoError(t, err)

		_, err = s.GetHierarchy("h")
		require.ErrorIs(t, err, customerrors.ErrHierarchyNotFound)

		require.NoError(t, s.CreateHierarchy(h))
		require.ErrorIs(t, s.CreateHierarchy(h), customerrors.ErrDuplicateCode)

		stored, err := s.GetHierarchy("h")
		require.NoError(t, err)
		require.Equal(t, h, stored)

		require.NoError(t, s.RemoveHierarchy("h"))
		_, err = s.GetHierarchy("h")
		require.ErrorIs(t, err, customerrors.ErrHierarchyNotFound)
		require.ErrorIs(t, s.RemoveHierarchy("h"), customerrors.ErrHierarchyNotFound)
	})

	t.Run("RemoveHierarchyDropsItems", func(t *testing.T) {
		s := open(t)
		f := build(t, s)

		other, err := model.NewHierarchy("test2", 3, 3)
		require.NoError(t, err)
		require.NoError(t, s.CreateHierarchy(other))
		kept := *f.items["a"]
		kept.HierarchyCode = other.Code
		require.NoError(t, s.CreateItem(model.NewTrackedItem(kept.Item)))

		require.NoError(t, s.RemoveHierarchy(f.h.Code))
		require.NoError(t, s.CreateHierarchy(f.h))
		_, err = s.GetItem(f.h, "a")
		require.ErrorIs(t, err, customerrors.ErrNotFound)

		roots, err := s.GetRootItems(f.h)
		require.NoError(t, err)
		require.Empty(t, roots)

		item, err := s.GetItem(other, "a")
		require.NoError(t, err)
		require.Equal(t, kept.Item, item.Item)
	})

	t.Run("Items", func(t *testing.T) {
		s := open(t)
		r := &Recorder{}
		s.RegisterChangeListener(r)
		f := build(t, s)
		require.Equal(t, []string{"a", "b", "c", "a1", "a2", "a1x"}, r.Created)

		item, err := s.GetItem(f.h, "a1")
		require.NoError(t, err)
		require.Equal(t, f.items["a1"].Item, item.Item)
		require.False(t, item.Changed())

		_, err = s.GetItem(f.h, "missing")
		require.ErrorIs(t, err, customerrors.ErrNotFound)

		err = s.CreateItem(model.NewTrackedItem(f.items["b"].Item))
		require.ErrorIs(t, err, customerrors.ErrDuplicateCode)

		item.Order = 5
		require.NoError(t, s.UpdateItem(item))
		require.Equal(t, []string{"a1"}, r.Updated)
		stored, err := s.GetItem(f.h, "a1")
		require.NoError(t, err)
		require.Equal(t, 5, stored.Order)

		c, err := s.GetItem(f.h, "c")
		require.NoError(t, err)
		require.NoError(t, s.RemoveItem(c))
		require.Equal(t, []string{"c"}, r.Removed)
		_, err = s.GetItem(f.h, "c")
		require.ErrorIs(t, err, customerrors.ErrNotFound)
		require.ErrorIs(t, s.RemoveItem(c), customerrors.ErrNotFound)
		require.ErrorIs(t, s.UpdateItem(c), customerrors.ErrNotFound)
	})

	t.Run("UpdateMovesBounds", func(t *testing.T) {
		s := open(t)
		f := build(t, s)

		b, err := s.GetItem(f.h, "b")
		require.NoError(t, err)
		a, err := s.GetItem(f.h, "a")
		require.NoError(t, err)

		width, err := f.h.ItemWidth(2)
		require.NoError(t, err)
		b.SetSection(section.ChildSection(a.Section(), width, 3), 2)
		b.Order = 3
		require.NoError(t, s.UpdateItem(b))

		children, err := s.GetChildItems(f.h, a.Item)
		require.NoError(t, err)
		require.Equal(t, []string{"a2", "a1", "b"}, Codes(children))

		roots, err := s.GetRootItems(f.h)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "c"}, Codes(roots))

		// occupied bounds
		c, err := s.GetItem(f.h, "c")
		require.NoError(t, err)
		c.SetSection(a.WithBucket(), 1)
		require.ErrorIs(t, s.UpdateItem(c), customerrors.ErrCorrupted)
	})

	t.Run("ListenerFailure", func(t *testing.T) {
		s := open(t)
		f := build(t, s)
		r := &Recorder{Fail: customerrors.ErrCorrupted}
		s.RegisterChangeListener(r)

		item, err := s.GetItem(f.h, "b")
		require.NoError(t, err)
		item.Order = 9
		require.ErrorIs(t, s.UpdateItem(item), customerrors.ErrCorrupted)
		require.Equal(t, []string{"b"}, r.Updated)
	})

	t.Run("Parents", func(t *testing.T) {
		s := open(t)
		f := build(t, s)

		parent, err := s.GetParentItem(f.h, f.items["a1x"].Item)
		require.NoError(t, err)
		require.Equal(t, "a1", parent.Code)

		parent, err = s.GetParentItem(f.h, f.items["a"].Item)
		require.NoError(t, err)
		require.Nil(t, parent)

		parents, err := s.GetParentItems(f.h, f.items["a1x"].Item)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "a1"}, Codes(parents))

		parents, err = s.GetParentItems(f.h, f.items["b"].Item)
		require.NoError(t, err)
		require.Empty(t, parents)
	})

	t.Run("Listings", func(t *testing.T) {
		s := open(t)
		f := build(t, s)

		roots, err := s.GetRootItems(f.h)
		require.NoError(t, err)
		require.Equal(t, []string{"a", "b", "c"}, Codes(roots))

		children, err := s.GetChildItems(f.h, f.items["a"].Item)
		require.NoError(t, err)
		require.Equal(t, []string{"a2", "a1"}, Codes(children))

		children, err = s.GetChildItems(f.h, f.items["b"].Item)
		require.NoError(t, err)
		require.Empty(t, children)

		all, err := s.GetAllChildItems(f.h, f.items["a"].Item)
		require.NoError(t, err)
		require.Equal(t, []string{"a2", "a1", "a1x"}, Codes(all))

		leaves, err := s.GetLeafItems(f.h, f.items["a"].Item)
		require.NoError(t, err)
		require.Equal(t, []string{"a2", "a1x"}, Codes(leaves))

		leaves, err = s.GetAllLeafItems(f.h)
		require.NoError(t, err)
		require.Equal(t, []string{"a2", "a1x", "b", "c"}, Codes(leaves))
	})

	t.Run("FirstEmptySection", func(t *testing.T) {
		s := open(t)
		f := build(t, s)

		// root level is full with 3 items
		_, ok, err := s.GetFirstEmptySection(f.h, f.items["a"].Section().Span(), f.h.SectionSize)
		require.NoError(t, err)
		require.False(t, ok)

		c, err := s.GetItem(f.h, "c")
		require.NoError(t, err)
		require.NoError(t, s.RemoveItem(c))

		found, ok, err := s.GetFirstEmptySection(f.h, f.items["a"].Section().Span(), f.h.SectionSize)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, c.WithBucket(), found)

		a1 := f.items["a1"]
		width, err := f.h.ItemWidth(3)
		require.NoError(t, err)
		found, ok, err = s.GetFirstEmptySectionUnder(f.h, a1.Item, width, f.h.SectionSize)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, section.ChildSection(a1.Section(), width, 1), found)

		a2 := f.items["a2"]
		found, ok, err = s.GetFirstEmptySectionUnder(f.h, a2.Item, width, f.h.SectionSize)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, section.ChildSection(a2.Section(), width, 1), found)

		found, ok, err = s.GetFirstEmptySectionUnder(f.h, f.items["a"].Item, a1.Section().Span(), f.h.SectionSize)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, 3, found.Bucket)

	})
}
