// Package storage defines the contract hierarchy persistence has to satisfy
// together with helpers shared by its implementations.
package storage

import (
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"
)

// Storage persists hierarchies and their items. Every returned item is a
// fresh copy tracking its loaded state, so mutating it never affects the
// stored data until it is passed back to UpdateItem.
type Storage interface {
	RegisterChangeListener(l ChangeListener)

	CreateHierarchy(h model.Hierarchy) error
	// GetHierarchy returns customerrors.ErrHierarchyNotFound for unknown code.
	GetHierarchy(code string) (model.Hierarchy, error)
	// RemoveHierarchy drops the hierarchy with all its items. Listeners are
	// not notified about removed items.
	RemoveHierarchy(code string) error

	// CreateItem fails with customerrors.ErrDuplicateCode when the code is
	// already used in the hierarchy.
	CreateItem(item *model.TrackedItem) error
	UpdateItem(item *model.TrackedItem) error
	RemoveItem(item *model.TrackedItem) error

	// GetItem returns customerrors.ErrNotFound for unknown code.
	GetItem(h model.Hierarchy, code string) (*model.TrackedItem, error)
	// GetParentItem returns nil for root level items.
	GetParentItem(h model.Hierarchy, item model.Item) (*model.TrackedItem, error)
	// GetParentItems returns all ancestors of the item, root level first.
	GetParentItems(h model.Hierarchy, item model.Item) ([]*model.TrackedItem, error)
	// GetRootItems returns root level items sorted by order.
	GetRootItems(h model.Hierarchy) ([]*model.TrackedItem, error)
	// GetChildItems returns immediate children sorted by order.
	GetChildItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error)
	// GetAllChildItems returns the whole subtree of the parent, parent
	// excluded, sorted by level and order.
	GetAllChildItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error)
	// GetLeafItems returns items of the parent subtree without children,
	// sorted by level and order.
	GetLeafItems(h model.Hierarchy, parent model.Item) ([]*model.TrackedItem, error)
	// GetAllLeafItems returns leaves of the whole hierarchy in reading order.
	GetAllLeafItems(h model.Hierarchy) ([]*model.TrackedItem, error)

	// GetFirstEmptySection finds a free root level section of width. The
	// boolean result is false when the root level is exhausted.
	GetFirstEmptySection(h model.Hierarchy, width int64, maxCount int) (section.WithBucket, bool, error)
	// GetFirstEmptySectionUnder finds a free section of width among children
	// of the parent.
	GetFirstEmptySectionUnder(h model.Hierarchy, parent model.Item, width int64, maxCount int) (section.WithBucket, bool, error)
}

// Transactor is implemented by storages able to apply a sequence of
// operations atomically. Operations issued on the storage passed to fn
// become visible together once fn returns nil and are discarded otherwise.
type Transactor interface {
	InTransaction(fn func(s Storage) error) error
}
