// Package hierarchy mutates a tree stored as pre-allocated nested sections.
// Every operation keeps sibling orders dense and children inside bounds of
// their parents, storage is asked for free sections and persists the result.
package hierarchy

import (
	"fmt"

	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"
	"go-pmptt/pkg/storage"
	"go-pmptt/util/logger"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type Hierarchy struct {
	model.Hierarchy
	storage storage.Storage
}

func New(h model.Hierarchy, s storage.Storage) *Hierarchy {
	return &Hierarchy{Hierarchy: h, storage: s}
}

// transaction runs fn atomically when storage supports it.
func (h *Hierarchy) transaction(fn func(h *Hierarchy) error) error {
	t, ok := h.storage.(storage.Transactor)
	if !ok {
		return fn(h)
	}
	return t.InTransaction(func(s storage.Storage) error {
		return fn(&Hierarchy{Hierarchy: h.Hierarchy, storage: s})
	})
}

func (h *Hierarchy) log(operation, code string) *logrus.Entry {
	return logger.L.WithFields(logrus.Fields{
		"hierarchy": h.Code,
		"item":      code,
		"operation": operation,
	})
}

// maxLevel is the deepest level items may be placed on.
func (h *Hierarchy) maxLevel() int {
	return h.Levels - 1
}

func (h *Hierarchy) item(code string) (*model.TrackedItem, error) {
	item, err := h.storage.GetItem(h.Hierarchy, code)
	if errors.Is(err, customerrors.ErrNotFound) {
		return nil, &customerrors.PivotError{Code: code, Reason: "does not exist"}
	}
	return item, err
}

// parentItem loads item with the code as a parent, empty code means the
// implicit root.
func (h *Hierarchy) parentItem(code string) (*model.TrackedItem, error) {
	if code == "" {
		return nil, nil
	}
	return h.item(code)
}

func (h *Hierarchy) checkUnique(code string) error {
	_, err := h.storage.GetItem(h.Hierarchy, code)
	if err == nil {
		return errors.Wrapf(customerrors.ErrDuplicateCode, "item %q", code)
	}
	if errors.Is(err, customerrors.ErrNotFound) {
		return nil
	}
	return err
}

func (h *Hierarchy) checkLevel(level int) error {
	if level > h.maxLevel() {
		return &customerrors.DepthError{Level: level, MaxLevels: h.maxLevel()}
	}
	return nil
}

// children lists immediate children of parent, nil parent stands for root.
func (h *Hierarchy) children(parent *model.TrackedItem) ([]*model.TrackedItem, error) {
	if parent == nil {
		return h.storage.GetRootItems(h.Hierarchy)
	}
	return h.storage.GetChildItems(h.Hierarchy, parent.Item)
}

// siblings lists the item together with its siblings.
func (h *Hierarchy) siblings(item *model.TrackedItem) ([]*model.TrackedItem, *model.TrackedItem, error) {
	parent, err := h.storage.GetParentItem(h.Hierarchy, item.Item)
	if err != nil {
		return nil, nil, err
	}
	list, err := h.children(parent)
	return list, parent, err
}

// allocate finds a free section for a child of parent, nil parent stands
// for root. The level of the section is returned along with it.
func (h *Hierarchy) allocate(parent *model.TrackedItem) (section.WithBucket, int, error) {
	level := 1
	if parent != nil {
		level = parent.Level + 1
	}
	width, err := h.ItemWidth(level)
	if err != nil {
		return section.WithBucket{}, 0, err
	}

	var (
		found section.WithBucket
		ok    bool
	)
	if parent == nil {
		found, ok, err = h.storage.GetFirstEmptySection(h.Hierarchy, width, h.SectionSize)
	} else {
		found, ok, err = h.storage.GetFirstEmptySectionUnder(h.Hierarchy, parent.Item, width, h.SectionSize)
	}
	if err != nil {
		return section.WithBucket{}, 0, err
	}

	if !ok {
		exhausted := &customerrors.ExhaustedError{MaxCount: h.RequestedSectionSize()}
		if parent != nil {
			exhausted.Parent = parent.Code
		}
		return section.WithBucket{}, 0, exhausted
	}
	return found, level, nil
}

func notSibling(parentCode string) string {
	if parentCode == "" {
		return "is not a root level item"
	}
	return fmt.Sprintf("is not a child of %q", parentCode)
}

func find(list []*model.TrackedItem, code string) *model.TrackedItem {
	for _, item := range list {
		if item.Code == code {
			return item
		}
	}
	return nil
}

func (h *Hierarchy) update(items ...*model.TrackedItem) error {
	for _, item := range items {
		if err := h.storage.UpdateItem(item); err != nil {
			return errors.Wrapf(err, "failed to update item %q", item.Code)
		}
	}
	return nil
}
