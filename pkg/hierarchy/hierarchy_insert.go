package hierarchy

import (
	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"

	"github.com/pkg/errors"
)

// CreateRootItem appends a new item to the root level.
func (h *Hierarchy) CreateRootItem(code string) (model.Item, error) {
	return h.create(code, "", "")
}

// CreateRootItemBefore inserts a new root level item right before the root
// level item before.
func (h *Hierarchy) CreateRootItemBefore(code, before string) (model.Item, error) {
	return h.create(code, "", before)
}

// CreateItem appends a new item to children of parent. Empty parent creates
// a root level item.
func (h *Hierarchy) CreateItem(code, parent string) (model.Item, error) {
	return h.create(code, parent, "")
}

// CreateItemBefore inserts a new child of parent right before its child
// before.
func (h *Hierarchy) CreateItemBefore(code, parent, before string) (model.Item, error) {
	return h.create(code, parent, before)
}

func (h *Hierarchy) create(code, parentCode, before string) (created model.Item, err error) {
	h.log("create", code).WithField("parent", parentCode).WithField("before", before).Debug("creating item")

	err = h.transaction(func(h *Hierarchy) error {
		if err := h.checkUnique(code); err != nil {
			return err
		}

		parent, err := h.parentItem(parentCode)
		if err != nil {
			return err
		}

		order := 0
		if parent != nil {
			if err := h.checkLevel(parent.Level + 1); err != nil {
				return err
			}
			order = parent.NumberOfChildren + 1
		}

		var siblings []*model.TrackedItem
		if parent == nil || before != "" {
			if siblings, err = h.children(parent); err != nil {
				return err
			}
			order = len(siblings) + 1
		}

		var pivot *model.TrackedItem
		if before != "" {
			if pivot = find(siblings, before); pivot == nil {
				return &customerrors.PivotError{Code: before, Reason: notSibling(parentCode)}
			}
			order = pivot.Order
		}

		bounds, level, err := h.allocate(parent)
		if err != nil {
			return err
		}

		item := model.NewTrackedItem(model.Item{
			HierarchyCode: h.Code,
			Code:          code,
			Order:         order,
		})
		item.SetSection(bounds, level)
		if err := h.storage.CreateItem(item); err != nil {
			return errors.Wrapf(err, "failed to create item %q", code)
		}

		if pivot != nil {
			shifted := []*model.TrackedItem{}
			for _, sibling := range siblings {
				if sibling.Order >= order {
					sibling.Order++
					shifted = append(shifted, sibling)
				}
			}
			if err := h.update(shifted...); err != nil {
				return err
			}
		}

		if parent != nil {
			parent.NumberOfChildren++
			if err := h.update(parent); err != nil {
				return err
			}
		}

		created = item.Item
		return nil
	})
	return created, err
}
