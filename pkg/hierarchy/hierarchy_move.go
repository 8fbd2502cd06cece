package hierarchy

import (
	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"
	"go-pmptt/util/helpers"

	"github.com/pkg/errors"
)

// MoveItemBefore places the item right before its sibling before. Bounds
// stay untouched, only orders of siblings change.
func (h *Hierarchy) MoveItemBefore(code, before string) error {
	return h.move(code, Before, before)
}

// MoveItemAfter places the item right after its sibling after.
func (h *Hierarchy) MoveItemAfter(code, after string) error {
	return h.move(code, After, after)
}

func (h *Hierarchy) MoveItemToFirst(code string) error {
	return h.move(code, First, "")
}

func (h *Hierarchy) MoveItemToLast(code string) error {
	return h.move(code, Last, "")
}

func (h *Hierarchy) move(code string, p Placement, pivotCode string) error {
	h.log("move", code).WithField("placement", p).WithField("pivot", pivotCode).Debug("moving item")

	return h.transaction(func(h *Hierarchy) error {
		item, err := h.storage.GetItem(h.Hierarchy, code)
		if err != nil {
			return err
		}
		siblings, parent, err := h.siblings(item)
		if err != nil {
			return err
		}

		parentCode := ""
		if parent != nil {
			parentCode = parent.Code
		}
		return h.reorder(siblings, parentCode, code, p, pivotCode)
	})
}

// reorder places the item among its siblings. Moving an item relative to
// itself changes nothing.
func (h *Hierarchy) reorder(siblings []*model.TrackedItem, parentCode, code string, p Placement, pivotCode string) error {
	moved := find(siblings, code)
	if moved == nil {
		return errors.Wrapf(customerrors.ErrCorrupted, "item %q is missing among children of its parent", code)
	}

	var pivot *model.TrackedItem
	if p.needsPivot() {
		if pivotCode == code {
			return nil
		}
		if pivot = find(siblings, pivotCode); pivot == nil {
			return &customerrors.PivotError{Code: pivotCode, Reason: notSibling(parentCode)}
		}
	}

	if err := h.update(p.place(siblings, moved, pivot)...); err != nil {
		return err
	}
	if moved.Changed() {
		return h.update(moved)
	}
	return nil
}

// MoveItemBetweenLevelsBefore moves the item with its subtree under parent,
// right before the child before. Empty parent moves the item to the root
// level.
func (h *Hierarchy) MoveItemBetweenLevelsBefore(code, parent, before string) error {
	return h.moveBetweenLevels(code, parent, Before, before)
}

// MoveItemBetweenLevelsAfter moves the item with its subtree under parent,
// right after the child after.
func (h *Hierarchy) MoveItemBetweenLevelsAfter(code, parent, after string) error {
	return h.moveBetweenLevels(code, parent, After, after)
}

func (h *Hierarchy) MoveItemBetweenLevelsFirst(code, parent string) error {
	return h.moveBetweenLevels(code, parent, First, "")
}

func (h *Hierarchy) MoveItemBetweenLevelsLast(code, parent string) error {
	return h.moveBetweenLevels(code, parent, Last, "")
}

// moveBetweenLevels detaches the item from its siblings, attaches it to
// children of the new parent and allocates fresh sections for the item and
// then for every descendant, level by level. Relative orders inside the
// subtree are kept, buckets are not.
func (h *Hierarchy) moveBetweenLevels(code, parentCode string, p Placement, pivotCode string) error {
	h.log("move between levels", code).
		WithField("parent", parentCode).
		WithField("placement", p).
		WithField("pivot", pivotCode).
		Debug("moving item")

	return h.transaction(func(h *Hierarchy) error {
		moved, err := h.storage.GetItem(h.Hierarchy, code)
		if err != nil {
			return err
		}
		newParent, err := h.parentItem(parentCode)
		if err != nil {
			return err
		}
		if newParent != nil && (newParent.Code == moved.Code || moved.Encloses(newParent.Item)) {
			return errors.Wrapf(customerrors.ErrCyclicMove, "item %q under %q", code, parentCode)
		}

		oldSiblings, oldParent, err := h.siblings(moved)
		if err != nil {
			return err
		}
		if sameItem(oldParent, newParent) {
			return h.reorder(oldSiblings, parentCode, code, p, pivotCode)
		}

		descendants, err := h.storage.GetAllChildItems(h.Hierarchy, moved.Item)
		if err != nil {
			return err
		}
		level := 1
		if newParent != nil {
			level = newParent.Level + 1
		}
		depth := 0
		for _, descendant := range descendants {
			depth = helpers.Max(depth, descendant.Level-moved.Level)
		}
		if err := h.checkLevel(level + depth); err != nil {
			return err
		}

		newSiblings, err := h.children(newParent)
		if err != nil {
			return err
		}
		var pivot *model.TrackedItem
		if p.needsPivot() {
			if pivot = find(newSiblings, pivotCode); pivot == nil {
				return &customerrors.PivotError{Code: pivotCode, Reason: notSibling(parentCode)}
			}
		}
		if _, _, err := h.allocate(newParent); err != nil {
			return err
		}

		// parents are known by bounds only until the first section changes
		byBounds := map[section.Section]string{moved.Section(): moved.Code}
		for _, descendant := range descendants {
			byBounds[descendant.Section()] = descendant.Code
		}
		parentOf := make(map[string]string, len(descendants))
		for _, descendant := range descendants {
			parentOf[descendant.Code] = byBounds[section.ParentBounds(h.SectionSize, descendant.WithBucket())]
		}

		if err := h.detach(moved, oldSiblings, oldParent); err != nil {
			return err
		}

		// detach may have changed the new parent or one of its children
		if newParent, err = h.parentItem(parentCode); err != nil {
			return err
		}
		if newSiblings, err = h.children(newParent); err != nil {
			return err
		}
		if p.needsPivot() {
			pivot = find(newSiblings, pivotCode)
		}

		if newParent != nil {
			newParent.NumberOfChildren = len(newSiblings) + 1
			if err := h.update(newParent); err != nil {
				return err
			}
		}
		moved.Order = len(newSiblings) + 1
		if err := h.update(p.place(append(newSiblings, moved), moved, pivot)...); err != nil {
			return err
		}

		bounds, level, err := h.allocate(newParent)
		if err != nil {
			return err
		}
		moved.SetSection(bounds, level)
		if err := h.update(moved); err != nil {
			return err
		}

		relocated := map[string]*model.TrackedItem{moved.Code: moved}
		for _, descendant := range descendants {
			parent, ok := relocated[parentOf[descendant.Code]]
			if !ok {
				return errors.Wrapf(customerrors.ErrCorrupted, "parent of item %q not found in moved subtree", descendant.Code)
			}
			bounds, level, err := h.allocate(parent)
			if err != nil {
				return err
			}
			descendant.SetSection(bounds, level)
			if err := h.update(descendant); err != nil {
				return err
			}
			relocated[descendant.Code] = descendant
		}
		return nil
	})
}

// detach closes the gap the moved item leaves among its siblings.
func (h *Hierarchy) detach(moved *model.TrackedItem, siblings []*model.TrackedItem, parent *model.TrackedItem) error {
	for _, sibling := range siblings {
		if sibling.Code == moved.Code || sibling.Order <= moved.Order {
			continue
		}
		sibling.Order--
		if err := h.update(sibling); err != nil {
			return err
		}
	}

	if parent == nil {
		return nil
	}
	parent.NumberOfChildren--
	return h.update(parent)
}

func sameItem(a, b *model.TrackedItem) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Code == b.Code
}
