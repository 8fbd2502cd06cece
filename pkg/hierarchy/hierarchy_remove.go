package hierarchy

import (
	"github.com/pkg/errors"
)

// RemoveItem removes the item with its whole subtree and closes the gap in
// orders of its siblings. The vacated section is reused by later inserts.
func (h *Hierarchy) RemoveItem(code string) error {
	h.log("remove", code).Debug("removing item")

	return h.transaction(func(h *Hierarchy) error {
		item, err := h.storage.GetItem(h.Hierarchy, code)
		if err != nil {
			return err
		}

		descendants, err := h.storage.GetAllChildItems(h.Hierarchy, item.Item)
		if err != nil {
			return err
		}
		for _, descendant := range descendants {
			if err := h.storage.RemoveItem(descendant); err != nil {
				return errors.Wrapf(err, "failed to remove item %q", descendant.Code)
			}
		}

		siblings, parent, err := h.siblings(item)
		if err != nil {
			return err
		}
		if parent != nil {
			parent.NumberOfChildren--
			if err := h.update(parent); err != nil {
				return err
			}
		}

		for _, sibling := range siblings {
			if sibling.Code == code || sibling.Order <= item.Order {
				continue
			}
			sibling.Order--
			if err := h.update(sibling); err != nil {
				return err
			}
		}

		return errors.Wrapf(h.storage.RemoveItem(item), "failed to remove item %q", code)
	})
}
