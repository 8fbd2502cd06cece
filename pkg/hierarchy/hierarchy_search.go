package hierarchy

import (
	"go-pmptt/pkg/model"
)

func (h *Hierarchy) GetItem(code string) (model.Item, error) {
	item, err := h.storage.GetItem(h.Hierarchy, code)
	if err != nil {
		return model.Item{}, err
	}
	return item.Item, nil
}

// GetParentItem returns nil for root level items.
func (h *Hierarchy) GetParentItem(code string) (*model.Item, error) {
	item, err := h.storage.GetItem(h.Hierarchy, code)
	if err != nil {
		return nil, err
	}
	parent, err := h.storage.GetParentItem(h.Hierarchy, item.Item)
	if err != nil || parent == nil {
		return nil, err
	}
	return &parent.Item, nil
}

// GetParentItems returns ancestors of the item starting at root level.
func (h *Hierarchy) GetParentItems(code string) ([]model.Item, error) {
	return h.subtreeQuery(code, func(item model.Item) ([]*model.TrackedItem, error) {
		return h.storage.GetParentItems(h.Hierarchy, item)
	})
}

func (h *Hierarchy) GetRootItems() ([]model.Item, error) {
	return items(h.storage.GetRootItems(h.Hierarchy))
}

func (h *Hierarchy) GetChildItems(code string) ([]model.Item, error) {
	return h.subtreeQuery(code, func(item model.Item) ([]*model.TrackedItem, error) {
		return h.storage.GetChildItems(h.Hierarchy, item)
	})
}

// GetAllChildItems returns the whole subtree of the item ordered by level
// and order.
func (h *Hierarchy) GetAllChildItems(code string) ([]model.Item, error) {
	return h.subtreeQuery(code, func(item model.Item) ([]*model.TrackedItem, error) {
		return h.storage.GetAllChildItems(h.Hierarchy, item)
	})
}

func (h *Hierarchy) GetLeafItems(code string) ([]model.Item, error) {
	return h.subtreeQuery(code, func(item model.Item) ([]*model.TrackedItem, error) {
		return h.storage.GetLeafItems(h.Hierarchy, item)
	})
}

// GetAllLeafItems returns leaves of the whole hierarchy in reading order.
func (h *Hierarchy) GetAllLeafItems() ([]model.Item, error) {
	return items(h.storage.GetAllLeafItems(h.Hierarchy))
}

func (h *Hierarchy) subtreeQuery(code string, query func(item model.Item) ([]*model.TrackedItem, error)) ([]model.Item, error) {
	item, err := h.storage.GetItem(h.Hierarchy, code)
	if err != nil {
		return nil, err
	}
	return items(query(item.Item))
}

func items(tracked []*model.TrackedItem, err error) ([]model.Item, error) {
	if err != nil {
		return nil, err
	}
	list := make([]model.Item, 0, len(tracked))
	for _, item := range tracked {
		list = append(list, item.Item)
	}
	return list, nil
}
