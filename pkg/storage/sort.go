package storage

import (
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"

	"golang.org/x/exp/slices"
)

func SortByOrder(items []*model.TrackedItem) {
	slices.SortFunc(items, func(a, b *model.TrackedItem) int {
		return compare(a.Order, b.Order, a.LeftBound, b.LeftBound)
	})
}

// SortByLevel sorts items by level, order and left bound.
func SortByLevel(items []*model.TrackedItem) {
	slices.SortFunc(items, func(a, b *model.TrackedItem) int {
		if a.Level != b.Level {
			return a.Level - b.Level
		}
		return compare(a.Order, b.Order, a.LeftBound, b.LeftBound)
	})
}

func compare(order1, order2 int, left1, left2 int64) int {
	switch {
	case order1 != order2:
		return order1 - order2
	case left1 < left2:
		return -1
	case left1 > left2:
		return 1
	}
	return 0
}

// ReadingOrderLeaves walks items of a whole hierarchy depth first, siblings
// by order, and returns those without children.
func ReadingOrderLeaves(h model.Hierarchy, items []*model.TrackedItem) ([]*model.TrackedItem, error) {
	root, err := section.RootBounds(h.SectionSize, h.Levels)
	if err != nil {
		return nil, err
	}

	children := make(map[section.Section][]*model.TrackedItem, len(items))
	for _, item := range items {
		parent := section.ParentBounds(h.SectionSize, item.WithBucket())
		children[parent] = append(children[parent], item)
	}

	leaves := []*model.TrackedItem{}
	var walk func(parent section.Section)
	walk = func(parent section.Section) {
		list := children[parent]
		SortByOrder(list)
		for _, item := range list {
			if item.NumberOfChildren == 0 {
				leaves = append(leaves, item)
				continue
			}
			walk(item.Section())
		}
	}
	walk(root)
	return leaves, nil
}
