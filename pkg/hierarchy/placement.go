package hierarchy

import "go-pmptt/pkg/model"

// Placement selects where a moved item lands among its new siblings.
type Placement int

const (
	Before Placement = iota
	After
	First
	Last
)

func (p Placement) String() string {
	switch p {
	case Before:
		return "before"
	case After:
		return "after"
	case First:
		return "first"
	case Last:
		return "last"
	}
	return "unknown"
}

// needsPivot reports whether the placement is relative to a sibling.
func (p Placement) needsPivot() bool {
	return p == Before || p == After
}

// place shifts orders of siblings to make room for moved and assigns its new
// order. Siblings must contain moved, pivot is ignored by First and Last.
// Siblings whose order changed are returned, moved is not among them.
func (p Placement) place(siblings []*model.TrackedItem, moved, pivot *model.TrackedItem) []*model.TrackedItem {
	from := moved.Order
	to := 0
	if pivot != nil {
		to = pivot.Order
	}

	changed := []*model.TrackedItem{}
	shift := func(item *model.TrackedItem, delta int) {
		item.Order += delta
		changed = append(changed, item)
	}

	for _, item := range siblings {
		if item == moved {
			continue
		}
		order := item.Order
		switch p {
		case Before:
			if order > from && order < to {
				shift(item, -1)
			} else if order >= to && order < from {
				shift(item, 1)
			}
		case After:
			if order > from && order <= to {
				shift(item, -1)
			} else if order > to && order < from {
				shift(item, 1)
			}
		case First:
			if order < from {
				shift(item, 1)
			}
		case Last:
			if order > from {
				shift(item, -1)
			}
		}
	}

	switch p {
	case Before:
		moved.Order = pivot.Order - 1
	case After:
		moved.Order = pivot.Order + 1
	case First:
		moved.Order = 1
	case Last:
		moved.Order = len(siblings)
	}
	return changed
}
