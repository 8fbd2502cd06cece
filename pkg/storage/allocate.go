package storage

import (
	"go-pmptt/pkg/section"
)

// FirstEmptySection looks for the first free slot of width among siblings
// sorted by left bound, where init is left bound of the first slot. Holes
// left by removed siblings are reused before a new slot is appended. The
// boolean result is false once the siblings count reaches maxCount-1.
func FirstEmptySection(siblings []section.Section, init, width int64, maxCount int) (section.WithBucket, bool) {
	if len(siblings)+1 >= maxCount {
		return section.WithBucket{}, false
	}

	slot := func(left int64) section.WithBucket {
		return section.WithBucket{
			Section: section.Section{LeftBound: left, RightBound: left + width - 1},
			Bucket:  int((left-init)/width) + 1,
		}
	}

	if len(siblings) == 0 || siblings[0].LeftBound > init {
		return slot(init), true
	}

	last := siblings[0].LeftBound
	for _, s := range siblings[1:] {
		if s.LeftBound > last+width {
			return slot(last + width), true
		}
		last = s.LeftBound
	}
	return slot(last + width), true
}
