// Package section implements the arithmetic that partitions the int64 space
// into nested, pre-allocated sections. Every function works with the internal
// dimensions of a hierarchy: the requested depth and section size both
// increased by one.
//
// With 4 levels and 2 items per section the layout looks like this:
//
//	                 0-29
//	      1-14        |         15-28
//	  2-7  |   8-13   |   16-21   |   22-27
//	3-4|5-6|9-10|11-12|17-18|19-20|23-24|25-26
//
// A child section never shares a bound with its parent, so the parent bounds
// can always be reconstructed from the child bounds and its bucket.
package section

import (
	"errors"
	"fmt"

	"go-pmptt/util/helpers"
)

// ErrOverflow is returned when a section span does not fit into int64.
var ErrOverflow = errors.New("section span overflows int64")

// Section is a closed numeric interval reserved for a single item and its
// whole subtree.
type Section struct {
	LeftBound  int64 `json:"leftBound" cbor:"1,keyasint"`
	RightBound int64 `json:"rightBound" cbor:"2,keyasint"`
}

// Span returns count of numbers covered by the section.
func (s Section) Span() int64 {
	return s.RightBound - s.LeftBound + 1
}

// Encloses reports whether o lies inside s, bounds included.
func (s Section) Encloses(o Section) bool {
	return s.LeftBound <= o.LeftBound && o.RightBound <= s.RightBound
}

func (s Section) String() string {
	return fmt.Sprintf("%d-%d", s.LeftBound, s.RightBound)
}

// WithBucket is a section together with the index of the bucket it occupies
// in its parent section. Buckets are numbered from 1.
type WithBucket struct {
	Section
	Bucket int
}

// SizeForLevel computes the span of a single section on the level. The bottom
// level span equals sectionSize, every level above wraps sectionSize child
// sections and two padding numbers.
func SizeForLevel(sectionSize, level, maxLevels int) (int64, error) {
	s := int64(sectionSize)
	sq, ok := helpers.MulExact(s, s)
	if !ok {
		return 0, ErrOverflow
	}
	// padding introduced by the bottom level, reused by every level above
	lastSpan, ok := helpers.AddExact(sq, 2-s)
	if !ok {
		return 0, ErrOverflow
	}

	var span int64
	for i := 0; i < maxLevels-level; i++ {
		if i == 0 {
			span = lastSpan
			continue
		}
		newSpan, ok := helpers.MulExact(lastSpan, s)
		if !ok {
			return 0, ErrOverflow
		}
		if span, ok = helpers.AddExact(span, newSpan); !ok {
			return 0, ErrOverflow
		}
		lastSpan = newSpan
	}

	total, ok := helpers.AddExact(s, span)
	if !ok {
		return 0, ErrOverflow
	}
	return total, nil
}

// RootBounds returns bounds enveloping the entire hierarchy. Parent bounds of
// every root level item equal these bounds.
func RootBounds(sectionSize, maxLevels int) (Section, error) {
	span, err := SizeForLevel(sectionSize, 1, maxLevels)
	if err != nil {
		return Section{}, err
	}
	return Section{LeftBound: 0, RightBound: span - 1}, nil
}

// VisibleRootBounds returns bounds of the implicit wrapper item that anchors
// all root level items. The wrapper is never exposed to callers and never
// stored: root items are placed and resolved through RootBounds and
// ParentBounds, so this only describes the layout.
func VisibleRootBounds(sectionSize, maxLevels int) (Section, error) {
	span, err := SizeForLevel(sectionSize, 2, maxLevels+1)
	if err != nil {
		return Section{}, err
	}
	return Section{LeftBound: 1, RightBound: span}, nil
}

// ParentBounds reconstructs bounds of the parent section from the child
// section and the bucket it occupies.
func ParentBounds(sectionSize int, child WithBucket) Section {
	itemSize := child.Span()
	return Section{
		LeftBound:  child.LeftBound - int64(child.Bucket-1)*itemSize - 1,
		RightBound: child.LeftBound + int64(sectionSize-child.Bucket+1)*itemSize,
	}
}

// ChildSection lays out the bucket of width inside the parent section. It is
// the inverse of ParentBounds.
func ChildSection(parent Section, width int64, bucket int) WithBucket {
	left := parent.LeftBound + 1 + int64(bucket-1)*width
	return WithBucket{
		Section: Section{LeftBound: left, RightBound: left + width - 1},
		Bucket:  bucket,
	}
}

// FeasibleLevels returns the largest depth not greater than maxLevels whose
// root section fits into int64, or -1 when even a single level overflows.
func FeasibleLevels(sectionSize, maxLevels int) int {
	for levels := maxLevels; levels > 0; levels-- {
		if _, err := SizeForLevel(sectionSize, 1, levels); err == nil {
			return levels
		}
	}
	return -1
}
