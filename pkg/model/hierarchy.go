package model

import (
	"fmt"

	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/section"
	"go-pmptt/util/helpers"
)

// Hierarchy holds immutable dimensions of a single tree. Levels and
// SectionSize are internal values, one more than requested by the caller:
// the extra level anchors root items under an implicit wrapper, the extra
// section slot keeps sibling sections from touching.
type Hierarchy struct {
	Code        string `json:"code" cbor:"1,keyasint"`
	Levels      int    `json:"levels" cbor:"2,keyasint"`
	SectionSize int    `json:"sectionSize" cbor:"3,keyasint"`
}

// NewHierarchy validates requested dimensions and returns the hierarchy
// configuration with internal dimensions.
func NewHierarchy(code string, levels, sectionSize int) (Hierarchy, error) {
	if levels < 1 || sectionSize < 2 {
		return Hierarchy{}, fmt.Errorf(
			"%w: levels must be positive and section size at least 2, got %v and %v",
			customerrors.ErrInvalidConfiguration, levels, sectionSize,
		)
	}

	h := Hierarchy{
		Code:        code,
		Levels:      levels + 1,
		SectionSize: sectionSize + 1,
	}
	if _, err := section.SizeForLevel(h.SectionSize, 1, h.Levels); err != nil {
		return Hierarchy{}, &customerrors.OverflowError{
			Levels:      levels,
			SectionSize: sectionSize,
			MaxLevels:   helpers.Max(section.FeasibleLevels(h.SectionSize, h.Levels)-1, 0),
		}
	}
	return h, nil
}

// RequestedLevels returns depth as it was requested at creation.
func (h Hierarchy) RequestedLevels() int {
	return h.Levels - 1
}

// RequestedSectionSize returns fan-out as it was requested at creation.
func (h Hierarchy) RequestedSectionSize() int {
	return h.SectionSize - 1
}

// ItemWidth returns span of sections reserved for items on the level.
func (h Hierarchy) ItemWidth(level int) (int64, error) {
	return section.SizeForLevel(h.SectionSize, level+1, h.Levels)
}

// Compatible reports whether o was created with the same dimensions.
func (h Hierarchy) Compatible(o Hierarchy) bool {
	return h.Levels == o.Levels && h.SectionSize == o.SectionSize
}

func (h Hierarchy) String() string {
	return fmt.Sprintf("%s(%dx%d)", h.Code, h.RequestedLevels(), h.RequestedSectionSize())
}
