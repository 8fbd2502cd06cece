// Package customerrors defines the errors reported by the hierarchy engine and
// by storage implementations.
package customerrors

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationOverflow is returned when the address space required by
	// the requested depth and section size does not fit into int64.
	ErrConfigurationOverflow = errors.New("configuration overflows int64 bounds")

	// ErrInvalidConfiguration is returned for non-positive depth or a section
	// size lower than two.
	ErrInvalidConfiguration = errors.New("invalid hierarchy configuration")

	// ErrSectionExhausted is returned when there is no free bucket left in the
	// section an item should be placed into.
	ErrSectionExhausted = errors.New("section exhausted")

	// ErrDepthExceeded is returned when an item would be placed deeper than the
	// hierarchy allows.
	ErrDepthExceeded = errors.New("maximum level exceeded")

	// ErrPivotNotFound is returned when a referenced item does not exist or is
	// not a member of the expected sibling set.
	ErrPivotNotFound = errors.New("pivot item not found")

	// ErrDuplicateCode is returned when an item code is already used in the
	// hierarchy.
	ErrDuplicateCode = errors.New("item already present")

	// ErrCyclicMove is returned when an item should be moved under itself or
	// under one of its descendants.
	ErrCyclicMove = errors.New("item cannot be moved into its own subtree")

	ErrNotFound = errors.New("not found")

	ErrHierarchyNotFound = errors.New("hierarchy not found")

	// ErrIncompatibleHierarchy is returned when an existing hierarchy is
	// reopened with different dimensions.
	ErrIncompatibleHierarchy = errors.New("incompatible hierarchy dimensions")

	// ErrCorrupted is returned by storages when persisted data break the
	// bound invariants.
	ErrCorrupted = errors.New("storage corrupted")
)

// OverflowError carries the largest depth that fits into int64 for the
// requested section size, zero when not even a single level fits.
type OverflowError struct {
	Levels      int
	SectionSize int
	MaxLevels   int
}

func (e *OverflowError) Error() string {
	if e.MaxLevels == 0 {
		return fmt.Sprintf(
			"%v: %v levels requested, no depth fits when section size is %v",
			ErrConfigurationOverflow, e.Levels, e.SectionSize,
		)
	}
	return fmt.Sprintf(
		"%v: %v levels requested, maximum of %v levels is allowed when section size is %v",
		ErrConfigurationOverflow, e.Levels, e.MaxLevels, e.SectionSize,
	)
}

func (e *OverflowError) Unwrap() error {
	return ErrConfigurationOverflow
}

type DepthError struct {
	Level     int
	MaxLevels int
}

func (e *DepthError) Error() string {
	return fmt.Sprintf("%v: cannot add item on level %v, maximum allowed levels is %v", ErrDepthExceeded, e.Level, e.MaxLevels)
}

func (e *DepthError) Unwrap() error {
	return ErrDepthExceeded
}

type PivotError struct {
	Code   string
	Reason string
}

func (e *PivotError) Error() string {
	return fmt.Sprintf("%v: item %q %s", ErrPivotNotFound, e.Code, e.Reason)
}

func (e *PivotError) Unwrap() error {
	return ErrPivotNotFound
}

// ExhaustedError names the parent whose section is full. Parent is empty for
// the root level.
type ExhaustedError struct {
	Parent   string
	MaxCount int
}

func (e *ExhaustedError) Error() string {
	if e.Parent == "" {
		return fmt.Sprintf("%v: root level is filled up with %v items", ErrSectionExhausted, e.MaxCount)
	}
	return fmt.Sprintf("%v: children section of item %q is filled up with %v items", ErrSectionExhausted, e.Parent, e.MaxCount)
}

func (e *ExhaustedError) Unwrap() error {
	return ErrSectionExhausted
}
