package model

import (
	"errors"
	"testing"

	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/section"

	"github.com/stretchr/testify/require"
)

func TestNewHierarchy(t *testing.T) {
	h, err := NewHierarchy("h", 4, 9)
	require.NoError(t, err)
	require.Equal(t, 5, h.Levels)
	require.Equal(t, 10, h.SectionSize)
	require.Equal(t, 4, h.RequestedLevels())
	require.Equal(t, 9, h.RequestedSectionSize())
	require.Equal(t, "h(4x9)", h.String())

	width, err := h.ItemWidth(4)
	require.NoError(t, err)
	require.Equal(t, int64(10), width)

	width, err = h.ItemWidth(3)
	require.NoError(t, err)
	require.Equal(t, int64(102), width)
}

func TestNewHierarchyInvalid(t *testing.T) {
	_, err := NewHierarchy("h", 0, 9)
	require.ErrorIs(t, err, customerrors.ErrInvalidConfiguration)

	_, err = NewHierarchy("h", 3, 1)
	require.ErrorIs(t, err, customerrors.ErrInvalidConfiguration)
}

func TestNewHierarchyOverflow(t *testing.T) {
	_, err := NewHierarchy("h", 55, 50)
	require.ErrorIs(t, err, customerrors.ErrConfigurationOverflow)

	var overflow *customerrors.OverflowError
	require.True(t, errors.As(err, &overflow))
	require.Equal(t, 10, overflow.MaxLevels)
	require.Equal(t, 50, overflow.SectionSize)
	require.Equal(t, 55, overflow.Levels)

	_, err = NewHierarchy("h", overflow.MaxLevels, 50)
	require.NoError(t, err)
}

func TestNewHierarchySectionTooWide(t *testing.T) {
	_, err := NewHierarchy("h", 1, 1<<32)
	var overflow *customerrors.OverflowError
	require.True(t, errors.As(err, &overflow))
	require.Equal(t, 0, overflow.MaxLevels)
	require.Contains(t, overflow.Error(), "no depth fits")
}

func TestHierarchyCompatible(t *testing.T) {
	a, err := NewHierarchy("a", 3, 3)
	require.NoError(t, err)
	b, err := NewHierarchy("b", 3, 3)
	require.NoError(t, err)
	c, err := NewHierarchy("c", 3, 4)
	require.NoError(t, err)

	require.True(t, a.Compatible(b))
	require.False(t, a.Compatible(c))
}

func TestItemSection(t *testing.T) {
	parent := Item{Code: "p", Level: 1, LeftBound: 4, RightBound: 9, Bucket: 2}
	child := Item{Code: "c", Level: 2}
	child.SetSection(section.WithBucket{Section: section.Section{LeftBound: 7, RightBound: 8}, Bucket: 2}, 2)

	require.True(t, parent.Encloses(child))
	require.False(t, child.Encloses(parent))
	require.False(t, parent.Encloses(parent))
	require.Equal(t, parent.Section(), section.ParentBounds(2, child.WithBucket()))
}

func TestTrackedItem(t *testing.T) {
	item := NewTrackedItem(Item{Code: "a", Order: 1})
	require.False(t, item.Changed())

	item.Order = 2
	require.True(t, item.Changed())
	require.Equal(t, 1, item.Original().Order)

	item.Order = 1
	require.False(t, item.Changed())
}
