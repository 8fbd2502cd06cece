package storage

import (
	"errors"
	"testing"

	"go-pmptt/pkg/model"
	"go-pmptt/pkg/section"

	"github.com/stretchr/testify/require"
)

func sections(width int64, lefts ...int64) []section.Section {
	list := make([]section.Section, 0, len(lefts))
	for _, left := range lefts {
		list = append(list, section.Section{LeftBound: left, RightBound: left + width - 1})
	}
	return list
}

func TestFirstEmptySection(t *testing.T) {
	s, ok := FirstEmptySection(nil, 5, 2, 3)
	require.True(t, ok)
	require.Equal(t, section.WithBucket{Section: section.Section{LeftBound: 5, RightBound: 6}, Bucket: 1}, s)

	s, ok = FirstEmptySection(sections(2, 5), 5, 2, 3)
	require.True(t, ok)
	require.Equal(t, section.WithBucket{Section: section.Section{LeftBound: 7, RightBound: 8}, Bucket: 2}, s)

	_, ok = FirstEmptySection(sections(2, 5, 7), 5, 2, 3)
	require.False(t, ok)
}

func TestFirstEmptySectionReusesHoles(t *testing.T) {
	// first bucket vacated
	s, ok := FirstEmptySection(sections(10, 21, 31), 11, 10, 10)
	require.True(t, ok)
	require.Equal(t, section.WithBucket{Section: section.Section{LeftBound: 11, RightBound: 20}, Bucket: 1}, s)

	// third bucket vacated
	s, ok = FirstEmptySection(sections(10, 11, 21, 41, 51), 11, 10, 10)
	require.True(t, ok)
	require.Equal(t, section.WithBucket{Section: section.Section{LeftBound: 31, RightBound: 40}, Bucket: 3}, s)

	// two holes, the first one wins
	s, ok = FirstEmptySection(sections(10, 11, 41, 71), 11, 10, 10)
	require.True(t, ok)
	require.Equal(t, 2, s.Bucket)
	require.Equal(t, int64(21), s.LeftBound)

	s, ok = FirstEmptySection(sections(10, 11, 21, 31), 11, 10, 10)
	require.True(t, ok)
	require.Equal(t, 4, s.Bucket)
	require.Equal(t, int64(41), s.LeftBound)
}

func tracked(code string, level, order, bucket int, left, right int64, children int) *model.TrackedItem {
	return model.NewTrackedItem(model.Item{
		Code:             code,
		Level:            level,
		Order:            order,
		Bucket:           bucket,
		LeftBound:        left,
		RightBound:       right,
		NumberOfChildren: children,
	})
}

func codes(items []*model.TrackedItem) []string {
	list := make([]string, 0, len(items))
	for _, item := range items {
		list = append(list, item.Code)
	}
	return list
}

func TestSort(t *testing.T) {
	items := []*model.TrackedItem{
		tracked("c", 2, 1, 1, 41, 42, 0),
		tracked("b", 1, 2, 1, 1, 14, 1),
		tracked("a", 1, 1, 2, 15, 28, 0),
		tracked("d", 2, 1, 1, 2, 7, 0),
	}

	SortByOrder(items)
	require.Equal(t, []string{"d", "a", "c", "b"}, codes(items))

	SortByLevel(items)
	require.Equal(t, []string{"a", "b", "d", "c"}, codes(items))
}

func TestReadingOrderLeaves(t *testing.T) {
	// 2 levels with 2 items per section, second root item placed first
	h, err := model.NewHierarchy("h", 2, 2)
	require.NoError(t, err)

	items := []*model.TrackedItem{
		tracked("r1", 1, 2, 1, 1, 11, 2),
		tracked("r2", 1, 1, 2, 12, 22, 1),
		tracked("r1c1", 2, 2, 1, 2, 4, 0),
		tracked("r1c2", 2, 1, 2, 5, 7, 0),
		tracked("r2c1", 2, 1, 2, 16, 18, 0),
	}

	leaves, err := ReadingOrderLeaves(h, items)
	require.NoError(t, err)
	require.Equal(t, []string{"r2c1", "r1c2", "r1c1"}, codes(leaves))
}

type countingListener struct {
	ListenerAdapter
	created int
	fail    error
}

func (l *countingListener) ItemCreated(model.Item) error {
	l.created++
	return l.fail
}

func TestListeners(t *testing.T) {
	first := &countingListener{}
	second := &countingListener{}
	l := &Listeners{}
	l.Register(first)
	l.Register(second)

	require.NoError(t, l.Created(model.Item{}))
	require.NoError(t, l.Updated(model.Item{}, model.Item{}))
	require.NoError(t, l.Removed(model.Item{}))
	require.Equal(t, 1, first.created)
	require.Equal(t, 1, second.created)

	first.fail = errors.New("stop")
	require.ErrorIs(t, l.Created(model.Item{}), first.fail)
	require.Equal(t, 2, first.created)
	require.Equal(t, 1, second.created)
}
