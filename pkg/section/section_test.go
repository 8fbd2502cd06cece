package section

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSizeForLevel(t *testing.T) {
	expected := []int64{126, 62, 30, 14, 6, 2}
	for i, e := range expected {
		size, err := SizeForLevel(2, i+1, 6)
		require.NoError(t, err)
		require.Equal(t, e, size, "level %v", i+1)
	}
}

func TestSizeForLevelWrapsChildren(t *testing.T) {
	for sectionSize := 2; sectionSize < 12; sectionSize++ {
		for maxLevels := 1; maxLevels < 8; maxLevels++ {
			bottom, err := SizeForLevel(sectionSize, maxLevels, maxLevels)
			require.NoError(t, err)
			require.Equal(t, int64(sectionSize), bottom)

			for level := maxLevels - 1; level > 0; level-- {
				parent, err := SizeForLevel(sectionSize, level, maxLevels)
				require.NoError(t, err)
				child, err := SizeForLevel(sectionSize, level+1, maxLevels)
				require.NoError(t, err)
				require.Equal(t, int64(sectionSize)*child+2, parent)
			}
		}
	}
}

// directSpan counts used and padding numbers of the whole tree directly and
// returns the right bound of the root section.
func directSpan(sectionSize, maxLevels int) int64 {
	used := int64(1)
	for i := 0; i < maxLevels; i++ {
		used *= int64(sectionSize)
	}

	var unused int64
	for i := 0; i < maxLevels-1; i++ {
		space := int64(i * 2)
		multiplier := int64(sectionSize - 1)
		unused = 0
		for j := 1; j <= i; j++ {
			unused += space * multiplier
			multiplier *= int64(sectionSize)
			space -= 2
		}
	}
	unused += int64(maxLevels-1)*2 - 1
	return used + unused
}

func TestSizeForLevelMatchesDirectComputation(t *testing.T) {
	for maxLevels := 1; maxLevels < 8; maxLevels++ {
		for sectionSize := 2; sectionSize < 10; sectionSize++ {
			root, err := RootBounds(sectionSize, maxLevels)
			require.NoError(t, err)
			require.Equal(t, Section{0, directSpan(sectionSize, maxLevels)}, root, "%v x %v", sectionSize, maxLevels)
		}
	}
}

func TestRootBounds(t *testing.T) {
	root, err := RootBounds(2, 4)
	require.NoError(t, err)
	require.Equal(t, Section{0, 29}, root)

	visible, err := VisibleRootBounds(2, 6)
	require.NoError(t, err)
	require.Equal(t, Section{1, 126}, visible)

	for levels, right := range map[int]int64{5: 62, 4: 30, 3: 14, 2: 6, 1: 2} {
		visible, err := VisibleRootBounds(2, levels)
		require.NoError(t, err)
		require.Equal(t, Section{1, right}, visible)
	}
}

func TestParentBounds(t *testing.T) {
	item := func(left, right int64, bucket int) WithBucket {
		return WithBucket{Section{left, right}, bucket}
	}

	require.Equal(t, Section{4, 9}, ParentBounds(2, item(5, 6, 1)))
	require.Equal(t, Section{4, 9}, ParentBounds(2, item(7, 8, 2)))
	require.Equal(t, Section{40, 45}, ParentBounds(2, item(41, 42, 1)))
	require.Equal(t, Section{40, 45}, ParentBounds(2, item(43, 44, 2)))
	require.Equal(t, Section{116, 121}, ParentBounds(2, item(117, 118, 1)))
	require.Equal(t, Section{116, 121}, ParentBounds(2, item(119, 120, 2)))
}

// verifyTree lays out the complete tree and checks every section against its
// parent.
func verifyTree(t *testing.T, parent Section, sectionSize, level, maxLevels int, seen map[int64]bool) {
	require.Less(t, parent.LeftBound, parent.RightBound)
	if level == maxLevels {
		require.Equal(t, int64(sectionSize), parent.Span())
		return
	}

	width, err := SizeForLevel(sectionSize, level+1, maxLevels)
	require.NoError(t, err)
	require.False(t, seen[parent.LeftBound])
	require.False(t, seen[parent.RightBound])
	seen[parent.LeftBound] = true
	seen[parent.RightBound] = true

	for bucket := 1; bucket <= sectionSize; bucket++ {
		child := ChildSection(parent, width, bucket)
		require.Greater(t, child.LeftBound, parent.LeftBound)
		require.Less(t, child.RightBound, parent.RightBound)
		require.Equal(t, parent, ParentBounds(sectionSize, child))
		if bucket == 1 {
			require.Equal(t, parent.LeftBound+1, child.LeftBound)
		}
		if bucket == sectionSize {
			require.Equal(t, parent.RightBound-1, child.RightBound)
		}
		verifyTree(t, child.Section, sectionSize, level+1, maxLevels, seen)
	}
}

func TestTreeLayout(t *testing.T) {
	for maxLevels := 2; maxLevels < 6; maxLevels++ {
		for sectionSize := 2; sectionSize < 6; sectionSize++ {
			root, err := RootBounds(sectionSize, maxLevels)
			require.NoError(t, err)
			verifyTree(t, root, sectionSize, 1, maxLevels, map[int64]bool{})
		}
	}
}

func TestOverflow(t *testing.T) {
	_, err := SizeForLevel(51, 1, 56)
	require.ErrorIs(t, err, ErrOverflow)

	_, err = RootBounds(51, 56)
	require.ErrorIs(t, err, ErrOverflow)

	require.Equal(t, 11, FeasibleLevels(51, 56))
	require.Equal(t, 5, FeasibleLevels(10, 5))
	require.Equal(t, 62, FeasibleLevels(2, 100))
}
