package outline

import (
	"bytes"
	"strings"
	"testing"

	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/hierarchy"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/storage/memory"

	"github.com/stretchr/testify/require"
)

func newHierarchy(t *testing.T, levels, sectionSize int) *hierarchy.Hierarchy {
	h, err := model.NewHierarchy("outline", levels, sectionSize)
	require.NoError(t, err)
	s := memory.New()
	require.NoError(t, s.CreateHierarchy(h))
	return hierarchy.New(h, s)
}

func TestRoundTrip(t *testing.T) {
	text := `a
    a1
        a11
    a2
b

c
	c1
`
	h := newHierarchy(t, 3, 3)
	require.NoError(t, Load(strings.NewReader(text), h))

	out := &bytes.Buffer{}
	require.NoError(t, Store(out, h))
	require.Equal(t, `a
    a1
        a11
    a2
b
c
    c1
`, out.String())

	out.Reset()
	require.NoError(t, StoreWithBounds(out, h))
	require.Equal(t, `a (1-74)
    a1 (2-19)
        a11 (3-6)
    a2 (20-37)
b (75-148)
c (149-222)
    c1 (150-167)
`, out.String())
}

func TestLoadFailure(t *testing.T) {
	h := newHierarchy(t, 2, 2)
	err := Load(strings.NewReader("a\n    a1\n        a11\n"), h)
	require.ErrorIs(t, err, customerrors.ErrDepthExceeded)
	require.ErrorContains(t, err, "line 3")
}
