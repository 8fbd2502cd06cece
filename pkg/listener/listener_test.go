package listener

import (
	"testing"

	"go-pmptt/pkg/hierarchy"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/storage"
	"go-pmptt/pkg/storage/memory"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
)

var (
	_ storage.ChangeListener = (*Logging)(nil)
	_ storage.ChangeListener = (*Metrics)(nil)
)

func newHierarchy(t *testing.T, listeners ...storage.ChangeListener) *hierarchy.Hierarchy {
	s := memory.New()
	for _, l := range listeners {
		s.RegisterChangeListener(l)
	}
	h, err := model.NewHierarchy("h", 3, 3)
	require.NoError(t, err)
	require.NoError(t, s.CreateHierarchy(h))
	return hierarchy.New(h, s)
}

func TestLogging(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)
	h := newHierarchy(t, NewLogging(log))

	_, err := h.CreateRootItem("a")
	require.NoError(t, err)
	entry := hook.LastEntry()
	require.Equal(t, "item created", entry.Message)
	require.Equal(t, logrus.DebugLevel, entry.Level)
	require.Equal(t, "a", entry.Data["item"])
	require.Equal(t, "h", entry.Data["hierarchy"])
	require.Equal(t, 1, entry.Data["order"])

	_, err = h.CreateRootItemBefore("b", "a")
	require.NoError(t, err)
	entry = hook.LastEntry()
	require.Equal(t, "item updated", entry.Message)
	require.Equal(t, "a", entry.Data["item"])
	require.Equal(t, 2, entry.Data["order"])
	require.Equal(t, 1, entry.Data["was_order"])

	require.NoError(t, h.RemoveItem("a"))
	entry = hook.LastEntry()
	require.Equal(t, "item removed", entry.Message)
	require.Equal(t, "a", entry.Data["item"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)
	h := newHierarchy(t, m)

	_, err = h.CreateRootItem("a")
	require.NoError(t, err)
	_, err = h.CreateRootItem("b")
	require.NoError(t, err)
	_, err = h.CreateItem("a1", "a")
	require.NoError(t, err)
	require.Equal(t, 3.0, testutil.ToFloat64(m.created.WithLabelValues("h")))
	// a1 creation updated the children count of a
	require.Equal(t, 1.0, testutil.ToFloat64(m.updated.WithLabelValues("h")))
	require.Equal(t, 0.0, testutil.ToFloat64(m.moved.WithLabelValues("h")))

	require.NoError(t, h.MoveItemBetweenLevelsFirst("a1", "b"))
	require.Equal(t, 1.0, testutil.ToFloat64(m.moved.WithLabelValues("h")))

	require.NoError(t, h.RemoveItem("b"))
	require.Equal(t, 2.0, testutil.ToFloat64(m.removed.WithLabelValues("h")))

	_, err = NewMetrics(reg)
	require.Error(t, err)
}
