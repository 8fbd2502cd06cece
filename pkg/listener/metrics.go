package listener

import (
	"go-pmptt/pkg/model"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts item changes per hierarchy.
type Metrics struct {
	created *prometheus.CounterVec
	updated *prometheus.CounterVec
	removed *prometheus.CounterVec
	moved   *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pmptt",
			Subsystem: "items",
			Name:      name,
			Help:      help,
		}, []string{"hierarchy"})
	}

	m := &Metrics{
		created: counter("created_total", "Number of created items."),
		updated: counter("updated_total", "Number of item updates."),
		removed: counter("removed_total", "Number of removed items."),
		moved:   counter("relocated_total", "Number of updates that changed item bounds."),
	}
	for _, c := range []prometheus.Collector{m.created, m.updated, m.removed, m.moved} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) ItemCreated(item model.Item) error {
	m.created.WithLabelValues(item.HierarchyCode).Inc()
	return nil
}

func (m *Metrics) ItemUpdated(item, original model.Item) error {
	m.updated.WithLabelValues(item.HierarchyCode).Inc()
	if item.Section() != original.Section() {
		m.moved.WithLabelValues(item.HierarchyCode).Inc()
	}
	return nil
}

func (m *Metrics) ItemRemoved(item model.Item) error {
	m.removed.WithLabelValues(item.HierarchyCode).Inc()
	return nil
}
