// Package listener holds change listeners reporting item changes to logs
// and metrics.
package listener

import (
	"go-pmptt/pkg/model"

	"github.com/sirupsen/logrus"
)

// Logging writes every change to the logger at debug level.
type Logging struct {
	log logrus.FieldLogger
}

func NewLogging(log logrus.FieldLogger) *Logging {
	return &Logging{log: log}
}

func (l *Logging) ItemCreated(item model.Item) error {
	l.fields(item).Debug("item created")
	return nil
}

func (l *Logging) ItemUpdated(item, original model.Item) error {
	l.fields(item).
		WithField("was", original.Section().String()).
		WithField("was_order", original.Order).
		Debug("item updated")
	return nil
}

func (l *Logging) ItemRemoved(item model.Item) error {
	l.fields(item).Debug("item removed")
	return nil
}

func (l *Logging) fields(item model.Item) *logrus.Entry {
	return l.log.WithFields(logrus.Fields{
		"hierarchy": item.HierarchyCode,
		"item":      item.Code,
		"level":     item.Level,
		"bounds":    item.Section().String(),
		"order":     item.Order,
		"children":  item.NumberOfChildren,
	})
}
