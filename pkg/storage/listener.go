package storage

import (
	"sync"

	"go-pmptt/pkg/model"
)

// ChangeListener is notified synchronously about every persisted change.
// A returned error aborts the operation that caused the change.
type ChangeListener interface {
	ItemCreated(item model.Item) error
	ItemUpdated(item, original model.Item) error
	ItemRemoved(item model.Item) error
}

// ListenerAdapter implements ChangeListener with no-op callbacks, embed it to
// handle only some of the changes.
type ListenerAdapter struct{}

func (ListenerAdapter) ItemCreated(model.Item) error {
	return nil
}

func (ListenerAdapter) ItemUpdated(model.Item, model.Item) error {
	return nil
}

func (ListenerAdapter) ItemRemoved(model.Item) error {
	return nil
}

// Listeners fans changes out to registered listeners in registration order,
// stopping on the first error.
type Listeners struct {
	mu   sync.RWMutex
	list []ChangeListener
}

func (l *Listeners) Register(listener ChangeListener) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list = append(l.list, listener)
}

func (l *Listeners) Created(item model.Item) error {
	return l.each(func(listener ChangeListener) error {
		return listener.ItemCreated(item)
	})
}

func (l *Listeners) Updated(item, original model.Item) error {
	return l.each(func(listener ChangeListener) error {
		return listener.ItemUpdated(item, original)
	})
}

func (l *Listeners) Removed(item model.Item) error {
	return l.each(func(listener ChangeListener) error {
		return listener.ItemRemoved(item)
	})
}

func (l *Listeners) each(fn func(listener ChangeListener) error) error {
	l.mu.RLock()
	list := l.list
	l.mu.RUnlock()

	for _, listener := range list {
		if err := fn(listener); err != nil {
			return err
		}
	}
	return nil
}
