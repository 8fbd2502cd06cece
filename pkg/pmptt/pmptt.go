// Package pmptt manages hierarchies kept in a single storage.
package pmptt

import (
	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/hierarchy"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/storage"
	"go-pmptt/util/logger"

	"github.com/pkg/errors"
)

type PMPTT struct {
	storage storage.Storage
}

func New(s storage.Storage) *PMPTT {
	return &PMPTT{storage: s}
}

// RegisterChangeListener subscribes l to changes of items of all
// hierarchies.
func (p *PMPTT) RegisterChangeListener(l storage.ChangeListener) {
	p.storage.RegisterChangeListener(l)
}

// GetOrCreateHierarchy opens the hierarchy, creating it when missing. An
// existing hierarchy must have been created with the same dimensions.
func (p *PMPTT) GetOrCreateHierarchy(code string, levels, sectionSize int) (*hierarchy.Hierarchy, error) {
	requested, err := model.NewHierarchy(code, levels, sectionSize)
	if err != nil {
		return nil, err
	}

	existing, err := p.storage.GetHierarchy(code)
	if err == nil {
		if !existing.Compatible(requested) {
			return nil, errors.Wrapf(
				customerrors.ErrIncompatibleHierarchy,
				"hierarchy %v requested as %v", existing, requested,
			)
		}
		return hierarchy.New(existing, p.storage), nil
	}
	if !errors.Is(err, customerrors.ErrHierarchyNotFound) {
		return nil, err
	}

	if err := p.storage.CreateHierarchy(requested); err != nil {
		return nil, errors.Wrapf(err, "failed to create hierarchy %q", code)
	}
	logger.L.WithField("hierarchy", requested.String()).Info("hierarchy created")
	return hierarchy.New(requested, p.storage), nil
}

// GetHierarchy opens an existing hierarchy.
func (p *PMPTT) GetHierarchy(code string) (*hierarchy.Hierarchy, error) {
	h, err := p.storage.GetHierarchy(code)
	if err != nil {
		return nil, err
	}
	return hierarchy.New(h, p.storage), nil
}

// RemoveHierarchy drops the hierarchy together with all its items.
func (p *PMPTT) RemoveHierarchy(code string) error {
	if err := p.storage.RemoveHierarchy(code); err != nil {
		return err
	}
	logger.L.WithField("hierarchy", code).Info("hierarchy removed")
	return nil
}
