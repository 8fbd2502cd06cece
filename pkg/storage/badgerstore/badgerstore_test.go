package badgerstore

import (
	"errors"
	"testing"

	"go-pmptt/pkg/customerrors"
	"go-pmptt/pkg/model"
	"go-pmptt/pkg/storage"
	"go-pmptt/pkg/storage/storagetest"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
)

func open(t *testing.T) *Storage {
	s, err := Open(&Options{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, s.Close())
	})
	return s
}

func TestStorage(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return open(t)
	})
}

func TestPersistence(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(&Options{Path: dir})
	require.NoError(t, err)

	h, err := model.NewHierarchy("h", 2, 2)
	require.NoError(t, err)
	require.NoError(t, s.CreateHierarchy(h))
	item := model.NewTrackedItem(model.Item{HierarchyCode: "h", Code: "a", Level: 1, LeftBound: 1, RightBound: 11, Order: 1, Bucket: 1})
	require.NoError(t, s.CreateItem(item))
	require.NoError(t, s.Close())

	s, err = Open(&Options{Path: dir})
	require.NoError(t, err)
	defer s.Close()

	stored, err := s.GetHierarchy("h")
	require.NoError(t, err)
	require.Equal(t, h, stored)

	found, err := s.GetItem(h, "a")
	require.NoError(t, err)
	require.Equal(t, item.Item, found.Item)
}

func TestTransactionRollback(t *testing.T) {
	s := open(t)
	h, err := model.NewHierarchy("h", 2, 2)
	require.NoError(t, err)
	require.NoError(t, s.CreateHierarchy(h))

	failure := errors.New("failure")
	err = s.InTransaction(func(tx storage.Storage) error {
		item := model.NewTrackedItem(model.Item{HierarchyCode: "h", Code: "a", Level: 1, LeftBound: 1, RightBound: 11, Order: 1, Bucket: 1})
		if err := tx.CreateItem(item); err != nil {
			return err
		}

		found, err := tx.GetItem(h, "a")
		require.NoError(t, err)
		require.Equal(t, item.Item, found.Item)

		roots, err := tx.GetRootItems(h)
		require.NoError(t, err)
		require.Equal(t, []string{"a"}, storagetest.Codes(roots))
		return failure
	})
	require.ErrorIs(t, err, failure)

	_, err = s.GetItem(h, "a")
	require.ErrorIs(t, err, customerrors.ErrNotFound)
}

func TestTransactionListenerRollback(t *testing.T) {
	s := open(t)
	r := &storagetest.Recorder{Fail: customerrors.ErrCorrupted}
	s.RegisterChangeListener(r)

	h, err := model.NewHierarchy("h", 2, 2)
	require.NoError(t, err)
	require.NoError(t, s.CreateHierarchy(h))

	err = s.InTransaction(func(tx storage.Storage) error {
		return tx.CreateItem(model.NewTrackedItem(model.Item{HierarchyCode: "h", Code: "a", Level: 1, LeftBound: 1, RightBound: 11, Order: 1, Bucket: 1}))
	})
	require.ErrorIs(t, err, customerrors.ErrCorrupted)
	require.Equal(t, []string{"a"}, r.Created)

	_, err = s.GetItem(h, "a")
	require.ErrorIs(t, err, customerrors.ErrNotFound)
}

func TestTransactionCommit(t *testing.T) {
	s := open(t)
	h, err := model.NewHierarchy("h", 2, 2)
	require.NoError(t, err)

	err = s.InTransaction(func(tx storage.Storage) error {
		if err := tx.CreateHierarchy(h); err != nil {
			return err
		}
		// nested calls join the running transaction
		return tx.(storage.Transactor).InTransaction(func(tx storage.Storage) error {
			return tx.CreateItem(model.NewTrackedItem(model.Item{HierarchyCode: "h", Code: "a", Level: 1, LeftBound: 1, RightBound: 11, Order: 1, Bucket: 1}))
		})
	})
	require.NoError(t, err)

	_, err = s.GetItem(h, "a")
	require.NoError(t, err)
}

func TestTransactionCommitConflict(t *testing.T) {
	s := open(t)
	h, err := model.NewHierarchy("h", 2, 2)
	require.NoError(t, err)
	require.NoError(t, s.CreateHierarchy(h))
	require.NoError(t, s.CreateItem(model.NewTrackedItem(model.Item{HierarchyCode: "h", Code: "a", Level: 1, LeftBound: 1, RightBound: 11, Order: 1, Bucket: 1})))

	r := &storagetest.Recorder{}
	s.RegisterChangeListener(r)

	err = s.InTransaction(func(tx storage.Storage) error {
		inside, err := tx.GetItem(h, "a")
		require.NoError(t, err)

		outside, err := s.GetItem(h, "a")
		require.NoError(t, err)
		outside.Order = 2
		require.NoError(t, s.UpdateItem(outside))

		inside.Order = 3
		return tx.UpdateItem(inside)
	})
	require.ErrorIs(t, err, badger.ErrConflict)

	// listeners saw both updates although only the first one was stored
	require.Equal(t, []string{"a", "a"}, r.Updated)
	stored, err := s.GetItem(h, "a")
	require.NoError(t, err)
	require.Equal(t, 2, stored.Order)
}
