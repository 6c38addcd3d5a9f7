/*
Package iavl implements the committed ledger state on top of a versioned
iavl tree. Every commit produces a new version together with a root hash
covering all accounts.
*/
package iavl

import (
	"github.com/iov-one/timevault/errors"
	"github.com/iov-one/timevault/store"
	"github.com/tendermint/iavl"
	dbm "github.com/tendermint/tendermint/libs/db"
)

// DefaultCacheSize is the number of tree nodes kept in memory.
const DefaultCacheSize = 10000

// CommitStore manages a iavl committed state.
type CommitStore struct {
	db   dbm.DB
	tree *iavl.MutableTree
}

var _ store.CommitKVStore = CommitStore{}

// NewCommitStore creates a new store with disk backing. The database is
// kept in the dir/name.db directory.
func NewCommitStore(dir, name string) (CommitStore, error) {
	db, err := dbm.NewGoLevelDB(name, dir)
	if err != nil {
		return CommitStore{}, errors.Wrapf(errors.ErrDatabase, "cannot open %s/%s: %s", dir, name, err)
	}
	s := NewCommitStoreFromDB(db)
	if err := s.LoadLatestVersion(); err != nil {
		db.Close()
		return CommitStore{}, err
	}
	return s, nil
}

// MockCommitStore creates a new in-memory store, for tests.
func MockCommitStore() CommitStore {
	return NewCommitStoreFromDB(dbm.NewMemDB())
}

// NewCommitStoreFromDB creates a store on top of any database backend.
func NewCommitStoreFromDB(db dbm.DB) CommitStore {
	return CommitStore{
		db:   db,
		tree: iavl.NewMutableTree(db, DefaultCacheSize),
	}
}

// Close releases the underlying database.
func (s CommitStore) Close() {
	s.db.Close()
}

// Get returns the value of the working tree. It returns nil iff key doesn't
// exist.
func (s CommitStore) Get(key []byte) ([]byte, error) {
	_, val := s.tree.Get(key)
	return val, nil
}

// Has checks if a key exists in the working tree.
func (s CommitStore) Has(key []byte) (bool, error) {
	return s.tree.Has(key), nil
}

// Iterator over a domain of keys in ascending order. End is exclusive.
func (s CommitStore) Iterator(start, end []byte) (store.Iterator, error) {
	var res []store.Model
	s.tree.IterateRange(start, end, true, func(key, value []byte) bool {
		res = append(res, store.Model{Key: key, Value: value})
		return false
	})
	return store.NewSliceIterator(res), nil
}

// Commit the next version to disk, and returns info.
func (s CommitStore) Commit() (store.CommitID, error) {
	hash, version, err := s.tree.SaveVersion()
	if err != nil {
		return store.CommitID{}, errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return store.CommitID{Version: version, Hash: hash}, nil
}

// LoadLatestVersion loads the latest persisted version.
func (s CommitStore) LoadLatestVersion() error {
	if _, err := s.tree.Load(); err != nil {
		return errors.Wrap(errors.ErrDatabase, err.Error())
	}
	return nil
}

// LatestVersion returns info on the latest version saved to disk.
func (s CommitStore) LatestVersion() (store.CommitID, error) {
	return store.CommitID{
		Version: s.tree.Version(),
		Hash:    s.tree.Hash(),
	}, nil
}

// CacheWrap gives us a savepoint to perform actions. Writing the cache
// modifies the working tree that the next Commit saves.
func (s CommitStore) CacheWrap() store.KVCacheWrap {
	w := writer{tree: s.tree}
	return store.NewBTreeCacheWrap(s, store.NewNonAtomicBatch(w), nil)
}

// writer applies batched operations to the working tree.
type writer struct {
	tree *iavl.MutableTree
}

func (w writer) Set(key, value []byte) error {
	w.tree.Set(key, value)
	return nil
}

func (w writer) Delete(key []byte) error {
	w.tree.Remove(key)
	return nil
}
