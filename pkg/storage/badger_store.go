package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/sirupsen/logrus"

	"webharvest/pkg/log"
	"webharvest/pkg/utils"
)

const (
	urlKeyPrefix = "url:"       // Prefix for canonical URL keys in DB
	visitedDBDir = "visited_db" // Subdirectory name within stateDir for Badger files
)

// BadgerStore is the persistent VisitedStore variant, selected when a
// state_dir is configured. Visited sets stay scoped to one crawl run: the
// per-site DB directory is wiped at open. The surviving files let a finished
// run's admitted key set be inspected offline.
type BadgerStore struct {
	db       *badger.DB
	log      *logrus.Entry
	keyCount atomic.Int64 // Cached for O(1) VisitedCount
}

// NewBadgerStore initializes the per-site visited database under stateDir.
func NewBadgerStore(stateDir, scopeHost string, logger *logrus.Entry) (*BadgerStore, error) {
	store := &BadgerStore{log: logger}

	dbPath := filepath.Join(stateDir, utils.SanitizeFilename(scopeHost)+"_"+visitedDBDir)

	// Visited keys are per-run state; stale sets from an earlier run would
	// suppress legitimate enqueues.
	if err := os.RemoveAll(dbPath); err != nil {
		logger.Errorf("Failed to remove existing state directory %s: %v", dbPath, err)
	}
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("cannot create state directory %s: %w", dbPath, err)
	}

	logger.Infof("Initializing visited URL database at: %s", dbPath)

	badgerLogger := log.NewBadgerLogrusAdapter(logger.WithField("component", "badgerdb"))
	opts := badger.DefaultOptions(dbPath).
		WithLogger(badgerLogger).
		WithNumVersionsToKeep(1)

	var err error
	store.db, err = badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database at %s: %w", dbPath, err)
	}

	logger.Info("Visited URL database initialized successfully.")
	return store, nil
}

const maxConflictRetries = 10

// dbUpdate wraps db.Update with a retry loop for BadgerDB transaction
// conflicts. Concurrent MVCC transactions on overlapping keys can return
// badger.ErrConflict; these resolve in microseconds.
func (s *BadgerStore) dbUpdate(fn func(txn *badger.Txn) error) error {
	for i := range maxConflictRetries {
		err := s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.log.Debugf("BadgerDB transaction conflict (attempt %d/%d), retrying", i+1, maxConflictRetries)
	}
	return fmt.Errorf("%w: transaction conflict not resolved after %d retries", utils.ErrDatabase, maxConflictRetries)
}

// MarkVisited implements VisitedStore. The get-then-set runs inside one
// transaction, so concurrent discovery of the same key admits exactly once.
func (s *BadgerStore) MarkVisited(canonicalKey string) (bool, error) {
	if s.db == nil {
		return false, errors.New("visited DB not initialized")
	}
	added := false
	key := []byte(urlKeyPrefix + canonicalKey)

	err := s.dbUpdate(func(txn *badger.Txn) error {
		_, errGet := txn.Get(key)
		if errors.Is(errGet, badger.ErrKeyNotFound) {
			errSet := txn.SetEntry(badger.NewEntry(key, []byte{}))
			if errSet == nil {
				added = true
			}
			return errSet
		}
		return errGet // nil when the key already exists
	})

	if err != nil {
		s.log.WithField("key", string(key)).Errorf("DB update error in MarkVisited: %v", err)
		return false, fmt.Errorf("%w: marking key '%s': %w", utils.ErrDatabase, canonicalKey, err)
	}
	if added {
		s.keyCount.Add(1)
	}

	return added, nil
}

// VisitedCount implements VisitedStore.
func (s *BadgerStore) VisitedCount() (int, error) {
	if s.db == nil {
		return 0, errors.New("visited DB not initialized")
	}
	return int(s.keyCount.Load()), nil
}

// Close implements VisitedStore.
func (s *BadgerStore) Close() error {
	if s.db == nil {
		return nil
	}
	s.log.Info("Closing visited URL database...")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("%w: closing badger database: %w", utils.ErrDatabase, err)
	}
	s.db = nil
	return nil
}
