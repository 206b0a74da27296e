// ABOUTME: Current-user slot persisted between runs in a BadgerDB store
// ABOUTME: Holds the logged-in user as a flat JSON record under a fixed key

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrg/xdg"
	"github.com/dgraph-io/badger/v3"
	"github.com/harperreed/commtrack/models"
)

// AppName names the per-user data directory.
const AppName = "commtrack"

var userKey = []byte("user")

// Store is the only state that outlives the process.
type Store struct {
	db *badger.DB
	mu sync.Mutex
}

// DefaultDir returns the session directory under the XDG data home.
func DefaultDir() string {
	return filepath.Join(xdg.DataHome, AppName, "session")
}

// Open opens (creating if needed) the session store in dir.
func Open(dir string) (*Store, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}

	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return &Store{db: db}, nil
}

// OpenInMemory opens a store that forgets everything on Close.
func OpenInMemory() (*Store, error) {
	db, err := badger.Open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Save(user *models.User) error {
	if user == nil {
		return s.Clear()
	}
	if !user.Role.Valid() {
		return fmt.Errorf("%w: unknown role %q", models.ErrInvalidInput, user.Role)
	}

	data, err := json.Marshal(user)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(userKey, data)
	})
}

// Load returns nil, nil when nobody is logged in.
func (s *Store) Load() (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session: %w", err)
	}

	var user models.User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &user, nil
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(userKey)
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
