package slots

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/raysh454/dccdev/internal/logging"
)

var (
	// ErrStorageUnavailable reports a missing or malformed slots file.
	ErrStorageUnavailable = errors.New("slot storage unavailable")
	// ErrNotFound reports a slot id outside the persisted sequence.
	ErrNotFound = errors.New("slot not found")
)

type document struct {
	Slots []Slot `json:"slots"`
}

// Store persists the slot sequence as a single JSON document:
//
//	{"slots": [{"id": 1, ...}, {"id": 2, ...}]}
//
// Every read goes to disk. Saves rewrite the whole file through a temp file
// that is renamed over the original, so readers never see a partial write.
type Store struct {
	path   string
	logger logging.Logger

	// mu serialises writers within this process.
	mu sync.Mutex
}

// NewStore returns a Store backed by the file at path. The file is not
// touched until the first call.
func NewStore(path string, logger logging.Logger) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("slots file path is required")
	}
	return &Store{
		path:   filepath.Clean(path),
		logger: logger.With(logging.Field{Key: "component", Value: "slots"}),
	}, nil
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// List reads every slot in persisted order.
func (s *Store) List() ([]Slot, error) {
	b, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", ErrStorageUnavailable, s.path, err)
	}
	var doc document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("%w: decoding %s: %v", ErrStorageUnavailable, s.path, err)
	}
	if doc.Slots == nil {
		return nil, fmt.Errorf("%w: %s has no slots field", ErrStorageUnavailable, s.path)
	}
	return doc.Slots, nil
}

// Get returns the slot whose stored id equals id.
func (s *Store) Get(id int) (Slot, error) {
	all, err := s.List()
	if err != nil {
		return Slot{}, err
	}
	for _, sl := range all {
		if sl.ID == id {
			return sl, nil
		}
	}
	return Slot{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
}

// Save replaces the slot at position slot.ID-1 and rewrites the file.
func (s *Store) Save(slot Slot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.List()
	if err != nil {
		return err
	}
	if slot.ID < 1 || slot.ID > len(all) {
		return fmt.Errorf("%w: id %d outside 1..%d", ErrNotFound, slot.ID, len(all))
	}
	all[slot.ID-1] = slot

	if err := s.write(all); err != nil {
		return err
	}
	s.logger.Info("saved slot", logging.Field{Key: "slot_id", Value: slot.ID}, logging.Field{Key: "pr", Value: slot.PR})
	return nil
}

func (s *Store) write(all []Slot) error {
	b, err := json.MarshalIndent(document{Slots: all}, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding slots: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(s.path), "."+filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp slots file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp slots file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp slots file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp slots file: %w", err)
	}
	if fi, err := os.Stat(s.path); err == nil {
		_ = os.Chmod(tmpName, fi.Mode().Perm())
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("replacing slots file: %w", err)
	}
	return nil
}
