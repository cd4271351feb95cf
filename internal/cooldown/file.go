package cooldown

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// FileStore is a file-backed Store. Entries survive process restarts within
// one installation but are never synchronized across machines. Expired
// entries stay in the file and are skipped on read.
type FileStore struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry

	// now is swappable for tests.
	now func() time.Time
}

// NewFileStore loads (or creates) the cooldown file under dir.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	s := &FileStore{
		path:    filepath.Join(dir, "vote_cooldowns.json"),
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, &s.entries); err != nil {
		// Corrupt state file: start fresh rather than refuse to boot.
		log.Printf("cooldown: discarding unreadable state file %s: %v", s.path, err)
		s.entries = make(map[string]Entry)
	}
	return s, nil
}

func (s *FileStore) Start(kolID string, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[kolID] = Entry{
		KOLID:     kolID,
		StartedAt: s.now(),
		Duration:  d,
	}
	return s.flushLocked()
}

func (s *FileStore) Remaining(kolID string) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[kolID]
	if !ok {
		return 0
	}
	return e.Remaining(s.now())
}

func (s *FileStore) Active(kolID string) bool {
	return s.Remaining(kolID) > 0
}

func (s *FileStore) flushLocked() error {
	data, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return err
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
