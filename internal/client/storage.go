package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MarkerKey is the storage key of the pending-loan marker
const MarkerKey = "loanSuccess"

// MarkerLifetime is how long a created loan waits for its code
const MarkerLifetime = 15 * time.Minute

// Storage is a string key/value store that outlives the page, like the
// browser's local storage.
type Storage interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Remove(key string) error
}

// MemoryStorage keeps items for the life of the process
type MemoryStorage struct {
	mu    sync.Mutex
	items map[string]string
}

// NewMemoryStorage returns an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{items: make(map[string]string)}
}

func (s *MemoryStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.items[key]
	return v, ok, nil
}

func (s *MemoryStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[key] = value
	return nil
}

func (s *MemoryStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, key)
	return nil
}

// FileStorage persists items as one JSON object in a file
type FileStorage struct {
	mu   sync.Mutex
	path string
}

// NewFileStorage stores items in path. The file is created on first write.
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (s *FileStorage) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.read()
	if err != nil {
		return "", false, err
	}
	v, ok := items[key]
	return v, ok, nil
}

func (s *FileStorage) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.read()
	if err != nil {
		return err
	}
	items[key] = value
	return s.write(items)
}

func (s *FileStorage) Remove(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := items[key]; !ok {
		return nil
	}
	delete(items, key)
	return s.write(items)
}

func (s *FileStorage) read() (map[string]string, error) {
	items := make(map[string]string)
	raw, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return items, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read storage: %w", err)
	}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode storage %s: %w", s.path, err)
	}
	return items, nil
}

// write replaces the file atomically
func (s *FileStorage) write(items map[string]string) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode storage: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".storage-*")
	if err != nil {
		return fmt.Errorf("write storage: %w", err)
	}
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write storage: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write storage: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// marker is the stored shape: the loan details and an epoch-ms expiry
type marker struct {
	Data       json.RawMessage `json:"data"`
	Expiration int64           `json:"expiration"`
}

// MarkerStore keeps the pending-loan marker in a Storage
type MarkerStore struct {
	storage Storage
	now     func() time.Time
}

// NewMarkerStore returns a marker store over storage
func NewMarkerStore(storage Storage) *MarkerStore {
	return &MarkerStore{storage: storage, now: time.Now}
}

// Save stores details with a MarkerLifetime expiry
func (m *MarkerStore) Save(details json.RawMessage) error {
	raw, err := json.Marshal(marker{
		Data:       details,
		Expiration: m.now().Add(MarkerLifetime).UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("encode marker: %w", err)
	}
	return m.storage.Set(MarkerKey, string(raw))
}

// Load returns the stored details. An expired or unreadable marker is
// removed and reported as absent.
func (m *MarkerStore) Load() (json.RawMessage, bool, error) {
	raw, ok, err := m.storage.Get(MarkerKey)
	if err != nil || !ok {
		return nil, false, err
	}

	var mk marker
	if err := json.Unmarshal([]byte(raw), &mk); err != nil || m.now().UnixMilli() > mk.Expiration {
		return nil, false, m.storage.Remove(MarkerKey)
	}
	return mk.Data, true, nil
}

// Clear removes the marker
func (m *MarkerStore) Clear() error {
	return m.storage.Remove(MarkerKey)
}

// LoanID reads loanId out of marker details
func LoanID(details json.RawMessage) string {
	var out struct {
		LoanID string `json:"loanId"`
	}
	if json.Unmarshal(details, &out) != nil {
		return ""
	}
	return out.LoanID
}
