package credential

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrNotFound means no credential has been persisted yet. The guard reacts
// by bootstrapping the default secret.
var ErrNotFound = errors.New("credential not found")

// ErrCorrupt means a credential exists but cannot be read as a valid hash.
// This is a fatal configuration error, never treated as "no password set".
var ErrCorrupt = errors.New("credential file corrupt")

// Store holds the single administrator credential as an opaque one-way hash,
// separate from the relational store.
type Store interface {
	Load() (string, error)
	Save(hash string) error
}

// FileStore persists the hash in a flat file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load reads the stored hash. A missing file maps to ErrNotFound; a file
// whose contents do not parse as a bcrypt hash maps to ErrCorrupt.
func (s *FileStore) Load() (string, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read credential file: %w", err)
	}

	hash := strings.TrimSpace(string(data))
	if _, err := bcrypt.Cost([]byte(hash)); err != nil {
		return "", fmt.Errorf("%w: %s", ErrCorrupt, s.path)
	}
	return hash, nil
}

// Save overwrites the stored hash atomically: write to a temp file in the
// same directory, then rename over the target. A crash mid-write leaves the
// previous credential intact rather than an empty file.
func (s *FileStore) Save(hash string) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create credential directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "credential-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp credential file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(hash + "\n"); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write temp credential file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp credential file: %w", err)
	}

	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace credential file: %w", err)
	}
	return nil
}

// MemoryStore keeps the hash in memory. Used by tests to substitute the
// file-backed store.
type MemoryStore struct {
	mu   sync.Mutex
	hash string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Load() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hash == "" {
		return "", ErrNotFound
	}
	return s.hash, nil
}

func (s *MemoryStore) Save(hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hash = hash
	return nil
}
