package storage

import (
	"bytes"
	"compress/gzip"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/md2xlsx/webui/internal/models"
)

// Transfer encodings of file content sent by the browser.
const (
	EncodingBase64     = "base64"
	EncodingBase64Gzip = "base64-gzip"
)

// ErrNotFound is returned for unknown staging ids.
var ErrNotFound = errors.New("staged file not found")

// ErrTooLarge is returned when content exceeds the store's limit.
var ErrTooLarge = errors.New("staged content exceeds limit")

// Store defines the interface for staging file content.
type Store interface {
	Save(name string, r io.Reader) (*models.StagedFile, error)
	SaveEncoded(name, data, encoding string) (*models.StagedFile, error)
	Get(id string) (*models.StagedFile, error)
	Open(id string) (io.ReadCloser, error)
	List(limit int) ([]*models.StagedFile, error)
	Delete(id string) error
}

// MemoryStore keeps staged content in memory. Nothing outlives the process.
type MemoryStore struct {
	mu    sync.RWMutex
	limit int64
	files map[string]*models.StagedFile
	data  map[string][]byte
}

// NewMemoryStore creates a store that refuses content larger than limit bytes.
// A limit of zero or less disables the check.
func NewMemoryStore(limit int64) *MemoryStore {
	return &MemoryStore{
		limit: limit,
		files: make(map[string]*models.StagedFile),
		data:  make(map[string][]byte),
	}
}

// Save stages the content of r under a new id.
func (s *MemoryStore) Save(name string, r io.Reader) (*models.StagedFile, error) {
	if s.limit > 0 {
		r = io.LimitReader(r, s.limit+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if s.limit > 0 && int64(len(data)) > s.limit {
		return nil, fmt.Errorf("%s: %w", name, ErrTooLarge)
	}

	info := &models.StagedFile{
		ID:       uuid.New().String(),
		Name:     name,
		Size:     int64(len(data)),
		StagedAt: time.Now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[info.ID] = info
	s.data[info.ID] = data

	return info, nil
}

// SaveEncoded decodes content sent over the WebSocket and stages it. An empty
// encoding means base64.
func (s *MemoryStore) SaveEncoded(name, data, encoding string) (*models.StagedFile, error) {
	r, err := decode(data, encoding)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	return s.Save(name, r)
}

func decode(data, encoding string) (io.Reader, error) {
	raw, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, err
	}

	switch encoding {
	case "", EncodingBase64:
		return bytes.NewReader(raw), nil
	case EncodingBase64Gzip:
		// Check gzip magic
		if len(raw) < 2 || raw[0] != 0x1f || raw[1] != 0x8b {
			return nil, fmt.Errorf("not a gzip stream")
		}
		zr, err := gzip.NewReader(bytes.NewReader(raw))
		if err != nil {
			return nil, err
		}
		return zr, nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}

// Get retrieves staged file metadata by ID.
func (s *MemoryStore) Get(id string) (*models.StagedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	info, ok := s.files[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return info, nil
}

// Open returns a reader over staged content.
func (s *MemoryStore) Open(id string) (io.ReadCloser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.data[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// List returns the most recently staged files.
func (s *MemoryStore) List(limit int) ([]*models.StagedFile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]*models.StagedFile, 0, len(s.files))
	for _, info := range s.files {
		list = append(list, info)
	}

	// Sort by StagedAt desc
	sort.Slice(list, func(i, j int) bool {
		return list[i].StagedAt.After(list[j].StagedAt)
	})

	if limit > 0 && len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

// Delete removes a staged file.
func (s *MemoryStore) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.files[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(s.files, id)
	delete(s.data, id)
	return nil
}

// Clear removes every staged file.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files = make(map[string]*models.StagedFile)
	s.data = make(map[string][]byte)
}

// Cleanup removes files staged before maxAge ago and returns how many were removed.
func (s *MemoryStore) Cleanup(maxAge time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, info := range s.files {
		if info.StagedAt.Before(cutoff) {
			delete(s.files, id)
			delete(s.data, id)
			removed++
		}
	}
	return removed
}
