package storagesvc

import (
	"context"
	"io"
	"net/url"
	"sync"

	"github.com/pkg/errors"

	"github.com/campusbuddy/helpdesk/core"
)

type memoryFile struct {
	contentType string
	data        []byte
}

// MemoryStorage keeps files in memory. Used in tests and when no bucket is configured.
type MemoryStorage struct {
	baseURL string
	mu      sync.RWMutex
	files   map[string]memoryFile
}

var _ core.FileStorage = (*MemoryStorage)(nil)

func NewMemoryStorage(baseURL string) *MemoryStorage {
	return &MemoryStorage{
		baseURL: baseURL,
		files:   make(map[string]memoryFile),
	}
}

func (s *MemoryStorage) Upload(_ context.Context, key, contentType string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Wrap(err, "reading upload")
	}
	s.mu.Lock()
	s.files[key] = memoryFile{contentType: contentType, data: data}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStorage) Download(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[key]
	if !ok {
		return nil, core.ErrFileNotFound
	}
	data := make([]byte, len(f.data))
	copy(data, f.data)
	return data, nil
}

func (s *MemoryStorage) PublicURL(key string) string {
	return s.baseURL + "/" + url.PathEscape(key)
}

func (s *MemoryStorage) Remove(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.files, key)
	}
	return nil
}

// ContentType returns the content type of the stored file, if any.
func (s *MemoryStorage) ContentType(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.files[key]
	return f.contentType, ok
}

// Len returns the number of stored files.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.files)
}
