package core

import (
	"context"
	"errors"
	"io"
)

var ErrFileNotFound = errors.New("file not found")

// FileStorage stores uploaded documents by key in a single bucket.
type FileStorage interface {
	Upload(ctx context.Context, key, contentType string, r io.Reader) error
	Download(ctx context.Context, key string) ([]byte, error)
	PublicURL(key string) string
	Remove(ctx context.Context, keys ...string) error
}
