package storagesvc

import (
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	storage_go "github.com/supabase-community/storage-go"

	"github.com/campusbuddy/helpdesk/core"
)

type supabaseStorage struct {
	client *storage_go.Client
	bucket string
}

var _ core.FileStorage = (*supabaseStorage)(nil)

// NewSupabaseStorage returns a FileStorage backed by a Supabase storage bucket.
func NewSupabaseStorage(conf *core.Config) core.FileStorage {
	base := strings.TrimSuffix(conf.Storage.URL, "/") + "/storage/v1"
	return &supabaseStorage{
		client: storage_go.NewClient(base, conf.Storage.Key, nil),
		bucket: conf.Storage.Bucket,
	}
}

// The storage client does not take a context: cancellation is checked before each call only.

func (s *supabaseStorage) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.UploadFile(s.bucket, key, r, storage_go.FileOptions{ContentType: &contentType}); err != nil {
		return errors.Wrapf(err, "uploading %s/%s", s.bucket, key)
	}
	return nil
}

func (s *supabaseStorage) Download(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.client.DownloadFile(s.bucket, key)
	if err != nil {
		if isNotFound(err) {
			return nil, core.ErrFileNotFound
		}
		return nil, errors.Wrapf(err, "downloading %s/%s", s.bucket, key)
	}
	return data, nil
}

func (s *supabaseStorage) PublicURL(key string) string {
	return s.client.GetPublicUrl(s.bucket, key).SignedURL
}

func (s *supabaseStorage) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.client.RemoveFile(s.bucket, keys); err != nil {
		return errors.Wrapf(err, "removing from %s", s.bucket)
	}
	return nil
}

func isNotFound(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "not found") || strings.Contains(msg, "404")
}
