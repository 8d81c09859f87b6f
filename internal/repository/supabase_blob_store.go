package repository

import (
	"bytes"
	"context"
	"io"
	"mime"
	"path"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"

	storage_go "github.com/supabase-community/storage-go"
)

// BucketClient is the part of the Supabase storage API the blob store uses.
// *storage_go.Client satisfies it.
type BucketClient interface {
	UploadFile(bucketID string, relativePath string, data io.Reader, fileOptions ...storage_go.FileOptions) (storage_go.FileUploadResponse, error)
	DownloadFile(bucketID string, filePath string, urlOptions ...storage_go.UrlOptions) ([]byte, error)
	RemoveFile(bucketID string, paths []string) ([]storage_go.FileUploadResponse, error)
}

// SupabaseBlobStore implements domain.ObjectStore on Supabase Storage. Each
// container maps to a bucket of the same name.
type SupabaseBlobStore struct {
	buckets BucketClient
	logger  domain.Logger
}

// NewSupabaseBlobStore creates a store over an initialized storage client.
func NewSupabaseBlobStore(buckets BucketClient, logger domain.Logger) *SupabaseBlobStore {
	return &SupabaseBlobStore{buckets: buckets, logger: logger}
}

// Upload writes data to container/key. With overwrite=false an existing
// object makes the call fail.
func (s *SupabaseBlobStore) Upload(ctx context.Context, container, key string, data []byte, overwrite bool) error {
	if err := s.check(ctx, container, key); err != nil {
		return err
	}

	contentType := contentTypeFor(key)
	opts := storage_go.FileOptions{
		ContentType: &contentType,
		Upsert:      &overwrite,
	}
	if _, err := s.buckets.UploadFile(container, key, bytes.NewReader(data), opts); err != nil {
		s.logger.Error("Failed to upload blob", err, "container", container, "key", key)
		return apperrors.NewTransportError("failed to upload "+container+"/"+key, 0, err)
	}
	s.logger.Info("Uploaded blob", "container", container, "key", key, "bytes", len(data))
	return nil
}

// Download reads container/key.
func (s *SupabaseBlobStore) Download(ctx context.Context, container, key string) ([]byte, error) {
	if err := s.check(ctx, container, key); err != nil {
		return nil, err
	}

	data, err := s.buckets.DownloadFile(container, key)
	if err != nil {
		s.logger.Error("Failed to download blob", err, "container", container, "key", key)
		return nil, apperrors.NewTransportError("failed to download "+container+"/"+key, 0, err)
	}
	return data, nil
}

// Delete removes container/key.
func (s *SupabaseBlobStore) Delete(ctx context.Context, container, key string) error {
	if err := s.check(ctx, container, key); err != nil {
		return err
	}

	if _, err := s.buckets.RemoveFile(container, []string{key}); err != nil {
		s.logger.Error("Failed to delete blob", err, "container", container, "key", key)
		return apperrors.NewTransportError("failed to delete "+container+"/"+key, 0, err)
	}
	s.logger.Info("Deleted blob", "container", container, "key", key)
	return nil
}

// The storage client has no context support; honour cancellation up front.
func (s *SupabaseBlobStore) check(ctx context.Context, container, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.buckets == nil {
		return apperrors.NewInternalError("supabase storage client not initialized", nil)
	}
	return validateLocation(container, key)
}

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func contentTypeFor(key string) string {
	if strings.EqualFold(path.Ext(key), ".xlsx") {
		return xlsxContentType
	}
	if ct := mime.TypeByExtension(path.Ext(key)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
