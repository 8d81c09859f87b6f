package repository

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// LocalBlobStore keeps containers as directories under Root:
// <Root>/<container>/<key>.
type LocalBlobStore struct {
	root   string
	logger domain.Logger
}

// NewLocalBlobStore creates a store rooted at root. The directory is created
// lazily on first upload.
func NewLocalBlobStore(root string, logger domain.Logger) *LocalBlobStore {
	return &LocalBlobStore{root: root, logger: logger}
}

func (s *LocalBlobStore) Upload(ctx context.Context, container, key string, data []byte, overwrite bool) error {
	p, err := s.resolve(ctx, container, key)
	if err != nil {
		return err
	}

	if !overwrite {
		if _, err := os.Stat(p); err == nil {
			return apperrors.NewValidationError("blob already exists", container+"/"+key)
		}
	}
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return apperrors.NewInternalError("failed to create container directory", err)
	}
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return apperrors.NewInternalError("failed to write blob", err)
	}
	s.logger.Debug("Stored blob", "container", container, "key", key, "bytes", len(data))
	return nil
}

func (s *LocalBlobStore) Download(ctx context.Context, container, key string) ([]byte, error) {
	p, err := s.resolve(ctx, container, key)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(p)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError("blob " + container + "/" + key + " not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("failed to read blob", err)
	}
	return data, nil
}

func (s *LocalBlobStore) Delete(ctx context.Context, container, key string) error {
	p, err := s.resolve(ctx, container, key)
	if err != nil {
		return err
	}

	err = os.Remove(p)
	if errors.Is(err, fs.ErrNotExist) {
		return apperrors.NewNotFoundError("blob " + container + "/" + key + " not found")
	}
	if err != nil {
		return apperrors.NewInternalError("failed to delete blob", err)
	}
	return nil
}

func (s *LocalBlobStore) resolve(ctx context.Context, container, key string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateLocation(container, key); err != nil {
		return "", err
	}
	return filepath.Join(s.root, container, filepath.FromSlash(key)), nil
}

// validateLocation rejects names that would escape their container.
func validateLocation(container, key string) error {
	if container == "" || strings.ContainsAny(container, `/\`) || container == "." || container == ".." {
		return apperrors.NewInvalidInputError("invalid container name", container)
	}
	if key == "" || strings.HasPrefix(key, "/") {
		return apperrors.NewInvalidInputError("invalid blob name", key)
	}
	if clean := path.Clean(key); clean != key || clean == ".." || strings.HasPrefix(clean, "../") {
		return apperrors.NewInvalidInputError("invalid blob name", key)
	}
	return nil
}
