package service

import (
	"context"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// CleanupService moves processed source documents out of the incoming
// container.
type CleanupService struct {
	store      domain.ObjectStore
	containers domain.Containers
	logger     domain.Logger
}

func NewCleanupService(store domain.ObjectStore, containers domain.Containers, logger domain.Logger) *CleanupService {
	return &CleanupService{store: store, containers: containers, logger: logger}
}

// CleanUp copies blobName from incoming to processed, then deletes the
// incoming copy. The source is kept if the copy fails.
func (s *CleanupService) CleanUp(ctx context.Context, blobName string) error {
	if blobName == "" {
		return apperrors.NewValidationError("incoming_docs_blob_name is required")
	}

	s.logger.Info("Cleaning up blob", "blob_name", blobName, "container", s.containers.Incoming)
	data, err := s.store.Download(ctx, s.containers.Incoming, blobName)
	if err != nil {
		return err
	}
	if err := s.store.Upload(ctx, s.containers.Processed, blobName, data, true); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, s.containers.Incoming, blobName); err != nil {
		return err
	}
	s.logger.Info("Blob cleaned up", "blob_name", blobName, "from", s.containers.Incoming, "to", s.containers.Processed)
	return nil
}
