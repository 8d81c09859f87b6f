package service

import (
	"context"
	"strings"

	"doc-intel-pipeline/internal/domain"
	"doc-intel-pipeline/internal/report"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// ReportService turns stored OCR results into summary and spreadsheet
// artifacts. Report names reuse the result name with a new extension.
type ReportService struct {
	store      domain.ObjectStore
	containers domain.Containers
	logger     domain.Logger
}

func NewReportService(store domain.ObjectStore, containers domain.Containers, logger domain.Logger) *ReportService {
	return &ReportService{store: store, containers: containers, logger: logger}
}

// ParseOCR writes a plain-text bundle summary to the summary container.
func (s *ReportService) ParseOCR(ctx context.Context, resultBlobName string) (*domain.BlobRef, error) {
	res, err := s.load(ctx, resultBlobName)
	if err != nil {
		return nil, err
	}

	ref := &domain.BlobRef{
		BlobName:      replaceExt(resultBlobName, ".txt"),
		ContainerName: s.containers.Summary,
	}
	if err := s.store.Upload(ctx, ref.ContainerName, ref.BlobName, []byte(report.Summary(res)), true); err != nil {
		return nil, err
	}
	s.logger.Info("Summary report uploaded", "blob_name", ref.BlobName, "container", ref.ContainerName)
	return ref, nil
}

// CreateSpreadsheet writes an xlsx report to the spreadsheet container.
func (s *ReportService) CreateSpreadsheet(ctx context.Context, resultBlobName string) (*domain.BlobRef, error) {
	res, err := s.load(ctx, resultBlobName)
	if err != nil {
		return nil, err
	}

	data, err := report.Spreadsheet(res)
	if err != nil {
		return nil, err
	}

	ref := &domain.BlobRef{
		BlobName:      replaceExt(resultBlobName, ".xlsx"),
		ContainerName: s.containers.Spreadsheet,
	}
	if err := s.store.Upload(ctx, ref.ContainerName, ref.BlobName, data, true); err != nil {
		return nil, err
	}
	s.logger.Info("Spreadsheet uploaded", "blob_name", ref.BlobName, "container", ref.ContainerName)
	return ref, nil
}

func (s *ReportService) load(ctx context.Context, resultBlobName string) (*domain.AnalyzeResult, error) {
	if resultBlobName == "" {
		return nil, apperrors.NewValidationError("ocr_result_blob_name is required")
	}
	payload, err := s.store.Download(ctx, s.containers.Results, resultBlobName)
	if err != nil {
		s.logger.Error("Failed to download OCR result", err, "blob_name", resultBlobName)
		return nil, err
	}
	return report.Decode(payload)
}

// replaceExt swaps everything after the last dot for ext.
func replaceExt(name, ext string) string {
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[:i]
	}
	return name + ext
}
