package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"
	"path"
	"time"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// OCRPollPolicy bounds a server-side classification run.
var OCRPollPolicy = domain.PollPolicy{Timeout: 920 * time.Second, Interval: 25 * time.Second}

const resultTimestampLayout = "20060102_150405"

// DocumentProcessor is the part of the service client used by the pipeline.
type DocumentProcessor interface {
	Analyze(ctx context.Context, analyzerID, location string, policy domain.PollPolicy) (*domain.OperationResult, error)
	Classify(ctx context.Context, classifierID, location string, policy domain.PollPolicy) (*domain.OperationResult, error)
}

// OCRService runs documents through the analysis service and stores the
// results.
type OCRService struct {
	processor  DocumentProcessor
	store      domain.ObjectStore
	containers domain.Containers
	policy     domain.PollPolicy
	clock      domain.Clock
	logger     domain.Logger
}

func NewOCRService(
	processor DocumentProcessor,
	store domain.ObjectStore,
	containers domain.Containers,
	policy domain.PollPolicy,
	clock domain.Clock,
	logger domain.Logger,
) *OCRService {
	return &OCRService{
		processor:  processor,
		store:      store,
		containers: containers,
		policy:     policy,
		clock:      clock,
		logger:     logger,
	}
}

// PerformOCR classifies the document at blobURL and stores the compact JSON
// result in the results container as <file>_<YYYYMMDD_HHMMSS>.json.
func (s *OCRService) PerformOCR(ctx context.Context, classifierID, blobURL string) (*domain.BlobRef, error) {
	if classifierID == "" {
		return nil, apperrors.NewValidationError("classifier_id is required")
	}
	if blobURL == "" {
		return nil, apperrors.NewValidationError("blob_url is required")
	}

	s.logger.Info("Processing document with classifier", "classifier_id", classifierID, "document", blobURL)
	res, err := s.processor.Classify(ctx, classifierID, blobURL, s.policy)
	if err != nil {
		s.logger.Error("Error processing document", err, "classifier_id", classifierID)
		return nil, err
	}

	var compact bytes.Buffer
	if err := json.Compact(&compact, res.Payload); err != nil {
		return nil, apperrors.NewTransportError("classification result is not valid JSON", 0, err)
	}

	ref := &domain.BlobRef{
		BlobName:      baseName(blobURL) + "_" + s.clock.Now().Format(resultTimestampLayout) + ".json",
		ContainerName: s.containers.Results,
	}
	if err := s.store.Upload(ctx, ref.ContainerName, ref.BlobName, compact.Bytes(), true); err != nil {
		return nil, err
	}
	s.logger.Info("OCR result uploaded", "blob_name", ref.BlobName, "container", ref.ContainerName)
	return ref, nil
}

// Analyze runs analyzerID on location and returns the raw result payload
// without storing it.
func (s *OCRService) Analyze(ctx context.Context, analyzerID, location string) (json.RawMessage, error) {
	if analyzerID == "" {
		analyzerID = domain.PrebuiltDocumentAnalyzerID
	}
	if location == "" {
		return nil, apperrors.NewValidationError("blob_url is required")
	}

	res, err := s.processor.Analyze(ctx, analyzerID, location, s.policy)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

// baseName is the last path segment of a URL, unescaped and without query.
func baseName(rawURL string) string {
	if u, err := url.Parse(rawURL); err == nil && u.Path != "" {
		return path.Base(u.Path)
	}
	return path.Base(rawURL)
}
