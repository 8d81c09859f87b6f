// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"doc-intel-pipeline/internal/domain"
)

// OCRService runs documents through the content understanding service.
type OCRService interface {
	PerformOCR(ctx context.Context, classifierID, blobURL string) (*domain.BlobRef, error)
	Analyze(ctx context.Context, analyzerID, location string) (json.RawMessage, error)
}

// ReportService renders stored OCR results.
type ReportService interface {
	ParseOCR(ctx context.Context, resultBlobName string) (*domain.BlobRef, error)
	CreateSpreadsheet(ctx context.Context, resultBlobName string) (*domain.BlobRef, error)
}

// CleanupService moves processed source documents.
type CleanupService interface {
	CleanUp(ctx context.Context, blobName string) error
}

// PipelineHandler exposes the document pipeline operations.
type PipelineHandler struct {
	ocr     OCRService
	reports ReportService
	cleanup CleanupService
	logger  domain.Logger
}

func NewPipelineHandler(ocr OCRService, reports ReportService, cleanup CleanupService, logger domain.Logger) *PipelineHandler {
	return &PipelineHandler{ocr: ocr, reports: reports, cleanup: cleanup, logger: logger}
}

type performOCRRequest struct {
	ClassifierID string `json:"classifier_id" validate:"required"`
	BlobURL      string `json:"blob_url" validate:"required,url"`
}

type resultBlobRequest struct {
	OCRResultBlobName string `json:"ocr_result_blob_name" validate:"required"`
}

type cleanUpRequest struct {
	IncomingDocsBlobName string `json:"incoming_docs_blob_name" validate:"required"`
}

type analyzeRequest struct {
	AnalyzerID string `json:"analyzer_id"`
	BlobURL    string `json:"blob_url" validate:"required,url"`
}

type artifactResponse struct {
	Success        bool   `json:"success"`
	Message        string `json:"message"`
	ResultBlobName string `json:"result_blob_name"`
	ContainerName  string `json:"container_name"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type analyzeResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

// PerformOCR classifies blob_url with classifier_id and stores the result.
func (h *PipelineHandler) PerformOCR(w http.ResponseWriter, r *http.Request) {
	var req performOCRRequest
	if err := bindParams(r, &req); err != nil {
		writeAppError(w, h.logger, "perform_ocr", err)
		return
	}

	ref, err := h.ocr.PerformOCR(r.Context(), req.ClassifierID, req.BlobURL)
	if err != nil {
		writeAppError(w, h.logger, "perform_ocr", err)
		return
	}
	writeJSON(w, http.StatusOK, artifactFor("OCR processing completed successfully", ref))
}

// ParseOCR writes the text summary for a stored result.
func (h *PipelineHandler) ParseOCR(w http.ResponseWriter, r *http.Request) {
	var req resultBlobRequest
	if err := bindParams(r, &req); err != nil {
		writeAppError(w, h.logger, "parse_ocr", err)
		return
	}

	ref, err := h.reports.ParseOCR(r.Context(), req.OCRResultBlobName)
	if err != nil {
		writeAppError(w, h.logger, "parse_ocr", err)
		return
	}
	writeJSON(w, http.StatusOK, artifactFor("Summary report created successfully", ref))
}

// CreateSpreadsheet writes the tabular export for a stored result.
func (h *PipelineHandler) CreateSpreadsheet(w http.ResponseWriter, r *http.Request) {
	var req resultBlobRequest
	if err := bindParams(r, &req); err != nil {
		writeAppError(w, h.logger, "create_spreadsheet", err)
		return
	}

	ref, err := h.reports.CreateSpreadsheet(r.Context(), req.OCRResultBlobName)
	if err != nil {
		writeAppError(w, h.logger, "create_spreadsheet", err)
		return
	}
	writeJSON(w, http.StatusOK, artifactFor("Spreadsheet created successfully", ref))
}

// CleanUp moves a processed document out of the incoming container.
func (h *PipelineHandler) CleanUp(w http.ResponseWriter, r *http.Request) {
	var req cleanUpRequest
	if err := bindParams(r, &req); err != nil {
		writeAppError(w, h.logger, "clean_up", err)
		return
	}

	if err := h.cleanup.CleanUp(r.Context(), req.IncomingDocsBlobName); err != nil {
		writeAppError(w, h.logger, "clean_up", err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{
		Success: true,
		Message: fmt.Sprintf("Blob '%s' cleaned up successfully", req.IncomingDocsBlobName),
	})
}

// Analyze runs an analyzer and returns the payload inline.
func (h *PipelineHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if err := bindParams(r, &req); err != nil {
		writeAppError(w, h.logger, "analyze", err)
		return
	}

	payload, err := h.ocr.Analyze(r.Context(), req.AnalyzerID, req.BlobURL)
	if err != nil {
		writeAppError(w, h.logger, "analyze", err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{Success: true, Result: payload})
}

func artifactFor(message string, ref *domain.BlobRef) artifactResponse {
	return artifactResponse{
		Success:        true,
		Message:        message,
		ResultBlobName: ref.BlobName,
		ContainerName:  ref.ContainerName,
	}
}
