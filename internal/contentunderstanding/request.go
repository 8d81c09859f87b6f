package contentunderstanding

import (
	"encoding/base64"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

const (
	contentTypeJSON   = "application/json"
	contentTypeBinary = "application/octet-stream"
)

// RequestBody is a ready-to-send submission payload.
type RequestBody struct {
	ContentType string
	Data        []byte
}

type batchInput struct {
	Name string `json:"name"`
	Data string `json:"data"`
}

type batchBody struct {
	Inputs []batchInput `json:"inputs"`
}

type urlBody struct {
	URL string `json:"url"`
}

// RequestBuilder turns a SubmissionTarget into a RequestBody for one
// operation kind.
type RequestBuilder struct {
	kind domain.OperationKind
}

// NewRequestBuilder creates a builder for kind.
func NewRequestBuilder(kind domain.OperationKind) *RequestBuilder {
	return &RequestBuilder{kind: kind}
}

// Build constructs the payload. documentOnly selects the extension allow-list
// applied to directory entries; single files are not inspected here.
func (b *RequestBuilder) Build(target domain.SubmissionTarget, documentOnly bool) (RequestBody, error) {
	switch target.Kind {
	case domain.TargetSingleFile:
		data, err := os.ReadFile(target.Location)
		if err != nil {
			appErr := apperrors.NewInvalidInputError("failed to read file", target.Location)
			appErr.Cause = err
			return RequestBody{}, appErr
		}
		return RequestBody{ContentType: contentTypeBinary, Data: data}, nil

	case domain.TargetDirectory:
		if !b.kind.SupportsBatch() {
			return RequestBody{}, apperrors.NewInvalidInputError(
				"directory targets are not supported for "+string(b.kind), target.Location)
		}
		return buildBatch(target.Location, documentOnly)

	case domain.TargetRemoteURL:
		data, err := json.Marshal(urlBody{URL: target.Location})
		if err != nil {
			return RequestBody{}, apperrors.NewInternalError("failed to encode url body", err)
		}
		return RequestBody{ContentType: contentTypeJSON, Data: data}, nil

	default:
		return RequestBody{}, apperrors.NewInvalidInputError("unknown submission target", target.Kind.String())
	}
}

// buildBatch validates every file under root before reading any of them, so
// one unsupported file fails the whole directory.
func buildBatch(root string, documentOnly bool) (RequestBody, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !domain.IsSupportedFile(path, documentOnly) {
			return apperrors.NewInvalidInputError(
				"file is not a supported document type, remove it or convert it to a supported type", path)
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		if _, ok := apperrors.As(err); ok {
			return RequestBody{}, err
		}
		appErr := apperrors.NewInvalidInputError("failed to walk directory", root)
		appErr.Cause = err
		return RequestBody{}, appErr
	}
	if len(files) == 0 {
		return RequestBody{}, apperrors.NewInvalidInputError("directory contains no documents", root)
	}

	body := batchBody{Inputs: make([]batchInput, 0, len(files))}
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			appErr := apperrors.NewInvalidInputError("failed to read file", path)
			appErr.Cause = err
			return RequestBody{}, appErr
		}
		name, err := flattenName(root, path)
		if err != nil {
			return RequestBody{}, err
		}
		body.Inputs = append(body.Inputs, batchInput{
			Name: name,
			Data: base64.StdEncoding.EncodeToString(data),
		})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return RequestBody{}, apperrors.NewInternalError("failed to encode batch body", err)
	}
	return RequestBody{ContentType: contentTypeJSON, Data: data}, nil
}

// flattenName joins the path segments relative to root with underscores.
func flattenName(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		appErr := apperrors.NewInvalidInputError("file is outside the directory", path)
		appErr.Cause = err
		return "", appErr
	}
	return strings.Join(strings.Split(filepath.ToSlash(rel), "/"), "_"), nil
}
