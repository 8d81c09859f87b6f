package contentunderstanding

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// AnalyzerSpec describes an analyzer to create. TemplatePath, when it points
// at an existing file, takes precedence over Template.
type AnalyzerSpec struct {
	Template     map[string]interface{}
	TemplatePath string

	TrainingContainerURL string
	TrainingPrefix       string

	KnowledgeContainerURL string
	KnowledgePrefix       string
}

// ListAnalyzers returns the raw analyzer listing.
func (c *Client) ListAnalyzers(ctx context.Context) (json.RawMessage, error) {
	resp, err := c.transport.Do(ctx, http.MethodGet, c.analyzerURL(""), c.headers, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// GetAnalyzer returns one analyzer definition.
func (c *Client) GetAnalyzer(ctx context.Context, analyzerID string) (json.RawMessage, error) {
	if analyzerID == "" {
		return nil, apperrors.NewInvalidInputError("analyzer ID must be provided")
	}
	resp, err := c.transport.Do(ctx, http.MethodGet, c.analyzerURL(analyzerID), c.headers, nil)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// DeleteAnalyzer removes an analyzer.
func (c *Client) DeleteAnalyzer(ctx context.Context, analyzerID string) error {
	if analyzerID == "" {
		return apperrors.NewInvalidInputError("analyzer ID must be provided")
	}
	if _, err := c.transport.Do(ctx, http.MethodDelete, c.analyzerURL(analyzerID), c.headers, nil); err != nil {
		return err
	}
	c.logger.Info("Analyzer deleted", "analyzer_id", analyzerID)
	return nil
}

// BeginCreateAnalyzer PUTs an analyzer definition. Creation is itself a
// long-running operation; poll the returned submission.
func (c *Client) BeginCreateAnalyzer(ctx context.Context, analyzerID string, spec AnalyzerSpec) (domain.Submission, error) {
	if analyzerID == "" {
		return domain.Submission{}, apperrors.NewInvalidInputError("analyzer ID must be provided")
	}

	template, err := loadTemplate(spec)
	if err != nil {
		return domain.Submission{}, err
	}

	if spec.TrainingContainerURL != "" && spec.TrainingPrefix != "" {
		template["trainingData"] = map[string]string{
			"containerUrl": spec.TrainingContainerURL,
			"kind":         "blob",
			"prefix":       withTrailingSlash(spec.TrainingPrefix),
		}
	}
	if spec.KnowledgeContainerURL != "" && spec.KnowledgePrefix != "" {
		template["knowledgeSources"] = []map[string]string{{
			"kind":         "reference",
			"containerUrl": spec.KnowledgeContainerURL,
			"prefix":       withTrailingSlash(spec.KnowledgePrefix),
			"fileListPath": domain.KnowledgeSourceListFileName,
		}}
	}

	data, err := json.Marshal(template)
	if err != nil {
		return domain.Submission{}, apperrors.NewInvalidInputError("analyzer template is not valid JSON", err.Error())
	}

	sub, err := c.submitter.SubmitMethod(ctx, http.MethodPut, c.analyzerURL(analyzerID), c.requestHeaders(),
		RequestBody{ContentType: contentTypeJSON, Data: data})
	if err != nil {
		return domain.Submission{}, err
	}
	c.logger.Info("Analyzer create request accepted", "analyzer_id", analyzerID)
	return sub, nil
}

// BeginCreateClassifier PUTs a classifier schema.
func (c *Client) BeginCreateClassifier(ctx context.Context, classifierID string, schema map[string]interface{}) (domain.Submission, error) {
	if len(schema) == 0 {
		return domain.Submission{}, apperrors.NewInvalidInputError("classifier schema must be provided")
	}
	if classifierID == "" {
		return domain.Submission{}, apperrors.NewInvalidInputError("classifier ID must be provided")
	}

	data, err := json.Marshal(schema)
	if err != nil {
		return domain.Submission{}, apperrors.NewInvalidInputError("classifier schema is not valid JSON", err.Error())
	}

	sub, err := c.submitter.SubmitMethod(ctx, http.MethodPut, c.classifierURL(classifierID), c.requestHeaders(),
		RequestBody{ContentType: contentTypeJSON, Data: data})
	if err != nil {
		return domain.Submission{}, err
	}
	c.logger.Info("Classifier create request accepted", "classifier_id", classifierID)
	return sub, nil
}

// GetOperationImage fetches an image extracted by a completed analyze
// operation.
func (c *Client) GetOperationImage(ctx context.Context, handle domain.OperationHandle, imageID string) ([]byte, error) {
	if handle == "" {
		return nil, apperrors.NewMissingOperationHandleError("operation location not found")
	}
	if imageID == "" {
		return nil, apperrors.NewInvalidInputError("image ID must be provided")
	}

	base, _, _ := strings.Cut(string(handle), "?api-version")
	imageURL := base + "/files/" + imageID + "?api-version=" + c.apiVersion

	resp, err := c.transport.Do(ctx, http.MethodGet, imageURL, c.headers, nil)
	if err != nil {
		return nil, err
	}
	if ct := resp.Header.Get("Content-Type"); ct != "image/jpeg" {
		return nil, apperrors.NewTransportError("unexpected image content type "+ct, resp.StatusCode, nil)
	}
	return resp.Body, nil
}

func loadTemplate(spec AnalyzerSpec) (map[string]interface{}, error) {
	if spec.TemplatePath != "" {
		if data, err := os.ReadFile(spec.TemplatePath); err == nil {
			var tmpl map[string]interface{}
			if err := json.Unmarshal(data, &tmpl); err != nil {
				appErr := apperrors.NewInvalidInputError("analyzer template is not valid JSON", spec.TemplatePath)
				appErr.Cause = err
				return nil, appErr
			}
			return tmpl, nil
		}
	}

	if len(spec.Template) == 0 {
		return nil, apperrors.NewInvalidInputError("analyzer schema must be provided")
	}

	// Copy so the caller's template is not mutated.
	tmpl := make(map[string]interface{}, len(spec.Template)+2)
	for k, v := range spec.Template {
		tmpl[k] = v
	}
	return tmpl, nil
}

func withTrailingSlash(prefix string) string {
	if strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
