package domain

import "encoding/json"

// AnalyzeResult is the subset of a completed operation payload that reports
// read. Unknown fields are ignored.
type AnalyzeResult struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Result struct {
		AnalyzerID string          `json:"analyzerId,omitempty"`
		Contents   []ContentItem   `json:"contents"`
		Warnings   json.RawMessage `json:"warnings,omitempty"`
	} `json:"result"`
}

// ContentItem is one classified document inside a bundle.
type ContentItem struct {
	Category        string                `json:"category,omitempty"`
	StartPageNumber *int                  `json:"startPageNumber,omitempty"`
	EndPageNumber   *int                  `json:"endPageNumber,omitempty"`
	Markdown        string                `json:"markdown,omitempty"`
	Fields          map[string]FieldValue `json:"fields,omitempty"`
}

// FieldValue is an extracted field. Only the members reports need are typed.
type FieldValue struct {
	Type        string                `json:"type,omitempty"`
	ValueString string                `json:"valueString,omitempty"`
	ValueNumber *float64              `json:"valueNumber,omitempty"`
	ValueDate   string                `json:"valueDate,omitempty"`
	ValueArray  []FieldValue          `json:"valueArray,omitempty"`
	ValueObject map[string]FieldValue `json:"valueObject,omitempty"`
	Content     string                `json:"content,omitempty"`
	Confidence  *float64              `json:"confidence,omitempty"`
}

// BlobRef identifies a published artifact.
type BlobRef struct {
	BlobName      string `json:"blob_name"`
	ContainerName string `json:"container_name"`
}
