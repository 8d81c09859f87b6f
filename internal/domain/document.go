package domain

import (
	"path/filepath"
	"strings"
)

const (
	PrebuiltDocumentAnalyzerID  = "prebuilt-documentAnalyzer"
	OCRResultFileSuffix         = ".result.json"
	LabelFileSuffix             = ".labels.json"
	KnowledgeSourceListFileName = "sources.jsonl"
)

// SupportedDocumentAndTextExtensions is accepted by single-document analyze.
var SupportedDocumentAndTextExtensions = []string{
	".pdf", ".tiff", ".jpg", ".jpeg", ".png", ".bmp", ".heif",
	".docx", ".xlsx", ".pptx",
	".txt", ".html", ".md",
	".eml", ".msg", ".xml",
}

// SupportedDocumentExtensions is the document-only subset used by Pro-mode
// batches, knowledge bases and training data.
var SupportedDocumentExtensions = []string{
	".pdf", ".tiff", ".jpg", ".jpeg", ".png", ".bmp", ".heif",
}

// IsSupportedExtension reports whether ext (with leading dot) is accepted.
func IsSupportedExtension(ext string, documentOnly bool) bool {
	list := SupportedDocumentAndTextExtensions
	if documentOnly {
		list = SupportedDocumentExtensions
	}
	ext = strings.ToLower(ext)
	for _, e := range list {
		if e == ext {
			return true
		}
	}
	return false
}

// IsSupportedFile checks the extension of a path.
func IsSupportedFile(path string, documentOnly bool) bool {
	return IsSupportedExtension(filepath.Ext(path), documentOnly)
}

// ReferenceDocItem is one file prepared for a knowledge-base batch.
type ReferenceDocItem struct {
	Filename       string
	FilePath       string
	ResultFileName string
	// ResultFilePath is set only when the OCR result already exists locally.
	ResultFilePath string
}

// NewReferenceDocItem derives the result artifact name from the file name.
func NewReferenceDocItem(dir, filename string) ReferenceDocItem {
	return ReferenceDocItem{
		Filename:       filename,
		FilePath:       filepath.Join(dir, filename),
		ResultFileName: ResultFileName(filename),
	}
}

// ResultFileName is the OCR result artifact name for a source file.
func ResultFileName(filename string) string { return filename + OCRResultFileSuffix }

// LabelFileName is the label artifact name for a source file.
func LabelFileName(filename string) string { return filename + LabelFileSuffix }

// ManifestEntry is one line of sources.jsonl.
type ManifestEntry struct {
	File       string `json:"file"`
	ResultFile string `json:"resultFile"`
}

// Manifest is the ordered record of processed files.
type Manifest []ManifestEntry
