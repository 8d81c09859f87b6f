package contentunderstanding

import (
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestBuild_SingleFileIsRawBytes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invoice.pdf")
	writeFile(t, path, "%PDF-1.7")

	body, err := NewRequestBuilder(domain.KindAnalyze).Build(domain.FileTarget(path), true)
	require.NoError(t, err)
	assert.Equal(t, "application/octet-stream", body.ContentType)
	assert.Equal(t, []byte("%PDF-1.7"), body.Data)
}

func TestBuild_RemoteURLIsJSON(t *testing.T) {
	body, err := NewRequestBuilder(domain.KindClassify).Build(domain.URLTarget("https://example.com/a.pdf"), true)
	require.NoError(t, err)
	assert.Equal(t, "application/json", body.ContentType)
	assert.JSONEq(t, `{"url":"https://example.com/a.pdf"}`, string(body.Data))
}

func TestBuild_DirectoryFlattensNestedNames(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "A")
	writeFile(t, filepath.Join(dir, "sub", "deeper", "b.png"), "B")

	body, err := NewRequestBuilder(domain.KindAnalyze).Build(domain.DirectoryTarget(dir), true)
	require.NoError(t, err)
	assert.Equal(t, "application/json", body.ContentType)

	var decoded batchBody
	require.NoError(t, json.Unmarshal(body.Data, &decoded))
	require.Len(t, decoded.Inputs, 2)

	got := map[string]string{}
	for _, in := range decoded.Inputs {
		raw, err := base64.StdEncoding.DecodeString(in.Data)
		require.NoError(t, err)
		got[in.Name] = string(raw)
	}
	assert.Equal(t, map[string]string{"a.pdf": "A", "sub_deeper_b.png": "B"}, got)
}

func TestBuild_DirectoryRejectsUnsupportedFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "A")
	bad := filepath.Join(dir, "notes", "readme.txt")
	writeFile(t, bad, "text")

	_, err := NewRequestBuilder(domain.KindAnalyze).Build(domain.DirectoryTarget(dir), true)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))

	appErr, ok := apperrors.As(err)
	require.True(t, ok)
	assert.Equal(t, bad, appErr.Details)
}

func TestBuild_DirectoryAllowsTextWhenNotDocumentOnly(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "text")

	_, err := NewRequestBuilder(domain.KindAnalyze).Build(domain.DirectoryTarget(dir), false)
	assert.NoError(t, err)
}

func TestBuild_EmptyDirectory(t *testing.T) {
	_, err := NewRequestBuilder(domain.KindAnalyze).Build(domain.DirectoryTarget(t.TempDir()), true)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}

func TestBuild_ClassifyRejectsDirectory(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.pdf"), "A")

	_, err := NewRequestBuilder(domain.KindClassify).Build(domain.DirectoryTarget(dir), true)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}

func TestBuild_MissingFile(t *testing.T) {
	_, err := NewRequestBuilder(domain.KindAnalyze).Build(domain.FileTarget(filepath.Join(t.TempDir(), "gone.pdf")), true)
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInvalidInput))
}
