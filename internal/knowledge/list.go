// Package knowledge stages local reference and training documents in an
// object store so an analyzer can use them as knowledge sources or training
// data.
package knowledge

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// AnalyzeList returns every file under folder, recursively, in lexical walk
// order. Any file that is not a supported document fails the whole listing.
func AnalyzeList(folder string) ([]domain.ReferenceDocItem, error) {
	var items []domain.ReferenceDocItem
	err := walkFiles(folder, func(dir, name string, _ map[string]bool) error {
		if !domain.IsSupportedFile(name, true) {
			return apperrors.NewInvalidInputError(
				"file is not a supported document type, remove it or convert it to a supported type",
				filepath.Join(dir, name))
		}
		items = append(items, domain.NewReferenceDocItem(dir, name))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return items, checkUniqueNames(items)
}

// UploadOnlyList returns the documents under folder that already carry an
// OCR result next to them. Result files are accepted only alongside their
// supported source document.
func UploadOnlyList(folder string) ([]domain.ReferenceDocItem, error) {
	var items []domain.ReferenceDocItem
	err := walkFiles(folder, func(dir, name string, siblings map[string]bool) error {
		switch {
		case domain.IsSupportedFile(name, true):
			item := domain.NewReferenceDocItem(dir, name)
			if !siblings[item.ResultFileName] {
				return apperrors.NewMissingArtifactError(
					"result file does not exist, run analyze first or remove the file",
					filepath.Join(dir, item.ResultFileName))
			}
			item.ResultFilePath = filepath.Join(dir, item.ResultFileName)
			items = append(items, item)
			return nil

		case strings.HasSuffix(name, domain.OCRResultFileSuffix):
			source := strings.TrimSuffix(name, domain.OCRResultFileSuffix)
			if !siblings[source] {
				return apperrors.NewInvalidInputError(
					"result file does not correspond to an original file, remove it",
					filepath.Join(dir, name))
			}
			if !domain.IsSupportedFile(source, true) {
				return apperrors.NewInvalidInputError(
					"original file is not a supported document type, remove it and its result file",
					filepath.Join(dir, source))
			}
			return nil

		default:
			return apperrors.NewInvalidInputError(
				"file is not a supported document type, remove it or convert it to a supported type",
				filepath.Join(dir, name))
		}
	})
	if err != nil {
		return nil, err
	}
	return items, checkUniqueNames(items)
}

// walkFiles calls fn for each file under root, symlinks to files included,
// with the names of the other files in the same directory.
func walkFiles(root string, fn func(dir, name string, siblings map[string]bool) error) error {
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return apperrors.NewInvalidInputError("folder must be an existing directory", root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			appErr := apperrors.NewInvalidInputError("failed to read folder", path)
			appErr.Cause = err
			return appErr
		}
		if !d.IsDir() {
			return nil
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			appErr := apperrors.NewInvalidInputError("failed to read folder", path)
			appErr.Cause = err
			return appErr
		}
		siblings := make(map[string]bool, len(entries))
		var files []string
		for _, e := range entries {
			if isFile(path, e) {
				siblings[e.Name()] = true
				files = append(files, e.Name())
			}
		}
		for _, name := range files {
			if err := fn(path, name, siblings); err != nil {
				return err
			}
		}
		return nil
	})
}

// isFile reports whether e is a regular file or a symlink that resolves to
// one. Broken links are skipped.
func isFile(dir string, e fs.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(filepath.Join(dir, e.Name()))
	return err == nil && info.Mode().IsRegular()
}

// Items are published flat under one prefix, so two sources with the same
// base name in different subfolders would overwrite each other.
func checkUniqueNames(items []domain.ReferenceDocItem) error {
	seen := make(map[string]string, len(items))
	for _, it := range items {
		if prev, ok := seen[it.Filename]; ok {
			return apperrors.NewInvalidInputError(
				"duplicate file name in folder tree: "+prev+" and "+it.FilePath, it.Filename)
		}
		seen[it.Filename] = it.FilePath
	}
	return nil
}
