package knowledge

import (
	"context"
	"os"
	"path/filepath"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"
)

// TrainingItem is one labelled document ready for upload.
type TrainingItem struct {
	Filename   string
	FilePath   string
	LabelPath  string
	ResultPath string
}

// TrainingList returns the top-level documents of folder that take part in
// training: files with no extension or a supported document extension. Each
// must have <file>.labels.json and <file>.result.json next to it.
func TrainingList(folder string) ([]TrainingItem, error) {
	entries, err := os.ReadDir(folder)
	if err != nil {
		appErr := apperrors.NewInvalidInputError("folder must be an existing directory", folder)
		appErr.Cause = err
		return nil, appErr
	}

	var items []TrainingItem
	for _, e := range entries {
		if !isFile(folder, e) {
			continue
		}
		name := e.Name()
		if ext := filepath.Ext(name); ext != "" && !domain.IsSupportedExtension(ext, true) {
			continue
		}

		item := TrainingItem{
			Filename:   name,
			FilePath:   filepath.Join(folder, name),
			LabelPath:  filepath.Join(folder, domain.LabelFileName(name)),
			ResultPath: filepath.Join(folder, domain.ResultFileName(name)),
		}
		for _, companion := range []string{item.LabelPath, item.ResultPath} {
			if _, err := os.Stat(companion); err != nil {
				return nil, apperrors.NewMissingArtifactError(
					"training document "+name+" is missing a companion file", filepath.Base(companion))
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// StageTrainingData uploads every training document with its label and OCR
// result files. Nothing is uploaded unless all documents are complete.
func (b *Builder) StageTrainingData(ctx context.Context, folder string, dest Destination) ([]TrainingItem, error) {
	if dest.Container == "" {
		return nil, apperrors.NewInvalidInputError("destination container must be provided")
	}

	items, err := TrainingList(folder)
	if err != nil {
		return nil, err
	}

	for _, item := range items {
		uploads := []struct{ name, path string }{
			{item.Filename, item.FilePath},
			{filepath.Base(item.LabelPath), item.LabelPath},
			{filepath.Base(item.ResultPath), item.ResultPath},
		}
		for _, u := range uploads {
			if err := b.uploadFile(ctx, dest.Container, dest.Key(u.name), u.path); err != nil {
				return nil, err
			}
		}
		b.Logger.Info("Uploaded training data", "file", item.Filename)
		if b.OnItem != nil {
			b.OnItem(domain.ReferenceDocItem{Filename: item.Filename, FilePath: item.FilePath})
		}
	}
	return items, nil
}
