package domain

import (
	"os"
	"strings"

	apperrors "doc-intel-pipeline/pkg/errors"
)

// TargetKind tags the shape of a SubmissionTarget.
type TargetKind int

const (
	TargetSingleFile TargetKind = iota + 1
	TargetDirectory
	TargetRemoteURL
)

func (k TargetKind) String() string {
	switch k {
	case TargetSingleFile:
		return "file"
	case TargetDirectory:
		return "directory"
	case TargetRemoteURL:
		return "url"
	default:
		return "unknown"
	}
}

// SubmissionTarget is what gets submitted: a local file, a local directory
// or a remote URL.
type SubmissionTarget struct {
	Kind     TargetKind
	Location string
}

// FileTarget, DirectoryTarget and URLTarget build targets without touching
// the filesystem.
func FileTarget(path string) SubmissionTarget      { return SubmissionTarget{Kind: TargetSingleFile, Location: path} }
func DirectoryTarget(path string) SubmissionTarget { return SubmissionTarget{Kind: TargetDirectory, Location: path} }
func URLTarget(url string) SubmissionTarget        { return SubmissionTarget{Kind: TargetRemoteURL, Location: url} }

// ParseSubmissionTarget classifies a location. Existing local paths win over
// URL detection.
func ParseSubmissionTarget(location string) (SubmissionTarget, error) {
	if location == "" {
		return SubmissionTarget{}, apperrors.NewInvalidInputError("file location must be provided")
	}

	if info, err := os.Stat(location); err == nil {
		switch {
		case info.IsDir():
			return DirectoryTarget(location), nil
		case info.Mode().IsRegular():
			return FileTarget(location), nil
		default:
			return SubmissionTarget{}, apperrors.NewInvalidInputError(
				"file location must be a valid and supported file or directory path", location)
		}
	}

	if strings.Contains(location, "https://") || strings.Contains(location, "http://") {
		return URLTarget(location), nil
	}

	return SubmissionTarget{}, apperrors.NewInvalidInputError("file location must be a valid path or URL", location)
}
