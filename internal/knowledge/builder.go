package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"doc-intel-pipeline/internal/domain"
	apperrors "doc-intel-pipeline/pkg/errors"

	"golang.org/x/sync/errgroup"
)

// Mode selects how OCR results are obtained.
type Mode int

const (
	// ModeAnalyze runs the prebuilt document analyzer on every file.
	ModeAnalyze Mode = iota
	// ModeUploadOnly reuses <file>.result.json files already on disk.
	ModeUploadOnly
)

func (m Mode) String() string {
	if m == ModeUploadOnly {
		return "upload-only"
	}
	return "analyze"
}

// DocumentAnalyzer is the slice of the service client the builder needs.
type DocumentAnalyzer interface {
	Analyze(ctx context.Context, analyzerID, location string, policy domain.PollPolicy) (*domain.OperationResult, error)
}

// Destination is where artifacts are published.
type Destination struct {
	Container string
	Prefix    string
}

// Key joins the normalised prefix and name.
func (d Destination) Key(name string) string {
	return normalizePrefix(d.Prefix) + name
}

// Builder publishes a knowledge base: each source file, its OCR result and
// finally the sources.jsonl manifest.
type Builder struct {
	Analyzer DocumentAnalyzer
	Store    domain.ObjectStore
	Logger   domain.Logger
	Policy   domain.PollPolicy

	// Concurrency > 1 processes items in parallel. The manifest keeps
	// enumeration order either way.
	Concurrency int

	// OnItem, if set, is called after each item is published. It may be
	// called from several goroutines when Concurrency > 1.
	OnItem func(domain.ReferenceDocItem)
}

// NewBuilder creates a sequential builder with the default poll policy.
func NewBuilder(analyzer DocumentAnalyzer, store domain.ObjectStore, logger domain.Logger) *Builder {
	return &Builder{
		Analyzer:    analyzer,
		Store:       store,
		Logger:      logger,
		Policy:      domain.DefaultPollPolicy(),
		Concurrency: 1,
	}
}

// Build lists folder for mode, publishes every item and then the manifest.
// The listing is fully validated before the first network call, and the
// manifest is written only if every item succeeded.
func (b *Builder) Build(ctx context.Context, folder string, dest Destination, mode Mode) (domain.Manifest, error) {
	if dest.Container == "" {
		return nil, apperrors.NewInvalidInputError("destination container must be provided")
	}

	var (
		items []domain.ReferenceDocItem
		err   error
	)
	if mode == ModeUploadOnly {
		items, err = UploadOnlyList(folder)
	} else {
		items, err = AnalyzeList(folder)
	}
	if err != nil {
		return nil, err
	}

	b.Logger.Info("Generating knowledge base", "folder", folder, "container", dest.Container,
		"prefix", normalizePrefix(dest.Prefix), "mode", mode.String(), "items", len(items))

	manifest := make(domain.Manifest, len(items))
	process := func(ctx context.Context, i int) error {
		item := items[i]
		var perr error
		if mode == ModeUploadOnly {
			perr = b.uploadExisting(ctx, dest, item)
		} else {
			perr = b.analyzeAndUpload(ctx, dest, item)
		}
		if perr != nil {
			return perr
		}
		manifest[i] = domain.ManifestEntry{File: item.Filename, ResultFile: item.ResultFileName}
		if b.OnItem != nil {
			b.OnItem(item)
		}
		return nil
	}

	if b.Concurrency > 1 {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(b.Concurrency)
		for i := range items {
			g.Go(func() error { return process(gctx, i) })
		}
		err = g.Wait()
	} else {
		for i := range items {
			if err = process(ctx, i); err != nil {
				break
			}
		}
	}
	if err != nil {
		return nil, err
	}

	key := dest.Key(domain.KnowledgeSourceListFileName)
	if err := b.Store.Upload(ctx, dest.Container, key, EncodeManifest(manifest), true); err != nil {
		return nil, err
	}
	b.Logger.Info("Uploaded knowledge source list", "key", key, "entries", len(manifest))
	return manifest, nil
}

func (b *Builder) analyzeAndUpload(ctx context.Context, dest Destination, item domain.ReferenceDocItem) error {
	b.Logger.Info("Analyzing result", "file", item.Filename)
	res, err := b.Analyzer.Analyze(ctx, domain.PrebuiltDocumentAnalyzerID, item.FilePath, b.Policy)
	if err != nil {
		b.Logger.Error("Failed to get analyze result, consider retrying or removing this file", err,
			"file", item.Filename)
		return err
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, res.Payload, "", "    "); err != nil {
		return apperrors.NewTransportError("analyze result is not valid JSON", 0, err)
	}
	if err := b.upload(ctx, dest.Container, dest.Key(item.ResultFileName), pretty.Bytes()); err != nil {
		return err
	}
	return b.uploadFile(ctx, dest.Container, dest.Key(item.Filename), item.FilePath)
}

func (b *Builder) uploadExisting(ctx context.Context, dest Destination, item domain.ReferenceDocItem) error {
	b.Logger.Info("Using existing result", "file", item.Filename)
	if err := b.uploadFile(ctx, dest.Container, dest.Key(item.Filename), item.FilePath); err != nil {
		return err
	}
	return b.uploadFile(ctx, dest.Container, dest.Key(item.ResultFileName), item.ResultFilePath)
}

func (b *Builder) uploadFile(ctx context.Context, container, key, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		appErr := apperrors.NewInvalidInputError("failed to read file", path)
		appErr.Cause = err
		return appErr
	}
	return b.upload(ctx, container, key, data)
}

func (b *Builder) upload(ctx context.Context, container, key string, data []byte) error {
	if err := b.Store.Upload(ctx, container, key, data, true); err != nil {
		return fmt.Errorf("upload %s/%s: %w", container, key, err)
	}
	b.Logger.Debug("Uploaded blob", "container", container, "key", key, "bytes", len(data))
	return nil
}

func normalizePrefix(prefix string) string {
	if prefix == "" || strings.HasSuffix(prefix, "/") {
		return prefix
	}
	return prefix + "/"
}
