// Package cli implements the cuctl command line tool.
package cli

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"doc-intel-pipeline/internal/contentunderstanding"
	"doc-intel-pipeline/internal/domain"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// ServiceClient is the part of the content understanding client the
// commands use.
type ServiceClient interface {
	Analyze(ctx context.Context, analyzerID, location string, policy domain.PollPolicy) (*domain.OperationResult, error)
	Classify(ctx context.Context, classifierID, location string, policy domain.PollPolicy) (*domain.OperationResult, error)
	PollResult(ctx context.Context, sub domain.Submission, policy domain.PollPolicy) (*domain.OperationResult, error)

	ListAnalyzers(ctx context.Context) (json.RawMessage, error)
	GetAnalyzer(ctx context.Context, analyzerID string) (json.RawMessage, error)
	DeleteAnalyzer(ctx context.Context, analyzerID string) error
	BeginCreateAnalyzer(ctx context.Context, analyzerID string, spec contentunderstanding.AnalyzerSpec) (domain.Submission, error)
	BeginCreateClassifier(ctx context.Context, classifierID string, schema map[string]interface{}) (domain.Submission, error)
	GetOperationImage(ctx context.Context, handle domain.OperationHandle, imageID string) ([]byte, error)
}

// Backend builds the collaborators a command needs. Stores are only opened
// by the commands that publish blobs.
type Backend interface {
	Client(opts *Options) (ServiceClient, error)
	Store(opts *Options) (domain.ObjectStore, error)
	Logger() domain.Logger
}

// Options holds the persistent flags.
type Options struct {
	Timeout  time.Duration
	Interval time.Duration
	Store    string
	NoColor  bool
}

// Policy returns the poll policy selected by --timeout and --interval.
func (o *Options) Policy() domain.PollPolicy {
	return domain.PollPolicy{Timeout: o.Timeout, Interval: o.Interval}
}

type app struct {
	backend Backend
	opts    *Options
	ui      *UI
}

// NewRootCommand assembles cuctl. Output goes to out, progress and status
// lines to errOut.
func NewRootCommand(backend Backend, out, errOut io.Writer) *cobra.Command {
	defaults := domain.DefaultPollPolicy()
	a := &app{
		backend: backend,
		opts:    &Options{},
		ui:      NewUI(out, errOut),
	}

	root := &cobra.Command{
		Use:   "cuctl",
		Short: "Content understanding client",
		Long: `cuctl submits documents to the content understanding service, waits for
the long-running operations to finish and prints their results. It also
manages analyzers and stages knowledge-base and training data into blob
storage.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.opts.NoColor {
				color.NoColor = true
			}
			return a.opts.Policy().Validate()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.DurationVar(&a.opts.Timeout, "timeout", defaults.Timeout, "maximum time to wait for an operation")
	flags.DurationVar(&a.opts.Interval, "interval", defaults.Interval, "delay between status queries")
	flags.StringVar(&a.opts.Store, "store", "", "blob store backend (supabase or local), defaults to STORAGE_BACKEND")
	flags.BoolVar(&a.opts.NoColor, "no-color", false, "disable colored output")

	root.AddCommand(
		a.newAnalyzeCommand(),
		a.newClassifyCommand(),
		a.newAnalyzersCommand(),
		a.newClassifiersCommand(),
		a.newKnowledgeBaseCommand(),
		a.newTrainingDataCommand(),
		a.newImageCommand(),
	)
	return root
}

// Execute runs cuctl and reports a failure on errOut.
func Execute(ctx context.Context, backend Backend, args []string, out, errOut io.Writer) error {
	root := NewRootCommand(backend, out, errOut)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		NewUI(out, errOut).Error("%v", err)
		return err
	}
	return nil
}
