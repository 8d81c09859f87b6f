package cli

import (
	"doc-intel-pipeline/internal/domain"
	"doc-intel-pipeline/internal/knowledge"

	"github.com/spf13/cobra"
)

func (a *app) newKnowledgeBaseCommand() *cobra.Command {
	var (
		dest        knowledge.Destination
		uploadOnly  bool
		concurrency int
	)

	cmd := &cobra.Command{
		Use:   "knowledge-base <folder>",
		Short: "Publish a folder as an analyzer knowledge base",
		Long: `knowledge-base analyzes every document under folder with the prebuilt
document analyzer, uploads each document with its result, and finally
uploads the sources.jsonl manifest. With --upload-only the existing
<name>.result.json files next to each document are uploaded instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := args[0]
			mode := knowledge.ModeAnalyze
			list := knowledge.AnalyzeList
			if uploadOnly {
				mode = knowledge.ModeUploadOnly
				list = knowledge.UploadOnlyList
			}
			items, err := list(folder)
			if err != nil {
				return err
			}

			store, err := a.backend.Store(a.opts)
			if err != nil {
				return err
			}
			builder := knowledge.NewBuilder(nil, store, a.backend.Logger())
			if mode == knowledge.ModeAnalyze {
				client, err := a.backend.Client(a.opts)
				if err != nil {
					return err
				}
				builder.Analyzer = client
			}
			builder.Policy = a.opts.Policy()
			builder.Concurrency = concurrency

			bar := a.ui.Progress(len(items), mode.String())
			builder.OnItem = func(domain.ReferenceDocItem) { _ = bar.Add(1) }

			manifest, err := builder.Build(cmd.Context(), folder, dest, mode)
			if err != nil {
				return err
			}
			_ = bar.Finish()
			a.ui.Success("Published %d documents to %s/%s", len(manifest), dest.Container, dest.Key(domain.KnowledgeSourceListFileName))
			return nil
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&dest.Container, "container", "", "destination container (required)")
	flags.StringVar(&dest.Prefix, "prefix", "", "blob prefix inside the container")
	flags.BoolVar(&uploadOnly, "upload-only", false, "upload existing result files instead of analyzing")
	flags.IntVar(&concurrency, "concurrency", 1, "documents processed at once")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}

func (a *app) newTrainingDataCommand() *cobra.Command {
	var dest knowledge.Destination

	cmd := &cobra.Command{
		Use:   "training-data <folder>",
		Short: "Upload labeled training documents",
		Long: `training-data uploads every document in folder together with its
<name>.labels.json and <name>.result.json files. Nothing is uploaded if any
document is missing a companion file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := knowledge.TrainingList(args[0])
			if err != nil {
				return err
			}
			store, err := a.backend.Store(a.opts)
			if err != nil {
				return err
			}

			builder := knowledge.NewBuilder(nil, store, a.backend.Logger())
			bar := a.ui.Progress(len(items), "upload")
			builder.OnItem = func(domain.ReferenceDocItem) { _ = bar.Add(1) }

			staged, err := builder.StageTrainingData(cmd.Context(), args[0], dest)
			if err != nil {
				return err
			}
			_ = bar.Finish()
			a.ui.Success("Uploaded %d training documents to %s/%s", len(staged), dest.Container, dest.Key(""))
			return nil
		},
	}
	cmd.Flags().StringVar(&dest.Container, "container", "", "destination container (required)")
	cmd.Flags().StringVar(&dest.Prefix, "prefix", "", "blob prefix inside the container")
	_ = cmd.MarkFlagRequired("container")
	return cmd
}
