package cli

import (
	"os"

	"doc-intel-pipeline/internal/domain"

	"github.com/spf13/cobra"
)

func (a *app) newAnalyzeCommand() *cobra.Command {
	var analyzerID, output string

	cmd := &cobra.Command{
		Use:   "analyze <file|dir|url>",
		Short: "Analyze a document, a folder of documents or a URL",
		Long: `Analyze submits the target to an analyzer, waits for the operation to
finish and prints the result. A folder is sent as one batch; only document
file types are accepted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}

			a.ui.Info("Analyzing %s with %s", args[0], analyzerID)
			res, err := client.Analyze(cmd.Context(), analyzerID, args[0], a.opts.Policy())
			if err != nil {
				return err
			}
			return a.emitResult(res, output)
		},
	}
	cmd.Flags().StringVar(&analyzerID, "analyzer", domain.PrebuiltDocumentAnalyzerID, "analyzer id")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a file instead of stdout")
	return cmd
}

func (a *app) newClassifyCommand() *cobra.Command {
	var classifierID, output string

	cmd := &cobra.Command{
		Use:   "classify <file|dir|url>",
		Short: "Classify a document with a classifier",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}

			a.ui.Info("Classifying %s with %s", args[0], classifierID)
			res, err := client.Classify(cmd.Context(), classifierID, args[0], a.opts.Policy())
			if err != nil {
				return err
			}
			return a.emitResult(res, output)
		},
	}
	cmd.Flags().StringVar(&classifierID, "classifier", "", "classifier id (required)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the result to a file instead of stdout")
	_ = cmd.MarkFlagRequired("classifier")
	return cmd
}

func (a *app) newImageCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "image <operation-location> <image-id>",
		Short: "Download an image extracted by a finished operation",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}

			data, err := client.GetOperationImage(cmd.Context(), domain.OperationHandle(args[0]), args[1])
			if err != nil {
				return err
			}
			if output == "" {
				output = args[1] + ".jpg"
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return err
			}
			a.ui.Success("Saved %s (%d bytes)", output, len(data))
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "destination file (defaults to <image-id>.jpg)")
	return cmd
}

func (a *app) emitResult(res *domain.OperationResult, output string) error {
	a.ui.Success("Operation %s %s", res.ID, res.Status)
	if output == "" {
		return a.ui.JSON(res.Payload)
	}
	if err := os.WriteFile(output, res.Payload, 0o644); err != nil {
		return err
	}
	a.ui.Success("Result written to %s", output)
	return nil
}
