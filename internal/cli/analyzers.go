package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"doc-intel-pipeline/internal/contentunderstanding"

	"github.com/spf13/cobra"
)

func (a *app) newAnalyzersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyzers",
		Short: "Manage custom analyzers",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List analyzers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}
			body, err := client.ListAnalyzers(cmd.Context())
			if err != nil {
				return err
			}
			return a.ui.JSON(body)
		},
	}

	get := &cobra.Command{
		Use:   "get <analyzer-id>",
		Short: "Show an analyzer definition",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}
			body, err := client.GetAnalyzer(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.ui.JSON(body)
		},
	}

	del := &cobra.Command{
		Use:   "delete <analyzer-id>",
		Short: "Delete an analyzer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}
			if err := client.DeleteAnalyzer(cmd.Context(), args[0]); err != nil {
				return err
			}
			a.ui.Success("Analyzer %s deleted", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, get, del, a.newCreateAnalyzerCommand())
	return cmd
}

func (a *app) newCreateAnalyzerCommand() *cobra.Command {
	var spec contentunderstanding.AnalyzerSpec

	cmd := &cobra.Command{
		Use:   "create <analyzer-id>",
		Short: "Create an analyzer from a JSON template and wait until it is ready",
		Long: `Create submits the analyzer template, optionally pointing it at staged
training data and a knowledge base, and polls the creation operation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}

			sub, err := client.BeginCreateAnalyzer(cmd.Context(), args[0], spec)
			if err != nil {
				return err
			}
			a.ui.Info("Creating analyzer %s (request %s)", args[0], sub.RequestID)

			res, err := client.PollResult(cmd.Context(), sub, a.opts.Policy())
			if err != nil {
				return err
			}
			a.ui.Success("Analyzer %s created", args[0])
			return a.ui.JSON(res.Payload)
		},
	}
	flags := cmd.Flags()
	flags.StringVar(&spec.TemplatePath, "template", "", "path to the analyzer template JSON (required)")
	flags.StringVar(&spec.TrainingContainerURL, "training-container-url", "", "SAS URL of the training data container")
	flags.StringVar(&spec.TrainingPrefix, "training-prefix", "", "blob prefix of the training data")
	flags.StringVar(&spec.KnowledgeContainerURL, "knowledge-container-url", "", "SAS URL of the knowledge base container")
	flags.StringVar(&spec.KnowledgePrefix, "knowledge-prefix", "", "blob prefix of the knowledge base")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func (a *app) newClassifiersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classifiers",
		Short: "Manage classifiers",
	}

	var schemaPath string
	create := &cobra.Command{
		Use:   "create <classifier-id>",
		Short: "Create a classifier from a JSON schema and wait until it is ready",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, err := readSchema(schemaPath)
			if err != nil {
				return err
			}
			client, err := a.backend.Client(a.opts)
			if err != nil {
				return err
			}

			sub, err := client.BeginCreateClassifier(cmd.Context(), args[0], schema)
			if err != nil {
				return err
			}
			a.ui.Info("Creating classifier %s (request %s)", args[0], sub.RequestID)

			res, err := client.PollResult(cmd.Context(), sub, a.opts.Policy())
			if err != nil {
				return err
			}
			a.ui.Success("Classifier %s created", args[0])
			return a.ui.JSON(res.Payload)
		},
	}
	create.Flags().StringVar(&schemaPath, "schema", "", "path to the classifier schema JSON (required)")
	_ = create.MarkFlagRequired("schema")

	cmd.AddCommand(create)
	return cmd
}

func readSchema(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	var schema map[string]interface{}
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("schema %s is not a JSON object: %w", path, err)
	}
	return schema, nil
}
