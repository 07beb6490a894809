package cli

import (
	"context"
	"strings"

	"github.com/spf13/cobra"

	"mlflow-algorithmia/internal/app"
)

type requirementsOptions struct {
	ModelURI  string
	CondaFile string
	Config    []string
	Output    string
	JSON      bool
}

func newRequirementsCommand() *cobra.Command {
	opts := requirementsOptions{}
	cmd := &cobra.Command{
		Use:   "requirements",
		Short: "Print the pip requirements derived from a model's conda environment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRequirements(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVarP(&opts.ModelURI, "model-uri", "m", "", "Local MLflow model directory")
	cmd.Flags().StringVar(&opts.CondaFile, "conda-file", "", "Conda environment file, overrides --model-uri")
	cmd.Flags().StringArrayVarP(&opts.Config, "deployment-config", "C", nil, "Config override as key=value")
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Write requirements.txt to this path")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "Print name, channels and requirements as JSON")
	return cmd
}

func runRequirements(ctx context.Context, cmd *cobra.Command, opts requirementsOptions) error {
	config, err := parseDeploymentConfig(opts.Config)
	if err != nil {
		return err
	}
	result, err := newLocalService().Requirements(ctx, app.RequirementsRequest{
		ModelURI: resolveString(cmd, opts.ModelURI, "model_uri", "model-uri"),
		EnvFile:  opts.CondaFile,
		Output:   opts.Output,
		Config:   config,
	})
	if err != nil {
		return err
	}
	if opts.JSON {
		return printJSON(cmd.OutOrStdout(), result)
	}
	if result.Output != "" {
		return nil
	}
	content := strings.Join(result.Requirements, "\n")
	if content != "" {
		content += "\n"
	}
	_, err = cmd.OutOrStdout().Write([]byte(content))
	return err
}
