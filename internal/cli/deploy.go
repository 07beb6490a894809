package cli

import (
	"context"

	"github.com/spf13/cobra"

	"mlflow-algorithmia/internal/app"
)

type deployOptions struct {
	Name     string
	ModelURI string
	Flavor   string
	Config   []string
}

func newCreateCommand() *cobra.Command {
	opts := deployOptions{}
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create an algorithm and deploy a model to it",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd.Context(), cmd, opts, true)
		},
	}
	addDeployFlags(cmd, &opts)
	return cmd
}

func newUpdateCommand() *cobra.Command {
	opts := deployOptions{}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Deploy a new model version to an existing algorithm",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDeploy(cmd.Context(), cmd, opts, false)
		},
	}
	addDeployFlags(cmd, &opts)
	return cmd
}

func addDeployFlags(cmd *cobra.Command, opts *deployOptions) {
	cmd.Flags().StringVar(&opts.Name, "name", "", "Deployment (algorithm) name")
	cmd.Flags().StringVarP(&opts.ModelURI, "model-uri", "m", "", "Local MLflow model directory")
	cmd.Flags().StringVarP(&opts.Flavor, "flavor", "f", "", "Model flavor (accepted for compatibility)")
	cmd.Flags().StringArrayVarP(&opts.Config, "deployment-config", "C", nil, "Deployment config override as key=value")
}

func runDeploy(ctx context.Context, cmd *cobra.Command, opts deployOptions, create bool) error {
	config, err := parseDeploymentConfig(opts.Config)
	if err != nil {
		return err
	}
	service, err := newAppService()
	if err != nil {
		return err
	}
	req := app.DeployRequest{
		Name:     resolveString(cmd, opts.Name, "name", "name"),
		ModelURI: resolveString(cmd, opts.ModelURI, "model_uri", "model-uri"),
		Flavor:   opts.Flavor,
		Config:   config,
	}
	var result app.DeployResult
	if create {
		result, err = service.CreateDeployment(ctx, req)
	} else {
		result, err = service.UpdateDeployment(ctx, req)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), result)
}
