package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/spf13/cobra"

	"mlflow-algorithmia/internal/app"
)

func newDeleteCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a deployment and its local working files",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newAppService()
			if err != nil {
				return err
			}
			if err := service.DeleteDeployment(cmd.Context(), app.DeleteRequest{Name: name}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted: %s\n", strings.TrimSpace(name))
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Deployment name")
	return cmd
}

func newGetCommand() *cobra.Command {
	var name string
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show a deployment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			service, err := newAppService()
			if err != nil {
				return err
			}
			deployment, err := service.GetDeployment(cmd.Context(), app.GetRequest{Name: name})
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), deployment)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "Deployment name")
	return cmd
}

func newListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deployments",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), newLocalService().ListDeployments(cmd.Context()))
			return nil
		},
	}
}

type predictOptions struct {
	Name       string
	InputPath  string
	OutputPath string
}

func newPredictCommand() *cobra.Command {
	opts := predictOptions{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Score a JSON input (pandas split orientation) against a deployment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPredict(cmd.Context(), cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "Deployment name")
	cmd.Flags().StringVarP(&opts.InputPath, "input-path", "I", "-", "JSON input file, - for stdin")
	cmd.Flags().StringVarP(&opts.OutputPath, "output-path", "O", "", "Write the prediction to this file instead of stdout")
	return cmd
}

func runPredict(ctx context.Context, cmd *cobra.Command, opts predictOptions) error {
	input, err := readInput(cmd.InOrStdin(), opts.InputPath)
	if err != nil {
		return err
	}
	service, err := newAppService()
	if err != nil {
		return err
	}
	result, err := service.Predict(ctx, app.PredictRequest{Name: opts.Name, Input: json.RawMessage(input)})
	if err != nil {
		return err
	}
	output := append([]byte(result.Result), '\n')
	if strings.TrimSpace(opts.OutputPath) == "" {
		_, err = cmd.OutOrStdout().Write(output)
		return err
	}
	if err := os.WriteFile(opts.OutputPath, output, 0o644); err != nil {
		return errbuilder.New().
			WithCode(errbuilder.CodeInternal).
			WithMsg("failed to write prediction output").
			WithCause(err)
	}
	return nil
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("failed to read prediction input").
			WithCause(err)
	}
	return data, nil
}

func newRunLocalCommand() *cobra.Command {
	opts := deployOptions{}
	cmd := &cobra.Command{
		Use:   "run-local",
		Short: "Explain how to serve a model locally",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return newLocalService().RunLocal(cmd.Context(), app.RunLocalRequest{
				Name:     opts.Name,
				ModelURI: opts.ModelURI,
				Flavor:   opts.Flavor,
			})
		},
	}
	addDeployFlags(cmd, &opts)
	return cmd
}

func newTargetHelpCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "target-help",
		Short: "Describe this deployment target",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), newLocalService().TargetHelp())
		},
	}
}
