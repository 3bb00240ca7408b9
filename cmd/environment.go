package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	m "conda.store/pkg/condastore/internal/model"
)

var envNamespaceFlag string
var envSpecFileFlag string
var envNoWaitFlag bool

const environmentLongDescription = `Manage conda environments on the server.

Creating an environment submits a conda specification file; the server
queues a build and this client waits for it to finish unless --no-wait is
given.`

// environmentCmd groups environment subcommands.
var environmentCmd = newEnvironmentCmd()

func newEnvironmentCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "environment",
		Aliases: []string{"env"},
		Short:   "Manage environments",
		Long:    environmentLongDescription,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newEnvironmentListCmd())
	cmd.AddCommand(newEnvironmentCreateCmd())
	cmd.AddCommand(newEnvironmentShowCmd())
	cmd.AddCommand(newEnvironmentDeleteCmd())

	return cmd
}

func newEnvironmentListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list [namespaces...]",
		Short: "List environments, optionally filtered by namespace",
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if len(args) == 0 {
				environments, err := client.ListEnvironments(ctx, "")
				if err != nil {
					return describeError(err)
				}

				return ui.DisplayEnvironments(ctx, environments)
			}

			// One fetch per namespace; the server filters server-side.
			group, groupCtx := errgroup.WithContext(ctx)
			results := make([][]m.Environment, len(args))

			for i, namespace := range args {
				group.Go(func() error {
					environments, err := client.ListEnvironments(groupCtx, namespace)
					if err != nil {
						return err
					}

					results[i] = environments

					return nil
				})
			}

			if err := group.Wait(); err != nil {
				return describeError(err)
			}

			var environments []m.Environment
			for _, page := range results {
				environments = append(environments, page...)
			}

			return ui.DisplayEnvironments(ctx, environments)
		},
	}
}

func newEnvironmentCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Build an environment from a specification file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := os.ReadFile(envSpecFileFlag)
			if err != nil {
				return fmt.Errorf("read specification %s: %w", envSpecFileFlag, err)
			}

			spec, err := m.ParseSpecification(raw)
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx, cancel := waitContext()
			defer cancel()

			buildID, err := client.CreateSpecification(ctx, envNamespaceFlag, string(raw))
			if err != nil {
				return describeError(err)
			}

			ui.DisplayMessage(ctx, "submitted %s to %s, build %d", spec.Name, envNamespaceFlag, buildID)

			if envNoWaitFlag {
				return nil
			}

			build, err := client.WaitForBuild(ctx, buildID, pollInterval())
			if err != nil {
				return err
			}

			if !build.Status.Succeeded() {
				return fmt.Errorf("build %d ended %s", buildID, build.Status)
			}

			ui.DisplayMessage(ctx, "environment %s/%s built in %s", envNamespaceFlag, spec.Name, build.Duration().Round(time.Second))

			return nil
		},
	}

	cmd.Flags().StringVarP(&envNamespaceFlag, "namespace", "n", "default", "namespace to build the environment in")
	cmd.Flags().StringVarP(&envSpecFileFlag, "file", "f", "", "conda environment specification file")
	cmd.Flags().BoolVar(&envNoWaitFlag, "no-wait", false, "submit the specification without waiting for the build")
	cobra.CheckErr(cmd.MarkFlagRequired("file"))

	return cmd
}

func newEnvironmentShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <namespace> <name>",
		Short: "Show one environment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			environment, err := client.GetEnvironment(ctx, args[0], args[1])
			if err != nil {
				return describeError(err)
			}

			if viper.GetString(outputConfigKey) == outputFormatYAML {
				encoded, err := yaml.Marshal(environment)
				if err != nil {
					return fmt.Errorf("encode environment: %w", err)
				}

				cmd.Print(string(encoded))

				return nil
			}

			return ui.DisplayEnvironments(ctx, []m.Environment{environment})
		},
	}
}

func newEnvironmentDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <namespace> <name>",
		Short: "Delete an environment",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if err := client.DeleteEnvironment(ctx, args[0], args[1]); err != nil {
				return describeError(err)
			}

			ui.DisplayMessage(ctx, "environment %s/%s deleted", args[0], args[1])

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(environmentCmd)
}
