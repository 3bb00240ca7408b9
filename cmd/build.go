package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// buildCmd groups build subcommands.
var buildCmd = newBuildCmd()

func newBuildCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Inspect and manage environment builds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newBuildListCmd())
	cmd.AddCommand(newBuildStatusCmd())
	cmd.AddCommand(newBuildWaitCmd())
	cmd.AddCommand(newBuildCancelCmd())
	cmd.AddCommand(newBuildLogsCmd())

	return cmd
}

func newBuildListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List builds",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			builds, err := client.ListBuilds(ctx)
			if err != nil {
				return describeError(err)
			}

			return ui.DisplayBuilds(ctx, builds)
		},
	}
}

func newBuildStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <id>",
		Short: "Show one build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBuildID(args[0])
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			build, err := client.GetBuild(ctx, id)
			if err != nil {
				return describeError(err)
			}

			return ui.DisplayBuild(ctx, build)
		},
	}
}

func newBuildWaitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "wait <id>",
		Short: "Wait until a build finishes",
		Long: `Poll a build until it reaches a terminal state. Exits nonzero when the
build fails or is canceled, so it can gate scripts.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBuildID(args[0])
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx, cancel := waitContext()
			defer cancel()

			build, err := client.WaitForBuild(ctx, id, pollInterval())
			if err != nil {
				return err
			}

			if err := ui.DisplayBuild(ctx, build); err != nil {
				return err
			}

			if !build.Status.Succeeded() {
				return fmt.Errorf("build %d ended %s", id, build.Status)
			}

			return nil
		},
	}
}

func newBuildCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a queued or running build",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBuildID(args[0])
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if err := client.CancelBuild(ctx, id); err != nil {
				return describeError(err)
			}

			ui.DisplayMessage(ctx, "build %d canceled", id)

			return nil
		},
	}
}

func newBuildLogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs <id>",
		Short: "Print a build's logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseBuildID(args[0])
			if err != nil {
				return err
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			logs, err := client.BuildLogs(cmd.Context(), id)
			if err != nil {
				return describeError(err)
			}

			cmd.Print(logs)

			return nil
		},
	}
}

func parseBuildID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid build id %q", arg)
	}

	return id, nil
}

func init() {
	rootCmd.AddCommand(buildCmd)
}
