package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	m "conda.store/pkg/condastore/internal/model"
)

// namespaceCmd groups namespace subcommands.
var namespaceCmd = newNamespaceCmd()

func newNamespaceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "namespace",
		Aliases: []string{"ns"},
		Short:   "Manage namespaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newNamespaceListCmd())
	cmd.AddCommand(newNamespaceCreateCmd())
	cmd.AddCommand(newNamespaceDeleteCmd())

	return cmd
}

func newNamespaceListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List namespaces",
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			namespaces, err := client.ListNamespaces(ctx)
			if err != nil {
				return describeError(err)
			}

			return ui.DisplayNamespaces(ctx, namespaces)
		},
	}
}

func newNamespaceCreateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "create [name]",
		Short: "Create a namespace",
		Long: `Create a namespace and wait for the server to provision it. Without a
name a random one is generated and printed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := ""
			if len(args) > 0 {
				name = args[0]
			}

			if name == "" {
				name = randomNamespaceName()
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx, cancel := waitContext()
			defer cancel()

			if err := client.CreateNamespace(ctx, name); err != nil {
				return describeError(err)
			}

			ui.DisplayMessage(ctx, "waiting for namespace %s...", name)

			status, err := client.WaitForNamespace(ctx, name, pollInterval())
			if err != nil {
				return err
			}

			if status == m.NamespaceError {
				return fmt.Errorf("namespace %s failed to provision", name)
			}

			ui.DisplayMessage(ctx, "namespace %s created", name)

			return nil
		},
	}
}

func newNamespaceDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Delete a namespace and all its environments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newAPIClient()
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			if err := client.DeleteNamespace(ctx, args[0]); err != nil {
				return describeError(err)
			}

			ui.DisplayMessage(ctx, "namespace %s deleted", args[0])

			return nil
		},
	}
}

// randomNamespaceName mirrors the server convention of uuid hex names.
func randomNamespaceName() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func init() {
	rootCmd.AddCommand(namespaceCmd)
}
