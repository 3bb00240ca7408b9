package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	m "conda.store/pkg/condastore/internal/model"
)

var tokenNamespaceFlag string
var tokenRoleFlag string
var tokenPrimaryNamespaceFlag string
var tokenExpirationFlag time.Duration

// tokenCmd groups token subcommands.
var tokenCmd = newTokenCmd()

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage scoped API tokens",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newTokenCreateCmd())

	return cmd
}

func newTokenCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Mint a token scoped to a namespace and role",
		Long: `Create a new API token granting a role on every environment of a
namespace. The token expires after the given duration.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			role := m.Role(tokenRoleFlag)
			if !role.Valid() {
				return fmt.Errorf("unknown role %q (want %s, %s or %s)", tokenRoleFlag, m.RoleViewer, m.RoleDeveloper, m.RoleAdmin)
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			request := m.TokenRequest{
				PrimaryNamespace: tokenPrimaryNamespaceFlag,
				Expiration:       time.Now().UTC().Add(tokenExpirationFlag).Format(time.RFC3339),
				RoleBindings: m.RoleBindings{
					tokenNamespaceFlag + "/*": {role},
				},
			}

			token, err := client.CreateToken(context.Background(), request)
			if err != nil {
				return describeError(err)
			}

			cmd.Println(token)

			return nil
		},
	}

	cmd.Flags().StringVarP(&tokenNamespaceFlag, "namespace", "n", "", "namespace the token grants access to")
	cmd.Flags().StringVarP(&tokenRoleFlag, "role", "r", string(m.RoleViewer), "role to grant: viewer, developer or admin")
	cmd.Flags().StringVar(&tokenPrimaryNamespaceFlag, "primary-namespace", "default", "primary namespace recorded on the token")
	cmd.Flags().DurationVarP(&tokenExpirationFlag, "expiration", "e", 24*time.Hour, "how long the token stays valid")
	cobra.CheckErr(cmd.MarkFlagRequired("namespace"))

	return cmd
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
