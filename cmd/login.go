package cmd

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loginUsernameFlag string
var loginPasswordFlag string

// loginCmd represents the login command.
var loginCmd = newLoginCmd()

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authenticate and store an API token",
		Long: `Log in to the conda-store server with a username and password and store
the resulting API token in the config file. Subsequent commands pick the
token up automatically.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			username := loginUsernameFlag
			if username == "" {
				username = viper.GetString(usernameConfigKey)
			}

			password := loginPasswordFlag
			if password == "" {
				password = viper.GetString(passwordConfigKey)
			}

			if username == "" || password == "" {
				return fmt.Errorf("username and password are required (flags or %s_AUTH_USERNAME / %s_AUTH_PASSWORD)", envPrefix, envPrefix)
			}

			client, err := newAPIClient()
			if err != nil {
				return err
			}

			token, err := client.Login(context.Background(), username, password)
			if err != nil {
				return err
			}

			viper.Set(tokenConfigKey, token)

			configPath := filepath.Join(configFolderPath, configFileName)
			if err := viper.WriteConfigAs(configPath); err != nil {
				return fmt.Errorf("store token in %s: %w", configPath, err)
			}

			cmd.Printf("logged in as %s; token stored in %s\n", username, configPath)

			return nil
		},
	}

	cmd.Flags().StringVarP(&loginUsernameFlag, "username", "u", "", "conda-store username")
	cmd.Flags().StringVarP(&loginPasswordFlag, "password", "p", "", "conda-store password")

	return cmd
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
