// Package cmd provides the root command and CLI setup for conda-store.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"conda.store/pkg/condastore/internal/api"
	"conda.store/pkg/condastore/internal/controller"
)

var ui controller.UI

// serverFlag is the conda-store server URL shared by all commands.
var serverFlag string

// authTokenFlag overrides the stored API token.
var authTokenFlag string

// outputFlag selects table or yaml output for applicable commands.
var outputFlag string

// verboseFlag lowers the log level to debug.
var verboseFlag bool

var timeoutFlag time.Duration
var pollIntervalFlag time.Duration

const rootLongDescription = `conda-store is a client for a conda-store server: it manages namespaces,
submits environment specifications, and tracks the builds they trigger.

The server URL and token come from flags, CONDA_STORE_* environment
variables, or the conda-store.yaml config file; run "conda-store login"
once to obtain and store a token.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = baseRootCmd()

func baseRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "conda-store",
		Short: "conda-store server client",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger("", viper.GetBool(verboseConfigKey))
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func init() {
	configureRootFlags(rootCmd)

	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&serverFlag, serverFlagName, "s",
			viper.GetString(serverConfigKey),
			"conda-store server URL",
		)
	bindFlagToConfig(cmd.PersistentFlags().Lookup(serverFlagName), serverConfigKey)

	cmd.PersistentFlags().StringVar(&authTokenFlag, tokenFlagName, viper.GetString(tokenConfigKey), "API token (overrides the stored one)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(tokenFlagName), tokenConfigKey)

	cmd.PersistentFlags().StringVarP(&outputFlag, outputFlagName, "o", viper.GetString(outputConfigKey), "output format: table or yaml")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(outputFlagName), outputConfigKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(verboseConfigKey), "enable debug logging")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), verboseConfigKey)

	cmd.PersistentFlags().DurationVar(&timeoutFlag, timeoutFlagName, viper.GetDuration(timeoutConfigKey), "how long to wait for namespaces and builds")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(timeoutFlagName), timeoutConfigKey)

	cmd.PersistentFlags().DurationVar(&pollIntervalFlag, pollIntervalFlagName, viper.GetDuration(pollIntervalConfigKey), "delay between status checks while waiting")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(pollIntervalFlagName), pollIntervalConfigKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// newAPIClient builds a client from the resolved configuration.
func newAPIClient() (*api.Client, error) {
	server := viper.GetString(serverConfigKey)
	if server == "" {
		return nil, errors.New("no server configured; pass --server or set CONDA_STORE_SERVER_URL")
	}

	return api.NewClient(server,
		api.WithToken(viper.GetString(tokenConfigKey)),
		api.WithRetryMax(viper.GetInt(retriesConfigKey)),
		api.WithTimeout(viper.GetDuration(requestTimeoutConfigKey)),
	)
}

// waitContext bounds a polling operation with the configured timeout.
func waitContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), viper.GetDuration(timeoutConfigKey))
}

func pollInterval() time.Duration {
	interval := viper.GetDuration(pollIntervalConfigKey)
	if interval <= 0 {
		interval = defaultPollInterval
	}

	return interval
}

// describeError rewrites auth failures into something actionable.
func describeError(err error) error {
	if api.IsUnauthorized(err) {
		return fmt.Errorf("%w (run \"conda-store login\" to refresh your token)", err)
	}

	return err
}
