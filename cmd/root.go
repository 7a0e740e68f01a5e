// Package cmd assembles the slateboard CLI.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/slateboard/slateboard-go/cmd/fetch"
	"github.com/slateboard/slateboard-go/cmd/listen"
	"github.com/slateboard/slateboard-go/cmd/schedule"
	"github.com/slateboard/slateboard-go/cmd/status"
	"github.com/slateboard/slateboard-go/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "slateboard",
		Short: "Slateboard on-set shot tracking CLI",
	}

	setupFlags(rootCmd, settings)

	rootCmd.AddCommand(
		fetch.Command(settings),
		status.Command(settings),
		schedule.Command(settings),
		listen.Command(settings),
	)

	return rootCmd
}

// setupFlags configures the global flags shared by every subcommand.
func setupFlags(cmd *cobra.Command, settings *conf.Settings) {
	cmd.PersistentFlags().StringVar(&settings.Server.ProjectID, "project", viper.GetString("server.projectid"), "Project id to operate on")
	cmd.PersistentFlags().StringVar(&settings.Server.AccessToken, "token", viper.GetString("server.accesstoken"), "API access token")
	cmd.PersistentFlags().StringVar(&settings.Server.BaseURL, "baseurl", viper.GetString("server.baseurl"), "Base URL of the project API")
	cmd.PersistentFlags().StringVar(&settings.Cache.Path, "cache", viper.GetString("cache.path"), "Path to the local cache database")
	cmd.PersistentFlags().BoolVar(&settings.Debug, "debug", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(cmd.PersistentFlags()); err != nil {
		fmt.Printf("error binding flags: %v\n", err)
	}
}
