package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

const Version = "1.2.0"

var (
	configPath string

	// RootCmd represents the base command when called without any subcommands
	RootCmd = &cobra.Command{
		Use:   "numbersapi",
		Short: "serial-stamped numbers API",
		Long: fmt.Sprintf(`numbersapi (v%s)

Stores 8-digit values stamped with a strictly increasing serial and signs
users in with one-time email codes or passwords.`, Version),
		SilenceUsage: true,
	}

	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print the version number of numbersapi",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "numbersapi v%s\n", Version)
		},
	}
)

func init() {
	RootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config.yaml (default $CONFIG_PATH or config/config.yaml)")
	RootCmd.AddCommand(serveCmd, backfillCmd, versionCmd)
}
