// Package cli wires configuration, stores and services into the zenjournal commands.
package cli

import (
	"fmt"
	"os"

	"github.com/limbo/zenjournal/pkg/config"
	"github.com/spf13/cobra"
)

var envFile string

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "zenjournal",
	Short: "Journaling API with mood analytics",
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&envFile, "env-file", "e", config.DefaultEnvFile, "Path to the env file")
}

func loadConfig() *config.Config {
	return config.New(envFile)
}

func exitErr(msg string, err error) {
	fmt.Fprintf(os.Stderr, "error: %s: %v\n", msg, err)
	os.Exit(1)
}
