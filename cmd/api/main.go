package main

import (
	"os"

	"github.com/limbo/zenjournal/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
