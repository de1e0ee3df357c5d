package main

import (
	"os"

	"github.com/axatbhardwaj/context-tracker/internal/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
