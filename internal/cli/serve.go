package cli

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/axatbhardwaj/context-tracker/internal/server"
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Run:   runServe,
	}

	RootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) {
	// stdout carries the MCP protocol; logs go to the log file only.
	c, cleanup := setup(false)
	defer cleanup()

	s := server.New(c)
	if err := mcpserver.ServeStdio(s); err != nil {
		cleanup()
		exitErr("serve", fmt.Errorf("stdio server: %w", err))
	}
}
