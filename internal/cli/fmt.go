package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/axatbhardwaj/context-tracker/internal/wiki"
)

func init() {
	cmd := &cobra.Command{
		Use:   "fmt <path>...",
		Short: "Rewrite wiki documents in canonical form",
		Long:  "Parse and re-serialize each document. Headers, bullets and spacing are normalized and Recent Work is cut to wiki.max_recent.",
		Args:  cobra.MinimumNArgs(1),
		Run:   runFmt,
	}

	cmd.Flags().Bool("check", false, "Only list documents that are not canonical; exit 1 if any")

	RootCmd.AddCommand(cmd)
}

func runFmt(cmd *cobra.Command, args []string) {
	check, _ := cmd.Flags().GetBool("check")

	c, cleanup := setup(true)
	defer cleanup()

	dirty := 0
	for _, path := range args {
		if _, err := os.Stat(path); err != nil {
			exitErr("fmt", err)
		}
		if check {
			doc, text, err := c.Updater.Read(cmd.Context(), path)
			if err != nil {
				exitErr("fmt", err)
			}
			if wiki.Serialize(doc) != text {
				fmt.Println(path)
				dirty++
			}
			continue
		}
		// An empty batch is a pure parse/serialize pass.
		res, err := c.Updater.Update(cmd.Context(), path, nil)
		if err != nil {
			exitErr("fmt", err)
		}
		if res.Changed {
			fmt.Println(res.Path)
		}
	}
	if dirty > 0 {
		os.Exit(1)
	}
}
