package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axatbhardwaj/context-tracker/internal/wiki"
)

func init() {
	cmd := &cobra.Command{
		Use:   "show [path]",
		Short: "Print a wiki document",
		Long:  "Print the parsed document as JSON (with needs_enrichment), or in canonical markdown with --format text.",
		Args:  cobra.MaximumNArgs(1),
		Run:   runShow,
	}

	cmd.Flags().String("cwd", "", "Show the document for this working directory")

	RootCmd.AddCommand(cmd)
}

func runShow(cmd *cobra.Command, args []string) {
	cwd, _ := cmd.Flags().GetString("cwd")

	c, cleanup := setup(true)
	defer cleanup()

	var path string
	switch {
	case len(args) == 1:
		path = args[0]
	case cwd != "":
		path = c.Tracker.Locate(cwd).Document
	default:
		exitErr("show", fmt.Errorf("a path argument or --cwd is required"))
	}

	doc, _, err := c.Updater.Read(cmd.Context(), path)
	if err != nil {
		exitErr("show", err)
	}

	if formatFlag == "text" {
		fmt.Print(wiki.Serialize(doc))
		return
	}
	printJSON(wiki.Annotate(doc))
}
