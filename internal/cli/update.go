package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/axatbhardwaj/context-tracker/internal/model"
)

func init() {
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Merge facts into one or more wiki documents",
		Long: "Merge a batch of facts into each --path document (or the document for --cwd). " +
			"Facts are read as YAML or JSON from --file or stdin: a list of {kind, text, timestamp, reference, tags} " +
			"or an object with a 'facts' key.",
		Run: runUpdate,
	}

	cmd.Flags().StringArrayP("path", "p", nil, "Document path (repeatable)")
	cmd.Flags().String("cwd", "", "Resolve the document for this working directory")
	cmd.Flags().String("file", "", "Facts file (default: stdin)")

	RootCmd.AddCommand(cmd)
}

func runUpdate(cmd *cobra.Command, args []string) {
	paths, _ := cmd.Flags().GetStringArray("path")
	cwd, _ := cmd.Flags().GetString("cwd")
	file, _ := cmd.Flags().GetString("file")

	c, cleanup := setup(true)
	defer cleanup()

	if cwd != "" {
		paths = append(paths, c.Tracker.Locate(cwd).Document)
	}
	if len(paths) == 0 {
		exitErr("update", fmt.Errorf("at least one --path or --cwd is required"))
	}

	facts, err := readFacts(file, os.Stdin)
	if err != nil {
		exitErr("read facts", err)
	}

	results, err := c.Updater.UpdateMany(cmd.Context(), paths, facts)
	if err != nil {
		exitErr("update", err)
	}

	if formatFlag == "text" {
		for _, r := range results {
			state := "unchanged"
			switch {
			case r.Created:
				state = "created"
			case r.Changed:
				state = "updated"
			}
			fmt.Printf("%s\t%s\n", state, r.Path)
		}
		return
	}
	printJSON(results)
}

// readFacts decodes facts from file, or from stdin when file is empty.
func readFacts(file string, stdin io.Reader) ([]model.Fact, error) {
	if file == "" {
		return model.DecodeFacts(stdin)
	}
	f, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return model.DecodeFacts(f)
}
