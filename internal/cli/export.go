package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export merge history as JSON",
		Long:  "Export every ledger entry, oldest first. Filter by project with -P.",
		Run:   runExport,
	}

	cmd.Flags().StringP("project", "P", "", "Filter by project")

	RootCmd.AddCommand(cmd)
}

func runExport(cmd *cobra.Command, args []string) {
	project, _ := cmd.Flags().GetString("project")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.ExportAll(cmd.Context(), project)
	if err != nil {
		exitErr("export", err)
	}
	printJSON(entries)
}
