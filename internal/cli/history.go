package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/axatbhardwaj/context-tracker/internal/store"
)

func init() {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded merge cycles",
		Run:   runHistory,
	}

	cmd.Flags().StringP("project", "P", "", "Filter by project")
	cmd.Flags().StringP("path", "p", "", "Filter by document path")
	cmd.Flags().IntP("limit", "l", 20, "Max results")

	RootCmd.AddCommand(cmd)
}

func runHistory(cmd *cobra.Command, args []string) {
	project, _ := cmd.Flags().GetString("project")
	path, _ := cmd.Flags().GetString("path")
	limit, _ := cmd.Flags().GetInt("limit")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	entries, err := s.List(cmd.Context(), store.ListParams{
		Path:    path,
		Project: project,
		Limit:   limit,
	})
	if err != nil {
		exitErr("history", err)
	}

	if formatFlag == "text" {
		for _, e := range entries {
			fmt.Printf("%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Project, e.RecentEntry)
		}
		return
	}
	printJSON(entries)
}
