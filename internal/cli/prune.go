package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old merge history",
		Long:  "Permanently delete ledger entries older than --older-than (e.g. 90d, 12h). Wiki documents are not touched.",
		Run:   runPrune,
	}

	cmd.Flags().String("older-than", "", "Age cutoff, e.g. 30d, 24h (required)")
	cmd.MarkFlagRequired("older-than")

	RootCmd.AddCommand(cmd)
}

func runPrune(cmd *cobra.Command, args []string) {
	olderThan, _ := cmd.Flags().GetString("older-than")

	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	n, err := s.Prune(cmd.Context(), olderThan)
	if err != nil {
		exitErr("prune", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), `{"ok":true,"pruned":%d}`+"\n", n)
}
