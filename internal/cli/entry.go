package cli

import (
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "entry <id>",
		Short: "Show one recorded merge cycle, including its session log",
		Args:  cobra.ExactArgs(1),
		Run:   runEntry,
	}

	RootCmd.AddCommand(cmd)
}

func runEntry(cmd *cobra.Command, args []string) {
	s, err := openStore()
	if err != nil {
		exitErr("open store", err)
	}
	defer s.Close()

	e, err := s.Get(cmd.Context(), args[0])
	if err != nil {
		exitErr("entry", err)
	}
	printJSON(e)
}
