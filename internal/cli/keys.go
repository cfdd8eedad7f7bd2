package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stxkxs/runtrace/internal/runs"
)

var keysCmd = &cobra.Command{
	Use:   "keys <path>",
	Short: "List the metric keys used in a trace",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openSession()
		if err != nil {
			return err
		}
		defer s.Close()

		log, err := runs.Load(args[0], s.fs)
		if err != nil {
			return err
		}
		for _, k := range log.Keys() {
			fmt.Fprintln(cmd.OutOrStdout(), k)
		}
		return nil
	},
}
