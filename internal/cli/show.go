package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/stxkxs/runtrace/internal/record"
	"github.com/stxkxs/runtrace/internal/runs"
)

var showCmd = &cobra.Command{
	Use:   "show <path>",
	Short: "Print every entry of a trace",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func runShow(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	log, err := runs.Load(args[0], s.fs)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tTIME\tUUID\tSUMMARY\tDATA")
	for _, e := range log.Entries() {
		wire, err := record.Encode(e)
		if err != nil {
			return err
		}
		// Summaries are quoted so tabs and newlines cannot break the table.
		fmt.Fprintf(w, "%s\t%s\t%s\t%q\t%s\n", wire.Type, wire.Time, wire.UUID, wire.Summary, wire.DataJSON)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	status := "open"
	if log.Closed() {
		status = "closed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "\n%d entries (%s)\n", log.Len(), status)
	return nil
}
