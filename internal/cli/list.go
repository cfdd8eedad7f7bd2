package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stxkxs/runtrace/internal/runs"
)

var listDir string

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored traces",
	RunE:  runList,
}

func init() {
	listCmd.Flags().StringVarP(&listDir, "dir", "d", "", "trace directory (default from config)")
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	dir := listDir
	if dir == "" {
		dir = s.cfg.LogDir
	}

	paths, err := runs.List(s.fs, dir)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No traces found.")
		return nil
	}
	for _, p := range paths {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}
