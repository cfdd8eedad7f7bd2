package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/stxkxs/runtrace/internal/runs"
	"github.com/stxkxs/runtrace/internal/storage"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check configuration and storage",
	Long:  "Validate that the configuration loads and the storage backend is reachable.",
	RunE:  runDoctor,
}

func runDoctor(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "runtrace doctor - checking your environment")
	fmt.Fprintln(out)
	allOK := true

	fmt.Fprintf(out, "  Go version: %s ✓\n", runtime.Version())
	fmt.Fprintf(out, "  Platform:   %s/%s ✓\n", runtime.GOOS, runtime.GOARCH)

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(out, "  Config:     FAILED (%s) ✗\n", err)
		allOK = false
	} else {
		fmt.Fprintf(out, "  Config:     log_dir=%s ✓\n", cfg.LogDir)
	}

	if cfg != nil {
		fs, err := storage.New(cfg.Storage.Driver, cfg.Storage.Path)
		if err != nil {
			fmt.Fprintf(out, "  Storage:    FAILED (%s) ✗\n", err)
			allOK = false
		} else {
			paths, err := runs.List(fs, cfg.LogDir)
			if err != nil {
				fmt.Fprintf(out, "  Storage:    %s unreadable (%s) ✗\n", cfg.Storage.Driver, err)
				allOK = false
			} else {
				fmt.Fprintf(out, "  Storage:    %s, %d traces ✓\n", cfg.Storage.Driver, len(paths))
			}
			storage.Close(fs)
		}
	}

	fmt.Fprintln(out)
	if allOK {
		fmt.Fprintln(out, "All checks passed!")
	} else {
		fmt.Fprintln(out, "Some checks failed. See above for details.")
	}
	return nil
}
