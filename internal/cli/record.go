package cli

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
	"github.com/stxkxs/runtrace/internal/runs"
)

var (
	recordName    string
	recordDir     string
	recordSummary string
	recordData    string
)

var recordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a trace from JSON objects on stdin",
	Long: `Open a trace, append one entry per non-empty stdin line, then close it.

Each stdin line must be a JSON object; it becomes the data of one entry.

Examples:
  train.py | runtrace record --name mnist
  echo '{"loss": 0.5}' | runtrace record --name quick --summary step
  runtrace record --name sweep --data '{"lr": 0.01}' < metrics.jsonl`,
	RunE: runRecord,
}

func init() {
	recordCmd.Flags().StringVarP(&recordName, "name", "n", "", "trace name (required)")
	recordCmd.Flags().StringVarP(&recordDir, "dir", "d", "", "trace directory (default from config)")
	recordCmd.Flags().StringVarP(&recordSummary, "summary", "s", "", "summary for each stdin entry")
	recordCmd.Flags().StringVar(&recordData, "data", "", "JSON object for the initial entry")
	recordCmd.MarkFlagRequired("name")
}

func runRecord(cmd *cobra.Command, args []string) error {
	initial, err := parseObject(recordData)
	if err != nil {
		return rtErrors.Wrap(rtErrors.CodeInvalidArgument, "invalid --data", err)
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	dir := recordDir
	if dir == "" {
		dir = s.cfg.LogDir
	}

	trace, err := runs.Open(recordName, runs.Options{
		Dir:    dir,
		Data:   initial,
		FS:     s.fs,
		Logger: s.logger,
		Events: s.events,
	})
	if err != nil {
		return err
	}

	appendErr := appendLines(trace, cmd.InOrStdin(), recordSummary)

	var closeData map[string]any
	if appendErr != nil {
		closeData = map[string]any{"error": appendErr.Error()}
	}
	if err := trace.Close("", closeData); err != nil && appendErr == nil {
		return err
	}
	if appendErr != nil {
		return appendErr
	}

	s.logger.Info("trace recorded", append([]any{"path", trace.Path()}, trace.Stats().Fields()...)...)
	fmt.Fprintln(cmd.OutOrStdout(), trace.Path())
	return nil
}

// appendLines logs one entry per non-empty line of r.
func appendLines(trace *runs.Trace, r io.Reader, summary string) error {
	br := bufio.NewReader(r)
	for lineNo := 1; ; lineNo++ {
		line, readErr := br.ReadBytes('\n')
		if readErr != nil && readErr != io.EOF {
			return fmt.Errorf("read stdin: %w", readErr)
		}

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			data, err := parseObject(string(trimmed))
			if err != nil {
				return rtErrors.Wrap(rtErrors.CodeInvalidArgument, fmt.Sprintf("stdin line %d", lineNo), err)
			}
			if err := trace.Log(summary, data); err != nil {
				return err
			}
		}

		if readErr == io.EOF {
			return nil
		}
	}
}

func parseObject(s string) (map[string]any, error) {
	if s == "" {
		return nil, nil
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(s), &obj); err != nil {
		return nil, err
	}
	if obj == nil {
		return nil, fmt.Errorf("expected a JSON object, got %s", s)
	}
	return obj, nil
}
