package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	rtErrors "github.com/stxkxs/runtrace/internal/errors"
	"github.com/stxkxs/runtrace/internal/record"
	"github.com/stxkxs/runtrace/internal/runs"
	"github.com/stxkxs/runtrace/internal/telemetry"
)

var (
	metricFormat string
	metricOutput string
)

var metricCmd = &cobra.Command{
	Use:   "metric <path> <name>",
	Short: "Print one metric of a trace as a time series",
	Long: `Print every value stored under a data key, with the entry timestamp.

Examples:
  runtrace metric runs/mnist_2024-03-01_12-00-00.000000.json loss
  runtrace metric runs/mnist_2024-03-01_12-00-00.000000.json loss --format jsonl
  runtrace metric runs/mnist_2024-03-01_12-00-00.000000.json loss --output series.jsonl`,
	Args: cobra.ExactArgs(2),
	RunE: runMetric,
}

func init() {
	metricCmd.Flags().StringVarP(&metricFormat, "format", "f", "table", "output format (table, jsonl)")
	metricCmd.Flags().StringVarP(&metricOutput, "output", "o", "", "append jsonl points to this file instead of stdout")
}

func runMetric(cmd *cobra.Command, args []string) error {
	path, name := args[0], args[1]

	switch metricFormat {
	case "table", "jsonl":
	default:
		return rtErrors.Newf(rtErrors.CodeInvalidArgument, "unknown format: %s", metricFormat).
			WithSuggestion("use table or jsonl")
	}

	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.Close()

	log, err := runs.Load(path, s.fs)
	if err != nil {
		return err
	}
	values, times := log.Metric(name)
	s.logger.Debug("metric extracted", "metric", name, "points", len(values))

	if metricOutput != "" || metricFormat == "jsonl" {
		var exp *telemetry.JSONLExporter
		if metricOutput != "" {
			exp, err = telemetry.NewJSONFileExporter(metricOutput)
			if err != nil {
				return err
			}
		} else {
			exp = telemetry.NewJSONLExporter(cmd.OutOrStdout())
		}
		defer exp.Close()

		labels := map[string]string{"trace": runs.TraceName(path)}
		if err := telemetry.ExportSeries(exp, name, values, times, labels); err != nil {
			return err
		}
		if metricOutput != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d points to %s\n", len(values), metricOutput)
		}
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tVALUE")
	for i, v := range values {
		fmt.Fprintf(w, "%s\t%v\n", record.FormatTime(times[i]), v)
	}
	return w.Flush()
}
