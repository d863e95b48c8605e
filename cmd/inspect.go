package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/chart"
	"github.com/KaramelBytes/spendboard/internal/utils"
)

var (
	inspectSampleRows int
	inspectJSON       bool
)

var inspectCmd = &cobra.Command{
	Use:   "inspect <dataset> [column]",
	Short: "Summarize a dataset or one of its columns",
	Example: `  spendboard inspect customers
  spendboard inspect Sales store_id
  spendboard inspect customers annual_spend --json`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(args) == 1 {
			rep, err := a.dash.Dataset(cmd.Context(), args[0], inspectSampleRows)
			if err != nil {
				return err
			}
			if inspectJSON {
				return printJSON(cmd, rep)
			}
			fmt.Fprint(out, rep.Markdown())
			return nil
		}

		res, err := a.dash.Column(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if inspectJSON {
			return printJSON(cmd, res)
		}
		fmt.Fprintln(out, analysis.SummaryLine(res.Summary))
		fmt.Fprintln(out)
		fmt.Fprintf(out, "%s\n", res.Chart.Title)
		switch {
		case res.Chart.Empty():
			fmt.Fprintln(out, "(no values)")
		case res.Chart.Kind == chart.KindHistogram:
			fmt.Fprint(out, analysis.HistogramMarkdown(res.Chart.Bins))
		default:
			fmt.Fprint(out, chartTable(res.Chart))
		}
		return nil
	},
}

// chartTable renders a labelled series as a two-column markdown table.
func chartTable(s chart.Spec) string {
	rows := make([][]string, len(s.Labels))
	for i, l := range s.Labels {
		rows[i] = []string{l, trimFloat(s.Values[i])}
	}
	xl, yl := s.XLabel, s.YLabel
	if xl == "" {
		xl = "label"
	}
	if yl == "" {
		yl = "value"
	}
	return analysis.MarkdownTable([]string{xl, yl}, rows)
}

func trimFloat(v float64) string {
	return fmt.Sprintf("%.4g", v)
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := utils.PrettyJSON(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return err
}

func init() {
	inspectCmd.Flags().IntVar(&inspectSampleRows, "sample-rows", 5, "number of leading rows to include in a dataset summary")
	inspectCmd.Flags().BoolVar(&inspectJSON, "json", false, "print the result as JSON")
	rootCmd.AddCommand(inspectCmd)
}
