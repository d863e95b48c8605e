package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/spendboard/internal/dashboard"
	"github.com/KaramelBytes/spendboard/internal/utils"
)

var (
	reportDataset string
	reportColumn  string
	reportModel   string
	reportFormat  string
	reportOutput  string
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render the full dashboard page as markdown or JSON",
	Example: `  spendboard report
  spendboard report --dataset Sales --column store_id --model random_forest
  spendboard report --format json -o out/page.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(strings.TrimSpace(reportFormat))
		if format != "md" && format != "json" {
			return fmt.Errorf("unsupported --format: %s (use md|json)", reportFormat)
		}
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		page, err := a.dash.Render(cmd.Context(), dashboard.Selection{
			Dataset: reportDataset,
			Column:  reportColumn,
			Model:   reportModel,
		})
		if err != nil {
			return err
		}
		var body []byte
		if format == "json" {
			if body, err = utils.PrettyJSON(page); err != nil {
				return err
			}
			body = append(body, '\n')
		} else {
			body = []byte(page.Markdown())
		}
		if reportOutput == "" {
			_, err = cmd.OutOrStdout().Write(body)
			return err
		}
		if err := utils.SafeWriteFile(reportOutput, body); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote report to %s\n", reportOutput)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDataset, "dataset", "", "dataset to inspect (default Customers)")
	reportCmd.Flags().StringVar(&reportColumn, "column", "", "column to inspect (default first column)")
	reportCmd.Flags().StringVar(&reportModel, "model", "", "model to explain (default "+dashboard.DefaultModel+")")
	reportCmd.Flags().StringVar(&reportFormat, "format", "md", "output format: md|json")
	reportCmd.Flags().StringVarP(&reportOutput, "output", "o", "", "write to file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}
