package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/spendboard/internal/insights"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Print the business insights and takeaways",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		list, err := a.dash.Insights(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, in := range list {
			fmt.Fprintf(out, "## %s\n\n%s\n\n", in.Title, in.Text)
			if !in.Chart.Empty() {
				fmt.Fprint(out, chartTable(in.Chart))
				fmt.Fprintln(out)
			}
		}
		fmt.Fprintln(out, "## Business Takeaways")
		fmt.Fprintln(out)
		for _, t := range insights.Takeaways() {
			fmt.Fprintf(out, "- %s\n", t)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
}
