package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/spendboard/internal/analysis"
	"github.com/KaramelBytes/spendboard/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect the pre-trained spend models",
	Example: `  spendboard models list
  spendboard models scores
  spendboard models explain random_forest
  spendboard models explain "Gradient Boosting" --json`,
}

var modelsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered models and check their artifacts load",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		reg := a.dash.Registry()
		failed := 0
		for _, def := range models.Definitions {
			status := "ok"
			if _, err := reg.Load(cmd.Context(), def.Key); err != nil {
				status = "✗ " + err.Error()
				failed++
			}
			fmt.Fprintf(out, "- %s [%s, %s] %s: %s\n", def.Name, def.Key, def.Kind, reg.Path(def), status)
		}
		if failed > 0 {
			return fmt.Errorf("%d model artifact(s) failed to load", failed)
		}
		return nil
	},
}

var modelsScoresCmd = &cobra.Command{
	Use:   "scores",
	Short: "Show the accuracy comparison table",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		rows := models.Scores()
		table := make([][]string, len(rows))
		for i, r := range rows {
			table[i] = []string{r.Model, fmt.Sprintf("%.2f", r.R2), fmt.Sprintf("%.1f", r.RMSE)}
		}
		fmt.Fprint(cmd.OutOrStdout(), analysis.MarkdownTable([]string{"Model", "R² Score", "RMSE"}, table))
		return nil
	},
}

var explainJSON bool

var modelsExplainCmd = &cobra.Command{
	Use:   "explain <model>",
	Short: "Show a model's feature weights against the customers dataset",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		ex, err := a.dash.Explain(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if explainJSON {
			return printJSON(cmd, ex)
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s\n\n", ex.Model)
		for _, n := range ex.Notes {
			fmt.Fprintf(out, "- %s\n", n)
		}
		fmt.Fprintln(out)
		rows := make([][]string, len(ex.Weights))
		for i, w := range ex.Weights {
			rows[i] = []string{w.Feature, trimFloat(w.Weight)}
		}
		fmt.Fprint(out, analysis.MarkdownTable([]string{"Feature", ex.Label}, rows))
		fmt.Fprintf(out, "\nFeature alignment: %s\n", ex.Alignment)
		if len(ex.Missing) > 0 {
			fmt.Fprintf(out, "Missing from customers: %s\n", strings.Join(ex.Missing, ", "))
		}
		return nil
	},
}

func init() {
	modelsExplainCmd.Flags().BoolVar(&explainJSON, "json", false, "print the explanation as JSON")
	modelsCmd.AddCommand(modelsListCmd)
	modelsCmd.AddCommand(modelsScoresCmd)
	modelsCmd.AddCommand(modelsExplainCmd)
	rootCmd.AddCommand(modelsCmd)
}
