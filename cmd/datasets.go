package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/spendboard/internal/catalog"
)

var datasetsCmd = &cobra.Command{
	Use:   "datasets",
	Short: "List the datasets and their shape",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		cat, err := a.dash.Catalog(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, e := range cat.Entries() {
			fmt.Fprintf(out, "- %s (%s): %d rows, %d columns\n", e.Name, e.File, e.Table.NumRows(), e.Table.NumCols())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetsCmd)
	names := make([]string, len(catalog.Datasets))
	for i, d := range catalog.Datasets {
		names[i] = d.Name
	}
	datasetsCmd.Long = fmt.Sprintf("Load every dataset and print its file, row count and column count.\nDatasets: %s", strings.Join(names, ", "))
}
