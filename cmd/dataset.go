package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/synthtab-cli/internal/session"
)

var dsJSON bool

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Inspect or discard the current dataset",
}

var datasetShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show how the current dataset was generated",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		res, err := session.NewStore(c.DataDir).Load()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if dsJSON {
			return writeSummary(res, summaryOptions{JSON: true, Writer: out})
		}
		req := res.Request
		fmt.Fprintf(out, "id: %s\n", res.ID)
		fmt.Fprintf(out, "created_at: %s\n", res.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Fprintf(out, "seed: %d\n", res.Seed)
		fmt.Fprintf(out, "rows: %d\n", res.Summary.Rows)
		fmt.Fprintf(out, "columns: %d\n", res.Summary.Columns)
		fmt.Fprintf(out, "missing_cells: %d\n", res.Summary.Missing)
		kinds := make([]string, len(req.Fields))
		for i, k := range req.Fields {
			kinds[i] = string(k)
		}
		fmt.Fprintf(out, "fields: %s\n", strings.Join(kinds, ","))
		fmt.Fprintf(out, "numeric_columns: %d\n", req.NumericColumns)
		fmt.Fprintf(out, "categorical_columns: %d\n", req.CategoricalColumns)
		fmt.Fprintf(out, "missing_rate: %.3f\n", req.MissingRate)
		fmt.Fprintf(out, "correlation: %s (target %.2f)\n", res.Correlation, req.Correlation)
		for _, w := range res.Warnings {
			fmt.Fprintf(out, "warning: %s\n", w)
		}
		return nil
	},
}

var datasetClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the current dataset",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if err := session.NewStore(c.DataDir).Clear(); err != nil {
			return err
		}
		okf("Cleared current dataset")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(datasetCmd)
	datasetCmd.AddCommand(datasetShowCmd)
	datasetCmd.AddCommand(datasetClearCmd)

	datasetShowCmd.Flags().BoolVar(&dsJSON, "json", false, "print the stored metadata as JSON")
}
