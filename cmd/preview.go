package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/synthtab-cli/internal/analysis"
	"github.com/KaramelBytes/synthtab-cli/internal/session"
)

var (
	prevRows     int
	prevNoCorr   bool
	prevOutliers bool
)

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Show the first rows, column kinds and correlations of the current dataset",
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
		opt := analysis.DefaultOptions()
		if prevRows > 0 {
			opt.SampleRows = prevRows
		}
		opt.Correlations = !prevNoCorr
		opt.Outliers = prevOutliers

		rep := analysis.AnalyzeTable(res.Table, opt)
		rep.Name = res.ID
		fmt.Fprint(cmd.OutOrStdout(), rep.Markdown())
		for _, w := range res.Warnings {
			warnf("%s", w)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(previewCmd)
	previewCmd.Flags().IntVar(&prevRows, "rows", 0, "number of rows to show (default 20)")
	previewCmd.Flags().BoolVar(&prevNoCorr, "no-corr", false, "skip the correlation matrix")
	previewCmd.Flags().BoolVar(&prevOutliers, "outliers", false, "flag robust z-score outliers in numeric columns")
}
