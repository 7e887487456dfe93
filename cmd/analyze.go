package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/synthtab-cli/internal/analysis"
	"github.com/KaramelBytes/synthtab-cli/internal/utils"
)

var (
	anaOutputPath string
	anaDelimiter  string
	anaSampleRows int
	anaNoCorr     bool
	anaSheetName  string
	anaOutliers   bool
	anaOutlierThr float64
	anaCatMax     int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Analyze a CSV/TSV/XLSX file and produce a concise summary",
	Long: `Analyze reads a delimited or Excel file, infers column kinds and prints the same
summary preview shows for generated data. Useful for checking an exported file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		opt := analysis.DefaultOptions()
		if anaSampleRows > 0 {
			opt.SampleRows = anaSampleRows
		}
		if anaCatMax > 0 {
			opt.CategoricalMax = anaCatMax
		}
		switch anaDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		case "|", "pipe":
			opt.Delimiter = '|'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", anaDelimiter)
		}
		opt.Correlations = !anaNoCorr
		opt.Sheet = anaSheetName
		opt.Outliers = anaOutliers
		if anaOutlierThr > 0 {
			opt.OutlierThreshold = anaOutlierThr
		}

		rep, err := analysis.AnalyzeFile(path, opt)
		if err != nil {
			return err
		}
		md := rep.Markdown()
		if anaOutputPath == "" {
			fmt.Fprint(cmd.OutOrStdout(), md)
			return nil
		}
		if dir := filepath.Dir(anaOutputPath); dir != "" {
			if err := utils.EnsureDir(dir); err != nil {
				return err
			}
		}
		if err := utils.SafeWriteFile(anaOutputPath, []byte(md)); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
		okf("Wrote summary to %s", anaOutputPath)
		if debug {
			if st, err := os.Stat(anaOutputPath); err == nil {
				debugf("summary size %s", utils.HumanBytes(st.Size()))
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "write the summary to this file instead of stdout")
	analyzeCmd.Flags().StringVar(&anaDelimiter, "delimiter", "", "field delimiter: ,|tab|;|pipe (default from extension)")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 0, "number of preview rows (default 20)")
	analyzeCmd.Flags().BoolVar(&anaNoCorr, "no-corr", false, "skip the correlation matrix")
	analyzeCmd.Flags().StringVar(&anaSheetName, "sheet-name", "", "XLSX sheet to read (default first)")
	analyzeCmd.Flags().BoolVar(&anaOutliers, "outliers", false, "count robust z-score outliers in numeric columns")
	analyzeCmd.Flags().Float64Var(&anaOutlierThr, "outlier-threshold", 0, "robust |z| threshold (default 3.5)")
	analyzeCmd.Flags().IntVar(&anaCatMax, "categorical-max", 0, "largest distinct count treated as categorical (default 20)")
}
