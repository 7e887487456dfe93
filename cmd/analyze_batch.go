package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/synthtab-cli/internal/analysis"
	"github.com/KaramelBytes/synthtab-cli/internal/utils"
)

var (
	abOutDir     string
	abDelimiter  string
	abSampleRows int
	abNoCorr     bool
	abOutliers   bool
	abOutlierThr float64
	abSheetName  string
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple CSV/TSV/XLSX files with progress, writing one summary per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}

		opt := analysis.DefaultOptions()
		opt.SampleRows = abSampleRows
		switch abDelimiter {
		case "":
		case ",":
			opt.Delimiter = ','
		case "\t", "tab":
			opt.Delimiter = '\t'
		case ";":
			opt.Delimiter = ';'
		default:
			return fmt.Errorf("unsupported --delimiter: %s", abDelimiter)
		}
		opt.Correlations = !abNoCorr
		opt.Outliers = abOutliers
		if abOutlierThr > 0 {
			opt.OutlierThreshold = abOutlierThr
		}
		opt.Sheet = abSheetName

		if abOutDir != "" {
			if err := utils.EnsureDir(abOutDir); err != nil {
				return err
			}
		}

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Printf("[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			rep, err := analysis.AnalyzeFile(path, opt)
			if err != nil {
				return err
			}
			md := rep.Markdown()
			if abOutDir == "" {
				if !abQuiet {
					fmt.Fprintln(cmd.OutOrStdout(), md)
				}
				continue
			}
			outFile := summaryPath(abOutDir, path, abSheetName)
			if err := utils.SafeWriteFile(outFile, []byte(md)); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				okf("Wrote %s", filepath.Base(outFile))
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist and drops
// duplicates. The result is sorted.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// summaryPath names the summary after the input file (and sheet), adding a
// __N suffix instead of overwriting an existing summary.
func summaryPath(outDir, input, sheet string) string {
	base := filepath.Base(input)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if sheet != "" {
		s := strings.ToLower(strings.TrimSpace(sheet))
		var b strings.Builder
		for _, r := range s {
			if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
				b.WriteRune(r)
			} else if r == ' ' || r == '-' || r == '_' {
				b.WriteRune('-')
			}
		}
		ss := strings.Trim(b.String(), "-")
		if ss == "" {
			ss = "sheet"
		}
		stem += "__sheet-" + ss
	}
	outFile := filepath.Join(outDir, stem+".summary.md")
	for idx := 2; ; idx++ {
		if _, err := os.Stat(outFile); os.IsNotExist(err) {
			return outFile
		}
		outFile = filepath.Join(outDir, fmt.Sprintf("%s__%d.summary.md", stem, idx))
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutDir, "out-dir", "", "write <name>.summary.md files here instead of printing")
	analyzeBatchCmd.Flags().StringVar(&abDelimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab'")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of sample rows to include (0 disables)")
	analyzeBatchCmd.Flags().BoolVar(&abNoCorr, "no-corr", false, "skip Pearson correlations among numeric columns")
	analyzeBatchCmd.Flags().BoolVar(&abOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeBatchCmd.Flags().Float64Var(&abOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	analyzeBatchCmd.Flags().StringVar(&abSheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
