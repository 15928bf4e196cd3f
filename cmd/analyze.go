package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sheetdash-cli/internal/analysis"
	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/KaramelBytes/sheetdash-cli/internal/parser"
	"github.com/KaramelBytes/sheetdash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaInput      inputFlags
	anaOutputPath string
	anaFormat     string
	anaSampleRows int
	anaTopValues  int
	anaCorr       bool
	anaOutliers   bool
	anaOutlierThr float64
	anaQuiet      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <files...>",
	Short: "Summarize CSV/TSV/XLSX tables: columns, numeric columns and per-column statistics",
	Long: `Analyze one or more tables and print a report per file.

Glob patterns are expanded (quote them to bypass the shell). Markdown output
concatenates the reports; JSON output is an object for one file and an array
for several.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format := strings.ToLower(anaFormat)
		if format != "md" && format != "json" {
			return fmt.Errorf("unsupported --format: %s (use md|json)", anaFormat)
		}
		files, err := utils.ExpandGlobs(args)
		if err != nil {
			return err
		}
		popt, err := anaInput.parserOptions()
		if err != nil {
			return err
		}
		opt := analysisOptions()
		if opt.Coercer, err = anaInput.coercer(); err != nil {
			return err
		}
		if cmd.Flags().Changed("sample-rows") {
			opt.SampleRows = anaSampleRows
		}
		if cmd.Flags().Changed("top-values") && anaTopValues > 0 {
			opt.TopValues = anaTopValues
		}
		opt.Correlations = anaCorr
		opt.Outliers = anaOutliers
		if anaOutlierThr > 0 {
			opt.OutlierThreshold = anaOutlierThr
		}

		results := make([]*analysis.Result, 0, len(files))
		for i, path := range files {
			if len(files) > 1 && !anaQuiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] Processing %s...\n", i+1, len(files), filepath.Base(path))
			}
			tbl, err := parser.ParseFile(path, popt)
			if err != nil {
				return err
			}
			res := analysis.Analyze(tbl, opt)
			res.Name = filepath.Base(path)
			if anaInput.sheetName != "" {
				res.Name = fmt.Sprintf("%s (sheet: %s)", res.Name, anaInput.sheetName)
			}
			logging.Debugf("analyzed %s: %d rows, %d columns", path, res.TotalRows, len(res.Columns))
			results = append(results, res)
		}

		var out []byte
		if format == "json" {
			var v any = results
			if len(results) == 1 {
				v = results[0]
			}
			if out, err = utils.PrettyJSON(v); err != nil {
				return err
			}
		} else {
			parts := make([]string, len(results))
			for i, r := range results {
				parts[i] = r.Markdown()
			}
			out = []byte(strings.Join(parts, "\n"))
		}

		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	anaInput.register(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the report")
	analyzeCmd.Flags().StringVarP(&anaFormat, "format", "f", "md", "report format: md|json")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 5, "number of sample rows to include")
	analyzeCmd.Flags().IntVar(&anaTopValues, "top-values", 8, "most frequent values listed per non-numeric column (default from config)")
	analyzeCmd.Flags().BoolVar(&anaCorr, "correlations", false, "compute Pearson correlations among numeric columns")
	analyzeCmd.Flags().BoolVar(&anaOutliers, "outliers", true, "compute robust outlier counts (MAD)")
	analyzeCmd.Flags().Float64Var(&anaOutlierThr, "outlier-threshold", 3.5, "robust |z| threshold for outliers (MAD-based)")
	analyzeCmd.Flags().BoolVarP(&anaQuiet, "quiet", "q", false, "suppress per-file progress")
}
