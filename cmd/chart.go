package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/KaramelBytes/sheetdash-cli/internal/analysis"
	"github.com/KaramelBytes/sheetdash-cli/internal/chart"
	"github.com/KaramelBytes/sheetdash-cli/internal/parser"
	"github.com/KaramelBytes/sheetdash-cli/internal/render"
	"github.com/KaramelBytes/sheetdash-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	chInput  inputFlags
	chX      string
	chY      string
	chType   string
	chFormat string
	chOutput string
	chWidth  int
	chHeight int
)

var chartCmd = &cobra.Command{
	Use:   "chart <file>",
	Short: "Shape a chart series from a table and emit it as JSON, Chart.js, msgpack, PNG or SVG",
	Long: `Shape the (x, y) series for one chart. Rows whose y value is not a number are dropped.

When --x or --y is omitted the defaults are the first column and the first
numeric column. Binary formats (msgpack, png, svg) require --output.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		format := strings.ToLower(chFormat)
		switch format {
		case "json", "chartjs", "msgpack", "png", "svg":
		default:
			return fmt.Errorf("unsupported --format: %s (use json|chartjs|msgpack|png|svg)", chFormat)
		}
		if chOutput == "" && (format == "msgpack" || format == "png" || format == "svg") {
			return fmt.Errorf("--format %s writes binary data; use --output", format)
		}

		popt, err := chInput.parserOptions()
		if err != nil {
			return err
		}
		coercer, err := chInput.coercer()
		if err != nil {
			return err
		}
		tbl, err := parser.ParseFile(path, popt)
		if err != nil {
			return err
		}

		kindName := chType
		if !cmd.Flags().Changed("type") {
			kindName = settings().DefaultChartType
		}
		kind, err := chart.ParseKind(kindName)
		if err != nil {
			return errors.New(render.Placeholder(err))
		}
		opt := analysisOptions()
		opt.Coercer = coercer
		cfgChart := chart.Defaults(analysis.Analyze(tbl, opt), kind)
		if chX != "" {
			cfgChart.XAxis = chX
		}
		if chY != "" {
			cfgChart.YAxis = chY
		}

		series, err := chart.Shape(tbl, cfgChart, coercer)
		if err != nil {
			return errors.New(render.Placeholder(err))
		}

		var out []byte
		switch format {
		case "json":
			out, err = utils.PrettyJSON(render.NewPayload(series))
		case "chartjs":
			out, err = utils.PrettyJSON(render.ChartJS(series))
		case "msgpack":
			out, err = render.Msgpack(series)
		default:
			w, h := settings().ImageWidth, settings().ImageHeight
			if chWidth > 0 {
				w = chWidth
			}
			if chHeight > 0 {
				h = chHeight
			}
			var buf bytes.Buffer
			if err := render.Image(series, render.Format(format), w, h, &buf); err != nil {
				if errors.Is(err, render.ErrEmptySeries) || errors.Is(err, render.ErrUnsupportedKind) {
					return errors.New(render.Placeholder(err))
				}
				return err
			}
			out = buf.Bytes()
		}
		if err != nil {
			return err
		}

		if chOutput != "" {
			if err := utils.SafeWriteFile(chOutput, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s (%d points) written to %s\n", render.Title(series), len(series.Points), filepath.Clean(chOutput))
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(chartCmd)
	chInput.register(chartCmd)
	chartCmd.Flags().StringVar(&chX, "x", "", "x-axis column (default: first column)")
	chartCmd.Flags().StringVar(&chY, "y", "", "y-axis column (default: first numeric column)")
	chartCmd.Flags().StringVarP(&chType, "type", "t", "bar", "chart type: bar|line|pie|scatter|radar|doughnut (default from config)")
	chartCmd.Flags().StringVarP(&chFormat, "format", "f", "json", "output: json|chartjs|msgpack|png|svg")
	chartCmd.Flags().StringVarP(&chOutput, "output", "o", "", "write to this path instead of stdout")
	chartCmd.Flags().IntVar(&chWidth, "width", 0, "image width in pixels (default from config)")
	chartCmd.Flags().IntVar(&chHeight, "height", 0, "image height in pixels (default from config)")
}
