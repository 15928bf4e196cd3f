package cmd

import (
	"fmt"
	"os"

	"github.com/KaramelBytes/sheetdash-cli/internal/analysis"
	cfgpkg "github.com/KaramelBytes/sheetdash-cli/internal/config"
	"github.com/KaramelBytes/sheetdash-cli/internal/logging"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile string
	debug   bool

	// Loaded configuration
	cfg *cfgpkg.Global
)

// Version is stamped at build time via -ldflags.
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "sheetdash",
	Short: "SheetDash CLI: summary statistics and charts for spreadsheets",
	Long: `SheetDash reads CSV/TSV/XLSX tables, reports per-column summary statistics
and shapes chart-ready series (JSON, Chart.js, msgpack, PNG/SVG). It can also
serve the same operations as a local dashboard API.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.sheetdash/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug output")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: commands fall back to built-in defaults
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
	} else {
		cfg = c
	}
	level := logging.LevelInfo
	if cfg != nil {
		level = logging.ParseLevel(cfg.LogLevel)
	}
	if debug {
		level = logging.LevelDebug
	}
	logging.SetLevel(level)
}

// settings returns the loaded configuration or the built-in defaults.
func settings() *cfgpkg.Global {
	if cfg != nil {
		return cfg
	}
	return &cfgpkg.Global{
		ServerAddr:       "127.0.0.1:8080",
		MaxUploadMB:      32,
		MaxSessions:      10,
		SessionTTLMin:    30,
		DefaultChartType: "bar",
		TopValues:        8,
		ImageWidth:       800,
		ImageHeight:      400,
		LogLevel:         "info",
	}
}

// analysisOptions seeds analysis options from configuration.
func analysisOptions() analysis.Options {
	opt := analysis.DefaultOptions()
	if tv := settings().TopValues; tv > 0 {
		opt.TopValues = tv
	}
	return opt
}
