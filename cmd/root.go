package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	cfgpkg "github.com/KaramelBytes/spendboard/internal/config"
	"github.com/KaramelBytes/spendboard/internal/dashboard"
	"github.com/KaramelBytes/spendboard/internal/insights"
	"github.com/KaramelBytes/spendboard/internal/inspect"
	"github.com/KaramelBytes/spendboard/internal/logging"
	"github.com/KaramelBytes/spendboard/internal/metrics"
	"github.com/KaramelBytes/spendboard/internal/models"
	"github.com/KaramelBytes/spendboard/internal/parser"
)

var (
	// Global flags
	cfgFile string
	debug   bool
	// Path flags (override config if set)
	flagDataDir   string
	flagModelsDir string

	// Loaded configuration
	cfg *cfgpkg.Global
)

var rootCmd = &cobra.Command{
	Use:   "spendboard",
	Short: "Spendboard: customer spend analytics dashboard",
	Long: `Spendboard loads the customer, sales, product, store and promotion datasets
together with three pre-trained spend models, and presents them as an
interactive dashboard (serve) or as terminal and markdown reports.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		loadConfig()
	}
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.spendboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "directory holding the dataset files (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagModelsDir, "models-dir", "", "directory holding the model artifacts (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: config set can still repair the file
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		cfg = nil
		return
	}
	cfg = c

	f := rootCmd.PersistentFlags()
	if f.Changed("data-dir") && flagDataDir != "" {
		cfg.DataDir = flagDataDir
	}
	if f.Changed("models-dir") && flagModelsDir != "" {
		cfg.ModelsDir = flagModelsDir
	}
	if debug {
		cfg.LogLevel = "debug"
	}
}

// app is the wired dependency graph shared by the data commands.
type app struct {
	logger  *slog.Logger
	metrics *metrics.Collectors
	dash    *dashboard.Dashboard
}

func newApp(cmd *cobra.Command) (*app, error) {
	if cfg == nil {
		return nil, fmt.Errorf("no configuration loaded")
	}
	logger := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat)
	m := metrics.New()
	loader := parser.NewLoader(cfg.TableOptions(), logger, m)
	registry := models.NewRegistry(cfg.ModelsDir, logger, m)
	settings := dashboard.Settings{
		DataDir:  cfg.DataDir,
		Inspect:  inspect.Options{TopN: cfg.TopN, Bins: cfg.HistogramBins},
		Insights: insights.Options{TopN: cfg.TopN, Bins: cfg.HistogramBins},
	}
	logger.Debug("configured", "data_dir", cfg.DataDir, "models_dir", cfg.ModelsDir)
	return &app{logger: logger, metrics: m, dash: dashboard.New(loader, registry, settings, logger, m)}, nil
}
