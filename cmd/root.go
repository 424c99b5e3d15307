// Package cmd implements the CLI commands using Cobra.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"panopto-urls/internal/config"
	"panopto-urls/internal/httputil"
	"panopto-urls/internal/provider"
	"panopto-urls/internal/ui"
)

// Version is set at build time via ldflags.
var Version = "dev"

// cookieEnv supplies the session cookie when -c is not given.
const cookieEnv = "PANOPTO_COOKIE"

// Global flags
var (
	flagConfig  string
	flagOutput  string
	flagXargs   bool
	flagCookie  string
	flagTimeout int
	flagHistory bool
	flagDebug   bool
)

// cfg holds the loaded configuration (merged: defaults < config file < env < flags).
var cfg *config.Config

// newHTTPClient is swapped in tests to trust httptest certificates.
var newHTTPClient = httputil.NewClient

var rootCmd = &cobra.Command{
	Use:   "panopto-urls <podcast_url>",
	Short: "Extract video URLs from a Panopto podcast feed or viewer page",
	Long: `panopto-urls prints the direct video URLs behind a Panopto podcast feed
(/Panopto/Podcast/Podcast.ashx) or a single viewer page (/Panopto/Pages/Viewer.aspx).

With -x each URL is preceded by curl directives, so the list can be piped straight
into a batch download:

  panopto-urls -x "$FEED" | xargs -n 3 curl -L
  panopto-urls -x -c "$COOKIE" "$VIEWER" | xargs -n 5 curl -L`,
	Args:              cobra.ExactArgs(1),
	PersistentPreRunE: loadConfig,
	RunE:              extractRun,
	SilenceErrors:     true,
	SilenceUsage:      true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "panopto-urls", Version)
	},
}

// Execute runs the root command and exits non-zero on any error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		ui.PrintError(os.Stderr, err)
		if errors.Is(err, provider.ErrLoginRequired) {
			ui.PrintHint(os.Stderr, "tip: export "+cookieEnv+"=<cookie> to reuse a session across runs")
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().StringVarP(&flagOutput, "output_file", "o", "", "Write the list to this file instead of stdout")
	rootCmd.Flags().BoolVarP(&flagXargs, "output_xargs", "x", false, "Precede each URL with curl -o/-H directives for xargs")
	rootCmd.Flags().StringVarP(&flagCookie, "cookie", "c", "", "Session cookie value (default $"+cookieEnv+")")
	rootCmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Fetch timeout in seconds (default 30)")
	rootCmd.Flags().BoolVar(&flagHistory, "history", false, "Record this run in the history database")
	rootCmd.Flags().SetNormalizeFunc(underscoreFlags)

	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (.toml, .yaml or .yml)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Debug logging to stderr")

	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

// underscoreFlags accepts --output-file as well as --output_file.
func underscoreFlags(_ *pflag.FlagSet, name string) pflag.NormalizedName {
	return pflag.NormalizedName(strings.ReplaceAll(name, "-", "_"))
}

// loadConfig loads and merges configuration: defaults < config file < env < CLI flags.
func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(flagConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if env := os.Getenv(cookieEnv); env != "" {
		cfg.Cookie = env
	}

	// CLI flags override config file values
	if flagCookie != "" {
		cfg.Cookie = flagCookie
	}
	if flagTimeout != 0 {
		cfg.TimeoutSeconds = flagTimeout
	}
	if flagXargs {
		cfg.Xargs = true
	}
	if flagHistory {
		cfg.History = true
	}
	if flagDebug {
		cfg.Debug = true
	}

	// Re-validate after flag overrides
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{Prefix: "panopto-urls"})
	if cfg.Debug {
		logger.SetLevel(log.DebugLevel)
		logger.SetReportTimestamp(true)
		logger.SetReportCaller(true)
	}
	log.SetDefault(logger)

	return nil
}

func timeout() time.Duration {
	return time.Duration(cfg.TimeoutSeconds) * time.Second
}
