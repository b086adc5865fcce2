// Package cli wires the cobra command tree for the docharvest binary.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/altum-labs/docharvest/internal/client"
	"github.com/altum-labs/docharvest/internal/config"
	"github.com/altum-labs/docharvest/internal/core/services"
	"github.com/altum-labs/docharvest/internal/logger"
	"github.com/altum-labs/docharvest/internal/metrics"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagConfig  string
	flagBaseURL string
	flagToken   string
	flagVerbose bool
)

// cfg and harvester are built once in the persistent pre-run and
// shared by every command.
var (
	cfg       *config.Config
	harvester *services.Harvester
)

var rootCmd = &cobra.Command{
	Use:   "docharvest",
	Short: "Harvest annotation data from a document processing API",
	Long: `docharvest searches a document processing API for annotations and
pulls down their content trees, page geometry, queue extensions and
related emails for offline analysis.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(flagVerbose)

		// The version command needs no remote access.
		if cmd.Name() == "version" {
			return nil
		}

		path := flagConfig
		if path == "" {
			var err error
			if path, err = config.DefaultPath(); err != nil {
				return err
			}
		}

		var err error
		if cfg, err = config.Load(path); err != nil {
			return err
		}
		if flagBaseURL != "" {
			cfg.BaseURL = flagBaseURL
		}
		if flagToken != "" {
			cfg.Token = flagToken
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		opts := []client.Option{client.WithPageSize(cfg.PageSize)}
		if cfg.RateLimit > 0 {
			opts = append(opts, client.WithRateLimit(cfg.RateLimit, 1))
		}
		gw, err := client.New(cfg.BaseURL, cfg.Token, opts...)
		if err != nil {
			return err
		}

		harvester = services.NewHarvester(gw,
			services.WithChunkSize(cfg.ChunkSize),
			services.WithCooldown(cfg.Cooldown()),
		)

		if cfg.MetricsListen != "" {
			go func() {
				if err := metrics.Serve(cfg.MetricsListen); err != nil {
					logger.Warn("metrics endpoint: %v", err)
				}
			}()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default ~/.docharvest/config.toml)")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "API base URL (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "API bearer token (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		return fmt.Errorf("docharvest: %w", err)
	}
	return nil
}
