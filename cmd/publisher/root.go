package main

import (
	"context"
	"encoding/json"
	"fmt"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/deeplink-proxy/internal/config"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"github.com/spf13/cobra"
	"io"
	"os"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "publisher",
	Short: "Command line client for the Involve Asia publisher API",
	Long: `Publisher talks to the Involve Asia publisher API directly or through a deeplink proxy gateway.

Credentials and the client mode are read from the environment (or a .env file):
  DP_API_KEY, DP_API_SECRET      publisher credentials
  DP_CLIENT_MODE                 'direct' (default) or 'gateway'
  DP_CLIENT_BASE_URL             base URL of the upstream API or the gateway
  DP_CLIENT_GATEWAY_CREDENTIAL   bearer credential sent to the gateway`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr()})
		if verbose {
			zerolog.SetGlobalLevel(zerolog.DebugLevel)
		} else {
			zerolog.SetGlobalLevel(zerolog.WarnLevel)
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log upstream calls")
}

// authenticatedClient builds an upstream client from the environment and authenticates it
func authenticatedClient(ctx context.Context) (*upstream.Client, error) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, fmt.Errorf("could not load the configuration: %w", err)
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, fmt.Errorf("DP_API_KEY and DP_API_SECRET must be set")
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	client := upstream.NewClient(upstream.NewCaller(upstream.CallerOptions{
		BaseURL:   cfg.EffectiveClientBaseURL(),
		UserAgent: cfg.UpstreamUserAgent,
		Timeout:   cfg.UpstreamTimeout,
	}), mode)
	if _, err := client.Authenticate(ctx, cfg.APIKey, cfg.APISecret); err != nil {
		return nil, err
	}
	return client, nil
}

func printJSON(out io.Writer, value any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}
