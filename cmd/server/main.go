package main

import (
	"context"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/skybi/deeplink-proxy/internal/api"
	"github.com/skybi/deeplink-proxy/internal/config"
	"github.com/skybi/deeplink-proxy/internal/deeplink"
	"github.com/skybi/deeplink-proxy/internal/deeplink/storage/inmem"
	"github.com/skybi/deeplink-proxy/internal/task"
	"github.com/skybi/deeplink-proxy/internal/telemetry"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	// Set up zerolog to use pretty printing
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out: os.Stderr,
	})
	log.Info().Msg("starting up...")

	// Load the application configuration
	log.Info().Msg("loading configuration...")
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("could not load the configuration")
	}
	if cfg.IsEnvProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	log.Debug().Str("mode", cfg.ClientMode).Str("upstream", cfg.UpstreamBaseURL).Str("mount", cfg.ProxyMountPrefix).Msg("configuration loaded")

	// Install the trace exporter if tracing is enabled
	if cfg.TracingEnabled {
		shutdownTracer, err := telemetry.InitTracer("deeplink-proxy", os.Stdout)
		if err != nil {
			log.Fatal().Err(err).Msg("could not initialize tracing")
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownTracer(ctx); err != nil {
				log.Error().Err(err).Msg("could not flush pending spans")
			}
		}()
	}

	// Create the upstream caller used by the proxy and the client used by the portal
	mode, err := cfg.Mode()
	if err != nil {
		log.Fatal().Err(err).Msg("could not resolve the client mode")
	}
	proxyCaller := upstream.NewCaller(upstream.CallerOptions{
		BaseURL:   cfg.UpstreamBaseURL,
		UserAgent: cfg.UpstreamUserAgent,
		Timeout:   cfg.UpstreamTimeout,
	})
	client := upstream.NewClient(upstream.NewCaller(upstream.CallerOptions{
		BaseURL:   cfg.EffectiveClientBaseURL(),
		UserAgent: cfg.UpstreamUserAgent,
		Timeout:   cfg.UpstreamTimeout,
	}), mode)

	// Create the deeplink history and schedule a task that prunes it
	historyStorage, err := inmem.New()
	if err != nil {
		log.Fatal().Err(err).Msg("could not create the deeplink history storage")
	}
	generator := deeplink.NewGenerator(client, historyStorage)
	pruningTask := task.NewRepeating(func(ctx context.Context) {
		n, err := generator.Prune(ctx, cfg.HistoryRetention)
		if err != nil {
			log.Error().Err(err).Msg("could not prune the deeplink history")
		} else if n > 0 {
			log.Info().Int("amount", n).Msg("pruned expired deeplinks")
		}
	}, time.Minute)
	pruningTask.Start()
	defer pruningTask.Stop(true)

	// Register the process collectors next to the proxy metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	// Start up the proxy & portal APIs
	log.Info().Str("proxy_api", cfg.ProxyListenAddress).Str("portal_api", cfg.PortalListenAddress).Msg("starting up proxy & portal APIs...")
	apis := &api.Service{
		Config:    cfg,
		Caller:    proxyCaller,
		Client:    client,
		Generator: generator,
		Registry:  registry,
	}
	apiErrs := make(chan error, 2)
	apis.Startup(apiErrs)
	go func() {
		err := <-apiErrs
		log.Fatal().Err(err).Msg("the API service raised an unexpected error")
	}()
	defer func() {
		log.Info().Msg("shutting down the proxy & portal APIs...")
		apis.Shutdown()
	}()

	log.Info().Msgf("done! proxying %s/* to %s", cfg.ProxyMountPrefix, proxyCaller.BaseURL())
	defer log.Info().Msg("shutting down...")

	// Wait for the application to be terminated
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	<-shutdown
}
