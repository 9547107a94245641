package proxy

import (
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/skybi/deeplink-proxy/internal/config"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"net/http"
)

// Service represents the proxy front service relaying JSON requests to the upstream API
type Service struct {
	server *http.Server

	Config *config.Config
	Caller *upstream.Caller

	// Registry receives the proxy metrics and is exposed on '/metrics'; a private one is created if nil
	Registry *prometheus.Registry

	metrics *Metrics
}

// Handler builds the HTTP handler of the proxy
func (service *Service) Handler() http.Handler {
	if service.Registry == nil {
		service.Registry = prometheus.NewRegistry()
	}
	if service.metrics == nil {
		service.metrics = NewMetrics(service.Registry)
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(service.MiddlewareLogRequests)
	router.Use(service.MiddlewareRecover)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: service.Config.ProxyAllowedOrigins,
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		writeStatus(writer, http.StatusNotFound, "error", "Not found")
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		writeStatus(writer, http.StatusMethodNotAllowed, "error", "Method not allowed")
	})

	// Register the endpoint handlers
	router.Get("/health", service.EndpointHealth)
	router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(service.Registry, promhttp.HandlerOpts{}))
	router.Post(service.Config.ProxyMountPrefix+"/*", service.EndpointForward)

	return otelhttp.NewHandler(router, "proxy")
}

// Startup starts up the proxy in the background.
// The server is set up before this method returns; errors other than a regular shutdown are sent to errs.
func (service *Service) Startup(errs chan<- error) {
	server := &http.Server{
		Addr:    service.Config.ProxyListenAddress,
		Handler: service.Handler(),
	}
	service.server = server
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the proxy
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}

// EndpointHealth handles the 'GET /health' endpoint
func (service *Service) EndpointHealth(writer http.ResponseWriter, _ *http.Request) {
	writeStatus(writer, http.StatusOK, "ok", "Proxy server is running")
}
