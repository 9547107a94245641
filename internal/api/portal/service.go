package portal

import (
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"
	"github.com/skybi/deeplink-proxy/internal/api/schema"
	"github.com/skybi/deeplink-proxy/internal/config"
	"github.com/skybi/deeplink-proxy/internal/deeplink"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"net/http"
)

// Service represents the portal API service exposing the upstream client to browser UIs
type Service struct {
	server *http.Server

	Config    *config.Config
	Client    *upstream.Client
	Generator *deeplink.Generator

	writer *schema.Writer
}

// Handler builds the HTTP handler of the portal API
func (service *Service) Handler() http.Handler {
	// Create the HTTP schema writer
	service.writer = &schema.Writer{
		InternalErrorHook: func(err error) {
			log.Error().Err(err).Msg("the portal API experienced an unexpected error")
		},
	}

	// Create the HTTP router
	router := chi.NewRouter()
	router.Use(middleware.RedirectSlashes)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: service.Config.EffectivePortalAllowedOrigins(),
		AllowedMethods: []string{
			http.MethodHead,
			http.MethodGet,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}))
	router.NotFound(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusNotFound, schema.ErrNotFound)
	})
	router.MethodNotAllowed(func(writer http.ResponseWriter, _ *http.Request) {
		service.writer.WriteErrors(writer, http.StatusMethodNotAllowed, schema.ErrMethodNotAllowed)
	})

	// Register the session endpoints
	router.Post("/v1/session", service.EndpointAuthenticate)
	router.Get("/v1/session", service.EndpointGetSession)
	router.Delete("/v1/session", service.EndpointLogout)

	// Register the offer & deeplink endpoints
	router.Get("/v1/offers", service.EndpointGetOffers)
	router.Post("/v1/deeplinks", service.EndpointGenerateDeeplinks)
	router.Get("/v1/deeplinks", service.EndpointGetDeeplinkHistory)

	return otelhttp.NewHandler(router, "portal")
}

// Startup starts up the portal API in the background.
// The server is set up before this method returns; errors other than a regular shutdown are sent to errs.
func (service *Service) Startup(errs chan<- error) {
	server := &http.Server{
		Addr:    service.Config.PortalListenAddress,
		Handler: service.Handler(),
	}
	service.server = server
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
	}()
}

// Shutdown shuts down the portal API
func (service *Service) Shutdown() {
	if service.server != nil {
		service.server.Close()
		service.server = nil
	}
}
