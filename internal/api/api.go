package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/skybi/deeplink-proxy/internal/api/portal"
	"github.com/skybi/deeplink-proxy/internal/api/proxy"
	"github.com/skybi/deeplink-proxy/internal/config"
	"github.com/skybi/deeplink-proxy/internal/deeplink"
	"github.com/skybi/deeplink-proxy/internal/upstream"
)

// Service represents the proxy & portal API service
type Service struct {
	Config    *config.Config
	Caller    *upstream.Caller
	Client    *upstream.Client
	Generator *deeplink.Generator
	Registry  *prometheus.Registry

	proxy  *proxy.Service
	portal *portal.Service
}

// Startup starts up the proxy & portal APIs
func (service *Service) Startup(errs chan<- error) {
	proxyService := &proxy.Service{
		Config:   service.Config,
		Caller:   service.Caller,
		Registry: service.Registry,
	}
	service.proxy = proxyService
	proxyService.Startup(errs)

	// An empty listen address disables the portal API
	if service.Config.PortalListenAddress == "" {
		return
	}
	portalService := &portal.Service{
		Config:    service.Config,
		Client:    service.Client,
		Generator: service.Generator,
	}
	service.portal = portalService
	portalService.Startup(errs)
}

// Shutdown shuts down the proxy & portal APIs
func (service *Service) Shutdown() {
	if service.proxy != nil {
		service.proxy.Shutdown()
		service.proxy = nil
	}
	if service.portal != nil {
		service.portal.Shutdown()
		service.portal = nil
	}
}
