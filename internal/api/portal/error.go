package portal

import (
	"errors"
	"github.com/skybi/deeplink-proxy/internal/api/schema"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"net/http"
)

// writeClientError maps an error returned by the upstream client onto the portal error catalogue
func (service *Service) writeClientError(writer http.ResponseWriter, err error) {
	var (
		authErr     *upstream.AuthenticationError
		upstreamErr *upstream.UpstreamError
		networkErr  *upstream.NetworkError
	)
	switch {
	case errors.Is(err, upstream.ErrNotAuthenticated):
		service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrNotAuthenticated)
	case errors.Is(err, upstream.ErrSessionExpired):
		service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrSessionExpired)
	case errors.As(err, &authErr):
		service.writer.WriteErrors(writer, http.StatusUnauthorized, schema.ErrAuthenticationFailed(authErr.Message, authErr.StatusCode))
	case errors.As(err, &upstreamErr):
		service.writer.WriteErrors(writer, http.StatusBadGateway, schema.ErrUpstream(upstreamErr.StatusCode, upstreamErr.Message, string(upstreamErr.Body)))
	case errors.As(err, &networkErr):
		service.writer.WriteErrors(writer, http.StatusGatewayTimeout, schema.ErrUpstreamUnreachable(networkErr.Timeout()))
	default:
		service.writer.WriteInternalError(writer, err)
	}
}
