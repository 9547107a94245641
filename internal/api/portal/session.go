package portal

import (
	"github.com/rs/zerolog/log"
	"github.com/skybi/deeplink-proxy/internal/api/schema"
	"net/http"
)

type sessionState struct {
	Authenticated bool   `json:"authenticated"`
	Mode          string `json:"mode"`
}

// EndpointAuthenticate handles the 'POST /v1/session' endpoint
func (service *Service) EndpointAuthenticate(writer http.ResponseWriter, request *http.Request) {
	type payload struct {
		Key    *string `json:"key" required:"true" min:"1"`
		Secret *string `json:"secret" required:"true" min:"1"`
	}

	body, errs, err := schema.UnmarshalBody[payload](request)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	if len(errs) > 0 {
		service.writer.WriteErrors(writer, http.StatusBadRequest, errs...)
		return
	}

	if _, err := service.Client.Authenticate(request.Context(), *body.Key, *body.Secret); err != nil {
		service.writeClientError(writer, err)
		return
	}
	log.Info().Str("key", *body.Key).Msg("publisher authenticated")
	service.writer.WriteJSON(writer, service.sessionState())
}

// EndpointGetSession handles the 'GET /v1/session' endpoint
func (service *Service) EndpointGetSession(writer http.ResponseWriter, _ *http.Request) {
	service.writer.WriteJSON(writer, service.sessionState())
}

// EndpointLogout handles the 'DELETE /v1/session' endpoint.
// Logging out also forgets the deeplink history of the session.
func (service *Service) EndpointLogout(writer http.ResponseWriter, request *http.Request) {
	service.Client.Logout()
	if err := service.Generator.Forget(request.Context()); err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteNoContent(writer)
}

func (service *Service) sessionState() *sessionState {
	return &sessionState{
		Authenticated: service.Client.IsAuthenticated(),
		Mode:          service.Client.Mode().Name(),
	}
}
