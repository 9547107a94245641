package portal

import (
	"errors"
	"github.com/skybi/deeplink-proxy/internal/api/schema"
	"github.com/skybi/deeplink-proxy/internal/api/validation"
	"github.com/skybi/deeplink-proxy/internal/deeplink"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"net/http"
)

const (
	maxHistoryOffset = 1 << 20
	maxHistoryLimit  = 500
)

var errNoDestinationURLs = &schema.Error{
	Type:    "deeplinks.noDestinationURLs",
	Message: "At least one non-blank destination URL is required.",
	Details: map[string]any{},
}

// EndpointGenerateDeeplinks handles the 'POST /v1/deeplinks' endpoint
func (service *Service) EndpointGenerateDeeplinks(writer http.ResponseWriter, request *http.Request) {
	type payload struct {
		OfferID *int64   `json:"offer_id" required:"true" min:"1"`
		URLs    []string `json:"urls" required:"true" max:"50"`
		upstream.AffSubs
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

	links, err := service.Generator.Generate(request.Context(), *body.OfferID, body.URLs, body.AffSubs)
	if err != nil {
		if errors.Is(err, deeplink.ErrNoURLs) {
			service.writer.WriteErrors(writer, http.StatusBadRequest, errNoDestinationURLs)
			return
		}
		service.writeClientError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, links)
}

// EndpointGetDeeplinkHistory handles the 'GET /v1/deeplinks' endpoint
func (service *Service) EndpointGetDeeplinkHistory(writer http.ResponseWriter, request *http.Request) {
	offset, validationErr := validation.QueryNumber(request, "offset", false, 0, 0, maxHistoryOffset)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}
	limit, validationErr := validation.QueryNumber(request, "limit", false, 10, 1, maxHistoryLimit)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	links, total, err := service.Generator.History(request.Context(), offset, limit)
	if err != nil {
		service.writer.WriteInternalError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, schema.BuildPaginatedResponse(offset, limit, total, links))
}
