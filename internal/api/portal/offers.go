package portal

import (
	"github.com/skybi/deeplink-proxy/internal/api/validation"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"math"
	"net/http"
)

const (
	maxOffersLimit = 1000
	maxSortByLen   = 64
)

// EndpointGetOffers handles the 'GET /v1/offers' endpoint
func (service *Service) EndpointGetOffers(writer http.ResponseWriter, request *http.Request) {
	page, validationErr := validation.QueryNumber(request, "page", false, upstream.DefaultOffersPage, 1, math.MaxInt32)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}
	limit, validationErr := validation.QueryNumber(request, "limit", false, upstream.DefaultOffersLimit, 1, maxOffersLimit)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}
	sortBy, validationErr := validation.QueryString(request, "sort_by", upstream.DefaultOffersSortBy, maxSortByLen)
	if validationErr != nil {
		service.writer.WriteErrors(writer, http.StatusBadRequest, validationErr)
		return
	}

	offers, err := service.Client.ListOffers(request.Context(), page, limit, sortBy)
	if err != nil {
		service.writeClientError(writer, err)
		return
	}
	service.writer.WriteJSON(writer, offers)
}
