package proxy

import (
	"errors"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
	"github.com/skybi/deeplink-proxy/internal/form"
	"github.com/skybi/deeplink-proxy/internal/upstream"
	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"
	"io"
	"net/http"
	"strings"
)

const (
	contentTypeJSON = "application/json"
	contentTypeForm = "application/x-www-form-urlencoded"

	// maxRequestBodySize limits the JSON bodies accepted from callers
	maxRequestBodySize = 1 << 20

	invalidJSONWrapper = `{"error":"Invalid JSON response"}`
)

// EndpointForward handles the 'POST <mount prefix>/*' endpoint.
// The JSON object body is re-encoded as a form and posted to the same path at the upstream API; the upstream
// response is relayed with its status code.
func (service *Service) EndpointForward(writer http.ResponseWriter, request *http.Request) {
	logger := log.Ctx(request.Context())
	targetPath := "/" + chi.URLParam(request, "*")

	body, err := io.ReadAll(io.LimitReader(request.Body, maxRequestBodySize))
	if err != nil {
		writeStatus(writer, http.StatusBadRequest, "error", "Invalid request body: "+err.Error())
		return
	}
	// Bodies that are not a JSON object are rejected as client errors before any upstream call
	outbound, err := form.FromJSON(body)
	if err != nil {
		writeStatus(writer, http.StatusBadRequest, "error", "Invalid request body: "+err.Error())
		return
	}

	logger.Debug().Str("target", service.Caller.TargetURL(targetPath)).Strs("fields", outbound.Keys()).Msg("forwarding request")
	response, err := service.Caller.Do(request.Context(), upstream.Call{
		Path:          targetPath,
		Body:          []byte(outbound.Encode()),
		ContentType:   contentTypeForm,
		Authorization: request.Header.Get("Authorization"),
	})
	if err != nil {
		service.recordFailure(err)
		logger.Error().Err(err).Str("target", targetPath).Msg("the proxy could not reach the upstream API")
		writeStatus(writer, http.StatusInternalServerError, "error", "Proxy server error: "+failureDetail(err))
		return
	}
	service.metrics.upstreamDuration.Observe(response.Duration.Seconds())

	service.relay(writer, response)
}

// relay writes an upstream response back to the caller
func (service *Service) relay(writer http.ResponseWriter, response *upstream.Response) {
	switch {
	case gjson.ValidBytes(response.Body):
		writer.Header().Set("Content-Type", contentTypeJSON)
		writer.WriteHeader(response.StatusCode)
		writer.Write(pretty.Ugly(response.Body))
	case service.Config.ProxyWrapInvalidJSON:
		wrapped, err := sjson.SetBytes([]byte(invalidJSONWrapper), "raw", string(response.Body))
		if err != nil {
			writeStatus(writer, http.StatusInternalServerError, "error", "Proxy server error: "+err.Error())
			return
		}
		writer.Header().Set("Content-Type", contentTypeJSON)
		writer.WriteHeader(response.StatusCode)
		writer.Write(wrapped)
	default:
		contentType := response.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(response.Body)
		}
		writer.Header().Set("Content-Type", contentType)
		writer.WriteHeader(response.StatusCode)
		writer.Write(response.Body)
	}
}

func (service *Service) recordFailure(err error) {
	var networkErr *upstream.NetworkError
	switch {
	case errors.As(err, &networkErr) && networkErr.Timeout():
		service.metrics.observeFailure("timeout")
	case errors.As(err, &networkErr):
		service.metrics.observeFailure("network")
	default:
		service.metrics.observeFailure("internal")
	}
}

func failureDetail(err error) string {
	var networkErr *upstream.NetworkError
	if errors.As(err, &networkErr) {
		if networkErr.Timeout() {
			return "upstream request timed out"
		}
		return strings.TrimSpace(networkErr.Err.Error())
	}
	return err.Error()
}
