package proxy

import (
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"net/http"
	"time"
)

const headerRequestID = "X-Request-Id"

// MiddlewareLogRequests assigns every request an ID, logs it after completion and counts its response status
func (service *Service) MiddlewareLogRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		requestID := request.Header.Get(headerRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		writer.Header().Set(headerRequestID, requestID)

		logger := log.With().Str("request_id", requestID).Logger()
		request = request.WithContext(logger.WithContext(request.Context()))

		wrapped := middleware.NewWrapResponseWriter(writer, request.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(wrapped, request)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		service.metrics.observeRequest(status)
		logger.Debug().
			Str("method", request.Method).
			Str("path", request.URL.Path).
			Int("status", status).
			Dur("duration", time.Since(start)).
			Msg("handled request")
	})
}

// MiddlewareRecover turns panics of downstream handlers into a structured 500 response
func (service *Service) MiddlewareRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		defer func() {
			if recovered := recover(); recovered != nil {
				if recovered == http.ErrAbortHandler {
					panic(recovered)
				}
				log.Ctx(request.Context()).Error().Interface("panic", recovered).Msg("the proxy recovered from a panic")
				writeStatus(writer, http.StatusInternalServerError, "error", "Internal server error")
			}
		}()
		next.ServeHTTP(writer, request)
	})
}
