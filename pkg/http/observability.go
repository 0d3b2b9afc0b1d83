package http

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/klwxsrx/go-rpc-gateway/pkg/observability"
)

const DefaultRequestIDHeader = "X-Request-ID"

type RequestIDExtractor func(*http.Request) string

func WithObservability(
	observer observability.Observer,
	requestIDExtractors ...RequestIDExtractor,
) ServerOption {
	return WithMW(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for _, extractor := range requestIDExtractors {
				if id := extractor(r); id != "" {
					r = r.WithContext(observer.WithRequestID(r.Context(), id))
					w.Header().Set(DefaultRequestIDHeader, id)
					break
				}
			}

			handler.ServeHTTP(w, r)
		})
	})
}

func NewHTTPHeaderRequestIDExtractor(header string) RequestIDExtractor {
	return func(r *http.Request) string {
		return r.Header.Get(header)
	}
}

func NewRandomUUIDRequestIDExtractor() RequestIDExtractor {
	return func(*http.Request) string {
		return uuid.NewString()
	}
}
