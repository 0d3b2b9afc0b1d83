package http

import (
	"errors"
	"net/http"

	"github.com/klwxsrx/go-rpc-gateway/pkg/auth"
)

type AuthTokenProvider func(*http.Request) (auth.Token, bool)

// WithAuth attaches the authentication produced by provider to the request context.
// Requests without a token or with a rejected token continue as anonymous, the rejection
// reason is kept as the handler error. Provider faults end the request with 500.
func WithAuth[T auth.Principal](provider auth.Provider[T], tokenProviders ...AuthTokenProvider) ServerOption {
	return WithMW(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var ok bool
			var token auth.Token
			for _, tokenProvider := range tokenProviders {
				token, ok = tokenProvider(r)
				if ok {
					break
				}
			}
			if !ok {
				r = r.WithContext(auth.WithAuthentication[T](r.Context(), auth.Auth[T]{}))
				handler.ServeHTTP(w, r)
				return
			}

			authData, err := provider.Authenticate(r.Context(), token)
			if errors.Is(err, auth.ErrUnauthenticated) {
				getHandlerMetadata(r.Context()).Error = err
				authData = auth.Auth[T]{}
			} else if err != nil {
				writeHandlerResult(w, r, http.StatusInternalServerError, err)
				return
			}

			r = r.WithContext(auth.WithAuthentication(r.Context(), authData))
			handler.ServeHTTP(w, r)
		})
	})
}

func WithAuthenticationRequirement() ServerOption {
	return WithMW(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			isAuthenticated, err := auth.IsAuthenticated(r.Context())
			if err != nil {
				writeHandlerResult(w, r, http.StatusInternalServerError, err)
				return
			}

			if !isAuthenticated {
				meta := getHandlerMetadata(r.Context())
				if meta.Error == nil {
					meta.Error = auth.ErrUnauthenticated
				}
				writeHandlerResult(w, r, http.StatusUnauthorized, meta.Error)
				return
			}

			handler.ServeHTTP(w, r)
		})
	})
}

func writeHandlerResult(w http.ResponseWriter, r *http.Request, httpCode int, err error) {
	meta := getHandlerMetadata(r.Context())
	meta.Code = httpCode
	meta.Error = err

	writeMessage(w, httpCode, StatusMessage(httpCode))
}
