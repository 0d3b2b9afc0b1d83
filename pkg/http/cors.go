package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

const defaultCORSAllowHeaders = "Content-Type, Accept, Authorization, X-Request-ID"

// WithCORSHandler reflects the caller origin so browsers may send the session cookie cross-site.
func WithCORSHandler() ServerOption {
	return func(router *mux.Router) {
		router.Use(func(handler http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				origin := r.Header.Get("Origin")
				if origin == "" {
					handler.ServeHTTP(w, r)
					return
				}

				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Credentials", "true")
				w.Header().Add("Vary", "Origin")

				if r.Method == http.MethodOptions {
					if method := r.Header.Get("Access-Control-Request-Method"); method != "" {
						w.Header().Set("Access-Control-Allow-Methods", method)
					}
					headers := r.Header.Get("Access-Control-Request-Headers")
					if headers == "" {
						headers = defaultCORSAllowHeaders
					}
					w.Header().Set("Access-Control-Allow-Headers", headers)
				}

				handler.ServeHTTP(w, r)
			})
		})
	}
}
