package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

const healthPath = "/healthz"

func WithHealthCheck() ServerOption {
	return func(router *mux.Router) {
		router.
			Name(getRouteName(http.MethodGet, healthPath)).
			Methods(http.MethodGet).
			Path(healthPath).
			HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				writeMessage(w, http.StatusOK, "OK")
			})
	}
}
