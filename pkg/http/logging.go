package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
)

func WithLogging(logger log.Logger, infoLevel, errorLevel log.Level) ServerOption {
	return WithMW(func(handler http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handler.ServeHTTP(w, r)
			if r.URL.Path == healthPath {
				return
			}

			meta := getHandlerMetadata(r.Context())
			entry := logger.With(log.Fields{
				"routeName":    routeName(r),
				"method":       r.Method,
				"path":         r.URL.Path,
				"responseCode": meta.Code,
			})

			switch {
			case meta.Panic != nil:
				entry.WithField("panic", log.Fields{
					"message": meta.Panic.Message,
					"stack":   string(meta.Panic.Stacktrace),
				}).Log(r.Context(), errorLevel, "request handled with panic")
			case meta.Code >= http.StatusInternalServerError:
				entry.WithError(meta.Error).Log(r.Context(), errorLevel, "request handled with internal error")
			case meta.Error != nil:
				entry.WithError(meta.Error).Log(r.Context(), infoLevel, "request handled with error")
			default:
				entry.Log(r.Context(), infoLevel, "request handled")
			}
		})
	})
}

func routeName(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil && route.GetName() != "" {
		return route.GetName()
	}

	return "unknown"
}
