package http

import (
	"errors"
	"net/http"

	pkghttp "github.com/klwxsrx/go-rpc-gateway/pkg/http"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
	pkgstrings "github.com/klwxsrx/go-rpc-gateway/pkg/strings"
)

// translateFailure maps a call error to the caller-visible status and message.
// Transport details never reach the caller.
func translateFailure(destination rpc.Destination, err error) (int, string) {
	var failure *rpc.Failure
	if !errors.As(err, &failure) {
		return http.StatusInternalServerError, pkghttp.StatusMessage(http.StatusInternalServerError)
	}

	serviceName := pkgstrings.ToCamelCase(string(destination))
	switch failure.Kind {
	case rpc.FailureTimeout:
		return http.StatusGatewayTimeout, serviceName + " service timeout"
	case rpc.FailureUnreachable:
		return http.StatusServiceUnavailable, serviceName + " service unavailable"
	case rpc.FailureRejected:
		status := failure.Status
		if status < http.StatusBadRequest || status > 599 {
			status = http.StatusBadRequest
		}
		message := failure.Message
		if message == "" {
			message = http.StatusText(status)
		}
		return status, message
	default:
		return http.StatusBadRequest, serviceName + " service error"
	}
}

func writeFailure(w pkghttp.ResponseWriter, destination rpc.Destination, err error) error {
	status, message := translateFailure(destination, err)
	w.SetStatusCode(status).SetJSONBody(pkghttp.MessageOut{Message: message})
	return err
}
