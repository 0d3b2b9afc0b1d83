package service

import (
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

const (
	DestinationAuth         rpc.Destination = "auth"
	DestinationOrder        rpc.Destination = "order"
	DestinationNotification rpc.Destination = "notification"
)

var Destinations = []rpc.Destination{
	DestinationAuth,
	DestinationOrder,
	DestinationNotification,
}

func malformedResponse(destination rpc.Destination, command string, err error) error {
	return &rpc.Failure{
		Kind:    rpc.FailureUnknown,
		Message: "malformed " + command + " response from " + string(destination),
		Err:     err,
	}
}
