package cmd

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
)

// HandleAppPanic logs a value returned by recover. It must receive recover() evaluated
// directly in the deferred function.
func HandleAppPanic(ctx context.Context, logger log.Logger, recovered any) (panicCaught bool) {
	if recovered == nil {
		return false
	}

	logger.WithField("panic", log.Fields{
		"message": fmt.Sprintf("%v", recovered),
		"stack":   string(debug.Stack()),
	}).Error(ctx, "app failed with panic")
	return true
}
