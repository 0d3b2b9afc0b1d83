package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

func TestTranslateFailure(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "timeout",
			err:     &rpc.Failure{Kind: rpc.FailureTimeout, Err: context.DeadlineExceeded},
			status:  http.StatusGatewayTimeout,
			message: "Order service timeout",
		},
		{
			name:    "unreachable",
			err:     &rpc.Failure{Kind: rpc.FailureUnreachable, Err: rpc.ErrUnreachable},
			status:  http.StatusServiceUnavailable,
			message: "Order service unavailable",
		},
		{
			name:    "rejected_keeps_status_and_message",
			err:     rpc.NewRemoteFailure(json.RawMessage(`{"statusCode":409,"message":"Order exists"}`)),
			status:  http.StatusConflict,
			message: "Order exists",
		},
		{
			name:    "rejected_without_message",
			err:     &rpc.Failure{Kind: rpc.FailureRejected, Status: http.StatusNotFound},
			status:  http.StatusNotFound,
			message: "Not Found",
		},
		{
			name:    "rejected_with_non_error_status",
			err:     &rpc.Failure{Kind: rpc.FailureRejected, Status: http.StatusOK, Message: "odd"},
			status:  http.StatusBadRequest,
			message: "odd",
		},
		{
			name:    "unknown",
			err:     rpc.NewRemoteFailure(json.RawMessage(`{"status":"error","message":"Internal server error"}`)),
			status:  http.StatusBadRequest,
			message: "Order service error",
		},
		{
			name:    "wrapped_failure",
			err:     errors.Join(errors.New("context"), &rpc.Failure{Kind: rpc.FailureTimeout}),
			status:  http.StatusGatewayTimeout,
			message: "Order service timeout",
		},
		{
			name:    "not_a_call_failure",
			err:     errors.New("boom"),
			status:  http.StatusInternalServerError,
			message: "Internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := translateFailure("order", tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestWebhookSignature_Verify(t *testing.T) {
	disabled := NewWebhookSignature("")
	assert.False(t, disabled.Enabled())
	assert.True(t, disabled.Verify([]byte(`{}`), ""))

	enabled := NewWebhookSignature("secret")
	assert.True(t, enabled.Enabled())
	assert.False(t, enabled.Verify([]byte(`{}`), ""))
	assert.False(t, enabled.Verify([]byte(`{}`), "deadbeef"))
}
