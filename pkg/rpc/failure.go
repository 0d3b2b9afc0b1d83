package rpc

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type FailureKind int

const (
	FailureUnknown FailureKind = iota
	FailureTimeout
	FailureRejected
	FailureUnreachable
)

// ErrUnreachable is wrapped by transports when the backend connection can't be used.
var ErrUnreachable = errors.New("backend unreachable")

const remoteInternalErrorMessage = "Internal server error"

type Failure struct {
	Kind FailureKind
	// Status is the backend-provided status of a rejected call.
	Status  int
	Message string
	// Remote marks failures the backend reported in its reply, the call itself was delivered.
	Remote bool
	Err    error
}

func (k FailureKind) String() string {
	switch k {
	case FailureTimeout:
		return "timeout"
	case FailureRejected:
		return "rejected"
	case FailureUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

func (f *Failure) Error() string {
	msg := fmt.Sprintf("rpc call %s", f.Kind)
	if f.Message != "" {
		msg = fmt.Sprintf("%s: %s", msg, f.Message)
	}
	if f.Err != nil {
		msg = fmt.Sprintf("%s: %s", msg, f.Err.Error())
	}
	return msg
}

func (f *Failure) Unwrap() error {
	return f.Err
}

func KindOf(err error) FailureKind {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure.Kind
	}

	return FailureUnknown
}

// IsRemote reports whether err is a failure the backend answered with.
func IsRemote(err error) bool {
	var failure *Failure
	return errors.As(err, &failure) && failure.Remote
}

// NewRemoteFailure classifies the error payload of a reply. Objects carrying a numeric
// status are rejections with that status, {status: "error", message} objects are
// rejections with 400 unless they are the generic internal error, anything else is unknown.
func NewRemoteFailure(raw json.RawMessage) *Failure {
	failure := classifyRemote(raw)
	failure.Remote = true
	return failure
}

func classifyRemote(raw json.RawMessage) *Failure {
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return &Failure{Kind: FailureUnknown, Message: "malformed error payload", Err: err}
	}

	obj, ok := payload.(map[string]any)
	if !ok {
		return &Failure{Kind: FailureUnknown, Message: extractMessage(payload)}
	}

	message := extractMessage(obj["message"])
	if nested, ok := obj["response"].(map[string]any); ok && message == "" {
		message = extractMessage(nested["message"])
	}

	if status, ok := extractStatus(obj); ok {
		return &Failure{Kind: FailureRejected, Status: status, Message: message}
	}

	if statusValue, ok := obj["status"].(string); ok && statusValue == "error" && message != "" && message != remoteInternalErrorMessage {
		return &Failure{Kind: FailureRejected, Status: http.StatusBadRequest, Message: message}
	}

	return &Failure{Kind: FailureUnknown, Message: message}
}

func extractStatus(obj map[string]any) (int, bool) {
	for _, key := range []string{"statusCode", "status"} {
		if value, ok := obj[key].(float64); ok {
			status := int(value)
			if status >= http.StatusBadRequest && status <= 599 {
				return status, true
			}
			return http.StatusBadRequest, true
		}
	}

	if nested, ok := obj["response"].(map[string]any); ok {
		return extractStatus(nested)
	}

	return 0, false
}

func extractMessage(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := extractMessage(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		return extractMessage(v["message"])
	default:
		return ""
	}
}
