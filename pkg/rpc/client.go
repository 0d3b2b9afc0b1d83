//go:generate ${TOOLS_BIN}/mockgen -source ${GOFILE} -destination mock/${GOFILE} -package mock -mock_names "Client=Client,Transport=Transport"
package rpc

import (
	"context"
	"errors"
	"time"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	"github.com/klwxsrx/go-rpc-gateway/pkg/metric"
	"github.com/klwxsrx/go-rpc-gateway/pkg/observability"
)

const DefaultTimeout = 10 * time.Second

const metadataRequestID = "requestID"

type (
	Destination string

	Client interface {
		Destination() Destination
		Call(ctx context.Context, command string, payload any, opts ...CallOption) (Response, error)
	}

	// Transport delivers an envelope and waits for the first reply. Implementations wrap
	// ErrUnreachable for connection faults, return *Failure for remote errors and
	// the context error when ctx is done.
	Transport interface {
		Send(ctx context.Context, envelope Envelope) (Response, error)
		Close() error
	}

	CallOption   func(*callOptions)
	ClientOption func(*client)

	callOptions struct {
		timeout time.Duration
	}
)

type client struct {
	destination    Destination
	transport      Transport
	defaultTimeout time.Duration
	observer       observability.Observer
	metrics        metric.Metrics
	logger         log.Logger
	infoLevel      log.Level
	errorLevel     log.Level
}

func NewClient(destination Destination, transport Transport, opts ...ClientOption) Client {
	c := &client{
		destination:    destination,
		transport:      transport,
		defaultTimeout: DefaultTimeout,
		metrics:        metric.NewMetricsStub(),
		logger:         log.NewStub(),
		infoLevel:      log.LevelDisabled,
		errorLevel:     log.LevelDisabled,
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout bounds a single call. Non-positive values fall back to the client default.
func WithTimeout(timeout time.Duration) CallOption {
	return func(o *callOptions) {
		o.timeout = timeout
	}
}

func WithDefaultTimeout(timeout time.Duration) ClientOption {
	return func(c *client) {
		if timeout > 0 {
			c.defaultTimeout = timeout
		}
	}
}

func WithObservability(observer observability.Observer) ClientOption {
	return func(c *client) {
		c.observer = observer
	}
}

func WithMetrics(metrics metric.Metrics) ClientOption {
	return func(c *client) {
		c.metrics = metrics
	}
}

func WithLogging(logger log.Logger, infoLevel, errorLevel log.Level) ClientOption {
	return func(c *client) {
		c.logger = logger
		c.infoLevel = infoLevel
		c.errorLevel = errorLevel
	}
}

func (c *client) Destination() Destination {
	return c.destination
}

func (c *client) Call(ctx context.Context, command string, payload any, opts ...CallOption) (Response, error) {
	o := callOptions{timeout: c.defaultTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	if o.timeout <= 0 {
		o.timeout = c.defaultTimeout
	}

	envelope := Envelope{
		Command: command,
		Payload: payload,
	}
	if c.observer != nil {
		if requestID, ok := c.observer.RequestID(ctx); ok {
			envelope.Metadata = map[string]string{metadataRequestID: requestID}
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	started := time.Now()
	response, err := c.transport.Send(callCtx, envelope)
	duration := time.Since(started)
	if err != nil {
		err = classify(err)
	}

	c.observe(ctx, command, duration, err)
	return response, err
}

func classify(err error) *Failure {
	var failure *Failure
	switch {
	case errors.As(err, &failure):
		return failure
	case errors.Is(err, context.DeadlineExceeded):
		return &Failure{Kind: FailureTimeout, Message: "call timed out", Err: err}
	case errors.Is(err, ErrUnreachable):
		return &Failure{Kind: FailureUnreachable, Err: err}
	default:
		return &Failure{Kind: FailureUnknown, Err: err}
	}
}

func (c *client) observe(ctx context.Context, command string, duration time.Duration, err error) {
	result := "success"
	if err != nil {
		result = KindOf(err).String()
	}

	c.metrics.With(metric.Labels{
		"destination": string(c.destination),
		"command":     command,
		"result":      result,
	}).Duration("rpc_client_call_duration_seconds", duration)

	// payloads may carry credentials and are never logged
	logger := c.logger.With(log.Fields{
		"rpcDestination": c.destination,
		"rpcCommand":     command,
		"rpcResult":      result,
		"rpcDuration":    duration.Milliseconds(),
	})
	if err != nil {
		logger.WithError(err).Log(ctx, c.errorLevel, "rpc call failed")
		return
	}

	logger.Log(ctx, c.infoLevel, "rpc call handled")
}
