package cmd

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/klwxsrx/go-rpc-gateway/pkg/env"
	"github.com/klwxsrx/go-rpc-gateway/pkg/lazy"
	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	"github.com/klwxsrx/go-rpc-gateway/pkg/pulsar"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
	"github.com/klwxsrx/go-rpc-gateway/pkg/strings"
	"github.com/klwxsrx/go-rpc-gateway/pkg/worker"
)

type RPCTransportType string

const (
	RPCTransportTCP    RPCTransportType = "tcp"
	RPCTransportPulsar RPCTransportType = "pulsar"

	defaultPulsarTopicPrefix = "persistent://public/default/"
)

// RPCClientFactory opens one long-lived transport per backend destination.
type RPCClientFactory struct {
	ctx       context.Context
	transport RPCTransportType
	broker    lazy.Loader[*pulsar.Broker]
	logger    log.Logger
	opts      []rpc.ClientOption

	mutex      sync.Mutex
	transports []rpc.Transport
}

func NewRPCClientFactory(
	ctx context.Context,
	transport RPCTransportType,
	broker lazy.Loader[*pulsar.Broker],
	logger log.Logger,
	opts ...rpc.ClientOption,
) *RPCClientFactory {
	return &RPCClientFactory{
		ctx:       ctx,
		transport: transport,
		broker:    broker,
		logger:    logger,
		opts:      opts,
	}
}

// MustInitClient reads <DESTINATION>_SERVICE_* variables. A TCP backend that is down at startup
// does not stop the gateway, its transport connects again on the first call.
func (f *RPCClientFactory) MustInitClient(dest rpc.Destination, extraOpts ...rpc.ClientOption) rpc.Client {
	envPrefix := fmt.Sprintf("%s_SERVICE", strings.ToScreamingSnakeCase(string(dest)))

	var transport rpc.Transport
	switch f.transport {
	case RPCTransportPulsar:
		transport = f.mustInitPulsarTransport(dest, envPrefix)
	default:
		transport = f.initTCPTransport(dest, envPrefix)
	}

	f.mutex.Lock()
	f.transports = append(f.transports, transport)
	f.mutex.Unlock()

	opts := append(append([]rpc.ClientOption{}, f.opts...), extraOpts...)
	return rpc.NewClient(dest, transport, opts...)
}

// Close shuts every transport down in parallel and reports the first failure.
func (f *RPCClientFactory) Close() error {
	f.mutex.Lock()
	transports := f.transports
	f.transports = nil
	f.mutex.Unlock()

	_, group := worker.NewFailSafeGroup(context.Background())
	for _, transport := range transports {
		group.Do(func(context.Context) error {
			return transport.Close()
		})
	}

	return group.Wait()
}

func (f *RPCClientFactory) initTCPTransport(dest rpc.Destination, envPrefix string) rpc.Transport {
	host := env.Must(env.Parse[string](envPrefix + "_HOST"))
	port := env.Must(env.Parse[int](envPrefix + "_PORT"))
	config := rpc.TCPConfig{
		Address:       net.JoinHostPort(host, strconv.Itoa(port)),
		RetryAttempts: env.Must(env.ParseOrDefault(envPrefix+"_RETRY_ATTEMPTS", rpc.DefaultRetryAttempts)),
		RetryDelay:    env.Must(env.ParseOrDefault[time.Duration](envPrefix+"_RETRY_DELAY", rpc.DefaultRetryDelay)),
	}

	logger := f.logger.WithField("rpcDestination", dest)
	transport := rpc.NewTCPTransport(config, logger)
	if err := transport.Connect(f.ctx); err != nil {
		logger.WithError(err).Error(f.ctx, "rpc backend is not connected, will retry on first call")
	}

	return transport
}

func (f *RPCClientFactory) mustInitPulsarTransport(dest rpc.Destination, envPrefix string) rpc.Transport {
	topics := pulsar.RPCTopics{
		Request: env.Must(env.ParseOrDefault(envPrefix+"_REQUEST_TOPIC", defaultPulsarTopicPrefix+string(dest)+"-requests")),
		Reply:   env.Must(env.ParseOrDefault(envPrefix+"_REPLY_TOPIC", defaultPulsarTopicPrefix+"gateway-"+string(dest)+"-replies")),
	}

	transport, err := f.broker.MustLoad().NewRPCTransport(topics)
	if err != nil {
		panic(fmt.Errorf("init %s rpc transport: %w", dest, err))
	}

	return transport
}
