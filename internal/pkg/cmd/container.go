package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/klwxsrx/go-rpc-gateway/pkg/cmd"
	"github.com/klwxsrx/go-rpc-gateway/pkg/env"
	"github.com/klwxsrx/go-rpc-gateway/pkg/http"
	"github.com/klwxsrx/go-rpc-gateway/pkg/lazy"
	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	"github.com/klwxsrx/go-rpc-gateway/pkg/metric"
	"github.com/klwxsrx/go-rpc-gateway/pkg/observability"
	"github.com/klwxsrx/go-rpc-gateway/pkg/pulsar"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

type InfrastructureContainer struct {
	HTTPServer       lazy.Loader[http.Server]
	RPCClientFactory lazy.Loader[*RPCClientFactory]
	Metrics          lazy.Loader[metric.PrometheusMetrics]
	Observer         lazy.Loader[observability.Observer]
	Logger           lazy.Loader[log.Logger]

	pulsarBroker lazy.Loader[*pulsar.Broker]
}

func NewInfrastructureContainer(ctx context.Context) *InfrastructureContainer {
	metrics := metricsProvider()
	logger := loggerProvider()
	observer := observerProvider(logger)
	broker := pulsarBrokerProvider(logger)

	return &InfrastructureContainer{
		HTTPServer:       httpServerProvider(observer, metrics, logger),
		RPCClientFactory: rpcClientFactoryProvider(ctx, broker, observer, metrics, logger),
		Metrics:          metrics,
		Observer:         observer,
		Logger:           logger,
		pulsarBroker:     broker,
	}
}

// Close must be deferred directly so that it can recover an app panic.
func (i *InfrastructureContainer) Close(ctx context.Context) {
	if cmd.HandleAppPanic(ctx, i.Logger.MustLoad(), recover()) {
		defer os.Exit(1)
	}

	i.RPCClientFactory.IfLoaded(func(factory *RPCClientFactory) {
		if err := factory.Close(); err != nil {
			i.Logger.MustLoad().WithError(err).Warn(ctx, "failed to close rpc transports")
		}
	})
	i.pulsarBroker.IfLoaded(func(broker *pulsar.Broker) { broker.Close() })
}

func metricsProvider() lazy.Loader[metric.PrometheusMetrics] {
	return lazy.New(func() (metric.PrometheusMetrics, error) {
		return metric.NewPrometheusMetrics(), nil
	})
}

func loggerProvider() lazy.Loader[log.Logger] {
	return lazy.New(func() (log.Logger, error) {
		logLevel, err := env.Parse[string]("LOG_LEVEL")
		if err != nil {
			return log.New(log.LevelInfo), nil
		}

		return log.New(log.ParseLevel(logLevel)), nil
	})
}

func observerProvider(
	logger lazy.Loader[log.Logger],
) lazy.Loader[observability.Observer] {
	return lazy.New(func() (observability.Observer, error) {
		return observability.New(
			observability.WithFieldsLogging(logger.MustLoad(), observability.LogFieldRequestID),
		), nil
	})
}

func httpServerProvider(
	observer lazy.Loader[observability.Observer],
	metrics lazy.Loader[metric.PrometheusMetrics],
	logger lazy.Loader[log.Logger],
) lazy.Loader[http.Server] {
	return lazy.New(func() (http.Server, error) {
		address := env.Must(env.ParseOrDefault("HTTP_ADDRESS", http.DefaultServerAddress))
		return http.NewServer(
			address,
			http.WithHealthCheck(),
			http.WithMetricsEndpoint(metrics.MustLoad().Handler()),
			http.WithCORSHandler(),
			http.WithObservability(
				observer.MustLoad(),
				http.NewHTTPHeaderRequestIDExtractor(http.DefaultRequestIDHeader),
				http.NewRandomUUIDRequestIDExtractor(),
			),
			http.WithMetrics(metrics.MustLoad()),
			http.WithLogging(logger.MustLoad(), log.LevelInfo, log.LevelError),
		), nil
	})
}

func rpcClientFactoryProvider(
	ctx context.Context,
	broker lazy.Loader[*pulsar.Broker],
	observer lazy.Loader[observability.Observer],
	metrics lazy.Loader[metric.PrometheusMetrics],
	logger lazy.Loader[log.Logger],
) lazy.Loader[*RPCClientFactory] {
	return lazy.New(func() (*RPCClientFactory, error) {
		transport := RPCTransportType(env.Must(env.ParseOrDefault("RPC_TRANSPORT", string(RPCTransportTCP))))
		if transport != RPCTransportTCP && transport != RPCTransportPulsar {
			return nil, fmt.Errorf("unknown rpc transport %q", transport)
		}

		return NewRPCClientFactory(
			ctx,
			transport,
			broker,
			logger.MustLoad(),
			rpc.WithDefaultTimeout(env.Must(env.ParseOrDefault("RPC_TIMEOUT", rpc.DefaultTimeout))),
			rpc.WithObservability(observer.MustLoad()),
			rpc.WithMetrics(metrics.MustLoad()),
			rpc.WithLogging(logger.MustLoad(), log.LevelInfo, log.LevelWarn),
		), nil
	})
}

func pulsarBrokerProvider(logger lazy.Loader[log.Logger]) lazy.Loader[*pulsar.Broker] {
	return lazy.New(func() (*pulsar.Broker, error) {
		config := pulsar.Config{
			Address: env.Must(env.Parse[string]("PULSAR_ADDRESS")),
		}
		connTimeout := env.Must(env.ParseOptional[time.Duration]("PULSAR_CONNECTION_TIMEOUT"))
		if connTimeout != nil {
			config.ConnectionTimeout = *connTimeout
		}

		broker, err := pulsar.NewBroker(config, logger.MustLoad().WithField("component", "pulsar"))
		if err != nil {
			panic(fmt.Errorf("open pulsar connection: %w", err))
		}

		return broker, nil
	})
}
