package pulsar

import (
	"fmt"
	"time"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/cenkalti/backoff/v4"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
)

const defaultConnectionTimeout = 20 * time.Second

type Config struct {
	Address           string
	ConnectionTimeout time.Duration
}

type Broker struct {
	client pulsar.Client
	logger log.Logger
}

func NewBroker(config Config, logger log.Logger) (*Broker, error) {
	c, err := pulsar.NewClient(pulsar.ClientOptions{
		URL:    fmt.Sprintf("pulsar://%s", config.Address),
		Logger: newClientLogger(logger),
	})
	if err != nil {
		return nil, fmt.Errorf("create pulsar client: %w", err)
	}

	broker := &Broker{
		client: c,
		logger: logger,
	}

	connTimeout := defaultConnectionTimeout
	if config.ConnectionTimeout > 0 {
		connTimeout = config.ConnectionTimeout
	}
	err = broker.testCreateProducer(connTimeout)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return broker, nil
}

func (b *Broker) Close() {
	b.client.Close()
}

func (b *Broker) testCreateProducer(connTimeout time.Duration) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = time.Second
	eb.RandomizationFactor = 0
	eb.Multiplier = 2
	eb.MaxInterval = connTimeout / 4
	eb.MaxElapsedTime = connTimeout

	return backoff.Retry(func() error {
		p, err := b.client.CreateProducer(pulsar.ProducerOptions{
			Topic: "non-persistent://public/default/gateway-connection-test",
		})
		if err == nil {
			p.Close()
		}
		return err
	}, eb)
}
