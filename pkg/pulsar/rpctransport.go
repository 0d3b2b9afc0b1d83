package pulsar

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sync"

	"github.com/apache/pulsar-client-go/pulsar"
	"github.com/google/uuid"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

const (
	propertyReplyTo       = "replyTo"
	propertyCorrelationID = "correlationId"
	propertyCommand       = "command"
)

var errTransportClosed = errors.New("pulsar rpc transport closed")

type RPCTopics struct {
	Request string
	// Reply is owned by a single gateway instance, NewRPCTransport appends a random suffix.
	Reply string
}

type rpcTransport struct {
	producer pulsar.Producer
	consumer pulsar.Consumer
	reply    string
	pending  *rpc.PendingCalls
	logger   log.Logger

	closeOnce sync.Once
	done      chan struct{}
}

// NewRPCTransport sends request packets to the destination request topic and waits for
// replies, correlated by packet id, on an exclusive per-instance reply topic.
func (b *Broker) NewRPCTransport(topics RPCTopics) (rpc.Transport, error) {
	replyTopic := fmt.Sprintf("%s-%s", topics.Reply, uuid.NewString())

	producer, err := b.client.CreateProducer(pulsar.ProducerOptions{
		Topic: topics.Request,
	})
	if err != nil {
		return nil, fmt.Errorf("create producer for topic %s: %w", topics.Request, err)
	}

	consumer, err := b.client.Subscribe(pulsar.ConsumerOptions{
		Topic:            replyTopic,
		SubscriptionName: replyTopic,
		Type:             pulsar.Exclusive,
	})
	if err != nil {
		producer.Close()
		return nil, fmt.Errorf("subscribe to reply topic %s: %w", replyTopic, err)
	}

	t := &rpcTransport{
		producer: producer,
		consumer: consumer,
		reply:    replyTopic,
		pending:  rpc.NewPendingCalls(),
		logger:   b.logger.WithField("rpcRequestTopic", topics.Request),
		done:     make(chan struct{}),
	}
	go t.receive()

	return t, nil
}

func (t *rpcTransport) Send(ctx context.Context, envelope rpc.Envelope) (rpc.Response, error) {
	select {
	case <-t.done:
		return nil, fmt.Errorf("%w: %w", rpc.ErrUnreachable, errTransportClosed)
	default:
	}

	id := uuid.NewString()
	payload, err := rpc.EncodeRequest(envelope, id)
	if err != nil {
		return nil, err
	}

	properties := maps.Clone(envelope.Metadata)
	if properties == nil {
		properties = make(map[string]string, 3)
	}
	properties[propertyReplyTo] = t.reply
	properties[propertyCorrelationID] = id
	properties[propertyCommand] = envelope.Command

	replies, unregister := t.pending.Register(id)
	defer unregister()

	_, err = t.producer.Send(ctx, &pulsar.ProducerMessage{
		Payload:    payload,
		Key:        id,
		Properties: properties,
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: publish %s: %w", rpc.ErrUnreachable, envelope.Command, err)
	}

	select {
	case reply := <-replies:
		return reply.Response, reply.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *rpcTransport) Close() error {
	t.closeOnce.Do(func() {
		close(t.done)
		t.consumer.Close()
		t.producer.Close()
		t.pending.FailAll(fmt.Errorf("%w: %w", rpc.ErrUnreachable, errTransportClosed))
	})
	return nil
}

func (t *rpcTransport) receive() {
	for {
		select {
		case <-t.done:
			return
		case msg, ok := <-t.consumer.Chan():
			if !ok {
				return
			}
			t.handle(msg)
		}
	}
}

func (t *rpcTransport) handle(msg pulsar.ConsumerMessage) {
	ctx := context.Background()
	if err := t.consumer.Ack(msg.Message); err != nil {
		t.logger.WithError(err).Warn(ctx, "failed to ack rpc reply")
	}

	packet, err := rpc.DecodeReply(msg.Payload())
	if err != nil {
		t.logger.WithError(err).Warn(ctx, "skipped malformed rpc reply")
		return
	}

	if !t.pending.Resolve(packet) {
		t.logger.WithField("correlationId", packet.ID).Debug(ctx, "skipped rpc reply without waiting call")
	}
}
