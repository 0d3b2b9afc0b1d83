package rpc

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"time"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
)

const (
	DefaultRetryAttempts = 5
	DefaultRetryDelay    = time.Second
	defaultDialTimeout   = 5 * time.Second

	frameDelimiter = '#'
	maxFrameLength = 64 << 20
)

var (
	errConnectionClosed = errors.New("connection closed")
	errTransportClosed  = errors.New("transport closed")
)

type DialFunc func(ctx context.Context, network, address string) (net.Conn, error)

type TCPConfig struct {
	Address       string
	RetryAttempts int
	RetryDelay    time.Duration
	DialTimeout   time.Duration
	// Dial defaults to a net.Dialer bounded by DialTimeout.
	Dial DialFunc
}

// TCPTransport multiplexes calls over one connection using "<length>#<json>" frames,
// where length counts UTF-16 units of the JSON text. A broken connection fails every
// in-flight call and is redialed on the next Send.
type TCPTransport struct {
	config  TCPConfig
	logger  log.Logger
	pending *PendingCalls

	mutex  sync.Mutex
	conn   net.Conn
	closed bool

	writeMutex sync.Mutex
}

func NewTCPTransport(config TCPConfig, logger log.Logger) *TCPTransport {
	if config.RetryAttempts <= 0 {
		config.RetryAttempts = DefaultRetryAttempts
	}
	if config.RetryDelay <= 0 {
		config.RetryDelay = DefaultRetryDelay
	}
	if config.DialTimeout <= 0 {
		config.DialTimeout = defaultDialTimeout
	}
	if config.Dial == nil {
		config.Dial = (&net.Dialer{Timeout: config.DialTimeout}).DialContext
	}

	return &TCPTransport{
		config:  config,
		logger:  logger.WithField("rpcAddress", config.Address),
		pending: NewPendingCalls(),
	}
}

// Connect dials with constant-delay retries, used once at startup.
func (t *TCPTransport) Connect(ctx context.Context) error {
	attempt := 0
	b := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(t.config.RetryDelay), uint64(t.config.RetryAttempts-1)),
		ctx,
	)

	return backoff.Retry(func() error {
		attempt++
		_, err := t.connection(ctx)
		if err != nil {
			t.logger.WithError(err).WithField("attempt", attempt).Warn(ctx, "rpc backend connection attempt failed")
			if errors.Is(err, errTransportClosed) {
				return backoff.Permanent(err)
			}
		}
		return err
	}, b)
}

func (t *TCPTransport) Send(ctx context.Context, envelope Envelope) (Response, error) {
	id := uuid.NewString()
	frame, err := encodeFrame(envelope, id)
	if err != nil {
		return nil, err
	}

	conn, err := t.connection(ctx)
	if err != nil {
		return nil, err
	}

	replies, unregister := t.pending.Register(id)
	defer unregister()

	n, err := t.write(ctx, conn, frame)
	if errors.Is(err, os.ErrDeadlineExceeded) {
		// A partial frame leaves the stream unreadable for the backend.
		if n > 0 {
			t.drop(conn, err)
		}
		return nil, context.DeadlineExceeded
	}
	if err != nil {
		t.drop(conn, err)
		return nil, fmt.Errorf("%w: write %s: %w", ErrUnreachable, envelope.Command, err)
	}

	select {
	case reply := <-replies:
		return reply.Response, reply.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (t *TCPTransport) Close() error {
	t.mutex.Lock()
	conn := t.conn
	t.conn = nil
	t.closed = true
	t.mutex.Unlock()

	if conn == nil {
		return nil
	}

	t.pending.FailAll(fmt.Errorf("%w: %w", ErrUnreachable, errTransportClosed))
	return conn.Close()
}

// connection dials without holding the mutex, so every caller waits on its own context.
// Concurrent dials keep the first connection stored and close the others.
func (t *TCPTransport) connection(ctx context.Context) (net.Conn, error) {
	conn, err := t.current()
	if conn != nil || err != nil {
		return conn, err
	}

	conn, err = t.config.Dial(ctx, "tcp", t.config.Address)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: dial %s: %w", ErrUnreachable, t.config.Address, err)
	}

	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		_ = conn.Close()
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, errTransportClosed)
	}
	if t.conn != nil {
		_ = conn.Close()
		return t.conn, nil
	}

	t.conn = conn
	go t.readLoop(conn)
	t.logger.Info(ctx, "rpc backend connected")

	return conn, nil
}

func (t *TCPTransport) current() (net.Conn, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.closed {
		return nil, fmt.Errorf("%w: %w", ErrUnreachable, errTransportClosed)
	}
	return t.conn, nil
}

func (t *TCPTransport) write(ctx context.Context, conn net.Conn, frame []byte) (int, error) {
	t.writeMutex.Lock()
	defer t.writeMutex.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Time{}
	}
	_ = conn.SetWriteDeadline(deadline)

	return conn.Write(frame)
}

func (t *TCPTransport) readLoop(conn net.Conn) {
	reader := bufio.NewReader(conn)
	for {
		data, err := readFrame(reader)
		if err != nil {
			t.drop(conn, err)
			return
		}

		packet, err := DecodeReply(data)
		if err != nil {
			t.logger.WithError(err).Warn(context.Background(), "skipped malformed rpc reply")
			continue
		}

		t.pending.Resolve(packet)
	}
}

// drop forgets conn once; calls waiting on it fail as unreachable.
func (t *TCPTransport) drop(conn net.Conn, cause error) {
	t.mutex.Lock()
	if t.conn != conn {
		t.mutex.Unlock()
		return
	}
	t.conn = nil
	t.mutex.Unlock()

	_ = conn.Close()
	if errors.Is(cause, io.EOF) || errors.Is(cause, net.ErrClosed) {
		cause = errConnectionClosed
	}

	t.logger.WithError(cause).Warn(context.Background(), "rpc backend connection lost")
	t.pending.FailAll(fmt.Errorf("%w: %w", ErrUnreachable, cause))
}

func encodeFrame(envelope Envelope, id string) ([]byte, error) {
	body, err := EncodeRequest(envelope, id)
	if err != nil {
		return nil, err
	}

	frame := make([]byte, 0, len(body)+12)
	frame = strconv.AppendInt(frame, int64(len(body)), 10)
	frame = append(frame, frameDelimiter)
	return append(frame, body...), nil
}

func readFrame(reader *bufio.Reader) ([]byte, error) {
	header, err := reader.ReadString(frameDelimiter)
	if err != nil {
		return nil, err
	}

	length, err := strconv.Atoi(header[:len(header)-1])
	if err != nil || length < 0 || length > maxFrameLength {
		return nil, fmt.Errorf("corrupted frame length %q", header)
	}

	data := make([]byte, 0, length)
	for units := 0; units < length; {
		r, _, err := reader.ReadRune()
		if err != nil {
			return nil, err
		}

		data = utf8.AppendRune(data, r)
		if utf16.RuneLen(r) == 2 {
			units += 2
		} else {
			units++
		}
	}

	return data, nil
}
