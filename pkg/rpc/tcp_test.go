package rpc_test

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klwxsrx/go-rpc-gateway/pkg/log"
	"github.com/klwxsrx/go-rpc-gateway/pkg/rpc"
)

type backendHandler func(packet rpc.RequestPacket) (reply map[string]any, ok bool)

type fakeBackend struct {
	listener net.Listener
	handler  backendHandler

	mutex    sync.Mutex
	conns    []net.Conn
	accepted int
}

func newFakeBackend(t *testing.T, handler backendHandler) *fakeBackend {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	b := &fakeBackend{listener: listener, handler: handler}
	go b.serve()
	t.Cleanup(b.close)

	return b
}

func (b *fakeBackend) address() string {
	return b.listener.Addr().String()
}

func (b *fakeBackend) serve() {
	for {
		conn, err := b.listener.Accept()
		if err != nil {
			return
		}

		b.mutex.Lock()
		b.conns = append(b.conns, conn)
		b.accepted++
		b.mutex.Unlock()

		go b.handle(conn)
	}
}

func (b *fakeBackend) handle(conn net.Conn) {
	var writeMutex sync.Mutex
	reader := bufio.NewReader(conn)
	for {
		header, err := reader.ReadString('#')
		if err != nil {
			return
		}
		length, err := strconv.Atoi(header[:len(header)-1])
		if err != nil {
			return
		}
		data := make([]byte, length)
		if _, err = io.ReadFull(reader, data); err != nil {
			return
		}

		var packet rpc.RequestPacket
		if err = json.Unmarshal(data, &packet); err != nil {
			return
		}

		go func() {
			reply, ok := b.handler(packet)
			if !ok {
				return
			}
			reply["id"] = packet.ID

			encoded, _ := json.Marshal(reply)
			writeMutex.Lock()
			defer writeMutex.Unlock()
			_, _ = fmt.Fprintf(conn, "%d#%s", len(encoded), encoded)
		}()
	}
}

func (b *fakeBackend) acceptedConnections() int {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	return b.accepted
}

func (b *fakeBackend) dropConnections() {
	b.mutex.Lock()
	defer b.mutex.Unlock()
	for _, conn := range b.conns {
		_ = conn.Close()
	}
	b.conns = nil
}

func (b *fakeBackend) close() {
	_ = b.listener.Close()
	b.dropConnections()
}

func echoHandler(packet rpc.RequestPacket) (map[string]any, bool) {
	return map[string]any{
		"response":   map[string]any{"pattern": packet.Pattern, "data": packet.Data},
		"isDisposed": true,
	}, true
}

func newTransport(t *testing.T, address string) *rpc.TCPTransport {
	transport := rpc.NewTCPTransport(rpc.TCPConfig{
		Address:       address,
		RetryAttempts: 2,
		RetryDelay:    10 * time.Millisecond,
	}, log.NewStub())
	t.Cleanup(func() { _ = transport.Close() })

	return transport
}

func TestTCPTransport_Send_ReturnsResponse(t *testing.T) {
	backend := newFakeBackend(t, echoHandler)
	transport := newTransport(t, backend.address())
	require.NoError(t, transport.Connect(context.Background()))

	response, err := transport.Send(context.Background(), rpc.Envelope{
		Command: "login_user",
		Payload: map[string]string{"email": "a@b.c"},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"pattern":"{\"cmd\":\"login_user\"}","data":{"email":"a@b.c"}}`, string(response))
}

func TestTCPTransport_Send_MultiplexesConcurrentCalls(t *testing.T) {
	backend := newFakeBackend(t, func(packet rpc.RequestPacket) (map[string]any, bool) {
		time.Sleep(time.Duration(len(packet.ID)%5) * time.Millisecond)
		return map[string]any{"response": packet.Data}, true
	})
	transport := newTransport(t, backend.address())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			response, err := transport.Send(context.Background(), rpc.Envelope{Command: "get_order", Payload: i})
			if assert.NoError(t, err) {
				assert.Equal(t, strconv.Itoa(i), string(response))
			}
		}()
	}
	wg.Wait()
}

func TestTCPTransport_Send_ReturnsRemoteFailure(t *testing.T) {
	backend := newFakeBackend(t, func(rpc.RequestPacket) (map[string]any, bool) {
		return map[string]any{
			"err":        map[string]any{"statusCode": 401, "message": "Invalid credentials"},
			"isDisposed": true,
		}, true
	})
	transport := newTransport(t, backend.address())

	_, err := transport.Send(context.Background(), rpc.Envelope{Command: "login_user"})

	var failure *rpc.Failure
	require.ErrorAs(t, err, &failure)
	assert.Equal(t, rpc.FailureRejected, failure.Kind)
	assert.Equal(t, 401, failure.Status)
	assert.Equal(t, "Invalid credentials", failure.Message)
}

func TestTCPTransport_Send_TimesOutWithoutReply(t *testing.T) {
	backend := newFakeBackend(t, func(rpc.RequestPacket) (map[string]any, bool) {
		return nil, false
	})
	client := rpc.NewClient("order", newTransport(t, backend.address()))

	_, err := client.Call(context.Background(), "verify_payment", nil, rpc.WithTimeout(50*time.Millisecond))
	assert.Equal(t, rpc.FailureTimeout, rpc.KindOf(err))
}

func TestTCPTransport_Send_UnreachableBackend(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	transport := newTransport(t, address)
	assert.Error(t, transport.Connect(context.Background()))

	_, err = rpc.NewClient("auth", transport).Call(context.Background(), "login_user", nil)
	assert.Equal(t, rpc.FailureUnreachable, rpc.KindOf(err))
}

func TestTCPTransport_Send_FailsInFlightCallsWhenConnectionDrops(t *testing.T) {
	received := make(chan struct{})
	backend := newFakeBackend(t, func(rpc.RequestPacket) (map[string]any, bool) {
		close(received)
		return nil, false
	})
	transport := newTransport(t, backend.address())

	go func() {
		<-received
		backend.dropConnections()
	}()

	_, err := rpc.NewClient("auth", transport).Call(context.Background(), "register_user", nil)
	assert.Equal(t, rpc.FailureUnreachable, rpc.KindOf(err))
}

func TestTCPTransport_Send_ReconnectsAfterDrop(t *testing.T) {
	backend := newFakeBackend(t, echoHandler)
	transport := newTransport(t, backend.address())

	_, err := transport.Send(context.Background(), rpc.Envelope{Command: "get_profile"})
	require.NoError(t, err)

	backend.dropConnections()
	require.Eventually(t, func() bool {
		_, err = transport.Send(context.Background(), rpc.Envelope{Command: "get_profile"})
		return err == nil
	}, time.Second, 10*time.Millisecond)
}

func TestTCPTransport_Send_ExpiredDeadlineKeepsConnection(t *testing.T) {
	backend := newFakeBackend(t, echoHandler)
	transport := newTransport(t, backend.address())
	require.NoError(t, transport.Connect(context.Background()))
	client := rpc.NewClient("auth", transport)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	_, err := client.Call(ctx, "get_profile", nil)
	assert.Equal(t, rpc.FailureTimeout, rpc.KindOf(err))
	assert.NotErrorIs(t, err, rpc.ErrUnreachable)

	_, err = client.Call(context.Background(), "get_profile", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.acceptedConnections())
}

func TestTCPTransport_Send_DoesNotWaitForAnotherCallDial(t *testing.T) {
	backend := newFakeBackend(t, echoHandler)

	var dials atomic.Int32
	dialing := make(chan struct{})
	release := make(chan struct{})
	transport := rpc.NewTCPTransport(rpc.TCPConfig{
		Address: backend.address(),
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			if dials.Add(1) > 1 {
				<-ctx.Done()
				return nil, ctx.Err()
			}

			close(dialing)
			<-release
			return (&net.Dialer{}).DialContext(ctx, network, address)
		},
	}, log.NewStub())
	t.Cleanup(func() { _ = transport.Close() })

	slowCall := make(chan error, 1)
	go func() {
		_, err := transport.Send(context.Background(), rpc.Envelope{Command: "get_profile"})
		slowCall <- err
	}()
	<-dialing

	started := time.Now()
	_, err := rpc.NewClient("auth", transport).Call(context.Background(), "get_profile", nil, rpc.WithTimeout(50*time.Millisecond))
	assert.Equal(t, rpc.FailureTimeout, rpc.KindOf(err))
	assert.Less(t, time.Since(started), time.Second)

	close(release)
	require.NoError(t, <-slowCall)
}
