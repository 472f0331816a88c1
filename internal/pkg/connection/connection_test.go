package connection

import (
	"context"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/bgrs/internal/app/models/dto"
	"github.com/yigit/bgrs/internal/pkg/metrics"
	"github.com/yigit/bgrs/internal/pkg/wire"
)

type fakeProtocol struct {
	terminate bool
	closed    chan struct{}
}

func (p *fakeProtocol) Process(req dto.Request) dto.Response {
	switch req.(type) {
	case *dto.LogoutRequest:
		p.terminate = true
		return dto.NewAck(req, "")
	case *dto.UnknownRequest:
		return dto.NewError(req)
	}
	return dto.NewAck(req, "ok")
}

func (p *fakeProtocol) ShouldTerminate() bool { return p.terminate }

func (p *fakeProtocol) Close() { close(p.closed) }

type hubFixture struct {
	hub       *Hub
	metrics   *metrics.Metrics
	protocols chan *fakeProtocol
	cancel    context.CancelFunc
	stopped   chan struct{}
}

func newHubFixture(t *testing.T) *hubFixture {
	t.Helper()
	f := &hubFixture{
		metrics:   metrics.New(),
		protocols: make(chan *fakeProtocol, 8),
		stopped:   make(chan struct{}),
	}
	f.hub = NewHub(func() Protocol {
		p := &fakeProtocol{closed: make(chan struct{})}
		f.protocols <- p
		return p
	}, DefaultConfig(), f.metrics, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	f.cancel = cancel
	go func() {
		f.hub.Run(ctx)
		close(f.stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-f.stopped
	})
	return f
}

// dial attaches the server end of a pipe and returns the client end
func (f *hubFixture) dial(t *testing.T) (net.Conn, *fakeProtocol) {
	t.Helper()
	server, client := net.Pipe()
	require.True(t, f.hub.Attach(server))
	return client, <-f.protocols
}

func send(t *testing.T, conn net.Conn, req dto.Request) {
	t.Helper()
	require.NoError(t, conn.SetWriteDeadline(time.Now().Add(2*time.Second)))
	_, err := conn.Write(wire.EncodeRequest(req))
	require.NoError(t, err)
}

func receive(t *testing.T, conn net.Conn) dto.Response {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	decoder := wire.NewResponseDecoder()
	buf := make([]byte, 1)
	for {
		_, err := conn.Read(buf)
		require.NoError(t, err)
		if resp, ok := decoder.DecodeNextByte(buf[0]); ok {
			return resp
		}
	}
}

func expectClosed(t *testing.T, conn net.Conn) {
	t.Helper()
	// Fails with io.ErrClosedPipe once the server end is gone; the read still reports EOF.
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, err := conn.Read(make([]byte, 1))
	assert.ErrorIs(t, err, io.EOF)
}

func TestRequestResponse(t *testing.T) {
	f := newHubFixture(t)
	conn, _ := f.dial(t)
	defer conn.Close()

	send(t, conn, &dto.LoginRequest{Username: "alice", Password: "pw"})
	assert.Equal(t, &dto.AckResponse{MessageOpcode: dto.OpLogin, Payload: "ok"}, receive(t, conn))

	send(t, conn, &dto.UnknownRequest{Code: 77})
	assert.Equal(t, &dto.ErrorResponse{MessageOpcode: 77}, receive(t, conn))
}

func TestConnectionsAreCounted(t *testing.T) {
	f := newHubFixture(t)
	a, _ := f.dial(t)
	b, pb := f.dial(t)

	assert.Eventually(t, func() bool { return f.hub.Count() == 2 }, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return testutil.ToFloat64(f.metrics.Connections) == 2 }, 2*time.Second, 10*time.Millisecond)

	b.Close()
	<-pb.closed
	assert.Eventually(t, func() bool { return f.hub.Count() == 1 }, 2*time.Second, 10*time.Millisecond)
	a.Close()
}

func TestTerminateFlushesThenCloses(t *testing.T) {
	f := newHubFixture(t)
	conn, p := f.dial(t)
	defer conn.Close()

	send(t, conn, &dto.LogoutRequest{})
	assert.Equal(t, &dto.AckResponse{MessageOpcode: dto.OpLogout}, receive(t, conn))
	expectClosed(t, conn)

	select {
	case <-p.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("protocol not closed")
	}
}

func TestDisconnectClosesProtocol(t *testing.T) {
	f := newHubFixture(t)
	conn, p := f.dial(t)

	require.NoError(t, conn.Close())
	select {
	case <-p.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("protocol not closed")
	}
}

func TestShutdownClosesClients(t *testing.T) {
	f := newHubFixture(t)
	conn, p := f.dial(t)
	defer conn.Close()

	send(t, conn, &dto.MyCoursesRequest{})
	receive(t, conn)

	f.cancel()
	select {
	case <-f.stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	<-p.closed
	expectClosed(t, conn)

	server, client := net.Pipe()
	defer client.Close()
	assert.False(t, f.hub.Attach(server))
}

func TestIdleTimeout(t *testing.T) {
	protocols := make(chan *fakeProtocol, 1)
	hub := NewHub(func() Protocol {
		p := &fakeProtocol{closed: make(chan struct{})}
		protocols <- p
		return p
	}, Config{IdleTimeout: 50 * time.Millisecond}, nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server, client := net.Pipe()
	defer client.Close()
	require.True(t, hub.Attach(server))
	p := <-protocols

	select {
	case <-p.closed:
	case <-time.After(2 * time.Second):
		t.Fatal("idle connection not closed")
	}
	expectClosed(t, client)
}

func TestAttachRacingShutdown(t *testing.T) {
	var (
		mu        sync.Mutex
		protocols []*fakeProtocol
	)
	hub := NewHub(func() Protocol {
		p := &fakeProtocol{closed: make(chan struct{})}
		mu.Lock()
		protocols = append(protocols, p)
		mu.Unlock()
		return p
	}, DefaultConfig(), nil, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()

	const attempts = 64
	var (
		wg       sync.WaitGroup
		accepted atomic.Int32
		start    = make(chan struct{})
	)
	clients := make([]net.Conn, attempts)
	for i := 0; i < attempts; i++ {
		server, client := net.Pipe()
		clients[i] = client
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if hub.Attach(server) {
				accepted.Add(1)
			}
		}()
	}
	close(start)
	cancel()

	select {
	case <-stopped:
	case <-time.After(5 * time.Second):
		t.Fatal("hub did not stop")
	}
	wg.Wait()

	assert.Equal(t, 0, hub.Count())
	mu.Lock()
	defer mu.Unlock()
	for _, p := range protocols {
		select {
		case <-p.closed:
		case <-time.After(2 * time.Second):
			t.Fatal("protocol left open after shutdown")
		}
	}
	for _, c := range clients {
		expectClosed(t, c)
	}
	t.Logf("%d of %d connections accepted before shutdown", accepted.Load(), attempts)
}
