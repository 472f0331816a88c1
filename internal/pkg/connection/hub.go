// Package connection runs BGRS client connections: one read pump and one write
// pump per TCP connection, tracked by a Hub.
package connection

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/bgrs/internal/app/models/dto"
	"github.com/yigit/bgrs/internal/pkg/metrics"
)

// Protocol processes the requests of a single connection. A new Protocol is
// created for every connection and is never shared.
type Protocol interface {
	Process(req dto.Request) dto.Response
	// ShouldTerminate reports whether the connection must close once the
	// responses written so far are flushed.
	ShouldTerminate() bool
	// Close is called once when the connection goes away.
	Close()
}

// ProtocolFactory creates the Protocol of a new connection
type ProtocolFactory func() Protocol

// Config tunes client connections
type Config struct {
	// WriteWait bounds a single write to the peer
	WriteWait time.Duration
	// IdleTimeout closes connections that send nothing for this long. Zero disables it.
	IdleTimeout time.Duration
	// SendBuffer is the number of responses queued per connection
	SendBuffer int
}

// DefaultConfig returns the settings used when none are configured
func DefaultConfig() Config {
	return Config{
		WriteWait:  10 * time.Second,
		SendBuffer: 64,
	}
}

// Hub maintains the set of live clients
type Hub struct {
	// Connected clients by id
	clients map[uuid.UUID]*Client

	// Register requests from new connections
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Closed when Run returns
	done chan struct{}

	// Mutex for concurrent access to clients map
	mu sync.RWMutex

	// Tracks running pumps
	wg sync.WaitGroup

	newProtocol ProtocolFactory
	config      Config
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewHub creates a new Hub. m may be nil.
func NewHub(newProtocol ProtocolFactory, config Config, m *metrics.Metrics, logger zerolog.Logger) *Hub {
	if config.WriteWait <= 0 {
		config.WriteWait = DefaultConfig().WriteWait
	}
	if config.SendBuffer <= 0 {
		config.SendBuffer = DefaultConfig().SendBuffer
	}
	return &Hub{
		clients:     make(map[uuid.UUID]*Client),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		done:        make(chan struct{}),
		newProtocol: newProtocol,
		config:      config,
		metrics:     m,
		logger:      logger.With().Str("component", "hub").Logger(),
	}
}

// Run handles client registrations until ctx is cancelled, then closes every
// client and waits for their pumps to finish.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)

		case client := <-h.unregister:
			h.unregisterClient(client)

		case <-ctx.Done():
			close(h.done)
			h.closeAll()
			h.wg.Wait()
			h.logger.Info().Msg("All connections closed")
			return
		}
	}
}

// Attach starts serving conn. It returns false, and closes conn, when the hub
// has stopped.
func (h *Hub) Attach(conn net.Conn) bool {
	select {
	case <-h.done:
		conn.Close()
		return false
	default:
	}

	client := newClient(h, conn)
	select {
	case h.register <- client:
		return true
	case <-h.done:
		client.protocol.Close()
		conn.Close()
		return false
	}
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// registerClient registers a new client to the hub and starts its pumps
func (h *Hub) registerClient(client *Client) {
	h.mu.Lock()
	h.clients[client.id] = client
	count := len(h.clients)
	h.mu.Unlock()

	h.setConnections(count)
	client.logger.Info().Msg("Client connected")

	// Pumps are only started from Run, so no Add can race the Wait on shutdown.
	h.wg.Add(2)
	go client.writePump()
	go client.readPump()
}

// unregisterClient unregisters a client from the hub
func (h *Hub) unregisterClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client.id]
	delete(h.clients, client.id)
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		h.setConnections(count)
		client.logger.Info().Msg("Client disconnected")
	}
}

// leave is called by a client whose read pump has ended
func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for id, c := range h.clients {
		clients = append(clients, c)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.interrupt()
	}
	h.setConnections(0)
}

func (h *Hub) setConnections(n int) {
	if h.metrics != nil {
		h.metrics.Connections.Set(float64(n))
	}
}
