package connection

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/yigit/bgrs/internal/pkg/wire"
)

// Client is a middleman between a TCP connection and the engine
type Client struct {
	id  uuid.UUID
	hub *Hub

	// The TCP connection
	conn net.Conn

	// Buffered channel of encoded responses
	send chan []byte

	// Closed when the client stops; the write pump then flushes and closes conn
	quit     chan struct{}
	quitOnce sync.Once

	// Set when the hub shuts the client down
	interrupted atomic.Bool

	protocol Protocol
	logger   zerolog.Logger
}

func newClient(h *Hub, conn net.Conn) *Client {
	id := uuid.New()
	return &Client{
		id:       id,
		hub:      h,
		conn:     conn,
		send:     make(chan []byte, h.config.SendBuffer),
		quit:     make(chan struct{}),
		protocol: h.newProtocol(),
		logger: h.logger.With().
			Str("clientID", id.String()).
			Str("addr", conn.RemoteAddr().String()).
			Logger(),
	}
}

// ID returns the connection id
func (c *Client) ID() uuid.UUID {
	return c.id
}

// readPump decodes requests and queues their responses until the peer leaves,
// the protocol asks to terminate or the hub stops.
func (c *Client) readPump() {
	defer func() {
		c.protocol.Close()
		c.hub.leave(c)
		c.stop()
		c.hub.wg.Done()
	}()

	reader := bufio.NewReader(c.conn)
	decoder := wire.NewDecoder()

	for {
		if c.hub.config.IdleTimeout > 0 {
			c.conn.SetReadDeadline(time.Now().Add(c.hub.config.IdleTimeout))
		}
		if c.interrupted.Load() {
			return
		}
		b, err := reader.ReadByte()
		if err != nil {
			c.logReadError(err)
			return
		}

		req, ok := decoder.DecodeNextByte(b)
		if !ok {
			continue
		}
		resp := c.protocol.Process(req)

		select {
		case c.send <- wire.Encode(resp):
		case <-c.quit:
			return
		}
		if c.protocol.ShouldTerminate() {
			c.logger.Debug().Msg("Protocol terminated the connection")
			return
		}
	}
}

func (c *Client) logReadError(err error) {
	var netErr net.Error
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, net.ErrClosed):
		c.logger.Debug().Msg("Connection closed by peer")
	case c.interrupted.Load():
		c.logger.Debug().Msg("Connection closed by server shutdown")
	case errors.As(err, &netErr) && netErr.Timeout():
		c.logger.Info().Msg("Connection idle, closing")
	default:
		c.logger.Debug().Err(err).Msg("Read error")
	}
}

// writePump writes queued responses to the connection
func (c *Client) writePump() {
	defer func() {
		c.conn.Close()
		c.hub.wg.Done()
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(data); err != nil {
				c.logger.Debug().Err(err).Msg("Write error")
				c.stop()
				return
			}
		case <-c.quit:
			c.flush()
			return
		}
	}
}

// flush writes whatever is still queued before the connection closes
func (c *Client) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Client) write(data []byte) error {
	c.conn.SetWriteDeadline(time.Now().Add(c.hub.config.WriteWait))
	_, err := c.conn.Write(data)
	return err
}

func (c *Client) stop() {
	c.quitOnce.Do(func() { close(c.quit) })
}

// interrupt unblocks the read pump so the client winds down through its normal path
func (c *Client) interrupt() {
	c.interrupted.Store(true)
	c.conn.SetReadDeadline(time.Now())
}
