package dist

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
	"github.com/in-the-mood-for-mov/erlang-cnode/lib"
)

// Handler is called by Serve for every decoded message.
type Handler func(ctx context.Context, c *Connection, m Message) error

// Connection decodes the inbound packets of one established connection.
// It owns the atom cache of that connection. It is not safe for
// concurrent use, different connections are independent.
type Connection struct {
	id        string
	transport Transport
	cache     *etf.AtomCache
	options   Options
	logger    lib.Logger
	metrics   *Metrics

	decoded atomic.Uint64
	failed  atomic.Uint64
}

// Stats are the counters of a connection.
type Stats struct {
	Decoded uint64
	Failed  uint64
}

// NewConnection creates a connection receiving from transport.
func NewConnection(transport Transport, opts ...Option) *Connection {
	c := &Connection{
		id:        uuid.NewString(),
		transport: transport,
		cache:     etf.NewAtomCache(),
		options:   DefaultOptions(),
		logger:    lib.DiscardLogger,
	}
	for _, opt := range opts {
		opt.Apply(c)
	}
	c.logger = c.logger.With("connection", c.id)
	return c
}

// ID returns the identifier used in logs and errors.
func (c *Connection) ID() string {
	return c.id
}

// Cache returns the atom cache of the connection.
func (c *Connection) Cache() *etf.AtomCache {
	return c.cache
}

// Stats returns the counters of the connection. Safe for concurrent use.
func (c *Connection) Stats() Stats {
	return Stats{
		Decoded: c.decoded.Load(),
		Failed:  c.failed.Load(),
	}
}

// Decode decodes one packet. Errors are wrapped in a *DecodeError.
func (c *Connection) Decode(p Packet) (Message, error) {
	return c.decode(context.Background(), p)
}

func (c *Connection) decode(ctx context.Context, p Packet) (Message, error) {
	start := time.Now()
	inserts := c.cache.Inserts()

	var m Message
	var err error
	if p.Header != nil {
		m, err = c.decodeNative(*p.Header, p.Data)
	} else {
		m, err = c.decodeControl(p.Data)
	}

	if c.metrics != nil {
		c.metrics.recordCacheInserts(ctx, c.cache.Inserts()-inserts)
	}
	if err != nil {
		c.failed.Inc()
		if c.metrics != nil {
			c.metrics.recordError(ctx, time.Since(start))
		}
		return Message{}, &DecodeError{ConnID: c.id, Err: err}
	}

	c.decoded.Inc()
	if c.metrics != nil {
		c.metrics.recordDecoded(ctx, m.Control.Type(), time.Since(start))
	}
	lib.Log("[%s] CONTROL %s: %#v", c.id, m.Control.Type(), m.Control)
	return m, nil
}

// decodeNative handles a packet whose control message was decoded by the
// transport.
func (c *Connection) decodeNative(h Header, packet []byte) (Message, error) {
	var err error
	var references []etf.AtomCacheKey

	// signals without payload may come without any data, not even the
	// version magic
	if len(packet) > 0 {
		if c.options.VersionMagic {
			if packet, err = etf.ReadVersion(packet); err != nil {
				return Message{}, err
			}
		}
		if len(packet) > 0 {
			if references, packet, err = DecodeHeader(packet, c.cache); err != nil {
				return Message{}, err
			}
		}
	}

	control, err := Classify(h)
	if err != nil {
		return Message{}, err
	}

	m, packet, err := ReadMessage(control, packet, c.cache, c.options.decodeOptions(references))
	if err != nil {
		return Message{}, err
	}
	if len(packet) > 0 {
		return Message{}, &TrailingBytesError{Len: len(packet)}
	}
	return m, nil
}

// decodeControl handles a raw packet: version magic, distribution header,
// control tuple and payload.
func (c *Connection) decodeControl(packet []byte) (Message, error) {
	packet, err := etf.ReadVersion(packet)
	if err != nil {
		return Message{}, err
	}

	references, packet, err := DecodeHeader(packet, c.cache)
	if err != nil {
		return Message{}, err
	}

	decodeOptions := c.options.decodeOptions(references)
	term, packet, err := etf.Decode(packet, c.cache, decodeOptions)
	if err != nil {
		return Message{}, err
	}

	control, reason, err := ClassifyControl(term)
	if err != nil {
		return Message{}, err
	}

	var m Message
	if reason != nil {
		m = Message{Control: control, Payload: reason}
	} else if m, packet, err = ReadMessage(control, packet, c.cache, decodeOptions); err != nil {
		return Message{}, err
	}
	if len(packet) > 0 {
		return Message{}, &TrailingBytesError{Len: len(packet)}
	}
	return m, nil
}

// Next receives and decodes the next packet.
func (c *Connection) Next(ctx context.Context) (Message, error) {
	p, err := c.transport.Recv(ctx)
	if err != nil {
		return Message{}, err
	}
	return c.decode(ctx, p)
}

// Serve receives messages and hands them to handler until ctx is done or
// the transport is closed, which both give a nil error. Decode errors stop
// serving with ErrorPolicyClose and are logged with ErrorPolicySkip.
// An error of handler always stops serving.
func (c *Connection) Serve(ctx context.Context, handler Handler) error {
	c.logger.Debug("serving connection")
	defer c.logger.Debug("connection served")

	for {
		p, err := c.transport.Recv(ctx)
		if err != nil {
			if errors.Is(err, ErrConnectionClosed) || ctx.Err() != nil {
				return nil
			}
			return err
		}

		m, err := c.decode(ctx, p)
		if err != nil {
			if c.options.ErrorPolicy == ErrorPolicySkip {
				c.logger.Warnf("dropping packet: %v", err)
				continue
			}
			c.logger.Errorf("closing connection: %v", err)
			return err
		}

		if err := handler(ctx, c, m); err != nil {
			return err
		}
	}
}

// ServeAll serves every connection in its own goroutine and returns the
// first error. The other connections are stopped by cancelling their
// context.
func ServeAll(ctx context.Context, conns []*Connection, handler Handler) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range conns {
		c := c
		g.Go(func() error {
			return c.Serve(ctx, handler)
		})
	}
	return g.Wait()
}
