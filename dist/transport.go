package dist

import (
	"context"
	"sync"

	"go.uber.org/atomic"

	"github.com/in-the-mood-for-mov/erlang-cnode/lib"
)

// Packet is one complete inbound message as handed over by a transport.
//
// If Header is nil, Data is the whole message the way it is sent on the
// wire after the handshake: the version magic, the distribution header,
// the control tuple and the payload. Otherwise the transport has decoded
// the control message itself and Data starts with the distribution header
// (or the version magic, see Options.VersionMagic) followed by the
// payload term.
type Packet struct {
	Header *Header
	Data   []byte
}

// Transport delivers inbound packets of one established connection.
// Handshake, framing and socket I/O are its business.
type Transport interface {
	// Recv blocks until a packet is available, ctx is done or the
	// transport is closed. Once closed it returns ErrConnectionClosed.
	Recv(ctx context.Context) (Packet, error)
}

// QueueTransport is an in-memory Transport. Any goroutine may Push,
// a single Connection receives.
type QueueTransport struct {
	queue  *lib.QueueMPSC[Packet]
	notify chan struct{}
	done   chan struct{}
	closed atomic.Bool
	once   sync.Once
}

var _ Transport = &QueueTransport{}

// NewQueueTransport creates a transport holding up to limit pending
// packets. A limit below 1 means unlimited.
func NewQueueTransport(limit int64) *QueueTransport {
	return &QueueTransport{
		queue:  lib.NewQueueMPSC[Packet](limit),
		notify: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Push queues a packet.
func (q *QueueTransport) Push(p Packet) error {
	if q.closed.Load() {
		return ErrConnectionClosed
	}
	if !q.queue.Push(p) {
		return ErrQueueFull
	}
	select {
	case q.notify <- struct{}{}:
	default:
	}
	return nil
}

// Recv returns the oldest queued packet. Packets queued before Close are
// still delivered.
func (q *QueueTransport) Recv(ctx context.Context) (Packet, error) {
	for {
		if p, ok := q.queue.Pop(); ok {
			return p, nil
		}
		if q.closed.Load() {
			return Packet{}, ErrConnectionClosed
		}

		select {
		case <-q.notify:
		case <-q.done:
		case <-ctx.Done():
			return Packet{}, ctx.Err()
		}
	}
}

// Len returns the number of pending packets.
func (q *QueueTransport) Len() int64 {
	return q.queue.Len()
}

// Close stops accepting packets.
func (q *QueueTransport) Close() {
	q.once.Do(func() {
		q.closed.Store(true)
		close(q.done)
	})
}
