package dist

import (
	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

// Message is a fully decoded inbound message.
type Message struct {
	Control ControlMessage
	// Payload is the message term of a send or the reason of an exit
	// signal. It is nil for signals without one.
	Payload etf.Term
}

// ReadMessage decodes the payload term that follows control in packet. The
// sends require one. The other signals accept an empty packet.
func ReadMessage(control ControlMessage, packet []byte, cache *etf.AtomCache, options etf.DecodeOptions) (Message, []byte, error) {
	message := Message{Control: control}
	if len(packet) == 0 && !HasPayload(control) {
		return message, packet, nil
	}

	payload, rest, err := etf.Decode(packet, cache, options)
	if err != nil {
		return Message{}, nil, err
	}
	message.Payload = payload
	return message, rest, nil
}
