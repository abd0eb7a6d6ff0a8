package dist

import (
	"math"
	"math/big"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

// NativePid has the layout of the erlang_pid struct of the erl_interface
// library. Node is a NUL-terminated UTF-8 buffer.
type NativePid struct {
	Node     [etf.MaxAtomBufLen]byte
	Num      uint32
	Serial   uint32
	Creation uint32
}

// NativeTrace has the layout of the erlang_trace struct.
type NativeTrace struct {
	Serial int64
	Prev   int64
	From   NativePid
	Label  int64
	Flags  int64
}

// NativeHeader has the layout of the erlang_msg struct filled in by
// ei_xreceive_msg, for transports built on erl_interface.
type NativeHeader struct {
	MsgType int64
	From    NativePid
	To      NativePid
	ToName  [etf.MaxAtomBufLen]byte
	Cookie  [etf.MaxAtomBufLen]byte
	Token   NativeTrace
}

// Pid validates the fields of p.
func (p *NativePid) Pid() (etf.Pid, error) {
	name, err := etf.AtomFromBuffer(p.Node[:])
	if err != nil {
		return etf.Pid{}, err
	}
	node, err := etf.NewNode(name, p.Creation)
	if err != nil {
		return etf.Pid{}, err
	}
	return etf.NewPid(node, p.Num, p.Serial)
}

// Header converts h into a Header. Only the fields used by the message type
// are converted, the others may hold garbage and are left zero. SEND carries
// no sender on the wire, From is still converted and must be a valid pid.
func (h *NativeHeader) Header() (Header, error) {
	var err error

	header := Header{Type: MessageType(h.MsgType)}
	if int64(header.Type) != h.MsgType || !header.Type.Known() {
		return Header{}, &UnknownMessageTypeError{Code: header.Type}
	}

	switch header.Type {
	case REG_SEND, REG_SEND_TT:
		if header.From, err = h.From.Pid(); err != nil {
			return Header{}, err
		}
		header.ToName, err = etf.AtomFromBuffer(h.ToName[:])
	case NODE_LINK:
	default:
		if header.From, err = h.From.Pid(); err != nil {
			return Header{}, err
		}
		header.To, err = h.To.Pid()
	}
	if err != nil {
		return Header{}, err
	}

	switch header.Type {
	case SEND_TT, REG_SEND_TT, EXIT_TT, EXIT2_TT:
		from, err := h.Token.From.Pid()
		if err != nil {
			return Header{}, err
		}
		header.Token = &TraceToken{
			Flags:    h.Token.Flags,
			Label:    intTerm(h.Token.Label),
			Serial:   h.Token.Serial,
			From:     from,
			Previous: h.Token.Prev,
		}
	}
	return header, nil
}

// intTerm returns v the way the term decoder would.
func intTerm(v int64) etf.Term {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		return int32(v)
	}
	return big.NewInt(v)
}
