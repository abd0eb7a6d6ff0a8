package dist

import (
	"fmt"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

// ControlMessage is the classified envelope of an inbound message. It is
// one of Send, RegSend, Link, Unlink, NodeLink, GroupLeader, Exit, Exit2.
type ControlMessage interface {
	Type() MessageType
}

// Send is a message to a pid. The protocol does not tell the sender, so
// From is only set by transports that know it.
type Send struct {
	From       etf.Pid
	To         etf.Pid
	TraceToken *TraceToken
}

// RegSend is a message to a registered name.
type RegSend struct {
	From       etf.Pid
	To         etf.Atom
	TraceToken *TraceToken
}

type Link struct {
	From etf.Pid
	To   etf.Pid
}

type Unlink struct {
	From etf.Pid
	To   etf.Pid
}

type NodeLink struct {
	From etf.Pid
	To   etf.Pid
}

type GroupLeader struct {
	From etf.Pid
	To   etf.Pid
}

// Exit is sent when a linked process terminates. The exit reason is the
// payload of the message.
type Exit struct {
	From       etf.Pid
	To         etf.Pid
	TraceToken *TraceToken
}

// Exit2 is an exit signal sent with erlang:exit/2.
type Exit2 struct {
	From       etf.Pid
	To         etf.Pid
	TraceToken *TraceToken
}

func (m Send) Type() MessageType {
	if m.TraceToken != nil {
		return SEND_TT
	}
	return SEND
}

func (m RegSend) Type() MessageType {
	if m.TraceToken != nil {
		return REG_SEND_TT
	}
	return REG_SEND
}

func (m Exit) Type() MessageType {
	if m.TraceToken != nil {
		return EXIT_TT
	}
	return EXIT
}

func (m Exit2) Type() MessageType {
	if m.TraceToken != nil {
		return EXIT2_TT
	}
	return EXIT2
}

func (Link) Type() MessageType        { return LINK }
func (Unlink) Type() MessageType      { return UNLINK }
func (NodeLink) Type() MessageType    { return NODE_LINK }
func (GroupLeader) Type() MessageType { return GROUP_LEADER }

// HasPayload reports whether a message term follows the control message on
// the wire. Only the sends carry one; the exit reason of Exit and Exit2 is
// inline in the control tuple.
func HasPayload(m ControlMessage) bool {
	switch m.(type) {
	case Send, RegSend:
		return true
	}
	return false
}

// Header is the message classification handed over by a transport that
// has already decoded the control message of the packet itself.
type Header struct {
	Type   MessageType
	From   etf.Pid
	To     etf.Pid
	ToName etf.Atom
	Token  *TraceToken
}

// Classify maps a transport header into a ControlMessage. The trace token
// is only taken for the *_TT operations.
func Classify(h Header) (ControlMessage, error) {
	var token *TraceToken
	switch h.Type {
	case SEND_TT, REG_SEND_TT, EXIT_TT, EXIT2_TT:
		token = h.Token
	}

	switch h.Type {
	case SEND, SEND_TT:
		return Send{From: h.From, To: h.To, TraceToken: token}, nil
	case REG_SEND, REG_SEND_TT:
		return RegSend{From: h.From, To: h.ToName, TraceToken: token}, nil
	case LINK:
		return Link{From: h.From, To: h.To}, nil
	case UNLINK:
		return Unlink{From: h.From, To: h.To}, nil
	case NODE_LINK:
		return NodeLink{From: h.From, To: h.To}, nil
	case GROUP_LEADER:
		return GroupLeader{From: h.From, To: h.To}, nil
	case EXIT, EXIT_TT:
		return Exit{From: h.From, To: h.To, TraceToken: token}, nil
	case EXIT2, EXIT2_TT:
		return Exit2{From: h.From, To: h.To, TraceToken: token}, nil
	}
	return nil, &UnknownMessageTypeError{Code: h.Type}
}

var controlArity = map[MessageType]int{
	LINK:         3,
	SEND:         3,
	EXIT:         4,
	UNLINK:       3,
	NODE_LINK:    1,
	REG_SEND:     4,
	GROUP_LEADER: 3,
	EXIT2:        4,
	SEND_TT:      4,
	EXIT_TT:      5,
	REG_SEND_TT:  5,
	EXIT2_TT:     5,
}

// ClassifyControl maps a decoded control tuple into a ControlMessage. For
// EXIT and EXIT2 (and their *_TT forms) the exit reason is returned as the
// inline payload, for the other operations the returned term is nil.
func ClassifyControl(control etf.Term) (ControlMessage, etf.Term, error) {
	t, ok := control.(etf.Tuple)
	if !ok || len(t) == 0 {
		return nil, nil, &ControlError{Reason: "not a tuple", Term: control}
	}
	code, ok := t.Element(1).(int32)
	if !ok {
		return nil, nil, &ControlError{Reason: "operation is not an integer", Term: control}
	}
	op := MessageType(code)
	arity, ok := controlArity[op]
	if !ok {
		return nil, nil, &UnknownMessageTypeError{Code: op}
	}
	if len(t) != arity {
		return nil, nil, &ControlError{
			Type:   op,
			Reason: fmt.Sprintf("expected %d elements, got %d", arity, len(t)),
			Term:   control,
		}
	}

	c := controlReader{op: op, t: t}
	switch op {
	case LINK:
		// {1, FromPid, ToPid}
		m := Link{From: c.pid(2), To: c.pid(3)}
		return c.result(m, nil)

	case SEND:
		// {2, Unused, ToPid}
		m := Send{To: c.pid(3)}
		return c.result(m, nil)

	case EXIT:
		// {3, FromPid, ToPid, Reason}
		m := Exit{From: c.pid(2), To: c.pid(3)}
		return c.result(m, t.Element(4))

	case UNLINK:
		// {4, FromPid, ToPid}
		m := Unlink{From: c.pid(2), To: c.pid(3)}
		return c.result(m, nil)

	case NODE_LINK:
		// {5}
		return c.result(NodeLink{}, nil)

	case REG_SEND:
		// {6, FromPid, Unused, ToName}
		m := RegSend{From: c.pid(2), To: c.atom(4)}
		return c.result(m, nil)

	case GROUP_LEADER:
		// {7, FromPid, ToPid}
		m := GroupLeader{From: c.pid(2), To: c.pid(3)}
		return c.result(m, nil)

	case EXIT2:
		// {8, FromPid, ToPid, Reason}
		m := Exit2{From: c.pid(2), To: c.pid(3)}
		return c.result(m, t.Element(4))

	case SEND_TT:
		// {12, Unused, ToPid, TraceToken}
		m := Send{To: c.pid(3), TraceToken: c.token(4)}
		return c.result(m, nil)

	case EXIT_TT:
		// {13, FromPid, ToPid, TraceToken, Reason}
		m := Exit{From: c.pid(2), To: c.pid(3), TraceToken: c.token(4)}
		return c.result(m, t.Element(5))

	case REG_SEND_TT:
		// {16, FromPid, Unused, ToName, TraceToken}
		m := RegSend{From: c.pid(2), To: c.atom(4), TraceToken: c.token(5)}
		return c.result(m, nil)

	case EXIT2_TT:
		// {18, FromPid, ToPid, TraceToken, Reason}
		m := Exit2{From: c.pid(2), To: c.pid(3), TraceToken: c.token(4)}
		return c.result(m, t.Element(5))
	}

	return nil, nil, &UnknownMessageTypeError{Code: op}
}

// controlReader extracts typed elements of a control tuple and keeps the
// first failure.
type controlReader struct {
	op  MessageType
	t   etf.Tuple
	err error
}

func (c *controlReader) fail(i int, format string, a ...any) {
	if c.err != nil {
		return
	}
	c.err = &ControlError{
		Type:   c.op,
		Reason: fmt.Sprintf("element %d: ", i) + fmt.Sprintf(format, a...),
		Term:   c.t,
	}
}

func (c *controlReader) pid(i int) etf.Pid {
	pid, ok := c.t.Element(i).(etf.Pid)
	if !ok {
		c.fail(i, "expected pid, got %s", etf.KindOf(c.t.Element(i)))
	}
	return pid
}

func (c *controlReader) atom(i int) etf.Atom {
	atom, ok := c.t.Element(i).(etf.Atom)
	if !ok {
		c.fail(i, "expected atom, got %s", etf.KindOf(c.t.Element(i)))
	}
	return atom
}

func (c *controlReader) token(i int) *TraceToken {
	token, err := DecodeTraceToken(c.t.Element(i))
	if err != nil {
		c.fail(i, "%s", err)
	}
	return token
}

func (c *controlReader) result(m ControlMessage, payload etf.Term) (ControlMessage, etf.Term, error) {
	if c.err != nil {
		return nil, nil, c.err
	}
	return m, payload, nil
}
