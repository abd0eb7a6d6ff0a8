package etf

import "fmt"

const (
	nodeCreationMax = (1 << 2) - 1
	pidIDMax        = (1 << 15) - 1
	pidSerialMax    = (1 << 13) - 1
)

// Node identifies a distribution endpoint. Creation tells apart the
// incarnations of a node with the same name.
type Node struct {
	Name     Atom
	Creation uint8
}

// Pid is a process identifier.
type Pid struct {
	Node   Node
	ID     uint16
	Serial uint16
}

// Ref is a reference.
type Ref struct {
	Node Node
	ID   uint32
}

// NewNode returns a node, only the 2 lower bits of creation are allowed.
func NewNode(name Atom, creation uint32) (Node, error) {
	if creation > nodeCreationMax {
		return Node{}, &NodeCreationError{Name: name, Creation: creation}
	}
	return Node{Name: name, Creation: uint8(creation)}, nil
}

// NewPid returns a pid. The protocol reserves 4 bytes for id and serial,
// but only 15 and 13 lower bits are significant. Wider values are rejected
// rather than truncated.
func NewPid(node Node, id, serial uint32) (Pid, error) {
	if id > pidIDMax || serial > pidSerialMax {
		return Pid{}, &PidRangeError{Node: node, ID: id, Serial: serial}
	}
	return Pid{Node: node, ID: uint16(id), Serial: uint16(serial)}, nil
}

func (p Pid) String() string {
	return fmt.Sprintf("<%s.%d.%d>", p.Node.Name, p.ID, p.Serial)
}

func (r Ref) String() string {
	return fmt.Sprintf("#Ref<%s.%d>", r.Node.Name, r.ID)
}
