package dist

import (
	"encoding/binary"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

const (
	tagSmallInteger = 97
	tagCacheRef     = 82
	tagPid          = 103
	tagSmallTuple   = 104
	tagNil          = 106
	tagBinary       = 109
	tagSmallAtom    = 119
)

func concat(parts ...[]byte) []byte {
	var b []byte
	for _, p := range parts {
		b = append(b, p...)
	}
	return b
}

func atomBytes(s string) []byte {
	return append([]byte{tagSmallAtom, byte(len(s))}, s...)
}

func intBytes(v byte) []byte {
	return []byte{tagSmallInteger, v}
}

func pidBytes(node string, id, serial uint32, creation byte) []byte {
	b := append([]byte{tagPid}, atomBytes(node)...)
	b = binary.BigEndian.AppendUint32(b, id)
	b = binary.BigEndian.AppendUint32(b, serial)
	return append(b, creation)
}

func tupleBytes(elements ...[]byte) []byte {
	return concat(append([][]byte{{tagSmallTuple, byte(len(elements))}}, elements...)...)
}

func binaryBytes(s string) []byte {
	b := binary.BigEndian.AppendUint32([]byte{tagBinary}, uint32(len(s)))
	return append(b, s...)
}

func testPid(node string, id, serial uint16, creation uint8) etf.Pid {
	return etf.Pid{
		Node:   etf.Node{Name: etf.Atom(node), Creation: creation},
		ID:     id,
		Serial: serial,
	}
}
