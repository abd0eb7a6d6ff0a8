package etf

import (
	"errors"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"strings"

	"github.com/in-the-mood-for-mov/erlang-cnode/lib"
)

const (
	// DefaultMaxDepth is the nesting limit used when DecodeOptions.MaxDepth is 0.
	DefaultMaxDepth = 1024
	// DefaultMaxUnpacked is the size limit of a compressed term used when
	// DecodeOptions.MaxUnpacked is 0.
	DefaultMaxUnpacked = 64 << 20

	floatExtLen = 31
)

// DecodeOptions control how Decode resolves cached atoms and how much
// input it accepts. The zero value uses the defaults.
type DecodeOptions struct {
	// References is the ordered list of atom cache keys declared by the
	// distribution header of the message being decoded. ATOM_CACHE_REF
	// carries an index into this list.
	References []AtomCacheKey
	// MaxDepth limits how deep tuples, lists, pids and references may nest.
	MaxDepth int
	// MaxUnpacked limits the uncompressed size of COMPRESSED terms.
	MaxUnpacked int
}

type decoder struct {
	cache       *AtomCache
	refs        []AtomCacheKey
	maxDepth    int
	maxUnpacked int
}

// Decode decodes one term from the beginning of packet and returns it with
// the remaining bytes. Cached atoms are resolved in cache, which may be nil
// if the packet has no distribution header.
//
// On failure the returned slice is nil, except for an unknown tag where it
// is the input following the tag byte.
func Decode(packet []byte, cache *AtomCache, options DecodeOptions) (Term, []byte, error) {
	d := decoder{
		cache:       cache,
		refs:        options.References,
		maxDepth:    options.MaxDepth,
		maxUnpacked: options.MaxUnpacked,
	}
	if d.maxDepth <= 0 {
		d.maxDepth = DefaultMaxDepth
	}
	if d.maxUnpacked <= 0 {
		d.maxUnpacked = DefaultMaxUnpacked
	}
	return d.decode(packet, 0)
}

func (d *decoder) decode(packet []byte, depth int) (Term, []byte, error) {
	t, packet, err := ReadUint8[byte](packet)
	if err != nil {
		return nil, nil, err
	}

	switch t {
	case ettNil:
		return Nil{}, packet, nil

	case ettSmallInteger:
		v, rest, err := ReadUint8[int32](packet)
		if err != nil {
			return nil, nil, err
		}
		return v, rest, nil

	case ettInteger:
		v, rest, err := ReadInt32(packet)
		if err != nil {
			return nil, nil, err
		}
		return v, rest, nil

	case ettSmallBig:
		n, rest, err := ReadUint8[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		return decodeBig(rest, n)

	case ettLargeBig:
		n, rest, err := ReadUint32[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		return decodeBig(rest, n)

	case ettNewFloat:
		v, rest, err := ReadFloat64(packet)
		if err != nil {
			return nil, nil, err
		}
		return v, rest, nil

	case ettFloat:
		return decodeFloat(packet)

	case ettAtomUTF8, ettAtom:
		n, rest, err := ReadUint16[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		return decodeAtom(rest, n, t == ettAtom)

	case ettSmallAtomUTF8, ettSmallAtom:
		n, rest, err := ReadUint8[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		return decodeAtom(rest, n, t == ettSmallAtom)

	case ettCacheRef:
		idx, rest, err := ReadUint8[int](packet)
		if err != nil {
			return nil, nil, err
		}
		atom, err := d.cached(idx)
		if err != nil {
			return nil, nil, err
		}
		return atom, rest, nil

	case ettPid, ettNewPid:
		return d.decodePid(packet, depth, t == ettNewPid)

	case ettRef:
		return d.decodeRef(packet, depth)

	case ettSmallTuple:
		n, rest, err := ReadUint8[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		return d.decodeTuple(rest, n, depth)

	case ettLargeTuple:
		n, rest, err := ReadUint32[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		return d.decodeTuple(rest, n, depth)

	case ettList:
		n, rest, err := ReadUint32[uint64](packet)
		if err != nil {
			return nil, nil, err
		}
		// the tail is encoded as the last element
		return d.decodeList(rest, n+1, depth)

	case ettString:
		n, rest, err := ReadUint16[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		b, rest, err := takeN(rest, uint64(n))
		if err != nil {
			return nil, nil, err
		}
		list := make(List, len(b))
		for i := range b {
			list[i] = int32(b[i])
		}
		return list, rest, nil

	case ettCompressed:
		return d.decodeCompressed(packet, depth)

	case ettBinary:
		n, rest, err := ReadUint32[uint32](packet)
		if err != nil {
			return nil, nil, err
		}
		b, rest, err := takeN(rest, uint64(n))
		if err != nil {
			return nil, nil, err
		}
		bin := make([]byte, len(b))
		copy(bin, b)
		return bin, rest, nil
	}

	return nil, packet, &UnknownTagError{Tag: t}
}

func (d *decoder) cached(idx int) (Atom, error) {
	if idx >= len(d.refs) {
		return "", &CacheRefError{Index: idx}
	}
	key := d.refs[idx]
	if d.cache == nil {
		return "", &CacheRefError{Index: idx, Key: &key}
	}
	atom, ok := d.cache.Get(key)
	if !ok {
		return "", &CacheRefError{Index: idx, Key: &key}
	}
	return atom, nil
}

func (d *decoder) enter(depth int) (int, error) {
	if depth+1 > d.maxDepth {
		return 0, ErrNestingTooDeep
	}
	return depth + 1, nil
}

func (d *decoder) decodeTuple(packet []byte, n uint32, depth int) (Term, []byte, error) {
	// every element takes at least one byte
	if uint64(n) > uint64(len(packet)) {
		return nil, nil, ErrTruncated
	}
	depth, err := d.enter(depth)
	if err != nil {
		return nil, nil, err
	}

	tuple := make(Tuple, n)
	for i := range tuple {
		tuple[i], packet, err = d.decode(packet, depth)
		if err != nil {
			return nil, nil, err
		}
	}
	return tuple, packet, nil
}

func (d *decoder) decodeList(packet []byte, n uint64, depth int) (Term, []byte, error) {
	if n > uint64(len(packet)) {
		return nil, nil, ErrTruncated
	}
	depth, err := d.enter(depth)
	if err != nil {
		return nil, nil, err
	}

	list := make(List, n)
	for i := range list {
		list[i], packet, err = d.decode(packet, depth)
		if err != nil {
			return nil, nil, err
		}
	}
	return list, packet, nil
}

// decodeCompressed inflates a COMPRESSED term. The zlib stream has no
// length prefix, so it takes the rest of the packet.
func (d *decoder) decodeCompressed(packet []byte, depth int) (Term, []byte, error) {
	size, packet, err := ReadUint32[uint64](packet)
	if err != nil {
		return nil, nil, err
	}
	if size > uint64(d.maxUnpacked) {
		return nil, nil, &UnpackedSizeError{Size: size, Max: d.maxUnpacked}
	}
	depth, err = d.enter(depth)
	if err != nil {
		return nil, nil, err
	}

	unpacked, err := lib.DecompressZLIB(packet, int(size))
	if err != nil {
		if errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil, ErrTruncated
		}
		return nil, nil, fmt.Errorf("%w: %s", ErrMalformedCompressed, err)
	}
	term, rest, err := d.decode(unpacked, depth)
	if err != nil {
		return nil, nil, err
	}
	if len(rest) > 0 {
		return nil, nil, fmt.Errorf("%w: %d bytes after the term", ErrMalformedCompressed, len(rest))
	}
	return term, packet[len(packet):], nil
}

func (d *decoder) decodeNodeName(packet []byte, depth int) (Atom, []byte, error) {
	depth, err := d.enter(depth)
	if err != nil {
		return "", nil, err
	}
	term, packet, err := d.decode(packet, depth)
	if err != nil {
		return "", nil, err
	}
	name, ok := term.(Atom)
	if !ok {
		return "", nil, &NodeNotAtomError{Kind: KindOf(term)}
	}
	return name, packet, nil
}

func (d *decoder) decodePid(packet []byte, depth int, newPid bool) (Term, []byte, error) {
	var creation uint32

	name, packet, err := d.decodeNodeName(packet, depth)
	if err != nil {
		return nil, nil, err
	}
	id, packet, err := ReadUint32[uint32](packet)
	if err != nil {
		return nil, nil, err
	}
	serial, packet, err := ReadUint32[uint32](packet)
	if err != nil {
		return nil, nil, err
	}
	if newPid {
		creation, packet, err = ReadUint32[uint32](packet)
	} else {
		creation, packet, err = ReadUint8[uint32](packet)
	}
	if err != nil {
		return nil, nil, err
	}

	node, err := NewNode(name, creation)
	if err != nil {
		return nil, nil, err
	}
	pid, err := NewPid(node, id, serial)
	if err != nil {
		return nil, nil, err
	}
	return pid, packet, nil
}

func (d *decoder) decodeRef(packet []byte, depth int) (Term, []byte, error) {
	name, packet, err := d.decodeNodeName(packet, depth)
	if err != nil {
		return nil, nil, err
	}
	id, packet, err := ReadUint32[uint32](packet)
	if err != nil {
		return nil, nil, err
	}
	creation, packet, err := ReadUint8[uint32](packet)
	if err != nil {
		return nil, nil, err
	}

	node, err := NewNode(name, creation)
	if err != nil {
		return nil, nil, err
	}
	return Ref{Node: node, ID: id}, packet, nil
}

func decodeAtom(packet []byte, n uint32, latin1 bool) (Term, []byte, error) {
	b, packet, err := takeN(packet, uint64(n))
	if err != nil {
		return nil, nil, err
	}

	var atom Atom
	if latin1 {
		atom, err = atomFromLatin1(b)
	} else {
		atom, err = AtomFromUTF8(b)
	}
	if err != nil {
		return nil, nil, err
	}
	return atom, packet, nil
}

// decodeBig reads the sign byte and n little-endian digits of
// SMALL_BIG_EXT/LARGE_BIG_EXT.
func decodeBig(packet []byte, n uint32) (Term, []byte, error) {
	sign, packet, err := ReadUint8[byte](packet)
	if err != nil {
		return nil, nil, err
	}
	digits, packet, err := takeN(packet, uint64(n))
	if err != nil {
		return nil, nil, err
	}
	if sign > 1 {
		return nil, nil, ErrMalformedBig
	}

	// big.Int wants big-endian order
	l := len(digits)
	be := make([]byte, l)
	for i := 0; i < l; i++ {
		be[l-1-i] = digits[i]
	}

	v := new(big.Int).SetBytes(be)
	if sign == 1 {
		v.Neg(v)
	}
	return v, packet, nil
}

// decodeFloat parses the 31-byte, NUL-padded "%.20e" text of FLOAT_EXT.
func decodeFloat(packet []byte) (Term, []byte, error) {
	b, packet, err := Take(packet, floatExtLen)
	if err != nil {
		return nil, nil, err
	}
	text := strings.TrimSpace(strings.TrimRight(string(b), "\x00"))
	f, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return nil, nil, ErrMalformedFloat
	}
	return f, packet, nil
}

func takeN(b []byte, n uint64) ([]byte, []byte, error) {
	if n > uint64(len(b)) {
		return nil, b, ErrTruncated
	}
	return Take(b, int(n))
}
