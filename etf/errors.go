package etf

import (
	"errors"
	"fmt"
)

var (
	// ErrTruncated is returned when fewer bytes remain than a field requires.
	// Nested decoders return it as is.
	ErrTruncated = errors.New("etf: truncated input")
	// ErrInvalidUTF8 is returned for atom bytes that are not valid UTF-8.
	ErrInvalidUTF8 = errors.New("etf: invalid utf-8")
	// ErrNestingTooDeep is returned when nested tuples/lists exceed
	// DecodeOptions.MaxDepth.
	ErrNestingTooDeep = errors.New("etf: nesting too deep")
	// ErrMalformedFloat is returned for a FLOAT_EXT that does not parse.
	ErrMalformedFloat = errors.New("etf: malformed FLOAT_EXT")
	// ErrMalformedBig is returned for a big integer with an invalid sign byte.
	ErrMalformedBig = errors.New("etf: malformed big integer")
	// ErrMalformedCompressed is returned for a COMPRESSED term that does
	// not inflate to exactly one term of the announced size.
	ErrMalformedCompressed = errors.New("etf: malformed compressed term")
)

// UnknownTagError is returned for a leading tag byte the decoder does not know.
type UnknownTagError struct {
	Tag byte
}

func (e *UnknownTagError) Error() string {
	return fmt.Sprintf("etf: unknown term tag %d", e.Tag)
}

// AtomLengthError is returned for an atom longer than MaxAtomLen runes.
type AtomLengthError struct {
	Text string
	Len  int
}

func (e *AtomLengthError) Error() string {
	return fmt.Sprintf("etf: atom has a length of %d, which is larger than %d Unicode code points",
		e.Len, MaxAtomLen)
}

// RunawayAtomError is returned when a fixed-size atom buffer is not
// terminated by a NUL byte.
type RunawayAtomError struct {
	Bytes []byte
}

func (e *RunawayAtomError) Error() string {
	return fmt.Sprintf("etf: atom is not terminated by a null byte (%d bytes)", len(e.Bytes))
}

// NodeNotAtomError is returned when the node name of a pid or reference is
// not an atom.
type NodeNotAtomError struct {
	Kind Kind
}

func (e *NodeNotAtomError) Error() string {
	return fmt.Sprintf("etf: expected node name atom, got %s", e.Kind)
}

// NodeCreationError is returned for a node creation value wider than 2 bits.
type NodeCreationError struct {
	Name     Atom
	Creation uint32
}

func (e *NodeCreationError) Error() string {
	return fmt.Sprintf("etf: node '%s' has a serial number that is out of range: %d", e.Name, e.Creation)
}

// PidRangeError is returned for a pid whose id exceeds 15 bits or whose
// serial exceeds 13 bits.
type PidRangeError struct {
	Node   Node
	ID     uint32
	Serial uint32
}

func (e *PidRangeError) Error() string {
	return fmt.Sprintf("etf: pid from node '%s' is out of range: %x+%x", e.Node.Name, e.ID, e.Serial)
}

// VersionError is returned when the leading version magic is not EtVersion.
type VersionError struct {
	Version byte
}

func (e *VersionError) Error() string {
	return fmt.Sprintf("etf: found protocol version %d, but only %d is supported", e.Version, EtVersion)
}

// CacheRefError is returned when an ATOM_CACHE_REF can not be resolved.
type CacheRefError struct {
	Index int
	Key   *AtomCacheKey
}

func (e *CacheRefError) Error() string {
	if e.Key == nil {
		return fmt.Sprintf("etf: atom cache reference %d is not declared by the distribution header", e.Index)
	}
	return fmt.Sprintf("etf: atom cache reference %d (%s) is missing in cache", e.Index, e.Key)
}

// UnpackedSizeError is returned for a compressed term announcing more than
// DecodeOptions.MaxUnpacked bytes.
type UnpackedSizeError struct {
	Size uint64
	Max  int
}

func (e *UnpackedSizeError) Error() string {
	return fmt.Sprintf("etf: compressed term unpacks to %d bytes, the limit is %d", e.Size, e.Max)
}
