package etf

import (
	"encoding/binary"
	"math"
)

// Integer is the set of integer types a fixed-width read can be converted to.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// All read functions take the remaining input and return the decoded value
// together with the input advanced past it. They never read past the end of
// the slice: a short input gives ErrTruncated.

// ReadUint8 reads one byte.
func ReadUint8[T Integer](b []byte) (T, []byte, error) {
	if len(b) < 1 {
		return 0, b, ErrTruncated
	}
	return T(b[0]), b[1:], nil
}

// ReadUint16 reads a big-endian uint16.
func ReadUint16[T Integer](b []byte) (T, []byte, error) {
	if len(b) < 2 {
		return 0, b, ErrTruncated
	}
	return T(binary.BigEndian.Uint16(b)), b[2:], nil
}

// ReadUint32 reads a big-endian uint32.
func ReadUint32[T Integer](b []byte) (T, []byte, error) {
	if len(b) < 4 {
		return 0, b, ErrTruncated
	}
	return T(binary.BigEndian.Uint32(b)), b[4:], nil
}

// ReadUint64 reads a big-endian uint64.
func ReadUint64[T Integer](b []byte) (T, []byte, error) {
	if len(b) < 8 {
		return 0, b, ErrTruncated
	}
	return T(binary.BigEndian.Uint64(b)), b[8:], nil
}

// ReadInt32 reads a big-endian uint32 and reinterprets it as signed.
func ReadInt32(b []byte) (int32, []byte, error) {
	v, rest, err := ReadUint32[uint32](b)
	if err != nil {
		return 0, b, err
	}
	return int32(v), rest, nil
}

// ReadFloat64 reads 8 bytes holding a big-endian IEEE-754 double.
func ReadFloat64(b []byte) (float64, []byte, error) {
	bits, rest, err := ReadUint64[uint64](b)
	if err != nil {
		return 0, b, err
	}
	return math.Float64frombits(bits), rest, nil
}

// Take returns the first n bytes of b and the rest. The returned slice
// aliases b.
func Take(b []byte, n int) ([]byte, []byte, error) {
	if n < 0 || len(b) < n {
		return nil, b, ErrTruncated
	}
	return b[:n], b[n:], nil
}

// ReadVersion consumes the leading version magic.
func ReadVersion(b []byte) ([]byte, error) {
	version, rest, err := ReadUint8[byte](b)
	if err != nil {
		return b, err
	}
	if version != EtVersion {
		return b, &VersionError{Version: version}
	}
	return rest, nil
}
