package etf

import (
	"bytes"
	"unicode/utf8"
)

const (
	// MaxAtomLen is the maximum number of Unicode code points in an atom.
	MaxAtomLen = 255
	// MaxAtomBufLen is the size of a NUL-terminated UTF-8 atom buffer as
	// laid out by the native interface (4 bytes per code point plus NUL).
	MaxAtomBufLen = MaxAtomLen*4 + 1
)

// Atom is a constant name made of up to 255 Unicode code points.
type Atom string

// NewAtom validates the length of text and returns it as an atom.
func NewAtom(text string) (Atom, error) {
	if n := utf8.RuneCountInString(text); n > MaxAtomLen {
		return "", &AtomLengthError{Text: text, Len: n}
	}
	return Atom(text), nil
}

// AtomFromBuffer builds an atom from a fixed-size buffer holding a
// NUL-terminated UTF-8 string.
func AtomFromBuffer(buf []byte) (Atom, error) {
	n := bytes.IndexByte(buf, 0)
	if n < 0 {
		runaway := make([]byte, len(buf))
		copy(runaway, buf)
		return "", &RunawayAtomError{Bytes: runaway}
	}
	return AtomFromUTF8(buf[:n])
}

// AtomFromUTF8 validates b as UTF-8 and as an atom.
func AtomFromUTF8(b []byte) (Atom, error) {
	if !utf8.Valid(b) {
		return "", ErrInvalidUTF8
	}
	return NewAtom(string(b))
}

// atoms encoded with the deprecated ATOM_EXT/SMALL_ATOM_EXT tags are Latin-1
func atomFromLatin1(b []byte) (Atom, error) {
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return NewAtom(string(runes))
}
