package dist

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

func TestDecodeHeaderAbsent(t *testing.T) {
	cache := etf.NewAtomCache()
	packet := intBytes(5)

	keys, rest, err := DecodeHeader(packet, cache)
	require.NoError(t, err)
	assert.Nil(t, keys)
	assert.Equal(t, packet, rest)
	assert.Zero(t, cache.Len())

	_, _, err = DecodeHeader(nil, cache)
	assert.ErrorIs(t, err, etf.ErrTruncated)
}

func TestDecodeHeaderNoReferences(t *testing.T) {
	cache := etf.NewAtomCache()
	cache.Insert(etf.AtomCacheKey{Segment: etf.S1, Slot: 1}, "kept")
	packet := []byte{protoDist, 0, tagNil}

	keys, rest, err := DecodeHeader(packet, cache)
	require.NoError(t, err)
	assert.Empty(t, keys)
	assert.Equal(t, packet[2:], rest)
	assert.Equal(t, 1, cache.Len())
	assert.Equal(t, uint64(1), cache.Inserts())
}

func TestDecodeHeaderNewEntry(t *testing.T) {
	cache := etf.NewAtomCache()
	other := etf.AtomCacheKey{Segment: etf.S0, Slot: 7}
	cache.Insert(other, "other")

	// one new reference in segment 3, short atoms
	packet := []byte{protoDist, 1, 0xb0, 7, 3, 'f', 'o', 'o', tagCacheRef, 0}

	keys, rest, err := DecodeHeader(packet, cache)
	require.NoError(t, err)
	key := etf.AtomCacheKey{Segment: etf.S3, Slot: 7}
	assert.Equal(t, []etf.AtomCacheKey{key}, keys)
	assert.Equal(t, []byte{tagCacheRef, 0}, rest)

	atom, ok := cache.Get(key)
	require.True(t, ok)
	assert.Equal(t, etf.Atom("foo"), atom)
	atom, _ = cache.Get(other)
	assert.Equal(t, etf.Atom("other"), atom)
	assert.Equal(t, 2, cache.Len())

	// the same key again, without the new entry bit
	packet = []byte{protoDist, 1, 0x30, 7, tagCacheRef, 0}
	keys, rest, err = DecodeHeader(packet, cache)
	require.NoError(t, err)
	assert.Equal(t, []etf.AtomCacheKey{key}, keys)
	assert.Equal(t, uint64(2), cache.Inserts())

	term, rest, err := etf.Decode(rest, cache, etf.DecodeOptions{References: keys})
	require.NoError(t, err)
	assert.Equal(t, etf.Atom("foo"), term)
	assert.Empty(t, rest)
}

func TestDecodeHeaderNibbleOrder(t *testing.T) {
	cache := etf.NewAtomCache()

	// three references: new S2, old S5, new S7; long atoms
	packet := []byte{
		protoDist, 3,
		0xa5, 0xf1,
		1, 0, 2, 'a', 'b',
		2,
		3, 0, 1, 'c',
	}

	keys, rest, err := DecodeHeader(packet, cache)
	require.NoError(t, err)
	assert.Empty(t, rest)
	assert.Equal(t, []etf.AtomCacheKey{
		{Segment: etf.S2, Slot: 1},
		{Segment: etf.S5, Slot: 2},
		{Segment: etf.S7, Slot: 3},
	}, keys)

	atom, _ := cache.Get(keys[0])
	assert.Equal(t, etf.Atom("ab"), atom)
	_, ok := cache.Get(keys[1])
	assert.False(t, ok)
	atom, _ = cache.Get(keys[2])
	assert.Equal(t, etf.Atom("c"), atom)
}

func TestDecodeHeaderOverwrite(t *testing.T) {
	cache := etf.NewAtomCache()
	key := etf.AtomCacheKey{Segment: etf.S3, Slot: 7}
	cache.Insert(key, "old")

	_, _, err := DecodeHeader([]byte{protoDist, 1, 0xb0, 7, 3, 'n', 'e', 'w'}, cache)
	require.NoError(t, err)
	atom, _ := cache.Get(key)
	assert.Equal(t, etf.Atom("new"), atom)
}

func TestDecodeHeaderErrors(t *testing.T) {
	valid := []byte{protoDist, 1, 0xb0, 7, 3, 'f', 'o', 'o'}
	for i := 1; i < len(valid); i++ {
		_, _, err := DecodeHeader(valid[:i], etf.NewAtomCache())
		assert.ErrorIs(t, err, etf.ErrTruncated, "prefix %d", i)
	}

	_, _, err := DecodeHeader([]byte{protoDist, 1, 0xb0, 7, 2, 0xff, 0xfe}, etf.NewAtomCache())
	assert.ErrorIs(t, err, etf.ErrInvalidUTF8)
}

func TestDecodeHeaderNoCache(t *testing.T) {
	_, _, err := DecodeHeader([]byte{protoDist, 1, 0xb0, 7, 3, 'f', 'o', 'o'}, nil)
	assert.ErrorIs(t, err, ErrNoAtomCache)

	// without a header there is nothing to store
	keys, rest, err := DecodeHeader([]byte{tagSmallInteger, 1}, nil)
	require.NoError(t, err)
	assert.Nil(t, keys)
	assert.Equal(t, []byte{tagSmallInteger, 1}, rest)
}

func TestDecodeHeaderPartial(t *testing.T) {
	cache := etf.NewAtomCache()
	packet := []byte{
		protoDist, 2, 0xbb, 0x00,
		7, 3, 'f', 'o', 'o',
		8, 2, 0xff, 0xfe,
	}
	_, _, err := DecodeHeader(packet, cache)
	assert.ErrorIs(t, err, etf.ErrInvalidUTF8)

	// the entry read before the faulty one is kept
	atom, ok := cache.Get(etf.AtomCacheKey{Segment: etf.S3, Slot: 7})
	require.True(t, ok)
	assert.Equal(t, etf.Atom("foo"), atom)
	_, ok = cache.Get(etf.AtomCacheKey{Segment: etf.S3, Slot: 8})
	assert.False(t, ok)
}
