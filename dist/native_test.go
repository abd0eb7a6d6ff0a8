package dist

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/in-the-mood-for-mov/erlang-cnode/etf"
)

func nativePid(node string, num, serial, creation uint32) NativePid {
	p := NativePid{Num: num, Serial: serial, Creation: creation}
	copy(p.Node[:], node)
	return p
}

func TestNativeHeaderSend(t *testing.T) {
	h := NativeHeader{
		MsgType: int64(SEND),
		From:    nativePid("a@host", 1, 0, 1),
		To:      nativePid("b@host", 2, 3, 1),
	}

	header, err := h.Header()
	require.NoError(t, err)
	assert.Equal(t, Header{
		Type: SEND,
		From: testPid("a@host", 1, 0, 1),
		To:   testPid("b@host", 2, 3, 1),
	}, header)

	m, err := Classify(header)
	require.NoError(t, err)
	assert.Equal(t, Send{From: testPid("a@host", 1, 0, 1), To: testPid("b@host", 2, 3, 1)}, m)

	// the sender is validated as well
	h.From = NativePid{Num: 0xffffffff}
	_, err = h.Header()
	var perr *etf.PidRangeError
	require.ErrorAs(t, err, &perr)
}

func TestNativeHeaderRegSend(t *testing.T) {
	h := NativeHeader{
		MsgType: int64(REG_SEND_TT),
		From:    nativePid("a@host", 1, 0, 3),
		Token: NativeTrace{
			Serial: 5,
			Prev:   4,
			From:   nativePid("a@host", 1, 0, 3),
			Label:  1 << 40,
			Flags:  2,
		},
	}
	copy(h.ToName[:], "server")

	header, err := h.Header()
	require.NoError(t, err)
	from := testPid("a@host", 1, 0, 3)
	assert.Equal(t, Header{
		Type:   REG_SEND_TT,
		From:   from,
		ToName: "server",
		Token: &TraceToken{
			Flags:    2,
			Label:    big.NewInt(1 << 40),
			Serial:   5,
			From:     from,
			Previous: 4,
		},
	}, header)

	m, err := Classify(header)
	require.NoError(t, err)
	assert.Equal(t, REG_SEND_TT, m.Type())
}

func TestNativeHeaderLink(t *testing.T) {
	h := NativeHeader{
		MsgType: int64(LINK),
		From:    nativePid("a@host", 1, 0, 0),
		To:      nativePid("b@host", 2, 0, 0),
	}
	header, err := h.Header()
	require.NoError(t, err)
	assert.Equal(t, testPid("a@host", 1, 0, 0), header.From)
	assert.Equal(t, testPid("b@host", 2, 0, 0), header.To)

	h.MsgType = int64(NODE_LINK)
	header, err = h.Header()
	require.NoError(t, err)
	assert.Equal(t, Header{Type: NODE_LINK}, header)
}

func TestNativeHeaderErrors(t *testing.T) {
	h := NativeHeader{MsgType: 42}
	_, err := h.Header()
	var uerr *UnknownMessageTypeError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, MessageType(42), uerr.Code)

	h = NativeHeader{MsgType: int64(SEND)}
	for i := range h.To.Node {
		h.To.Node[i] = 'a'
	}
	_, err = h.Header()
	var rerr *etf.RunawayAtomError
	require.ErrorAs(t, err, &rerr)
	assert.Len(t, rerr.Bytes, etf.MaxAtomBufLen)

	h = NativeHeader{MsgType: int64(SEND), To: nativePid("b@host", 1<<15, 0, 0)}
	_, err = h.Header()
	var perr *etf.PidRangeError
	require.ErrorAs(t, err, &perr)

	h = NativeHeader{MsgType: int64(LINK), From: nativePid("a@host", 1, 0, 4)}
	_, err = h.Header()
	var nerr *etf.NodeCreationError
	require.ErrorAs(t, err, &nerr)
	assert.Equal(t, uint32(4), nerr.Creation)

	h = NativeHeader{MsgType: int64(REG_SEND), From: nativePid("a@host", 1, 0, 0)}
	h.ToName[0] = 0xff
	_, err = h.Header()
	assert.ErrorIs(t, err, etf.ErrInvalidUTF8)
}
