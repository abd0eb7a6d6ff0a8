package lib

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"runtime"
	"strings"
	"testing"
)

var (
	srcCompress = strings.Repeat("erlang distribution ", 64)
)

func compressZLIB(t *testing.T, src string) []byte {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write([]byte(src)); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestDecompressZLIB(t *testing.T) {
	packed := compressZLIB(t, srcCompress)

	// twice to go through the pool
	for i := 0; i < 2; i++ {
		d, err := DecompressZLIB(packed, len(srcCompress))
		if err != nil {
			t.Fatal(err)
		}
		if srcCompress != string(d) {
			t.Fatal("incorrect result")
		}
	}
}

func TestDecompressZLIBSizeMismatch(t *testing.T) {
	packed := compressZLIB(t, srcCompress)

	if _, err := DecompressZLIB(packed, len(srcCompress)+1); err != ErrUnpackedSize {
		t.Fatal("expected size mismatch, got", err)
	}
	if _, err := DecompressZLIB(packed, len(srcCompress)-1); err != ErrUnpackedSize {
		t.Fatal("expected size mismatch, got", err)
	}
	if _, err := DecompressZLIB([]byte{1, 2, 3}, 3); err == nil {
		t.Fatal("expected error for garbage input")
	}
}

func TestDecompressZLIBTruncated(t *testing.T) {
	packed := compressZLIB(t, srcCompress)

	for n := 0; n < len(packed); n++ {
		_, err := DecompressZLIB(packed[:n], len(srcCompress))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("prefix of %d bytes: expected unexpected EOF, got %v", n, err)
		}
	}
}

func TestDecompressZLIBAnnouncedSize(t *testing.T) {
	// a two byte stream header announcing 64MB
	header := []byte{0x78, 0x9c}
	var before, after runtime.MemStats
	runtime.ReadMemStats(&before)
	if _, err := DecompressZLIB(header, 64<<20); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatal("expected unexpected EOF, got", err)
	}
	runtime.ReadMemStats(&after)
	if allocated := after.TotalAlloc - before.TotalAlloc; allocated > 1<<20 {
		t.Fatal("allocated", allocated, "bytes for a 2 bytes stream")
	}

	d, err := decompress(strings.NewReader(srcCompress), len(srcCompress), 1)
	if err != nil {
		t.Fatal(err)
	}
	if srcCompress != string(d) {
		t.Fatal("incorrect result")
	}
}
