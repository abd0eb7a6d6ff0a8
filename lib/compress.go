package lib

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"sync"
)

const (
	// deflate does not do much better than 1:1032, anything announcing
	// more gets its buffer grown while inflating
	maxPreallocRatio = 1032
)

var (
	ErrUnpackedSize = errors.New("unpacked size mismatch")

	zlibReaders = &sync.Pool{
		New: func() interface{} {
			return nil
		},
	}
)

// DecompressZLIB inflates src, which must unpack to exactly size bytes.
// A stream cut short returns io.ErrUnexpectedEOF.
func DecompressZLIB(src []byte, size int) ([]byte, error) {
	var reader io.ReadCloser
	var err error

	if r, ok := zlibReaders.Get().(io.ReadCloser); ok {
		reader = r
		err = r.(zlib.Resetter).Reset(bytes.NewReader(src), nil)
	} else {
		reader, err = zlib.NewReader(bytes.NewReader(src))
	}
	if err != nil {
		return nil, err
	}
	defer func() {
		reader.Close()
		zlibReaders.Put(reader)
	}()

	return decompress(reader, size, len(src))
}

func decompress(reader io.Reader, size int, packed int) ([]byte, error) {
	// one byte more than announced, so an oversized stream is noticed
	// without inflating all of it
	limit := int64(size) + 1
	prealloc := limit
	if bound := int64(packed) * maxPreallocRatio; prealloc > bound {
		prealloc = bound
	}

	lr := io.LimitReader(reader, limit)
	dst := make([]byte, 0, prealloc)
	for {
		if len(dst) == cap(dst) {
			dst = append(dst, 0)[:len(dst)]
		}
		n, err := lr.Read(dst[len(dst):cap(dst)])
		dst = dst[:len(dst)+n]
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if len(dst) != size {
		return nil, ErrUnpackedSize
	}
	return dst, nil
}
