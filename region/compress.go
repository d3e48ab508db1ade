package region

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"

	"github.com/joshuapare/voxstore/internal/format"
)

// Compress encodes data with c.
func Compress(c format.Compression, data []byte) ([]byte, error) {
	var b bytes.Buffer
	var w io.WriteCloser
	switch c {
	case format.Gzip:
		w = gzip.NewWriter(&b)
	case format.Zlib:
		w = zlib.NewWriter(&b)
	case format.None:
		return bytes.Clone(data), nil
	default:
		return nil, fmt.Errorf("compress with %s: %w", c, ErrUnknownCompression)
	}
	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("compress with %s: %w", c, err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("compress with %s: %w", c, err)
	}
	return b.Bytes(), nil
}

// Decompress decodes data written with c.
func Decompress(c format.Compression, data []byte) ([]byte, error) {
	r, err := decompressor(c, io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress %s: %w", c, err)
	}
	return out, nil
}

// decompressor wraps src in a reader for c. Closing the result closes src.
func decompressor(c format.Compression, src io.ReadCloser) (io.ReadCloser, error) {
	var (
		r   io.ReadCloser
		err error
	)
	switch c {
	case format.Gzip:
		r, err = gzip.NewReader(src)
	case format.Zlib:
		r, err = zlib.NewReader(src)
	case format.None:
		return src, nil
	default:
		err = ErrUnknownCompression
	}
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("decompress %s: %w", c, err)
	}
	return &chainCloser{ReadCloser: r, inner: src}, nil
}

type chainCloser struct {
	io.ReadCloser
	inner io.Closer
}

func (c *chainCloser) Close() error {
	err := c.ReadCloser.Close()
	if ierr := c.inner.Close(); err == nil {
		err = ierr
	}
	return err
}
