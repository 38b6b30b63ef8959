// core/tabular/open.go
package tabular

import (
	"bufio"
	"bytes"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

var (
	gzipMagic = []byte{0x1f, 0x8b}
	zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}
)

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// Open returns a reader for path. "-" is stdin. Compressed input is detected
// by magic number or by a .gz / .zst suffix.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return Decompress(io.NopCloser(os.Stdin), "")
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return Decompress(fh, path)
}

// Decompress wraps rc with a decoder when its first bytes (or name) say so.
// rc is closed by the returned closer.
func Decompress(rc io.ReadCloser, name string) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(rc, 64*1024)
	sig, _ := br.Peek(4)

	switch {
	case bytes.HasPrefix(sig, gzipMagic) || strings.HasSuffix(name, ".gz"):
		gr, err := gzip.NewReader(br)
		if err != nil {
			_ = rc.Close()
			return nil, err
		}
		return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, rc}}, nil
	case bytes.HasPrefix(sig, zstdMagic) || strings.HasSuffix(name, ".zst"):
		zr, err := zstd.NewReader(br)
		if err != nil {
			_ = rc.Close()
			return nil, err
		}
		zc := closerFunc(func() error { zr.Close(); return nil })
		return &multiReadCloser{Reader: zr, closers: []io.Closer{zc, rc}}, nil
	}
	return &multiReadCloser{Reader: br, closers: []io.Closer{rc}}, nil
}
