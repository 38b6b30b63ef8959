// internal/appcore/writer_factories.go
package appcore

import (
	"io"

	"rbh-core/rbh"
	"rbh/internal/writers"
)

// WriterFactory starts the goroutine that serializes pairs.
type WriterFactory interface {
	Start(out io.Writer, bufSize int) (chan<- rbh.Pair, <-chan error)
}

// PairWriterFactory writes pairs in one of the registered formats.
type PairWriterFactory struct {
	Format string
	Sort   bool
	Header bool
}

func NewPairWriterFactory(format string, sort, header bool) PairWriterFactory {
	return PairWriterFactory{Format: format, Sort: sort, Header: header}
}

func (w PairWriterFactory) Start(out io.Writer, bufSize int) (chan<- rbh.Pair, <-chan error) {
	return writers.StartPairWriter(out, w.Format, writers.PairOptions{Sort: w.Sort, Header: w.Header}, bufSize)
}
