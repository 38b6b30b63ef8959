// internal/writers/pair.go
package writers

import (
	"io"
	"slices"

	"rbh-core/rbh"
	"rbh/internal/output"
)

func init() {
	RegisterPair(output.FormatText, writeText)
	RegisterPair(output.FormatJSON, writeJSON)
	RegisterPair(output.FormatJSONL, writeJSONL)
}

func drain(in <-chan rbh.Pair, sorted bool) []rbh.Pair {
	var buf []rbh.Pair
	for p := range in {
		buf = append(buf, p)
	}
	if sorted {
		slices.SortFunc(buf, rbh.ComparePairs)
	}
	return buf
}

func writeText(w io.Writer, in <-chan rbh.Pair, o PairOptions) error {
	if o.Sort {
		return output.WriteText(w, drain(in, true), o.Header)
	}
	return output.StreamText(w, in, o.Header)
}

func writeJSON(w io.Writer, in <-chan rbh.Pair, o PairOptions) error {
	return output.WriteJSON(w, drain(in, o.Sort))
}

// StartPairWriter spins up a writer goroutine for format. An unknown format
// is reported on the error channel after in is closed, so callers can always
// close in and wait.
func StartPairWriter(out io.Writer, format string, opts PairOptions, bufSize int) (chan<- rbh.Pair, <-chan error) {
	if bufSize <= 0 {
		bufSize = 64
	}
	in := make(chan rbh.Pair, bufSize)
	errCh := make(chan error, 1)

	go func() {
		fn, err := lookupPair(format)
		if err != nil {
			for range in {
			}
			errCh <- err
			return
		}
		err = fn(out, in, opts)
		// keep the producer unblocked after a write failure
		for range in {
		}
		errCh <- err
	}()

	return in, errCh
}
