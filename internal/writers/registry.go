// internal/writers/registry.go
package writers

import (
	"fmt"
	"io"
	"sort"

	"rbh-core/rbh"
)

// PairWriterFunc consumes pairs from in until it is closed.
type PairWriterFunc func(w io.Writer, in <-chan rbh.Pair, opts PairOptions) error

// PairOptions tunes pair writers.
type PairOptions struct {
	Sort   bool // buffer and order by (id_a, id_b) before writing
	Header bool // TSV header line
}

var pairWriters = map[string]PairWriterFunc{}

// RegisterPair binds a format name to a writer (last wins).
func RegisterPair(format string, fn PairWriterFunc) { pairWriters[format] = fn }

// PairFormats lists the registered format names, sorted.
func PairFormats() []string {
	out := make([]string, 0, len(pairWriters))
	for k := range pairWriters {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func lookupPair(format string) (PairWriterFunc, error) {
	fn, ok := pairWriters[format]
	if !ok {
		return nil, fmt.Errorf("unknown pair format %q (no writer registered)", format)
	}
	return fn, nil
}
