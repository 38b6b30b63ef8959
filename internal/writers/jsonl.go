// internal/writers/jsonl.go
package writers

import (
	"io"

	"rbh-core/rbh"
	"rbh/internal/jsonlutil"
	"rbh/internal/output"
)

// writeJSONL streams each pair as one JSON line (v1).
func writeJSONL(w io.Writer, in <-chan rbh.Pair, o PairOptions) error {
	if o.Sort {
		return jsonlutil.Write(w, drain(in, true), output.ToAPIPair, IsBrokenPipe)
	}
	return jsonlutil.Copy(w, in, output.ToAPIPair, IsBrokenPipe)
}
