// internal/output/json.go
package output

import (
	"io"

	"rbh-core/hit"
	"rbh-core/rbh"
	"rbh/internal/jsonutil"
	"rbh/pkg/api"
)

// ToAPIHit converts a hit to the stable wire schema (v1).
func ToAPIHit(h hit.Record) api.HitV1 {
	return api.HitV1{
		QueryID:         h.QueryID,
		SubjectID:       h.SubjectID,
		PercentIdentity: h.PercentIdentity,
		AlignmentLength: h.AlignmentLength,
		Mismatches:      h.Mismatches,
		GapOpens:        h.GapOpens,
		QueryStart:      h.QueryStart,
		QueryEnd:        h.QueryEnd,
		SubjectStart:    h.SubjectStart,
		SubjectEnd:      h.SubjectEnd,
		EValue:          hit.FormatEValue(h.EValue),
		BitScore:        h.BitScore,
	}
}

// ToAPIPair converts an accepted pair to the stable wire schema (v1).
func ToAPIPair(p rbh.Pair) api.PairV1 {
	return api.PairV1{
		IDA:     p.IDA,
		IDB:     p.IDB,
		Forward: ToAPIHit(p.Forward),
		Reverse: ToAPIHit(p.Reverse),
	}
}

func toAPIPairs(list []rbh.Pair) []api.PairV1 {
	out := make([]api.PairV1, 0, len(list))
	for _, p := range list {
		out = append(out, ToAPIPair(p))
	}
	return out
}

// WriteJSON writes a single JSON array of v1 pairs (pretty-indented).
func WriteJSON(w io.Writer, list []rbh.Pair) error {
	return jsonutil.EncodePretty(w, toAPIPairs(list))
}
