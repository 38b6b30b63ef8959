// core/hit/record.go
package hit

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Origin identifies which directed hit set produced a record.
type Origin uint8

const (
	OriginA Origin = iota + 1 // X searched against Y
	OriginB                   // Y searched against X
)

func (o Origin) String() string {
	switch o {
	case OriginA:
		return "A"
	case OriginB:
		return "B"
	default:
		return fmt.Sprintf("Origin(%d)", uint8(o))
	}
}

// Other returns the opposite direction.
func (o Origin) Other() Origin {
	if o == OriginA {
		return OriginB
	}
	return OriginA
}

// ParseOrigin accepts "A"/"B", the arrow forms "A->B"/"B->A" and the words
// "forward"/"reverse", all case-insensitive.
func ParseOrigin(s string) (Origin, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "a->b", "forward":
		return OriginA, nil
	case "b", "b->a", "reverse":
		return OriginB, nil
	}
	return 0, fmt.Errorf("unknown origin %q (want A or B)", s)
}

// Record is one similarity-search hit row. Values are immutable once built.
type Record struct {
	QueryID   string
	SubjectID string

	PercentIdentity float64
	AlignmentLength int
	Mismatches      int
	GapOpens        int
	QueryStart      int // 1-based, carried through
	QueryEnd        int
	SubjectStart    int
	SubjectEnd      int

	EValue   decimal.Decimal
	BitScore float64

	Origin Origin
	Seq    uint64 // input ordinal within Origin; first-seen wins on ranking ties
}

// Compare orders records by significance: bit score descending, then e-value
// ascending. Records with equal keys compare as 0; callers keep input order
// with a stable sort.
func Compare(a, b Record) int {
	switch {
	case a.BitScore > b.BitScore:
		return -1
	case a.BitScore < b.BitScore:
		return 1
	}
	return a.EValue.Cmp(b.EValue)
}

// Less reports whether a ranks strictly before b.
func Less(a, b Record) bool { return Compare(a, b) < 0 }

// Before is Compare with the input ordinal as final tie-break. It totally
// orders records of one origin.
func Before(a, b Record) bool {
	if c := Compare(a, b); c != 0 {
		return c < 0
	}
	return a.Seq < b.Seq
}

// PassesCutoff reports whether the e-value is at or below cutoff.
func (r Record) PassesCutoff(cutoff decimal.Decimal) bool {
	return r.EValue.Cmp(cutoff) <= 0
}

func (r Record) String() string {
	return fmt.Sprintf("%s->%s bit=%g e=%s", r.QueryID, r.SubjectID, r.BitScore, r.EValue.String())
}
