// core/rbh/policy.go
package rbh

import (
	"fmt"

	"rbh-core/hit"
)

// AcceptFunc decides whether a reverse hit justifies the forward hit.
// forward is a's best hit (a -> b); reverse is one of b's ranked hits (b -> ?).
type AcceptFunc func(forward, reverse hit.Record) bool

// Policy names an acceptance predicate and how deep into the reverse bucket
// it is evaluated. Depth 1 looks at the top-ranked reverse hit only; Depth <= 0
// walks the whole bucket. The first reverse hit accepted becomes the evidence.
type Policy struct {
	Name   string
	Depth  int
	Accept AcceptFunc
}

// Policy names.
const (
	PolicyStrict = "strict"
	PolicyTopN   = "top-n"
	PolicyMutual = "mutual"
)

// Reciprocal holds when the reverse hit points back at the forward query.
func Reciprocal(forward, reverse hit.Record) bool {
	return reverse.SubjectID == forward.QueryID && reverse.QueryID == forward.SubjectID
}

// StrictRBH accepts only when b's top-ranked hit is a.
func StrictRBH() Policy {
	return Policy{Name: PolicyStrict, Depth: 1, Accept: Reciprocal}
}

// TopN accepts when a is among b's n best hits.
func TopN(n int) Policy {
	if n < 1 {
		n = 1
	}
	return Policy{Name: fmt.Sprintf("%s(%d)", PolicyTopN, n), Depth: n, Accept: Reciprocal}
}

// MutualAbove accepts any reciprocal hit of b when both hits score at least
// minBitScore.
func MutualAbove(minBitScore float64) Policy {
	return Policy{
		Name:  fmt.Sprintf("%s(%g)", PolicyMutual, minBitScore),
		Depth: 0,
		Accept: func(forward, reverse hit.Record) bool {
			return Reciprocal(forward, reverse) &&
				forward.BitScore >= minBitScore && reverse.BitScore >= minBitScore
		},
	}
}

// PolicyByName builds one of the provided policies from configuration values.
func PolicyByName(name string, topN int, minBitScore float64) (Policy, error) {
	switch name {
	case "", PolicyStrict:
		return StrictRBH(), nil
	case PolicyTopN:
		if topN < 1 {
			return Policy{}, fmt.Errorf("policy %s needs n >= 1, got %d", PolicyTopN, topN)
		}
		return TopN(topN), nil
	case PolicyMutual:
		if minBitScore < 0 {
			return Policy{}, fmt.Errorf("policy %s needs a non-negative bit score, got %g", PolicyMutual, minBitScore)
		}
		return MutualAbove(minBitScore), nil
	}
	return Policy{}, fmt.Errorf("unknown policy %q (want %s | %s | %s)", name, PolicyStrict, PolicyTopN, PolicyMutual)
}

func (p Policy) valid() error {
	if p.Accept == nil {
		return fmt.Errorf("policy %q has no accept function", p.Name)
	}
	return nil
}
