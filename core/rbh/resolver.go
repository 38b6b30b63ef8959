// core/rbh/resolver.go
package rbh

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"rbh-core/bucket"
	"rbh-core/hit"
)

// DefaultCutoff is the e-value cutoff applied when none is configured.
var DefaultCutoff = decimal.New(1, -50)

// Outcome is the terminal state reached for one candidate accession.
type Outcome uint8

const (
	OutcomeAccepted       Outcome = iota // reciprocal and within cutoff
	OutcomeNoForward                     // accession absent or empty in the forward index
	OutcomeNoReverse                     // best partner absent in the reverse index
	OutcomeNotReciprocal                 // partner's ranked hits do not lead back
	OutcomeCutoffRejected                // reciprocal, but an e-value exceeds the cutoff
	numOutcomes
)

var outcomeNames = [numOutcomes]string{
	"accepted", "no-forward", "no-reverse", "not-reciprocal", "cutoff-rejected",
}

func (o Outcome) String() string {
	if o < numOutcomes {
		return outcomeNames[o]
	}
	return fmt.Sprintf("Outcome(%d)", uint8(o))
}

// Resolution records how one accession was resolved. Forward and Reverse are
// set as far as the walk got; Err carries the lookup error behind a
// no-forward/no-reverse outcome.
type Resolution struct {
	Query      string
	Outcome    Outcome
	Forward    hit.Record
	Reverse    hit.Record
	HasForward bool
	HasReverse bool
	Err        error
}

// Pair converts an accepted resolution into a Pair. The query side decides
// which hit is A->B.
func (r Resolution) Pair() (Pair, bool) {
	if r.Outcome != OutcomeAccepted {
		return Pair{}, false
	}
	fwd, rev := r.Forward, r.Reverse
	if fwd.Origin == hit.OriginB {
		fwd, rev = rev, fwd
	}
	return Pair{IDA: fwd.QueryID, IDB: fwd.SubjectID, Forward: fwd, Reverse: rev}, true
}

// Resolver runs the per-accession check against two read-only indices.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	fwd    *bucket.Index
	rev    *bucket.Index
	policy Policy
	cutoff decimal.Decimal
}

// NewResolver pairs a forward index with the index of the other origin.
func NewResolver(fwd, rev *bucket.Index, policy Policy, cutoff decimal.Decimal) (*Resolver, error) {
	if fwd == nil || rev == nil {
		return nil, errors.New("rbh: both indices are required")
	}
	if fwd.Origin() == rev.Origin() {
		return nil, fmt.Errorf("rbh: both indices have origin %s", fwd.Origin())
	}
	if err := policy.valid(); err != nil {
		return nil, fmt.Errorf("rbh: %w", err)
	}
	if cutoff.Sign() < 0 {
		return nil, fmt.Errorf("rbh: negative cutoff %s", cutoff)
	}
	return &Resolver{fwd: fwd, rev: rev, policy: policy, cutoff: cutoff}, nil
}

// Swapped returns a resolver walking the reverse index with the same policy
// and cutoff.
func (r *Resolver) Swapped() *Resolver {
	return &Resolver{fwd: r.rev, rev: r.fwd, policy: r.policy, cutoff: r.cutoff}
}

// ResolveOne walks the fixed lookup/best/reciprocity/cutoff steps for a.
func (r *Resolver) ResolveOne(a string) Resolution {
	res := Resolution{Query: a}

	fb, err := r.fwd.Lookup(a)
	if err != nil {
		res.Outcome, res.Err = OutcomeNoForward, err
		return res
	}
	forward, _ := fb.Best()
	res.Forward, res.HasForward = forward, true

	b := forward.SubjectID
	rb, err := r.rev.Lookup(b)
	if err != nil {
		res.Outcome, res.Err = OutcomeNoReverse, err
		return res
	}
	top, _ := rb.Best()
	res.Reverse, res.HasReverse = top, true

	depth := r.policy.Depth
	if depth <= 0 || depth > rb.Len() {
		depth = rb.Len()
	}
	accepted := false
	for i := 0; i < depth; i++ {
		if h := rb.At(i); r.policy.Accept(forward, h) {
			res.Reverse = h
			accepted = true
			break
		}
	}
	if !accepted {
		res.Outcome = OutcomeNotReciprocal
		return res
	}

	if !forward.PassesCutoff(r.cutoff) || !res.Reverse.PassesCutoff(r.cutoff) {
		res.Outcome = OutcomeCutoffRejected
		return res
	}
	res.Outcome = OutcomeAccepted
	return res
}
