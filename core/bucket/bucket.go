// Package bucket groups hit records by query accession and keeps each group
// ranked, most significant first. Buckets and indices are read-only once built.
package bucket

import (
	"cmp"
	"errors"
	"fmt"
	"slices"

	"rbh-core/hit"
)

var (
	// ErrUnknownAccession matches lookups of accessions that never appeared as
	// a query in the index's origin.
	ErrUnknownAccession = errors.New("unknown accession")
	// ErrEmptyBucket matches lookups that found a bucket with no hits.
	ErrEmptyBucket = errors.New("empty bucket")
)

// UnknownAccessionError is returned by Index.Lookup for an accession with no
// bucket. For resolution it means "no evidence", not failure.
type UnknownAccessionError struct {
	Origin    hit.Origin
	Accession string
}

func (e *UnknownAccessionError) Error() string {
	return fmt.Sprintf("accession %q has no hits as query in origin %s", e.Accession, e.Origin)
}

func (e *UnknownAccessionError) Unwrap() error { return ErrUnknownAccession }

// OriginMismatchError is returned when a record is added to an index of the
// other origin.
type OriginMismatchError struct {
	Want, Got hit.Origin
	Seq       uint64
}

func (e *OriginMismatchError) Error() string {
	return fmt.Sprintf("record %d has origin %s, index is origin %s", e.Seq, e.Got, e.Want)
}

// Bucket holds every hit of one query accession, ranked.
type Bucket struct {
	accession string
	hits      []hit.Record
}

func newBucket(accession string, hits []hit.Record) *Bucket {
	// Ties fall back to the input ordinal, then to insertion order.
	slices.SortStableFunc(hits, func(a, b hit.Record) int {
		if c := hit.Compare(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Seq, b.Seq)
	})
	mustRanked(accession, hits)
	return &Bucket{accession: accession, hits: hits}
}

// mustRanked panics if hits are not in ranking order. A bucket out of order
// would silently yield the wrong best hit.
func mustRanked(accession string, hits []hit.Record) {
	for i := 1; i < len(hits); i++ {
		if hit.Compare(hits[i-1], hits[i]) > 0 {
			panic(fmt.Sprintf("bucket: ranking invariant violated for %q at rank %d (%s before %s)",
				accession, i, hits[i-1], hits[i]))
		}
		if hit.Compare(hits[i-1], hits[i]) == 0 && hits[i-1].Seq > hits[i].Seq {
			panic(fmt.Sprintf("bucket: tie order violated for %q at rank %d (seq %d before %d)",
				accession, i, hits[i-1].Seq, hits[i].Seq))
		}
	}
}

// Accession is the query accession the bucket is keyed by.
func (b *Bucket) Accession() string {
	if b == nil {
		return ""
	}
	return b.accession
}

// Len is the number of hits in the bucket.
func (b *Bucket) Len() int {
	if b == nil {
		return 0
	}
	return len(b.hits)
}

// Best returns the top-ranked hit; ok is false for an empty bucket.
func (b *Bucket) Best() (hit.Record, bool) {
	if b.Len() == 0 {
		return hit.Record{}, false
	}
	return b.hits[0], true
}

// At returns the hit at rank i (0-based). It panics unless 0 <= i < Len().
func (b *Bucket) At(i int) hit.Record { return b.hits[i] }

// Top returns a copy of the n best hits (all hits when n <= 0 or n > Len).
func (b *Bucket) Top(n int) []hit.Record {
	if b == nil {
		return nil
	}
	if n <= 0 || n > b.Len() {
		n = b.Len()
	}
	return slices.Clone(b.hits[:n])
}

// Hits returns a copy of all hits in rank order. A nil bucket has none.
func (b *Bucket) Hits() []hit.Record { return b.Top(0) }

// Rank returns the 0-based rank of the first hit against subject, or -1.
func (b *Bucket) Rank(subject string) int {
	if b == nil {
		return -1
	}
	for i := range b.hits {
		if b.hits[i].SubjectID == subject {
			return i
		}
	}
	return -1
}
