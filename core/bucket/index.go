// core/bucket/index.go
package bucket

import (
	"rbh-core/hit"
)

// Index maps accession -> Bucket for one origin. Accessions keep the order in
// which they first appeared as a query.
type Index struct {
	origin  hit.Origin
	order   []string
	buckets map[string]*Bucket
	hits    int
}

// Builder accumulates records of one origin. It is not safe for concurrent use;
// build one per origin.
type Builder struct {
	origin hit.Origin
	order  []string
	groups map[string][]hit.Record
	hits   int
	done   bool
}

// NewBuilder returns an empty Builder for origin.
func NewBuilder(origin hit.Origin) *Builder {
	return &Builder{origin: origin, groups: make(map[string][]hit.Record, 1<<10)}
}

// Add appends r to its query's group. A record of the other origin is
// rejected and leaves the builder unchanged.
func (b *Builder) Add(r hit.Record) error {
	if b.done {
		panic("bucket: Add after Index")
	}
	if r.Origin != b.origin {
		return &OriginMismatchError{Want: b.origin, Got: r.Origin, Seq: r.Seq}
	}
	g, ok := b.groups[r.QueryID]
	if !ok {
		b.order = append(b.order, r.QueryID)
	}
	b.groups[r.QueryID] = append(g, r)
	b.hits++
	return nil
}

// Len is the number of records added so far.
func (b *Builder) Len() int { return b.hits }

// Index sorts every group and freezes the builder.
func (b *Builder) Index() *Index {
	b.done = true
	idx := &Index{
		origin:  b.origin,
		order:   b.order,
		buckets: make(map[string]*Bucket, len(b.groups)),
		hits:    b.hits,
	}
	for _, acc := range b.order {
		idx.buckets[acc] = newBucket(acc, b.groups[acc])
	}
	b.groups = nil
	return idx
}

// Build indexes records in one call.
func Build(origin hit.Origin, records []hit.Record) (*Index, error) {
	b := NewBuilder(origin)
	for _, r := range records {
		if err := b.Add(r); err != nil {
			return nil, err
		}
	}
	return b.Index(), nil
}

// Origin is the direction the index was built from.
func (x *Index) Origin() hit.Origin { return x.origin }

// Len is the number of buckets.
func (x *Index) Len() int { return len(x.order) }

// Hits is the total number of records indexed.
func (x *Index) Hits() int { return x.hits }

// Accessions returns query accessions in first-seen order.
func (x *Index) Accessions() []string { return append([]string(nil), x.order...) }

// Lookup returns the bucket for accession, or *UnknownAccessionError when the
// accession never appeared as a query.
func (x *Index) Lookup(accession string) (*Bucket, error) {
	bk, ok := x.buckets[accession]
	if !ok {
		return nil, &UnknownAccessionError{Origin: x.origin, Accession: accession}
	}
	if bk.Len() == 0 {
		return bk, ErrEmptyBucket
	}
	return bk, nil
}

// Best is Lookup followed by Bucket.Best.
func (x *Index) Best(accession string) (hit.Record, error) {
	bk, err := x.Lookup(accession)
	if err != nil {
		return hit.Record{}, err
	}
	r, _ := bk.Best()
	return r, nil
}
