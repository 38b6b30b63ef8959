// core/rbh/resolve.go
package rbh

import (
	"context"
	"runtime"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"rbh-core/bucket"
)

// Options controls a batch resolution.
type Options struct {
	// Cutoff is the largest e-value either supporting hit may have.
	// The zero value means DefaultCutoff; use Options.WithCutoff for an explicit 0.
	Cutoff    decimal.Decimal
	cutoffSet bool

	// Policy defaults to StrictRBH when Accept is nil.
	Policy Policy

	// Threads is the number of resolving workers (<= 0 means all CPUs).
	Threads int

	// Bidirectional also walks the reverse index with roles swapped.
	// Pairs reached from both ends collapse into one element.
	Bidirectional bool
}

// WithCutoff returns a copy of o with an explicit cutoff (0 included).
func (o Options) WithCutoff(c decimal.Decimal) Options {
	o.Cutoff, o.cutoffSet = c, true
	return o
}

func (o Options) normalized() Options {
	if !o.cutoffSet && o.Cutoff.IsZero() {
		o.Cutoff = DefaultCutoff
	}
	if o.Policy.Accept == nil {
		o.Policy = StrictRBH()
	}
	if o.Threads <= 0 {
		o.Threads = runtime.NumCPU()
	}
	return o
}

// Stats counts outcomes of one batch.
type Stats struct {
	Accessions int
	Outcomes   [numOutcomes]int
	Pairs      int
}

// Count returns how many accessions reached outcome o.
func (s Stats) Count(o Outcome) int {
	if o >= numOutcomes {
		return 0
	}
	return s.Outcomes[o]
}

// Result is the closed output of one batch.
type Result struct {
	Pairs []Pair // sorted by (IDA, IDB)

	// Resolutions lists one entry per forward accession in first-seen order,
	// followed by the reverse walk in bidirectional mode.
	Resolutions []Resolution
	Stats       Stats
}

// AllOutcomes lists every outcome in declaration order.
func AllOutcomes() []Outcome {
	out := make([]Outcome, numOutcomes)
	for i := range out {
		out[i] = Outcome(i)
	}
	return out
}

// Resolve runs ResolveOne for every accession of fwd, in parallel, and
// collects accepted pairs. Cancellation is checked between accessions; when
// ctx is done the partial result is dropped and ctx.Err() returned.
func Resolve(ctx context.Context, fwd, rev *bucket.Index, opts Options) (*Result, error) {
	opts = opts.normalized()
	r, err := NewResolver(fwd, rev, opts.Policy, opts.Cutoff)
	if err != nil {
		return nil, err
	}

	set := NewPairSet()
	resolutions, err := walk(ctx, r, fwd.Accessions(), opts.Threads, set)
	if err != nil {
		return nil, err
	}
	if opts.Bidirectional {
		back, err := walk(ctx, r.Swapped(), rev.Accessions(), opts.Threads, set)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, back...)
	}

	res := &Result{Pairs: set.Sorted(), Resolutions: resolutions}
	res.Stats.Accessions = len(resolutions)
	for i := range resolutions {
		res.Stats.Outcomes[resolutions[i].Outcome]++
	}
	res.Stats.Pairs = len(res.Pairs)
	return res, nil
}

// walk resolves accs with n workers. Each worker writes only its own slots of
// the returned slice; set is the only shared structure.
func walk(ctx context.Context, r *Resolver, accs []string, n int, set *PairSet) ([]Resolution, error) {
	out := make([]Resolution, len(accs))
	if n > len(accs) {
		n = len(accs)
	}
	if n < 1 {
		n = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan int, n*2)

	g.Go(func() error {
		defer close(jobs)
		for i := range accs {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case jobs <- i:
			}
		}
		return nil
	})

	for w := 0; w < n; w++ {
		g.Go(func() error {
			for i := range jobs {
				if err := gctx.Err(); err != nil {
					return err
				}
				out[i] = r.ResolveOne(accs[i])
				if p, ok := out[i].Pair(); ok {
					set.Add(p)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
