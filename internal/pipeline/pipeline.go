// internal/pipeline/pipeline.go
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"rbh-core/bucket"
	"rbh-core/hit"
	"rbh-core/tabular"
)

// Config controls loading.
type Config struct {
	Forward string // A->B table path ("-" = stdin)
	Reverse string // B->A table path ("-" = stdin)

	// SkipMalformed keeps loading past bad rows instead of failing.
	SkipMalformed bool
	// OnSkip is called for every skipped row. It may be called from two
	// goroutines at once.
	OnSkip func(*hit.MalformedHitError)
}

// Loaded describes one loaded table.
type Loaded struct {
	Path      string
	Index     *bucket.Index
	Malformed int
	Elapsed   time.Duration
}

// Indices is the output of Load.
type Indices struct {
	Forward Loaded
	Reverse Loaded
}

// Load reads both tables concurrently. The first error cancels the other read.
func Load(ctx context.Context, cfg Config) (*Indices, error) {
	out := &Indices{
		Forward: Loaded{Path: cfg.Forward},
		Reverse: Loaded{Path: cfg.Reverse},
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return load(gctx, cfg, hit.OriginA, &out.Forward) })
	g.Go(func() error { return load(gctx, cfg, hit.OriginB, &out.Reverse) })
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, err
	}
	return out, nil
}

func load(ctx context.Context, cfg Config, origin hit.Origin, dst *Loaded) error {
	start := time.Now()
	opts := tabular.Options{}
	if cfg.SkipMalformed {
		opts.OnMalformed = func(e *hit.MalformedHitError) error {
			dst.Malformed++
			if cfg.OnSkip != nil {
				cfg.OnSkip(e)
			}
			return nil
		}
	}
	idx, err := tabular.ReadIndex(ctx, dst.Path, origin, opts)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%s: %w", dst.Path, err)
	}
	dst.Index = idx
	dst.Elapsed = time.Since(start)
	return nil
}
