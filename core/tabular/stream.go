// core/tabular/stream.go
package tabular

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"rbh-core/bucket"
	"rbh-core/hit"
)

// maxLine bounds a single table row.
const maxLine = 1 << 20

// Options tunes streaming.
type Options struct {
	// OnMalformed is called for every row that fails to parse. Returning nil
	// skips the row; returning an error stops the stream with that error.
	// A nil OnMalformed stops at the first malformed row.
	OnMalformed func(*hit.MalformedHitError) error
}

func (o Options) malformed(e *hit.MalformedHitError) error {
	if o.OnMalformed == nil {
		return e
	}
	return o.OnMalformed(e)
}

// Stream parses r as a 12-column hit table for origin and calls emit per row.
// Blank lines and lines starting with '#' are skipped. Seq is the 1-based
// physical line number, so it is stable for a given file.
//
// Cancellation is honored between lines. emit may return an error to stop.
func Stream(ctx context.Context, r io.Reader, origin hit.Origin, opts Options, emit func(hit.Record) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), maxLine)

	var line uint64
	for sc.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line++
		raw := sc.Bytes()
		if t := bytes.TrimSpace(raw); len(t) == 0 || t[0] == '#' {
			continue
		}
		rec, err := hit.ParseLine(string(raw), origin, line)
		if err != nil {
			var me *hit.MalformedHitError
			if !errors.As(err, &me) {
				return err
			}
			me.Line = line
			if err := opts.malformed(me); err != nil {
				return err
			}
			continue
		}
		if err := emit(rec); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("%s hits: line %d: %w", origin, line+1, err)
	}
	return nil
}

// StreamPathCtx opens path (see Open) and streams it.
func StreamPathCtx(ctx context.Context, path string, origin hit.Origin, opts Options, emit func(hit.Record) error) error {
	rc, err := Open(path)
	if err != nil {
		return err
	}
	defer rc.Close()
	return Stream(ctx, rc, origin, opts, emit)
}

// ReadIndex loads path into a frozen bucket index.
func ReadIndex(ctx context.Context, path string, origin hit.Origin, opts Options) (*bucket.Index, error) {
	b := bucket.NewBuilder(origin)
	if err := StreamPathCtx(ctx, path, origin, opts, b.Add); err != nil {
		return nil, err
	}
	return b.Index(), nil
}
