// internal/appcore/inspect.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"rbh-core/bucket"
	"rbh-core/hit"
	"rbh-core/tabular"
	"rbh/internal/logging"
	"rbh/internal/output"
	"rbh/internal/writers"
)

// InspectOptions selects the buckets `rbh inspect` prints.
type InspectOptions struct {
	Hits          string
	Origin        hit.Origin
	Accessions    []string
	Header        bool
	SkipMalformed bool
}

// Inspect prints each accession's ranked bucket. It returns noMatch when none
// of the accessions has data.
func Inspect(ctx context.Context, stdout, stderr io.Writer, o InspectOptions, noMatch int, log *logging.Logger) int {
	if log == nil {
		log = logging.Noop()
	}
	topts := tabular.Options{}
	if o.SkipMalformed {
		topts.OnMalformed = func(e *hit.MalformedHitError) error {
			log.LogMalformed(ctx, e)
			return nil
		}
	}
	idx, err := tabular.ReadIndex(ctx, o.Hits, o.Origin, topts)
	if err != nil {
		if canceled(err) {
			return ExitCanceled
		}
		fmt.Fprintf(stderr, "%s: %v\n", o.Hits, err)
		return ExitRuntime
	}

	outw := bufio.NewWriter(stdout)
	found := 0
	header := o.Header
	for _, acc := range o.Accessions {
		b, err := idx.Lookup(acc)
		if err != nil {
			if !errors.Is(err, bucket.ErrUnknownAccession) && !errors.Is(err, bucket.ErrEmptyBucket) {
				fmt.Fprintln(stderr, err)
				return ExitRuntime
			}
			fmt.Fprintf(outw, "# %s: no data\n", acc)
			continue
		}
		found++
		if err := output.WriteBucket(outw, b, header); err != nil {
			if writers.IsBrokenPipe(err) {
				return ExitOK
			}
			fmt.Fprintln(stderr, err)
			return ExitRuntime
		}
		header = false
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return ExitOK
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return ExitRuntime
	}
	if found == 0 {
		return noMatch
	}
	return ExitOK
}
