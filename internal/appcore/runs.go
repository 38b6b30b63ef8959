// internal/appcore/runs.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rbh/internal/jsonutil"
	"rbh/internal/output"
	"rbh/internal/store"
	"rbh/internal/writers"
	"rbh/pkg/api"
)

// RunsOptions selects what `rbh runs` lists.
type RunsOptions struct {
	DB      string
	Limit   int
	RunID   string // list this run's pairs instead of runs
	Partner string // list pairs of any run containing this accession
	Output  string // text | json | jsonl
	Header  bool
}

func toAPIRun(r store.Run) api.RunV1 {
	return api.RunV1{
		ID:            r.ID,
		StartedAt:     r.StartedAt.UTC().Format(time.RFC3339),
		Forward:       r.Forward,
		Reverse:       r.Reverse,
		Policy:        r.Policy,
		Cutoff:        r.Cutoff,
		Bidirectional: r.Bidirectional,
		Accessions:    r.Accessions,
		Pairs:         r.Pairs,
	}
}

func toAPIStoredPair(p store.StoredPair) api.StoredPairV1 {
	return api.StoredPairV1{
		RunID:           p.RunID,
		IDA:             p.IDA,
		IDB:             p.IDB,
		ForwardEValue:   p.ForwardEValue,
		ForwardBitScore: p.ForwardBitScore,
		ReverseEValue:   p.ReverseEValue,
		ReverseBitScore: p.ReverseBitScore,
	}
}

// Runs lists stored runs, the pairs of one run, or every stored pair
// mentioning one accession.
func Runs(ctx context.Context, stdout, stderr io.Writer, o RunsOptions) int {
	s, err := store.OpenExisting(ctx, o.DB)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	defer s.Close()

	outw := bufio.NewWriter(stdout)
	if o.RunID != "" || o.Partner != "" {
		var ps []store.StoredPair
		if o.RunID != "" {
			ps, err = s.ListPairs(ctx, o.RunID)
		} else {
			ps, err = s.FindPartner(ctx, o.Partner)
		}
		if errors.Is(err, store.ErrRunNotFound) {
			fmt.Fprintf(stderr, "run %s: %v\n", o.RunID, err)
			return ExitUsage
		} else if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitRuntime
		}
		list := make([]api.StoredPairV1, 0, len(ps))
		for _, p := range ps {
			list = append(list, toAPIStoredPair(p))
		}
		err = encode(outw, o, list, output.WriteStoredPairs)
		return finish(outw, stderr, err)
	}

	runs, err := s.ListRuns(ctx, o.Limit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	list := make([]api.RunV1, 0, len(runs))
	for _, r := range runs {
		list = append(list, toAPIRun(r))
	}
	err = encode(outw, o, list, output.WriteRuns)
	return finish(outw, stderr, err)
}

func encode[T any](w io.Writer, o RunsOptions, list []T, text func(io.Writer, []T, bool) error) error {
	switch o.Output {
	case output.FormatJSON:
		return jsonutil.EncodePretty(w, list)
	case output.FormatJSONL:
		return jsonutil.EncodeLines(w, list)
	case "", output.FormatText:
		return text(w, list, o.Header)
	}
	return fmt.Errorf("unsupported output %q", o.Output)
}

func finish(outw *bufio.Writer, stderr io.Writer, err error) int {
	if err == nil {
		err = outw.Flush()
	}
	if writers.IsBrokenPipe(err) {
		return ExitOK
	} else if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	return ExitOK
}
