// internal/appcore/core.go
package appcore

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"rbh-core/hit"
	"rbh-core/rbh"
	"rbh/internal/cmdutil"
	"rbh/internal/logging"
	"rbh/internal/metrics"
	"rbh/internal/pipeline"
	"rbh/internal/runutil"
	"rbh/internal/store"
	"rbh/internal/writers"
)

// Exit codes.
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitRuntime  = 3
	ExitCanceled = 130
)

// Options is one resolve invocation.
type Options struct {
	Pipeline pipeline.Config
	Resolve  rbh.Options

	// descriptive, for stored runs
	PolicyName string
	Cutoff     string

	Diagnostics string // per-accession TSV path
	DB          string // SQLite path
	MetricsFile string // Prometheus textfile path

	NoMatchExitCode int
}

func canceled(err error) bool {
	return errors.Is(err, context.Canceled)
}

// Run loads, resolves, writes and optionally persists one batch.
func Run(parent context.Context, stdout, stderr io.Writer, o Options, wf WriterFactory, log *logging.Logger) int {
	if log == nil {
		log = logging.Noop()
	}
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	runID := store.NewRunID()
	log = log.WithRun(runID)
	started := time.Now()

	var m *metrics.Metrics
	if o.MetricsFile != "" {
		m = metrics.New()
	}

	pcfg := o.Pipeline
	if pcfg.SkipMalformed && pcfg.OnSkip == nil {
		pcfg.OnSkip = func(e *hit.MalformedHitError) { log.LogMalformed(ctx, e) }
	}

	ix, err := pipeline.Load(ctx, pcfg)
	if err != nil {
		if canceled(err) {
			return ExitCanceled
		}
		fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	for _, l := range []pipeline.Loaded{ix.Forward, ix.Reverse} {
		log.LogIndexBuilt(ctx, l.Index.Origin(), runutil.DisplayPath(l.Path), l.Index.Len(), l.Index.Hits(), l.Malformed)
		if m != nil {
			m.ObserveIndex(l.Index.Origin(), l.Index.Len(), l.Index.Hits(), l.Malformed)
			m.ObservePhase("load_"+l.Index.Origin().String(), l.Elapsed)
		}
	}

	t0 := time.Now()
	res, err := rbh.Resolve(ctx, ix.Forward.Index, ix.Reverse.Index, o.Resolve)
	log.LogResolve(ctx, o.PolicyName, statsOf(res), time.Since(t0), err)
	if err != nil {
		if canceled(err) {
			return ExitCanceled
		}
		fmt.Fprintln(stderr, err)
		return ExitRuntime
	}
	if m != nil {
		m.ObservePhase("resolve", time.Since(t0))
		m.ObserveResult(res.Stats)
	}
	for _, r := range res.Resolutions {
		if r.Outcome == rbh.OutcomeCutoffRejected {
			log.LogCutoffRejected(ctx, r)
		}
	}

	if ctx.Err() != nil {
		return ExitCanceled
	}
	outw := bufio.NewWriter(stdout)
	inCh, writeErr := wf.Start(outw, runutil.WriterBuffer(o.Resolve.Threads))
	_, serr := cmdutil.Send(ctx, inCh, res.Pairs)
	close(inCh)
	werr := <-writeErr

	// a canceled run leaves the buffered rows unflushed
	if serr != nil || ctx.Err() != nil {
		return ExitCanceled
	}
	if writers.IsBrokenPipe(werr) {
		return ExitOK
	} else if werr != nil {
		fmt.Fprintln(stderr, werr)
		return ExitRuntime
	}
	if e := outw.Flush(); writers.IsBrokenPipe(e) {
		return ExitOK
	} else if e != nil {
		fmt.Fprintln(stderr, e)
		return ExitRuntime
	}

	if o.Diagnostics != "" {
		if err := writers.WriteDiagnosticsFile(o.Diagnostics, res.Resolutions); err != nil {
			fmt.Fprintln(stderr, err)
			return ExitRuntime
		}
	}

	if o.DB != "" {
		run := &store.Run{
			ID:            runID,
			StartedAt:     started,
			Forward:       runutil.DisplayPath(o.Pipeline.Forward),
			Reverse:       runutil.DisplayPath(o.Pipeline.Reverse),
			Policy:        o.PolicyName,
			Cutoff:        o.Cutoff,
			Bidirectional: o.Resolve.Bidirectional,
			Accessions:    res.Stats.Accessions,
		}
		if err := saveRun(ctx, o.DB, run, res.Pairs); err != nil {
			log.LogStored(ctx, o.DB, runID, 0, err)
			fmt.Fprintln(stderr, err)
			return ExitRuntime
		}
		log.LogStored(ctx, o.DB, runID, run.Pairs, nil)
	}

	if m != nil {
		m.ObservePhase("total", time.Since(started))
		if err := m.WriteTextfile(o.MetricsFile); err != nil {
			fmt.Fprintln(stderr, err)
			return ExitRuntime
		}
	}

	if len(res.Pairs) == 0 {
		return o.NoMatchExitCode
	}
	return ExitOK
}

func statsOf(res *rbh.Result) rbh.Stats {
	if res == nil {
		return rbh.Stats{}
	}
	return res.Stats
}

func saveRun(ctx context.Context, path string, run *store.Run, pairs []rbh.Pair) error {
	s, err := store.Open(ctx, path)
	if err != nil {
		return err
	}
	if err := s.SaveRun(ctx, run, pairs); err != nil {
		_ = s.Close()
		return err
	}
	return s.Close()
}
