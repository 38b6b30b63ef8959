// internal/logging/logging.go
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"rbh-core/hit"
	"rbh-core/rbh"
)

// Formats accepted by New.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Logger wraps slog.Logger with the field names used across rbh.
type Logger struct {
	*slog.Logger
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown log level %q (want debug | info | warn | error)", s)
}

// New builds a logger writing to w in the given format.
func New(w io.Writer, level, format string) (*Logger, error) {
	lvl, err := ParseLevel(level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: lvl}
	var h slog.Handler
	switch format {
	case "", FormatText:
		h = slog.NewTextHandler(w, opts)
	case FormatJSON:
		h = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("unknown log format %q (want %s | %s)", format, FormatText, FormatJSON)
	}
	return &Logger{Logger: slog.New(h)}, nil
}

// Noop discards everything.
func Noop() *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(1000)}))}
}

// WithRun tags every record with a run id.
func (l *Logger) WithRun(id string) *Logger {
	return &Logger{Logger: l.Logger.With("run", id)}
}

// LogIndexBuilt logs one loaded hit table.
func (l *Logger) LogIndexBuilt(ctx context.Context, origin hit.Origin, path string, accessions, hits, malformed int) {
	if malformed > 0 {
		l.WarnContext(ctx, "hit table loaded with skipped rows",
			"origin", origin.String(),
			"path", path,
			"accessions", accessions,
			"hits", hits,
			"malformed", malformed,
		)
		return
	}
	l.InfoContext(ctx, "hit table loaded",
		"origin", origin.String(),
		"path", path,
		"accessions", accessions,
		"hits", hits,
	)
}

// LogMalformed logs a skipped row.
func (l *Logger) LogMalformed(ctx context.Context, e *hit.MalformedHitError) {
	attrs := []any{
		"origin", e.Origin.String(),
		"line", e.Line,
		"error", e.Err,
	}
	if e.Field != "" {
		attrs = append(attrs, "field", e.Field)
	}
	l.WarnContext(ctx, "skipping malformed hit", attrs...)
}

// LogCutoffRejected logs a reciprocal pair dropped by the e-value cutoff.
func (l *Logger) LogCutoffRejected(ctx context.Context, r rbh.Resolution) {
	l.DebugContext(ctx, "reciprocal pair above cutoff",
		"query", r.Query,
		"partner", r.Forward.SubjectID,
		"forward_evalue", hit.FormatEValue(r.Forward.EValue),
		"reverse_evalue", hit.FormatEValue(r.Reverse.EValue),
	)
}

// LogResolve logs the summary of one resolution batch.
func (l *Logger) LogResolve(ctx context.Context, policy string, st rbh.Stats, elapsed time.Duration, err error) {
	if err != nil {
		l.ErrorContext(ctx, "resolve failed",
			"policy", policy,
			"error", err,
		)
		return
	}
	attrs := []any{
		"policy", policy,
		"accessions", st.Accessions,
		"pairs", st.Pairs,
		"elapsed", elapsed.Round(time.Microsecond),
	}
	for _, o := range rbh.AllOutcomes() {
		attrs = append(attrs, o.String(), st.Count(o))
	}
	l.InfoContext(ctx, "resolve completed", attrs...)
}

// LogStored logs a persisted run.
func (l *Logger) LogStored(ctx context.Context, path, runID string, pairs int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "store run failed",
			"db", path,
			"run", runID,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "run stored",
		"db", path,
		"run", runID,
		"pairs", pairs,
	)
}
