// internal/output/rows.go
package output

import (
	"fmt"
	"strconv"

	"rbh-core/hit"
	"rbh-core/rbh"
	"rbh/pkg/api"
)

const none = "-"

func orNone(s string) string {
	if s == "" {
		return none
	}
	return s
}

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

// FormatPairRow returns the TSVHeader columns for p (no trailing newline).
func FormatPairRow(p rbh.Pair) string {
	return fmt.Sprintf("%s\t%s\t%s\t%d\t%s\t%s\t%s\t%d\t%s\t%s",
		p.IDA, p.IDB,
		num(p.Forward.PercentIdentity), p.Forward.AlignmentLength,
		hit.FormatEValue(p.Forward.EValue), num(p.Forward.BitScore),
		num(p.Reverse.PercentIdentity), p.Reverse.AlignmentLength,
		hit.FormatEValue(p.Reverse.EValue), num(p.Reverse.BitScore),
	)
}

// FormatDiagnosticRow returns the DiagnosticsHeader columns for r.
func FormatDiagnosticRow(r rbh.Resolution) string {
	partner, fe := none, none
	if r.HasForward {
		partner, fe = r.Forward.SubjectID, hit.FormatEValue(r.Forward.EValue)
	}
	best, re := none, none
	if r.HasReverse {
		best, re = r.Reverse.SubjectID, hit.FormatEValue(r.Reverse.EValue)
	}
	detail := ""
	if r.Err != nil {
		detail = r.Err.Error()
	}
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s",
		r.Query, r.Outcome, partner, best, fe, re, orNone(detail))
}

// FormatBucketRow returns the BucketHeader columns for the hit at rank (1-based).
func FormatBucketRow(rank int, h hit.Record) string {
	return fmt.Sprintf("%d\t%s\t%s\t%s\t%s\t%s\t%d\t%d",
		rank, h.QueryID, h.SubjectID, num(h.BitScore), hit.FormatEValue(h.EValue),
		num(h.PercentIdentity), h.AlignmentLength, h.Seq)
}

// FormatRunRow returns the RunsHeader columns for r.
func FormatRunRow(r api.RunV1) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%d\t%d\t%s\t%s",
		r.ID, r.StartedAt, r.Policy, r.Cutoff, r.Accessions, r.Pairs, r.Forward, r.Reverse)
}

// FormatStoredPairRow returns the StoredPairsHeader columns for p.
func FormatStoredPairRow(p api.StoredPairV1) string {
	return fmt.Sprintf("%s\t%s\t%s\t%s\t%s\t%s\t%s",
		p.RunID, p.IDA, p.IDB, p.ForwardEValue, num(p.ForwardBitScore), p.ReverseEValue, num(p.ReverseBitScore))
}
