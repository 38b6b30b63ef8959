// internal/output/text.go
package output

import (
	"fmt"
	"io"

	"rbh-core/bucket"
	"rbh-core/rbh"
	"rbh/pkg/api"
)

func writeHeader(w io.Writer, header bool, h string) error {
	if !header {
		return nil
	}
	_, err := fmt.Fprintln(w, h)
	return err
}

// WriteText writes pairs as TSV.
func WriteText(w io.Writer, list []rbh.Pair, header bool) error {
	if err := writeHeader(w, header, TSVHeader); err != nil {
		return err
	}
	for _, p := range list {
		if _, err := fmt.Fprintln(w, FormatPairRow(p)); err != nil {
			return err
		}
	}
	return nil
}

// StreamText writes pairs as TSV as they arrive.
func StreamText(w io.Writer, in <-chan rbh.Pair, header bool) error {
	if err := writeHeader(w, header, TSVHeader); err != nil {
		return err
	}
	for p := range in {
		if _, err := fmt.Fprintln(w, FormatPairRow(p)); err != nil {
			return err
		}
	}
	return nil
}

// WriteDiagnostics writes one row per resolution, in resolution order.
func WriteDiagnostics(w io.Writer, list []rbh.Resolution, header bool) error {
	if err := writeHeader(w, header, DiagnosticsHeader); err != nil {
		return err
	}
	for _, r := range list {
		if _, err := fmt.Fprintln(w, FormatDiagnosticRow(r)); err != nil {
			return err
		}
	}
	return nil
}

// WriteBucket writes b's hits in rank order.
func WriteBucket(w io.Writer, b *bucket.Bucket, header bool) error {
	if err := writeHeader(w, header, BucketHeader); err != nil {
		return err
	}
	for i, h := range b.Hits() {
		if _, err := fmt.Fprintln(w, FormatBucketRow(i+1, h)); err != nil {
			return err
		}
	}
	return nil
}

// WriteRuns writes stored runs as TSV.
func WriteRuns(w io.Writer, runs []api.RunV1, header bool) error {
	if err := writeHeader(w, header, RunsHeader); err != nil {
		return err
	}
	for _, r := range runs {
		if _, err := fmt.Fprintln(w, FormatRunRow(r)); err != nil {
			return err
		}
	}
	return nil
}

// WriteStoredPairs writes stored pairs as TSV.
func WriteStoredPairs(w io.Writer, list []api.StoredPairV1, header bool) error {
	if err := writeHeader(w, header, StoredPairsHeader); err != nil {
		return err
	}
	for _, p := range list {
		if _, err := fmt.Fprintln(w, FormatStoredPairRow(p)); err != nil {
			return err
		}
	}
	return nil
}
