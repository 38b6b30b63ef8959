// internal/writers/diagnostics.go
package writers

import (
	"bufio"
	"fmt"
	"os"

	"rbh-core/rbh"
	"rbh/internal/output"
)

// WriteDiagnosticsFile writes the per-accession diagnostics table to path.
func WriteDiagnosticsFile(path string, list []rbh.Resolution) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("diagnostics: %w", err)
	}
	bw := bufio.NewWriter(fh)
	if err := output.WriteDiagnostics(bw, list, true); err != nil {
		_ = fh.Close()
		return fmt.Errorf("diagnostics: %w", err)
	}
	if err := bw.Flush(); err != nil {
		_ = fh.Close()
		return fmt.Errorf("diagnostics: %w", err)
	}
	return fh.Close()
}
