// internal/runutil/runutil.go
package runutil

import (
	"runtime"
	"strings"
)

// EffectiveThreads resolves the "0 = all CPUs" convention.
func EffectiveThreads(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// WriterBuffer sizes the writer channel for a worker count.
func WriterBuffer(threads int) int {
	return EffectiveThreads(threads) * 4
}

// DisplayPath names an input for logs and stored runs ("-" reads stdin).
func DisplayPath(p string) string {
	if p == "-" {
		return "<stdin>"
	}
	return strings.TrimSpace(p)
}
