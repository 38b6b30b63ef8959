// internal/integration/integration_test.go
package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbh/internal/app"
	"rbh/internal/output"
	"rbh/pkg/api"
)

const (
	aToB = "# BLASTP 2.14.0+\n" +
		"Q1\tS1\t99.0\t300\t3\t0\t1\t300\t1\t300\t1e-60\t100\n" +
		"Q1\tS2\t40.0\t120\t70\t3\t10\t130\t5\t125\t1e-5\t40\n" +
		"Q2\tS3\t60.0\t200\t80\t2\t1\t200\t1\t200\t1e-3\t30\n"
	bToA = "S1\tQ1\t99.0\t300\t3\t0\t1\t300\t1\t300\t1e-55\t90\n" +
		"S3\tQ2\t60.0\t200\t80\t2\t1\t200\t1\t200\t1e-3\t30\n"
)

func write(t *testing.T, name, data string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(data), 0o644))
	return p
}

func run(t *testing.T, argv ...string) (int, string, string) {
	t.Helper()
	var out, errb bytes.Buffer
	code := app.RunContext(context.Background(), argv, &out, &errb)
	return code, out.String(), errb.String()
}

func TestEndToEnd_Text(t *testing.T) {
	a, b := write(t, "a.tsv", aToB), write(t, "b.tsv", bToA)
	code, out, errs := run(t, "resolve", "--forward", a, "--reverse", b)
	require.Equal(t, 0, code, errs)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, output.TSVHeader, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "Q1\tS1\t99\t300\t1e-60\t100\t99\t300\t1e-55\t90"), lines[1])
	assert.Contains(t, errs, "resolve completed")
}

func TestEndToEnd_CutoffRelaxed(t *testing.T) {
	a, b := write(t, "a.tsv", aToB), write(t, "b.tsv", bToA)
	code, out, errs := run(t, "resolve", "--forward", a, "--reverse", b,
		"--evalue-cutoff", "1e-2", "-o", "json", "--log-level", "error")
	require.Equal(t, 0, code, errs)
	assert.Empty(t, errs)

	var got []api.PairV1
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "Q2", got[1].IDA)
	assert.Equal(t, "0.001", got[1].Forward.EValue)
}

func TestParallelMatchesEqualSerial(t *testing.T) {
	var fa, fb strings.Builder
	for i := 0; i < 500; i++ {
		fmt.Fprintf(&fa, "q%03d\ts%03d\t90\t100\t1\t0\t1\t100\t1\t100\t1e-%d\t%d\n", i, i, 60+i%5, 100+i%7)
		fmt.Fprintf(&fa, "q%03d\ts%03d\t90\t100\t1\t0\t1\t100\t1\t100\t1e-%d\t%d\n", i, (i+1)%500, 60+i%5, 100+i%7)
		fmt.Fprintf(&fb, "s%03d\tq%03d\t90\t100\t1\t0\t1\t100\t1\t100\t1e-70\t%d\n", i, i, 100+i%3)
	}
	a, b := write(t, "a.tsv", fa.String()), write(t, "b.tsv", fb.String())

	exec := func(threads int, extra ...string) string {
		argv := append([]string{"resolve", "--forward", a, "--reverse", b,
			"--threads", fmt.Sprint(threads), "-o", "jsonl", "--log-level", "error"}, extra...)
		code, out, errs := run(t, argv...)
		require.Equal(t, 0, code, errs)
		return out
	}

	serial := exec(1)
	assert.Equal(t, 500, strings.Count(serial, "\n"))
	for _, threads := range []int{2, 4, 16} {
		assert.Equal(t, serial, exec(threads), "threads=%d", threads)
		assert.Equal(t, serial, exec(threads, "--bidirectional"), "bidirectional threads=%d", threads)
	}
}

func TestNoMatchExitCode(t *testing.T) {
	a := write(t, "a.tsv", "Q1\tS1\t99\t300\t3\t0\t1\t300\t1\t300\t1e-60\t100\n")
	b := write(t, "b.tsv", "S1\tQ9\t99\t300\t3\t0\t1\t300\t1\t300\t1e-60\t100\n")

	code, out, _ := run(t, "resolve", "--forward", a, "--reverse", b, "--no-header")
	assert.Equal(t, 1, code)
	assert.Empty(t, out)

	code, _, _ = run(t, "resolve", "--forward", a, "--reverse", b, "--no-match-exit-code", "0")
	assert.Equal(t, 0, code)
}

func TestMalformed_FailAndSkip(t *testing.T) {
	a := write(t, "a.tsv", aToB+"Q3\tS9\tnot-enough-columns\n")
	b := write(t, "b.tsv", bToA)

	code, _, errs := run(t, "resolve", "--forward", a, "--reverse", b)
	assert.Equal(t, 3, code)
	assert.Contains(t, errs, "origin A, line 5")

	code, out, errs := run(t, "resolve", "--forward", a, "--reverse", b, "--on-malformed", "skip", "--no-header")
	assert.Equal(t, 0, code, errs)
	assert.Contains(t, errs, "skipping malformed hit")
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestUsageErrors(t *testing.T) {
	for _, argv := range [][]string{
		{"resolve"},
		{"resolve", "--forward", "a", "--reverse", "b", "--policy", "nope"},
		{"nope"},
	} {
		code, _, errs := run(t, argv...)
		assert.Equal(t, 2, code, "%v", argv)
		assert.Contains(t, errs, "error:")
	}
}

func TestMissingInput_Exit3(t *testing.T) {
	b := write(t, "b.tsv", bToA)
	code, _, errs := run(t, "resolve", "--forward", filepath.Join(t.TempDir(), "none.tsv"), "--reverse", b)
	assert.Equal(t, 3, code)
	assert.Contains(t, errs, "none.tsv")
}

func TestDiagnosticsDBAndMetrics(t *testing.T) {
	dir := t.TempDir()
	a, b := write(t, "a.tsv", aToB), write(t, "b.tsv", bToA)
	diag := filepath.Join(dir, "diag.tsv")
	db := filepath.Join(dir, "rbh.db")
	prom := filepath.Join(dir, "rbh.prom")

	code, _, errs := run(t, "resolve", "--forward", a, "--reverse", b,
		"--diagnostics", diag, "--db", db, "--metrics-file", prom, "--log-format", "json")
	require.Equal(t, 0, code, errs)
	assert.Contains(t, errs, `"msg":"run stored"`)

	d, err := os.ReadFile(diag)
	require.NoError(t, err)
	rows := strings.Split(strings.TrimSpace(string(d)), "\n")
	require.Len(t, rows, 3)
	assert.Equal(t, output.DiagnosticsHeader, rows[0])
	assert.True(t, strings.HasPrefix(rows[1], "Q1\taccepted\tS1\tQ1\t"), rows[1])
	assert.True(t, strings.HasPrefix(rows[2], "Q2\tcutoff-rejected\tS3\tQ2\t"), rows[2])

	m, err := os.ReadFile(prom)
	require.NoError(t, err)
	assert.Contains(t, string(m), `rbh_resolutions_total{outcome="cutoff-rejected"} 1`)
	assert.Contains(t, string(m), `rbh_pairs_accepted_total 1`)

	code, out, errs := run(t, "runs", "--db", db, "-o", "json")
	require.Equal(t, 0, code, errs)
	var runs []api.RunV1
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 1)
	assert.Equal(t, 1, runs[0].Pairs)
	assert.Equal(t, "strict", runs[0].Policy)
	assert.Equal(t, 2, runs[0].Accessions)

	code, out, errs = run(t, "runs", "--db", db, "--run", runs[0].ID, "--no-header")
	require.Equal(t, 0, code, errs)
	assert.Equal(t, runs[0].ID+"\tQ1\tS1\t1e-60\t100\t1e-55\t90\n", out)

	code, out, errs = run(t, "runs", "--db", db, "--partner", "S1", "--no-header")
	require.Equal(t, 0, code, errs)
	assert.Equal(t, runs[0].ID+"\tQ1\tS1\t1e-60\t100\t1e-55\t90\n", out)

	code, _, _ = run(t, "runs", "--db", db, "--run", "00000000-0000-0000-0000-000000000000")
	assert.Equal(t, 2, code)

	code, _, _ = run(t, "runs", "--db", db, "--run", runs[0].ID, "--partner", "S1")
	assert.Equal(t, 2, code)
}

func TestInspect(t *testing.T) {
	a := write(t, "a.tsv", aToB)
	code, out, errs := run(t, "inspect", "--hits", a, "Q1", "Q404")
	require.Equal(t, 0, code, errs)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, output.BucketHeader, lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "1\tQ1\tS1\t100\t1e-60"))
	assert.True(t, strings.HasPrefix(lines[2], "2\tQ1\tS2\t40\t1e-5"))
	assert.Equal(t, "# Q404: no data", lines[3])

	code, _, _ = run(t, "inspect", "--hits", a, "Q404")
	assert.Equal(t, 1, code)

	bad := write(t, "bad.tsv", aToB+"Q3\tbroken\n")
	code, _, errs = run(t, "inspect", "--hits", bad, "--on-malformed", "skip", "Q1")
	require.Equal(t, 0, code, errs)
	assert.Contains(t, errs, "skipping malformed hit")

	code, _, errs = run(t, "inspect", "--hits", bad, "--on-malformed", "skip", "--log-level", "error", "Q1")
	require.Equal(t, 0, code, errs)
	assert.Empty(t, errs)

	code, _, errs = run(t, "inspect", "--hits", bad, "--on-malformed", "skip", "--log-format", "json", "Q1")
	require.Equal(t, 0, code, errs)
	assert.Contains(t, errs, `"msg":"skipping malformed hit"`)

	code, _, _ = run(t, "inspect", "--hits", a, "--log-level", "loud", "Q1")
	assert.Equal(t, 2, code)
}

func TestConfigCommand(t *testing.T) {
	code, out, errs := run(t, "config", "--policy", "top-n", "--top-n", "2")
	require.Equal(t, 0, code, errs)
	assert.Contains(t, out, "policy: top-n\n")
	assert.Contains(t, out, "top-n: 2\n")
}
