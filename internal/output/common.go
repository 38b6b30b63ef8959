// internal/output/common.go
package output

// Output format names.
const (
	FormatText  = "text"
	FormatJSON  = "json"
	FormatJSONL = "jsonl"
)

// TSVHeader is the canonical header row for text/TSV pair output.
// Keep this as the single source of truth; all writers should use it.
const TSVHeader = "id_a\tid_b\tfwd_identity\tfwd_length\tfwd_evalue\tfwd_bitscore\trev_identity\trev_length\trev_evalue\trev_bitscore"

// DiagnosticsHeader heads the per-accession diagnostics table.
const DiagnosticsHeader = "query_id\toutcome\tpartner\treverse_best\tforward_evalue\treverse_evalue\tdetail"

// BucketHeader heads `rbh inspect` output.
const BucketHeader = "rank\tquery_id\tsubject_id\tbit_score\te_value\tpercent_identity\talignment_length\tline"

// RunsHeader heads `rbh runs` text output.
const RunsHeader = "id\tstarted_at\tpolicy\tevalue_cutoff\taccessions\tpairs\tforward\treverse"

// StoredPairsHeader heads `rbh runs --run ID` text output.
const StoredPairsHeader = "run_id\tid_a\tid_b\tfwd_evalue\tfwd_bitscore\trev_evalue\trev_bitscore"
