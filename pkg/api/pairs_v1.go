// pkg/api/pairs_v1.go
package api

// HitV1 is the stable schema for one supporting alignment.
// E-values are strings so magnitudes below float64 range survive.
type HitV1 struct {
	QueryID         string  `json:"query_id"`
	SubjectID       string  `json:"subject_id"`
	PercentIdentity float64 `json:"percent_identity"`
	AlignmentLength int     `json:"alignment_length"`
	Mismatches      int     `json:"mismatches"`
	GapOpens        int     `json:"gap_opens"`
	QueryStart      int     `json:"q_start"`
	QueryEnd        int     `json:"q_end"`
	SubjectStart    int     `json:"s_start"`
	SubjectEnd      int     `json:"s_end"`
	EValue          string  `json:"e_value"`
	BitScore        float64 `json:"bit_score"`
}

// PairV1 is the stable JSON/JSONL schema for an accepted ortholog pair.
// Keep fields, names, and types stable. Add new fields only with ",omitempty".
type PairV1 struct {
	IDA     string `json:"id_a"`
	IDB     string `json:"id_b"`
	Forward HitV1  `json:"forward"`
	Reverse HitV1  `json:"reverse"`
}

// RunV1 describes one stored resolve run.
type RunV1 struct {
	ID            string `json:"id"`
	StartedAt     string `json:"started_at"` // RFC 3339
	Forward       string `json:"forward"`
	Reverse       string `json:"reverse"`
	Policy        string `json:"policy"`
	Cutoff        string `json:"evalue_cutoff"`
	Bidirectional bool   `json:"bidirectional,omitempty"`
	Accessions    int    `json:"accessions"`
	Pairs         int    `json:"pairs"`
}

// StoredPairV1 is a pair as kept by the run store.
type StoredPairV1 struct {
	RunID           string  `json:"run_id"`
	IDA             string  `json:"id_a"`
	IDB             string  `json:"id_b"`
	ForwardEValue   string  `json:"fwd_evalue"`
	ForwardBitScore float64 `json:"fwd_bitscore"`
	ReverseEValue   string  `json:"rev_evalue"`
	ReverseBitScore float64 `json:"rev_bitscore"`
}
