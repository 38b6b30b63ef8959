// core/hit/parse.go
package hit

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NumFields is the fixed arity of a tabular hit row.
const NumFields = 12

// FieldNames lists the row columns in their fixed order.
var FieldNames = [NumFields]string{
	"query_id", "subject_id", "percent_identity", "alignment_length",
	"mismatches", "gap_opens", "q_start", "q_end", "s_start", "s_end",
	"e_value", "bit_score",
}

var (
	// ErrFieldCount is the cause when a row does not have NumFields columns.
	ErrFieldCount = errors.New("wrong field count")
	// ErrEmptyID is the cause when query_id or subject_id is blank.
	ErrEmptyID = errors.New("empty identifier")
)

// MalformedHitError reports a row that could not become a Record.
//
// Field is empty for arity failures; otherwise it names the offending column.
type MalformedHitError struct {
	Origin Origin
	Line   uint64 // input ordinal of the row (the Seq it would have carried)
	Raw    string
	Field  string
	Index  int // column index of Field, -1 for arity failures
	Err    error
}

func (e *MalformedHitError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("malformed hit (origin %s, line %d): %v: %q", e.Origin, e.Line, e.Err, e.Raw)
	}
	return fmt.Sprintf("malformed hit (origin %s, line %d): field %s: %v: %q", e.Origin, e.Line, e.Field, e.Err, e.Raw)
}

func (e *MalformedHitError) Unwrap() error { return e.Err }

// SplitLine splits a row on tabs. Rows without any tab are split on runs of
// whitespace instead.
func SplitLine(line string) []string {
	line = strings.TrimRight(line, "\r\n")
	if strings.IndexByte(line, '\t') >= 0 {
		return strings.Split(line, "\t")
	}
	return strings.Fields(line)
}

// ParseLine splits one row and builds a Record from it.
func ParseLine(line string, origin Origin, seq uint64) (Record, error) {
	return fromFields(SplitLine(line), line, origin, seq)
}

// FromFields builds a Record from the 12 textual columns of one row.
func FromFields(fields []string, origin Origin, seq uint64) (Record, error) {
	return fromFields(fields, strings.Join(fields, "\t"), origin, seq)
}

func fromFields(cols []string, raw string, origin Origin, seq uint64) (Record, error) {
	bad := func(idx int, err error) (Record, error) {
		e := &MalformedHitError{Origin: origin, Line: seq, Raw: raw, Index: idx, Err: err}
		if idx >= 0 {
			e.Field = FieldNames[idx]
		}
		return Record{}, e
	}
	if len(cols) != NumFields {
		return bad(-1, fmt.Errorf("%w: want %d, got %d", ErrFieldCount, NumFields, len(cols)))
	}
	var f [NumFields]string
	for i, c := range cols {
		f[i] = strings.TrimSpace(c)
	}
	if f[0] == "" {
		return bad(0, ErrEmptyID)
	}
	if f[1] == "" {
		return bad(1, ErrEmptyID)
	}

	r := Record{QueryID: f[0], SubjectID: f[1], Origin: origin, Seq: seq}

	var err error
	if r.PercentIdentity, err = parseFloat(f[2]); err != nil {
		return bad(2, err)
	}
	ints := [...]*int{
		&r.AlignmentLength, &r.Mismatches, &r.GapOpens,
		&r.QueryStart, &r.QueryEnd, &r.SubjectStart, &r.SubjectEnd,
	}
	for i, dst := range ints {
		v, err := strconv.Atoi(f[3+i])
		if err != nil {
			return bad(3+i, unwrapNum(err))
		}
		*dst = v
	}
	if r.EValue, err = ParseEValue(f[10]); err != nil {
		return bad(10, err)
	}
	if r.BitScore, err = parseFloat(f[11]); err != nil {
		return bad(11, err)
	}
	return r, nil
}

// ParseEValue parses an e-value without passing through float64.
// Legacy BLAST tables drop the mantissa for tiny values ("e-180"); those read as 1e-180.
func ParseEValue(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	num := s
	if s != "" && (s[0] == 'e' || s[0] == 'E') {
		num = "1" + s
	}
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid e-value %q", s)
	}
	if d.Sign() < 0 {
		return decimal.Decimal{}, fmt.Errorf("negative e-value %q", s)
	}
	return d, nil
}

func parseFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, unwrapNum(err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite number %q", s)
	}
	return v, nil
}

// unwrapNum drops strconv's function-name prefix.
func unwrapNum(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return fmt.Errorf("invalid number %q: %w", ne.Num, ne.Err)
	}
	return err
}
