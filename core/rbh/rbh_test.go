package rbh

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rbh-core/bucket"
	"rbh-core/hit"
)

// row is a compact hit fixture: query, subject, bit score, e-value.
type row struct {
	q, s string
	bit  float64
	e    string
}

func index(t *testing.T, origin hit.Origin, rows ...row) *bucket.Index {
	t.Helper()
	b := bucket.NewBuilder(origin)
	for i, r := range rows {
		ev, err := hit.ParseEValue(r.e)
		require.NoError(t, err)
		require.NoError(t, b.Add(hit.Record{
			QueryID: r.q, SubjectID: r.s, BitScore: r.bit, EValue: ev,
			Origin: origin, Seq: uint64(i + 1),
		}))
	}
	return b.Index()
}

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := hit.ParseEValue(s)
	require.NoError(t, err)
	return d
}

func TestResolve_EndToEndScenario(t *testing.T) {
	fwd := index(t, hit.OriginA,
		row{"Q1", "S1", 100, "1e-60"},
		row{"Q1", "S2", 40, "1e-5"},
	)
	rev := index(t, hit.OriginB,
		row{"S1", "Q1", 90, "1e-55"},
	)

	res, err := Resolve(context.Background(), fwd, rev, Options{})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)

	p := res.Pairs[0]
	assert.Equal(t, "Q1", p.IDA)
	assert.Equal(t, "S1", p.IDB)
	assert.Equal(t, hit.OriginA, p.Forward.Origin)
	assert.Equal(t, "S1", p.Forward.SubjectID)
	assert.Equal(t, 100.0, p.Forward.BitScore)
	assert.Equal(t, hit.OriginB, p.Reverse.Origin)
	assert.Equal(t, "Q1", p.Reverse.SubjectID)
	assert.Equal(t, 90.0, p.Reverse.BitScore)

	for _, q := range res.Pairs {
		assert.NotEqual(t, "S2", q.IDB)
	}
	assert.Equal(t, 1, res.Stats.Accessions)
	assert.Equal(t, 1, res.Stats.Count(OutcomeAccepted))
	assert.Equal(t, 1, res.Stats.Pairs)
}

func TestResolveOne_StrictReciprocity(t *testing.T) {
	// A's best is X, but X's best is Y.
	fwd := index(t, hit.OriginA,
		row{"A", "X", 100, "1e-80"},
		row{"Y", "X", 50, "1e-70"},
	)
	rev := index(t, hit.OriginB,
		row{"X", "Y", 120, "1e-90"},
		row{"X", "A", 100, "1e-80"},
	)
	r, err := NewResolver(fwd, rev, StrictRBH(), DefaultCutoff)
	require.NoError(t, err)

	got := r.ResolveOne("A")
	assert.Equal(t, OutcomeNotReciprocal, got.Outcome)
	assert.Equal(t, "Y", got.Reverse.SubjectID, "evidence shows the competing best hit")
	_, ok := got.Pair()
	assert.False(t, ok)

	// Y -> X -> Y is reciprocal.
	got = r.ResolveOne("Y")
	assert.Equal(t, OutcomeAccepted, got.Outcome)
}

func TestResolveOne_TerminalStates(t *testing.T) {
	fwd := index(t, hit.OriginA, row{"Q1", "S-missing", 100, "1e-60"})
	rev := index(t, hit.OriginB, row{"S1", "Q1", 100, "1e-60"})
	r, err := NewResolver(fwd, rev, StrictRBH(), DefaultCutoff)
	require.NoError(t, err)

	got := r.ResolveOne("Q1")
	assert.Equal(t, OutcomeNoReverse, got.Outcome)
	assert.True(t, got.HasForward)
	assert.False(t, got.HasReverse)
	assert.ErrorIs(t, got.Err, bucket.ErrUnknownAccession)

	got = r.ResolveOne("Q404")
	assert.Equal(t, OutcomeNoForward, got.Outcome)
	assert.False(t, got.HasForward)
	var ue *bucket.UnknownAccessionError
	require.ErrorAs(t, got.Err, &ue)
	assert.Equal(t, hit.OriginA, ue.Origin)
}

func TestResolve_CutoffFiltering(t *testing.T) {
	tests := []struct {
		name   string
		fwdE   string
		revE   string
		cutoff string
		want   Outcome
	}{
		{"forward too weak", "1e-3", "1e-60", "1e-50", OutcomeCutoffRejected},
		{"reverse too weak", "1e-60", "1e-3", "1e-50", OutcomeCutoffRejected},
		{"relaxed cutoff includes it", "1e-3", "1e-60", "1e-2", OutcomeAccepted},
		{"equal to cutoff passes", "1e-50", "1e-50", "1e-50", OutcomeAccepted},
		{"far below double range", "1e-400", "1e-350", "1e-300", OutcomeAccepted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fwd := index(t, hit.OriginA, row{"Q", "S", 100, tt.fwdE})
			rev := index(t, hit.OriginB, row{"S", "Q", 100, tt.revE})

			res, err := Resolve(context.Background(), fwd, rev, Options{Cutoff: dec(t, tt.cutoff)})
			require.NoError(t, err)
			require.Len(t, res.Resolutions, 1)
			assert.Equal(t, tt.want, res.Resolutions[0].Outcome)
			if tt.want == OutcomeAccepted {
				assert.Len(t, res.Pairs, 1)
			} else {
				assert.Empty(t, res.Pairs)
				assert.Equal(t, 1, res.Stats.Count(OutcomeCutoffRejected))
			}
		})
	}
}

func TestResolve_ExplicitZeroCutoff(t *testing.T) {
	fwd := index(t, hit.OriginA, row{"Q", "S", 100, "0.0"}, row{"Q2", "S2", 100, "1e-200"})
	rev := index(t, hit.OriginB, row{"S", "Q", 100, "0"}, row{"S2", "Q2", 100, "1e-200"})

	res, err := Resolve(context.Background(), fwd, rev, Options{}.WithCutoff(decimal.Zero))
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "Q", res.Pairs[0].IDA)
}

func TestResolve_TieBreakFirstSeen(t *testing.T) {
	// Q1 ties between S1 and S2; S1 came first so it is the best forward hit.
	fwd := index(t, hit.OriginA,
		row{"Q1", "S1", 100, "1e-60"},
		row{"Q1", "S2", 100, "1e-60"},
	)
	rev := index(t, hit.OriginB,
		row{"S1", "Q1", 100, "1e-60"},
		row{"S2", "Q1", 100, "1e-60"},
	)
	res, err := Resolve(context.Background(), fwd, rev, Options{})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "S1", res.Pairs[0].IDB)
}

func TestResolve_TopNPolicy(t *testing.T) {
	fwd := index(t, hit.OriginA, row{"A", "X", 100, "1e-80"})
	rev := index(t, hit.OriginB,
		row{"X", "Y", 120, "1e-90"},
		row{"X", "Z", 110, "1e-85"},
		row{"X", "A", 100, "1e-80"},
	)

	res, err := Resolve(context.Background(), fwd, rev, Options{Policy: StrictRBH()})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)

	res, err = Resolve(context.Background(), fwd, rev, Options{Policy: TopN(2)})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs, "A is rank 3 in X's bucket")

	res, err = Resolve(context.Background(), fwd, rev, Options{Policy: TopN(3)})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)
	assert.Equal(t, "A", res.Pairs[0].Reverse.SubjectID)
	assert.Equal(t, 100.0, res.Pairs[0].Reverse.BitScore)
}

func TestResolve_MutualAbovePolicy(t *testing.T) {
	fwd := index(t, hit.OriginA, row{"A", "X", 60, "1e-80"})
	rev := index(t, hit.OriginB,
		row{"X", "Y", 120, "1e-90"},
		row{"X", "A", 55, "1e-80"},
	)

	res, err := Resolve(context.Background(), fwd, rev, Options{Policy: MutualAbove(50)})
	require.NoError(t, err)
	require.Len(t, res.Pairs, 1)

	res, err = Resolve(context.Background(), fwd, rev, Options{Policy: MutualAbove(58)})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
}

func TestResolve_CustomPolicyInjected(t *testing.T) {
	fwd := index(t, hit.OriginA, row{"A", "X", 100, "1e-80"})
	rev := index(t, hit.OriginB, row{"X", "A", 100, "1e-80"})

	never := Policy{Name: "never", Depth: 1, Accept: func(_, _ hit.Record) bool { return false }}
	res, err := Resolve(context.Background(), fwd, rev, Options{Policy: never})
	require.NoError(t, err)
	assert.Empty(t, res.Pairs)
	assert.Equal(t, 1, res.Stats.Count(OutcomeNotReciprocal))
}

func TestResolve_Bidirectional_DedupesSymmetricPairs(t *testing.T) {
	fwd := index(t, hit.OriginA,
		row{"Q1", "S1", 100, "1e-60"},
		row{"Q2", "S2", 100, "1e-60"},
	)
	rev := index(t, hit.OriginB,
		row{"S1", "Q1", 90, "1e-55"},
		row{"S2", "Q2", 90, "1e-55"},
		row{"S3", "Q2", 10, "1e-55"},
	)

	one, err := Resolve(context.Background(), fwd, rev, Options{})
	require.NoError(t, err)
	both, err := Resolve(context.Background(), fwd, rev, Options{Bidirectional: true})
	require.NoError(t, err)

	assert.Equal(t, one.Pairs, both.Pairs)
	assert.Len(t, both.Pairs, 2)
	assert.Equal(t, 5, both.Stats.Accessions)
	for _, p := range both.Pairs {
		assert.Equal(t, hit.OriginA, p.Forward.Origin, "evidence is normalized to A->B")
		assert.Equal(t, hit.OriginB, p.Reverse.Origin)
	}
}

func TestResolve_DeterministicAcrossRunsAndThreads(t *testing.T) {
	var fr, rr []row
	for i := 0; i < 300; i++ {
		q := fmt.Sprintf("q%03d", i)
		s := fmt.Sprintf("s%03d", i)
		alt := fmt.Sprintf("s%03d", (i+7)%300)
		fr = append(fr, row{q, s, 100, "1e-60"}, row{q, alt, 100, "1e-60"})
		rr = append(rr, row{s, q, float64(50 + i%3), "1e-60"})
	}
	fwd := index(t, hit.OriginA, fr...)
	rev := index(t, hit.OriginB, rr...)

	base, err := Resolve(context.Background(), fwd, rev, Options{Threads: 1})
	require.NoError(t, err)
	require.Len(t, base.Pairs, 300)

	for _, threads := range []int{1, 2, 8, 32} {
		for run := 0; run < 3; run++ {
			got, err := Resolve(context.Background(), fwd, rev, Options{Threads: threads, Bidirectional: run%2 == 1})
			require.NoError(t, err)
			assert.Equal(t, base.Pairs, got.Pairs, "threads=%d run=%d", threads, run)
		}
	}
}

func TestResolve_CanceledDiscardsPartial(t *testing.T) {
	var fr, rr []row
	for i := 0; i < 1000; i++ {
		q, s := fmt.Sprintf("q%d", i), fmt.Sprintf("s%d", i)
		fr = append(fr, row{q, s, 100, "1e-60"})
		rr = append(rr, row{s, q, 100, "1e-60"})
	}
	fwd := index(t, hit.OriginA, fr...)
	rev := index(t, hit.OriginB, rr...)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Resolve(ctx, fwd, rev, Options{Threads: 4})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res)
}

func TestNewResolver_Validation(t *testing.T) {
	a := index(t, hit.OriginA, row{"Q", "S", 1, "1"})
	b := index(t, hit.OriginB, row{"S", "Q", 1, "1"})

	_, err := NewResolver(a, a, StrictRBH(), DefaultCutoff)
	assert.Error(t, err)
	_, err = NewResolver(a, nil, StrictRBH(), DefaultCutoff)
	assert.Error(t, err)
	_, err = NewResolver(a, b, Policy{Name: "empty"}, DefaultCutoff)
	assert.Error(t, err)
	_, err = NewResolver(a, b, StrictRBH(), decimal.NewFromInt(-1))
	assert.Error(t, err)
	_, err = NewResolver(a, b, StrictRBH(), DefaultCutoff)
	assert.NoError(t, err)
}

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("", 0, 0)
	require.NoError(t, err)
	assert.Equal(t, PolicyStrict, p.Name)
	assert.Equal(t, 1, p.Depth)

	p, err = PolicyByName(PolicyTopN, 3, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Depth)
	assert.Equal(t, "top-n(3)", p.Name)

	p, err = PolicyByName(PolicyMutual, 0, 40)
	require.NoError(t, err)
	assert.Equal(t, 0, p.Depth)

	_, err = PolicyByName(PolicyTopN, 0, 0)
	assert.Error(t, err)
	_, err = PolicyByName(PolicyMutual, 0, -1)
	assert.Error(t, err)
	_, err = PolicyByName("fuzzy", 0, 0)
	assert.Error(t, err)
}

func TestOutcomeString(t *testing.T) {
	var names []string
	for _, o := range AllOutcomes() {
		names = append(names, o.String())
	}
	assert.Equal(t, []string{"accepted", "no-forward", "no-reverse", "not-reciprocal", "cutoff-rejected"}, names)
	assert.Equal(t, "Outcome(99)", Outcome(99).String())
}
