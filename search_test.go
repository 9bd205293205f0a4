package sunday

import (
	"context"
	"testing"
	"time"

	"github.com/cespare/sunday/sat"
	"github.com/stretchr/testify/require"
)

func parseLines(t testing.TB, lines ...string) (*Signature, []Clause) {
	t.Helper()
	sg := NewSignature()
	clauses := make([]Clause, 0, len(lines))
	for _, l := range lines {
		cls, err := ParseClause(sg, l)
		require.NoError(t, err, "clause %q", l)
		clauses = append(clauses, cls)
	}
	return sg, clauses
}

func search(t testing.TB, opts Options, lines ...string) (*Result, []Clause) {
	t.Helper()
	sg, clauses := parseLines(t, lines...)
	f, err := NewFinder(sg, clauses, opts)
	require.NoError(t, err)
	res, err := f.Run(context.Background())
	require.NoError(t, err)
	return res, clauses
}

// The end-to-end scenarios run against every backend; the engines must
// agree on every verdict.
func TestSearchScenarios(t *testing.T) {
	for _, backend := range sat.Backends() {
		backend := backend
		t.Run(backend, func(t *testing.T) {
			opts := DefaultOptions()
			opts.Backend = backend

			t.Run("propositional", func(t *testing.T) {
				res, clauses := search(t, opts, "p | q", "~p")
				require.Equal(t, Satisfiable, res.Outcome)
				require.Equal(t, 1, res.Size)
				require.False(t, res.Model.PredValue("p"))
				require.True(t, res.Model.PredValue("q"))
				require.True(t, res.Model.Satisfies(clauses))
			})

			t.Run("equality chain refuted", func(t *testing.T) {
				res, _ := search(t, opts, "a = b", "b = c", "a != c")
				require.Equal(t, Refutation, res.Outcome)
				require.Equal(t, 1, res.Size)
				require.Equal(t, "empty clause", res.Witness)
			})

			t.Run("function graph", func(t *testing.T) {
				res, clauses := search(t, opts, "f(a) = a")
				require.Equal(t, Satisfiable, res.Outcome)
				require.Equal(t, 1, res.Size)
				require.Equal(t, 1, res.Model.ConstValue("a"))
				require.Equal(t, 1, res.Model.FuncValue("f", 1))
				require.True(t, res.Model.Satisfies(clauses))
			})

			t.Run("pairwise distinctness cap", func(t *testing.T) {
				res, clauses := search(t, opts,
					"X1 = X2 | X1 = X3 | X2 = X3",
					"a != b",
				)
				require.Equal(t, Satisfiable, res.Outcome)
				require.Equal(t, 2, res.Size)
				a, b := res.Model.ConstValue("a"), res.Model.ConstValue("b")
				require.NotZero(t, a)
				require.NotZero(t, b)
				require.NotEqual(t, a, b)
				require.True(t, res.Model.Satisfies(clauses))
			})

			t.Run("forced involution cycle", func(t *testing.T) {
				res, clauses := search(t, opts, "f(f(X)) = X", "f(a) != a")
				require.Equal(t, Satisfiable, res.Outcome)
				require.Equal(t, 2, res.Size)
				for d := 1; d <= 2; d++ {
					require.Equal(t, d, res.Model.FuncValue("f", res.Model.FuncValue("f", d)))
				}
				a := res.Model.ConstValue("a")
				require.NotEqual(t, a, res.Model.FuncValue("f", a))
				require.True(t, res.Model.Satisfies(clauses))
			})

			t.Run("epr refuted", func(t *testing.T) {
				res, _ := search(t, opts, "p(a)", "~p(X)")
				require.Equal(t, Refutation, res.Outcome)
				require.Equal(t, 1, res.Size)
			})
		})
	}
}

func TestMaxModelSizeDerivation(t *testing.T) {
	// The all-equality clause caps at its variable count; the EPR rule
	// caps at the merged constant count; the tighter wins.
	sg, clauses := parseLines(t,
		"X1 = X2 | X1 = X3 | X2 = X3",
		"a != b",
	)
	f, err := NewFinder(sg, clauses, DefaultOptions())
	require.NoError(t, err)
	require.Equal(t, 3, f.ss.distinctBound)
	got, bounded := f.MaxModelSize()
	require.True(t, bounded)
	require.Equal(t, 2, got)
}

func TestRefutationExactlyAtBound(t *testing.T) {
	// X = Y forces a one-element domain; a != b forbids it. The bound is
	// 2 (two constants, EPR), so the refutation lands on the round with
	// n == maxModelSize.
	res, _ := search(t, DefaultOptions(), "X = Y", "a != b")
	require.Equal(t, Refutation, res.Outcome)
	require.Equal(t, 2, res.Size)
}

func TestEmptyClauseFromPreparation(t *testing.T) {
	res, _ := search(t, DefaultOptions(), "X != X")
	require.Equal(t, Refutation, res.Outcome)
	require.Equal(t, "empty clause", res.Witness)
	require.Equal(t, 0, res.Rounds)
}

func TestUseConstantsAsStart(t *testing.T) {
	opts := DefaultOptions()
	opts.UseConstantsAsStart = true
	res, _ := search(t, opts, "a != b")
	require.Equal(t, Satisfiable, res.Outcome)
	require.Equal(t, 2, res.Size)
	require.Equal(t, 1, res.Rounds)
}

func TestUnboundedSearchGrows(t *testing.T) {
	// Size 1 and 2 are unsatisfiable; nothing bounds the model size, so
	// the loop keeps growing until it finds the 3-cycle.
	res, clauses := search(t, DefaultOptions(),
		"f(X) != X",
		"f(f(X)) != X",
		"f(f(f(X))) = X",
	)
	require.Equal(t, Satisfiable, res.Outcome)
	require.Equal(t, 3, res.Size)
	require.True(t, res.Model.Satisfies(clauses))
}

func TestTimeout(t *testing.T) {
	opts := DefaultOptions()
	opts.Timeout = time.Nanosecond
	res, _ := search(t, opts, "f(f(X)) = X", "f(a) != a")
	require.Equal(t, TimeLimit, res.Outcome)
}

func TestVarSpaceOverflow(t *testing.T) {
	opts := DefaultOptions()
	opts.StartSize = 16
	res, _ := search(t, opts, "f(X1,X2,X3,X4,X5,X6,X7,X8) = X1")
	require.Equal(t, Unknown, res.Outcome)
}

func TestBadOptionProfile(t *testing.T) {
	sg, clauses := parseLines(t, "p | ~p", "q | ~q")
	opts := DefaultOptions()
	opts.SymmetryRatio = 2
	_, err := NewFinder(sg, clauses, opts)
	require.Error(t, err)
}

func TestModelSizeCap(t *testing.T) {
	// With the cap enabled, a two-element domain must actually use value
	// 2 somewhere among the constants and unary function images.
	opts := DefaultOptions()
	opts.UseModelSize = true
	opts.StartSize = 2
	res, clauses := search(t, opts, "f(f(X)) = X", "f(a) != a")
	require.Equal(t, Satisfiable, res.Outcome)
	require.Equal(t, 2, res.Size)
	used := res.Model.ConstValue("a") == 2
	for d := 1; d <= 2 && !used; d++ {
		used = res.Model.FuncValue("f", d) == 2
	}
	require.True(t, used)
	require.True(t, res.Model.Satisfies(clauses))
}
