package sunday

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestModelString(t *testing.T) {
	res, _ := search(t, DefaultOptions(), "f(a) = a", "p(a)", "~p(X) | p(X)")
	require.Equal(t, Satisfiable, res.Outcome)
	want := strings.Join([]string{
		"domain size 1",
		"a = 1",
		"f(1) = 1",
		"p(1) = true",
		"",
	}, "\n")
	require.Equal(t, want, res.Model.String())
}

func TestModelAccessors(t *testing.T) {
	res, _ := search(t, DefaultOptions(), "f(f(X)) = X", "f(a) != a")
	m := res.Model
	require.Equal(t, 2, m.Size)
	require.Zero(t, m.ConstValue("nope"))
	require.Zero(t, m.FuncValue("f", 1, 2)) // wrong arity
	require.False(t, m.PredValue("nope", 1))
}

func TestModelSatisfiesRejectsWrongModel(t *testing.T) {
	res, clauses := search(t, DefaultOptions(), "f(a) != a")
	require.Equal(t, Satisfiable, res.Outcome)
	require.True(t, res.Model.Satisfies(clauses))

	sg := NewSignature()
	bad, err := ParseClause(sg, "f(a) = a")
	// The signature indices line up because f and a are registered in
	// the same order as in the original input.
	require.NoError(t, err)
	require.False(t, res.Model.Satisfies([]Clause{bad}))
}

func TestEliminatedPredicateExpansion(t *testing.T) {
	// r is pure positive and eliminated; its extracted table is uniformly
	// true and the original clauses still evaluate under the model.
	res, clauses := search(t, DefaultOptions(), "r(X) | p(X)", "~p(X) | p(X) | r(a)")
	require.Equal(t, Satisfiable, res.Outcome)
	require.True(t, res.Model.PredValue("r", 1))
	require.True(t, res.Model.Satisfies(clauses))
}

func TestRestrictedTotalityUnderSortBound(t *testing.T) {
	// a and b are merged, capping their sort at 1: at size 2 their
	// totality ranges only over value 1, while c and d spread over the
	// full domain.
	res, clauses := search(t, DefaultOptions(), "a = b", "c != d")
	require.Equal(t, Satisfiable, res.Outcome)
	require.Equal(t, 2, res.Size)
	m := res.Model
	require.Equal(t, 1, m.ConstValue("a"))
	require.Equal(t, 1, m.ConstValue("b"))
	require.NotEqual(t, m.ConstValue("c"), m.ConstValue("d"))
	require.True(t, m.Satisfies(clauses))
}
