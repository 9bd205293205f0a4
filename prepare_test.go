package sunday

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFlattenNestedTerm(t *testing.T) {
	sg, clauses := parseLines(t, "f(f(X)) = X")
	prep := prepare(sg, clauses)
	require.Len(t, prep.clauses, 1)
	fc := prep.clauses[0]
	require.Equal(t, 2, fc.nvars) // X plus one fresh variable
	require.Len(t, fc.lits, 2)

	// The inner application becomes a negative definition; the outer one
	// keeps the literal's polarity.
	def, head := fc.lits[0], fc.lits[1]
	require.Equal(t, litFuncEq, def.kind)
	require.False(t, def.pos)
	require.Equal(t, litFuncEq, head.kind)
	require.True(t, head.pos)
	require.Equal(t, def.res, head.args[0])
	require.Equal(t, 0, head.res) // ... = X
}

func TestFlattenPredicateArgs(t *testing.T) {
	sg, clauses := parseLines(t, "p(a) | ~p(X)")
	prep := prepare(sg, clauses)
	require.Len(t, prep.clauses, 1)
	fc := prep.clauses[0]
	var kinds []litKind
	for _, l := range fc.lits {
		kinds = append(kinds, l.kind)
	}
	require.Equal(t, []litKind{litFuncEq, litPred, litPred}, kinds)
	require.False(t, fc.lits[0].pos) // ~(a = fresh)
}

func TestPurityElimination(t *testing.T) {
	// q is pure positive; removing its clause makes p pure negative.
	sg, clauses := parseLines(t, "p | q", "~p")
	prep := prepare(sg, clauses)
	require.Empty(t, prep.clauses)
	require.Empty(t, prep.ground)
	require.Equal(t, map[int]bool{0: false, 1: true}, prep.elimPred)
}

func TestPurityKeepsMixedPolarity(t *testing.T) {
	sg, clauses := parseLines(t, "p(a)", "~p(X)")
	prep := prepare(sg, clauses)
	require.Empty(t, prep.elimPred)
	require.Len(t, prep.clauses, 2)
}

func TestTautologyDropped(t *testing.T) {
	sg, clauses := parseLines(t, "p(X) | ~p(X)", "X = X", "q | ~q")
	prep := prepare(sg, clauses)
	require.Empty(t, prep.clauses)
	require.Empty(t, prep.ground)
	require.False(t, prep.emptyClause)
}

func TestTrivialDisequalityEmptiesClause(t *testing.T) {
	sg, clauses := parseLines(t, "X != X")
	prep := prepare(sg, clauses)
	require.True(t, prep.emptyClause)
	require.Equal(t, 0, prep.emptyClauseSrc)
}

func TestDuplicateLiteralsRemoved(t *testing.T) {
	sg, clauses := parseLines(t, "f(X) = Y | f(X) = Y | X = Y")
	prep := prepare(sg, clauses)
	require.Len(t, prep.clauses, 1)
	require.Len(t, prep.clauses[0].lits, 2)
}

func TestGroundSplit(t *testing.T) {
	sg, clauses := parseLines(t, "q | ~r", "~q | r", "p(X) | ~p(X) | q | ~q")
	prep := prepare(sg, clauses)
	require.Len(t, prep.ground, 2)
	require.Empty(t, prep.clauses)
}

func TestConstantMergeOnlyOnGroundPositiveUnits(t *testing.T) {
	sg, clauses := parseLines(t, "a != b", "a = b | p | ~p")
	prep := prepare(sg, clauses)
	// Neither a negative unit nor a non-unit clause merges.
	require.NotEqual(t, prep.findConst(0), prep.findConst(1))
}
