package sat

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	for _, name := range Backends() {
		s, err := New(name)
		require.NoError(t, err)
		require.NotNil(t, s)
	}
	_, err := New("minisat")
	require.Error(t, err)
}

func TestBackendsAgreeOnSmallProblems(t *testing.T) {
	for _, tt := range []struct {
		name    string
		clauses [][]int
		sat     bool
	}{
		{"single unit", [][]int{{1}}, true},
		{"unit conflict", [][]int{{1}, {-1}}, false},
		{"implication chain", [][]int{{-1, 2}, {-2, 3}, {1, -3, 2}, {2}}, true},
		{"empty clause", [][]int{{1, 2}, {}}, false},
		{"pigeonhole 2 into 1", [][]int{{1}, {2}, {-1, -2}}, false},
		{"no clauses", nil, true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			for _, name := range Backends() {
				s, err := New(name)
				require.NoError(t, err)
				for _, cls := range tt.clauses {
					s.AddClause(cls)
				}
				got := s.Solve(context.Background())
				want := Unsatisfiable
				if tt.sat {
					want = Satisfiable
				}
				require.Equal(t, want, got, "backend %s", name)
				if tt.sat {
					requireSatisfies(t, name, s, tt.clauses)
				}
			}
		})
	}
}

func requireSatisfies(t *testing.T, name string, s Solver, clauses [][]int) {
	t.Helper()
	for _, cls := range clauses {
		ok := false
		for _, lit := range cls {
			if s.ValueOf(lit) {
				ok = true
				break
			}
		}
		require.True(t, ok, "backend %s: clause %v unsatisfied", name, cls)
	}
}

func TestRecorder(t *testing.T) {
	inner, err := New("dp")
	require.NoError(t, err)
	rec := &Recorder{Inner: inner}
	rec.EnsureVarCount(4)
	rec.AddClause([]int{1, -2})
	rec.AddClause([]int{2})
	require.Equal(t, 4, rec.NumVars)
	require.Equal(t, [][]int{{1, -2}, {2}}, rec.Clauses)
	require.Equal(t, Satisfiable, rec.Solve(context.Background()))
	require.True(t, rec.ValueOf(2))
	require.True(t, rec.ValueOf(1))
}

func TestResultString(t *testing.T) {
	require.Equal(t, "SATISFIABLE", Satisfiable.String())
	require.Equal(t, "UNSATISFIABLE", Unsatisfiable.String())
	require.Equal(t, "UNKNOWN", Unknown.String())
}
