package sat

import (
	"context"

	"github.com/go-air/gini"
	"github.com/go-air/gini/z"
)

// giniSolver is the default backend, wrapping the CDCL solver used by the
// OLM-style resolver stacks.
type giniSolver struct {
	g      *gini.Gini
	maxVar int
	empty  bool
}

func newGini() Solver {
	return &giniSolver{g: gini.New()}
}

func (s *giniSolver) EnsureVarCount(n int) {
	// gini grows its variable space as literals arrive; nothing to
	// reserve up front.
}

func (s *giniSolver) AddClause(lits []int) {
	if len(lits) == 0 {
		s.empty = true
		return
	}
	for _, l := range lits {
		if v := l; v < 0 {
			if -v > s.maxVar {
				s.maxVar = -v
			}
		} else if v > s.maxVar {
			s.maxVar = v
		}
		s.g.Add(z.Dimacs2Lit(l))
	}
	s.g.Add(z.LitNull)
}

func (s *giniSolver) Solve(ctx context.Context) Result {
	if s.empty {
		return Unsatisfiable
	}
	if ctx.Err() != nil {
		return Unknown
	}
	switch s.g.Solve() {
	case 1:
		return Satisfiable
	case -1:
		return Unsatisfiable
	}
	return Unknown
}

func (s *giniSolver) ValueOf(lit int) bool {
	v := lit
	if v < 0 {
		v = -v
	}
	// Variables the encoding never constrained read as false.
	if v > s.maxVar {
		return lit < 0
	}
	return s.g.Value(z.Dimacs2Lit(lit))
}
