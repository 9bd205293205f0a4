package sat

import (
	"context"

	"github.com/crillab/gophersat/solver"
)

// gophersatSolver wraps the gophersat CDCL engine. gophersat builds its
// problem representation from the full clause slice, so clauses are
// accumulated and handed over at Solve time.
type gophersatSolver struct {
	clauses [][]int
	numVars int
	empty   bool
	model   []bool
	sat     bool
}

func newGophersat() Solver {
	return &gophersatSolver{}
}

func (s *gophersatSolver) EnsureVarCount(n int) {
	if n > s.numVars {
		s.numVars = n
	}
}

func (s *gophersatSolver) AddClause(lits []int) {
	if len(lits) == 0 {
		s.empty = true
		return
	}
	for _, l := range lits {
		v := l
		if v < 0 {
			v = -v
		}
		if v > s.numVars {
			s.numVars = v
		}
	}
	s.clauses = append(s.clauses, append([]int(nil), lits...))
}

func (s *gophersatSolver) Solve(ctx context.Context) Result {
	if s.empty {
		return Unsatisfiable
	}
	if ctx.Err() != nil {
		return Unknown
	}
	pb := solver.ParseSlice(s.clauses)
	sv := solver.New(pb)
	switch sv.Solve() {
	case solver.Sat:
		s.model = sv.Model()
		s.sat = true
		return Satisfiable
	case solver.Unsat:
		return Unsatisfiable
	}
	return Unknown
}

func (s *gophersatSolver) ValueOf(lit int) bool {
	v := lit
	if v < 0 {
		v = -v
	}
	if !s.sat {
		return false
	}
	if v-1 >= len(s.model) {
		return lit < 0
	}
	val := s.model[v-1]
	if lit < 0 {
		return !val
	}
	return val
}
