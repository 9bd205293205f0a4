// Package sat abstracts the propositional backends the model finder encodes
// into. A backend receives one CNF problem through AddClause, answers a
// single Solve call, and then serves assignment reads; the finder builds a
// fresh backend for every candidate domain size.
//
// Literals use the DIMACS convention: a positive int is a variable, its
// negation the negated variable. Variable numbering starts at 1.
package sat

import (
	"context"

	"github.com/pkg/errors"
)

// Result is a solver verdict.
type Result int

const (
	Unknown Result = iota
	Satisfiable
	Unsatisfiable
)

func (r Result) String() string {
	switch r {
	case Satisfiable:
		return "SATISFIABLE"
	case Unsatisfiable:
		return "UNSATISFIABLE"
	default:
		return "UNKNOWN"
	}
}

// Solver is the bridge contract between the encoder and a SAT engine.
type Solver interface {
	// EnsureVarCount declares that variables range over [1, n]. Clauses
	// may still mention fewer variables.
	EnsureVarCount(n int)
	// AddClause appends one CNF clause. The caller removes duplicate
	// literals; an empty clause makes the problem unsatisfiable.
	AddClause(lits []int)
	// Solve decides the accumulated problem. The context is checked
	// before solving starts; a running solve is not interrupted.
	Solve(ctx context.Context) Result
	// ValueOf reports the truth of lit under the last satisfying
	// assignment. Valid only after Solve returned Satisfiable.
	ValueOf(lit int) bool
}

// New builds a backend by name.
func New(name string) (Solver, error) {
	switch name {
	case "gini":
		return newGini(), nil
	case "gophersat":
		return newGophersat(), nil
	case "dp":
		return newDP(), nil
	}
	return nil, errors.Errorf("unknown SAT backend %q (have %v)", name, Backends())
}

// Backends lists the available backend names.
func Backends() []string {
	return []string{"gini", "gophersat", "dp"}
}

// Recorder tees every clause added to a Solver so the problem can be
// re-serialised, e.g. as a DIMACS snapshot.
type Recorder struct {
	Inner   Solver
	NumVars int
	Clauses [][]int
}

func (r *Recorder) EnsureVarCount(n int) {
	if n > r.NumVars {
		r.NumVars = n
	}
	r.Inner.EnsureVarCount(n)
}

func (r *Recorder) AddClause(lits []int) {
	r.Clauses = append(r.Clauses, append([]int(nil), lits...))
	r.Inner.AddClause(lits)
}

func (r *Recorder) Solve(ctx context.Context) Result { return r.Inner.Solve(ctx) }
func (r *Recorder) ValueOf(lit int) bool             { return r.Inner.ValueOf(lit) }
