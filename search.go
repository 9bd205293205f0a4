package sunday

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/cespare/sunday/sat"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Outcome classifies the result of a search.
type Outcome int

const (
	// Unknown: variable-space overflow, an unusable option profile, or a
	// backend that gave up.
	Unknown Outcome = iota
	// Satisfiable: a model was found; Result.Model holds it.
	Satisfiable
	// Refutation: no model of size <= the derived bound exists.
	Refutation
	// TimeLimit: the deadline expired before a verdict.
	TimeLimit
)

func (o Outcome) String() string {
	switch o {
	case Satisfiable:
		return "SATISFIABLE"
	case Refutation:
		return "REFUTATION"
	case TimeLimit:
		return "TIME_LIMIT"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of Finder.Run.
type Result struct {
	Outcome Outcome
	// Model is set for Satisfiable.
	Model *Model
	// Size is the domain size of the model, or the last size attempted.
	Size   int
	Rounds int
	// Witness marks a refutation ("empty clause").
	Witness string
}

// Finder drives the size-incrementing model search. Preparation and sort
// inference run once at construction; the SAT variable layout, the backend
// instance, and the grounded-term lists are rebuilt every round.
type Finder struct {
	opts  Options
	sig   *Signature
	input []Clause

	prep *prepared
	ss   *sortedSignature
	ord  *symbolOrder

	// maxModelSize is a monotone upper bound on the size of any model:
	// the variable count of a pure two-variable-equality clause, or the
	// distinct-constant count when no function can create new elements.
	maxModelSize int

	log logrus.FieldLogger
}

// NewFinder prepares a clause set for searching. It fails on an option
// profile the engine cannot run complete with; callers should surface that
// as an UNKNOWN verdict.
func NewFinder(sg *Signature, clauses []Clause, opts Options) (*Finder, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, errors.Wrap(err, "unusable option profile")
	}
	f := &Finder{
		opts:  opts,
		sig:   sg,
		input: clauses,
		log:   opts.Logger,
	}
	f.prep = prepare(sg, clauses)
	if f.prep.emptyClause {
		return f, nil
	}
	f.ss = inferSorts(f.prep)
	f.ord = newSymbolOrder(f.prep, f.ss, clauses, opts)
	f.maxModelSize = f.deriveMaxModelSize()
	f.log.WithFields(logrus.Fields{
		"clauses":   len(f.prep.clauses),
		"ground":    len(f.prep.ground),
		"sorts":     len(f.ss.sorts),
		"max_size":  sizeString(f.maxModelSize),
		"elim_pred": len(f.prep.elimPred),
	}).Debug("prepared problem")
	return f, nil
}

func (f *Finder) deriveMaxModelSize() int {
	m := f.ss.distinctBound
	if !f.ss.hasNonConstFunc {
		// Effectively propositional: nothing can create elements
		// beyond the (merged) constants.
		c := f.ss.constClasses
		if c < 1 {
			c = 1
		}
		if c < m {
			m = c
		}
	}
	return m
}

// MaxModelSize exposes the derived bound; unboundedness is reported as
// (0, false).
func (f *Finder) MaxModelSize() (int, bool) {
	if f.maxModelSize == unbounded {
		return 0, false
	}
	return f.maxModelSize, true
}

// Run searches domain sizes upward from the configured start until a model
// is found, the size bound is exhausted, the deadline passes, or the
// variable space overflows.
func (f *Finder) Run(ctx context.Context) (*Result, error) {
	if f.prep.emptyClause {
		f.log.WithField("clause", f.prep.emptyClauseSrc).Debug("refutation found during preparation")
		return &Result{Outcome: Refutation, Witness: "empty clause"}, nil
	}
	if f.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.opts.Timeout)
		defer cancel()
	}

	n := f.opts.StartSize
	if f.opts.UseConstantsAsStart && f.ss.constClasses > n {
		n = f.ss.constClasses
	}

	rounds := 0
	for {
		rounds++
		if ctx.Err() != nil {
			return &Result{Outcome: TimeLimit, Size: n, Rounds: rounds}, nil
		}
		res, done, err := f.round(ctx, n, rounds)
		if done || err != nil {
			return res, err
		}
		n++
	}
}

func (f *Finder) round(ctx context.Context, n, rounds int) (*Result, bool, error) {
	log := f.log.WithField("size", n)

	backend, err := sat.New(f.opts.Backend)
	if err != nil {
		return &Result{Outcome: Unknown, Size: n, Rounds: rounds}, true, err
	}
	var bridge sat.Solver = backend
	var rec *sat.Recorder
	if f.opts.DimacsDir != "" {
		rec = &sat.Recorder{Inner: backend}
		bridge = rec
	}

	enc, err := newEncoder(f.prep, f.ss, f.ord, f.opts, n, bridge)
	if err != nil {
		log.WithError(err).Debug("abandoning search")
		return &Result{Outcome: Unknown, Size: n, Rounds: rounds}, true, nil
	}
	if err := enc.encode(ctx, f.maxModelSize); err != nil {
		return &Result{Outcome: TimeLimit, Size: n, Rounds: rounds}, true, nil
	}
	log.WithFields(logrus.Fields{
		"vars":    humanize.Comma(int64(enc.total)),
		"clauses": humanize.Comma(int64(enc.numClauses)),
	}).Debug("encoded round")

	if rec != nil {
		if err := f.writeSnapshot(rec, n); err != nil {
			log.WithError(err).Warn("writing DIMACS snapshot")
		}
	}

	switch bridge.Solve(ctx) {
	case sat.Satisfiable:
		model := extractModel(enc)
		log.Debug("model found")
		return &Result{Outcome: Satisfiable, Model: model, Size: n, Rounds: rounds}, true, nil
	case sat.Unsatisfiable:
		if n >= f.maxModelSize {
			log.Debug("size bound exhausted, emitting refutation")
			return &Result{
				Outcome: Refutation,
				Size:    n,
				Rounds:  rounds,
				Witness: "empty clause",
			}, true, nil
		}
		return nil, false, nil
	default:
		if ctx.Err() != nil {
			return &Result{Outcome: TimeLimit, Size: n, Rounds: rounds}, true, nil
		}
		return &Result{Outcome: Unknown, Size: n, Rounds: rounds}, true, nil
	}
}

func (f *Finder) writeSnapshot(rec *sat.Recorder, n int) error {
	if err := os.MkdirAll(f.opts.DimacsDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(f.opts.DimacsDir, fmt.Sprintf("size-%03d.cnf", n))
	w, err := os.Create(path)
	if err != nil {
		return err
	}
	defer w.Close()
	return WriteDIMACS(w, rec.NumVars, rec.Clauses)
}

func sizeString(n int) string {
	if n == unbounded {
		return "unbounded"
	}
	return fmt.Sprint(n)
}
