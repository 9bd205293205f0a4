package sunday

import (
	"context"
	"math"

	"github.com/cespare/sunday/sat"
	"github.com/pkg/errors"
)

// maxVarSpace bounds the propositional variable space. The backends address
// variables as 32-bit values; a layout that would exceed this is a terminal
// failure for the current size.
const maxVarSpace = math.MaxInt32

var errVarSpace = errors.New("propositional variable space overflow")

// encoder translates the prepared problem at one candidate domain size n
// into CNF over a contiguous variable space:
//
//	function f, arity k: a block of n^(k+1) variables, one per tuple
//	(d1..dk, out), meaning f(d1..dk) = out;
//	predicate p, arity k: a block of n^k variables meaning p(d1..dk).
//
// Variable 1 is reserved and never emitted; symbol blocks start at 2. The
// encoder and its variable layout are rebuilt from scratch every round.
type encoder struct {
	prep *prepared
	ss   *sortedSignature
	ord  *symbolOrder
	opts Options

	n       int
	funcOff []int
	predOff []int // -1 for eliminated predicates
	total   int

	grounded [][]groundedTerm // per sort, memoised for the symmetry groups

	bridge     sat.Solver
	buf        []int
	argBuf     []int
	numClauses int
}

// newEncoder lays out the variable space for size n. It fails only on
// variable-space overflow.
func newEncoder(prep *prepared, ss *sortedSignature, ord *symbolOrder, opts Options, n int, bridge sat.Solver) (*encoder, error) {
	e := &encoder{
		prep:   prep,
		ss:     ss,
		ord:    ord,
		opts:   opts,
		n:      n,
		bridge: bridge,
	}
	sg := prep.sig
	next := uint64(2)
	block := func(k int) (uint64, bool) {
		b := uint64(1)
		for i := 0; i < k; i++ {
			b *= uint64(n)
			if b > maxVarSpace {
				return 0, false
			}
		}
		return b, true
	}
	e.funcOff = make([]int, sg.NumFuncs())
	for f := 0; f < sg.NumFuncs(); f++ {
		b, ok := block(sg.Func(f).Arity + 1)
		if !ok || next+b-1 > maxVarSpace {
			return nil, errVarSpace
		}
		e.funcOff[f] = int(next)
		next += b
	}
	e.predOff = make([]int, sg.NumPreds())
	for q := 0; q < sg.NumPreds(); q++ {
		if !prep.livePred(q) {
			e.predOff[q] = -1
			continue
		}
		b, ok := block(sg.Pred(q).Arity)
		if !ok || next+b-1 > maxVarSpace {
			return nil, errVarSpace
		}
		e.predOff[q] = int(next)
		next += b
	}
	e.total = int(next - 1)

	e.grounded = make([][]groundedTerm, len(ss.sorts))
	for s := range ss.sorts {
		e.grounded[s] = ord.groundedTerms(s, n)
	}

	bridge.EnsureVarCount(e.total)
	return e, nil
}

// funcVar is the propositional variable for f(args...) = out.
func (e *encoder) funcVar(f int, args []int, out int) int {
	v := e.funcOff[f]
	mult := 1
	for _, a := range args {
		v += (a - 1) * mult
		mult *= e.n
	}
	return v + (out-1)*mult
}

// predVar is the propositional variable for p(args...).
func (e *encoder) predVar(p int, args []int) int {
	v := e.predOff[p]
	mult := 1
	for _, a := range args {
		v += (a - 1) * mult
		mult *= e.n
	}
	return v
}

// widgetVar is the variable for grounded term g taking value out: the
// symbol's arguments are all collapsed to g.grnd.
func (e *encoder) widgetVar(g groundedTerm, out int) int {
	k := e.prep.sig.Func(g.fn).Arity
	e.argBuf = e.argBuf[:0]
	for i := 0; i < k; i++ {
		e.argBuf = append(e.argBuf, g.grnd)
	}
	return e.funcVar(g.fn, e.argBuf, out)
}

// emit hands one clause to the backend after duplicate-literal removal.
// Clauses containing a literal and its negation are dropped.
func (e *encoder) emit(lits []int) {
	out := lits[:0]
	for _, l := range lits {
		keep := true
		for _, k := range out {
			if k == -l {
				return
			}
			if k == l {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, l)
		}
	}
	e.bridge.AddClause(out)
	e.numClauses++
}

// encode emits every clause group for the current size. maxSize is the
// search's current model-size upper bound (unbounded if none), consumed by
// the canonicity window. The context is polled between groups.
func (e *encoder) encode(ctx context.Context, maxSize int) error {
	groups := []func(int){
		func(int) { e.encodeGround() },
		func(int) { e.encodeInstances() },
		func(int) { e.encodeFunctionality() },
		func(ms int) { e.encodeSymmetry(ms) },
		func(int) { e.encodeTotality() },
	}
	for _, group := range groups {
		if err := ctx.Err(); err != nil {
			return err
		}
		group(maxSize)
	}
	if e.opts.UseModelSize {
		e.encodeModelSizeCap()
	}
	return nil
}

// encodeGround maps each propositional input clause literal-for-literal.
func (e *encoder) encodeGround() {
	for _, fc := range e.prep.ground {
		e.buf = e.buf[:0]
		for _, l := range fc.lits {
			v := e.predVar(l.sym, l.args)
			if !l.pos {
				v = -v
			}
			e.buf = append(e.buf, v)
		}
		e.emit(e.buf)
	}
}

// encodeInstances grounds every non-ground clause over all assignments of
// its variables within the per-variable sort bounds.
func (e *encoder) encodeInstances() {
	for _, fc := range e.prep.clauses {
		bounds := make([]int, fc.nvars)
		for v := 0; v < fc.nvars; v++ {
			b := fc.bounds[v]
			if b > e.n {
				b = e.n
			}
			bounds[v] = b
		}
		g := make([]int, fc.nvars)
		for i := range g {
			g[i] = 1
		}
		for {
			e.instance(fc, g)
			if !nextTuple(g, bounds) {
				break
			}
		}
	}
}

func (e *encoder) instance(fc *flatClause, g []int) {
	e.buf = e.buf[:0]
	for _, l := range fc.lits {
		switch l.kind {
		case litVarEq:
			// A trivially true equality makes the whole instance
			// redundant; a trivially false one drops the literal.
			if (g[l.args[0]] == g[l.res]) == l.pos {
				return
			}
		case litFuncEq:
			e.argBuf = e.argBuf[:0]
			for _, a := range l.args {
				e.argBuf = append(e.argBuf, g[a])
			}
			v := e.funcVar(l.sym, e.argBuf, g[l.res])
			if !l.pos {
				v = -v
			}
			e.buf = append(e.buf, v)
		case litPred:
			e.argBuf = e.argBuf[:0]
			for _, a := range l.args {
				e.argBuf = append(e.argBuf, g[a])
			}
			v := e.predVar(l.sym, e.argBuf)
			if !l.pos {
				v = -v
			}
			e.buf = append(e.buf, v)
		}
	}
	e.emit(e.buf)
}

// encodeFunctionality forbids two images for one input tuple.
func (e *encoder) encodeFunctionality() {
	for f := 0; f < e.prep.sig.NumFuncs(); f++ {
		k := e.prep.sig.Func(f).Arity
		rng := e.rangeBound(f)
		e.eachArgTuple(f, k, func(tuple []int) {
			for a := 1; a <= rng; a++ {
				for b := a + 1; b <= rng; b++ {
					e.emit([]int{
						-e.funcVar(f, tuple, a),
						-e.funcVar(f, tuple, b),
					})
				}
			}
		})
	}
}

// encodeTotality forces an image for every input tuple, within the range
// bound. With a range bound below n the function stays partial on the
// truncated values.
func (e *encoder) encodeTotality() {
	for f := 0; f < e.prep.sig.NumFuncs(); f++ {
		k := e.prep.sig.Func(f).Arity
		rng := e.rangeBound(f)
		e.eachArgTuple(f, k, func(tuple []int) {
			e.buf = e.buf[:0]
			for out := 1; out <= rng; out++ {
				e.buf = append(e.buf, e.funcVar(f, tuple, out))
			}
			e.emit(e.buf)
		})
	}
}

// encodeSymmetry emits the ordered-totality clause and the canonicity
// ladder for each sort.
func (e *encoder) encodeSymmetry(maxSize int) {
	for s := range e.ss.sorts {
		g := e.grounded[s]
		// Ordered totality: the n-th canonical term of the sort takes
		// a value in [1..n].
		if len(g) >= e.n {
			gt := g[e.n-1]
			e.buf = e.buf[:0]
			for out := 1; out <= e.n; out++ {
				e.buf = append(e.buf, e.widgetVar(gt, out))
			}
			e.emit(e.buf)
		}
		e.encodeCanonicity(g, maxSize)
	}
}

// encodeCanonicity says a canonical term may take value n only if an
// earlier canonical term already took value n-1, pruning domain
// permutations.
func (e *encoder) encodeCanonicity(g []groundedTerm, maxSize int) {
	if e.n < 2 || e.opts.SymmetryRatio == 0 {
		return
	}
	w := len(g)
	if maxSize != unbounded {
		if rw := int(math.Ceil(e.opts.SymmetryRatio * float64(maxSize))); rw < w {
			w = rw
		}
	}
	for i := 1; i < w; i++ {
		e.buf = e.buf[:0]
		e.buf = append(e.buf, -e.widgetVar(g[i], e.n))
		for j := 0; j < i; j++ {
			e.buf = append(e.buf, e.widgetVar(g[j], e.n-1))
		}
		e.emit(e.buf)
	}
}

// encodeModelSizeCap requires the value n to actually be taken by some
// constant or unary function image. Only sound to require when no function
// of arity > 1 can introduce values.
func (e *encoder) encodeModelSizeCap() {
	sg := e.prep.sig
	for f := 0; f < sg.NumFuncs(); f++ {
		if sg.Func(f).Arity > 1 {
			return
		}
	}
	e.buf = e.buf[:0]
	for f := 0; f < sg.NumFuncs(); f++ {
		if e.rangeBound(f) < e.n {
			continue
		}
		if sg.Func(f).Arity == 0 {
			e.buf = append(e.buf, e.funcVar(f, nil, e.n))
			continue
		}
		ab := e.argBound(f, 0)
		for d := 1; d <= ab; d++ {
			e.buf = append(e.buf, e.funcVar(f, []int{d}, e.n))
		}
	}
	if len(e.buf) > 0 {
		e.emit(e.buf)
	}
}

func (e *encoder) rangeBound(f int) int {
	b := e.ss.fbound(f, 0)
	if b > e.n {
		b = e.n
	}
	return b
}

func (e *encoder) argBound(f, i int) int {
	b := e.ss.fbound(f, i+1)
	if b > e.n {
		b = e.n
	}
	return b
}

// eachArgTuple enumerates the argument tuples of f within its bounds.
func (e *encoder) eachArgTuple(f, k int, body func(tuple []int)) {
	bounds := make([]int, k)
	tuple := make([]int, k)
	for i := 0; i < k; i++ {
		bounds[i] = e.argBound(f, i)
		tuple[i] = 1
	}
	for {
		body(tuple)
		if !nextTuple(tuple, bounds) {
			return
		}
	}
}

// nextTuple advances a mixed-radix counter where position i counts from 1 to
// bounds[i]. It reports false when the enumeration is exhausted.
func nextTuple(t, bounds []int) bool {
	for i := 0; i < len(t); i++ {
		if t[i] < bounds[i] {
			t[i]++
			return true
		}
		t[i] = 1
	}
	return false
}
