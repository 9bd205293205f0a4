package sunday

// The preparer turns input clauses into flat clauses: every literal is a
// variable-to-variable (dis)equality, a definition equality f(x...) = y over
// distinct variables, or a predicate atom over variables. Nested terms are
// unnested by introducing fresh variables together with negative definition
// literals. The preparer also merges constants identified by ground unit
// equalities (feeding sort cardinality bounds), eliminates predicates that
// occur with only one polarity, and splits off ground (propositional)
// clauses.

type litKind uint8

const (
	litPred litKind = iota
	litVarEq
	litFuncEq
)

// flatLit is one literal of a flat clause. args holds argument variable
// indices. res is the result variable for a definition equality; for a
// variable equality the two sides are args[0] and res.
type flatLit struct {
	kind litKind
	pos  bool
	sym  int
	args []int
	res  int
}

type flatClause struct {
	lits  []flatLit
	nvars int
	// bounds[v] is the tightest sort bound for variable v, filled in by
	// sort inference.
	bounds []int
	src    int // index of the originating input clause, -1 if synthetic
}

func (c *flatClause) isGround() bool { return c.nvars == 0 }

// prepared is the immutable result of clause preparation; everything the
// encoder consumes at each size is derived from it.
type prepared struct {
	sig     *Signature
	clauses []*flatClause // clauses with at least one variable
	ground  []*flatClause // propositional clauses
	input   []Clause

	// constParent is a union-find over function symbols recording which
	// constants are forced equal by ground unit equalities.
	constParent []int

	// elimPred maps predicates removed by purity elimination to the truth
	// value their tables take in an extracted model.
	elimPred map[int]bool
	// elimFunc is kept for interface symmetry with sort inference; the
	// preparer never eliminates function symbols.
	elimFunc map[int]struct{}

	emptyClause    bool
	emptyClauseSrc int
}

func prepare(sg *Signature, input []Clause) *prepared {
	p := &prepared{
		sig:            sg,
		input:          input,
		constParent:    make([]int, sg.NumFuncs()),
		elimPred:       make(map[int]bool),
		elimFunc:       make(map[int]struct{}),
		emptyClauseSrc: -1,
	}
	for i := range p.constParent {
		p.constParent[i] = i
	}

	var flat []*flatClause
	for i := range input {
		p.mergeGroundUnit(&input[i])
		fc, taut := flatten(sg, &input[i], i)
		if taut {
			continue
		}
		if len(fc.lits) == 0 {
			p.emptyClause = true
			p.emptyClauseSrc = i
			return p
		}
		flat = append(flat, fc)
	}

	flat = p.eliminatePure(flat)

	for _, fc := range flat {
		if fc.isGround() {
			p.ground = append(p.ground, fc)
		} else {
			p.clauses = append(p.clauses, fc)
		}
	}
	return p
}

// mergeGroundUnit unions the constants of a unit positive equality between
// two constant terms. The clause itself is still encoded; merging only
// affects how many distinct constants a sort is counted to have.
func (p *prepared) mergeGroundUnit(c *Clause) {
	if len(c.Lits) != 1 {
		return
	}
	l := c.Lits[0]
	if !l.Eq || !l.Pos {
		return
	}
	if l.L.IsVar() || l.R.IsVar() || len(l.L.Args) != 0 || len(l.R.Args) != 0 {
		return
	}
	p.unionConst(l.L.Fn, l.R.Fn)
}

func (p *prepared) findConst(f int) int {
	for p.constParent[f] != f {
		p.constParent[f] = p.constParent[p.constParent[f]]
		f = p.constParent[f]
	}
	return f
}

func (p *prepared) unionConst(a, b int) {
	ra, rb := p.findConst(a), p.findConst(b)
	if ra != rb {
		p.constParent[rb] = ra
	}
}

type flattener struct {
	sg    *Signature
	out   *flatClause
	nvars int
}

func (fl *flattener) fresh() int {
	v := fl.nvars
	fl.nvars++
	return v
}

// unnest reduces a term to a variable index, emitting a negative definition
// literal for every function application it unwraps.
func (fl *flattener) unnest(t Term) int {
	if t.IsVar() {
		return t.Var
	}
	args := make([]int, len(t.Args))
	for i, a := range t.Args {
		args[i] = fl.unnest(a)
	}
	v := fl.fresh()
	fl.out.lits = append(fl.out.lits, flatLit{
		kind: litFuncEq, pos: false, sym: t.Fn, args: args, res: v,
	})
	return v
}

// flatten converts one input clause. The second result reports that the
// clause simplified to a tautology and should be dropped.
func flatten(sg *Signature, c *Clause, src int) (*flatClause, bool) {
	fl := &flattener{sg: sg, out: &flatClause{src: src}, nvars: c.NumVars}
	for _, l := range c.Lits {
		if l.Eq {
			fl.equation(l)
		} else {
			args := make([]int, len(l.Args))
			for i, a := range l.Args {
				args[i] = fl.unnest(a)
			}
			fl.out.lits = append(fl.out.lits, flatLit{
				kind: litPred, pos: l.Pos, sym: l.Pred, args: args,
			})
		}
	}
	fl.out.nvars = fl.nvars
	return simplifyFlat(fl.out)
}

func (fl *flattener) equation(l Literal) {
	lhs, rhs := l.L, l.R
	if lhs.IsVar() && rhs.IsVar() {
		fl.out.lits = append(fl.out.lits, flatLit{
			kind: litVarEq, pos: l.Pos, args: []int{lhs.Var}, res: rhs.Var,
		})
		return
	}
	// Exactly one application becomes the head of a definition equality
	// carrying the literal's polarity; the other side reduces to the
	// result variable.
	if lhs.IsVar() {
		lhs, rhs = rhs, lhs
	}
	y := fl.unnest(rhs)
	args := make([]int, len(lhs.Args))
	for i, a := range lhs.Args {
		args[i] = fl.unnest(a)
	}
	fl.out.lits = append(fl.out.lits, flatLit{
		kind: litFuncEq, pos: l.Pos, sym: lhs.Fn, args: args, res: y,
	})
}

// simplifyFlat removes duplicate literals, drops trivially false variable
// equalities (x != x), and detects tautologies (x = x, or a literal and its
// negation).
func simplifyFlat(fc *flatClause) (*flatClause, bool) {
	var kept []flatLit
	for _, l := range fc.lits {
		if l.kind == litVarEq && l.args[0] == l.res {
			if l.pos {
				return nil, true
			}
			continue
		}
		dup := false
		for _, k := range kept {
			if sameAtom(k, l) {
				if k.pos != l.pos {
					return nil, true
				}
				dup = true
				break
			}
		}
		if !dup {
			kept = append(kept, l)
		}
	}
	fc.lits = kept
	return fc, false
}

func sameAtom(a, b flatLit) bool {
	if a.kind != b.kind || a.sym != b.sym || a.res != b.res || len(a.args) != len(b.args) {
		return false
	}
	for i := range a.args {
		if a.args[i] != b.args[i] {
			return false
		}
	}
	return true
}

// eliminatePure removes predicates that occur with a single polarity, along
// with every clause mentioning them, iterating until no predicate is pure.
// Setting such a predicate uniformly true (or false) satisfies all its
// occurrences, so the removal preserves satisfiability; the recorded value
// is re-applied when a model is extracted.
func (p *prepared) eliminatePure(flat []*flatClause) []*flatClause {
	np := p.sig.NumPreds()
	pos := make([]int, np)
	neg := make([]int, np)
	count := func(fc *flatClause, delta int) {
		for _, l := range fc.lits {
			if l.kind != litPred {
				continue
			}
			if l.pos {
				pos[l.sym] += delta
			} else {
				neg[l.sym] += delta
			}
		}
	}
	for _, fc := range flat {
		count(fc, 1)
	}
	for {
		pure := -1
		for q := 0; q < np; q++ {
			if _, done := p.elimPred[q]; done {
				continue
			}
			if (pos[q] > 0) != (neg[q] > 0) {
				pure = q
				break
			}
		}
		if pure < 0 {
			return flat
		}
		p.elimPred[pure] = pos[pure] > 0
		var kept []*flatClause
		for _, fc := range flat {
			mentions := false
			for _, l := range fc.lits {
				if l.kind == litPred && l.sym == pure {
					mentions = true
					break
				}
			}
			if mentions {
				count(fc, -1)
			} else {
				kept = append(kept, fc)
			}
		}
		flat = kept
	}
}

// livePred reports whether predicate q survived preparation.
func (p *prepared) livePred(q int) bool {
	_, gone := p.elimPred[q]
	return !gone
}
