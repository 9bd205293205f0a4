package sunday

import "sort"

// groundedTerm is a (symbol, index) pair standing in for a canonical term
// during symmetry breaking. Constants carry index 0.
type groundedTerm struct {
	fn   int
	grnd int
}

// symbolOrder fixes, per sort, the order of constants and of functions, and
// expands them into grounded-term lists at a given domain size. Usage counts
// are computed into a side table here rather than mutated on the signature.
type symbolOrder struct {
	ss     *sortedSignature
	widget WidgetOrder

	constants [][]int // per sort, ordered
	functions [][]int // per sort, ordered
}

func newSymbolOrder(p *prepared, ss *sortedSignature, input []Clause, opts Options) *symbolOrder {
	o := &symbolOrder{
		ss:        ss,
		widget:    opts.WidgetOrder,
		constants: make([][]int, len(ss.sorts)),
		functions: make([][]int, len(ss.sorts)),
	}
	for s := range ss.sorts {
		o.constants[s] = append([]int(nil), ss.sorts[s].constants...)
		o.functions[s] = append([]int(nil), ss.sorts[s].functions...)
	}
	var usage []int
	switch opts.SymbolOrder {
	case Usage:
		usage = inputUsage(p.sig, input)
	case PreprocessedUsage:
		usage = flatUsage(p)
	default:
		return o
	}
	for s := range ss.sorts {
		byUsage(o.constants[s], usage)
		byUsage(o.functions[s], usage)
	}
	return o
}

func byUsage(syms []int, usage []int) {
	sort.SliceStable(syms, func(i, j int) bool {
		return usage[syms[i]] > usage[syms[j]]
	})
}

// inputUsage counts, per function, how often it heads an equation side in
// the raw input clauses.
func inputUsage(sg *Signature, input []Clause) []int {
	usage := make([]int, sg.NumFuncs())
	for _, c := range input {
		for _, l := range c.Lits {
			if !l.Eq {
				continue
			}
			if !l.L.IsVar() {
				usage[l.L.Fn]++
			}
			if !l.R.IsVar() {
				usage[l.R.Fn]++
			}
		}
	}
	return usage
}

// flatUsage counts definition-equality heads in the flat clauses.
func flatUsage(p *prepared) []int {
	usage := make([]int, p.sig.NumFuncs())
	for _, set := range [][]*flatClause{p.clauses, p.ground} {
		for _, fc := range set {
			for _, l := range fc.lits {
				if l.kind == litFuncEq {
					usage[l.sym]++
				}
			}
		}
	}
	return usage
}

// skipWidget reports that symbol f cannot contribute the grounded term
// (f, m) at size n: its range cannot reach the n-th value, or some argument
// bound is below the proposed index.
func (o *symbolOrder) skipWidget(f, m, n int) bool {
	if o.ss.fbound(f, 0) < n {
		return true
	}
	for i := 0; i < o.ss.sig.Func(f).Arity; i++ {
		if o.ss.fbound(f, i+1) < m {
			return true
		}
	}
	return false
}

// groundedTerms expands sort s into its canonical term list at size n:
// constants first, then function widgets in the configured order. The
// diagonal order applies its modular index formula across skips and may
// repeat a pair; duplicates are deliberately not removed.
func (o *symbolOrder) groundedTerms(s, n int) []groundedTerm {
	var g []groundedTerm
	for _, c := range o.constants[s] {
		if o.ss.fbound(c, 0) < n {
			continue
		}
		g = append(g, groundedTerm{fn: c})
	}
	fns := o.functions[s]
	switch o.widget {
	case ArgumentFirst:
		for m := 1; m <= n; m++ {
			for _, f := range fns {
				if !o.skipWidget(f, m, n) {
					g = append(g, groundedTerm{fn: f, grnd: m})
				}
			}
		}
	case Diagonal:
		for m := 1; m <= n; m++ {
			for i, f := range fns {
				idx := 1 + (m+i)%n
				if !o.skipWidget(f, idx, n) {
					g = append(g, groundedTerm{fn: f, grnd: idx})
				}
			}
		}
	default: // FunctionFirst
		for _, f := range fns {
			for m := 1; m <= n; m++ {
				if !o.skipWidget(f, m, n) {
					g = append(g, groundedTerm{fn: f, grnd: m})
				}
			}
		}
	}
	return g
}
