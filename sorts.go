package sunday

import "math"

// unbounded marks a sort with no cardinality bound.
const unbounded = math.MaxInt

// Sort inference partitions argument positions into equivalence classes: the
// i-th argument position of every literal a variable reaches must share a
// domain with every other position that variable reaches. Each class (an
// inferred sort) carries the constants and functions ranging into it and a
// cardinality bound used to shrink the propositional encoding.

type sortInfo struct {
	constants []int // nullary functions of this sort, occurrence order
	functions []int // non-nullary functions whose range is this sort
	bound     int
}

type sortedSignature struct {
	sig   *Signature
	sorts []sortInfo

	// funcSort[f][0] is the sort of f's range, funcSort[f][i+1] the sort
	// of its i-th argument. predSort[p][i] likewise for predicates.
	funcSort [][]int
	predSort [][]int

	// distinctBound is the smallest variable count over clauses built
	// entirely from two-variable equalities, or unbounded. Such a clause
	// caps the size of any model.
	distinctBound int

	hasNonConstFunc bool
	constClasses    int // distinct constants after ground-unit merging
}

func (ss *sortedSignature) fbound(f, i int) int { return ss.sorts[ss.funcSort[f][i]].bound }
func (ss *sortedSignature) pbound(p, i int) int { return ss.sorts[ss.predSort[p][i]].bound }

// inferSorts runs the union-find pass over all flat clauses and fills in the
// per-clause variable bounds as a side effect.
func inferSorts(p *prepared) *sortedSignature {
	sg := p.sig
	ss := &sortedSignature{sig: sg, distinctBound: unbounded}

	// Node layout: one node per function position, per predicate position,
	// then per clause variable.
	funcBase := make([]int, sg.NumFuncs())
	next := 0
	for f := 0; f < sg.NumFuncs(); f++ {
		funcBase[f] = next
		next += sg.Func(f).Arity + 1
	}
	predBase := make([]int, sg.NumPreds())
	for q := 0; q < sg.NumPreds(); q++ {
		predBase[q] = next
		next += sg.Pred(q).Arity
	}
	all := append(append([]*flatClause{}, p.clauses...), p.ground...)
	clauseBase := make([]int, len(all))
	for i, fc := range all {
		clauseBase[i] = next
		next += fc.nvars
	}

	uf := newUnionFind(next)
	for i, fc := range all {
		base := clauseBase[i]
		for _, l := range fc.lits {
			switch l.kind {
			case litFuncEq:
				for j, v := range l.args {
					uf.union(base+v, funcBase[l.sym]+1+j)
				}
				uf.union(base+l.res, funcBase[l.sym])
			case litPred:
				for j, v := range l.args {
					uf.union(base+v, predBase[l.sym]+j)
				}
			case litVarEq:
				uf.union(base+l.args[0], base+l.res)
			}
		}
	}

	// Dense sort ids, symbol positions first so that isolated
	// variable-only classes sort last.
	sortID := make(map[int]int)
	idOf := func(node int) int {
		root := uf.find(node)
		id, ok := sortID[root]
		if !ok {
			id = len(ss.sorts)
			sortID[root] = id
			ss.sorts = append(ss.sorts, sortInfo{bound: unbounded})
		}
		return id
	}
	ss.funcSort = make([][]int, sg.NumFuncs())
	for f := 0; f < sg.NumFuncs(); f++ {
		k := sg.Func(f).Arity
		ss.funcSort[f] = make([]int, k+1)
		for i := 0; i <= k; i++ {
			ss.funcSort[f][i] = idOf(funcBase[f] + i)
		}
	}
	ss.predSort = make([][]int, sg.NumPreds())
	for q := 0; q < sg.NumPreds(); q++ {
		k := sg.Pred(q).Arity
		ss.predSort[q] = make([]int, k)
		for i := 0; i < k; i++ {
			ss.predSort[q][i] = idOf(predBase[q] + i)
		}
	}

	for f := 0; f < sg.NumFuncs(); f++ {
		s := ss.funcSort[f][0]
		if sg.Func(f).Arity == 0 {
			ss.sorts[s].constants = append(ss.sorts[s].constants, f)
		} else {
			ss.sorts[s].functions = append(ss.sorts[s].functions, f)
			ss.hasNonConstFunc = true
		}
	}

	// A sort whose elements can only be named by constants is capped at
	// the number of distinct constants; a function ranging into the sort
	// can create unnamed elements, so no cap applies.
	globalClasses := make(map[int]struct{})
	for s := range ss.sorts {
		si := &ss.sorts[s]
		if len(si.constants) == 0 || len(si.functions) > 0 {
			continue
		}
		classes := make(map[int]struct{})
		for _, c := range si.constants {
			classes[p.findConst(c)] = struct{}{}
		}
		si.bound = len(classes)
	}
	for _, c := range sg.Constants() {
		globalClasses[p.findConst(c)] = struct{}{}
	}
	ss.constClasses = len(globalClasses)

	// Distinctness heuristic: a clause made only of two-variable
	// equalities over k variables caps model size at k, and caps the
	// bound of its variables' sort when they all share one.
	for i, fc := range all {
		if len(fc.lits) == 0 {
			continue
		}
		allEq := true
		for _, l := range fc.lits {
			if l.kind != litVarEq {
				allEq = false
				break
			}
		}
		if !allEq {
			continue
		}
		k := fc.nvars
		if k < ss.distinctBound {
			ss.distinctBound = k
		}
		s := idOf(clauseBase[i])
		same := true
		for v := 1; v < fc.nvars; v++ {
			if idOf(clauseBase[i]+v) != s {
				same = false
				break
			}
		}
		if same && k < ss.sorts[s].bound {
			ss.sorts[s].bound = k
		}
	}

	// Per-clause variable bounds.
	for i, fc := range all {
		fc.bounds = make([]int, fc.nvars)
		for v := 0; v < fc.nvars; v++ {
			fc.bounds[v] = ss.sorts[idOf(clauseBase[i]+v)].bound
		}
	}

	return ss
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	uf := &unionFind{parent: make([]int, n)}
	for i := range uf.parent {
		uf.parent[i] = i
	}
	return uf
}

func (uf *unionFind) find(x int) int {
	for uf.parent[x] != x {
		uf.parent[x] = uf.parent[uf.parent[x]]
		x = uf.parent[x]
	}
	return x
}

func (uf *unionFind) union(a, b int) {
	ra, rb := uf.find(a), uf.find(b)
	if ra != rb {
		uf.parent[rb] = ra
	}
}
