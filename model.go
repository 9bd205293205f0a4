package sunday

import (
	"fmt"
	"sort"
	"strings"
)

// Model is a finite interpretation over the domain [1..Size]. Function
// entries may be undefined (0) where sort bounds truncated the totality
// range; the model stays well-defined on the restricted domain.
type Model struct {
	Size int

	sig    *Signature
	consts map[int]int    // constant symbol -> element, 0 undefined
	funcs  map[int][]int  // function symbol -> mixed-radix table, 0 undefined
	preds  map[int][]bool // predicate symbol -> mixed-radix table
}

// extractModel reads the satisfying assignment back through the encoder's
// variable layout. Symbols eliminated during preparation get their recorded
// definitions re-applied.
func extractModel(e *encoder) *Model {
	sg := e.prep.sig
	n := e.n
	m := &Model{
		Size:   n,
		sig:    sg,
		consts: make(map[int]int),
		funcs:  make(map[int][]int),
		preds:  make(map[int][]bool),
	}
	for f := 0; f < sg.NumFuncs(); f++ {
		k := sg.Func(f).Arity
		if k == 0 {
			m.consts[f] = e.imageOf(f, nil)
			continue
		}
		table := make([]int, intPow(n, k))
		eachFullTuple(n, k, func(idx int, tuple []int) {
			table[idx] = e.imageOf(f, tuple)
		})
		m.funcs[f] = table
	}
	for q := 0; q < sg.NumPreds(); q++ {
		k := sg.Pred(q).Arity
		table := make([]bool, intPow(n, k))
		if val, gone := e.prep.elimPred[q]; gone {
			for i := range table {
				table[i] = val
			}
		} else {
			eachFullTuple(n, k, func(idx int, tuple []int) {
				table[idx] = e.bridge.ValueOf(e.predVar(q, tuple))
			})
		}
		m.preds[q] = table
	}
	return m
}

// imageOf finds the unique image of f on tuple, or 0 when the assignment
// leaves it undefined.
func (e *encoder) imageOf(f int, tuple []int) int {
	for out := 1; out <= e.n; out++ {
		if e.bridge.ValueOf(e.funcVar(f, tuple, out)) {
			return out
		}
	}
	return 0
}

// eachFullTuple enumerates [1..n]^k together with the mixed-radix index the
// tables use.
func eachFullTuple(n, k int, body func(idx int, tuple []int)) {
	bounds := make([]int, k)
	tuple := make([]int, k)
	for i := 0; i < k; i++ {
		bounds[i] = n
		tuple[i] = 1
	}
	idx := 0
	for {
		body(idx, tuple)
		idx++
		if !nextTuple(tuple, bounds) {
			return
		}
	}
}

func intPow(n, k int) int {
	p := 1
	for i := 0; i < k; i++ {
		p *= n
	}
	return p
}

func (m *Model) tupleIndex(tuple []int) int {
	idx := 0
	mult := 1
	for _, t := range tuple {
		idx += (t - 1) * mult
		mult *= m.Size
	}
	return idx
}

// ConstValue returns the element a constant denotes, 0 if undefined or
// unknown.
func (m *Model) ConstValue(name string) int {
	for f, v := range m.consts {
		if m.sig.Func(f).Name == name {
			return v
		}
	}
	return 0
}

// FuncValue returns f(args...), 0 if undefined.
func (m *Model) FuncValue(name string, args ...int) int {
	for f, table := range m.funcs {
		fs := m.sig.Func(f)
		if fs.Name == name && fs.Arity == len(args) {
			return table[m.tupleIndex(args)]
		}
	}
	return 0
}

// PredValue returns the truth of p(args...).
func (m *Model) PredValue(name string, args ...int) bool {
	for q, table := range m.preds {
		ps := m.sig.Pred(q)
		if ps.Name == name && ps.Arity == len(args) {
			return table[m.tupleIndex(args)]
		}
	}
	return false
}

// String renders the interpretation one fact per line, symbols in name
// order, tuples in mixed-radix order. Undefined entries are omitted.
func (m *Model) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "domain size %d\n", m.Size)
	for _, f := range sortedKeys(m.consts, func(f int) string { return m.sig.Func(f).Name }) {
		if v := m.consts[f]; v != 0 {
			fmt.Fprintf(&b, "%s = %d\n", m.sig.Func(f).Name, v)
		}
	}
	for _, f := range sortedKeys(m.funcs, func(f int) string { return m.sig.Func(f).Name }) {
		name := m.sig.Func(f).Name
		k := m.sig.Func(f).Arity
		table := m.funcs[f]
		eachFullTuple(m.Size, k, func(idx int, tuple []int) {
			if table[idx] != 0 {
				fmt.Fprintf(&b, "%s(%s) = %d\n", name, joinInts(tuple), table[idx])
			}
		})
	}
	for _, q := range sortedKeys(m.preds, func(q int) string { return m.sig.Pred(q).Name }) {
		name := m.sig.Pred(q).Name
		k := m.sig.Pred(q).Arity
		table := m.preds[q]
		eachFullTuple(m.Size, k, func(idx int, tuple []int) {
			if k == 0 {
				fmt.Fprintf(&b, "%s = %t\n", name, table[idx])
			} else {
				fmt.Fprintf(&b, "%s(%s) = %t\n", name, joinInts(tuple), table[idx])
			}
		})
	}
	return b.String()
}

func sortedKeys[V any](m map[int]V, name func(int) string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return name(keys[i]) < name(keys[j]) })
	return keys
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = fmt.Sprint(x)
	}
	return strings.Join(parts, ",")
}

// Satisfies checks every clause against the model over all variable
// assignments into [1..Size]. Literals involving undefined function entries
// evaluate to false.
func (m *Model) Satisfies(clauses []Clause) bool {
	for i := range clauses {
		if !m.satisfiesClause(&clauses[i]) {
			return false
		}
	}
	return true
}

func (m *Model) satisfiesClause(c *Clause) bool {
	bounds := make([]int, c.NumVars)
	asn := make([]int, c.NumVars)
	for i := range bounds {
		bounds[i] = m.Size
		asn[i] = 1
	}
	for {
		if !m.clauseTrue(c, asn) {
			return false
		}
		if !nextTuple(asn, bounds) {
			return true
		}
	}
}

func (m *Model) clauseTrue(c *Clause, asn []int) bool {
	for _, l := range c.Lits {
		if m.litTrue(l, asn) {
			return true
		}
	}
	return false
}

func (m *Model) litTrue(l Literal, asn []int) bool {
	if l.Eq {
		lv, lok := m.evalTerm(l.L, asn)
		rv, rok := m.evalTerm(l.R, asn)
		if !lok || !rok {
			return false
		}
		return (lv == rv) == l.Pos
	}
	args := make([]int, len(l.Args))
	for i, a := range l.Args {
		v, ok := m.evalTerm(a, asn)
		if !ok {
			return false
		}
		args[i] = v
	}
	val := m.preds[l.Pred][m.tupleIndex(args)]
	return val == l.Pos
}

func (m *Model) evalTerm(t Term, asn []int) (int, bool) {
	if t.IsVar() {
		return asn[t.Var], true
	}
	if len(t.Args) == 0 {
		v := m.consts[t.Fn]
		return v, v != 0
	}
	args := make([]int, len(t.Args))
	for i, a := range t.Args {
		v, ok := m.evalTerm(a, asn)
		if !ok {
			return 0, false
		}
		args[i] = v
	}
	v := m.funcs[t.Fn][m.tupleIndex(args)]
	return v, v != 0
}
