package sat

import (
	"container/heap"
	"context"
	"sort"
)

// dpSolver is a self-contained backtracking backend implementing the
// Davis-Putnam procedure with watched literals, in the style of the 2001
// Chaff paper. It has no learning or restarts; it exists as a
// dependency-free fallback and as a cross-check for the CDCL backends.
type dpSolver struct {
	problem [][]int
	empty   bool
	core    *dpCore
	sat     bool
}

func newDP() Solver {
	return &dpSolver{}
}

func (s *dpSolver) EnsureVarCount(n int) {}

func (s *dpSolver) AddClause(lits []int) {
	if len(lits) == 0 {
		s.empty = true
		return
	}
	s.problem = append(s.problem, append([]int(nil), lits...))
}

func (s *dpSolver) Solve(ctx context.Context) Result {
	if s.empty {
		return Unsatisfiable
	}
	if ctx.Err() != nil {
		return Unknown
	}
	s.core = newDPCore(s.problem)
	if s.core.solve() {
		s.sat = true
		return Satisfiable
	}
	return Unsatisfiable
}

func (s *dpSolver) ValueOf(lit int) bool {
	if !s.sat {
		return false
	}
	v := lit
	if v < 0 {
		v = -v
	}
	val := s.core.valueOf(v)
	if lit < 0 {
		return !val
	}
	return val
}

// A dpLit represents an instance of a variable or its negation in a clause.
// The value is 2 times the variable index or 2x+1 for the negation.
type dpLit uint32

func (l dpLit) assn() assnVal {
	return assnVal(l&1) + 1
}

type assnVal uint8

const (
	unassigned assnVal = 0
	assnTrue   assnVal = 1
	assnFalse  assnVal = 2
	// The second values appear only in assignments to mark that a
	// decision is being tried the other way. Same as assnTrue/assnFalse
	// with another bit set.
	assnTrueSecond  assnVal = 5
	assnFalseSecond assnVal = 6
)

func (a assnVal) inv() assnVal { return a ^ 3 }

type dpClause struct {
	// The watch literals are the first two in the clause.
	lits []dpLit
}

type decision struct {
	implicationIdx int
	lit            dpLit
}

type dpCore struct {
	// sourceVars lists each input var. Unit input clauses are assigned
	// directly and don't enter the solver database at all. If
	// simplification already decides the problem, simpleSat is set and
	// the search never runs.
	sourceVars []sourceVar
	simpleSat  assnVal
	// simplified is the minimized input without the vars already
	// assigned in sourceVars.
	simplified [][]int

	origVars []int // mapping of internal var back to source var

	assignments []assnVal
	watches     [][]int // one watch list per literal; len is 2*len(assignments)

	unassigned litHeap // max-heap of literals ordered by watch list size

	decisions    []decision
	implications []dpLit
	propIndex    int // index of the first un-propagated implication
	clauses      []dpClause
}

type sourceVar struct {
	// If assn is unassigned, i indexes the corresponding solver var.
	// Otherwise the var was fixed by a unit clause during
	// simplification and has no solver var.
	v    int
	assn assnVal
	i    int
}

func newDPCore(problem [][]int) *dpCore {
	sv := dpSimplify(problem)
	if sv.simpleSat != unassigned {
		return sv
	}
	vars := make(map[int]int) // not including vars assigned in dpSimplify
	for _, cls := range sv.simplified {
		for _, v := range cls {
			v = dpAbs(v)
			if _, ok := vars[v]; !ok {
				sv.origVars = append(sv.origVars, v)
				vars[v] = 0
			}
		}
	}
	sort.Ints(sv.origVars)
	for i, v := range sv.origVars {
		vars[v] = i
	}
	for i, v := range sv.sourceVars {
		if v.assn == unassigned {
			sv.sourceVars[i].i = vars[v.v]
		}
	}
	sv.watches = make([][]int, len(sv.origVars)*2)
	sv.assignments = make([]assnVal, len(sv.origVars))
	sv.clauses = make([]dpClause, len(sv.simplified))
	for i, cls := range sv.simplified {
		for j, v := range cls {
			neg := false
			if v < 0 {
				neg = true
				v = -v
			}
			lit := dpLit(vars[v]) << 1
			if neg {
				lit ^= 1
			}
			sv.clauses[i].lits = append(sv.clauses[i].lits, lit)
			if j < 2 {
				sv.watches[lit] = append(sv.watches[lit], i)
			}
		}
	}
	sv.unassigned.watches = sv.watches
	sv.unassigned.m = make(map[dpLit]int)
	for lit, watches := range sv.watches {
		if len(watches) > 0 {
			sv.pushUnassigned(dpLit(lit))
		}
	}
	return sv
}

// dpSimplify does a round of trivial simplifications by looking for empty
// and unit clauses, assigning these, and iterating to a fixpoint. The result
// has only sourceVars and simplified set (plus simpleSat if the problem is
// trivially decided).
func dpSimplify(problem [][]int) *dpCore {
	var sv dpCore
	vars := make(map[int]assnVal)
	sv.simplified = make([][]int, len(problem))
	for i, cls := range problem {
		seen := make(map[int]struct{})
		var clause1 []int
		for _, v := range cls {
			if v == 0 {
				panic("zero var in clause")
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			clause1 = append(clause1, v)
			vars[dpAbs(v)] = unassigned
		}
		sv.simplified[i] = clause1
	}
	changed := true
	for changed {
		if len(sv.simplified) == 0 {
			sv.simpleSat = assnTrue
			// Pick an arbitrary assignment for the unassigned vars.
			for v, assn := range vars {
				if assn == unassigned {
					vars[v] = assnTrue
				}
			}
			break
		}
		changed = false
		var i int
	clauseLoop:
		for _, cls := range sv.simplified {
			if len(cls) == 0 {
				sv.simpleSat = assnFalse
				return &sv
			}
			if len(cls) == 1 {
				v := cls[0]
				assn := assnTrue
				if v < 0 {
					assn = assnFalse
					v = -v
				}
				if vars[v] != unassigned && vars[v] != assn {
					sv.simpleSat = assnFalse
					return &sv
				}
				vars[v] = assn
				changed = true
				continue clauseLoop
			}
			var j int
			for _, v := range cls {
				assn := vars[dpAbs(v)]
				if assn == unassigned {
					cls[j] = v
					j++
					continue
				}
				changed = true
				if (assn == assnTrue) == (v > 0) {
					// Clause is already satisfied.
					continue clauseLoop
				}
				// Literal is false and can be dropped.
			}
			sv.simplified[i] = cls[:j]
			i++
		}
		sv.simplified = sv.simplified[:i]
	}
	sv.sourceVars = make([]sourceVar, 0, len(vars))
	for v, assn := range vars {
		sv.sourceVars = append(sv.sourceVars, sourceVar{v: v, assn: assn})
	}
	sort.Slice(sv.sourceVars, func(i, j int) bool {
		return sv.sourceVars[i].v < sv.sourceVars[j].v
	})
	return &sv
}

func dpAbs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func (sv *dpCore) solve() bool {
	switch sv.simpleSat {
	case assnTrue:
		return true
	case assnFalse:
		return false
	}
	for {
		lit, ok := sv.popUnassigned()
		if !ok {
			return true
		}
		v := lit >> 1
		if sv.assignments[v] != unassigned {
			// The var was fixed by an implication after this
			// literal entered the queue.
			continue
		}
		sv.deleteUnassigned(lit ^ 1)
		sv.assignments[v] = lit.assn()
		sv.decisions = append(sv.decisions, decision{
			implicationIdx: len(sv.implications),
			lit:            lit,
		})
		sv.propIndex = len(sv.implications)
		sv.implications = append(sv.implications, lit)

		for !sv.bcp() {
			if !sv.resolveConflict() {
				return false
			}
		}
	}
}

// valueOf reports the assignment of a source variable after a successful
// solve. Vars absent from the problem default to false.
func (sv *dpCore) valueOf(v int) bool {
	i := sort.Search(len(sv.sourceVars), func(i int) bool {
		return sv.sourceVars[i].v >= v
	})
	if i == len(sv.sourceVars) || sv.sourceVars[i].v != v {
		return false
	}
	assn := sv.sourceVars[i].assn
	if assn == unassigned {
		assn = sv.assignments[sv.sourceVars[i].i] & 3
	}
	return assn&3 == assnTrue
}

// bcp carries out boolean constraint propagation, finding all direct
// implications of the current state. It returns true once there are no more
// implications to make, or false on a conflict.
func (sv *dpCore) bcp() bool {
	for {
		imps := sv.implications[sv.propIndex:]
		if len(imps) == 0 {
			return true
		}
		sv.propIndex = len(sv.implications)
		for _, impliedLit := range imps {
			neg := impliedLit ^ 1
			watches := sv.watches[neg]
		watchesLoop:
			for i := 0; i < len(watches); {
				clauseIdx := watches[i]
				cls := sv.clauses[clauseIdx]
				// Put the false literal at lits[1] and the other
				// watch literal at lits[0].
				if cls.lits[0] == neg {
					cls.lits[0], cls.lits[1] = cls.lits[1], cls.lits[0]
				} else if cls.lits[1] != neg {
					panic("bad watch var state")
				}
				lit0 := cls.lits[0]
				if sv.assignments[lit0>>1]&3 == lit0.assn() {
					// Clause is already satisfied by the other
					// watch; leave it alone.
					i++
					continue
				}
				// Look for a replacement watch.
				for j := 2; j < len(cls.lits); j++ {
					lit := cls.lits[j]
					assn := sv.assignments[lit>>1] & 3
					if assn == lit.assn().inv() {
						// Literal is false already.
						continue
					}
					sv.watches[lit] = append(sv.watches[lit], clauseIdx)
					if assn == unassigned {
						sv.updateUnassigned(lit)
					}
					// Remove from the neg watch list.
					watches[i], watches[len(watches)-1] = watches[len(watches)-1], watches[i]
					watches = watches[:len(watches)-1]
					sv.watches[neg] = watches
					cls.lits[1], cls.lits[j] = cls.lits[j], cls.lits[1]
					continue watchesLoop
				}
				i++
				// Either a unit clause with the other watch literal
				// implied, or already unsatisfiable if that literal
				// is false.
				otherWatch := cls.lits[0]
				v := int(otherWatch >> 1)
				if sv.assignments[v] != unassigned {
					return false
				}
				sv.assignments[v] = otherWatch.assn()
				sv.deleteUnassigned(otherWatch)
				sv.deleteUnassigned(otherWatch ^ 1)
				sv.implications = append(sv.implications, otherWatch)
			}
		}
	}
}

// resolveConflict tries to fix the current conflict by flipping the most
// recently made decision that hasn't been tried both ways.
func (sv *dpCore) resolveConflict() bool {
	di := -1
	var d decision
	for i := len(sv.decisions) - 1; i >= 0; i-- {
		d = sv.decisions[i]
		if sv.assignments[d.lit>>1]&4 == 0 {
			di = i
			break
		}
	}
	if di == -1 {
		return false // not satisfiable
	}
	// Flip d's assignment and roll back the invalidated implications.
	for i := len(sv.implications) - 1; i > d.implicationIdx; i-- {
		lit := sv.implications[i]
		sv.pushUnassigned(lit)
		sv.pushUnassigned(lit ^ 1)
		sv.assignments[lit>>1] = unassigned
	}
	sv.implications = sv.implications[:d.implicationIdx+1]
	sv.implications[len(sv.implications)-1] ^= 1
	sv.decisions = sv.decisions[:di+1]
	sv.decisions[di].lit ^= 1
	sv.assignments[d.lit>>1] ^= 7 // flip bits 0 and 1, set bit 2
	sv.propIndex = d.implicationIdx
	return true
}

type litHeap struct {
	watches [][]int // reference to parent watches
	lits    []litHeapItem
	m       map[dpLit]int // literal -> index in lits
}

type litHeapItem struct {
	lit dpLit
	i   int
}

func (h *litHeap) Len() int { return len(h.lits) }

func (h *litHeap) Less(i, j int) bool {
	lit0, lit1 := h.lits[i].lit, h.lits[j].lit
	return len(h.watches[lit0]) > len(h.watches[lit1])
}

func (h *litHeap) Swap(i, j int) {
	e0, e1 := h.lits[i], h.lits[j]
	e0.i = j
	e1.i = i
	h.lits[i] = e1
	h.lits[j] = e0
	h.m[e0.lit] = j
	h.m[e1.lit] = i
}

func (h *litHeap) Push(x interface{}) {
	elt := x.(litHeapItem)
	h.m[elt.lit] = len(h.lits)
	elt.i = len(h.lits)
	h.lits = append(h.lits, elt)
}

func (h *litHeap) Pop() interface{} {
	elt := h.lits[len(h.lits)-1]
	h.lits = h.lits[:len(h.lits)-1]
	elt.i = -1
	delete(h.m, elt.lit)
	return elt
}

func (sv *dpCore) pushUnassigned(lit dpLit) {
	if _, ok := sv.unassigned.m[lit]; ok {
		return
	}
	heap.Push(&sv.unassigned, litHeapItem{lit: lit})
}

func (sv *dpCore) popUnassigned() (dpLit, bool) {
	if len(sv.unassigned.lits) == 0 {
		return 0, false
	}
	e := heap.Pop(&sv.unassigned).(litHeapItem)
	return e.lit, true
}

func (sv *dpCore) deleteUnassigned(lit dpLit) {
	if i, ok := sv.unassigned.m[lit]; ok {
		heap.Remove(&sv.unassigned, i)
	}
}

func (sv *dpCore) updateUnassigned(lit dpLit) {
	if i, ok := sv.unassigned.m[lit]; ok {
		heap.Fix(&sv.unassigned, i)
	} else {
		heap.Push(&sv.unassigned, litHeapItem{lit: lit})
	}
}
