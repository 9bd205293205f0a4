// Package sunday implements a finite model finder for first-order logic
// with equality. Given a set of clauses, it searches for a finite
// interpretation (a domain of size n and concrete tables for every function
// and predicate symbol) satisfying all of them. The search reduces "is there
// a model of size n?" to propositional satisfiability, hands the encoding to
// a SAT backend (see the sat subpackage), and increments n until a model is
// found, an upper bound on the model size is reached, or resources run out.
package sunday

import (
	"strconv"
	"strings"
)

// FuncSym is a function symbol. Arity 0 means a constant.
type FuncSym struct {
	Name  string
	Arity int
}

// PredSym is a predicate symbol. Arity 0 means a propositional atom.
type PredSym struct {
	Name  string
	Arity int
}

// Signature holds the function and predicate symbols of a problem. Symbols
// are addressed by dense indices assigned in first-occurrence order.
// Function and predicate names live in separate namespaces.
type Signature struct {
	funcs   []FuncSym
	preds   []PredSym
	funcIdx map[string]int
	predIdx map[string]int
}

func NewSignature() *Signature {
	return &Signature{
		funcIdx: make(map[string]int),
		predIdx: make(map[string]int),
	}
}

func (sg *Signature) NumFuncs() int      { return len(sg.funcs) }
func (sg *Signature) NumPreds() int      { return len(sg.preds) }
func (sg *Signature) Func(i int) FuncSym { return sg.funcs[i] }
func (sg *Signature) Pred(i int) PredSym { return sg.preds[i] }

// Constants returns the indices of the nullary function symbols in
// occurrence order.
func (sg *Signature) Constants() []int {
	var cs []int
	for i, f := range sg.funcs {
		if f.Arity == 0 {
			cs = append(cs, i)
		}
	}
	return cs
}

// FuncID returns the index for the named function symbol, registering it if
// it has not been seen. Using one name at two different arities is reported
// by returning ok=false.
func (sg *Signature) FuncID(name string, arity int) (int, bool) {
	if i, ok := sg.funcIdx[name]; ok {
		return i, sg.funcs[i].Arity == arity
	}
	i := len(sg.funcs)
	sg.funcs = append(sg.funcs, FuncSym{Name: name, Arity: arity})
	sg.funcIdx[name] = i
	return i, true
}

// PredID is the predicate analogue of FuncID.
func (sg *Signature) PredID(name string, arity int) (int, bool) {
	if i, ok := sg.predIdx[name]; ok {
		return i, sg.preds[i].Arity == arity
	}
	i := len(sg.preds)
	sg.preds = append(sg.preds, PredSym{Name: name, Arity: arity})
	sg.predIdx[name] = i
	return i, true
}

// Term is a first-order term: either a variable or a function symbol applied
// to argument terms. Variables are clause-local dense indices.
type Term struct {
	Var  int // variable index; meaningful only when Fn < 0
	Fn   int // function symbol index; < 0 for a variable
	Args []Term
}

// V returns a variable term.
func V(i int) Term { return Term{Var: i, Fn: -1} }

// App returns an application of function symbol fn to args.
func App(fn int, args ...Term) Term { return Term{Fn: fn, Args: args} }

func (t Term) IsVar() bool { return t.Fn < 0 }

// Literal is a possibly negated equation or predicate atom over terms.
type Literal struct {
	Pos  bool
	Eq   bool
	L, R Term   // equation sides when Eq
	Pred int    // predicate symbol when !Eq
	Args []Term // predicate arguments when !Eq
}

// Clause is a disjunction of literals; variables are clause-local and dense
// in [0, NumVars).
type Clause struct {
	Lits    []Literal
	NumVars int
	// Names carries the source spelling of each variable when the clause
	// came from the parser; used only for diagnostics.
	Names []string
}

func (c Clause) varName(i int) string {
	if i < len(c.Names) {
		return c.Names[i]
	}
	return "X" + strconv.Itoa(i)
}

func (t Term) format(sg *Signature, c *Clause) string {
	if t.IsVar() {
		return c.varName(t.Var)
	}
	f := sg.Func(t.Fn)
	if len(t.Args) == 0 {
		return f.Name
	}
	parts := make([]string, len(t.Args))
	for i, a := range t.Args {
		parts[i] = a.format(sg, c)
	}
	return f.Name + "(" + strings.Join(parts, ",") + ")"
}

// Format renders the clause in the input syntax.
func (c Clause) Format(sg *Signature) string {
	if len(c.Lits) == 0 {
		return "$false"
	}
	parts := make([]string, len(c.Lits))
	for i, l := range c.Lits {
		parts[i] = l.format(sg, &c)
	}
	return strings.Join(parts, " | ")
}

func (l Literal) format(sg *Signature, c *Clause) string {
	if l.Eq {
		op := " = "
		if !l.Pos {
			op = " != "
		}
		return l.L.format(sg, c) + op + l.R.format(sg, c)
	}
	var b strings.Builder
	if !l.Pos {
		b.WriteByte('~')
	}
	b.WriteString(sg.Pred(l.Pred).Name)
	if len(l.Args) > 0 {
		b.WriteByte('(')
		for i, a := range l.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.format(sg, c))
		}
		b.WriteByte(')')
	}
	return b.String()
}
