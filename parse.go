package sunday

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/pkg/errors"
)

// ParseProblem reads a clause set in the line-based first-order CNF format:
//
//	p(X) | ~q(f(X), a)
//	f(f(X)) = X
//	f(a) != a
//
// One clause per line, literals separated by '|', '~' negates an atom,
// '='/'!=' build equations. Identifiers starting with an uppercase letter or
// underscore are variables, scoped to their clause; everything else is a
// function or predicate symbol. Lines beginning with '#' are comments.
//
// The signature is built as a side effect of parsing.
func ParseProblem(r io.Reader) (*Signature, []Clause, error) {
	sg := NewSignature()
	var clauses []Clause
	s := bufio.NewScanner(r)
	lineno := 0
	for s.Scan() {
		lineno++
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == '#' {
			continue
		}
		cls, err := parseClause(sg, line)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "line %d", lineno)
		}
		clauses = append(clauses, cls)
	}
	if err := s.Err(); err != nil {
		return nil, nil, err
	}
	return sg, clauses, nil
}

// ParseClause parses a single clause in the input syntax against sg.
func ParseClause(sg *Signature, text string) (Clause, error) {
	return parseClause(sg, text)
}

func parseClause(sg *Signature, line string) (Clause, error) {
	p := &parser{sg: sg, vars: make(map[string]int)}
	for _, part := range strings.Split(line, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			return Clause{}, errors.New("empty literal")
		}
		lit, err := p.literal(part)
		if err != nil {
			return Clause{}, err
		}
		p.cls.Lits = append(p.cls.Lits, lit)
	}
	p.cls.NumVars = len(p.vars)
	p.cls.Names = make([]string, len(p.vars))
	for name, i := range p.vars {
		p.cls.Names[i] = name
	}
	return p.cls, nil
}

type parser struct {
	sg   *Signature
	vars map[string]int
	cls  Clause
}

func (p *parser) literal(text string) (Literal, error) {
	pos := true
	for strings.HasPrefix(text, "~") {
		pos = !pos
		text = strings.TrimSpace(text[1:])
	}
	if i := strings.Index(text, "!="); i >= 0 {
		l, err := p.wholeTerm(text[:i])
		if err != nil {
			return Literal{}, err
		}
		r, err := p.wholeTerm(text[i+2:])
		if err != nil {
			return Literal{}, err
		}
		return Literal{Pos: !pos, Eq: true, L: l, R: r}, nil
	}
	if i := strings.Index(text, "="); i >= 0 {
		l, err := p.wholeTerm(text[:i])
		if err != nil {
			return Literal{}, err
		}
		r, err := p.wholeTerm(text[i+1:])
		if err != nil {
			return Literal{}, err
		}
		return Literal{Pos: pos, Eq: true, L: l, R: r}, nil
	}
	name, args, err := p.application(text)
	if err != nil {
		return Literal{}, err
	}
	if isVarName(name) {
		return Literal{}, errors.Errorf("variable %q cannot head an atom", name)
	}
	pred, ok := p.sg.PredID(name, len(args))
	if !ok {
		return Literal{}, errors.Errorf("predicate %q used with conflicting arities", name)
	}
	return Literal{Pos: pos, Pred: pred, Args: args}, nil
}

func (p *parser) wholeTerm(text string) (Term, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Term{}, errors.New("missing term")
	}
	t, rest, err := p.term(text)
	if err != nil {
		return Term{}, err
	}
	if strings.TrimSpace(rest) != "" {
		return Term{}, errors.Errorf("trailing input %q after term", strings.TrimSpace(rest))
	}
	return t, nil
}

// term parses a single term from the front of text and returns the
// unconsumed remainder.
func (p *parser) term(text string) (Term, string, error) {
	text = strings.TrimSpace(text)
	name, rest := ident(text)
	if name == "" {
		return Term{}, "", errors.Errorf("expected a term at %q", text)
	}
	if isVarName(name) {
		return V(p.varIndex(name)), rest, nil
	}
	var args []Term
	rest = strings.TrimSpace(rest)
	if strings.HasPrefix(rest, "(") {
		// Register the head before its arguments so that symbol indices
		// follow first-occurrence order.
		for i, depth, k := 0, 0, 1; i < len(rest); i++ {
			if c := rest[i]; c == '(' {
				depth++
			} else if c == ')' {
				depth--
			} else if c == ',' && depth == 1 {
				k++
			}
			if depth == 0 {
				p.sg.FuncID(name, k)
				break
			}
		}
		rest = rest[1:]
		for {
			arg, r, err := p.term(rest)
			if err != nil {
				return Term{}, "", err
			}
			args = append(args, arg)
			rest = strings.TrimSpace(r)
			if strings.HasPrefix(rest, ",") {
				rest = rest[1:]
				continue
			}
			if strings.HasPrefix(rest, ")") {
				rest = rest[1:]
				break
			}
			return Term{}, "", errors.Errorf("expected ',' or ')' at %q", rest)
		}
	}
	fn, ok := p.sg.FuncID(name, len(args))
	if !ok {
		return Term{}, "", errors.Errorf("function %q used with conflicting arities", name)
	}
	return App(fn, args...), rest, nil
}

// application parses name or name(args...) covering the whole of text.
func (p *parser) application(text string) (string, []Term, error) {
	text = strings.TrimSpace(text)
	name, rest := ident(text)
	if name == "" {
		return "", nil, errors.Errorf("expected an atom at %q", text)
	}
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return name, nil, nil
	}
	if !strings.HasPrefix(rest, "(") || !strings.HasSuffix(rest, ")") {
		return "", nil, errors.Errorf("malformed atom %q", text)
	}
	var args []Term
	rest = rest[1:]
	for {
		arg, r, err := p.term(rest)
		if err != nil {
			return "", nil, err
		}
		args = append(args, arg)
		rest = strings.TrimSpace(r)
		if strings.HasPrefix(rest, ",") {
			rest = rest[1:]
			continue
		}
		if rest == ")" {
			return name, args, nil
		}
		return "", nil, errors.Errorf("expected ',' or ')' at %q", rest)
	}
}

func (p *parser) varIndex(name string) int {
	if i, ok := p.vars[name]; ok {
		return i
	}
	i := len(p.vars)
	p.vars[name] = i
	return i
}

func ident(s string) (name, rest string) {
	i := 0
	for i < len(s) && isIdentByte(s[i]) {
		i++
	}
	return s[:i], s[i:]
}

func isIdentByte(b byte) bool {
	return b == '_' || b >= '0' && b <= '9' ||
		b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}

func isVarName(name string) bool {
	b := name[0]
	return b == '_' || b >= 'A' && b <= 'Z'
}

// MustParseClause is a convenience for tests and examples.
func MustParseClause(sg *Signature, text string) Clause {
	cls, err := parseClause(sg, text)
	if err != nil {
		panic(fmt.Sprintf("bad clause %q: %s", text, err))
	}
	return cls
}
