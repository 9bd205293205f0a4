package sunday

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// WriteDIMACS serialises a CNF problem in the DIMACS format. numVars may
// exceed the largest variable appearing in the clauses; every variable must
// lie in [1, numVars].
func WriteDIMACS(w io.Writer, numVars int, clauses [][]int) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", numVars, len(clauses))
	for _, cls := range clauses {
		for _, lit := range cls {
			v := lit
			if v < 0 {
				v = -v
			}
			if v < 1 || v > numVars {
				return errors.Errorf("literal %d outside var range [1, %d]", lit, numVars)
			}
			fmt.Fprintf(bw, "%d ", lit)
		}
		fmt.Fprintln(bw, "0")
	}
	return bw.Flush()
}

// ParseDIMACS parses text in the DIMACS CNF format and returns the clauses
// and the declared (or, absent a problem line, inferred) variable count.
//
// For convenience, a few non-standard variations are accepted: comments may
// appear anywhere, not just in the preamble, and the problem line may be
// missing.
func ParseDIMACS(r io.Reader) (clauses [][]int, numVars int, err error) {
	declared := -1
	var clause []int
	s := bufio.NewScanner(r)
	for s.Scan() {
		line := strings.TrimSpace(s.Text())
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		// Some CNF formats attach a trailer after a line containing a
		// single %.
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 || len(clause) > 0 {
				return nil, 0, errors.New("problem line appears after clauses")
			}
			if declared >= 0 {
				return nil, 0, errors.New("multiple problem lines")
			}
			fields := strings.Fields(line)
			if len(fields) != 4 || fields[0] != "p" || fields[1] != "cnf" {
				return nil, 0, errors.Errorf("malformed problem line %q", line)
			}
			declared, err = strconv.Atoi(fields[2])
			if err != nil || declared < 0 {
				return nil, 0, errors.Errorf("malformed #vars in problem line %q", line)
			}
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, 0, errors.Wrap(err, "invalid literal")
			}
			if n == 0 {
				clauses = append(clauses, clause)
				clause = nil
				continue
			}
			clause = append(clause, n)
			if v := dimacsAbs(n); v > numVars {
				numVars = v
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, 0, err
	}
	if len(clause) > 0 {
		clauses = append(clauses, clause)
	}
	if declared >= 0 {
		if numVars > declared {
			return nil, 0, errors.Errorf(
				"formula contains var %d, but problem line asserts %d vars", numVars, declared)
		}
		numVars = declared
	}
	return clauses, numVars, nil
}

func dimacsAbs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
