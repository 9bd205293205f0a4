package sunday

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var cmpGrounded = cmp.AllowUnexported(groundedTerm{})

func orderFor(t *testing.T, opts Options, lines ...string) (*prepared, *sortedSignature, *symbolOrder) {
	t.Helper()
	sg, clauses := parseLines(t, lines...)
	opts = opts.withDefaults()
	prep := prepare(sg, clauses)
	require.False(t, prep.emptyClause)
	ss := inferSorts(prep)
	return prep, ss, newSymbolOrder(prep, ss, clauses, opts)
}

// rangeSort finds the sort the named function ranges into.
func rangeSort(t *testing.T, prep *prepared, ss *sortedSignature, name string) int {
	t.Helper()
	for f := 0; f < prep.sig.NumFuncs(); f++ {
		if prep.sig.Func(f).Name == name {
			return ss.funcSort[f][0]
		}
	}
	t.Fatalf("no function %q", name)
	return -1
}

func TestWidgetOrders(t *testing.T) {
	// Two unary functions over one sort, no constants: f is symbol 0,
	// g symbol 1.
	const problem = "f(X) = Y | g(X) = Y"
	for _, tt := range []struct {
		order WidgetOrder
		n     int
		want  []groundedTerm
	}{
		{FunctionFirst, 2, []groundedTerm{{0, 1}, {0, 2}, {1, 1}, {1, 2}}},
		{ArgumentFirst, 2, []groundedTerm{{0, 1}, {1, 1}, {0, 2}, {1, 2}}},
		// Diagonal applies 1+((m+i) mod n): m=1 gives (f,2),(g,1);
		// m=2 gives (f,1),(g,2).
		{Diagonal, 2, []groundedTerm{{0, 2}, {1, 1}, {0, 1}, {1, 2}}},
	} {
		t.Run(string(tt.order), func(t *testing.T) {
			opts := DefaultOptions()
			opts.WidgetOrder = tt.order
			prep, ss, ord := orderFor(t, opts, problem)
			s := rangeSort(t, prep, ss, "f")
			got := ord.groundedTerms(s, tt.n)
			if diff := cmp.Diff(tt.want, got, cmpGrounded); diff != "" {
				t.Errorf("grounded terms mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestConstantsPrecedeWidgets(t *testing.T) {
	prep, ss, ord := orderFor(t, DefaultOptions(), "f(a) = a")
	s := rangeSort(t, prep, ss, "f")
	got := ord.groundedTerms(s, 2)
	// a is symbol 1 (f is registered first while parsing f(a)).
	want := []groundedTerm{{1, 0}, {0, 1}, {0, 2}}
	if diff := cmp.Diff(want, got, cmpGrounded); diff != "" {
		t.Errorf("grounded terms mismatch (-want +got):\n%s", diff)
	}
}

func TestSkipRule(t *testing.T) {
	// Merged constants bound their sort at 1, so at n = 2 no symbol of
	// that sort can reach the 2nd value and the list is empty.
	prep, ss, ord := orderFor(t, DefaultOptions(), "a = b")
	s := rangeSort(t, prep, ss, "a")
	require.Empty(t, ord.groundedTerms(s, 2))
	require.Len(t, ord.groundedTerms(s, 1), 2)
}

func TestUsageOrdering(t *testing.T) {
	lines := []string{
		"f(X) = Y | g(X) = Y",
		"g(X) = Y | X = Y",
	}
	occ, ssOcc, ordOcc := orderFor(t, DefaultOptions(), lines...)
	s := rangeSort(t, occ, ssOcc, "f")
	require.Equal(t, []int{0, 1}, ordOcc.functions[s]) // f before g

	opts := DefaultOptions()
	opts.SymbolOrder = Usage
	used, ssUsed, ordUsed := orderFor(t, opts, lines...)
	s = rangeSort(t, used, ssUsed, "f")
	require.Equal(t, []int{1, 0}, ordUsed.functions[s]) // g used twice
}

func TestPreprocessedUsageCountsDefinitions(t *testing.T) {
	// Flattening f(g(X)) = X introduces an extra g definition literal, so
	// preprocessed usage sees g twice but input usage sees each once.
	lines := []string{
		"f(g(X)) = X | g(X) != X",
	}
	opts := DefaultOptions()
	opts.SymbolOrder = PreprocessedUsage
	prep, ss, ord := orderFor(t, opts, lines...)
	s := rangeSort(t, prep, ss, "f")
	require.Equal(t, []int{1, 0}, ord.functions[s]) // g (2 heads) before f (1)
}
