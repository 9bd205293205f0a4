package sunday

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestDIMACSRoundTrip(t *testing.T) {
	clauses := [][]int{
		{1, -2, 3},
		{-1},
		{2, 4},
	}
	var b strings.Builder
	require.NoError(t, WriteDIMACS(&b, 5, clauses))
	got, numVars, err := ParseDIMACS(strings.NewReader(b.String()))
	require.NoError(t, err)
	require.Equal(t, 5, numVars)
	if diff := cmp.Diff(clauses, got); diff != "" {
		t.Errorf("clauses mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteDIMACSRejectsOutOfRange(t *testing.T) {
	var b strings.Builder
	require.Error(t, WriteDIMACS(&b, 2, [][]int{{3}}))
	require.Error(t, WriteDIMACS(&b, 2, [][]int{{0}}))
}

func TestParseDIMACS(t *testing.T) {
	for _, tt := range []struct {
		name    string
		input   string
		want    [][]int
		numVars int
		wantErr bool
	}{
		{
			name:    "standard",
			input:   "c comment\np cnf 3 2\n1 -2 0\n2 3 0\n",
			want:    [][]int{{1, -2}, {2, 3}},
			numVars: 3,
		},
		{
			name:    "no problem line",
			input:   "1 -2 0\n-4 0\n",
			want:    [][]int{{1, -2}, {-4}},
			numVars: 4,
		},
		{
			name:    "unterminated final clause",
			input:   "p cnf 2 1\n1 2\n",
			want:    [][]int{{1, 2}},
			numVars: 2,
		},
		{
			name:    "comment between clauses",
			input:   "1 0\nc mid\n2 0\n",
			want:    [][]int{{1}, {2}},
			numVars: 2,
		},
		{
			name:    "trailer",
			input:   "1 0\n%\nignored\n",
			want:    [][]int{{1}},
			numVars: 1,
		},
		{name: "var beyond declared", input: "p cnf 1 1\n2 0\n", wantErr: true},
		{name: "late problem line", input: "1 0\np cnf 2 1\n", wantErr: true},
		{name: "double problem line", input: "p cnf 1 1\np cnf 1 1\n1 0\n", wantErr: true},
		{name: "garbage literal", input: "1 x 0\n", wantErr: true},
	} {
		t.Run(tt.name, func(t *testing.T) {
			got, numVars, err := ParseDIMACS(strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.numVars, numVars)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("clauses mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
