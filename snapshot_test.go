package sunday

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDimacsSnapshots(t *testing.T) {
	dir := t.TempDir()
	opts := DefaultOptions()
	opts.DimacsDir = dir
	res, _ := search(t, opts, "f(f(X)) = X", "f(a) != a")
	require.Equal(t, Satisfiable, res.Outcome)
	require.Equal(t, 2, res.Size)

	// One snapshot per round, each a parseable CNF.
	for _, name := range []string{"size-001.cnf", "size-002.cnf"} {
		f, err := os.Open(filepath.Join(dir, name))
		require.NoError(t, err)
		clauses, numVars, err := ParseDIMACS(f)
		f.Close()
		require.NoError(t, err)
		require.NotEmpty(t, clauses)
		require.Greater(t, numVars, 1)
	}
}
