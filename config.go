package sunday

import (
	"io"
	"os"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// WidgetOrder selects how grounded terms are enumerated per sort when
// building symmetry-breaking constraints.
type WidgetOrder string

const (
	// FunctionFirst emits all indices of one function before moving to
	// the next function.
	FunctionFirst WidgetOrder = "function_first"
	// ArgumentFirst emits every function at index m before moving to m+1.
	ArgumentFirst WidgetOrder = "argument_first"
	// Diagonal staggers the index by the function's position in the
	// sort's function list.
	Diagonal WidgetOrder = "diagonal"
)

// SymbolOrderPolicy selects how the functions of a sort are ordered before
// widget enumeration.
type SymbolOrderPolicy string

const (
	// Occurrence preserves signature occurrence order.
	Occurrence SymbolOrderPolicy = "occurrence"
	// Usage orders by descending head-occurrence count in the input
	// clauses.
	Usage SymbolOrderPolicy = "usage"
	// PreprocessedUsage orders by descending head-occurrence count in the
	// flat clauses, where flattening has multiplied definition literals.
	PreprocessedUsage SymbolOrderPolicy = "preprocessed_usage"
)

// Options configures a Finder. The zero value is usable: size 1 start, gini
// backend, occurrence symbol order, function-first widgets, and no
// canonicity constraints (ratio 0). DefaultOptions additionally turns the
// canonicity window all the way up.
type Options struct {
	// StartSize is the first candidate domain size; 0 means 1.
	StartSize int `yaml:"start_size"`
	// UseConstantsAsStart starts at the number of distinct constants
	// instead of StartSize.
	UseConstantsAsStart bool `yaml:"use_constants_as_start"`
	// SymmetryRatio in [0,1] scales the canonicity window; 0 disables
	// canonicity clauses entirely.
	SymmetryRatio float64           `yaml:"symmetry_ratio"`
	WidgetOrder   WidgetOrder       `yaml:"widget_order"`
	SymbolOrder   SymbolOrderPolicy `yaml:"symbol_order"`
	// Backend names the SAT engine; see sat.Backends.
	Backend string `yaml:"backend"`
	// UseModelSize adds the clause requiring the top domain value to be
	// taken somewhere, when every function has arity <= 1.
	UseModelSize bool `yaml:"use_model_size"`
	// Timeout bounds the whole search; 0 means no limit.
	Timeout time.Duration `yaml:"timeout"`
	// DimacsDir, when set, receives a DIMACS snapshot of each round's
	// propositional problem.
	DimacsDir string `yaml:"dimacs_dir"`

	Logger logrus.FieldLogger `yaml:"-"`
}

// DefaultOptions returns the options the CLI starts from.
func DefaultOptions() Options {
	return Options{
		StartSize:     1,
		SymmetryRatio: 1.0,
		WidgetOrder:   FunctionFirst,
		SymbolOrder:   Occurrence,
		Backend:       "gini",
	}
}

// LoadOptions reads YAML options from path on top of the defaults.
func LoadOptions(path string) (Options, error) {
	f, err := os.Open(path)
	if err != nil {
		return Options{}, err
	}
	defer f.Close()
	return ReadOptions(f)
}

// ReadOptions reads YAML options from r on top of the defaults.
func ReadOptions(r io.Reader) (Options, error) {
	opts := DefaultOptions()
	data, err := io.ReadAll(r)
	if err != nil {
		return Options{}, err
	}
	if err := yaml.Unmarshal(data, &opts); err != nil {
		return Options{}, errors.Wrap(err, "parsing options")
	}
	return opts, nil
}

func (o Options) withDefaults() Options {
	if o.StartSize <= 0 {
		o.StartSize = 1
	}
	if o.WidgetOrder == "" {
		o.WidgetOrder = FunctionFirst
	}
	if o.SymbolOrder == "" {
		o.SymbolOrder = Occurrence
	}
	if o.Backend == "" {
		o.Backend = "gini"
	}
	if o.Logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		o.Logger = l
	}
	return o
}

func (o Options) validate() error {
	if o.SymmetryRatio < 0 || o.SymmetryRatio > 1 {
		return errors.Errorf("symmetry ratio %v outside [0,1]", o.SymmetryRatio)
	}
	switch o.WidgetOrder {
	case FunctionFirst, ArgumentFirst, Diagonal:
	default:
		return errors.Errorf("unknown widget order %q", o.WidgetOrder)
	}
	switch o.SymbolOrder {
	case Occurrence, Usage, PreprocessedUsage:
	default:
		return errors.Errorf("unknown symbol order %q", o.SymbolOrder)
	}
	return nil
}
