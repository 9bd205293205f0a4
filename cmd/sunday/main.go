// Command sunday is a finite model finder for first-order logic with
// equality.
//
// It reads a single clause set in the line-based first-order CNF format (one
// clause per line, literals separated by '|', '~' negation, '='/'!='
// equality, uppercase variables) and searches for a finite model of
// increasing size. The first output line is the verdict: SAT, UNSAT (a
// bounded refutation), TIMEOUT, or UNKNOWN. For SAT the model follows, one
// fact per line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/cespare/sunday"
	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "sunday:", err)
		os.Exit(2)
	}
}

type cliFlags struct {
	configPath    string
	backend       string
	startSize     int
	constantStart bool
	symmetryRatio float64
	widgetOrder   string
	symbolOrder   string
	useModelSize  bool
	timeout       string
	dimacsDir     string
	check         bool
	verbose       bool
}

func newRootCmd() *cobra.Command {
	var fl cliFlags
	cmd := &cobra.Command{
		Use:   "sunday [input]",
		Short: "finite model finder for first-order logic",
		Long: `Sunday searches for a finite model of a first-order clause set by
encoding "is there a model of size n?" into propositional satisfiability
and growing n until a model appears or the derived size bound refutes
the problem.

If no input file is given, sunday reads from standard input.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, args, &fl)
		},
	}
	f := cmd.Flags()
	f.StringVar(&fl.configPath, "config", "", "YAML options file")
	f.StringVar(&fl.backend, "backend", "", "SAT backend (gini, gophersat, dp)")
	f.IntVar(&fl.startSize, "start-size", 0, "initial domain size")
	f.BoolVar(&fl.constantStart, "constants-start", false, "start at the number of distinct constants")
	f.Float64Var(&fl.symmetryRatio, "symmetry-ratio", -1, "canonicity window ratio in [0,1]")
	f.StringVar(&fl.widgetOrder, "widget-order", "", "grounded-term order (function_first, argument_first, diagonal)")
	f.StringVar(&fl.symbolOrder, "symbol-order", "", "symbol order (occurrence, usage, preprocessed_usage)")
	f.BoolVar(&fl.useModelSize, "use-model-size", false, "require the top domain value to be used (arity <= 1 problems)")
	f.StringVar(&fl.timeout, "timeout", "", "wall-clock limit, e.g. 30s")
	f.StringVar(&fl.dimacsDir, "dimacs-dir", "", "write per-round DIMACS snapshots to this directory")
	f.BoolVar(&fl.check, "check", false, "re-evaluate the input clauses under the extracted model")
	f.BoolVarP(&fl.verbose, "verbose", "v", false, "debug logging")
	return cmd
}

func run(cmd *cobra.Command, args []string, fl *cliFlags) error {
	opts, err := buildOptions(cmd, fl)
	if err != nil {
		return err
	}

	var r io.Reader = os.Stdin
	if len(args) >= 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	sg, clauses, err := sunday.ParseProblem(r)
	if err != nil {
		return err
	}

	finder, err := sunday.NewFinder(sg, clauses, opts)
	if err != nil {
		// An unusable option profile is an UNKNOWN verdict, not a
		// crash.
		color.Yellow("UNKNOWN")
		fmt.Fprintln(os.Stderr, "sunday:", err)
		os.Exit(1)
		return nil
	}
	res, err := finder.Run(context.Background())
	if err != nil {
		return err
	}

	switch res.Outcome {
	case sunday.Satisfiable:
		color.Green("SAT")
		fmt.Print(res.Model)
		if fl.check {
			if res.Model.Satisfies(clauses) {
				fmt.Fprintln(os.Stderr, "check: model satisfies all input clauses")
			} else {
				return fmt.Errorf("check failed: extracted model does not satisfy the input")
			}
		}
	case sunday.Refutation:
		color.Red("UNSAT")
		fmt.Printf("no model of size <= %d (%s)\n", res.Size, res.Witness)
	case sunday.TimeLimit:
		color.Yellow("TIMEOUT")
		os.Exit(1)
	default:
		color.Yellow("UNKNOWN")
		os.Exit(1)
	}
	return nil
}

func buildOptions(cmd *cobra.Command, fl *cliFlags) (sunday.Options, error) {
	opts := sunday.DefaultOptions()
	if fl.configPath != "" {
		var err error
		if opts, err = sunday.LoadOptions(fl.configPath); err != nil {
			return sunday.Options{}, err
		}
	}
	// Explicit flags override the config file.
	if cmd.Flags().Changed("backend") {
		opts.Backend = fl.backend
	}
	if cmd.Flags().Changed("start-size") {
		opts.StartSize = fl.startSize
	}
	if cmd.Flags().Changed("constants-start") {
		opts.UseConstantsAsStart = fl.constantStart
	}
	if cmd.Flags().Changed("symmetry-ratio") {
		opts.SymmetryRatio = fl.symmetryRatio
	}
	if cmd.Flags().Changed("widget-order") {
		opts.WidgetOrder = sunday.WidgetOrder(fl.widgetOrder)
	}
	if cmd.Flags().Changed("symbol-order") {
		opts.SymbolOrder = sunday.SymbolOrderPolicy(fl.symbolOrder)
	}
	if cmd.Flags().Changed("use-model-size") {
		opts.UseModelSize = fl.useModelSize
	}
	if cmd.Flags().Changed("dimacs-dir") {
		opts.DimacsDir = fl.dimacsDir
	}
	if fl.timeout != "" {
		d, err := time.ParseDuration(fl.timeout)
		if err != nil {
			return sunday.Options{}, err
		}
		opts.Timeout = d
	}

	log := logrus.New()
	log.SetOutput(os.Stderr)
	if fl.verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	opts.Logger = log
	return opts, nil
}
