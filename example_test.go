package sunday_test

import (
	"context"
	"fmt"
	"strings"

	"github.com/cespare/sunday"
)

func Example() {
	// Problem: f maps its own fixpoint; a single element suffices.
	input := `
f(a) = a
`
	sg, clauses, err := sunday.ParseProblem(strings.NewReader(input))
	if err != nil {
		fmt.Println("parse error:", err)
		return
	}
	finder, err := sunday.NewFinder(sg, clauses, sunday.DefaultOptions())
	if err != nil {
		fmt.Println("setup error:", err)
		return
	}
	res, err := finder.Run(context.Background())
	if err != nil {
		fmt.Println("search error:", err)
		return
	}
	fmt.Println(res.Outcome)
	fmt.Print(res.Model)
	// Output:
	// SATISFIABLE
	// domain size 1
	// a = 1
	// f(1) = 1
}
