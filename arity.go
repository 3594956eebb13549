package argot

import "fmt"

type arityKind int

const (
	aritySingle arityKind = iota
	arityOptional
	arityZeroOrMore
	arityOneOrMore
	arityFixed
	arityRemainder
)

// Arity describes how many command-line values an argument consumes.
// The zero value is Single.
type Arity struct {
	kind arityKind
	n    int
}

var (
	// Single consumes exactly one value.
	Single = Arity{kind: aritySingle}

	// Optional consumes one value if present, none otherwise.
	Optional = Arity{kind: arityOptional}

	// ZeroOrMore consumes values greedily; an empty list is acceptable.
	ZeroOrMore = Arity{kind: arityZeroOrMore}

	// OneOrMore consumes values greedily and requires at least one.
	OneOrMore = Arity{kind: arityOneOrMore}

	// Remainder consumes every remaining token verbatim, dash-led
	// tokens included. Positional-only, and necessarily last.
	Remainder = Arity{kind: arityRemainder}
)

// Fixed consumes exactly n values, in order. Fixed panics for n < 1;
// use Optional or ZeroOrMore for the degenerate counts.
func Fixed(n int) Arity {
	if n < 1 {
		panic(fmt.Sprintf("argot: Fixed arity requires n >= 1, got %d", n))
	}
	return Arity{kind: arityFixed, n: n}
}

func (a Arity) String() string {
	switch a.kind {
	case aritySingle:
		return "single"
	case arityOptional:
		return "optional"
	case arityZeroOrMore:
		return "zero-or-more"
	case arityOneOrMore:
		return "one-or-more"
	case arityFixed:
		return fmt.Sprintf("fixed(%d)", a.n)
	case arityRemainder:
		return "remainder"
	}
	return "unknown"
}

// scalar reports whether the resolved value is a single element rather
// than a list.
func (a Arity) scalar() bool {
	return a.kind == aritySingle || a.kind == arityOptional
}

// greedy reports whether the arity keeps consuming as long as values
// are available.
func (a Arity) greedy() bool {
	return a.kind == arityZeroOrMore || a.kind == arityOneOrMore || a.kind == arityRemainder
}
