package argot

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// FaultCode identifies a parsing diagnostic. Codes below the warning
// range abort the invocation; warning codes are recoverable.
type FaultCode int

const (
	// Exceptions.
	MalformedToken FaultCode = iota + 1
	UnknownModifier
	FlagTakesNoParam
	UnknownCommand
	UnknownSubcommand
	UnexpectedPositional
	DuplicateModifier
	InlineParamRequired
	MissingParam
	AtLeastOneParamRequired
	NotEnoughParams
	TooManyInlineParams
	UncastableParam
	InvalidChoice
	ConflictingGroup
	StandaloneOnly
	UnparsedInput
	MissingPositional
	CallbackError

	// Warnings.
	EmptyInlineParam
	DeprecatedArgument
	ExternalConverterWarning
)

var faultLabels = map[FaultCode]string{
	MalformedToken:           "malformed-token",
	UnknownModifier:          "unknown-modifier",
	FlagTakesNoParam:         "flag-takes-no-param",
	UnknownCommand:           "unknown-command",
	UnknownSubcommand:        "unknown-subcommand",
	UnexpectedPositional:     "unexpected-positional",
	DuplicateModifier:        "duplicate-modifier",
	InlineParamRequired:      "inline-param-required",
	MissingParam:             "missing-param",
	AtLeastOneParamRequired:  "at-least-one-param-required",
	NotEnoughParams:          "not-enough-params",
	TooManyInlineParams:      "too-many-inline-params",
	UncastableParam:          "uncastable-param",
	InvalidChoice:            "invalid-choice",
	ConflictingGroup:         "conflicting-group",
	StandaloneOnly:           "standalone-only",
	UnparsedInput:            "unparsed-input",
	MissingPositional:        "missing-positional",
	CallbackError:            "callback-error",
	EmptyInlineParam:         "empty-inline-param",
	DeprecatedArgument:       "deprecated-argument",
	ExternalConverterWarning: "external-converter-warning",
}

func (c FaultCode) String() string {
	if s, ok := faultLabels[c]; ok {
		return s
	}
	return fmt.Sprintf("fault(%d)", int(c))
}

// Warning reports whether the code is recoverable.
func (c FaultCode) Warning() bool { return c >= EmptyInlineParam }

// Fault is one diagnostic produced while parsing: what went wrong,
// where on the command line, and optionally how to fix it. Origin is
// the *Positional, *Option or *Flag the fault is about, when there is
// one.
type Fault struct {
	Code    FaultCode
	Message string
	Hint    string
	Pos     int // 1-based token position; 0 when not tied to a token
	Input   string
	Origin  any
	Err     error
}

func (f *Fault) Error() string {
	var sb strings.Builder
	sb.WriteString(f.Code.String())
	sb.WriteString(": ")
	sb.WriteString(f.Message)
	if f.Hint != "" {
		sb.WriteString(" (")
		sb.WriteString(f.Hint)
		sb.WriteString(")")
	}
	return sb.String()
}

func (f *Fault) Unwrap() error { return f.Err }

// Warning reports whether the fault is recoverable.
func (f *Fault) Warning() bool { return f.Code.Warning() }

// BadExit aggregates every exception an invocation accumulated. It is
// the error value returned by the Parse entry points.
type BadExit struct {
	Route  string
	Faults []*Fault
}

func (e *BadExit) Error() string {
	if len(e.Faults) == 1 {
		return e.Faults[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors parsing %q:", len(e.Faults), e.Route)
	for _, f := range e.Faults {
		sb.WriteString("\n  ")
		sb.WriteString(f.Error())
	}
	return sb.String()
}

// Unwrap exposes the individual faults to errors.Is and errors.As.
func (e *BadExit) Unwrap() []error {
	errs := make([]error, len(e.Faults))
	for i, f := range e.Faults {
		errs[i] = f
	}
	return errs
}

// Has reports whether the aggregate carries a fault with the code.
func (e *BadExit) Has(code FaultCode) bool {
	for _, f := range e.Faults {
		if f.Code == code {
			return true
		}
	}
	return false
}

// faultSink accumulates diagnostics during one invocation, in the
// order they were raised.
type faultSink struct {
	faults []*Fault
}

func (s *faultSink) push(f *Fault) { s.faults = append(s.faults, f) }

func (s *faultSink) raise(code FaultCode, pos int, input, hint, format string, args ...any) {
	s.raiseFor(nil, code, pos, input, hint, format, args...)
}

func (s *faultSink) raiseFor(origin any, code FaultCode, pos int, input, hint, format string, args ...any) {
	s.push(&Fault{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Hint:    hint,
		Pos:     pos,
		Input:   input,
		Origin:  origin,
	})
}

func (s *faultSink) warnings() []*Fault {
	var out []*Fault
	for _, f := range s.faults {
		if f.Warning() {
			out = append(out, f)
		}
	}
	return out
}

func (s *faultSink) exceptions() []*Fault {
	var out []*Fault
	for _, f := range s.faults {
		if !f.Warning() {
			out = append(out, f)
		}
	}
	return out
}

// reporter prints diagnostics for shell-mode invocations.
type reporter struct {
	w        io.Writer
	colorize bool
}

func (r *reporter) paint(attrs ...color.Attribute) *color.Color {
	c := color.New(attrs...)
	if r.colorize {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func (r *reporter) warning(route string, f *Fault) {
	tag := r.paint(color.FgYellow, color.Bold).Sprint("warning")
	fmt.Fprintf(r.w, "%s: %s %s: %s\n", route, tag, f.Code, f.Message)
	if f.Hint != "" {
		fmt.Fprintf(r.w, "  %s\n", f.Hint)
	}
}

func (r *reporter) failure(route string, e *BadExit) {
	tag := r.paint(color.FgRed, color.Bold).Sprint("error")
	for _, f := range e.Faults {
		fmt.Fprintf(r.w, "%s: %s %s: %s\n", route, tag, f.Code, f.Message)
		if f.Hint != "" {
			fmt.Fprintf(r.w, "  %s\n", f.Hint)
		}
	}
}

var smallOrdinals = []string{
	"zeroth", "first", "second", "third", "fourth", "fifth",
	"sixth", "seventh", "eighth", "ninth", "tenth",
}

// ordinal spells out a 1-based position for fault messages: "first"
// through "tenth", then "11th", "22nd" and so on.
func ordinal(n int) string {
	if n >= 0 && n < len(smallOrdinals) {
		return smallOrdinals[n]
	}
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// 11th, 12th, 13th keep "th"
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}
