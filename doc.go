/*
Package argot implements a declarative command-line argument parser
and dispatcher. Arguments are described up front as positionals,
options and flags; commands tie them together into a tree with
subcommands; parsing resolves a token list against that tree into a
namespace of typed values, collecting position-aware diagnostics along
the way.

# Arguments

Three argument kinds exist. A Positional is identified by its place on
the command line. An Option is identified by one of its aliases and
consumes one or more values. A Flag is a presence toggle and takes no
value. All three are built with constructors and functional options:

	file := argot.MustPositional("file")
	count := argot.MustOption("-c --count",
	        argot.WithType(argot.ToInt), argot.WithDefault(1))
	verbose := argot.MustFlag("--verbose")

Aliases are given as a whitespace-separated list; both "-c" short and
"--count" long forms are accepted, and every alias of a modifier is
interchangeable.

# Arity

How many values an argument consumes is its arity: Single (the
default), Optional, ZeroOrMore, OneOrMore, Fixed(n) or Remainder.
Remainder is positional-only, must come last, and swallows every
remaining token verbatim, dash-led ones included.

# Values

Raw values pass through a Converter (ToString by default; ToInt,
ToFloat, ToBool, ToDuration and ToTime are provided, and any function
of the Converter shape works). WithChoices restricts the converted
values, WithDefault supplies the value materialized when the argument
is absent. Option values may be given spaced ("--count 3") or inline
("--count=3"); inline tails split into multiple values on the platform
path-list separator, ":" or ",".

# Commands

New builds a command node from its arguments; Subcommand attaches
children. A node with subcommands routes the first non-modifier token
to the matching child and therefore has no positionals of its own.
Parsing starts from Parse (a token list), ParseString (a shell-style
line) or ParseArgs (the process arguments) and yields a Namespace of
resolved values.

Conventional "-h --help" and "-v --version" flags are injected
automatically unless their aliases are taken; both delegate to the
node's Presenter, which applications may replace.

# Faults

Every diagnostic is a Fault with a code, a message naming the ordinal
token position, and often a hint (unknown names come with a "did you
mean" suggestion). Recoverable faults are warnings and ride along on
the Namespace; the rest accumulate and surface once, at the end of the
pass, as a single *BadExit error. In shell mode (ShellMode) warnings
print as they are delivered and exceptions print after a help render,
followed by a process exit. DeferFaults buffers everything for bulk
inspection instead.

# Callbacks

Bind attaches a callback to an argument, invoked with the resolved
values after the whole command line was consumed, in declaration
order. NoWait moves the invocation to the moment the argument is
resolved, Terminator ends the pass right after it, Standalone rejects
any other input in the same invocation, and Helper combines the three
for help-like triggers.
*/
package argot
