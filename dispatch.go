package argot

import (
	"fmt"
	"os"
	"strings"

	"github.com/google/shlex"
)

// exitFunc is the shell-mode exit seam, replaceable in tests.
var exitFunc = os.Exit

// Parse runs the command against an explicit token list. Tokens are
// trimmed and blank ones dropped before parsing. The returned error is
// a *BadExit carrying every accumulated exception, the handler's
// error, or nil.
func (c *Command) Parse(tokens []string) (*Namespace, error) {
	return c.run(sanitize(tokens), 1)
}

// ParseString tokenizes a shell-style command line (quoting and
// escaping included) and parses it.
func (c *Command) ParseString(line string) (*Namespace, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, fmt.Errorf("argot: tokenizing %q: %w", line, err)
	}
	return c.Parse(tokens)
}

// ParseArgs parses the process arguments.
func (c *Command) ParseArgs() (*Namespace, error) {
	return c.Parse(os.Args[1:])
}

func sanitize(tokens []string) []string {
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		t = strings.TrimSpace(t)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}
