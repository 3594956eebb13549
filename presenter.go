package argot

import (
	"fmt"
	"strings"
)

// usagePresenter is the built-in Presenter. It synthesizes a usage
// line from the declared arguments and lists them by group.
type usagePresenter struct{}

func (usagePresenter) Help(c *Command) {
	w := c.out
	if c.usage != "" {
		fmt.Fprintf(w, "usage: %s\n", c.usage)
	} else {
		fmt.Fprintf(w, "usage: %s\n", synthesizeUsage(c))
	}
	if c.descr != "" {
		fmt.Fprintf(w, "\n%s\n", c.descr)
	}
	if len(c.childOrder) > 0 {
		fmt.Fprintf(w, "\ncommands:\n")
		for _, child := range c.Subcommands() {
			fmt.Fprintf(w, "  %-18s %s\n", child.name, child.descr)
		}
	}
	for pair := c.groups.Oldest(); pair != nil; pair = pair.Next() {
		lines := groupLines(pair.Value)
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s:\n", pair.Key)
		for _, line := range lines {
			fmt.Fprintf(w, "  %s\n", line)
		}
	}
}

func (usagePresenter) Version(c *Command) {
	root := c
	for root.parent != nil {
		root = root.parent
	}
	if v := c.Version(); v != "" {
		fmt.Fprintf(c.out, "%s %s\n", root.name, v)
	} else {
		fmt.Fprintf(c.out, "%s (unversioned)\n", root.name)
	}
}

func synthesizeUsage(c *Command) string {
	parts := []string{c.Path()}
	for _, item := range c.order {
		switch s := item.(type) {
		case *Option:
			if s.hidden {
				continue
			}
			parts = append(parts,
				fmt.Sprintf("[%s %s]", strings.Join(s.aliases, "|"), s.metavar))
		case *Flag:
			if s.hidden {
				continue
			}
			parts = append(parts,
				fmt.Sprintf("[%s]", strings.Join(s.aliases, "|")))
		}
	}
	for _, p := range c.positionals {
		if p.hidden {
			continue
		}
		parts = append(parts, decorate(p))
	}
	if len(c.childOrder) > 0 {
		parts = append(parts, "<command> ...")
	}
	return strings.Join(parts, " ")
}

// decorate renders a positional's slot in the usage line according to
// its arity.
func decorate(p *Positional) string {
	m := p.metavar
	switch p.arity.kind {
	case arityOptional:
		return "[" + m + "]"
	case arityZeroOrMore:
		return "[" + m + " ...]"
	case arityOneOrMore:
		return m + " [" + m + " ...]"
	case arityFixed:
		slots := make([]string, p.arity.n)
		for i := range slots {
			slots[i] = m
		}
		return strings.Join(slots, " ")
	case arityRemainder:
		return "..."
	}
	return m
}

func groupLines(members []any) []string {
	var out []string
	for _, item := range members {
		switch s := item.(type) {
		case *Positional:
			if s.hidden {
				continue
			}
			out = append(out, entry(s.metavar, s.descr, s.deprecated))
		case *Option:
			if s.hidden {
				continue
			}
			label := strings.Join(s.aliases, ", ") + " " + s.metavar
			out = append(out, entry(label, s.descr, s.deprecated))
		case *Flag:
			if s.hidden {
				continue
			}
			label := strings.Join(s.aliases, ", ")
			out = append(out, entry(label, s.descr, s.deprecated))
		}
	}
	return out
}

func entry(label, descr string, deprecated bool) string {
	if deprecated {
		descr = strings.TrimSpace(descr + " (deprecated)")
	}
	if descr == "" {
		return label
	}
	return fmt.Sprintf("%-24s %s", label, descr)
}
