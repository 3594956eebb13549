package argot

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Presenter renders help and version output. Rendering is deliberately
// outside the engine; the built-in presenter synthesizes a usage line
// from the declared arguments, and applications swap in their own via
// WithPresenter.
type Presenter interface {
	Help(c *Command)
	Version(c *Command)
}

// Command is one node of the dispatch tree: a set of declared
// arguments, optional subcommands, and the policies governing how
// faults are delivered. Build it with New, then parse with Parse,
// ParseString or ParseArgs. A built tree is immutable during parsing
// and safe to share between goroutines.
type Command struct {
	name    string
	descr   string
	usage   string
	version string

	positionals []*Positional
	switches    map[string]modifier
	order       []any
	groups      *orderedmap.OrderedMap[string, []any]

	conflictDecls [][]string
	conflicts     map[string]map[string]bool

	parent     *Command
	children   map[string]*Command
	childOrder []string

	shell    bool
	colorize bool
	deferred bool

	shellSet     bool
	colorSet     bool
	deferSet     bool
	presenterSet bool
	loggerSet    bool
	writerSet    bool

	handler   func(*Namespace) error
	fallback  func(error)
	presenter Presenter
	log       *slog.Logger
	out       io.Writer

	helpFlag    *Flag
	versionFlag *Flag
}

// CommandOpt configures a Command under construction.
type CommandOpt func(*Command) error

// Describe sets the one-line summary shown in help output.
func Describe(descr string) CommandOpt {
	return func(c *Command) error {
		descr = strings.TrimSpace(descr)
		if descr == "" {
			return fmt.Errorf("Describe: blank description")
		}
		c.descr = descr
		return nil
	}
}

// Usage overrides the synthesized usage line.
func Usage(usage string) CommandOpt {
	return func(c *Command) error {
		usage = strings.TrimSpace(usage)
		if usage == "" {
			return fmt.Errorf("Usage: blank usage line")
		}
		c.usage = usage
		return nil
	}
}

// Version sets the version string reported by the version flag.
func Version(v string) CommandOpt {
	return func(c *Command) error {
		c.version = strings.TrimSpace(v)
		return nil
	}
}

// Positionals declares the positional arguments, in consumption order.
// Positionals must be declared before options and flags, and a command
// hosting subcommands cannot have any.
func Positionals(ps ...*Positional) CommandOpt {
	return func(c *Command) error {
		if len(c.switches) > 0 {
			return fmt.Errorf("Positionals: positionals must be declared before options and flags")
		}
		for _, p := range ps {
			if p == nil {
				return fmt.Errorf("Positionals: nil positional")
			}
			for _, prev := range c.positionals {
				if prev.name == p.name {
					return fmt.Errorf("Positionals: duplicate positional %q", p.name)
				}
			}
			c.positionals = append(c.positionals, p)
			c.order = append(c.order, p)
			c.addToGroup(p.group, p)
		}
		return nil
	}
}

// Options declares value-taking modifiers.
func Options(opts ...*Option) CommandOpt {
	return func(c *Command) error {
		for _, o := range opts {
			if o == nil {
				return fmt.Errorf("Options: nil option")
			}
			if err := c.addSwitch(o); err != nil {
				return err
			}
		}
		return nil
	}
}

// Flags declares presence toggles.
func Flags(fs ...*Flag) CommandOpt {
	return func(c *Command) error {
		for _, f := range fs {
			if f == nil {
				return fmt.Errorf("Flags: nil flag")
			}
			if err := c.addSwitch(f); err != nil {
				return err
			}
		}
		return nil
	}
}

// Conflict declares that arguments from the named groups must not be
// combined in one invocation. At least two distinct, declared group
// names are required; the relation is symmetric. Conflict may be
// repeated for independent sets.
func Conflict(groups ...string) CommandOpt {
	return func(c *Command) error {
		c.conflictDecls = append(c.conflictDecls, groups)
		return nil
	}
}

// Handler sets the callback invoked with the final namespace after a
// clean parse of this node.
func Handler(fn func(*Namespace) error) CommandOpt {
	return func(c *Command) error {
		if fn == nil {
			return fmt.Errorf("Handler: nil handler")
		}
		if c.handler != nil {
			return fmt.Errorf("Handler: handler already set")
		}
		c.handler = fn
		return nil
	}
}

// ShellMode makes faults terminal: warnings print to the output
// writer, exceptions print after a help render and the process exits.
// Without it faults are returned as a *BadExit error.
func ShellMode() CommandOpt {
	return func(c *Command) error {
		c.shell = true
		c.shellSet = true
		return nil
	}
}

// Colorized turns on colored shell-mode diagnostics.
func Colorized() CommandOpt {
	return func(c *Command) error {
		c.colorize = true
		c.colorSet = true
		return nil
	}
}

// DeferFaults buffers every diagnostic, warnings included, for bulk
// inspection on the returned Namespace and *BadExit instead of
// printing or exiting along the way.
func DeferFaults() CommandOpt {
	return func(c *Command) error {
		c.deferred = true
		c.deferSet = true
		return nil
	}
}

// WithPresenter replaces the built-in help/version renderer.
func WithPresenter(p Presenter) CommandOpt {
	return func(c *Command) error {
		if p == nil {
			return fmt.Errorf("WithPresenter: nil presenter")
		}
		c.presenter = p
		c.presenterSet = true
		return nil
	}
}

// WithLogger installs a structured logger for parse-phase debugging.
// The default logger discards everything.
func WithLogger(l *slog.Logger) CommandOpt {
	return func(c *Command) error {
		if l == nil {
			return fmt.Errorf("WithLogger: nil logger")
		}
		c.log = l
		c.loggerSet = true
		return nil
	}
}

// WithOutput redirects diagnostics and built-in help output, which go
// to stderr otherwise.
func WithOutput(w io.Writer) CommandOpt {
	return func(c *Command) error {
		if w == nil {
			return fmt.Errorf("WithOutput: nil writer")
		}
		c.out = w
		c.writerSet = true
		return nil
	}
}

// New builds a command node. Construction problems are aggregated, so
// one call reports every defect in the declaration.
func New(name string, opts ...CommandOpt) (*Command, error) {
	c := &Command{
		name:      strings.TrimSpace(name),
		switches:  make(map[string]modifier),
		groups:    orderedmap.New[string, []any](),
		children:  make(map[string]*Command),
		out:       os.Stderr,
		presenter: usagePresenter{},
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	var errs *multierror.Error
	if !namePattern.MatchString(c.name) {
		errs = multierror.Append(errs, fmt.Errorf("invalid command name %q", name))
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	c.injectHelpers()
	if err := c.validate(); err != nil {
		errs = multierror.Append(errs, err)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("argot: command %q: %w", name, err)
	}
	return c, nil
}

// MustNew is New panicking on error, for declarations known to be
// well-formed.
func MustNew(name string, opts ...CommandOpt) *Command {
	c, err := New(name, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Subcommand builds a child node and attaches it. The child inherits
// the parent's shell, color, defer, presenter, logger and output
// settings unless its own options override them. A node with
// positionals cannot host subcommands.
func (c *Command) Subcommand(name string, opts ...CommandOpt) (*Command, error) {
	if len(c.positionals) > 0 {
		return nil, fmt.Errorf("argot: command %q: a node with positionals cannot host subcommands", c.name)
	}
	child, err := New(name, opts...)
	if err != nil {
		return nil, err
	}
	if _, dup := c.children[child.name]; dup {
		return nil, fmt.Errorf("argot: command %q: duplicate subcommand %q", c.name, child.name)
	}
	child.parent = c
	if !child.shellSet {
		child.shell = c.shell
	}
	if !child.colorSet {
		child.colorize = c.colorize
	}
	if !child.deferSet {
		child.deferred = c.deferred
	}
	if !child.presenterSet {
		child.presenter = c.presenter
	}
	if !child.loggerSet {
		child.log = c.log
	}
	if !child.writerSet {
		child.out = c.out
	}
	c.children[child.name] = child
	c.childOrder = append(c.childOrder, child.name)
	return child, nil
}

// MustSubcommand is Subcommand panicking on error.
func (c *Command) MustSubcommand(name string, opts ...CommandOpt) *Command {
	child, err := c.Subcommand(name, opts...)
	if err != nil {
		panic(err)
	}
	return child
}

// Fallback installs a hook that consumes the aggregated fault instead
// of it being returned (or, in shell mode, printed and exited on).
// Single assignment.
func (c *Command) Fallback(fn func(error)) error {
	if fn == nil {
		return fmt.Errorf("argot: command %q: nil fallback", c.name)
	}
	if c.fallback != nil {
		return fmt.Errorf("argot: command %q: fallback already set", c.name)
	}
	c.fallback = fn
	return nil
}

// Name returns the node's name.
func (c *Command) Name() string { return c.name }

// Description returns the one-line summary.
func (c *Command) Description() string { return c.descr }

// Version returns the declared version string, walking up to the root
// when this node has none.
func (c *Command) Version() string {
	for n := c; n != nil; n = n.parent {
		if n.version != "" {
			return n.version
		}
	}
	return ""
}

// Path returns the space-joined route from the root to this node.
func (c *Command) Path() string {
	if c.parent == nil {
		return c.name
	}
	return c.parent.Path() + " " + c.name
}

// Subcommands returns the children in declaration order.
func (c *Command) Subcommands() []*Command {
	out := make([]*Command, 0, len(c.childOrder))
	for _, name := range c.childOrder {
		out = append(out, c.children[name])
	}
	return out
}

// Output returns the writer diagnostics and built-in help go to.
func (c *Command) Output() io.Writer { return c.out }

func (c *Command) addSwitch(m modifier) error {
	core := m.core()
	for _, alias := range core.aliases {
		if _, taken := c.switches[alias]; taken {
			return fmt.Errorf("alias %q already declared", alias)
		}
	}
	for _, alias := range core.aliases {
		c.switches[alias] = m
	}
	c.order = append(c.order, m)
	c.addToGroup(core.group, m)
	return nil
}

func (c *Command) addToGroup(group string, spec any) {
	members, _ := c.groups.Get(group)
	c.groups.Set(group, append(members, spec))
}

// injectHelpers adds the conventional help and version triggers when
// their aliases are free.
func (c *Command) injectHelpers() {
	_, h := c.switches["-h"]
	_, hh := c.switches["--help"]
	if !h && !hh {
		help := MustFlag("-h --help", Helper(),
			WithDescr("show this help message"))
		_ = help.Bind(func() error {
			c.presenter.Help(c)
			return nil
		})
		_ = c.addSwitch(help)
		c.helpFlag = help
	}
	_, v := c.switches["-v"]
	_, vv := c.switches["--version"]
	if !v && !vv {
		version := MustFlag("-v --version", Helper(),
			WithDescr("show the version and exit"))
		_ = version.Bind(func() error {
			c.presenter.Version(c)
			return nil
		})
		_ = c.addSwitch(version)
		c.versionFlag = version
	}
}

func (c *Command) validate() error {
	var errs *multierror.Error

	for i, p := range c.positionals {
		if p.arity == Remainder && i != len(c.positionals)-1 {
			errs = multierror.Append(errs,
				fmt.Errorf("remainder positional %q must be last", p.name))
		}
		if i > 0 {
			prev := c.positionals[i-1]
			if prev.hidden && !p.hidden {
				errs = multierror.Append(errs,
					fmt.Errorf("hidden positional %q cannot precede visible %q", prev.name, p.name))
			}
			if prev.deprecated && !p.deprecated {
				errs = multierror.Append(errs,
					fmt.Errorf("deprecated positional %q cannot precede current %q", prev.name, p.name))
			}
		}
	}

	c.conflicts = make(map[string]map[string]bool)
	for _, decl := range c.conflictDecls {
		if err := c.compileConflict(decl); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

func (c *Command) compileConflict(groups []string) error {
	if len(groups) < 2 {
		return fmt.Errorf("Conflict: needs at least two groups, got %d", len(groups))
	}
	seen := make(map[string]bool, len(groups))
	for _, g := range groups {
		if seen[g] {
			return fmt.Errorf("Conflict: group %q repeated", g)
		}
		seen[g] = true
		if _, declared := c.groups.Get(g); !declared {
			return fmt.Errorf("Conflict: unknown group %q", g)
		}
	}
	for _, g := range groups {
		if c.conflicts[g] == nil {
			c.conflicts[g] = make(map[string]bool)
		}
		for _, h := range groups {
			if g != h {
				c.conflicts[g][h] = true
			}
		}
	}
	return nil
}

// visibleAliases returns the declared aliases eligible for
// suggestions. Hidden modifiers stay hidden.
func (c *Command) visibleAliases() []string {
	var out []string
	for alias, m := range c.switches {
		if !m.core().hidden {
			out = append(out, alias)
		}
	}
	return out
}
