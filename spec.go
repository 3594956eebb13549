package argot

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// Aliases and positional names share one grammar: a letter, followed by
// words of letters and digits, optionally hyphen-joined. Aliases carry
// one or two leading dashes in addition.
var (
	aliasPattern = regexp.MustCompile(`^--?[^\W\d_](?:-?[^\W_]+)*$`)
	namePattern  = regexp.MustCompile(`^[^\W\d_](?:-?[^\W_]+)*$`)
)

// Converter turns one raw command-line value into its typed form. A
// returned error aborts the argument with an uncastable-value fault; an
// error wrapped by Advisory is reported as a warning while the returned
// value is still used.
type Converter func(raw string) (any, error)

// DefaultTimeLayout is used by ToTime when no layout is given.
const DefaultTimeLayout = "2006-01-02 15:04:05"

// ToString accepts any value verbatim. It is the default converter.
func ToString(raw string) (any, error) { return raw, nil }

// ToInt converts to int.
func ToInt(raw string) (any, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("not an integer: %q", raw)
	}
	return n, nil
}

// ToFloat converts to float64.
func ToFloat(raw string) (any, error) {
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("not a number: %q", raw)
	}
	return f, nil
}

// ToBool converts to bool, accepting the forms strconv.ParseBool does.
func ToBool(raw string) (any, error) {
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("not a boolean: %q", raw)
	}
	return b, nil
}

// ToDuration converts to time.Duration ("300ms", "1h30m", ...).
func ToDuration(raw string) (any, error) {
	d, err := time.ParseDuration(raw)
	if err != nil {
		return nil, fmt.Errorf("not a duration: %q", raw)
	}
	return d, nil
}

// ToTime returns a Converter producing time.Time values parsed with the
// given layout, or DefaultTimeLayout if layout is empty.
func ToTime(layout string) Converter {
	if layout == "" {
		layout = DefaultTimeLayout
	}
	return func(raw string) (any, error) {
		t, err := time.Parse(layout, raw)
		if err != nil {
			return nil, fmt.Errorf("not a timestamp in layout %q: %q", layout, raw)
		}
		return t, nil
	}
}

type advisoryError struct{ err error }

func (e *advisoryError) Error() string { return e.err.Error() }
func (e *advisoryError) Unwrap() error { return e.err }

// Advisory marks a converter error as non-fatal: the value returned
// alongside it is kept, and the error is delivered as a warning.
func Advisory(err error) error {
	if err == nil {
		return nil
	}
	return &advisoryError{err: err}
}

func isAdvisory(err error) bool {
	var a *advisoryError
	return errors.As(err, &a)
}

// attrs holds the descriptive properties common to every argument kind.
type attrs struct {
	group      string
	descr      string
	hidden     bool
	deprecated bool
}

// Group returns the presentation group the argument was assigned to.
func (a *attrs) Group() string { return a.group }

// Description returns the help text, if any.
func (a *attrs) Description() string { return a.descr }

// Hidden reports whether the argument is omitted from help output.
func (a *attrs) Hidden() bool { return a.hidden }

// Deprecated reports whether using the argument draws a warning.
func (a *attrs) Deprecated() bool { return a.deprecated }

// parametric holds the value-resolution properties shared by
// positionals and options.
type parametric struct {
	metavar    string
	arity      Arity
	conv       Converter
	def        any
	hasDefault bool
	choices    []any
}

// Arity returns the declared arity.
func (p *parametric) Arity() Arity { return p.arity }

// Metavar returns the display label used in usage lines.
func (p *parametric) Metavar() string { return p.metavar }

func (p *parametric) allowed(v any) bool {
	if len(p.choices) == 0 {
		return true
	}
	for _, c := range p.choices {
		if reflect.DeepEqual(c, v) {
			return true
		}
	}
	return false
}

// modifierCore holds the alias list and trigger properties shared by
// options and flags.
type modifierCore struct {
	attrs
	aliases    []string
	helper     bool
	standalone bool
	terminator bool
	nowait     bool
}

// Aliases returns the alias list, short aliases first.
func (m *modifierCore) Aliases() []string {
	out := make([]string, len(m.aliases))
	copy(out, m.aliases)
	return out
}

func (m *modifierCore) canonical() string { return m.aliases[0] }

// modifier is implemented by Option and Flag.
type modifier interface {
	core() *modifierCore
}

// Positional is an argument identified by its place on the command
// line rather than by an alias.
type Positional struct {
	attrs
	parametric
	name     string
	nowait   bool
	callback func(values ...any) error
}

// Name returns the namespace key the resolved value is stored under.
func (p *Positional) Name() string { return p.name }

// Bind attaches the callback invoked with the resolved values. Scalar
// arities deliver exactly one element. Bind may be called once.
func (p *Positional) Bind(fn func(values ...any) error) error {
	if fn == nil {
		return fmt.Errorf("argot: nil callback for positional %q", p.name)
	}
	if p.callback != nil {
		return fmt.Errorf("argot: callback already bound for positional %q", p.name)
	}
	p.callback = fn
	return nil
}

// Option is a named argument that consumes one or more values.
type Option struct {
	modifierCore
	parametric
	inline   bool
	callback func(values ...any) error
}

// Bind attaches the callback invoked with the resolved values. Scalar
// arities deliver exactly one element. Bind may be called once.
func (o *Option) Bind(fn func(values ...any) error) error {
	if fn == nil {
		return fmt.Errorf("argot: nil callback for option %q", o.canonical())
	}
	if o.callback != nil {
		return fmt.Errorf("argot: callback already bound for option %q", o.canonical())
	}
	o.callback = fn
	return nil
}

func (o *Option) core() *modifierCore { return &o.modifierCore }

// Flag is a named presence toggle. It takes no value.
type Flag struct {
	modifierCore
	callback func() error
}

// Bind attaches the callback invoked when the flag is present. Bind
// may be called once.
func (f *Flag) Bind(fn func() error) error {
	if fn == nil {
		return fmt.Errorf("argot: nil callback for flag %q", f.canonical())
	}
	if f.callback != nil {
		return fmt.Errorf("argot: callback already bound for flag %q", f.canonical())
	}
	f.callback = fn
	return nil
}

func (f *Flag) core() *modifierCore { return &f.modifierCore }

// specBuilder accumulates functional options before the constructor
// validates their combination.
type specBuilder struct {
	attrs      attrs
	par        parametric
	inline     bool
	helper     bool
	standalone bool
	terminator bool
	nowait     bool
	used       map[string]bool
	errs       *multierror.Error
}

// SpecOpt configures a Positional, Option or Flag under construction.
type SpecOpt func(*specBuilder)

func (b *specBuilder) touch(name string) { b.used[name] = true }

func (b *specBuilder) fail(format string, args ...any) {
	b.errs = multierror.Append(b.errs, fmt.Errorf(format, args...))
}

// WithArity sets how many values the argument consumes. Default is
// Single. Not applicable to flags.
func WithArity(a Arity) SpecOpt {
	return func(b *specBuilder) {
		b.touch("WithArity")
		b.par.arity = a
	}
}

// WithType sets the value converter. Default is ToString. Not
// applicable to flags.
func WithType(c Converter) SpecOpt {
	return func(b *specBuilder) {
		b.touch("WithType")
		if c == nil {
			b.fail("WithType: nil converter")
			return
		}
		b.par.conv = c
	}
}

// WithDefault sets the value materialized when the argument is absent.
// Not applicable to flags, which default to false.
func WithDefault(v any) SpecOpt {
	return func(b *specBuilder) {
		b.touch("WithDefault")
		b.par.def = v
		b.par.hasDefault = true
	}
}

// WithChoices restricts the acceptable converted values. Not
// applicable to flags.
func WithChoices(choices ...any) SpecOpt {
	return func(b *specBuilder) {
		b.touch("WithChoices")
		if len(choices) == 0 {
			b.fail("WithChoices: empty choice set")
			return
		}
		for i, c := range choices {
			for _, prev := range choices[:i] {
				if reflect.DeepEqual(prev, c) {
					b.fail("WithChoices: duplicate choice %v", c)
				}
			}
		}
		b.par.choices = choices
	}
}

// WithMetavar sets the display label used in usage lines.
func WithMetavar(m string) SpecOpt {
	return func(b *specBuilder) {
		b.touch("WithMetavar")
		m = strings.TrimSpace(m)
		if m == "" {
			b.fail("WithMetavar: blank label")
			return
		}
		b.par.metavar = m
	}
}

// WithGroup assigns the argument to a presentation group. Conflict
// declarations refer to these group names.
func WithGroup(g string) SpecOpt {
	return func(b *specBuilder) {
		b.touch("WithGroup")
		g = strings.TrimSpace(g)
		if g == "" {
			b.fail("WithGroup: blank group name")
			return
		}
		b.attrs.group = g
	}
}

// WithDescr sets the help text.
func WithDescr(d string) SpecOpt {
	return func(b *specBuilder) {
		b.touch("WithDescr")
		d = strings.TrimSpace(d)
		if d == "" {
			b.fail("WithDescr: blank description")
			return
		}
		b.attrs.descr = d
	}
}

// InlineOnly requires the option's value to be given in the same token
// ("--opt=value"); a spaced value is a fault. Options only.
func InlineOnly() SpecOpt {
	return func(b *specBuilder) {
		b.touch("InlineOnly")
		b.inline = true
	}
}

// Helper marks an informational trigger such as a help flag. Helper
// implies Standalone and Terminator, and cannot be combined with
// Hidden or Deprecated.
func Helper() SpecOpt {
	return func(b *specBuilder) {
		b.touch("Helper")
		b.helper = true
	}
}

// Standalone rejects any other parsed argument or leftover token in
// the same invocation. Options and flags only.
func Standalone() SpecOpt {
	return func(b *specBuilder) {
		b.touch("Standalone")
		b.standalone = true
	}
}

// Terminator finalizes the parse as soon as the argument is handled.
// Terminator implies NoWait. Options and flags only.
func Terminator() SpecOpt {
	return func(b *specBuilder) {
		b.touch("Terminator")
		b.terminator = true
	}
}

// NoWait runs the bound callback the moment the argument is resolved
// instead of after the whole command line was consumed.
func NoWait() SpecOpt {
	return func(b *specBuilder) {
		b.touch("NoWait")
		b.nowait = true
	}
}

// Hidden omits the argument from help output.
func Hidden() SpecOpt {
	return func(b *specBuilder) {
		b.touch("Hidden")
		b.attrs.hidden = true
	}
}

// Deprecated keeps the argument functional but draws a warning when it
// is used.
func Deprecated() SpecOpt {
	return func(b *specBuilder) {
		b.touch("Deprecated")
		b.attrs.deprecated = true
	}
}

func newSpecBuilder(opts []SpecOpt) *specBuilder {
	b := &specBuilder{used: make(map[string]bool)}
	b.par.arity = Single
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *specBuilder) reject(kind string, names ...string) {
	for _, n := range names {
		if b.used[n] {
			b.fail("%s not applicable to %s", n, kind)
		}
	}
}

// NewPositional declares a positional argument. name is the namespace
// key its value is stored under; the display label defaults to the
// upper-cased name and can be overridden with WithMetavar.
func NewPositional(name string, opts ...SpecOpt) (*Positional, error) {
	b := newSpecBuilder(opts)
	b.reject("a positional", "InlineOnly", "Helper", "Standalone", "Terminator")

	name = strings.TrimSpace(name)
	if !namePattern.MatchString(name) {
		b.fail("invalid positional name %q", name)
	}
	if b.par.arity == Remainder {
		if b.used["WithMetavar"] {
			b.fail("WithMetavar not applicable to a remainder positional")
		}
		b.par.metavar = "..."
	} else if b.par.metavar == "" {
		b.par.metavar = strings.ToUpper(name)
	}
	if b.par.conv == nil {
		b.par.conv = ToString
	}
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("argot: positional %q: %w", name, err)
	}

	p := &Positional{
		attrs:      b.attrs,
		parametric: b.par,
		name:       name,
		nowait:     b.nowait,
	}
	if p.group == "" {
		p.group = "positionals"
	}
	return p, nil
}

// MustPositional is NewPositional panicking on error, for declarations
// known to be well-formed.
func MustPositional(name string, opts ...SpecOpt) *Positional {
	p, err := NewPositional(name, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// NewOption declares a value-taking named argument. aliases is a
// whitespace-separated list such as "-c --count"; short aliases are
// ordered before long ones, and the first alias after ordering is the
// canonical namespace key (the value is stored under every alias).
func NewOption(aliases string, opts ...SpecOpt) (*Option, error) {
	b := newSpecBuilder(opts)
	names, err := parseAliases(aliases)
	if err != nil {
		b.fail("%v", err)
	}
	if b.par.arity == Remainder {
		b.fail("remainder arity is positional-only")
	}
	applyCascade(b)
	if b.par.conv == nil {
		b.par.conv = ToString
	}
	if b.par.metavar == "" && len(names) > 0 {
		b.par.metavar = derivedMetavar(names)
	}
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("argot: option %q: %w", aliases, err)
	}

	o := &Option{
		modifierCore: modifierCore{
			attrs:      b.attrs,
			aliases:    names,
			helper:     b.helper,
			standalone: b.standalone,
			terminator: b.terminator,
			nowait:     b.nowait,
		},
		parametric: b.par,
		inline:     b.inline,
	}
	if o.group == "" {
		if o.helper {
			o.group = "information"
		} else {
			o.group = "options"
		}
	}
	return o, nil
}

// MustOption is NewOption panicking on error.
func MustOption(aliases string, opts ...SpecOpt) *Option {
	o, err := NewOption(aliases, opts...)
	if err != nil {
		panic(err)
	}
	return o
}

// NewFlag declares a presence toggle. aliases follows the NewOption
// convention. Flags take no value, so WithArity, WithType,
// WithDefault, WithChoices, WithMetavar and InlineOnly are rejected.
func NewFlag(aliases string, opts ...SpecOpt) (*Flag, error) {
	b := newSpecBuilder(opts)
	b.reject("a flag",
		"WithArity", "WithType", "WithDefault", "WithChoices",
		"WithMetavar", "InlineOnly")
	names, err := parseAliases(aliases)
	if err != nil {
		b.fail("%v", err)
	}
	applyCascade(b)
	if err := b.errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("argot: flag %q: %w", aliases, err)
	}

	f := &Flag{
		modifierCore: modifierCore{
			attrs:      b.attrs,
			aliases:    names,
			helper:     b.helper,
			standalone: b.standalone,
			terminator: b.terminator,
			nowait:     b.nowait,
		},
	}
	if f.group == "" {
		if f.helper {
			f.group = "information"
		} else {
			f.group = "flags"
		}
	}
	return f, nil
}

// MustFlag is NewFlag panicking on error.
func MustFlag(aliases string, opts ...SpecOpt) *Flag {
	f, err := NewFlag(aliases, opts...)
	if err != nil {
		panic(err)
	}
	return f
}

// applyCascade enforces helper implies standalone and terminator, and
// terminator implies nowait. Helpers stay visible and current.
func applyCascade(b *specBuilder) {
	if b.helper {
		b.standalone = true
		b.terminator = true
		if b.attrs.hidden {
			b.fail("a helper cannot be hidden")
		}
		if b.attrs.deprecated {
			b.fail("a helper cannot be deprecated")
		}
	}
	if b.terminator {
		b.nowait = true
	}
}

// parseAliases splits and validates a whitespace-separated alias list,
// ordering short aliases before long ones.
func parseAliases(spec string) ([]string, error) {
	fields := strings.Fields(spec)
	if len(fields) == 0 {
		return nil, errors.New("empty alias list")
	}
	seen := make(map[string]bool, len(fields))
	var shorts, longs []string
	for _, f := range fields {
		if !aliasPattern.MatchString(f) {
			return nil, fmt.Errorf("malformed alias %q", f)
		}
		if seen[f] {
			return nil, fmt.Errorf("duplicate alias %q", f)
		}
		seen[f] = true
		if strings.HasPrefix(f, "--") {
			longs = append(longs, f)
		} else {
			shorts = append(shorts, f)
		}
	}
	return append(shorts, longs...), nil
}

// derivedMetavar builds a display label from the most descriptive
// alias: the last long one if any, else the last short one.
func derivedMetavar(names []string) string {
	label := names[len(names)-1]
	label = strings.TrimLeft(label, "-")
	return strings.ToUpper(label)
}
