package argot

import (
	"fmt"
	"os"
	"strings"

	"github.com/ef-ds/deque/v2"
)

// parser is the per-invocation state. The command tree itself is never
// mutated, so one tree serves concurrent invocations.
type parser struct {
	cmd       *Command
	tokens    deque.Deque[string]
	cursor    int // 1-based position of the next token
	ns        map[string]any
	sink      faultSink
	seen      map[string]string // group -> input that introduced it
	invoked   map[any]bool
	waits     []pendingCall
	nextPos   int
	routeMiss bool
}

// pendingCall is a bound callback deferred to the end of the pass.
type pendingCall struct {
	spec any
	key  string
	pos  int
	skip bool // resolved to nothing; do not invoke
}

func (c *Command) run(tokens []string, base int) (*Namespace, error) {
	p := &parser{
		cmd:     c,
		cursor:  base,
		ns:      make(map[string]any),
		seen:    make(map[string]string),
		invoked: make(map[any]bool),
	}
	for _, t := range tokens {
		p.tokens.PushBack(t)
	}
	c.log.Debug("parse started", "command", c.Path(), "tokens", len(tokens))
	return p.parse()
}

func (p *parser) parse() (*Namespace, error) {
	c := p.cmd
loop:
	for p.tokens.Len() > 0 {
		token, _ := p.tokens.PopFront()
		switch {
		case strings.HasPrefix(token, "-") && !p.remainderPending():
			done, ns, err := p.handleModifierToken(token)
			if done {
				return ns, err
			}

		case len(c.children) > 0 && len(p.ns) == 0:
			if child, ok := c.children[token]; ok {
				rest := make([]string, 0, p.tokens.Len())
				for p.tokens.Len() > 0 {
					t, _ := p.tokens.PopFront()
					rest = append(rest, t)
				}
				return child.run(rest, p.cursor+1)
			}
			code := UnknownCommand
			noun := "command"
			if c.parent != nil {
				code = UnknownSubcommand
				noun = "subcommand"
			}
			p.sink.raise(code, p.cursor, token, suggestHint(token, c.childOrder),
				"unknown %s %q at %s position", noun, token, ordinal(p.cursor))
			p.tokens.PushFront(token)
			p.routeMiss = true
			break loop

		case p.nextPos < len(c.positionals):
			pos := c.positionals[p.nextPos]
			p.nextPos++
			p.tokens.PushFront(token)
			p.handlePositional(pos)

		default:
			hint := ""
			if len(c.children) > 0 {
				hint = "a subcommand must be the first argument"
			}
			p.sink.raise(UnexpectedPositional, p.cursor, token, hint,
				"unexpected argument %q at %s position", token, ordinal(p.cursor))
			p.cursor++
		}
	}
	p.finishLoop()
	return p.finalize(nil)
}

// remainderPending reports whether the next pending positional swallows
// everything verbatim, which disables modifier classification.
func (p *parser) remainderPending() bool {
	return p.nextPos < len(p.cmd.positionals) &&
		p.cmd.positionals[p.nextPos].arity == Remainder
}

func (p *parser) handleModifierToken(token string) (bool, *Namespace, error) {
	name, tail, hasTail := splitInlineTail(token)
	if !aliasPattern.MatchString(name) {
		p.sink.raise(MalformedToken, p.cursor, token, "",
			"malformed token %q at %s position", token, ordinal(p.cursor))
		p.cursor++
		return false, nil, nil
	}
	m, known := p.cmd.switches[name]
	if !known {
		p.sink.raise(UnknownModifier, p.cursor, token,
			suggestHint(name, p.cmd.visibleAliases()),
			"unknown modifier %q at %s position", name, ordinal(p.cursor))
		p.cursor++
		return false, nil, nil
	}

	core := m.core()
	start := p.cursor
	kind := "option"
	if _, isFlag := m.(*Flag); isFlag {
		kind = "flag"
	}
	if core.deprecated {
		p.sink.raiseFor(m, DeprecatedArgument, start, name, "",
			"%s %q at %s position is deprecated", kind, name, ordinal(start))
	}
	if _, dup := p.ns[name]; dup {
		p.sink.raiseFor(m, DuplicateModifier, start, name, "",
			"%s %q repeated at %s position", kind, name, ordinal(start))
	}

	skip := false
	switch s := m.(type) {
	case *Flag:
		if hasTail {
			p.sink.raiseFor(s, FlagTakesNoParam, start, token, "",
				"flag %q at %s position takes no value", name, ordinal(start))
		}
		p.cursor++
		for _, a := range core.aliases {
			p.ns[a] = true
		}
	case *Option:
		p.cursor++ // past the option token; values advance it further
		var value any
		value, skip = p.resolveOptionValue(s, name, tail, hasTail, start)
		for _, a := range core.aliases {
			p.ns[a] = value
		}
	}

	p.checkConflicts(m, core.group, name, start)
	if core.nowait {
		p.invoke(m, name, start, skip)
	} else {
		p.waits = append(p.waits, pendingCall{spec: m, key: name, pos: start, skip: skip})
	}
	if core.standalone && p.standaloneViolated(core) {
		p.sink.raiseFor(m, StandaloneOnly, start, name, "",
			"%q at %s position must be used alone", name, ordinal(start))
	}
	if core.terminator {
		ns, err := p.finalize(m)
		return true, ns, err
	}
	return false, nil, nil
}

func (p *parser) handlePositional(pos *Positional) {
	start := p.cursor
	if pos.deprecated {
		p.sink.raiseFor(pos, DeprecatedArgument, start, pos.name, "",
			"positional %q at %s position is deprecated", pos.name, ordinal(start))
	}
	value, skip := p.resolveValue(pos, &pos.parametric, &p.tokens, false, "positional", pos.name, start)
	p.ns[pos.name] = value
	p.checkConflicts(pos, pos.group, pos.name, start)
	if pos.nowait {
		p.invoke(pos, pos.name, start, skip)
	} else {
		p.waits = append(p.waits, pendingCall{spec: pos, key: pos.name, pos: start, skip: skip})
	}
}

func (p *parser) resolveOptionValue(o *Option, name, tail string, hasTail bool, start int) (any, bool) {
	inline := false
	src := &p.tokens
	if hasTail {
		if tail == "" {
			p.sink.raiseFor(o, EmptyInlineParam, start, name,
				fmt.Sprintf("give the value as %s=VALUE or as a following argument", name),
				"empty inline value for option %q at %s position", name, ordinal(start))
		} else {
			inline = true
			src = splitInline(tail)
		}
	} else if o.inline {
		p.sink.raiseFor(o, InlineParamRequired, start, name,
			fmt.Sprintf("use %s=VALUE", name),
			"option %q at %s position takes its value inline only", name, ordinal(start))
		if o.hasDefault {
			return o.def, false
		}
		return nil, true
	}
	return p.resolveValue(o, &o.parametric, src, inline, "option", name, start)
}

// resolveValue consumes and converts values for one argument according
// to its arity. The boolean result reports that nothing was resolved
// and no default stood in.
func (p *parser) resolveValue(origin any, par *parametric, src *deque.Deque[string], inline bool, kind, label string, start int) (any, bool) {
	raws, absent := p.collect(origin, par.arity, src, inline, kind, label)
	if inline && src.Len() > 0 {
		rest := drain(src)
		p.sink.raiseFor(origin, TooManyInlineParams, start, strings.Join(rest, " "),
			"", "%d extra inline value(s) for %s %q at %s position", len(rest), kind, label, ordinal(start))
	}
	if absent {
		if par.hasDefault {
			return par.def, false
		}
		return nil, true
	}
	vals := p.convertValues(origin, par, raws, kind, label, start)
	if par.arity.scalar() {
		if len(vals) == 0 {
			if par.hasDefault {
				return par.def, false
			}
			return nil, true
		}
		return vals[0], false
	}
	return vals, false
}

// collect pops raw values from src according to the arity. Dash-led
// tokens end consumption except for Remainder and inline sources.
func (p *parser) collect(origin any, a Arity, src *deque.Deque[string], inline bool, kind, label string) ([]string, bool) {
	available := func() bool {
		front, ok := src.Front()
		if !ok {
			return false
		}
		return inline || a.kind == arityRemainder || !strings.HasPrefix(front, "-")
	}
	pop := func() string {
		t, _ := src.PopFront()
		if !inline {
			p.cursor++
		}
		return strings.TrimSpace(t)
	}

	var raws []string
	switch a.kind {
	case aritySingle:
		if !available() {
			p.sink.raiseFor(origin, MissingParam, p.cursor, label, "",
				"%s %q requires a value at %s position", kind, label, ordinal(p.cursor))
			return nil, true
		}
		raws = append(raws, pop())
	case arityOptional:
		if !available() {
			return nil, true
		}
		raws = append(raws, pop())
	case arityZeroOrMore, arityOneOrMore, arityRemainder:
		for available() {
			raws = append(raws, pop())
		}
		if a.kind == arityOneOrMore && len(raws) == 0 {
			p.sink.raiseFor(origin, AtLeastOneParamRequired, p.cursor, label, "",
				"%s %q requires at least one value at %s position", kind, label, ordinal(p.cursor))
			return nil, true
		}
	case arityFixed:
		for len(raws) < a.n && available() {
			raws = append(raws, pop())
		}
		if len(raws) < a.n {
			p.sink.raiseFor(origin, NotEnoughParams, p.cursor, label, "",
				"%s %q expects %d values, got %d", kind, label, a.n, len(raws))
			return nil, true
		}
	}
	return raws, false
}

// convertValues applies the converter and choice check element-wise.
// Hard converter errors keep the raw string so positions stay stable;
// the accumulated fault aborts the invocation regardless.
func (p *parser) convertValues(origin any, par *parametric, raws []string, kind, label string, start int) []any {
	vals := make([]any, 0, len(raws))
	for _, raw := range raws {
		if raw == "" {
			p.sink.raiseFor(origin, EmptyInlineParam, start, label, "",
				"empty value for %s %q ignored", kind, label)
			continue
		}
		v, err := par.conv(raw)
		if err != nil {
			if isAdvisory(err) {
				p.sink.push(&Fault{
					Code:    ExternalConverterWarning,
					Message: fmt.Sprintf("converting %q for %s %q: %v", raw, kind, label, err),
					Pos:     start,
					Input:   raw,
					Origin:  origin,
					Err:     err,
				})
			} else {
				p.sink.push(&Fault{
					Code:    UncastableParam,
					Message: fmt.Sprintf("cannot convert %q for %s %q at %s position: %v", raw, kind, label, ordinal(start), err),
					Pos:     start,
					Input:   raw,
					Origin:  origin,
					Err:     err,
				})
				vals = append(vals, raw)
				continue
			}
		}
		if !par.allowed(v) {
			p.sink.raiseFor(origin, InvalidChoice, start, raw, choicesHint(par),
				"%v is not a valid choice for %s %q", v, kind, label)
		}
		vals = append(vals, v)
	}
	return vals
}

func (p *parser) checkConflicts(origin any, group, input string, pos int) {
	for g, first := range p.seen {
		if g == group {
			continue
		}
		if p.cmd.conflicts[group][g] {
			p.sink.raiseFor(origin, ConflictingGroup, pos, input, "",
				"%q conflicts with %q: groups %q and %q must not be combined",
				input, first, group, g)
		}
	}
	if _, ok := p.seen[group]; !ok {
		p.seen[group] = input
	}
}

func (p *parser) standaloneViolated(core *modifierCore) bool {
	if p.tokens.Len() > 0 {
		return true
	}
	own := make(map[string]bool, len(core.aliases))
	for _, a := range core.aliases {
		own[a] = true
	}
	for k := range p.ns {
		if !own[k] {
			return true
		}
	}
	return false
}

func (p *parser) invoke(spec any, key string, pos int, skip bool) {
	if p.invoked[spec] {
		return
	}
	p.invoked[spec] = true
	var err error
	switch s := spec.(type) {
	case *Flag:
		if s.callback == nil {
			return
		}
		err = s.callback()
	case *Option:
		if s.callback == nil || skip {
			return
		}
		err = callWithValues(s.callback, s.arity, p.ns[key])
	case *Positional:
		if s.callback == nil || skip {
			return
		}
		err = callWithValues(s.callback, s.arity, p.ns[key])
	}
	if err != nil {
		p.sink.push(&Fault{
			Code:    CallbackError,
			Message: fmt.Sprintf("callback for %q failed: %v", key, err),
			Pos:     pos,
			Input:   key,
			Origin:  spec,
			Err:     err,
		})
	}
}

func callWithValues(cb func(values ...any) error, a Arity, v any) error {
	if a.scalar() {
		return cb(v)
	}
	if vs, ok := v.([]any); ok {
		return cb(vs...)
	}
	return cb(v)
}

// finishLoop handles everything owed after the token stream ran dry:
// leftover tokens, deferred callbacks in declaration order, defaults
// for unresolved arguments.
func (p *parser) finishLoop() {
	c := p.cmd

	if p.tokens.Len() > 0 {
		rest := drain(&p.tokens)
		hint := "these arguments were not consumed by any declared argument"
		if p.routeMiss {
			hint = "no matching subcommand; nothing after the failed route was parsed"
		}
		p.sink.raise(UnparsedInput, p.cursor, strings.Join(rest, " "), hint,
			"%d unparsed argument(s): %s", len(rest), strings.Join(rest, " "))
	}

	bySpec := make(map[any]pendingCall, len(p.waits))
	for _, w := range p.waits {
		bySpec[w.spec] = w
	}
	for _, item := range c.order {
		if w, ok := bySpec[item]; ok {
			p.invoke(w.spec, w.key, w.pos, w.skip)
		}
	}

	for i := p.nextPos; i < len(c.positionals); i++ {
		pos := c.positionals[i]
		switch {
		case pos.hasDefault:
			p.ns[pos.name] = pos.def
		case pos.arity == Optional:
			p.ns[pos.name] = nil
		case pos.arity == ZeroOrMore || pos.arity == Remainder:
			p.ns[pos.name] = []any{}
		default:
			p.sink.raiseFor(pos, MissingPositional, p.cursor, pos.name, "",
				"missing required positional %s (%s value)", pos.metavar, pos.arity)
		}
	}
	for _, item := range c.order {
		switch s := item.(type) {
		case *Option:
			if _, ok := p.ns[s.canonical()]; !ok && s.hasDefault {
				for _, a := range s.aliases {
					p.ns[a] = s.def
				}
			}
		case *Flag:
			if _, ok := p.ns[s.canonical()]; !ok {
				for _, a := range s.aliases {
					p.ns[a] = false
				}
			}
		}
	}
}

// finalize delivers the accumulated diagnostics and produces the
// invocation's result. trigger is the terminator that cut the pass
// short, or nil for a full pass.
func (p *parser) finalize(trigger any) (*Namespace, error) {
	c := p.cmd
	warnings := p.sink.warnings()
	exceptions := p.sink.exceptions()
	ns := &Namespace{values: p.ns, warnings: warnings}
	route := c.Path()
	rep := &reporter{w: c.out, colorize: c.colorize}

	if c.shell && !c.deferred {
		for _, w := range warnings {
			rep.warning(route, w)
		}
	}
	c.log.Debug("parse finished", "command", route,
		"warnings", len(warnings), "exceptions", len(exceptions))

	if len(exceptions) == 0 {
		if trigger == nil && c.handler != nil {
			return ns, c.handler(ns)
		}
		return ns, nil
	}

	bad := &BadExit{Route: route, Faults: exceptions}
	if c.fallback != nil {
		c.fallback(bad)
		return ns, nil
	}
	if c.shell && !c.deferred {
		// a help trigger already rendered help; anything else gets one
		if trigger == nil || trigger != any(c.helpFlag) {
			c.presenter.Help(c)
		}
		rep.failure(route, bad)
		code := 1
		if len(exceptions) > 1 {
			code = 2
		}
		exitFunc(code)
	}
	return ns, bad
}

func choicesHint(par *parametric) string {
	if len(par.choices) == 0 {
		return ""
	}
	parts := make([]string, len(par.choices))
	for i, c := range par.choices {
		parts[i] = fmt.Sprint(c)
	}
	return "choose from " + strings.Join(parts, ", ")
}

func splitInlineTail(token string) (name, tail string, hasTail bool) {
	if i := strings.IndexByte(token, '='); i >= 0 {
		return token[:i], token[i+1:], true
	}
	return token, "", false
}

// splitInline breaks a multi-value inline tail on the platform's path
// list separator, falling back to ":" and then ",".
func splitInline(tail string) *deque.Deque[string] {
	sep := string(os.PathListSeparator)
	var parts []string
	switch {
	case strings.Contains(tail, sep):
		parts = strings.Split(tail, sep)
	case strings.Contains(tail, ":"):
		parts = strings.Split(tail, ":")
	case strings.Contains(tail, ","):
		parts = strings.Split(tail, ",")
	default:
		parts = []string{tail}
	}
	d := new(deque.Deque[string])
	for _, part := range parts {
		d.PushBack(part)
	}
	return d
}

func drain(d *deque.Deque[string]) []string {
	out := make([]string, 0, d.Len())
	for d.Len() > 0 {
		t, _ := d.PopFront()
		out = append(out, t)
	}
	return out
}
