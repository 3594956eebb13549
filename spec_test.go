package argot

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAliases(t *testing.T) {
	cases := []struct {
		in   string
		want []string
		ok   bool
	}{
		{"-c --count", []string{"-c", "--count"}, true},
		{"--count -c", []string{"-c", "--count"}, true},
		{"--dry-run", []string{"--dry-run"}, true},
		{"-v -n --no-op", []string{"-v", "-n", "--no-op"}, true},
		{"", nil, false},
		{"count", nil, false},
		{"---x", nil, false},
		{"--9lives", nil, false},
		{"--a--b", nil, false},
		{"-c -c", nil, false},
	}
	for _, tc := range cases {
		got, err := parseAliases(tc.in)
		if !tc.ok {
			assert.Error(t, err, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestNewOptionDefaults(t *testing.T) {
	o, err := NewOption("-c --count")
	require.NoError(t, err)
	assert.Equal(t, "-c", o.canonical())
	assert.Equal(t, Single, o.Arity())
	assert.Equal(t, "COUNT", o.Metavar())
	assert.Equal(t, "options", o.Group())
	assert.False(t, o.helper)
}

func TestNewOptionRejectsRemainder(t *testing.T) {
	_, err := NewOption("--rest", WithArity(Remainder))
	assert.ErrorContains(t, err, "positional-only")
}

func TestNewFlagRejectsValueOptions(t *testing.T) {
	_, err := NewFlag("--verbose",
		WithArity(OneOrMore),
		WithDefault(1),
		WithChoices("a"),
	)
	require.Error(t, err)
	assert.ErrorContains(t, err, "WithArity not applicable")
	assert.ErrorContains(t, err, "WithDefault not applicable")
	assert.ErrorContains(t, err, "WithChoices not applicable")
}

func TestHelperCascade(t *testing.T) {
	f, err := NewFlag("--help", Helper())
	require.NoError(t, err)
	assert.True(t, f.standalone)
	assert.True(t, f.terminator)
	assert.True(t, f.nowait)
	assert.Equal(t, "information", f.Group())
}

func TestTerminatorImpliesNoWait(t *testing.T) {
	f, err := NewFlag("--quit", Terminator())
	require.NoError(t, err)
	assert.True(t, f.nowait)
	assert.False(t, f.standalone)
}

func TestHelperCannotBeHiddenOrDeprecated(t *testing.T) {
	_, err := NewFlag("--help", Helper(), Hidden())
	assert.ErrorContains(t, err, "cannot be hidden")
	_, err = NewFlag("--help", Helper(), Deprecated())
	assert.ErrorContains(t, err, "cannot be deprecated")
}

func TestNewPositional(t *testing.T) {
	p, err := NewPositional("file")
	require.NoError(t, err)
	assert.Equal(t, "FILE", p.Metavar())
	assert.Equal(t, "positionals", p.Group())

	_, err = NewPositional("2fast")
	assert.ErrorContains(t, err, "invalid positional name")

	_, err = NewPositional("file", Helper())
	assert.ErrorContains(t, err, "not applicable")
}

func TestRemainderPositional(t *testing.T) {
	p, err := NewPositional("rest", WithArity(Remainder))
	require.NoError(t, err)
	assert.Equal(t, "...", p.Metavar())

	_, err = NewPositional("rest", WithArity(Remainder), WithMetavar("REST"))
	assert.ErrorContains(t, err, "WithMetavar not applicable")
}

func TestBindSingleAssignment(t *testing.T) {
	f := MustFlag("--verbose")
	require.NoError(t, f.Bind(func() error { return nil }))
	assert.ErrorContains(t, f.Bind(func() error { return nil }), "already bound")
	assert.ErrorContains(t, f.Bind(nil), "nil callback")

	o := MustOption("--count")
	require.NoError(t, o.Bind(func(values ...any) error { return nil }))
	assert.ErrorContains(t, o.Bind(func(values ...any) error { return nil }), "already bound")
}

func TestWithChoicesRejectsDuplicates(t *testing.T) {
	_, err := NewOption("--mode", WithChoices("fast", "safe", "fast"))
	assert.ErrorContains(t, err, "duplicate choice")
}

func TestFixedPanicsBelowOne(t *testing.T) {
	assert.Panics(t, func() { Fixed(0) })
	assert.Equal(t, "fixed(3)", Fixed(3).String())
}

func TestConverters(t *testing.T) {
	cases := []struct {
		name string
		conv Converter
		raw  string
		want any
		ok   bool
	}{
		{"int", ToInt, "42", 42, true},
		{"int-bad", ToInt, "4x", nil, false},
		{"float", ToFloat, "2.5", 2.5, true},
		{"bool", ToBool, "true", true, true},
		{"bool-bad", ToBool, "yeah", nil, false},
		{"duration", ToDuration, "90m", 90 * time.Minute, true},
		{"duration-bad", ToDuration, "soon", nil, false},
		{"string", ToString, "as-is", "as-is", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := tc.conv(tc.raw)
			if !tc.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestToTimeLayout(t *testing.T) {
	got, err := ToTime("2006-01-02")("2024-03-15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), got)

	_, err = ToTime("")("not a date")
	assert.Error(t, err)
}

func TestAdvisoryMarksErrors(t *testing.T) {
	base := errors.New("lossy conversion")
	assert.True(t, isAdvisory(Advisory(base)))
	assert.False(t, isAdvisory(base))
	assert.Nil(t, Advisory(nil))
	assert.ErrorIs(t, Advisory(base), base)
}
