package argot

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrdinalWording(t *testing.T) {
	cases := []struct {
		n    int
		want string
	}{
		{1, "first"},
		{2, "second"},
		{3, "third"},
		{10, "tenth"},
		{11, "11th"},
		{12, "12th"},
		{13, "13th"},
		{21, "21st"},
		{22, "22nd"},
		{33, "33rd"},
		{100, "100th"},
		{111, "111th"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ordinal(tc.n), "n=%d", tc.n)
	}
}

func TestFaultCodeClassification(t *testing.T) {
	assert.False(t, UnknownModifier.Warning())
	assert.False(t, MissingPositional.Warning())
	assert.False(t, CallbackError.Warning())
	assert.True(t, EmptyInlineParam.Warning())
	assert.True(t, DeprecatedArgument.Warning())
	assert.True(t, ExternalConverterWarning.Warning())
	assert.Equal(t, "unknown-modifier", UnknownModifier.String())
	assert.Equal(t, "conflicting-group", ConflictingGroup.String())
}

func TestFaultError(t *testing.T) {
	f := &Fault{Code: UnknownModifier, Message: "no such thing", Hint: "try --thing"}
	assert.Equal(t, "unknown-modifier: no such thing (try --thing)", f.Error())

	bare := &Fault{Code: MissingParam, Message: "value required"}
	assert.Equal(t, "missing-param: value required", bare.Error())
}

func TestBadExitAggregation(t *testing.T) {
	one := &BadExit{Route: "tool", Faults: []*Fault{
		{Code: MissingParam, Message: "value required"},
	}}
	assert.Equal(t, "missing-param: value required", one.Error())

	cause := errors.New("root cause")
	many := &BadExit{Route: "tool run", Faults: []*Fault{
		{Code: MissingParam, Message: "value required"},
		{Code: UncastableParam, Message: "bad value", Err: cause},
	}}
	assert.Contains(t, many.Error(), `2 errors parsing "tool run"`)
	assert.True(t, many.Has(UncastableParam))
	assert.False(t, many.Has(UnknownModifier))
	assert.ErrorIs(t, many, cause)
}

func TestFaultSinkSplitsKinds(t *testing.T) {
	var s faultSink
	s.raise(DeprecatedArgument, 1, "--old", "", "old")
	s.raise(UnknownModifier, 2, "--nope", "", "nope")
	s.raise(EmptyInlineParam, 3, "--x", "", "empty")
	assert.Len(t, s.warnings(), 2)
	assert.Len(t, s.exceptions(), 1)
}

func TestReporterOutput(t *testing.T) {
	var buf bytes.Buffer
	r := &reporter{w: &buf}
	r.warning("tool", &Fault{Code: DeprecatedArgument, Message: "old stuff", Hint: "use --new"})
	out := buf.String()
	assert.Contains(t, out, "tool: warning deprecated-argument: old stuff")
	assert.Contains(t, out, "use --new")

	buf.Reset()
	r.failure("tool", &BadExit{Faults: []*Fault{
		{Code: UnknownModifier, Message: "no such thing"},
	}})
	assert.Contains(t, buf.String(), "tool: error unknown-modifier: no such thing")
}

func TestSuggest(t *testing.T) {
	candidates := []string{"--threads", "--verbose", "--out"}
	got, ok := suggest("--threds", candidates)
	require.True(t, ok)
	assert.Equal(t, "--threads", got)

	_, ok = suggest("--completely-different", candidates)
	assert.False(t, ok)

	assert.Equal(t, `did you mean "--threads"?`, suggestHint("--treads", candidates))
	assert.Equal(t, "", suggestHint("zzzzzzzzzzzz", candidates))
}
