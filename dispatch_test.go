package argot

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDropsBlankTokens(t *testing.T) {
	c := MustNew("tool", Positionals(MustPositional("file")))
	ns, err := c.Parse([]string{"", "  ", " a.txt "})
	require.NoError(t, err)
	assert.Equal(t, "a.txt", ns.GetString("file"))
}

func TestParseStringTokenizesLikeAShell(t *testing.T) {
	c := MustNew("tool",
		Positionals(MustPositional("file")),
		Options(MustOption("--name")),
	)
	ns, err := c.ParseString(`"my file.txt" --name 'hello world'`)
	require.NoError(t, err)
	assert.Equal(t, "my file.txt", ns.GetString("file"))
	assert.Equal(t, "hello world", ns.GetString("--name"))
}

func TestParseStringReportsBadQuoting(t *testing.T) {
	c := MustNew("tool")
	_, err := c.ParseString(`--name "unclosed`)
	assert.ErrorContains(t, err, "tokenizing")
}

func TestParseArgs(t *testing.T) {
	restore := os.Args
	defer func() { os.Args = restore }()
	os.Args = []string{"tool", "--verbose"}

	c := MustNew("tool", Flags(MustFlag("--verbose")))
	ns, err := c.ParseArgs()
	require.NoError(t, err)
	assert.True(t, ns.GetBool("--verbose"))
}

func TestConcurrentParsesShareOneTree(t *testing.T) {
	c := MustNew("tool",
		Positionals(MustPositional("file")),
		Options(MustOption("--count", WithType(ToInt))),
	)
	done := make(chan error, 8)
	for i := 0; i < 8; i++ {
		go func() {
			ns, err := c.Parse([]string{"a.txt", "--count", "2"})
			if err == nil && ns.GetInt("--count") != 2 {
				err = assert.AnError
			}
			done <- err
		}()
	}
	for i := 0; i < 8; i++ {
		assert.NoError(t, <-done)
	}
}
