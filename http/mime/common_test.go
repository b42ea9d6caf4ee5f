package mime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNormalizeCharset(t *testing.T) {
	for charset, want := range map[string]Charset{
		"UTF-8":      UTF8,
		" utf8 ":     UTF8,
		"US-ASCII":   ASCII,
		"ISO-8859-1": Latin1,
		"koi8-r":     "koi8-r",
	} {
		require.Equal(t, want, NormalizeCharset(charset), charset)
	}
}

func TestByFilename(t *testing.T) {
	require.Equal(t, PNG, ByFilename("avatar.png"))
	require.Equal(t, Plain, ByFilename("notes.txt"))
	require.Empty(t, ByFilename("Makefile"))
}
