package strutil

import (
	"github.com/stretchr/testify/require"
	"testing"
)

func TestParseOptions(t *testing.T) {
	t.Run("no options", func(t *testing.T) {
		value, options := ParseOptions("  Text/Plain ")
		require.Equal(t, "text/plain", value)
		require.NotNil(t, options)
		require.Empty(t, options)
	})

	t.Run("token and quoted", func(t *testing.T) {
		value, options := ParseOptions(`Form-Data; Name="field one"; filename=a.txt`)
		require.Equal(t, "form-data", value)
		require.Equal(t, map[string]string{
			"name":     "field one",
			"filename": "a.txt",
		}, options)
	})

	t.Run("whitespaces around equals", func(t *testing.T) {
		_, options := ParseOptions(`multipart/form-data ;  boundary = ----abc ; charset=UTF-8`)
		require.Equal(t, "----abc", options["boundary"])
		require.Equal(t, "UTF-8", options["charset"])
	})

	t.Run("escapes", func(t *testing.T) {
		_, options := ParseOptions(`form-data; name="say \"hi\" \\o/"`)
		require.Equal(t, `say "hi" \o/`, options["name"])
	})

	t.Run("semicolon inside quotes", func(t *testing.T) {
		_, options := ParseOptions(`form-data; name="a;b"; filename="c"`)
		require.Equal(t, "a;b", options["name"])
		require.Equal(t, "c", options["filename"])
	})

	t.Run("windows path", func(t *testing.T) {
		_, options := ParseOptions(`form-data; name="f"; filename="C:\\Users\\pavlo\\report.pdf"`)
		require.Equal(t, "report.pdf", options["filename"])

		_, options = ParseOptions(`form-data; filename="\\\\share\\docs\\x.txt"`)
		require.Equal(t, "x.txt", options["filename"])
	})

	t.Run("windows-looking non-filename", func(t *testing.T) {
		_, options := ParseOptions(`form-data; name="C:\\dir"`)
		require.Equal(t, `C:\dir`, options["name"])
	})

	t.Run("malformed options are skipped", func(t *testing.T) {
		_, options := ParseOptions(`form-data; ==; noequals; name="ok"; broken="unterminated`)
		require.Equal(t, map[string]string{"name": "ok"}, options)
	})

	t.Run("unterminated quote", func(t *testing.T) {
		_, options := ParseOptions(`form-data; filename="oops; name=field; size=10`)
		require.Equal(t, map[string]string{"name": "field", "size": "10"}, options)
	})

	t.Run("duplicate keys keep the last", func(t *testing.T) {
		_, options := ParseOptions(`form-data; name=a; NAME=b`)
		require.Equal(t, "b", options["name"])
	})
}

func TestQuote(t *testing.T) {
	for _, tc := range []struct {
		Value, Want string
	}{
		{"plain", "plain"},
		{"with space", `"with space"`},
		{`say "hi"`, `"say \"hi\""`},
		{`back\slash`, `"back\\slash"`},
		{"a;b", `"a;b"`},
	} {
		require.Equal(t, tc.Want, Quote(tc.Value))
	}
}

func TestQuoteRoundTrip(t *testing.T) {
	for _, value := range []string{"plain", "with space", `say "hi" \o/`, "a;b=c"} {
		_, options := ParseOptions("form-data; name=" + Quote(value))
		require.Equal(t, value, options["name"])
	}
}
