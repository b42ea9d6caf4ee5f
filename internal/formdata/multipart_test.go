package formdata

import (
	"strings"
	"testing"

	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/multipart"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/kv"
	"github.com/stretchr/testify/require"
)

func newParser(t *testing.T, body string) *multipart.Parser {
	p, err := multipart.NewParser(config.Default(), strings.NewReader(body), "B", -1)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, p.Close())
	})

	return p
}

func textPart(name, headers, body string) string {
	return "--B\r\nContent-Disposition: form-data; name=\"" + name + "\"\r\n" + headers + "\r\n" + body + "\r\n"
}

func TestParseMultipart(t *testing.T) {
	t.Run("fields and files", func(t *testing.T) {
		body := textPart("a", "", "1") +
			"--B\r\nContent-Disposition: form-data; name=\"f\"; filename=\"x.txt\"\r\n\r\nhi\r\n" +
			textPart("a", "", "2") + "--B--\r\n"
		fields := kv.New()
		files, err := ParseMultipart(newParser(t, body), fields, 100)
		require.NoError(t, err)
		require.Equal(t, []string{"1", "2"}, fields.Values("a"))
		require.Len(t, files, 1)
		require.Equal(t, "x.txt", files[0].Filename)
	})

	t.Run("shared budget", func(t *testing.T) {
		body := textPart("a", "", "12345") + textPart("b", "", "6789") + "--B--\r\n"
		_, err := ParseMultipart(newParser(t, body), kv.New(), 9)
		require.NoError(t, err)

		_, err = ParseMultipart(newParser(t, body), kv.New(), 8)
		require.ErrorIs(t, err, status.ErrValueTooLarge)
	})

	t.Run("charset field", func(t *testing.T) {
		body := textPart("_charset_", "", "iso-8859-1") +
			textPart("a", "", "caf\xe9") +
			textPart("b", "Content-Type: text/plain; charset=utf-8\r\n", "café") + "--B--\r\n"
		fields := kv.New()
		_, err := ParseMultipart(newParser(t, body), fields, 100)
		require.NoError(t, err)
		require.Equal(t, "café", fields.Value("a"))
		require.Equal(t, "café", fields.Value("b"))
		require.False(t, fields.Has("_charset_"))
	})

	t.Run("unsupported charset field", func(t *testing.T) {
		body := textPart("_charset_", "", "klingon") + "--B--\r\n"
		_, err := ParseMultipart(newParser(t, body), kv.New(), 100)
		require.ErrorIs(t, err, status.ErrUnsupportedCharset)
	})

	t.Run("error", func(t *testing.T) {
		_, err := ParseMultipart(newParser(t, textPart("a", "", "1")), kv.New(), 100)
		require.ErrorIs(t, err, status.ErrUnexpectedEOF)
	})
}
