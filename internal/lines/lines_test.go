package lines

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/dchest/uniuri"
	"github.com/stretchr/testify/require"
)

type line struct {
	Line, Term string
}

func readAll(t *testing.T, r *Reader) (result []line) {
	for {
		l, term, err := r.Next()
		if err == io.EOF {
			return result
		}

		require.NoError(t, err)
		result = append(result, line{string(l), string(term)})
	}
}

func TestReader(t *testing.T) {
	t.Run("terminators", func(t *testing.T) {
		r := NewReader(strings.NewReader("crlf\r\nlf\ncr\rlast"), 64, -1)
		require.Equal(t, []line{
			{"crlf", "\r\n"},
			{"lf", "\n"},
			{"cr", "\r"},
			{"last", ""},
		}, readAll(t, r))
	})

	t.Run("empty lines", func(t *testing.T) {
		r := NewReader(strings.NewReader("\r\n\n\r\r\n"), 64, -1)
		require.Equal(t, []line{
			{"", "\r\n"},
			{"", "\n"},
			{"", "\r"},
			{"", "\r\n"},
		}, readAll(t, r))
	})

	t.Run("trailing cr", func(t *testing.T) {
		r := NewReader(strings.NewReader("hello\r"), 64, -1)
		require.Equal(t, []line{{"hello", "\r"}}, readAll(t, r))
	})

	t.Run("byte by byte", func(t *testing.T) {
		r := NewReader(iotest.OneByteReader(strings.NewReader("ab\r\ncd\ref\n")), 64, -1)
		require.Equal(t, []line{
			{"ab", "\r\n"},
			{"cd", "\r"},
			{"ef", "\n"},
		}, readAll(t, r))
	})

	t.Run("long line is split", func(t *testing.T) {
		r := NewReader(strings.NewReader("abcdefghij\r\nxy\r\n"), 4, -1)
		require.Equal(t, []line{
			{"abcd", ""},
			{"efgh", ""},
			{"ij", "\r\n"},
			{"xy", "\r\n"},
		}, readAll(t, r))
	})

	t.Run("line of exactly limit", func(t *testing.T) {
		r := NewReader(strings.NewReader("abcd\r\nef\r\n"), 4, -1)
		require.Equal(t, []line{
			{"abcd", "\r\n"},
			{"ef", "\r\n"},
		}, readAll(t, r))
	})

	t.Run("split never separates crlf", func(t *testing.T) {
		for limit := 2; limit < 12; limit++ {
			data := "0123456789\r\n--boundary\r\n"
			r := NewReader(iotest.HalfReader(strings.NewReader(data)), limit, -1)
			var b strings.Builder

			for _, l := range readAll(t, r) {
				require.NotEqual(t, "\r", l.Term, "limit %d", limit)
				require.LessOrEqual(t, len(l.Line), limit)
				b.WriteString(l.Line + l.Term)
			}

			require.Equal(t, data, b.String())
		}
	})

	t.Run("random data is preserved", func(t *testing.T) {
		data := strings.Repeat(uniuri.NewLen(100)+"\r\n"+uniuri.NewLen(7)+"\n", 50)
		r := NewReader(iotest.OneByteReader(strings.NewReader(data)), 16, -1)
		var b bytes.Buffer

		for _, l := range readAll(t, r) {
			b.WriteString(l.Line + l.Term)
		}

		require.Equal(t, data, b.String())
	})

	t.Run("read limit", func(t *testing.T) {
		r := NewReader(strings.NewReader("first\r\nsecond\r\nthird\r\n"), 64, 10)
		require.Equal(t, []line{
			{"first", "\r\n"},
			{"sec", ""},
		}, readAll(t, r))
	})

	t.Run("zero read limit", func(t *testing.T) {
		r := NewReader(strings.NewReader("data"), 64, 0)
		require.Empty(t, readAll(t, r))
	})

	t.Run("source error", func(t *testing.T) {
		broken := errors.New("connection reset")
		src := io.MultiReader(strings.NewReader("whole\r\npart"), iotest.ErrReader(broken))
		r := NewReader(src, 64, -1)

		l, term, err := r.Next()
		require.NoError(t, err)
		require.Equal(t, "whole", string(l))
		require.Equal(t, "\r\n", string(term))

		_, _, err = r.Next()
		require.ErrorIs(t, err, broken)
	})
}

func BenchmarkReader(b *testing.B) {
	data := []byte(strings.Repeat(strings.Repeat("a", 70)+"\r\n", 1000))
	src := bytes.NewReader(data)
	b.SetBytes(int64(len(data)))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		src.Reset(data)
		r := NewReader(src, 1<<16, -1)
		for {
			if _, _, err := r.Next(); err != nil {
				break
			}
		}
	}
}
