package hexconv

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHalfbyte(t *testing.T) {
	for i, c := range "0123456789abcdef" {
		require.Equal(t, byte(i), Halfbyte[c])
	}

	for i, c := range "ABCDEF" {
		require.Equal(t, byte(i+10), Halfbyte[c])
	}

	for _, c := range "gG%z \x00\xff" {
		require.Greater(t, Halfbyte[byte(c)], byte(0x0f))
	}
}

func BenchmarkPairs(b *testing.B) {
	escaped := []byte(strings.Repeat("%D0%BF%D1%80", 256))
	dst := make([]byte, 0, len(escaped)/3)
	b.SetBytes(int64(len(escaped)))
	b.ResetTimer()

	for range b.N {
		dst = dst[:0]
		for j := 0; j+2 < len(escaped); j += 3 {
			hi, lo := Halfbyte[escaped[j+1]], Halfbyte[escaped[j+2]]
			if hi|lo > 0x0f {
				b.Fatal("invalid escape")
			}

			dst = append(dst, hi<<4|lo)
		}
	}
}
