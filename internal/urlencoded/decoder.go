package urlencoded

import (
	"bytes"

	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/internal/hexconv"
	"github.com/indigo-web/utils/uf"
)

// Decode decodes percent-encoded sequences and pluses (as spaces) into the given buffer, but
// omits it if there's no data to be decoded. `dst` can be src[:0] as well in order to decode
// "into itself".
func Decode(src, dst []byte) (decoded, buffer []byte, err error) {
	dsthead := len(dst)
	modified := false

loop:
	for i, c := range src {
		if c == '+' {
			modified = true
			dst = append(dst, src[:i]...)
			dst = append(dst, ' ')
			src = src[i+1:]
			goto loop
		} else if c == '%' {
			modified = true

			if len(src)-i < 3 {
				return nil, dst, status.ErrURLDecoding
			}

			a, b := hexconv.Halfbyte[src[i+1]], hexconv.Halfbyte[src[i+2]]
			if a|b > 0x0f {
				return nil, dst, status.ErrURLDecoding
			}
			dst = append(dst, src[:i]...)
			dst = append(dst, (a<<4)|b)
			src = src[i+3:]
			goto loop
		}
	}

	if !modified {
		return src, dst, nil
	}

	dst = append(dst, src...)
	return dst[dsthead:], dst, nil
}

func DecodeString(src string, buff []byte) (decoded string, buffer []byte, err error) {
	d, buffer, err := Decode(uf.S2B(src), buff)
	return uf.B2S(d), buffer, err
}

// Parse walks over the &-separated pairs, calling cb for each of them in the order of
// appearance. Pairs missing the equal sign are passed with an empty value, as well as
// pairs with nothing after it. Empty pairs are skipped. The buffer is reused between
// pairs, returned strings are always copies.
func Parse(data, buff []byte, cb func(key, value string)) (buffer []byte, err error) {
	for len(data) > 0 {
		var pair []byte
		pair, data = cut(data, '&')
		if len(pair) == 0 {
			continue
		}

		rawKey, rawValue := cut(pair, '=')

		var decoded []byte
		if decoded, buff, err = Decode(rawKey, buff[:0]); err != nil {
			return buff, err
		}

		key := string(decoded)
		if decoded, buff, err = Decode(rawValue, buff[:0]); err != nil {
			return buff, err
		}

		cb(key, string(decoded))
	}

	return buff, nil
}

func cut(data []byte, sep byte) (before, after []byte) {
	if i := bytes.IndexByte(data, sep); i != -1 {
		return data[:i], data[i+1:]
	}

	return data, nil
}
