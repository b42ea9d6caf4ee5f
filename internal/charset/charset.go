// Package charset transcodes text values into UTF-8.
package charset

import (
	"fmt"

	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/utils/uf"
	"golang.org/x/text/encoding/htmlindex"
)

// Decode returns the data transcoded from the charset into a UTF-8 string. UTF-8 and ASCII
// data is returned as is. Any label known to the WHATWG encoding standard is accepted.
func Decode(charset mime.Charset, data []byte) (string, error) {
	switch charset {
	case mime.UTF8, mime.ASCII:
		return string(data), nil
	}

	enc, err := htmlindex.Get(charset)
	if err != nil {
		return "", fmt.Errorf("%w: %q", status.ErrUnsupportedCharset, charset)
	}

	decoded, err := enc.NewDecoder().Bytes(data)
	if err != nil {
		return "", fmt.Errorf("%w: %s", status.ErrBadEncoding, err)
	}

	return uf.B2S(decoded), nil
}

// Supported tells whether values in the charset can be decoded.
func Supported(charset mime.Charset) bool {
	switch charset {
	case mime.UTF8, mime.ASCII:
		return true
	}

	_, err := htmlindex.Get(charset)
	return err == nil
}
