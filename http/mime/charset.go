package mime

import "strings"

type Charset = string

const (
	UTF8   Charset = "utf8"
	ASCII  Charset = "ascii"
	Latin1 Charset = "latin1"
)

// NormalizeCharset maps aliases of the supported charsets onto their canonical names. Unknown
// charsets are returned lowercased, as is.
func NormalizeCharset(charset string) Charset {
	switch c := strings.ToLower(strings.TrimSpace(charset)); c {
	case "utf8", "utf-8":
		return UTF8
	case "ascii", "us-ascii":
		return ASCII
	case "latin1", "latin-1", "iso-8859-1", "iso8859-1", "l1":
		return Latin1
	default:
		return c
	}
}
