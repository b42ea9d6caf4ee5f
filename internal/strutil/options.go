package strutil

import (
	"strings"
)

// ()<>@,;:\"/[]?={} SP HT
var specialChars = [256]bool{
	'(': true, ')': true, '<': true, '>': true, '@': true, ',': true, ';': true, ':': true,
	'\\': true, '"': true, '/': true, '[': true, ']': true, '?': true, '=': true, '{': true,
	'}': true, ' ': true, '\t': true,
}

// ParseOptions parses header values like `form-data; name="file"; filename=a.txt`. The primary
// value is lowercased and trimmed, option keys are lowercased and option values are unquoted.
// Malformed options are skipped up to the next semicolon.
func ParseOptions(header string) (value string, options map[string]string) {
	options = make(map[string]string)
	value, tail, found := strings.Cut(header, ";")
	value = strings.ToLower(strings.TrimSpace(value))
	if !found {
		return value, options
	}

	for len(tail) > 0 {
		var (
			key, val string
			ok       bool
		)

		key, val, tail, ok = nextOption(tail)
		if ok {
			options[key] = val
		}
	}

	return value, options
}

func nextOption(data string) (key, value, rest string, ok bool) {
	data = LStripWS(data)
	i := tokenLen(data)
	if i == 0 {
		return "", "", skipOption(data), false
	}

	key, data = strings.ToLower(data[:i]), LStripWS(data[i:])
	if len(data) == 0 || data[0] != '=' {
		return "", "", skipOption(data), false
	}

	data = LStripWS(data[1:])
	if len(data) > 0 && data[0] == '"' {
		end := quotedLen(data)
		if end == -1 {
			return "", "", skipOption(data), false
		}

		value = unquoteOption(data[:end], key == "filename")
		return key, value, skipOption(data[end:]), true
	}

	i = tokenLen(data)
	if i == 0 {
		return "", "", skipOption(data), false
	}

	return key, data[:i], skipOption(data[i:]), true
}

// skipOption returns everything after the next semicolon.
func skipOption(data string) string {
	if semicolon := strings.IndexByte(data, ';'); semicolon != -1 {
		return data[semicolon+1:]
	}

	return ""
}

func tokenLen(data string) int {
	for i := 0; i < len(data); i++ {
		if specialChars[data[i]] {
			return i
		}
	}

	return len(data)
}

// quotedLen returns the length of the quoted string the data starts with, including both
// quotes. -1 is returned if the closing quote is missing.
func quotedLen(data string) int {
	for i := 1; i < len(data); i++ {
		switch data[i] {
		case '\\':
			i++
		case '"':
			return i + 1
		}
	}

	return -1
}

func unquoteOption(quoted string, filename bool) string {
	val := quoted[1 : len(quoted)-1]
	if filename && looksLikeWindowsPath(val) {
		// some browsers submit the full client-side path instead of a filename
		val = val[strings.LastIndexByte(val, '\\')+1:]
	}

	if strings.IndexByte(val, '\\') == -1 {
		return val
	}

	var b strings.Builder
	b.Grow(len(val))

	for i := 0; i < len(val); i++ {
		if val[i] == '\\' && i+1 < len(val) && (val[i+1] == '\\' || val[i+1] == '"') {
			i++
		}

		b.WriteByte(val[i])
	}

	return b.String()
}

func looksLikeWindowsPath(val string) bool {
	return (len(val) > 2 && val[1:3] == `:\`) || strings.HasPrefix(val, `\\`)
}

// Quote wraps the value into quotes, escaping backslashes and quotes, but only if it contains
// characters not allowed in a token. Otherwise, the value is returned as is.
func Quote(value string) string {
	if len(value) > 0 && tokenLen(value) == len(value) {
		return value
	}

	var b strings.Builder
	b.Grow(len(value) + 2)
	b.WriteByte('"')

	for i := 0; i < len(value); i++ {
		if c := value[i]; c == '\\' || c == '"' {
			b.WriteByte('\\')
		}

		b.WriteByte(value[i])
	}

	b.WriteByte('"')
	return b.String()
}
