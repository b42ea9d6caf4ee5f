package hexconv

// Halfbyte maps a hex digit onto its value. Non-hex characters are mapped onto 0xff,
// so a|b > 0x0f check catches an invalid pair at once.
var Halfbyte = func() (table [256]byte) {
	for i := range table {
		table[i] = 0xff
	}

	for c := byte('0'); c <= '9'; c++ {
		table[c] = c - '0'
	}

	for c := byte('a'); c <= 'f'; c++ {
		table[c] = c - 'a' + 10
		table[c-'a'+'A'] = c - 'a' + 10
	}

	return table
}()
