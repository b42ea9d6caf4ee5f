// Package lines splits a byte stream into lines, recognizing every common line
// terminator and bounding the memory it takes regardless of lines lengths.
package lines

import (
	"io"
)

var (
	CRLF = []byte("\r\n")
	LF   = []byte("\n")
	CR   = []byte("\r")
)

// Reader produces (line, terminator) pairs out of the source. Terminators are CRLF, LF and
// CR not followed by LF. Lines longer than the limit are split into chunks of the limit size,
// where every chunk except the last one has an empty terminator. Chunks are never cut between
// CR and LF. At most limit+2 bytes are buffered.
type Reader struct {
	src       io.Reader
	buf       []byte
	begin     int
	limit     int
	readLimit int64
	eof       bool
	err       error
}

// NewReader returns a Reader over the source. Negative readLimit means the source is read
// until exhausted, otherwise no more than readLimit bytes are read from it at all.
func NewReader(src io.Reader, limit int, readLimit int64) *Reader {
	limit = max(limit, 2)

	return &Reader{
		src:       src,
		buf:       make([]byte, 0, limit+2),
		limit:     limit,
		readLimit: readLimit,
	}
}

// Next returns the next line and its terminator. io.EOF is returned after the last line.
// Both slices are valid only until the next call.
func (r *Reader) Next() (line, term []byte, err error) {
	for {
		if line, term, ok := r.scan(); ok {
			return line, term, nil
		}

		if r.eof {
			if r.begin == len(r.buf) {
				return nil, nil, io.EOF
			}

			line = r.buf[r.begin:]
			r.begin = len(r.buf)
			return line, nil, nil
		}

		if r.err != nil {
			return nil, nil, r.err
		}

		r.fill()
	}
}

func (r *Reader) scan() (line, term []byte, ok bool) {
	data := r.buf[r.begin:]
	idx := indexTerminator(data)

	if idx == -1 || idx > r.limit {
		if len(data) < r.limit {
			return nil, nil, false
		}

		// no terminators in the first limit bytes, so cutting here never separates CR and LF
		r.begin += r.limit
		return data[:r.limit], nil, true
	}

	switch {
	case data[idx] == '\n':
		term = LF
	case idx+1 < len(data):
		term = CR
		if data[idx+1] == '\n' {
			term = CRLF
		}
	case r.eof:
		term = CR
	default:
		// CR is the last byte we've got, therefore LF might follow it
		return nil, nil, false
	}

	r.begin += idx + len(term)
	return data[:idx], term, true
}

func (r *Reader) fill() {
	if r.begin > 0 {
		n := copy(r.buf, r.buf[r.begin:])
		r.buf, r.begin = r.buf[:n], 0
	}

	free := int64(cap(r.buf) - len(r.buf))
	if r.readLimit >= 0 {
		free = min(free, r.readLimit)
		if free == 0 {
			r.eof = true
			return
		}
	}

	n, err := r.src.Read(r.buf[len(r.buf) : len(r.buf)+int(free)])
	r.buf = r.buf[:len(r.buf)+n]
	if r.readLimit >= 0 {
		r.readLimit -= int64(n)
	}

	switch err {
	case nil:
	case io.EOF:
		r.eof = true
	default:
		r.err = err
	}
}

func indexTerminator(data []byte) int {
	for i, c := range data {
		if c == '\r' || c == '\n' {
			return i
		}
	}

	return -1
}
