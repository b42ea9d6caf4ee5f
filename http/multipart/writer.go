package multipart

import (
	"io"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/internal/strutil"
	"github.com/indigo-web/multiform/kv"
)

// RandomBoundary generates a boundary, which is unlikely to appear in any body.
func RandomBoundary() string {
	return "----MultiformBoundary" + uniuri.NewLen(24)
}

// Writer encodes parts into a multipart/form-data body.
type Writer struct {
	w        io.Writer
	boundary string
	closed   bool
}

// NewWriter returns a writer using the boundary. Empty boundary is replaced by a random one.
func NewWriter(w io.Writer, boundary string) *Writer {
	if len(boundary) == 0 {
		boundary = RandomBoundary()
	}

	return &Writer{
		w:        w,
		boundary: boundary,
	}
}

func (w *Writer) Boundary() string {
	return w.boundary
}

// ContentType returns the value for the Content-Type header of the encoded body.
func (w *Writer) ContentType() string {
	return mime.Multipart + "; boundary=" + strutil.Quote(w.boundary)
}

// WriteField writes a text part.
func (w *Writer) WriteField(name, value string) error {
	headers := kv.New().Add("Content-Disposition", "form-data; name="+strutil.Quote(name))
	return w.WritePart(headers, strings.NewReader(value))
}

// WriteFile writes a file part. Empty content type is omitted.
func (w *Writer) WriteFile(name, filename string, contentType mime.MIME, body io.Reader) error {
	headers := kv.New().Add(
		"Content-Disposition",
		"form-data; name="+strutil.Quote(name)+"; filename="+strutil.Quote(filename),
	)
	if len(contentType) > 0 {
		headers.Add("Content-Type", contentType)
	}

	return w.WritePart(headers, body)
}

// WritePart writes a part with arbitrary headers. The body is written as is, so if
// Content-Transfer-Encoding is set, it must be encoded already.
func (w *Writer) WritePart(headers *kv.Storage, body io.Reader) error {
	var b strings.Builder
	b.WriteString("--")
	b.WriteString(w.boundary)
	b.WriteString("\r\n")

	for key, value := range headers.Pairs() {
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(value)
		b.WriteString("\r\n")
	}

	b.WriteString("\r\n")
	if _, err := io.WriteString(w.w, b.String()); err != nil {
		return err
	}

	if _, err := io.Copy(w.w, body); err != nil {
		return err
	}

	_, err := io.WriteString(w.w, "\r\n")
	return err
}

// Close writes the terminating boundary. No parts may be written afterward.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}

	w.closed = true
	_, err := io.WriteString(w.w, "--"+w.boundary+"--\r\n")
	return err
}
