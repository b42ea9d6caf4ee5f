package multipart

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"mime/quotedprintable"
	"os"
	"strconv"
	"strings"

	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/internal/charset"
	"github.com/indigo-web/multiform/internal/spool"
	"github.com/indigo-web/multiform/internal/strutil"
	"github.com/indigo-web/multiform/kv"
)

type state uint8

const (
	collectingHeaders state = iota
	bodyReady
	collectingBody
	finished
)

type encoding uint8

const (
	identity encoding = iota
	base64Encoding
	quotedPrintable
)

// Part is a single entry of a multipart body. Its fields are filled as soon as the headers
// section is over, the body is complete only after the part was returned by the Parser.
type Part struct {
	// Disposition is the lowercased value of the Content-Disposition header, without options.
	Disposition string
	// Name and Filename are the Content-Disposition options.
	Name, Filename string
	// ContentType is the lowercased Content-Type without options. Defaults to text/plain.
	ContentType mime.MIME
	// Charset is the Content-Type charset option, or the default charset if none.
	Charset mime.Charset
	// TransferEncoding is the lowercased value of the Content-Transfer-Encoding header.
	TransferEncoding string
	// ContentLength is the declared length of the body, or -1 if none was declared.
	ContentLength int64

	headers         *kv.Storage
	body            *spool.Buffer
	cursor          *io.SectionReader
	held            []byte
	state           state
	encoding        encoding
	spoolDir        string
	partMemoryLimit int64
	logger          *slog.Logger
}

func newPart(cs mime.Charset, spoolDir string, partMemoryLimit int64, logger *slog.Logger) *Part {
	return &Part{
		Charset:         cs,
		ContentLength:   -1,
		headers:         kv.NewFolded(),
		spoolDir:        spoolDir,
		partMemoryLimit: partMemoryLimit,
		logger:          logger,
	}
}

// Header returns the first value of the header, or an empty string. Lookup is case-insensitive.
func (p *Part) Header(name string) string {
	return p.headers.Value(name)
}

// Headers returns all the headers of the part in the order of appearance, duplicates included.
func (p *Part) Headers() *kv.Storage {
	return p.headers
}

// Size returns the number of body bytes stored so far.
func (p *Part) Size() int64 {
	if p.body == nil {
		return 0
	}

	return p.body.Size()
}

// Buffered tells whether the body is kept in memory.
func (p *Part) Buffered() bool {
	return p.body == nil || p.body.Buffered()
}

// IsFile tells whether the part carries a file upload.
func (p *Part) IsFile() bool {
	return len(p.Filename) > 0
}

func (p *Part) feed(line, term []byte) error {
	if p.state == collectingHeaders {
		return p.writeHeader(line, term)
	}

	return p.writeBody(line, term)
}

func (p *Part) writeHeader(line, term []byte) error {
	if len(term) == 0 {
		return status.ErrHeaderTooLong
	}

	str := string(line)
	if len(strings.TrimSpace(str)) == 0 {
		return p.finishHeader()
	}

	if (str[0] == ' ' || str[0] == '\t') && !p.headers.Empty() {
		// folded header continues the previous one
		pairs := p.headers.Expose()
		pairs[len(pairs)-1].Value += strings.TrimSpace(str)
		return nil
	}

	name, value, found := strings.Cut(str, ":")
	if !found {
		return fmt.Errorf("%w: %q", status.ErrHeaderSyntax, str)
	}

	p.headers.Add(strings.TrimSpace(name), strings.TrimSpace(value))
	return nil
}

func (p *Part) finishHeader() error {
	p.state = bodyReady
	p.body = spool.New(p.spoolDir)

	disposition := p.headers.Value("Content-Disposition")
	if len(disposition) == 0 {
		return status.ErrNoDisposition
	}

	var params map[string]string
	p.Disposition, params = strutil.ParseOptions(disposition)
	p.Name, p.Filename = params["name"], params["filename"]

	contentType, options := strutil.ParseOptions(p.headers.Value("Content-Type"))
	p.ContentType = contentType
	if len(p.ContentType) == 0 {
		p.ContentType = mime.Plain
	}

	if cs := options["charset"]; len(cs) > 0 {
		p.Charset = mime.NormalizeCharset(cs)
	}

	if value, found := p.headers.Get("Content-Length"); found {
		length, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
		if err != nil || length < 0 {
			return fmt.Errorf("%w: %q", status.ErrBadContentLength, value)
		}

		p.ContentLength = length
	}

	p.TransferEncoding = strings.ToLower(strings.TrimSpace(p.headers.Value("Content-Transfer-Encoding")))
	switch p.TransferEncoding {
	case "", "identity", "7bit", "8bit", "binary":
		p.encoding = identity
	case "base64":
		p.encoding = base64Encoding
	case "quoted-printable":
		p.encoding = quotedPrintable
	default:
		return fmt.Errorf("%w: %q", status.ErrBadTransferEncoding, p.TransferEncoding)
	}

	return nil
}

func (p *Part) writeBody(line, term []byte) (err error) {
	p.state = collectingBody
	if len(line) == 0 && len(term) == 0 {
		// doesn't flush the held terminator either
		return nil
	}

	if p.encoding != identity && len(term) == 0 {
		return status.ErrEncodedLineTooLong
	}

	switch p.encoding {
	case quotedPrintable:
		if bytes.HasSuffix(line, []byte("=")) {
			// soft line break, the next line continues this one
			term = nil
		}

		if line, err = decodeQuotedPrintable(line); err != nil {
			return err
		}
	case base64Encoding:
		if line, err = decodeBase64(line); err != nil {
			return err
		}

		term = nil
	}

	if _, err = p.body.Write(p.held); err != nil {
		return err
	}

	if _, err = p.body.Write(line); err != nil {
		return err
	}

	p.held = term

	if p.ContentLength >= 0 && p.Size() > p.ContentLength {
		return status.ErrPartTooLarge
	}

	if p.Size() > p.partMemoryLimit && p.body.Buffered() {
		if err = p.body.Spool(); err != nil {
			return err
		}

		p.logger.Debug("part spooled to disk",
			slog.String("name", p.Name),
			slog.Int64("size", p.Size()),
			slog.String("path", p.body.Path()))
	}

	return nil
}

// finish drops the held terminator, as it belongs to the boundary.
func (p *Part) finish() {
	p.state = finished
	p.held = nil
	if p.body == nil {
		p.body = spool.New(p.spoolDir)
	}

	p.cursor = p.body.Section()
}

func decodeQuotedPrintable(line []byte) ([]byte, error) {
	src := line
	if bytes.HasSuffix(line, []byte("=")) {
		// the decoder insists on a newline after a soft break, which we've already stripped
		src = append(src[:len(src):len(src)], "\r\n"...)
	}

	decoded, err := io.ReadAll(quotedprintable.NewReader(bytes.NewReader(src)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", status.ErrBadEncoding, err)
	}

	return decoded, nil
}

func decodeBase64(line []byte) ([]byte, error) {
	line = bytes.TrimSpace(line)
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(line)))
	n, err := base64.StdEncoding.Decode(decoded, line)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", status.ErrBadEncoding, err)
	}

	return decoded[:n], nil
}

// Read implements io.Reader over the body. Reading is possible only after the part is complete.
func (p *Part) Read(b []byte) (n int, err error) {
	if p.cursor == nil {
		return 0, io.EOF
	}

	return p.cursor.Read(b)
}

// Seek implements io.Seeker over the body.
func (p *Part) Seek(offset int64, whence int) (int64, error) {
	if p.cursor == nil {
		return 0, nil
	}

	return p.cursor.Seek(offset, whence)
}

// Bytes returns the whole body. The read position is left unchanged.
func (p *Part) Bytes() ([]byte, error) {
	if p.body == nil {
		return nil, nil
	}

	if p.body.Buffered() {
		return p.body.Bytes(), nil
	}

	return io.ReadAll(p.body.Section())
}

// Value returns the body decoded from the part's charset into a string. If the body is
// longer than limit bytes, status.ErrValueTooLarge is returned instead of silently
// truncating it.
func (p *Part) Value(limit int64) (string, error) {
	if p.Size() > limit {
		return "", status.ErrValueTooLarge
	}

	data, err := p.Bytes()
	if err != nil {
		return "", err
	}

	return charset.Decode(p.Charset, data)
}

// SaveTo copies the whole body into the writer. The read position is left unchanged,
// regardless of the outcome.
func (p *Part) SaveTo(w io.Writer) (int64, error) {
	if p.body == nil {
		return 0, nil
	}

	return io.Copy(w, p.body.Section())
}

// Save writes the whole body into the file at path, creating or truncating it.
func (p *Part) Save(path string) (n int64, err error) {
	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}

	defer func() {
		if closeErr := file.Close(); err == nil {
			err = closeErr
		}
	}()

	return p.SaveTo(file)
}

// Close releases the body storage, removing the spooled file if any.
func (p *Part) Close() error {
	if p.body == nil {
		return nil
	}

	p.cursor = nil
	return p.body.Close()
}
