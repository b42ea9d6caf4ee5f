// Package multipart decodes multipart/form-data bodies part by part, keeping both memory
// and disk consumption under the configured ceilings.
package multipart

import (
	"bytes"
	"errors"
	"io"
	"iter"
	"log/slog"

	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/internal/lines"
)

type Option func(*Parser)

// WithLogger sets the logger, used to report spooling.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Parser) {
		p.logger = logger
	}
}

// WithCharset overrides the default charset of text parts, which is otherwise taken
// from the config.
func WithCharset(charset mime.Charset) Option {
	return func(p *Parser) {
		p.charset = mime.NormalizeCharset(charset)
	}
}

// Parser is a single parsing session over a multipart body. Parts are parsed lazily, one
// per pull, and each of them is returned only after its closing boundary was seen. Already
// returned parts are cached, so iterating over the parser again doesn't touch the source.
//
// Parser isn't safe for concurrent use. The caller must Close it in order to release the
// spooled parts.
type Parser struct {
	cfg        *config.Config
	lines      *lines.Reader
	separator  []byte
	terminator []byte
	memLimit   int64
	memUsed    int64
	diskUsed   int64
	charset    mime.Charset
	logger     *slog.Logger
	done       []*Part
	current    *Part
	started    bool
	finished   bool
	tail       bool
	err        error
}

// NewParser returns a parser over the source. Negative contentLength means the body length
// is unknown, otherwise no more than contentLength bytes are read from the source.
func NewParser(
	cfg *config.Config, src io.Reader, boundary string, contentLength int64, opts ...Option,
) (*Parser, error) {
	memLimit, bufferSize := cfg.Limits()

	switch {
	case len(boundary) == 0:
		return nil, status.ErrNoBoundary
	case bufferSize-6 < len(boundary): // "--boundary--\r\n"
		return nil, status.ErrBoundaryTooLong
	case contentLength > cfg.Body.MaxContentLength:
		return nil, status.ErrContentLengthTooLarge
	}

	p := &Parser{
		cfg:        cfg,
		lines:      lines.NewReader(src, bufferSize, contentLength),
		separator:  []byte("--" + boundary),
		terminator: []byte("--" + boundary + "--"),
		memLimit:   memLimit,
		charset:    cfg.Form.DefaultCharset,
		logger:     slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p, nil
}

// Next returns the next part. io.EOF is returned after the last one. Any other error
// is terminal and is returned by every following call.
func (p *Parser) Next() (*Part, error) {
	if p.err != nil {
		return nil, p.err
	}

	if p.finished {
		return nil, io.EOF
	}

	part, err := p.next()
	if err != nil {
		p.err = err
		if p.current != nil {
			_ = p.current.Close()
			p.current = nil
		}

		return nil, err
	}

	p.done = append(p.done, part)
	return part, nil
}

func (p *Parser) next() (*Part, error) {
	if !p.started {
		if err := p.skipPreamble(); err != nil {
			return nil, err
		}

		p.started = true
		p.current = p.newPart()
	}

	for {
		line, term, err := p.lines.Next()
		switch err {
		case nil:
		case io.EOF:
			return nil, status.ErrUnexpectedEOF
		default:
			return nil, err
		}

		// a line continuing a cut one might look like a boundary by a pure coincidence
		if !p.tail {
			isBoundary := bytes.Equal(line, p.terminator) || bytes.Equal(line, p.separator)
			if isBoundary && p.current.state == collectingHeaders {
				return nil, status.ErrHeaderNotClosed
			}

			if bytes.Equal(line, p.terminator) {
				p.finished = true
				return p.finishPart(), nil
			}

			if bytes.Equal(line, p.separator) {
				part := p.finishPart()
				p.current = p.newPart()
				return part, nil
			}
		}

		p.tail = len(term) == 0
		if err = p.current.feed(line, term); err != nil {
			return nil, err
		}

		if err = p.checkQuota(p.current); err != nil {
			return nil, err
		}
	}
}

func (p *Parser) skipPreamble() error {
	for {
		line, _, err := p.lines.Next()
		switch err {
		case nil:
		case io.EOF:
			return status.ErrNoBoundaryPrefix
		default:
			return err
		}

		if len(line) == 0 {
			continue
		}

		if !bytes.Equal(line, p.separator) {
			return status.ErrNoBoundaryPrefix
		}

		return nil
	}
}

func (p *Parser) newPart() *Part {
	return newPart(p.charset, p.cfg.Form.SpoolDir, p.cfg.Form.PartMemoryLimit, p.logger)
}

func (p *Parser) finishPart() *Part {
	part := p.current
	p.current = nil
	part.finish()

	if part.Buffered() {
		p.memUsed += part.Size()
	} else {
		p.diskUsed += part.Size()
	}

	return part
}

func (p *Parser) checkQuota(part *Part) error {
	if part.Buffered() {
		if p.memUsed+part.Size() > p.memLimit {
			return status.ErrMemoryLimit
		}
	} else if p.diskUsed+part.Size() > p.cfg.Form.DiskLimit {
		return status.ErrDiskLimit
	}

	return nil
}

// Parts returns an iterator over all the parts. Already parsed parts are yielded first,
// then the rest is pulled from the source. A failure is yielded once as the last element.
func (p *Parser) Parts() iter.Seq2[*Part, error] {
	return func(yield func(*Part, error) bool) {
		for i := 0; ; i++ {
			if i < len(p.done) {
				if !yield(p.done[i], nil) {
					return
				}

				continue
			}

			part, err := p.Next()
			switch err {
			case nil:
			case io.EOF:
				return
			default:
				yield(nil, err)
				return
			}

			if !yield(part, nil) {
				return
			}
		}
	}
}

// All parses the rest of the body and returns all the parts.
func (p *Parser) All() ([]*Part, error) {
	for _, err := range p.Parts() {
		if err != nil {
			return nil, err
		}
	}

	return p.done, nil
}

// Get returns the first part with the name, or nil if there's none.
func (p *Parser) Get(name string) (*Part, error) {
	for part, err := range p.Parts() {
		if err != nil {
			return nil, err
		}

		if part.Name == name {
			return part, nil
		}
	}

	return nil, nil
}

// GetAll returns all the parts with the name.
func (p *Parser) GetAll(name string) (parts []*Part, err error) {
	for part, err := range p.Parts() {
		if err != nil {
			return nil, err
		}

		if part.Name == name {
			parts = append(parts, part)
		}
	}

	return parts, nil
}

// Usage returns how many bytes of finished parts are kept in memory and on disk.
func (p *Parser) Usage() (memory, disk int64) {
	return p.memUsed, p.diskUsed
}

// Close releases all the parts, including already returned ones.
func (p *Parser) Close() error {
	var errs []error

	for _, part := range p.done {
		errs = append(errs, part.Close())
	}

	if p.current != nil {
		errs = append(errs, p.current.Close())
		p.current = nil
	}

	return errors.Join(errs...)
}
