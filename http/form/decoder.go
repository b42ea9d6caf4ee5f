// Package form decodes request bodies of HTML forms, both multipart/form-data and
// application/x-www-form-urlencoded ones.
package form

import (
	"io"
	"log/slog"

	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/multipart"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/internal/formdata"
	"github.com/indigo-web/multiform/internal/strutil"
	"github.com/indigo-web/utils/strcomp"
)

type Option func(*Decoder)

// WithLogger sets the logger. Failures swallowed in lenient mode are reported at debug
// level, as well as parts spooled to disk.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Decoder) {
		d.logger = logger
	}
}

// Decoder decodes form bodies. It holds no per-request state, so a single instance may be
// shared by any number of goroutines.
type Decoder struct {
	cfg    *config.Config
	logger *slog.Logger
}

func NewDecoder(cfg *config.Config, opts ...Option) *Decoder {
	d := &Decoder{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Decode decodes the body according to the content type. Negative contentLength means the
// length is unknown.
//
// If config.Form.Strict is unset, an empty form and no error are returned on any failure,
// partially decoded data is never exposed.
func (d *Decoder) Decode(method, contentType string, body io.Reader, contentLength int64) (*Form, error) {
	f, err := d.decode(method, contentType, body, contentLength)
	if err != nil {
		if d.cfg.Form.Strict {
			return nil, err
		}

		d.logger.Debug("form decoding failed",
			slog.String("error", err.Error()),
			slog.String("kind", status.KindOf(err).String()),
			slog.String("content_type", contentType),
		)

		return newForm(0), nil
	}

	return f, nil
}

func (d *Decoder) decode(method, contentType string, body io.Reader, contentLength int64) (*Form, error) {
	if !strcomp.EqualFold(method, "POST") && !strcomp.EqualFold(method, "PUT") {
		return nil, status.ErrMethodNotAllowed
	}

	value, options := strutil.ParseOptions(contentType)
	if len(value) == 0 {
		return nil, status.ErrNoContentType
	}

	charset := d.cfg.Form.DefaultCharset
	if cs := options["charset"]; len(cs) > 0 {
		charset = mime.NormalizeCharset(cs)
	}

	switch {
	case value == mime.Multipart:
		return d.multipart(options["boundary"], charset, body, contentLength)
	case mime.Urlencoded(value):
		return d.urlencoded(charset, body, contentLength)
	default:
		return nil, status.ErrUnsupportedMediaType
	}
}

func (d *Decoder) multipart(boundary, charset string, body io.Reader, contentLength int64) (*Form, error) {
	parser, err := multipart.NewParser(
		d.cfg, body, boundary, contentLength,
		multipart.WithCharset(charset), multipart.WithLogger(d.logger),
	)
	if err != nil {
		return nil, err
	}

	f := newForm(d.cfg.Form.FieldsPrealloc)
	f.Files, err = formdata.ParseMultipart(parser, f.Fields, d.cfg.Form.MemoryLimit)
	if err != nil {
		_ = parser.Close()
		return nil, err
	}

	return f, nil
}

func (d *Decoder) urlencoded(charset string, body io.Reader, contentLength int64) (*Form, error) {
	memory, _ := d.cfg.Limits()
	if contentLength > d.cfg.Body.MaxContentLength {
		return nil, status.ErrContentLengthTooLarge
	}

	data, err := formdata.ReadLimited(body, contentLength, memory)
	if err != nil {
		return nil, err
	}

	f := newForm(d.cfg.Form.FieldsPrealloc)
	if _, err = formdata.ParseURLEncoded(f.Fields, data, nil, charset); err != nil {
		return nil, err
	}

	return f, nil
}
