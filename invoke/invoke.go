// Package invoke adapts raw invocations, like the ones of serverless platforms, to the form
// decoder: the body may arrive base64-encoded, and the reply is a JSON document of the fields
// with files embedded as base64.
package invoke

import (
	"bytes"
	"context"
	"encoding/base64"
	"io"
	"log/slog"
	"strings"

	"github.com/dchest/uniuri"
	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/form"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/store"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type Request struct {
	Body    string
	Base64  bool
	Headers map[string]string
	Method  string
	// ID names the stored form. A random one is generated if empty.
	ID string
}

type Response struct {
	StatusCode int
	Body       map[string]any
}

// JSON renders the body.
func (r Response) JSON() ([]byte, error) {
	return json.Marshal(r.Body)
}

// Persister stores a decoded form under the prefix.
type Persister func(ctx context.Context, prefix string, f *form.Form) error

// Store returns a Persister writing forms into the store one object at a time.
func Store(st store.Store) Persister {
	return func(ctx context.Context, prefix string, f *form.Form) error {
		return store.Persist(ctx, st, prefix, f)
	}
}

type Option func(*Handler)

func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithPersister makes every successfully decoded form be stored before the reply.
func WithPersister(persist Persister) Option {
	return func(h *Handler) {
		h.persist = persist
	}
}

type Handler struct {
	decoder *form.Decoder
	persist Persister
	logger  *slog.Logger
}

// New returns a handler. Forms are always decoded strictly, regardless of the config.
func New(cfg *config.Config, opts ...Option) *Handler {
	h := &Handler{
		logger: slog.New(slog.DiscardHandler),
	}

	for _, opt := range opts {
		opt(h)
	}

	strict := *cfg
	strict.Form.Strict = true
	h.decoder = form.NewDecoder(&strict, form.WithLogger(h.logger))

	return h
}

// Handle decodes the request. Decoding failures are reported in the response as well as
// returned, the response is always valid.
func (h *Handler) Handle(ctx context.Context, req Request) (Response, error) {
	body := []byte(req.Body)
	if req.Base64 {
		decoded, err := base64.StdEncoding.DecodeString(req.Body)
		if err != nil {
			return h.fail(status.ErrBadBase64Body), status.ErrBadBase64Body
		}

		body = decoded
	}

	return h.HandleBody(
		ctx, req.ID, req.Method, header(req.Headers, "Content-Type"), bytes.NewReader(body), int64(len(body)),
	)
}

// HandleBody is Handle for bodies which are already decoded, streaming from the reader.
// Negative contentLength means the length is unknown.
func (h *Handler) HandleBody(
	ctx context.Context, id, method, contentType string, body io.Reader, contentLength int64,
) (Response, error) {
	f, err := h.decoder.Decode(method, contentType, body, contentLength)
	if err != nil {
		return h.fail(err), err
	}

	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			h.logger.Warn("releasing form", slog.String("error", closeErr.Error()))
		}
	}()

	reply, err := Render(f)
	if err != nil {
		return h.fail(err), err
	}

	if h.persist != nil {
		if len(id) == 0 {
			id = uniuri.New()
		}

		if err = h.persist(ctx, id, f); err != nil {
			return h.fail(err), err
		}

		h.logger.Info("form stored",
			slog.String("id", id),
			slog.Int("fields", f.Fields.Len()),
			slog.Int("files", len(f.Files)))
	}

	return Response{
		StatusCode: int(status.OK),
		Body:       reply,
	}, nil
}

// Render maps the form into a JSON-friendly document: fields by their values, and files
// by their base64-encoded contents. A file shadows a field of the same name.
func Render(f *form.Form) (map[string]any, error) {
	reply := f.Values()
	for _, file := range f.Files {
		data, err := file.Bytes()
		if err != nil {
			return nil, err
		}

		reply[file.Name] = base64.StdEncoding.EncodeToString(data)
	}

	return reply, nil
}

func (h *Handler) fail(err error) Response {
	code := status.CodeOf(err)
	h.logger.Debug("invocation failed",
		slog.String("error", err.Error()),
		slog.Int("status", int(code)))

	return Response{
		StatusCode: int(code),
		Body: map[string]any{
			"error": err.Error(),
		},
	}
}

func header(headers map[string]string, name string) string {
	if value, found := headers[name]; found {
		return value
	}

	for key, value := range headers {
		if strings.EqualFold(key, name) {
			return value
		}
	}

	return ""
}
