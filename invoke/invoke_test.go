package invoke

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/form"
	"github.com/indigo-web/multiform/http/multipart"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/store"
	"github.com/stretchr/testify/require"
)

// sampleBody is a form with a photo file and two text fields, as sent by curl.
const sampleBody = "LS0tLS0tLS0tLS0tLS0tLS0tLS0tLS0tLS05NTc0MmEwYmJkOGE5MjU3DQpDb250ZW50LURpc3Bvc2l0aW9uOiBmb3JtLWRhdGE7IG5hbWU9InBob3RvIjsgZmlsZW5hbWU9ImhlbGxvLnR4dCINCkNvbnRlbnQtVHlwZTogdGV4dC9wbGFpbg0KDQpoZWxsbwoNCi0tLS0tLS0tLS0tLS0tLS0tLS0tLS0tLS0tOTU3NDJhMGJiZDhhOTI1Nw0KQ29udGVudC1EaXNwb3NpdGlvbjogZm9ybS1kYXRhOyBuYW1lPSJuYW1lIg0KDQpoZWxsbw0KLS0tLS0tLS0tLS0tLS0tLS0tLS0tLS0tLS05NTc0MmEwYmJkOGE5MjU3DQpDb250ZW50LURpc3Bvc2l0aW9uOiBmb3JtLWRhdGE7IG5hbWU9ImVtYWlsIg0KDQpoQGwubw0KLS0tLS0tLS0tLS0tLS0tLS0tLS0tLS0tLS05NTc0MmEwYmJkOGE5MjU3LS0NCg=="

const sampleType = "multipart/form-data; boundary=------------------------95742a0bbd8a9257"

func TestHandle(t *testing.T) {
	t.Run("base64 multipart", func(t *testing.T) {
		h := New(config.Default())
		resp, err := h.Handle(context.Background(), Request{
			Body:    sampleBody,
			Base64:  true,
			Headers: map[string]string{"content-type": sampleType},
			Method:  "post",
		})
		require.NoError(t, err)
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, map[string]any{
			"photo": base64.StdEncoding.EncodeToString([]byte("hello\n")),
			"name":  "hello",
			"email": "h@l.o",
		}, resp.Body)

		data, err := resp.JSON()
		require.NoError(t, err)
		require.JSONEq(t, `{"email":"h@l.o","name":"hello","photo":"aGVsbG8K"}`, string(data))
	})

	t.Run("plain urlencoded", func(t *testing.T) {
		resp, err := New(config.Default()).Handle(context.Background(), Request{
			Body:    "a=1&a=2&b=x",
			Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
			Method:  "PUT",
		})
		require.NoError(t, err)
		require.Equal(t, map[string]any{"a": []string{"1", "2"}, "b": "x"}, resp.Body)
	})

	t.Run("failures", func(t *testing.T) {
		for _, tc := range []struct {
			Name string
			Req  Request
			Err  error
			Code int
		}{
			{
				"bad base64",
				Request{Body: "***", Base64: true, Method: "POST"},
				status.ErrBadBase64Body, 400,
			},
			{
				"method",
				Request{Body: sampleBody, Base64: true, Method: "GET", Headers: map[string]string{"CONTENT-TYPE": sampleType}},
				status.ErrMethodNotAllowed, 405,
			},
			{
				"protocol",
				Request{Body: "nothing", Method: "POST", Headers: map[string]string{"Content-Type": sampleType}},
				status.ErrNoBoundaryPrefix, 400,
			},
			{
				"no content type",
				Request{Body: "a=b", Method: "POST"},
				status.ErrNoContentType, 400,
			},
		} {
			t.Run(tc.Name, func(t *testing.T) {
				resp, err := New(config.Default()).Handle(context.Background(), tc.Req)
				require.ErrorIs(t, err, tc.Err)
				require.Equal(t, tc.Code, resp.StatusCode)
				require.Equal(t, tc.Err.Error(), resp.Body["error"])
			})
		}
	})

	t.Run("resource limit", func(t *testing.T) {
		cfg := config.Default()
		cfg.Form.MemoryLimit = 4
		resp, err := New(cfg).Handle(context.Background(), Request{
			Body:    "a=12345",
			Headers: map[string]string{"Content-Type": "application/x-www-form-urlencoded"},
			Method:  "POST",
		})
		require.Equal(t, status.KindResourceLimit, status.KindOf(err))
		require.Equal(t, 413, resp.StatusCode)
	})

	t.Run("truncation", func(t *testing.T) {
		cfg := config.Default()
		cfg.Form.MemoryLimit = 64
		cfg.Form.PartMemoryLimit = 8
		cfg.Form.BufferSize = 128

		var buff bytes.Buffer
		w := multipart.NewWriter(&buff, "short")
		require.NoError(t, w.WriteField("long", strings.Repeat("x", 100)))
		require.NoError(t, w.Close())

		resp, err := New(cfg).Handle(context.Background(), Request{
			Body:    buff.String(),
			Headers: map[string]string{"Content-Type": w.ContentType()},
			Method:  "POST",
		})
		require.ErrorIs(t, err, status.ErrValueTooLarge)
		require.Equal(t, 413, resp.StatusCode)
	})
}

func TestPersist(t *testing.T) {
	t.Run("store", func(t *testing.T) {
		st := store.NewMemory()
		h := New(config.Default(), WithPersister(Store(st)))
		_, err := h.Handle(context.Background(), Request{
			Body:    sampleBody,
			Base64:  true,
			Headers: map[string]string{"content-type": sampleType},
			Method:  "POST",
			ID:      "req-1",
		})
		require.NoError(t, err)
		require.Equal(t, []string{"req-1/fields.json", "req-1/files/photo/hello.txt"}, st.Keys())
	})

	t.Run("random id", func(t *testing.T) {
		var prefix string
		h := New(config.Default(), WithPersister(func(_ context.Context, p string, f *form.Form) error {
			prefix = p
			return nil
		}))
		_, err := h.Handle(context.Background(), Request{
			Body:    "a=b",
			Headers: map[string]string{"content-type": "application/x-www-form-urlencoded"},
			Method:  "POST",
		})
		require.NoError(t, err)
		require.NotEmpty(t, prefix)
	})

	t.Run("failure", func(t *testing.T) {
		h := New(config.Default(), WithPersister(func(context.Context, string, *form.Form) error {
			return errors.New("bucket is gone")
		}))
		resp, err := h.Handle(context.Background(), Request{
			Body:    "a=b",
			Headers: map[string]string{"content-type": "application/x-www-form-urlencoded"},
			Method:  "POST",
		})
		require.EqualError(t, err, "bucket is gone")
		require.Equal(t, 500, resp.StatusCode)
	})
}
