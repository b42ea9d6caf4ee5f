package formdata

import (
	"io"

	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/internal/charset"
	"github.com/indigo-web/multiform/internal/urlencoded"
	"github.com/indigo-web/multiform/kv"
)

// ReadLimited reads the whole body, refusing the ones longer than limit bytes. Negative
// contentLength means the length is unknown.
func ReadLimited(body io.Reader, contentLength, limit int64) ([]byte, error) {
	if contentLength > limit {
		return nil, status.ErrBodyTooLarge
	}

	data, err := io.ReadAll(io.LimitReader(body, limit+1))
	if err != nil {
		return nil, err
	}

	if int64(len(data)) > limit {
		return nil, status.ErrBodyTooLarge
	}

	return data, nil
}

// ParseURLEncoded decodes the pairs into the storage, transcoding them from the charset.
// Blank values are kept, the order of pairs is preserved.
func ParseURLEncoded(into *kv.Storage, data, buff []byte, cs mime.Charset) (buffer []byte, err error) {
	var decodeErr error

	buff, err = urlencoded.Parse(data, buff, func(key, value string) {
		if decodeErr != nil {
			return
		}

		if key, decodeErr = charset.Decode(cs, []byte(key)); decodeErr != nil {
			return
		}

		if value, decodeErr = charset.Decode(cs, []byte(value)); decodeErr == nil {
			into.Add(key, value)
		}
	})
	if err != nil {
		return buff, err
	}

	return buff, decodeErr
}
