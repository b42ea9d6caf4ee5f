package formdata

import (
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/multipart"
	"github.com/indigo-web/multiform/http/status"
	"github.com/indigo-web/multiform/internal/charset"
	"github.com/indigo-web/multiform/internal/strutil"
	"github.com/indigo-web/multiform/kv"
)

// charsetField is a special text field, setting the charset of all other text parts
// which don't declare their own.
const charsetField = "_charset_"

// ParseMultipart pulls all the parts out of the parser. Parts with a filename are returned
// as files, text values are decoded and added to fields. All the values share the budget,
// and the first one exceeding what is left fails the whole parse.
func ParseMultipart(p *multipart.Parser, into *kv.Storage, budget int64) (files []*multipart.Part, err error) {
	var (
		texts    []*multipart.Part
		override mime.Charset
	)

	for part, err := range p.Parts() {
		if err != nil {
			return nil, err
		}

		if part.IsFile() {
			files = append(files, part)
			continue
		}

		if part.Name == charsetField {
			value, err := textValue(part, budget)
			if err != nil {
				return nil, err
			}

			if override = mime.NormalizeCharset(value); !charset.Supported(override) {
				return nil, status.ErrUnsupportedCharset
			}

			budget -= int64(len(value))
			continue
		}

		texts = append(texts, part)
	}

	for _, part := range texts {
		if len(override) > 0 && !hasCharset(part) {
			part.Charset = override
		}

		value, err := textValue(part, budget)
		if err != nil {
			return nil, err
		}

		budget -= int64(len(value))
		into.Add(part.Name, value)
	}

	return files, nil
}

// textValue decodes the value and releases the part storage, as the value is a copy.
func textValue(part *multipart.Part, budget int64) (string, error) {
	value, err := part.Value(budget)
	if err != nil {
		return "", err
	}

	return value, part.Close()
}

func hasCharset(part *multipart.Part) bool {
	_, options := strutil.ParseOptions(part.Header("Content-Type"))
	return len(options["charset"]) > 0
}
