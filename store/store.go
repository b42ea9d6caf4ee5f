// Package store persists decoded forms into key-value storages.
package store

import (
	"context"
	"path"
	"slices"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/indigo-web/multiform/http/form"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/multipart"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Store is a key-value storage for blobs.
type Store interface {
	Put(ctx context.Context, key string, value []byte, contentType string) error
}

// FieldsKey returns the key the fields document of the form is stored at.
func FieldsKey(prefix string) string {
	return path.Join(prefix, "fields.json")
}

// FileKey returns the key the file is stored at. Path separators in names are replaced,
// so a file can't escape its prefix.
func FileKey(prefix string, file *multipart.Part) string {
	return path.Join(prefix, "files", sanitize(file.Name), sanitize(file.Filename))
}

func sanitize(segment string) string {
	segment = strings.NewReplacer("/", "_", "\\", "_").Replace(segment)
	switch segment {
	case "", ".", "..":
		return "_" + segment
	default:
		return segment
	}
}

// FieldsDocument renders the fields as a JSON object.
func FieldsDocument(f *form.Form) ([]byte, error) {
	return json.Marshal(f.Values())
}

// ContentType returns the declared content type of the file. If none was declared, it's
// guessed by the filename extension, and then by the contents.
func ContentType(file *multipart.Part, data []byte) string {
	if len(file.Header("Content-Type")) > 0 {
		return file.ContentType
	}

	if byExt := mime.ByFilename(file.Filename); len(byExt) > 0 {
		return byExt
	}

	return mimetype.Detect(data).String()
}

// Persist writes the fields document and every file of the form, one by one.
func Persist(ctx context.Context, st Store, prefix string, f *form.Form) error {
	document, err := FieldsDocument(f)
	if err != nil {
		return err
	}

	if err = st.Put(ctx, FieldsKey(prefix), document, mime.JSON); err != nil {
		return err
	}

	for _, file := range f.Files {
		if err = PutFile(ctx, st, prefix, file); err != nil {
			return err
		}
	}

	return nil
}

// PutFile writes a single file of a form.
func PutFile(ctx context.Context, st Store, prefix string, file *multipart.Part) error {
	data, err := file.Bytes()
	if err != nil {
		return err
	}

	return st.Put(ctx, FileKey(prefix, file), data, ContentType(file, data))
}

type Object struct {
	Value       []byte
	ContentType string
}

// Memory is an in-process Store. It's safe for concurrent use.
type Memory struct {
	mu      sync.Mutex
	objects map[string]Object
}

func NewMemory() *Memory {
	return &Memory{
		objects: make(map[string]Object),
	}
}

func (m *Memory) Put(ctx context.Context, key string, value []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	m.objects[key] = Object{
		Value:       slices.Clone(value),
		ContentType: contentType,
	}
	m.mu.Unlock()

	return nil
}

func (m *Memory) Get(key string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	obj, found := m.objects[key]
	return obj, found
}

// Keys returns all the stored keys, sorted.
func (m *Memory) Keys() []string {
	m.mu.Lock()
	keys := make([]string, 0, len(m.objects))
	for key := range m.objects {
		keys = append(keys, key)
	}
	m.mu.Unlock()

	slices.Sort(keys)
	return keys
}
