package form

import (
	"errors"
	"iter"
	"slices"

	"github.com/indigo-web/multiform/http/multipart"
	"github.com/indigo-web/multiform/kv"
)

// Form is a decoded request body. Text values are in Fields, in the order of appearance.
// Files are kept in memory or spooled to disk, so the form must be closed after use.
type Form struct {
	Fields *kv.Storage
	Files  Files
}

func newForm(prealloc int) *Form {
	return &Form{
		Fields: kv.NewPrealloc(prealloc),
	}
}

// Close releases all the files, removing spooled ones from disk.
func (f *Form) Close() error {
	var errs []error
	for _, file := range f.Files {
		errs = append(errs, file.Close())
	}

	return errors.Join(errs...)
}

// Files are parts carrying a filename, in the order of appearance.
type Files []*multipart.Part

// Get returns the first file uploaded under the name.
func (f Files) Get(name string) (*multipart.Part, bool) {
	for file := range f.GetAll(name) {
		return file, true
	}

	return nil, false
}

// GetAll returns an iterator over all the files uploaded under the name.
func (f Files) GetAll(name string) iter.Seq[*multipart.Part] {
	return func(yield func(*multipart.Part) bool) {
		for _, file := range f {
			if file.Name == name {
				if !yield(file) {
					break
				}
			}
		}
	}
}

// Names returns unique field names of the files.
func (f Files) Names() (names []string) {
	for _, file := range f {
		if !slices.Contains(names, file.Name) {
			names = append(names, file.Name)
		}
	}

	return names
}

// Values renders the fields into a map. Fields with a single value are mapped to a string,
// repeated ones to a slice of strings in the order of appearance.
func (f *Form) Values() map[string]any {
	values := make(map[string]any, f.Fields.Len())
	for _, key := range f.Fields.Keys() {
		if all := f.Fields.Values(key); len(all) == 1 {
			values[key] = all[0]
		} else {
			values[key] = all
		}
	}

	return values
}
