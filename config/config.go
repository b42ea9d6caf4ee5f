package config

import (
	"github.com/indigo-web/multiform/http/mime"
)

type (
	Body struct {
		// MaxContentLength is the upper limit for a declared Content-Length of a request. Bodies
		// declaring more are refused before a single byte is read. Bodies without declared length
		// are bounded by Form limits only.
		MaxContentLength int64
	}

	Form struct {
		// MemoryLimit is how many bytes of all the parts of a single request may be kept in memory
		// at once. This also includes all the text values, as they're decoded into strings. Urlencoded
		// bodies must fit into it entirely.
		MemoryLimit int64
		// DiskLimit is how many bytes of all the parts of a single request may be spooled into
		// temporary files.
		DiskLimit int64
		// PartMemoryLimit is the size of a single part after which its body is moved from memory
		// into a temporary file.
		PartMemoryLimit int64
		// BufferSize is the maximal line length. Longer lines are split into chunks of this size.
		// Must fit the boundary with its framing, otherwise every parse fails.
		BufferSize int
		// DefaultCharset is used for text values unless the request or a part says otherwise.
		DefaultCharset mime.Charset
		// FieldsPrealloc is the number of preallocated seats in the fields storage.
		FieldsPrealloc int
		// SpoolDir is where spooled parts are stored. Empty string stands for os.TempDir().
		SpoolDir string `test:"nullable"`
		// Strict makes the decoder return errors. Otherwise, any failure results in an empty
		// form and no error.
		Strict bool `test:"nullable"`
	}
)

// Config holds limitations and defaults used by every parsing session. A single instance is
// meant to be shared by all the sessions and must not be modified after being passed to any
// of them.
//
// You must ALWAYS modify defaults (returned via Default()) and NEVER try to initialize the
// config manually, because most likely this will result in ambiguous errors.
type Config struct {
	Body Body
	Form Form
}

// Default returns default config.
func Default() *Config {
	return &Config{
		Body: Body{
			MaxContentLength: 1 << 30, // 1 gigabyte
		},
		Form: Form{
			MemoryLimit:     1 << 20, // 1 megabyte
			DiskLimit:       1 << 30,
			PartMemoryLimit: 1 << 18, // 256 kilobytes
			BufferSize:      1 << 16,
			DefaultCharset:  mime.UTF8,
			FieldsPrealloc:  8,
		},
	}
}

// Limits returns memory and line buffer limits clamped the way a parser actually uses them:
// memory can't exceed the disk quota and the line buffer can't exceed the memory quota.
func (c *Config) Limits() (memory int64, buffer int) {
	memory = min(c.Form.MemoryLimit, c.Form.DiskLimit)
	buffer = c.Form.BufferSize
	if int64(buffer) > memory {
		buffer = int(memory)
	}

	return memory, buffer
}
