// Package spool implements a growable byte storage, which starts in memory and may be moved
// into a temporary file once, when it gets too big to be kept in memory.
package spool

import (
	"bytes"
	"io"
	"os"
)

// Buffer is an append-only byte storage backed either by memory or by a temporary file.
// It isn't safe for concurrent use.
type Buffer struct {
	mem  []byte
	file *os.File
	size int64
	dir  string
}

// New returns an empty in-memory buffer. Once spooled, its temporary file is created in
// the dir, or in os.TempDir() if the dir is empty.
func New(dir string) *Buffer {
	return &Buffer{dir: dir}
}

// Write appends the data to the buffer.
func (b *Buffer) Write(p []byte) (n int, err error) {
	if b.file != nil {
		n, err = b.file.Write(p)
	} else {
		b.mem = append(b.mem, p...)
		n = len(p)
	}

	b.size += int64(n)
	return n, err
}

// Spool moves the contents into a temporary file. All the following writes go to it. Does
// nothing if the buffer is already spooled.
func (b *Buffer) Spool() error {
	if b.file != nil {
		return nil
	}

	file, err := os.CreateTemp(b.dir, "multiform-*")
	if err != nil {
		return err
	}

	if _, err = io.Copy(file, bytes.NewReader(b.mem)); err != nil {
		_ = file.Close()
		_ = os.Remove(file.Name())
		return err
	}

	b.file, b.mem = file, nil
	return nil
}

// Buffered tells whether the contents are kept in memory.
func (b *Buffer) Buffered() bool {
	return b.file == nil
}

// Size returns the number of bytes written.
func (b *Buffer) Size() int64 {
	return b.size
}

// Bytes returns the contents if they're kept in memory. Spooled buffers return nil.
func (b *Buffer) Bytes() []byte {
	return b.mem
}

// Path returns the name of the temporary file, if the buffer is spooled.
func (b *Buffer) Path() string {
	if b.file == nil {
		return ""
	}

	return b.file.Name()
}

// Section returns a reader over the contents written so far. Readers are independent of
// each other and of the following writes.
func (b *Buffer) Section() *io.SectionReader {
	if b.file != nil {
		return io.NewSectionReader(b.file, 0, b.size)
	}

	return io.NewSectionReader(bytes.NewReader(b.mem), 0, b.size)
}

// Close releases the memory and removes the temporary file, if any. The buffer must not
// be used afterward.
func (b *Buffer) Close() error {
	b.mem = nil
	if b.file == nil {
		return nil
	}

	file := b.file
	b.file = nil
	closeErr := file.Close()
	if err := os.Remove(file.Name()); err != nil {
		return err
	}

	return closeErr
}
