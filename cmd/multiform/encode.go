package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/http/multipart"
)

type EncodeCmd struct {
	Boundary string   `help:"Boundary to use, a random one if empty."`
	Field    []string `help:"Text field." short:"f" placeholder:"NAME=VALUE" sep:"none"`
	File     []string `help:"File field, read from the path." placeholder:"NAME=PATH" sep:"none"`
}

// Run writes the body into stdout and its content type into stderr.
func (c *EncodeCmd) Run(stdio *Stdio) error {
	w := multipart.NewWriter(stdio.Out, c.Boundary)

	for _, field := range c.Field {
		name, value, err := splitPair(field)
		if err != nil {
			return err
		}

		if err = w.WriteField(name, value); err != nil {
			return err
		}
	}

	for _, file := range c.File {
		name, path, err := splitPair(file)
		if err != nil {
			return err
		}

		if err = writeFile(w, name, path); err != nil {
			return err
		}
	}

	if err := w.Close(); err != nil {
		return err
	}

	_, err := fmt.Fprintln(stdio.Err, w.ContentType())
	return err
}

func writeFile(w *multipart.Writer, name, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}

	defer file.Close()

	contentType := mime.ByFilename(path)
	if len(contentType) == 0 {
		contentType = mime.OctetStream
	}

	return w.WriteFile(name, filepath.Base(path), contentType, file)
}

func splitPair(pair string) (name, value string, err error) {
	name, value, found := strings.Cut(pair, "=")
	if !found || len(name) == 0 {
		return "", "", fmt.Errorf("malformed pair %q, NAME=VALUE expected", pair)
	}

	return name, value, nil
}
