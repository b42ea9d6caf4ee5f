package main

import (
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/form"
	"github.com/indigo-web/multiform/invoke"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type DecodeCmd struct {
	ContentType string `help:"Content-Type of the body, boundary included." required:"" short:"t"`
	Method      string `help:"Request method." default:"POST"`
	Base64      bool   `name:"base64" help:"The body is base64-encoded."`
	File        string `arg:"" optional:"" default:"-" help:"File to read the body from, - for stdin."`
}

func (c *DecodeCmd) Run(logger *slog.Logger, cfg *config.Config, stdio *Stdio) error {
	var src io.Reader = stdio.In
	if c.File != "-" {
		file, err := os.Open(c.File)
		if err != nil {
			return err
		}

		defer file.Close()
		src = file
	}

	if c.Base64 {
		src = base64.NewDecoder(base64.StdEncoding, src)
	}

	f, err := form.NewDecoder(cfg, form.WithLogger(logger)).Decode(c.Method, c.ContentType, src, -1)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", c.File, err)
	}

	defer f.Close()

	document, err := invoke.Render(f)
	if err != nil {
		return err
	}

	stream := json.BorrowStream(stdio.Out)
	defer json.ReturnStream(stream)
	stream.WriteVal(document)
	stream.WriteRaw("\n")
	if stream.Error != nil {
		return stream.Error
	}

	return stream.Flush()
}
