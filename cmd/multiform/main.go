// Command multiform decodes, encodes and serves HTML form bodies.
package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/lmittmann/tint"
)

// Globals are flags shared by all the commands.
type Globals struct {
	LogLevel         string `help:"Log level." enum:"debug,info,warn,error" default:"info" env:"MULTIFORM_LOG_LEVEL"`
	MemoryLimit      int64  `help:"Bytes of a single request kept in memory." default:"${memory_limit}"`
	DiskLimit        int64  `help:"Bytes of a single request spooled to disk." default:"${disk_limit}"`
	PartMemoryLimit  int64  `help:"Part size after which it is spooled to disk." default:"${part_memory_limit}"`
	BufferSize       int    `help:"Maximal line length, longer lines are split." default:"${buffer_size}"`
	Charset          string `help:"Default charset of text values." default:"${charset}"`
	MaxContentLength int64  `help:"Upper limit of a declared Content-Length." default:"${max_content_length}"`
	SpoolDir         string `help:"Directory for spooled parts, the system temporary one if empty."`
	Lenient          bool   `help:"Swallow decoding errors, returning an empty form instead."`
}

// Config returns the defaults overridden by the flags.
func (g *Globals) Config() *config.Config {
	cfg := config.Default()
	cfg.Body.MaxContentLength = g.MaxContentLength
	cfg.Form.MemoryLimit = g.MemoryLimit
	cfg.Form.DiskLimit = g.DiskLimit
	cfg.Form.PartMemoryLimit = g.PartMemoryLimit
	cfg.Form.BufferSize = g.BufferSize
	cfg.Form.DefaultCharset = mime.NormalizeCharset(g.Charset)
	cfg.Form.SpoolDir = g.SpoolDir
	cfg.Form.Strict = !g.Lenient

	return cfg
}

func (g *Globals) Logger(w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(g.LogLevel)); err != nil {
		return nil, err
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
	})), nil
}

// Stdio are the standard streams, swapped in tests.
type Stdio struct {
	In       io.Reader
	Out, Err io.Writer
}

type CLI struct {
	Globals

	Decode DecodeCmd `cmd:"" help:"Decode a form body and print it as JSON."`
	Encode EncodeCmd `cmd:"" help:"Encode fields and files into a multipart/form-data body."`
	Serve  ServeCmd  `cmd:"" help:"Serve an HTTP endpoint decoding and storing forms."`
	Lambda LambdaCmd `cmd:"" help:"Run as an AWS Lambda function behind API Gateway."`
}

// vars expose the config defaults to flag declarations.
func vars() kong.Vars {
	cfg := config.Default()

	return kong.Vars{
		"memory_limit":       strconv.FormatInt(cfg.Form.MemoryLimit, 10),
		"disk_limit":         strconv.FormatInt(cfg.Form.DiskLimit, 10),
		"part_memory_limit":  strconv.FormatInt(cfg.Form.PartMemoryLimit, 10),
		"buffer_size":        strconv.Itoa(cfg.Form.BufferSize),
		"charset":            cfg.Form.DefaultCharset,
		"max_content_length": strconv.FormatInt(cfg.Body.MaxContentLength, 10),
	}
}

func main() {
	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("multiform"),
		kong.Description("Decoder of multipart/form-data and urlencoded bodies."),
		kong.UsageOnError(),
		vars(),
	)

	logger, err := cli.Logger(os.Stderr)
	kctx.FatalIfErrorf(err)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kctx.BindTo(ctx, (*context.Context)(nil))
	err = kctx.Run(logger, cli.Config(), &Stdio{In: os.Stdin, Out: os.Stdout, Err: os.Stderr})
	kctx.FatalIfErrorf(err)
}
