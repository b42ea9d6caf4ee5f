package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/indigo-web/multiform/config"
	"github.com/indigo-web/multiform/http/mime"
	"github.com/indigo-web/multiform/invoke"
)

type ServeCmd struct {
	Listen         string        `help:"Address to listen on." default:":8080" env:"MULTIFORM_LISTEN"`
	Timeout        time.Duration `help:"Deadline of a single request." default:"60s"`
	TLSCert        string        `help:"TLS certificate file." and:"tls"`
	TLSKey         string        `help:"TLS private key file." and:"tls"`
	AutocertDomain []string      `help:"Domains to obtain certificates for via ACME." xor:"tls"`
	AutocertCache  string        `help:"Directory the ACME certificates are cached in."`
	Bucket         string        `help:"S3 bucket to store decoded forms in." env:"MULTIFORM_BUCKET"`
}

func (c *ServeCmd) Run(ctx context.Context, logger *slog.Logger, cfg *config.Config) error {
	opts := []invoke.Option{invoke.WithLogger(logger)}
	if len(c.Bucket) > 0 {
		persist, err := s3Persister(ctx, c.Bucket, logger)
		if err != nil {
			return err
		}

		opts = append(opts, invoke.WithPersister(persist))
	}

	ln, err := c.listener(logger)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           newRouter(invoke.New(cfg, opts...), logger, c.Timeout),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), c.Timeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	logger.Info("serving forms", slog.String("addr", ln.Addr().String()))
	if err = server.Serve(ln); !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

func newRouter(h *invoke.Handler, logger *slog.Logger, timeout time.Duration) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	handler := formHandler(h, logger)
	r.Post("/forms/{id}", handler)
	r.Put("/forms/{id}", handler)

	return r
}

func formHandler(h *invoke.Handler, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h.HandleBody(
			r.Context(), chi.URLParam(r, "id"), r.Method, r.Header.Get("Content-Type"), r.Body, r.ContentLength,
		)

		attrs := []any{
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", resp.StatusCode),
		}
		if err != nil {
			logger.Warn("form rejected", append(attrs, slog.String("error", err.Error()))...)
		} else {
			logger.Info("form accepted", attrs...)
		}

		body, err := resp.JSON()
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", mime.JSON)
		w.WriteHeader(resp.StatusCode)
		_, _ = w.Write(body)
	}
}
