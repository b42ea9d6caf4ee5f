package main

import (
	"crypto/tls"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/crypto/acme/autocert"
)

func (c *ServeCmd) listener(logger *slog.Logger) (net.Listener, error) {
	switch {
	case len(c.AutocertDomain) > 0:
		return autoTLSListener(c.Listen, c.AutocertCache, logger, c.AutocertDomain...)
	case len(c.TLSCert) > 0:
		certificate, err := tls.LoadX509KeyPair(c.TLSCert, c.TLSKey)
		if err != nil {
			return nil, err
		}

		return tls.Listen("tcp", c.Listen, &tls.Config{
			Certificates: []tls.Certificate{certificate},
		})
	default:
		return net.Listen("tcp", c.Listen)
	}
}

func autoTLSListener(addr, cache string, logger *slog.Logger, domains ...string) (net.Listener, error) {
	m := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		HostPolicy: autocert.HostWhitelist(domains...),
	}

	if len(cache) == 0 {
		cache = cacheDir()
	}

	if err := mkdirIfNotExists(cache); err != nil {
		logger.Warn("ACME certificates are not cached", slog.String("error", err.Error()))
	} else {
		m.Cache = autocert.DirCache(cache)
	}

	return tls.Listen("tcp", addr, m.TLSConfig())
}

func cacheDir() string {
	const base = "multiform-autocert"

	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, base)
	}

	if runtime.GOOS == "windows" {
		return filepath.Join(os.TempDir(), base)
	}

	return filepath.Join(os.Getenv("HOME"), ".cache", base)
}

func mkdirIfNotExists(dir string) error {
	if stat, err := os.Stat(dir); err == nil && stat.IsDir() {
		return nil
	}

	return os.MkdirAll(dir, 0700)
}
