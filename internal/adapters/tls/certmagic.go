// Package tls serves the HTTP surface with certificates managed by CertMagic.
package tls

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/caddyserver/certmagic"
	"github.com/libdns/azure"

	"github.com/jobrunner/mlitdpf/internal/config"
)

// Server wraps an HTTP server with automatic TLS.
type Server struct {
	config  config.TLSConfig
	server  config.ServerConfig
	handler http.Handler
	logger  *slog.Logger
	magic   *certmagic.Config

	mu   sync.Mutex
	http *http.Server
}

// NewServer creates a server. When TLS is disabled it serves plain HTTP.
func NewServer(cfg config.TLSConfig, srv config.ServerConfig, handler http.Handler, logger *slog.Logger) (*Server, error) {
	s := &Server{
		config:  cfg,
		server:  srv,
		handler: handler,
		logger:  logger,
	}
	if !cfg.Enabled {
		return s, nil
	}

	if len(cfg.Domains) == 0 {
		return nil, errors.New("TLS enabled but no domains specified")
	}
	if cfg.Email == "" {
		return nil, errors.New("TLS enabled but no email specified")
	}

	s.magic = newCertMagic(cfg)
	return s, nil
}

func newCertMagic(cfg config.TLSConfig) *certmagic.Config {
	magic := certmagic.NewDefault()
	if cfg.CacheDir != "" {
		magic.Storage = &certmagic.FileStorage{Path: cfg.CacheDir}
	}

	ca := certmagic.LetsEncryptProductionCA
	if cfg.Staging {
		ca = certmagic.LetsEncryptStagingCA
	}

	issuer := certmagic.NewACMEIssuer(magic, certmagic.ACMEIssuer{
		CA:     ca,
		Email:  cfg.Email,
		Agreed: true,
		DNS01Solver: &certmagic.DNS01Solver{
			DNSManager: certmagic.DNSManager{
				DNSProvider: &azure.Provider{
					SubscriptionId:    cfg.DNS.SubscriptionID,
					ResourceGroupName: cfg.DNS.ResourceGroupName,
					ClientId:          cfg.DNS.ClientID, // empty uses the system assigned identity
				},
			},
		},
	})
	magic.Issuers = []certmagic.Issuer{issuer}
	return magic
}

// Enabled reports whether certificates are managed.
func (s *Server) Enabled() bool {
	return s.magic != nil
}

// ManageCertificates obtains or renews certificates for the configured domains.
func (s *Server) ManageCertificates(ctx context.Context) error {
	if s.magic == nil {
		return nil
	}

	s.logger.Info("obtaining certificates", "domains", s.config.Domains)
	if err := s.magic.ManageSync(ctx, s.config.Domains); err != nil {
		return fmt.Errorf("managing certificates: %w", err)
	}
	s.logger.Info("certificates obtained", "domains", s.config.Domains)
	return nil
}

// TLSConfig returns the TLS configuration, or nil when TLS is disabled.
func (s *Server) TLSConfig() *tls.Config {
	if s.magic == nil {
		return nil
	}
	tc := s.magic.TLSConfig()
	for _, proto := range []string{"http/1.1", "h2"} {
		if !slices.Contains(tc.NextProtos, proto) {
			tc.NextProtos = append([]string{proto}, tc.NextProtos...)
		}
	}
	return tc
}

// ListenAndServe blocks serving requests on the configured address.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.server.Address(),
		Handler:           s.handler,
		ReadTimeout:       s.server.ReadTimeout,
		ReadHeaderTimeout: s.server.ReadTimeout,
		WriteTimeout:      s.server.WriteTimeout,
		TLSConfig:         s.TLSConfig(),
	}

	s.mu.Lock()
	s.http = srv
	s.mu.Unlock()

	if srv.TLSConfig == nil {
		s.logger.Info("starting HTTP server (TLS disabled)", "address", srv.Addr)
		return srv.ListenAndServe()
	}

	s.logger.Info("starting HTTPS server with DNS-01 challenge",
		"address", srv.Addr,
		"domains", s.config.Domains,
	)
	return srv.ListenAndServeTLS("", "")
}

// Shutdown gracefully stops a running server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.http
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
