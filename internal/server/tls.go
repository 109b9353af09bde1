// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package server

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"codeberg.org/oliverandrich/localeats/internal/config"
	"golang.org/x/crypto/acme/autocert"
)

// TLSMode is how the server terminates TLS.
type TLSMode string

const (
	TLSModeOff        TLSMode = "off"
	TLSModeACME       TLSMode = "acme"
	TLSModeSelfSigned TLSMode = "selfsigned"
	TLSModeManual     TLSMode = "manual"
)

const (
	selfSignedValidity = 365 * 24 * time.Hour
	renewBefore        = 30 * 24 * time.Hour
)

// TLSResult is the outcome of SetupTLS.
type TLSResult struct {
	TLSConfig   *tls.Config
	CertManager *autocert.Manager // ACME only
	HTTPHandler http.Handler      // ACME only, answers HTTP-01 challenges and redirects to HTTPS
	Mode        TLSMode
}

// portAvailable reports whether a TCP port can be bound. Replaced in tests.
var portAvailable = func(port int) bool {
	ln, err := (&net.ListenConfig{}).Listen(context.Background(), "tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}

// SetupTLS resolves the TLS mode and loads or creates the certificates for it.
func SetupTLS(cfg *config.Config) (*TLSResult, error) {
	mode := resolveTLSMode(cfg)
	slog.Info("tls_mode", "mode", mode, "host", cfg.Server.Host)

	switch mode {
	case TLSModeOff:
		return &TLSResult{Mode: TLSModeOff}, nil
	case TLSModeACME:
		if err := checkACME(cfg); err != nil {
			return nil, err
		}
		return setupACME(cfg)
	case TLSModeSelfSigned:
		return setupSelfSigned(cfg)
	case TLSModeManual:
		return setupManual(&cfg.TLS)
	}
	return nil, fmt.Errorf("unknown TLS mode: %s", mode)
}

// resolveTLSMode honors an explicit mode. For "auto" it picks no TLS on
// localhost, manual with configured cert files, ACME when it can work
// and a self-signed certificate otherwise.
func resolveTLSMode(cfg *config.Config) TLSMode {
	switch mode := strings.ToLower(cfg.TLS.Mode); mode {
	case "off", "acme", "selfsigned", "manual":
		return TLSMode(mode)
	case "auto", "":
	default:
		slog.Warn("tls_mode_unknown", "mode", mode)
	}

	switch {
	case config.IsLocalhost(cfg.Server.Host):
		return TLSModeOff
	case cfg.TLS.CertFile != "" && cfg.TLS.KeyFile != "":
		return TLSModeManual
	case acmeUsable(cfg) == nil:
		return TLSModeACME
	default:
		return TLSModeSelfSigned
	}
}

// acmeUsable returns why Let's Encrypt cannot issue a certificate for cfg, or nil.
func acmeUsable(cfg *config.Config) error {
	host := cfg.Server.Host
	switch {
	case config.IsLocalhost(host):
		return errors.New("ACME needs a public host name")
	case net.ParseIP(host) != nil:
		return errors.New("ACME does not issue certificates for IP addresses")
	case cfg.TLS.Email == "":
		return errors.New("ACME mode requires TLS_EMAIL to be set")
	case !portAvailable(80):
		return errors.New("ACME mode requires port 80 for the HTTP-01 challenge")
	case !portAvailable(443):
		return errors.New("ACME mode requires port 443")
	}
	return nil
}

func checkACME(cfg *config.Config) error {
	if cfg.Server.Port != 443 {
		slog.Warn("acme_port_ignored", "configured_port", cfg.Server.Port)
	}
	return acmeUsable(cfg)
}

func setupACME(cfg *config.Config) (*TLSResult, error) {
	dir := filepath.Join(cfg.TLS.CertDir, "acme")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create ACME cert directory: %w", err)
	}

	manager := &autocert.Manager{
		Prompt:     autocert.AcceptTOS,
		Email:      cfg.TLS.Email,
		Cache:      autocert.DirCache(dir),
		HostPolicy: autocert.HostWhitelist(cfg.Server.Host),
	}
	tlsConfig := manager.TLSConfig()
	tlsConfig.MinVersion = tls.VersionTLS12

	return &TLSResult{
		Mode:        TLSModeACME,
		TLSConfig:   tlsConfig,
		CertManager: manager,
		HTTPHandler: manager.HTTPHandler(nil),
	}, nil
}

// setupSelfSigned reuses the stored certificate until it nears expiry.
func setupSelfSigned(cfg *config.Config) (*TLSResult, error) {
	dir := filepath.Join(cfg.TLS.CertDir, "selfsigned")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create self-signed cert directory: %w", err)
	}
	certFile := filepath.Join(dir, "cert.pem")
	keyFile := filepath.Join(dir, "key.pem")

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	switch {
	case err == nil && !expiresWithin(&cert, renewBefore):
		slog.Info("tls_cert_reused", "file", certFile)
	default:
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("tls_cert_invalid", "error", err)
		}
		if cert, err = writeSelfSigned(cfg.Server.Host, certFile, keyFile); err != nil {
			return nil, err
		}
		slog.Info("tls_cert_generated", "file", certFile)
	}

	slog.Info("tls_cert_fingerprint", "sha256", fingerprint(&cert))
	slog.Warn("tls_self_signed", "hint", "accept the certificate in your browser on first visit")
	return &TLSResult{Mode: TLSModeSelfSigned, TLSConfig: tlsConfigFor(cert)}, nil
}

func setupManual(cfg *config.TLSConfig) (*TLSResult, error) {
	if cfg.CertFile == "" || cfg.KeyFile == "" {
		return nil, errors.New("manual TLS mode requires both cert-file and key-file")
	}
	cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load certificate: %w", err)
	}
	slog.Info("tls_cert_loaded", "cert", cfg.CertFile, "sha256", fingerprint(&cert))
	return &TLSResult{Mode: TLSModeManual, TLSConfig: tlsConfigFor(cert)}, nil
}

// writeSelfSigned creates an ECDSA P-256 certificate valid for host and
// the loopback names.
func writeSelfSigned(host, certFile, keyFile string) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate private key: %w", err)
	}
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := Now()
	tmpl := x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{Organization: []string{"LocalEats"}, CommonName: host},
		NotBefore:             now,
		NotAfter:              now.Add(selfSignedValidity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{"localhost"},
		IPAddresses:           []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	if ip := net.ParseIP(host); ip != nil {
		tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
	} else if host != "" {
		tmpl.DNSNames = append(tmpl.DNSNames, host)
	}

	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to marshal private key: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER})
	if err := os.WriteFile(certFile, certPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write cert file: %w", err)
	}
	if err := os.WriteFile(keyFile, keyPEM, 0o600); err != nil {
		return tls.Certificate{}, fmt.Errorf("failed to write key file: %w", err)
	}
	return tls.X509KeyPair(certPEM, keyPEM)
}

func expiresWithin(cert *tls.Certificate, d time.Duration) bool {
	if len(cert.Certificate) == 0 {
		return true
	}
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	if err != nil {
		return true
	}
	return leaf.NotAfter.Sub(Now()) < d
}

// fingerprint is the colon separated SHA256 of the leaf certificate.
func fingerprint(cert *tls.Certificate) string {
	if len(cert.Certificate) == 0 {
		return ""
	}
	sum := sha256.Sum256(cert.Certificate[0])
	parts := make([]string, len(sum))
	for i, b := range sum {
		parts[i] = fmt.Sprintf("%02X", b)
	}
	return strings.Join(parts, ":")
}

func tlsConfigFor(cert tls.Certificate) *tls.Config {
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}
}
