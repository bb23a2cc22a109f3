package client

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
)

// pinnedTLSConfig returns the TLS configuration for host. When pins has an
// entry for host, the certificates in the file are the only trusted roots.
// Otherwise it returns nil and the platform roots are used. Hostnames are
// compared as is.
func pinnedTLSConfig(host string, pins map[string]string) (*tls.Config, error) {
	path, ok := pins[host]
	if !ok {
		return nil, nil
	}

	roots, err := loadCertPool(path)
	if err != nil {
		return nil, fmt.Errorf("pinned certificate for %s: %w", host, err)
	}

	return &tls.Config{
		RootCAs:    roots,
		ServerName: host,
	}, nil
}

// loadCertPool reads a certificate file, PEM encoded or a single DER encoded
// certificate (.cer).
func loadCertPool(path string) (*x509.CertPool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	pool := x509.NewCertPool()

	if block, _ := pem.Decode(raw); block != nil {
		if !pool.AppendCertsFromPEM(raw) {
			return nil, errors.New("no certificate found in PEM file " + path)
		}
		return pool, nil
	}

	cert, err := x509.ParseCertificate(raw)
	if err != nil {
		return nil, err
	}
	pool.AddCert(cert)

	return pool, nil
}
