// Package certs provisions a self-signed certificate for serving the site
// over HTTPS without an external certificate authority.
package certs

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"
)

const (
	certFile = "server.crt"
	keyFile  = "server.key"
	validity = 365 * 24 * time.Hour
)

// Ensure returns the certificate and key paths under dir, generating a new
// pair when either file is missing or the certificate no longer loads.
// Each host becomes a SAN, as an IP address when it parses as one.
func Ensure(dir string, hosts []string) (certPath, keyPath string, err error) {
	certPath = filepath.Join(dir, certFile)
	keyPath = filepath.Join(dir, keyFile)

	if _, err := tls.LoadX509KeyPair(certPath, keyPath); err == nil {
		return certPath, keyPath, nil
	}

	if err := os.MkdirAll(dir, 0750); err != nil {
		return "", "", fmt.Errorf("failed to create cert directory: %w", err)
	}
	if err := generate(certPath, keyPath, hosts, time.Now()); err != nil {
		return "", "", fmt.Errorf("failed to generate certificate: %w", err)
	}
	return certPath, keyPath, nil
}

func generate(certPath, keyPath string, hosts []string, now time.Time) error {
	privateKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			Organization: []string{"laludev"},
			CommonName:   "laludev portfolio",
		},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
	}
	for _, h := range append([]string{"localhost", "127.0.0.1", "::1"}, hosts...) {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else if h != "" {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	certDER, err := x509.CreateCertificate(rand.Reader, &template, &template, &privateKey.PublicKey, privateKey)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}
	keyDER, err := x509.MarshalECPrivateKey(privateKey)
	if err != nil {
		return fmt.Errorf("failed to marshal private key: %w", err)
	}

	if err := writePEM(keyPath, "EC PRIVATE KEY", keyDER, 0600); err != nil {
		return err
	}
	return writePEM(certPath, "CERTIFICATE", certDER, 0644)
}

func writePEM(path, blockType string, der []byte, perm os.FileMode) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
