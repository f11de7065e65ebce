package openai

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"
	"os"

	"github.com/poiesic/depositbot/ai"
)

// newHTTPClient builds the client shared by chat and embedding calls.
// Timeout bounds each request; TLS adds client certificates and a private CA
// for stands that require mutual TLS.
func newHTTPClient(config *ai.Config) (*http.Client, error) {
	client := &http.Client{Timeout: config.Timeout}
	if !config.TLS.Enabled() {
		return client, nil
	}

	tlsConfig := &tls.Config{
		MinVersion:         tls.VersionTLS12,
		InsecureSkipVerify: config.TLS.InsecureSkipVerify, //nolint:gosec // opt-in for test stands
	}

	if config.TLS.CAFile != "" {
		pem, err := os.ReadFile(config.TLS.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA bundle: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", config.TLS.CAFile)
		}
		tlsConfig.RootCAs = pool
	}

	if config.TLS.CertFile != "" {
		cert, err := tls.LoadX509KeyPair(config.TLS.CertFile, config.TLS.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsConfig.Certificates = []tls.Certificate{cert}
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.TLSClientConfig = tlsConfig
	client.Transport = transport
	return client, nil
}
