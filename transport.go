package gemini

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"
)

// ContextDialer opens the plain connection a TLSTransport runs TLS over.
// *net.Dialer and *WebSocketDialer implement it.
type ContextDialer interface {
	DialContext(ctx context.Context, network, addr string) (net.Conn, error)
}

// TLSTransport is a Transport that connects over TLS.
//
// By default any certificate is accepted as long as it matches the host and
// is within its validity period, since most Gemini servers use self-signed
// certificates.
type TLSTransport struct {
	// Insecure disables all certificate checks, use with caution.
	// It overrides all the fields below.
	Insecure bool
	// ValidateCertificate verifies the certificate chain against RootCAs,
	// like a web browser would.
	ValidateCertificate bool
	// RootCAs is used by ValidateCertificate. The system pool is used if nil.
	RootCAs *x509.CertPool
	// NoTimeCheck allows connections with expired or future certs if set to true.
	NoTimeCheck bool
	// NoHostnameCheck allows connections when the cert doesn't match the
	// requested hostname or IP.
	NoHostnameCheck bool
	// Timeout is the time it takes to form the initial connection,
	// handshake included. Zero means no timeout.
	Timeout time.Duration
	// Dialer opens the underlying connection. A net.Dialer is used if nil.
	Dialer ContextDialer
}

// Dial connects to host, which must be in host:port form, and completes the
// TLS handshake.
func (t *TLSTransport) Dial(host string) (io.ReadWriteCloser, error) {
	hostname, _, err := net.SplitHostPort(host)
	if err != nil {
		return nil, err
	}
	if hostname == "" {
		return nil, errors.New("invalid host")
	}

	ctx := context.Background()
	if t.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.Timeout)
		defer cancel()
	}

	var dialer ContextDialer = &net.Dialer{}
	if t.Dialer != nil {
		dialer = t.Dialer
	}
	raw, err := dialer.DialContext(ctx, "tcp", host)
	if err != nil {
		return nil, err
	}

	conf := t.config(hostname)
	if keylogfile := os.Getenv("SSLKEYLOGFILE"); keylogfile != "" {
		w, err := os.OpenFile(keylogfile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0600)
		if err == nil {
			conf.KeyLogWriter = w
			defer w.Close()
		}
	}

	conn := tls.Client(raw, conf)
	if err := conn.HandshakeContext(ctx); err != nil {
		raw.Close()
		return nil, err
	}

	if err := t.verify(conn.ConnectionState().PeerCertificates, hostname); err != nil {
		conn.Close()
		return nil, err
	}
	return conn, nil
}

func (t *TLSTransport) config(hostname string) *tls.Config {
	conf := &tls.Config{
		MinVersion: tls.VersionTLS12,
		ServerName: hostname,
	}
	if t.Insecure || !t.ValidateCertificate {
		// This must be set to allow self-signed certs
		conf.InsecureSkipVerify = true
	} else {
		conf.RootCAs = t.RootCAs
	}
	return conf
}

// verify runs the checks done in place of chain verification.
func (t *TLSTransport) verify(certs []*x509.Certificate, hostname string) error {
	if t.Insecure || t.ValidateCertificate {
		return nil
	}
	if len(certs) == 0 {
		return errors.New("server sent no certificate")
	}
	cert := certs[0]

	// Cert hostname has to match connection host, not request host
	if !t.NoHostnameCheck {
		if err := verifyHostname(cert, hostname); err != nil {
			return fmt.Errorf("hostname does not verify: %w", err)
		}
	}
	if !t.NoTimeCheck {
		now := time.Now()
		if cert.NotBefore.After(now) {
			return errors.New("server cert is for the future")
		} else if cert.NotAfter.Before(now) {
			return errors.New("server cert is expired")
		}
	}
	return nil
}
