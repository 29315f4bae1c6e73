// Package gemtest provides an in-process Gemini server over TLS, and a
// WebSocket proxy, for tests.
package gemtest

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"net"
	"sync"
	"time"
)

// Handler returns the raw response, header line included, for a request URL.
type Handler func(requestURL string) string

// CertOptions controls the self-signed certificate of a Server.
type CertOptions struct {
	// Hosts go into the SANs, IPs as IP addresses. 127.0.0.1 and localhost if empty.
	Hosts []string
	// CommonName is set on the subject, useful for certs without SANs.
	CommonName string
	NotBefore  time.Time
	// NotAfter defaults to a day after NotBefore.
	NotAfter time.Time
}

// Server is a Gemini server listening on a random local port.
type Server struct {
	// Addr is the host:port the server listens on.
	Addr string
	// Certificate is the server certificate, for building cert pools.
	Certificate *x509.Certificate

	handler  Handler
	listener net.Listener
	wg       sync.WaitGroup

	mu       sync.Mutex
	requests []string
}

// NewServer starts a server answering with handler.
func NewServer(handler Handler, opts CertOptions) (*Server, error) {
	cert, err := selfSigned(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %v", err)
	}

	config := &tls.Config{Certificates: []tls.Certificate{cert}}
	ln, err := tls.Listen("tcp", "127.0.0.1:0", config)
	if err != nil {
		return nil, fmt.Errorf("failed to listen: %v", err)
	}

	s := &Server{
		Addr:        ln.Addr().String(),
		Certificate: cert.Leaf,
		handler:     handler,
		listener:    ln,
	}
	s.wg.Add(1)
	go s.serve()
	return s, nil
}

// Requests returns the request lines received so far.
func (s *Server) Requests() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.requests...)
}

// Close stops the server and waits for open connections to finish.
func (s *Server) Close() error {
	err := s.listener.Close()
	s.wg.Wait()
	return err
}

func (s *Server) serve() {
	defer s.wg.Done()
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			return
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.handleConnection(conn)
		}()
	}
}

func (s *Server) handleConnection(conn io.ReadWriteCloser) {
	defer conn.Close()

	scanner := bufio.NewScanner(conn)
	if ok := scanner.Scan(); !ok {
		return
	}
	requestURL := scanner.Text()

	s.mu.Lock()
	s.requests = append(s.requests, requestURL)
	s.mu.Unlock()

	io.WriteString(conn, s.handler(requestURL))
}

func selfSigned(opts CertOptions) (tls.Certificate, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return tls.Certificate{}, err
	}

	notBefore := opts.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().Add(-time.Hour)
	}
	notAfter := opts.NotAfter
	if notAfter.IsZero() {
		notAfter = notBefore.Add(24 * time.Hour)
	}

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(time.Now().UnixNano()),
		Subject:               pkix.Name{CommonName: opts.CommonName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	hosts := opts.Hosts
	if hosts == nil && opts.CommonName == "" {
		hosts = []string{"127.0.0.1", "localhost"}
	}
	for _, h := range hosts {
		if ip := net.ParseIP(h); ip != nil {
			tmpl.IPAddresses = append(tmpl.IPAddresses, ip)
		} else {
			tmpl.DNSNames = append(tmpl.DNSNames, h)
		}
	}

	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		return tls.Certificate{}, err
	}
	leaf, err := x509.ParseCertificate(der)
	if err != nil {
		return tls.Certificate{}, err
	}
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key, Leaf: leaf}, nil
}
