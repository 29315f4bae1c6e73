package gemini

import (
	"crypto/x509"
	"crypto/x509/pkix"
	"net"
	"testing"
)

func TestVerifyHostname(t *testing.T) {
	sans := &x509.Certificate{
		DNSNames:    []string{"example.com", "*.example.org"},
		IPAddresses: []net.IP{net.ParseIP("127.0.0.1"), net.ParseIP("::1")},
	}
	cnOnly := &x509.Certificate{Subject: pkix.Name{CommonName: "gemini.example"}}

	tests := []struct {
		cert *x509.Certificate
		host string
		ok   bool
	}{
		{sans, "example.com", true},
		{sans, "EXAMPLE.com", true},
		{sans, "example.com.", true},
		{sans, "foo.example.org", true},
		{sans, "a.b.example.org", false},
		{sans, "example.net", false},
		{sans, "127.0.0.1", true},
		{sans, "[::1]", true},
		{sans, "10.0.0.1", false},
		{cnOnly, "gemini.example", true},
		{cnOnly, "other.example", false},
	}

	for _, tc := range tests {
		err := verifyHostname(tc.cert, tc.host)
		if (err == nil) != tc.ok {
			t.Errorf("verifyHostname(%s): expected ok=%v, got %v", tc.host, tc.ok, err)
		}
	}
}
