package gemini

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/makeworld-the-better-one/gemfetch/internal/gemtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWebSocketDialer(t *testing.T) {
	srv := startServer(t, hello, gemtest.CertOptions{})
	proxy := httptest.NewServer(gemtest.ProxyHandler{})
	defer proxy.Close()

	tr := &TLSTransport{
		Timeout: 5 * time.Second,
		Dialer:  &WebSocketDialer{URL: "ws" + strings.TrimPrefix(proxy.URL, "http")},
	}
	u := "gemini://" + srv.Addr + "/tunnel"

	res, err := FetchOnce(tr, u)
	require.NoError(t, err)
	assert.Equal(t, "# Hello\r\nYou asked for "+u, res.Body)
	assert.Equal(t, []string{u}, srv.Requests())
}

func TestWebSocketDialerUnreachableTarget(t *testing.T) {
	proxy := httptest.NewServer(gemtest.ProxyHandler{})
	defer proxy.Close()

	tr := &TLSTransport{
		Timeout: 5 * time.Second,
		Dialer:  &WebSocketDialer{URL: "ws" + strings.TrimPrefix(proxy.URL, "http")},
	}
	// Nothing listens on port 1 locally
	_, err := FetchOnce(tr, "gemini://127.0.0.1:1/")
	var fe *FetchError
	require.True(t, errors.As(err, &fe), "expected FetchError, got %v", err)
	assert.Equal(t, PhaseConnect, fe.Phase)
}

func TestWebSocketDialerNetwork(t *testing.T) {
	d := &WebSocketDialer{URL: "ws://127.0.0.1:1/"}
	_, err := d.DialContext(context.Background(), "udp", "127.0.0.1:1965")
	assert.Error(t, err)
}
