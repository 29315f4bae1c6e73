package gemini

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"

	"nhooyr.io/websocket"
)

// WebSocketDialer reaches Gemini servers through a WebSocket proxy, for
// networks where only HTTP(S) goes out. The proxy is asked for the target
// with a "target" query parameter and is expected to relay raw bytes to it
// in binary messages. TLS still runs end to end, on top of the tunnel.
type WebSocketDialer struct {
	// URL of the proxy, ws:// or wss://.
	URL string
	// HTTPClient is used for the opening handshake. http.DefaultClient if nil.
	HTTPClient *http.Client
}

// DialContext opens a tunnel to addr. ctx only bounds the opening
// handshake, not the lifetime of the returned connection.
func (d *WebSocketDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if network != "tcp" {
		return nil, fmt.Errorf("websocket proxy: unsupported network %q", network)
	}
	u, err := url.Parse(d.URL)
	if err != nil {
		return nil, fmt.Errorf("websocket proxy: %w", err)
	}
	q := u.Query()
	q.Set("target", addr)
	u.RawQuery = q.Encode()

	c, _, err := websocket.Dial(ctx, u.String(), &websocket.DialOptions{HTTPClient: d.HTTPClient})
	if err != nil {
		return nil, fmt.Errorf("websocket proxy: %w", err)
	}
	return websocket.NetConn(context.Background(), c, websocket.MessageBinary), nil
}
