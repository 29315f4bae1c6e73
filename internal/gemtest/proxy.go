package gemtest

import (
	"io"
	"net"
	"net/http"

	"nhooyr.io/websocket"
)

// ProxyHandler relays a WebSocket connection to the TCP address given in
// the "target" query parameter.
type ProxyHandler struct{}

func (ProxyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("target")
	if target == "" {
		http.Error(w, "missing target", http.StatusBadRequest)
		return
	}
	backend, err := net.Dial("tcp", target)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadGateway)
		return
	}
	defer backend.Close()

	c, err := websocket.Accept(w, r, nil)
	if err != nil {
		return
	}
	ws := websocket.NetConn(r.Context(), c, websocket.MessageBinary)
	defer ws.Close()

	go io.Copy(backend, ws)
	io.Copy(ws, backend)
}
