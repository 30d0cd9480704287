package handler

import (
	"log"
	"net/http"

	"github.com/coder/websocket"

	"github.com/johndosdos/tindahan/internal/chat"
	"github.com/johndosdos/tindahan/internal/ws"
)

// ServeWs upgrades the connection and hands it to the chat gateway.
// No authentication is required to connect; the gateway authenticates
// each event against the handshake's Authorization header.
func ServeWs(gw *chat.Gateway) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			log.Printf("failed to upgrade connection to WebSocket: %v", err)
			return
		}

		client := ws.NewClient(conn, r.Header.Get("Authorization"))

		// Block here: the request context is cancelled as soon as we
		// return from the handler.
		gw.HandleConn(r.Context(), client)

		conn.Close(websocket.StatusNormalClosure, "")
	}
}
