package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"github.com/georgec/tidybloom/internal/auth"
)

// Handler upgrades requests to WebSocket and runs them as hub clients.
// Auth middleware has already verified the token by the time we get here.
func Handler(hub *Hub, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			// The SPA may be served from a different origin than the API.
			OriginPatterns: []string{"*"},
		})
		if err != nil {
			logger.Warn("websocket accept", "error", err)
			return
		}

		client := NewClient(hub, conn, auth.UserID(r.Context()))
		client.Run(r.Context())
	}
}
