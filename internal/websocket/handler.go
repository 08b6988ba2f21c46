package websocket

import (
	"log/slog"
	"net/http"

	ws "github.com/coder/websocket"

	"employee-portal/internal/middleware"
	"employee-portal/internal/service"
)

// Handler upgrades authenticated requests to WebSocket and runs them as hub
// clients. While a socket is open the user is tracked by the presence
// runtime, so an open dashboard keeps emitting heartbeats without any
// client-side timer.
func Handler(hub *Hub, presence *service.PresenceRuntime) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.ClaimsFromContext(r.Context())
		if !ok {
			http.Error(w, "authentication required", http.StatusUnauthorized)
			return
		}

		conn, err := ws.Accept(w, r, &ws.AcceptOptions{
			InsecureSkipVerify: true,
		})
		if err != nil {
			slog.Warn("websocket accept failed", "error", err)
			return
		}

		presence.Track(claims.UserID)
		defer presence.Untrack(claims.UserID)

		client := NewClient(hub, conn)
		client.Run(r.Context())
	}
}
