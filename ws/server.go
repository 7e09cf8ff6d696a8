package ws

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/auth"
	"chat-relay/observability"
	"chat-relay/runtime"
	"chat-relay/store"
)

// Gateway upgrades HTTP requests to websocket sessions and exposes the
// small HTTP surface (/ws, /stats, /health).
type Gateway struct {
	log        *slog.Logger
	hub        *runtime.Hub
	registry   *runtime.Registry
	typing     *runtime.TypingTracker
	store      store.MessageStore
	authority  *auth.Authority
	upgrader   websocket.Upgrader
	sendBuffer int
	pingPeriod time.Duration
}

func NewGateway(log *slog.Logger, hub *runtime.Hub, registry *runtime.Registry,
	typing *runtime.TypingTracker, messageStore store.MessageStore,
	authority *auth.Authority, sendBuffer int, pingPeriod time.Duration) *Gateway {
	return &Gateway{
		log:       log,
		hub:       hub,
		registry:  registry,
		typing:    typing,
		store:     messageStore,
		authority: authority,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The handshake trusts the signed token, not the Origin
			// header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		sendBuffer: sendBuffer,
		pingPeriod: pingPeriod,
	}
}

// ServeWS upgrades the request and runs the connection's pumps. The
// connection stays unauthenticated until an authenticate frame passes
// token verification.
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		g.log.Error("Websocket upgrade failed", "err", err)
		return
	}

	client := newClient(g, conn)
	g.log.Debug("New websocket connection", "connection_id", client.id)

	go client.WritePump()
	client.ReadPump()
}

func (g *Gateway) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.ServeWS)
	mux.HandleFunc("/stats", g.handleStats)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	return mux
}

func (g *Gateway) handleStats(w http.ResponseWriter, _ *http.Request) {
	snapshot, err := observability.Collect(g.registry, g.typing)
	if err != nil {
		g.log.Error("Failed to collect stats", "err", err)
		http.Error(w, "stats unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
