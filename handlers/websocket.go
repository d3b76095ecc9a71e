package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/enzosantiagosrv1245-cell/aula/game"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// WebSocket upgrades connections and feeds inbound messages to the engine.
// Each connection gets a uuid identity, a greeting, and a single read loop,
// so events from one connection are processed in the order received.
type WebSocket struct {
	engine  *game.Engine
	manager *ClientManager
	log     *slog.Logger
}

func NewWebSocket(engine *game.Engine, manager *ClientManager, log *slog.Logger) *WebSocket {
	return &WebSocket{engine: engine, manager: manager, log: log}
}

func (h *WebSocket) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("websocket upgrade failed", "remote", r.RemoteAddr, "err", err)
		return
	}

	id := uuid.New().String()
	client := newClient(id, conn, h.log)
	h.manager.Add(client)
	go client.writePump()

	h.log.Info("new connection", "conn", id, "remote", r.RemoteAddr)
	h.engine.Connected(id)

	conn.SetReadLimit(maxMessageSize)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	reason := "client disconnect"
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.log.Debug("read failed", "conn", id, "err", err)
				reason = "transport error"
			}
			break
		}
		h.engine.Dispatch(id, data)
	}

	h.engine.Disconnected(id, reason)
	h.manager.Remove(id)
}
