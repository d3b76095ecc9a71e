package game

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

// Transport is what the engine needs from the networking layer: targeted,
// room-wide and global delivery plus room membership. Implementations must
// never block on a slow client; the engine calls these while it may still be
// fielding events from other connections.
type Transport interface {
	ToClient(id string, msg models.Message)
	ToRoom(room string, msg models.Message)
	ToRoomExcept(room, except string, msg models.Message)
	ToAll(msg models.Message)
	JoinRoom(id, room string)
	LeaveRoom(id, room string)
}

type handlerFunc func(e *Engine, connID string, payload json.RawMessage)

// Engine is the connection lifecycle handler: it translates inbound client
// events into room mutations and outbound messages. One instance serves the
// whole process.
type Engine struct {
	room      *Room
	transport Transport
	log       *slog.Logger
	validate  *validator.Validate

	tick        time.Duration
	idleTimeout time.Duration
	startTime   time.Time

	// now is swapped out in tests.
	now func() time.Time

	handlers map[string]handlerFunc
}

func NewEngine(room *Room, transport Transport, log *slog.Logger, tickRate int, idleTimeout time.Duration) *Engine {
	e := &Engine{
		room:        room,
		transport:   transport,
		log:         log,
		validate:    validator.New(),
		tick:        time.Second / time.Duration(tickRate),
		idleTimeout: idleTimeout,
		startTime:   time.Now(),
		now:         time.Now,
	}
	e.handlers = map[string]handlerFunc{
		models.EventPlayerJoin:   (*Engine).handleJoin,
		models.EventPlayerMove:   (*Engine).handleMove,
		models.EventChatMessage:  (*Engine).handleChat,
		models.EventUpdateScore:  (*Engine).handleScore,
		models.EventStartGame:    (*Engine).handleStart,
		models.EventResetGame:    (*Engine).handleReset,
		models.EventPing:         (*Engine).handlePing,
		models.EventAdminCommand: (*Engine).handleAdmin,
	}
	return e
}

// Connected greets a fresh connection with the server info message. The
// player is not in the registry yet; that happens on playerJoin.
func (e *Engine) Connected(id string) {
	e.transport.ToClient(id, models.Message{Type: models.TypeServerInfo, Payload: models.ServerInfo{
		PlayersOnline: e.room.Count(),
		MaxPlayers:    e.room.MaxPlayers(),
		ServerTime:    e.now(),
		GameSettings:  e.room.Settings(),
	}})
}

// Dispatch routes one inbound message to its handler. Malformed envelopes
// and unknown event types are dropped. A panicking handler is contained
// here: it is logged, the sender gets a generic error notice, and every
// other connection and the periodic loops keep running.
func (e *Engine) Dispatch(connID string, data []byte) {
	var env models.Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		e.log.Debug("dropping malformed message", "conn", connID, "err", err)
		return
	}

	handler, ok := e.handlers[env.Type]
	if !ok {
		e.log.Debug("dropping unknown event", "conn", connID, "event", env.Type)
		return
	}

	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("event handler panicked", "conn", connID, "event", env.Type, "panic", rec)
			e.transport.ToClient(connID, models.Message{Type: models.TypeServerError, Payload: models.ServerError{
				Message: "Internal server error.",
			}})
		}
	}()
	handler(e, connID, env.Payload)
}

// Disconnected runs the departure sequence for a connection that dropped.
// If it was the last player, the room auto-resets its started flag.
func (e *Engine) Disconnected(connID, reason string) {
	player, ok := e.room.Leave(connID)
	if !ok {
		return
	}
	e.log.Info("player left", "player", player.Name, "reason", reason, "online", e.room.Count())
	e.departed(player, reason)
}

func (e *Engine) handleJoin(connID string, payload json.RawMessage) {
	var req models.JoinRequest
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &req); err != nil {
			req = models.JoinRequest{}
		}
	}
	// Only name and color are accepted from the client; an invalid field
	// degrades to its server-assigned default without dragging the other
	// one down with it.
	if err := e.validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			req = models.JoinRequest{}
		}
		for _, fe := range verrs {
			switch fe.Field() {
			case "Name":
				req.Name = ""
			case "Color":
				req.Color = ""
			}
		}
	}

	player, err := e.room.Join(connID, req.Name, req.Color, e.now())
	if err != nil {
		if errors.Is(err, ErrRoomFull) {
			e.transport.ToClient(connID, models.Message{Type: models.TypeServerError, Payload: models.ServerError{
				Message: "Server is full! Try again later.",
			}})
			return
		}
		e.log.Error("join failed", "conn", connID, "err", err)
		return
	}

	room := e.room.Name()
	e.transport.JoinRoom(connID, room)
	e.transport.ToClient(connID, models.Message{Type: models.TypeGameState, Payload: e.room.State(connID)})
	e.transport.ToRoomExcept(room, connID, models.Message{Type: models.TypePlayerJoined, Payload: player})
	e.transport.ToRoom(room, models.Message{Type: models.TypePlayersCountUpdate, Payload: e.room.Count()})
	e.systemChat(fmt.Sprintf("%s joined the game!", player.Name), "#4CAF50")
	e.log.Info("player joined", "player", player.Name, "online", e.room.Count())
}

func (e *Engine) handleMove(connID string, payload json.RawMessage) {
	var req models.MoveRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	x, y, ok := e.room.Move(connID, req.X, req.Y, e.now())
	if !ok {
		return
	}

	e.transport.ToRoomExcept(e.room.Name(), connID, models.Message{Type: models.TypePlayerMoved, Payload: models.PlayerMoved{
		ID:        connID,
		X:         x,
		Y:         y,
		Timestamp: e.now(),
	}})
}

func (e *Engine) handleChat(connID string, payload json.RawMessage) {
	text := chatText(payload)
	if text == "" {
		return
	}

	player, verdict := e.room.Chat(connID, e.now())
	switch verdict {
	case ChatUnknown:
		return
	case ChatLimited:
		e.transport.ToClient(connID, models.Message{Type: models.TypeChatError, Payload: models.ChatError{
			Message: "Too many messages! Wait a moment.",
		}})
		return
	}

	e.transport.ToRoom(e.room.Name(), models.Message{Type: models.TypeChatMessage, Payload: models.ChatMessage{
		Type:       "player",
		PlayerID:   connID,
		PlayerName: player.Name,
		Message:    text,
		Timestamp:  e.now(),
		Color:      player.Color,
	}})
}

func (e *Engine) handleScore(connID string, payload json.RawMessage) {
	var req models.ScoreRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		return
	}

	player, ok := e.room.UpdateScore(connID, req.Score, e.now())
	if !ok {
		return
	}

	e.transport.ToRoom(e.room.Name(), models.Message{Type: models.TypeScoreUpdate, Payload: models.ScoreUpdate{
		PlayerID:   connID,
		PlayerName: player.Name,
		Score:      player.Score,
		Level:      player.Level,
	}})
}

func (e *Engine) handleStart(connID string, _ json.RawMessage) {
	// Idempotent: a second start while running emits nothing.
	if !e.room.Start() {
		return
	}

	name := "Player"
	if player, ok := e.room.Player(connID); ok {
		name = player.Name
	}

	e.transport.ToRoom(e.room.Name(), models.Message{Type: models.TypeGameStarted, Payload: models.GameStarted{
		StartTime:   e.now(),
		InitiatedBy: name,
	}})
	e.systemChat(fmt.Sprintf("Game started by %s!", name), "#FF9800")
	e.log.Info("game started", "by", name)
}

func (e *Engine) handleReset(connID string, _ json.RawMessage) {
	e.room.Reset()

	name := "Player"
	if player, ok := e.room.Player(connID); ok {
		name = player.Name
	}

	e.transport.ToRoom(e.room.Name(), models.Message{Type: models.TypeGameReset, Payload: models.GameReset{
		GameState: e.room.State(""),
		ResetBy:   name,
		ResetTime: e.now(),
	}})
	e.systemChat(fmt.Sprintf("Game reset by %s!", name), "#F44336")
	e.log.Info("game reset", "by", name)
}

func (e *Engine) handlePing(connID string, _ json.RawMessage) {
	e.room.Touch(connID, e.now())
	e.transport.ToClient(connID, models.Message{Type: models.TypePong, Payload: models.Pong{ServerTime: e.now()}})
}

func (e *Engine) handleAdmin(connID string, payload json.RawMessage) {
	e.log.Info("admin command received", "conn", connID, "command", string(payload))
}

// Status backs the /status endpoint.
func (e *Engine) Status() models.StatusInfo {
	return models.StatusInfo{
		Status:        "online",
		PlayersOnline: e.room.Count(),
		Uptime:        int64(time.Since(e.startTime).Seconds()),
		GameStarted:   e.room.Started(),
	}
}

// AnnounceShutdown tells every connection, joined or not, that the server is
// going away.
func (e *Engine) AnnounceShutdown() {
	e.transport.ToAll(models.Message{Type: models.TypeServerShutdown, Payload: models.ServerShutdown{
		Message:   "Server is shutting down for maintenance. Reconnect in a few minutes.",
		Timestamp: e.now(),
	}})
}

// departed emits the same notification sequence for explicit disconnects and
// inactivity evictions; only the reason differs.
func (e *Engine) departed(player models.Player, reason string) {
	room := e.room.Name()
	e.transport.LeaveRoom(player.ID, room)
	e.transport.ToRoom(room, models.Message{Type: models.TypePlayerLeft, Payload: models.PlayerLeft{
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Reason:     reason,
		Timestamp:  e.now(),
	}})
	e.transport.ToRoom(room, models.Message{Type: models.TypePlayersCountUpdate, Payload: e.room.Count()})
	e.systemChat(fmt.Sprintf("%s left the game", player.Name), "#FF5722")
}

func (e *Engine) systemChat(text, color string) {
	e.transport.ToRoom(e.room.Name(), models.Message{Type: models.TypeChatMessage, Payload: models.ChatMessage{
		Type:       "system",
		PlayerID:   "system",
		PlayerName: "System",
		Message:    text,
		Timestamp:  e.now(),
		Color:      color,
	}})
}

// chatText extracts the message body. Clients send either a bare string or
// an object with a message field; anything else is dropped.
func chatText(payload json.RawMessage) string {
	var text string
	if err := json.Unmarshal(payload, &text); err != nil {
		var wrapped struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(payload, &wrapped); err != nil {
			return ""
		}
		text = wrapped.Message
	}

	text = strings.TrimSpace(text)
	if runes := []rune(text); len(runes) > maxChatLength {
		text = string(runes[:maxChatLength])
	}
	return text
}
