// Package models messages.go holds the wire envelope and every payload the
// server sends or accepts over the websocket.
package models

import (
	"encoding/json"
	"time"
)

// Message is the outbound envelope: a named type plus a JSON-serializable
// payload.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// Envelope is the inbound counterpart. The payload stays raw until the
// dispatcher knows which event it is handling.
type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Outbound message types.
const (
	TypeServerInfo         = "serverInfo"
	TypeGameState          = "gameState"
	TypeGameStateUpdate    = "gameStateUpdate"
	TypePlayerJoined       = "playerJoined"
	TypePlayersCountUpdate = "playersCountUpdate"
	TypeChatMessage        = "chatMessage"
	TypePlayerMoved        = "playerMoved"
	TypeChatError          = "chatError"
	TypeScoreUpdate        = "scoreUpdate"
	TypeGameStarted        = "gameStarted"
	TypeGameReset          = "gameReset"
	TypePlayerLeft         = "playerLeft"
	TypeServerError        = "serverError"
	TypeServerShutdown     = "serverShutdown"
	TypePong               = "pong"
)

// Inbound event types.
const (
	EventPlayerJoin   = "playerJoin"
	EventPlayerMove   = "playerMove"
	EventChatMessage  = "chatMessage"
	EventUpdateScore  = "updateScore"
	EventStartGame    = "startGame"
	EventResetGame    = "resetGame"
	EventPing         = "ping"
	EventAdminCommand = "adminCommand"
)

// JoinRequest is the only client input accepted at join time. Anything else
// the client sends along is dropped on the floor.
type JoinRequest struct {
	Name  string `json:"name" validate:"max=64"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type MoveRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type ScoreRequest struct {
	Score float64 `json:"score"`
}

type ServerInfo struct {
	PlayersOnline int          `json:"playersOnline"`
	MaxPlayers    int          `json:"maxPlayers"`
	ServerTime    time.Time    `json:"serverTime"`
	GameSettings  GameSettings `json:"gameSettings"`
}

// GameState is the full room snapshot. YourID is only set on the copy sent
// to a freshly joined player.
type GameState struct {
	Players      map[string]Player `json:"players"`
	GameStarted  bool              `json:"gameStarted"`
	GameRoom     string            `json:"gameRoom"`
	MaxPlayers   int               `json:"maxPlayers"`
	GameSettings GameSettings      `json:"gameSettings"`
	YourID       string            `json:"yourId,omitempty"`
}

// GameStateUpdate is the lighter per-tick broadcast.
type GameStateUpdate struct {
	Players      map[string]Player `json:"players"`
	GameStarted  bool              `json:"gameStarted"`
	PlayersCount int               `json:"playersCount"`
	ServerTime   time.Time         `json:"serverTime"`
}

type ChatMessage struct {
	Type       string    `json:"type"`
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
	Color      string    `json:"color"`
}

type PlayerMoved struct {
	ID        string    `json:"id"`
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Timestamp time.Time `json:"timestamp"`
}

type ScoreUpdate struct {
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Score      int    `json:"score"`
	Level      int    `json:"level"`
}

type GameStarted struct {
	StartTime   time.Time `json:"startTime"`
	InitiatedBy string    `json:"initiatedBy"`
}

type GameReset struct {
	GameState GameState `json:"gameState"`
	ResetBy   string    `json:"resetBy"`
	ResetTime time.Time `json:"resetTime"`
}

type PlayerLeft struct {
	PlayerID   string    `json:"playerId"`
	PlayerName string    `json:"playerName"`
	Reason     string    `json:"reason"`
	Timestamp  time.Time `json:"timestamp"`
}

type ServerError struct {
	Message string `json:"message"`
}

type ChatError struct {
	Message string `json:"message"`
}

type ServerShutdown struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type Pong struct {
	ServerTime time.Time `json:"serverTime"`
}

// StatusInfo backs the /status endpoint.
type StatusInfo struct {
	Status        string `json:"status"`
	PlayersOnline int    `json:"playersOnline"`
	Uptime        int64  `json:"uptime"`
	GameStarted   bool   `json:"gameStarted"`
}
