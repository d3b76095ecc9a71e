// Package models player.go
package models

import "time"

// Player is the authoritative record for one connected player. The field
// names on the wire match what the browser client expects.
type Player struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	X            float64   `json:"x"`
	Y            float64   `json:"y"`
	Score        int       `json:"score"`
	Color        string    `json:"color"`
	Room         string    `json:"room"`
	JoinTime     time.Time `json:"joinTime"`
	LastActivity time.Time `json:"lastActivity"`
	IsAlive      bool      `json:"isAlive"`
	Health       int       `json:"health"`
	Level        int       `json:"level"`
}

// GameSettings are the per-room tunables sent to clients on connect. They are
// read from the environment once at startup and never change afterwards.
type GameSettings struct {
	PlayerSpeed float64 `json:"playerSpeed"`
	PlayerSize  float64 `json:"playerSize"`
	MapWidth    float64 `json:"mapWidth"`
	MapHeight   float64 `json:"mapHeight"`
}
