// Package game implements the session state engine: the player registry,
// the per-room game state, the chat rate limiter, the broadcast tick and the
// idle eviction sweep. Everything here is transport-agnostic; delivery goes
// through the Transport interface.
package game

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

// ErrRoomFull is returned by Join when the registry is at capacity. The
// caller reports it to the requesting connection only; nothing is mutated.
var ErrRoomFull = errors.New("room is full")

// Palette assigned round-robin to players who don't pick a color.
var playerColors = []string{
	"#2196F3", "#FF5722", "#4CAF50", "#9C27B0", "#FF9800",
	"#F44336", "#3F51B5", "#009688", "#795548", "#607D8B",
	"#E91E63", "#CDDC39", "#FFC107", "#00BCD4", "#8BC34A",
}

const maxNameLength = 20

// playerState is the server-private record: the wire-visible Player plus the
// chat rate-limit window.
type playerState struct {
	models.Player
	chat chatWindow
}

// Room owns the registry of connected players and the room-wide flags. All
// reads and mutations take the one mutex, so a join interleaved with a
// disconnect or a broadcast never observes a half-updated record.
type Room struct {
	name       string
	maxPlayers int
	settings   models.GameSettings

	mu      sync.Mutex
	players map[string]*playerState
	started bool
	joined  int
}

func NewRoom(name string, settings models.GameSettings, maxPlayers int) *Room {
	return &Room{
		name:       name,
		maxPlayers: maxPlayers,
		settings:   settings,
		players:    make(map[string]*playerState),
	}
}

func (r *Room) Name() string { return r.name }

func (r *Room) MaxPlayers() int { return r.maxPlayers }

func (r *Room) Settings() models.GameSettings { return r.settings }

// Join creates a player for the given connection id, assigning a sanitized
// name, a palette color and a random in-bounds spawn position. It fails with
// ErrRoomFull at capacity, leaving the registry untouched.
func (r *Room) Join(id, name, color string, now time.Time) (models.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.players) >= r.maxPlayers {
		return models.Player{}, ErrRoomFull
	}

	if color == "" {
		color = playerColors[r.joined%len(playerColors)]
	}
	r.joined++

	state := &playerState{
		Player: models.Player{
			ID:           id,
			Name:         sanitizeName(name, id),
			X:            spawnCoord(r.settings.MapWidth),
			Y:            spawnCoord(r.settings.MapHeight),
			Score:        0,
			Color:        color,
			Room:         r.name,
			JoinTime:     now,
			LastActivity: now,
			IsAlive:      true,
			Health:       100,
			Level:        1,
		},
	}
	r.players[id] = state
	return state.Player, nil
}

// Move clamps the requested position to the map bounds and stores it.
// Unknown ids, dead players and non-finite coordinates are no-ops.
func (r *Room) Move(id string, x, y float64, now time.Time) (float64, float64, bool) {
	if !isFinite(x) || !isFinite(y) {
		return 0, 0, false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[id]
	if !ok || !state.IsAlive {
		return 0, 0, false
	}

	state.X = clamp(x, r.settings.PlayerSize, r.settings.MapWidth-r.settings.PlayerSize)
	state.Y = clamp(y, r.settings.PlayerSize, r.settings.MapHeight-r.settings.PlayerSize)
	state.LastActivity = now
	return state.X, state.Y, true
}

// ChatVerdict is the outcome of a chat attempt against the rate limiter.
type ChatVerdict int

const (
	ChatOK ChatVerdict = iota
	ChatLimited
	ChatUnknown
)

// Chat runs the sliding-window check for one player and, when allowed,
// records the attempt and refreshes last-activity.
func (r *Room) Chat(id string, now time.Time) (models.Player, ChatVerdict) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[id]
	if !ok {
		return models.Player{}, ChatUnknown
	}
	if !state.chat.allow(now) {
		return state.Player, ChatLimited
	}
	state.LastActivity = now
	return state.Player, ChatOK
}

// UpdateScore coerces the raw score to a non-negative integer and recomputes
// the level. Unknown ids are a no-op.
func (r *Room) UpdateScore(id string, raw float64, now time.Time) (models.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[id]
	if !ok {
		return models.Player{}, false
	}

	score := 0
	if isFinite(raw) {
		score = int(raw)
	}
	if score < 0 {
		score = 0
	}
	state.Score = score
	state.Level = score/100 + 1
	state.LastActivity = now
	return state.Player, true
}

// Touch refreshes a player's last-activity timestamp (heartbeat).
func (r *Room) Touch(id string, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[id]
	if !ok {
		return false
	}
	state.LastActivity = now
	return true
}

// Start sets the started flag. Returns false if the game was already
// running, in which case the caller emits nothing.
func (r *Room) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.started {
		return false
	}
	r.started = true
	return true
}

// Reset zeroes every player's score and level, restores full health and
// clears the started flag. Used for explicit resets and for the automatic
// reset when the last player leaves.
func (r *Room) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.resetLocked()
}

func (r *Room) resetLocked() {
	for _, state := range r.players {
		state.Score = 0
		state.Level = 1
		state.Health = 100
	}
	r.started = false
}

// Leave removes the player and returns the removed record. When the room
// empties out, the started flag drops automatically.
func (r *Room) Leave(id string) (models.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[id]
	if !ok {
		return models.Player{}, false
	}
	delete(r.players, id)
	if len(r.players) == 0 {
		r.started = false
	}
	return state.Player, true
}

// Evict removes every player whose last activity is older than timeout and
// returns the removed records in no particular order.
func (r *Room) Evict(now time.Time, timeout time.Duration) []models.Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	var evicted []models.Player
	for id, state := range r.players {
		if now.Sub(state.LastActivity) > timeout {
			evicted = append(evicted, state.Player)
			delete(r.players, id)
		}
	}
	if len(r.players) == 0 && len(evicted) > 0 {
		r.started = false
	}
	return evicted
}

func (r *Room) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

func (r *Room) Started() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.started
}

// Player returns a copy of one player's record.
func (r *Room) Player(id string) (models.Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.players[id]
	if !ok {
		return models.Player{}, false
	}
	return state.Player, true
}

// Update builds the lightweight per-tick snapshot.
func (r *Room) Update(now time.Time) models.GameStateUpdate {
	r.mu.Lock()
	defer r.mu.Unlock()

	return models.GameStateUpdate{
		Players:      r.playersLocked(),
		GameStarted:  r.started,
		PlayersCount: len(r.players),
		ServerTime:   now,
	}
}

// State builds the full snapshot sent to a joining player. yourID tags the
// copy so the client can find itself in the map.
func (r *Room) State(yourID string) models.GameState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return models.GameState{
		Players:      r.playersLocked(),
		GameStarted:  r.started,
		GameRoom:     r.name,
		MaxPlayers:   r.maxPlayers,
		GameSettings: r.settings,
		YourID:       yourID,
	}
}

func (r *Room) playersLocked() map[string]models.Player {
	players := make(map[string]models.Player, len(r.players))
	for id, state := range r.players {
		players[id] = state.Player
	}
	return players
}

func sanitizeName(name, id string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		short := id
		if len(short) > 6 {
			short = short[:6]
		}
		return fmt.Sprintf("Player_%s", short)
	}
	if runes := []rune(name); len(runes) > maxNameLength {
		name = string(runes[:maxNameLength])
	}
	return name
}

// spawnCoord picks a random coordinate at least 50px away from either edge.
func spawnCoord(dimension float64) float64 {
	return rand.Float64()*(dimension-100) + 50
}

func clamp(v, min, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
