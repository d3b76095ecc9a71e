package game

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

var testSettings = models.GameSettings{
	PlayerSpeed: 6,
	PlayerSize:  22,
	MapWidth:    1200,
	MapHeight:   800,
}

func newTestRoom(maxPlayers int) *Room {
	return NewRoom("main", testSettings, maxPlayers)
}

func TestJoinRejectsWhenFull(t *testing.T) {
	room := newTestRoom(2)
	now := time.Now()

	for i := 0; i < 2; i++ {
		if _, err := room.Join(fmt.Sprintf("conn-%d", i), "", "", now); err != nil {
			t.Fatalf("join %d failed: %v", i, err)
		}
	}

	_, err := room.Join("conn-extra", "Latecomer", "", now)
	if !errors.Is(err, ErrRoomFull) {
		t.Fatalf("expected ErrRoomFull, got %v", err)
	}
	if got := room.Count(); got != 2 {
		t.Fatalf("registry size = %d, want 2", got)
	}
}

func TestJoinBlankNamesAreDistinct(t *testing.T) {
	room := newTestRoom(20)
	now := time.Now()

	a, err := room.Join("aaaaaa-1111", "   ", "", now)
	if err != nil {
		t.Fatalf("join a: %v", err)
	}
	b, err := room.Join("bbbbbb-2222", "", "", now)
	if err != nil {
		t.Fatalf("join b: %v", err)
	}

	if a.Name == b.Name {
		t.Fatalf("blank-name players share a name: %q", a.Name)
	}
	if a.Name != "Player_aaaaaa" || b.Name != "Player_bbbbbb" {
		t.Fatalf("unexpected synthetic names %q, %q", a.Name, b.Name)
	}

	for _, p := range []models.Player{a, b} {
		if p.X < 0 || p.X > testSettings.MapWidth || p.Y < 0 || p.Y > testSettings.MapHeight {
			t.Fatalf("spawn out of bounds: (%v, %v)", p.X, p.Y)
		}
	}
}

func TestJoinTruncatesLongNames(t *testing.T) {
	room := newTestRoom(20)
	p, err := room.Join("conn-1", strings.Repeat("x", 40), "", time.Now())
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if len(p.Name) != maxNameLength {
		t.Fatalf("name length = %d, want %d", len(p.Name), maxNameLength)
	}
}

func TestJoinAssignsPaletteColors(t *testing.T) {
	room := newTestRoom(20)
	now := time.Now()

	first, _ := room.Join("conn-1", "A", "", now)
	second, _ := room.Join("conn-2", "B", "", now)
	if first.Color != playerColors[0] || second.Color != playerColors[1] {
		t.Fatalf("palette colors = %q, %q; want %q, %q",
			first.Color, second.Color, playerColors[0], playerColors[1])
	}

	custom, _ := room.Join("conn-3", "C", "#123456", now)
	if custom.Color != "#123456" {
		t.Fatalf("requested color not kept: %q", custom.Color)
	}
}

func TestJoinDefaultsServerManagedFields(t *testing.T) {
	room := newTestRoom(20)
	p, err := room.Join("conn-1", "A", "", time.Now())
	if err != nil {
		t.Fatalf("join: %v", err)
	}
	if p.Score != 0 || p.Level != 1 || p.Health != 100 || !p.IsAlive {
		t.Fatalf("server-managed defaults wrong: %+v", p)
	}
	if p.Room != "main" {
		t.Fatalf("room = %q, want main", p.Room)
	}
}

func TestMoveClampsToMapBounds(t *testing.T) {
	minX := testSettings.PlayerSize
	maxX := testSettings.MapWidth - testSettings.PlayerSize
	minY := testSettings.PlayerSize
	maxY := testSettings.MapHeight - testSettings.PlayerSize

	tests := []struct {
		name       string
		x, y       float64
		wantX      float64
		wantY      float64
		wantMutate bool
	}{
		{"inside", 400, 300, 400, 300, true},
		{"far left and up", -5000, -5000, minX, minY, true},
		{"far right and down", 1e9, 1e9, maxX, maxY, true},
		{"on the edge", minX, maxY, minX, maxY, true},
		{"nan", math.NaN(), 100, 0, 0, false},
		{"positive inf", math.Inf(1), 100, 0, 0, false},
		{"negative inf", 100, math.Inf(-1), 0, 0, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			room := newTestRoom(20)
			now := time.Now()
			if _, err := room.Join("conn-1", "Mover", "", now); err != nil {
				t.Fatalf("join: %v", err)
			}

			x, y, ok := room.Move("conn-1", tc.x, tc.y, now)
			if ok != tc.wantMutate {
				t.Fatalf("mutated = %v, want %v", ok, tc.wantMutate)
			}
			if !tc.wantMutate {
				return
			}
			if x != tc.wantX || y != tc.wantY {
				t.Fatalf("clamped to (%v, %v), want (%v, %v)", x, y, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestMoveUnknownPlayerIsNoOp(t *testing.T) {
	room := newTestRoom(20)
	if _, _, ok := room.Move("ghost", 100, 100, time.Now()); ok {
		t.Fatal("move for unknown id mutated state")
	}
}

func TestUpdateScoreClampsAndLevels(t *testing.T) {
	tests := []struct {
		name      string
		raw       float64
		wantScore int
		wantLevel int
	}{
		{"negative clamps to zero", -50, 0, 1},
		{"zero", 0, 0, 1},
		{"sub hundred", 99, 99, 1},
		{"level two boundary", 100, 100, 2},
		{"level three", 250, 250, 3},
		{"nan coerces to zero", math.NaN(), 0, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			room := newTestRoom(20)
			now := time.Now()
			if _, err := room.Join("conn-1", "Scorer", "", now); err != nil {
				t.Fatalf("join: %v", err)
			}

			p, ok := room.UpdateScore("conn-1", tc.raw, now)
			if !ok {
				t.Fatal("update rejected")
			}
			if p.Score != tc.wantScore || p.Level != tc.wantLevel {
				t.Fatalf("score/level = %d/%d, want %d/%d", p.Score, p.Level, tc.wantScore, tc.wantLevel)
			}
		})
	}
}

func TestResetRestoresPlayers(t *testing.T) {
	room := newTestRoom(20)
	now := time.Now()
	room.Join("conn-1", "A", "", now)
	room.UpdateScore("conn-1", 350, now)
	if !room.Start() {
		t.Fatal("start failed")
	}

	room.Reset()

	p, _ := room.Player("conn-1")
	if p.Score != 0 || p.Level != 1 || p.Health != 100 {
		t.Fatalf("player not reset: %+v", p)
	}
	if room.Started() {
		t.Fatal("started flag survived reset")
	}
}

func TestStartIsIdempotent(t *testing.T) {
	room := newTestRoom(20)
	if !room.Start() {
		t.Fatal("first start rejected")
	}
	if room.Start() {
		t.Fatal("second start reported a transition")
	}
	if !room.Started() {
		t.Fatal("started flag lost")
	}
}

func TestLastLeaveClearsStartedFlag(t *testing.T) {
	room := newTestRoom(20)
	now := time.Now()
	room.Join("conn-1", "A", "", now)
	room.Join("conn-2", "B", "", now)
	room.Start()

	if _, ok := room.Leave("conn-1"); !ok {
		t.Fatal("leave conn-1 failed")
	}
	if !room.Started() {
		t.Fatal("started flag dropped while players remain")
	}

	if _, ok := room.Leave("conn-2"); !ok {
		t.Fatal("leave conn-2 failed")
	}
	if room.Started() {
		t.Fatal("started flag not cleared on last departure")
	}
}

func TestEvictRemovesOnlyStalePlayers(t *testing.T) {
	room := newTestRoom(20)
	base := time.Now()
	room.Join("conn-stale", "Stale", "", base)
	room.Join("conn-live", "Live", "", base)

	later := base.Add(6 * time.Minute)
	room.Touch("conn-live", later)

	evicted := room.Evict(later, 5*time.Minute)
	if len(evicted) != 1 || evicted[0].ID != "conn-stale" {
		t.Fatalf("evicted %v, want only conn-stale", evicted)
	}
	if got := room.Count(); got != 1 {
		t.Fatalf("registry size = %d, want 1", got)
	}
	if _, ok := room.Player("conn-live"); !ok {
		t.Fatal("live player was evicted")
	}
}

func TestStateIncludesYourID(t *testing.T) {
	room := newTestRoom(20)
	room.Join("conn-1", "A", "", time.Now())

	state := room.State("conn-1")
	if state.YourID != "conn-1" {
		t.Fatalf("yourId = %q", state.YourID)
	}
	if state.GameRoom != "main" || state.MaxPlayers != 20 {
		t.Fatalf("room metadata wrong: %+v", state)
	}
	if _, ok := state.Players["conn-1"]; !ok {
		t.Fatal("player missing from snapshot")
	}
}
