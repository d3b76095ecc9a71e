package handlers

import (
	"io"
	"log/slog"
	"testing"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

func testManager() *ClientManager {
	return NewClientManager(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// addClient registers a client with no live socket; messages land in its
// send channel where the test can inspect them.
func addClient(m *ClientManager, id string) *Client {
	c := newClient(id, nil, m.log)
	m.Add(c)
	return c
}

func drain(c *Client) []models.Message {
	var out []models.Message
	for {
		select {
		case msg := <-c.send:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestRoomTargeting(t *testing.T) {
	m := testManager()
	a := addClient(m, "a")
	b := addClient(m, "b")
	outsider := addClient(m, "c")
	m.JoinRoom("a", "main")
	m.JoinRoom("b", "main")

	m.ToRoom("main", models.Message{Type: "tick"})
	if len(drain(a)) != 1 || len(drain(b)) != 1 {
		t.Fatal("room members missed a room broadcast")
	}
	if len(drain(outsider)) != 0 {
		t.Fatal("non-member received a room broadcast")
	}

	m.ToRoomExcept("main", "a", models.Message{Type: "moved"})
	if len(drain(a)) != 0 {
		t.Fatal("excluded sender received the broadcast")
	}
	if len(drain(b)) != 1 {
		t.Fatal("other member missed the broadcast")
	}

	m.ToClient("c", models.Message{Type: "direct"})
	if len(drain(outsider)) != 1 {
		t.Fatal("direct delivery failed")
	}

	m.ToAll(models.Message{Type: "shutdown"})
	if len(drain(a)) != 1 || len(drain(b)) != 1 || len(drain(outsider)) != 1 {
		t.Fatal("global broadcast missed a client")
	}
}

func TestRemoveDropsMembershipAndClosesQueue(t *testing.T) {
	m := testManager()
	a := addClient(m, "a")
	b := addClient(m, "b")
	m.JoinRoom("a", "main")
	m.JoinRoom("b", "main")

	m.Remove("a")

	m.ToRoom("main", models.Message{Type: "tick"})
	if len(drain(b)) != 1 {
		t.Fatal("remaining member missed the broadcast")
	}

	select {
	case _, ok := <-a.send:
		if ok {
			t.Fatal("removed client still receiving")
		}
	default:
		t.Fatal("removed client's queue not closed")
	}
}

func TestEnqueueAfterRemoveIsSilent(t *testing.T) {
	m := testManager()
	addClient(m, "a")
	m.JoinRoom("a", "main")

	// A broadcaster may snapshot the recipients right before the client is
	// removed; the late enqueue must be a quiet no-op, not a panic.
	members := m.roomMembers("main", "")
	if len(members) != 1 {
		t.Fatalf("members = %d, want 1", len(members))
	}
	m.Remove("a")

	members[0].enqueue(models.Message{Type: "tick"})
}

func TestEnqueueAfterCloseAllIsSilent(t *testing.T) {
	m := testManager()
	c := addClient(m, "a")
	m.CloseAll()

	c.enqueue(models.Message{Type: "shutdown"})
	c.enqueue(models.Message{Type: "shutdown"})
}

func TestEnqueueOverflowDropsInsteadOfBlocking(t *testing.T) {
	m := testManager()
	c := addClient(m, "slow")
	m.JoinRoom("slow", "main")

	for i := 0; i < sendBufferSize+10; i++ {
		m.ToRoom("main", models.Message{Type: "tick"})
	}

	if got := len(c.send); got != sendBufferSize {
		t.Fatalf("queued = %d, want %d", got, sendBufferSize)
	}
}

func TestLeaveRoomStopsDelivery(t *testing.T) {
	m := testManager()
	a := addClient(m, "a")
	m.JoinRoom("a", "main")
	m.LeaveRoom("a", "main")

	m.ToRoom("main", models.Message{Type: "tick"})
	if len(drain(a)) != 0 {
		t.Fatal("client received room traffic after leaving")
	}
}

func TestCloseAllClosesEveryQueue(t *testing.T) {
	m := testManager()
	a := addClient(m, "a")
	b := addClient(m, "b")

	m.CloseAll()

	for _, c := range []*Client{a, b} {
		if _, ok := <-c.send; ok {
			t.Fatalf("client %s queue not closed", c.ID)
		}
	}
}
