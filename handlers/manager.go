// Package handlers manager.go tracks connected clients and room membership
// and implements the delivery operations the game engine calls into.
package handlers

import (
	"log/slog"
	"sync"

	"github.com/enzosantiagosrv1245-cell/aula/models"
)

// ClientManager is the transport-side registry: every live client plus the
// room multicast groups. Recipients are collected under the lock but
// messages are enqueued outside it, so a full send buffer never holds the
// manager up.
type ClientManager struct {
	log *slog.Logger

	mu      sync.Mutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
}

func NewClientManager(log *slog.Logger) *ClientManager {
	return &ClientManager{
		log:     log,
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
	}
}

func (m *ClientManager) Add(c *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clients[c.ID] = c
}

// Remove drops the client from the registry and every room and closes its
// outbound queue.
func (m *ClientManager) Remove(id string) {
	m.mu.Lock()
	c, ok := m.clients[id]
	delete(m.clients, id)
	for _, members := range m.rooms {
		delete(members, id)
	}
	m.mu.Unlock()

	if ok {
		c.close()
	}
}

func (m *ClientManager) JoinRoom(id, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.clients[id]
	if !ok {
		return
	}
	members, ok := m.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		m.rooms[room] = members
	}
	members[id] = c
}

func (m *ClientManager) LeaveRoom(id, room string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rooms[room], id)
}

func (m *ClientManager) ToClient(id string, msg models.Message) {
	m.mu.Lock()
	c, ok := m.clients[id]
	m.mu.Unlock()

	if ok {
		c.enqueue(msg)
	}
}

func (m *ClientManager) ToRoom(room string, msg models.Message) {
	for _, c := range m.roomMembers(room, "") {
		c.enqueue(msg)
	}
}

func (m *ClientManager) ToRoomExcept(room, except string, msg models.Message) {
	for _, c := range m.roomMembers(room, except) {
		c.enqueue(msg)
	}
}

func (m *ClientManager) ToAll(msg models.Message) {
	m.mu.Lock()
	all := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		all = append(all, c)
	}
	m.mu.Unlock()

	for _, c := range all {
		c.enqueue(msg)
	}
}

// CloseAll closes every client's queue; the writer goroutines send close
// frames and shut the sockets. Used on process shutdown after the shutdown
// notice has been queued.
func (m *ClientManager) CloseAll() {
	m.mu.Lock()
	all := make([]*Client, 0, len(m.clients))
	for _, c := range m.clients {
		all = append(all, c)
	}
	m.clients = make(map[string]*Client)
	m.rooms = make(map[string]map[string]*Client)
	m.mu.Unlock()

	for _, c := range all {
		c.close()
	}
}

func (m *ClientManager) roomMembers(room, except string) []*Client {
	m.mu.Lock()
	defer m.mu.Unlock()

	members := m.rooms[room]
	out := make([]*Client, 0, len(members))
	for id, c := range members {
		if id == except {
			continue
		}
		out = append(out, c)
	}
	return out
}
