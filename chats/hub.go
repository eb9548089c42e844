package chats

import (
	"encoding/json"
	"log"
	"sync"

	"goldennile/models"

	"github.com/gorilla/websocket"
)

// Client is one connected UI view of a conversation.
type Client struct {
	Conn   *websocket.Conn
	Send   chan []byte
	Room   string
	UserID string
}

type broadcastMsg struct {
	Room string
	Data []byte
}

// Hub fans settled and optimistic conversation states out to every UI
// client watching a chat.
type Hub struct {
	rooms     map[string]map[*Client]bool
	register  chan *Client
	broadcast chan broadcastMsg
	quit      chan struct{}
	mu        sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:     make(map[string]map[*Client]bool),
		register:  make(chan *Client),
		broadcast: make(chan broadcastMsg),
		quit:      make(chan struct{}),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case <-h.quit:
			h.mu.Lock()
			for room, conns := range h.rooms {
				for c := range conns {
					close(c.Send)
				}
				delete(h.rooms, room)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.Room] == nil {
				h.rooms[c.Room] = make(map[*Client]bool)
			}
			h.rooms[c.Room][c] = true
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.Room] {
				select {
				case c.Send <- m.Data:
				default:
					close(c.Send)
					delete(h.rooms[m.Room], c)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) Stop() {
	close(h.quit)
}

// Unregister detaches a client and reports how many clients still watch
// its room. The removal happens under the hub lock, so the count never
// includes the departing client. Detaching the last client empties the
// room, which is the caller's cue to stop the conversation's poller.
func (h *Hub) Unregister(c *Client) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	if conns := h.rooms[c.Room]; conns != nil && conns[c] {
		delete(conns, c)
		close(c.Send)
		if len(conns) == 0 {
			delete(h.rooms, c.Room)
		}
	}
	return len(h.rooms[c.Room])
}

// Watchers reports how many UI clients are attached to a conversation.
func (h *Hub) Watchers(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.rooms[room])
}

// conversationPayload is what the UI receives on every change.
type conversationPayload struct {
	Action   string           `json:"action"` // always "conversation"
	ChatID   string           `json:"chatId"`
	Messages []models.Message `json:"messages"`
}

// PushConversation broadcasts the current state of a conversation to
// every client watching it.
func (h *Hub) PushConversation(chatID string, msgs []models.Message) {
	data, err := json.Marshal(conversationPayload{
		Action:   "conversation",
		ChatID:   chatID,
		Messages: msgs,
	})
	if err != nil {
		log.Printf("push marshal error: %v", err)
		return
	}
	select {
	case h.broadcast <- broadcastMsg{Room: chatID, Data: data}:
	case <-h.quit:
	}
}
