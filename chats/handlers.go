package chats

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"goldennile/upstream"
	"goldennile/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// Sessions resolves the calling user's chat store. Implemented by the
// session manager.
type Sessions interface {
	ChatStore(r *http.Request) (*Store, error)
	Invalidate(token string)
}

// GetChats lists the user's conversations.
func GetChats(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ChatStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		list, err := store.Conversations(r.Context())
		if err != nil {
			if errors.Is(err, upstream.ErrUnauthorized) {
				sessions.Invalidate(r.Header.Get("Authorization"))
				utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
				return
			}
			log.Printf("chat list error: %v", err)
			utils.RespondWithError(w, http.StatusBadGateway, "Listing failed")
			return
		}
		utils.RespondWithJSON(w, http.StatusOK, utils.M{"chats": list})
	}
}

// GetConversation returns the current materialized conversation,
// refreshing from the backend first.
func GetConversation(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ChatStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		chatID := ps.ByName("chatid")
		if err := store.Refresh(r.Context(), chatID); err != nil {
			if errors.Is(err, upstream.ErrUnauthorized) {
				sessions.Invalidate(r.Header.Get("Authorization"))
				utils.RespondWithError(w, http.StatusUnauthorized, "Session expired")
				return
			}
			log.Printf("chat refresh error: %v", err)
		}

		utils.RespondWithJSON(w, http.StatusOK, utils.M{
			"chatId":   chatID,
			"messages": store.Messages(chatID),
		})
	}
}

// SendMessage applies the optimistic send and answers with the temp
// message; the settled conversation is pushed over the websocket.
func SendMessage(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ChatStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		chatID := ps.ByName("chatid")
		temp, done, err := store.Send(context.Background(), chatID, input.Text)
		if errors.Is(err, ErrEmptyInput) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)

		utils.RespondWithJSON(w, http.StatusAccepted, temp)
	}
}

// EditMessage rewrites a message's text optimistically.
func EditMessage(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ChatStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		var input struct {
			Text string `json:"text"`
		}
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}

		done, err := store.Edit(context.Background(), ps.ByName("chatid"), ps.ByName("msgid"), input.Text)
		if errors.Is(err, ErrEmptyInput) {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)

		w.WriteHeader(http.StatusAccepted)
	}
}

// DeleteMessage removes a message optimistically.
func DeleteMessage(sessions Sessions) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ChatStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		done, err := store.Delete(context.Background(), ps.ByName("chatid"), ps.ByName("msgid"))
		if err != nil {
			utils.RespondWithError(w, http.StatusBadRequest, err.Error())
			return
		}
		go settle(sessions, r.Header.Get("Authorization"), done)

		w.WriteHeader(http.StatusAccepted)
	}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// WebSocketHandler attaches a UI client to a conversation: polling
// starts while at least one client watches, and every store change is
// pushed as a full conversation payload. Closing the socket stops the
// poller once the room empties; in-flight sends still settle.
func WebSocketHandler(sessions Sessions, hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		store, err := sessions.ChatStore(r)
		if err != nil {
			utils.RespondWithError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		chatID := ps.ByName("chatid")
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			Room:   chatID,
			UserID: store.userID,
		}

		hub.register <- client
		store.SetNotify(func(id string) {
			hub.PushConversation(id, store.Messages(id))
		})
		store.OpenView(chatID)

		go writePump(client)
		go readPump(client, hub, store)
	}
}

func writePump(c *Client) {
	defer c.Conn.Close()
	for msg := range c.Send {
		if err := c.Conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump drains the connection until the UI goes away, then detaches
// the view.
func readPump(c *Client, hub *Hub, store *Store) {
	defer func() {
		remaining := hub.Unregister(c)
		c.Conn.Close()
		if remaining == 0 {
			store.CloseView(c.Room)
		}
	}()

	for {
		if _, _, err := c.Conn.ReadMessage(); err != nil {
			return
		}
	}
}

// settle waits out a mutation and tears the session down when the
// backend reports an expired token. It takes the bearer token, not the
// request: the request is released once the handler returns.
func settle(sessions Sessions, token string, done <-chan error) {
	if err := <-done; errors.Is(err, upstream.ErrUnauthorized) {
		sessions.Invalidate(token)
	}
}
