package notifier

import (
	"encoding/json"
	"log"
	"net/http"

	"cropshare/utils"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// inbound is what clients send over the socket. Only "join" is meaningful;
// the joined identity comes from the authenticated request, not the payload.
type inbound struct {
	Action string `json:"action"`
	UserID string `json:"userId,omitempty"`
}

// WebSocketHandler upgrades the connection and registers it under the
// caller's identity once the client sends its join action.
func WebSocketHandler(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		userID := utils.GetUserIDFromRequest(r)
		if userID == "" {
			http.Error(w, "Not authorized", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("upgrade:", err)
			return
		}

		client := &Client{
			Conn:   conn,
			Send:   make(chan []byte, 256),
			UserID: userID,
		}

		if !hub.enroll(client) {
			conn.Close()
			return
		}
		go writePump(client)
		go readPump(client, hub)
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

func readPump(c *Client, hub *Hub) {
	defer func() {
		hub.withdraw(c)
		c.Conn.Close()
	}()

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			break
		}

		var in inbound
		if err := json.Unmarshal(raw, &in); err != nil {
			log.Println("invalid payload:", err)
			continue
		}

		switch in.Action {
		case "join":
			// Registration already happened on connect; the action exists
			// so clients built against the original room protocol keep
			// working. A mismatched id is ignored.
		default:
			log.Println("unknown action:", in.Action)
		}
	}
}
