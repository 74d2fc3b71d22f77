package messaging

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/worklane/worklane/internal/db"
)

type wsEvent struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// hub fans events out to every open socket on one project thread
type hub struct {
	projectID string
	clients   map[*websocket.Conn]bool
	mu        sync.RWMutex
}

var (
	hubsMu sync.RWMutex
	hubs   = make(map[string]*hub)
)

func getHub(projectID string) *hub {
	hubsMu.Lock()
	defer hubsMu.Unlock()
	if h, ok := hubs[projectID]; ok {
		return h
	}
	h := &hub{projectID: projectID, clients: make(map[*websocket.Conn]bool)}
	hubs[projectID] = h
	return h
}

func (h *hub) broadcast(evt wsEvent) {
	payload, _ := json.Marshal(evt)
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		_ = c.WriteMessage(websocket.TextMessage, payload)
	}
}

func (h *hub) register(c *websocket.Conn) {
	h.mu.Lock()
	h.clients[c] = true
	h.mu.Unlock()
}

func (h *hub) unregister(c *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// ProjectWS - websocket for realtime updates on a project thread
func ProjectWS(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	projectID := c.Param("id")
	if projectID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "missing project id"})
	}

	var customerID, providerID string
	err := db.Conn.QueryRow(context.Background(),
		`SELECT customer_id, provider_id FROM projects WHERE id = $1`, projectID,
	).Scan(&customerID, &providerID)
	if err != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "project not found or inaccessible"})
	}
	if userID != customerID && userID != providerID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "not a participant on this project"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	h := getHub(projectID)
	h.register(ws)
	h.broadcast(wsEvent{Type: "presence_join", Data: echo.Map{"user_id": userID}})

	// Read loop; client messages are discarded, protocol is server push
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			h.unregister(ws)
			_ = ws.Close()
			h.broadcast(wsEvent{Type: "presence_leave", Data: echo.Map{"user_id": userID}})
			break
		}
	}
	return nil
}

// BroadcastNewMessage - publish a new message event to the project hub
func BroadcastNewMessage(projectID string, message interface{}) {
	getHub(projectID).broadcast(wsEvent{Type: "message_new", Data: message})
}

// BroadcastMessageRead - publish a message read event
func BroadcastMessageRead(projectID string, payload interface{}) {
	getHub(projectID).broadcast(wsEvent{Type: "message_read", Data: payload})
}

// BroadcastMilestoneEvent - publish milestone lifecycle changes so open
// threads refresh without polling
func BroadcastMilestoneEvent(projectID string, payload interface{}) {
	getHub(projectID).broadcast(wsEvent{Type: "milestone_update", Data: payload})
}
